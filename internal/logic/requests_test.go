package logic

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"library-server/internal/liberr"
	"library-server/internal/models"
)

func TestRequestBookVisibleToEveryAdmin(t *testing.T) {
	svc, db, _ := testService(t)
	ctx := context.Background()

	firstAdmin := seedAdmin(t, db, "first@mail.com")
	secondAdmin := seedAdmin(t, db, "second@mail.com")
	memberID := seedMember(t, db, "member@mail.com")

	require.NoError(t, svc.RequestBook(ctx, memberID, "111"))

	want := models.Request{Requester: memberID, ISBN: "111"}

	// The request shows up on the member's own profile
	profile, err := svc.RetrieveUser(ctx, memberID, models.RoleMember)
	require.NoError(t, err)
	assert.Equal(t, []models.Request{want}, profile.RequestedBooks)

	// And on every admin's view
	for _, adminID := range []string{firstAdmin, secondAdmin} {
		profile, err := svc.RetrieveUser(ctx, adminID, models.RoleAdmin)
		require.NoError(t, err)
		assert.Equal(t, []models.Request{want}, profile.Requests)
	}
}

func TestRequestBookDuplicate(t *testing.T) {
	svc, db, _ := testService(t)
	ctx := context.Background()

	memberID := seedMember(t, db, "member@mail.com")

	require.NoError(t, svc.RequestBook(ctx, memberID, "111"))

	err := svc.RequestBook(ctx, memberID, "111")
	require.Error(t, err)
	assert.True(t, liberr.IsNotAllowed(err))
	assert.EqualError(t, err, "book with ISBN 111 was already requested by member with id "+memberID)
}

func TestRequestBookUnknownMember(t *testing.T) {
	svc, _, _ := testService(t)

	err := svc.RequestBook(context.Background(), "ghost", "111")
	require.Error(t, err)
	assert.True(t, liberr.IsNotFound(err))
}

func TestToggleWishlist(t *testing.T) {
	svc, db, _ := testService(t)
	ctx := context.Background()

	memberID := seedMember(t, db, "member@mail.com")
	bookID := seedBook(t, db, "111", "Dune", 1)

	require.NoError(t, svc.ToggleWishlist(ctx, memberID, "111"))

	member, err := db.GetMemberByID(ctx, memberID)
	require.NoError(t, err)
	assert.Equal(t, []string{bookID}, member.Wishlist)

	// A second toggle restores the original state
	require.NoError(t, svc.ToggleWishlist(ctx, memberID, "111"))

	member, err = db.GetMemberByID(ctx, memberID)
	require.NoError(t, err)
	assert.Empty(t, member.Wishlist)
}

func TestToggleWishlistUnknownBook(t *testing.T) {
	svc, db, _ := testService(t)

	memberID := seedMember(t, db, "member@mail.com")

	err := svc.ToggleWishlist(context.Background(), memberID, "nope")
	require.Error(t, err)
	assert.True(t, liberr.IsNotFound(err))
	assert.EqualError(t, err, "book with ISBN nope does not exist")
}
