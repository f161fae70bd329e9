package logic

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"library-server/internal/liberr"
	"library-server/internal/models"
)

func TestAddBookCreates(t *testing.T) {
	svc, db, _ := testService(t)
	ctx := context.Background()

	adminID := seedAdmin(t, db, "admin@mail.com")

	err := svc.AddBook(ctx, adminID, models.Book{
		Title:             "The Go Programming Language",
		ISBN:              "978-0134190440",
		Author:            "Donovan & Kernighan",
		YearOfPublication: 2015,
	}, 5)
	require.NoError(t, err)

	book, err := db.GetBookByISBN(ctx, "978-0134190440")
	require.NoError(t, err)
	require.NotNil(t, book)
	assert.Equal(t, 5, book.Stock)
	assert.Equal(t, models.StatusAvailable, book.Status)
	assert.Equal(t, svc.now(), book.Added)

	// The creating admin registers the book
	admin, err := db.GetAdminByID(ctx, adminID)
	require.NoError(t, err)
	assert.Equal(t, []string{book.ID}, admin.AddedBooks)
}

func TestAddBookRestocksAdditively(t *testing.T) {
	svc, db, _ := testService(t)
	ctx := context.Background()

	adminID := seedAdmin(t, db, "admin@mail.com")

	require.NoError(t, svc.AddBook(ctx, adminID, models.Book{Title: "Dune", ISBN: "111"}, 3))
	require.NoError(t, svc.AddBook(ctx, adminID, models.Book{Title: "Dune", ISBN: "111"}, 4))

	books, err := db.ListBooks(ctx)
	require.NoError(t, err)
	require.Len(t, books, 1)
	assert.Equal(t, 7, books[0].Stock)
}

func TestAddBookTitleMismatch(t *testing.T) {
	svc, db, _ := testService(t)
	ctx := context.Background()

	adminID := seedAdmin(t, db, "admin@mail.com")

	require.NoError(t, svc.AddBook(ctx, adminID, models.Book{Title: "Dune", ISBN: "111"}, 3))

	err := svc.AddBook(ctx, adminID, models.Book{Title: "Neuromancer", ISBN: "111"}, 2)
	require.Error(t, err)
	assert.True(t, liberr.IsNotAllowed(err))
	assert.EqualError(t, err, "book with title Neuromancer has a different ISBN")

	// No mutation happened
	book, err := db.GetBookByISBN(ctx, "111")
	require.NoError(t, err)
	assert.Equal(t, 3, book.Stock)
	assert.Equal(t, "Dune", book.Title)
}

func TestAddBookUnknownAdmin(t *testing.T) {
	svc, _, _ := testService(t)

	err := svc.AddBook(context.Background(), "ghost", models.Book{Title: "Dune", ISBN: "111"}, 1)
	require.Error(t, err)
	assert.True(t, liberr.IsNotFound(err))
	assert.EqualError(t, err, "admin with id ghost does not exist")
}

func TestAddBookSettlesRequests(t *testing.T) {
	svc, db, _ := testService(t)
	ctx := context.Background()

	adminID := seedAdmin(t, db, "admin@mail.com")
	memberID := seedMember(t, db, "member@mail.com")
	otherID := seedMember(t, db, "other@mail.com")

	require.NoError(t, svc.RequestBook(ctx, memberID, "111"))
	require.NoError(t, svc.RequestBook(ctx, otherID, "111"))
	require.NoError(t, svc.RequestBook(ctx, otherID, "222"))

	require.NoError(t, svc.AddBook(ctx, adminID, models.Book{Title: "Dune", ISBN: "111"}, 2))

	// Requests for the added ISBN are gone, the unrelated one stays
	remaining, err := db.ListRequests(ctx)
	require.NoError(t, err)
	require.Len(t, remaining, 1)
	assert.Equal(t, "222", remaining[0].ISBN)

	// Each requester earns a +1 borrow limit bonus
	member, err := db.GetMemberByID(ctx, memberID)
	require.NoError(t, err)
	assert.Equal(t, 3, member.BorrowLimit)

	other, err := db.GetMemberByID(ctx, otherID)
	require.NoError(t, err)
	assert.Equal(t, 3, other.BorrowLimit)
}

func TestAddBookBonusCapped(t *testing.T) {
	svc, db, _ := testService(t)
	ctx := context.Background()

	adminID := seedAdmin(t, db, "admin@mail.com")
	memberID := seedMember(t, db, "member@mail.com")
	require.NoError(t, db.SetBorrowLimit(ctx, memberID, 4))

	require.NoError(t, svc.RequestBook(ctx, memberID, "111"))
	require.NoError(t, svc.AddBook(ctx, adminID, models.Book{Title: "Dune", ISBN: "111"}, 1))

	member, err := db.GetMemberByID(ctx, memberID)
	require.NoError(t, err)
	assert.Equal(t, 4, member.BorrowLimit)
}

func TestUpdateBookOverwrites(t *testing.T) {
	svc, db, _ := testService(t)
	ctx := context.Background()

	adminID := seedAdmin(t, db, "admin@mail.com")
	seedBook(t, db, "111", "Dune", 3)

	err := svc.UpdateBook(ctx, adminID, models.Book{
		Title:       "Dune",
		ISBN:        "111",
		Description: "Arrakis, the desert planet",
		Author:      "Frank Herbert",
		Stock:       10,
	})
	require.NoError(t, err)

	book, err := db.GetBookByISBN(ctx, "111")
	require.NoError(t, err)
	assert.Equal(t, "Frank Herbert", book.Author)
	assert.Equal(t, 10, book.Stock)
	assert.Equal(t, models.StatusAvailable, book.Status)
}

func TestUpdateBookUnknownISBN(t *testing.T) {
	svc, db, _ := testService(t)

	adminID := seedAdmin(t, db, "admin@mail.com")

	err := svc.UpdateBook(context.Background(), adminID, models.Book{Title: "Dune", ISBN: "nope", Stock: 1})
	require.Error(t, err)
	assert.True(t, liberr.IsNotFound(err))
	assert.EqualError(t, err, "book with ISBN nope does not exist")
}

func TestRemoveBookCascades(t *testing.T) {
	svc, db, _ := testService(t)
	ctx := context.Background()

	adminID := seedAdmin(t, db, "admin@mail.com")
	memberID := seedMember(t, db, "member@mail.com")

	require.NoError(t, svc.AddBook(ctx, adminID, models.Book{Title: "Dune", ISBN: "111"}, 2))
	require.NoError(t, svc.BorrowBook(ctx, memberID, "111"))
	require.NoError(t, svc.ToggleWishlist(ctx, memberID, "111"))

	book, err := db.GetBookByISBN(ctx, "111")
	require.NoError(t, err)

	require.NoError(t, svc.RemoveBook(ctx, adminID, "111"))

	// Book record is gone
	gone, err := db.GetBookByISBN(ctx, "111")
	require.NoError(t, err)
	assert.Nil(t, gone)

	// Loans, wishlists and added-book references are all cleaned up
	loans, err := db.ListLoans(ctx)
	require.NoError(t, err)
	assert.Empty(t, loans)

	member, err := db.GetMemberByID(ctx, memberID)
	require.NoError(t, err)
	assert.NotContains(t, member.Wishlist, book.ID)

	admin, err := db.GetAdminByID(ctx, adminID)
	require.NoError(t, err)
	assert.NotContains(t, admin.AddedBooks, book.ID)
}

func TestRetrieveBooks(t *testing.T) {
	svc, db, _ := testService(t)
	ctx := context.Background()

	seedBook(t, db, "222", "Neuromancer", 1)
	seedBook(t, db, "111", "Dune", 0)

	books, err := svc.RetrieveBooks(ctx)
	require.NoError(t, err)
	require.Len(t, books, 2)
	assert.Equal(t, "Dune", books[0].Title)
	assert.Equal(t, models.StatusUnavailable, books[0].Status)
	assert.Equal(t, "Neuromancer", books[1].Title)
}
