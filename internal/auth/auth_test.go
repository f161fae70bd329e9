package auth

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"library-server/internal/models"
)

func TestIssueAndVerify(t *testing.T) {
	m := NewManager("test-secret", time.Hour)

	token, err := m.Issue("user-1", models.RoleMember)
	require.NoError(t, err)
	require.NotEmpty(t, token)

	session, err := m.Verify(token)
	require.NoError(t, err)
	assert.Equal(t, "user-1", session.UserID)
	assert.Equal(t, models.RoleMember, session.Role)
}

func TestVerifyRejectsWrongSecret(t *testing.T) {
	token, err := NewManager("one-secret", time.Hour).Issue("user-1", models.RoleAdmin)
	require.NoError(t, err)

	_, err = NewManager("other-secret", time.Hour).Verify(token)
	assert.Error(t, err)
}

func TestVerifyRejectsExpiredToken(t *testing.T) {
	m := NewManager("test-secret", -time.Minute)

	token, err := m.Issue("user-1", models.RoleMember)
	require.NoError(t, err)

	_, err = m.Verify(token)
	assert.Error(t, err)
}

func TestVerifyRejectsGarbage(t *testing.T) {
	m := NewManager("test-secret", time.Hour)

	_, err := m.Verify("not.a.token")
	assert.Error(t, err)
}

func TestFromHeader(t *testing.T) {
	token, err := FromHeader("Bearer abc.def.ghi")
	require.NoError(t, err)
	assert.Equal(t, "abc.def.ghi", token)

	// Scheme is case-insensitive
	token, err = FromHeader("bearer xyz")
	require.NoError(t, err)
	assert.Equal(t, "xyz", token)

	_, err = FromHeader("")
	assert.EqualError(t, err, "no authorization header provided")

	_, err = FromHeader("Basic abc")
	assert.EqualError(t, err, "invalid authorization header")

	_, err = FromHeader("justatoken")
	assert.Error(t, err)
}
