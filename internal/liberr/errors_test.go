package liberr

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestKinds(t *testing.T) {
	assert.True(t, IsValidation(NewValidation("title %v is not a string", "")))
	assert.True(t, IsContent(NewContent("%v is not an e-mail", "x")))
	assert.True(t, IsNotFound(NewNotFound("book with ISBN %s does not exist", "111")))
	assert.True(t, IsNotAllowed(NewNotAllowed("wrong credentials")))

	// Kinds do not overlap
	err := NewNotFound("gone")
	assert.False(t, IsValidation(err))
	assert.False(t, IsContent(err))
	assert.False(t, IsNotAllowed(err))
}

func TestWrappedErrorsKeepTheirKind(t *testing.T) {
	err := fmt.Errorf("failed to borrow: %w", NewNotAllowed("book with ISBN 111 is out of stock"))
	assert.True(t, IsNotAllowed(err))
	assert.EqualError(t, err, "failed to borrow: book with ISBN 111 is out of stock")
}
