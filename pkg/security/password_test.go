package security

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func TestHashAndCompare(t *testing.T) {
	h := NewBcryptHasher(bcrypt.MinCost)

	hash, err := h.Hash("doctor123")
	require.NoError(t, err)
	assert.NotEqual(t, "doctor123", hash)

	assert.NoError(t, h.Compare(hash, "doctor123"))
	assert.Error(t, h.Compare(hash, "doctor124"))
}

func TestHashRejectsShortPassword(t *testing.T) {
	_, err := NewBcryptHasher(bcrypt.MinCost).Hash("12345")
	assert.ErrorIs(t, err, ErrPasswordTooShort)
}

func TestCompareEmptyHash(t *testing.T) {
	assert.Error(t, NewBcryptHasher(0).Compare("", "anything"))
}

func TestNeedsRehash(t *testing.T) {
	cheap := NewBcryptHasher(bcrypt.MinCost)
	hash, err := cheap.Hash("reception123")
	require.NoError(t, err)

	assert.False(t, cheap.NeedsRehash(hash))
	assert.True(t, NewBcryptHasher(bcrypt.MinCost+1).NeedsRehash(hash))
	assert.True(t, cheap.NeedsRehash("not-a-hash"))
}
