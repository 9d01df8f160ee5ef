package hashing

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHashAndCompare(t *testing.T) {
	h := NewHasher(4) // minimum cost keeps the test fast

	hash, err := h.HashPassword("pw123456")
	require.NoError(t, err)
	assert.NotEqual(t, "pw123456", hash)

	assert.NoError(t, h.ComparePassword(hash, "pw123456"))
	assert.ErrorIs(t, h.ComparePassword(hash, "wrong"), ErrPasswordMismatch)
}

func TestNewHasher_ClampsInvalidCost(t *testing.T) {
	h := NewHasher(99)

	hash, err := h.HashPassword("pw")
	require.NoError(t, err)
	assert.NoError(t, h.ComparePassword(hash, "pw"))
}
