package password

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"golang.org/x/crypto/bcrypt"
)

func TestHashAndVerify(t *testing.T) {
	h := NewHasher(bcrypt.MinCost)

	hash, err := h.Hash("Secret123")
	require.NoError(t, err)
	require.NotEqual(t, "Secret123", hash)

	assert.True(t, h.Verify(hash, "Secret123"))
	assert.False(t, h.Verify(hash, "wrong"))
}

func TestHashesAreSalted(t *testing.T) {
	h := NewHasher(bcrypt.MinCost)

	a, err := h.Hash("Secret123")
	require.NoError(t, err)
	b, err := h.Hash("Secret123")
	require.NoError(t, err)

	assert.NotEqual(t, a, b)
}

func TestInvalidCostFallsBack(t *testing.T) {
	h := NewHasher(99)

	hash, err := h.Hash("Secret123")
	require.NoError(t, err)
	assert.True(t, h.Verify(hash, "Secret123"))
}
