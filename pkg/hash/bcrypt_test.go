package hash

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHashAndVerify(t *testing.T) {
	// Minimum cost keeps the test fast
	hasher := NewHasher(4)

	encoded, err := hasher.Hash("Str0ng!pass")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(encoded, "$2"))
	assert.NotContains(t, encoded, "Str0ng!pass")

	assert.True(t, hasher.Verify("Str0ng!pass", encoded))
	assert.False(t, hasher.Verify("wrong-password", encoded))
	assert.False(t, hasher.Verify("Str0ng!pass", "not-a-hash"))
}

func TestHashIsSalted(t *testing.T) {
	hasher := NewHasher(4)

	first, err := hasher.Hash("Str0ng!pass")
	require.NoError(t, err)
	second, err := hasher.Hash("Str0ng!pass")
	require.NoError(t, err)

	assert.NotEqual(t, first, second)
}

func TestNewHasherClampsCost(t *testing.T) {
	// Out-of-range costs fall back to the default work factor; the
	// resulting hashes must still verify.
	hasher := NewHasher(99)

	encoded, err := hasher.Hash("Str0ng!pass")
	require.NoError(t, err)
	assert.True(t, hasher.Verify("Str0ng!pass", encoded))
}
