package security

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func TestHashPassword(t *testing.T) {
	hash, err := HashPassword("pw1", bcrypt.MinCost)
	require.NoError(t, err)

	assert.NotEqual(t, "pw1", hash)
	assert.True(t, ComparePasswords(hash, "pw1"))
	assert.False(t, ComparePasswords(hash, "pw2"))
	assert.False(t, ComparePasswords(hash, ""))
}

func TestHashPasswordIsSalted(t *testing.T) {
	a, err := HashPassword("same", bcrypt.MinCost)
	require.NoError(t, err)
	b, err := HashPassword("same", bcrypt.MinCost)
	require.NoError(t, err)

	assert.NotEqual(t, a, b)
}

func TestHashPasswordCostFallback(t *testing.T) {
	hash, err := HashPassword("pw", 0)
	require.NoError(t, err)

	cost, err := bcrypt.Cost([]byte(hash))
	require.NoError(t, err)
	assert.Equal(t, bcrypt.DefaultCost, cost)
}

func TestComparePasswordsGarbageHash(t *testing.T) {
	assert.False(t, ComparePasswords("not-a-bcrypt-hash", "pw"))
}
