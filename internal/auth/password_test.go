package auth

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func TestPasswordHasher(t *testing.T) {
	hasher := NewPasswordHasher(bcrypt.MinCost)

	hashed, err := hasher.Hash("correct horse")
	require.NoError(t, err)
	assert.NotEqual(t, "correct horse", hashed)

	ok, err := hasher.Matches(hashed, "correct horse")
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = hasher.Matches(hashed, "battery staple")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestPasswordHasherClampsCost(t *testing.T) {
	assert.Equal(t, bcrypt.DefaultCost, NewPasswordHasher(99).cost)
	assert.Equal(t, bcrypt.DefaultCost, NewPasswordHasher(0).cost)
}
