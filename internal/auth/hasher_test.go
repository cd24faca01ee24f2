package auth

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"golang.org/x/crypto/bcrypt"
)

func TestBcryptHasherRoundTrip(t *testing.T) {
	h := BcryptHasher{Cost: bcrypt.MinCost}

	hash, err := h.Hash("correct horse")
	require.NoError(t, err)
	require.NotEmpty(t, hash)

	assert.True(t, h.Verify(hash, "correct horse"))
	assert.False(t, h.Verify(hash, "battery staple"))
}

func TestBcryptHasherRejectsGarbageHash(t *testing.T) {
	h := BcryptHasher{}

	assert.False(t, h.Verify("not-a-bcrypt-hash", "anything"))
}
