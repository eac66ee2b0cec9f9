package services

import (
	"encoding/hex"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateRefreshToken_HexOfRequestedLength(t *testing.T) {
	token, err := GenerateRefreshToken(16)
	require.NoError(t, err)
	assert.Len(t, token, 32)

	_, err = hex.DecodeString(token)
	assert.NoError(t, err, "output must be valid hex")
}

func TestGenerateRefreshToken_DefaultEntropy(t *testing.T) {
	token, err := GenerateRefreshToken(0)
	require.NoError(t, err)
	assert.Len(t, token, 2*RefreshTokenBytes)
}

func TestGenerateRefreshToken_Unpredictable(t *testing.T) {
	seen := make(map[string]bool)
	for i := 0; i < 100; i++ {
		token, err := GenerateRefreshToken(RefreshTokenBytes)
		require.NoError(t, err)
		assert.False(t, seen[token], "generated values must not repeat")
		seen[token] = true
	}
}
