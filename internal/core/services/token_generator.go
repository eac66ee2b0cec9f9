package services

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
)

// RefreshTokenBytes is the default entropy for generated refresh token
// values. The hex encoding doubles it on the wire.
const RefreshTokenBytes = 32

// GenerateRefreshToken returns a hex string of 2*nbytes characters read
// from the OS entropy source. nbytes <= 0 falls back to the default.
func GenerateRefreshToken(nbytes int) (string, error) {
	if nbytes <= 0 {
		nbytes = RefreshTokenBytes
	}
	b := make([]byte, nbytes)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("failed to read entropy source: %w", err)
	}
	return hex.EncodeToString(b), nil
}
