package crypto

import (
	"crypto/rand"
	"encoding/hex"
)

const (
	DefaultTokenLength = 32 // 256 bits
)

// GenerateToken returns a hex-encoded token with byteLength bytes of
// entropy from a cryptographically secure source. Collisions at 256 bits
// are not retried; the storage layer's unique constraint is the backstop.
func GenerateToken(byteLength int) (string, error) {
	if byteLength <= 0 {
		byteLength = DefaultTokenLength
	}

	bytes := make([]byte, byteLength)

	if _, err := rand.Read(bytes); err != nil {
		return "", err
	}

	return hex.EncodeToString(bytes), nil
}
