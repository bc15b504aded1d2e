package store

import (
	"crypto/hmac"
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
)

// GenerateAPIKey produces a fresh opaque credential token for a device:
// an HMAC-SHA256 of 32 random bytes under the server secret, hex encoded.
// The token authenticates ingestion requests only; it signs nothing.
func GenerateAPIKey(secret string) (string, error) {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("failed to read random bytes: %w", err)
	}
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(buf)
	return hex.EncodeToString(mac.Sum(nil)), nil
}
