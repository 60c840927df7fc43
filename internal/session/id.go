package session

import (
	"crypto/rand"
	"encoding/base64"
	"fmt"
)

// generateID generates a cryptographically secure session ID.
// 32 bytes = 256 bits of entropy.
func generateID() (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("session: failed to generate id: %w", err)
	}
	return base64.RawURLEncoding.EncodeToString(b), nil
}
