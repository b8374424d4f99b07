// Package identity generates the anonymous user identifiers used by the
// persistent assistant. Identifiers are opaque tokens, practically unique
// but not cryptographically guaranteed.
package identity

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"strings"
)

const (
	// Prefix is prepended to every generated identifier
	Prefix = "user-"
	// TokenLength is the number of characters in the random portion
	TokenLength = 8
)

// Generate produces a new identifier of the form "user-" + 8 hex chars.
// It fails only if the system random source is unavailable, which is fatal
// for the caller; there is no retry.
func Generate() (string, error) {
	buf := make([]byte, TokenLength/2)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("failed to read random source: %w", err)
	}
	return Prefix + hex.EncodeToString(buf), nil
}

// Valid reports whether id looks like a generated identifier
func Valid(id string) bool {
	if !strings.HasPrefix(id, Prefix) {
		return false
	}
	token := strings.TrimPrefix(id, Prefix)
	if len(token) != TokenLength {
		return false
	}
	_, err := hex.DecodeString(token)
	return err == nil
}
