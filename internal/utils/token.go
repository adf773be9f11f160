package utils

import (
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"
)

// tokenBytes is the entropy of every generated token: 32 random bytes,
// 256 bits, hex-encoded to a 64-character string.
const tokenBytes = 32

// GenerateToken returns a cryptographically random opaque token suitable
// for use as a session, refresh, or password-reset credential.
func GenerateToken() (string, error) {
	buf := make([]byte, tokenBytes)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("error generating random token: %w", err)
	}

	return hex.EncodeToString(buf), nil
}

// ParseBearerToken extracts the credential from a raw "Authorization" HTTP
// header value of the standard form:
//
//	Authorization: Bearer <token>
//
// Returns an error if the header does not split into a scheme and a
// non-empty token.
func ParseBearerToken(authorizationHeader string) (string, error) {
	parts := strings.Split(strings.TrimSpace(authorizationHeader), " ")
	if len(parts) != 2 || parts[1] == "" {
		return "", errors.New("invalid authorization header")
	}
	return parts[1], nil
}
