package utils

import (
	"fmt"

	"golang.org/x/crypto/bcrypt"
)

// HashPassword derives a bcrypt digest from the plain-text password using
// the given work factor. The digest embeds a per-record random salt, so two
// hashes of the same password never compare equal as strings.
//
// Returns an error if the cost is outside bcrypt's supported range or the
// password exceeds bcrypt's 72-byte input limit.
func HashPassword(password string, cost int) (string, error) {
	digest, err := bcrypt.GenerateFromPassword([]byte(password), cost)
	if err != nil {
		return "", fmt.Errorf("error hashing password: %w", err)
	}

	return string(digest), nil
}

// CheckPassword reports whether the plain-text password matches the stored
// bcrypt digest. Comparison time does not depend on how many characters match.
func CheckPassword(hash, password string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}
