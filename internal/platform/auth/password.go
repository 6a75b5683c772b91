package auth

import (
	"fmt"

	"golang.org/x/crypto/bcrypt"
)

// passwordCost is pinned so digests written by one deployment keep verifying
// after upgrades. Bumping it only affects newly hashed passwords.
const passwordCost = 10

// HashPassword returns the bcrypt digest of plain. The digest embeds its own
// salt and cost, so the same password hashes to a different digest each call.
func HashPassword(plain string) (string, error) {
	digest, err := bcrypt.GenerateFromPassword([]byte(plain), passwordCost)
	if err != nil {
		return "", fmt.Errorf("hash password: %w", err)
	}
	return string(digest), nil
}

// CheckPassword reports whether plain matches digest. A malformed or
// truncated digest counts as a mismatch rather than an error.
func CheckPassword(plain, digest string) bool {
	return bcrypt.CompareHashAndPassword([]byte(digest), []byte(plain)) == nil
}
