// Package password provides one-way password hashing and verification
// backed by bcrypt.
package password

import (
	"fmt"

	"golang.org/x/crypto/bcrypt"
)

// DefaultCost is the default bcrypt work factor.
const DefaultCost = 8

// Hasher hashes and verifies passwords with a fixed work factor.
type Hasher struct {
	cost int
}

// NewHasher creates a Hasher. Costs outside the bcrypt range fall back to
// DefaultCost.
func NewHasher(cost int) Hasher {
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		cost = DefaultCost
	}
	return Hasher{cost: cost}
}

// Hash returns a salted one-way digest of the plaintext.
func (h Hasher) Hash(plain string) (string, error) {
	cost := h.cost
	if cost == 0 {
		cost = DefaultCost
	}
	digest, err := bcrypt.GenerateFromPassword([]byte(plain), cost)
	if err != nil {
		return "", fmt.Errorf("hash password: %w", err)
	}
	return string(digest), nil
}

// Compare reports whether the plaintext matches the digest. Malformed
// digests compare as false, never as an error.
func (h Hasher) Compare(plain, digest string) bool {
	return bcrypt.CompareHashAndPassword([]byte(digest), []byte(plain)) == nil
}
