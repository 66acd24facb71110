package auth

import (
	"fmt"

	"golang.org/x/crypto/bcrypt"
)

// bcryptCost is deliberately above the library default. Login and refresh
// are not hot paths; credential hashes leak in database dumps.
const bcryptCost = 12

// Hasher hashes and verifies passwords and refresh token secrets.
type Hasher struct {
	cost int
}

// NewHasher creates a Hasher with the standard cost.
func NewHasher() *Hasher {
	return &Hasher{cost: bcryptCost}
}

// HashPassword returns the bcrypt hash of the given password.
func (h *Hasher) HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), h.cost)
	if err != nil {
		return "", fmt.Errorf("hash password: %w", err)
	}
	return string(hash), nil
}

// VerifyPassword reports whether the password matches the stored hash.
func (h *Hasher) VerifyPassword(password, hash string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}

// HashToken hashes a refresh token secret. Refresh tokens get the same
// treatment as passwords since a stolen one grants a session.
func (h *Hasher) HashToken(secret string) (string, error) {
	return h.HashPassword(secret)
}

// VerifyToken reports whether the token secret matches the stored hash.
func (h *Hasher) VerifyToken(secret, hash string) bool {
	return h.VerifyPassword(secret, hash)
}
