package auth

import (
	"crypto/rand"
	"encoding/base64"
	"fmt"
	"strings"
)

// tokenSecretBytes is the entropy of the refresh token secret. 32 bytes keeps
// the base64 form well under bcrypt's 72-byte input limit.
const tokenSecretBytes = 32

// NewRefreshToken generates an opaque refresh token of the form
// "<userID>.<secret>" and returns both the full token and the secret. The
// userID prefix bounds the verify scan to the owner's rows; only the secret
// is hashed and stored.
func NewRefreshToken(userID string) (token, secret string, err error) {
	buf := make([]byte, tokenSecretBytes)
	if _, err := rand.Read(buf); err != nil {
		return "", "", fmt.Errorf("generate token secret: %w", err)
	}
	secret = base64.RawURLEncoding.EncodeToString(buf)
	return userID + "." + secret, secret, nil
}

// SplitRefreshToken splits a raw refresh token into the owner hint and the
// secret. Returns false when the token is not in the expected form.
func SplitRefreshToken(raw string) (userID, secret string, ok bool) {
	userID, secret, found := strings.Cut(raw, ".")
	if !found || userID == "" || secret == "" {
		return "", "", false
	}
	return userID, secret, true
}
