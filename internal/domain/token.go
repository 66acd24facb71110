package domain

import (
	"time"
)

// RefreshToken is a stored refresh token. Only the bcrypt hash of the token
// secret is persisted; the raw token is returned to the client exactly once.
type RefreshToken struct {
	ID         string    `json:"id"`
	UserID     string    `json:"user_id"`
	TokenHash  string    `json:"-"`
	ExpiresAt  time.Time `json:"expires_at"`
	Revoked    bool      `json:"revoked"`
	ReplacedBy *string   `json:"replaced_by,omitempty"`
	CreatedAt  time.Time `json:"created_at"`
}

// Expired reports whether the token's lifetime has passed at the given time.
func (t *RefreshToken) Expired(now time.Time) bool {
	return !now.Before(t.ExpiresAt)
}

// TokenPair holds an access and refresh token pair returned on login,
// refresh, and role switch.
type TokenPair struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	TokenType    string `json:"token_type"`
}

// PasswordRequestStatus is the lifecycle state of a password change request.
type PasswordRequestStatus string

const (
	PasswordRequestPending  PasswordRequestStatus = "pending"
	PasswordRequestApproved PasswordRequestStatus = "approved"
	PasswordRequestRejected PasswordRequestStatus = "rejected"
)

// PasswordChangeRequest stages a password change awaiting approval. The new
// password is hashed at request time; the plaintext is never stored.
type PasswordChangeRequest struct {
	ID              string                `json:"id"`
	UserID          string                `json:"user_id"`
	SchoolID        string                `json:"school_id,omitempty"`
	NewPasswordHash string                `json:"-"`
	Status          PasswordRequestStatus `json:"status"`
	ResolvedBy      *string               `json:"resolved_by,omitempty"`
	CreatedAt       time.Time             `json:"created_at"`
	ResolvedAt      *time.Time            `json:"resolved_at,omitempty"`
}
