package domain

import (
	"time"
)

// SignupRequestStatus is the lifecycle state of a signup request.
type SignupRequestStatus string

const (
	SignupRequestPending  SignupRequestStatus = "pending"
	SignupRequestApproved SignupRequestStatus = "approved"
	SignupRequestRejected SignupRequestStatus = "rejected"
)

// SignupRequest is a public account application awaiting tiered approval.
// The password is hashed at submission time; approval turns the request into
// a user carrying that hash.
type SignupRequest struct {
	ID            string              `json:"id"`
	Name          string              `json:"name"`
	Email         string              `json:"email"`
	PasswordHash  string              `json:"-"`
	RequestedRole Role                `json:"requested_role"`
	ApprovedRole  *Role               `json:"approved_role,omitempty"`
	SchoolID      string              `json:"school_id,omitempty"`
	Status        SignupRequestStatus `json:"status"`
	ResolvedBy    *string             `json:"resolved_by,omitempty"`
	CreatedAt     time.Time           `json:"created_at"`
	ResolvedAt    *time.Time          `json:"resolved_at,omitempty"`
}

// Requestable reports whether the role may be applied for through public
// signup. Super admin accounts are only provisioned internally.
func (r Role) Requestable() bool {
	switch r {
	case RolePrincipal, RoleTeacher, RoleStudent:
		return true
	}
	return false
}
