package domain

import (
	"time"
)

// Role identifies a user's position in the school hierarchy.
type Role string

const (
	RoleSuperAdmin Role = "super_admin"
	RolePrincipal  Role = "principal"
	RoleTeacher    Role = "teacher"
	RoleStudent    Role = "student"
)

// Valid reports whether the role is one of the known roles.
func (r Role) Valid() bool {
	switch r {
	case RoleSuperAdmin, RolePrincipal, RoleTeacher, RoleStudent:
		return true
	}
	return false
}

// User represents an account in the system. SchoolID is empty for super
// admins, who operate across all schools.
type User struct {
	ID           string    `json:"id"`
	SchoolID     string    `json:"school_id,omitempty"`
	Name         string    `json:"name"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	Role         Role      `json:"role"`
	IsDeleted    bool      `json:"is_deleted"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// creatableRoles maps each role to the roles it is allowed to create.
var creatableRoles = map[Role][]Role{
	RoleSuperAdmin: {RoleSuperAdmin, RolePrincipal, RoleTeacher, RoleStudent},
	RolePrincipal:  {RoleTeacher, RoleStudent},
}

// CanCreate reports whether a user with role r may create a user with the
// target role.
func (r Role) CanCreate(target Role) bool {
	for _, allowed := range creatableRoles[r] {
		if allowed == target {
			return true
		}
	}
	return false
}

// switchableRoles is the static downward-only role switch table. A user may
// always act as their own role; these are the additional roles they may view
// the system as.
var switchableRoles = map[Role][]Role{
	RoleSuperAdmin: {RolePrincipal, RoleTeacher, RoleStudent},
	RolePrincipal:  {RoleTeacher, RoleStudent},
	RoleTeacher:    {RoleStudent},
}

// CanSwitchTo reports whether a user with base role r may act as the target
// role. Switching to the own base role is always allowed.
func (r Role) CanSwitchTo(target Role) bool {
	if r == target {
		return true
	}
	for _, allowed := range switchableRoles[r] {
		if allowed == target {
			return true
		}
	}
	return false
}

// ApproverRole returns the role whose holders approve password change
// requests for users of role r, or false when changes by r need no approval.
func (r Role) ApproverRole() (Role, bool) {
	switch r {
	case RolePrincipal:
		return RoleSuperAdmin, true
	case RoleTeacher:
		return RolePrincipal, true
	case RoleStudent:
		return RoleTeacher, true
	}
	return "", false
}
