package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRole_Valid(t *testing.T) {
	for _, r := range []Role{RoleSuperAdmin, RolePrincipal, RoleTeacher, RoleStudent} {
		assert.True(t, r.Valid(), "role %s should be valid", r)
	}
	assert.False(t, Role("janitor").Valid())
	assert.False(t, Role("").Valid())
}

func TestRole_CanCreate(t *testing.T) {
	tests := []struct {
		actor  Role
		target Role
		want   bool
	}{
		{RoleSuperAdmin, RoleSuperAdmin, true},
		{RoleSuperAdmin, RolePrincipal, true},
		{RoleSuperAdmin, RoleTeacher, true},
		{RoleSuperAdmin, RoleStudent, true},
		{RolePrincipal, RoleTeacher, true},
		{RolePrincipal, RoleStudent, true},
		{RolePrincipal, RolePrincipal, false},
		{RolePrincipal, RoleSuperAdmin, false},
		{RoleTeacher, RoleStudent, false},
		{RoleStudent, RoleStudent, false},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, tt.actor.CanCreate(tt.target),
			"%s creating %s", tt.actor, tt.target)
	}
}

func TestRole_CanSwitchTo(t *testing.T) {
	tests := []struct {
		base   Role
		target Role
		want   bool
	}{
		{RoleSuperAdmin, RolePrincipal, true},
		{RoleSuperAdmin, RoleStudent, true},
		{RolePrincipal, RoleTeacher, true},
		{RolePrincipal, RoleStudent, true},
		{RolePrincipal, RoleSuperAdmin, false},
		{RoleTeacher, RoleStudent, true},
		{RoleTeacher, RolePrincipal, false},
		{RoleStudent, RoleTeacher, false},
		{RoleStudent, RoleStudent, true}, // own role is always allowed
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, tt.base.CanSwitchTo(tt.target),
			"%s switching to %s", tt.base, tt.target)
	}
}

func TestRole_ApproverRole(t *testing.T) {
	approver, ok := RolePrincipal.ApproverRole()
	assert.True(t, ok)
	assert.Equal(t, RoleSuperAdmin, approver)

	approver, ok = RoleTeacher.ApproverRole()
	assert.True(t, ok)
	assert.Equal(t, RolePrincipal, approver)

	approver, ok = RoleStudent.ApproverRole()
	assert.True(t, ok)
	assert.Equal(t, RoleTeacher, approver)

	_, ok = RoleSuperAdmin.ApproverRole()
	assert.False(t, ok)
}
