package domain

import (
	"time"
)

// Actions recorded in the activity log.
const (
	ActionLogin            = "login"
	ActionRoleSwitched     = "role_switched"
	ActionPasswordChanged  = "password_changed"
	ActionUserCreated      = "user_created"
	ActionSignupApproved   = "signup_request_approved"
	ActionSignupRejected   = "signup_request_rejected"
	ActionUserDeleted      = "user_deleted"
	ActionUserRestored     = "user_restored"
	ActionCourseCreated    = "course_created"
	ActionCourseDeleted    = "course_deleted"
	ActionCourseRestored   = "course_restored"
	ActionMaterialCreated  = "material_created"
	ActionTeacherAssigned  = "teacher_assigned"
	ActionStudentEnrolled  = "student_enrolled"
	ActionSubmissionMade   = "submission_made"
	ActionSubmissionGraded = "submission_graded"
)

// ActivityLog is an append-only audit record. Rows are written by the
// activity consumer from Kafka events.
type ActivityLog struct {
	ID         string    `json:"id"`
	UserID     string    `json:"user_id"`
	SchoolID   string    `json:"school_id,omitempty"`
	Action     string    `json:"action"`
	EntityType string    `json:"entity_type"`
	EntityID   *string   `json:"entity_id,omitempty"`
	Details    string    `json:"details,omitempty"`
	CreatedAt  time.Time `json:"created_at"`
}

// ActivityLogFilter narrows activity log queries.
type ActivityLogFilter struct {
	UserID string
	Action string
}
