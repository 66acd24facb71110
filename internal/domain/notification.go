package domain

import (
	"time"
)

// Notification types used across the features.
const (
	NotificationMaterialAdded     = "material_added"
	NotificationEnrolled          = "enrolled"
	NotificationTeacherAssigned   = "teacher_assigned"
	NotificationSubmissionGraded  = "submission_graded"
	NotificationPasswordRequested = "password_change_requested"
	NotificationPasswordResolved  = "password_change_resolved"
	NotificationSignupRequested   = "signup_requested"
)

// Notification is an in-app message delivered to a single user.
type Notification struct {
	ID        string    `json:"id"`
	UserID    string    `json:"user_id"`
	Type      string    `json:"type"`
	Message   string    `json:"message"`
	EntityID  *string   `json:"entity_id,omitempty"`
	IsRead    bool      `json:"is_read"`
	CreatedAt time.Time `json:"created_at"`
}
