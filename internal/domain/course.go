package domain

import (
	"time"
)

// Course is a unit of teaching within a school. Teachers are assigned to
// courses and students enroll in them.
type Course struct {
	ID          string    `json:"id"`
	SchoolID    string    `json:"school_id"`
	Title       string    `json:"title"`
	Description string    `json:"description,omitempty"`
	IsDeleted   bool      `json:"is_deleted"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}
