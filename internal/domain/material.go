package domain

import (
	"time"
)

// MaterialType distinguishes notes from assignments.
type MaterialType string

const (
	MaterialNote       MaterialType = "note"
	MaterialAssignment MaterialType = "assignment"
)

// AssignmentType is the format of an assignment.
type AssignmentType string

const (
	AssignmentMCQ  AssignmentType = "mcq"
	AssignmentLong AssignmentType = "long"
)

// LearningMaterial is a note or an assignment attached to a course. The
// assignment fields are nil for notes; ContentURL is nil for assignments.
type LearningMaterial struct {
	ID             string          `json:"id"`
	CourseID       string          `json:"course_id"`
	Title          string          `json:"title"`
	Type           MaterialType    `json:"material_type"`
	ContentURL     *string         `json:"content_url,omitempty"`
	Description    *string         `json:"description,omitempty"`
	AssignmentType *AssignmentType `json:"assignment_type,omitempty"`
	TotalMarks     *int            `json:"total_marks,omitempty"`
	DueDate        *time.Time      `json:"due_date,omitempty"`
	MaxAttempts    *int            `json:"max_attempts,omitempty"`
	CreatedBy      string          `json:"created_by"`
	IsDeleted      bool            `json:"is_deleted"`
	CreatedAt      time.Time       `json:"created_at"`
	UpdatedAt      time.Time       `json:"updated_at"`
}
