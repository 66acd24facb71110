package domain

import (
	"time"
)

// Submission is a student's answer to an assignment. FileKey is the object
// storage key; a presigned download URL is resolved when the submission is
// read.
type Submission struct {
	ID           string     `json:"id"`
	AssignmentID string     `json:"assignment_id"`
	StudentID    string     `json:"student_id"`
	FileKey      string     `json:"file_key"`
	FileURL      string     `json:"file_url,omitempty"`
	Grade        *int       `json:"grade,omitempty"`
	Feedback     *string    `json:"feedback,omitempty"`
	GradedBy     *string    `json:"graded_by,omitempty"`
	GradedAt     *time.Time `json:"graded_at,omitempty"`
	SubmittedAt  time.Time  `json:"submitted_at"`
}

// Graded reports whether the submission has been graded.
func (s *Submission) Graded() bool {
	return s.GradedAt != nil
}
