package domain

import (
	"time"
)

// TeacherAssignment links a teacher to a course they teach.
type TeacherAssignment struct {
	ID        string    `json:"id"`
	TeacherID string    `json:"teacher_id"`
	CourseID  string    `json:"course_id"`
	CreatedAt time.Time `json:"created_at"`
}

// Enrollment links a student to a course they attend.
type Enrollment struct {
	ID        string    `json:"id"`
	StudentID string    `json:"student_id"`
	CourseID  string    `json:"course_id"`
	CreatedAt time.Time `json:"created_at"`
}

// CourseMember is an enrollment or assignment row joined with the member's
// name, for list endpoints.
type CourseMember struct {
	ID        string    `json:"id"`
	UserID    string    `json:"user_id"`
	UserName  string    `json:"user_name"`
	CourseID  string    `json:"course_id"`
	CreatedAt time.Time `json:"created_at"`
}
