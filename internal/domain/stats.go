package domain

// SchoolStats holds the dashboard counts for a single school.
type SchoolStats struct {
	SchoolID                string `json:"school_id"`
	Principals              int    `json:"principals"`
	Teachers                int    `json:"teachers"`
	Students                int    `json:"students"`
	Courses                 int    `json:"courses"`
	Materials               int    `json:"materials"`
	Submissions             int    `json:"submissions"`
	PendingPasswordRequests int    `json:"pending_password_requests"`
}
