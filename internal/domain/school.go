package domain

import (
	"time"
)

// School is a tenant. All non-super-admin users, courses, and materials
// belong to exactly one school.
type School struct {
	ID                string           `json:"id"`
	Name              string           `json:"name"`
	Address           string           `json:"address,omitempty"`
	SubscriptionStart time.Time        `json:"subscription_start"`
	SubscriptionEnd   time.Time        `json:"subscription_end"`
	MaxTeachers       int              `json:"max_teachers"`
	Principal         *SchoolPrincipal `json:"principal,omitempty"`
	CreatedAt         time.Time        `json:"created_at"`
	UpdatedAt         time.Time        `json:"updated_at"`
}

// SchoolPrincipal is the principal summary surfaced on school listings.
type SchoolPrincipal struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

// SubscriptionActive reports whether the school's subscription covers the
// given time.
func (s *School) SubscriptionActive(now time.Time) bool {
	return !now.Before(s.SubscriptionStart) && !now.After(s.SubscriptionEnd)
}
