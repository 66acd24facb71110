package postgres

import (
	"context"
	"fmt"

	"github.com/SpyBeast07/lms-system/internal/domain"
	"github.com/SpyBeast07/lms-system/pkg/database"
)

// StatsRepository implements repository.StatsRepository using PostgreSQL.
type StatsRepository struct {
	db database.DBTX
}

// NewStatsRepository creates a new PostgreSQL-backed stats repository.
func NewStatsRepository(db database.DBTX) *StatsRepository {
	return &StatsRepository{db: db}
}

// SchoolStats aggregates the dashboard counts for a school in one round trip.
func (r *StatsRepository) SchoolStats(ctx context.Context, schoolID string) (*domain.SchoolStats, error) {
	query := `
		SELECT
			(SELECT COUNT(*) FROM users WHERE school_id = $1 AND role = 'principal' AND is_deleted = FALSE),
			(SELECT COUNT(*) FROM users WHERE school_id = $1 AND role = 'teacher' AND is_deleted = FALSE),
			(SELECT COUNT(*) FROM users WHERE school_id = $1 AND role = 'student' AND is_deleted = FALSE),
			(SELECT COUNT(*) FROM courses WHERE school_id = $1 AND is_deleted = FALSE),
			(SELECT COUNT(*) FROM learning_materials lm JOIN courses c ON c.id = lm.course_id
				WHERE c.school_id = $1 AND lm.is_deleted = FALSE),
			(SELECT COUNT(*) FROM submissions s JOIN learning_materials lm ON lm.id = s.assignment_id
				JOIN courses c ON c.id = lm.course_id WHERE c.school_id = $1),
			(SELECT COUNT(*) FROM password_change_requests WHERE school_id = $1 AND status = 'pending')`

	stats := &domain.SchoolStats{SchoolID: schoolID}
	err := r.db.QueryRow(ctx, query, schoolID).Scan(
		&stats.Principals,
		&stats.Teachers,
		&stats.Students,
		&stats.Courses,
		&stats.Materials,
		&stats.Submissions,
		&stats.PendingPasswordRequests,
	)
	if err != nil {
		return nil, fmt.Errorf("aggregate school stats: %w", err)
	}

	return stats, nil
}
