package postgres

import (
	"context"
	"fmt"
	"strings"

	"github.com/SpyBeast07/lms-system/internal/domain"
	"github.com/SpyBeast07/lms-system/pkg/database"
	"github.com/SpyBeast07/lms-system/pkg/pagination"
)

// ActivityLogRepository implements repository.ActivityLogRepository using PostgreSQL.
type ActivityLogRepository struct {
	db database.DBTX
}

// NewActivityLogRepository creates a new PostgreSQL-backed activity log repository.
func NewActivityLogRepository(db database.DBTX) *ActivityLogRepository {
	return &ActivityLogRepository{db: db}
}

// Create appends an activity log entry.
func (r *ActivityLogRepository) Create(ctx context.Context, e *domain.ActivityLog) error {
	query := `
		INSERT INTO activity_logs (id, user_id, school_id, action, entity_type, entity_id, details, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`

	_, err := r.db.Exec(ctx, query,
		e.ID,
		e.UserID,
		nullableID(e.SchoolID),
		e.Action,
		e.EntityType,
		e.EntityID,
		e.Details,
		e.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert activity log: %w", err)
	}

	return nil
}

// List returns activity log entries, newest first, filtered by school, user,
// and action. schoolID == "" means all schools.
func (r *ActivityLogRepository) List(ctx context.Context, schoolID string, filter domain.ActivityLogFilter, p pagination.Params) ([]domain.ActivityLog, int, error) {
	var conds []string
	var args []any

	if schoolID != "" {
		args = append(args, schoolID)
		conds = append(conds, fmt.Sprintf("school_id = $%d", len(args)))
	}
	if filter.UserID != "" {
		args = append(args, filter.UserID)
		conds = append(conds, fmt.Sprintf("user_id = $%d", len(args)))
	}
	if filter.Action != "" {
		args = append(args, filter.Action)
		conds = append(conds, fmt.Sprintf("action = $%d", len(args)))
	}

	where := ""
	if len(conds) > 0 {
		where = " WHERE " + strings.Join(conds, " AND ")
	}

	var total int
	if err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM activity_logs`+where, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count activity logs: %w", err)
	}

	args = append(args, p.PerPage, p.Offset)
	query := fmt.Sprintf(`
		SELECT id, user_id, school_id, action, entity_type, entity_id, details, created_at
		FROM activity_logs%s
		ORDER BY created_at DESC LIMIT $%d OFFSET $%d`,
		where, len(args)-1, len(args))

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("list activity logs: %w", err)
	}
	defer rows.Close()

	var entries []domain.ActivityLog
	for rows.Next() {
		var e domain.ActivityLog
		var sid *string
		if err := rows.Scan(&e.ID, &e.UserID, &sid, &e.Action, &e.EntityType, &e.EntityID, &e.Details, &e.CreatedAt); err != nil {
			return nil, 0, fmt.Errorf("scan activity log row: %w", err)
		}
		if sid != nil {
			e.SchoolID = *sid
		}
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("iterate activity log rows: %w", err)
	}

	return entries, total, nil
}
