package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/SpyBeast07/lms-system/internal/domain"
	"github.com/SpyBeast07/lms-system/pkg/database"
	apperrors "github.com/SpyBeast07/lms-system/pkg/errors"
	"github.com/SpyBeast07/lms-system/pkg/pagination"
)

// SignupRequestRepository implements repository.SignupRequestRepository using
// PostgreSQL.
type SignupRequestRepository struct {
	db database.DBTX
}

// NewSignupRequestRepository creates a new PostgreSQL-backed signup request
// repository.
func NewSignupRequestRepository(db database.DBTX) *SignupRequestRepository {
	return &SignupRequestRepository{db: db}
}

const signupRequestColumns = `id, name, email, password_hash, requested_role, approved_role, school_id, status, resolved_by, created_at, resolved_at`

// Create stores a new request.
func (r *SignupRequestRepository) Create(ctx context.Context, req *domain.SignupRequest) error {
	query := `
		INSERT INTO signup_requests (id, name, email, password_hash, requested_role, school_id, status, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`

	_, err := r.db.Exec(ctx, query,
		req.ID,
		req.Name,
		req.Email,
		req.PasswordHash,
		req.RequestedRole,
		nullableID(req.SchoolID),
		req.Status,
		req.CreatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return apperrors.AlreadyExists("signup request", "email", req.Email)
		}
		return fmt.Errorf("insert signup request: %w", err)
	}

	return nil
}

// GetByID retrieves a request by ID.
func (r *SignupRequestRepository) GetByID(ctx context.Context, id string) (*domain.SignupRequest, error) {
	query := `SELECT ` + signupRequestColumns + ` FROM signup_requests WHERE id = $1`

	req, err := scanSignupRequest(r.db.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, err
	}

	return req, nil
}

// GetByEmail retrieves the request holding an email, whatever its status.
func (r *SignupRequestRepository) GetByEmail(ctx context.Context, email string) (*domain.SignupRequest, error) {
	query := `SELECT ` + signupRequestColumns + ` FROM signup_requests WHERE email = $1`

	req, err := scanSignupRequest(r.db.QueryRow(ctx, query, email))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, err
	}

	return req, nil
}

// Update rewrites the application fields and resets the resolution state.
// Used when a rejected applicant re-applies with the same email.
func (r *SignupRequestRepository) Update(ctx context.Context, req *domain.SignupRequest) error {
	query := `
		UPDATE signup_requests
		SET name = $1, password_hash = $2, requested_role = $3, school_id = $4,
		    status = $5, approved_role = NULL, resolved_by = NULL, resolved_at = NULL, created_at = $6
		WHERE id = $7`

	ct, err := r.db.Exec(ctx, query,
		req.Name,
		req.PasswordHash,
		req.RequestedRole,
		nullableID(req.SchoolID),
		req.Status,
		req.CreatedAt,
		req.ID,
	)
	if err != nil {
		return fmt.Errorf("update signup request: %w", err)
	}

	if ct.RowsAffected() == 0 {
		return apperrors.NotFound("signup request", req.ID)
	}

	return nil
}

// ListPending returns pending requests for requestedRole, school-scoped when
// schoolID != "".
func (r *SignupRequestRepository) ListPending(ctx context.Context, schoolID string, requestedRole domain.Role, p pagination.Params) ([]domain.SignupRequest, int, error) {
	where := ` WHERE status = 'pending'`
	var args []any
	if schoolID != "" {
		args = append(args, schoolID)
		where += fmt.Sprintf(" AND school_id = $%d", len(args))
	}
	if requestedRole != "" {
		args = append(args, requestedRole)
		where += fmt.Sprintf(" AND requested_role = $%d", len(args))
	}

	var total int
	if err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM signup_requests`+where, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count pending signup requests: %w", err)
	}

	args = append(args, p.PerPage, p.Offset)
	query := fmt.Sprintf(`SELECT %s FROM signup_requests%s ORDER BY created_at ASC LIMIT $%d OFFSET $%d`,
		signupRequestColumns, where, len(args)-1, len(args))

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("list pending signup requests: %w", err)
	}
	defer rows.Close()

	var reqs []domain.SignupRequest
	for rows.Next() {
		req, err := scanSignupRequest(rows)
		if err != nil {
			return nil, 0, err
		}
		reqs = append(reqs, *req)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("iterate signup request rows: %w", err)
	}

	return reqs, total, nil
}

// Resolve transitions a pending request to approved or rejected. The status
// guard in the WHERE clause makes resolution race-free: only one approver can
// win, everyone else sees false.
func (r *SignupRequestRepository) Resolve(ctx context.Context, id string, status domain.SignupRequestStatus, approvedRole *domain.Role, resolvedBy string, resolvedAt time.Time) (bool, error) {
	query := `
		UPDATE signup_requests
		SET status = $1, approved_role = $2, resolved_by = $3, resolved_at = $4
		WHERE id = $5 AND status = 'pending'`

	ct, err := r.db.Exec(ctx, query, status, approvedRole, resolvedBy, resolvedAt, id)
	if err != nil {
		return false, fmt.Errorf("resolve signup request: %w", err)
	}

	return ct.RowsAffected() == 1, nil
}

func scanSignupRequest(row pgx.Row) (*domain.SignupRequest, error) {
	var req domain.SignupRequest
	var approvedRole *string
	var schoolID *string

	err := row.Scan(
		&req.ID,
		&req.Name,
		&req.Email,
		&req.PasswordHash,
		&req.RequestedRole,
		&approvedRole,
		&schoolID,
		&req.Status,
		&req.ResolvedBy,
		&req.CreatedAt,
		&req.ResolvedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, pgx.ErrNoRows
		}
		return nil, fmt.Errorf("scan signup request: %w", err)
	}

	if approvedRole != nil {
		role := domain.Role(*approvedRole)
		req.ApprovedRole = &role
	}
	if schoolID != nil {
		req.SchoolID = *schoolID
	}

	return &req, nil
}
