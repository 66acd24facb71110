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

// RefreshTokenRepository implements repository.RefreshTokenRepository using PostgreSQL.
type RefreshTokenRepository struct {
	db database.DBTX
}

// NewRefreshTokenRepository creates a new PostgreSQL-backed refresh token repository.
func NewRefreshTokenRepository(db database.DBTX) *RefreshTokenRepository {
	return &RefreshTokenRepository{db: db}
}

// Create stores a new refresh token row.
func (r *RefreshTokenRepository) Create(ctx context.Context, t *domain.RefreshToken) error {
	query := `
		INSERT INTO refresh_tokens (id, user_id, token_hash, expires_at, revoked, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)`

	_, err := r.db.Exec(ctx, query, t.ID, t.UserID, t.TokenHash, t.ExpiresAt, t.Revoked, t.CreatedAt)
	if err != nil {
		return fmt.Errorf("insert refresh token: %w", err)
	}

	return nil
}

// ListByUser returns all token rows for a user, newest first. The caller
// verifies the presented secret against each row's bcrypt hash.
func (r *RefreshTokenRepository) ListByUser(ctx context.Context, userID string) ([]domain.RefreshToken, error) {
	query := `
		SELECT id, user_id, token_hash, expires_at, revoked, replaced_by, created_at
		FROM refresh_tokens
		WHERE user_id = $1
		ORDER BY created_at DESC`

	rows, err := r.db.Query(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("list refresh tokens: %w", err)
	}
	defer rows.Close()

	var tokens []domain.RefreshToken
	for rows.Next() {
		var t domain.RefreshToken
		if err := rows.Scan(&t.ID, &t.UserID, &t.TokenHash, &t.ExpiresAt, &t.Revoked, &t.ReplacedBy, &t.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan refresh token row: %w", err)
		}
		tokens = append(tokens, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate refresh token rows: %w", err)
	}

	return tokens, nil
}

// RevokeActive marks the token revoked only if it is still active. The
// conditional update makes concurrent rotations of the same token settle on
// exactly one winner; a false return means the row was already revoked.
func (r *RefreshTokenRepository) RevokeActive(ctx context.Context, id string) (bool, error) {
	query := `UPDATE refresh_tokens SET revoked = TRUE WHERE id = $1 AND revoked = FALSE`

	ct, err := r.db.Exec(ctx, query, id)
	if err != nil {
		return false, fmt.Errorf("revoke refresh token: %w", err)
	}

	return ct.RowsAffected() == 1, nil
}

// Revoke marks the token revoked unconditionally.
func (r *RefreshTokenRepository) Revoke(ctx context.Context, id string) error {
	query := `UPDATE refresh_tokens SET revoked = TRUE WHERE id = $1`

	if _, err := r.db.Exec(ctx, query, id); err != nil {
		return fmt.Errorf("revoke refresh token: %w", err)
	}

	return nil
}

// RevokeAllByUser revokes every active token owned by the user.
func (r *RefreshTokenRepository) RevokeAllByUser(ctx context.Context, userID string) error {
	query := `UPDATE refresh_tokens SET revoked = TRUE WHERE user_id = $1 AND revoked = FALSE`

	if _, err := r.db.Exec(ctx, query, userID); err != nil {
		return fmt.Errorf("revoke refresh tokens by user: %w", err)
	}

	return nil
}

// SetReplacedBy links a rotated-out token to its successor.
func (r *RefreshTokenRepository) SetReplacedBy(ctx context.Context, id, replacedBy string) error {
	query := `UPDATE refresh_tokens SET replaced_by = $1 WHERE id = $2`

	if _, err := r.db.Exec(ctx, query, replacedBy, id); err != nil {
		return fmt.Errorf("set refresh token successor: %w", err)
	}

	return nil
}

// DeleteExpired hard-deletes rows whose expiry is before the cutoff.
func (r *RefreshTokenRepository) DeleteExpired(ctx context.Context, cutoff time.Time) (int64, error) {
	query := `DELETE FROM refresh_tokens WHERE expires_at < $1`

	ct, err := r.db.Exec(ctx, query, cutoff)
	if err != nil {
		return 0, fmt.Errorf("delete expired refresh tokens: %w", err)
	}

	return ct.RowsAffected(), nil
}

// PasswordRequestRepository implements repository.PasswordRequestRepository
// using PostgreSQL.
type PasswordRequestRepository struct {
	db database.DBTX
}

// NewPasswordRequestRepository creates a new PostgreSQL-backed password
// request repository.
func NewPasswordRequestRepository(db database.DBTX) *PasswordRequestRepository {
	return &PasswordRequestRepository{db: db}
}

const (
	passwordRequestColumns         = `id, user_id, school_id, new_password_hash, status, resolved_by, created_at, resolved_at`
	prefixedPasswordRequestColumns = `r.id, r.user_id, r.school_id, r.new_password_hash, r.status, r.resolved_by, r.created_at, r.resolved_at`
)

// Create stages a new request.
func (r *PasswordRequestRepository) Create(ctx context.Context, req *domain.PasswordChangeRequest) error {
	query := `
		INSERT INTO password_change_requests (id, user_id, school_id, new_password_hash, status, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)`

	_, err := r.db.Exec(ctx, query,
		req.ID,
		req.UserID,
		nullableID(req.SchoolID),
		req.NewPasswordHash,
		req.Status,
		req.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert password change request: %w", err)
	}

	return nil
}

// GetByID retrieves a request by ID.
func (r *PasswordRequestRepository) GetByID(ctx context.Context, id string) (*domain.PasswordChangeRequest, error) {
	query := `SELECT ` + passwordRequestColumns + ` FROM password_change_requests WHERE id = $1`

	req, err := scanPasswordRequest(r.db.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, err
	}

	return req, nil
}

// HasPending reports whether the user already has a pending request.
func (r *PasswordRequestRepository) HasPending(ctx context.Context, userID string) (bool, error) {
	query := `SELECT EXISTS(SELECT 1 FROM password_change_requests WHERE user_id = $1 AND status = 'pending')`

	var exists bool
	if err := r.db.QueryRow(ctx, query, userID).Scan(&exists); err != nil {
		return false, fmt.Errorf("check pending password request: %w", err)
	}

	return exists, nil
}

// ListPending returns pending requests from users of targetRole,
// school-scoped when schoolID != "".
func (r *PasswordRequestRepository) ListPending(ctx context.Context, schoolID string, targetRole domain.Role, p pagination.Params) ([]domain.PasswordChangeRequest, int, error) {
	where := ` WHERE r.status = 'pending'`
	var args []any
	if schoolID != "" {
		args = append(args, schoolID)
		where += fmt.Sprintf(" AND r.school_id = $%d", len(args))
	}
	if targetRole != "" {
		args = append(args, targetRole)
		where += fmt.Sprintf(" AND u.role = $%d", len(args))
	}

	from := ` FROM password_change_requests r JOIN users u ON u.id = r.user_id`

	var total int
	if err := r.db.QueryRow(ctx, `SELECT COUNT(*)`+from+where, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count pending password requests: %w", err)
	}

	args = append(args, p.PerPage, p.Offset)
	query := fmt.Sprintf(`SELECT %s%s%s ORDER BY r.created_at ASC LIMIT $%d OFFSET $%d`,
		prefixedPasswordRequestColumns, from, where, len(args)-1, len(args))

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("list pending password requests: %w", err)
	}
	defer rows.Close()

	var reqs []domain.PasswordChangeRequest
	for rows.Next() {
		req, err := scanPasswordRequest(rows)
		if err != nil {
			return nil, 0, err
		}
		reqs = append(reqs, *req)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("iterate password request rows: %w", err)
	}

	return reqs, total, nil
}

// Resolve transitions a pending request to approved or rejected. The status
// guard in the WHERE clause makes resolution race-free: only one approver
// can win, everyone else sees false.
func (r *PasswordRequestRepository) Resolve(ctx context.Context, id string, status domain.PasswordRequestStatus, resolvedBy string, resolvedAt time.Time) (bool, error) {
	query := `
		UPDATE password_change_requests
		SET status = $1, resolved_by = $2, resolved_at = $3
		WHERE id = $4 AND status = 'pending'`

	ct, err := r.db.Exec(ctx, query, status, resolvedBy, resolvedAt, id)
	if err != nil {
		return false, fmt.Errorf("resolve password change request: %w", err)
	}

	return ct.RowsAffected() == 1, nil
}

func scanPasswordRequest(row pgx.Row) (*domain.PasswordChangeRequest, error) {
	var req domain.PasswordChangeRequest
	var schoolID *string

	err := row.Scan(
		&req.ID,
		&req.UserID,
		&schoolID,
		&req.NewPasswordHash,
		&req.Status,
		&req.ResolvedBy,
		&req.CreatedAt,
		&req.ResolvedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, pgx.ErrNoRows
		}
		return nil, fmt.Errorf("scan password change request: %w", err)
	}

	if schoolID != nil {
		req.SchoolID = *schoolID
	}

	return &req, nil
}
