package postgres

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	pgxmock "github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/SpyBeast07/lms-system/internal/domain"
	"github.com/SpyBeast07/lms-system/pkg/database"
	apperrors "github.com/SpyBeast07/lms-system/pkg/errors"
	"github.com/SpyBeast07/lms-system/pkg/pagination"
)

func newTokenTestFixture(t *testing.T) (*RefreshTokenRepository, pgxmock.PgxPoolIface) {
	t.Helper()
	mock, err := database.NewMockPool()
	require.NoError(t, err)
	repo := NewRefreshTokenRepository(mock)
	return repo, mock
}

func sampleToken() *domain.RefreshToken {
	now := time.Now().UTC().Truncate(time.Microsecond)
	return &domain.RefreshToken{
		ID:        "tok-1",
		UserID:    "user-1",
		TokenHash: "$2a$04$fakehash",
		ExpiresAt: now.Add(48 * time.Hour),
		CreatedAt: now,
	}
}

func TestRefreshTokenRepository_Create_Success(t *testing.T) {
	repo, mock := newTokenTestFixture(t)
	defer mock.Close()

	tok := sampleToken()

	mock.ExpectExec("INSERT INTO refresh_tokens").
		WithArgs(tok.ID, tok.UserID, tok.TokenHash, tok.ExpiresAt, tok.Revoked, tok.CreatedAt).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	err := repo.Create(context.Background(), tok)
	assert.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRefreshTokenRepository_ListByUser(t *testing.T) {
	repo, mock := newTokenTestFixture(t)
	defer mock.Close()

	tok := sampleToken()
	rows := pgxmock.NewRows([]string{
		"id", "user_id", "token_hash", "expires_at", "revoked", "replaced_by", "created_at",
	}).AddRow(tok.ID, tok.UserID, tok.TokenHash, tok.ExpiresAt, tok.Revoked, (*string)(nil), tok.CreatedAt)

	mock.ExpectQuery("SELECT .+ FROM refresh_tokens WHERE user_id =").
		WithArgs("user-1").
		WillReturnRows(rows)

	tokens, err := repo.ListByUser(context.Background(), "user-1")
	require.NoError(t, err)
	require.Len(t, tokens, 1)
	assert.Equal(t, "tok-1", tokens[0].ID)
	assert.Nil(t, tokens[0].ReplacedBy)
}

func TestRefreshTokenRepository_RevokeActive_Wins(t *testing.T) {
	repo, mock := newTokenTestFixture(t)
	defer mock.Close()

	mock.ExpectExec("UPDATE refresh_tokens SET revoked = TRUE WHERE id = .+ AND revoked = FALSE").
		WithArgs("tok-1").
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))

	won, err := repo.RevokeActive(context.Background(), "tok-1")
	require.NoError(t, err)
	assert.True(t, won)
}

func TestRefreshTokenRepository_RevokeActive_AlreadyRevoked(t *testing.T) {
	repo, mock := newTokenTestFixture(t)
	defer mock.Close()

	mock.ExpectExec("UPDATE refresh_tokens SET revoked = TRUE WHERE id = .+ AND revoked = FALSE").
		WithArgs("tok-1").
		WillReturnResult(pgxmock.NewResult("UPDATE", 0))

	won, err := repo.RevokeActive(context.Background(), "tok-1")
	require.NoError(t, err)
	assert.False(t, won)
}

func TestRefreshTokenRepository_RevokeAllByUser(t *testing.T) {
	repo, mock := newTokenTestFixture(t)
	defer mock.Close()

	mock.ExpectExec("UPDATE refresh_tokens SET revoked = TRUE WHERE user_id = .+ AND revoked = FALSE").
		WithArgs("user-1").
		WillReturnResult(pgxmock.NewResult("UPDATE", 3))

	err := repo.RevokeAllByUser(context.Background(), "user-1")
	assert.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRefreshTokenRepository_SetReplacedBy(t *testing.T) {
	repo, mock := newTokenTestFixture(t)
	defer mock.Close()

	mock.ExpectExec("UPDATE refresh_tokens SET replaced_by =").
		WithArgs("tok-2", "tok-1").
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))

	err := repo.SetReplacedBy(context.Background(), "tok-1", "tok-2")
	assert.NoError(t, err)
}

func TestRefreshTokenRepository_DeleteExpired(t *testing.T) {
	repo, mock := newTokenTestFixture(t)
	defer mock.Close()

	cutoff := time.Now().UTC()
	mock.ExpectExec("DELETE FROM refresh_tokens WHERE expires_at <").
		WithArgs(cutoff).
		WillReturnResult(pgxmock.NewResult("DELETE", 5))

	deleted, err := repo.DeleteExpired(context.Background(), cutoff)
	require.NoError(t, err)
	assert.Equal(t, int64(5), deleted)
}

func newRequestTestFixture(t *testing.T) (*PasswordRequestRepository, pgxmock.PgxPoolIface) {
	t.Helper()
	mock, err := database.NewMockPool()
	require.NoError(t, err)
	repo := NewPasswordRequestRepository(mock)
	return repo, mock
}

func sampleRequest() *domain.PasswordChangeRequest {
	now := time.Now().UTC().Truncate(time.Microsecond)
	return &domain.PasswordChangeRequest{
		ID:              "req-1",
		UserID:          "user-1",
		SchoolID:        "school-1",
		NewPasswordHash: "$2a$04$staged",
		Status:          domain.PasswordRequestPending,
		CreatedAt:       now,
	}
}

func requestRow(req *domain.PasswordChangeRequest) *pgxmock.Rows {
	return pgxmock.NewRows([]string{
		"id", "user_id", "school_id", "new_password_hash", "status", "resolved_by", "created_at", "resolved_at",
	}).AddRow(
		req.ID, req.UserID, &req.SchoolID, req.NewPasswordHash,
		string(req.Status), req.ResolvedBy, req.CreatedAt, req.ResolvedAt,
	)
}

func TestPasswordRequestRepository_GetByID_Success(t *testing.T) {
	repo, mock := newRequestTestFixture(t)
	defer mock.Close()

	req := sampleRequest()

	mock.ExpectQuery("SELECT .+ FROM password_change_requests WHERE id =").
		WithArgs(req.ID).
		WillReturnRows(requestRow(req))

	got, err := repo.GetByID(context.Background(), req.ID)
	require.NoError(t, err)
	assert.Equal(t, req.ID, got.ID)
	assert.Equal(t, domain.PasswordRequestPending, got.Status)
	assert.Equal(t, "school-1", got.SchoolID)
}

func TestPasswordRequestRepository_GetByID_NotFound(t *testing.T) {
	repo, mock := newRequestTestFixture(t)
	defer mock.Close()

	mock.ExpectQuery("SELECT .+ FROM password_change_requests WHERE id =").
		WithArgs("missing").
		WillReturnError(pgx.ErrNoRows)

	_, err := repo.GetByID(context.Background(), "missing")
	assert.True(t, errors.Is(err, apperrors.ErrNotFound))
}

func TestPasswordRequestRepository_HasPending(t *testing.T) {
	repo, mock := newRequestTestFixture(t)
	defer mock.Close()

	mock.ExpectQuery("SELECT EXISTS").
		WithArgs("user-1").
		WillReturnRows(pgxmock.NewRows([]string{"exists"}).AddRow(true))

	pending, err := repo.HasPending(context.Background(), "user-1")
	require.NoError(t, err)
	assert.True(t, pending)
}

func TestPasswordRequestRepository_ListPending_FiltersBySchoolAndRole(t *testing.T) {
	repo, mock := newRequestTestFixture(t)
	defer mock.Close()

	req := sampleRequest()
	p := pagination.DefaultParams()

	mock.ExpectQuery(`SELECT COUNT\(\*\) FROM password_change_requests r JOIN users u`).
		WithArgs("school-1", domain.RoleTeacher).
		WillReturnRows(pgxmock.NewRows([]string{"count"}).AddRow(1))
	mock.ExpectQuery("SELECT .+ FROM password_change_requests r JOIN users u .+ ORDER BY r.created_at ASC").
		WithArgs("school-1", domain.RoleTeacher, p.PerPage, p.Offset).
		WillReturnRows(requestRow(req))

	reqs, total, err := repo.ListPending(context.Background(), "school-1", domain.RoleTeacher, p)
	require.NoError(t, err)
	assert.Equal(t, 1, total)
	require.Len(t, reqs, 1)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPasswordRequestRepository_Resolve_Wins(t *testing.T) {
	repo, mock := newRequestTestFixture(t)
	defer mock.Close()

	resolvedAt := time.Now().UTC()
	mock.ExpectExec("UPDATE password_change_requests").
		WithArgs(domain.PasswordRequestApproved, "principal-1", resolvedAt, "req-1").
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))

	won, err := repo.Resolve(context.Background(), "req-1", domain.PasswordRequestApproved, "principal-1", resolvedAt)
	require.NoError(t, err)
	assert.True(t, won)
}

func TestPasswordRequestRepository_Resolve_AlreadyResolved(t *testing.T) {
	repo, mock := newRequestTestFixture(t)
	defer mock.Close()

	resolvedAt := time.Now().UTC()
	mock.ExpectExec("UPDATE password_change_requests").
		WithArgs(domain.PasswordRequestRejected, "principal-1", resolvedAt, "req-1").
		WillReturnResult(pgxmock.NewResult("UPDATE", 0))

	won, err := repo.Resolve(context.Background(), "req-1", domain.PasswordRequestRejected, "principal-1", resolvedAt)
	require.NoError(t, err)
	assert.False(t, won)
}
