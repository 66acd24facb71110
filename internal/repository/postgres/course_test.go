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

func newCourseTestFixture(t *testing.T) (*CourseRepository, pgxmock.PgxPoolIface) {
	t.Helper()
	mock, err := database.NewMockPool()
	require.NoError(t, err)
	repo := NewCourseRepository(mock)
	return repo, mock
}

func sampleCourse() *domain.Course {
	now := time.Now().UTC().Truncate(time.Microsecond)
	return &domain.Course{
		ID:          "course-1",
		SchoolID:    "school-1",
		Title:       "Algebra II",
		Description: "Quadratics and beyond",
		CreatedAt:   now,
		UpdatedAt:   now,
	}
}

func courseRow(c *domain.Course) *pgxmock.Rows {
	return pgxmock.NewRows([]string{
		"id", "school_id", "title", "description", "is_deleted", "created_at", "updated_at",
	}).AddRow(c.ID, c.SchoolID, c.Title, c.Description, c.IsDeleted, c.CreatedAt, c.UpdatedAt)
}

func TestCourseRepository_Create_Success(t *testing.T) {
	repo, mock := newCourseTestFixture(t)
	defer mock.Close()

	c := sampleCourse()

	mock.ExpectExec("INSERT INTO courses").
		WithArgs(c.ID, c.SchoolID, c.Title, c.Description, c.IsDeleted, c.CreatedAt, c.UpdatedAt).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	err := repo.Create(context.Background(), c)
	assert.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCourseRepository_GetByID_IncludesDeleted(t *testing.T) {
	repo, mock := newCourseTestFixture(t)
	defer mock.Close()

	c := sampleCourse()
	c.IsDeleted = true

	mock.ExpectQuery("SELECT .+ FROM courses WHERE id =").
		WithArgs(c.ID).
		WillReturnRows(courseRow(c))

	got, err := repo.GetByID(context.Background(), c.ID)
	require.NoError(t, err)
	assert.True(t, got.IsDeleted)
}

func TestCourseRepository_GetByID_NotFound(t *testing.T) {
	repo, mock := newCourseTestFixture(t)
	defer mock.Close()

	mock.ExpectQuery("SELECT .+ FROM courses WHERE id =").
		WithArgs("missing").
		WillReturnError(pgx.ErrNoRows)

	_, err := repo.GetByID(context.Background(), "missing")
	assert.True(t, errors.Is(err, apperrors.ErrNotFound))
}

func TestCourseRepository_ListBySchool_ExcludesDeleted(t *testing.T) {
	repo, mock := newCourseTestFixture(t)
	defer mock.Close()

	c := sampleCourse()
	p := pagination.DefaultParams()

	mock.ExpectQuery(`SELECT COUNT\(\*\) FROM courses WHERE school_id = .+ AND is_deleted = FALSE`).
		WithArgs("school-1").
		WillReturnRows(pgxmock.NewRows([]string{"count"}).AddRow(1))
	mock.ExpectQuery("SELECT .+ FROM courses .+ WHERE school_id = .+ AND is_deleted = FALSE .+ ORDER BY created_at DESC").
		WithArgs("school-1", p.PerPage, p.Offset).
		WillReturnRows(courseRow(c))

	courses, total, err := repo.ListBySchool(context.Background(), "school-1", p)
	require.NoError(t, err)
	assert.Equal(t, 1, total)
	require.Len(t, courses, 1)
	assert.Equal(t, "Algebra II", courses[0].Title)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCourseRepository_ListByTeacher_JoinsAssignments(t *testing.T) {
	repo, mock := newCourseTestFixture(t)
	defer mock.Close()

	c := sampleCourse()
	p := pagination.DefaultParams()

	mock.ExpectQuery(`SELECT COUNT\(\*\) FROM courses c\s+JOIN teacher_courses tc`).
		WithArgs("teacher-1").
		WillReturnRows(pgxmock.NewRows([]string{"count"}).AddRow(1))
	mock.ExpectQuery("SELECT .+ FROM courses c .+ JOIN teacher_courses tc .+ WHERE tc.teacher_id =").
		WithArgs("teacher-1", p.PerPage, p.Offset).
		WillReturnRows(courseRow(c))

	courses, total, err := repo.ListByTeacher(context.Background(), "teacher-1", p)
	require.NoError(t, err)
	assert.Equal(t, 1, total)
	require.Len(t, courses, 1)
}

func TestCourseRepository_Update_NotFound(t *testing.T) {
	repo, mock := newCourseTestFixture(t)
	defer mock.Close()

	c := sampleCourse()
	c.ID = "missing"

	mock.ExpectExec("UPDATE courses SET title =").
		WithArgs(c.Title, c.Description, pgxmock.AnyArg(), c.ID).
		WillReturnResult(pgxmock.NewResult("UPDATE", 0))

	err := repo.Update(context.Background(), c)
	assert.True(t, errors.Is(err, apperrors.ErrNotFound))
}

func TestCourseRepository_SetDeleted_Success(t *testing.T) {
	repo, mock := newCourseTestFixture(t)
	defer mock.Close()

	mock.ExpectExec("UPDATE courses SET is_deleted =").
		WithArgs(true, pgxmock.AnyArg(), "course-1").
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))

	err := repo.SetDeleted(context.Background(), "course-1", true)
	assert.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}
