package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/SpyBeast07/lms-system/internal/domain"
	apperrors "github.com/SpyBeast07/lms-system/pkg/errors"
)

func newTestSchoolService() (*SchoolService, *mockSchoolRepository, *mockUserRepository) {
	repo := new(mockSchoolRepository)
	users := new(mockUserRepository)
	return NewSchoolService(repo, users, newTestLogger()), repo, users
}

func TestCreateSchool_Success(t *testing.T) {
	ctx := context.Background()
	svc, repo, _ := newTestSchoolService()

	repo.On("Create", ctx, mock.AnythingOfType("*domain.School")).Return(nil)

	now := time.Now().UTC()
	school, err := svc.Create(ctx, SchoolInput{
		Name:              "Green Valley High",
		Address:           "12 Hill Road",
		SubscriptionStart: now,
		SubscriptionEnd:   now.Add(365 * 24 * time.Hour),
		MaxTeachers:       25,
	})

	require.NoError(t, err)
	assert.NotEmpty(t, school.ID)
	assert.Equal(t, 25, school.MaxTeachers)
	repo.AssertExpectations(t)
}

func TestCreateSchool_InvertedSubscriptionWindow(t *testing.T) {
	ctx := context.Background()
	svc, repo, _ := newTestSchoolService()

	now := time.Now().UTC()
	_, err := svc.Create(ctx, SchoolInput{
		Name:              "Green Valley High",
		SubscriptionStart: now,
		SubscriptionEnd:   now.Add(-time.Hour),
		MaxTeachers:       25,
	})

	var appErr *apperrors.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, "INVALID_INPUT", appErr.Code)
	repo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestUpdateSchool_ShrinkingQuotaAllowed(t *testing.T) {
	ctx := context.Background()
	svc, repo, _ := newTestSchoolService()

	existing := activeSchool("school-1")
	existing.MaxTeachers = 25
	repo.On("GetByID", ctx, "school-1").Return(existing, nil)
	repo.On("Update", ctx, mock.AnythingOfType("*domain.School")).Return(nil)

	updated, err := svc.Update(ctx, "school-1", SchoolInput{
		Name:              existing.Name,
		SubscriptionStart: existing.SubscriptionStart,
		SubscriptionEnd:   existing.SubscriptionEnd,
		MaxTeachers:       2,
	})

	require.NoError(t, err)
	assert.Equal(t, 2, updated.MaxTeachers)
}

func TestCheckSubscription(t *testing.T) {
	ctx := context.Background()
	svc, repo, _ := newTestSchoolService()

	active := activeSchool("school-1")
	expired := activeSchool("school-2")
	expired.SubscriptionEnd = time.Now().UTC().Add(-time.Hour)

	repo.On("GetByID", ctx, "school-1").Return(active, nil)
	repo.On("GetByID", ctx, "school-2").Return(expired, nil)

	assert.NoError(t, svc.CheckSubscription(ctx, "school-1"))
	assert.ErrorIs(t, svc.CheckSubscription(ctx, "school-2"), ErrSubscriptionExpired)
}

func TestListSchools_AttachesPrincipal(t *testing.T) {
	ctx := context.Background()
	svc, repo, users := newTestSchoolService()
	p := pagedParams()

	repo.On("List", ctx, p).Return([]domain.School{*activeSchool("school-1"), *activeSchool("school-2")}, 2, nil)
	users.On("ListByRole", ctx, "school-1", domain.RolePrincipal).Return([]domain.User{
		{ID: "principal-1", Name: "Meera Nair", Email: "meera@school.test", Role: domain.RolePrincipal},
	}, nil)
	users.On("ListByRole", ctx, "school-2", domain.RolePrincipal).Return([]domain.User{}, nil)

	schools, total, err := svc.List(ctx, p)

	require.NoError(t, err)
	assert.Equal(t, 2, total)
	require.NotNil(t, schools[0].Principal)
	assert.Equal(t, "meera@school.test", schools[0].Principal.Email)
	assert.Nil(t, schools[1].Principal)
}

func TestGetSchool_NotFound(t *testing.T) {
	ctx := context.Background()
	svc, repo, _ := newTestSchoolService()

	repo.On("GetByID", ctx, "missing").Return(nil, apperrors.ErrNotFound)

	_, err := svc.Get(ctx, "missing")

	assert.True(t, apperrors.IsNotFound(err))
}

func TestDeleteSchool_Success(t *testing.T) {
	ctx := context.Background()
	svc, repo, _ := newTestSchoolService()

	repo.On("Delete", ctx, "school-1").Return(nil)

	require.NoError(t, svc.Delete(ctx, "school-1"))
	repo.AssertExpectations(t)
}
