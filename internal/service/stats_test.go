package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/SpyBeast07/lms-system/internal/domain"
	apperrors "github.com/SpyBeast07/lms-system/pkg/errors"
)

func newTestStatsService() (*StatsService, *mockStatsRepository) {
	repo := new(mockStatsRepository)
	// nil cache: cache behavior is covered by the redis repository tests.
	return NewStatsService(repo, nil, newTestLogger()), repo
}

func TestSchoolStats_PrincipalPinnedToOwnSchool(t *testing.T) {
	ctx := context.Background()
	svc, repo := newTestStatsService()

	repo.On("SchoolStats", ctx, "school-1").Return(&domain.SchoolStats{
		SchoolID: "school-1",
		Teachers: 4,
		Students: 120,
	}, nil)

	stats, err := svc.SchoolStats(ctx, principalActor("school-1"), "school-9")

	require.NoError(t, err)
	assert.Equal(t, "school-1", stats.SchoolID)
	assert.Equal(t, 120, stats.Students)
	repo.AssertCalled(t, "SchoolStats", ctx, "school-1")
}

func TestSchoolStats_SuperAdminPicksSchool(t *testing.T) {
	ctx := context.Background()
	svc, repo := newTestStatsService()

	repo.On("SchoolStats", ctx, "school-2").Return(&domain.SchoolStats{SchoolID: "school-2"}, nil)

	stats, err := svc.SchoolStats(ctx, superAdminActor(), "school-2")

	require.NoError(t, err)
	assert.Equal(t, "school-2", stats.SchoolID)
}

func TestSchoolStats_SuperAdminWithoutSchoolID(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestStatsService()

	_, err := svc.SchoolStats(ctx, superAdminActor(), "")

	var appErr *apperrors.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, "INVALID_INPUT", appErr.Code)
}
