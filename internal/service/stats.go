package service

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/SpyBeast07/lms-system/internal/domain"
	"github.com/SpyBeast07/lms-system/internal/repository"
	redisrepo "github.com/SpyBeast07/lms-system/internal/repository/redis"
	apperrors "github.com/SpyBeast07/lms-system/pkg/errors"
)

// StatsService serves school dashboard counts, cached in Redis. Counts may be
// a cache TTL stale; the dashboard tolerates that.
type StatsService struct {
	statsRepo repository.StatsRepository
	cache     *redisrepo.StatsCache
	logger    *slog.Logger
}

// NewStatsService creates a new stats service. cache may be nil, which
// disables caching.
func NewStatsService(statsRepo repository.StatsRepository, cache *redisrepo.StatsCache, logger *slog.Logger) *StatsService {
	return &StatsService{
		statsRepo: statsRepo,
		cache:     cache,
		logger:    logger,
	}
}

// SchoolStats returns the dashboard counts for a school. Non-super-admins are
// pinned to their own school.
func (s *StatsService) SchoolStats(ctx context.Context, actor Actor, schoolID string) (*domain.SchoolStats, error) {
	if actor.Role != domain.RoleSuperAdmin {
		schoolID = actor.SchoolID
	}
	if schoolID == "" {
		return nil, apperrors.InvalidInput("school_id is required")
	}

	if s.cache != nil {
		cached, err := s.cache.Get(ctx, schoolID)
		if err != nil {
			s.logger.WarnContext(ctx, "stats cache read failed",
				slog.String("school_id", schoolID),
				slog.String("error", err.Error()),
			)
		}
		if cached != nil {
			return cached, nil
		}
	}

	stats, err := s.statsRepo.SchoolStats(ctx, schoolID)
	if err != nil {
		return nil, fmt.Errorf("load school stats: %w", err)
	}

	if s.cache != nil {
		if err := s.cache.Set(ctx, stats); err != nil {
			s.logger.WarnContext(ctx, "stats cache write failed",
				slog.String("school_id", schoolID),
				slog.String("error", err.Error()),
			)
		}
	}

	return stats, nil
}
