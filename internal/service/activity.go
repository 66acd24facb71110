package service

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/SpyBeast07/lms-system/internal/domain"
	"github.com/SpyBeast07/lms-system/internal/event"
	"github.com/SpyBeast07/lms-system/internal/repository"
	"github.com/SpyBeast07/lms-system/pkg/pagination"
)

// ActivityService records audit events and serves the activity log. Writes go
// through Kafka; the activity consumer persists them, so a broker outage never
// fails the triggering request.
type ActivityService struct {
	activityRepo repository.ActivityLogRepository
	producer     *event.Producer
	logger       *slog.Logger
}

// NewActivityService creates a new activity service.
func NewActivityService(activityRepo repository.ActivityLogRepository, producer *event.Producer, logger *slog.Logger) *ActivityService {
	return &ActivityService{
		activityRepo: activityRepo,
		producer:     producer,
		logger:       logger,
	}
}

// Record publishes an activity event. Best effort: failures are logged, never
// surfaced to the caller.
func (s *ActivityService) Record(ctx context.Context, userID, schoolID, action, entityType string, entityID *string, details string) {
	entry := &domain.ActivityLog{
		ID:         uuid.New().String(),
		UserID:     userID,
		SchoolID:   schoolID,
		Action:     action,
		EntityType: entityType,
		EntityID:   entityID,
		Details:    details,
		CreatedAt:  time.Now().UTC(),
	}

	if err := s.producer.PublishActivityRecorded(ctx, entry); err != nil {
		s.logger.ErrorContext(ctx, "failed to publish activity event",
			slog.String("action", action),
			slog.String("user_id", userID),
			slog.String("error", err.Error()),
		)
	}
}

// List returns activity log entries for a school, optionally filtered by user
// and action.
func (s *ActivityService) List(ctx context.Context, schoolID string, filter domain.ActivityLogFilter, p pagination.Params) ([]domain.ActivityLog, int, error) {
	return s.activityRepo.List(ctx, schoolID, filter, p)
}
