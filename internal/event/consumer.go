package event

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/SpyBeast07/lms-system/internal/domain"
	"github.com/SpyBeast07/lms-system/internal/repository"
	pkgkafka "github.com/SpyBeast07/lms-system/pkg/kafka"
)

// Consumer group ID for the activity log pipeline.
const ConsumerGroupID = "lms-activity-writer"

// ConsumerHandler routes incoming Kafka events to the appropriate handler.
type ConsumerHandler struct {
	activityRepo repository.ActivityLogRepository
	logger       *slog.Logger
}

// NewConsumerHandler creates a new event consumer handler.
func NewConsumerHandler(activityRepo repository.ActivityLogRepository, logger *slog.Logger) *ConsumerHandler {
	return &ConsumerHandler{
		activityRepo: activityRepo,
		logger:       logger,
	}
}

// Handle processes an incoming Kafka event based on its event type.
func (h *ConsumerHandler) Handle(ctx context.Context, event *pkgkafka.Event) error {
	switch event.EventType {
	case TopicActivityRecorded:
		return h.handleActivityRecorded(ctx, event)
	default:
		h.logger.WarnContext(ctx, "unknown event type received",
			slog.String("event_type", event.EventType),
			slog.String("event_id", event.EventID),
		)
		return nil
	}
}

// handleActivityRecorded persists an activity.recorded event to the log.
func (h *ConsumerHandler) handleActivityRecorded(ctx context.Context, event *pkgkafka.Event) error {
	var data ActivityRecordedData
	if err := event.UnmarshalData(&data); err != nil {
		return fmt.Errorf("decode activity.recorded payload: %w", err)
	}

	entry := &domain.ActivityLog{
		ID:         uuid.New().String(),
		UserID:     data.UserID,
		SchoolID:   data.SchoolID,
		Action:     data.Action,
		EntityType: data.EntityType,
		EntityID:   data.EntityID,
		Details:    data.Details,
		CreatedAt:  event.Timestamp,
	}
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = time.Now().UTC()
	}

	if err := h.activityRepo.Create(ctx, entry); err != nil {
		return fmt.Errorf("persist activity log entry: %w", err)
	}

	h.logger.DebugContext(ctx, "activity log entry written",
		slog.String("user_id", entry.UserID),
		slog.String("action", entry.Action),
	)

	return nil
}

// NewConsumers creates Kafka consumers for all topics this service subscribes to.
func NewConsumers(brokers []string, handler *ConsumerHandler, logger *slog.Logger) []*pkgkafka.Consumer {
	topics := []string{
		TopicActivityRecorded,
	}

	consumers := make([]*pkgkafka.Consumer, 0, len(topics))

	for _, topic := range topics {
		cfg := pkgkafka.ConsumerConfig{
			Brokers:  brokers,
			GroupID:  ConsumerGroupID,
			Topic:    topic,
			MinBytes: 1,
			MaxBytes: 10e6,
		}

		consumer := pkgkafka.NewConsumer(cfg, handler.Handle, logger)
		consumers = append(consumers, consumer)
	}

	return consumers
}
