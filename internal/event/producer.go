package event

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/SpyBeast07/lms-system/internal/domain"
	pkgkafka "github.com/SpyBeast07/lms-system/pkg/kafka"
)

// Kafka topics for LMS events.
const (
	TopicActivityRecorded = "lms.activity.recorded"
)

// Aggregate type constant.
const AggregateTypeActivity = "activity"

// Source identifier for events originating from this service.
const SourceLMS = "lms"

// ActivityRecordedData is the payload for an activity.recorded event.
type ActivityRecordedData struct {
	UserID     string  `json:"user_id"`
	SchoolID   string  `json:"school_id,omitempty"`
	Action     string  `json:"action"`
	EntityType string  `json:"entity_type"`
	EntityID   *string `json:"entity_id,omitempty"`
	Details    string  `json:"details,omitempty"`
}

// Producer publishes LMS domain events to Kafka.
type Producer struct {
	kafka  *pkgkafka.Producer
	logger *slog.Logger
}

// NewProducer creates a new event producer.
func NewProducer(kafka *pkgkafka.Producer, logger *slog.Logger) *Producer {
	return &Producer{
		kafka:  kafka,
		logger: logger,
	}
}

// PublishActivityRecorded publishes an activity.recorded event. The activity
// consumer persists it to the activity log.
func (p *Producer) PublishActivityRecorded(ctx context.Context, entry *domain.ActivityLog) error {
	data := ActivityRecordedData{
		UserID:     entry.UserID,
		SchoolID:   entry.SchoolID,
		Action:     entry.Action,
		EntityType: entry.EntityType,
		EntityID:   entry.EntityID,
		Details:    entry.Details,
	}

	event, err := pkgkafka.NewEvent(TopicActivityRecorded, entry.UserID, AggregateTypeActivity, SourceLMS, data)
	if err != nil {
		return fmt.Errorf("create activity.recorded event: %w", err)
	}

	if err := p.kafka.Publish(ctx, TopicActivityRecorded, event); err != nil {
		return fmt.Errorf("publish activity.recorded event: %w", err)
	}

	p.logger.DebugContext(ctx, "published activity.recorded event",
		slog.String("user_id", entry.UserID),
		slog.String("action", entry.Action),
	)

	return nil
}
