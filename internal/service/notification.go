package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/SpyBeast07/lms-system/internal/domain"
	"github.com/SpyBeast07/lms-system/internal/repository"
	apperrors "github.com/SpyBeast07/lms-system/pkg/errors"
	"github.com/SpyBeast07/lms-system/pkg/pagination"
)

// NotificationService delivers and serves in-app notifications.
type NotificationService struct {
	notificationRepo repository.NotificationRepository
	logger           *slog.Logger
}

// NewNotificationService creates a new notification service.
func NewNotificationService(notificationRepo repository.NotificationRepository, logger *slog.Logger) *NotificationService {
	return &NotificationService{
		notificationRepo: notificationRepo,
		logger:           logger,
	}
}

// Notify creates a notification for a single user.
func (s *NotificationService) Notify(ctx context.Context, userID, ntype, message string, entityID *string) error {
	n := &domain.Notification{
		ID:        uuid.New().String(),
		UserID:    userID,
		Type:      ntype,
		Message:   message,
		EntityID:  entityID,
		CreatedAt: time.Now().UTC(),
	}

	if err := s.notificationRepo.Create(ctx, n); err != nil {
		return fmt.Errorf("create notification: %w", err)
	}

	return nil
}

// NotifyEach creates the same notification for every user in the list.
// Failures are logged per recipient and do not stop the fan-out.
func (s *NotificationService) NotifyEach(ctx context.Context, userIDs []string, ntype, message string, entityID *string) {
	for _, id := range userIDs {
		if err := s.Notify(ctx, id, ntype, message, entityID); err != nil {
			s.logger.ErrorContext(ctx, "failed to create notification",
				slog.String("user_id", id),
				slog.String("type", ntype),
				slog.String("error", err.Error()),
			)
		}
	}
}

// List returns the user's notifications, newest first.
func (s *NotificationService) List(ctx context.Context, userID string, p pagination.Params) ([]domain.Notification, int, error) {
	return s.notificationRepo.ListByUser(ctx, userID, p)
}

// MarkRead marks a single notification as read. Only the owner may do so.
func (s *NotificationService) MarkRead(ctx context.Context, userID, notificationID string) error {
	n, err := s.notificationRepo.GetByID(ctx, notificationID)
	if err != nil {
		if apperrors.IsNotFound(err) {
			return apperrors.NotFound("notification", notificationID)
		}
		return fmt.Errorf("get notification: %w", err)
	}

	if n.UserID != userID {
		return apperrors.Forbidden("notification belongs to another user")
	}

	return s.notificationRepo.MarkRead(ctx, notificationID)
}

// MarkAllRead marks every notification of the user as read.
func (s *NotificationService) MarkAllRead(ctx context.Context, userID string) error {
	return s.notificationRepo.MarkAllRead(ctx, userID)
}
