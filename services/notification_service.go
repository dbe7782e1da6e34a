package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/arenaops/esports-platform/models"
	"github.com/arenaops/esports-platform/repositories"
	"golang.org/x/sync/errgroup"
)

// NotificationPusher delivers an event to a user's live connections.
// Implemented by notify.Hub; a nil pusher disables realtime delivery.
type NotificationPusher interface {
	PushNotification(userID int, notification *models.Notification)
}

type NotificationService interface {
	Notify(ctx context.Context, userID int, kind models.NotificationKind, title, body string) error
	// FanOut notifies every user id; individual failures abort the group.
	FanOut(ctx context.Context, userIDs []int, kind models.NotificationKind, title, body string) error
	ListForUser(ctx context.Context, userID int) ([]models.Notification, error)
	MarkRead(ctx context.Context, id, userID int) error
	MarkAllRead(ctx context.Context, userID int) error
}

type notificationService struct {
	notificationRepo repositories.NotificationRepository
	pusher           NotificationPusher
}

func NewNotificationService(notificationRepo repositories.NotificationRepository, pusher NotificationPusher) NotificationService {
	return &notificationService{
		notificationRepo: notificationRepo,
		pusher:           pusher,
	}
}

func (s *notificationService) Notify(ctx context.Context, userID int, kind models.NotificationKind, title, body string) error {
	notification := &models.Notification{
		UserID: userID,
		Kind:   kind,
		Title:  title,
		Body:   body,
	}
	if err := s.notificationRepo.Create(ctx, notification); err != nil {
		return fmt.Errorf("failed to create notification for user %d: %w", userID, err)
	}
	if s.pusher != nil {
		s.pusher.PushNotification(userID, notification)
	}
	return nil
}

func (s *notificationService) FanOut(ctx context.Context, userIDs []int, kind models.NotificationKind, title, body string) error {
	g, gctx := errgroup.WithContext(ctx)
	for _, userID := range userIDs {
		userID := userID
		g.Go(func() error {
			return s.Notify(gctx, userID, kind, title, body)
		})
	}
	return g.Wait()
}

func (s *notificationService) ListForUser(ctx context.Context, userID int) ([]models.Notification, error) {
	notifications, err := s.notificationRepo.ListByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list notifications for user %d: %w", userID, err)
	}
	return notifications, nil
}

func (s *notificationService) MarkRead(ctx context.Context, id, userID int) error {
	if err := s.notificationRepo.MarkRead(ctx, id, userID); err != nil {
		if errors.Is(err, repositories.ErrNotificationNotFound) {
			return ErrNotificationNotFound
		}
		return fmt.Errorf("failed to mark notification %d read: %w", id, err)
	}
	return nil
}

func (s *notificationService) MarkAllRead(ctx context.Context, userID int) error {
	if err := s.notificationRepo.MarkAllRead(ctx, userID); err != nil {
		return fmt.Errorf("failed to mark notifications read for user %d: %w", userID, err)
	}
	return nil
}
