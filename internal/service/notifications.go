package service

import (
	"context"

	"discovrr/internal/models"
	"discovrr/internal/notifications"
	"discovrr/internal/repository"
	"discovrr/internal/store"
	"discovrr/internal/thunk"
)

// NotificationService issues notification actions and feeds pushed
// notifications into the store.
type NotificationService struct {
	d        *thunk.Dispatcher
	repo     repository.NotificationRepository
	notifier *notifications.Notifier
}

// NewNotificationService creates a new notification service. A nil notifier
// disables Listen.
func NewNotificationService(d *thunk.Dispatcher, repo repository.NotificationRepository, notifier *notifications.Notifier) *NotificationService {
	return &NotificationService{d: d, repo: repo, notifier: notifier}
}

// FetchNotifications replaces the list with the signed-in user's notifications.
func (s *NotificationService) FetchNotifications(ctx context.Context) ([]models.Notification, error) {
	profileID, err := requireViewer(s.d)
	if err != nil {
		return nil, err
	}
	return fetchAll(ctx, s.d, "notifications/fetchAll", true, func(ctx context.Context) ([]models.Notification, error) {
		return s.repo.ListForProfile(ctx, profileID, repository.Page{Limit: fetchAllLimit})
	})
}

// DidReceiveNotification records a notification delivered by the push provider.
func (s *NotificationService) DidReceiveNotification(n models.Notification) {
	s.d.Dispatch(store.DidReceiveNotification{Notification: n})
}

func (s *NotificationService) MarkNotificationRead(ctx context.Context, id string) error {
	profileID, err := requireViewer(s.d)
	if err != nil {
		return err
	}
	_, err = thunk.Run(ctx, s.d, thunk.Thunk[none]{
		Name: "notifications/markRead",
		Call: func(ctx context.Context) (none, error) {
			return none{}, s.repo.MarkRead(ctx, profileID, id)
		},
		Fulfilled: func(none) store.Action { return store.MarkNotificationRead{ID: id} },
	})
	return err
}

func (s *NotificationService) ClearNotifications(ctx context.Context) error {
	profileID, err := requireViewer(s.d)
	if err != nil {
		return err
	}
	_, err = thunk.Run(ctx, s.d, thunk.Thunk[none]{
		Name: "notifications/clear",
		Call: func(ctx context.Context) (none, error) {
			return none{}, s.repo.DeleteForProfile(ctx, profileID)
		},
		Fulfilled: func(none) store.Action { return store.ClearNotifications{} },
	})
	return err
}

// Listen subscribes to pushes for the signed-in user until ctx ends.
func (s *NotificationService) Listen(ctx context.Context) error {
	profileID, err := requireViewer(s.d)
	if err != nil {
		return err
	}
	return s.notifier.Subscribe(ctx, profileID, func(p notifications.Payload) {
		s.DidReceiveNotification(p.Notification(profileID))
	})
}
