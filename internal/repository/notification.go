package repository

import (
	"context"

	"gorm.io/gorm"

	"discovrr/internal/models"
)

// NotificationRepository defines the interface for stored push notifications.
type NotificationRepository interface {
	ListForProfile(ctx context.Context, profileID string, page Page) ([]models.Notification, error)
	Create(ctx context.Context, n *models.Notification) error
	MarkRead(ctx context.Context, profileID, id string) error
	DeleteForProfile(ctx context.Context, profileID string) error
}

type notificationRepository struct {
	db *gorm.DB
}

// NewNotificationRepository creates a new notification repository
func NewNotificationRepository(db *gorm.DB) NotificationRepository {
	return &notificationRepository{db: db}
}

func (r *notificationRepository) ListForProfile(ctx context.Context, profileID string, page Page) ([]models.Notification, error) {
	var items []models.Notification
	err := page.apply(r.db.WithContext(ctx)).
		Where("profile_id = ?", profileID).
		Order("created_at DESC").
		Find(&items).Error
	return items, err
}

func (r *notificationRepository) Create(ctx context.Context, n *models.Notification) error {
	return mapError(r.db.WithContext(ctx).Create(n).Error, "notification", n.ID)
}

func (r *notificationRepository) MarkRead(ctx context.Context, profileID, id string) error {
	res := r.db.WithContext(ctx).Model(&models.Notification{}).
		Where("id = ? AND profile_id = ?", id, profileID).
		Update("read", true)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return models.NewNotFoundError("notification", id)
	}
	return nil
}

func (r *notificationRepository) DeleteForProfile(ctx context.Context, profileID string) error {
	return r.db.WithContext(ctx).Where("profile_id = ?", profileID).Delete(&models.Notification{}).Error
}
