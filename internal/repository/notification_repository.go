package repository

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"placeminder/internal/model"
)

// NotificationRepository appends to the notification history.
type NotificationRepository struct {
	db *gorm.DB
}

func NewNotificationRepository(db *gorm.DB) *NotificationRepository {
	return &NotificationRepository{db: db}
}

func (r *NotificationRepository) Create(ctx context.Context, entry *model.NotificationHistory) error {
	if err := r.db.WithContext(ctx).Create(entry).Error; err != nil {
		return fmt.Errorf("create notification: %w", err)
	}
	return nil
}

func (r *NotificationRepository) ListByReminder(ctx context.Context, reminderID uint) ([]model.NotificationHistory, error) {
	var entries []model.NotificationHistory
	if err := r.db.WithContext(ctx).Where("reminder_id = ?", reminderID).Order("id ASC").Find(&entries).Error; err != nil {
		return nil, err
	}
	return entries, nil
}

func (r *NotificationRepository) CountByUser(ctx context.Context, userID uint) (int64, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&model.NotificationHistory{}).Where("user_id = ?", userID).Count(&count).Error; err != nil {
		return 0, fmt.Errorf("count notifications: %w", err)
	}
	return count, nil
}
