package repository

import (
	"context"
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"placeminder/internal/model"
)

// ReminderRepository handles CRUD for reminders.
type ReminderRepository struct {
	db *gorm.DB
}

func NewReminderRepository(db *gorm.DB) *ReminderRepository {
	return &ReminderRepository{db: db}
}

func (r *ReminderRepository) Create(ctx context.Context, reminder *model.Reminder) error {
	if err := r.db.WithContext(ctx).Omit(clause.Associations).Create(reminder).Error; err != nil {
		return fmt.Errorf("create reminder: %w", err)
	}
	return nil
}

// ListByUser returns all of the user's reminders, completed ones included.
func (r *ReminderRepository) ListByUser(ctx context.Context, userID uint) ([]model.Reminder, error) {
	var reminders []model.Reminder
	if err := r.db.WithContext(ctx).Preload("Category").
		Where("user_id = ?", userID).
		Order("id ASC").
		Find(&reminders).Error; err != nil {
		return nil, err
	}
	return reminders, nil
}

// ListActive returns the user's reminders that are not completed.
func (r *ReminderRepository) ListActive(ctx context.Context, userID uint) ([]model.Reminder, error) {
	var reminders []model.Reminder
	if err := r.db.WithContext(ctx).Preload("Category").
		Where("user_id = ? AND completed = ?", userID, false).
		Order("id ASC").
		Find(&reminders).Error; err != nil {
		return nil, err
	}
	return reminders, nil
}

func (r *ReminderRepository) FindByID(ctx context.Context, userID, reminderID uint) (*model.Reminder, error) {
	var reminder model.Reminder
	if err := r.db.WithContext(ctx).Preload("Category").
		Where("user_id = ? AND id = ?", userID, reminderID).
		First(&reminder).Error; err != nil {
		return nil, err
	}
	return &reminder, nil
}

func (r *ReminderRepository) Save(ctx context.Context, reminder *model.Reminder) error {
	if err := r.db.WithContext(ctx).Omit(clause.Associations).Save(reminder).Error; err != nil {
		return fmt.Errorf("save reminder: %w", err)
	}
	return nil
}

// Delete removes the reminder and its notification history in one transaction.
func (r *ReminderRepository) Delete(ctx context.Context, userID, reminderID uint) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("reminder_id = ?", reminderID).Delete(&model.NotificationHistory{}).Error; err != nil {
			return fmt.Errorf("delete notification history: %w", err)
		}
		res := tx.Where("user_id = ? AND id = ?", userID, reminderID).Delete(&model.Reminder{})
		if res.Error != nil {
			return fmt.Errorf("delete reminder: %w", res.Error)
		}
		if res.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}
		return nil
	})
}
