package model

import "time"

// NotificationHistory records that a reminder was shown for a place.
type NotificationHistory struct {
	ID         uint `gorm:"primaryKey"`
	UserID     uint `gorm:"index;not null"`
	ReminderID uint `gorm:"index;not null"`
	PlaceID    uint `gorm:"index;not null"`
	SentAt     time.Time
}

// TableName returns the table name for GORM.
func (NotificationHistory) TableName() string {
	return "notification_history"
}
