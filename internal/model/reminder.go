package model

import "time"

// Reminder is a user's to-do tied to a category of places.
type Reminder struct {
	ID          uint   `gorm:"primaryKey"`
	Title       string `gorm:"size:120;not null"`
	Description string `gorm:"type:text"`
	UserID      uint   `gorm:"index;not null"`
	CategoryID  uint   `gorm:"index;not null"`
	Category    Category
	Completed   bool `gorm:"default:false"`
	CreatedAt   time.Time
	CompletedAt *time.Time
}

// SetCompleted flips the completion flag and keeps CompletedAt in sync with it.
func (r *Reminder) SetCompleted(done bool, at time.Time) {
	r.Completed = done
	if done {
		if r.CompletedAt == nil {
			r.CompletedAt = &at
		}
		return
	}
	r.CompletedAt = nil
}
