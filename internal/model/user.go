package model

import "time"

// DefaultSearchRadius is the lookup radius, in meters, given to new users.
const DefaultSearchRadius = 1000

// User owns reminders and the settings used when resolving nearby places.
type User struct {
	ID                  uint   `gorm:"primaryKey"`
	Username            string `gorm:"size:64;uniqueIndex;not null"`
	Email               string `gorm:"size:120;uniqueIndex;not null"`
	PasswordHash        string `gorm:"size:256"`
	SearchRadius        int    `gorm:"default:1000"`
	NotificationEnabled bool   `gorm:"default:true"`
	CreatedAt           time.Time
	UpdatedAt           time.Time
	Reminders           []Reminder `gorm:"foreignKey:UserID"`
}
