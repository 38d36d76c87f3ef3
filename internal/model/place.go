package model

import "time"

// Place is a venue reported by the places provider and cached locally.
// ExternalPlaceID is the provider's identifier and the upsert key.
type Place struct {
	ID              uint   `gorm:"primaryKey"`
	ExternalPlaceID string `gorm:"size:128;uniqueIndex;not null"`
	Name            string `gorm:"size:128;not null"`
	CategoryID      uint   `gorm:"index"`
	Category        Category
	Latitude        float64 `gorm:"not null"`
	Longitude       float64 `gorm:"not null"`
	Address         string  `gorm:"size:256"`
	LastUpdated     time.Time
}
