package model

// Category maps a reminder kind to the place type understood by the places provider.
type Category struct {
	ID          uint   `gorm:"primaryKey"`
	Name        string `gorm:"size:64;not null"`
	ExternalTag string `gorm:"size:64;not null"`
	Icon        string `gorm:"size:64"`
}
