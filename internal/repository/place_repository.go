package repository

import (
	"context"
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"placeminder/internal/model"
)

// PlaceRepository stores venues keyed by their provider id.
type PlaceRepository struct {
	db *gorm.DB
}

func NewPlaceRepository(db *gorm.DB) *PlaceRepository {
	return &PlaceRepository{db: db}
}

// Upsert inserts place or, when a row with the same ExternalPlaceID exists,
// overwrites its name, coordinates, address and last_updated. The stored
// category is never changed by a later sighting. The persisted row is returned.
func (r *PlaceRepository) Upsert(ctx context.Context, place *model.Place) (*model.Place, error) {
	db := r.db.WithContext(ctx)
	row := *place
	row.ID = 0
	err := db.Omit(clause.Associations).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "external_place_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"name", "latitude", "longitude", "address", "last_updated"}),
	}).Create(&row).Error
	if err != nil {
		return nil, fmt.Errorf("upsert place %s: %w", place.ExternalPlaceID, err)
	}

	stored, err := r.FindByExternalID(ctx, place.ExternalPlaceID)
	if err != nil {
		return nil, fmt.Errorf("reload place %s: %w", place.ExternalPlaceID, err)
	}
	return stored, nil
}

func (r *PlaceRepository) FindByExternalID(ctx context.Context, externalID string) (*model.Place, error) {
	var place model.Place
	if err := r.db.WithContext(ctx).Where("external_place_id = ?", externalID).First(&place).Error; err != nil {
		return nil, err
	}
	return &place, nil
}

func (r *PlaceRepository) FindByID(ctx context.Context, id uint) (*model.Place, error) {
	var place model.Place
	if err := r.db.WithContext(ctx).First(&place, id).Error; err != nil {
		return nil, err
	}
	return &place, nil
}

// ListAll returns every cached venue with its category.
func (r *PlaceRepository) ListAll(ctx context.Context) ([]model.Place, error) {
	var places []model.Place
	if err := r.db.WithContext(ctx).Preload("Category").Order("id ASC").Find(&places).Error; err != nil {
		return nil, err
	}
	return places, nil
}

func (r *PlaceRepository) Count(ctx context.Context) (int64, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&model.Place{}).Count(&count).Error; err != nil {
		return 0, fmt.Errorf("count places: %w", err)
	}
	return count, nil
}
