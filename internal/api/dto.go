package api

import (
	"time"

	"placeminder/internal/model"
	"placeminder/internal/service"
)

type reminderJSON struct {
	ID           uint   `json:"id"`
	Title        string `json:"title"`
	Description  string `json:"description"`
	CategoryID   uint   `json:"category_id"`
	CategoryName string `json:"category_name"`
	Completed    bool   `json:"completed"`
	CreatedAt    string `json:"created_at"`
}

func toReminderJSON(r model.Reminder) reminderJSON {
	return reminderJSON{
		ID:           r.ID,
		Title:        r.Title,
		Description:  r.Description,
		CategoryID:   r.CategoryID,
		CategoryName: r.Category.Name,
		Completed:    r.Completed,
		CreatedAt:    r.CreatedAt.UTC().Format(time.RFC3339),
	}
}

// matchedReminderJSON is the reduced reminder shape of a nearby response.
type matchedReminderJSON struct {
	ID           uint   `json:"id"`
	Title        string `json:"title"`
	Description  string `json:"description"`
	CategoryID   uint   `json:"category_id"`
	CategoryName string `json:"category_name"`
}

type categoryJSON struct {
	ID               uint   `json:"id"`
	Name             string `json:"name"`
	GooglePlacesType string `json:"google_places_type"`
	Icon             string `json:"icon"`
}

type settingsJSON struct {
	UserID              uint `json:"user_id"`
	SearchRadius        int  `json:"search_radius"`
	NotificationEnabled bool `json:"notification_enabled"`
}

func toSettingsJSON(u *model.User) settingsJSON {
	return settingsJSON{
		UserID:              u.ID,
		SearchRadius:        u.SearchRadius,
		NotificationEnabled: u.NotificationEnabled,
	}
}

type placeJSON struct {
	ID           uint    `json:"id"`
	PlaceID      string  `json:"place_id"`
	Name         string  `json:"name"`
	CategoryID   uint    `json:"category_id"`
	CategoryName string  `json:"category_name"`
	Latitude     float64 `json:"latitude"`
	Longitude    float64 `json:"longitude"`
	Address      string  `json:"address"`
	Distance     float64 `json:"distance"`
}

func toPlaceJSON(v service.MatchedVenue) placeJSON {
	return placeJSON{
		ID:           v.ID,
		PlaceID:      v.ExternalID,
		Name:         v.Name,
		CategoryID:   v.CategoryID,
		CategoryName: v.CategoryName,
		Latitude:     v.Latitude,
		Longitude:    v.Longitude,
		Address:      v.Address,
		Distance:     v.Distance,
	}
}

func knownToPlaceJSON(k service.KnownPlace) placeJSON {
	return placeJSON{
		ID:           k.Place.ID,
		PlaceID:      k.Place.ExternalPlaceID,
		Name:         k.Place.Name,
		CategoryID:   k.Place.CategoryID,
		CategoryName: k.Place.Category.Name,
		Latitude:     k.Place.Latitude,
		Longitude:    k.Place.Longitude,
		Address:      k.Place.Address,
		Distance:     k.Distance,
	}
}

type createReminderRequest struct {
	Title       *string `json:"title"`
	CategoryID  *uint   `json:"category_id"`
	Description string  `json:"description"`
}

type updateReminderRequest struct {
	Title       *string `json:"title"`
	Description *string `json:"description"`
	CategoryID  *uint   `json:"category_id"`
	Completed   *bool   `json:"completed"`
}

type updateSettingsRequest struct {
	SearchRadius        *int  `json:"search_radius"`
	NotificationEnabled *bool `json:"notification_enabled"`
}

type nearbyRequest struct {
	Latitude  *float64 `json:"latitude"`
	Longitude *float64 `json:"longitude"`
}

type recordNotificationRequest struct {
	ReminderID *uint `json:"reminder_id"`
	PlaceID    *uint `json:"place_id"`
}
