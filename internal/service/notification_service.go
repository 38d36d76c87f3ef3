package service

import (
	"context"
	"time"

	"placeminder/internal/model"
	"placeminder/internal/repository"
)

// NotificationService appends "shown" events to the notification history.
// Every call creates a new row; identical tuples are not collapsed.
type NotificationService struct {
	notificationRepo *repository.NotificationRepository
	reminderRepo     *repository.ReminderRepository
	placeRepo        *repository.PlaceRepository
	now              func() time.Time
}

func NewNotificationService(
	notificationRepo *repository.NotificationRepository,
	reminderRepo *repository.ReminderRepository,
	placeRepo *repository.PlaceRepository,
) *NotificationService {
	return &NotificationService{
		notificationRepo: notificationRepo,
		reminderRepo:     reminderRepo,
		placeRepo:        placeRepo,
		now:              time.Now,
	}
}

// Record stores that reminderID was shown to userID for placeID. The reminder
// must belong to the user and the place must exist.
func (s *NotificationService) Record(ctx context.Context, userID, reminderID, placeID uint) (*model.NotificationHistory, error) {
	if reminderID == 0 {
		return nil, &ValidationError{Field: "reminder_id", Message: "is required"}
	}
	if placeID == 0 {
		return nil, &ValidationError{Field: "place_id", Message: "is required"}
	}
	if _, err := s.reminderRepo.FindByID(ctx, userID, reminderID); err != nil {
		return nil, storeError("find reminder", "reminder", reminderID, err)
	}
	if _, err := s.placeRepo.FindByID(ctx, placeID); err != nil {
		return nil, storeError("find place", "place", placeID, err)
	}

	entry := &model.NotificationHistory{
		UserID:     userID,
		ReminderID: reminderID,
		PlaceID:    placeID,
		SentAt:     s.now().UTC(),
	}
	if err := s.notificationRepo.Create(ctx, entry); err != nil {
		return nil, &PersistenceError{Op: "record notification", Err: err}
	}
	return entry, nil
}
