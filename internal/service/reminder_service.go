package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"gorm.io/gorm"

	"placeminder/internal/model"
	"placeminder/internal/repository"
)

// ReminderInput represents data required to create a reminder.
type ReminderInput struct {
	Title       string
	Description string
	CategoryID  uint
}

// ReminderPatch carries only the fields present in an update request.
type ReminderPatch struct {
	Title       *string
	Description *string
	CategoryID  *uint
	Completed   *bool
}

// ReminderService wraps reminder-related business logic.
type ReminderService struct {
	reminderRepo *repository.ReminderRepository
	categoryRepo *repository.CategoryRepository
	now          func() time.Time
}

func NewReminderService(reminderRepo *repository.ReminderRepository, categoryRepo *repository.CategoryRepository) *ReminderService {
	return &ReminderService{reminderRepo: reminderRepo, categoryRepo: categoryRepo, now: time.Now}
}

func (s *ReminderService) Create(ctx context.Context, userID uint, input ReminderInput) (*model.Reminder, error) {
	title := strings.TrimSpace(input.Title)
	if title == "" {
		return nil, &ValidationError{Field: "title", Message: "is required"}
	}
	if input.CategoryID == 0 {
		return nil, &ValidationError{Field: "category_id", Message: "is required"}
	}
	if err := s.checkCategory(ctx, input.CategoryID); err != nil {
		return nil, err
	}

	reminder := model.Reminder{
		Title:       title,
		Description: input.Description,
		UserID:      userID,
		CategoryID:  input.CategoryID,
	}
	if err := s.reminderRepo.Create(ctx, &reminder); err != nil {
		return nil, &PersistenceError{Op: "create reminder", Err: err}
	}
	return s.Get(ctx, userID, reminder.ID)
}

// List returns all of the user's reminders, completed ones included.
func (s *ReminderService) List(ctx context.Context, userID uint) ([]model.Reminder, error) {
	reminders, err := s.reminderRepo.ListByUser(ctx, userID)
	if err != nil {
		return nil, &PersistenceError{Op: "list reminders", Err: err}
	}
	return reminders, nil
}

func (s *ReminderService) ListActive(ctx context.Context, userID uint) ([]model.Reminder, error) {
	reminders, err := s.reminderRepo.ListActive(ctx, userID)
	if err != nil {
		return nil, &PersistenceError{Op: "list active reminders", Err: err}
	}
	return reminders, nil
}

func (s *ReminderService) Get(ctx context.Context, userID, reminderID uint) (*model.Reminder, error) {
	reminder, err := s.reminderRepo.FindByID(ctx, userID, reminderID)
	if err != nil {
		return nil, storeError("find reminder", "reminder", reminderID, err)
	}
	return reminder, nil
}

// Update applies patch to a reminder owned by userID.
func (s *ReminderService) Update(ctx context.Context, userID, reminderID uint, patch ReminderPatch) (*model.Reminder, error) {
	reminder, err := s.Get(ctx, userID, reminderID)
	if err != nil {
		return nil, err
	}

	if patch.Title != nil {
		title := strings.TrimSpace(*patch.Title)
		if title == "" {
			return nil, &ValidationError{Field: "title", Message: "must not be empty"}
		}
		reminder.Title = title
	}
	if patch.Description != nil {
		reminder.Description = *patch.Description
	}
	if patch.CategoryID != nil && *patch.CategoryID != reminder.CategoryID {
		if err := s.checkCategory(ctx, *patch.CategoryID); err != nil {
			return nil, err
		}
		reminder.CategoryID = *patch.CategoryID
	}
	if patch.Completed != nil {
		reminder.SetCompleted(*patch.Completed, s.now())
	}

	if err := s.reminderRepo.Save(ctx, reminder); err != nil {
		return nil, &PersistenceError{Op: "update reminder", Err: err}
	}
	return s.Get(ctx, userID, reminderID)
}

// Delete removes a reminder together with its notification history.
func (s *ReminderService) Delete(ctx context.Context, userID, reminderID uint) error {
	if err := s.reminderRepo.Delete(ctx, userID, reminderID); err != nil {
		return storeError("delete reminder", "reminder", reminderID, err)
	}
	return nil
}

func (s *ReminderService) checkCategory(ctx context.Context, categoryID uint) error {
	if _, err := s.categoryRepo.GetByID(ctx, categoryID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return &ValidationError{Field: "category_id", Message: "unknown category"}
		}
		return &PersistenceError{Op: "find category", Err: err}
	}
	return nil
}
