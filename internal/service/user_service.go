package service

import (
	"context"

	"placeminder/internal/model"
	"placeminder/internal/repository"
)

// SettingsPatch carries the settings fields present in an update request.
type SettingsPatch struct {
	SearchRadius        *int
	NotificationEnabled *bool
}

// UserService reads users and updates their settings.
type UserService struct {
	repo *repository.UserRepository
}

func NewUserService(repo *repository.UserRepository) *UserService {
	return &UserService{repo: repo}
}

func (s *UserService) ByUsername(ctx context.Context, username string) (*model.User, error) {
	user, err := s.repo.FindByUsername(ctx, username)
	if err != nil {
		return nil, storeError("find user", "user", 0, err)
	}
	return user, nil
}

func (s *UserService) Get(ctx context.Context, userID uint) (*model.User, error) {
	user, err := s.repo.FindByID(ctx, userID)
	if err != nil {
		return nil, storeError("find user", "user", userID, err)
	}
	return user, nil
}

// UpdateSettings applies patch to the user. The search radius must stay positive.
func (s *UserService) UpdateSettings(ctx context.Context, userID uint, patch SettingsPatch) (*model.User, error) {
	if patch.SearchRadius != nil && *patch.SearchRadius <= 0 {
		return nil, &ValidationError{Field: "search_radius", Message: "must be greater than zero"}
	}

	user, err := s.Get(ctx, userID)
	if err != nil {
		return nil, err
	}
	if patch.SearchRadius != nil {
		user.SearchRadius = *patch.SearchRadius
	}
	if patch.NotificationEnabled != nil {
		user.NotificationEnabled = *patch.NotificationEnabled
	}
	if err := s.repo.UpdateSettings(ctx, user); err != nil {
		return nil, &PersistenceError{Op: "update settings", Err: err}
	}
	return user, nil
}
