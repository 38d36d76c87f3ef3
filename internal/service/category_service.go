package service

import (
	"context"

	"placeminder/internal/model"
	"placeminder/internal/repository"
)

// CategoryService provides helpers around categories.
type CategoryService struct {
	repo *repository.CategoryRepository
}

func NewCategoryService(repo *repository.CategoryRepository) *CategoryService {
	return &CategoryService{repo: repo}
}

func (s *CategoryService) List(ctx context.Context) ([]model.Category, error) {
	categories, err := s.repo.List(ctx)
	if err != nil {
		return nil, &PersistenceError{Op: "list categories", Err: err}
	}
	return categories, nil
}

// FindByName looks a category up by its display name, ignoring case.
func (s *CategoryService) FindByName(ctx context.Context, name string) (*model.Category, error) {
	category, err := s.repo.FindByName(ctx, name)
	if err != nil {
		return nil, storeError("find category", "category", 0, err)
	}
	return category, nil
}
