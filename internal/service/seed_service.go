package service

import (
	"context"
	"fmt"
	"log"

	"golang.org/x/crypto/bcrypt"

	"placeminder/internal/model"
	"placeminder/internal/repository"
)

// DefaultCategories are inserted when the category table is empty.
var DefaultCategories = []model.Category{
	{Name: "Grocery", ExternalTag: "grocery_or_supermarket", Icon: "cart-shopping"},
	{Name: "Pharmacy", ExternalTag: "pharmacy", Icon: "prescription-bottle-medical"},
	{Name: "Shopping", ExternalTag: "shopping_mall", Icon: "bag-shopping"},
	{Name: "Restaurant", ExternalTag: "restaurant", Icon: "utensils"},
	{Name: "Convenience Store", ExternalTag: "convenience_store", Icon: "store"},
}

// DefaultUser describes the account created on an empty database.
type DefaultUser struct {
	Username string
	Email    string
	Password string
}

// SeedService fills an empty database with reference data.
type SeedService struct {
	userRepo     *repository.UserRepository
	categoryRepo *repository.CategoryRepository
}

func NewSeedService(userRepo *repository.UserRepository, categoryRepo *repository.CategoryRepository) *SeedService {
	return &SeedService{userRepo: userRepo, categoryRepo: categoryRepo}
}

// Seed inserts the default categories and user when their tables are empty.
// Running it again is a no-op.
func (s *SeedService) Seed(ctx context.Context, user DefaultUser) error {
	count, err := s.categoryRepo.Count(ctx)
	if err != nil {
		return &PersistenceError{Op: "seed categories", Err: err}
	}
	if count == 0 {
		categories := make([]model.Category, len(DefaultCategories))
		copy(categories, DefaultCategories)
		if err := s.categoryRepo.CreateBatch(ctx, categories); err != nil {
			return &PersistenceError{Op: "seed categories", Err: err}
		}
		log.Printf("[info] default categories created: %d", len(categories))
	}

	count, err = s.userRepo.Count(ctx)
	if err != nil {
		return &PersistenceError{Op: "seed user", Err: err}
	}
	if count > 0 {
		return nil
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(user.Password), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("hash default password: %w", err)
	}
	if err := s.userRepo.Create(ctx, &model.User{
		Username:            user.Username,
		Email:               user.Email,
		PasswordHash:        string(hash),
		SearchRadius:        model.DefaultSearchRadius,
		NotificationEnabled: true,
	}); err != nil {
		return &PersistenceError{Op: "seed user", Err: err}
	}
	log.Printf("[info] default user %q created", user.Username)
	return nil
}
