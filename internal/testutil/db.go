package testutil

import (
	"fmt"
	"strings"
	"testing"

	"gorm.io/gorm"

	"placeminder/internal/model"
	"placeminder/internal/repository"
)

// NewTestDB opens a private in-memory SQLite database with all migrations
// applied. It is closed automatically when the test completes.
func NewTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	db, err := repository.NewDB(fmt.Sprintf("file:%s?mode=memory&cache=shared", name))
	if err != nil {
		t.Fatalf("creating test db: %v", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("unwrapping test db: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)

	t.Cleanup(func() {
		if err := sqlDB.Close(); err != nil {
			t.Errorf("closing test db: %v", err)
		}
	})

	return db
}

// SeedUser inserts a user with the given radius.
func SeedUser(t *testing.T, db *gorm.DB, username string, radius int) *model.User {
	t.Helper()

	user := &model.User{
		Username:            username,
		Email:               username + "@example.com",
		SearchRadius:        radius,
		NotificationEnabled: true,
	}
	if err := db.Create(user).Error; err != nil {
		t.Fatalf("seeding user: %v", err)
	}
	return user
}

// SeedCategory inserts a category.
func SeedCategory(t *testing.T, db *gorm.DB, name, tag string) *model.Category {
	t.Helper()

	category := &model.Category{Name: name, ExternalTag: tag}
	if err := db.Create(category).Error; err != nil {
		t.Fatalf("seeding category: %v", err)
	}
	return category
}

// SeedReminder inserts a reminder owned by userID.
func SeedReminder(t *testing.T, db *gorm.DB, userID, categoryID uint, title string, completed bool) *model.Reminder {
	t.Helper()

	reminder := &model.Reminder{
		Title:      title,
		UserID:     userID,
		CategoryID: categoryID,
		Completed:  completed,
	}
	if err := db.Omit("Category").Create(reminder).Error; err != nil {
		t.Fatalf("seeding reminder: %v", err)
	}
	return reminder
}
