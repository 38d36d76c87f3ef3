package service_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"placeminder/internal/model"
	"placeminder/internal/repository"
	"placeminder/internal/service"
	"placeminder/internal/testutil"
)

func TestUpdateSettings(t *testing.T) {
	db := testutil.NewTestDB(t)
	user := testutil.SeedUser(t, db, "testuser", 1000)
	svc := service.NewUserService(repository.NewUserRepository(db))
	ctx := context.Background()

	zero := 0
	_, err := svc.UpdateSettings(ctx, user.ID, service.SettingsPatch{SearchRadius: &zero})
	assert.True(t, service.IsValidation(err))

	radius := 2500
	off := false
	updated, err := svc.UpdateSettings(ctx, user.ID, service.SettingsPatch{SearchRadius: &radius, NotificationEnabled: &off})
	require.NoError(t, err)
	assert.Equal(t, 2500, updated.SearchRadius)
	assert.False(t, updated.NotificationEnabled)

	reloaded, err := svc.Get(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, 2500, reloaded.SearchRadius)
	assert.False(t, reloaded.NotificationEnabled)

	_, err = svc.UpdateSettings(ctx, 404, service.SettingsPatch{SearchRadius: &radius})
	assert.True(t, service.IsNotFound(err))
}

func TestSeedIsIdempotent(t *testing.T) {
	db := testutil.NewTestDB(t)
	userRepo := repository.NewUserRepository(db)
	categoryRepo := repository.NewCategoryRepository(db)
	seeder := service.NewSeedService(userRepo, categoryRepo)
	ctx := context.Background()
	defaults := service.DefaultUser{Username: "testuser", Email: "test@example.com", Password: "test"}

	require.NoError(t, seeder.Seed(ctx, defaults))
	require.NoError(t, seeder.Seed(ctx, defaults))

	categories, err := categoryRepo.List(ctx)
	require.NoError(t, err)
	require.Len(t, categories, len(service.DefaultCategories))
	assert.Equal(t, "Grocery", categories[0].Name)
	assert.Equal(t, "grocery_or_supermarket", categories[0].ExternalTag)

	count, err := userRepo.Count(ctx)
	require.NoError(t, err)
	assert.EqualValues(t, 1, count)

	user, err := userRepo.FindByUsername(ctx, "testuser")
	require.NoError(t, err)
	assert.Equal(t, model.DefaultSearchRadius, user.SearchRadius)
	assert.True(t, user.NotificationEnabled)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte("test")))
}

func TestPlaceServiceFallsBackToStore(t *testing.T) {
	db := testutil.NewTestDB(t)
	grocery := testutil.SeedCategory(t, db, "Grocery", "grocery_or_supermarket")
	repo := repository.NewPlaceRepository(db)
	ctx := context.Background()
	for _, p := range []model.Place{
		{ExternalPlaceID: "far", Name: "Far", CategoryID: grocery.ID, Latitude: 40.01, Longitude: -75},
		{ExternalPlaceID: "near", Name: "Near", CategoryID: grocery.ID, Latitude: 40.001, Longitude: -75},
		{ExternalPlaceID: "mid", Name: "Mid", CategoryID: grocery.ID, Latitude: 40.005, Longitude: -75},
	} {
		p := p
		_, err := repo.Upsert(ctx, &p)
		require.NoError(t, err)
	}

	known, err := service.NewPlaceService(repo, nil).Nearest(ctx, 40, -75, 2)
	require.NoError(t, err)
	require.Len(t, known, 2)
	assert.Equal(t, "near", known[0].Place.ExternalPlaceID)
	assert.Equal(t, "mid", known[1].Place.ExternalPlaceID)
	assert.Equal(t, "Grocery", known[0].Place.Category.Name)
}
