package repository_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"placeminder/internal/model"
	"placeminder/internal/repository"
	"placeminder/internal/testutil"
)

func TestReminderDeleteCascadesNotificationHistory(t *testing.T) {
	db := testutil.NewTestDB(t)
	ctx := context.Background()
	user := testutil.SeedUser(t, db, "alice", 1000)
	grocery := testutil.SeedCategory(t, db, "Grocery", "grocery_or_supermarket")
	doomed := testutil.SeedReminder(t, db, user.ID, grocery.ID, "milk", false)
	kept := testutil.SeedReminder(t, db, user.ID, grocery.ID, "bread", false)

	places := repository.NewPlaceRepository(db)
	place, err := places.Upsert(ctx, &model.Place{ExternalPlaceID: "v1", Name: "Shop", CategoryID: grocery.ID, Latitude: 1, Longitude: 1})
	require.NoError(t, err)

	notifications := repository.NewNotificationRepository(db)
	for _, reminderID := range []uint{doomed.ID, doomed.ID, kept.ID} {
		require.NoError(t, notifications.Create(ctx, &model.NotificationHistory{
			UserID:     user.ID,
			ReminderID: reminderID,
			PlaceID:    place.ID,
			SentAt:     time.Now(),
		}))
	}

	reminders := repository.NewReminderRepository(db)
	require.NoError(t, reminders.Delete(ctx, user.ID, doomed.ID))

	_, err = reminders.FindByID(ctx, user.ID, doomed.ID)
	assert.True(t, errors.Is(err, gorm.ErrRecordNotFound))

	gone, err := notifications.ListByReminder(ctx, doomed.ID)
	require.NoError(t, err)
	assert.Empty(t, gone)

	left, err := notifications.ListByReminder(ctx, kept.ID)
	require.NoError(t, err)
	assert.Len(t, left, 1)

	count, err := places.Count(ctx)
	require.NoError(t, err)
	assert.EqualValues(t, 1, count)
}

func TestReminderDeleteRequiresOwner(t *testing.T) {
	db := testutil.NewTestDB(t)
	owner := testutil.SeedUser(t, db, "alice", 1000)
	other := testutil.SeedUser(t, db, "bob", 1000)
	grocery := testutil.SeedCategory(t, db, "Grocery", "grocery_or_supermarket")
	reminder := testutil.SeedReminder(t, db, owner.ID, grocery.ID, "milk", false)

	err := repository.NewReminderRepository(db).Delete(context.Background(), other.ID, reminder.ID)
	assert.True(t, errors.Is(err, gorm.ErrRecordNotFound))
}

func TestReminderListActiveSkipsCompleted(t *testing.T) {
	db := testutil.NewTestDB(t)
	user := testutil.SeedUser(t, db, "alice", 1000)
	grocery := testutil.SeedCategory(t, db, "Grocery", "grocery_or_supermarket")
	testutil.SeedReminder(t, db, user.ID, grocery.ID, "milk", false)
	testutil.SeedReminder(t, db, user.ID, grocery.ID, "eggs", true)

	repo := repository.NewReminderRepository(db)
	active, err := repo.ListActive(context.Background(), user.ID)
	require.NoError(t, err)
	require.Len(t, active, 1)
	assert.Equal(t, "milk", active[0].Title)
	assert.Equal(t, "Grocery", active[0].Category.Name)

	all, err := repo.ListByUser(context.Background(), user.ID)
	require.NoError(t, err)
	assert.Len(t, all, 2)
}
