package service_test

import (
	"context"
	"errors"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"placeminder/internal/model"
	"placeminder/internal/places"
	"placeminder/internal/repository"
	"placeminder/internal/service"
	"placeminder/internal/testutil"
)

type fakeProvider struct {
	mu      sync.Mutex
	results map[string][]places.Venue
	errs    map[string]error
	calls   []places.Query
}

func newFakeProvider() *fakeProvider {
	return &fakeProvider{
		results: make(map[string][]places.Venue),
		errs:    make(map[string]error),
	}
}

func (f *fakeProvider) Nearby(_ context.Context, q places.Query) ([]places.Venue, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, q)
	if err := f.errs[q.Tag]; err != nil {
		return nil, err
	}
	return f.results[q.Tag], nil
}

func (f *fakeProvider) calledTags() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	tags := make([]string, 0, len(f.calls))
	for _, c := range f.calls {
		tags = append(tags, c.Tag)
	}
	sort.Strings(tags)
	return tags
}

type recordingIndexer struct {
	indexed []model.Place
}

func (r *recordingIndexer) Index(_ context.Context, places []model.Place) error {
	r.indexed = append(r.indexed, places...)
	return nil
}

func newNearby(db *gorm.DB, provider places.Provider) *service.NearbyService {
	return service.NewNearbyService(
		repository.NewReminderRepository(db),
		repository.NewCategoryRepository(db),
		repository.NewPlaceRepository(db),
		provider,
		time.Second,
	)
}

func TestResolveSingleGroceryReminder(t *testing.T) {
	db := testutil.NewTestDB(t)
	user := testutil.SeedUser(t, db, "testuser", 1000)
	grocery := testutil.SeedCategory(t, db, "Grocery", "grocery_or_supermarket")
	reminder := testutil.SeedReminder(t, db, user.ID, grocery.ID, "buy milk", false)

	provider := newFakeProvider()
	provider.results["grocery_or_supermarket"] = []places.Venue{
		{ID: "v1", Name: "Shop", Latitude: 40.001, Longitude: -75.0},
	}

	res, err := newNearby(db, provider).Resolve(context.Background(), user, 40.0, -75.0)
	require.NoError(t, err)

	require.Len(t, res.Venues, 1)
	venue := res.Venues[0]
	assert.Equal(t, "v1", venue.ExternalID)
	assert.Equal(t, "Shop", venue.Name)
	assert.Equal(t, grocery.ID, venue.CategoryID)
	assert.Equal(t, "Grocery", venue.CategoryName)
	assert.InDelta(t, 111, venue.Distance, 1)

	require.Len(t, res.Reminders, 1)
	assert.Equal(t, reminder.ID, res.Reminders[0].ID)

	stored, err := repository.NewPlaceRepository(db).FindByExternalID(context.Background(), "v1")
	require.NoError(t, err)
	assert.Equal(t, venue.ID, stored.ID)
	assert.Equal(t, grocery.ID, stored.CategoryID)

	require.Len(t, provider.calls, 1)
	assert.Equal(t, 1000, provider.calls[0].Radius)
}

func TestResolveWithoutActiveRemindersSkipsProvider(t *testing.T) {
	db := testutil.NewTestDB(t)
	user := testutil.SeedUser(t, db, "testuser", 1000)
	grocery := testutil.SeedCategory(t, db, "Grocery", "grocery_or_supermarket")
	testutil.SeedReminder(t, db, user.ID, grocery.ID, "done already", true)

	provider := newFakeProvider()
	res, err := newNearby(db, provider).Resolve(context.Background(), user, 40, -75)
	require.NoError(t, err)

	assert.NotNil(t, res.Venues)
	assert.NotNil(t, res.Reminders)
	assert.Empty(t, res.Venues)
	assert.Empty(t, res.Reminders)
	assert.Empty(t, provider.calls)
}

func TestResolveExcludesCompletedReminders(t *testing.T) {
	db := testutil.NewTestDB(t)
	user := testutil.SeedUser(t, db, "testuser", 1000)
	grocery := testutil.SeedCategory(t, db, "Grocery", "grocery_or_supermarket")
	pharmacy := testutil.SeedCategory(t, db, "Pharmacy", "pharmacy")
	active := testutil.SeedReminder(t, db, user.ID, grocery.ID, "milk", false)
	testutil.SeedReminder(t, db, user.ID, grocery.ID, "eggs", true)
	testutil.SeedReminder(t, db, user.ID, pharmacy.ID, "aspirin", true)

	provider := newFakeProvider()
	provider.results["grocery_or_supermarket"] = []places.Venue{{ID: "g1", Name: "Grocer", Latitude: 40, Longitude: -75}}
	provider.results["pharmacy"] = []places.Venue{{ID: "p1", Name: "Drugs", Latitude: 40, Longitude: -75}}

	res, err := newNearby(db, provider).Resolve(context.Background(), user, 40, -75)
	require.NoError(t, err)

	assert.Equal(t, []string{"grocery_or_supermarket"}, provider.calledTags())
	require.Len(t, res.Reminders, 1)
	assert.Equal(t, active.ID, res.Reminders[0].ID)
}

func TestResolveIsolatesProviderFailures(t *testing.T) {
	db := testutil.NewTestDB(t)
	user := testutil.SeedUser(t, db, "testuser", 1000)
	grocery := testutil.SeedCategory(t, db, "Grocery", "grocery_or_supermarket")
	pharmacy := testutil.SeedCategory(t, db, "Pharmacy", "pharmacy")
	testutil.SeedReminder(t, db, user.ID, grocery.ID, "milk", false)
	aspirin := testutil.SeedReminder(t, db, user.ID, pharmacy.ID, "aspirin", false)

	provider := newFakeProvider()
	provider.errs["grocery_or_supermarket"] = errors.New("upstream timeout")
	provider.results["pharmacy"] = []places.Venue{{ID: "p1", Name: "Drugs", Latitude: 40.002, Longitude: -75}}

	res, err := newNearby(db, provider).Resolve(context.Background(), user, 40, -75)
	require.NoError(t, err)

	require.Len(t, res.Venues, 1)
	assert.Equal(t, "p1", res.Venues[0].ExternalID)
	assert.Equal(t, pharmacy.ID, res.Venues[0].CategoryID)
	require.Len(t, res.Reminders, 1)
	assert.Equal(t, aspirin.ID, res.Reminders[0].ID)
}

func TestResolveSortsByDistanceAndDedupesReminders(t *testing.T) {
	db := testutil.NewTestDB(t)
	user := testutil.SeedUser(t, db, "testuser", 500)
	grocery := testutil.SeedCategory(t, db, "Grocery", "grocery_or_supermarket")
	restaurant := testutil.SeedCategory(t, db, "Restaurant", "restaurant")
	testutil.SeedReminder(t, db, user.ID, grocery.ID, "milk", false)
	testutil.SeedReminder(t, db, user.ID, grocery.ID, "bread", false)
	testutil.SeedReminder(t, db, user.ID, restaurant.ID, "book table", false)

	provider := newFakeProvider()
	provider.results["grocery_or_supermarket"] = []places.Venue{
		{ID: "far", Name: "Far", Latitude: 40.010, Longitude: -75},
		{ID: "near", Name: "Near", Latitude: 40.001, Longitude: -75},
		{ID: "tie-a", Name: "Tie A", Latitude: 40.005, Longitude: -75},
	}
	provider.results["restaurant"] = []places.Venue{
		{ID: "tie-b", Name: "Tie B", Latitude: 40.005, Longitude: -75},
		{ID: "mid", Name: "Mid", Latitude: 40.003, Longitude: -75},
	}

	res, err := newNearby(db, provider).Resolve(context.Background(), user, 40, -75)
	require.NoError(t, err)

	var ids []string
	for i, v := range res.Venues {
		ids = append(ids, v.ExternalID)
		if i > 0 {
			assert.LessOrEqual(t, res.Venues[i-1].Distance, v.Distance)
		}
	}
	assert.Equal(t, []string{"near", "mid", "tie-a", "tie-b", "far"}, ids)

	assert.Len(t, res.Reminders, 3)
	seen := make(map[uint]bool)
	for _, r := range res.Reminders {
		assert.False(t, seen[r.ID], "reminder %d listed twice", r.ID)
		seen[r.ID] = true
	}
}

func TestResolveReusesExistingPlaceRows(t *testing.T) {
	db := testutil.NewTestDB(t)
	user := testutil.SeedUser(t, db, "testuser", 1000)
	grocery := testutil.SeedCategory(t, db, "Grocery", "grocery_or_supermarket")
	testutil.SeedReminder(t, db, user.ID, grocery.ID, "milk", false)

	provider := newFakeProvider()
	provider.results["grocery_or_supermarket"] = []places.Venue{{ID: "v1", Name: "Shop", Latitude: 40.001, Longitude: -75}}
	nearby := newNearby(db, provider)

	first, err := nearby.Resolve(context.Background(), user, 40, -75)
	require.NoError(t, err)

	provider.results["grocery_or_supermarket"] = []places.Venue{{ID: "v1", Name: "Shop", Latitude: 40.0015, Longitude: -75, Address: "moved"}}
	second, err := nearby.Resolve(context.Background(), user, 40, -75)
	require.NoError(t, err)

	assert.Equal(t, first.Venues[0].ID, second.Venues[0].ID)

	repo := repository.NewPlaceRepository(db)
	count, err := repo.Count(context.Background())
	require.NoError(t, err)
	assert.EqualValues(t, 1, count)

	stored, err := repo.FindByExternalID(context.Background(), "v1")
	require.NoError(t, err)
	assert.InDelta(t, 40.0015, stored.Latitude, 1e-9)
	assert.Equal(t, "moved", stored.Address)
}

func TestResolveIndexesPersistedPlaces(t *testing.T) {
	db := testutil.NewTestDB(t)
	user := testutil.SeedUser(t, db, "testuser", 1000)
	grocery := testutil.SeedCategory(t, db, "Grocery", "grocery_or_supermarket")
	testutil.SeedReminder(t, db, user.ID, grocery.ID, "milk", false)

	provider := newFakeProvider()
	provider.results["grocery_or_supermarket"] = []places.Venue{
		{ID: "v1", Name: "Shop", Latitude: 40.001, Longitude: -75},
		{ID: "v2", Name: "Other", Latitude: 40.002, Longitude: -75},
	}
	indexer := &recordingIndexer{}

	_, err := newNearby(db, provider).WithIndexer(indexer).Resolve(context.Background(), user, 40, -75)
	require.NoError(t, err)

	require.Len(t, indexer.indexed, 2)
	assert.Equal(t, "v1", indexer.indexed[0].ExternalPlaceID)
	assert.NotZero(t, indexer.indexed[0].ID)
}

func TestResolveBoundsSlowProviderCalls(t *testing.T) {
	db := testutil.NewTestDB(t)
	user := testutil.SeedUser(t, db, "testuser", 1000)
	grocery := testutil.SeedCategory(t, db, "Grocery", "grocery_or_supermarket")
	pharmacy := testutil.SeedCategory(t, db, "Pharmacy", "pharmacy")
	testutil.SeedReminder(t, db, user.ID, grocery.ID, "milk", false)
	testutil.SeedReminder(t, db, user.ID, pharmacy.ID, "aspirin", false)

	provider := places.ProviderFunc(func(ctx context.Context, q places.Query) ([]places.Venue, error) {
		if q.Tag == "grocery_or_supermarket" {
			<-ctx.Done()
			return nil, ctx.Err()
		}
		return []places.Venue{{ID: "p1", Name: "Drugs", Latitude: 40, Longitude: -75}}, nil
	})
	nearby := service.NewNearbyService(
		repository.NewReminderRepository(db),
		repository.NewCategoryRepository(db),
		repository.NewPlaceRepository(db),
		provider,
		50*time.Millisecond,
	)

	res, err := nearby.Resolve(context.Background(), user, 40, -75)
	require.NoError(t, err)
	require.Len(t, res.Venues, 1)
	assert.Equal(t, "p1", res.Venues[0].ExternalID)
}
