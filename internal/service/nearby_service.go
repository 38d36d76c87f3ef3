package service

import (
	"context"
	"log"
	"sort"
	"sync"
	"time"

	"placeminder/internal/geo"
	"placeminder/internal/model"
	"placeminder/internal/places"
	"placeminder/internal/repository"
)

// DefaultProviderTimeout bounds a single provider call.
const DefaultProviderTimeout = 10 * time.Second

// MatchedVenue is a venue near the user, annotated with its distance.
type MatchedVenue struct {
	ID           uint
	ExternalID   string
	Name         string
	CategoryID   uint
	CategoryName string
	Latitude     float64
	Longitude    float64
	Address      string
	// Distance is in meters from the queried position.
	Distance float64
}

// Resolution is the outcome of matching a position against active reminders.
type Resolution struct {
	Venues    []MatchedVenue
	Reminders []model.Reminder
}

// VenueIndexer receives every venue persisted during a resolution.
type VenueIndexer interface {
	Index(ctx context.Context, places []model.Place) error
}

// NearbyService resolves which reminders are relevant at a position.
type NearbyService struct {
	reminderRepo *repository.ReminderRepository
	categoryRepo *repository.CategoryRepository
	placeRepo    *repository.PlaceRepository
	provider     places.Provider
	indexer      VenueIndexer
	timeout      time.Duration
	now          func() time.Time
}

// NewNearbyService wires the resolver. timeout bounds each provider call;
// zero selects DefaultProviderTimeout.
func NewNearbyService(
	reminderRepo *repository.ReminderRepository,
	categoryRepo *repository.CategoryRepository,
	placeRepo *repository.PlaceRepository,
	provider places.Provider,
	timeout time.Duration,
) *NearbyService {
	if timeout <= 0 {
		timeout = DefaultProviderTimeout
	}
	return &NearbyService{
		reminderRepo: reminderRepo,
		categoryRepo: categoryRepo,
		placeRepo:    placeRepo,
		provider:     provider,
		timeout:      timeout,
		now:          time.Now,
	}
}

// WithIndexer mirrors persisted venues into idx. Index failures are logged only.
func (s *NearbyService) WithIndexer(idx VenueIndexer) *NearbyService {
	s.indexer = idx
	return s
}

type categoryLookup struct {
	venues []places.Venue
	err    error
}

// Resolve looks up venues for every category referenced by the user's active
// reminders, persists them and returns them nearest first together with the
// reminders they satisfy. A provider failure drops only that category.
func (s *NearbyService) Resolve(ctx context.Context, user *model.User, lat, lon float64) (*Resolution, error) {
	active, err := s.reminderRepo.ListActive(ctx, user.ID)
	if err != nil {
		return nil, &PersistenceError{Op: "list active reminders", Err: err}
	}
	if len(active) == 0 {
		return &Resolution{Venues: []MatchedVenue{}, Reminders: []model.Reminder{}}, nil
	}

	seen := make(map[uint]struct{})
	var categoryIDs []uint
	for _, r := range active {
		if _, ok := seen[r.CategoryID]; !ok {
			seen[r.CategoryID] = struct{}{}
			categoryIDs = append(categoryIDs, r.CategoryID)
		}
	}

	categories, err := s.categoryRepo.ListByIDs(ctx, categoryIDs)
	if err != nil {
		return nil, &PersistenceError{Op: "list categories", Err: err}
	}

	radius := user.SearchRadius
	if radius <= 0 {
		radius = model.DefaultSearchRadius
	}
	lookups := s.lookupAll(ctx, radius, lat, lon, categories)

	result := &Resolution{Venues: []MatchedVenue{}, Reminders: []model.Reminder{}}
	matchedReminders := make(map[uint]struct{})
	var persisted []model.Place

	for i, category := range categories {
		lookup := lookups[i]
		if lookup.err != nil {
			log.Printf("[warn] %v", &ProviderError{Category: category.Name, Err: lookup.err})
			continue
		}
		if len(lookup.venues) == 0 {
			continue
		}

		for _, venue := range lookup.venues {
			place, err := s.placeRepo.Upsert(ctx, &model.Place{
				ExternalPlaceID: venue.ID,
				Name:            venue.Name,
				CategoryID:      category.ID,
				Latitude:        venue.Latitude,
				Longitude:       venue.Longitude,
				Address:         venue.Address,
				LastUpdated:     s.now(),
			})
			if err != nil {
				return nil, &PersistenceError{Op: "upsert place", Err: err}
			}
			persisted = append(persisted, *place)

			result.Venues = append(result.Venues, MatchedVenue{
				ID:           place.ID,
				ExternalID:   venue.ID,
				Name:         venue.Name,
				CategoryID:   category.ID,
				CategoryName: category.Name,
				Latitude:     venue.Latitude,
				Longitude:    venue.Longitude,
				Address:      venue.Address,
				Distance:     geo.Distance(lat, lon, venue.Latitude, venue.Longitude),
			})
		}

		for _, r := range active {
			if r.CategoryID != category.ID {
				continue
			}
			if _, ok := matchedReminders[r.ID]; ok {
				continue
			}
			matchedReminders[r.ID] = struct{}{}
			result.Reminders = append(result.Reminders, r)
		}
	}

	sort.SliceStable(result.Venues, func(i, j int) bool {
		return result.Venues[i].Distance < result.Venues[j].Distance
	})

	if s.indexer != nil && len(persisted) > 0 {
		if err := s.indexer.Index(ctx, persisted); err != nil {
			log.Printf("[warn] index places: %v", err)
		}
	}

	log.Printf("[info] resolved user=%d categories=%d venues=%d reminders=%d",
		user.ID, len(categories), len(result.Venues), len(result.Reminders))
	return result, nil
}

// lookupAll queries the provider for every category concurrently. The
// returned slice is aligned with categories.
func (s *NearbyService) lookupAll(ctx context.Context, radius int, lat, lon float64, categories []model.Category) []categoryLookup {
	lookups := make([]categoryLookup, len(categories))
	var wg sync.WaitGroup
	for i, category := range categories {
		wg.Add(1)
		go func(i int, category model.Category) {
			defer wg.Done()
			callCtx, cancel := context.WithTimeout(ctx, s.timeout)
			defer cancel()
			venues, err := s.provider.Nearby(callCtx, places.Query{
				Latitude:  lat,
				Longitude: lon,
				Radius:    radius,
				Tag:       category.ExternalTag,
			})
			lookups[i] = categoryLookup{venues: venues, err: err}
		}(i, category)
	}
	wg.Wait()
	return lookups
}
