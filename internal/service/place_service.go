package service

import (
	"context"
	"log"
	"sort"

	"placeminder/internal/geo"
	"placeminder/internal/model"
	"placeminder/internal/repository"
)

// KnownPlace is a cached venue with its distance from a query point.
type KnownPlace struct {
	Place    model.Place
	Distance float64
}

// PlaceSearcher finds cached venues near a point, nearest first.
type PlaceSearcher interface {
	Nearest(ctx context.Context, lat, lon float64, limit int) ([]KnownPlace, error)
}

// PlaceService answers "which venues do we already know near here".
// It prefers the search index when one is configured and falls back to
// scanning the relational store.
type PlaceService struct {
	placeRepo *repository.PlaceRepository
	index     PlaceSearcher
}

func NewPlaceService(placeRepo *repository.PlaceRepository, index PlaceSearcher) *PlaceService {
	return &PlaceService{placeRepo: placeRepo, index: index}
}

func (s *PlaceService) Nearest(ctx context.Context, lat, lon float64, limit int) ([]KnownPlace, error) {
	if limit <= 0 {
		limit = 10
	}
	if s.index != nil {
		found, err := s.index.Nearest(ctx, lat, lon, limit)
		if err == nil {
			return found, nil
		}
		log.Printf("[warn] place index search failed, using store: %v", err)
	}

	all, err := s.placeRepo.ListAll(ctx)
	if err != nil {
		return nil, &PersistenceError{Op: "list places", Err: err}
	}
	known := make([]KnownPlace, 0, len(all))
	for _, p := range all {
		known = append(known, KnownPlace{Place: p, Distance: geo.Distance(lat, lon, p.Latitude, p.Longitude)})
	}
	sort.SliceStable(known, func(i, j int) bool {
		return known[i].Distance < known[j].Distance
	})
	if len(known) > limit {
		known = known[:limit]
	}
	return known, nil
}
