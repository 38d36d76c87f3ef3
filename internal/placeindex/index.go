// Package placeindex mirrors known venues into Elasticsearch for geo queries.
package placeindex

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"strconv"
	"time"

	"github.com/olivere/elastic/v7"

	"placeminder/internal/geo"
	"placeminder/internal/model"
	"placeminder/internal/service"
)

const mapping = `{
	"mappings": {
		"properties": {
			"id":          {"type": "long"},
			"place_id":    {"type": "keyword"},
			"name":        {"type": "text"},
			"category_id": {"type": "long"},
			"address":     {"type": "text"},
			"location":    {"type": "geo_point"},
			"last_updated":{"type": "date"}
		}
	}
}`

// Document is the indexed form of a place.
type Document struct {
	ID          uint             `json:"id"`
	PlaceID     string           `json:"place_id"`
	Name        string           `json:"name"`
	CategoryID  uint             `json:"category_id"`
	Address     string           `json:"address"`
	Location    elastic.GeoPoint `json:"location"`
	LastUpdated time.Time        `json:"last_updated"`
}

// NewDocument converts a stored place into its index document.
func NewDocument(p model.Place) Document {
	return Document{
		ID:          p.ID,
		PlaceID:     p.ExternalPlaceID,
		Name:        p.Name,
		CategoryID:  p.CategoryID,
		Address:     p.Address,
		Location:    elastic.GeoPoint{Lat: p.Latitude, Lon: p.Longitude},
		LastUpdated: p.LastUpdated,
	}
}

// Place converts the document back into a place row.
func (d Document) Place() model.Place {
	return model.Place{
		ID:              d.ID,
		ExternalPlaceID: d.PlaceID,
		Name:            d.Name,
		CategoryID:      d.CategoryID,
		Latitude:        d.Location.Lat,
		Longitude:       d.Location.Lon,
		Address:         d.Address,
		LastUpdated:     d.LastUpdated,
	}
}

// Store indexes places and answers nearest-first queries.
type Store struct {
	client *elastic.Client
	index  string
}

// New connects to url and creates index with a geo_point mapping if it is missing.
func New(ctx context.Context, url, index string) (*Store, error) {
	client, err := elastic.NewClient(elastic.SetURL(url), elastic.SetSniff(false))
	if err != nil {
		return nil, fmt.Errorf("elastic client: %w", err)
	}
	s := &Store{client: client, index: index}
	if err := s.ensureIndex(ctx); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *Store) ensureIndex(ctx context.Context) error {
	exists, err := s.client.IndexExists(s.index).Do(ctx)
	if err != nil {
		return fmt.Errorf("check index %s: %w", s.index, err)
	}
	if exists {
		return nil
	}

	created, err := s.client.CreateIndex(s.index).BodyString(mapping).Do(ctx)
	if err != nil {
		return fmt.Errorf("create index %s: %w", s.index, err)
	}
	if !created.Acknowledged {
		log.Printf("[warn] create index %s was not acknowledged", s.index)
	}
	log.Printf("[info] created index %s", s.index)
	return nil
}

// Index writes places keyed by their row id, replacing earlier versions.
func (s *Store) Index(ctx context.Context, places []model.Place) error {
	if len(places) == 0 {
		return nil
	}

	bulk := s.client.Bulk()
	for _, p := range places {
		doc := NewDocument(p)
		bulk.Add(elastic.NewBulkIndexRequest().
			Index(s.index).
			Id(strconv.FormatUint(uint64(doc.ID), 10)).
			Doc(doc))
	}

	resp, err := bulk.Do(ctx)
	if err != nil {
		return fmt.Errorf("bulk index: %w", err)
	}
	if failed := resp.Failed(); len(failed) > 0 {
		reason := ""
		if failed[0].Error != nil {
			reason = failed[0].Error.Reason
		}
		return fmt.Errorf("bulk index: %d of %d failed: %s", len(failed), len(places), reason)
	}
	return nil
}

// Nearest returns up to limit indexed places ordered by distance from (lat, lon).
func (s *Store) Nearest(ctx context.Context, lat, lon float64, limit int) ([]service.KnownPlace, error) {
	result, err := s.client.Search().
		Index(s.index).
		Query(elastic.NewMatchAllQuery()).
		SortBy(elastic.NewGeoDistanceSort("location").
			Point(lat, lon).
			Asc().
			Unit("m").
			DistanceType("arc").
			IgnoreUnmapped(true)).
		Size(limit).
		Do(ctx)
	if err != nil {
		return nil, fmt.Errorf("search %s: %w", s.index, err)
	}

	known := make([]service.KnownPlace, 0, len(result.Hits.Hits))
	for _, hit := range result.Hits.Hits {
		var doc Document
		if err := json.Unmarshal(hit.Source, &doc); err != nil {
			log.Printf("[warn] skip index hit %s: %v", hit.Id, err)
			continue
		}
		p := doc.Place()
		known = append(known, service.KnownPlace{
			Place:    p,
			Distance: geo.Distance(lat, lon, p.Latitude, p.Longitude),
		})
	}
	return known, nil
}
