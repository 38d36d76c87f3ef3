// Package places looks up venues near a coordinate through an external provider.
package places

import (
	"context"
	"fmt"
)

// Venue is a candidate place returned by a provider.
type Venue struct {
	ID        string  `json:"id"`
	Name      string  `json:"name"`
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
	Address   string  `json:"address,omitempty"`
}

// Query describes a nearby search.
type Query struct {
	Latitude  float64
	Longitude float64
	// Radius is in meters.
	Radius int
	// Tag is the provider place type, e.g. "pharmacy".
	Tag string
}

func (q Query) String() string {
	return fmt.Sprintf("%s within %dm of (%.6f, %.6f)", q.Tag, q.Radius, q.Latitude, q.Longitude)
}

// Provider returns venues of one type around a point.
type Provider interface {
	Nearby(ctx context.Context, q Query) ([]Venue, error)
}

// ProviderFunc adapts a function to Provider.
type ProviderFunc func(ctx context.Context, q Query) ([]Venue, error)

func (f ProviderFunc) Nearby(ctx context.Context, q Query) ([]Venue, error) {
	return f(ctx, q)
}
