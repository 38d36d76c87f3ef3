package places

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const nearbyFixture = `{
  "status": "OK",
  "results": [
    {"place_id": "v1", "name": "Shop", "vicinity": "1 Main St",
     "geometry": {"location": {"lat": 40.001, "lng": -75.0}}},
    {"place_id": "", "name": "Ghost"},
    {"place_id": "v2", "name": "Corner Market",
     "geometry": {"location": {"lat": 40.002, "lng": -75.001}}}
  ]
}`

func TestGoogleClientNearby(t *testing.T) {
	var gotQuery map[string]string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		gotQuery = map[string]string{
			"location": q.Get("location"),
			"radius":   q.Get("radius"),
			"type":     q.Get("type"),
			"key":      q.Get("key"),
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(nearbyFixture))
	}))
	defer srv.Close()

	client := NewGoogleClient(srv.URL, "secret", time.Second)
	venues, err := client.Nearby(context.Background(), Query{Latitude: 40, Longitude: -75, Radius: 1000, Tag: "grocery_or_supermarket"})
	require.NoError(t, err)

	assert.Equal(t, map[string]string{
		"location": "40.000000,-75.000000",
		"radius":   "1000",
		"type":     "grocery_or_supermarket",
		"key":      "secret",
	}, gotQuery)

	require.Len(t, venues, 2)
	assert.Equal(t, Venue{ID: "v1", Name: "Shop", Latitude: 40.001, Longitude: -75.0, Address: "1 Main St"}, venues[0])
	assert.Equal(t, "v2", venues[1].ID)
	assert.Empty(t, venues[1].Address)
}

func TestGoogleClientErrorStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"status":"REQUEST_DENIED","error_message":"bad key"}`))
	}))
	defer srv.Close()

	_, err := NewGoogleClient(srv.URL, "secret", time.Second).Nearby(context.Background(), Query{Tag: "pharmacy", Radius: 10})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "REQUEST_DENIED")
}

func TestGoogleClientRetriesServerErrors(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if atomic.AddInt32(&calls, 1) == 1 {
			w.Header().Set("Retry-After", "0")
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		_, _ = w.Write([]byte(`{"status":"ZERO_RESULTS","results":[]}`))
	}))
	defer srv.Close()

	venues, err := NewGoogleClient(srv.URL, "secret", time.Second).Nearby(context.Background(), Query{Tag: "pharmacy", Radius: 10})
	require.NoError(t, err)
	assert.Empty(t, venues)
	assert.EqualValues(t, 2, atomic.LoadInt32(&calls))
}

func TestGoogleClientWithoutKeySkipsLookup(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Error("provider must not be called without a key")
	}))
	defer srv.Close()

	venues, err := NewGoogleClient(srv.URL, "", time.Second).Nearby(context.Background(), Query{Tag: "pharmacy"})
	require.NoError(t, err)
	assert.Empty(t, venues)
}
