package places

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"strconv"
	"time"
)

// DefaultGoogleURL is the Places API Nearby Search endpoint.
const DefaultGoogleURL = "https://maps.googleapis.com/maps/api/place/nearbysearch/json"

// GoogleClient queries the Google Places Nearby Search API.
type GoogleClient struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
	maxRetries int
}

// NewGoogleClient creates a client. An empty baseURL selects DefaultGoogleURL.
// timeout bounds every single HTTP call.
func NewGoogleClient(baseURL, apiKey string, timeout time.Duration) *GoogleClient {
	if baseURL == "" {
		baseURL = DefaultGoogleURL
	}
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &GoogleClient{
		baseURL:    baseURL,
		apiKey:     apiKey,
		httpClient: &http.Client{Timeout: timeout},
		maxRetries: 2,
	}
}

type googleResponse struct {
	Status       string        `json:"status"`
	ErrorMessage string        `json:"error_message"`
	Results      []googlePlace `json:"results"`
}

type googlePlace struct {
	PlaceID  string `json:"place_id"`
	Name     string `json:"name"`
	Vicinity string `json:"vicinity"`
	Geometry struct {
		Location struct {
			Lat float64 `json:"lat"`
			Lng float64 `json:"lng"`
		} `json:"location"`
	} `json:"geometry"`
}

// Nearby implements Provider.
func (c *GoogleClient) Nearby(ctx context.Context, q Query) ([]Venue, error) {
	if c.apiKey == "" {
		log.Printf("[warn] places API key not set, skipping lookup for %s", q.Tag)
		return []Venue{}, nil
	}

	params := url.Values{}
	params.Set("location", fmt.Sprintf("%.6f,%.6f", q.Latitude, q.Longitude))
	params.Set("radius", strconv.Itoa(q.Radius))
	params.Set("type", q.Tag)
	params.Set("key", c.apiKey)
	fullURL := c.baseURL + "?" + params.Encode()

	var result googleResponse
	if err := c.get(ctx, fullURL, &result); err != nil {
		return nil, err
	}

	switch result.Status {
	case "OK", "ZERO_RESULTS", "":
	default:
		return nil, fmt.Errorf("places API status %s: %s", result.Status, result.ErrorMessage)
	}

	venues := make([]Venue, 0, len(result.Results))
	for _, p := range result.Results {
		if p.PlaceID == "" {
			continue
		}
		venues = append(venues, Venue{
			ID:        p.PlaceID,
			Name:      p.Name,
			Latitude:  p.Geometry.Location.Lat,
			Longitude: p.Geometry.Location.Lng,
			Address:   p.Vicinity,
		})
	}
	return venues, nil
}

// get performs the request, retrying with backoff on 429 and 5xx responses.
func (c *GoogleClient) get(ctx context.Context, fullURL string, result interface{}) error {
	var lastErr error
	for attempt := 0; attempt <= c.maxRetries; attempt++ {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, fullURL, nil)
		if err != nil {
			return fmt.Errorf("creating request: %w", err)
		}
		req.Header.Set("Accept", "application/json")

		resp, err := c.httpClient.Do(req)
		if err != nil {
			return fmt.Errorf("calling places API: %w", err)
		}
		body, readErr := io.ReadAll(resp.Body)
		resp.Body.Close()
		if readErr != nil {
			return fmt.Errorf("reading places response: %w", readErr)
		}

		if resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500 {
			lastErr = fmt.Errorf("places API status %d", resp.StatusCode)
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(backoff(resp, attempt)):
				continue
			}
		}

		if resp.StatusCode != http.StatusOK {
			return fmt.Errorf("places API error (status %d): %s", resp.StatusCode, string(body))
		}

		if err := json.Unmarshal(body, result); err != nil {
			return fmt.Errorf("parsing places response: %w", err)
		}
		return nil
	}
	return fmt.Errorf("max retries (%d) exceeded: %w", c.maxRetries, lastErr)
}

// backoff honours Retry-After and otherwise doubles from 250ms.
func backoff(resp *http.Response, attempt int) time.Duration {
	if header := resp.Header.Get("Retry-After"); header != "" {
		if seconds, err := strconv.Atoi(header); err == nil {
			return time.Duration(seconds) * time.Second
		}
	}
	wait := time.Duration(1<<uint(attempt)) * 250 * time.Millisecond
	if wait > 5*time.Second {
		wait = 5 * time.Second
	}
	return wait
}
