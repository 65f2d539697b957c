package providers

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/skycast-app/skycast/internal/weather"
	"github.com/sony/gobreaker"
	"golang.org/x/time/rate"
)

// Nominatim resolves free-text queries to place candidates via the
// OpenStreetMap Nominatim search endpoint.
type Nominatim struct {
	baseURL   string
	userAgent string
	httpCfg   HTTPClientConfig
	circuit   *gobreaker.CircuitBreaker
}

// NewNominatim creates a geocoding client. Nominatim's usage policy requires
// an identifying User-Agent and at most one request per second.
func NewNominatim(client *http.Client, userAgent string) *Nominatim {
	cb := gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        "nominatim",
		MaxRequests: 3,
		Interval:    1 * time.Minute,
		Timeout:     2 * time.Minute,
	})

	return &Nominatim{
		baseURL:   "https://nominatim.openstreetmap.org/search",
		userAgent: userAgent,
		httpCfg: HTTPClientConfig{
			Client: client,
			Backoff: BackoffConfig{
				MaxRetries:      2,
				InitialInterval: 500 * time.Millisecond,
				MaxInterval:     5 * time.Second,
			},
			Limiter: rate.NewLimiter(rate.Limit(1), 1),
		},
		circuit: cb,
	}
}

// WithBaseURL points the client at an alternate endpoint. Used by tests.
func (c *Nominatim) WithBaseURL(u string) *Nominatim {
	c.baseURL = u
	return c
}

// Search geocodes a free-text query. Candidates carry display name and
// coordinates; callers decide what to save.
func (c *Nominatim) Search(ctx context.Context, query string) ([]weather.Place, error) {
	buildRequest := func() (*http.Request, error) {
		values := url.Values{}
		values.Set("q", query)
		values.Set("format", "json")

		u := fmt.Sprintf("%s?%s", c.baseURL, values.Encode())
		req, err := http.NewRequest(http.MethodGet, u, nil)
		if err != nil {
			return nil, err
		}
		req.Header.Set("User-Agent", c.userAgent)
		return req, nil
	}

	resp, err := doRequestWithResilience(ctx, c.httpCfg, c.circuit, buildRequest)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	// Coordinates arrive as decimal strings.
	var payload []struct {
		DisplayName string `json:"display_name"`
		Lat         string `json:"lat"`
		Lon         string `json:"lon"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("geocode response: %w", err)
	}

	places := make([]weather.Place, 0, len(payload))
	for _, item := range payload {
		lat, err := strconv.ParseFloat(item.Lat, 64)
		if err != nil {
			continue
		}
		lon, err := strconv.ParseFloat(item.Lon, 64)
		if err != nil {
			continue
		}
		places = append(places, weather.NewPlace(item.DisplayName, lat, lon))
	}
	return places, nil
}
