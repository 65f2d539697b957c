package providers

import (
	"context"
	"fmt"

	"github.com/kelvins/geocoder"
	"github.com/skycast-app/skycast/internal/weather"
)

// GoogleGeocoder is an alternate forward-geocoding backend for deployments
// with a Google Maps API key. It returns at most one candidate; Nominatim
// remains the default multi-candidate search.
type GoogleGeocoder struct{}

// NewGoogleGeocoder configures the shared geocoder API key and returns a
// client, or nil when no key is configured.
func NewGoogleGeocoder(apiKey string) *GoogleGeocoder {
	if apiKey == "" {
		return nil
	}
	geocoder.ApiKey = apiKey
	return &GoogleGeocoder{}
}

// Search resolves a free-text query to a single place candidate.
// The underlying client has no context plumbing, so cancellation is only
// observed between calls.
func (c *GoogleGeocoder) Search(ctx context.Context, query string) ([]weather.Place, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	location, err := geocoder.Geocoding(geocoder.Address{Street: query})
	if err != nil {
		return nil, fmt.Errorf("google geocoding: %w", err)
	}
	return []weather.Place{
		weather.NewPlace(query, location.Latitude, location.Longitude),
	}, nil
}
