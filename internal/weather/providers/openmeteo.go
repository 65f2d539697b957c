package providers

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/skycast-app/skycast/internal/weather"
	"github.com/sony/gobreaker"
	"golang.org/x/time/rate"
)

// Upstream field lists, one per category. These are the exact variables the
// merge step expects; trimming them breaks series alignment downstream.
var (
	currentFields = []string{
		"temperature_2m", "relative_humidity_2m", "dew_point_2m",
		"apparent_temperature", "is_day", "precipitation", "rain", "showers",
		"snowfall", "weather_code", "wind_speed_10m", "wind_direction_10m",
		"wind_gusts_10m",
	}
	hourlyFields = []string{
		"temperature_2m", "relative_humidity_2m", "dew_point_2m",
		"apparent_temperature", "weather_code", "precipitation_probability",
		"wind_speed_10m", "wind_direction_10m",
	}
	dailyFields = []string{
		"temperature_2m_max", "temperature_2m_min", "sunrise", "sunset",
		"weather_code", "precipitation_probability_max", "wind_speed_10m_max",
		"wind_direction_10m_dominant", "uv_index_max",
	}
)

// OpenMeteo fetches per-category forecast fragments from the Open-Meteo
// forecast endpoint. It returns the raw category payloads; decoding and
// merging belong to the weather package.
type OpenMeteo struct {
	baseURL string
	httpCfg HTTPClientConfig
	circuit *gobreaker.CircuitBreaker
}

// NewOpenMeteo creates a forecast client. The shared HTTP client carries the
// per-connection timeout; the limiter keeps request dispatch inside the
// upstream fair-use policy.
func NewOpenMeteo(client *http.Client) *OpenMeteo {
	cb := gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        "openmeteo",
		MaxRequests: 5,
		Interval:    1 * time.Minute,
		Timeout:     2 * time.Minute,
	})

	return &OpenMeteo{
		baseURL: "https://api.open-meteo.com/v1/forecast",
		httpCfg: HTTPClientConfig{
			Client: client,
			Backoff: BackoffConfig{
				MaxRetries:      2,
				InitialInterval: 500 * time.Millisecond,
				MaxInterval:     5 * time.Second,
			},
			Limiter: rate.NewLimiter(rate.Limit(5), 10),
		},
		circuit: cb,
	}
}

// WithBaseURL points the client at an alternate endpoint. Used by tests.
func (c *OpenMeteo) WithBaseURL(u string) *OpenMeteo {
	c.baseURL = u
	return c
}

// Current fetches the current-conditions payload for a place.
func (c *OpenMeteo) Current(ctx context.Context, place weather.Place, units weather.UnitSelection) (json.RawMessage, error) {
	return c.fetchCategory(ctx, place, "current", currentFields, 0, units)
}

// Hourly fetches the hourly parallel-array payload covering days forecast days.
func (c *OpenMeteo) Hourly(ctx context.Context, place weather.Place, units weather.UnitSelection, days int) (json.RawMessage, error) {
	return c.fetchCategory(ctx, place, "hourly", hourlyFields, days, units)
}

// Daily fetches the daily parallel-array payload covering days forecast days.
func (c *OpenMeteo) Daily(ctx context.Context, place weather.Place, units weather.UnitSelection, days int) (json.RawMessage, error) {
	return c.fetchCategory(ctx, place, "daily", dailyFields, days, units)
}

func (c *OpenMeteo) fetchCategory(
	ctx context.Context,
	place weather.Place,
	category string,
	fields []string,
	days int,
	units weather.UnitSelection,
) (json.RawMessage, error) {
	buildRequest := func() (*http.Request, error) {
		values := url.Values{}
		values.Set("latitude", strconv.FormatFloat(place.Latitude, 'f', -1, 64))
		values.Set("longitude", strconv.FormatFloat(place.Longitude, 'f', -1, 64))
		values.Set(category, strings.Join(fields, ","))
		if days > 0 {
			values.Set("forecast_days", strconv.Itoa(days))
		}
		// The server resolves the place's local timezone.
		values.Set("timezone", "auto")
		if units.Temperature != "" {
			values.Set("temperature_unit", units.Temperature)
		}
		if units.WindSpeed != "" {
			values.Set("wind_speed_unit", units.WindSpeed)
		}
		if units.Precipitation != "" {
			values.Set("precipitation_unit", units.Precipitation)
		}

		u := fmt.Sprintf("%s?%s", c.baseURL, values.Encode())
		return http.NewRequest(http.MethodGet, u, nil)
	}

	resp, err := doRequestWithResilience(ctx, c.httpCfg, c.circuit, buildRequest)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}

	var envelope map[string]json.RawMessage
	if err := json.Unmarshal(body, &envelope); err != nil {
		return nil, fmt.Errorf("forecast response: %w", err)
	}
	payload, ok := envelope[category]
	if !ok {
		return nil, fmt.Errorf("forecast response missing %q payload", category)
	}
	return payload, nil
}
