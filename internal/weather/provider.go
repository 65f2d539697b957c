package weather

import (
	"context"
	"encoding/json"
	"time"
)

// UnitSelection names the units (by wire name) a fetch is parameterized with.
type UnitSelection struct {
	Temperature   string `json:"temperature_unit"`
	WindSpeed     string `json:"wind_speed_unit"`
	Precipitation string `json:"precipitation_unit"`
}

// ForecastClient abstracts the upstream forecast API. Each method returns the
// raw payload of one category; the service joins and decodes them.
type ForecastClient interface {
	Current(ctx context.Context, place Place, units UnitSelection) (json.RawMessage, error)
	Hourly(ctx context.Context, place Place, units UnitSelection, days int) (json.RawMessage, error)
	Daily(ctx context.Context, place Place, units UnitSelection, days int) (json.RawMessage, error)
}

// Geocoder resolves free-text queries to place candidates.
type Geocoder interface {
	Search(ctx context.Context, query string) ([]Place, error)
}

// ForecastCache is the contract the per-place offline store must satisfy.
// Load failures surface as absence, never as errors.
type ForecastCache interface {
	Save(placeName string, payload []byte) error
	Load(placeName string) ([]byte, bool)
}

// Preferences supplies the user's persisted unit selection.
type Preferences interface {
	Units() UnitSelection
}

// Clock lets tests pin "now" for interpolation and fetch stamping.
type Clock func() time.Time
