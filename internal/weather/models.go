package weather

import (
	"time"

	"github.com/google/uuid"
)

// CurrentLocationName marks the synthetic place built from device location.
// It is never persisted in the place store and never cached.
const CurrentLocationName = "Current Location"

// Place is a named coordinate pair the user tracks weather for.
// ID is assigned once at creation and never recomputed; identity for
// save/remove/contains is the coordinate pair, not the ID.
type Place struct {
	Name      string  `json:"name"`
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
	ID        string  `json:"id"`
}

// NewPlace creates a place with a fresh ID.
func NewPlace(name string, latitude, longitude float64) Place {
	return Place{
		Name:      name,
		Latitude:  latitude,
		Longitude: longitude,
		ID:        uuid.NewString(),
	}
}

// SameLocation reports whether two places refer to the same saved location.
func (p Place) SameLocation(other Place) bool {
	return p.Latitude == other.Latitude && p.Longitude == other.Longitude
}

// IsCurrentLocation reports whether this is the synthetic device-location place.
func (p Place) IsCurrentLocation() bool {
	return p.Name == CurrentLocationName
}

// CurrentConditions holds the scalar observation block of a forecast.
type CurrentConditions struct {
	Temperature         float64 `json:"temperature"`
	RelativeHumidity    float64 `json:"relativeHumidity"`
	DewPoint            float64 `json:"dewPoint"`
	ApparentTemperature float64 `json:"apparentTemperature"`
	IsDay               bool    `json:"isDay"`
	Precipitation       float64 `json:"precipitation"`
	Rain                float64 `json:"rain"`
	Showers             float64 `json:"showers"`
	Snowfall            float64 `json:"snowfall"`
	WeatherCode         int     `json:"weatherCode"`
	WindSpeed           float64 `json:"windSpeed"`
	WindDirection       int     `json:"windDirection"`
	WindGusts           float64 `json:"windGusts"`
}

// HourlySeries holds index-aligned hourly sequences covering the forecast
// horizon. All slices have identical length and Time is strictly increasing
// with a one-hour step.
type HourlySeries struct {
	Time                     []time.Time `json:"time"`
	Temperature              []float64   `json:"temperature"`
	RelativeHumidity         []int       `json:"relativeHumidity"`
	DewPoint                 []float64   `json:"dewPoint"`
	ApparentTemperature      []float64   `json:"apparentTemperature"`
	WeatherCode              []int       `json:"weatherCode"`
	PrecipitationProbability []int       `json:"precipitationProbability"`
	WindSpeed                []float64   `json:"windSpeed"`
	WindDirection            []int       `json:"windDirection"`
}

// Len returns the number of hourly samples.
func (h HourlySeries) Len() int { return len(h.Time) }

// DailySeries holds index-aligned per-day sequences, one entry per calendar
// day of the horizon.
type DailySeries struct {
	Date                        []time.Time `json:"date"`
	MaxTemperature              []float64   `json:"maxTemperature"`
	MinTemperature              []float64   `json:"minTemperature"`
	Sunrise                     []time.Time `json:"sunrise"`
	Sunset                      []time.Time `json:"sunset"`
	WeatherCode                 []int       `json:"weatherCode"`
	PrecipitationProbabilityMax []int       `json:"precipitationProbabilityMax"`
	WindSpeedMax                []float64   `json:"windSpeedMax"`
	WindDirectionDominant       []int       `json:"windDirectionDominant"`
	UVIndexMax                  []float64   `json:"uvIndexMax"`
}

// Len returns the number of forecast days.
func (d DailySeries) Len() int { return len(d.Date) }

// WeatherForecast is the merged result of one fetch cycle. It is built only
// by a successful merge of the three category fetches and is replaced
// wholesale, never mutated.
type WeatherForecast struct {
	Current   CurrentConditions `json:"current"`
	Hourly    HourlySeries      `json:"hourly"`
	Daily     DailySeries       `json:"daily"`
	FetchedAt time.Time         `json:"fetchedAt"`
}

// DayForecast is the derived per-day view of a forecast.
type DayForecast struct {
	Date                        time.Time `json:"date"`
	MaxTemperature              float64   `json:"maxTemperature"`
	MinTemperature              float64   `json:"minTemperature"`
	Sunrise                     time.Time `json:"sunrise"`
	Sunset                      time.Time `json:"sunset"`
	WeatherCode                 int       `json:"weatherCode"`
	PrecipitationProbabilityMax int       `json:"precipitationProbabilityMax"`
	WindSpeedMax                float64   `json:"windSpeedMax"`
	WindDirectionDominant       int       `json:"windDirectionDominant"`
	UVIndexMax                  float64   `json:"uvIndexMax"`
}

// Day returns the per-day view at index i.
func (f *WeatherForecast) Day(i int) (DayForecast, bool) {
	if i < 0 || i >= f.Daily.Len() {
		return DayForecast{}, false
	}
	return DayForecast{
		Date:                        f.Daily.Date[i],
		MaxTemperature:              f.Daily.MaxTemperature[i],
		MinTemperature:              f.Daily.MinTemperature[i],
		Sunrise:                     f.Daily.Sunrise[i],
		Sunset:                      f.Daily.Sunset[i],
		WeatherCode:                 f.Daily.WeatherCode[i],
		PrecipitationProbabilityMax: f.Daily.PrecipitationProbabilityMax[i],
		WindSpeedMax:                f.Daily.WindSpeedMax[i],
		WindDirectionDominant:       f.Daily.WindDirectionDominant[i],
		UVIndexMax:                  f.Daily.UVIndexMax[i],
	}, true
}

// HourForecast is the derived per-hour view of a forecast.
type HourForecast struct {
	Time                     time.Time `json:"time"`
	Temperature              float64   `json:"temperature"`
	WeatherCode              int       `json:"weatherCode"`
	PrecipitationProbability int       `json:"precipitationProbability"`
	WindSpeed                float64   `json:"windSpeed"`
	WindDirection            int       `json:"windDirection"`
}

// Hour returns the per-hour view at index i.
func (f *WeatherForecast) Hour(i int) (HourForecast, bool) {
	if i < 0 || i >= f.Hourly.Len() {
		return HourForecast{}, false
	}
	return HourForecast{
		Time:                     f.Hourly.Time[i],
		Temperature:              f.Hourly.Temperature[i],
		WeatherCode:              f.Hourly.WeatherCode[i],
		PrecipitationProbability: f.Hourly.PrecipitationProbability[i],
		WindSpeed:                f.Hourly.WindSpeed[i],
		WindDirection:            f.Hourly.WindDirection[i],
	}, true
}
