package weather

import (
	"encoding/json"
	"fmt"
	"time"
)

// Wire layouts used by the forecast API: ISO-8601 local time without a zone
// designator, and plain calendar dates.
const (
	wireTimeLayout = "2006-01-02T15:04"
	wireDateLayout = "2006-01-02"
)

type currentPayload struct {
	Temperature         float64 `json:"temperature_2m"`
	RelativeHumidity    float64 `json:"relative_humidity_2m"`
	DewPoint            float64 `json:"dew_point_2m"`
	ApparentTemperature float64 `json:"apparent_temperature"`
	IsDay               int     `json:"is_day"`
	Precipitation       float64 `json:"precipitation"`
	Rain                float64 `json:"rain"`
	Showers             float64 `json:"showers"`
	Snowfall            float64 `json:"snowfall"`
	WeatherCode         int     `json:"weather_code"`
	WindSpeed           float64 `json:"wind_speed_10m"`
	WindDirection       int     `json:"wind_direction_10m"`
	WindGusts           float64 `json:"wind_gusts_10m"`
}

type hourlyPayload struct {
	Time                     []string  `json:"time"`
	Temperature              []float64 `json:"temperature_2m"`
	RelativeHumidity         []int     `json:"relative_humidity_2m"`
	DewPoint                 []float64 `json:"dew_point_2m"`
	ApparentTemperature      []float64 `json:"apparent_temperature"`
	WeatherCode              []int     `json:"weather_code"`
	PrecipitationProbability []int     `json:"precipitation_probability"`
	WindSpeed                []float64 `json:"wind_speed_10m"`
	WindDirection            []int     `json:"wind_direction_10m"`
}

type dailyPayload struct {
	Time                        []string  `json:"time"`
	MaxTemperature              []float64 `json:"temperature_2m_max"`
	MinTemperature              []float64 `json:"temperature_2m_min"`
	Sunrise                     []string  `json:"sunrise"`
	Sunset                      []string  `json:"sunset"`
	WeatherCode                 []int     `json:"weather_code"`
	PrecipitationProbabilityMax []int     `json:"precipitation_probability_max"`
	WindSpeedMax                []float64 `json:"wind_speed_10m_max"`
	WindDirectionDominant       []int     `json:"wind_direction_10m_dominant"`
	UVIndexMax                  []float64 `json:"uv_index_max"`
}

// mergedDocument is the cached wire form of one fetch cycle: the three raw
// category payloads under their upstream keys.
type mergedDocument struct {
	Current json.RawMessage `json:"current"`
	Hourly  json.RawMessage `json:"hourly"`
	Daily   json.RawMessage `json:"daily"`
}

// EncodeMerged assembles the raw category payloads into the single document
// persisted by the offline cache.
func EncodeMerged(current, hourly, daily json.RawMessage) ([]byte, error) {
	return json.Marshal(mergedDocument{Current: current, Hourly: hourly, Daily: daily})
}

// MergeForecast decodes and joins the three raw category payloads into one
// WeatherForecast. Any decode or alignment failure fails the whole merge;
// partial forecasts are never produced.
func MergeForecast(current, hourly, daily json.RawMessage, fetchedAt time.Time) (*WeatherForecast, error) {
	cur, err := decodeCurrent(current)
	if err != nil {
		return nil, fmt.Errorf("current conditions: %w", err)
	}
	hr, err := decodeHourly(hourly)
	if err != nil {
		return nil, fmt.Errorf("hourly series: %w", err)
	}
	dy, err := decodeDaily(daily)
	if err != nil {
		return nil, fmt.Errorf("daily series: %w", err)
	}
	return &WeatherForecast{Current: cur, Hourly: hr, Daily: dy, FetchedAt: fetchedAt}, nil
}

// DecodeForecast parses a previously cached merged document.
func DecodeForecast(payload []byte) (*WeatherForecast, error) {
	var doc mergedDocument
	if err := json.Unmarshal(payload, &doc); err != nil {
		return nil, fmt.Errorf("merged document: %w", err)
	}
	return MergeForecast(doc.Current, doc.Hourly, doc.Daily, time.Time{})
}

func decodeCurrent(raw json.RawMessage) (CurrentConditions, error) {
	var p currentPayload
	if err := json.Unmarshal(raw, &p); err != nil {
		return CurrentConditions{}, err
	}
	return CurrentConditions{
		Temperature:         p.Temperature,
		RelativeHumidity:    p.RelativeHumidity,
		DewPoint:            p.DewPoint,
		ApparentTemperature: p.ApparentTemperature,
		IsDay:               p.IsDay == 1,
		Precipitation:       p.Precipitation,
		Rain:                p.Rain,
		Showers:             p.Showers,
		Snowfall:            p.Snowfall,
		WeatherCode:         p.WeatherCode,
		WindSpeed:           p.WindSpeed,
		WindDirection:       p.WindDirection,
		WindGusts:           p.WindGusts,
	}, nil
}

func decodeHourly(raw json.RawMessage) (HourlySeries, error) {
	var p hourlyPayload
	if err := json.Unmarshal(raw, &p); err != nil {
		return HourlySeries{}, err
	}

	n := len(p.Time)
	if err := aligned(n,
		len(p.Temperature), len(p.RelativeHumidity), len(p.DewPoint),
		len(p.ApparentTemperature), len(p.WeatherCode), len(p.PrecipitationProbability),
		len(p.WindSpeed), len(p.WindDirection)); err != nil {
		return HourlySeries{}, err
	}

	times, err := parseTimes(p.Time, wireTimeLayout)
	if err != nil {
		return HourlySeries{}, err
	}
	for i := 1; i < len(times); i++ {
		if !times[i].After(times[i-1]) {
			return HourlySeries{}, fmt.Errorf("timestamps not strictly increasing at index %d", i)
		}
	}

	return HourlySeries{
		Time:                     times,
		Temperature:              p.Temperature,
		RelativeHumidity:         p.RelativeHumidity,
		DewPoint:                 p.DewPoint,
		ApparentTemperature:      p.ApparentTemperature,
		WeatherCode:              p.WeatherCode,
		PrecipitationProbability: p.PrecipitationProbability,
		WindSpeed:                p.WindSpeed,
		WindDirection:            p.WindDirection,
	}, nil
}

func decodeDaily(raw json.RawMessage) (DailySeries, error) {
	var p dailyPayload
	if err := json.Unmarshal(raw, &p); err != nil {
		return DailySeries{}, err
	}

	n := len(p.Time)
	if err := aligned(n,
		len(p.MaxTemperature), len(p.MinTemperature), len(p.Sunrise), len(p.Sunset),
		len(p.WeatherCode), len(p.PrecipitationProbabilityMax), len(p.WindSpeedMax),
		len(p.WindDirectionDominant), len(p.UVIndexMax)); err != nil {
		return DailySeries{}, err
	}

	dates, err := parseTimes(p.Time, wireDateLayout)
	if err != nil {
		return DailySeries{}, err
	}
	sunrise, err := parseTimes(p.Sunrise, wireTimeLayout)
	if err != nil {
		return DailySeries{}, err
	}
	sunset, err := parseTimes(p.Sunset, wireTimeLayout)
	if err != nil {
		return DailySeries{}, err
	}

	return DailySeries{
		Date:                        dates,
		MaxTemperature:              p.MaxTemperature,
		MinTemperature:              p.MinTemperature,
		Sunrise:                     sunrise,
		Sunset:                      sunset,
		WeatherCode:                 p.WeatherCode,
		PrecipitationProbabilityMax: p.PrecipitationProbabilityMax,
		WindSpeedMax:                p.WindSpeedMax,
		WindDirectionDominant:       p.WindDirectionDominant,
		UVIndexMax:                  p.UVIndexMax,
	}, nil
}

// aligned verifies every parallel sequence matches the time axis length.
func aligned(n int, lengths ...int) error {
	for _, l := range lengths {
		if l != n {
			return fmt.Errorf("parallel series misaligned: len %d, want %d", l, n)
		}
	}
	return nil
}

func parseTimes(values []string, layout string) ([]time.Time, error) {
	out := make([]time.Time, len(values))
	for i, v := range values {
		t, err := time.Parse(layout, v)
		if err != nil {
			// Some feeds include seconds.
			t, err = time.Parse(layout+":05", v)
			if err != nil {
				return nil, fmt.Errorf("timestamp %q: %w", v, err)
			}
		}
		out[i] = t
	}
	return out, nil
}
