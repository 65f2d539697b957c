package weather

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

var (
	currentJSON = json.RawMessage(`{
		"temperature_2m": 21.4,
		"relative_humidity_2m": 55,
		"dew_point_2m": 12.1,
		"apparent_temperature": 22.0,
		"is_day": 1,
		"precipitation": 0,
		"rain": 0,
		"showers": 0,
		"snowfall": 0,
		"weather_code": 2,
		"wind_speed_10m": 8.3,
		"wind_direction_10m": 270,
		"wind_gusts_10m": 14.9
	}`)

	hourlyJSON = json.RawMessage(`{
		"time": ["2024-01-01T00:00", "2024-01-01T01:00", "2024-01-01T02:00"],
		"temperature_2m": [10, 20, 30],
		"relative_humidity_2m": [50, 53, 60],
		"dew_point_2m": [5, 7, 9],
		"apparent_temperature": [8, 18, 28],
		"weather_code": [0, 61, 3],
		"precipitation_probability": [0, 10, 100],
		"wind_speed_10m": [1, 2, 4],
		"wind_direction_10m": [0, 90, 180]
	}`)

	dailyJSON = json.RawMessage(`{
		"time": ["2024-01-01", "2024-01-02"],
		"temperature_2m_max": [30, 32],
		"temperature_2m_min": [20, 21],
		"sunrise": ["2024-01-01T07:12", "2024-01-02T07:12"],
		"sunset": ["2024-01-01T17:45", "2024-01-02T17:46"],
		"weather_code": [0, 61],
		"precipitation_probability_max": [5, 80],
		"wind_speed_10m_max": [10, 12],
		"wind_direction_10m_dominant": [90, 180],
		"uv_index_max": [6, 3]
	}`)
)

func TestMergeForecast(t *testing.T) {
	fetchedAt := time.Date(2024, 1, 1, 0, 30, 0, 0, time.UTC)

	f, err := MergeForecast(currentJSON, hourlyJSON, dailyJSON, fetchedAt)
	require.NoError(t, err)

	require.Equal(t, 21.4, f.Current.Temperature)
	require.True(t, f.Current.IsDay)
	require.Equal(t, 3, f.Hourly.Len())
	require.Equal(t, 2, f.Daily.Len())
	require.Equal(t, fetchedAt, f.FetchedAt)

	require.Equal(t, time.Date(2024, 1, 1, 7, 12, 0, 0, time.UTC), f.Daily.Sunrise[0])
}

func TestMergeForecastRejectsMisalignedSeries(t *testing.T) {
	short := json.RawMessage(`{
		"time": ["2024-01-01T00:00", "2024-01-01T01:00"],
		"temperature_2m": [10],
		"relative_humidity_2m": [50, 53],
		"dew_point_2m": [5, 7],
		"apparent_temperature": [8, 18],
		"weather_code": [0, 61],
		"precipitation_probability": [0, 10],
		"wind_speed_10m": [1, 2],
		"wind_direction_10m": [0, 90]
	}`)

	_, err := MergeForecast(currentJSON, short, dailyJSON, time.Now())
	require.ErrorContains(t, err, "misaligned")
}

func TestMergeForecastRejectsNonIncreasingTimes(t *testing.T) {
	backwards := json.RawMessage(`{
		"time": ["2024-01-01T01:00", "2024-01-01T00:00"],
		"temperature_2m": [10, 20],
		"relative_humidity_2m": [50, 53],
		"dew_point_2m": [5, 7],
		"apparent_temperature": [8, 18],
		"weather_code": [0, 61],
		"precipitation_probability": [0, 10],
		"wind_speed_10m": [1, 2],
		"wind_direction_10m": [0, 90]
	}`)

	_, err := MergeForecast(currentJSON, backwards, dailyJSON, time.Now())
	require.ErrorContains(t, err, "strictly increasing")
}

func TestDecodeForecastRoundTrip(t *testing.T) {
	payload, err := EncodeMerged(currentJSON, hourlyJSON, dailyJSON)
	require.NoError(t, err)

	f, err := DecodeForecast(payload)
	require.NoError(t, err)

	live, err := MergeForecast(currentJSON, hourlyJSON, dailyJSON, time.Time{})
	require.NoError(t, err)

	require.Equal(t, live.Current, f.Current)
	require.Equal(t, live.Hourly, f.Hourly)
	require.Equal(t, live.Daily, f.Daily)
}

func TestDecodeForecastRejectsGarbage(t *testing.T) {
	_, err := DecodeForecast([]byte("not json"))
	require.Error(t, err)
}
