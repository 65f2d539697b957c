package config

import (
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type AppConfig struct {
	// FetchTimeout bounds one whole forecast fetch, all categories included.
	FetchTimeout time.Duration

	// HTTPTimeout is the per-request client timeout for upstream calls.
	HTTPTimeout time.Duration

	// ForecastDays is the hourly/daily horizon requested upstream.
	ForecastDays int

	// RefreshInterval controls the background warm-refresh of the front
	// saved place (0 disables it).
	RefreshInterval time.Duration

	// DataDir holds the offline cache, saved places, and preferences.
	DataDir    string
	PlacesPath string
	PrefsPath  string

	// GeocoderAPIKey enables the Google geocoding provider when set;
	// otherwise place search goes through Nominatim only.
	GeocoderAPIKey string

	// UserAgent identifies this service to the geocoding API, which
	// requires one.
	UserAgent string

	Port string
}

// Load reads configuration from environment with sensible defaults.
func Load() (*AppConfig, error) {
	if err := godotenv.Load(); err != nil {
		log.Printf("INFO: No .env file found or error loading it: %v", err)
	}
	cfg := &AppConfig{}

	timeout, err := getenvDuration("FETCH_TIMEOUT", "30s")
	if err != nil {
		return nil, err
	}
	cfg.FetchTimeout = timeout

	httpTimeout, err := getenvDuration("HTTP_TIMEOUT", "15s")
	if err != nil {
		return nil, err
	}
	cfg.HTTPTimeout = httpTimeout

	cfg.ForecastDays = getenvInt("FORECAST_DAYS", 15)

	interval, err := getenvDuration("REFRESH_INTERVAL", "15m")
	if err != nil {
		return nil, err
	}
	cfg.RefreshInterval = interval

	cfg.DataDir = getenvDefault("DATA_DIR", "data")
	cfg.PlacesPath = getenvDefault("PLACES_FILE", filepath.Join(cfg.DataDir, "places.json"))
	cfg.PrefsPath = getenvDefault("PREFS_FILE", filepath.Join(cfg.DataDir, "preferences.json"))

	cfg.GeocoderAPIKey = os.Getenv("GEOCODER_API_KEY")
	cfg.UserAgent = getenvDefault("GEOCODER_USER_AGENT", "skycast/1.0")
	cfg.Port = getenvDefault("PORT", "8080")

	return cfg, nil
}

func getenvDefault(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getenvInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		n, err := strconv.Atoi(v)
		if err == nil {
			return n
		}
	}
	return def
}

func getenvDuration(key, def string) (time.Duration, error) {
	d, err := time.ParseDuration(getenvDefault(key, def))
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return d, nil
}
