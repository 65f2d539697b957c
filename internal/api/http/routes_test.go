package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/require"

	"github.com/skycast-app/skycast/internal/store"
	"github.com/skycast-app/skycast/internal/weather"
)

type failingClient struct{}

func (failingClient) Current(context.Context, weather.Place, weather.UnitSelection) (json.RawMessage, error) {
	return nil, errors.New("upstream down")
}

func (failingClient) Hourly(context.Context, weather.Place, weather.UnitSelection, int) (json.RawMessage, error) {
	return nil, errors.New("upstream down")
}

func (failingClient) Daily(context.Context, weather.Place, weather.UnitSelection, int) (json.RawMessage, error) {
	return nil, errors.New("upstream down")
}

type stubGeocoder struct {
	places []weather.Place
	err    error
}

func (g stubGeocoder) Search(context.Context, string) ([]weather.Place, error) {
	return g.places, g.err
}

func newTestApp(t *testing.T, geo weather.Geocoder) (*fiber.App, Deps) {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	dir := t.TempDir()

	cache, err := store.NewFileCache(filepath.Join(dir, "forecasts"), logger)
	require.NoError(t, err)
	places, err := store.NewPlaceStore(filepath.Join(dir, "places.json"), logger)
	require.NoError(t, err)
	prefs, err := store.NewPrefStore(filepath.Join(dir, "preferences.json"), store.DefaultUnits, logger)
	require.NoError(t, err)

	svc := weather.NewService(failingClient{}, cache, prefs, logger, weather.ServiceOptions{})

	deps := Deps{Service: svc, Geocoder: geo, Places: places, Prefs: prefs}
	app := fiber.New()
	RegisterRoutes(app, deps)
	return app, deps
}

func TestForecastCoordinateValidation(t *testing.T) {
	app, _ := newTestApp(t, stubGeocoder{})

	for _, target := range []string{
		"/api/v1/forecast",
		"/api/v1/forecast?latitude=30.27",
		"/api/v1/forecast?latitude=91&longitude=0",
		"/api/v1/forecast?latitude=abc&longitude=0",
	} {
		req := httptest.NewRequest(http.MethodGet, target, nil)
		resp, err := app.Test(req)
		require.NoError(t, err)
		require.Equal(t, http.StatusBadRequest, resp.StatusCode, target)
	}
}

func TestForecastUpstreamFailure(t *testing.T) {
	app, _ := newTestApp(t, stubGeocoder{})

	req := httptest.NewRequest(http.MethodGet, "/api/v1/forecast?latitude=30.27&longitude=-97.74&name=Austin", nil)
	resp, err := app.Test(req)
	require.NoError(t, err)
	require.Equal(t, http.StatusBadGateway, resp.StatusCode)
}

func TestOfflineForecastAbsent(t *testing.T) {
	app, _ := newTestApp(t, stubGeocoder{})

	req := httptest.NewRequest(http.MethodGet, "/api/v1/forecast/offline?latitude=30.27&longitude=-97.74&name=Austin", nil)
	resp, err := app.Test(req)
	require.NoError(t, err)
	require.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestPlacesLifecycle(t *testing.T) {
	app, deps := newTestApp(t, stubGeocoder{})

	body := strings.NewReader(`{"name":"Austin","latitude":30.27,"longitude":-97.74}`)
	req := httptest.NewRequest(http.MethodPost, "/api/v1/places", body)
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req)
	require.NoError(t, err)
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	req = httptest.NewRequest(http.MethodGet, "/api/v1/places", nil)
	resp, err = app.Test(req)
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var saved []weather.Place
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&saved))
	require.Len(t, saved, 1)
	require.Equal(t, "Austin", saved[0].Name)

	req = httptest.NewRequest(http.MethodDelete, "/api/v1/places?latitude=30.27&longitude=-97.74", nil)
	resp, err = app.Test(req)
	require.NoError(t, err)
	require.Equal(t, http.StatusNoContent, resp.StatusCode)
	require.Empty(t, deps.Places.List())
}

func TestAddPlaceValidation(t *testing.T) {
	app, _ := newTestApp(t, stubGeocoder{})

	// Missing name.
	body := strings.NewReader(`{"latitude":30.27,"longitude":-97.74}`)
	req := httptest.NewRequest(http.MethodPost, "/api/v1/places", body)
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req)
	require.NoError(t, err)
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestSelectPlaceMovesToFront(t *testing.T) {
	app, deps := newTestApp(t, stubGeocoder{})

	austin := weather.NewPlace("Austin", 30.27, -97.74)
	dallas := weather.NewPlace("Dallas", 32.78, -96.80)
	require.NoError(t, deps.Places.Add(austin))
	require.NoError(t, deps.Places.Add(dallas))

	req := httptest.NewRequest(http.MethodPost, "/api/v1/places/select?latitude=32.78&longitude=-96.80&name=Dallas", nil)
	resp, err := app.Test(req)
	require.NoError(t, err)
	require.Equal(t, http.StatusNoContent, resp.StatusCode)

	got := deps.Places.List()
	require.Equal(t, "Dallas", got[0].Name)
}

func TestSelectUnknownPlace(t *testing.T) {
	app, _ := newTestApp(t, stubGeocoder{})

	req := httptest.NewRequest(http.MethodPost, "/api/v1/places/select?latitude=1&longitude=2&name=Nowhere", nil)
	resp, err := app.Test(req)
	require.NoError(t, err)
	require.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestGeocodeSearch(t *testing.T) {
	geo := stubGeocoder{places: []weather.Place{weather.NewPlace("Austin, Texas", 30.27, -97.74)}}
	app, _ := newTestApp(t, geo)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/geocode?q=austin", nil)
	resp, err := app.Test(req)
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var places []weather.Place
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&places))
	require.Len(t, places, 1)

	req = httptest.NewRequest(http.MethodGet, "/api/v1/geocode", nil)
	resp, err = app.Test(req)
	require.NoError(t, err)
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestUnitCatalog(t *testing.T) {
	app, _ := newTestApp(t, stubGeocoder{})

	req := httptest.NewRequest(http.MethodGet, "/api/v1/units", nil)
	resp, err := app.Test(req)
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var catalog []map[string]string
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&catalog))
	require.Len(t, catalog, 8)
}

func TestPreferencesRoundTrip(t *testing.T) {
	app, _ := newTestApp(t, stubGeocoder{})

	body := strings.NewReader(`{"temperature_unit":"celsius","wind_speed_unit":"kmh","precipitation_unit":"mm"}`)
	req := httptest.NewRequest(http.MethodPut, "/api/v1/preferences", body)
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req)
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	req = httptest.NewRequest(http.MethodGet, "/api/v1/preferences", nil)
	resp, err = app.Test(req)
	require.NoError(t, err)

	var sel weather.UnitSelection
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&sel))
	require.Equal(t, "celsius", sel.Temperature)
}
