package httpapi

import (
	"errors"
	"strconv"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"

	"github.com/skycast-app/skycast/internal/store"
	"github.com/skycast-app/skycast/internal/units"
	"github.com/skycast-app/skycast/internal/weather"
)

var validate = validator.New()

// Deps collects everything the handlers need.
type Deps struct {
	Service  *weather.Service
	Geocoder weather.Geocoder
	Places   *store.PlaceStore
	Prefs    *store.PrefStore
}

// RegisterRoutes wires the HTTP handlers into the Fiber app.
func RegisterRoutes(app *fiber.App, deps Deps) {
	v1 := app.Group("/api/v1")

	v1.Get("/forecast", func(c *fiber.Ctx) error {
		place, err := parsePlaceQuery(c)
		if err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}

		forecast, err := deps.Service.Refresh(c.Context(), place)
		if err != nil {
			switch {
			case errors.Is(err, weather.ErrSuperseded):
				return fiber.NewError(fiber.StatusConflict, "superseded by a newer request")
			case errors.Is(err, weather.ErrTimedOut):
				return fiber.NewError(fiber.StatusGatewayTimeout, "forecast fetch timed out")
			default:
				return fiber.NewError(fiber.StatusBadGateway, "failed to fetch forecast")
			}
		}
		return c.JSON(forecast)
	})

	v1.Get("/forecast/offline", func(c *fiber.Ctx) error {
		place, err := parsePlaceQuery(c)
		if err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}
		at, err := parseAt(c.Query("at"))
		if err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}

		forecast, err := deps.Service.CachedForecast(place)
		if err != nil {
			return fiber.NewError(fiber.StatusNotFound, "no cached forecast for place")
		}
		return c.JSON(weatherAt(forecast, at))
	})

	v1.Get("/places", func(c *fiber.Ctx) error {
		return c.JSON(deps.Places.List())
	})

	v1.Post("/places", func(c *fiber.Ctx) error {
		var req placeBody
		if err := c.BodyParser(&req); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}
		if err := validate.Struct(req); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}

		place := weather.NewPlace(req.Name, req.Latitude, req.Longitude)
		if err := deps.Places.Add(place); err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "failed to save place")
		}
		return c.Status(fiber.StatusCreated).JSON(place)
	})

	v1.Delete("/places", func(c *fiber.Ctx) error {
		place, err := parsePlaceQuery(c)
		if err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}
		if err := deps.Places.Remove(place); err != nil {
			if errors.Is(err, store.ErrPlaceNotFound) {
				return fiber.NewError(fiber.StatusNotFound, "place not saved")
			}
			return fiber.NewError(fiber.StatusInternalServerError, "failed to remove place")
		}
		return c.SendStatus(fiber.StatusNoContent)
	})

	v1.Post("/places/select", func(c *fiber.Ctx) error {
		place, err := parsePlaceQuery(c)
		if err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}

		// Selecting a place invalidates whatever forecast is showing so
		// stale data never appears under the new place's name.
		deps.Service.ClearForecast()

		if !place.IsCurrentLocation() {
			if err := deps.Places.MoveToFront(place); err != nil {
				if errors.Is(err, store.ErrPlaceNotFound) {
					return fiber.NewError(fiber.StatusNotFound, "place not saved")
				}
				return fiber.NewError(fiber.StatusInternalServerError, "failed to reorder places")
			}
		}
		return c.SendStatus(fiber.StatusNoContent)
	})

	v1.Get("/geocode", func(c *fiber.Ctx) error {
		query := c.Query("q")
		if query == "" {
			return fiber.NewError(fiber.StatusBadRequest, "q query parameter is required")
		}

		places, err := deps.Geocoder.Search(c.Context(), query)
		if err != nil {
			return fiber.NewError(fiber.StatusBadGateway, "geocoding failed")
		}
		return c.JSON(places)
	})

	v1.Get("/units", func(c *fiber.Ctx) error {
		catalog := make([]fiber.Map, 0, len(units.All))
		for _, u := range units.All {
			catalog = append(catalog, fiber.Map{
				"quantity": u.Quantity.String(),
				"wire":     u.Wire,
				"display":  u.Display,
			})
		}
		return c.JSON(catalog)
	})

	v1.Get("/preferences", func(c *fiber.Ctx) error {
		return c.JSON(deps.Prefs.Units())
	})

	v1.Put("/preferences", func(c *fiber.Ctx) error {
		var sel weather.UnitSelection
		if err := c.BodyParser(&sel); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}
		if err := deps.Prefs.SetUnits(sel); err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "failed to save preferences")
		}
		return c.JSON(deps.Prefs.Units())
	})
}

// placeBody is the add-place request payload.
type placeBody struct {
	Name      string  `json:"name" validate:"required"`
	Latitude  float64 `json:"latitude" validate:"min=-90,max=90"`
	Longitude float64 `json:"longitude" validate:"min=-180,max=180"`
}

// parsePlaceQuery reads a place identity from query parameters.
func parsePlaceQuery(c *fiber.Ctx) (weather.Place, error) {
	latStr := c.Query("latitude")
	lonStr := c.Query("longitude")
	if latStr == "" || lonStr == "" {
		return weather.Place{}, errors.New("latitude and longitude query parameters are required")
	}

	lat, err := strconv.ParseFloat(latStr, 64)
	if err != nil {
		return weather.Place{}, errors.New("invalid latitude")
	}
	lon, err := strconv.ParseFloat(lonStr, 64)
	if err != nil {
		return weather.Place{}, errors.New("invalid longitude")
	}
	if lat < -90 || lat > 90 || lon < -180 || lon > 180 {
		return weather.Place{}, errors.New("coordinates out of range")
	}

	name := c.Query("name")
	if name == "" {
		name = weather.CurrentLocationName
	}
	return weather.NewPlace(name, lat, lon), nil
}

// parseAt parses the instant for offline lookups, defaulting to now.
func parseAt(s string) (time.Time, error) {
	if s == "" {
		return time.Now(), nil
	}
	at, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return time.Time{}, errors.New("invalid at; use RFC3339")
	}
	return at, nil
}

// weatherAt assembles the interpolated view of a cached forecast at one
// instant. Quantities outside the hourly range are omitted rather than
// guessed.
func weatherAt(f *weather.WeatherForecast, at time.Time) fiber.Map {
	out := fiber.Map{"at": at}

	if v, ok := f.TemperatureAt(at); ok {
		out["temperature"] = v
	}
	if v, ok := f.DewPointAt(at); ok {
		out["dew_point"] = v
	}
	if v, ok := f.ApparentTemperatureAt(at); ok {
		out["apparent_temperature"] = v
	}
	if v, ok := f.RelativeHumidityAt(at); ok {
		out["relative_humidity"] = v
	}
	if v, ok := f.PrecipitationProbabilityAt(at); ok {
		out["precipitation_probability"] = v
	}
	if v, ok := f.WindSpeedAt(at); ok {
		out["wind_speed"] = v
	}
	if v, ok := f.WindDirectionAt(at); ok {
		out["wind_direction"] = v
		out["wind_compass"] = units.CompassPoint(v)
	}
	if code, ok := f.WeatherCodeAt(at); ok {
		out["weather_code"] = code
		out["weather_description"] = units.WeatherCodeDescription(code)
	}
	if day, ok := f.DayOn(at); ok {
		out["day"] = day
	}
	return out
}
