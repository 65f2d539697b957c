package weather

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"
)

var (
	// ErrTimedOut is the distinct surfaced state for a fetch that exceeded
	// the global deadline; callers may retry or fall back to offline mode.
	ErrTimedOut = errors.New("forecast fetch timed out")

	// ErrSuperseded reports that a newer fetch replaced this one before it
	// finished; its result was discarded unpublished.
	ErrSuperseded = errors.New("forecast fetch superseded")

	// ErrNoCachedForecast reports that the offline cache has nothing usable
	// for the requested place.
	ErrNoCachedForecast = errors.New("no cached forecast for place")
)

// ServiceOptions tune fetch behaviour.
type ServiceOptions struct {
	// FetchTimeout bounds one whole fetch cycle, all three categories
	// included. Defaults to 30 seconds.
	FetchTimeout time.Duration
	// ForecastDays is the hourly/daily horizon. Defaults to 15.
	ForecastDays int
}

// Service orchestrates forecast acquisition: it fans one refresh out into
// three concurrent category fetches, joins them, merges the results into a
// single immutable WeatherForecast, publishes it atomically, and writes the
// raw merged payload through to the offline cache for saved places.
//
// Only one fetch is in flight at a time; starting a new one cancels its
// predecessor so a late stale response can never overwrite a newer selection.
type Service struct {
	client  ForecastClient
	cache   ForecastCache
	prefs   Preferences
	logger  *slog.Logger
	timeout time.Duration
	days    int
	now     Clock

	mu       sync.Mutex
	cancel   context.CancelFunc
	gen      uint64
	timedOut bool

	forecast atomic.Pointer[WeatherForecast]
	updates  chan *WeatherForecast
}

// NewService creates a Service.
func NewService(client ForecastClient, cache ForecastCache, prefs Preferences, logger *slog.Logger, opts ServiceOptions) *Service {
	if opts.FetchTimeout <= 0 {
		opts.FetchTimeout = 30 * time.Second
	}
	if opts.ForecastDays <= 0 {
		opts.ForecastDays = 15
	}
	return &Service{
		client:  client,
		cache:   cache,
		prefs:   prefs,
		logger:  logger.With("component", "weather.service"),
		timeout: opts.FetchTimeout,
		days:    opts.ForecastDays,
		now:     time.Now,
		updates: make(chan *WeatherForecast, 1),
	}
}

// Forecast returns the most recently published forecast, or nil before the
// first successful fetch (and after ClearForecast).
func (s *Service) Forecast() *WeatherForecast {
	return s.forecast.Load()
}

// ClearForecast drops the published forecast. Called when the selected place
// changes, so stale data is never shown under a new place's name.
func (s *Service) ClearForecast() {
	s.forecast.Store(nil)
}

// TimedOut reports whether the most recent fetch attempt hit the global
// deadline. Cleared by the next successful merge.
func (s *Service) TimedOut() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.timedOut
}

// Updates emits each newly published forecast. The channel holds the latest
// value only; slow consumers see replacements, not history.
func (s *Service) Updates() <-chan *WeatherForecast {
	return s.updates
}

// Refresh fetches, merges, and publishes a forecast for place. Any prior
// in-flight refresh is cancelled first; last request wins. On success the
// merged raw payload is cached for saved places. No partial forecast is ever
// published: one failing category fails the whole fetch.
func (s *Service) Refresh(ctx context.Context, place Place) (*WeatherForecast, error) {
	s.mu.Lock()
	if s.cancel != nil {
		s.cancel()
	}
	fctx, cancel := context.WithTimeout(ctx, s.timeout)
	s.cancel = cancel
	s.gen++
	gen := s.gen
	s.mu.Unlock()
	defer cancel()

	units := s.prefs.Units()

	// Each category writes a private slot; slots are read only after the join.
	var (
		wg                          sync.WaitGroup
		curRaw, hourlyRaw, dailyRaw json.RawMessage
		curErr, hourlyErr, dailyErr error
	)

	wg.Add(3)
	go func() {
		defer wg.Done()
		curRaw, curErr = s.client.Current(fctx, place, units)
	}()
	go func() {
		defer wg.Done()
		hourlyRaw, hourlyErr = s.client.Hourly(fctx, place, units, s.days)
	}()
	go func() {
		defer wg.Done()
		dailyRaw, dailyErr = s.client.Daily(fctx, place, units, s.days)
	}()
	wg.Wait()

	if err := errors.Join(curErr, hourlyErr, dailyErr); err != nil {
		return nil, s.classifyFetchError(fctx, gen, place, err)
	}

	forecast, err := MergeForecast(curRaw, hourlyRaw, dailyRaw, s.now())
	if err != nil {
		s.logger.Error("forecast merge failed", "place", place.Name, "error", err)
		return nil, err
	}

	payload, err := EncodeMerged(curRaw, hourlyRaw, dailyRaw)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	if gen != s.gen {
		s.mu.Unlock()
		return nil, ErrSuperseded
	}
	s.timedOut = false
	s.forecast.Store(forecast)
	s.mu.Unlock()

	s.publish(forecast)

	if !place.IsCurrentLocation() {
		// Cache write failures are non-fatal: the live forecast already
		// succeeded in memory.
		if err := s.cache.Save(place.Name, payload); err != nil {
			s.logger.Warn("offline cache write failed", "place", place.Name, "error", err)
		}
	}

	s.logger.Info("forecast refreshed",
		"place", place.Name,
		"hours", forecast.Hourly.Len(),
		"days", forecast.Daily.Len())
	return forecast, nil
}

// classifyFetchError separates the distinct timeout state from supersession
// and plain transient failure. The published forecast is left untouched in
// every case.
func (s *Service) classifyFetchError(fctx context.Context, gen uint64, place Place, err error) error {
	s.mu.Lock()
	superseded := gen != s.gen
	timedOut := !superseded && errors.Is(fctx.Err(), context.DeadlineExceeded)
	if timedOut {
		s.timedOut = true
	}
	s.mu.Unlock()

	if superseded {
		return ErrSuperseded
	}
	if timedOut {
		s.logger.Warn("forecast fetch timed out", "place", place.Name)
		return ErrTimedOut
	}
	s.logger.Error("forecast fetch failed", "place", place.Name, "error", err)
	return err
}

// publish replaces any undelivered forecast with the newest one.
func (s *Service) publish(forecast *WeatherForecast) {
	for {
		select {
		case s.updates <- forecast:
			return
		default:
			select {
			case <-s.updates:
			default:
			}
		}
	}
}

// CachedForecast reloads the last successfully merged forecast for a saved
// place from the offline cache. Absent or corrupt entries are reported as
// ErrNoCachedForecast, never raised as I/O failures.
func (s *Service) CachedForecast(place Place) (*WeatherForecast, error) {
	if place.IsCurrentLocation() {
		return nil, ErrNoCachedForecast
	}
	payload, ok := s.cache.Load(place.Name)
	if !ok {
		return nil, ErrNoCachedForecast
	}
	forecast, err := DecodeForecast(payload)
	if err != nil {
		s.logger.Warn("cached forecast unreadable", "place", place.Name, "error", err)
		return nil, ErrNoCachedForecast
	}
	return forecast, nil
}
