package scheduler

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/go-co-op/gocron"

	"github.com/skycast-app/skycast/internal/store"
	"github.com/skycast-app/skycast/internal/weather"
)

// Scheduler keeps the offline cache warm: it periodically refreshes the
// forecast for the front saved place, so the most recently selected place
// stays usable when the network drops.
type Scheduler struct {
	scheduler *gocron.Scheduler
	service   *weather.Service
	places    *store.PlaceStore
	interval  time.Duration
	logger    *slog.Logger
	done      chan struct{}
}

// New creates a Scheduler.
func New(places *store.PlaceStore, interval time.Duration, service *weather.Service, logger *slog.Logger) *Scheduler {
	s := gocron.NewScheduler(time.UTC)
	return &Scheduler{
		scheduler: s,
		service:   service,
		places:    places,
		interval:  interval,
		logger:    logger.With("component", "scheduler"),
		done:      make(chan struct{}),
	}
}

// Start schedules the periodic warm-refresh job and begins reacting to
// saved-place changes. A non-positive interval disables the periodic job;
// change-driven refreshes still run.
func (s *Scheduler) Start() error {
	go s.watchChanges()

	if s.interval <= 0 {
		s.logger.Info("periodic warm refresh disabled")
		return nil
	}

	_, err := s.scheduler.Every(s.interval).Do(s.refreshFront)
	if err != nil {
		return err
	}

	s.scheduler.StartAsync()
	return nil
}

// watchChanges refreshes the front place whenever the saved list mutates, so
// a newly selected place gets a warm cache without waiting for the next tick.
func (s *Scheduler) watchChanges() {
	for {
		select {
		case <-s.done:
			return
		case <-s.places.Changes():
			s.refreshFront()
		}
	}
}

// refreshFront fetches the forecast for the first saved place, if any. The
// list is re-read on every run so selection changes take effect immediately.
func (s *Scheduler) refreshFront() {
	saved := s.places.List()
	if len(saved) == 0 {
		return
	}
	place := saved[0]

	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	if _, err := s.service.Refresh(ctx, place); err != nil {
		// A user-initiated fetch taking over is not a failure.
		if errors.Is(err, weather.ErrSuperseded) {
			return
		}
		s.logger.Warn("warm refresh failed", "place", place.Name, "error", err)
		return
	}
	s.logger.Debug("warm refresh completed", "place", place.Name)
}

// Stop stops the scheduler and cancels any future jobs.
func (s *Scheduler) Stop() {
	close(s.done)
	if s.scheduler != nil {
		s.scheduler.Stop()
	}
}
