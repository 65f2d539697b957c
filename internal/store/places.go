package store

import (
	"encoding/json"
	"errors"
	"log/slog"
	"os"
	"sync"

	"github.com/skycast-app/skycast/internal/weather"
)

// ErrPlaceNotFound is returned when an operation targets a place that is not
// in the store (by coordinate identity).
var ErrPlaceNotFound = errors.New("place not saved")

// PlaceStore is the ordered, persisted list of saved places. The whole list
// is read at startup and rewritten in full on every mutation. Membership,
// removal, and reordering identify places by exact coordinate pair; IDs are
// stable labels, never identity.
type PlaceStore struct {
	mu      sync.RWMutex
	path    string
	places  []weather.Place
	logger  *slog.Logger
	changes chan struct{}
}

// NewPlaceStore loads the saved list from path. A missing file starts empty;
// a corrupt file is logged and treated as empty rather than failing startup.
func NewPlaceStore(path string, logger *slog.Logger) (*PlaceStore, error) {
	s := &PlaceStore{
		path:    path,
		logger:  logger.With("component", "store.places"),
		changes: make(chan struct{}, 1),
	}

	data, err := os.ReadFile(path)
	switch {
	case errors.Is(err, os.ErrNotExist):
		// First run.
	case err != nil:
		return nil, err
	default:
		if err := json.Unmarshal(data, &s.places); err != nil {
			s.logger.Warn("saved places unreadable, starting empty", "error", err)
			s.places = nil
		}
	}
	return s, nil
}

// List returns the places in order, front first.
func (s *PlaceStore) List() []weather.Place {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]weather.Place, len(s.places))
	copy(out, s.places)
	return out
}

// Contains reports whether a place with the same coordinates is saved.
func (s *PlaceStore) Contains(place weather.Place) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.indexOf(place) >= 0
}

// Add appends a place unless one with the same coordinates is already saved.
// The synthetic current-location place is never persisted.
func (s *PlaceStore) Add(place weather.Place) error {
	if place.IsCurrentLocation() {
		return nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.indexOf(place) >= 0 {
		return nil
	}
	s.places = append(s.places, place)
	return s.persist()
}

// Remove deletes the saved place matching by coordinates.
func (s *PlaceStore) Remove(place weather.Place) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	i := s.indexOf(place)
	if i < 0 {
		return ErrPlaceNotFound
	}
	s.places = append(s.places[:i], s.places[i+1:]...)
	return s.persist()
}

// MoveToFront moves an existing entry to index 0 without changing its ID.
// Used whenever a place is selected, implementing recency ordering.
func (s *PlaceStore) MoveToFront(place weather.Place) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	i := s.indexOf(place)
	if i < 0 {
		return ErrPlaceNotFound
	}
	if i == 0 {
		return nil
	}
	moved := s.places[i]
	s.places = append(s.places[:i], s.places[i+1:]...)
	s.places = append([]weather.Place{moved}, s.places...)
	return s.persist()
}

// Changes signals after every successful mutation. The channel holds one
// pending notification; consumers re-read List.
func (s *PlaceStore) Changes() <-chan struct{} {
	return s.changes
}

// indexOf finds a place by coordinate identity. Callers hold the lock.
func (s *PlaceStore) indexOf(place weather.Place) int {
	for i, p := range s.places {
		if p.SameLocation(place) {
			return i
		}
	}
	return -1
}

// persist rewrites the whole list. Callers hold the lock.
func (s *PlaceStore) persist() error {
	data, err := json.MarshalIndent(s.places, "", "  ")
	if err != nil {
		return err
	}
	if err := os.WriteFile(s.path, data, 0o644); err != nil {
		return err
	}
	select {
	case s.changes <- struct{}{}:
	default:
	}
	return nil
}
