package store

import (
	"encoding/json"
	"errors"
	"log/slog"
	"os"
	"sync"

	"github.com/skycast-app/skycast/internal/units"
	"github.com/skycast-app/skycast/internal/weather"
)

// PrefStore persists the user's unit selection as wire names. Unknown or
// missing stored values fall back to the defaults, so the fetch layer always
// receives a resolvable unit.
type PrefStore struct {
	mu       sync.RWMutex
	path     string
	logger   *slog.Logger
	defaults weather.UnitSelection
	current  weather.UnitSelection
}

// DefaultUnits is the out-of-the-box unit selection.
var DefaultUnits = weather.UnitSelection{
	Temperature:   units.Fahrenheit.Wire,
	WindSpeed:     units.Mph.Wire,
	Precipitation: units.Inch.Wire,
}

// NewPrefStore loads preferences from path, falling back to defaults for
// anything missing or unresolvable.
func NewPrefStore(path string, defaults weather.UnitSelection, logger *slog.Logger) (*PrefStore, error) {
	s := &PrefStore{
		path:     path,
		logger:   logger.With("component", "store.prefs"),
		defaults: defaults,
		current:  defaults,
	}

	data, err := os.ReadFile(path)
	switch {
	case errors.Is(err, os.ErrNotExist):
		// First run, defaults stand.
	case err != nil:
		return nil, err
	default:
		var stored weather.UnitSelection
		if err := json.Unmarshal(data, &stored); err != nil {
			s.logger.Warn("preferences unreadable, using defaults", "error", err)
		} else {
			s.current = s.sanitize(stored)
		}
	}
	return s, nil
}

// Units returns the active unit selection.
func (s *PrefStore) Units() weather.UnitSelection {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.current
}

// SetUnits validates, applies, and persists a new selection. Unknown wire
// names are replaced by the corresponding default rather than rejected.
func (s *PrefStore) SetUnits(sel weather.UnitSelection) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.current = s.sanitize(sel)

	data, err := json.MarshalIndent(s.current, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(s.path, data, 0o644)
}

// sanitize maps every field through the unit table, substituting the default
// for anything the table does not know.
func (s *PrefStore) sanitize(sel weather.UnitSelection) weather.UnitSelection {
	out := sel
	if u, ok := units.Resolve(sel.Temperature); !ok || u.Quantity != units.Temperature {
		out.Temperature = s.defaults.Temperature
	}
	if u, ok := units.Resolve(sel.WindSpeed); !ok || u.Quantity != units.WindSpeed {
		out.WindSpeed = s.defaults.WindSpeed
	}
	if u, ok := units.Resolve(sel.Precipitation); !ok || u.Quantity != units.Precipitation {
		out.Precipitation = s.defaults.Precipitation
	}
	return out
}
