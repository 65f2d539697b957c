package store

import (
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/skycast-app/skycast/internal/weather"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTestPlaceStore(t *testing.T) (*PlaceStore, string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "places.json")
	s, err := NewPlaceStore(path, testLogger())
	require.NoError(t, err)
	return s, path
}

func TestPlaceStoreAddAndList(t *testing.T) {
	s, _ := newTestPlaceStore(t)

	austin := weather.NewPlace("Austin", 30.27, -97.74)
	dallas := weather.NewPlace("Dallas", 32.78, -96.80)
	require.NoError(t, s.Add(austin))
	require.NoError(t, s.Add(dallas))

	got := s.List()
	require.Len(t, got, 2)
	require.Equal(t, "Austin", got[0].Name)
	require.True(t, s.Contains(austin))
}

func TestPlaceStoreDeduplicatesByCoordinates(t *testing.T) {
	s, _ := newTestPlaceStore(t)

	require.NoError(t, s.Add(weather.NewPlace("Austin", 30.27, -97.74)))
	// Same coordinates under a different name and ID is the same place.
	require.NoError(t, s.Add(weather.NewPlace("Austin, TX", 30.27, -97.74)))

	require.Len(t, s.List(), 1)
}

func TestPlaceStoreNeverSavesCurrentLocation(t *testing.T) {
	s, _ := newTestPlaceStore(t)

	require.NoError(t, s.Add(weather.NewPlace(weather.CurrentLocationName, 30.27, -97.74)))
	require.Empty(t, s.List())
}

func TestPlaceStoreRemove(t *testing.T) {
	s, _ := newTestPlaceStore(t)

	austin := weather.NewPlace("Austin", 30.27, -97.74)
	require.NoError(t, s.Add(austin))
	require.NoError(t, s.Remove(austin))
	require.Empty(t, s.List())

	require.ErrorIs(t, s.Remove(austin), ErrPlaceNotFound)
}

func TestPlaceStoreMoveToFront(t *testing.T) {
	s, _ := newTestPlaceStore(t)

	austin := weather.NewPlace("Austin", 30.27, -97.74)
	dallas := weather.NewPlace("Dallas", 32.78, -96.80)
	houston := weather.NewPlace("Houston", 29.76, -95.37)
	require.NoError(t, s.Add(austin))
	require.NoError(t, s.Add(dallas))
	require.NoError(t, s.Add(houston))

	require.NoError(t, s.MoveToFront(houston))

	got := s.List()
	require.Equal(t, []string{"Houston", "Austin", "Dallas"},
		[]string{got[0].Name, got[1].Name, got[2].Name})
	// The entry keeps its identity when reordered.
	require.Equal(t, houston.ID, got[0].ID)

	require.ErrorIs(t, s.MoveToFront(weather.NewPlace("Nowhere", 1, 2)), ErrPlaceNotFound)
}

func TestPlaceStorePersistsAcrossReload(t *testing.T) {
	s, path := newTestPlaceStore(t)

	austin := weather.NewPlace("Austin", 30.27, -97.74)
	require.NoError(t, s.Add(austin))

	reloaded, err := NewPlaceStore(path, testLogger())
	require.NoError(t, err)

	got := reloaded.List()
	require.Len(t, got, 1)
	require.Equal(t, austin, got[0])
}

func TestPlaceStoreCorruptFileStartsEmpty(t *testing.T) {
	path := filepath.Join(t.TempDir(), "places.json")
	require.NoError(t, os.WriteFile(path, []byte("junk"), 0o644))

	s, err := NewPlaceStore(path, testLogger())
	require.NoError(t, err)
	require.Empty(t, s.List())
}

func TestPlaceStoreSignalsChanges(t *testing.T) {
	s, _ := newTestPlaceStore(t)

	require.NoError(t, s.Add(weather.NewPlace("Austin", 30.27, -97.74)))

	select {
	case <-s.Changes():
	default:
		t.Fatal("no change notification after Add")
	}
}
