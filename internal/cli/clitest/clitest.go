// Package clitest builds command contexts backed by a temporary store for
// command tests.
package clitest

import (
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/julianstephens/khoshoo3/internal/cli"
	"github.com/julianstephens/khoshoo3/internal/config"
	"github.com/julianstephens/khoshoo3/internal/location"
	"github.com/julianstephens/khoshoo3/internal/models"
	"github.com/julianstephens/khoshoo3/internal/prayer"
	"github.com/julianstephens/khoshoo3/internal/silence"
	"github.com/julianstephens/khoshoo3/internal/storage/sqlite"
	"github.com/julianstephens/khoshoo3/internal/tracker"
)

// Calculator returns the same wall-clock schedule for every date:
// Fajr 04:30, Sunrise 06:00, Dhuhr 12:00, Asr 15:30, Maghrib 18:45, Isha 20:15.
type Calculator struct{}

func (Calculator) Calculate(_ prayer.Coordinates, date time.Time) (prayer.Times, error) {
	at := func(h, m int) time.Time {
		return time.Date(date.Year(), date.Month(), date.Day(), h, m, 0, 0, date.Location())
	}
	return prayer.Times{
		Fajr:    at(4, 30),
		Sunrise: at(6, 0),
		Dhuhr:   at(12, 0),
		Asr:     at(15, 30),
		Maghrib: at(18, 45),
		Isha:    at(20, 15),
	}, nil
}

// Clock is a settable time source pinned to 2026-03-14 UTC
type Clock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *Clock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *Clock) Set(h, m int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = time.Date(2026, 3, 14, h, m, 0, 0, time.UTC)
}

// Env is a command context with direct access to its fakes
type Env struct {
	Ctx   *cli.Context
	Store *sqlite.Store
	DND   *silence.Memory
	Clock *Clock
}

// Settings reads the stored settings
func (e *Env) Settings(t *testing.T) models.Settings {
	t.Helper()
	s, err := e.Store.GetSettings()
	require.NoError(t, err)
	return s
}

// New creates an initialized store in a temp dir. The stored timezone is
// UTC; mutate may adjust the settings before they are saved.
func New(t *testing.T, mutate func(*models.Settings)) *Env {
	t.Helper()

	store := sqlite.NewStore(filepath.Join(t.TempDir(), "khoshoo3.db"))
	require.NoError(t, store.Init())
	t.Cleanup(func() { store.Close() })

	settings, err := store.GetSettings()
	require.NoError(t, err)
	settings.Timezone = "UTC"
	if mutate != nil {
		mutate(&settings)
	}
	require.NoError(t, store.SaveSettings(settings))

	clock := &Clock{}
	clock.Set(9, 0)
	dnd := silence.NewMemory(true)

	return &Env{
		Ctx: &cli.Context{
			Store:   store,
			Config:  config.Default(),
			DND:     dnd,
			Locator: location.NewStatic(0, 0),
			Tracker: tracker.New(store, dnd,
				tracker.WithClock(clock.Now), tracker.WithCalculator(Calculator{})),
			Now: clock.Now,
		},
		Store: store,
		DND:   dnd,
		Clock: clock,
	}
}

// WithLocation enables auto-silent at a known location
func WithLocation(s *models.Settings) {
	s.AutoSilentEnabled = true
	s.Latitude = 30.0444
	s.Longitude = 31.2357
	s.HasLocation = true
}
