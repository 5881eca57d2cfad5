package cli

import (
	"fmt"
	"time"

	"github.com/julianstephens/khoshoo3/internal/config"
	"github.com/julianstephens/khoshoo3/internal/location"
	"github.com/julianstephens/khoshoo3/internal/models"
	"github.com/julianstephens/khoshoo3/internal/prayer"
	"github.com/julianstephens/khoshoo3/internal/silence"
	"github.com/julianstephens/khoshoo3/internal/storage"
	"github.com/julianstephens/khoshoo3/internal/tracker"
)

type Context struct {
	Store   storage.Provider
	Config  *config.Config
	DND     silence.Controller
	Locator location.Provider
	Tracker *tracker.Tracker
	// Now overrides time.Now in tests
	Now func() time.Time
}

// Clock returns the current time
func (c *Context) Clock() time.Time {
	if c.Now != nil {
		return c.Now()
	}
	return time.Now()
}

// Settings loads the persisted settings
func (c *Context) Settings() (models.Settings, error) {
	settings, err := c.Store.GetSettings()
	if err != nil {
		return models.Settings{}, fmt.Errorf("failed to load settings: %w", err)
	}
	return settings, nil
}

// Repository returns the prayer repository for the stored settings, along
// with the settings themselves
func (c *Context) Repository() (*prayer.Repository, models.Settings, error) {
	settings, err := c.Settings()
	if err != nil {
		return nil, settings, err
	}
	repo, err := c.Tracker.Repository(settings)
	if err != nil {
		return nil, settings, err
	}
	return repo, settings, nil
}

// FormatLocation renders the stored location for status output
func FormatLocation(settings models.Settings) string {
	if !settings.HasLocation {
		return string(tracker.SkipNoLocation)
	}
	return fmt.Sprintf("%.4f, %.4f", settings.Latitude, settings.Longitude)
}

// OnOff renders a boolean as on/off
func OnOff(b bool) string {
	if b {
		return "on"
	}
	return "off"
}
