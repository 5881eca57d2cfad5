package models

import (
	"fmt"
	"time"
)

// Settings holds the persisted state shared by the toggle, the location
// updater and the periodic check
type Settings struct {
	AutoSilentEnabled bool    `json:"auto_silent_enabled"` // whether the periodic check may toggle DND
	Latitude          float64 `json:"latitude"`            // last known latitude
	Longitude         float64 `json:"longitude"`           // last known longitude
	HasLocation       bool    `json:"has_location"`        // whether Latitude/Longitude hold a real fix
	WeEnabledDND      bool    `json:"we_enabled_dnd"`      // whether DND is currently on because we turned it on
	WindowMinutes     int     `json:"window_minutes"`      // minutes either side of a prayer to stay silent
	CalculationMethod string  `json:"calculation_method"`  // e.g. "egyptian", "mwl", "isna"
	Madhab            string  `json:"madhab"`              // "shafi" or "hanafi" (affects Asr)
	Timezone          string  `json:"timezone"`            // IANA timezone name or "Local"
}

// Window returns the prayer window as a duration
func (s Settings) Window() time.Duration {
	return time.Duration(s.WindowMinutes) * time.Minute
}

// LoadLocation resolves the configured timezone
func (s Settings) LoadLocation() (*time.Location, error) {
	if s.Timezone == "" || s.Timezone == "Local" {
		return time.Local, nil
	}
	loc, err := time.LoadLocation(s.Timezone)
	if err != nil {
		return nil, fmt.Errorf("invalid timezone %q: %w", s.Timezone, err)
	}
	return loc, nil
}
