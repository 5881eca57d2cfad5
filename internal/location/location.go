// Package location resolves the device's coordinates.
//
// Providers return one best-effort fix. A missing fix is reported as
// ErrNoFix and leaves the automatic silencing inert.
package location

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/julianstephens/khoshoo3/internal/config"
	"github.com/julianstephens/khoshoo3/internal/constants"
)

// ErrNoFix is returned when no location is available
var ErrNoFix = errors.New("no location fix available")

// Fix is a single position report
type Fix struct {
	Latitude  float64
	Longitude float64
	// Accuracy in meters, zero when unknown
	Accuracy float64
	Source   string
	At       time.Time
}

func (f Fix) String() string {
	return fmt.Sprintf("%.4f, %.4f (%s)", f.Latitude, f.Longitude, f.Source)
}

// Provider locates the device
type Provider interface {
	Name() string
	Locate(ctx context.Context) (Fix, error)
}

// NewFromConfig builds the provider selected in the configuration
func NewFromConfig(cfg *config.LocationConfig) (Provider, error) {
	if cfg == nil {
		return NewStatic(0, 0), nil
	}

	switch constants.LocationProvider(cfg.Provider) {
	case constants.LocationStatic, "":
		return NewStatic(cfg.Latitude, cfg.Longitude), nil
	case constants.LocationGeoClue:
		return NewGeoClue(cfg.DesktopID, cfg.Timeout), nil
	case constants.LocationIPAPI:
		return NewIPAPI(cfg.IPAPIURL, cfg.Timeout), nil
	default:
		return nil, fmt.Errorf("unknown location provider %q", cfg.Provider)
	}
}

// ValidCoordinates reports whether lat/lng are within range
func ValidCoordinates(lat, lng float64) bool {
	return lat >= -90 && lat <= 90 && lng >= -180 && lng <= 180
}
