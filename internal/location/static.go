package location

import (
	"context"
	"time"

	"github.com/julianstephens/khoshoo3/internal/constants"
)

// Static returns coordinates taken from the config file. Zero coordinates
// mean none were configured.
type Static struct {
	lat, lng float64
}

func NewStatic(lat, lng float64) *Static {
	return &Static{lat: lat, lng: lng}
}

func (s *Static) Name() string { return string(constants.LocationStatic) }

func (s *Static) Locate(context.Context) (Fix, error) {
	if s.lat == 0 && s.lng == 0 {
		return Fix{}, ErrNoFix
	}
	return Fix{Latitude: s.lat, Longitude: s.lng, Source: s.Name(), At: time.Now()}, nil
}
