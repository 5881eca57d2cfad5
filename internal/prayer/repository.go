// Package prayer computes the daily prayer times and answers whether a moment
// falls inside the silence window around one of them.
package prayer

import (
	"fmt"
	"time"

	"github.com/samber/lo"

	"github.com/julianstephens/khoshoo3/internal/models"
)

// Coordinates is a geographic position in decimal degrees
type Coordinates struct {
	Latitude  float64
	Longitude float64
}

// Times holds the six events of one day
type Times struct {
	Fajr    time.Time
	Sunrise time.Time
	Dhuhr   time.Time
	Asr     time.Time
	Maghrib time.Time
	Isha    time.Time
}

// Calculator is the external astronomical computation: a pure function of
// coordinates and a calendar date.
type Calculator interface {
	Calculate(coords Coordinates, date time.Time) (Times, error)
}

// Repository turns calculator output into PrayerTimeInfo lists in a given time zone
type Repository struct {
	calc Calculator
	loc  *time.Location
}

// NewRepository creates a repository. A nil location means time.Local.
func NewRepository(calc Calculator, loc *time.Location) *Repository {
	if loc == nil {
		loc = time.Local
	}
	return &Repository{calc: calc, loc: loc}
}

// FromSettings builds a repository backed by the adhan calculator using the
// method, madhab and timezone stored in settings.
func FromSettings(settings models.Settings) (*Repository, error) {
	calc, err := NewAdhanCalculator(settings.CalculationMethod, settings.Madhab)
	if err != nil {
		return nil, err
	}
	loc, err := settings.LoadLocation()
	if err != nil {
		return nil, err
	}
	return NewRepository(calc, loc), nil
}

// Location returns the time zone used for calendar dates and display
func (r *Repository) Location() *time.Location {
	return r.loc
}

// GetPrayerTimes returns the six events for the calendar date of date in the
// repository's time zone, in canonical order.
func (r *Repository) GetPrayerTimes(latitude, longitude float64, date time.Time) ([]models.PrayerTimeInfo, error) {
	day := date.In(r.loc)
	times, err := r.calc.Calculate(Coordinates{Latitude: latitude, Longitude: longitude}, day)
	if err != nil {
		return nil, fmt.Errorf("failed to calculate prayer times for %s: %w", day.Format("2006-01-02"), err)
	}

	return []models.PrayerTimeInfo{
		{Name: models.Fajr, Time: times.Fajr.In(r.loc)},
		{Name: models.Sunrise, Time: times.Sunrise.In(r.loc)},
		{Name: models.Dhuhr, Time: times.Dhuhr.In(r.loc)},
		{Name: models.Asr, Time: times.Asr.In(r.loc)},
		{Name: models.Maghrib, Time: times.Maghrib.In(r.loc)},
		{Name: models.Isha, Time: times.Isha.In(r.loc)},
	}, nil
}

// ActualPrayers drops sunrise, which is not a prayer
func ActualPrayers(times []models.PrayerTimeInfo) []models.PrayerTimeInfo {
	return lo.Filter(times, func(p models.PrayerTimeInfo, _ int) bool {
		return p.Name.IsPrayer()
	})
}

// NearestInWindow returns the actual prayer closest to now when its distance
// is at most window. Sunrise is never considered.
func NearestInWindow(times []models.PrayerTimeInfo, now time.Time, window time.Duration) (models.PrayerTimeInfo, bool) {
	candidates := lo.Filter(ActualPrayers(times), func(p models.PrayerTimeInfo, _ int) bool {
		return absDuration(now.Sub(p.Time)) <= window
	})
	if len(candidates) == 0 {
		return models.PrayerTimeInfo{}, false
	}
	return lo.MinBy(candidates, func(a, b models.PrayerTimeInfo) bool {
		return absDuration(now.Sub(a.Time)) < absDuration(now.Sub(b.Time))
	}), true
}

// PrayerInWindow returns the prayer whose window contains now, or nil
func (r *Repository) PrayerInWindow(latitude, longitude float64, now time.Time, window time.Duration) (*models.PrayerTimeInfo, error) {
	times, err := r.GetPrayerTimes(latitude, longitude, now)
	if err != nil {
		return nil, err
	}
	if p, ok := NearestInWindow(times, now, window); ok {
		return &p, nil
	}
	return nil, nil
}

// IsWithinPrayerWindow reports whether now is within windowMinutes of any of
// today's five prayers.
func (r *Repository) IsWithinPrayerWindow(latitude, longitude float64, now time.Time, windowMinutes int) (bool, error) {
	p, err := r.PrayerInWindow(latitude, longitude, now, time.Duration(windowMinutes)*time.Minute)
	if err != nil {
		return false, err
	}
	return p != nil, nil
}

// GetNextPrayer returns the first event, sunrise included, strictly after
// now. After Isha it returns tomorrow's Fajr.
func (r *Repository) GetNextPrayer(latitude, longitude float64, now time.Time) (*models.PrayerTimeInfo, error) {
	times, err := r.GetPrayerTimes(latitude, longitude, now)
	if err != nil {
		return nil, err
	}
	if next, ok := lo.Find(times, func(p models.PrayerTimeInfo) bool {
		return p.Time.After(now)
	}); ok {
		return &next, nil
	}

	tomorrow, err := r.GetPrayerTimes(latitude, longitude, now.In(r.loc).AddDate(0, 0, 1))
	if err != nil {
		return nil, err
	}
	return &tomorrow[0], nil
}

// FormatCountdown renders d as HH:MM:SS. Non-positive durations render as the
// placeholder shown while no target is known.
func FormatCountdown(d time.Duration) string {
	if d <= 0 {
		return "--:--:--"
	}
	total := int(d / time.Second)
	return fmt.Sprintf("%02d:%02d:%02d", total/3600, (total/60)%60, total%60)
}

func absDuration(d time.Duration) time.Duration {
	if d < 0 {
		return -d
	}
	return d
}
