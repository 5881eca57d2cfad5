// Package tracker owns the automatic silencing: it decides on each check
// whether to turn DND on or off and remembers whether the current DND is
// its own.
package tracker

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/julianstephens/khoshoo3/internal/constants"
	"github.com/julianstephens/khoshoo3/internal/location"
	"github.com/julianstephens/khoshoo3/internal/logger"
	"github.com/julianstephens/khoshoo3/internal/models"
	"github.com/julianstephens/khoshoo3/internal/prayer"
	"github.com/julianstephens/khoshoo3/internal/silence"
	"github.com/julianstephens/khoshoo3/internal/storage"
)

// ErrAlreadyActive is returned by TestDND when DND is already on
var ErrAlreadyActive = errors.New("do not disturb is already on")

// SkipReason explains why a check did nothing
type SkipReason string

const (
	SkipNone       SkipReason = ""
	SkipDisabled   SkipReason = "auto-silent is off"
	SkipNoLocation SkipReason = "waiting for location"
)

// Result describes one periodic check
type Result struct {
	Skipped   SkipReason
	InWindow  bool
	Prayer    *models.PrayerTimeInfo
	DNDActive bool
	Action    Action
	State     State
}

// Tracker applies the prayer window to the DND controller
type Tracker struct {
	store storage.Provider
	dnd   silence.Controller
	now   func() time.Time
	calc  prayer.Calculator
	tick  time.Duration

	mu sync.Mutex
}

// Option configures a Tracker
type Option func(*Tracker)

// WithClock overrides time.Now
func WithClock(now func() time.Time) Option {
	return func(t *Tracker) { t.now = now }
}

// WithCalculator replaces the adhan calculator chosen from settings
func WithCalculator(calc prayer.Calculator) Option {
	return func(t *Tracker) { t.calc = calc }
}

func New(store storage.Provider, dnd silence.Controller, opts ...Option) *Tracker {
	t := &Tracker{
		store: store,
		dnd:   dnd,
		now:   time.Now,
		tick:  time.Second,
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// Repository returns the prayer repository configured by settings
func (t *Tracker) Repository(settings models.Settings) (*prayer.Repository, error) {
	if t.calc == nil {
		return prayer.FromSettings(settings)
	}
	loc, err := settings.LoadLocation()
	if err != nil {
		return nil, err
	}
	return prayer.NewRepository(t.calc, loc), nil
}

// Check runs one evaluation: it is the body of the periodic job.
//
// It returns silence.ErrPermissionDenied without touching DND when policy
// access is missing; the scheduler records the failure and the next tick
// tries again.
func (t *Tracker) Check(ctx context.Context) (Result, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	settings, err := t.store.GetSettings()
	if err != nil {
		return Result{}, fmt.Errorf("failed to load settings: %w", err)
	}
	state := StateFromSettings(settings)

	if !settings.AutoSilentEnabled {
		return Result{Skipped: SkipDisabled, State: state}, nil
	}
	if !settings.HasLocation {
		return Result{Skipped: SkipNoLocation, State: state}, nil
	}

	granted, err := t.dnd.PermissionGranted(ctx)
	if err != nil {
		return Result{}, fmt.Errorf("failed to check DND permission: %w", err)
	}
	if !granted {
		return Result{State: state}, silence.ErrPermissionDenied
	}

	repo, err := t.Repository(settings)
	if err != nil {
		return Result{}, err
	}
	now := t.now()
	p, err := repo.PrayerInWindow(settings.Latitude, settings.Longitude, now, settings.Window())
	if err != nil {
		return Result{}, err
	}

	active, err := t.dnd.IsActive(ctx)
	if err != nil {
		return Result{}, fmt.Errorf("failed to read DND state: %w", err)
	}

	decision := Evaluate(state, p != nil, active)
	result := Result{
		InWindow:  p != nil,
		Prayer:    p,
		DNDActive: active,
		Action:    decision.Action,
		State:     decision.Next,
	}
	logger.Debug("Evaluated prayer window",
		"in_window", result.InWindow, "dnd_active", active, "state", state, "action", decision.Action)

	switch decision.Action {
	case ActionEnable:
		if err := t.dnd.Enable(ctx); err != nil {
			return Result{State: state}, fmt.Errorf("failed to enable DND: %w", err)
		}
		result.DNDActive = true
		if !active {
			logger.Info("Enabled DND for prayer", "prayer", p.Name, "at", p.Time.Format(constants.TimeFormat))
			t.record(constants.EventDNDEnabled, constants.ReasonPrayerWindow, p.Name, now)
		}
	case ActionDisable:
		if err := t.dnd.Disable(ctx); err != nil {
			return Result{State: state}, fmt.Errorf("failed to disable DND: %w", err)
		}
		result.DNDActive = false
		logger.Info("Disabled DND after prayer window")
		t.record(constants.EventDNDDisabled, constants.ReasonWindowClosed, "", now)
	}

	if decision.Next == state && decision.Next != WeOwnDND {
		return result, nil
	}

	release, err := t.commit(state, decision.Next)
	if err != nil {
		return result, err
	}
	if !release {
		return result, nil
	}

	// auto-silent was turned off by another process while DND was being
	// enabled, so the DND just enabled is turned off again
	if err := t.dnd.Disable(ctx); err != nil {
		return result, fmt.Errorf("failed to disable DND: %w", err)
	}
	t.record(constants.EventDNDDisabled, constants.ReasonAutoSilentDisabled, "", now)
	result.Action = ActionDisable
	result.DNDActive = false
	result.State = Idle
	logger.Info("Released DND after auto-silent was turned off")

	return result, t.updateSettings(func(s *models.Settings) {
		s.WeEnabledDND = false
	})
}

// commit persists the ownership decision against the stored settings as
// they are now, not as they were read at the start of the check. It
// reports whether the DND that was just enabled must be released: either
// auto-silent is off, or ownership was released since the check began.
// The flag is set either way so a failed release can be retried.
func (t *Tracker) commit(prev, next State) (release bool, err error) {
	err = t.store.UpdateSettings(func(s *models.Settings) {
		release = next == WeOwnDND &&
			(!s.AutoSilentEnabled || (prev == WeOwnDND && !s.WeEnabledDND))
		s.WeEnabledDND = next == WeOwnDND
	})
	if err != nil {
		return false, fmt.Errorf("failed to save settings: %w", err)
	}
	return release, nil
}

// SetAutoSilent is the user toggle. Turning it off releases a DND that
// khoshoo3 turned on; a DND the user set is left alone.
func (t *Tracker) SetAutoSilent(ctx context.Context, enabled bool) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	var owned bool
	if err := t.updateSettings(func(s *models.Settings) {
		s.AutoSilentEnabled = enabled
		owned = s.WeEnabledDND
	}); err != nil {
		return err
	}

	if enabled || !owned {
		return nil
	}

	// The flag stays set when disabling fails so a later toggle can retry
	if err := t.dnd.Disable(ctx); err != nil {
		return fmt.Errorf("failed to disable DND: %w", err)
	}
	t.record(constants.EventDNDDisabled, constants.ReasonAutoSilentDisabled, "", t.now())

	return t.updateSettings(func(s *models.Settings) {
		s.WeEnabledDND = false
	})
}

// UpdateLocation persists a fix and marks the location as known
func (t *Tracker) UpdateLocation(latitude, longitude float64) error {
	if !location.ValidCoordinates(latitude, longitude) {
		return fmt.Errorf("coordinates out of range: %f, %f", latitude, longitude)
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	return t.updateSettings(func(s *models.Settings) {
		s.Latitude = latitude
		s.Longitude = longitude
		s.HasLocation = true
	})
}

// TestDND turns DND on for d, calls onTick with the remaining time every
// second, then turns it off again. Cancelling ctx ends the test early; DND
// is still turned off.
func (t *Tracker) TestDND(ctx context.Context, d time.Duration, onTick func(remaining time.Duration)) error {
	if d <= 0 {
		d = constants.DNDTestDuration
	}

	granted, err := t.dnd.PermissionGranted(ctx)
	if err != nil {
		return fmt.Errorf("failed to check DND permission: %w", err)
	}
	if !granted {
		return silence.ErrPermissionDenied
	}

	active, err := t.dnd.IsActive(ctx)
	if err != nil {
		return fmt.Errorf("failed to read DND state: %w", err)
	}
	if active {
		return ErrAlreadyActive
	}

	if err := t.dnd.Enable(ctx); err != nil {
		return fmt.Errorf("failed to enable DND: %w", err)
	}
	t.record(constants.EventDNDEnabled, constants.ReasonManualTest, "", t.now())

	ticker := time.NewTicker(t.tick)
	defer ticker.Stop()

	remaining := d
	if onTick != nil {
		onTick(remaining)
	}
loop:
	for remaining > 0 {
		select {
		case <-ctx.Done():
			break loop
		case <-ticker.C:
			remaining -= t.tick
			if onTick != nil && remaining > 0 {
				onTick(remaining)
			}
		}
	}

	if err := t.dnd.Disable(context.WithoutCancel(ctx)); err != nil {
		return fmt.Errorf("failed to disable DND: %w", err)
	}
	t.record(constants.EventDNDDisabled, constants.ReasonManualTest, "", t.now())
	return nil
}

// updateSettings applies fn under the store's settings lock, which is
// shared with any other khoshoo3 process using the same store
func (t *Tracker) updateSettings(fn func(*models.Settings)) error {
	if err := t.store.UpdateSettings(fn); err != nil {
		return fmt.Errorf("failed to save settings: %w", err)
	}
	return nil
}

func (t *Tracker) record(action constants.EventAction, reason string, p models.PrayerName, at time.Time) {
	event := models.DNDEvent{
		ID:         uuid.NewString(),
		Action:     action,
		Reason:     reason,
		Prayer:     p,
		Backend:    t.dnd.Name(),
		OccurredAt: at,
	}
	if err := t.store.AddEvent(event); err != nil {
		logger.Warn("Failed to record DND event", "action", action, "error", err)
	}
}
