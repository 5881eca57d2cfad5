package dnd

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/julianstephens/khoshoo3/internal/cli/clitest"
	"github.com/julianstephens/khoshoo3/internal/constants"
	"github.com/julianstephens/khoshoo3/internal/models"
	"github.com/julianstephens/khoshoo3/internal/tracker"
)

func TestAutoSilentOnCmd(t *testing.T) {
	env := clitest.New(t, nil)

	require.NoError(t, (&AutoSilentOnCmd{}).Run(env.Ctx))
	assert.True(t, env.Settings(t).AutoSilentEnabled)
}

func TestAutoSilentOffCmd_ReleasesOwnedDND(t *testing.T) {
	env := clitest.New(t, clitest.WithLocation)
	env.Clock.Set(12, 0)
	_, err := env.Ctx.Tracker.Check(t.Context())
	require.NoError(t, err)
	require.True(t, env.Settings(t).WeEnabledDND)

	require.NoError(t, (&AutoSilentOffCmd{}).Run(env.Ctx))

	settings := env.Settings(t)
	assert.False(t, settings.AutoSilentEnabled)
	assert.False(t, settings.WeEnabledDND)
	active, err := env.DND.IsActive(t.Context())
	require.NoError(t, err)
	assert.False(t, active)
}

func TestAutoSilentOffCmd_LeavesUserDND(t *testing.T) {
	env := clitest.New(t, clitest.WithLocation)
	env.DND.SetActive(true)

	require.NoError(t, (&AutoSilentOffCmd{}).Run(env.Ctx))

	active, err := env.DND.IsActive(t.Context())
	require.NoError(t, err)
	assert.True(t, active)
	_, disables := env.DND.Calls()
	assert.Zero(t, disables)
}

func TestAutoSilentStatusCmd(t *testing.T) {
	assert.NoError(t, (&AutoSilentStatusCmd{}).Run(clitest.New(t, nil).Ctx))

	env := clitest.New(t, clitest.WithLocation)
	env.Clock.Set(15, 40)
	assert.NoError(t, (&AutoSilentStatusCmd{}).Run(env.Ctx))
}

func TestStatusCmd(t *testing.T) {
	env := clitest.New(t, nil)
	assert.NoError(t, (&StatusCmd{}).Run(env.Ctx))

	env.DND.SetGranted(false)
	assert.NoError(t, (&StatusCmd{}).Run(env.Ctx))
}

func TestTestCmd_RefusesUserDND(t *testing.T) {
	env := clitest.New(t, nil)
	env.DND.SetActive(true)

	err := (&TestCmd{Duration: time.Second}).Run(env.Ctx)
	assert.ErrorIs(t, err, tracker.ErrAlreadyActive)
}

func TestHistoryCmd(t *testing.T) {
	env := clitest.New(t, nil)
	assert.NoError(t, (&HistoryCmd{Limit: 5}).Run(env.Ctx))

	require.NoError(t, env.Store.AddEvent(models.DNDEvent{
		ID:         "e1",
		Action:     constants.EventDNDEnabled,
		Reason:     constants.ReasonPrayerWindow,
		Prayer:     models.Fajr,
		Backend:    "memory",
		OccurredAt: env.Clock.Now().Add(-4 * time.Hour),
	}))
	assert.NoError(t, (&HistoryCmd{Limit: 5}).Run(env.Ctx))
}

func TestFormatEvent(t *testing.T) {
	now := time.Date(2026, 3, 14, 12, 0, 0, 0, time.UTC)

	line := formatEvent(models.DNDEvent{
		Action:     constants.EventDNDDisabled,
		Reason:     constants.ReasonWindowClosed,
		Backend:    "dunst",
		OccurredAt: now.Add(-2 * time.Hour),
	}, now)

	assert.Contains(t, line, "disabled")
	assert.Contains(t, line, "window_closed")
	assert.Contains(t, line, "dunst")
	assert.Contains(t, line, "2 hours ago")
}
