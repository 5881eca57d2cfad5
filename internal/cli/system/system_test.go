package system

import (
	"context"
	"errors"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	gokeyring "github.com/zalando/go-keyring"

	"github.com/julianstephens/khoshoo3/internal/backup"
	"github.com/julianstephens/khoshoo3/internal/cli"
	"github.com/julianstephens/khoshoo3/internal/cli/clitest"
	"github.com/julianstephens/khoshoo3/internal/constants"
	"github.com/julianstephens/khoshoo3/internal/keyring"
	"github.com/julianstephens/khoshoo3/internal/location"
	"github.com/julianstephens/khoshoo3/internal/models"
	"github.com/julianstephens/khoshoo3/internal/scheduler"
	"github.com/julianstephens/khoshoo3/internal/silence"
	"github.com/julianstephens/khoshoo3/internal/storage/sqlite"
	"github.com/julianstephens/khoshoo3/internal/tracker"
)

func TestInitCmd_FreshStore(t *testing.T) {
	store := sqlite.NewStore(filepath.Join(t.TempDir(), "nested", "khoshoo3.db"))
	t.Cleanup(func() { store.Close() })
	ctx := &cli.Context{Store: store}

	require.NoError(t, (&InitCmd{}).Run(ctx))

	settings, err := store.GetSettings()
	require.NoError(t, err)
	assert.Equal(t, models.DefaultSettings(), settings)
}

func TestInitCmd_Force(t *testing.T) {
	env := clitest.New(t, clitest.WithLocation)

	require.NoError(t, (&InitCmd{Force: true}).Run(env.Ctx))

	settings := env.Settings(t)
	assert.False(t, settings.HasLocation)
	assert.False(t, settings.AutoSilentEnabled)

	backups, err := backup.NewManager(env.Store.GetConfigPath()).ListBackups()
	require.NoError(t, err)
	assert.Len(t, backups, 1)
}

func TestInitCmd_ForceSameSource(t *testing.T) {
	env := clitest.New(t, nil)

	err := (&InitCmd{Force: true, Source: env.Store.GetConfigPath()}).Run(env.Ctx)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "source and destination are the same")
}

func TestInitCmd_CopiesFromSource(t *testing.T) {
	source := clitest.New(t, func(s *models.Settings) {
		clitest.WithLocation(s)
		s.WindowMinutes = 25
		s.WeEnabledDND = true
	})
	require.NoError(t, source.Store.AddEvent(models.DNDEvent{
		ID:         "e1",
		Action:     constants.EventDNDEnabled,
		Reason:     constants.ReasonPrayerWindow,
		Prayer:     models.Dhuhr,
		Backend:    "memory",
		OccurredAt: time.Date(2026, 3, 14, 11, 50, 0, 0, time.UTC),
	}))
	require.NoError(t, source.Store.Close())

	dest := sqlite.NewStore(filepath.Join(t.TempDir(), "khoshoo3.db"))
	t.Cleanup(func() { dest.Close() })

	require.NoError(t, (&InitCmd{Source: source.Store.GetConfigPath()}).Run(&cli.Context{Store: dest}))

	settings, err := dest.GetSettings()
	require.NoError(t, err)
	assert.True(t, settings.HasLocation)
	assert.Equal(t, 25, settings.WindowMinutes)
	assert.False(t, settings.WeEnabledDND, "ownership must not carry over")

	events, err := dest.GetEvents(10)
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.Equal(t, "e1", events[0].ID)
}

func TestCheckCmd(t *testing.T) {
	env := clitest.New(t, clitest.WithLocation)
	env.Clock.Set(12, 5)

	require.NoError(t, (&CheckCmd{}).Run(env.Ctx))

	active, err := env.DND.IsActive(context.Background())
	require.NoError(t, err)
	assert.True(t, active)
	assert.True(t, env.Settings(t).WeEnabledDND)
}

func TestCheckCmd_PermissionDenied(t *testing.T) {
	env := clitest.New(t, clitest.WithLocation)
	env.DND.SetGranted(false)

	err := (&CheckCmd{}).Run(env.Ctx)
	assert.ErrorIs(t, err, silence.ErrPermissionDenied)
}

func TestDescribe(t *testing.T) {
	tests := []struct {
		name string
		res  tracker.Result
		want string
	}{
		{
			name: "skipped",
			res:  tracker.Result{Skipped: tracker.SkipNoLocation},
			want: "Skipped: waiting for location",
		},
		{
			name: "in window",
			res: tracker.Result{
				InWindow:  true,
				Prayer:    &models.PrayerTimeInfo{Name: models.Asr, Time: time.Date(2026, 3, 14, 15, 30, 0, 0, time.UTC)},
				DNDActive: true,
				Action:    tracker.ActionEnable,
				State:     tracker.WeOwnDND,
			},
			want: "Checked: in Asr window (15:30), DND on, action enable, state owned",
		},
		{
			name: "outside",
			res:  tracker.Result{Action: tracker.ActionNone, State: tracker.Idle},
			want: "Checked: outside prayer window, DND off, action none, state idle",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, describe(tt.res))
		})
	}
}

func TestRegisterJobs(t *testing.T) {
	env := clitest.New(t, clitest.WithLocation)
	sched, err := scheduler.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = sched.Stop() })

	require.NoError(t, registerJobs(env.Ctx, sched))

	jobs := sched.GetJobs()
	require.Contains(t, jobs, constants.PrayerCheckJobID)
	assert.NotContains(t, jobs, constants.LocationRefreshJobID, "static locations are not refreshed")
	assert.True(t, jobs[constants.PrayerCheckJobID].Singleton)
	assert.True(t, jobs[constants.PrayerCheckJobID].InstantAfterStart)

	assert.ErrorIs(t, registerJobs(env.Ctx, sched), scheduler.ErrJobExists)
}

// closeTrackingDND fails every call once it has been closed
type closeTrackingDND struct {
	*silence.Memory
	closed atomic.Bool
}

func (d *closeTrackingDND) Enable(ctx context.Context) error {
	if d.closed.Load() {
		return errors.New("use of closed controller")
	}
	return d.Memory.Enable(ctx)
}

func (d *closeTrackingDND) Close() error {
	d.closed.Store(true)
	return nil
}

func TestRunDaemon_LeavesControllerOpen(t *testing.T) {
	env := clitest.New(t, clitest.WithLocation)
	env.Clock.Set(12, 0)
	dnd := &closeTrackingDND{Memory: env.DND}
	env.Ctx.DND = dnd
	env.Ctx.Tracker = tracker.New(env.Store, dnd,
		tracker.WithClock(env.Clock.Now), tracker.WithCalculator(clitest.Calculator{}))

	sched, err := scheduler.New()
	require.NoError(t, err)
	require.NoError(t, registerJobs(env.Ctx, sched))

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- runDaemon(ctx, sched, 10*time.Millisecond) }()

	assert.Eventually(t, func() bool {
		job, _ := sched.GetJob(constants.PrayerCheckJobID)
		return job.Status == scheduler.JobStatusCompleted
	}, 2*time.Second, 10*time.Millisecond)
	cancel()

	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("daemon did not stop after cancel")
	}

	assert.False(t, dnd.closed.Load(), "the controller is closed by main, not the daemon")
	assert.True(t, env.Settings(t).WeEnabledDND)
	job, _ := sched.GetJob(constants.PrayerCheckJobID)
	assert.Equal(t, 1, job.RunCount)
	assert.Zero(t, job.ErrorCount)
}

type fakeLocator struct {
	fix location.Fix
	err error
}

func (f fakeLocator) Name() string { return string(constants.LocationIPAPI) }

func (f fakeLocator) Locate(context.Context) (location.Fix, error) { return f.fix, f.err }

func TestRefreshLocation(t *testing.T) {
	env := clitest.New(t, nil)

	env.Ctx.Locator = fakeLocator{err: location.ErrNoFix}
	require.NoError(t, refreshLocation(context.Background(), env.Ctx))
	assert.False(t, env.Settings(t).HasLocation)

	env.Ctx.Locator = fakeLocator{fix: location.Fix{Latitude: 21.42, Longitude: 39.83}}
	require.NoError(t, refreshLocation(context.Background(), env.Ctx))
	settings := env.Settings(t)
	assert.True(t, settings.HasLocation)
	assert.Equal(t, 21.42, settings.Latitude)
	assert.Equal(t, 39.83, settings.Longitude)
}

func TestDoctorCmd(t *testing.T) {
	t.Run("healthy", func(t *testing.T) {
		env := clitest.New(t, clitest.WithLocation)
		assert.NoError(t, (&DoctorCmd{}).Run(env.Ctx))
	})

	t.Run("missing location is only a warning", func(t *testing.T) {
		env := clitest.New(t, nil)
		assert.NoError(t, (&DoctorCmd{}).Run(env.Ctx))
	})

	t.Run("permission denied", func(t *testing.T) {
		env := clitest.New(t, clitest.WithLocation)
		env.DND.SetGranted(false)
		assert.Error(t, (&DoctorCmd{}).Run(env.Ctx))
	})

	t.Run("uninitialized store", func(t *testing.T) {
		env := clitest.New(t, nil)
		env.Ctx.Store = sqlite.NewStore(filepath.Join(t.TempDir(), "missing.db"))
		assert.Error(t, (&DoctorCmd{}).Run(env.Ctx))
	})
}

func TestKeyringCmds(t *testing.T) {
	gokeyring.MockInit()
	defer func() { _ = keyring.DeleteMQTTPassword() }()
	ctx := &cli.Context{}

	assert.Error(t, (&KeyringSetCmd{}).Run(ctx))
	assert.NoError(t, (&KeyringStatusCmd{}).Run(ctx))

	require.NoError(t, (&KeyringSetCmd{Password: "s3cret"}).Run(ctx))
	pw, err := keyring.GetMQTTPassword()
	require.NoError(t, err)
	assert.Equal(t, "s3cret", pw)
	assert.NoError(t, (&KeyringStatusCmd{}).Run(ctx))

	require.NoError(t, (&KeyringDeleteCmd{}).Run(ctx))
	assert.Error(t, (&KeyringDeleteCmd{}).Run(ctx))
}
