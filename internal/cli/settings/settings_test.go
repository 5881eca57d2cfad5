package settings

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/julianstephens/khoshoo3/internal/cli/clitest"
	"github.com/julianstephens/khoshoo3/internal/constants"
)

func ptr[T any](v T) *T { return &v }

func TestSettingsCmd_List(t *testing.T) {
	env := clitest.New(t, nil)

	err := (&SettingsCmd{List: true}).Run(env.Ctx)
	assert.NoError(t, err)
}

func TestSettingsCmd_NoChanges(t *testing.T) {
	env := clitest.New(t, nil)
	before := env.Settings(t)

	require.NoError(t, (&SettingsCmd{}).Run(env.Ctx))
	assert.Equal(t, before, env.Settings(t))
}

func TestSettingsCmd_Update(t *testing.T) {
	env := clitest.New(t, nil)

	cmd := &SettingsCmd{
		Window:   ptr(20),
		Method:   ptr("MWL"),
		Madhab:   ptr("hanafi"),
		Timezone: ptr("Africa/Cairo"),
	}
	require.NoError(t, cmd.Run(env.Ctx))

	settings := env.Settings(t)
	assert.Equal(t, 20, settings.WindowMinutes)
	assert.Equal(t, "mwl", settings.CalculationMethod)
	assert.Equal(t, "hanafi", settings.Madhab)
	assert.Equal(t, "Africa/Cairo", settings.Timezone)
}

func TestSettingsCmd_Invalid(t *testing.T) {
	tests := []struct {
		name string
		cmd  SettingsCmd
	}{
		{"zero window", SettingsCmd{Window: ptr(0)}},
		{"window too large", SettingsCmd{Window: ptr(constants.MaxWindowMinutes + 1)}},
		{"unknown method", SettingsCmd{Method: ptr("astrology")}},
		{"unknown madhab", SettingsCmd{Madhab: ptr("maliki")}},
		{"unknown timezone", SettingsCmd{Timezone: ptr("Mars/Olympus")}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := clitest.New(t, nil)
			before := env.Settings(t)

			assert.Error(t, tt.cmd.Run(env.Ctx))
			assert.Equal(t, before, env.Settings(t), "settings must not change")
		})
	}
}
