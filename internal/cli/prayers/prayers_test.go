package prayers

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/julianstephens/khoshoo3/internal/cli/clitest"
	"github.com/julianstephens/khoshoo3/internal/models"
)

func TestTimesCmd(t *testing.T) {
	env := clitest.New(t, clitest.WithLocation)

	assert.NoError(t, (&TimesCmd{}).Run(env.Ctx))
	assert.NoError(t, (&TimesCmd{Date: "2026-03-20"}).Run(env.Ctx))
}

func TestTimesCmd_InvalidDate(t *testing.T) {
	env := clitest.New(t, clitest.WithLocation)

	err := (&TimesCmd{Date: "20/03/2026"}).Run(env.Ctx)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid date")
}

func TestTimesCmd_NoLocation(t *testing.T) {
	env := clitest.New(t, nil)
	assert.NoError(t, (&TimesCmd{}).Run(env.Ctx))
}

func TestNextCmd(t *testing.T) {
	env := clitest.New(t, clitest.WithLocation)

	env.Clock.Set(12, 10)
	assert.NoError(t, (&NextCmd{}).Run(env.Ctx))

	env.Clock.Set(22, 0)
	assert.NoError(t, (&NextCmd{}).Run(env.Ctx))
}

func TestNextCmd_NoLocation(t *testing.T) {
	env := clitest.New(t, nil)
	assert.NoError(t, (&NextCmd{}).Run(env.Ctx))
}

func TestRenderLine(t *testing.T) {
	now := time.Date(2026, 3, 14, 13, 0, 0, 0, time.UTC)
	asr := models.PrayerTimeInfo{Name: models.Asr, Time: time.Date(2026, 3, 14, 15, 30, 0, 0, time.UTC)}
	sunrise := models.PrayerTimeInfo{Name: models.Sunrise, Time: time.Date(2026, 3, 14, 6, 0, 0, 0, time.UTC)}

	line := renderLine(asr, &asr, now)
	assert.Contains(t, line, "Asr")
	assert.Contains(t, line, "15:30")
	assert.Contains(t, line, "next")

	line = renderLine(sunrise, &asr, now)
	assert.Contains(t, line, "not a prayer")
	assert.False(t, strings.Contains(line, "next"))
}

func TestSameDay(t *testing.T) {
	a := time.Date(2026, 3, 14, 0, 0, 0, 0, time.UTC)
	assert.True(t, sameDay(a, a.Add(23*time.Hour)))
	assert.False(t, sameDay(a, a.Add(24*time.Hour)))
}
