// Package tui renders the live countdown to the next prayer.
package tui

import (
	"time"

	"github.com/charmbracelet/bubbles/help"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/julianstephens/khoshoo3/internal/models"
)

// NextFunc resolves the next prayer after now
type NextFunc func(now time.Time) (*models.PrayerTimeInfo, error)

type TickMsg time.Time

type Model struct {
	next   NextFunc
	clock  func() time.Time
	loc    *time.Location
	label  string
	keys   KeyMap
	help   help.Model
	target *models.PrayerTimeInfo
	now    time.Time
	err    error
	width  int
	height int
}

// NewModel builds the watch model. label describes the location shown under
// the countdown; loc is the zone the prayer time is displayed in.
func NewModel(next NextFunc, loc *time.Location, label string) Model {
	if loc == nil {
		loc = time.Local
	}
	m := Model{
		next:  next,
		clock: time.Now,
		loc:   loc,
		label: label,
		keys:  DefaultKeyMap(),
		help:  help.New(),
	}
	m.now = m.clock()
	m.refresh()
	return m
}

func tick() tea.Cmd {
	return tea.Tick(time.Second, func(t time.Time) tea.Msg {
		return TickMsg(t)
	})
}

func (m Model) Init() tea.Cmd {
	return tick()
}

// Remaining returns the time left until the target prayer, zero when unknown
func (m Model) Remaining() time.Duration {
	if m.target == nil {
		return 0
	}
	return m.target.Time.Sub(m.now)
}

// Target returns the prayer being counted down to
func (m Model) Target() *models.PrayerTimeInfo {
	return m.target
}

func (m *Model) refresh() {
	next, err := m.next(m.now)
	m.target, m.err = next, err
}
