package tui

import (
	"fmt"

	"github.com/charmbracelet/lipgloss"

	"github.com/julianstephens/khoshoo3/internal/constants"
	"github.com/julianstephens/khoshoo3/internal/prayer"
)

func (m Model) View() string {
	var content string
	switch {
	case m.err != nil:
		content = dangerStyle.Render(fmt.Sprintf("Error: %v", m.err))
	case m.target == nil:
		content = mutedStyle.Render("No upcoming prayer")
	default:
		content = lipgloss.JoinVertical(lipgloss.Center,
			prayerStyle.Render(fmt.Sprintf("%s at %s",
				m.target.Name, m.target.Time.In(m.loc).Format(constants.TimeFormat))),
			countdownStyle.Render(prayer.FormatCountdown(m.Remaining())),
		)
	}

	content = lipgloss.JoinVertical(lipgloss.Center,
		titleStyle.Render(fmt.Sprintf("Now: %s", m.now.In(m.loc).Format("15:04:05"))),
		content,
		mutedStyle.Render(m.label),
		docStyle.Render(m.help.View(m.keys)),
	)

	if m.width > 0 && m.height > 0 {
		return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, content)
	}
	return content
}
