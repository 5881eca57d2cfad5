package prayers

import (
	"fmt"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/dustin/go-humanize"

	"github.com/julianstephens/khoshoo3/internal/cli"
	"github.com/julianstephens/khoshoo3/internal/constants"
	"github.com/julianstephens/khoshoo3/internal/models"
	"github.com/julianstephens/khoshoo3/internal/prayer"
	"github.com/julianstephens/khoshoo3/internal/tui"
)

type NextCmd struct {
	Watch bool `help:"Keep a live countdown on screen, updated every second." short:"w"`
}

func (c *NextCmd) Run(ctx *cli.Context) error {
	repo, settings, err := ctx.Repository()
	if err != nil {
		return err
	}
	if !settings.HasLocation {
		fmt.Printf("Next prayer: %s\n", prayer.FormatCountdown(0))
		fmt.Printf("Location: %s\n", cli.FormatLocation(settings))
		return nil
	}

	nextFn := func(now time.Time) (*models.PrayerTimeInfo, error) {
		return repo.GetNextPrayer(settings.Latitude, settings.Longitude, now)
	}

	if c.Watch {
		p := tea.NewProgram(tui.NewModel(nextFn, repo.Location(), cli.FormatLocation(settings)), tea.WithAltScreen())
		_, err := p.Run()
		return err
	}

	now := ctx.Clock()
	next, err := nextFn(now)
	if err != nil {
		return err
	}
	fmt.Println(nextStyle.Render(fmt.Sprintf("Next: %s at %s", next.Name,
		next.Time.In(repo.Location()).Format(constants.TimeFormat))))
	fmt.Printf("  %s (%s)\n", prayer.FormatCountdown(next.Time.Sub(now)),
		humanize.RelTime(next.Time, now, "ago", "from now"))

	current, err := repo.PrayerInWindow(settings.Latitude, settings.Longitude, now, settings.Window())
	if err != nil {
		return err
	}
	if current != nil {
		fmt.Printf("  Silence window: %s until %s\n", current.Name,
			current.Time.Add(settings.Window()).In(repo.Location()).Format(constants.TimeFormat))
	}
	return nil
}
