package prayers

import (
	"fmt"
	"time"

	"github.com/julianstephens/khoshoo3/internal/cli"
	"github.com/julianstephens/khoshoo3/internal/constants"
	"github.com/julianstephens/khoshoo3/internal/models"
)

type TimesCmd struct {
	Date string `help:"Date to show (YYYY-MM-DD), defaults to today."`
}

func (c *TimesCmd) Run(ctx *cli.Context) error {
	repo, settings, err := ctx.Repository()
	if err != nil {
		return err
	}
	if !settings.HasLocation {
		fmt.Printf("Location: %s\n", cli.FormatLocation(settings))
		return nil
	}

	now := ctx.Clock().In(repo.Location())
	date := now
	if c.Date != "" {
		date, err = time.ParseInLocation(constants.DateFormat, c.Date, repo.Location())
		if err != nil {
			return fmt.Errorf("invalid date %q, expected YYYY-MM-DD: %w", c.Date, err)
		}
	}

	times, err := repo.GetPrayerTimes(settings.Latitude, settings.Longitude, date)
	if err != nil {
		return err
	}

	var next *models.PrayerTimeInfo
	if sameDay(date, now) {
		next, err = repo.GetNextPrayer(settings.Latitude, settings.Longitude, now)
		if err != nil {
			return err
		}
	}

	fmt.Println(headerStyle.Render(fmt.Sprintf("Prayer times for %s (%s)",
		date.Format(constants.DateFormat), cli.FormatLocation(settings))))
	for _, p := range times {
		fmt.Println(renderLine(p, next, now))
	}
	return nil
}

func renderLine(p models.PrayerTimeInfo, next *models.PrayerTimeInfo, now time.Time) string {
	line := fmt.Sprintf("  %-8s %s", p.Name, p.Time.Format(constants.TimeFormat))
	if !p.Name.IsPrayer() {
		line += "  (not a prayer)"
	}

	switch {
	case next != nil && next.Name == p.Name && next.Time.Equal(p.Time):
		return nextStyle.Render(line + "  ← next")
	case p.Time.Before(now):
		return pastStyle.Render(line)
	default:
		return line
	}
}

func sameDay(a, b time.Time) bool {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	return ay == by && am == bm && ad == bd
}
