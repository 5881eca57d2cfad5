package dnd

import (
	"context"
	"fmt"

	"github.com/julianstephens/khoshoo3/internal/cli"
	"github.com/julianstephens/khoshoo3/internal/constants"
	"github.com/julianstephens/khoshoo3/internal/prayer"
)

type AutoSilentOnCmd struct{}

func (c *AutoSilentOnCmd) Run(ctx *cli.Context) error {
	if err := ctx.Tracker.SetAutoSilent(context.Background(), true); err != nil {
		return err
	}
	fmt.Println("Auto-silent enabled.")

	settings, err := ctx.Settings()
	if err != nil {
		return err
	}
	if !settings.HasLocation {
		fmt.Printf("Waiting for location: run '%s location set' or '%s location detect'.\n",
			constants.AppName, constants.AppName)
	}
	return nil
}

type AutoSilentOffCmd struct{}

func (c *AutoSilentOffCmd) Run(ctx *cli.Context) error {
	before, err := ctx.Settings()
	if err != nil {
		return err
	}
	if err := ctx.Tracker.SetAutoSilent(context.Background(), false); err != nil {
		return err
	}
	fmt.Println("Auto-silent disabled.")
	if before.WeEnabledDND {
		fmt.Println("Turned off the DND enabled by auto-silent.")
	}
	return nil
}

type AutoSilentStatusCmd struct{}

func (c *AutoSilentStatusCmd) Run(ctx *cli.Context) error {
	repo, settings, err := ctx.Repository()
	if err != nil {
		return err
	}

	fmt.Println("Auto-silent:")
	fmt.Printf("  Enabled: %s\n", cli.OnOff(settings.AutoSilentEnabled))
	fmt.Printf("  Location: %s\n", cli.FormatLocation(settings))
	fmt.Printf("  Window: %d minutes\n", settings.WindowMinutes)
	fmt.Printf("  Owns DND: %t\n", settings.WeEnabledDND)
	if ctx.DND != nil {
		fmt.Printf("  Backend: %s\n", ctx.DND.Name())
	}

	if !settings.HasLocation {
		return nil
	}
	now := ctx.Clock()
	current, err := repo.PrayerInWindow(settings.Latitude, settings.Longitude, now, settings.Window())
	if err != nil {
		return err
	}
	if current != nil {
		fmt.Printf("  Prayer window: %s (%s)\n", current.Name,
			current.Time.In(repo.Location()).Format(constants.TimeFormat))
	} else {
		fmt.Println("  Prayer window: none")
	}

	next, err := repo.GetNextPrayer(settings.Latitude, settings.Longitude, now)
	if err != nil {
		return err
	}
	fmt.Printf("  Next: %s at %s (%s)\n", next.Name,
		next.Time.In(repo.Location()).Format(constants.TimeFormat),
		prayer.FormatCountdown(next.Time.Sub(now)))
	return nil
}
