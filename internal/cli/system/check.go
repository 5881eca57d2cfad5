package system

import (
	"context"
	"fmt"

	"github.com/julianstephens/khoshoo3/internal/cli"
	"github.com/julianstephens/khoshoo3/internal/constants"
	"github.com/julianstephens/khoshoo3/internal/tracker"
)

// CheckCmd runs a single evaluation, for cron jobs and systemd timers
type CheckCmd struct{}

func (c *CheckCmd) Run(ctx *cli.Context) error {
	res, err := ctx.Tracker.Check(context.Background())
	if err != nil {
		return err
	}
	fmt.Println(describe(res))
	return nil
}

func describe(res tracker.Result) string {
	if res.Skipped != tracker.SkipNone {
		return fmt.Sprintf("Skipped: %s", res.Skipped)
	}

	window := "outside prayer window"
	if res.InWindow && res.Prayer != nil {
		window = fmt.Sprintf("in %s window (%s)", res.Prayer.Name, res.Prayer.Time.Format(constants.TimeFormat))
	}
	return fmt.Sprintf("Checked: %s, DND %s, action %s, state %s",
		window, cli.OnOff(res.DNDActive), res.Action, res.State)
}
