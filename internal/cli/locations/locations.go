package locations

import (
	"context"
	"errors"
	"fmt"

	"github.com/julianstephens/khoshoo3/internal/cli"
	"github.com/julianstephens/khoshoo3/internal/constants"
	"github.com/julianstephens/khoshoo3/internal/location"
)

type SetCmd struct {
	Lat float64 `help:"Latitude in decimal degrees." required:""`
	Lng float64 `help:"Longitude in decimal degrees." required:""`
}

func (c *SetCmd) Run(ctx *cli.Context) error {
	if err := ctx.Tracker.UpdateLocation(c.Lat, c.Lng); err != nil {
		return err
	}
	fmt.Printf("Location updated: %.4f, %.4f\n", c.Lat, c.Lng)
	return nil
}

// DetectCmd asks the configured location provider for a fix
type DetectCmd struct{}

func (c *DetectCmd) Run(ctx *cli.Context) error {
	locateCtx, cancel := context.WithTimeout(context.Background(), constants.LocateTimeout)
	defer cancel()

	fix, err := ctx.Locator.Locate(locateCtx)
	if errors.Is(err, location.ErrNoFix) {
		settings, serr := ctx.Settings()
		if serr != nil {
			return serr
		}
		fmt.Printf("No location fix from %s provider.\n", ctx.Locator.Name())
		fmt.Printf("Location: %s\n", cli.FormatLocation(settings))
		return nil
	}
	if err != nil {
		return fmt.Errorf("location lookup failed: %w", err)
	}

	if err := ctx.Tracker.UpdateLocation(fix.Latitude, fix.Longitude); err != nil {
		return err
	}
	fmt.Printf("Location updated: %s\n", fix)
	return nil
}

type ShowCmd struct{}

func (c *ShowCmd) Run(ctx *cli.Context) error {
	settings, err := ctx.Settings()
	if err != nil {
		return err
	}
	fmt.Printf("Location: %s\n", cli.FormatLocation(settings))
	if ctx.Locator != nil {
		fmt.Printf("Provider: %s\n", ctx.Locator.Name())
	}
	return nil
}
