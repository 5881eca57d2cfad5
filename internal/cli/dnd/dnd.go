package dnd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/julianstephens/khoshoo3/internal/cli"
	"github.com/julianstephens/khoshoo3/internal/constants"
	"github.com/julianstephens/khoshoo3/internal/prayer"
)

// StatusCmd reports what the DND backend sees
type StatusCmd struct{}

func (c *StatusCmd) Run(ctx *cli.Context) error {
	settings, err := ctx.Settings()
	if err != nil {
		return err
	}

	bg := context.Background()
	granted, err := ctx.DND.PermissionGranted(bg)
	if err != nil {
		return fmt.Errorf("failed to check DND permission: %w", err)
	}

	fmt.Printf("Backend: %s\n", ctx.DND.Name())
	fmt.Printf("Permission: %t\n", granted)
	if !granted {
		return nil
	}

	active, err := ctx.DND.IsActive(bg)
	if err != nil {
		return fmt.Errorf("failed to read DND state: %w", err)
	}
	owner := "user"
	if settings.WeEnabledDND {
		owner = constants.AppName
	}
	if active {
		fmt.Printf("DND: on (set by %s)\n", owner)
	} else {
		fmt.Println("DND: off")
	}
	return nil
}

// TestCmd turns DND on for a short time to check the backend works
type TestCmd struct {
	Duration time.Duration `help:"How long to keep DND on." default:"30s"`
}

func (c *TestCmd) Run(ctx *cli.Context) error {
	runCtx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	err := ctx.Tracker.TestDND(runCtx, c.Duration, func(remaining time.Duration) {
		fmt.Printf("\rDND on, turning off in %s ", prayer.FormatCountdown(remaining))
	})
	if err != nil {
		return err
	}
	fmt.Println()
	fmt.Println("DND test finished.")
	return nil
}
