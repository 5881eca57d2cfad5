package settings

import (
	"fmt"
	"strings"
	"time"

	"github.com/julianstephens/khoshoo3/internal/cli"
	"github.com/julianstephens/khoshoo3/internal/constants"
	"github.com/julianstephens/khoshoo3/internal/models"
	"github.com/julianstephens/khoshoo3/internal/prayer"
)

type SettingsCmd struct {
	List     bool    `help:"List current settings." short:"l"`
	Window   *int    `help:"Minutes of silence either side of each prayer."`
	Method   *string `help:"Calculation method (see --list for choices)."`
	Madhab   *string `help:"Madhab for Asr: shafi or hanafi."`
	Timezone *string `help:"IANA timezone for displayed times, or Local."`
}

func (c *SettingsCmd) Run(ctx *cli.Context) error {
	settings, err := ctx.Settings()
	if err != nil {
		return err
	}

	if c.List {
		fmt.Println("Current Settings:")
		fmt.Printf("  auto_silent_enabled: %t\n", settings.AutoSilentEnabled)
		fmt.Printf("  location: %s\n", cli.FormatLocation(settings))
		fmt.Printf("  window_minutes: %d\n", settings.WindowMinutes)
		fmt.Printf("  calculation_method: %s\n", settings.CalculationMethod)
		fmt.Printf("  madhab: %s\n", settings.Madhab)
		fmt.Printf("  timezone: %s\n", settings.Timezone)
		fmt.Printf("  we_enabled_dnd: %t\n", settings.WeEnabledDND)
		fmt.Println()
		fmt.Printf("Calculation methods: %s\n", strings.Join(prayer.Methods(), ", "))
		return nil
	}

	changed := false

	if c.Window != nil {
		if *c.Window < 1 || *c.Window > constants.MaxWindowMinutes {
			return fmt.Errorf("window must be between 1 and %d minutes", constants.MaxWindowMinutes)
		}
		settings.WindowMinutes = *c.Window
		changed = true
	}
	if c.Method != nil {
		settings.CalculationMethod = strings.ToLower(strings.TrimSpace(*c.Method))
		changed = true
	}
	if c.Madhab != nil {
		settings.Madhab = strings.ToLower(strings.TrimSpace(*c.Madhab))
		changed = true
	}
	if c.Timezone != nil {
		if _, err := time.LoadLocation(*c.Timezone); err != nil {
			return fmt.Errorf("invalid timezone %q: %w", *c.Timezone, err)
		}
		settings.Timezone = *c.Timezone
		changed = true
	}

	if !changed {
		fmt.Println("No changes specified. Use --list to view settings or flags to update them.")
		return nil
	}

	// Method and madhab are checked together by building the calculator
	if _, err := prayer.NewAdhanCalculator(settings.CalculationMethod, settings.Madhab); err != nil {
		return err
	}

	err = ctx.Store.UpdateSettings(func(s *models.Settings) {
		s.WindowMinutes = settings.WindowMinutes
		s.CalculationMethod = settings.CalculationMethod
		s.Madhab = settings.Madhab
		s.Timezone = settings.Timezone
	})
	if err != nil {
		return fmt.Errorf("failed to save settings: %w", err)
	}
	fmt.Println("Settings updated successfully.")
	return nil
}
