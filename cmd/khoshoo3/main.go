package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/alecthomas/kong"
	"github.com/samber/lo"

	"github.com/julianstephens/khoshoo3/internal/cli"
	"github.com/julianstephens/khoshoo3/internal/cli/backups"
	"github.com/julianstephens/khoshoo3/internal/cli/dnd"
	"github.com/julianstephens/khoshoo3/internal/cli/locations"
	"github.com/julianstephens/khoshoo3/internal/cli/prayers"
	"github.com/julianstephens/khoshoo3/internal/cli/settings"
	"github.com/julianstephens/khoshoo3/internal/cli/system"
	"github.com/julianstephens/khoshoo3/internal/config"
	"github.com/julianstephens/khoshoo3/internal/constants"
	"github.com/julianstephens/khoshoo3/internal/errors"
	"github.com/julianstephens/khoshoo3/internal/location"
	"github.com/julianstephens/khoshoo3/internal/logger"
	"github.com/julianstephens/khoshoo3/internal/silence"
	"github.com/julianstephens/khoshoo3/internal/storage"
	"github.com/julianstephens/khoshoo3/internal/tracker"
)

var CLI struct {
	Version kong.VersionFlag
	DB      string `help:"Database path or PostgreSQL connection string. For PostgreSQL, credentials must NOT be embedded in the connection string. Use environment variables or .pgpass instead." type:"string" default:"~/.config/khoshoo3/khoshoo3.db"`
	Config  string `help:"YAML config file path. Defaults to config.yaml in ., ~/.config/khoshoo3 or /etc/khoshoo3." type:"path"`
	Debug   bool   `help:"Log at debug level and mirror logs to stderr."`
	DryRun  bool   `help:"Use the in-memory DND backend instead of the configured one." name:"dry-run"`

	Init   system.InitCmd   `cmd:"" help:"Initialize khoshoo3 storage."`
	Doctor system.DoctorCmd `cmd:"" help:"Run health checks and diagnostics."`
	Check  system.CheckCmd  `cmd:"" help:"Run one prayer window check, for cron or systemd timers."`
	Daemon system.DaemonCmd `cmd:"" help:"Check the prayer window every 15 minutes until interrupted."`
	Times  prayers.TimesCmd `cmd:"" help:"Show the day's prayer times." default:"1"`
	Next   prayers.NextCmd  `cmd:"" help:"Show the next prayer and a countdown."`

	Location struct {
		Set    locations.SetCmd    `cmd:"" help:"Store coordinates."`
		Detect locations.DetectCmd `cmd:"" help:"Look up coordinates with the configured provider."`
		Show   locations.ShowCmd   `cmd:"" help:"Show the stored location." default:"1"`
	} `cmd:"" help:"Manage the stored location."`
	AutoSilent struct {
		On     dnd.AutoSilentOnCmd     `cmd:"" help:"Silence the device around prayer times."`
		Off    dnd.AutoSilentOffCmd    `cmd:"" help:"Stop silencing; releases a DND turned on by khoshoo3."`
		Status dnd.AutoSilentStatusCmd `cmd:"" help:"Show the auto-silent state." default:"1"`
	} `cmd:"" name:"auto-silent" help:"Toggle automatic silencing."`
	DND struct {
		Status dnd.StatusCmd `cmd:"" help:"Show the DND backend state." default:"1"`
		Test   dnd.TestCmd   `cmd:"" help:"Turn DND on briefly to test the backend."`
	} `cmd:"" name:"dnd" help:"Inspect or exercise the DND backend."`
	Backup struct {
		Create  backups.BackupCreateCmd  `cmd:"" help:"Create a manual backup." default:"1"`
		List    backups.BackupListCmd    `cmd:"" help:"List available backups."`
		Restore backups.BackupRestoreCmd `cmd:"" help:"Restore from a backup."`
	} `cmd:"" help:"Manage database backups."`
	History  dnd.HistoryCmd       `cmd:"" help:"List recorded DND transitions."`
	Settings settings.SettingsCmd `cmd:"" help:"Manage application settings."`
	Keyring  struct {
		Set    system.KeyringSetCmd    `cmd:"" help:"Store the MQTT broker password."`
		Delete system.KeyringDeleteCmd `cmd:"" help:"Delete the stored MQTT broker password."`
		Status system.KeyringStatusCmd `cmd:"" help:"Check the OS keyring." default:"1"`
	} `cmd:"" help:"Manage the MQTT password in the OS keyring."`
}

// Commands that open the store themselves or never touch it
var noLoad = []string{"init", "doctor", "keyring"}

func main() {
	ctx := kong.Parse(&CLI,
		kong.Name(constants.AppName),
		kong.Description("Prayer times and automatic Do-Not-Disturb"),
		kong.UsageOnError(),
		kong.ConfigureHelp(kong.HelpOptions{
			Compact:             true,
			NoExpandSubcommands: true,
		}),
		kong.Vars{"version": constants.Version},
	)
	command := ctx.Command()

	cfg, err := config.Load(CLI.Config)
	if err != nil {
		errors.Fatal(err)
	}

	if configDir, err := os.UserConfigDir(); err == nil {
		if err := logger.Init(logger.Config{
			Debug:     CLI.Debug,
			ConfigDir: filepath.Join(configDir, constants.AppName),
			Level:     cfg.LogLevel,
			Stderr:    strings.HasPrefix(command, "daemon"),
		}); err != nil {
			fmt.Fprintf(os.Stderr, "Warning: logging disabled: %v\n", err)
		}
	}

	if storage.IsPostgres(CLI.DB) && storage.HasEmbeddedCredentials(CLI.DB) {
		fmt.Fprintf(os.Stderr, "❌ Error: PostgreSQL connection strings with embedded credentials are NOT allowed.\n")
		fmt.Fprintf(os.Stderr, "       Use one of these secure alternatives:\n")
		fmt.Fprintf(os.Stderr, "       1. Environment:   export PGPASSWORD=...\n")
		fmt.Fprintf(os.Stderr, "       2. .pgpass file:  Use connection string without password: \"postgresql://user@host:5432/khoshoo3\"\n")
		os.Exit(1)
	}
	store, err := storage.New(CLI.DB)
	if err != nil {
		errors.Fatal(err)
	}

	var controller silence.Controller
	if CLI.DryRun {
		controller = silence.NewMemory(true)
	} else if controller, err = silence.New(cfg.DND); err != nil {
		errors.Fatal(err)
	}

	locator, err := location.NewFromConfig(cfg.Location)
	if err != nil {
		errors.Fatal(err)
	}

	appCtx := &cli.Context{
		Store:   store,
		Config:  cfg,
		DND:     controller,
		Locator: locator,
		Tracker: tracker.New(store, controller),
	}

	if !skipLoad(command) {
		if err := store.Load(); err != nil {
			errors.Fatal(err)
		}
	}

	err = ctx.Run(appCtx)
	// The only place the backend is closed; the daemon has stopped its
	// scheduler by the time Run returns
	if cerr := silence.Close(controller); cerr != nil {
		logger.Warn("Failed to close DND backend", "error", cerr)
	}
	if cerr := store.Close(); cerr != nil {
		logger.Warn("Failed to close store", "error", cerr)
	}
	errors.Fatal(err)
}

func skipLoad(command string) bool {
	name, _, _ := strings.Cut(command, " ")
	return lo.Contains(noLoad, name)
}
