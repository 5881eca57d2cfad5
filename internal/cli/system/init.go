package system

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/julianstephens/khoshoo3/internal/backup"
	"github.com/julianstephens/khoshoo3/internal/cli"
	"github.com/julianstephens/khoshoo3/internal/constants"
	"github.com/julianstephens/khoshoo3/internal/storage"
	"github.com/julianstephens/khoshoo3/internal/storage/postgres"
)

type InitCmd struct {
	Force  bool   `help:"Force reset by deleting existing database before initialization."`
	Source string `help:"Source database path or connection string to copy settings and history from."`
}

func (c *InitCmd) Run(ctx *cli.Context) error {
	if c.Force && !storage.IsPostgres(ctx.Store.GetConfigPath()) {
		dbPath := ctx.Store.GetConfigPath()
		if c.Source != "" {
			absDbPath, err := filepath.Abs(dbPath)
			if err == nil {
				dbPath = absDbPath
			}
			absSource, err := filepath.Abs(c.Source)
			if err == nil && absSource == dbPath {
				return fmt.Errorf("cannot use --force when source and destination are the same: %s", dbPath)
			}
		}
		if _, err := os.Stat(dbPath); err == nil {
			backupPath, err := backup.NewManager(dbPath).CreateBackup()
			if err != nil {
				return fmt.Errorf("failed to back up existing database: %w", err)
			}
			fmt.Printf("Backed up existing database to: %s\n", backupPath)
			// Close first to release the file lock
			if err := ctx.Store.Close(); err != nil {
				return fmt.Errorf("failed to close existing database: %w", err)
			}
			if err := os.Remove(dbPath); err != nil {
				return fmt.Errorf("failed to delete existing database: %w", err)
			}
			fmt.Printf("Deleted existing database at: %s\n", dbPath)
		} else if !os.IsNotExist(err) {
			return fmt.Errorf("failed to access existing database: %w", err)
		}
	}

	if err := ctx.Store.Init(); err != nil {
		return err
	}
	fmt.Printf("Initialized %s storage at: %s\n", constants.AppName, ctx.Store.GetConfigPath())

	if c.Source != "" {
		fmt.Printf("Copying data from: %s\n", c.Source)
		if err := c.copyData(ctx, c.Source); err != nil {
			return fmt.Errorf("migration failed: %w", err)
		}
		fmt.Println("Migration completed successfully!")
	}

	settings, err := ctx.Settings()
	if err != nil {
		return err
	}
	if !settings.HasLocation {
		fmt.Println()
		fmt.Println("Next steps:")
		fmt.Printf("  %s location set --lat <latitude> --lng <longitude>\n", constants.AppName)
		fmt.Printf("  %s auto-silent on\n", constants.AppName)
	}
	return nil
}

func (c *InitCmd) copyData(ctx *cli.Context, source string) error {
	sourceStore, err := storage.New(source)
	if err != nil {
		if errors.Is(err, postgres.ErrEmbeddedCredentials) {
			return fmt.Errorf("PostgreSQL source connection string contains embedded credentials. Use environment variables or .pgpass instead")
		}
		return err
	}
	if err := sourceStore.Load(); err != nil {
		return fmt.Errorf("failed to load source database: %w", err)
	}
	defer sourceStore.Close()

	fmt.Println("  Copying settings...")
	settings, err := sourceStore.GetSettings()
	if err != nil {
		return fmt.Errorf("failed to get settings from source: %w", err)
	}
	// Ownership belongs to the device state of the source installation
	settings.WeEnabledDND = false
	if err := ctx.Store.SaveSettings(settings); err != nil {
		return fmt.Errorf("failed to save settings to destination: %w", err)
	}

	fmt.Println("  Copying DND history...")
	events, err := sourceStore.GetEvents(constants.MaxMigratedEvents)
	if err != nil {
		return fmt.Errorf("failed to get events from source: %w", err)
	}
	for i := len(events) - 1; i >= 0; i-- {
		if err := ctx.Store.AddEvent(events[i]); err != nil {
			return fmt.Errorf("failed to add event %s: %w", events[i].ID, err)
		}
	}
	fmt.Printf("    Copied %d events\n", len(events))

	return nil
}
