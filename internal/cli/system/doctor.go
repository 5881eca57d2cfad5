package system

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/julianstephens/khoshoo3/internal/cli"
	"github.com/julianstephens/khoshoo3/internal/constants"
	"github.com/julianstephens/khoshoo3/internal/keyring"
	"github.com/julianstephens/khoshoo3/internal/silence"
	"github.com/julianstephens/khoshoo3/internal/storage"
)

const doctorTimeout = 10 * time.Second

type DoctorCmd struct{}

func (cmd *DoctorCmd) Run(ctx *cli.Context) error {
	fmt.Println("Running diagnostics...")
	fmt.Println()

	hasError := false
	dbReachable := false

	// Check 1: DB reachable
	if err := checkDBReachable(ctx); err != nil {
		fail("Database reachable", err)
		hasError = true
	} else {
		fmt.Printf("✓ Database reachable: OK\n")
		dbReachable = true
	}

	// Check 2: Schema version
	if dbReachable {
		if err := checkSchemaVersion(ctx); err != nil {
			fail("Schema version", err)
			hasError = true
		} else {
			fmt.Printf("✓ Schema version: OK\n")
		}
	} else {
		skip("Schema version", "database not reachable")
	}

	// Check 3: DND backend permission
	backend := fmt.Sprintf("DND backend (%s)", ctx.DND.Name())
	permitted := false
	if err := checkDNDPermission(ctx); err != nil {
		fail(backend, err)
		hasError = true
	} else {
		fmt.Printf("✓ %s: OK\n", backend)
		permitted = true
	}

	// Check 4: DND state readable
	if permitted {
		if active, err := checkDNDState(ctx); err != nil {
			fail("DND state", err)
			hasError = true
		} else {
			fmt.Printf("✓ DND state: OK (%s)\n", cli.OnOff(active))
		}
	} else {
		skip("DND state", "no policy access")
	}

	// Check 5: Location (warning only)
	if dbReachable {
		if err := checkLocation(ctx); err != nil {
			fmt.Printf("⚠ Location: WARNING\n")
			fmt.Printf("   %v\n", err)
		} else {
			fmt.Printf("✓ Location: OK\n")
		}
	} else {
		skip("Location", "database not reachable")
	}

	// Check 6: Prayer times computable
	if dbReachable {
		if err := checkPrayerTimes(ctx); err != nil {
			fail("Prayer times", err)
			hasError = true
		} else {
			fmt.Printf("✓ Prayer times: OK\n")
		}
	} else {
		skip("Prayer times", "database not reachable")
	}

	// Check 7: Keyring, only needed for the MQTT bridge password
	if ctx.Config != nil && ctx.Config.DND != nil && ctx.Config.DND.Backend == string(constants.BackendMQTT) {
		if keyring.IsAvailable() {
			fmt.Printf("✓ OS keyring: OK\n")
		} else {
			fmt.Printf("⚠ OS keyring: WARNING\n")
			fmt.Printf("   keyring unavailable, set dnd.mqtt.password or KHOSHOO3_DND_MQTT_PASSWORD\n")
		}
	}

	fmt.Println()
	if hasError {
		return errors.New("one or more health checks failed")
	}
	fmt.Println("All checks passed.")
	return nil
}

func fail(name string, err error) {
	fmt.Printf("❌ %s: FAIL\n", name)
	fmt.Printf("   Error: %v\n", err)
}

func skip(name, reason string) {
	fmt.Printf("⊘ %s: SKIPPED (%s)\n", name, reason)
}

func checkDBReachable(ctx *cli.Context) error {
	if err := ctx.Store.Load(); err != nil {
		return err
	}
	_, err := ctx.Store.GetSettings()
	return err
}

func checkSchemaVersion(ctx *cli.Context) error {
	reporter, ok := ctx.Store.(storage.SchemaReporter)
	if !ok {
		return nil
	}
	current, latest, err := reporter.SchemaStatus()
	if err != nil {
		return err
	}
	if current != latest {
		return fmt.Errorf("schema version %d, expected %d; run '%s init' to migrate", current, latest, constants.AppName)
	}
	return nil
}

func checkDNDPermission(ctx *cli.Context) error {
	c, cancel := context.WithTimeout(context.Background(), doctorTimeout)
	defer cancel()

	granted, err := ctx.DND.PermissionGranted(c)
	if err != nil {
		return err
	}
	if !granted {
		return silence.ErrPermissionDenied
	}
	return nil
}

func checkDNDState(ctx *cli.Context) (bool, error) {
	c, cancel := context.WithTimeout(context.Background(), doctorTimeout)
	defer cancel()
	return ctx.DND.IsActive(c)
}

func checkLocation(ctx *cli.Context) error {
	settings, err := ctx.Settings()
	if err != nil {
		return err
	}
	if !settings.HasLocation {
		return fmt.Errorf("no location stored, auto-silent is waiting for location")
	}
	return nil
}

func checkPrayerTimes(ctx *cli.Context) error {
	repo, settings, err := ctx.Repository()
	if err != nil {
		return err
	}
	if !settings.HasLocation {
		return nil
	}
	_, err = repo.GetPrayerTimes(settings.Latitude, settings.Longitude, ctx.Clock())
	return err
}
