package location

import (
	"context"
	"fmt"
	"time"

	"github.com/godbus/dbus/v5"

	"github.com/julianstephens/khoshoo3/internal/constants"
	"github.com/julianstephens/khoshoo3/internal/logger"
)

const (
	geoclueBusName     = "org.freedesktop.GeoClue2"
	geoclueManagerPath = dbus.ObjectPath("/org/freedesktop/GeoClue2/Manager")
	geoclueClientIface = "org.freedesktop.GeoClue2.Client"
	geoclueLocIface    = "org.freedesktop.GeoClue2.Location"

	// GCLUE_ACCURACY_LEVEL_CITY
	geoclueAccuracyCity uint32 = 4
)

// systemBus is the part of *dbus.Conn a location request uses
type systemBus interface {
	Object(dest string, path dbus.ObjectPath) dbus.BusObject
	AddMatchSignal(options ...dbus.MatchOption) error
	RemoveMatchSignal(options ...dbus.MatchOption) error
	Signal(ch chan<- *dbus.Signal)
	RemoveSignal(ch chan<- *dbus.Signal)
	Close() error
}

// GeoClue asks the GeoClue2 service on the system bus for a single fix
type GeoClue struct {
	desktopID string
	timeout   time.Duration
	connect   func() (systemBus, error)
}

func NewGeoClue(desktopID string, timeout time.Duration) *GeoClue {
	if desktopID == "" {
		desktopID = constants.AppName
	}
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &GeoClue{desktopID: desktopID, timeout: timeout, connect: func() (systemBus, error) {
		return dbus.ConnectSystemBus()
	}}
}

func (g *GeoClue) Name() string { return string(constants.LocationGeoClue) }

func (g *GeoClue) Locate(ctx context.Context) (Fix, error) {
	ctx, cancel := context.WithTimeout(ctx, g.timeout)
	defer cancel()

	conn, err := g.connect()
	if err != nil {
		return Fix{}, fmt.Errorf("failed to connect to system bus: %w", err)
	}
	defer conn.Close()

	var clientPath dbus.ObjectPath
	manager := conn.Object(geoclueBusName, geoclueManagerPath)
	if err := manager.CallWithContext(ctx, geoclueBusName+".Manager.GetClient", 0).Store(&clientPath); err != nil {
		return Fix{}, fmt.Errorf("failed to get GeoClue client: %w", err)
	}

	client := conn.Object(geoclueBusName, clientPath)
	if err := client.SetProperty(geoclueClientIface+".DesktopId", dbus.MakeVariant(g.desktopID)); err != nil {
		return Fix{}, fmt.Errorf("failed to set GeoClue desktop id: %w", err)
	}
	if err := client.SetProperty(geoclueClientIface+".RequestedAccuracyLevel", dbus.MakeVariant(geoclueAccuracyCity)); err != nil {
		return Fix{}, fmt.Errorf("failed to set GeoClue accuracy: %w", err)
	}

	matchOpts := []dbus.MatchOption{
		dbus.WithMatchObjectPath(clientPath),
		dbus.WithMatchInterface(geoclueClientIface),
		dbus.WithMatchMember("LocationUpdated"),
	}
	if err := conn.AddMatchSignal(matchOpts...); err != nil {
		return Fix{}, fmt.Errorf("failed to subscribe to GeoClue updates: %w", err)
	}
	defer conn.RemoveMatchSignal(matchOpts...) //nolint:errcheck

	signals := make(chan *dbus.Signal, 1)
	conn.Signal(signals)
	defer conn.RemoveSignal(signals)

	if err := client.CallWithContext(ctx, geoclueClientIface+".Start", 0).Err; err != nil {
		return Fix{}, fmt.Errorf("failed to start GeoClue client: %w", err)
	}
	defer client.Call(geoclueClientIface+".Stop", 0)

	for {
		select {
		case <-ctx.Done():
			logger.Debug("GeoClue returned no fix before timeout", "timeout", g.timeout)
			return Fix{}, ErrNoFix
		case sig := <-signals:
			if sig == nil || sig.Path != clientPath || len(sig.Body) < 2 {
				continue
			}
			newPath, ok := sig.Body[1].(dbus.ObjectPath)
			if !ok {
				continue
			}
			return g.readLocation(conn, newPath)
		}
	}
}

func (g *GeoClue) readLocation(conn systemBus, path dbus.ObjectPath) (Fix, error) {
	loc := conn.Object(geoclueBusName, path)

	read := func(name string) (float64, error) {
		v, err := loc.GetProperty(geoclueLocIface + "." + name)
		if err != nil {
			return 0, fmt.Errorf("failed to read GeoClue %s: %w", name, err)
		}
		f, ok := v.Value().(float64)
		if !ok {
			return 0, fmt.Errorf("unexpected GeoClue %s type %T", name, v.Value())
		}
		return f, nil
	}

	lat, err := read("Latitude")
	if err != nil {
		return Fix{}, err
	}
	lng, err := read("Longitude")
	if err != nil {
		return Fix{}, err
	}
	accuracy, _ := read("Accuracy")

	if !ValidCoordinates(lat, lng) {
		return Fix{}, ErrNoFix
	}
	return Fix{Latitude: lat, Longitude: lng, Accuracy: accuracy, Source: g.Name(), At: time.Now()}, nil
}
