package silence

import (
	"context"
	"fmt"
	"sync"

	"github.com/godbus/dbus/v5"

	"github.com/julianstephens/khoshoo3/internal/constants"
)

const (
	dunstBusName   = "org.freedesktop.Notifications"
	dunstPath      = dbus.ObjectPath("/org/freedesktop/Notifications")
	dunstPausedKey = "org.dunstproject.cmd0.paused"
)

// sessionBus is the part of *dbus.Conn the controller uses
type sessionBus interface {
	BusObject() dbus.BusObject
	Object(dest string, path dbus.ObjectPath) dbus.BusObject
	Connected() bool
	Close() error
}

// Dunst pauses the dunst notification daemon over the session bus. Paused
// notifications are queued and shown once the pause ends.
type Dunst struct {
	mu      sync.Mutex
	conn    sessionBus
	connect func() (sessionBus, error)
}

// NewDunst creates a controller that connects lazily to the session bus
func NewDunst() *Dunst {
	return &Dunst{connect: func() (sessionBus, error) {
		return dbus.ConnectSessionBus()
	}}
}

func (d *Dunst) Name() string { return string(constants.BackendDunst) }

func (d *Dunst) bus() (sessionBus, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.conn != nil && d.conn.Connected() {
		return d.conn, nil
	}
	conn, err := d.connect()
	if err != nil {
		return nil, fmt.Errorf("failed to connect to session bus: %w", err)
	}
	d.conn = conn
	return conn, nil
}

// PermissionGranted reports whether dunst owns the notifications name and
// exposes the pause property
func (d *Dunst) PermissionGranted(ctx context.Context) (bool, error) {
	conn, err := d.bus()
	if err != nil {
		return false, err
	}

	var owned bool
	if err := conn.BusObject().CallWithContext(ctx, "org.freedesktop.DBus.NameHasOwner", 0, dunstBusName).Store(&owned); err != nil {
		return false, fmt.Errorf("failed to query %s owner: %w", dunstBusName, err)
	}
	if !owned {
		return false, nil
	}

	if _, err := conn.Object(dunstBusName, dunstPath).GetProperty(dunstPausedKey); err != nil {
		// Another notification daemon owns the name
		return false, nil
	}
	return true, nil
}

func (d *Dunst) Enable(ctx context.Context) error {
	return d.setPaused(ctx, true)
}

func (d *Dunst) Disable(ctx context.Context) error {
	return d.setPaused(ctx, false)
}

func (d *Dunst) IsActive(context.Context) (bool, error) {
	conn, err := d.bus()
	if err != nil {
		return false, err
	}
	v, err := conn.Object(dunstBusName, dunstPath).GetProperty(dunstPausedKey)
	if err != nil {
		return false, fmt.Errorf("failed to read dunst pause state: %w", err)
	}
	paused, ok := v.Value().(bool)
	if !ok {
		return false, fmt.Errorf("unexpected dunst pause value %v", v)
	}
	return paused, nil
}

func (d *Dunst) setPaused(ctx context.Context, paused bool) error {
	granted, err := d.PermissionGranted(ctx)
	if err != nil {
		return err
	}
	if !granted {
		return ErrPermissionDenied
	}
	conn, err := d.bus()
	if err != nil {
		return err
	}
	if err := conn.Object(dunstBusName, dunstPath).SetProperty(dunstPausedKey, dbus.MakeVariant(paused)); err != nil {
		return fmt.Errorf("failed to set dunst pause state: %w", err)
	}
	return nil
}

// Close releases the session bus connection
func (d *Dunst) Close() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.conn == nil {
		return nil
	}
	err := d.conn.Close()
	d.conn = nil
	return err
}
