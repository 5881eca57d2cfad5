// Package silence talks to the device notification-policy service: it turns
// Do-Not-Disturb on and off and reports whether it is allowed to.
package silence

import (
	"context"
	"errors"
	"fmt"

	"github.com/julianstephens/khoshoo3/internal/config"
	"github.com/julianstephens/khoshoo3/internal/constants"
)

// ErrPermissionDenied is returned when khoshoo3 may not change the DND state
var ErrPermissionDenied = errors.New("notification policy access not granted")

// Controller toggles device DND.
//
// Enable and Disable return ErrPermissionDenied when policy access is missing
// instead of attempting the change.
type Controller interface {
	Name() string
	PermissionGranted(ctx context.Context) (bool, error)
	Enable(ctx context.Context) error
	Disable(ctx context.Context) error
	IsActive(ctx context.Context) (bool, error)
}

// New builds the controller selected in the configuration
func New(cfg *config.DNDConfig) (Controller, error) {
	if cfg == nil {
		return NewMemory(true), nil
	}

	switch constants.Backend(cfg.Backend) {
	case constants.BackendMemory, "":
		return NewMemory(true), nil
	case constants.BackendDunst:
		return NewDunst(), nil
	case constants.BackendTray:
		return NewTray(cfg.Tray), nil
	case constants.BackendMQTT:
		return NewMQTT(cfg.MQTT)
	default:
		return nil, fmt.Errorf("unknown DND backend %q", cfg.Backend)
	}
}

// Close releases any connection held by c
func Close(c Controller) error {
	if closer, ok := c.(interface{ Close() error }); ok {
		return closer.Close()
	}
	return nil
}
