package system

import (
	"errors"
	"fmt"

	"github.com/julianstephens/khoshoo3/internal/cli"
	"github.com/julianstephens/khoshoo3/internal/keyring"
)

// KeyringSetCmd stores the MQTT broker password in the OS keyring
type KeyringSetCmd struct {
	Password string `arg:"" help:"MQTT broker password to store in keyring"`
}

func (cmd *KeyringSetCmd) Run(ctx *cli.Context) error {
	if cmd.Password == "" {
		return errors.New("password must not be empty")
	}
	if err := keyring.SetMQTTPassword(cmd.Password); err != nil {
		return fmt.Errorf("failed to store password in keyring: %w", err)
	}

	fmt.Println("✓ MQTT password stored successfully in OS keyring")
	return nil
}

// KeyringDeleteCmd removes the MQTT broker password from the OS keyring
type KeyringDeleteCmd struct{}

func (cmd *KeyringDeleteCmd) Run(ctx *cli.Context) error {
	err := keyring.DeleteMQTTPassword()
	if err != nil {
		if errors.Is(err, keyring.ErrNotFound) {
			return errors.New("no MQTT password found in keyring")
		}
		return fmt.Errorf("failed to delete password from keyring: %w", err)
	}

	fmt.Println("✓ MQTT password deleted from OS keyring")
	return nil
}

// KeyringStatusCmd checks the availability of the OS keyring
type KeyringStatusCmd struct{}

func (cmd *KeyringStatusCmd) Run(ctx *cli.Context) error {
	if !keyring.IsAvailable() {
		fmt.Println("❌ OS keyring is not available on this system")
		return errors.New("keyring unavailable")
	}
	fmt.Println("✓ OS keyring is available")

	_, err := keyring.GetMQTTPassword()
	switch {
	case err == nil:
		fmt.Println("✓ MQTT password is stored in keyring")
	case errors.Is(err, keyring.ErrNotFound):
		fmt.Println("ℹ No MQTT password stored in keyring")
	default:
		return fmt.Errorf("failed to read keyring: %w", err)
	}
	return nil
}
