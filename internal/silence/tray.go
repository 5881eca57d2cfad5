package silence

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/mitchellh/go-ps"

	"github.com/julianstephens/khoshoo3/internal/config"
	"github.com/julianstephens/khoshoo3/internal/constants"
)

var (
	userConfigDirFunc = os.UserConfigDir
	findProcessFunc   = ps.FindProcess
)

// Tray drives DND through the khoshoo3-tray companion app. The tray writes
// "port|pid|secret" to its lockfile and serves GET/PUT /dnd on 127.0.0.1.
type Tray struct {
	configDir string
	client    *http.Client
}

type trayState struct {
	Active              bool `json:"active"`
	PolicyAccessGranted bool `json:"policy_access_granted"`
}

type trayRequest struct {
	Active bool `json:"active"`
}

// NewTray creates a tray controller. An empty config dir means the tray's
// default under the user config directory.
func NewTray(cfg *config.TrayConfig) *Tray {
	t := &Tray{client: &http.Client{Timeout: constants.TrayRequestTimeout}}
	if cfg != nil {
		t.configDir = cfg.ConfigDir
	}
	return t
}

func (t *Tray) Name() string { return string(constants.BackendTray) }

func (t *Tray) PermissionGranted(ctx context.Context) (bool, error) {
	state, err := t.state(ctx)
	if err != nil {
		return false, err
	}
	return state.PolicyAccessGranted, nil
}

func (t *Tray) IsActive(ctx context.Context) (bool, error) {
	state, err := t.state(ctx)
	if err != nil {
		return false, err
	}
	return state.Active, nil
}

func (t *Tray) Enable(ctx context.Context) error {
	return t.set(ctx, true)
}

func (t *Tray) Disable(ctx context.Context) error {
	return t.set(ctx, false)
}

// GetTrayAppConfigDir returns the configuration directory used by the tray application.
func (t *Tray) GetTrayAppConfigDir() (string, error) {
	if t.configDir != "" {
		return t.configDir, nil
	}
	configDir, err := userConfigDirFunc()
	if err != nil {
		return "", fmt.Errorf("failed to get user config dir: %w", err)
	}
	return filepath.Join(configDir, constants.TrayAppIdentifier), nil
}

func (t *Tray) endpoint() (string, string, error) {
	dir, err := t.GetTrayAppConfigDir()
	if err != nil {
		return "", "", err
	}
	port, secret, err := findAndValidateTrayProcess(filepath.Join(dir, constants.TrayLockfileName))
	if err != nil {
		return "", "", err
	}
	return fmt.Sprintf("http://127.0.0.1:%s/dnd", port), secret, nil
}

func (t *Tray) state(ctx context.Context) (trayState, error) {
	url, secret, err := t.endpoint()
	if err != nil {
		return trayState{}, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return trayState{}, err
	}
	req.Header.Set(constants.TraySecretHeader, secret)

	var state trayState
	if err := t.do(req, &state); err != nil {
		return trayState{}, err
	}
	return state, nil
}

func (t *Tray) set(ctx context.Context, active bool) error {
	url, secret, err := t.endpoint()
	if err != nil {
		return err
	}

	body, err := json.Marshal(trayRequest{Active: active})
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPut, url, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set(constants.TraySecretHeader, secret)

	return t.do(req, nil)
}

func (t *Tray) do(req *http.Request, out any) error {
	res, err := t.client.Do(req)
	if err != nil {
		return fmt.Errorf("tray request failed: %w", err)
	}
	defer res.Body.Close()

	switch res.StatusCode {
	case http.StatusOK, http.StatusNoContent:
	case http.StatusForbidden:
		return ErrPermissionDenied
	default:
		body, _ := io.ReadAll(res.Body)
		return fmt.Errorf("tray request failed with status %d: %s", res.StatusCode, strings.TrimSpace(string(body)))
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(res.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode tray response: %w", err)
	}
	return nil
}

func findAndValidateTrayProcess(lockfilePath string) (string, string, error) {
	content, err := os.ReadFile(lockfilePath)
	if err != nil {
		return "", "", errors.New("khoshoo3-tray is not running")
	}

	parts := strings.Split(strings.TrimSpace(string(content)), "|")
	if len(parts) != 3 {
		return "", "", errors.New("lockfile is malformed")
	}

	port := strings.TrimSpace(parts[0])
	portNum, err := strconv.Atoi(port)
	if err != nil {
		return "", "", errors.New("invalid port number in lockfile")
	}
	if portNum < 1 || portNum > 65535 {
		return "", "", fmt.Errorf("port number %d is outside valid range (1-65535)", portNum)
	}

	pid, err := strconv.Atoi(strings.TrimSpace(parts[1]))
	if err != nil {
		return "", "", errors.New("invalid process ID in lockfile")
	}
	secret := strings.TrimSpace(parts[2])
	if secret == "" {
		return "", "", errors.New("secret in lockfile is empty")
	}

	process, err := findProcessFunc(pid)
	if err != nil || process == nil {
		return "", "", errors.New("khoshoo3-tray process not running")
	}
	if !strings.HasPrefix(process.Executable(), constants.TrayExecutable) {
		return "", "", fmt.Errorf("process with PID %d is not %s (is %s)", pid, constants.TrayExecutable, process.Executable())
	}

	return port, secret, nil
}
