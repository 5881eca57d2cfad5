package silence

import (
	"context"
	"sync"

	"github.com/julianstephens/khoshoo3/internal/constants"
)

// Memory keeps the DND state in process. It backs --dry-run and tests.
type Memory struct {
	mu       sync.Mutex
	granted  bool
	active   bool
	enables  int
	disables int
}

// NewMemory creates an in-memory controller with DND off
func NewMemory(granted bool) *Memory {
	return &Memory{granted: granted}
}

func (m *Memory) Name() string { return string(constants.BackendMemory) }

func (m *Memory) PermissionGranted(context.Context) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.granted, nil
}

func (m *Memory) Enable(context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if !m.granted {
		return ErrPermissionDenied
	}
	m.active = true
	m.enables++
	return nil
}

func (m *Memory) Disable(context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if !m.granted {
		return ErrPermissionDenied
	}
	m.active = false
	m.disables++
	return nil
}

func (m *Memory) IsActive(context.Context) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.active, nil
}

// SetActive changes the state as if the user flipped DND by hand
func (m *Memory) SetActive(active bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.active = active
}

// SetGranted changes the policy access
func (m *Memory) SetGranted(granted bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.granted = granted
}

// Calls returns how many times Enable and Disable succeeded
func (m *Memory) Calls() (enables, disables int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.enables, m.disables
}
