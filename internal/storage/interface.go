package storage

import "github.com/julianstephens/khoshoo3/internal/models"

type Provider interface {
	// Lifecycle
	Init() error
	Load() error
	Close() error

	// Settings
	GetSettings() (models.Settings, error)
	SaveSettings(models.Settings) error
	// UpdateSettings runs fn on the current settings under a lock shared
	// with other processes and writes back only the keys fn changed
	UpdateSettings(fn func(*models.Settings)) error

	// DND events, newest first
	AddEvent(models.DNDEvent) error
	GetEvents(limit int) ([]models.DNDEvent, error)

	// Utils
	GetConfigPath() string
}

// SchemaReporter is implemented by stores backed by the migration runner
type SchemaReporter interface {
	SchemaStatus() (current, latest int, err error)
}
