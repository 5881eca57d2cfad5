// Package storage selects the persistence backend for settings and DND events.
package storage

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/julianstephens/khoshoo3/internal/storage/postgres"
	"github.com/julianstephens/khoshoo3/internal/storage/sqlite"
)

// IsPostgres reports whether conn is a PostgreSQL URL rather than a file path
func IsPostgres(conn string) bool {
	return strings.HasPrefix(conn, "postgres://") || strings.HasPrefix(conn, "postgresql://")
}

// HasEmbeddedCredentials reports whether a PostgreSQL connection string
// carries a password
func HasEmbeddedCredentials(conn string) bool {
	_, err := postgres.ValidateConnString(conn)
	return err == postgres.ErrEmbeddedCredentials
}

// New returns the provider for conn: PostgreSQL for postgres:// URLs,
// SQLite for everything else
func New(conn string) (Provider, error) {
	if IsPostgres(conn) {
		if _, err := postgres.ValidateConnString(conn); err != nil {
			return nil, err
		}
		return postgres.New(conn), nil
	}

	path, err := ExpandPath(conn)
	if err != nil {
		return nil, err
	}
	return sqlite.NewStore(path), nil
}

// ExpandPath resolves a leading ~ to the user's home directory
func ExpandPath(path string) (string, error) {
	if path != "~" && !strings.HasPrefix(path, "~/") {
		return path, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to resolve home directory: %w", err)
	}
	return filepath.Join(home, strings.TrimPrefix(path, "~")), nil
}
