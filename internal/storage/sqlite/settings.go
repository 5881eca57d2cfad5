package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/julianstephens/khoshoo3/internal/models"
)

// queryer is satisfied by *sql.DB and *sql.Conn
type queryer interface {
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

func (s *Store) GetSettings() (models.Settings, error) {
	return readSettings(context.Background(), s.db)
}

func readSettings(ctx context.Context, q queryer) (models.Settings, error) {
	rows, err := q.QueryContext(ctx, "SELECT key, value FROM settings")
	if err != nil {
		return models.Settings{}, err
	}
	defer rows.Close()

	data := make(map[string]string)
	for rows.Next() {
		var key, value string
		if err := rows.Scan(&key, &value); err != nil {
			return models.Settings{}, err
		}
		data[key] = value
	}
	if err := rows.Err(); err != nil {
		return models.Settings{}, err
	}

	if len(data) == 0 {
		return models.Settings{}, fmt.Errorf("settings not found")
	}

	settings, err := models.MapToSettings(data)
	if err != nil {
		return models.Settings{}, err
	}
	models.ApplyDefaultSettings(&settings)
	return settings, nil
}

func (s *Store) SaveSettings(settings models.Settings) error {
	tx, err := s.db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if err := writeSettings(context.Background(), tx, models.SettingsToMap(settings)); err != nil {
		return err
	}
	return tx.Commit()
}

func writeSettings(ctx context.Context, q queryer, values map[string]string) error {
	for key, value := range values {
		if _, err := q.ExecContext(ctx, "INSERT OR REPLACE INTO settings (key, value) VALUES (?, ?)", key, value); err != nil {
			return fmt.Errorf("saving %s: %w", key, err)
		}
	}
	return nil
}

// UpdateSettings applies fn inside a BEGIN IMMEDIATE transaction, which
// takes the database write lock up front, so a daemon and a one-shot
// command never interleave their read-modify-write. Only the keys fn
// changed are written back.
func (s *Store) UpdateSettings(fn func(*models.Settings)) (err error) {
	ctx := context.Background()
	conn, err := s.db.Conn(ctx)
	if err != nil {
		return err
	}
	defer conn.Close()

	if _, err := conn.ExecContext(ctx, "BEGIN IMMEDIATE"); err != nil {
		return fmt.Errorf("failed to lock settings: %w", err)
	}
	defer func() {
		if err != nil {
			_, _ = conn.ExecContext(ctx, "ROLLBACK")
		}
	}()

	before, err := readSettings(ctx, conn)
	if err != nil {
		return err
	}
	after := before
	fn(&after)

	if err = writeSettings(ctx, conn, models.ChangedSettings(before, after)); err != nil {
		return err
	}
	_, err = conn.ExecContext(ctx, "COMMIT")
	return err
}
