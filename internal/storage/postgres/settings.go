package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/julianstephens/khoshoo3/internal/models"
)

// queryer is satisfied by *sql.DB and *sql.Tx
type queryer interface {
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

const upsertSetting = `
	INSERT INTO settings (key, value) VALUES ($1, $2)
	ON CONFLICT (key) DO UPDATE SET value = EXCLUDED.value
`

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
		if _, err := q.ExecContext(ctx, upsertSetting, key, value); err != nil {
			return fmt.Errorf("saving %s: %w", key, err)
		}
	}
	return nil
}

// UpdateSettings applies fn while holding a table lock that excludes other
// updaters but not readers. Only the keys fn changed are written back.
func (s *Store) UpdateSettings(fn func(*models.Settings)) error {
	ctx := context.Background()
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, "LOCK TABLE settings IN SHARE ROW EXCLUSIVE MODE"); err != nil {
		return fmt.Errorf("failed to lock settings: %w", err)
	}

	before, err := readSettings(ctx, tx)
	if err != nil {
		return err
	}
	after := before
	fn(&after)

	if err := writeSettings(ctx, tx, models.ChangedSettings(before, after)); err != nil {
		return err
	}
	return tx.Commit()
}
