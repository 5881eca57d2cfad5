package sqlite

import (
	"fmt"
	"time"

	"github.com/julianstephens/khoshoo3/internal/constants"
	"github.com/julianstephens/khoshoo3/internal/models"
)

// Fixed-width UTC timestamps sort lexically in occurrence order
const timestampFormat = "2006-01-02T15:04:05.000000000Z"

func (s *Store) AddEvent(event models.DNDEvent) error {
	_, err := s.db.Exec(
		"INSERT INTO dnd_events (id, action, reason, prayer, backend, occurred_at) VALUES (?, ?, ?, ?, ?, ?)",
		event.ID, string(event.Action), event.Reason, string(event.Prayer), event.Backend,
		event.OccurredAt.UTC().Format(timestampFormat),
	)
	if err != nil {
		return fmt.Errorf("failed to record DND event: %w", err)
	}
	return nil
}

func (s *Store) GetEvents(limit int) ([]models.DNDEvent, error) {
	if limit <= 0 {
		limit = constants.DefaultHistoryLimit
	}

	rows, err := s.db.Query(
		"SELECT id, action, reason, prayer, backend, occurred_at FROM dnd_events ORDER BY occurred_at DESC LIMIT ?",
		limit,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var events []models.DNDEvent
	for rows.Next() {
		var (
			event              models.DNDEvent
			action, prayer, at string
		)
		if err := rows.Scan(&event.ID, &action, &event.Reason, &prayer, &event.Backend, &at); err != nil {
			return nil, err
		}
		event.Action = constants.EventAction(action)
		event.Prayer = models.PrayerName(prayer)
		event.OccurredAt, err = time.Parse(timestampFormat, at)
		if err != nil {
			return nil, fmt.Errorf("parsing occurred_at for event %s: %w", event.ID, err)
		}
		events = append(events, event)
	}
	return events, rows.Err()
}
