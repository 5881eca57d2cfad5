package postgres

import (
	"fmt"

	"github.com/julianstephens/khoshoo3/internal/constants"
	"github.com/julianstephens/khoshoo3/internal/models"
)

func (s *Store) AddEvent(event models.DNDEvent) error {
	_, err := s.db.Exec(
		"INSERT INTO dnd_events (id, action, reason, prayer, backend, occurred_at) VALUES ($1, $2, $3, $4, $5, $6)",
		event.ID, string(event.Action), event.Reason, string(event.Prayer), event.Backend, event.OccurredAt.UTC(),
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
		"SELECT id, action, reason, prayer, backend, occurred_at FROM dnd_events ORDER BY occurred_at DESC LIMIT $1",
		limit,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var events []models.DNDEvent
	for rows.Next() {
		var (
			event          models.DNDEvent
			action, prayer string
		)
		if err := rows.Scan(&event.ID, &action, &event.Reason, &prayer, &event.Backend, &event.OccurredAt); err != nil {
			return nil, err
		}
		event.Action = constants.EventAction(action)
		event.Prayer = models.PrayerName(prayer)
		events = append(events, event)
	}
	return events, rows.Err()
}
