package models

import (
	"time"

	"github.com/julianstephens/khoshoo3/internal/constants"
)

// DNDEvent records a DND transition performed by khoshoo3
type DNDEvent struct {
	ID         string                `json:"id"`
	Action     constants.EventAction `json:"action"`
	Reason     string                `json:"reason"`
	Prayer     PrayerName            `json:"prayer,omitempty"` // set when the transition was caused by a prayer window
	Backend    string                `json:"backend"`
	OccurredAt time.Time             `json:"occurred_at"`
}
