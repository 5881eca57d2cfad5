package models

import "time"

// PrayerName identifies one of the six daily events returned by the calculator
type PrayerName string

const (
	Fajr    PrayerName = "Fajr"
	Sunrise PrayerName = "Sunrise"
	Dhuhr   PrayerName = "Dhuhr"
	Asr     PrayerName = "Asr"
	Maghrib PrayerName = "Maghrib"
	Isha    PrayerName = "Isha"
)

// PrayerOrder is the canonical order of the daily events
var PrayerOrder = []PrayerName{Fajr, Sunrise, Dhuhr, Asr, Maghrib, Isha}

// IsPrayer reports whether the event is an actual prayer. Sunrise marks the
// end of the Fajr period and is not prayed.
func (n PrayerName) IsPrayer() bool {
	return n != Sunrise
}

// PrayerTimeInfo is a single event on a given date. It is recomputed daily and never persisted.
type PrayerTimeInfo struct {
	Name PrayerName `json:"name"`
	Time time.Time  `json:"time"`
}
