package models

import (
	"fmt"
	"strconv"

	"github.com/julianstephens/khoshoo3/internal/constants"
)

// MapToSettings converts a map of key-value pairs to a Settings struct.
//
// Stores written before has_location existed used (0,0) to mean "no fix yet";
// when the key is missing the flag is derived from that sentinel.
func MapToSettings(data map[string]string) (Settings, error) {
	settings := Settings{}
	hasLocationSeen := false

	for key, value := range data {
		switch key {
		case constants.SettingAutoSilentEnabled:
			settings.AutoSilentEnabled = value == "true"
		case constants.SettingLatitude:
			v, err := strconv.ParseFloat(value, 64)
			if err != nil {
				return Settings{}, fmt.Errorf("parsing latitude: %w", err)
			}
			settings.Latitude = v
		case constants.SettingLongitude:
			v, err := strconv.ParseFloat(value, 64)
			if err != nil {
				return Settings{}, fmt.Errorf("parsing longitude: %w", err)
			}
			settings.Longitude = v
		case constants.SettingHasLocation:
			settings.HasLocation = value == "true"
			hasLocationSeen = true
		case constants.SettingWeEnabledDND:
			settings.WeEnabledDND = value == "true"
		case constants.SettingWindowMinutes:
			if _, err := fmt.Sscanf(value, "%d", &settings.WindowMinutes); err != nil {
				return Settings{}, fmt.Errorf("parsing window_minutes: %w", err)
			}
		case constants.SettingCalculationMethod:
			settings.CalculationMethod = value
		case constants.SettingMadhab:
			settings.Madhab = value
		case constants.SettingTimezone:
			settings.Timezone = value
		}
	}

	if !hasLocationSeen {
		settings.HasLocation = settings.Latitude != 0 || settings.Longitude != 0
	}
	return settings, nil
}

// SettingsToMap converts a Settings struct to a map of key-value pairs.
func SettingsToMap(settings Settings) map[string]string {
	return map[string]string{
		constants.SettingAutoSilentEnabled: strconv.FormatBool(settings.AutoSilentEnabled),
		constants.SettingLatitude:          strconv.FormatFloat(settings.Latitude, 'f', -1, 64),
		constants.SettingLongitude:         strconv.FormatFloat(settings.Longitude, 'f', -1, 64),
		constants.SettingHasLocation:       strconv.FormatBool(settings.HasLocation),
		constants.SettingWeEnabledDND:      strconv.FormatBool(settings.WeEnabledDND),
		constants.SettingWindowMinutes:     fmt.Sprintf("%d", settings.WindowMinutes),
		constants.SettingCalculationMethod: settings.CalculationMethod,
		constants.SettingMadhab:            settings.Madhab,
		constants.SettingTimezone:          settings.Timezone,
	}
}

// ApplyDefaultSettings applies default values to missing settings.
func ApplyDefaultSettings(settings *Settings) {
	if settings.WindowMinutes <= 0 {
		settings.WindowMinutes = constants.DefaultWindowMinutes
	}
	if settings.CalculationMethod == "" {
		settings.CalculationMethod = constants.DefaultCalculationMethod
	}
	if settings.Madhab == "" {
		settings.Madhab = constants.DefaultMadhab
	}
	if settings.Timezone == "" {
		settings.Timezone = constants.DefaultTimezone
	}
}

// DefaultSettings returns the settings written by a fresh init
func DefaultSettings() Settings {
	s := Settings{AutoSilentEnabled: constants.DefaultAutoSilentEnabled}
	ApplyDefaultSettings(&s)
	return s
}

// ChangedSettings returns the key/value pairs of after that differ from before
func ChangedSettings(before, after Settings) map[string]string {
	old := SettingsToMap(before)
	changed := make(map[string]string)
	for key, value := range SettingsToMap(after) {
		if old[key] != value {
			changed[key] = value
		}
	}
	return changed
}
