package constants

const (
	SettingAutoSilentEnabled = "auto_silent_enabled"
	SettingLatitude          = "latitude"
	SettingLongitude         = "longitude"
	SettingHasLocation       = "has_location"
	SettingWeEnabledDND      = "we_enabled_dnd"
	SettingWindowMinutes     = "window_minutes"
	SettingCalculationMethod = "calculation_method"
	SettingMadhab            = "madhab"
	SettingTimezone          = "timezone"

	// Default Settings Values
	DefaultAutoSilentEnabled = false
	DefaultWindowMinutes     = 15
	DefaultCalculationMethod = "egyptian"
	DefaultMadhab            = "shafi"
	DefaultTimezone          = "Local" // Use system local timezone by default

	MaxWindowMinutes = 120
)
