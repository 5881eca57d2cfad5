package constants

import "time"

// Backend selects the device notification-policy service used to toggle DND
type Backend string

// LocationProvider selects the device location service
type LocationProvider string

// EventAction is the DND transition recorded in the event log
type EventAction string

const (
	AppName            = "khoshoo3"
	DefaultKeyringUser = "mqtt-password"
	DefaultDBPath      = "~/.config/khoshoo3/khoshoo3.db"
	Version            = "v0.1.0"

	// DateFormat is the standard date format used throughout the application (YYYY-MM-DD)
	DateFormat = "2006-01-02"

	// TimeFormat is the standard time format used throughout the application (HH:MM)
	TimeFormat = "15:04"

	// Periodic check constants
	CheckInterval      = 15 * time.Minute
	PrayerCheckJobID   = "prayer_check"
	PrayerCheckJobName = "Prayer Check"
	DNDTestDuration    = 30 * time.Second
	JobReportInterval  = time.Hour

	// Location refresh, only scheduled for non-static providers
	LocationRefreshInterval = 6 * time.Hour
	LocationRefreshJobID    = "location_refresh"
	LocationRefreshJobName  = "Location Refresh"
	LocateTimeout           = 30 * time.Second

	// Tray constants
	TrayLockfileName   = "khoshoo3-tray.lock"
	TrayAppIdentifier  = "com.khoshoo3.tray"
	TrayExecutable     = "khoshoo3-tray"
	TraySecretHeader   = "X-Khoshoo3-Secret"
	TrayRequestTimeout = 5 * time.Second

	// DND backends
	BackendMemory Backend = "memory"
	BackendDunst  Backend = "dunst"
	BackendTray   Backend = "tray"
	BackendMQTT   Backend = "mqtt"

	// Location providers
	LocationStatic  LocationProvider = "static"
	LocationGeoClue LocationProvider = "geoclue"
	LocationIPAPI   LocationProvider = "ipapi"

	DefaultIPAPIURL = "http://ip-api.com/json/"

	// Event actions
	EventDNDEnabled  EventAction = "enabled"
	EventDNDDisabled EventAction = "disabled"

	// Event reasons
	ReasonPrayerWindow       = "prayer_window"
	ReasonWindowClosed       = "window_closed"
	ReasonAutoSilentDisabled = "auto_silent_disabled"
	ReasonManualTest         = "manual_test"

	DefaultHistoryLimit = 20
	MaxMigratedEvents   = 10000
)
