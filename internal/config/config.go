// Package config loads the khoshoo3 configuration file.
//
// The file only wires backends: which DND controller and location provider
// to use and how to reach them. User preferences such as the prayer window
// or the auto-silent toggle live in the store.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/spf13/viper"

	"github.com/julianstephens/khoshoo3/internal/constants"
)

// Config holds the configuration for khoshoo3 and its backends.
type Config struct {
	// LogLevel is the minimum level written to the log file.
	LogLevel string `yaml:"log_level" mapstructure:"log_level"`
	// DND selects and configures the Do-Not-Disturb backend.
	DND *DNDConfig `yaml:"dnd" mapstructure:"dnd"`
	// Location selects and configures the location provider.
	Location *LocationConfig `yaml:"location" mapstructure:"location"`
}

// DNDConfig holds the Do-Not-Disturb backend configuration.
type DNDConfig struct {
	// Backend is one of memory, dunst, tray or mqtt.
	Backend string `yaml:"backend" mapstructure:"backend"`
	// Tray holds the tray companion configuration.
	Tray *TrayConfig `yaml:"tray" mapstructure:"tray"`
	// MQTT holds the MQTT bridge configuration.
	MQTT *MQTTConfig `yaml:"mqtt" mapstructure:"mqtt"`
}

// TrayConfig holds the tray companion configuration.
type TrayConfig struct {
	// ConfigDir overrides the directory holding the tray lockfile.
	ConfigDir string `yaml:"config_dir" mapstructure:"config_dir"`
}

// MQTTConfig holds the MQTT bridge configuration.
type MQTTConfig struct {
	// Broker is the broker URL, e.g. tcp://localhost:1883.
	Broker string `yaml:"broker" mapstructure:"broker"`
	// ClientID is the MQTT client identifier.
	ClientID string `yaml:"client_id" mapstructure:"client_id"`
	// TopicPrefix is prepended to the dnd/set, dnd/state and dnd/permission topics.
	TopicPrefix string `yaml:"topic_prefix" mapstructure:"topic_prefix"`
	// Username for broker authentication.
	Username string `yaml:"username" mapstructure:"username"`
	// Password for broker authentication. Falls back to the OS keyring.
	Password string `yaml:"password" mapstructure:"password"`
	// QoS is the quality of service used for publish and subscribe.
	QoS int `yaml:"qos" mapstructure:"qos"`
	// Timeout bounds connecting, publishing and waiting for retained state.
	Timeout time.Duration `yaml:"timeout" mapstructure:"timeout"`
}

// LocationConfig holds the location provider configuration.
type LocationConfig struct {
	// Provider is one of static, geoclue or ipapi.
	Provider string `yaml:"provider" mapstructure:"provider"`
	// Latitude used by the static provider.
	Latitude float64 `yaml:"latitude" mapstructure:"latitude"`
	// Longitude used by the static provider.
	Longitude float64 `yaml:"longitude" mapstructure:"longitude"`
	// IPAPIURL is the lookup endpoint used by the ipapi provider.
	IPAPIURL string `yaml:"ipapi_url" mapstructure:"ipapi_url"`
	// DesktopID identifies khoshoo3 to GeoClue.
	DesktopID string `yaml:"desktop_id" mapstructure:"desktop_id"`
	// Timeout bounds a single location request.
	Timeout time.Duration `yaml:"timeout" mapstructure:"timeout"`
}

// Load reads the configuration from the specified path and returns a Config struct.
// If path is empty, the default search paths are used. A missing config file
// is not an error.
func Load(path string) (*Config, error) {
	v := viper.New()

	setDefaults(v)

	v.SetConfigType("yaml")
	v.SetEnvPrefix(strings.ToUpper(constants.AppName))
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	var configFileFound bool
	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("config")
		v.AddConfigPath(".")
		v.AddConfigPath("$HOME/.config/" + constants.AppName)
		v.AddConfigPath("/etc/" + constants.AppName)
	}

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	} else {
		configFileFound = true
	}

	var c Config
	if err := v.Unmarshal(&c); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if configFileFound {
		log.Debug("Using config file", "file", v.ConfigFileUsed())
	}

	if err := validateConfig(&c); err != nil {
		return nil, err
	}

	return &c, nil
}

// Default returns the configuration used when no file or environment is set.
func Default() *Config {
	v := viper.New()
	setDefaults(v)
	var c Config
	// Defaults are all scalar values; decoding cannot fail
	_ = v.Unmarshal(&c)
	return &c
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("log_level", "info")

	v.SetDefault("dnd.backend", string(constants.BackendMemory))
	v.SetDefault("dnd.tray.config_dir", "")
	v.SetDefault("dnd.mqtt.broker", "")
	v.SetDefault("dnd.mqtt.client_id", constants.AppName)
	v.SetDefault("dnd.mqtt.topic_prefix", constants.AppName)
	v.SetDefault("dnd.mqtt.username", "")
	v.SetDefault("dnd.mqtt.password", "")
	v.SetDefault("dnd.mqtt.qos", 1)
	v.SetDefault("dnd.mqtt.timeout", "5s")

	v.SetDefault("location.provider", string(constants.LocationStatic))
	v.SetDefault("location.latitude", 0.0)
	v.SetDefault("location.longitude", 0.0)
	v.SetDefault("location.ipapi_url", constants.DefaultIPAPIURL)
	v.SetDefault("location.desktop_id", constants.AppName)
	v.SetDefault("location.timeout", "10s")
}

func validateConfig(c *Config) error {
	if c == nil {
		return fmt.Errorf("missing khoshoo3 config")
	}

	if _, err := log.ParseLevel(c.LogLevel); err != nil {
		return fmt.Errorf("invalid log_level %q: %w", c.LogLevel, err)
	}

	if c.DND == nil {
		return fmt.Errorf("missing dnd config")
	}
	switch constants.Backend(c.DND.Backend) {
	case constants.BackendMemory, constants.BackendDunst, constants.BackendTray:
	case constants.BackendMQTT:
		if c.DND.MQTT == nil || c.DND.MQTT.Broker == "" {
			return fmt.Errorf("dnd.mqtt.broker is required when the mqtt backend is selected")
		}
		if c.DND.MQTT.QoS < 0 || c.DND.MQTT.QoS > 2 {
			return fmt.Errorf("dnd.mqtt.qos must be 0, 1 or 2, got %d", c.DND.MQTT.QoS)
		}
	default:
		return fmt.Errorf("unknown dnd.backend %q", c.DND.Backend)
	}

	if c.Location == nil {
		return fmt.Errorf("missing location config")
	}
	switch constants.LocationProvider(c.Location.Provider) {
	case constants.LocationStatic:
		if c.Location.Latitude < -90 || c.Location.Latitude > 90 {
			return fmt.Errorf("location.latitude must be between -90 and 90")
		}
		if c.Location.Longitude < -180 || c.Location.Longitude > 180 {
			return fmt.Errorf("location.longitude must be between -180 and 180")
		}
	case constants.LocationGeoClue:
	case constants.LocationIPAPI:
		if c.Location.IPAPIURL == "" {
			return fmt.Errorf("location.ipapi_url is required when the ipapi provider is selected")
		}
	default:
		return fmt.Errorf("unknown location.provider %q", c.Location.Provider)
	}

	return nil
}
