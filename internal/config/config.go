package config

import (
	"fmt"
	"strconv"
	"strings"
	"sync"

	"github.com/spf13/viper"
)

// Config holds all application configuration values.
type Config struct {
	// MQTT
	MQTTBroker           string
	MQTTClientIDProducer string
	MQTTClientIDGPS      string
	MQTTClientIDConsole  string
	MQTTClientIDWeb      string
	MQTTClientIDDisplay  string

	// Topics
	TopicBaro string
	TopicGPS  string

	// Barometer hardware
	BaroI2CBus string // periph bus name, "" for the first available bus
	BaroMock   bool   // use the in-memory simulator instead of hardware

	// Sea-level reference for pressure altitude, Pa
	SeaLevelPressurePa float64

	// Storage and metrics
	BaroDBPath  string // SQLite history, empty disables recording
	MetricsPort int    // Prometheus /metrics, 0 disables

	// GPS
	GPSSerialPort string
	GPSBaudRate   int

	// Timing
	BaroSampleInterval int // milliseconds

	// Web Server
	WebServerPort int

	// Register debug tool
	RegisterDebugPort    int
	RegisterWriteAllowed string // e.g. "0x1B-0x1F,0x7E"

	// Display
	DisplayI2CBus         string
	DisplayI2CAddr        uint16
	DisplayUpdateInterval int    // milliseconds
	DisplayContent        string // what to show: "baro", "altitude", "gps"
}

// Package-level unexported variables for singleton pattern:
//   - globalConfig: only reachable through InitGlobal and Get.
//   - configOnce: ensures InitGlobal() only runs once.
//   - configMu: write lock for initialization, read lock for Get().
var (
	globalConfig *Config
	configOnce   sync.Once
	configMu     sync.RWMutex
)

// defaults are applied before the file is read.
func defaults() *Config {
	return &Config{
		MQTTClientIDProducer:  "baro-producer",
		MQTTClientIDGPS:       "baro-gps-producer",
		MQTTClientIDConsole:   "baro-console-subscriber",
		MQTTClientIDWeb:       "baro-web-subscriber",
		MQTTClientIDDisplay:   "baro-display",
		TopicBaro:             "baro/bmp390",
		TopicGPS:              "baro/gps",
		SeaLevelPressurePa:    101325,
		GPSBaudRate:           9600,
		WebServerPort:         8080,
		RegisterDebugPort:     8081,
		DisplayI2CAddr:        0x3C,
		DisplayUpdateInterval: 500,
		DisplayContent:        "baro",
	}
}

// Load reads the KEY=VALUE configuration file and returns a Config struct.
// Environment variables with the same key names override file values.
func Load(configPath string) (*Config, error) {
	v := viper.New()
	v.SetConfigFile(configPath)
	v.SetConfigType("env")
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	cfg := defaults()
	for _, key := range v.AllKeys() {
		value := strings.TrimSpace(v.GetString(key))
		if err := cfg.setValue(strings.ToUpper(key), value); err != nil {
			return nil, fmt.Errorf("config %s: %w", configPath, err)
		}
	}

	// Validate required fields
	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// setValue sets a config value based on the key.
func (c *Config) setValue(key, value string) error {
	switch key {
	// MQTT
	case "MQTT_BROKER":
		c.MQTTBroker = value
	case "MQTT_CLIENT_ID_PRODUCER":
		c.MQTTClientIDProducer = value
	case "MQTT_CLIENT_ID_GPS":
		c.MQTTClientIDGPS = value
	case "MQTT_CLIENT_ID_CONSOLE":
		c.MQTTClientIDConsole = value
	case "MQTT_CLIENT_ID_WEB":
		c.MQTTClientIDWeb = value
	case "MQTT_CLIENT_ID_DISPLAY":
		c.MQTTClientIDDisplay = value

	// Topics
	case "TOPIC_BARO":
		c.TopicBaro = value
	case "TOPIC_GPS":
		c.TopicGPS = value

	// Barometer hardware
	case "BARO_I2C_BUS":
		c.BaroI2CBus = value
	case "BARO_MOCK":
		mock, err := strconv.ParseBool(value)
		if err != nil {
			return fmt.Errorf("invalid BARO_MOCK %q: %w", value, err)
		}
		c.BaroMock = mock
	case "SEA_LEVEL_PRESSURE_PA":
		p, err := strconv.ParseFloat(value, 64)
		if err != nil {
			return fmt.Errorf("invalid SEA_LEVEL_PRESSURE_PA %q: %w", value, err)
		}
		if !(p >= 80000 && p <= 110000) {
			return fmt.Errorf("SEA_LEVEL_PRESSURE_PA must be 80000-110000, got %v", p)
		}
		c.SeaLevelPressurePa = p

	// Storage and metrics
	case "BARO_DB_PATH":
		c.BaroDBPath = value
	case "METRICS_PORT":
		port, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("invalid METRICS_PORT %q: %w", value, err)
		}
		c.MetricsPort = port

	// GPS
	case "GPS_SERIAL_PORT":
		c.GPSSerialPort = value
	case "GPS_BAUD_RATE":
		rate, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("invalid GPS_BAUD_RATE %q: %w", value, err)
		}
		c.GPSBaudRate = rate

	// Timing
	case "BARO_SAMPLE_INTERVAL":
		interval, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("invalid BARO_SAMPLE_INTERVAL %q: %w", value, err)
		}
		// The device runs at 25 Hz; faster polling only repeats samples.
		if interval < 40 {
			return fmt.Errorf("BARO_SAMPLE_INTERVAL must be >= 40 ms, got %d", interval)
		}
		c.BaroSampleInterval = interval

	// Web Server
	case "WEB_SERVER_PORT":
		port, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("invalid WEB_SERVER_PORT %q: %w", value, err)
		}
		c.WebServerPort = port

	// Register debug tool
	case "REGISTER_DEBUG_PORT":
		port, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("invalid REGISTER_DEBUG_PORT %q: %w", value, err)
		}
		c.RegisterDebugPort = port
	case "REGISTER_WRITE_ALLOWED":
		if _, err := ParseRegisterRanges(value); err != nil {
			return fmt.Errorf("invalid REGISTER_WRITE_ALLOWED %q: %w", value, err)
		}
		c.RegisterWriteAllowed = value

	// Display
	case "DISPLAY_I2C_BUS":
		c.DisplayI2CBus = value
	case "DISPLAY_I2C_ADDR":
		addr, err := strconv.ParseUint(value, 0, 16)
		if err != nil {
			return fmt.Errorf("invalid DISPLAY_I2C_ADDR %q: %w", value, err)
		}
		c.DisplayI2CAddr = uint16(addr)
	case "DISPLAY_UPDATE_INTERVAL":
		interval, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("invalid DISPLAY_UPDATE_INTERVAL %q: %w", value, err)
		}
		c.DisplayUpdateInterval = interval
	case "DISPLAY_CONTENT":
		switch value {
		case "baro", "altitude", "gps":
			c.DisplayContent = value
		default:
			return fmt.Errorf("DISPLAY_CONTENT must be baro, altitude or gps, got %q", value)
		}

	default:
		return fmt.Errorf("unknown config key: %q", key)
	}

	return nil
}

// validate checks that all required fields are set.
func (c *Config) validate() error {
	if c.MQTTBroker == "" {
		return fmt.Errorf("MQTT_BROKER is required")
	}
	if c.BaroSampleInterval == 0 {
		return fmt.Errorf("BARO_SAMPLE_INTERVAL is required")
	}
	return nil
}

// RegisterRange is an inclusive register address range.
type RegisterRange struct {
	From, To byte
}

// ParseRegisterRanges parses a list like "0x1B-0x1F,0x7E".
func ParseRegisterRanges(s string) ([]RegisterRange, error) {
	var out []RegisterRange
	for _, part := range strings.Split(s, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		lo, hi, isRange := strings.Cut(part, "-")
		from, err := strconv.ParseUint(strings.TrimSpace(lo), 0, 8)
		if err != nil {
			return nil, fmt.Errorf("bad register %q: %w", lo, err)
		}
		to := from
		if isRange {
			to, err = strconv.ParseUint(strings.TrimSpace(hi), 0, 8)
			if err != nil {
				return nil, fmt.Errorf("bad register %q: %w", hi, err)
			}
			if to < from {
				return nil, fmt.Errorf("range %q is reversed", part)
			}
		}
		out = append(out, RegisterRange{From: byte(from), To: byte(to)})
	}
	return out, nil
}

// InitGlobal initializes the global configuration from file.
// Uses sync.Once to ensure this only runs once, even if called multiple times.
func InitGlobal(configPath string) error {
	var err error
	configOnce.Do(func() {
		configMu.Lock()
		defer configMu.Unlock()
		globalConfig, err = Load(configPath)
	})
	return err
}

// Get returns the global configuration instance.
// InitGlobal must be called first, or this will return nil.
func Get() *Config {
	configMu.RLock()
	defer configMu.RUnlock()
	return globalConfig
}
