// internal/config/config.go
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Desk      DeskConfig      `yaml:"desk"`
	Presence  PresenceConfig  `yaml:"presence"`
	Control   ControlConfig   `yaml:"control"`
	Console   ConsoleConfig   `yaml:"console"`
	Settings  SettingsConfig  `yaml:"settings"`
	Timesync  TimesyncConfig  `yaml:"timesync"`
	Heartbeat HeartbeatConfig `yaml:"heartbeat"`
	Export    ExportConfig    `yaml:"export"`
}

// ---- DESK ----

type DeskConfig struct {
	Port          string `yaml:"port"` // serial device, e.g. /dev/ttyUSB0
	Baud          int    `yaml:"baud"`
	EnableGPIO    string `yaml:"enable_gpio"` // sysfs value file; empty = no enable line
	Repeats       int    `yaml:"repeats"`     // frame writes per command
	ArmTimeoutMs  *int   `yaml:"arm_timeout_ms"`
	ReadTimeoutMs int    `yaml:"read_timeout_ms"`
}

// ---- PRESENCE ----

type PresenceConfig struct {
	ScanIntervalMs   int     `yaml:"scan_interval_ms"`
	ScanWindowMs     int     `yaml:"scan_window_ms"`
	CloseDistanceM   float64 `yaml:"close_distance_m"`
	DefaultThreshold int     `yaml:"default_threshold"`
}

// ---- CONTROL ----

type ControlConfig struct {
	DefaultIntervalMin int `yaml:"default_interval_min"`
	WorkStartHour      int `yaml:"work_start_hour"`
	WorkEndHour        int `yaml:"work_end_hour"`
}

// ---- CONSOLE ----

type ConsoleConfig struct {
	Listen string `yaml:"listen"`
}

// ---- SETTINGS ----

type SettingsConfig struct {
	Path string `yaml:"path"`
}

// ---- TIMESYNC ----

type TimesyncConfig struct {
	Server     string `yaml:"server"`
	UTCOffsetH int    `yaml:"utc_offset_h"`
}

// ---- HEARTBEAT ----

type HeartbeatConfig struct {
	LEDPath string `yaml:"led_path"` // sysfs brightness file; empty disables
}

// ---- EXPORT ----

// Modbus TCP status mirror (optional, opt-in via endpoint).
type ExportConfig struct {
	Endpoint  string `yaml:"endpoint"`
	UnitID    uint8  `yaml:"unit_id"`
	Slot      uint16 `yaml:"slot"` // block index inside the mirror memory
	TimeoutMs int    `yaml:"timeout_ms"`
}

// Load reads and parses the configuration file. It performs no validation;
// callers run Validate and Normalize afterwards.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config: read %s: %w", path, err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("config: parse %s: %w", path, err)
	}

	return &cfg, nil
}
