// internal/config/normalize.go
package config

// Default values applied by Normalize. An explicit arm_timeout_ms of 0
// keeps the armed state open until the desk polls; only an absent field
// receives the default.
const (
	DefaultBaud          = 9600
	DefaultRepeats       = 5
	DefaultArmTimeoutMs  = 2000
	DefaultReadTimeoutMs = 5

	DefaultScanIntervalMs = 5000
	DefaultScanWindowMs   = 4000
	DefaultCloseDistanceM = 4.0
	DefaultThreshold      = 3

	DefaultIntervalMin   = 30
	DefaultWorkStartHour = 7
	DefaultWorkEndHour   = 19

	DefaultConsoleListen = "127.0.0.1:5533"
	DefaultSettingsPath  = "deskd-settings.yaml"
	DefaultNTPServer     = "pool.ntp.org"

	DefaultExportTimeoutMs = 1000
)

// Normalize applies post-validation defaults.
// It is allowed to mutate configuration.
// It MUST be called only after Validate().
func Normalize(cfg *Config) {
	if cfg == nil {
		return
	}

	// ---- DESK ----

	if cfg.Desk.Baud == 0 {
		cfg.Desk.Baud = DefaultBaud
	}
	if cfg.Desk.Repeats == 0 {
		cfg.Desk.Repeats = DefaultRepeats
	}
	if cfg.Desk.ArmTimeoutMs == nil {
		v := DefaultArmTimeoutMs
		cfg.Desk.ArmTimeoutMs = &v
	}
	if cfg.Desk.ReadTimeoutMs == 0 {
		cfg.Desk.ReadTimeoutMs = DefaultReadTimeoutMs
	}

	// ---- PRESENCE ----

	if cfg.Presence.ScanIntervalMs == 0 {
		cfg.Presence.ScanIntervalMs = DefaultScanIntervalMs
	}
	if cfg.Presence.ScanWindowMs == 0 {
		cfg.Presence.ScanWindowMs = DefaultScanWindowMs
	}
	if cfg.Presence.ScanWindowMs > cfg.Presence.ScanIntervalMs {
		cfg.Presence.ScanWindowMs = cfg.Presence.ScanIntervalMs
	}
	if cfg.Presence.CloseDistanceM == 0 {
		cfg.Presence.CloseDistanceM = DefaultCloseDistanceM
	}
	if cfg.Presence.DefaultThreshold == 0 {
		cfg.Presence.DefaultThreshold = DefaultThreshold
	}

	// ---- CONTROL ----

	if cfg.Control.DefaultIntervalMin == 0 {
		cfg.Control.DefaultIntervalMin = DefaultIntervalMin
	}
	if cfg.Control.WorkStartHour == 0 && cfg.Control.WorkEndHour == 0 {
		cfg.Control.WorkStartHour = DefaultWorkStartHour
		cfg.Control.WorkEndHour = DefaultWorkEndHour
	}

	// ---- CONSOLE / SETTINGS / TIMESYNC ----

	if cfg.Console.Listen == "" {
		cfg.Console.Listen = DefaultConsoleListen
	}
	if cfg.Settings.Path == "" {
		cfg.Settings.Path = DefaultSettingsPath
	}
	if cfg.Timesync.Server == "" {
		cfg.Timesync.Server = DefaultNTPServer
	}

	// ---- EXPORT (OPT-IN) ----

	if cfg.Export.Endpoint != "" {
		if cfg.Export.UnitID == 0 {
			cfg.Export.UnitID = 1
		}
		if cfg.Export.TimeoutMs == 0 {
			cfg.Export.TimeoutMs = DefaultExportTimeoutMs
		}
	}
}
