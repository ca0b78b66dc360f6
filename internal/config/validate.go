// internal/config/validate.go
package config

import (
	"fmt"
)

// Validate checks configuration correctness.
// It performs declarative validation only.
// It MUST NOT mutate configuration.
func Validate(cfg *Config) error {
	// ------------------------------------------------------------
	// DESK
	// ------------------------------------------------------------

	if cfg.Desk.Port == "" {
		return fmt.Errorf("desk: port is required")
	}
	if cfg.Desk.Baud < 0 {
		return fmt.Errorf("desk: baud must not be negative, got %d", cfg.Desk.Baud)
	}
	if cfg.Desk.Repeats < 0 {
		return fmt.Errorf("desk: repeats must not be negative, got %d", cfg.Desk.Repeats)
	}
	if cfg.Desk.ArmTimeoutMs != nil && *cfg.Desk.ArmTimeoutMs < 0 {
		return fmt.Errorf("desk: arm_timeout_ms must not be negative, got %d", *cfg.Desk.ArmTimeoutMs)
	}
	if cfg.Desk.ReadTimeoutMs < 0 {
		return fmt.Errorf("desk: read_timeout_ms must not be negative, got %d", cfg.Desk.ReadTimeoutMs)
	}

	// ------------------------------------------------------------
	// PRESENCE
	// ------------------------------------------------------------

	if cfg.Presence.ScanIntervalMs < 0 {
		return fmt.Errorf("presence: scan_interval_ms must not be negative, got %d", cfg.Presence.ScanIntervalMs)
	}
	if cfg.Presence.ScanWindowMs < 0 {
		return fmt.Errorf("presence: scan_window_ms must not be negative, got %d", cfg.Presence.ScanWindowMs)
	}
	if cfg.Presence.ScanIntervalMs > 0 && cfg.Presence.ScanWindowMs > 0 &&
		cfg.Presence.ScanWindowMs > cfg.Presence.ScanIntervalMs {
		return fmt.Errorf(
			"presence: scan_window_ms=%d exceeds scan_interval_ms=%d",
			cfg.Presence.ScanWindowMs,
			cfg.Presence.ScanIntervalMs,
		)
	}
	if cfg.Presence.CloseDistanceM < 0 {
		return fmt.Errorf("presence: close_distance_m must not be negative, got %g", cfg.Presence.CloseDistanceM)
	}
	if cfg.Presence.DefaultThreshold < 0 {
		return fmt.Errorf("presence: default_threshold must not be negative, got %d", cfg.Presence.DefaultThreshold)
	}

	// ------------------------------------------------------------
	// CONTROL
	// ------------------------------------------------------------

	if m := cfg.Control.DefaultIntervalMin; m != 0 && (m < 1 || m > 255) {
		return fmt.Errorf("control: default_interval_min must be 1..255, got %d", m)
	}
	if h := cfg.Control.WorkStartHour; h < 0 || h > 23 {
		return fmt.Errorf("control: work_start_hour must be 0..23, got %d", h)
	}
	if h := cfg.Control.WorkEndHour; h < 0 || h > 23 {
		return fmt.Errorf("control: work_end_hour must be 0..23, got %d", h)
	}
	// Both zero means "use defaults"; a configured window must not be inverted.
	if cfg.Control.WorkStartHour != 0 || cfg.Control.WorkEndHour != 0 {
		if cfg.Control.WorkEndHour < cfg.Control.WorkStartHour {
			return fmt.Errorf(
				"control: work_end_hour=%d precedes work_start_hour=%d",
				cfg.Control.WorkEndHour,
				cfg.Control.WorkStartHour,
			)
		}
	}

	// ------------------------------------------------------------
	// TIMESYNC
	// ------------------------------------------------------------

	if off := cfg.Timesync.UTCOffsetH; off < -12 || off > 14 {
		return fmt.Errorf("timesync: utc_offset_h must be -12..14, got %d", off)
	}

	// ------------------------------------------------------------
	// EXPORT (OPT-IN)
	// ------------------------------------------------------------

	if cfg.Export.Endpoint != "" {
		if cfg.Export.TimeoutMs < 0 {
			return fmt.Errorf("export: timeout_ms must not be negative, got %d", cfg.Export.TimeoutMs)
		}
	}

	return nil
}
