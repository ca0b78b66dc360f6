// internal/export/mirror.go
package export

import (
	"errors"
	"fmt"
	"strings"
)

// RegisterWriter is the delivery-only contract for the mirror memory.
// It receives registers and writes them verbatim, with no logic of
// its own.
type RegisterWriter interface {
	WriteRegisters(addr uint16, regs []uint16) error
}

// Mirror tracks what the remote memory holds and writes only the
// difference. The first write after start, and the first after any
// failure, re-asserts the full block.
type Mirror struct {
	cli      RegisterWriter
	baseSlot uint16

	needFull bool
	last     Snapshot
}

func NewMirror(cli RegisterWriter, baseSlot uint16) *Mirror {
	return &Mirror{
		cli:      cli,
		baseSlot: baseSlot,
		needFull: true, // full re-assert on first successful write
	}
}

// Write delivers a snapshot into mirror memory.
func (m *Mirror) Write(s Snapshot) error {
	if m.cli == nil {
		return errors.New("export: mirror has no client")
	}

	baseAddr := m.baseSlot * BlockRegisters

	// ------------------------------------------------------------
	// Full block write (identity re-assert)
	// ------------------------------------------------------------
	if m.needFull {
		if err := m.cli.WriteRegisters(baseAddr, Encode(s)); err != nil {
			m.needFull = true
			return fmt.Errorf("export: full block write failed: %w", err)
		}
		m.needFull = false
		m.last = s
		return nil
	}

	var errs []string

	write := func(reg uint16, v uint16, name string) bool {
		if err := m.cli.WriteRegisters(baseAddr+reg, []uint16{v}); err != nil {
			errs = append(errs, fmt.Sprintf("%s write failed: %v", name, err))
			return false
		}
		return true
	}

	if m.last.Present != s.Present {
		if write(RegPresence, boolReg(s.Present), "presence") {
			m.last.Present = s.Present
		}
	}
	if m.last.HeightMM != s.HeightMM {
		if write(RegHeightMM, s.HeightMM, "height") {
			m.last.HeightMM = s.HeightMM
		}
	}
	if m.last.CommandCount != s.CommandCount {
		if write(RegCommandCount, s.CommandCount, "command count") {
			m.last.CommandCount = s.CommandCount
		}
	}
	if m.last.TelemetryCount != s.TelemetryCount {
		if write(RegTelemetryCount, s.TelemetryCount, "telemetry count") {
			m.last.TelemetryCount = s.TelemetryCount
		}
	}
	if m.last.UptimeMinutes != s.UptimeMinutes {
		if write(RegUptimeMinutes, s.UptimeMinutes, "uptime") {
			m.last.UptimeMinutes = s.UptimeMinutes
		}
	}

	if len(errs) > 0 {
		// A partial failure leaves the remote block in doubt. Re-assert
		// the whole block on the next write.
		m.needFull = true
		return errors.New("export: " + strings.Join(errs, " | "))
	}

	return nil
}

func boolReg(v bool) uint16 {
	if v {
		return 1
	}
	return 0
}
