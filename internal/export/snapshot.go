// internal/export/snapshot.go
package export

// Snapshot is the complete state the mirror delivers: plain values,
// no history. What the remote block last saw is Mirror's business.
type Snapshot struct {
	Present        bool
	HeightMM       uint16
	CommandCount   uint16
	TelemetryCount uint16
	UptimeMinutes  uint16
}

// Encode converts a Snapshot into a full mirror block.
// Layout is protocol-locked.
// No IO. No side effects.
func Encode(s Snapshot) []uint16 {
	regs := make([]uint16, BlockRegisters)

	if s.Present {
		regs[RegPresence] = 1
	}
	regs[RegHeightMM] = s.HeightMM
	regs[RegCommandCount] = s.CommandCount
	regs[RegTelemetryCount] = s.TelemetryCount
	regs[RegUptimeMinutes] = s.UptimeMinutes

	return regs
}
