// internal/export/constants.go
package export

// Status mirror block layout.
// The layout is the wire protocol and MUST NOT be configurable.

// ---- BLOCK GEOMETRY ----

// BlockRegisters is the fixed number of registers per mirror block.
const BlockRegisters = 8

// ---- REGISTER INDICES ----

// RegPresence holds the debounced presence state (0 absent, 1 present).
const RegPresence = 0

// RegHeightMM holds the last decoded desk height in millimeters.
const RegHeightMM = 1

// RegCommandCount counts accepted desk commands since start (wraps).
const RegCommandCount = 2

// RegTelemetryCount counts decoded height frames since start (wraps).
const RegTelemetryCount = 3

// RegUptimeMinutes holds minutes since start (saturates at 65535).
const RegUptimeMinutes = 4

// ---- RESERVED RANGE ----

// Registers 5–7 are reserved for future use.
const RegReservedStart = 5
const RegReservedEnd = 7
