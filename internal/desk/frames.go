// internal/desk/frames.go
package desk

// Command selects one motion of the desk controller.
type Command byte

const (
	CommandWake Command = iota
	CommandUp
	CommandDown
	CommandPreset1
	CommandPreset2
	CommandPreset3
	CommandPreset4
	CommandMemory

	// CommandToggle alternates between preset 1 and preset 2; the engine
	// resolves it before the frame lookup.
	CommandToggle
)

var commandNames = map[string]Command{
	"wake":   CommandWake,
	"up":     CommandUp,
	"down":   CommandDown,
	"p1":     CommandPreset1,
	"p2":     CommandPreset2,
	"p3":     CommandPreset3,
	"p4":     CommandPreset4,
	"memory": CommandMemory,
	"toggle": CommandToggle,
}

// ParseCommand maps a console token to a command.
func ParseCommand(s string) (Command, bool) {
	c, ok := commandNames[s]
	return c, ok
}

func (c Command) String() string {
	for name, v := range commandNames {
		if v == c {
			return name
		}
	}
	return "command(?)"
}

// FrameSize is the length of every command frame on the wire.
const FrameSize = 8

// Command frames as captured from the vendor handset. Byte layout:
// marker, length, type, two data bytes, CRC-16 high/low, terminator.
// The controller accepts them verbatim; nothing is computed at runtime.
var commandFrames = map[Command][FrameSize]byte{
	CommandWake:    {0x9B, 0x06, 0x02, 0x00, 0x00, 0x6C, 0xA1, 0x9D},
	CommandUp:      {0x9B, 0x06, 0x02, 0x01, 0x00, 0xFC, 0xA0, 0x9D},
	CommandDown:    {0x9B, 0x06, 0x02, 0x02, 0x00, 0x0C, 0xA0, 0x9D},
	CommandPreset1: {0x9B, 0x06, 0x02, 0x04, 0x00, 0xAC, 0xA3, 0x9D},
	CommandPreset2: {0x9B, 0x06, 0x02, 0x08, 0x00, 0xAC, 0xA6, 0x9D},
	CommandPreset3: {0x9B, 0x06, 0x02, 0x10, 0x00, 0xAC, 0xAC, 0x9D},
	CommandPreset4: {0x9B, 0x06, 0x02, 0x00, 0x01, 0xAC, 0x60, 0x9D},
	CommandMemory:  {0x9B, 0x06, 0x02, 0x20, 0x00, 0xAC, 0xB8, 0x9D},
}

// PollPattern is the frame the controller broadcasts when it is ready to
// accept one command. Commands are written only in the slot right after
// this pattern; writes at any other moment are ignored by the desk.
var PollPattern = [6]byte{0x9B, 0x04, 0x11, 0x7C, 0xC3, 0x9D}

// Telemetry frame geometry.
const (
	frameMarker     = 0x9B
	frameTerminator = 0x9D
	heightType      = 0x12

	// A frame is complete at length+2 bytes (marker and length byte are
	// not counted by the length field).
	maxFrameLength = 32
	minFrameLength = 2
)

// The handset display repeats on the wire as raw 7-segment patterns.
const decimalPointBit = 0x80

var segmentDigits = map[byte]uint32{
	0x3F: 0,
	0x06: 1,
	0x5B: 2,
	0x4F: 3,
	0x66: 4,
	0x6D: 5,
	0x7D: 6,
	0x07: 7,
	0x7F: 8,
	0x6F: 9,
}

// decodeDigit strips the decimal-point bit and resolves the segment
// pattern. Unknown patterns (blanks, dashes, half-redrawn glyphs) are
// explicitly invalid rather than zero.
func decodeDigit(b byte) (uint32, bool) {
	d, ok := segmentDigits[b&^byte(decimalPointBit)]
	return d, ok
}
