// internal/bus/message.go
package bus

import (
	"encoding/binary"
	"fmt"
)

// Message is one published event. Data is a borrowed view owned by the
// publisher: it is valid only for the duration of the Publish call and
// never stored by the bus. Handlers that keep payload bytes past their
// return must copy them.
type Message struct {
	Topic Topic
	Data  []byte
}

// ---- payload codecs ----
//
// Payloads crossing the bus are either empty, one bool byte, or one
// little-endian u32. A payload of the wrong size at a decode site is a
// wiring bug, not runtime noise.

// BoolPayload encodes v as a 1-byte payload.
func BoolPayload(v bool) []byte {
	if v {
		return []byte{1}
	}
	return []byte{0}
}

// DecodeBool decodes a 1-byte bool payload.
func DecodeBool(data []byte) (bool, error) {
	if len(data) != 1 {
		return false, fmt.Errorf("bus: bool payload must be 1 byte, got %d", len(data))
	}
	return data[0] != 0, nil
}

// U32Payload encodes v as a 4-byte little-endian payload.
func U32Payload(v uint32) []byte {
	data := make([]byte, 4)
	binary.LittleEndian.PutUint32(data, v)
	return data
}

// DecodeU32 decodes a 4-byte little-endian payload.
func DecodeU32(data []byte) (uint32, error) {
	if len(data) != 4 {
		return 0, fmt.Errorf("bus: u32 payload must be 4 bytes, got %d", len(data))
	}
	return binary.LittleEndian.Uint32(data), nil
}
