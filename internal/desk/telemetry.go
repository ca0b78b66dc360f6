// internal/desk/telemetry.go
package desk

// reassembler rebuilds telemetry frames from the inbound byte stream.
// Frames start with the marker, carry their own length byte, and are
// complete at length+2 bytes. Garbage between frames is discarded while
// hunting for the next marker.
type reassembler struct {
	buf []byte
}

// push consumes one byte and returns a complete frame when it closes one.
// The reassembler does not retain the returned slice.
func (r *reassembler) push(b byte) ([]byte, bool) {
	if len(r.buf) == 0 {
		if b == frameMarker {
			r.buf = append(r.buf, b)
		}
		return nil, false
	}

	if len(r.buf) == 1 {
		// Length byte. Nonsense lengths abandon the frame; the byte may
		// itself start the next one.
		if b < minFrameLength || b > maxFrameLength {
			r.buf = r.buf[:0]
			if b == frameMarker {
				r.buf = append(r.buf, b)
			}
			return nil, false
		}
		r.buf = append(r.buf, b)
		return nil, false
	}

	r.buf = append(r.buf, b)
	if len(r.buf) < int(r.buf[1])+2 {
		return nil, false
	}

	frame := r.buf
	r.buf = nil
	return frame, true
}

// DecodeHeight extracts the displayed height from a telemetry frame, in
// tenths of a centimeter. Only height frames with three readable digits
// decode; everything else reports ok=false and is dropped by the caller.
func DecodeHeight(frame []byte) (tenths uint32, ok bool) {
	if len(frame) < 6 || frame[2] != heightType {
		return 0, false
	}

	d1, ok1 := decodeDigit(frame[3])
	d2, ok2 := decodeDigit(frame[4])
	d3, ok3 := decodeDigit(frame[5])
	if !ok1 || !ok2 || !ok3 {
		return 0, false
	}

	value := d1*100 + d2*10 + d3

	// A decimal point on the middle digit shifts the display one place:
	// "72.5" reads as 725 tenths, "110" as 1100 tenths.
	if frame[4]&decimalPointBit != 0 {
		return value, true
	}
	return value * 10, true
}
