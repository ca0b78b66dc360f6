// internal/desk/telemetry_test.go
package desk

import (
	"bytes"
	"testing"
)

// Segment patterns used by the tests: 1=0x06 2=0x5B 3=0x4F 5=0x6D 7=0x07.

func heightFrame(d1, d2, d3 byte) []byte {
	return []byte{0x9B, 0x07, 0x12, d1, d2, d3, 0x00, 0x00, 0x9D}
}

func TestMatcher_NoMatchBeforeWindowFills(t *testing.T) {
	var m patternMatcher

	// The pattern's own prefix must not match early.
	for i, b := range PollPattern[:len(PollPattern)-1] {
		if m.push(b) {
			t.Fatalf("matched after %d bytes", i+1)
		}
	}
	if !m.push(PollPattern[len(PollPattern)-1]) {
		t.Fatalf("no match on complete pattern")
	}
}

func TestMatcher_OncePerOccurrence(t *testing.T) {
	var m patternMatcher

	stream := append([]byte{0x00, 0x9B, 0xFF}, PollPattern[:]...)
	stream = append(stream, 0x12, 0x34)
	stream = append(stream, PollPattern[:]...)

	matches := 0
	for _, b := range stream {
		if m.push(b) {
			matches++
		}
	}
	if matches != 2 {
		t.Fatalf("matches = %d, want 2", matches)
	}
}

func TestReassembler_FrameAcrossPushes(t *testing.T) {
	var r reassembler

	frame := heightFrame(0x06, 0x5B, 0x4F)
	for i, b := range frame[:len(frame)-1] {
		if got, ok := r.push(b); ok {
			t.Fatalf("frame completed early at byte %d: %v", i, got)
		}
	}

	got, ok := r.push(frame[len(frame)-1])
	if !ok {
		t.Fatalf("frame did not complete")
	}
	if !bytes.Equal(got, frame) {
		t.Fatalf("frame = % X, want % X", got, frame)
	}
}

func TestReassembler_SkipsGarbageBetweenFrames(t *testing.T) {
	var r reassembler

	frame := heightFrame(0x06, 0x5B, 0x4F)
	stream := append([]byte{0x55, 0xAA, 0x9D}, frame...)
	stream = append(stream, 0x00, 0x00)
	stream = append(stream, frame...)

	frames := 0
	for _, b := range stream {
		if _, ok := r.push(b); ok {
			frames++
		}
	}
	if frames != 2 {
		t.Fatalf("frames = %d, want 2", frames)
	}
}

func TestReassembler_NonsenseLengthAbandonsFrame(t *testing.T) {
	var r reassembler

	// Marker followed by an absurd length: hunt again. The real frame
	// right after must still decode.
	stream := []byte{0x9B, 0xF0}
	frame := heightFrame(0x06, 0x5B, 0x4F)
	stream = append(stream, frame...)

	frames := 0
	for _, b := range stream {
		if _, ok := r.push(b); ok {
			frames++
		}
	}
	if frames != 1 {
		t.Fatalf("frames = %d, want 1", frames)
	}
}

func TestReassembler_MarkerAfterBadLengthStartsFrame(t *testing.T) {
	var r reassembler

	// The byte rejected as a length can itself be the next marker.
	frame := heightFrame(0x06, 0x5B, 0x4F)
	stream := append([]byte{0x9B}, frame...)

	var got []byte
	for _, b := range stream {
		if f, ok := r.push(b); ok {
			got = f
		}
	}
	if !bytes.Equal(got, frame) {
		t.Fatalf("frame = % X, want % X", got, frame)
	}
}

func TestDecodeHeight_WholeCentimeters(t *testing.T) {
	tenths, ok := DecodeHeight(heightFrame(0x06, 0x5B, 0x4F)) // "123"
	if !ok || tenths != 1230 {
		t.Fatalf("DecodeHeight = %d, %v; want 1230, true", tenths, ok)
	}
}

func TestDecodeHeight_DecimalPoint(t *testing.T) {
	// "72.5": decimal bit on the middle digit.
	tenths, ok := DecodeHeight(heightFrame(0x07, 0x5B|0x80, 0x6D))
	if !ok || tenths != 725 {
		t.Fatalf("DecodeHeight = %d, %v; want 725, true", tenths, ok)
	}
}

func TestDecodeHeight_RejectsUnknownPattern(t *testing.T) {
	if _, ok := DecodeHeight(heightFrame(0x06, 0x01, 0x4F)); ok {
		t.Fatalf("decoded a frame with an unreadable digit")
	}
}

func TestDecodeHeight_RejectsOtherFrameTypes(t *testing.T) {
	frame := heightFrame(0x06, 0x5B, 0x4F)
	frame[2] = 0x11
	if _, ok := DecodeHeight(frame); ok {
		t.Fatalf("decoded a non-height frame")
	}
}
