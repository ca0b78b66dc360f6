// internal/timesync/timesync_test.go
package timesync

import (
	"io"
	"log/slog"
	"testing"
	"time"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestNew_Validation(t *testing.T) {
	if _, err := New("", 0, testLogger()); err == nil {
		t.Fatalf("expected error for empty server")
	}
	if _, err := New("pool.ntp.org", 15, testLogger()); err == nil {
		t.Fatalf("expected error for offset above 14")
	}
	if _, err := New("pool.ntp.org", -13, testLogger()); err == nil {
		t.Fatalf("expected error for offset below -12")
	}
}

func TestSource_StartsUnsynchronized(t *testing.T) {
	s, err := New("pool.ntp.org", 0, testLogger())
	if err != nil {
		t.Fatalf("New() err=%v", err)
	}
	if s.Synchronized() {
		t.Fatalf("synchronized before any exchange")
	}
}

func TestSource_HourAppliesOffsetAndZone(t *testing.T) {
	s, err := New("pool.ntp.org", 2, testLogger())
	if err != nil {
		t.Fatalf("New() err=%v", err)
	}

	// Host clock 30 minutes slow: 10:40 UTC on the host is 11:10 true,
	// 13:10 in the configured zone.
	s.offset = 30 * time.Minute
	now := time.Date(2026, time.March, 9, 10, 40, 0, 0, time.UTC)

	if h := s.hourAt(now); h != 13 {
		t.Fatalf("hourAt = %d, want 13", h)
	}
}

func TestSource_HourWrapsMidnight(t *testing.T) {
	s, err := New("pool.ntp.org", 2, testLogger())
	if err != nil {
		t.Fatalf("New() err=%v", err)
	}

	now := time.Date(2026, time.March, 9, 23, 30, 0, 0, time.UTC)
	if h := s.hourAt(now); h != 1 {
		t.Fatalf("hourAt = %d, want 1", h)
	}
}
