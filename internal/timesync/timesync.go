// internal/timesync/timesync.go
package timesync

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/beevik/ntp"
)

// Sync cadence: retry every minute until the first success, hourly after.
const (
	retryInterval  = time.Minute
	steadyInterval = time.Hour
)

// Source is an NTP-disciplined clock. It never steps the system clock;
// it keeps the measured offset and applies it on read. Failures to reach
// the server are environmental: logged and retried, never fatal.
type Source struct {
	server    string
	utcOffset time.Duration
	log       *slog.Logger

	mu     sync.Mutex
	offset time.Duration
	synced bool
}

func New(server string, utcOffsetH int, log *slog.Logger) (*Source, error) {
	if server == "" {
		return nil, errors.New("timesync: server required")
	}
	if utcOffsetH < -12 || utcOffsetH > 14 {
		return nil, errors.New("timesync: utc offset must be -12..14")
	}

	return &Source{
		server:    server,
		utcOffset: time.Duration(utcOffsetH) * time.Hour,
		log:       log,
	}, nil
}

// Synchronized reports whether at least one NTP exchange has succeeded.
// It latches: a later failed re-sync does not clear it.
func (s *Source) Synchronized() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.synced
}

// Hour returns the local hour (0..23). Before the first sync it reads
// the uncorrected host clock; callers gate on Synchronized.
func (s *Source) Hour() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.hourAt(time.Now())
}

// hourAt applies the NTP offset and the configured zone. Caller holds mu.
func (s *Source) hourAt(now time.Time) int {
	return now.Add(s.offset).UTC().Add(s.utcOffset).Hour()
}

// Run keeps the offset fresh until ctx is canceled.
func (s *Source) Run(ctx context.Context) error {
	timer := time.NewTimer(0) // first attempt immediately
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-timer.C:
			if s.sync() || s.Synchronized() {
				timer.Reset(steadyInterval)
			} else {
				timer.Reset(retryInterval)
			}
		}
	}
}

func (s *Source) sync() bool {
	resp, err := ntp.Query(s.server)
	if err != nil {
		s.log.Debug("ntp query failed", "server", s.server, "err", err)
		return false
	}
	if err := resp.Validate(); err != nil {
		s.log.Debug("ntp response rejected", "server", s.server, "err", err)
		return false
	}

	s.mu.Lock()
	first := !s.synced
	s.offset = resp.ClockOffset
	s.synced = true
	s.mu.Unlock()

	if first {
		s.log.Info("clock synchronized", "server", s.server, "offset", resp.ClockOffset)
	} else {
		s.log.Debug("clock resynchronized", "offset", resp.ClockOffset)
	}
	return true
}
