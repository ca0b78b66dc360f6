// internal/heartbeat/worker.go
package heartbeat

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/tamzrod/deskd/internal/bus"
)

// blinkPeriod is the LED half-period while presence holds.
const blinkPeriod = 50 * time.Millisecond

// Output drives the indicator.
type Output interface {
	Set(on bool) error
}

// SysfsLED writes a sysfs LED brightness file.
type SysfsLED struct {
	path string
}

func NewSysfsLED(path string) *SysfsLED {
	return &SysfsLED{path: path}
}

func (l *SysfsLED) Set(on bool) error {
	v := []byte("0")
	if on {
		v = []byte("1")
	}
	if err := os.WriteFile(l.path, v, 0o644); err != nil {
		return fmt.Errorf("heartbeat: led %s: %w", l.path, err)
	}
	return nil
}

// Worker blinks the indicator while someone is at the desk and keeps it
// dark otherwise. Purely cosmetic: output failures are logged, never
// fatal.
type Worker struct {
	out Output
	ctl chan bool
	log *slog.Logger
}

func New(out Output, log *slog.Logger) (*Worker, error) {
	if out == nil {
		return nil, errors.New("heartbeat: output required")
	}
	return &Worker{
		out: out,
		ctl: make(chan bool, 4),
		log: log,
	}, nil
}

// HandleMessage tracks the presence topics.
func (w *Worker) HandleMessage(msg bus.Message) {
	var v bool
	switch msg.Topic {
	case bus.TopicPresenceDetected:
		v = true
	case bus.TopicPresenceLost:
		v = false
	default:
		return
	}

	select {
	case w.ctl <- v:
	default:
	}
}

// Run blinks until ctx is canceled.
func (w *Worker) Run(ctx context.Context) error {
	ticker := time.NewTicker(blinkPeriod)
	defer ticker.Stop()

	blinking := false
	on := false

	set := func(v bool) {
		on = v
		if err := w.out.Set(v); err != nil {
			w.log.Warn("led write failed", "err", err)
		}
	}

	for {
		select {
		case <-ctx.Done():
			set(false)
			return nil

		case v := <-w.ctl:
			blinking = v
			if !blinking {
				set(false)
			}

		case <-ticker.C:
			if blinking {
				set(!on)
			}
		}
	}
}
