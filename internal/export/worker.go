// internal/export/worker.go
package export

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/tamzrod/deskd/internal/bus"
)

// Worker folds bus traffic into a Snapshot and mirrors it. Mirror write
// failures are line trouble: logged, then healed by the full re-assert
// on the next successful write.
type Worker struct {
	mirror *Mirror
	msgs   chan bus.Message
	log    *slog.Logger

	snap  Snapshot
	start time.Time
}

func NewWorker(mirror *Mirror, log *slog.Logger) (*Worker, error) {
	if mirror == nil {
		return nil, errors.New("export: mirror required")
	}
	return &Worker{
		mirror: mirror,
		// The height stream is chatty while the desk moves.
		msgs: make(chan bus.Message, 16),
		log:  log,
	}, nil
}

// HandleMessage enqueues a bus message for the Run goroutine. The payload
// is copied because the bus only lends it for the duration of the call.
func (w *Worker) HandleMessage(msg bus.Message) {
	data := append([]byte(nil), msg.Data...)
	select {
	case w.msgs <- bus.Message{Topic: msg.Topic, Data: data}:
	default:
		w.log.Warn("mirror queue full, message dropped", "topic", msg.Topic)
	}
}

// Run mirrors state until ctx is canceled. A non-nil return is a
// contract violation; the caller halts.
func (w *Worker) Run(ctx context.Context) error {
	w.start = time.Now()

	ticker := time.NewTicker(time.Minute)
	defer ticker.Stop()

	// Full block write on start (identity re-assert).
	w.flush()

	for {
		select {
		case <-ctx.Done():
			return nil

		case msg := <-w.msgs:
			if err := w.apply(msg); err != nil {
				return err
			}
			w.flush()

		case <-ticker.C:
			w.snap.UptimeMinutes = minutesSince(w.start)
			w.flush()
		}
	}
}

func (w *Worker) apply(msg bus.Message) error {
	switch msg.Topic {
	case bus.TopicPresenceDetected:
		w.snap.Present = true

	case bus.TopicPresenceLost:
		w.snap.Present = false

	case bus.TopicHeightUpdate:
		v, err := bus.DecodeU32(msg.Data)
		if err != nil {
			return fmt.Errorf("export: height update: %w", err)
		}
		// Tenths of a centimeter are millimeters.
		w.snap.HeightMM = uint16(v)
		w.snap.TelemetryCount++

	case bus.TopicDeskMove, bus.TopicDeskToggle:
		w.snap.CommandCount++
	}

	return nil
}

func (w *Worker) flush() {
	if err := w.mirror.Write(w.snap); err != nil {
		w.log.Warn("mirror write failed", "err", err)
	}
}

func minutesSince(start time.Time) uint16 {
	m := time.Since(start) / time.Minute
	if m > 65535 {
		return 65535
	}
	return uint16(m)
}
