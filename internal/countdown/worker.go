// internal/countdown/worker.go
package countdown

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/tamzrod/deskd/internal/bus"
)

// Publisher is the bus surface the worker publishes on.
type Publisher interface {
	Publish(msg bus.Message) error
}

// Worker runs one shared one-shot countdown. Start arms it, start while
// running re-arms it with the new duration, stop cancels it. The finished
// topic fires exactly once per armed countdown.
type Worker struct {
	pub  Publisher
	msgs chan bus.Message
	log  *slog.Logger
}

func New(pub Publisher, log *slog.Logger) *Worker {
	return &Worker{
		pub:  pub,
		msgs: make(chan bus.Message, 8),
		log:  log,
	}
}

// HandleMessage enqueues a bus message for the Run goroutine. The payload
// is copied because the bus only lends it for the duration of the call.
func (w *Worker) HandleMessage(msg bus.Message) {
	data := append([]byte(nil), msg.Data...)
	select {
	case w.msgs <- bus.Message{Topic: msg.Topic, Data: data}:
	default:
		w.log.Warn("control queue full, message dropped", "topic", msg.Topic)
	}
}

// Run services the countdown until ctx is canceled. A non-nil return is a
// contract violation; the caller halts.
func (w *Worker) Run(ctx context.Context) error {
	var (
		timer *time.Timer
		fire  <-chan time.Time
	)

	// A replaced timer is never drained: fire always points at the
	// channel of the current timer, so a stale tick is unreachable.
	stop := func() {
		if timer != nil {
			timer.Stop()
			timer = nil
			fire = nil
		}
	}
	defer stop()

	for {
		select {
		case <-ctx.Done():
			return nil

		case msg := <-w.msgs:
			switch msg.Topic {
			case bus.TopicCountdownStart:
				ms, err := bus.DecodeU32(msg.Data)
				if err != nil {
					return fmt.Errorf("countdown: start: %w", err)
				}
				if ms == 0 {
					return errors.New("countdown: zero duration")
				}
				stop()
				timer = time.NewTimer(time.Duration(ms) * time.Millisecond)
				fire = timer.C
				w.log.Debug("countdown started", "ms", ms)

			case bus.TopicCountdownStop:
				// Stopping an idle countdown is a legal no-op.
				stop()
				w.log.Debug("countdown stopped")
			}

		case <-fire:
			timer = nil
			fire = nil
			w.log.Info("countdown finished")
			if err := w.pub.Publish(bus.Message{Topic: bus.TopicCountdownDone}); err != nil {
				return err
			}
		}
	}
}
