// internal/desk/worker.go
package desk

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/tamzrod/deskd/internal/bus"
	"github.com/tamzrod/deskd/internal/desk/link"
)

// Worker owns the serial line. It is the only goroutine touching the
// port; bus callbacks just enqueue.
type Worker struct {
	port   io.ReadWriter
	engine *Engine

	cmds chan bus.Message

	log   *slog.Logger
	level *slog.LevelVar
}

func NewWorker(engine *Engine, port io.ReadWriter, log *slog.Logger, level *slog.LevelVar) (*Worker, error) {
	if engine == nil {
		return nil, errors.New("desk: engine required")
	}
	if port == nil {
		return nil, errors.New("desk: port required")
	}

	return &Worker{
		port:   port,
		engine: engine,
		cmds:   make(chan bus.Message, 8),
		log:    log,
		level:  level,
	}, nil
}

// HandleMessage enqueues a bus message for the Run goroutine. The payload
// is copied because the bus only lends it for the duration of the call.
func (w *Worker) HandleMessage(msg bus.Message) {
	data := append([]byte(nil), msg.Data...)
	select {
	case w.cmds <- bus.Message{Topic: msg.Topic, Data: data}:
	default:
		w.log.Warn("command queue full, message dropped", "topic", msg.Topic)
	}
}

// Run pumps the serial line until ctx is canceled. Reads use the port's
// short timeout, so the loop doubles as the arm-timeout clock. A non-nil
// return is a contract violation; the caller halts.
func (w *Worker) Run(ctx context.Context) error {
	buf := make([]byte, 64)

	for {
		select {
		case <-ctx.Done():
			// Best effort: leave the enable line released.
			if err := w.engine.disarm(); err != nil {
				w.log.Warn("enable line not released", "err", err)
			}
			return nil

		case msg := <-w.cmds:
			if err := w.handle(msg); err != nil {
				return err
			}
			continue

		default:
		}

		n, err := w.port.Read(buf)

		now := time.Now()
		for _, b := range buf[:n] {
			if err := w.engine.OnByte(b, now); err != nil {
				return err
			}
		}
		if err := w.engine.Tick(now); err != nil {
			return err
		}

		if err != nil && !link.IsTimeout(err) {
			if ctx.Err() != nil {
				continue
			}
			w.log.Warn("serial read failed", "err", err)

			// Back off so a dead port does not spin the loop.
			select {
			case <-ctx.Done():
			case <-time.After(time.Second):
			}
		}
	}
}

func (w *Worker) handle(msg bus.Message) error {
	switch msg.Topic {
	case bus.TopicDeskMove:
		if len(msg.Data) != 1 {
			return fmt.Errorf("desk: move payload must be 1 byte, got %d", len(msg.Data))
		}
		return w.engine.Command(Command(msg.Data[0]), time.Now())

	case bus.TopicDeskToggle:
		return w.engine.Command(CommandToggle, time.Now())

	case bus.TopicHeightQuery:
		return w.engine.QueryHeight()

	case bus.TopicLogDesk:
		v, err := bus.DecodeBool(msg.Data)
		if err != nil {
			return fmt.Errorf("desk: log toggle: %w", err)
		}
		if v {
			w.level.Set(slog.LevelDebug)
		} else {
			w.level.Set(slog.LevelInfo)
		}
	}

	return nil
}
