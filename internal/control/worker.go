// internal/control/worker.go
package control

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/tamzrod/deskd/internal/bus"
)

// SettingInterval is the settings-store key for the persisted interval.
const SettingInterval = "interval_minutes"

// Interval bounds in minutes. Values outside are clamped, not rejected;
// the handset UI of the original product allowed one byte.
const (
	intervalMin = 1
	intervalMax = 255
)

// Publisher is the bus surface the worker publishes on.
type Publisher interface {
	Publish(msg bus.Message) error
}

// TimeSource reports wall-clock facts for the work-hours gate.
type TimeSource interface {
	Synchronized() bool
	Hour() int
}

// Store persists the runtime-adjustable interval.
type Store interface {
	LoadInt(key string) (int64, bool)
	SaveInt(key string, value int64) error
}

// Config is the minimal runtime config the worker needs.
type Config struct {
	IntervalMin   int // used unless the store holds a saved value
	WorkStartHour int
	WorkEndHour   int
}

// Worker is the sit/stand orchestrator: presence starts the countdown,
// absence cancels it, and every finished countdown toggles the desk and
// re-arms. The desk only moves inside work hours once the clock is
// synchronized; an unsynchronized clock never blocks movement.
type Worker struct {
	cfg   Config
	pub   Publisher
	clock TimeSource
	store Store

	interval uint32 // minutes
	present  bool

	msgs chan bus.Message

	log   *slog.Logger
	level *slog.LevelVar
}

func New(cfg Config, pub Publisher, clock TimeSource, store Store, log *slog.Logger, level *slog.LevelVar) (*Worker, error) {
	if cfg.IntervalMin < intervalMin || cfg.IntervalMin > intervalMax {
		return nil, errors.New("control: interval must be 1..255 minutes")
	}
	if cfg.WorkStartHour < 0 || cfg.WorkStartHour > 23 || cfg.WorkEndHour < 0 || cfg.WorkEndHour > 23 {
		return nil, errors.New("control: work hours must be 0..23")
	}
	if cfg.WorkEndHour < cfg.WorkStartHour {
		return nil, errors.New("control: work end hour precedes start hour")
	}

	interval := uint32(cfg.IntervalMin)
	if v, ok := store.LoadInt(SettingInterval); ok {
		interval = clampInterval(uint32(v))
	}

	return &Worker{
		cfg:      cfg,
		pub:      pub,
		clock:    clock,
		store:    store,
		interval: interval,
		msgs:     make(chan bus.Message, 8),
		log:      log,
		level:    level,
	}, nil
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

// Run dispatches bus messages until ctx is canceled. A non-nil return is
// a contract violation; the caller halts.
func (w *Worker) Run(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			return nil
		case msg := <-w.msgs:
			if err := w.handle(msg); err != nil {
				return err
			}
		}
	}
}

func (w *Worker) handle(msg bus.Message) error {
	switch msg.Topic {
	case bus.TopicPresenceDetected:
		w.present = true
		w.log.Info("presence detected, countdown armed", "minutes", w.interval)
		return w.startCountdown()

	case bus.TopicPresenceLost:
		w.present = false
		w.log.Info("presence lost, countdown canceled")
		return w.pub.Publish(bus.Message{Topic: bus.TopicCountdownStop})

	case bus.TopicCountdownDone:
		// A finish can race a just-published stop; without presence it
		// is stale and ignored.
		if !w.present {
			w.log.Debug("stale countdown finish ignored")
			return nil
		}
		if w.workHourOK() {
			w.log.Info("interval elapsed, toggling desk")
			if err := w.pub.Publish(bus.Message{Topic: bus.TopicDeskToggle}); err != nil {
				return err
			}
		} else {
			w.log.Info("interval elapsed outside work hours, desk untouched")
		}
		return w.startCountdown()

	case bus.TopicIntervalSet:
		v, err := bus.DecodeU32(msg.Data)
		if err != nil {
			return fmt.Errorf("control: interval set: %w", err)
		}
		w.interval = clampInterval(v)
		if err := w.store.SaveInt(SettingInterval, int64(w.interval)); err != nil {
			w.log.Warn("interval persist failed", "err", err)
		}
		w.log.Info("interval changed", "minutes", w.interval)
		return nil

	case bus.TopicIntervalGet:
		return w.pub.Publish(bus.Message{
			Topic: bus.TopicIntervalValue,
			Data:  bus.U32Payload(w.interval),
		})

	case bus.TopicLogControl:
		v, err := bus.DecodeBool(msg.Data)
		if err != nil {
			return fmt.Errorf("control: log toggle: %w", err)
		}
		if v {
			w.level.Set(slog.LevelDebug)
		} else {
			w.level.Set(slog.LevelInfo)
		}
		return nil
	}

	return nil
}

func (w *Worker) startCountdown() error {
	return w.pub.Publish(bus.Message{
		Topic: bus.TopicCountdownStart,
		Data:  bus.U32Payload(w.interval * 60_000),
	})
}

// workHourOK gates desk movement to configured hours. Before the first
// time sync the gate passes; the desk must work without a clock.
func (w *Worker) workHourOK() bool {
	if !w.clock.Synchronized() {
		return true
	}
	h := w.clock.Hour()
	return w.cfg.WorkStartHour <= h && h < w.cfg.WorkEndHour
}

func clampInterval(v uint32) uint32 {
	if v < intervalMin {
		return intervalMin
	}
	if v > intervalMax {
		return intervalMax
	}
	return v
}
