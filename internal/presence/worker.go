// internal/presence/worker.go
package presence

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/tamzrod/deskd/internal/bus"
)

// SettingThreshold is the settings-store key for the persisted threshold.
const SettingThreshold = "presence_threshold"

// Advertisement is one device seen during a scan window.
type Advertisement struct {
	Addr string
	RSSI int16
}

// Scanner abstracts the radio. Scan blocks for one scan window and
// returns the devices seen, deduplicated by address.
type Scanner interface {
	Scan(ctx context.Context) ([]Advertisement, error)
}

// Publisher is the bus surface the worker publishes on.
type Publisher interface {
	Publish(msg bus.Message) error
}

// Store persists the runtime-adjustable threshold.
type Store interface {
	LoadInt(key string) (int64, bool)
	SaveInt(key string, value int64) error
}

// Config is the minimal runtime config the worker needs.
type Config struct {
	ScanInterval  time.Duration
	CloseDistance float64
	Threshold     int // used unless the store holds a saved value
}

// Worker runs the scan cadence and owns the debounce filter. All state
// changes happen on the Run goroutine; bus callbacks only enqueue.
type Worker struct {
	cfg     Config
	scanner Scanner
	pub     Publisher
	store   Store
	filter  *Filter

	ctl chan bus.Message

	log   *slog.Logger
	level *slog.LevelVar
}

// New creates a presence worker. A threshold saved in the store overrides
// cfg.Threshold.
func New(cfg Config, scanner Scanner, pub Publisher, store Store, log *slog.Logger, level *slog.LevelVar) (*Worker, error) {
	if cfg.ScanInterval <= 0 {
		return nil, errors.New("presence: scan interval must be > 0")
	}
	if cfg.CloseDistance <= 0 {
		return nil, errors.New("presence: close distance must be > 0")
	}
	if cfg.Threshold < 0 {
		return nil, errors.New("presence: threshold must not be negative")
	}

	threshold := cfg.Threshold
	if v, ok := store.LoadInt(SettingThreshold); ok {
		threshold = int(v)
	}

	return &Worker{
		cfg:     cfg,
		scanner: scanner,
		pub:     pub,
		store:   store,
		filter:  NewFilter(threshold),
		ctl:     make(chan bus.Message, 8),
		log:     log,
		level:   level,
	}, nil
}

// HandleMessage enqueues a bus message for the Run goroutine. The payload
// is copied because the bus only lends it for the duration of the call.
func (w *Worker) HandleMessage(msg bus.Message) {
	data := append([]byte(nil), msg.Data...)
	select {
	case w.ctl <- bus.Message{Topic: msg.Topic, Data: data}:
	default:
		w.log.Warn("control queue full, message dropped", "topic", msg.Topic)
	}
}

// Run drives the scan cadence until ctx is canceled. A non-nil return
// means a contract violation somewhere in the wiring; the caller halts.
func (w *Worker) Run(ctx context.Context) error {
	ticker := time.NewTicker(w.cfg.ScanInterval)
	defer ticker.Stop()

	// The radio needs one window to settle after power-up; the first
	// cycle scans but its sample is not recorded.
	warmup := true

	for {
		select {
		case <-ctx.Done():
			return nil

		case msg := <-w.ctl:
			if err := w.handle(msg); err != nil {
				return err
			}

		case <-ticker.C:
			if err := w.cycle(ctx, warmup); err != nil {
				return err
			}
			warmup = false
		}
	}
}

// cycle performs one scan and feeds the filter. Scan failures count as a
// cycle with zero devices; absence of evidence is evidence of absence.
func (w *Worker) cycle(ctx context.Context, warmup bool) error {
	ads, err := w.scanner.Scan(ctx)
	if err != nil {
		if ctx.Err() != nil {
			return nil
		}
		w.log.Debug("scan failed", "err", err)
		ads = nil
	}

	count := CloseCount(ads, w.cfg.CloseDistance)

	if warmup {
		w.log.Debug("warmup scan discarded", "devices", len(ads), "close", count)
		return nil
	}

	changed, present := w.filter.Push(count)
	w.log.Debug("scan cycle", "devices", len(ads), "close", count, "present", present)

	if !changed {
		return nil
	}

	topic := bus.TopicPresenceLost
	if present {
		topic = bus.TopicPresenceDetected
	}
	w.log.Info("presence changed", "present", present)
	return w.pub.Publish(bus.Message{Topic: topic})
}

func (w *Worker) handle(msg bus.Message) error {
	switch msg.Topic {
	case bus.TopicThresholdSet:
		v, err := bus.DecodeU32(msg.Data)
		if err != nil {
			return fmt.Errorf("presence: threshold set: %w", err)
		}
		w.filter.SetThreshold(int(v))
		if err := w.store.SaveInt(SettingThreshold, int64(v)); err != nil {
			w.log.Warn("threshold persist failed", "err", err)
		}
		w.log.Info("threshold changed", "threshold", v)
		return nil

	case bus.TopicThresholdGet:
		return w.pub.Publish(bus.Message{
			Topic: bus.TopicThresholdValue,
			Data:  bus.U32Payload(uint32(w.filter.Threshold())),
		})

	case bus.TopicLogPresence:
		v, err := bus.DecodeBool(msg.Data)
		if err != nil {
			return fmt.Errorf("presence: log toggle: %w", err)
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
