// internal/desk/engine.go
package desk

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/tamzrod/deskd/internal/bus"
)

// Publisher is the bus surface the engine publishes on.
type Publisher interface {
	Publish(msg bus.Message) error
}

// Line controls the transmit-enable pin of the bus driver.
type Line interface {
	Set(high bool) error
}

// EngineConfig is the minimal runtime config the engine needs.
type EngineConfig struct {
	Repeats    int           // frame writes per accepted command
	ArmTimeout time.Duration // 0 keeps the armed state open until the desk polls
}

// Engine owns the desk command protocol. The controller only listens in
// the slot right after broadcasting its poll pattern, so a command arms
// the engine instead of writing immediately: each subsequent poll match
// writes the frame once until the repeat count is spent.
//
// Not safe for concurrent use; the worker serializes all calls.
type Engine struct {
	cfg  EngineConfig
	wire io.Writer
	line Line
	pub  Publisher
	log  *slog.Logger

	matcher patternMatcher
	telem   reassembler

	frame     [FrameSize]byte
	remaining int
	armed     bool
	armedAt   time.Time

	lastToggle Command

	heightTenths uint32
	hasHeight    bool
}

func NewEngine(cfg EngineConfig, wire io.Writer, line Line, pub Publisher, log *slog.Logger) (*Engine, error) {
	if cfg.Repeats <= 0 {
		return nil, errors.New("desk: repeats must be > 0")
	}
	if cfg.ArmTimeout < 0 {
		return nil, errors.New("desk: arm timeout must not be negative")
	}

	return &Engine{
		cfg:  cfg,
		wire: wire,
		line: line,
		pub:  pub,
		log:  log,

		// First toggle goes to preset 2.
		lastToggle: CommandPreset1,
	}, nil
}

// Command arms the engine with cmd's frame. A new command supersedes a
// pending one. An unknown command byte is a wiring bug, not line noise.
func (e *Engine) Command(cmd Command, now time.Time) error {
	if cmd == CommandToggle {
		if e.lastToggle == CommandPreset1 {
			cmd = CommandPreset2
		} else {
			cmd = CommandPreset1
		}
		e.lastToggle = cmd
	}

	frame, ok := commandFrames[cmd]
	if !ok {
		return fmt.Errorf("desk: no frame for command 0x%02x", byte(cmd))
	}

	e.frame = frame
	e.remaining = e.cfg.Repeats
	e.armed = true
	e.armedAt = now

	if err := e.line.Set(true); err != nil {
		return fmt.Errorf("desk: enable line: %w", err)
	}

	e.log.Info("command armed", "command", cmd, "repeats", e.remaining)
	return nil
}

// OnByte feeds one inbound byte to the poll matcher and the telemetry
// reassembler.
func (e *Engine) OnByte(b byte, now time.Time) error {
	if e.matcher.push(b) && e.armed {
		if _, err := e.wire.Write(e.frame[:]); err != nil {
			// Line trouble, not a wiring bug. The command stays armed
			// and retries on the next poll.
			e.log.Warn("frame write failed", "err", err)
		} else {
			e.remaining--
			e.log.Debug("frame written", "remaining", e.remaining)
			if e.remaining <= 0 {
				if err := e.disarm(); err != nil {
					return err
				}
			}
		}
	}

	frame, ok := e.telem.push(b)
	if !ok {
		return nil
	}

	tenths, ok := DecodeHeight(frame)
	if !ok {
		e.log.Debug("telemetry frame dropped", "len", len(frame))
		return nil
	}

	e.heightTenths = tenths
	e.hasHeight = true
	e.log.Debug("height decoded", "cm", float64(tenths)/10)

	return e.pub.Publish(bus.Message{
		Topic: bus.TopicHeightUpdate,
		Data:  bus.U32Payload(tenths),
	})
}

// Tick services the arm timeout.
func (e *Engine) Tick(now time.Time) error {
	if !e.armed || e.cfg.ArmTimeout == 0 {
		return nil
	}
	if now.Sub(e.armedAt) < e.cfg.ArmTimeout {
		return nil
	}

	e.log.Warn("desk never polled, command dropped", "remaining", e.remaining)
	return e.disarm()
}

// QueryHeight republishes the last decoded height. Nothing is published
// before the first telemetry frame arrives.
func (e *Engine) QueryHeight() error {
	if !e.hasHeight {
		return nil
	}
	return e.pub.Publish(bus.Message{
		Topic: bus.TopicHeightUpdate,
		Data:  bus.U32Payload(e.heightTenths),
	})
}

func (e *Engine) disarm() error {
	e.armed = false
	if err := e.line.Set(false); err != nil {
		return fmt.Errorf("desk: enable line: %w", err)
	}
	return nil
}
