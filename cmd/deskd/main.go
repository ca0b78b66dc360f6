// cmd/deskd/main.go
package main

import (
	"context"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/tamzrod/deskd/internal/bus"
	"github.com/tamzrod/deskd/internal/config"
	"github.com/tamzrod/deskd/internal/console"
	"github.com/tamzrod/deskd/internal/control"
	"github.com/tamzrod/deskd/internal/countdown"
	"github.com/tamzrod/deskd/internal/desk"
	"github.com/tamzrod/deskd/internal/desk/link"
	"github.com/tamzrod/deskd/internal/export"
	emodbus "github.com/tamzrod/deskd/internal/export/modbus"
	"github.com/tamzrod/deskd/internal/heartbeat"
	"github.com/tamzrod/deskd/internal/presence"
	"github.com/tamzrod/deskd/internal/presence/ble"
	"github.com/tamzrod/deskd/internal/settings"
	"github.com/tamzrod/deskd/internal/timesync"
)

func main() {
	if len(os.Args) < 2 {
		log.Fatal("usage: deskd <config.yaml>")
	}

	cfgPath := os.Args[1]

	// --------------------
	// Load + validate config
	// --------------------

	cfg, err := config.Load(cfgPath)
	if err != nil {
		log.Fatalf("config load failed: %v", err)
	}

	if err := config.Validate(cfg); err != nil {
		log.Fatalf("config validation failed: %v", err)
	}

	config.Normalize(cfg)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// --------------------
	// Shared infrastructure
	// --------------------

	b := bus.New()

	store, err := settings.Open(cfg.Settings.Path)
	if err != nil {
		log.Fatalf("settings open failed: %v", err)
	}

	controlLog, controlLevel := newModuleLogger("control")
	deskLog, deskLevel := newModuleLogger("desk")
	presenceLog, presenceLevel := newModuleLogger("presence")
	countdownLog, _ := newModuleLogger("countdown")
	consoleLog, _ := newModuleLogger("console")
	timesyncLog, _ := newModuleLogger("timesync")

	// --------------------
	// Desk pipeline
	// --------------------

	port, err := link.Open(
		cfg.Desk.Port,
		cfg.Desk.Baud,
		time.Duration(cfg.Desk.ReadTimeoutMs)*time.Millisecond,
	)
	if err != nil {
		log.Fatalf("desk port open failed: %v", err)
	}
	defer port.Close()

	var line desk.Line = link.NopLine{}
	if cfg.Desk.EnableGPIO != "" {
		line = link.NewGPIOLine(cfg.Desk.EnableGPIO)
	}

	engine, err := desk.NewEngine(desk.EngineConfig{
		Repeats:    cfg.Desk.Repeats,
		ArmTimeout: time.Duration(*cfg.Desk.ArmTimeoutMs) * time.Millisecond,
	}, port, line, b, deskLog)
	if err != nil {
		log.Fatalf("desk engine build failed: %v", err)
	}

	deskWorker, err := desk.NewWorker(engine, port, deskLog, deskLevel)
	if err != nil {
		log.Fatalf("desk worker build failed: %v", err)
	}

	// --------------------
	// Presence pipeline
	// --------------------

	scanner, err := ble.NewScanner(time.Duration(cfg.Presence.ScanWindowMs) * time.Millisecond)
	if err != nil {
		log.Fatalf("ble scanner init failed: %v", err)
	}

	presenceWorker, err := presence.New(presence.Config{
		ScanInterval:  time.Duration(cfg.Presence.ScanIntervalMs) * time.Millisecond,
		CloseDistance: cfg.Presence.CloseDistanceM,
		Threshold:     cfg.Presence.DefaultThreshold,
	}, scanner, b, store, presenceLog, presenceLevel)
	if err != nil {
		log.Fatalf("presence worker build failed: %v", err)
	}

	// --------------------
	// Clock + control + countdown
	// --------------------

	clock, err := timesync.New(cfg.Timesync.Server, cfg.Timesync.UTCOffsetH, timesyncLog)
	if err != nil {
		log.Fatalf("timesync build failed: %v", err)
	}

	controlWorker, err := control.New(control.Config{
		IntervalMin:   cfg.Control.DefaultIntervalMin,
		WorkStartHour: cfg.Control.WorkStartHour,
		WorkEndHour:   cfg.Control.WorkEndHour,
	}, b, clock, store, controlLog, controlLevel)
	if err != nil {
		log.Fatalf("control worker build failed: %v", err)
	}

	countdownWorker := countdown.New(b, countdownLog)

	// --------------------
	// Console
	// --------------------

	consoleSrv, err := console.New(cfg.Console.Listen, b, consoleLog)
	if err != nil {
		log.Fatalf("console build failed: %v", err)
	}

	// --------------------
	// Optional: heartbeat LED
	// --------------------

	var heartbeatWorker *heartbeat.Worker
	if cfg.Heartbeat.LEDPath != "" {
		heartbeatLog, _ := newModuleLogger("heartbeat")
		heartbeatWorker, err = heartbeat.New(heartbeat.NewSysfsLED(cfg.Heartbeat.LEDPath), heartbeatLog)
		if err != nil {
			log.Fatalf("heartbeat build failed: %v", err)
		}
	}

	// --------------------
	// Optional: status mirror (Modbus TCP)
	// --------------------

	var exportWorker *export.Worker
	if cfg.Export.Endpoint != "" {
		cli, err := emodbus.NewClient(emodbus.Config{
			Endpoint: cfg.Export.Endpoint,
			UnitID:   cfg.Export.UnitID,
			Timeout:  time.Duration(cfg.Export.TimeoutMs) * time.Millisecond,
		})
		if err != nil {
			log.Fatalf("mirror client failed: %v", err)
		}
		defer cli.Close()

		exportLog, _ := newModuleLogger("export")
		exportWorker, err = export.NewWorker(export.NewMirror(cli, cfg.Export.Slot), exportLog)
		if err != nil {
			log.Fatalf("mirror worker build failed: %v", err)
		}
	}

	// --------------------
	// Bus wiring. Every subscription lands before any worker runs, so
	// no publish can ever meet an empty topic.
	// --------------------

	subscribe := func(t bus.Topic, h bus.Handler) {
		if err := b.Subscribe(t, h); err != nil {
			log.Fatalf("bus wiring failed: %v", err)
		}
	}

	// ---- desk ----
	subscribe(bus.TopicDeskMove, deskWorker)
	subscribe(bus.TopicDeskToggle, deskWorker)
	subscribe(bus.TopicHeightQuery, deskWorker)
	subscribe(bus.TopicLogDesk, deskWorker)

	// ---- presence ----
	subscribe(bus.TopicThresholdSet, presenceWorker)
	subscribe(bus.TopicThresholdGet, presenceWorker)
	subscribe(bus.TopicLogPresence, presenceWorker)

	// ---- countdown ----
	subscribe(bus.TopicCountdownStart, countdownWorker)
	subscribe(bus.TopicCountdownStop, countdownWorker)

	// ---- control ----
	subscribe(bus.TopicPresenceDetected, controlWorker)
	subscribe(bus.TopicPresenceLost, controlWorker)
	subscribe(bus.TopicCountdownDone, controlWorker)
	subscribe(bus.TopicIntervalSet, controlWorker)
	subscribe(bus.TopicIntervalGet, controlWorker)
	subscribe(bus.TopicLogControl, controlWorker)

	// ---- console answers ----
	subscribe(bus.TopicLoopback, consoleSrv)
	subscribe(bus.TopicHeightUpdate, consoleSrv)
	subscribe(bus.TopicThresholdValue, consoleSrv)
	subscribe(bus.TopicIntervalValue, consoleSrv)
	subscribe(bus.TopicCountdownDone, consoleSrv)
	subscribe(bus.TopicPresenceDetected, consoleSrv)
	subscribe(bus.TopicPresenceLost, consoleSrv)

	if heartbeatWorker != nil {
		subscribe(bus.TopicPresenceDetected, heartbeatWorker)
		subscribe(bus.TopicPresenceLost, heartbeatWorker)
	}

	if exportWorker != nil {
		subscribe(bus.TopicPresenceDetected, exportWorker)
		subscribe(bus.TopicPresenceLost, exportWorker)
		subscribe(bus.TopicHeightUpdate, exportWorker)
		subscribe(bus.TopicDeskMove, exportWorker)
		subscribe(bus.TopicDeskToggle, exportWorker)
	}

	// --------------------
	// Run. A worker returning an error is a broken contract, and the
	// daemon halts rather than limp on with a dead module.
	// --------------------

	fatal := make(chan error, 1)
	start := func(run func(context.Context) error) {
		go func() {
			if err := run(ctx); err != nil {
				select {
				case fatal <- err:
				default:
				}
			}
		}()
	}

	start(deskWorker.Run)
	start(presenceWorker.Run)
	start(countdownWorker.Run)
	start(controlWorker.Run)
	start(consoleSrv.Run)
	start(clock.Run)
	if heartbeatWorker != nil {
		start(heartbeatWorker.Run)
	}
	if exportWorker != nil {
		start(exportWorker.Run)
	}

	log.Printf("deskd up (desk=%s console=%s)", cfg.Desk.Port, cfg.Console.Listen)

	select {
	case <-ctx.Done():
		log.Print("shutdown requested")
	case err := <-fatal:
		log.Fatalf("fatal: %v", err)
	}

	// Give the workers a moment to release the line and close cleanly.
	time.Sleep(200 * time.Millisecond)
}

// newModuleLogger builds one structured logger per module. The returned
// LevelVar is flipped at runtime by the console log command.
func newModuleLogger(module string) (*slog.Logger, *slog.LevelVar) {
	level := new(slog.LevelVar)
	h := slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})
	return slog.New(h).With("module", module), level
}
