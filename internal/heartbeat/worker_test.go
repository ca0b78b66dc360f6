// internal/heartbeat/worker_test.go
package heartbeat

import (
	"context"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/tamzrod/deskd/internal/bus"
)

type fakeOutput struct {
	mu     sync.Mutex
	states []bool
}

func (o *fakeOutput) Set(on bool) error {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.states = append(o.states, on)
	return nil
}

func (o *fakeOutput) snapshot() []bool {
	o.mu.Lock()
	defer o.mu.Unlock()
	return append([]bool(nil), o.states...)
}

func TestWorker_BlinksWhilePresent(t *testing.T) {
	out := &fakeOutput{}
	w, err := New(out, slog.New(slog.NewTextHandler(io.Discard, nil)))
	if err != nil {
		t.Fatalf("New() err=%v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- w.Run(ctx) }()

	w.HandleMessage(bus.Message{Topic: bus.TopicPresenceDetected})

	// A few half-periods must produce alternating writes.
	deadline := time.After(2 * time.Second)
	for {
		if len(out.snapshot()) >= 4 {
			break
		}
		select {
		case <-deadline:
			t.Fatalf("led never blinked: %v", out.snapshot())
		case <-time.After(10 * time.Millisecond):
		}
	}

	states := out.snapshot()
	for i := 1; i < 4; i++ {
		if states[i] == states[i-1] {
			t.Fatalf("led did not alternate: %v", states[:4])
		}
	}

	w.HandleMessage(bus.Message{Topic: bus.TopicPresenceLost})

	// The off command lands, then the line stays quiet.
	time.Sleep(200 * time.Millisecond)
	settled := out.snapshot()
	if settled[len(settled)-1] {
		t.Fatalf("led left on after presence lost")
	}
	n := len(settled)
	time.Sleep(200 * time.Millisecond)
	if len(out.snapshot()) != n {
		t.Fatalf("led still toggling after presence lost")
	}

	cancel()
	if err := <-done; err != nil {
		t.Fatalf("Run() err=%v", err)
	}
}

func TestWorker_IgnoresOtherTopics(t *testing.T) {
	out := &fakeOutput{}
	w, err := New(out, slog.New(slog.NewTextHandler(io.Discard, nil)))
	if err != nil {
		t.Fatalf("New() err=%v", err)
	}

	w.HandleMessage(bus.Message{Topic: bus.TopicHeightUpdate, Data: bus.U32Payload(725)})

	select {
	case v := <-w.ctl:
		t.Fatalf("unrelated topic enqueued %v", v)
	default:
	}
}
