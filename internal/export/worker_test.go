// internal/export/worker_test.go
package export

import (
	"io"
	"log/slog"
	"testing"

	"github.com/tamzrod/deskd/internal/bus"
)

func newTestWorker(t *testing.T) (*Worker, *fakeRegisterWriter) {
	t.Helper()

	cli := &fakeRegisterWriter{}
	w, err := NewWorker(NewMirror(cli, 0), slog.New(slog.NewTextHandler(io.Discard, nil)))
	if err != nil {
		t.Fatalf("NewWorker() err=%v", err)
	}
	return w, cli
}

func TestWorker_FoldsBusTrafficIntoSnapshot(t *testing.T) {
	w, _ := newTestWorker(t)

	msgs := []bus.Message{
		{Topic: bus.TopicPresenceDetected},
		{Topic: bus.TopicDeskToggle},
		{Topic: bus.TopicHeightUpdate, Data: bus.U32Payload(725)},
		{Topic: bus.TopicHeightUpdate, Data: bus.U32Payload(731)},
		{Topic: bus.TopicDeskMove, Data: []byte{2}},
	}
	for _, m := range msgs {
		if err := w.apply(m); err != nil {
			t.Fatalf("apply(%v) err=%v", m.Topic, err)
		}
	}

	want := Snapshot{
		Present:        true,
		HeightMM:       731,
		CommandCount:   2,
		TelemetryCount: 2,
	}
	if w.snap != want {
		t.Fatalf("snapshot = %+v, want %+v", w.snap, want)
	}

	if err := w.apply(bus.Message{Topic: bus.TopicPresenceLost}); err != nil {
		t.Fatalf("apply err=%v", err)
	}
	if w.snap.Present {
		t.Fatalf("presence not cleared")
	}
}

func TestWorker_MalformedHeightPayloadIsFatal(t *testing.T) {
	w, _ := newTestWorker(t)

	if err := w.apply(bus.Message{
		Topic: bus.TopicHeightUpdate,
		Data:  []byte{1, 2},
	}); err == nil {
		t.Fatalf("expected error for malformed height payload")
	}
}

func TestWorker_FlushToleratesWriteFailure(t *testing.T) {
	w, cli := newTestWorker(t)

	cli.failNext = true
	w.flush() // logged, not fatal

	w.flush()
	if cli.calls != 1 {
		t.Fatalf("calls = %d, want 1 successful re-assert", cli.calls)
	}
	if len(cli.lastRegs) != BlockRegisters {
		t.Fatalf("expected full block after failure, got %d regs", len(cli.lastRegs))
	}
}
