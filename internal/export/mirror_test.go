// internal/export/mirror_test.go
package export

import (
	"errors"
	"testing"
)

type fakeRegisterWriter struct {
	failNext bool

	calls    int
	lastAddr uint16
	lastRegs []uint16
}

func (f *fakeRegisterWriter) WriteRegisters(addr uint16, regs []uint16) error {
	if f.failNext {
		f.failNext = false
		return errors.New("connection reset")
	}
	f.calls++
	f.lastAddr = addr
	f.lastRegs = append([]uint16(nil), regs...)
	return nil
}

func TestMirror_FullBlockOnFirstWrite(t *testing.T) {
	cli := &fakeRegisterWriter{}
	m := NewMirror(cli, 0)

	snap := Snapshot{Present: true, HeightMM: 725, CommandCount: 1}
	if err := m.Write(snap); err != nil {
		t.Fatalf("initial full assert failed: %v", err)
	}

	if len(cli.lastRegs) != BlockRegisters {
		t.Fatalf("expected full block write (%d regs), got %d", BlockRegisters, len(cli.lastRegs))
	}
	if cli.lastRegs[RegPresence] != 1 || cli.lastRegs[RegHeightMM] != 725 {
		t.Fatalf("block content wrong: %v", cli.lastRegs)
	}
	if cli.lastRegs[RegReservedStart] != 0 || cli.lastRegs[RegReservedEnd] != 0 {
		t.Fatalf("reserved registers not zero: %v", cli.lastRegs)
	}
}

func TestMirror_DeltaWritesChangedRegistersOnly(t *testing.T) {
	cli := &fakeRegisterWriter{}
	m := NewMirror(cli, 0)

	snap := Snapshot{Present: true, HeightMM: 725}
	if err := m.Write(snap); err != nil {
		t.Fatalf("full assert failed: %v", err)
	}

	snap.HeightMM = 731
	if err := m.Write(snap); err != nil {
		t.Fatalf("delta write failed: %v", err)
	}

	if len(cli.lastRegs) != 1 || cli.lastRegs[0] != 731 {
		t.Fatalf("delta wrote %v, want [731]", cli.lastRegs)
	}
	if cli.lastAddr != RegHeightMM {
		t.Fatalf("delta addr = %d, want %d", cli.lastAddr, RegHeightMM)
	}
	if cli.calls != 2 {
		t.Fatalf("calls = %d, want 2 (no rewrite of unchanged registers)", cli.calls)
	}
}

func TestMirror_UnchangedSnapshotWritesNothing(t *testing.T) {
	cli := &fakeRegisterWriter{}
	m := NewMirror(cli, 0)

	snap := Snapshot{Present: true}
	if err := m.Write(snap); err != nil {
		t.Fatalf("full assert failed: %v", err)
	}
	if err := m.Write(snap); err != nil {
		t.Fatalf("no-op write failed: %v", err)
	}
	if cli.calls != 1 {
		t.Fatalf("calls = %d, want 1", cli.calls)
	}
}

func TestMirror_FailureForcesFullReassert(t *testing.T) {
	cli := &fakeRegisterWriter{}
	m := NewMirror(cli, 0)

	snap := Snapshot{Present: true}
	if err := m.Write(snap); err != nil {
		t.Fatalf("full assert failed: %v", err)
	}

	cli.failNext = true
	snap.HeightMM = 700
	if err := m.Write(snap); err == nil {
		t.Fatalf("expected delta write failure")
	}

	// Next write re-asserts the whole block.
	snap.HeightMM = 710
	if err := m.Write(snap); err != nil {
		t.Fatalf("re-assert failed: %v", err)
	}
	if len(cli.lastRegs) != BlockRegisters {
		t.Fatalf("expected full block re-assert, got %d regs", len(cli.lastRegs))
	}
	if cli.lastRegs[RegHeightMM] != 710 {
		t.Fatalf("re-assert carried stale height %d", cli.lastRegs[RegHeightMM])
	}
}

func TestMirror_BaseSlotOffsetsBlock(t *testing.T) {
	cli := &fakeRegisterWriter{}
	m := NewMirror(cli, 3)

	if err := m.Write(Snapshot{}); err != nil {
		t.Fatalf("full assert failed: %v", err)
	}
	if cli.lastAddr != 3*BlockRegisters {
		t.Fatalf("base addr = %d, want %d", cli.lastAddr, 3*BlockRegisters)
	}
}
