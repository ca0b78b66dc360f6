// internal/settings/settings_test.go
package settings

import (
	"os"
	"path/filepath"
	"testing"
)

func TestOpen_MissingFileYieldsEmptyStore(t *testing.T) {
	path := filepath.Join(t.TempDir(), "settings.yaml")

	s, err := Open(path)
	if err != nil {
		t.Fatalf("Open() err=%v", err)
	}
	if _, ok := s.LoadInt("anything"); ok {
		t.Fatalf("expected empty store")
	}
}

func TestSaveInt_RoundTripsAcrossReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "settings.yaml")

	s, err := Open(path)
	if err != nil {
		t.Fatalf("Open() err=%v", err)
	}
	if err := s.SaveInt("presence_threshold", 5); err != nil {
		t.Fatalf("SaveInt() err=%v", err)
	}
	if err := s.SaveInt("interval_minutes", 45); err != nil {
		t.Fatalf("SaveInt() err=%v", err)
	}

	// Overwrite keeps the latest value.
	if err := s.SaveInt("presence_threshold", 2); err != nil {
		t.Fatalf("SaveInt() overwrite err=%v", err)
	}

	reopened, err := Open(path)
	if err != nil {
		t.Fatalf("reopen err=%v", err)
	}

	if v, ok := reopened.LoadInt("presence_threshold"); !ok || v != 2 {
		t.Fatalf("presence_threshold = %d, %v; want 2, true", v, ok)
	}
	if v, ok := reopened.LoadInt("interval_minutes"); !ok || v != 45 {
		t.Fatalf("interval_minutes = %d, %v; want 45, true", v, ok)
	}
}

func TestOpen_RejectsMalformedFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "settings.yaml")
	if err := os.WriteFile(path, []byte(":\n: ["), 0o644); err != nil {
		t.Fatalf("seed file: %v", err)
	}

	if _, err := Open(path); err == nil {
		t.Fatalf("expected parse error")
	}
}

func TestSaveInt_LeavesNoTempFilesBehind(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "settings.yaml")

	s, err := Open(path)
	if err != nil {
		t.Fatalf("Open() err=%v", err)
	}
	if err := s.SaveInt("k", 1); err != nil {
		t.Fatalf("SaveInt() err=%v", err)
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatalf("ReadDir() err=%v", err)
	}
	if len(entries) != 1 || entries[0].Name() != "settings.yaml" {
		names := make([]string, 0, len(entries))
		for _, e := range entries {
			names = append(names, e.Name())
		}
		t.Fatalf("unexpected directory contents: %v", names)
	}
}
