package compose

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func TestWatcherReportsModeChange(t *testing.T) {
	dir := t.TempDir()
	w, err := NewWatcher(dir)
	if err != nil {
		t.Fatalf("new watcher: %v", err)
	}
	defer w.Close()

	path := filepath.Join(dir, "mode.yaml")
	if err := os.WriteFile(path, []byte("name: t\n"), 0644); err != nil {
		t.Fatalf("write: %v", err)
	}

	select {
	case got := <-w.Events:
		if got != path {
			t.Fatalf("event = %q, want %q", got, path)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("no event for mode file change")
	}
}

func TestWatcherIgnoresOtherFiles(t *testing.T) {
	dir := t.TempDir()
	w, err := NewWatcher(dir)
	if err != nil {
		t.Fatalf("new watcher: %v", err)
	}
	defer w.Close()

	if err := os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("x"), 0644); err != nil {
		t.Fatalf("write: %v", err)
	}
	if err := os.WriteFile(filepath.Join(dir, "fade.tengo"), []byte("x"), 0644); err != nil {
		t.Fatalf("write: %v", err)
	}

	select {
	case got := <-w.Events:
		if isModeFile(got) {
			t.Fatalf("unexpected mode event %q", got)
		}
		if !isScriptFile(got) {
			t.Fatalf("event %q is neither script nor mode file", got)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("no event for script file change")
	}
}

func TestWatcherCloseIdempotent(t *testing.T) {
	dir := t.TempDir()
	w, err := NewWatcher(dir)
	if err != nil {
		t.Fatalf("new watcher: %v", err)
	}
	if err := w.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}
	if err := w.Close(); err != nil {
		t.Fatalf("second close: %v", err)
	}
	for range w.Events {
	}
}
