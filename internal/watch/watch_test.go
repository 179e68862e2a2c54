package watch

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func startWatcher(t *testing.T) *Watcher {
	t.Helper()
	w, err := New()
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	go w.Run(ctx)
	return w
}

func TestWatcherReportsWrite(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "sources.json")
	if err := os.WriteFile(path, []byte("{}"), 0644); err != nil {
		t.Fatal(err)
	}

	w := startWatcher(t)
	if err := w.Add(path); err != nil {
		t.Fatalf("Add: %v", err)
	}

	if err := os.WriteFile(path, []byte(`{"changed":true}`), 0644); err != nil {
		t.Fatal(err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	ev, err := w.Next(ctx)
	if err != nil {
		t.Fatalf("Next: %v", err)
	}
	if ev.Path != path {
		t.Errorf("event path = %q, want %q", ev.Path, path)
	}
	if ev.At.IsZero() {
		t.Error("event has zero timestamp")
	}
}

func TestWatcherDebouncesRapidWrites(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "sources.json")
	if err := os.WriteFile(path, []byte("{}"), 0644); err != nil {
		t.Fatal(err)
	}

	w := startWatcher(t)
	if err := w.Add(path); err != nil {
		t.Fatalf("Add: %v", err)
	}

	// A burst of writes inside the debounce window collapses to one event.
	for i := 0; i < 5; i++ {
		if err := os.WriteFile(path, []byte("{}"), 0644); err != nil {
			t.Fatal(err)
		}
		time.Sleep(10 * time.Millisecond)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if _, err := w.Next(ctx); err != nil {
		t.Fatalf("Next: %v", err)
	}

	// No second event should arrive for the same burst.
	quiet, cancelQuiet := context.WithTimeout(context.Background(), debounce*2)
	defer cancelQuiet()
	if ev, err := w.Next(quiet); err == nil {
		t.Errorf("unexpected second event: %+v", ev)
	}
}

func TestWatcherAddMissingFile(t *testing.T) {
	w := startWatcher(t)
	if err := w.Add(filepath.Join(t.TempDir(), "missing.json")); err == nil {
		t.Error("expected error adding a nonexistent file")
	}
}

func TestNextHonorsContext(t *testing.T) {
	w := startWatcher(t)

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	if _, err := w.Next(ctx); !errors.Is(err, context.DeadlineExceeded) {
		t.Errorf("expected DeadlineExceeded, got %v", err)
	}
}
