// Package watch notifies the front-end when a source file it imported is
// modified outside the application, so it can offer to reload the document.
package watch

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

const debounce = 500 * time.Millisecond

// Event reports a change to a watched file.
type Event struct {
	Path string    `json:"path"`
	Op   string    `json:"op"` // "write", "create", "remove", "rename"
	At   time.Time `json:"at"`
}

// Watcher watches individual files and delivers debounced change events.
type Watcher struct {
	fs     *fsnotify.Watcher
	events chan Event
	logger *slog.Logger

	mu     sync.Mutex
	timers map[string]*time.Timer
}

// New creates a watcher. Call Run to start delivering events.
func New() (*Watcher, error) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	return &Watcher{
		fs:     fsw,
		events: make(chan Event, 64),
		logger: slog.With("component", "watch"),
		timers: make(map[string]*time.Timer),
	}, nil
}

// Add starts watching the file at path.
func (w *Watcher) Add(path string) error {
	if err := w.fs.Add(path); err != nil {
		return err
	}
	w.logger.Info("watching file", "path", path)
	return nil
}

// Remove stops watching the file at path.
func (w *Watcher) Remove(path string) error {
	return w.fs.Remove(path)
}

// Close releases the underlying filesystem watcher. Safe to call whether or
// not Run was started.
func (w *Watcher) Close() error {
	w.stopTimers()
	return w.fs.Close()
}

// Run consumes filesystem events until the context is cancelled. Rapid
// successive writes to the same file collapse into one event.
func (w *Watcher) Run(ctx context.Context) {
	defer w.fs.Close()

	for {
		select {
		case <-ctx.Done():
			w.stopTimers()
			return

		case event, ok := <-w.fs.Events:
			if !ok {
				return
			}
			if event.Op&(fsnotify.Create|fsnotify.Write|fsnotify.Remove|fsnotify.Rename) == 0 {
				continue
			}
			w.logger.Debug("file changed", "path", event.Name, "op", event.Op)
			w.schedule(event)

		case err, ok := <-w.fs.Errors:
			if !ok {
				return
			}
			w.logger.Error("file watcher error", "error", err)
		}
	}
}

// Next blocks until a change event is available or the context ends. The
// front-end long-polls this through the events endpoint.
func (w *Watcher) Next(ctx context.Context) (Event, error) {
	select {
	case ev := <-w.events:
		return ev, nil
	case <-ctx.Done():
		return Event{}, ctx.Err()
	}
}

// schedule arms (or re-arms) the debounce timer for a path.
func (w *Watcher) schedule(event fsnotify.Event) {
	path := event.Name
	op := opString(event.Op)

	w.mu.Lock()
	defer w.mu.Unlock()

	if t, ok := w.timers[path]; ok {
		t.Stop()
	}
	w.timers[path] = time.AfterFunc(debounce, func() {
		w.mu.Lock()
		delete(w.timers, path)
		w.mu.Unlock()

		ev := Event{Path: path, Op: op, At: time.Now().UTC()}
		select {
		case w.events <- ev:
		default:
			// Nobody is draining events; drop rather than block the watcher.
			w.logger.Warn("event buffer full, dropping change event", "path", path)
		}
	})
}

func (w *Watcher) stopTimers() {
	w.mu.Lock()
	defer w.mu.Unlock()
	for path, t := range w.timers {
		t.Stop()
		delete(w.timers, path)
	}
}

func opString(op fsnotify.Op) string {
	switch {
	case op.Has(fsnotify.Write):
		return "write"
	case op.Has(fsnotify.Create):
		return "create"
	case op.Has(fsnotify.Remove):
		return "remove"
	case op.Has(fsnotify.Rename):
		return "rename"
	default:
		return op.String()
	}
}
