// Package picker brokers native file-pick dialogs between the front-end
// and the shell process that owns the window.
//
// The backend cannot open a native dialog itself. When the front-end asks
// to pick a source file, the broker parks the request until the shell —
// long-polling for pending requests — shows the dialog and reports the
// user's choice back. A pick therefore suspends exactly one API call for
// as long as the dialog is open.
package picker

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
)

var (
	// ErrUnknownRequest is returned by Resolve for an ID with no pending pick.
	ErrUnknownRequest = errors.New("unknown pick request")

	// ErrTimeout is returned by Pick when the shell never responds within
	// the configured timeout.
	ErrTimeout = errors.New("pick request timed out")
)

// Request describes a pending pick the shell should present to the user.
type Request struct {
	ID        string    `json:"id"`
	Filter    []string  `json:"filter"` // allowed extensions, e.g. ["json"]
	CreatedAt time.Time `json:"created_at"`
}

// Result is the user's response to a pick request.
type Result struct {
	Path string // empty when cancelled
	OK   bool   // false when the user cancelled the dialog
}

// Broker matches front-end pick calls with shell responses.
type Broker struct {
	mu      sync.Mutex
	pending map[string]chan Result
	queue   chan Request
	timeout time.Duration // 0 disables the deadline
}

// New creates a broker. A zero timeout matches the dialog semantics of the
// shell: a pick waits indefinitely until the user responds or the caller's
// context ends.
func New(timeout time.Duration) *Broker {
	return &Broker{
		pending: make(map[string]chan Result),
		queue:   make(chan Request, 16),
		timeout: timeout,
	}
}

// Pick requests a file selection and blocks until the shell resolves it,
// the context is cancelled, or the configured timeout elapses. ok is false
// when the user dismissed the dialog without choosing a file.
func (b *Broker) Pick(ctx context.Context, filter []string) (path string, ok bool, err error) {
	req := Request{
		ID:        uuid.NewString(),
		Filter:    filter,
		CreatedAt: time.Now().UTC(),
	}

	resultCh := make(chan Result, 1)
	b.mu.Lock()
	b.pending[req.ID] = resultCh
	b.mu.Unlock()
	defer b.unregister(req.ID)

	var deadline <-chan time.Time
	if b.timeout > 0 {
		timer := time.NewTimer(b.timeout)
		defer timer.Stop()
		deadline = timer.C
	}

	// Hand the request to the shell. The queue is buffered, but if no
	// shell is draining it the caller still gets cancellation and timeout.
	select {
	case b.queue <- req:
	case <-ctx.Done():
		return "", false, ctx.Err()
	case <-deadline:
		return "", false, ErrTimeout
	}

	select {
	case res := <-resultCh:
		return res.Path, res.OK, nil
	case <-ctx.Done():
		return "", false, ctx.Err()
	case <-deadline:
		return "", false, ErrTimeout
	}
}

// Next blocks until a pick request is pending or the context ends. The
// shell long-polls this to learn when to open a dialog.
func (b *Broker) Next(ctx context.Context) (Request, error) {
	select {
	case req := <-b.queue:
		return req, nil
	case <-ctx.Done():
		return Request{}, ctx.Err()
	}
}

// Resolve delivers the user's response for a pending request. Pass ok=false
// for a cancelled dialog. Resolving an unknown or already-resolved request
// returns ErrUnknownRequest.
func (b *Broker) Resolve(id, path string, ok bool) error {
	b.mu.Lock()
	ch, exists := b.pending[id]
	if exists {
		delete(b.pending, id)
	}
	b.mu.Unlock()

	if !exists {
		return ErrUnknownRequest
	}
	ch <- Result{Path: path, OK: ok}
	return nil
}

func (b *Broker) unregister(id string) {
	b.mu.Lock()
	delete(b.pending, id)
	b.mu.Unlock()
}
