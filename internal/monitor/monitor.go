// Package monitor bridges clipboard-change notifications into the
// capture → store → event pipeline. One background goroutine services
// notifications for the lifetime of a running monitor; everything else in
// the system runs on the caller's goroutine.
package monitor

import (
	"context"
	"errors"
	"log/slog"
	"sync"

	"github.com/Ukiyograin/clipboard-master/internal/capture"
	"github.com/Ukiyograin/clipboard-master/internal/clip"
	"github.com/Ukiyograin/clipboard-master/internal/event"
	"github.com/Ukiyograin/clipboard-master/internal/store"
)

// ErrAlreadyRunning is returned by Start on a monitor that is running.
var ErrAlreadyRunning = errors.New("monitor already running")

type state int

const (
	stateIdle state = iota
	stateRunning
	stateStopped
)

// Monitor owns the background clipboard listener. A stopped monitor can
// be started again; the implementation does not assume one start per
// process lifetime.
type Monitor struct {
	backend clip.Backend
	engine  *capture.Engine
	store   *store.Store
	bus     *event.Bus

	mu   sync.Mutex
	st   state
	stop chan struct{}
	done chan struct{}
}

// New wires a monitor over the given backend and pipeline components.
func New(backend clip.Backend, engine *capture.Engine, st *store.Store, bus *event.Bus) *Monitor {
	return &Monitor{backend: backend, engine: engine, store: st, bus: bus}
}

// Start launches the listener goroutine. It returns ErrAlreadyRunning if
// the monitor is already running.
func (m *Monitor) Start() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.st == stateRunning {
		return ErrAlreadyRunning
	}
	m.stop = make(chan struct{})
	m.done = make(chan struct{})
	m.st = stateRunning

	slog.Info("clipboard monitor starting", "backend", m.backend.Name())
	go m.loop(m.stop, m.done)
	return nil
}

// Stop requests a cooperative shutdown and returns immediately; the loop
// observes the request on its next wakeup and exits on its own. Calling
// Stop on a monitor that was never started, or twice, is a safe no-op.
func (m *Monitor) Stop() {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.st != stateRunning {
		return
	}
	close(m.stop)
	m.st = stateStopped
}

// StopWait stops the monitor and blocks until the listener goroutine has
// actually exited, or ctx is done.
func (m *Monitor) StopWait(ctx context.Context) error {
	m.mu.Lock()
	done := m.done
	m.mu.Unlock()

	m.Stop()
	if done == nil {
		return nil
	}
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Running reports whether the listener is active.
func (m *Monitor) Running() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.st == stateRunning
}

// loop services clipboard-change notifications until stop is closed. The
// select doubles as the cancellable wait: it wakes for whichever of
// "clipboard changed" or "stop requested" happens first, with no busy
// polling in between.
func (m *Monitor) loop(stop, done chan struct{}) {
	defer close(done)

	changes := m.backend.Watch()
	for {
		select {
		case <-stop:
			slog.Info("clipboard monitor stopped")
			return
		case <-changes:
			m.handleChange()
		}
	}
}

// handleChange runs one capture cycle. Every failure here is logged and
// swallowed: a bad payload must not stop the listener.
func (m *Monitor) handleChange() {
	snap, err := m.backend.Snapshot()
	if err != nil {
		slog.Warn("clipboard read failed", "err", err)
		return
	}

	e, err := m.engine.Capture(snap)
	if err != nil {
		if !errors.Is(err, capture.ErrNoContent) {
			slog.Warn("capture failed", "err", err)
		}
		return
	}

	saved, err := m.store.Save(context.Background(), e)
	if err != nil {
		slog.Error("failed to save clipboard entry", "err", err)
		return
	}
	if !saved {
		slog.Debug("near-duplicate folded", "preview", e.PreviewText)
		return
	}

	slog.Debug("entry captured", "type", e.Content.Type, "preview", e.PreviewText)
	m.bus.Publish(event.Event{Kind: event.EntryAdded, Entry: e})
}
