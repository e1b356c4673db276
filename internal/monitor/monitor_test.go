package monitor

import (
	"context"
	"errors"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/Ukiyograin/clipboard-master/internal/capture"
	"github.com/Ukiyograin/clipboard-master/internal/clip"
	"github.com/Ukiyograin/clipboard-master/internal/event"
	"github.com/Ukiyograin/clipboard-master/internal/settings"
	"github.com/Ukiyograin/clipboard-master/internal/store"
)

// fakeBackend drives the watch channel by hand so the tests control
// exactly when a "clipboard changed" notification fires.
type fakeBackend struct {
	mu      sync.Mutex
	current clip.Snapshot
	changes chan struct{}
}

func newFakeBackend() *fakeBackend {
	return &fakeBackend{changes: make(chan struct{}, 8)}
}

func (f *fakeBackend) set(s clip.Snapshot) {
	f.mu.Lock()
	f.current = s
	f.mu.Unlock()
	f.changes <- struct{}{}
}

func (f *fakeBackend) Name() string { return "fake" }

func (f *fakeBackend) Snapshot() (*clip.Snapshot, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	s := f.current
	return &s, nil
}

func (f *fakeBackend) Write(s *clip.Snapshot) error {
	f.mu.Lock()
	f.current = *s
	f.mu.Unlock()
	return nil
}

func (f *fakeBackend) Watch() <-chan struct{} { return f.changes }

func (f *fakeBackend) Close() {}

type pipeline struct {
	backend *fakeBackend
	store   *store.Store
	bus     *event.Bus
	monitor *Monitor
}

func newPipeline(t *testing.T) *pipeline {
	t.Helper()
	st, err := store.Open(filepath.Join(t.TempDir(), "clipboard.db"))
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { st.Close() })

	backend := newFakeBackend()
	bus := event.NewBus()
	engine := capture.NewEngine(settings.NewStore(settings.Default()))
	return &pipeline{
		backend: backend,
		store:   st,
		bus:     bus,
		monitor: New(backend, engine, st, bus),
	}
}

func waitEvent(t *testing.T, sub *event.Subscription) event.Event {
	t.Helper()
	select {
	case ev := <-sub.C:
		return ev
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for event")
		return event.Event{}
	}
}

func TestMonitorCapturesChange(t *testing.T) {
	p := newPipeline(t)
	sub := p.bus.Subscribe()
	defer p.bus.Unsubscribe(sub)

	if err := p.monitor.Start(); err != nil {
		t.Fatal(err)
	}
	defer p.monitor.StopWait(context.Background())

	p.backend.set(clip.Snapshot{Text: []byte("first copy"), SourceApp: "editor"})

	ev := waitEvent(t, sub)
	if ev.Kind != event.EntryAdded {
		t.Fatalf("event kind = %q", ev.Kind)
	}
	if ev.Entry == nil || ev.Entry.Content.Text != "first copy" {
		t.Fatalf("event entry = %+v", ev.Entry)
	}

	got, err := p.store.Get(context.Background(), ev.Entry.ID)
	if err != nil {
		t.Fatal(err)
	}
	if got.SourceApp != "editor" {
		t.Fatalf("stored source app = %q", got.SourceApp)
	}
}

func TestMonitorFoldsNearDuplicates(t *testing.T) {
	p := newPipeline(t)
	sub := p.bus.Subscribe()
	defer p.bus.Unsubscribe(sub)

	if err := p.monitor.Start(); err != nil {
		t.Fatal(err)
	}
	defer p.monitor.StopWait(context.Background())

	p.backend.set(clip.Snapshot{Text: []byte("repeated")})
	waitEvent(t, sub)

	// The same payload again, well inside the dedup window: no second
	// entry and no second event.
	p.backend.set(clip.Snapshot{Text: []byte("repeated")})
	p.backend.set(clip.Snapshot{Text: []byte("something else")})

	ev := waitEvent(t, sub)
	if ev.Entry.Content.Text != "something else" {
		t.Fatalf("next event carries %q, duplicate was not folded", ev.Entry.Content.Text)
	}

	recent, err := p.store.GetRecent(context.Background(), 10)
	if err != nil {
		t.Fatal(err)
	}
	if len(recent) != 2 {
		t.Fatalf("store holds %d entries, want 2", len(recent))
	}
}

func TestMonitorIgnoresEmptySnapshots(t *testing.T) {
	p := newPipeline(t)
	sub := p.bus.Subscribe()
	defer p.bus.Unsubscribe(sub)

	if err := p.monitor.Start(); err != nil {
		t.Fatal(err)
	}
	defer p.monitor.StopWait(context.Background())

	p.backend.set(clip.Snapshot{})
	p.backend.set(clip.Snapshot{Text: []byte("real content")})

	ev := waitEvent(t, sub)
	if ev.Entry.Content.Text != "real content" {
		t.Fatalf("got event for %q", ev.Entry.Content.Text)
	}
}

func TestMonitorStartStop(t *testing.T) {
	p := newPipeline(t)

	if p.monitor.Running() {
		t.Fatal("new monitor reports running")
	}
	if err := p.monitor.Start(); err != nil {
		t.Fatal(err)
	}
	if !p.monitor.Running() {
		t.Fatal("started monitor reports not running")
	}
	if err := p.monitor.Start(); !errors.Is(err, ErrAlreadyRunning) {
		t.Fatalf("second Start: err = %v", err)
	}

	if err := p.monitor.StopWait(context.Background()); err != nil {
		t.Fatal(err)
	}
	if p.monitor.Running() {
		t.Fatal("stopped monitor reports running")
	}
}

func TestMonitorStopBeforeStartIsNoOp(t *testing.T) {
	p := newPipeline(t)

	p.monitor.Stop()
	p.monitor.Stop()
	if err := p.monitor.StopWait(context.Background()); err != nil {
		t.Fatal(err)
	}

	// Still startable afterwards.
	if err := p.monitor.Start(); err != nil {
		t.Fatal(err)
	}
	if err := p.monitor.StopWait(context.Background()); err != nil {
		t.Fatal(err)
	}
}

func TestMonitorRestart(t *testing.T) {
	p := newPipeline(t)
	sub := p.bus.Subscribe()
	defer p.bus.Unsubscribe(sub)

	if err := p.monitor.Start(); err != nil {
		t.Fatal(err)
	}
	if err := p.monitor.StopWait(context.Background()); err != nil {
		t.Fatal(err)
	}

	if err := p.monitor.Start(); err != nil {
		t.Fatalf("restart: %v", err)
	}
	defer p.monitor.StopWait(context.Background())

	p.backend.set(clip.Snapshot{Text: []byte("after restart")})
	ev := waitEvent(t, sub)
	if ev.Entry.Content.Text != "after restart" {
		t.Fatalf("restarted monitor captured %q", ev.Entry.Content.Text)
	}
}
