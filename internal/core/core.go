// Package core wires the settings store, entry store, clipboard monitor
// and event bus into one orchestrator. A Core is an explicit handle
// returned by New: the caller owns it, several instances can coexist, and
// teardown is deterministic.
package core

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/Ukiyograin/clipboard-master/internal/capture"
	"github.com/Ukiyograin/clipboard-master/internal/clip"
	"github.com/Ukiyograin/clipboard-master/internal/entry"
	"github.com/Ukiyograin/clipboard-master/internal/event"
	"github.com/Ukiyograin/clipboard-master/internal/monitor"
	"github.com/Ukiyograin/clipboard-master/internal/settings"
	"github.com/Ukiyograin/clipboard-master/internal/store"
)

// Options configures New. Zero values fall back to the user-level config
// location, the database path from settings, and the system clipboard.
type Options struct {
	ConfigPath   string
	DatabasePath string
	Backend      clip.Backend
}

// Core is the single entry point external collaborators talk to.
type Core struct {
	configPath string
	settings   *settings.Store
	store      *store.Store
	bus        *event.Bus
	monitor    *monitor.Monitor
	backend    clip.Backend

	mu      sync.Mutex
	delay   *time.Timer
	stopped bool
}

// New loads (or defaults) the settings, opens the store, and returns a
// stopped Core. Configuration load failure is fatal here: the core cannot
// run without valid settings and a writable path.
func New(opts Options) (*Core, error) {
	configPath := opts.ConfigPath
	if configPath == "" {
		configPath = settings.DefaultPath()
	}
	s, err := settings.Load(configPath)
	if err != nil {
		return nil, err
	}

	dbPath := opts.DatabasePath
	if dbPath == "" {
		dbPath = s.DatabasePath
	}
	st, err := store.Open(dbPath)
	if err != nil {
		return nil, err
	}

	backend := opts.Backend
	if backend == nil {
		backend = clip.New()
	}

	settingsStore := settings.NewStore(s)
	bus := event.NewBus()
	engine := capture.NewEngine(settingsStore)

	return &Core{
		configPath: configPath,
		settings:   settingsStore,
		store:      st,
		bus:        bus,
		monitor:    monitor.New(backend, engine, st, bus),
		backend:    backend,
	}, nil
}

// Start begins clipboard monitoring, honouring the configured startup
// delay. It returns promptly; the monitor comes up in the background once
// the delay elapses.
func (c *Core) Start() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.stopped = false

	delay := time.Duration(c.settings.Get().StartupDelayMS) * time.Millisecond
	if delay <= 0 {
		return c.monitor.Start()
	}
	c.delay = time.AfterFunc(delay, c.delayedStart)
	return nil
}

// delayedStart runs in the timer goroutine. The stopped check under the
// mutex closes the race where the timer fires while Stop is in flight:
// either this observes stopped and does nothing, or Stop's delay.Stop
// came too late and StopWait below still sees a running monitor.
func (c *Core) delayedStart() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.stopped {
		return
	}
	if err := c.monitor.Start(); err != nil {
		slog.Error("delayed monitor start failed", "err", err)
	}
}

// Stop halts the monitor, waits briefly for the listener to exit, and,
// when auto-cleanup is enabled, runs one retention cleanup pass as the
// final action.
func (c *Core) Stop() error {
	c.mu.Lock()
	c.stopped = true
	if c.delay != nil {
		c.delay.Stop()
	}
	c.mu.Unlock()

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := c.monitor.StopWait(ctx); err != nil {
		slog.Warn("monitor did not confirm shutdown", "err", err)
	}

	if !c.settings.Get().AutoCleanup {
		return nil
	}
	deleted, err := c.Cleanup(context.Background())
	if err != nil {
		return err
	}
	slog.Info("retention cleanup on stop", "deleted", deleted)
	return nil
}

// Close releases the store and the clipboard backend. Call after Stop.
func (c *Core) Close() error {
	c.backend.Close()
	return c.store.Close()
}

// Events returns the bus for subscribing to domain events.
func (c *Core) Events() *event.Bus { return c.bus }

// Settings returns a copy of the current settings.
func (c *Core) Settings() settings.Settings { return c.settings.Get() }

// UpdateSettings validates, applies and persists new settings, then
// publishes SettingsChanged. The settings store is written before the
// file so concurrent readers never observe the old value after the event.
func (c *Core) UpdateSettings(s settings.Settings) error {
	s.Validate()
	c.settings.Update(s)
	if err := settings.Save(c.configPath, s); err != nil {
		return err
	}
	c.bus.Publish(event.Event{Kind: event.SettingsChanged, Settings: &s})
	return nil
}

// Recent returns up to limit entries, newest first.
func (c *Core) Recent(ctx context.Context, limit int) ([]*entry.Entry, error) {
	return c.store.GetRecent(ctx, limit)
}

// Search runs a filtered query against the store.
func (c *Core) Search(ctx context.Context, q entry.SearchQuery) ([]*entry.Entry, error) {
	return c.store.Search(ctx, q)
}

// Get returns one entry by id.
func (c *Core) Get(ctx context.Context, id uuid.UUID) (*entry.Entry, error) {
	return c.store.Get(ctx, id)
}

// Save persists an externally constructed entry and publishes EntryAdded
// if it was not folded as a near-duplicate.
func (c *Core) Save(ctx context.Context, e *entry.Entry) error {
	saved, err := c.store.Save(ctx, e)
	if err != nil {
		return err
	}
	if saved {
		c.bus.Publish(event.Event{Kind: event.EntryAdded, Entry: e})
	}
	return nil
}

// Update rewrites an entry and publishes EntryUpdated.
func (c *Core) Update(ctx context.Context, e *entry.Entry) error {
	if err := c.store.Update(ctx, e); err != nil {
		return err
	}
	c.bus.Publish(event.Event{Kind: event.EntryUpdated, Entry: e})
	return nil
}

// Delete removes an entry and publishes EntryRemoved.
func (c *Core) Delete(ctx context.Context, id uuid.UUID) error {
	if err := c.store.Delete(ctx, id); err != nil {
		return err
	}
	c.bus.Publish(event.Event{Kind: event.EntryRemoved, EntryID: id})
	return nil
}

// SetFavorite flips the favorite flag and publishes EntryUpdated.
func (c *Core) SetFavorite(ctx context.Context, id uuid.UUID, favorite bool) error {
	if err := c.store.SetFavorite(ctx, id, favorite); err != nil {
		return err
	}
	return c.publishUpdated(ctx, id)
}

// SetPinned flips the pinned flag and publishes EntryUpdated.
func (c *Core) SetPinned(ctx context.Context, id uuid.UUID, pinned bool) error {
	if err := c.store.SetPinned(ctx, id, pinned); err != nil {
		return err
	}
	return c.publishUpdated(ctx, id)
}

// AddTags attaches tags to an entry and publishes EntryUpdated.
func (c *Core) AddTags(ctx context.Context, id uuid.UUID, tags ...string) error {
	if err := c.store.AddTags(ctx, id, tags...); err != nil {
		return err
	}
	return c.publishUpdated(ctx, id)
}

// RemoveTags detaches tags from an entry and publishes EntryUpdated.
func (c *Core) RemoveTags(ctx context.Context, id uuid.UUID, tags ...string) error {
	if err := c.store.RemoveTags(ctx, id, tags...); err != nil {
		return err
	}
	return c.publishUpdated(ctx, id)
}

// Touch records one access of an entry, typically when the host pastes
// it. Access counting is bookkeeping, not a content change, so no event
// is published.
func (c *Core) Touch(ctx context.Context, id uuid.UUID) error {
	return c.store.Touch(ctx, id)
}

func (c *Core) publishUpdated(ctx context.Context, id uuid.UUID) error {
	e, err := c.store.Get(ctx, id)
	if err != nil {
		return err
	}
	c.bus.Publish(event.Event{Kind: event.EntryUpdated, Entry: e})
	return nil
}

// Statistics recomputes the store aggregates.
func (c *Core) Statistics(ctx context.Context) (entry.Statistics, error) {
	return c.store.Statistics(ctx)
}

// Cleanup runs one retention pass using the configured retention window.
func (c *Core) Cleanup(ctx context.Context) (int64, error) {
	return c.store.Cleanup(ctx, c.settings.Get().KeepDays)
}

// Export serialises the full entry set to path.
func (c *Core) Export(ctx context.Context, path string, format store.ExportFormat) error {
	return c.store.Export(ctx, path, format)
}

// Import loads entries from a JSON export at path.
func (c *Core) Import(ctx context.Context, path string) (int, error) {
	return c.store.Import(ctx, path)
}

// PressHotkey publishes a HotkeyPressed event on behalf of the host
// application that registered the key.
func (c *Core) PressHotkey(name string) {
	c.bus.Publish(event.Event{Kind: event.HotkeyPressed, Hotkey: name})
}
