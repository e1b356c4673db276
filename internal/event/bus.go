// Package event implements the in-process notification channel carrying
// domain events from the monitor and the core to any number of
// subscribers. It is transport-agnostic: subscribers receive events on a
// channel, and publishing never blocks the producer.
package event

import (
	"log/slog"
	"sync"

	"github.com/google/uuid"

	"github.com/Ukiyograin/clipboard-master/internal/entry"
	"github.com/Ukiyograin/clipboard-master/internal/settings"
)

// Kind identifies the event variant.
type Kind string

const (
	EntryAdded      Kind = "entry_added"
	EntryUpdated    Kind = "entry_updated"
	EntryRemoved    Kind = "entry_removed"
	SettingsChanged Kind = "settings_changed"
	HotkeyPressed   Kind = "hotkey_pressed"
)

// Event is one domain notification. Exactly the fields belonging to the
// Kind are populated; events are immutable once published.
type Event struct {
	Kind Kind

	// EntryAdded, EntryUpdated
	Entry *entry.Entry

	// EntryRemoved
	EntryID uuid.UUID

	// SettingsChanged
	Settings *settings.Settings

	// HotkeyPressed
	Hotkey string
}

// subscriberBuffer is the per-subscriber channel capacity. A subscriber
// that falls this far behind starts losing events (logged), keeping
// Publish non-blocking for producers.
const subscriberBuffer = 256

// Subscription is one subscriber's view of the bus. Events published after
// Subscribe are delivered on C in publish order per producer.
type Subscription struct {
	C  <-chan Event
	id int
	ch chan Event
}

// Bus fans events out to all current subscribers.
type Bus struct {
	mu     sync.RWMutex
	nextID int
	subs   map[int]*Subscription
}

// NewBus returns an empty Bus.
func NewBus() *Bus {
	return &Bus{subs: make(map[int]*Subscription)}
}

// Subscribe registers a new subscriber. The caller must eventually call
// Unsubscribe to release it.
func (b *Bus) Subscribe() *Subscription {
	ch := make(chan Event, subscriberBuffer)
	b.mu.Lock()
	b.nextID++
	sub := &Subscription{C: ch, id: b.nextID, ch: ch}
	b.subs[sub.id] = sub
	b.mu.Unlock()
	return sub
}

// Unsubscribe removes the subscription and closes its channel. Calling it
// twice is a no-op.
func (b *Bus) Unsubscribe(sub *Subscription) {
	b.mu.Lock()
	_, ok := b.subs[sub.id]
	delete(b.subs, sub.id)
	b.mu.Unlock()
	if ok {
		close(sub.ch)
	}
}

// Publish delivers ev to every current subscriber without blocking. If a
// subscriber's buffer is full the event is dropped for that subscriber.
func (b *Bus) Publish(ev Event) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	for _, sub := range b.subs {
		select {
		case sub.ch <- ev:
		default:
			slog.Warn("event dropped for slow subscriber", "kind", ev.Kind, "subscriber", sub.id)
		}
	}
}
