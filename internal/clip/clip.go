// Package clip provides access to the system clipboard behind a small
// Backend interface, so the capture pipeline and its tests do not depend
// on a real display server.
//
// The default backend wraps golang.design/x/clipboard with a polling
// change watcher; a headless no-op backend takes over when no display
// environment is available (servers, containers, CI).
package clip

import (
	"errors"
	"time"
)

// ErrPlatform marks clipboard listener or window-resource failures.
var ErrPlatform = errors.New("platform error")

// Snapshot is one raw clipboard state: the bytes of every format the
// backend could read at that moment. Absent formats are nil/empty. The
// capture engine decides which single format to keep.
type Snapshot struct {
	Text  []byte   // plain Unicode text
	Image []byte   // PNG-encoded raster image
	Files []string // file-drop paths
	HTML  []byte   // registered HTML/markup format

	// Best-effort origin of the payload; empty when the platform cannot
	// tell.
	SourceApp    string
	SourceWindow string
}

// Empty reports whether the snapshot carries no supported format.
func (s *Snapshot) Empty() bool {
	return s == nil ||
		(len(s.Text) == 0 && len(s.Image) == 0 && len(s.Files) == 0 && len(s.HTML) == 0)
}

// Backend is the interface all clipboard implementations satisfy.
type Backend interface {
	// Name returns a human-readable name for the backend.
	Name() string

	// Snapshot reads the current clipboard contents. A clipboard with no
	// supported format yields an empty (non-nil) snapshot, not an error.
	Snapshot() (*Snapshot, error)

	// Write sets the clipboard from a snapshot. Backends without richer
	// format support honour text and image only.
	Write(s *Snapshot) error

	// Watch returns a channel that receives a signal whenever the
	// clipboard changes. The channel is never closed; the caller should
	// call Snapshot when it receives from it.
	Watch() <-chan struct{}

	// Close releases the watcher and any platform resources. After Close
	// the Watch channel goes silent.
	Close()
}

// PollInterval is the change-detection period of the system backend. It
// bounds notification latency only; no payload work happens on the tick.
const PollInterval = 250 * time.Millisecond
