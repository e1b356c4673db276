package clip

import (
	"bytes"
	"log/slog"
	"time"

	"golang.design/x/clipboard"
)

type systemBackend struct {
	watchCh  chan struct{}
	done     chan struct{}
	lastText []byte
	lastImg  []byte
}

// New returns the system clipboard backend, or a headless no-op backend
// if the display environment is unavailable. clipboard.Init is called
// here rather than in init() so that sub-commands that never construct a
// backend don't trigger the warning on headless hosts.
func New() Backend {
	if err := clipboard.Init(); err != nil {
		slog.Warn("clipboard unavailable, running headless", "err", err)
		return NewHeadless()
	}
	b := &systemBackend{
		watchCh: make(chan struct{}, 1),
		done:    make(chan struct{}),
	}
	go b.poll()
	return b
}

func (b *systemBackend) Name() string { return "system clipboard (poll)" }

func (b *systemBackend) poll() {
	t := time.NewTicker(PollInterval)
	defer t.Stop()
	for {
		select {
		case <-b.done:
			return
		case <-t.C:
			text := clipboard.Read(clipboard.FmtText)
			img := clipboard.Read(clipboard.FmtImage)
			if !bytes.Equal(text, b.lastText) || !bytes.Equal(img, b.lastImg) {
				b.lastText = text
				b.lastImg = img
				select {
				case b.watchCh <- struct{}{}:
				default:
				}
			}
		}
	}
}

func (b *systemBackend) Snapshot() (*Snapshot, error) {
	// File-drop lists and the registered HTML format are not exposed by
	// this backend; richer backends fill those fields.
	return &Snapshot{
		Text:  clipboard.Read(clipboard.FmtText),
		Image: clipboard.Read(clipboard.FmtImage),
	}, nil
}

func (b *systemBackend) Write(s *Snapshot) error {
	if len(s.Text) > 0 {
		clipboard.Write(clipboard.FmtText, s.Text)
	}
	if len(s.Image) > 0 {
		clipboard.Write(clipboard.FmtImage, s.Image)
	}
	return nil
}

func (b *systemBackend) Watch() <-chan struct{} { return b.watchCh }

func (b *systemBackend) Close() { close(b.done) }
