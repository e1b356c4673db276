package clip

// headlessBackend is a no-op clipboard backend for environments without a
// display server. It never produces Watch events and silently discards
// writes.
type headlessBackend struct {
	watchCh chan struct{}
}

// NewHeadless returns the no-op backend.
func NewHeadless() Backend {
	return &headlessBackend{watchCh: make(chan struct{})}
}

func (b *headlessBackend) Name() string { return "headless (no-op)" }

func (b *headlessBackend) Snapshot() (*Snapshot, error) { return &Snapshot{}, nil }

func (b *headlessBackend) Write(_ *Snapshot) error { return nil }

func (b *headlessBackend) Watch() <-chan struct{} { return b.watchCh }

func (b *headlessBackend) Close() {}
