package chat

import "sync"

// Opener exposes the tray's open operation as an explicit process-wide
// capability. View code anywhere in the tree holds a reference to the Opener
// rather than threading the tray through every call chain. Registration is
// tied to the tray's lifecycle; after Deregister, Open is a no-op so nothing
// dangles past teardown.
type Opener struct {
	mu   sync.Mutex
	open func(userID string)
}

func NewOpener() *Opener {
	return &Opener{}
}

// Register binds the open capability. The tray registers its own Open on
// mount.
func (o *Opener) Register(fn func(userID string)) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.open = fn
}

// Deregister unbinds the capability on teardown.
func (o *Opener) Deregister() {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.open = nil
}

// Open opens a conversation window for the given user. No-op when no tray is
// registered.
func (o *Opener) Open(userID string) {
	o.mu.Lock()
	fn := o.open
	o.mu.Unlock()
	if fn != nil {
		fn(userID)
	}
}
