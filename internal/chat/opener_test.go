package chat

import (
	"testing"

	"chat-client/internal/cache"
)

func TestOpenerLifecycle(t *testing.T) {
	store := NewStore("me", nil, cache.NewBus())
	tray := NewTray(store, nil)
	opener := NewOpener()

	// Before registration: no-op, no panic.
	opener.Open("alice")
	if len(tray.Windows()) != 0 {
		t.Fatal("Open before registration must do nothing")
	}

	opener.Register(tray.Open)
	opener.Open("alice")
	if !tray.Visible("alice") {
		t.Fatal("Open should reach the tray once registered")
	}

	// After teardown the capability must not dangle.
	opener.Deregister()
	opener.Open("bob")
	if len(tray.Windows()) != 1 {
		t.Error("Open after deregistration must do nothing")
	}
}
