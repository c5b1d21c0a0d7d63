package chat

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"chat-client/internal/cache"
	"chat-client/internal/models"
)

type fakeHistory struct {
	mu       sync.Mutex
	messages map[string][]models.Message
	fetched  chan string
}

func newFakeHistory() *fakeHistory {
	return &fakeHistory{
		messages: make(map[string][]models.Message),
		fetched:  make(chan string, 16),
	}
}

func (f *fakeHistory) ConversationHistory(ctx context.Context, counterpartyID string) ([]models.Message, error) {
	f.mu.Lock()
	msgs := f.messages[counterpartyID]
	f.mu.Unlock()
	f.fetched <- counterpartyID
	return msgs, nil
}

func (f *fakeHistory) waitFetch(t *testing.T) string {
	t.Helper()
	select {
	case id := <-f.fetched:
		return id
	case <-time.After(time.Second):
		t.Fatal("History fetch did not happen")
		return ""
	}
}

func newTestTray(t *testing.T) (*Tray, *Store, *fakeHistory) {
	t.Helper()
	store := NewStore("me", nil, cache.NewBus())
	history := newFakeHistory()
	return NewTray(store, history), store, history
}

func windowIDs(tray *Tray) []string {
	windows := tray.Windows()
	ids := make([]string, len(windows))
	for i, w := range windows {
		ids[i] = w.UserID
	}
	return ids
}

func TestOpenNeverExceedsMaxWindows(t *testing.T) {
	tray, _, _ := newTestTray(t)

	for i := 0; i < 10; i++ {
		tray.Open(fmt.Sprintf("user-%d", i))
	}

	windows := tray.Windows()
	if len(windows) != MaxWindows {
		t.Fatalf("Expected %d windows, got %d", MaxWindows, len(windows))
	}
	// Newest first, oldest evicted.
	want := []string{"user-9", "user-8", "user-7"}
	for i, w := range windows {
		if w.UserID != want[i] {
			t.Errorf("Window %d = %s, want %s", i, w.UserID, want[i])
		}
	}
}

func TestOpenHasNoDuplicates(t *testing.T) {
	tray, _, _ := newTestTray(t)

	tray.Open("alice")
	tray.Open("bob")
	tray.Open("alice")

	ids := windowIDs(tray)
	if len(ids) != 2 {
		t.Fatalf("Expected 2 windows, got %v", ids)
	}
	if ids[0] != "alice" || ids[1] != "bob" {
		t.Errorf("Reopened window should be first: %v", ids)
	}
}

func TestReopenMaximizesMinimizedWindow(t *testing.T) {
	tray, _, _ := newTestTray(t)

	tray.Open("alice")
	tray.ToggleMinimize("alice")
	if tray.Visible("alice") {
		t.Fatal("Window should be minimized")
	}

	tray.Open("alice")
	if !tray.Visible("alice") {
		t.Error("Reopen must force the window maximized")
	}
}

func TestOpenTriggersHistoryFetch(t *testing.T) {
	tray, store, history := newTestTray(t)
	history.messages["alice"] = []models.Message{
		{ID: "h1", SenderID: "alice", ReceiverID: "me", Content: "old"},
	}

	tray.Open("alice")
	if got := history.waitFetch(t); got != "alice" {
		t.Fatalf("Fetched history for %s", got)
	}

	// Merge is applied after the fetch returns.
	deadline := time.After(time.Second)
	for {
		if len(store.Conversation("alice").Messages) == 1 {
			break
		}
		select {
		case <-deadline:
			t.Fatal("History was not merged into the store")
		case <-time.After(5 * time.Millisecond):
		}
	}
}

func TestToggleMinimizeAffectsOnlyOneWindow(t *testing.T) {
	tray, _, _ := newTestTray(t)

	tray.Open("alice")
	tray.Open("bob")

	tray.ToggleMinimize("alice")

	if tray.Visible("alice") {
		t.Error("alice should be minimized")
	}
	if !tray.Visible("bob") {
		t.Error("bob should still be maximized")
	}

	tray.ToggleMinimize("alice")
	if !tray.Visible("alice") {
		t.Error("Second toggle should maximize alice again")
	}
}

func TestCloseDiscardsTransientState(t *testing.T) {
	tray, store, _ := newTestTray(t)

	tray.Open("alice")
	store.SetDraft("alice", "typed but unsent")
	store.SetPendingAttachment("alice", "PAYLOAD")

	tray.Close("alice")

	if len(tray.Windows()) != 0 {
		t.Fatal("Window should be removed")
	}
	conv := store.Conversation("alice")
	if conv.Draft != "" || conv.PendingAttachment != "" {
		t.Error("Close must discard the draft and pending attachment")
	}
}

func TestEvictionDiscardsTransientState(t *testing.T) {
	tray, store, _ := newTestTray(t)

	tray.Open("old")
	store.SetPendingAttachment("old", "PAYLOAD")

	tray.Open("b")
	tray.Open("c")
	tray.Open("d") // evicts "old"

	for _, id := range windowIDs(tray) {
		if id == "old" {
			t.Fatal("Oldest window should have been evicted")
		}
	}
	if store.Conversation("old").PendingAttachment != "" {
		t.Error("Eviction must discard the pending attachment")
	}
}

func TestAutoOpenOnlyWhenAbsent(t *testing.T) {
	tray, _, _ := newTestTray(t)

	tray.Open("alice")
	tray.ToggleMinimize("alice")

	// Existing minimized window: auto-open must not maximize it.
	tray.AutoOpen("alice")
	if tray.Visible("alice") {
		t.Error("AutoOpen must not maximize an existing minimized window")
	}

	// Unknown sender: a new maximized window appears.
	tray.AutoOpen("bob")
	if !tray.Visible("bob") {
		t.Error("AutoOpen should open a maximized window for a new sender")
	}

	tray.AutoOpen("")
	for _, id := range windowIDs(tray) {
		if id == "" {
			t.Error("AutoOpen must ignore an empty sender id")
		}
	}
}

func TestVisibleUnknownWindow(t *testing.T) {
	tray, _, _ := newTestTray(t)
	if tray.Visible("ghost") {
		t.Error("Unknown window must not be visible")
	}
}
