package chat

import (
	"context"
	"sync"
	"time"

	"chat-client/internal/models"
	"chat-client/pkg/logger"
)

// MaxWindows is the most chat windows the tray ever tracks. Opening a fourth
// evicts the oldest, whatever its state.
const MaxWindows = 3

// historyFetchTimeout bounds the REST history load triggered by opening a
// window.
const historyFetchTimeout = 10 * time.Second

// Window is a view over one conversation: identified by the counterparty id,
// either maximized or minimized.
type Window struct {
	UserID    string
	Minimized bool
}

// HistoryFetcher loads the server-side message history for a counterparty.
type HistoryFetcher interface {
	ConversationHistory(ctx context.Context, counterpartyID string) ([]models.Message, error)
}

// Tray is the chat window state machine. Windows are ordered newest-first; a
// counterparty appears at most once.
type Tray struct {
	mu      sync.Mutex
	windows []Window

	store   *Store
	history HistoryFetcher
}

func NewTray(store *Store, history HistoryFetcher) *Tray {
	return &Tray{store: store, history: history}
}

// Open maximizes the window for the given counterparty, creating it at the
// front of the tray if absent and evicting the oldest window beyond
// MaxWindows. Opening triggers a history fetch for the conversation.
func (t *Tray) Open(userID string) {
	if userID == "" {
		return
	}

	t.mu.Lock()
	if i := t.index(userID); i >= 0 {
		w := t.windows[i]
		w.Minimized = false
		t.windows = append(t.windows[:i], t.windows[i+1:]...)
		t.windows = append([]Window{w}, t.windows...)
		t.mu.Unlock()
		return
	}

	t.windows = append([]Window{{UserID: userID}}, t.windows...)
	var evicted []Window
	if len(t.windows) > MaxWindows {
		evicted = t.windows[MaxWindows:]
		t.windows = t.windows[:MaxWindows]
	}
	t.mu.Unlock()

	for _, w := range evicted {
		t.store.ClearTransient(w.UserID)
	}

	go t.fetchHistory(userID)
}

// AutoOpen opens a window for an inbound sender that has none yet. This is
// the only system-initiated transition; existing windows (minimized or not)
// are left alone.
func (t *Tray) AutoOpen(userID string) {
	if userID == "" {
		return
	}
	t.mu.Lock()
	exists := t.index(userID) >= 0
	t.mu.Unlock()
	if !exists {
		t.Open(userID)
	}
}

// ToggleMinimize flips exactly one window between maximized and minimized.
func (t *Tray) ToggleMinimize(userID string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if i := t.index(userID); i >= 0 {
		t.windows[i].Minimized = !t.windows[i].Minimized
	}
}

// Close removes the window and discards the conversation's pending
// attachment and draft. The message log itself survives in the store.
func (t *Tray) Close(userID string) {
	t.mu.Lock()
	removed := false
	if i := t.index(userID); i >= 0 {
		t.windows = append(t.windows[:i], t.windows[i+1:]...)
		removed = true
	}
	t.mu.Unlock()

	if removed {
		t.store.ClearTransient(userID)
	}
}

// Visible reports whether the counterparty's window is open and maximized.
// This is the sole signal that incoming traffic is "seen".
func (t *Tray) Visible(userID string) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	if i := t.index(userID); i >= 0 {
		return !t.windows[i].Minimized
	}
	return false
}

// Windows returns a snapshot of the tray, newest first.
func (t *Tray) Windows() []Window {
	t.mu.Lock()
	defer t.mu.Unlock()
	out := make([]Window, len(t.windows))
	copy(out, t.windows)
	return out
}

func (t *Tray) index(userID string) int {
	for i := range t.windows {
		if t.windows[i].UserID == userID {
			return i
		}
	}
	return -1
}

func (t *Tray) fetchHistory(userID string) {
	if t.history == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), historyFetchTimeout)
	defer cancel()

	messages, err := t.history.ConversationHistory(ctx, userID)
	if err != nil {
		logger.Error("Failed to load history for %s: %v", userID, err)
		return
	}
	t.store.MergeHistory(userID, messages)
}
