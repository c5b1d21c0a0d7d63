package chat

import (
	"sync"

	"chat-client/internal/models"
)

// supportLogLimit bounds the in-memory support-channel log.
const supportLogLimit = 200

// SupportLog is the shared support-channel message log. It is a second
// consumer of the same connection; broadcast frames land here and nowhere
// else.
type SupportLog struct {
	mu      sync.Mutex
	entries []models.ChatBroadcast
}

func NewSupportLog() *SupportLog {
	return &SupportLog{}
}

// Append adds a broadcast entry, dropping the oldest past the limit.
func (l *SupportLog) Append(entry models.ChatBroadcast) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.entries = append(l.entries, entry)
	if len(l.entries) > supportLogLimit {
		l.entries = l.entries[len(l.entries)-supportLogLimit:]
	}
}

// Entries returns a snapshot of the log, oldest first.
func (l *SupportLog) Entries() []models.ChatBroadcast {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := make([]models.ChatBroadcast, len(l.entries))
	copy(out, l.entries)
	return out
}
