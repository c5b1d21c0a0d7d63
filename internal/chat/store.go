// Package chat holds the client-side conversation state: per-counterparty
// message logs, the bounded tray of chat windows, and the read-state
// reconciliation that keeps unread badges consistent with what the user can
// actually see.
package chat

import (
	"sync"
	"time"

	"chat-client/internal/cache"
	"chat-client/internal/models"
	"chat-client/pkg/logger"

	"github.com/google/uuid"
)

// sendRefreshDelay is how long after a send the conversation-list cache is
// invalidated, giving the server time to persist before the refetch.
const sendRefreshDelay = 500 * time.Millisecond

// Sender is the outbound side of the duplex connection. Sends while the
// connection is not open are dropped by the caller, not queued.
type Sender interface {
	IsOpen() bool
	SendFrame(models.Frame) error
}

// Conversation is the transient state held for one counterparty. Messages is
// append-only and insertion-ordered.
type Conversation struct {
	Messages          []models.Message
	Draft             string
	PendingAttachment string
	Typing            bool
}

type conversation struct {
	messages          []models.Message
	seen              map[string]bool // message ids already appended
	pendingEchoes     map[string]bool // optimistic ids awaiting server confirm
	draft             string
	pendingAttachment string
	typing            bool
}

// Store holds every conversation, independent of which windows are visible.
type Store struct {
	mu     sync.Mutex
	selfID string
	sender Sender
	cache  cache.Invalidator
	convs  map[string]*conversation

	refreshDelay time.Duration
	newID        func() string
	now          func() time.Time
}

func NewStore(selfID string, sender Sender, invalidator cache.Invalidator) *Store {
	return &Store{
		selfID:       selfID,
		sender:       sender,
		cache:        invalidator,
		convs:        make(map[string]*conversation),
		refreshDelay: sendRefreshDelay,
		newID:        uuid.NewString,
		now:          time.Now,
	}
}

func (s *Store) conv(counterpartyID string) *conversation {
	c, ok := s.convs[counterpartyID]
	if !ok {
		c = &conversation{
			seen:          make(map[string]bool),
			pendingEchoes: make(map[string]bool),
		}
		s.convs[counterpartyID] = c
	}
	return c
}

// Conversation returns a snapshot of the state for one counterparty.
func (s *Store) Conversation(counterpartyID string) Conversation {
	s.mu.Lock()
	defer s.mu.Unlock()

	c := s.conv(counterpartyID)
	msgs := make([]models.Message, len(c.messages))
	copy(msgs, c.messages)
	return Conversation{
		Messages:          msgs,
		Draft:             c.draft,
		PendingAttachment: c.pendingAttachment,
		Typing:            c.typing,
	}
}

// AppendIncoming adds a live inbound message to its conversation. Duplicate
// deliveries (reconnect replay) are dropped by message id.
func (s *Store) AppendIncoming(m models.Message) {
	s.mu.Lock()
	defer s.mu.Unlock()

	c := s.conv(m.CounterpartyOf(s.selfID))
	if c.seen[m.ID] {
		return
	}
	c.seen[m.ID] = true
	c.messages = append(c.messages, m)
}

// AppendEcho records the server-confirmed copy of a message the current user
// sent. If an optimistic message with the same content is still awaiting
// confirmation it is replaced in place, otherwise the echo is appended.
func (s *Store) AppendEcho(m models.Message) {
	s.mu.Lock()
	defer s.mu.Unlock()

	c := s.conv(m.CounterpartyOf(s.selfID))
	if c.seen[m.ID] {
		return
	}
	for i := range c.messages {
		if c.pendingEchoes[c.messages[i].ID] && c.messages[i].Content == m.Content {
			delete(c.pendingEchoes, c.messages[i].ID)
			delete(c.seen, c.messages[i].ID)
			c.messages[i] = m
			c.seen[m.ID] = true
			return
		}
	}
	c.seen[m.ID] = true
	c.messages = append(c.messages, m)
}

// MergeHistory overlays the server's message history for a conversation.
// History order wins; any live-buffered messages the history does not contain
// are kept after it in their arrival order.
func (s *Store) MergeHistory(counterpartyID string, history []models.Message) {
	s.mu.Lock()
	defer s.mu.Unlock()

	c := s.conv(counterpartyID)
	merged := make([]models.Message, 0, len(history)+len(c.messages))
	seen := make(map[string]bool, len(history)+len(c.messages))
	for _, m := range history {
		if seen[m.ID] {
			continue
		}
		seen[m.ID] = true
		merged = append(merged, m)
	}
	for _, m := range c.messages {
		if seen[m.ID] {
			continue
		}
		seen[m.ID] = true
		merged = append(merged, m)
	}
	c.messages = merged
	c.seen = seen
}

func (s *Store) SetDraft(counterpartyID, text string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.conv(counterpartyID).draft = text
}

func (s *Store) SetPendingAttachment(counterpartyID, payload string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.conv(counterpartyID).pendingAttachment = payload
}

func (s *Store) ClearPendingAttachment(counterpartyID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.conv(counterpartyID).pendingAttachment = ""
}

// SetTyping sets or clears the counterparty-is-typing flag. There is no
// expiry; only an explicit stop event clears it.
func (s *Store) SetTyping(counterpartyID string, typing bool) {
	if counterpartyID == "" {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.conv(counterpartyID).typing = typing
}

// ClearTransient drops the draft and pending attachment for a conversation.
// Called when its window is closed or evicted from the tray.
func (s *Store) ClearTransient(counterpartyID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c := s.conv(counterpartyID)
	c.draft = ""
	c.pendingAttachment = ""
}

// Send composes the draft and pending attachment into a direct message and
// puts it on the wire. A send while the connection is not open is a silent
// no-op. On success the draft and attachment are cleared optimistically and a
// delayed conversation-list refresh is scheduled to reconcile with the
// server.
func (s *Store) Send(counterpartyID string) bool {
	if s.sender == nil || !s.sender.IsOpen() {
		return false
	}

	s.mu.Lock()
	c := s.conv(counterpartyID)
	content := models.ComposeContent(c.draft, c.pendingAttachment)
	if content == "" {
		s.mu.Unlock()
		return false
	}

	echo := models.Message{
		ID:         s.newID(),
		SenderID:   s.selfID,
		ReceiverID: counterpartyID,
		Content:    content,
		Timestamp:  s.now(),
		Read:       true,
	}
	c.messages = append(c.messages, echo)
	c.seen[echo.ID] = true
	c.pendingEchoes[echo.ID] = true
	c.draft = ""
	c.pendingAttachment = ""
	s.mu.Unlock()

	frame := models.Frame{
		Type:       models.EventDirectMessage,
		ReceiverID: counterpartyID,
		Content:    content,
	}
	if err := s.sender.SendFrame(frame); err != nil {
		logger.Error("Failed to send direct message: %v", err)
	}

	time.AfterFunc(s.refreshDelay, func() {
		s.cache.Invalidate(cache.KeyConversations)
	})
	return true
}

// SendTyping signals the counterparty that the current user started or
// stopped typing. Dropped when disconnected.
func (s *Store) SendTyping(counterpartyID string, typing bool) {
	if s.sender == nil || !s.sender.IsOpen() {
		return
	}
	frame := models.Frame{
		Type:       models.EventTyping,
		ReceiverID: counterpartyID,
		IsTyping:   typing,
	}
	if err := s.sender.SendFrame(frame); err != nil {
		logger.Error("Failed to send typing signal: %v", err)
	}
}

// SendBroadcast posts a message to the shared support channel.
func (s *Store) SendBroadcast(content string) {
	if content == "" || s.sender == nil || !s.sender.IsOpen() {
		return
	}
	frame := models.Frame{
		Type:    models.EventChat,
		Content: content,
	}
	if err := s.sender.SendFrame(frame); err != nil {
		logger.Error("Failed to send broadcast: %v", err)
	}
}
