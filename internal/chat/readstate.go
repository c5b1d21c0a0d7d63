package chat

import (
	"context"
	"sync"
	"time"

	"chat-client/internal/cache"
	"chat-client/internal/models"
	"chat-client/pkg/logger"
)

// markReadTimeout bounds the best-effort mark-read call.
const markReadTimeout = 10 * time.Second

// Visibility answers whether a counterparty's window is open and maximized.
type Visibility interface {
	Visible(userID string) bool
}

// MarkReader issues the server call that zeroes a conversation's unread
// count.
type MarkReader interface {
	MarkConversationRead(ctx context.Context, counterpartyID string) error
}

// Reconciler decides, per inbound direct message, whether it counts toward
// the unread badge or is immediately marked read. A visible window means the
// message was seen: mark it read server-side and leave the badge alone.
// Otherwise invalidate the unread-count cache so the badge refetches.
type Reconciler struct {
	selfID  string
	tray    Visibility
	marker  MarkReader
	cache   cache.Invalidator
	timeout time.Duration

	// pending lets teardown and tests wait for in-flight mark-read calls.
	pending sync.WaitGroup
}

func NewReconciler(selfID string, tray Visibility, marker MarkReader, invalidator cache.Invalidator) *Reconciler {
	return &Reconciler{
		selfID:  selfID,
		tray:    tray,
		marker:  marker,
		cache:   invalidator,
		timeout: markReadTimeout,
	}
}

// Observe classifies one inbound direct message. Mark-read is fire and
// forget: failures are swallowed, since the authoritative unread state lives
// server-side and is periodically refetched anyway.
func (r *Reconciler) Observe(m models.Message) {
	counterparty := m.CounterpartyOf(r.selfID)
	if counterparty == "" {
		return
	}

	if !r.tray.Visible(counterparty) {
		r.cache.Invalidate(cache.KeyUnreadCount)
		return
	}

	r.pending.Add(1)
	go func() {
		defer r.pending.Done()
		ctx, cancel := context.WithTimeout(context.Background(), r.timeout)
		defer cancel()
		if err := r.marker.MarkConversationRead(ctx, counterparty); err != nil {
			logger.Debug("Mark-read for %s failed: %v", counterparty, err)
		}
	}()
}

// Wait blocks until outstanding mark-read calls finish.
func (r *Reconciler) Wait() {
	r.pending.Wait()
}
