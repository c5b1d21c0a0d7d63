package realtime

import (
	"encoding/json"
	"time"

	"chat-client/internal/cache"
	"chat-client/internal/chat"
	"chat-client/internal/models"
	"chat-client/pkg/logger"
)

// Router classifies inbound frames by their type tag and dispatches them to
// the interested subsystems. Frames are handled strictly in arrival order;
// unknown tags are ignored for forward compatibility.
type Router struct {
	selfID     string
	store      *chat.Store
	tray       *chat.Tray
	reconciler *chat.Reconciler
	support    *chat.SupportLog
	cache      cache.Invalidator
}

func NewRouter(selfID string, store *chat.Store, tray *chat.Tray, reconciler *chat.Reconciler, support *chat.SupportLog, invalidator cache.Invalidator) *Router {
	return &Router{
		selfID:     selfID,
		store:      store,
		tray:       tray,
		reconciler: reconciler,
		support:    support,
		cache:      invalidator,
	}
}

// Dispatch parses one raw frame and routes it. Malformed frames are logged
// and dropped; nothing escapes this boundary.
func (r *Router) Dispatch(raw []byte) {
	var frame models.Frame
	if err := json.Unmarshal(raw, &frame); err != nil {
		logger.Error("Dropping unparseable frame: %v", err)
		return
	}

	switch frame.Type {
	case models.EventConnectAck:
		logger.Debug("Connection acknowledged for user %s", frame.UserID)

	case models.EventChat:
		r.support.Append(models.ChatBroadcast{
			Sender:    frame.Sender,
			Content:   frame.Content,
			Timestamp: parseTimestamp(frame.Timestamp),
		})

	case models.EventNotification:
		r.cache.Invalidate(cache.KeyNotifications, cache.KeyUnreadCount)

	case models.EventDirectMessage:
		if frame.Message == nil {
			return
		}
		msg := *frame.Message
		// Reconcile against the tray as it was when the message
		// arrived, before auto-open can materialize a window.
		r.reconciler.Observe(msg)
		r.store.AppendIncoming(msg)
		r.tray.AutoOpen(msg.CounterpartyOf(r.selfID))

	case models.EventDirectMessageSent:
		if frame.Message == nil {
			return
		}
		r.store.AppendEcho(*frame.Message)
		r.cache.Invalidate(cache.KeyConversations)

	case models.EventConnectionAccepted:
		r.cache.Invalidate(cache.KeyConnections, cache.KeyAcceptedConnections, cache.KeyNotifications)

	case models.EventTyping:
		r.store.SetTyping(frame.SenderID, frame.IsTyping)

	default:
		// Unknown tag: ignore.
	}
}

func parseTimestamp(s string) time.Time {
	if s == "" {
		return time.Now()
	}
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return time.Now()
	}
	return t
}
