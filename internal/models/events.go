package models

type EventType string

const (
	// Outbound.
	EventConnect EventType = "connect"
	EventChat    EventType = "chat"
	EventTyping  EventType = "typing"

	// Inbound. EventChat and EventTyping arrive inbound as well.
	EventConnectAck         EventType = "connect_ack"
	EventDirectMessage      EventType = "direct_message"
	EventDirectMessageSent  EventType = "direct_message_sent"
	EventNotification       EventType = "notification"
	EventConnectionAccepted EventType = "connection_accepted"
)

// Frame is the envelope for every frame on the socket, multiplexing the
// support channel, direct messages, typing signals and badge events over one
// connection. Which fields are populated depends on Type.
type Frame struct {
	Type EventType `json:"type"`

	// connect (identify) and typing
	UserID     string `json:"user_id,omitempty"`
	SenderID   string `json:"sender_id,omitempty"`
	ReceiverID string `json:"receiver_id,omitempty"`
	IsTyping   bool   `json:"is_typing,omitempty"`

	// chat broadcast
	Content   string `json:"content,omitempty"`
	Sender    string `json:"sender,omitempty"`
	Timestamp string `json:"timestamp,omitempty"`

	// direct_message / direct_message_sent
	Message *Message `json:"message,omitempty"`
}
