package router

import (
	"encoding/json"
	"time"
)

// Inbound event names. Anything else on the wire is protocol noise and is
// dropped without closing the connection.
const (
	EventPrivateMessage = "private_message"
	EventTyping         = "typing"
	EventMarkRead       = "mark_read"
)

// Outbound event names.
const (
	EventAck          = "ack"
	EventUsersOnline  = "users_online"
	EventOnlineUsers  = "online_users"
	EventMessageSent  = "message_sent"
	EventUserTyping   = "user_typing"
	EventMessagesRead = "messages_read"
	EventUserOffline  = "user_offline"
	EventError        = "error"
)

// Envelope is the inbound frame: a named event, an optional client-assigned
// id used to correlate the acknowledgement, and the raw payload decoded by
// the matching handler.
type Envelope struct {
	Event string          `json:"event"`
	ID    *int64          `json:"id,omitempty"`
	Data  json.RawMessage `json:"data"`
}

type PrivateMessagePayload struct {
	ReceiverID string `json:"receiverId" validate:"required"`
	Message    string `json:"message" validate:"required"`
}

type TypingPayload struct {
	ReceiverID string `json:"receiverId"`
	IsTyping   bool   `json:"isTyping"`
}

type MarkReadPayload struct {
	SenderID string `json:"senderId"`
}

// AckPayload resolves a private_message invocation exactly once, success
// or failure. ID mirrors the inbound envelope id.
type AckPayload struct {
	ID        *int64 `json:"id,omitempty"`
	Delivered bool   `json:"delivered"`
	MessageID string `json:"messageId,omitempty"`
	Error     string `json:"error,omitempty"`
}

type WireUser struct {
	ID    string `json:"id"`
	Name  string `json:"name,omitempty"`
	Image string `json:"image,omitempty"`
}

// WireMessage is the stored message enriched with display fields, the
// authoritative copy both sides render.
type WireMessage struct {
	ID        string     `json:"id"`
	Sender    WireUser   `json:"sender"`
	Receiver  WireUser   `json:"receiver"`
	Content   string     `json:"content"`
	Read      bool       `json:"read"`
	ReadAt    *time.Time `json:"readAt,omitempty"`
	CreatedAt time.Time  `json:"createdAt"`
}

type MessagePayload struct {
	Message WireMessage `json:"message"`
}

type TypingNotice struct {
	UserID   string `json:"userId"`
	IsTyping bool   `json:"isTyping"`
}

type ReadNotice struct {
	ReadBy string `json:"readBy"`
}

type OfflineNotice struct {
	UserID string `json:"userId"`
}

type ErrorPayload struct {
	Message string `json:"message"`
}
