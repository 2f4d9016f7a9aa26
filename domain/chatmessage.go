// Package domain contains core concepts of the presence and messaging system.
// This file defines Message records and related rules.
// Messages are durable and never deleted by this core.
package domain

import (
	"time"

	"github.com/google/uuid"
)

// Message represents a durable private chat message between two users.
type Message struct {
	ID         uuid.UUID
	SenderID   string
	ReceiverID string
	Content    string
	Read       bool
	ReadAt     *time.Time
	CreatedAt  time.Time
}

// UserRef carries the minimal display fields a client needs to render
// a message without a second lookup.
type UserRef struct {
	ID    string
	Name  string
	Image string
}

// EnrichedMessage is a stored Message together with sender and receiver
// display fields, the shape delivered on the real-time channel.
type EnrichedMessage struct {
	Message
	Sender   UserRef
	Receiver UserRef
}
