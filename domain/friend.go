package domain

import (
	"time"

	"github.com/google/uuid"
)

type FriendRequestStatus string

const (
	FriendRequestPending   FriendRequestStatus = "pending"
	FriendRequestAccepted  FriendRequestStatus = "accepted"
	FriendRequestBlocked   FriendRequestStatus = "block"
	FriendRequestUnblocked FriendRequestStatus = "unblock"
)

// FriendRequest is the edge between two users in the friendship graph.
type FriendRequest struct {
	ID         uuid.UUID
	SenderID   string
	ReceiverID string
	Status     FriendRequestStatus
	CreatedAt  time.Time
	UpdatedAt  time.Time
}
