//go:generate go run go.uber.org/mock/mockgen -source=chat_service.go -destination=../mocks/mock_chat_service.go -package=mocks
package services

import (
	stderrors "errors"
	"log/slog"
	"time"

	"chat-relay/domain"
	"chat-relay/errors"
	"chat-relay/repositories"

	"github.com/google/uuid"
)

type IChatService interface {
	SendMessage(senderID, receiverID, content string) (domain.EnrichedMessage, error)
	MarkRead(counterpartID, readerID string) (int, error)
	SetOnline(id string) error
	SetOffline(id string, lastSeen time.Time) error
}

// ChatService owns the durable side of the real-time handlers: persisting
// messages, reconciling read state, and flipping profile presence flags.
// Live delivery stays with the multiplexer; nothing here depends on whether
// a recipient is reachable.
type ChatService struct {
	log      *slog.Logger
	messages repositories.IMessageRepository
	users    repositories.IUserRepository
}

func NewChatService(log *slog.Logger, messages repositories.IMessageRepository, users repositories.IUserRepository) *ChatService {
	return &ChatService{log: log, messages: messages, users: users}
}

// SendMessage persists a new unread message and returns it enriched with
// the sender's and receiver's display fields. The store write is atomic per
// message: on failure nothing is persisted and the error propagates to the
// caller's acknowledgement.
func (s *ChatService) SendMessage(senderID, receiverID, content string) (domain.EnrichedMessage, error) {
	message := domain.Message{
		ID:         uuid.New(),
		SenderID:   senderID,
		ReceiverID: receiverID,
		Content:    content,
		Read:       false,
		CreatedAt:  time.Now().UTC(),
	}
	if err := s.messages.Store(message); err != nil {
		return domain.EnrichedMessage{}, err
	}
	return domain.EnrichedMessage{
		Message:  message,
		Sender:   s.userRef(senderID),
		Receiver: s.userRef(receiverID),
	}, nil
}

// MarkRead flips every unread message from counterpartID to readerID.
// Idempotent: a second call updates zero documents.
func (s *ChatService) MarkRead(counterpartID, readerID string) (int, error) {
	return s.messages.MarkRead(counterpartID, readerID, time.Now().UTC())
}

func (s *ChatService) SetOnline(id string) error {
	return s.users.SetPresence(id, true, nil)
}

func (s *ChatService) SetOffline(id string, lastSeen time.Time) error {
	return s.users.SetPresence(id, false, &lastSeen)
}

// userRef resolves display fields for enrichment. A missing profile
// degrades to a bare id reference; enrichment must never fail a send.
func (s *ChatService) userRef(id string) domain.UserRef {
	profile, err := s.users.Get(id)
	if err != nil {
		if !stderrors.Is(err, errors.ErrUserNotFound) {
			s.log.Warn("profile lookup failed during enrichment", "user", id, "error", err)
		}
		return domain.UserRef{ID: id}
	}
	return domain.UserRef{ID: profile.ID, Name: profile.Name, Image: profile.Image}
}
