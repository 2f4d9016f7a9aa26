package services

import (
	"fmt"
	"log/slog"
	"testing"
	"time"

	"chat-relay/domain"
	"chat-relay/errors"
	"chat-relay/mocks"

	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

func TestChatService_SendMessage_Enriches_Both_Parties(t *testing.T) {
	req := require.New(t)
	ctrl := gomock.NewController(t)
	messages := mocks.NewMockIMessageRepository(ctrl)
	users := mocks.NewMockIUserRepository(ctrl)
	service := NewChatService(slog.Default(), messages, users)

	// Given two known profiles
	var stored domain.Message
	messages.EXPECT().Store(gomock.Any()).DoAndReturn(func(message domain.Message) error {
		stored = message
		return nil
	})
	users.EXPECT().Get("alice").Return(domain.Profile{ID: "alice", Name: "Alice", Image: "alice.png"}, nil)
	users.EXPECT().Get("bob").Return(domain.Profile{ID: "bob", Name: "Bob", Image: "bob.png"}, nil)

	// When a message is sent
	enriched, err := service.SendMessage("alice", "bob", "hello")

	// Then the message is persisted unread and carries display fields
	req.NoError(err)
	req.Equal("alice", stored.SenderID)
	req.Equal("bob", stored.ReceiverID)
	req.Equal("hello", stored.Content)
	req.False(stored.Read)
	req.False(stored.CreatedAt.IsZero())
	req.Equal(stored.ID, enriched.ID)
	req.Equal("Alice", enriched.Sender.Name)
	req.Equal("bob.png", enriched.Receiver.Image)
}

func TestChatService_SendMessage_Store_Failure_Propagates(t *testing.T) {
	req := require.New(t)
	ctrl := gomock.NewController(t)
	messages := mocks.NewMockIMessageRepository(ctrl)
	users := mocks.NewMockIUserRepository(ctrl)
	service := NewChatService(slog.Default(), messages, users)

	storeErr := fmt.Errorf("disk full")
	messages.EXPECT().Store(gomock.Any()).Return(storeErr)

	_, err := service.SendMessage("alice", "bob", "hello")

	req.ErrorIs(err, storeErr)
}

func TestChatService_SendMessage_Missing_Profile_Degrades_To_Bare_Ref(t *testing.T) {
	req := require.New(t)
	ctrl := gomock.NewController(t)
	messages := mocks.NewMockIMessageRepository(ctrl)
	users := mocks.NewMockIUserRepository(ctrl)
	service := NewChatService(slog.Default(), messages, users)

	messages.EXPECT().Store(gomock.Any()).Return(nil)
	users.EXPECT().Get("alice").Return(domain.Profile{ID: "alice", Name: "Alice"}, nil)
	users.EXPECT().Get("ghost").Return(domain.Profile{}, errors.ErrUserNotFound)

	// Enrichment must never fail a send
	enriched, err := service.SendMessage("alice", "ghost", "anyone there")

	req.NoError(err)
	req.Equal(domain.UserRef{ID: "ghost"}, enriched.Receiver)
	req.Equal("Alice", enriched.Sender.Name)
}

func TestChatService_MarkRead_Delegates_To_The_Repository(t *testing.T) {
	req := require.New(t)
	ctrl := gomock.NewController(t)
	messages := mocks.NewMockIMessageRepository(ctrl)
	users := mocks.NewMockIUserRepository(ctrl)
	service := NewChatService(slog.Default(), messages, users)

	messages.EXPECT().MarkRead("alice", "bob", gomock.Any()).Return(3, nil)

	updated, err := service.MarkRead("alice", "bob")

	req.NoError(err)
	req.Equal(3, updated)
}

func TestChatService_Presence_Transitions(t *testing.T) {
	req := require.New(t)
	ctrl := gomock.NewController(t)
	messages := mocks.NewMockIMessageRepository(ctrl)
	users := mocks.NewMockIUserRepository(ctrl)
	service := NewChatService(slog.Default(), messages, users)

	t.Run("online clears nothing but the flag", func(t *testing.T) {
		users.EXPECT().SetPresence("alice", true, nil).Return(nil)
		req.NoError(service.SetOnline("alice"))
	})

	t.Run("offline stamps last seen", func(t *testing.T) {
		users.EXPECT().SetPresence("alice", false, gomock.Not(gomock.Nil())).Return(nil)
		req.NoError(service.SetOffline("alice", time.Now().UTC()))
	})
}
