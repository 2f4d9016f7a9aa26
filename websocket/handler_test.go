package websocket

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"chat-relay/auth"
	"chat-relay/domain"
	"chat-relay/hub"
	"chat-relay/mocks"
	"chat-relay/observability"
	"chat-relay/presence"
	"chat-relay/router"
	"chat-relay/services"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

var wsSessionKey = []byte("2221172b9e2ba5f10ada73726e7461c2")

func newTestHandler(t *testing.T) (*httptest.Server, *mocks.MockIChatService) {
	t.Helper()
	ctrl := gomock.NewController(t)
	chat := mocks.NewMockIChatService(ctrl)
	log := slog.Default()
	monitoring := observability.NewManager(log)
	r := router.NewRouter(log, hub.New(log), presence.NewRegistry(), chat, monitoring)
	ts := httptest.NewServer(Handler(log, services.NewSessionResolver(wsSessionKey), r, monitoring))
	t.Cleanup(ts.Close)
	return ts, chat
}

func wsURL(ts *httptest.Server, identity string, t *testing.T) string {
	t.Helper()
	token, err := auth.GenerateToken(identity, wsSessionKey, time.Hour)
	require.NoError(t, err)
	return "ws" + strings.TrimPrefix(ts.URL, "http") + "/?token=" + token
}

// readEvent reads frames until the named event arrives or the read
// deadline fires.
func readEvent(t *testing.T, conn *websocket.Conn, event string) json.RawMessage {
	t.Helper()
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	for {
		var frame struct {
			Event string          `json:"event"`
			Data  json.RawMessage `json:"data"`
		}
		require.NoError(t, conn.ReadJSON(&frame))
		if frame.Event == event {
			return frame.Data
		}
	}
}

func TestHandler_Rejects_Unauthenticated_Upgrade(t *testing.T) {
	req := require.New(t)
	ts, _ := newTestHandler(t)

	_, resp, err := websocket.DefaultDialer.Dial("ws"+strings.TrimPrefix(ts.URL, "http"), nil)

	req.Error(err)
	req.Equal(http.StatusUnauthorized, resp.StatusCode)
}

func TestHandler_Connect_Delivers_The_Roster(t *testing.T) {
	req := require.New(t)
	ts, chat := newTestHandler(t)
	chat.EXPECT().SetOnline("alice").Return(nil)
	chat.EXPECT().SetOffline("alice", gomock.Any()).Return(nil).AnyTimes()

	conn, _, err := websocket.DefaultDialer.Dial(wsURL(ts, "alice", t), nil)
	req.NoError(err)
	defer conn.Close()

	data := readEvent(t, conn, "online_users")
	var roster []string
	req.NoError(json.Unmarshal(data, &roster))
	req.Equal([]string{"alice"}, roster)
}

func TestHandler_Message_Round_Trip(t *testing.T) {
	req := require.New(t)
	ts, chat := newTestHandler(t)
	chat.EXPECT().SetOnline(gomock.Any()).Return(nil).Times(2)
	chat.EXPECT().SetOffline(gomock.Any(), gomock.Any()).Return(nil).AnyTimes()

	alice, _, err := websocket.DefaultDialer.Dial(wsURL(ts, "alice", t), nil)
	req.NoError(err)
	defer alice.Close()
	bob, _, err := websocket.DefaultDialer.Dial(wsURL(ts, "bob", t), nil)
	req.NoError(err)
	defer bob.Close()
	readEvent(t, alice, "online_users")
	readEvent(t, bob, "online_users")

	messageID := uuid.New()
	chat.EXPECT().SendMessage("alice", "bob", "hello bob").Return(domain.EnrichedMessage{
		Message: domain.Message{
			ID:         messageID,
			SenderID:   "alice",
			ReceiverID: "bob",
			Content:    "hello bob",
			CreatedAt:  time.Now().UTC(),
		},
		Sender:   domain.UserRef{ID: "alice", Name: "Alice"},
		Receiver: domain.UserRef{ID: "bob", Name: "Bob"},
	}, nil)

	// When alice sends a private message over the socket
	req.NoError(alice.WriteJSON(map[string]any{
		"event": "private_message",
		"id":    1,
		"data":  map[string]string{"receiverId": "bob", "message": "hello bob"},
	}))

	// Then bob receives it
	data := readEvent(t, bob, "private_message")
	var incoming struct {
		Message struct {
			ID      string `json:"id"`
			Content string `json:"content"`
			Sender  struct {
				Name string `json:"name"`
			} `json:"sender"`
		} `json:"message"`
	}
	req.NoError(json.Unmarshal(data, &incoming))
	req.Equal(messageID.String(), incoming.Message.ID)
	req.Equal("hello bob", incoming.Message.Content)
	req.Equal("Alice", incoming.Message.Sender.Name)

	// And alice gets the acknowledgement with her correlation id
	ackData := readEvent(t, alice, "ack")
	var ack struct {
		ID        int64  `json:"id"`
		Delivered bool   `json:"delivered"`
		MessageID string `json:"messageId"`
	}
	req.NoError(json.Unmarshal(ackData, &ack))
	req.True(ack.Delivered)
	req.Equal(int64(1), ack.ID)
	req.Equal(messageID.String(), ack.MessageID)
}

func TestHandler_Disconnect_Broadcasts_Offline(t *testing.T) {
	req := require.New(t)
	ts, chat := newTestHandler(t)
	chat.EXPECT().SetOnline(gomock.Any()).Return(nil).Times(2)
	chat.EXPECT().SetOffline("alice", gomock.Any()).Return(nil)
	chat.EXPECT().SetOffline("bob", gomock.Any()).Return(nil).AnyTimes()

	alice, _, err := websocket.DefaultDialer.Dial(wsURL(ts, "alice", t), nil)
	req.NoError(err)
	bob, _, err := websocket.DefaultDialer.Dial(wsURL(ts, "bob", t), nil)
	req.NoError(err)
	defer bob.Close()
	readEvent(t, bob, "online_users")

	// When alice's transport closes
	req.NoError(alice.Close())

	// Then bob learns she went offline
	data := readEvent(t, bob, "user_offline")
	var notice struct {
		UserID string `json:"userId"`
	}
	req.NoError(json.Unmarshal(data, &notice))
	req.Equal("alice", notice.UserID)
}
