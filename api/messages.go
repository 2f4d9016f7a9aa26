package api

import (
	"net/http"
	"time"

	"chat-relay/domain"

	"github.com/julienschmidt/httprouter"
	"github.com/samber/lo"
)

type messageResponse struct {
	ID        string     `json:"id"`
	Sender    string     `json:"sender"`
	Receiver  string     `json:"receiver"`
	Content   string     `json:"content"`
	Read      bool       `json:"read"`
	ReadAt    *time.Time `json:"readAt,omitempty"`
	CreatedAt time.Time  `json:"createdAt"`
}

type conversationResponse struct {
	Messages   []messageResponse `json:"messages"`
	NextCursor *string           `json:"nextCursor,omitempty"`
}

// markRead flips every unread message from the counterpart to the caller,
// the HTTP twin of the real-time mark_read event for clients catching up
// without an open socket. Idempotent; reports the number of updated
// messages.
func (s *Server) markRead(w http.ResponseWriter, _ *http.Request, ps httprouter.Params, identity string) {
	counterpart := ps.ByName("userId")

	updated, err := s.messages.MarkRead(counterpart, identity, time.Now().UTC())
	if err != nil {
		s.log.Error("mark read failed", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to mark messages as read")
		return
	}
	writeJSON(w, http.StatusOK, map[string]int{"updated": updated})
}

// conversation returns the message history between the caller and the
// counterpart, newest first, with an opaque cursor for the next page.
func (s *Server) conversation(w http.ResponseWriter, req *http.Request, ps httprouter.Params, identity string) {
	counterpart := ps.ByName("userId")

	var cursor *string
	if c := req.URL.Query().Get("cursor"); c != "" {
		cursor = &c
	}

	messages, next, err := s.messages.Conversation(identity, counterpart, cursor)
	if err != nil {
		s.log.Error("conversation query failed", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to load messages")
		return
	}

	writeJSON(w, http.StatusOK, conversationResponse{
		Messages: lo.Map(messages, func(m domain.Message, _ int) messageResponse {
			return messageResponse{
				ID:        m.ID.String(),
				Sender:    m.SenderID,
				Receiver:  m.ReceiverID,
				Content:   m.Content,
				Read:      m.Read,
				ReadAt:    m.ReadAt,
				CreatedAt: m.CreatedAt,
			}
		}),
		NextCursor: next,
	})
}
