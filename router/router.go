// Package router dispatches inbound real-time events to their handlers
// and drives the per-connection lifecycle:
// Connecting -> Authenticated -> (handling events)* -> Disconnected.
// A reconnect is a brand-new lifecycle, never a resumed one.
package router

import (
	"encoding/json"
	"log/slog"

	"chat-relay/contract"
	"chat-relay/observability"
	"chat-relay/services"

	"github.com/go-playground/validator/v10"
)

// Session is the authenticated state of one connection. The identity is
// immutable for the connection's lifetime.
type Session struct {
	Identity string
	ConnID   string
	Conn     contract.Connection
}

type Router struct {
	log        *slog.Logger
	hub        contract.IMultiplexer
	registry   contract.IRegistry
	chat       services.IChatService
	validate   *validator.Validate
	monitoring *observability.Manager
}

func NewRouter(log *slog.Logger, hub contract.IMultiplexer, registry contract.IRegistry,
	chat services.IChatService, monitoring *observability.Manager) *Router {
	return &Router{
		log:        log,
		hub:        hub,
		registry:   registry,
		chat:       chat,
		validate:   validator.New(),
		monitoring: monitoring,
	}
}

// Connect registers an authenticated connection: it joins the identity's
// channel, claims the presence entry, broadcasts the updated roster to
// everyone and hands the current roster to the new connection.
func (r *Router) Connect(identity string, conn contract.Connection) *Session {
	sess := &Session{Identity: identity, ConnID: conn.ID(), Conn: conn}

	r.hub.Join(identity, conn.ID(), conn)
	roster, replaced := r.registry.Register(identity, conn.ID())
	if replaced {
		// Last writer wins; the displaced connection keeps draining until
		// its transport closes but no longer owns the presence entry.
		r.log.Debug("presence entry overwritten by new session", "user", identity, "connId", conn.ID())
	}
	r.monitoring.IncrConnections()

	// Presence is advisory, so a failed profile update never rejects the
	// connection.
	if err := r.chat.SetOnline(identity); err != nil {
		r.log.Warn("failed to persist online flag", "user", identity, "error", err)
	}

	r.hub.Broadcast(EventUsersOnline, roster)
	if err := conn.Emit(EventOnlineUsers, roster); err != nil {
		r.log.Debug("failed to emit roster to new connection", "user", identity, "error", err)
	}

	r.log.Info("user connected", "user", identity, "connId", conn.ID())
	return sess
}

// Dispatch decodes one inbound frame and routes it to the matching
// handler. Malformed frames and unknown events are protocol noise:
// dropped, connection stays open.
func (r *Router) Dispatch(sess *Session, raw []byte) {
	var env Envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		r.log.Debug("malformed frame dropped", "user", sess.Identity, "error", err)
		return
	}

	switch env.Event {
	case EventPrivateMessage:
		var payload PrivateMessagePayload
		if err := json.Unmarshal(env.Data, &payload); err != nil {
			r.ack(sess, env.ID, AckPayload{Delivered: false, Error: "missing receiverId or message"})
			return
		}
		r.handleSendMessage(sess, env.ID, payload)
	case EventTyping:
		var payload TypingPayload
		if err := json.Unmarshal(env.Data, &payload); err != nil {
			return
		}
		r.handleTyping(sess, payload)
	case EventMarkRead:
		var payload MarkReadPayload
		if err := json.Unmarshal(env.Data, &payload); err != nil {
			return
		}
		r.handleMarkRead(sess, payload)
	default:
		r.log.Debug("unknown event dropped", "user", sess.Identity, "event", env.Event)
	}
}

// ack resolves the caller's acknowledgement. Each handler path calls it at
// most once per invocation.
func (r *Router) ack(sess *Session, id *int64, payload AckPayload) {
	payload.ID = id
	if err := sess.Conn.Emit(EventAck, payload); err != nil {
		r.log.Debug("ack not deliverable", "user", sess.Identity, "error", err)
	}
}
