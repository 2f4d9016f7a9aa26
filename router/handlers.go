package router

import "time"

// handleSendMessage validates, persists, enriches, fans out, self-echoes
// and acknowledges, in that order. Durability comes first: live delivery
// to the receiver is best-effort and may silently miss, the stored copy
// cannot.
func (r *Router) handleSendMessage(sess *Session, ackID *int64, payload PrivateMessagePayload) {
	if err := r.validate.Struct(payload); err != nil {
		r.ack(sess, ackID, AckPayload{Delivered: false, Error: "missing receiverId or message"})
		return
	}

	enriched, err := r.chat.SendMessage(sess.Identity, payload.ReceiverID, payload.Message)
	if err != nil {
		r.ack(sess, ackID, AckPayload{Delivered: false, Error: err.Error()})
		return
	}

	wire := WireMessage{
		ID:        enriched.ID.String(),
		Sender:    WireUser{ID: enriched.Sender.ID, Name: enriched.Sender.Name, Image: enriched.Sender.Image},
		Receiver:  WireUser{ID: enriched.Receiver.ID, Name: enriched.Receiver.Name, Image: enriched.Receiver.Image},
		Content:   enriched.Content,
		Read:      enriched.Read,
		ReadAt:    enriched.ReadAt,
		CreatedAt: enriched.CreatedAt,
	}

	r.hub.EmitTo(payload.ReceiverID, EventPrivateMessage, MessagePayload{Message: wire})

	// Self-echo of the authoritative stored copy, regardless of the
	// receiver's online state.
	if err := sess.Conn.Emit(EventMessageSent, MessagePayload{Message: wire}); err != nil {
		r.log.Debug("self-echo not deliverable", "user", sess.Identity, "error", err)
	}

	r.ack(sess, ackID, AckPayload{Delivered: true, MessageID: wire.ID})
	r.monitoring.IncrMessages()
}

// handleTyping is a stateless relay: nothing stored, nothing acknowledged.
// A signal without a receiver is dropped.
func (r *Router) handleTyping(sess *Session, payload TypingPayload) {
	if payload.ReceiverID == "" {
		return
	}
	r.hub.EmitTo(payload.ReceiverID, EventUserTyping, TypingNotice{
		UserID:   sess.Identity,
		IsTyping: payload.IsTyping,
	})
	r.monitoring.IncrTyping()
}

// handleMarkRead bulk-updates unread messages from senderId to the acting
// user and notifies the original sender. A persistence failure surfaces as
// an error event on the acting connection; the connection stays open.
func (r *Router) handleMarkRead(sess *Session, payload MarkReadPayload) {
	if payload.SenderID == "" {
		return
	}

	if _, err := r.chat.MarkRead(payload.SenderID, sess.Identity); err != nil {
		if emitErr := sess.Conn.Emit(EventError, ErrorPayload{Message: err.Error()}); emitErr != nil {
			r.log.Debug("error event not deliverable", "user", sess.Identity, "error", emitErr)
		}
		return
	}

	// Notified even when zero rows changed: the sender's view converges
	// either way.
	r.hub.EmitTo(payload.SenderID, EventMessagesRead, ReadNotice{ReadBy: sess.Identity})
	r.monitoring.IncrReadReceipts()
}

// Disconnect runs the cleanup sequence for a closed transport. Every step
// runs even if an earlier one fails: nothing can retry on a connection
// that is already gone.
func (r *Router) Disconnect(sess *Session) {
	r.hub.Leave(sess.Identity, sess.ConnID)

	removed, roster := r.registry.Deregister(sess.Identity, sess.ConnID)
	if !removed {
		// A stale disconnect: the identity was never registered under this
		// connection anymore (displaced by a newer session, or a duplicate
		// close). The user is not offline, so nothing is broadcast.
		r.log.Debug("stale disconnect ignored by registry", "user", sess.Identity, "connId", sess.ConnID)
		return
	}

	if err := r.chat.SetOffline(sess.Identity, time.Now().UTC()); err != nil {
		r.log.Warn("failed to persist offline state", "user", sess.Identity, "error", err)
	}

	r.hub.Broadcast(EventUsersOnline, roster)
	r.hub.Broadcast(EventUserOffline, OfflineNotice{UserID: sess.Identity})

	r.log.Info("user disconnected", "user", sess.Identity, "connId", sess.ConnID)
}
