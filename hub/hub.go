// Package hub multiplexes live connections into identity-named channels.
// Addressing a user means addressing their channel: every connection
// joined to it receives the event, which keeps room for multi-connection
// fan-out even while the presence registry tracks a single session.
package hub

import (
	"log/slog"
	"sync"

	"chat-relay/contract"
)

type channel struct {
	mu    sync.RWMutex
	sinks map[string]contract.EventSink // connection id -> sink
}

type Hub struct {
	mu       sync.RWMutex
	log      *slog.Logger
	channels map[string]*channel
}

func New(log *slog.Logger) *Hub {
	return &Hub{log: log, channels: make(map[string]*channel)}
}

func (h *Hub) Join(name, connID string, sink contract.EventSink) {
	h.mu.Lock()
	ch, exists := h.channels[name]
	if !exists {
		ch = &channel{sinks: make(map[string]contract.EventSink)}
		h.channels[name] = ch
	}
	h.mu.Unlock()

	ch.mu.Lock()
	ch.sinks[connID] = sink
	count := len(ch.sinks)
	ch.mu.Unlock()

	h.log.Debug("connection joined channel", "channel", name, "connId", connID, "members", count)
}

func (h *Hub) Leave(name, connID string) {
	h.mu.RLock()
	ch, exists := h.channels[name]
	h.mu.RUnlock()

	if !exists {
		return
	}

	ch.mu.Lock()
	delete(ch.sinks, connID)
	count := len(ch.sinks)
	ch.mu.Unlock()

	// No empty channel entries are left behind to leak over time.
	if count == 0 {
		h.mu.Lock()
		delete(h.channels, name)
		h.mu.Unlock()
	}
}

// EmitTo delivers an event to every connection joined to the named channel.
// Best-effort: with no members it is a silent no-op, and the return value
// only reports whether anyone was reachable.
func (h *Hub) EmitTo(name, event string, payload any) bool {
	h.mu.RLock()
	ch, exists := h.channels[name]
	h.mu.RUnlock()

	if !exists {
		return false
	}

	ch.mu.RLock()
	defer ch.mu.RUnlock()

	delivered := false
	for connID, sink := range ch.sinks {
		if err := sink.Emit(event, payload); err != nil {
			h.log.Debug("emit failed", "channel", name, "connId", connID, "event", event, "error", err)
			continue
		}
		delivered = true
	}
	return delivered
}

// Broadcast delivers an event to every connection in every channel.
func (h *Hub) Broadcast(event string, payload any) {
	h.mu.RLock()
	channels := make([]*channel, 0, len(h.channels))
	for _, ch := range h.channels {
		channels = append(channels, ch)
	}
	h.mu.RUnlock()

	for _, ch := range channels {
		ch.mu.RLock()
		for _, sink := range ch.sinks {
			if err := sink.Emit(event, payload); err != nil {
				h.log.Debug("broadcast emit failed", "event", event, "error", err)
			}
		}
		ch.mu.RUnlock()
	}
}

// Stats reports the current channel and connection counts.
func (h *Hub) Stats() (channels, connections int) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	channels = len(h.channels)
	for _, ch := range h.channels {
		ch.mu.RLock()
		connections += len(ch.sinks)
		ch.mu.RUnlock()
	}
	return channels, connections
}
