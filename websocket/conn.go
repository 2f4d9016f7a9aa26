// Package websocket adapts a gorilla/websocket socket to the hub's
// EventSink contract: named JSON events out, raw frames in.
package websocket

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 8192
)

var ErrSendBufferFull = fmt.Errorf("send buffer full")

// envelope is the outbound frame shape: a named event with its payload.
type envelope struct {
	Event string `json:"event"`
	Data  any    `json:"data,omitempty"`
}

// Conn owns one live socket. A reader goroutine feeds inbound frames to
// onMessage in arrival order; a writer goroutine drains the buffered send
// channel so emitting never blocks a handler.
type Conn struct {
	id        string
	ws        *websocket.Conn
	send      chan []byte
	log       *slog.Logger
	onMessage func(data []byte)
	onClose   func()
	onDrop    func()
	closeOnce sync.Once
}

func NewConn(id string, ws *websocket.Conn, log *slog.Logger, onMessage func(data []byte), onClose, onDrop func()) *Conn {
	return &Conn{
		id:        id,
		ws:        ws,
		send:      make(chan []byte, 256),
		log:       log,
		onMessage: onMessage,
		onClose:   onClose,
		onDrop:    onDrop,
	}
}

func (c *Conn) ID() string { return c.id }

// Emit queues a named event for delivery. Best-effort: when the client
// cannot drain its buffer fast enough the event is dropped, not queued
// unboundedly and not blocked on.
func (c *Conn) Emit(event string, payload any) error {
	data, err := json.Marshal(envelope{Event: event, Data: payload})
	if err != nil {
		return err
	}
	select {
	case c.send <- data:
		return nil
	default:
		if c.onDrop != nil {
			c.onDrop()
		}
		return ErrSendBufferFull
	}
}

func (c *Conn) Close() error {
	var err error
	c.closeOnce.Do(func() {
		err = c.ws.Close()
	})
	return err
}

func (c *Conn) Start() {
	go c.writePump()
	go c.readPump()
}

func (c *Conn) readPump() {
	defer func() {
		c.onClose()
		c.Close()
	}()

	c.ws.SetReadLimit(maxMessageSize)
	c.ws.SetReadDeadline(time.Now().Add(pongWait))
	c.ws.SetPongHandler(func(string) error {
		c.ws.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		_, data, err := c.ws.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure, websocket.CloseAbnormalClosure) {
				c.log.Warn("read error", "connId", c.id, "error", err)
			}
			return
		}
		c.onMessage(data)
	}
}

func (c *Conn) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.Close()
	}()

	for {
		select {
		case data, ok := <-c.send:
			c.ws.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				c.ws.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.ws.WriteMessage(websocket.TextMessage, data); err != nil {
				return
			}
		case <-ticker.C:
			c.ws.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.ws.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
