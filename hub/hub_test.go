package hub

import (
	"log/slog"
	"testing"

	"github.com/stretchr/testify/require"
)

type recordedEvent struct {
	event   string
	payload any
}

type fakeSink struct {
	events []recordedEvent
}

func (f *fakeSink) Emit(event string, payload any) error {
	f.events = append(f.events, recordedEvent{event: event, payload: payload})
	return nil
}

func TestHub_EmitTo_Delivers_To_Channel_Members(t *testing.T) {
	req := require.New(t)
	hub := New(slog.Default())
	sink := &fakeSink{}

	// Given a connection joined to a channel
	hub.Join("alice", "conn-1", sink)

	// When an event is emitted to that channel
	delivered := hub.EmitTo("alice", "private_message", "hello")

	// Then the sink receives it
	req.True(delivered)
	req.Len(sink.events, 1)
	req.Equal("private_message", sink.events[0].event)
	req.Equal("hello", sink.events[0].payload)
}

func TestHub_EmitTo_Missing_Channel_Is_A_NoOp(t *testing.T) {
	req := require.New(t)
	hub := New(slog.Default())

	delivered := hub.EmitTo("nobody", "private_message", "hello")

	req.False(delivered)
}

func TestHub_Broadcast_Reaches_Every_Connection_Once(t *testing.T) {
	req := require.New(t)
	hub := New(slog.Default())
	alice := &fakeSink{}
	bob := &fakeSink{}

	hub.Join("alice", "conn-1", alice)
	hub.Join("bob", "conn-2", bob)

	hub.Broadcast("users_online", []string{"alice", "bob"})

	req.Len(alice.events, 1)
	req.Len(bob.events, 1)
	req.Equal("users_online", alice.events[0].event)
}

func TestHub_Leave_Removes_Connection_And_Empty_Channel(t *testing.T) {
	req := require.New(t)
	hub := New(slog.Default())
	sink := &fakeSink{}

	hub.Join("alice", "conn-1", sink)
	hub.Leave("alice", "conn-1")

	delivered := hub.EmitTo("alice", "typing", nil)
	req.False(delivered)

	channels, connections := hub.Stats()
	req.Zero(channels)
	req.Zero(connections)
}

func TestHub_Stats_Counts_Channels_And_Connections(t *testing.T) {
	req := require.New(t)
	hub := New(slog.Default())

	hub.Join("alice", "conn-1", &fakeSink{})
	hub.Join("alice", "conn-2", &fakeSink{})
	hub.Join("bob", "conn-3", &fakeSink{})

	channels, connections := hub.Stats()
	req.Equal(2, channels)
	req.Equal(3, connections)
}
