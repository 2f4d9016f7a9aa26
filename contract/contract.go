package contract

import (
	"context"
	"net/http"
	"reflect"
)

// EventSink is one direction of a live connection: named events pushed
// toward a single client. Delivery is best-effort; a sink whose buffer is
// full drops the event rather than blocking the caller.
type EventSink interface {
	Emit(event string, payload any) error
}

// Connection is a live transport-level channel owned by the multiplexer.
type Connection interface {
	EventSink
	ID() string
	Close() error
}

// IRegistry is the process-local source of truth for who is online.
// One entry per identity; a second session for the same identity overwrites
// the first (last writer wins).
type IRegistry interface {
	Register(identity, connID string) (roster []string, replaced bool)
	Deregister(identity, connID string) (removed bool, roster []string)
	IsOnline(identity string) bool
	Roster() []string
}

// IMultiplexer addresses connections through identity-named channels.
// "Send to identity X" means "deliver to every connection joined to
// channel X".
type IMultiplexer interface {
	Join(channel, connID string, sink EventSink)
	Leave(channel, connID string)
	EmitTo(channel, event string, payload any) bool
	Broadcast(event string, payload any)
}

// ISessionResolver turns connection handshake metadata into an
// authenticated identity, or an error when no session is resolvable.
type ISessionResolver interface {
	Resolve(header http.Header) (string, error)
}

type ISupervisor interface {
	Add(worker ...Worker) ISupervisor
	Run(ctx context.Context)
	Start(ctx context.Context, worker Worker)
}

// Worker doesn't protect itself; the supervisor owns restarts.
type Worker interface {
	Run(ctx context.Context) error
}

// GetWorkerName uses reflection to retrieve the type name of the worker.
// This is used for logging and supervision purposes during worker
// lifecycle events, avoiding manual naming in the Worker interface.
func GetWorkerName(w Worker) string {
	if w == nil {
		return "NilWorker"
	}
	t := reflect.TypeOf(w)
	for t.Kind() == reflect.Ptr {
		t = t.Elem()
	}
	return t.Name()
}
