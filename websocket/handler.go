package websocket

import (
	"log/slog"
	"net/http"

	"chat-relay/contract"
	"chat-relay/observability"
	"chat-relay/router"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

// Handler upgrades an authenticated request to a live connection. A request
// without a resolvable session is rejected before the upgrade, so no
// handler ever runs on an unauthenticated socket.
func Handler(log *slog.Logger, resolver contract.ISessionResolver, r *router.Router, monitoring *observability.Manager) http.HandlerFunc {
	return func(w http.ResponseWriter, req *http.Request) {
		// Browser websocket clients cannot set Authorization headers;
		// accept the token as a query parameter too.
		if token := req.URL.Query().Get("token"); token != "" && req.Header.Get("Authorization") == "" {
			req.Header.Set("Authorization", "Bearer "+token)
		}

		identity, err := resolver.Resolve(req.Header)
		if err != nil {
			monitoring.IncrAuthRejected()
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}

		ws, err := upgrader.Upgrade(w, req, nil)
		if err != nil {
			log.Error("upgrade error", "error", err)
			return
		}

		var sess *router.Session
		conn := NewConn(uuid.New().String(), ws, log,
			func(data []byte) { r.Dispatch(sess, data) },
			func() { r.Disconnect(sess) },
			monitoring.IncrDropped,
		)
		// Registration happens before the pumps start, so the session is
		// set before any frame can arrive.
		sess = r.Connect(identity, conn)
		conn.Start()
	}
}
