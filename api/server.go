// Package api is the request/response surface around the real-time core:
// profile reads, conversation history, friend-request CRUD, and operator
// endpoints. Every /api route authenticates through the same session
// resolver as the websocket handshake.
package api

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"chat-relay/contract"
	"chat-relay/observability"
	"chat-relay/repositories"

	"github.com/go-playground/validator/v10"
	"github.com/julienschmidt/httprouter"
)

type Server struct {
	log        *slog.Logger
	resolver   contract.ISessionResolver
	users      repositories.IUserRepository
	messages   repositories.IMessageRepository
	friends    repositories.IFriendRepository
	monitoring *observability.Manager
	validate   *validator.Validate
}

func NewServer(log *slog.Logger, resolver contract.ISessionResolver,
	users repositories.IUserRepository, messages repositories.IMessageRepository,
	friends repositories.IFriendRepository, monitoring *observability.Manager) *Server {
	return &Server{
		log:        log,
		resolver:   resolver,
		users:      users,
		messages:   messages,
		friends:    friends,
		monitoring: monitoring,
		validate:   validator.New(),
	}
}

// Routes wires all endpoints; the websocket handler is mounted alongside
// so one http.Server serves both surfaces.
func (s *Server) Routes(wsHandler http.HandlerFunc) http.Handler {
	r := httprouter.New()

	r.HandlerFunc(http.MethodGet, "/health", s.health)
	r.HandlerFunc(http.MethodGet, "/stats", s.stats)
	r.HandlerFunc(http.MethodGet, "/ws", wsHandler)

	r.GET("/api/users", s.authenticated(s.listUsers))
	r.GET("/api/users/:id", s.authenticated(s.getUser))
	r.GET("/api/search", s.authenticated(s.searchUsers))
	r.GET("/api/messages/:userId", s.authenticated(s.conversation))
	r.POST("/api/messages/mark-read/:userId", s.authenticated(s.markRead))
	r.GET("/api/friends", s.authenticated(s.listFriends))
	r.GET("/api/friend-requests", s.authenticated(s.listFriendRequests))
	r.POST("/api/friend-requests", s.authenticated(s.createFriendRequest))
	r.PATCH("/api/friend-requests/:id", s.authenticated(s.handleFriendRequest))

	return r
}

// authHandle is an httprouter handle with the resolved identity bound.
type authHandle func(w http.ResponseWriter, req *http.Request, ps httprouter.Params, identity string)

func (s *Server) authenticated(next authHandle) httprouter.Handle {
	return func(w http.ResponseWriter, req *http.Request, ps httprouter.Params) {
		identity, err := s.resolver.Resolve(req.Header)
		if err != nil {
			writeError(w, http.StatusUnauthorized, "Unauthorized")
			return
		}
		next(w, req, ps, identity)
	}
}

func (s *Server) health(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) stats(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, s.monitoring.Latest())
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, code int, message string) {
	writeJSON(w, code, map[string]string{"message": message})
}
