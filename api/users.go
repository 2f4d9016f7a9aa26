package api

import (
	stderrors "errors"
	"net/http"
	"time"

	"chat-relay/domain"
	"chat-relay/errors"

	"github.com/julienschmidt/httprouter"
	"github.com/samber/lo"
)

type profileResponse struct {
	ID       string     `json:"id"`
	Name     string     `json:"name"`
	Email    string     `json:"email"`
	Image    string     `json:"image,omitempty"`
	IsOnline bool       `json:"isOnline"`
	LastSeen *time.Time `json:"lastSeen,omitempty"`
}

func toProfileResponse(p domain.Profile) profileResponse {
	return profileResponse{
		ID:       p.ID,
		Name:     p.Name,
		Email:    p.Email,
		Image:    p.Image,
		IsOnline: p.IsOnline,
		LastSeen: p.LastSeen,
	}
}

func (s *Server) listUsers(w http.ResponseWriter, _ *http.Request, _ httprouter.Params, _ string) {
	profiles, err := s.users.All()
	if err != nil {
		s.log.Error("failed to list users", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to list users")
		return
	}
	writeJSON(w, http.StatusOK, lo.Map(profiles, func(p domain.Profile, _ int) profileResponse {
		return toProfileResponse(p)
	}))
}

func (s *Server) getUser(w http.ResponseWriter, _ *http.Request, ps httprouter.Params, _ string) {
	profile, err := s.users.Get(ps.ByName("id"))
	if stderrors.Is(err, errors.ErrUserNotFound) {
		writeError(w, http.StatusNotFound, "User not found")
		return
	}
	if err != nil {
		s.log.Error("failed to load user", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to load user")
		return
	}
	writeJSON(w, http.StatusOK, toProfileResponse(profile))
}

// searchUsers matches profile names case-insensitively, excluding the
// caller from the results.
func (s *Server) searchUsers(w http.ResponseWriter, req *http.Request, _ httprouter.Params, identity string) {
	name := req.URL.Query().Get("name")
	if name == "" {
		writeError(w, http.StatusBadRequest, "Name query is required")
		return
	}
	profiles, err := s.users.SearchByName(name, identity)
	if err != nil {
		s.log.Error("user search failed", "error", err)
		writeError(w, http.StatusInternalServerError, "search failed")
		return
	}
	writeJSON(w, http.StatusOK, lo.Map(profiles, func(p domain.Profile, _ int) profileResponse {
		return toProfileResponse(p)
	}))
}
