package api

import (
	"encoding/json"
	stderrors "errors"
	"net/http"
	"time"

	"chat-relay/domain"
	"chat-relay/errors"

	"github.com/google/uuid"
	"github.com/julienschmidt/httprouter"
)

type createFriendRequestBody struct {
	ReceiverID string `json:"receiverId" validate:"required"`
}

type friendRequestResponse struct {
	ID      string `json:"id"`
	Status  string `json:"status"`
	Message string `json:"message"`
}

// createFriendRequest is idempotent: sending to someone with an existing
// request echoes the current status instead of duplicating the edge.
func (s *Server) createFriendRequest(w http.ResponseWriter, req *http.Request, _ httprouter.Params, identity string) {
	var body createFriendRequestBody
	if err := json.NewDecoder(req.Body).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := s.validate.Struct(body); err != nil {
		writeError(w, http.StatusBadRequest, "receiverId is required")
		return
	}

	request, created, err := s.friends.GetOrCreateRequest(identity, body.ReceiverID)
	if err != nil {
		s.log.Error("failed to create friend request", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to create friend request")
		return
	}

	message := "Friend request already sent"
	if created {
		message = "Friend request sent successfully"
	}
	writeJSON(w, http.StatusOK, friendRequestResponse{
		ID:      request.ID.String(),
		Status:  string(request.Status),
		Message: message,
	})
}

// listFriends returns the caller's friends as profiles. An edge whose
// profile has since disappeared is skipped rather than failing the list.
func (s *Server) listFriends(w http.ResponseWriter, _ *http.Request, _ httprouter.Params, identity string) {
	friends, err := s.friends.FriendsOf(identity)
	if err != nil {
		s.log.Error("failed to list friends", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to list friends")
		return
	}

	profiles := make([]profileResponse, 0, len(friends))
	for _, friendID := range friends {
		profile, err := s.users.Get(friendID)
		if stderrors.Is(err, errors.ErrUserNotFound) {
			continue
		}
		if err != nil {
			s.log.Error("failed to load friend profile", "friend", friendID, "error", err)
			writeError(w, http.StatusInternalServerError, "failed to list friends")
			return
		}
		profiles = append(profiles, toProfileResponse(profile))
	}
	writeJSON(w, http.StatusOK, profiles)
}

type pendingRequestResponse struct {
	ID        string          `json:"id"`
	Sender    profileResponse `json:"sender"`
	Status    string          `json:"status"`
	CreatedAt time.Time       `json:"createdAt"`
}

// listFriendRequests returns the pending requests addressed to the caller,
// each with the sender's display fields. A sender without a profile
// degrades to a bare id.
func (s *Server) listFriendRequests(w http.ResponseWriter, _ *http.Request, _ httprouter.Params, identity string) {
	pending, err := s.friends.PendingFor(identity)
	if err != nil {
		s.log.Error("failed to list friend requests", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to list friend requests")
		return
	}

	responses := make([]pendingRequestResponse, 0, len(pending))
	for _, request := range pending {
		sender := profileResponse{ID: request.SenderID}
		if profile, err := s.users.Get(request.SenderID); err == nil {
			sender = toProfileResponse(profile)
		}
		responses = append(responses, pendingRequestResponse{
			ID:        request.ID.String(),
			Sender:    sender,
			Status:    string(request.Status),
			CreatedAt: request.CreatedAt,
		})
	}
	writeJSON(w, http.StatusOK, responses)
}

type friendRequestActionBody struct {
	Action string `json:"action" validate:"required"`
}

// handleFriendRequest applies one of accept, reject, cancel, unfriend,
// block, unblock to an existing request.
func (s *Server) handleFriendRequest(w http.ResponseWriter, req *http.Request, ps httprouter.Params, _ string) {
	requestID, err := uuid.Parse(ps.ByName("id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid request id")
		return
	}

	var body friendRequestActionBody
	if err := json.NewDecoder(req.Body).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	request, err := s.friends.GetRequest(requestID)
	if stderrors.Is(err, errors.ErrRequestNotFound) {
		writeError(w, http.StatusNotFound, "Friend request not found")
		return
	}
	if err != nil {
		s.log.Error("failed to load friend request", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to load friend request")
		return
	}

	switch body.Action {
	case "accept":
		if _, err = s.friends.UpdateStatus(requestID, domain.FriendRequestAccepted); err == nil {
			err = s.friends.AddEdge(request.SenderID, request.ReceiverID)
		}
		s.finishAction(w, err, "Friend request accepted")
	case "reject":
		s.finishAction(w, s.friends.DeleteRequest(requestID), "Friend request rejected")
	case "cancel":
		s.finishAction(w, s.friends.DeleteRequest(requestID), "Friend request canceled")
	case "unfriend":
		if err = s.friends.RemoveEdge(request.SenderID, request.ReceiverID); err == nil {
			err = s.friends.DeleteRequest(requestID)
		}
		s.finishAction(w, err, "Unfriended successfully")
	case "block":
		_, err = s.friends.UpdateStatus(requestID, domain.FriendRequestBlocked)
		s.finishAction(w, err, "Blocked successfully")
	case "unblock":
		_, err = s.friends.UpdateStatus(requestID, domain.FriendRequestUnblocked)
		s.finishAction(w, err, "Unblocked successfully")
	default:
		writeError(w, http.StatusBadRequest, "Invalid action value")
	}
}

func (s *Server) finishAction(w http.ResponseWriter, err error, message string) {
	if err != nil {
		s.log.Error("friend request action failed", "error", err)
		writeError(w, http.StatusInternalServerError, "friend request action failed")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": message})
}
