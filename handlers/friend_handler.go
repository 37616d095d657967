package handlers

import (
	"net/http"

	"hangouts-server/middleware"
	"hangouts-server/models"
	"hangouts-server/services"
	"hangouts-server/utils/errors"
)

// FriendHandler serves the friendship endpoints. Every route runs behind
// RequireSession; the session user is always the acting side.
type FriendHandler struct {
	friendService *services.FriendService
}

type addFriendResponse struct {
	Message string                  `json:"message"`
	Status  models.FriendshipStatus `json:"status"`
	Friend  models.UserSummary      `json:"friend"`
}

type friendsResponse struct {
	Friends []models.UserSummary `json:"friends"`
}

type requestsResponse struct {
	Requests []models.UserSummary `json:"requests"`
}

func NewFriendHandler(friendService *services.FriendService) *FriendHandler {
	return &FriendHandler{friendService: friendService}
}

func (h *FriendHandler) AddFriend(w http.ResponseWriter, r *http.Request) {
	var input struct {
		FriendEmail string `json:"friend_email"`
	}
	if !decodeJSON(w, r, &input, false) {
		return
	}

	userID := middleware.UserIDFromContext(r.Context())
	friend, status, err := h.friendService.RequestByEmail(r.Context(), userID, input.FriendEmail)
	if err != nil {
		middleware.WriteError(w, err)
		return
	}

	message := "Friend request sent to " + friend.Username
	if status == models.FriendshipAccepted {
		message = "You are now friends with " + friend.Username
	}
	writeJSON(w, http.StatusCreated, addFriendResponse{Message: message, Status: status, Friend: friend.Summary()})
}

func (h *FriendHandler) ListFriends(w http.ResponseWriter, r *http.Request) {
	friends, err := h.friendService.ListFriends(r.Context(), middleware.UserIDFromContext(r.Context()))
	if err != nil {
		middleware.WriteError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, friendsResponse{Friends: friends})
}

func (h *FriendHandler) ListRequests(w http.ResponseWriter, r *http.Request) {
	requests, err := h.friendService.ListIncomingRequests(r.Context(), middleware.UserIDFromContext(r.Context()))
	if err != nil {
		middleware.WriteError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, requestsResponse{Requests: requests})
}

// requesterFromBody reads the user_id of the requesting side from the body.
func requesterFromBody(w http.ResponseWriter, r *http.Request) (string, bool) {
	var input struct {
		UserID string `json:"user_id"`
	}
	if !decodeJSON(w, r, &input, false) {
		return "", false
	}
	if input.UserID == "" {
		middleware.WriteError(w, errors.Invalid("user_id required"))
		return "", false
	}
	return input.UserID, true
}

func (h *FriendHandler) AcceptRequest(w http.ResponseWriter, r *http.Request) {
	requester, ok := requesterFromBody(w, r)
	if !ok {
		return
	}
	if err := h.friendService.Accept(r.Context(), requester, middleware.UserIDFromContext(r.Context())); err != nil {
		middleware.WriteError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, messageResponse{Success: true, Message: "Friend request accepted"})
}

func (h *FriendHandler) RejectRequest(w http.ResponseWriter, r *http.Request) {
	requester, ok := requesterFromBody(w, r)
	if !ok {
		return
	}
	if err := h.friendService.Reject(r.Context(), requester, middleware.UserIDFromContext(r.Context())); err != nil {
		middleware.WriteError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, messageResponse{Success: true, Message: "Friend request rejected"})
}
