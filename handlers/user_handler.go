package handlers

import (
	"net/http"

	"hangouts-server/middleware"
	"hangouts-server/services"
	"hangouts-server/utils/errors"
)

type UserHandler struct {
	userService *services.UserService
}

func NewUserHandler(userService *services.UserService) *UserHandler {
	return &UserHandler{userService: userService}
}

func (h *UserHandler) CurrentUser(w http.ResponseWriter, r *http.Request) {
	userID := middleware.UserIDFromContext(r.Context())
	if userID == "" {
		middleware.WriteError(w, errors.ErrUnauthorized)
		return
	}
	user, err := h.userService.GetUser(r.Context(), userID)
	if err != nil {
		middleware.WriteError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, user.Summary())
}

// SetPushToken stores the device token push notifications are sent to.
func (h *UserHandler) SetPushToken(w http.ResponseWriter, r *http.Request) {
	var input struct {
		UserID string `json:"user_id"`
		Token  string `json:"token"`
	}
	if !decodeJSON(w, r, &input, false) {
		return
	}

	userID := callerID(r, input.UserID)
	if err := h.userService.SetPushToken(r.Context(), userID, input.Token); err != nil {
		middleware.WriteError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, messageResponse{Success: true, Message: "Token saved"})
}
