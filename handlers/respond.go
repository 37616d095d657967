package handlers

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"hangouts-server/middleware"
	apierrors "hangouts-server/utils/errors"
)

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(body)
}

type messageResponse struct {
	Success bool   `json:"success,omitempty"`
	Message string `json:"message"`
}

// decodeJSON reads the request body into dst. An empty body is accepted when
// allowEmpty is set, leaving dst untouched.
func decodeJSON(w http.ResponseWriter, r *http.Request, dst any, allowEmpty bool) bool {
	err := json.NewDecoder(r.Body).Decode(dst)
	if err == nil || (allowEmpty && errors.Is(err, io.EOF)) {
		return true
	}
	middleware.WriteError(w, apierrors.ErrInvalidInput)
	return false
}

// callerID is the session user when there is one, otherwise the id the
// client sent explicitly.
func callerID(r *http.Request, explicit string) string {
	if id := middleware.UserIDFromContext(r.Context()); id != "" {
		return id
	}
	return explicit
}
