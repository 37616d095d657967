package handlers

import (
	"net/http"

	"hangouts-server/middleware"
	"hangouts-server/models"
	"hangouts-server/services"
	"hangouts-server/utils/errors"
)

// CookieConfig controls the session cookie.
type CookieConfig struct {
	Name   string
	Secure bool
}

type AuthHandler struct {
	userService    *services.UserService
	sessionService *services.SessionService
	cookie         CookieConfig
}

type authResponse struct {
	models.UserSummary
	Token string `json:"token"`
}

func NewAuthHandler(userService *services.UserService, sessionService *services.SessionService, cookie CookieConfig) *AuthHandler {
	return &AuthHandler{userService: userService, sessionService: sessionService, cookie: cookie}
}

func (h *AuthHandler) setSessionCookie(w http.ResponseWriter, session services.Session) {
	http.SetCookie(w, &http.Cookie{
		Name:     h.cookie.Name,
		Value:    session.Token,
		Path:     "/",
		MaxAge:   int(session.TTL.Seconds()),
		HttpOnly: true,
		Secure:   h.cookie.Secure,
		SameSite: http.SameSiteLaxMode,
	})
}

func (h *AuthHandler) clearSessionCookie(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     h.cookie.Name,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   h.cookie.Secure,
		SameSite: http.SameSiteLaxMode,
	})
}

func (h *AuthHandler) Signup(w http.ResponseWriter, r *http.Request) {
	var input struct {
		Username string `json:"username"`
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if !decodeJSON(w, r, &input, false) {
		return
	}

	user, err := h.userService.Signup(r.Context(), input.Username, input.Email, input.Password)
	if err != nil {
		middleware.WriteError(w, err)
		return
	}
	session, err := h.sessionService.Start(r.Context(), user.ID, false)
	if err != nil {
		middleware.WriteError(w, err)
		return
	}

	h.setSessionCookie(w, session)
	writeJSON(w, http.StatusCreated, authResponse{UserSummary: user.Summary(), Token: session.Token})
}

func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var input struct {
		Email    string `json:"email"`
		Password string `json:"password"`
		Remember bool   `json:"remember"`
	}
	if !decodeJSON(w, r, &input, false) {
		return
	}

	user, err := h.userService.Authenticate(r.Context(), input.Email, input.Password)
	if err != nil {
		middleware.WriteError(w, err)
		return
	}
	session, err := h.sessionService.Start(r.Context(), user.ID, input.Remember)
	if err != nil {
		middleware.WriteError(w, err)
		return
	}

	h.setSessionCookie(w, session)
	writeJSON(w, http.StatusOK, authResponse{UserSummary: user.Summary(), Token: session.Token})
}

// Logout must run behind RequireSession.
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	session, ok := middleware.SessionFromContext(r.Context())
	if !ok {
		middleware.WriteError(w, errors.ErrUnauthorized)
		return
	}
	if err := h.sessionService.End(r.Context(), session.ID); err != nil {
		middleware.WriteError(w, err)
		return
	}
	h.clearSessionCookie(w)
	writeJSON(w, http.StatusOK, messageResponse{Success: true, Message: "Logged out"})
}
