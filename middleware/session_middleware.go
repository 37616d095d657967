package middleware

import (
	"context"
	"net/http"
	"strings"

	"hangouts-server/services"
	"hangouts-server/utils/errors"
)

type contextKey string

const sessionContextKey contextKey = "session"

// SessionResolver turns a session token into a live session.
type SessionResolver interface {
	Resolve(ctx context.Context, token string) (services.Session, error)
}

// tokenFromRequest reads the session token from the session cookie, falling
// back to an Authorization: Bearer header.
func tokenFromRequest(r *http.Request, cookieName string) string {
	if c, err := r.Cookie(cookieName); err == nil && c.Value != "" {
		return c.Value
	}
	authHeader := r.Header.Get("Authorization")
	if strings.HasPrefix(authHeader, "Bearer ") {
		return strings.TrimPrefix(authHeader, "Bearer ")
	}
	return ""
}

// RequireSession rejects requests without a valid session. Preflight
// requests carry no credentials, so OPTIONS is answered here with 204 and
// never reaches next.
func RequireSession(resolver SessionResolver, cookieName string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.Method == http.MethodOptions {
				w.WriteHeader(http.StatusNoContent)
				return
			}
			token := tokenFromRequest(r, cookieName)
			if token == "" {
				WriteError(w, errors.ErrUnauthorized)
				return
			}
			session, err := resolver.Resolve(r.Context(), token)
			if err != nil {
				WriteError(w, err)
				return
			}
			next.ServeHTTP(w, r.WithContext(WithSession(r.Context(), session)))
		})
	}
}

// LoadSession attaches the session when the request carries a valid one and
// otherwise passes the request through unchanged.
func LoadSession(resolver SessionResolver, cookieName string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if token := tokenFromRequest(r, cookieName); token != "" {
				if session, err := resolver.Resolve(r.Context(), token); err == nil {
					r = r.WithContext(WithSession(r.Context(), session))
				}
			}
			next.ServeHTTP(w, r)
		})
	}
}

func WithSession(ctx context.Context, session services.Session) context.Context {
	return context.WithValue(ctx, sessionContextKey, session)
}

func SessionFromContext(ctx context.Context) (services.Session, bool) {
	session, ok := ctx.Value(sessionContextKey).(services.Session)
	return session, ok
}

// UserIDFromContext returns the session user, or "" when there is none.
func UserIDFromContext(ctx context.Context) string {
	session, _ := SessionFromContext(ctx)
	return session.UserID
}
