package handlers

import (
	"context"
	"net/http"

	"github.com/pocketbase/pocketbase/core"

	"pipepricing/services"
)

type contextKey string

const SessionIDKey contextKey = "sessionID"

// SessionCookie holds the calculator session id.
const SessionCookie = "pipe_session"

// GetSessionID extracts the session id stored by SessionMiddleware.
func GetSessionID(r *http.Request) string {
	if val, ok := r.Context().Value(SessionIDKey).(string); ok {
		return val
	}
	return ""
}

// SessionMiddleware makes sure every request carries a live calculator
// session, issuing a new cookie when the old one is missing or expired.
func SessionMiddleware(sessions *services.SessionStore) func(e *core.RequestEvent) error {
	return func(e *core.RequestEvent) error {
		ensureSession(e, sessions)
		return e.Next()
	}
}

// ensureSession returns the request's session id, creating the session when
// needed and storing the id in the request context.
func ensureSession(e *core.RequestEvent, sessions *services.SessionStore) string {
	if id := GetSessionID(e.Request); id != "" {
		return id
	}

	var current string
	if cookie, err := e.Request.Cookie(SessionCookie); err == nil {
		current = cookie.Value
	}

	id := sessions.Ensure(current)
	if id != current {
		http.SetCookie(e.Response, &http.Cookie{
			Name:     SessionCookie,
			Value:    id,
			Path:     "/",
			HttpOnly: true,
			SameSite: http.SameSiteLaxMode,
		})
	}

	ctx := context.WithValue(e.Request.Context(), SessionIDKey, id)
	e.Request = e.Request.WithContext(ctx)
	return id
}
