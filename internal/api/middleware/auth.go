package middleware

import (
	"errors"
	"net/http"
	"strings"

	"github.com/agroscan/agroscan/internal/api/response"
	"github.com/agroscan/agroscan/internal/session"
)

// Auth provides session authentication middleware. Unauthenticated
// requests reach nothing beyond the login flow.
type Auth struct {
	sessions *session.Manager
}

// NewAuth creates a new Auth middleware.
func NewAuth(m *session.Manager) *Auth {
	return &Auth{sessions: m}
}

// Authenticate validates the Bearer token against the session store and
// sets user_name and token_prefix in the request context.
func (a *Auth) Authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		rawToken := extractBearerToken(r)
		if rawToken == "" {
			response.Error(w, http.StatusUnauthorized,
				"INVALID_TOKEN", "Missing or invalid Authorization header", nil)
			return
		}

		sess, err := a.sessions.Authenticate(r.Context(), rawToken)
		if errors.Is(err, session.ErrInvalidSession) {
			response.Error(w, http.StatusUnauthorized,
				"INVALID_TOKEN", "Invalid or expired session", nil)
			return
		}
		if err != nil {
			response.Error(w, http.StatusInternalServerError,
				"INTERNAL_ERROR", "Failed to validate session", nil)
			return
		}

		ctx := SetUserName(r.Context(), sess.UserName)
		ctx = setTokenPrefix(ctx, sess.TokenPrefix)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func extractBearerToken(r *http.Request) string {
	auth := r.Header.Get("Authorization")
	if auth == "" {
		return ""
	}
	parts := strings.SplitN(auth, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return ""
	}
	return strings.TrimSpace(parts[1])
}
