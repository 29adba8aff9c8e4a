package handler

import (
	"encoding/json"
	"net/http"
	"strings"

	mw "github.com/agroscan/agroscan/internal/api/middleware"
	"github.com/agroscan/agroscan/internal/api/response"
	"github.com/agroscan/agroscan/internal/session"
)

// NewLoginHandler returns an http.HandlerFunc for POST /api/v1/login.
// Any non-empty display name is accepted; the session is the only state.
func NewLoginHandler(sessions *session.Manager) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			UserName string `json:"user_name"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			response.Error(w, http.StatusBadRequest, "INVALID_REQUEST", "Invalid JSON body", nil)
			return
		}

		req.UserName = strings.TrimSpace(req.UserName)
		if req.UserName == "" {
			response.Error(w, http.StatusBadRequest, "INVALID_REQUEST", "user_name is required", nil)
			return
		}

		token, err := sessions.Login(r.Context(), req.UserName)
		if err != nil {
			response.Error(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to create session", nil)
			return
		}

		response.Created(w, map[string]string{
			"token":     token,
			"user_name": req.UserName,
		})
	}
}

// NewLogoutHandler returns an http.HandlerFunc for POST /api/v1/logout.
// Logout is idempotent: revoking an already-dead session still succeeds.
func NewLogoutHandler(sessions *session.Manager) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		token := extractBearerToken(r)
		if token == "" {
			response.Error(w, http.StatusUnauthorized, "INVALID_TOKEN", "Missing or invalid Authorization header", nil)
			return
		}

		if err := sessions.Logout(r.Context(), token); err != nil {
			response.Error(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to revoke session", nil)
			return
		}

		response.JSON(w, map[string]bool{"logged_out": true})
	}
}

// NewMeHandler returns an http.HandlerFunc for GET /api/v1/me.
func NewMeHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userName, ok := mw.GetUserName(r)
		if !ok {
			response.Error(w, http.StatusUnauthorized, "INVALID_TOKEN", "Missing session", nil)
			return
		}
		response.JSON(w, map[string]string{"user_name": userName})
	}
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
