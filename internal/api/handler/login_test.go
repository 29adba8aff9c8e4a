package handler

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	mw "github.com/agroscan/agroscan/internal/api/middleware"
	"github.com/agroscan/agroscan/internal/cache"
	"github.com/agroscan/agroscan/internal/session"
)

func newSessionManager() *session.Manager {
	return session.NewManager(cache.NewMemoryCache(), time.Minute)
}

func TestLogin_Success(t *testing.T) {
	h := NewLoginHandler(newSessionManager())

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/v1/login",
		strings.NewReader(`{"user_name":"Meena"}`))
	h.ServeHTTP(rec, req)

	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
	}
	body := rec.Body.String()
	if !strings.Contains(body, `"token":"sess_`) {
		t.Errorf("expected a sess_ token in response: %s", body)
	}
	if !strings.Contains(body, `"user_name":"Meena"`) {
		t.Errorf("expected user_name echoed back: %s", body)
	}
}

func TestLogin_EmptyName(t *testing.T) {
	h := NewLoginHandler(newSessionManager())

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/v1/login",
		strings.NewReader(`{"user_name":"   "}`))
	h.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
	if code := parseErrCode(t, rec); code != "INVALID_REQUEST" {
		t.Errorf("expected INVALID_REQUEST, got %s", code)
	}
}

func TestLogin_InvalidJSON(t *testing.T) {
	h := NewLoginHandler(newSessionManager())

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/v1/login", strings.NewReader("{"))
	h.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
}

func TestLogout_RevokesSession(t *testing.T) {
	mgr := newSessionManager()
	token, err := mgr.Login(context.Background(), "Meena")
	if err != nil {
		t.Fatalf("login: %v", err)
	}

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/v1/logout", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	NewLogoutHandler(mgr).ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	if _, err := mgr.Authenticate(context.Background(), token); err == nil {
		t.Error("session should be invalid after logout")
	}
}

func TestLogout_MissingHeader(t *testing.T) {
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/v1/logout", nil)
	NewLogoutHandler(newSessionManager()).ServeHTTP(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rec.Code)
	}
}

func TestMe(t *testing.T) {
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/v1/me", nil)
	req = req.WithContext(mw.SetUserName(req.Context(), "Meena"))
	NewMeHandler().ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), `"user_name":"Meena"`) {
		t.Errorf("expected user_name in response: %s", rec.Body.String())
	}
}
