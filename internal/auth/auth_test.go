package auth

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"

	"github.com/danielgtaylor/huma/v2"
	"github.com/goplaynow/playdate-api/internal/config"
	"github.com/goplaynow/playdate-api/internal/models"
	"github.com/goplaynow/playdate-api/internal/service"
	"github.com/goplaynow/playdate-api/internal/store/memstore"
)

func newTestHandler(t *testing.T, cfg *config.Config) (*AuthHandler, *memstore.Store) {
	t.Helper()
	st := memstore.New()
	svc := service.New(st, nil)
	return NewAuthHandler(cfg, svc, nil), st
}

func TestHandleMe(t *testing.T) {
	cfg := &config.Config{JWTSecret: "test-secret"}
	handler, st := newTestHandler(t, cfg)

	profile := &models.ParentProfile{
		Base:       models.Base{ID: "parent-1"},
		ParentName: "testuser",
		Email:      "test@example.com",
	}
	if err := st.SaveParentProfile(context.Background(), profile); err != nil {
		t.Fatalf("failed to seed profile: %v", err)
	}

	t.Run("Authenticated", func(t *testing.T) {
		resp, err := handler.HandleMe(WithUserID(context.Background(), profile.ID), &struct{}{})
		if err != nil {
			t.Fatalf("HandleMe returned error: %v", err)
		}
		if resp.Body.ParentName != profile.ParentName {
			t.Errorf("expected name %s, got %s", profile.ParentName, resp.Body.ParentName)
		}
		if resp.Body.Email != profile.Email {
			t.Errorf("expected email %s, got %s", profile.Email, resp.Body.Email)
		}
	})

	t.Run("Unauthenticated", func(t *testing.T) {
		_, err := handler.HandleMe(context.Background(), &struct{}{})
		if err == nil {
			t.Fatal("expected error for unauthenticated request, got nil")
		}
	})

	t.Run("NoProfile", func(t *testing.T) {
		_, err := handler.HandleMe(WithUserID(context.Background(), "stranger"), &struct{}{})
		se, ok := err.(huma.StatusError)
		if !ok || se.GetStatus() != http.StatusNotFound {
			t.Fatalf("expected not found error, got %v", err)
		}
	})
}

func TestGenerateToken(t *testing.T) {
	handler, _ := newTestHandler(t, &config.Config{JWTSecret: "test-secret"})

	token, err := handler.GenerateToken("parent-1")
	if err != nil {
		t.Fatalf("GenerateToken returned error: %v", err)
	}
	claims, err := handler.parseToken(token)
	if err != nil {
		t.Fatalf("parseToken returned error: %v", err)
	}
	if claims.Subject != "parent-1" {
		t.Errorf("expected subject parent-1, got %s", claims.Subject)
	}

	other, _ := newTestHandler(t, &config.Config{JWTSecret: "other-secret"})
	if _, err := other.parseToken(token); err == nil {
		t.Error("expected token signed with another secret to be rejected")
	}
}

func TestParentIDForSubject(t *testing.T) {
	a := ParentIDForSubject("https://idp.test/authorize", "42")
	b := ParentIDForSubject("https://idp.test/authorize", "42")
	c := ParentIDForSubject("https://other.test/authorize", "42")
	if a != b {
		t.Errorf("expected stable id, got %s and %s", a, b)
	}
	if a == c {
		t.Error("expected different providers to yield different ids")
	}
	if len(a) != 36 {
		t.Errorf("expected uuid-sized id, got %q", a)
	}
}

func TestOAuthFlow(t *testing.T) {
	provider := http.NewServeMux()
	provider.HandleFunc("/token", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]any{
			"access_token": "provider-token",
			"token_type":   "bearer",
			"expires_in":   3600,
		})
	})
	provider.HandleFunc("/userinfo", func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer provider-token" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]string{
			"sub":     "abc-123",
			"name":    "Pat Parent",
			"email":   "pat@example.com",
			"picture": "https://img.test/pat.png",
		})
	})
	idp := httptest.NewServer(provider)
	defer idp.Close()

	cfg := &config.Config{
		JWTSecret:        "test-secret",
		AuthClientID:     "client",
		AuthClientSecret: "secret",
		AuthAuthorizeURL: idp.URL + "/authorize",
		AuthTokenURL:     idp.URL + "/token",
		AuthUserInfoURL:  idp.URL + "/userinfo",
		AuthRedirectURL:  "http://app.test/auth/callback",
		FrontendURL:      "http://app.test/",
	}
	handler, st := newTestHandler(t, cfg)

	// Login redirects to the provider with a state that is also set as a cookie.
	rr := httptest.NewRecorder()
	handler.HandleLogin(rr, httptest.NewRequest(http.MethodGet, "/auth/login", nil))
	if rr.Code != http.StatusTemporaryRedirect {
		t.Fatalf("expected redirect, got %d", rr.Code)
	}
	loc, err := url.Parse(rr.Header().Get("Location"))
	if err != nil {
		t.Fatalf("bad redirect location: %v", err)
	}
	state := loc.Query().Get("state")
	var stateCookie *http.Cookie
	for _, c := range rr.Result().Cookies() {
		if c.Name == stateCookieName {
			stateCookie = c
		}
	}
	if stateCookie == nil || stateCookie.Value != state {
		t.Fatalf("expected state cookie matching %q", state)
	}

	t.Run("StateMismatch", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/auth/callback?code=xyz&state=forged", nil)
		req.AddCookie(stateCookie)
		rr := httptest.NewRecorder()
		handler.HandleCallback(rr, req)
		if rr.Code != http.StatusBadRequest {
			t.Errorf("expected 400, got %d", rr.Code)
		}
	})

	t.Run("Success", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/auth/callback?code=xyz&state="+url.QueryEscape(state), nil)
		req.AddCookie(stateCookie)
		rr := httptest.NewRecorder()
		handler.HandleCallback(rr, req)

		if rr.Code != http.StatusFound {
			t.Fatalf("expected 302, got %d: %s", rr.Code, rr.Body.String())
		}
		if got := rr.Header().Get("Location"); got != cfg.FrontendURL {
			t.Errorf("expected redirect to %s, got %s", cfg.FrontendURL, got)
		}

		var token string
		for _, c := range rr.Result().Cookies() {
			if c.Name == TokenCookieName {
				token = c.Value
			}
		}
		if token == "" {
			t.Fatal("expected auth_token cookie")
		}
		claims, err := handler.parseToken(token)
		if err != nil {
			t.Fatalf("issued token invalid: %v", err)
		}
		if want := ParentIDForSubject(cfg.AuthAuthorizeURL, "abc-123"); claims.Subject != want {
			t.Errorf("expected subject %s, got %s", want, claims.Subject)
		}

		profile, err := st.GetParentProfile(context.Background(), claims.Subject)
		if err != nil {
			t.Fatalf("expected profile to be created: %v", err)
		}
		if profile.ParentName != "Pat Parent" || profile.Email != "pat@example.com" {
			t.Errorf("unexpected profile: %+v", profile)
		}
	})
}

func TestHandleLogin_NotConfigured(t *testing.T) {
	handler, _ := newTestHandler(t, &config.Config{JWTSecret: "test-secret"})
	rr := httptest.NewRecorder()
	handler.HandleLogin(rr, httptest.NewRequest(http.MethodGet, "/auth/login", nil))
	if rr.Code != http.StatusServiceUnavailable {
		t.Errorf("expected 503, got %d", rr.Code)
	}
}
