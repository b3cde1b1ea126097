package auth

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/goplaynow/playdate-api/internal/config"
	"github.com/golang-jwt/jwt/v5"
)

func signedToken(t *testing.T, secret, subject string, ttl time.Duration) string {
	t.Helper()
	claims := jwt.RegisteredClaims{
		Subject:   subject,
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(ttl)),
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
	if err != nil {
		t.Fatalf("failed to sign token: %v", err)
	}
	return token
}

// serve runs req through the middleware and reports the user id the next
// handler saw.
func serve(h *AuthHandler, req *http.Request) (*httptest.ResponseRecorder, string) {
	var seen string
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen, _ = UserID(r.Context())
		w.WriteHeader(http.StatusOK)
	})
	rr := httptest.NewRecorder()
	h.AuthMiddleware(next).ServeHTTP(rr, req)
	return rr, seen
}

func TestAuthMiddleware_SlidingSession(t *testing.T) {
	cfg := &config.Config{JWTSecret: "test-secret"}
	handler, _ := newTestHandler(t, cfg)

	t.Run("TokenRenewed", func(t *testing.T) {
		// Expires in 11 hours, less than TokenDuration/2.
		tokenString := signedToken(t, cfg.JWTSecret, "parent-1", 11*time.Hour)

		req, _ := http.NewRequest("GET", "/", nil)
		req.AddCookie(&http.Cookie{Name: TokenCookieName, Value: tokenString})
		rr, seen := serve(handler, req)

		if rr.Code != http.StatusOK {
			t.Errorf("expected status OK, got %v", rr.Code)
		}
		if seen != "parent-1" {
			t.Errorf("expected user parent-1, got %q", seen)
		}

		found := false
		for _, c := range rr.Result().Cookies() {
			if c.Name == TokenCookieName {
				found = true
				if c.Value == tokenString {
					t.Errorf("expected new token value, but got the old one")
				}
				break
			}
		}
		if !found {
			t.Errorf("expected new auth_token cookie to be set")
		}
	})

	t.Run("TokenNotRenewed", func(t *testing.T) {
		tokenString := signedToken(t, cfg.JWTSecret, "parent-1", 13*time.Hour)

		req, _ := http.NewRequest("GET", "/", nil)
		req.AddCookie(&http.Cookie{Name: TokenCookieName, Value: tokenString})
		rr, seen := serve(handler, req)

		if seen != "parent-1" {
			t.Errorf("expected user parent-1, got %q", seen)
		}
		for _, c := range rr.Result().Cookies() {
			if c.Name == TokenCookieName {
				t.Errorf("did not expect a new auth_token cookie to be set")
			}
		}
	})
}

func TestAuthMiddleware_Credentials(t *testing.T) {
	cfg := &config.Config{JWTSecret: "test-secret"}
	handler, _ := newTestHandler(t, cfg)

	tests := []struct {
		name  string
		setup func(r *http.Request)
		want  string
	}{
		{"Anonymous", func(r *http.Request) {}, ""},
		{"Bearer", func(r *http.Request) {
			r.Header.Set("Authorization", "Bearer "+signedToken(t, cfg.JWTSecret, "parent-2", time.Hour))
		}, "parent-2"},
		{"BearerWinsOverCookie", func(r *http.Request) {
			r.Header.Set("Authorization", "bearer "+signedToken(t, cfg.JWTSecret, "parent-2", time.Hour))
			r.AddCookie(&http.Cookie{Name: TokenCookieName, Value: signedToken(t, cfg.JWTSecret, "parent-3", time.Hour)})
		}, "parent-2"},
		{"WrongSecret", func(r *http.Request) {
			r.AddCookie(&http.Cookie{Name: TokenCookieName, Value: signedToken(t, "nope", "parent-2", time.Hour)})
		}, ""},
		{"Expired", func(r *http.Request) {
			r.AddCookie(&http.Cookie{Name: TokenCookieName, Value: signedToken(t, cfg.JWTSecret, "parent-2", -time.Hour)})
		}, ""},
		{"Garbage", func(r *http.Request) {
			r.Header.Set("Authorization", "Bearer not-a-jwt")
		}, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req, _ := http.NewRequest("GET", "/", nil)
			tt.setup(req)
			rr, seen := serve(handler, req)
			if rr.Code != http.StatusOK {
				t.Errorf("expected request to pass through, got %d", rr.Code)
			}
			if seen != tt.want {
				t.Errorf("expected user %q, got %q", tt.want, seen)
			}
		})
	}
}
