package auth

import (
	"context"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"
)

type contextKey string

const UserIDKey contextKey = "user_id"

// UserID returns the signed-in parent's id, if any.
func UserID(ctx context.Context) (string, bool) {
	id, ok := ctx.Value(UserIDKey).(string)
	return id, ok && id != ""
}

// WithUserID returns a context carrying parentID as the signed-in parent.
func WithUserID(ctx context.Context, parentID string) context.Context {
	return context.WithValue(ctx, UserIDKey, parentID)
}

// AuthMiddleware resolves the caller from a bearer token or the auth cookie.
// It never rejects a request: anonymous callers pass through without a user
// id and each handler decides whether it needs one.
func (h *AuthHandler) AuthMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		tokenString, fromCookie := bearerToken(r), false
		if tokenString == "" {
			if cookie, err := r.Cookie(TokenCookieName); err == nil {
				tokenString, fromCookie = cookie.Value, true
			}
		}
		if tokenString == "" {
			next.ServeHTTP(w, r)
			return
		}

		claims, err := h.parseToken(tokenString)
		if err != nil {
			h.logger.Debug("ignoring invalid token", zap.Error(err))
			next.ServeHTTP(w, r)
			return
		}

		// Sliding session: refresh the cookie once it is past half its lifetime.
		if fromCookie && claims.ExpiresAt != nil && time.Until(claims.ExpiresAt.Time) < TokenDuration/2 {
			if newToken, err := h.GenerateToken(claims.Subject); err == nil {
				http.SetCookie(w, h.tokenCookie(newToken))
			}
		}

		next.ServeHTTP(w, r.WithContext(WithUserID(r.Context(), claims.Subject)))
	})
}

func bearerToken(r *http.Request) string {
	header := r.Header.Get("Authorization")
	if len(header) > 7 && strings.EqualFold(header[:7], "bearer ") {
		return strings.TrimSpace(header[7:])
	}
	return ""
}
