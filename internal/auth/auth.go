package auth

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/danielgtaylor/huma/v2"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/goplaynow/playdate-api/internal/config"
	"github.com/goplaynow/playdate-api/internal/models"
	"github.com/goplaynow/playdate-api/internal/service"
	"go.uber.org/zap"
	"golang.org/x/oauth2"
)

const (
	TokenDuration   = 24 * time.Hour
	TokenCookieName = "auth_token"
	stateCookieName = "oauth_state"
)

// Profiles is what the auth flow needs from the playdate service.
type Profiles interface {
	EnsureProfile(ctx context.Context, parentID, name, email, avatarURL string) (*models.ParentProfile, error)
	GetProfile(ctx context.Context, parentID string) (*models.ParentProfile, error)
}

type AuthHandler struct {
	oauthConfig *oauth2.Config
	profiles    Profiles
	cfg         *config.Config
	logger      *zap.Logger
}

func NewAuthHandler(cfg *config.Config, profiles Profiles, logger *zap.Logger) *AuthHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AuthHandler{
		oauthConfig: &oauth2.Config{
			ClientID:     cfg.AuthClientID,
			ClientSecret: cfg.AuthClientSecret,
			RedirectURL:  cfg.AuthRedirectURL,
			Scopes:       []string{"openid", "profile", "email"},
			Endpoint: oauth2.Endpoint{
				AuthURL:  cfg.AuthAuthorizeURL,
				TokenURL: cfg.AuthTokenURL,
			},
		},
		profiles: profiles,
		cfg:      cfg,
		logger:   logger,
	}
}

func (h *AuthHandler) HandleLogin(w http.ResponseWriter, r *http.Request) {
	if !h.cfg.OAuthEnabled() {
		http.Error(w, "Sign-in is not configured", http.StatusServiceUnavailable)
		return
	}
	state := uuid.NewString()
	http.SetCookie(w, &http.Cookie{
		Name:     stateCookieName,
		Value:    state,
		Expires:  time.Now().Add(10 * time.Minute),
		HttpOnly: true,
		Path:     "/",
	})
	url := h.oauthConfig.AuthCodeURL(state, oauth2.AccessTypeOnline)
	http.Redirect(w, r, url, http.StatusTemporaryRedirect)
}

// userInfo covers the usual OpenID Connect userinfo claims.
type userInfo struct {
	Sub     string `json:"sub"`
	ID      string `json:"id"`
	Name    string `json:"name"`
	Email   string `json:"email"`
	Picture string `json:"picture"`
}

func (u userInfo) subject() string {
	if u.Sub != "" {
		return u.Sub
	}
	return u.ID
}

func (h *AuthHandler) HandleCallback(w http.ResponseWriter, r *http.Request) {
	state, err := r.Cookie(stateCookieName)
	if err != nil || state.Value == "" || state.Value != r.URL.Query().Get("state") {
		http.Error(w, "Invalid login state", http.StatusBadRequest)
		return
	}
	code := r.URL.Query().Get("code")
	if code == "" {
		http.Error(w, "Code not found", http.StatusBadRequest)
		return
	}

	token, err := h.oauthConfig.Exchange(r.Context(), code)
	if err != nil {
		h.logger.Warn("oauth code exchange failed", zap.Error(err))
		http.Error(w, "Failed to exchange token", http.StatusInternalServerError)
		return
	}

	client := h.oauthConfig.Client(r.Context(), token)
	resp, err := client.Get(h.cfg.AuthUserInfoURL)
	if err != nil {
		http.Error(w, "Failed to get user info", http.StatusInternalServerError)
		return
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		http.Error(w, "Failed to get user info", http.StatusBadGateway)
		return
	}

	var info userInfo
	if err := json.NewDecoder(resp.Body).Decode(&info); err != nil || info.subject() == "" {
		http.Error(w, "Failed to decode user info", http.StatusInternalServerError)
		return
	}

	parentID := ParentIDForSubject(h.cfg.AuthAuthorizeURL, info.subject())
	profile, err := h.profiles.EnsureProfile(r.Context(), parentID, info.Name, info.Email, info.Picture)
	if err != nil {
		h.logger.Error("failed to save profile", zap.String("parent_id", parentID), zap.Error(err))
		http.Error(w, "Failed to save user", http.StatusInternalServerError)
		return
	}

	jwtToken, err := h.GenerateToken(profile.ID)
	if err != nil {
		http.Error(w, "Failed to generate token", http.StatusInternalServerError)
		return
	}

	http.SetCookie(w, &http.Cookie{Name: stateCookieName, Value: "", Path: "/", MaxAge: -1})
	http.SetCookie(w, h.tokenCookie(jwtToken))
	h.logger.Info("parent signed in", zap.String("parent_id", profile.ID))
	http.Redirect(w, r, h.cfg.FrontendURL, http.StatusFound)
}

// ParentIDForSubject maps an identity provider subject to a stable parent
// id. The provider URL is mixed in so two providers never collide.
func ParentIDForSubject(provider, subject string) string {
	return uuid.NewSHA1(uuid.NameSpaceURL, []byte(provider+"#"+subject)).String()
}

func (h *AuthHandler) GenerateToken(parentID string) (string, error) {
	now := time.Now()
	claims := jwt.RegisteredClaims{
		Subject:   parentID,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(TokenDuration)),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(h.cfg.JWTSecret))
}

func (h *AuthHandler) tokenCookie(value string) *http.Cookie {
	return &http.Cookie{
		Name:     TokenCookieName,
		Value:    value,
		Expires:  time.Now().Add(TokenDuration),
		HttpOnly: true,
		Path:     "/",
		SameSite: http.SameSiteLaxMode,
	}
}

// parseToken validates a signed token and returns its claims.
func (h *AuthHandler) parseToken(tokenString string) (*jwt.RegisteredClaims, error) {
	claims := &jwt.RegisteredClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(h.cfg.JWTSecret), nil
	})
	if err != nil {
		return nil, err
	}
	if !token.Valid || claims.Subject == "" {
		return nil, errors.New("invalid token claims")
	}
	return claims, nil
}

type MeOutput struct {
	Body *models.ParentProfile
}

func (h *AuthHandler) HandleMe(ctx context.Context, input *struct{}) (*MeOutput, error) {
	parentID, ok := UserID(ctx)
	if !ok {
		return nil, huma.Error401Unauthorized("Unauthorized")
	}
	profile, err := h.profiles.GetProfile(ctx, parentID)
	if err != nil {
		if errors.Is(err, service.ErrNotFound) {
			return nil, huma.Error404NotFound("Profile not found")
		}
		return nil, huma.Error500InternalServerError("Failed to load profile")
	}
	return &MeOutput{Body: profile}, nil
}
