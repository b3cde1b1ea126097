package handlers

import (
	"net/http"

	"github.com/danielgtaylor/huma/v2"
	"github.com/danielgtaylor/huma/v2/adapters/humachi"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/goplaynow/playdate-api/internal/auth"
)

func RegisterRoutes(r *chi.Mux, authHandler *auth.AuthHandler, playdateHandler *PlaydateHandler, profileHandler *ProfileHandler) huma.API {
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(authHandler.AuthMiddleware)

	// Initialize Huma API
	config := huma.DefaultConfig("GoPlayNow API", "1.0.0")
	config.Components.SecuritySchemes = map[string]*huma.SecurityScheme{
		"cookieAuth": {
			Type: "apiKey",
			In:   "cookie",
			Name: auth.TokenCookieName,
		},
		"bearerAuth": {
			Type:         "http",
			Scheme:       "bearer",
			BearerFormat: "JWT",
		},
	}
	api := humachi.New(r, config)
	protected := func(o *huma.Operation) {
		o.Security = []map[string][]string{{"cookieAuth": {}}, {"bearerAuth": {}}}
	}

	// Public routes
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("OK"))
	})

	// Auth routes
	r.Get("/auth/login", authHandler.HandleLogin)
	r.Get("/auth/callback", authHandler.HandleCallback)

	huma.Get(api, "/playdates", playdateHandler.HandleList)
	huma.Get(api, "/playdates/nearby", playdateHandler.HandleNearby)
	huma.Get(api, "/playdates/{id}", playdateHandler.HandleGet)

	// Protected routes
	huma.Get(api, "/me", authHandler.HandleMe, protected)
	huma.Put(api, "/me", profileHandler.HandleUpdateMe, protected)
	huma.Get(api, "/children", profileHandler.HandleListChildren, protected)
	huma.Post(api, "/children", profileHandler.HandleAddChild, protected)
	huma.Delete(api, "/children/{id}", profileHandler.HandleDeleteChild, protected)

	huma.Post(api, "/playdates", playdateHandler.HandleCreate, protected)
	huma.Put(api, "/playdates/{id}", playdateHandler.HandleUpdate, protected)
	huma.Post(api, "/playdates/{id}/cancel", playdateHandler.HandleCancel, protected)
	huma.Post(api, "/playdates/{id}/join", playdateHandler.HandleJoin, protected)
	huma.Post(api, "/playdates/{id}/leave", playdateHandler.HandleLeave, protected)
	huma.Delete(api, "/participants/{entryId}/children/{childId}", playdateHandler.HandleRemoveChild, protected)

	return api
}
