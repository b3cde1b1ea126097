package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/bwmarrin/discordgo"
	"github.com/go-chi/chi/v5"
	"github.com/goplaynow/playdate-api/internal/auth"
	"github.com/goplaynow/playdate-api/internal/config"
	"github.com/goplaynow/playdate-api/internal/database"
	"github.com/goplaynow/playdate-api/internal/handlers"
	"github.com/goplaynow/playdate-api/internal/logging"
	"github.com/goplaynow/playdate-api/internal/notifier"
	"github.com/goplaynow/playdate-api/internal/service"
	"github.com/goplaynow/playdate-api/internal/store/gormstore"
	"go.uber.org/zap"
)

func main() {
	// Load Configuration
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	logger, err := logging.New(cfg.LogLevel, cfg.LogFormat)
	if err != nil {
		log.Fatalf("Failed to create logger: %v", err)
	}
	defer logger.Sync()

	loc, err := cfg.Location()
	if err != nil {
		logger.Fatal("invalid timezone", zap.Error(err))
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Connect to Database
	db, err := database.Connect(cfg, logger)
	if err != nil {
		logger.Fatal("failed to connect database", zap.Error(err))
	}
	st := gormstore.New(db)
	defer st.Close()

	notifiers := notifier.Multi{}
	if cfg.DiscordBotToken != "" {
		session, err := discordgo.New("Bot " + cfg.DiscordBotToken)
		if err != nil {
			logger.Warn("discord notifier not initialized", zap.Error(err))
		} else {
			notifiers = append(notifiers, notifier.NewDiscordNotifier(session, cfg.DiscordNotificationsChannelID, loc, logger))
		}
	}
	emailNotifier, err := notifier.NewEmailNotifier(ctx, cfg.SESRegion, cfg.SESFromEmail, cfg.SESFromName, loc, logger)
	if err != nil {
		logger.Warn("email notifier not initialized", zap.Error(err))
	} else if emailNotifier.Enabled() {
		notifiers = append(notifiers, emailNotifier)
	}

	svc := service.New(st, logger,
		service.WithLocation(loc),
		service.WithNotifier(notifiers),
	)

	// Initialize Handlers
	authHandler := auth.NewAuthHandler(cfg, svc, logger)
	playdateHandler := handlers.NewPlaydateHandler(svc, cfg.NearbyRadiusKm, logger)
	profileHandler := handlers.NewProfileHandler(svc)

	// Initialize Router
	r := chi.NewRouter()
	handlers.RegisterRoutes(r, authHandler, playdateHandler, profileHandler)

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%s", cfg.Port),
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Error("graceful shutdown failed", zap.Error(err))
		}
	}()

	// Start Server
	logger.Info("starting server", zap.String("port", cfg.Port), zap.String("timezone", loc.String()))
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Fatal("failed to start server", zap.Error(err))
	}
	logger.Info("server stopped")
}
