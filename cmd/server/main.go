package main

import (
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/bwmarrin/discordgo"
	"github.com/go-chi/chi/v5"
	"github.com/schooldesk/reservations-api/internal/auth"
	"github.com/schooldesk/reservations-api/internal/config"
	"github.com/schooldesk/reservations-api/internal/credentials"
	"github.com/schooldesk/reservations-api/internal/database"
	"github.com/schooldesk/reservations-api/internal/handlers"
	"github.com/schooldesk/reservations-api/internal/notifier"
	"github.com/schooldesk/reservations-api/internal/reservations"
	"go.uber.org/zap"
)

func main() {
	// Load Configuration
	cfg := config.LoadConfig()

	// Structured logger
	var logger *zap.Logger
	var err error
	if cfg.LogDevelopment {
		logger, err = zap.NewDevelopment()
	} else {
		logger, err = zap.NewProduction()
	}
	if err != nil {
		log.Fatalf("Failed to build logger: %v", err)
	}
	defer logger.Sync()

	// Connect to Database
	db := database.Connect(cfg)

	// Operator notifications (optional)
	var alertNotifier notifier.Notifier
	if cfg.DiscordBotToken != "" {
		session, err := discordgo.New("Bot " + cfg.DiscordBotToken)
		if err != nil {
			logger.Warn("Discord notifier not initialized", zap.Error(err))
		} else {
			alertNotifier = notifier.NewDiscordNotifier(session, cfg.DiscordAlertsChannelID)
		}
	}

	// Reservation engine
	issuer := credentials.NewIssuer(cfg.JWTSecret, time.Duration(cfg.CancellationTokenTTLHours)*time.Hour)
	engine := reservations.New(db, logger, alertNotifier, issuer, time.Duration(cfg.TxTimeoutSeconds)*time.Second)

	// Initialize Handlers
	authHandler := auth.NewAuthHandler(cfg, db)
	registrationHandler := handlers.NewRegistrationHandler(engine)
	cancellationHandler := handlers.NewCancellationHandler(engine)
	adminHandler := handlers.NewAdminHandler(engine, authHandler)
	paymentHandler := handlers.NewPaymentHandler(engine, authHandler)
	apiKeyHandler := handlers.NewAPIKeyHandler(db, authHandler)

	// Initialize Router
	r := chi.NewRouter()

	// Register Routes
	handlers.RegisterRoutes(r, authHandler, registrationHandler, cancellationHandler, adminHandler, paymentHandler, apiKeyHandler)

	// Start Server
	logger.Info("Starting server", zap.String("port", cfg.Port))
	if err := http.ListenAndServe(fmt.Sprintf(":%s", cfg.Port), r); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
}
