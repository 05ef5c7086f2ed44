package main

import (
	"log"

	"go.uber.org/zap"

	"github.com/oyvindfi/bjorkvang/cmd"
	"github.com/oyvindfi/bjorkvang/internal/data/repository"
	"github.com/oyvindfi/bjorkvang/internal/mail"
	"github.com/oyvindfi/bjorkvang/internal/payment"
	"github.com/oyvindfi/bjorkvang/internal/wire"
	"github.com/oyvindfi/bjorkvang/pkg/database"
	"github.com/oyvindfi/bjorkvang/pkg/utils"
)

func main() {
	// Load config
	config, err := utils.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	// Initialize logger
	logger, err := utils.InitLogger(config.App.LogPath, config.App.Debug)
	if err != nil {
		log.Printf("Failed to init logger: %v. Using standard log.", err)
		logger, _ = zap.NewProduction()
	}
	defer logger.Sync()

	logger.Info("Starting application",
		zap.String("app", config.App.Name),
		zap.String("port", config.App.Port),
		zap.String("environment", config.App.Environment),
		zap.Bool("debug", config.App.Debug),
	)

	// Document store: Postgres when configured, in-memory otherwise.
	// Production config validation has already rejected a missing database.
	var repos *repository.Repository
	if config.UseDatabase() {
		db, err := database.InitDB(config.Database)
		if err != nil {
			logger.Fatal("Failed to connect to database", zap.Error(err))
		}
		defer db.Close()

		logger.Info("Database connected successfully")
		repos = repository.NewRepository(db, logger)
	} else {
		logger.Warn("No database configured, bookings are kept in memory")
		repos = repository.NewMemoryRepository(logger)
	}

	// Mail: without a Plunk token, deliveries go to the log only
	var sender mail.Sender
	if config.Email.APIToken != "" {
		sender = mail.NewPlunkSender(config.Email.APIURL, config.Email.APIToken, logger)
	} else {
		logger.Warn("PLUNK_API_TOKEN is not set, email is logged instead of sent")
		sender = mail.NewLogSender(logger)
	}

	gateway := payment.NewClient(config.Vipps, config.App.PublicBaseURL, logger)
	if !gateway.Configured() {
		logger.Warn("Vipps credentials are not set, payment endpoints will fail")
	}

	// Wire all dependencies
	app := wire.Wiring(repos, sender, gateway, config, logger)

	// Start server
	logger.Info("Starting HTTP server", zap.String("port", config.App.Port))

	cmd.APIServer(app.Router, config.App.Port)
}
