package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/arenaops/esports-platform/config"
	"github.com/arenaops/esports-platform/db"
	"github.com/arenaops/esports-platform/handlers"
	"github.com/arenaops/esports-platform/notify"
	"github.com/arenaops/esports-platform/repositories"
	"github.com/arenaops/esports-platform/routes"
	"github.com/arenaops/esports-platform/services"
	"github.com/arenaops/esports-platform/storage"
)

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	cfg, err := config.Load()
	if err != nil {
		logger.Error("failed to load configuration", slog.Any("error", err))
		os.Exit(1)
	}

	database, err := db.Connect(cfg.DatabaseURL, 10*time.Second)
	if err != nil {
		logger.Error("failed to connect to database", slog.Any("error", err))
		os.Exit(1)
	}
	defer database.Close()
	logger.Info("database connection established")

	var uploader storage.FileUploader
	if cfg.R2AccountID != "" {
		uploader, err = storage.NewCloudflareR2Uploader(storage.CloudflareR2UploaderConfig{
			AccountID:       cfg.R2AccountID,
			AccessKeyID:     cfg.R2AccessKeyID,
			SecretAccessKey: cfg.R2SecretAccessKey,
			BucketName:      cfg.R2BucketName,
			PublicBaseURL:   cfg.R2PublicBaseURL,
		})
		if err != nil {
			logger.Error("failed to initialize object storage", slog.Any("error", err))
			os.Exit(1)
		}
		logger.Info("object storage initialized", slog.String("bucket", cfg.R2BucketName))
	} else {
		logger.Warn("object storage not configured, uploads disabled")
	}

	hub := notify.NewHub(logger)
	go hub.Run()

	// Repositories
	userRepo := repositories.NewPostgresUserRepository(database)
	teamRepo := repositories.NewPostgresTeamRepository(database)
	invitationRepo := repositories.NewPostgresInvitationRepository(database)
	tournamentRepo := repositories.NewPostgresTournamentRepository(database)
	registrationRepo := repositories.NewPostgresRegistrationRepository(database)
	transactionRepo := repositories.NewPostgresTransactionRepository(database)
	leaderboardRepo := repositories.NewPostgresLeaderboardRepository(database)
	gameRepo := repositories.NewPostgresGameRepository(database)
	formatRepo := repositories.NewPostgresFormatRepository(database)
	scheduleRepo := repositories.NewPostgresScheduleRepository(database)
	notificationRepo := repositories.NewPostgresNotificationRepository(database)

	// Services
	notificationService := services.NewNotificationService(notificationRepo, hub)
	authService := services.NewAuthService(userRepo)
	userService := services.NewUserService(userRepo, uploader)
	walletService := services.NewWalletService(database, userRepo, transactionRepo, notificationService)
	teamService := services.NewTeamService(database, teamRepo, userRepo, gameRepo)
	invitationService := services.NewInvitationService(database, invitationRepo, teamRepo, userRepo, notificationService)
	tournamentService := services.NewTournamentService(tournamentRepo, gameRepo, formatRepo)
	registrationService := services.NewRegistrationService(database, registrationRepo, tournamentRepo, teamRepo, notificationService)
	leaderboardService := services.NewLeaderboardService(database, leaderboardRepo, tournamentRepo, teamRepo, userRepo, notificationService)
	referralService := services.NewReferralService(database, userRepo, transactionRepo)
	scheduleService := services.NewScheduleService(scheduleRepo, tournamentRepo, teamRepo)
	lookupService := services.NewLookupService(gameRepo, formatRepo)

	// Handlers
	h := routes.Handlers{
		Auth:         handlers.NewAuthHandler(authService, cfg.JWTSecretKey, logger),
		User:         handlers.NewUserHandler(userService),
		Wallet:       handlers.NewWalletHandler(walletService),
		Team:         handlers.NewTeamHandler(teamService),
		Invitation:   handlers.NewInvitationHandler(invitationService),
		Tournament:   handlers.NewTournamentHandler(tournamentService),
		Registration: handlers.NewRegistrationHandler(registrationService),
		Leaderboard:  handlers.NewLeaderboardHandler(leaderboardService),
		Referral:     handlers.NewReferralHandler(referralService),
		Schedule:     handlers.NewScheduleHandler(scheduleService),
		Lookup:       handlers.NewLookupHandler(lookupService),
		Notification: handlers.NewNotificationHandler(notificationService),
		Upload:       handlers.NewUploadHandler(uploader, logger),
		WebSocket:    handlers.NewWebSocketHandler(hub, cfg.FrontendURL, logger),
	}

	router := routes.SetupRoutes(h, userRepo, cfg.JWTSecretKey, cfg.FrontendURL)

	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.ServerPort),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	shutdownErr := make(chan error)
	go func() {
		quit := make(chan os.Signal, 1)
		signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
		sig := <-quit
		logger.Info("shutting down server", slog.String("signal", sig.String()))

		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		shutdownErr <- server.Shutdown(ctx)
	}()

	logger.Info("starting server", slog.Int("port", cfg.ServerPort))
	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Error("server error", slog.Any("error", err))
		os.Exit(1)
	}

	if err := <-shutdownErr; err != nil {
		logger.Error("graceful shutdown failed", slog.Any("error", err))
		os.Exit(1)
	}
	logger.Info("server stopped")
}
