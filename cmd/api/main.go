package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go-talentbridge-backend/config"
	_ "go-talentbridge-backend/docs" // Important for Swagger
	v1 "go-talentbridge-backend/internal/delivery/http/v1"
	"go-talentbridge-backend/internal/domain"
	"go-talentbridge-backend/internal/repository/postgres"
	"go-talentbridge-backend/internal/scheduler"
	"go-talentbridge-backend/internal/usecase"
	"go-talentbridge-backend/pkg/audit"
	"go-talentbridge-backend/pkg/auth"
	"go-talentbridge-backend/pkg/channel"
	"go-talentbridge-backend/pkg/database"
	"go-talentbridge-backend/pkg/logger"
	"go-talentbridge-backend/pkg/redis"

	"github.com/go-playground/validator/v10"
)

// @title           TalentBridge API
// @version         1.0
// @description     Interview workflow coordination and notification dispatch for the TalentBridge recruitment platform.
// @host            localhost:8080
// @BasePath        /v1
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
func main() {
	// 1. Load Config
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	// 2. Setup Loggers
	logger.Init()
	logger.Log.Info("Starting talentbridge backend", "port", cfg.Port)

	auditLog := audit.New("talentbridge-api")
	defer auditLog.Sync()

	// 3. Setup Database
	dbPool, err := database.NewPostgresConnection(cfg.DBUrl)
	if err != nil {
		logger.Log.Error("Failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer dbPool.Close()

	// 4. Setup Redis (rate limiting; optional)
	if err := redis.Initialize(redis.Config{URL: cfg.RedisURL, Password: cfg.RedisPassword}); err != nil {
		logger.Log.Warn("Redis unavailable, rate limiting falls back to in-memory", "error", err)
	}
	defer redis.Close()

	// 5. Setup Repositories
	userRepo := postgres.NewUserRepository(dbPool)
	applicationRepo := postgres.NewApplicationRepository(dbPool)
	interviewRepo := postgres.NewInterviewRepository(dbPool)
	notificationRepo := postgres.NewNotificationRepository(dbPool)
	preferenceRepo := postgres.NewPreferenceRepository(dbPool)

	// 6. Setup Delivery Channels
	emailSender := channel.NewEmailSender(channel.EmailConfig{
		Host:      cfg.SMTPHost,
		Port:      cfg.SMTPPort,
		Username:  cfg.SMTPUsername,
		Password:  cfg.SMTPPassword,
		FromEmail: cfg.SMTPFromEmail,
	})
	if !emailSender.IsConfigured() {
		logger.Log.Warn("Email channel not fully configured - email delivery will fail")
	}
	senders := map[domain.Channel]channel.Sender{
		domain.ChannelEmail: emailSender,
		domain.ChannelPush:  channel.NewPushSender(cfg.PushGatewayURL, cfg.PushServerKey),
		domain.ChannelSMS: channel.NewSMSSender(channel.SMSConfig{
			GatewayURL: cfg.SMSGatewayURL,
			AccountID:  cfg.SMSAccountID,
			AuthToken:  cfg.SMSAuthToken,
			FromNumber: cfg.SMSFromNumber,
		}),
	}

	// 7. Setup UseCases
	validate := validator.New()
	authUC := usecase.NewAuthUsecase(userRepo)
	notificationUC := usecase.NewNotificationUsecase(notificationRepo, preferenceRepo, userRepo, senders, auditLog, nil)
	interviewUC := usecase.NewInterviewUsecase(interviewRepo, applicationRepo, userRepo, notificationUC, validate, auditLog)
	reportUC := usecase.NewReportUsecase(interviewRepo)

	// 8. Setup Auth Provider (JWKS)
	var jwksProvider *auth.Provider
	if cfg.JWKSUrl != "" {
		jwksProvider = auth.NewProvider(cfg.JWKSUrl)
	}

	// 9. Setup Router
	router := v1.NewRouter(v1.RouterDeps{
		AuthUC:         authUC,
		InterviewUC:    interviewUC,
		NotificationUC: notificationUC,
		ReportUC:       reportUC,
		JWKSProvider:   jwksProvider,
		Config:         cfg,
	})

	// 10. Start the notification sweep
	sweepCtx, stopSweep := context.WithCancel(context.Background())
	defer stopSweep()
	sweeper := scheduler.New(notificationUC, cfg.SweepIntervalMinutes)
	if err := sweeper.Start(sweepCtx); err != nil {
		logger.Log.Error("Failed to start notification sweep", "error", err)
		os.Exit(1)
	}
	defer sweeper.Stop()

	// 11. Start Server
	srv := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: router,
	}

	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Log.Error("Listen failed", "error", err)
		}
	}()

	// Graceful Shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Log.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Log.Error("Server forced to shutdown", "error", err)
	}

	logger.Log.Info("Server exiting")
}
