package main

import (
	"context"
	"database/sql"
	"flag"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/lib/pq"

	httpapi "equiprent-backend/internal/api/http"
	"equiprent-backend/internal/config"
	"equiprent-backend/internal/domain"
	"equiprent-backend/internal/events"
	"equiprent-backend/internal/logger"
	"equiprent-backend/internal/payment"
	"equiprent-backend/internal/repository/postgres"
	"equiprent-backend/internal/security"
	"equiprent-backend/internal/service"
)

func main() {
	// Parse command-line flags
	configPath := flag.String("config", "config/config.dev.yaml", "Path to configuration file")
	flag.Parse()

	// Load configuration
	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// Initialize logger
	logger.Initialize(cfg.Log.Level, cfg.Log.Format)
	logger.Info("Starting EquipRent backend...", "log_level", cfg.Log.Level, "log_format", cfg.Log.Format)
	logger.Info("Server configuration", "address", cfg.GetServerAddress())
	logger.Info("Database configuration", "host", cfg.Database.Host, "port", cfg.Database.Port, "database", cfg.Database.Database, "user", cfg.Database.User)

	// Initialize Database
	db, err := sql.Open("postgres", cfg.GetDatabaseConnectionString())
	if err != nil {
		logger.Error("Failed to connect to database", "error", err)
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()

	// Test database connection
	if err := db.Ping(); err != nil {
		logger.Error("Failed to ping database", "error", err)
		log.Fatalf("Failed to ping database: %v", err)
	}
	logger.Info("Database connection established")

	// Initialize Repositories
	store := postgres.NewStore(db)

	// Initialize Security
	tokenManager := security.NewTokenManager(cfg.JWT.Secret, time.Duration(cfg.JWT.TokenExpiryMinute)*time.Minute)

	// Initialize Payment Gateway
	gateway, err := payment.NewOmiseGateway(cfg.Payment.OmisePublicKey, cfg.Payment.OmiseSecretKey, cfg.Payment.Currency)
	if err != nil {
		logger.Error("Failed to initialize payment gateway", "error", err)
		log.Fatalf("Failed to initialize payment gateway: %v", err)
	}

	// Initialize Event Publisher
	var publisher events.Publisher = events.NopPublisher{}
	if cfg.AMQP.URL != "" {
		amqpPublisher, err := events.NewAMQPPublisher(cfg.AMQP.URL, cfg.AMQP.Exchange)
		if err != nil {
			logger.Error("Failed to connect to event broker", "error", err)
			log.Fatalf("Failed to connect to event broker: %v", err)
		}
		defer amqpPublisher.Close()
		publisher = amqpPublisher
	} else {
		logger.Info("No AMQP URL configured, event publishing disabled")
	}

	// Initialize Email Service
	var emailSvc service.EmailService = service.NopEmailService{}
	if cfg.Email.SendGridAPIKey != "" {
		emailSvc = service.NewSendgridEmailService(cfg.Email.SendGridAPIKey, cfg.Email.FromName, cfg.Email.FromEmail)
	} else {
		logger.Info("No SendGrid API key configured, outbound email disabled")
	}

	// Initialize Services
	dailyLateFee, err := domain.NewMoneyFromCents(cfg.Billing.DailyLateFeeCents)
	if err != nil {
		log.Fatalf("Invalid daily late fee: %v", err)
	}
	authSvc := service.NewAuthService(store.MemberRepository, tokenManager)
	equipmentSvc := service.NewEquipmentService(store.EquipmentRepository)
	memberSvc := service.NewMemberService(store.MemberRepository, store.PaymentRecordRepository)
	noteSvc := service.NewNotificationService(store.NotificationRepository)
	rentalSvc := service.NewRentalService(
		store.RentalRepository,
		store.ReservationRepository,
		store.EquipmentRepository,
		store.MemberRepository,
		store.DamageAssessmentRepository,
		store.PaymentRecordRepository,
		store.NotificationRepository,
		gateway,
		publisher,
		emailSvc,
		dailyLateFee,
	)
	reservationSvc := service.NewReservationService(
		store.ReservationRepository,
		store.RentalRepository,
		store.EquipmentRepository,
		store.MemberRepository,
		store.PaymentRecordRepository,
		store.NotificationRepository,
		gateway,
		publisher,
		emailSvc,
		rentalSvc,
	)

	// Set up HTTP server
	handlers := httpapi.NewHandlers(authSvc, equipmentSvc, memberSvc, rentalSvc, reservationSvc, noteSvc)
	router := httpapi.NewRouter(handlers, tokenManager)

	server := &http.Server{
		Addr:         cfg.GetServerAddress(),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
	}

	go func() {
		logger.Info("HTTP server listening", "address", cfg.GetServerAddress())
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("HTTP server error", "error", err)
			log.Fatalf("Failed to serve: %v", err)
		}
	}()

	// Wait for interrupt signal
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	<-sigChan

	// Graceful shutdown
	logger.Info("Shutting down HTTP server...")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		logger.Error("Forced shutdown", "error", err)
	}
	logger.Info("Server stopped. Goodbye!")
}
