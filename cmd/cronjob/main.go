package main

import (
	"database/sql"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	_ "github.com/lib/pq"

	"equiprent-backend/internal/config"
	"equiprent-backend/internal/domain"
	"equiprent-backend/internal/events"
	"equiprent-backend/internal/jobs"
	"equiprent-backend/internal/logger"
	"equiprent-backend/internal/payment"
	"equiprent-backend/internal/repository/postgres"
	"equiprent-backend/internal/scheduler"
	"equiprent-backend/internal/service"
)

func main() {
	// Parse command-line flags
	configPath := flag.String("config", "config/config.dev.yaml", "Path to configuration file")
	runOnce := flag.String("run-once", "", "Run a specific job once and exit (e.g., 'mark-overdue-rentals', 'all-nightly')")
	flag.Parse()

	// Load configuration
	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// Initialize logger
	logger.Initialize(cfg.Log.Level, cfg.Log.Format)
	logger.Info("Starting EquipRent cronjob runner...", "log_level", cfg.Log.Level)

	// Initialize Database
	logger.Info("Connecting to database...", "host", cfg.Database.Host, "port", cfg.Database.Port)
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
	}

	// Initialize Email Service
	var emailSvc service.EmailService = service.NopEmailService{}
	if cfg.Email.SendGridAPIKey != "" {
		emailSvc = service.NewSendgridEmailService(cfg.Email.SendGridAPIKey, cfg.Email.FromName, cfg.Email.FromEmail)
	}

	// Initialize Services
	dailyLateFee, err := domain.NewMoneyFromCents(cfg.Billing.DailyLateFeeCents)
	if err != nil {
		log.Fatalf("Invalid daily late fee: %v", err)
	}
	equipmentSvc := service.NewEquipmentService(store.EquipmentRepository)
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

	jobServices := &jobs.Services{
		Rental:      rentalSvc,
		Reservation: reservationSvc,
		Equipment:   equipmentSvc,
		Email:       emailSvc,
	}
	jobRepos := &jobs.Repositories{
		Members:   store.MemberRepository,
		Equipment: store.EquipmentRepository,
	}

	// Initialize Job Runner
	jobRunner := jobs.NewJobRunner(jobServices, jobRepos, cfg)

	// Check if running a single job
	if *runOnce != "" {
		logger.Info("Running job once", "job", *runOnce)
		runJobOnce(jobRunner, *runOnce)
		logger.Info("Job execution completed", "job", *runOnce)
		return
	}

	// Initialize Scheduler
	cronScheduler := scheduler.NewScheduler(jobRunner)

	// Start scheduler
	cronScheduler.Start()
	logger.Info("Cronjob scheduler is running. Press Ctrl+C to stop.")

	// Wait for interrupt signal
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	<-sigChan

	// Graceful shutdown
	logger.Info("Shutting down cronjob scheduler...")
	cronScheduler.Stop()
	logger.Info("Cronjob scheduler stopped. Goodbye!")
}

// runJobOnce runs a specific job once and exits
func runJobOnce(jobRunner *jobs.JobRunner, jobName string) {
	switch jobName {
	case "mark-overdue-rentals":
		jobRunner.MarkOverdueRentals()
	case "expire-reservations":
		jobRunner.ExpireReservations()
	case "send-pickup-reminders":
		jobRunner.SendPickupReminders()
	case "maintenance-report":
		jobRunner.ReportMaintenanceDue()
	case "all-nightly":
		jobRunner.RunAllNightlyJobs()
	default:
		logger.Error("Unknown job name", "job", jobName)
		fmt.Printf("Available jobs:\n")
		fmt.Printf("  - mark-overdue-rentals\n")
		fmt.Printf("  - expire-reservations\n")
		fmt.Printf("  - send-pickup-reminders\n")
		fmt.Printf("  - maintenance-report\n")
		fmt.Printf("  - all-nightly\n")
		os.Exit(1)
	}
}
