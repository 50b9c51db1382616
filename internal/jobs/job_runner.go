package jobs

import (
	"equiprent-backend/internal/config"
	"equiprent-backend/internal/logger"
	"equiprent-backend/internal/repository"
	"equiprent-backend/internal/service"
)

// JobRunner coordinates all scheduled jobs
type JobRunner struct {
	services *Services
	repos    *Repositories
	config   *config.Config
}

// Services holds all service dependencies needed by jobs
type Services struct {
	Rental      service.RentalService
	Reservation service.ReservationService
	Equipment   service.EquipmentService
	Email       service.EmailService
}

// Repositories holds repository dependencies jobs read from directly
type Repositories struct {
	Members   repository.MemberRepository
	Equipment repository.EquipmentRepository
}

// NewJobRunner creates a new job runner with all dependencies
func NewJobRunner(services *Services, repos *Repositories, cfg *config.Config) *JobRunner {
	return &JobRunner{
		services: services,
		repos:    repos,
		config:   cfg,
	}
}

// Config exposes the runner's configuration to the scheduler
func (jr *JobRunner) Config() *config.Config {
	return jr.config
}

// runWithRecovery wraps job execution with panic recovery
func (jr *JobRunner) runWithRecovery(jobName string, jobFunc func()) {
	defer func() {
		if r := recover(); r != nil {
			logger.Error("Job panicked", "job", jobName, "panic", r)
		}
	}()

	logger.Info("Starting job", "job", jobName)
	jobFunc()
	logger.Info("Job completed", "job", jobName)
}

// RunAllNightlyJobs runs all nightly jobs (for manual execution)
func (jr *JobRunner) RunAllNightlyJobs() {
	jr.MarkOverdueRentals()
	jr.ExpireReservations()
	jr.SendPickupReminders()
}
