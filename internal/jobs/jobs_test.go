package jobs

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"

	"equiprent-backend/internal/domain"
	"equiprent-backend/internal/service"
)

type stubRentalService struct {
	sweeps   int
	sweepErr error
}

func (s *stubRentalService) CreateRental(context.Context, service.CreateRentalInput) (domain.Rental, error) {
	return domain.Rental{}, nil
}

func (s *stubRentalService) ReturnRental(context.Context, service.ReturnRentalInput) (domain.Rental, error) {
	return domain.Rental{}, nil
}

func (s *stubRentalService) ExtendRental(context.Context, uuid.UUID, int, string) (domain.Rental, error) {
	return domain.Rental{}, nil
}

func (s *stubRentalService) CancelRental(context.Context, uuid.UUID) (domain.Rental, error) {
	return domain.Rental{}, nil
}

func (s *stubRentalService) GetRental(context.Context, uuid.UUID) (domain.Rental, error) {
	return domain.Rental{}, nil
}

func (s *stubRentalService) ListMemberRentals(context.Context, uuid.UUID, domain.RentalStatus, int, int) ([]domain.Rental, int, error) {
	return nil, 0, nil
}

func (s *stubRentalService) SweepOverdue(context.Context) (int, error) {
	s.sweeps++
	return 3, s.sweepErr
}

type stubReservationService struct {
	sweeps int
}

func (s *stubReservationService) CreateReservation(context.Context, service.CreateReservationInput) (domain.Reservation, error) {
	return domain.Reservation{}, nil
}

func (s *stubReservationService) ConfirmReservation(context.Context, uuid.UUID) (domain.Reservation, error) {
	return domain.Reservation{}, nil
}

func (s *stubReservationService) CancelReservation(context.Context, uuid.UUID, string) (domain.Reservation, error) {
	return domain.Reservation{}, nil
}

func (s *stubReservationService) FulfillReservation(context.Context, uuid.UUID, string) (domain.Rental, error) {
	return domain.Rental{}, nil
}

func (s *stubReservationService) GetReservation(context.Context, uuid.UUID) (domain.Reservation, error) {
	return domain.Reservation{}, nil
}

func (s *stubReservationService) ListMemberReservations(context.Context, uuid.UUID, domain.ReservationStatus, int, int) ([]domain.Reservation, int, error) {
	return nil, 0, nil
}

func (s *stubReservationService) SweepExpired(context.Context) (int, error) {
	s.sweeps++
	return 1, nil
}

func (s *stubReservationService) ListReadyToFulfill(context.Context) ([]domain.Reservation, error) {
	return nil, nil
}

func TestJobRunner_RunAllNightlyJobs(t *testing.T) {
	rentals := &stubRentalService{}
	reservations := &stubReservationService{}
	runner := NewJobRunner(&Services{
		Rental:      rentals,
		Reservation: reservations,
		Email:       service.NopEmailService{},
	}, &Repositories{}, nil)

	runner.RunAllNightlyJobs()

	assert.Equal(t, 1, rentals.sweeps)
	assert.Equal(t, 1, reservations.sweeps)
}

func TestJobRunner_MarkOverdueRentals_SweepError(t *testing.T) {
	rentals := &stubRentalService{sweepErr: errors.New("db down")}
	runner := NewJobRunner(&Services{Rental: rentals}, &Repositories{}, nil)

	runner.MarkOverdueRentals()

	assert.Equal(t, 1, rentals.sweeps)
}
