package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"equiprent-backend/internal/domain"
	"equiprent-backend/internal/events"
	"equiprent-backend/internal/logger"
	"equiprent-backend/internal/payment"
	"equiprent-backend/internal/repository"
)

type reservationService struct {
	reservRepo    repository.ReservationRepository
	rentalRepo    repository.RentalRepository
	equipmentRepo repository.EquipmentRepository
	memberRepo    repository.MemberRepository
	paymentRepo   repository.PaymentRecordRepository
	noteRepo      repository.NotificationRepository
	gateway       payment.Gateway
	publisher     events.Publisher
	emailSvc      EmailService
	rentalSvc     RentalService
	now           func() time.Time
}

func NewReservationService(
	reservRepo repository.ReservationRepository,
	rentalRepo repository.RentalRepository,
	equipmentRepo repository.EquipmentRepository,
	memberRepo repository.MemberRepository,
	paymentRepo repository.PaymentRecordRepository,
	noteRepo repository.NotificationRepository,
	gateway payment.Gateway,
	publisher events.Publisher,
	emailSvc EmailService,
	rentalSvc RentalService,
) ReservationService {
	return &reservationService{
		reservRepo:    reservRepo,
		rentalRepo:    rentalRepo,
		equipmentRepo: equipmentRepo,
		memberRepo:    memberRepo,
		paymentRepo:   paymentRepo,
		noteRepo:      noteRepo,
		gateway:       gateway,
		publisher:     publisher,
		emailSvc:      emailSvc,
		rentalSvc:     rentalSvc,
		now:           time.Now,
	}
}

func (s *reservationService) CreateReservation(ctx context.Context, in CreateReservationInput) (domain.Reservation, error) {
	now := s.now()

	period, err := domain.NewDateRange(in.StartDate, in.EndDate)
	if err != nil {
		return domain.Reservation{}, err
	}

	member, err := s.memberRepo.GetByID(ctx, in.MemberID)
	if err != nil {
		return domain.Reservation{}, err
	}
	equipment, err := s.equipmentRepo.GetByID(ctx, in.EquipmentID)
	if err != nil {
		return domain.Reservation{}, err
	}

	if err := member.CanRent(); err != nil {
		return domain.Reservation{}, err
	}
	if err := member.ValidateRentalDuration(period); err != nil {
		return domain.Reservation{}, err
	}
	if !equipment.IsAvailable || !equipment.Condition.IsRentable() {
		return domain.Reservation{}, &domain.StateConflictError{Resource: "equipment", ID: equipment.ID, State: string(equipment.Condition), Reason: "equipment is not available for reservation"}
	}
	if err := s.checkConflicts(ctx, equipment.ID, period); err != nil {
		return domain.Reservation{}, err
	}

	reservation, err := domain.NewReservation(equipment.ID, member.ID, period, now)
	if err != nil {
		return domain.Reservation{}, err
	}

	// An up-front card token places an authorization hold for the
	// estimated cost and confirms the reservation in one step.
	if in.CardToken != "" {
		estimate, err := equipment.DailyRate.MultiplyInt(int64(period.Days()))
		if err != nil {
			return domain.Reservation{}, err
		}
		estimate = member.ApplyDiscount(estimate)

		result, err := s.gateway.AuthorizePayment(ctx, estimate, in.CardToken, fmt.Sprintf("Reservation hold for %s", equipment.Name))
		if err != nil {
			return domain.Reservation{}, fmt.Errorf("authorize payment: %w", err)
		}
		if !result.OK() && result.Status != payment.StatusPending {
			return domain.Reservation{}, &domain.PaymentError{TransactionID: result.TransactionID, Reason: result.ErrorMessage}
		}

		confirmed, err := reservation.Confirm(result.TransactionID, now)
		if err != nil {
			return domain.Reservation{}, err
		}
		reservation = confirmed

		s.recordPayment(ctx, domain.PaymentRecord{
			ID:            uuid.New(),
			MemberID:      member.ID,
			ReservationID: &reservation.ID,
			Kind:          domain.PaymentKindAuthorization,
			Amount:        estimate,
			TransactionID: result.TransactionID,
			Description:   fmt.Sprintf("Hold for reservation of %s", equipment.Name),
			CreatedAt:     now,
		})
	}

	if err := s.reservRepo.Create(ctx, reservation); err != nil {
		if reservation.AuthorizationID != "" {
			s.releaseHold(ctx, reservation.AuthorizationID)
		}
		return domain.Reservation{}, err
	}

	s.notify(ctx, member.ID, "Reservation created",
		fmt.Sprintf("You reserved %s from %s", equipment.Name, period.Start().Format("2006-01-02")),
		map[string]string{"type": "RESERVATION_CREATED", "reservation_id": reservation.ID.String()})
	if err := s.emailSvc.SendReservationCreated(ctx, member.Email, member.Name, equipment.Name, period.Start(), period.End()); err != nil {
		logger.Warn("Failed to send reservation created email", "member_id", member.ID, "error", err)
	}
	s.publish(ctx, events.Event{Key: events.KeyReservationCreated, Payload: events.ReservationCreated{
		ReservationID: reservation.ID,
		EquipmentID:   equipment.ID,
		MemberID:      member.ID,
		Start:         period.Start(),
		End:           period.End(),
	}})

	return reservation, nil
}

func (s *reservationService) ConfirmReservation(ctx context.Context, reservationID uuid.UUID) (domain.Reservation, error) {
	now := s.now()

	reservation, err := s.reservRepo.GetByID(ctx, reservationID)
	if err != nil {
		return domain.Reservation{}, err
	}
	confirmed, err := reservation.Confirm("", now)
	if err != nil {
		return domain.Reservation{}, err
	}
	if err := s.reservRepo.Update(ctx, confirmed); err != nil {
		return domain.Reservation{}, err
	}

	if member, err := s.memberRepo.GetByID(ctx, reservation.MemberID); err == nil {
		if equipment, err := s.equipmentRepo.GetByID(ctx, reservation.EquipmentID); err == nil {
			s.notify(ctx, member.ID, "Reservation confirmed",
				fmt.Sprintf("Your reservation of %s is confirmed", equipment.Name),
				map[string]string{"type": "RESERVATION_CONFIRMED", "reservation_id": reservation.ID.String()})
			if err := s.emailSvc.SendReservationConfirmed(ctx, member.Email, member.Name, equipment.Name, reservation.Period.Start()); err != nil {
				logger.Warn("Failed to send reservation confirmed email", "member_id", member.ID, "error", err)
			}
		}
	}
	s.publish(ctx, events.Event{Key: events.KeyReservationConfirmed, Payload: events.ReservationStatusChanged{
		ReservationID: reservation.ID,
		Status:        string(domain.ReservationStatusConfirmed),
	}})

	return confirmed, nil
}

func (s *reservationService) CancelReservation(ctx context.Context, reservationID uuid.UUID, reason string) (domain.Reservation, error) {
	now := s.now()

	reservation, err := s.reservRepo.GetByID(ctx, reservationID)
	if err != nil {
		return domain.Reservation{}, err
	}
	cancelled, err := reservation.Cancel(reason, now)
	if err != nil {
		return domain.Reservation{}, err
	}
	if err := s.reservRepo.Update(ctx, cancelled); err != nil {
		return domain.Reservation{}, err
	}

	if reservation.AuthorizationID != "" {
		s.releaseHold(ctx, reservation.AuthorizationID)
		if member, err := s.memberRepo.GetByID(ctx, reservation.MemberID); err == nil {
			s.recordPayment(ctx, domain.PaymentRecord{
				ID:            uuid.New(),
				MemberID:      member.ID,
				ReservationID: &reservation.ID,
				Kind:          domain.PaymentKindCancellation,
				Amount:        domain.Zero(),
				TransactionID: reservation.AuthorizationID,
				Description:   "Released hold for cancelled reservation",
				CreatedAt:     now,
			})
		}
	}

	if member, err := s.memberRepo.GetByID(ctx, reservation.MemberID); err == nil {
		if equipment, err := s.equipmentRepo.GetByID(ctx, reservation.EquipmentID); err == nil {
			s.notify(ctx, member.ID, "Reservation cancelled",
				fmt.Sprintf("Your reservation of %s was cancelled", equipment.Name),
				map[string]string{"type": "RESERVATION_CANCELLED", "reservation_id": reservation.ID.String()})
			if err := s.emailSvc.SendReservationCancelled(ctx, member.Email, member.Name, equipment.Name, reason); err != nil {
				logger.Warn("Failed to send reservation cancelled email", "member_id", member.ID, "error", err)
			}
		}
	}
	s.publish(ctx, events.Event{Key: events.KeyReservationCancelled, Payload: events.ReservationStatusChanged{
		ReservationID: reservation.ID,
		Status:        string(domain.ReservationStatusCancelled),
	}})

	return cancelled, nil
}

func (s *reservationService) FulfillReservation(ctx context.Context, reservationID uuid.UUID, cardToken string) (domain.Rental, error) {
	now := s.now()

	reservation, err := s.reservRepo.GetByID(ctx, reservationID)
	if err != nil {
		return domain.Rental{}, err
	}
	if reservation.Status != domain.ReservationStatusConfirmed {
		return domain.Rental{}, &domain.StateConflictError{Resource: "reservation", ID: reservation.ID, State: string(reservation.Status), Reason: "only confirmed reservations can be fulfilled"}
	}
	if !reservation.Period.HasStarted(now) {
		return domain.Rental{}, &domain.StateConflictError{Resource: "reservation", ID: reservation.ID, State: string(reservation.Status), Reason: "reservation window has not started"}
	}

	rental, err := s.rentalSvc.CreateRental(ctx, CreateRentalInput{
		MemberID:              reservation.MemberID,
		EquipmentID:           reservation.EquipmentID,
		StartDate:             reservation.Period.Start(),
		EndDate:               reservation.Period.End(),
		CardToken:             cardToken,
		AuthorizationID:       reservation.AuthorizationID,
		FulfillsReservationID: &reservation.ID,
	})
	if err != nil {
		return domain.Rental{}, err
	}

	fulfilled, err := reservation.MarkFulfilled(rental.ID, now)
	if err != nil {
		return domain.Rental{}, err
	}
	if err := s.reservRepo.Update(ctx, fulfilled); err != nil {
		return domain.Rental{}, err
	}

	s.publish(ctx, events.Event{Key: events.KeyReservationFulfilled, Payload: events.ReservationFulfilled{
		ReservationID: reservation.ID,
		RentalID:      rental.ID,
	}})

	return rental, nil
}

func (s *reservationService) GetReservation(ctx context.Context, reservationID uuid.UUID) (domain.Reservation, error) {
	return s.reservRepo.GetByID(ctx, reservationID)
}

func (s *reservationService) ListMemberReservations(ctx context.Context, memberID uuid.UUID, status domain.ReservationStatus, page, pageSize int) ([]domain.Reservation, int, error) {
	return s.reservRepo.ListByMember(ctx, memberID, status, page, pageSize)
}

func (s *reservationService) SweepExpired(ctx context.Context) (int, error) {
	now := s.now()
	reservations, err := s.reservRepo.ListExpired(ctx, now)
	if err != nil {
		return 0, err
	}

	count := 0
	for _, reservation := range reservations {
		expired, err := reservation.MarkExpired(now)
		if err != nil {
			logger.Warn("Skipping reservation in expiry sweep", "reservation_id", reservation.ID, "error", err)
			continue
		}
		if err := s.reservRepo.Update(ctx, expired); err != nil {
			logger.Error("Failed to persist expired reservation", "reservation_id", reservation.ID, "error", err)
			continue
		}
		count++

		if reservation.AuthorizationID != "" {
			s.releaseHold(ctx, reservation.AuthorizationID)
		}

		member, err := s.memberRepo.GetByID(ctx, reservation.MemberID)
		if err != nil {
			continue
		}
		equipment, err := s.equipmentRepo.GetByID(ctx, reservation.EquipmentID)
		if err != nil {
			continue
		}
		s.notify(ctx, member.ID, "Reservation expired",
			fmt.Sprintf("Your reservation of %s expired without pickup", equipment.Name),
			map[string]string{"type": "RESERVATION_EXPIRED", "reservation_id": reservation.ID.String()})
		if err := s.emailSvc.SendReservationExpired(ctx, member.Email, member.Name, equipment.Name); err != nil {
			logger.Warn("Failed to send reservation expired email", "member_id", member.ID, "error", err)
		}
		s.publish(ctx, events.Event{Key: events.KeyReservationExpired, Payload: events.ReservationStatusChanged{
			ReservationID: reservation.ID,
			Status:        string(domain.ReservationStatusExpired),
		}})
	}
	return count, nil
}

func (s *reservationService) ListReadyToFulfill(ctx context.Context) ([]domain.Reservation, error) {
	return s.reservRepo.ListReadyToFulfill(ctx, s.now())
}

func (s *reservationService) checkConflicts(ctx context.Context, equipmentID uuid.UUID, period domain.DateRange) error {
	rentals, err := s.rentalRepo.ListLiveByEquipment(ctx, equipmentID)
	if err != nil {
		return err
	}
	for _, other := range rentals {
		if other.IsLive() && period.Overlaps(other.Period) {
			return &domain.ConflictError{EquipmentID: equipmentID, Period: period, Reason: "an active rental holds this period"}
		}
	}
	reservations, err := s.reservRepo.ListLiveByEquipment(ctx, equipmentID)
	if err != nil {
		return err
	}
	for _, other := range reservations {
		if other.IsLive() && period.Overlaps(other.Period) {
			return &domain.ConflictError{EquipmentID: equipmentID, Period: period, Reason: "a reservation holds this period"}
		}
	}
	return nil
}

// releaseHold reverses an authorization. Failures are logged; the hold
// lapses on the gateway side eventually either way.
func (s *reservationService) releaseHold(ctx context.Context, authorizationID string) {
	if _, err := s.gateway.CancelAuthorization(ctx, authorizationID); err != nil {
		logger.Error("Failed to release authorization hold", "authorization_id", authorizationID, "error", err)
	}
}

func (s *reservationService) recordPayment(ctx context.Context, record domain.PaymentRecord) {
	if err := s.paymentRepo.Create(ctx, record); err != nil {
		logger.Error("Failed to record payment", "transaction_id", record.TransactionID, "error", err)
	}
}

func (s *reservationService) notify(ctx context.Context, memberID uuid.UUID, title, message string, attrs map[string]string) {
	note := domain.Notification{
		ID:         uuid.New(),
		MemberID:   memberID,
		Title:      title,
		Message:    message,
		Attributes: attrs,
		CreatedAt:  s.now(),
	}
	if err := s.noteRepo.Create(ctx, note); err != nil {
		logger.Warn("Failed to create notification", "member_id", memberID, "error", err)
	}
}

func (s *reservationService) publish(ctx context.Context, event events.Event) {
	if err := s.publisher.Publish(ctx, event); err != nil {
		logger.Warn("Failed to publish event", "key", event.Key, "error", err)
	}
}
