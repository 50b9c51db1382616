package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"equiprent-backend/internal/domain"
	"equiprent-backend/internal/events"
	"equiprent-backend/internal/logger"
	"equiprent-backend/internal/payment"
	"equiprent-backend/internal/repository"
)

type rentalService struct {
	rentalRepo    repository.RentalRepository
	reservRepo    repository.ReservationRepository
	equipmentRepo repository.EquipmentRepository
	memberRepo    repository.MemberRepository
	damageRepo    repository.DamageAssessmentRepository
	paymentRepo   repository.PaymentRecordRepository
	noteRepo      repository.NotificationRepository
	gateway       payment.Gateway
	publisher     events.Publisher
	emailSvc      EmailService
	dailyLateFee  domain.Money
	now           func() time.Time
}

func NewRentalService(
	rentalRepo repository.RentalRepository,
	reservRepo repository.ReservationRepository,
	equipmentRepo repository.EquipmentRepository,
	memberRepo repository.MemberRepository,
	damageRepo repository.DamageAssessmentRepository,
	paymentRepo repository.PaymentRecordRepository,
	noteRepo repository.NotificationRepository,
	gateway payment.Gateway,
	publisher events.Publisher,
	emailSvc EmailService,
	dailyLateFee domain.Money,
) RentalService {
	return &rentalService{
		rentalRepo:    rentalRepo,
		reservRepo:    reservRepo,
		equipmentRepo: equipmentRepo,
		memberRepo:    memberRepo,
		damageRepo:    damageRepo,
		paymentRepo:   paymentRepo,
		noteRepo:      noteRepo,
		gateway:       gateway,
		publisher:     publisher,
		emailSvc:      emailSvc,
		dailyLateFee:  dailyLateFee,
		now:           time.Now,
	}
}

func (s *rentalService) CreateRental(ctx context.Context, in CreateRentalInput) (domain.Rental, error) {
	now := s.now()

	period, err := domain.NewDateRange(in.StartDate, in.EndDate)
	if err != nil {
		return domain.Rental{}, err
	}

	member, err := s.memberRepo.GetByID(ctx, in.MemberID)
	if err != nil {
		return domain.Rental{}, err
	}
	equipment, err := s.equipmentRepo.GetByID(ctx, in.EquipmentID)
	if err != nil {
		return domain.Rental{}, err
	}

	if err := member.CanRent(); err != nil {
		return domain.Rental{}, err
	}
	if err := member.ValidateRentalDuration(period); err != nil {
		return domain.Rental{}, err
	}
	if err := s.ensureNoOverdueRentals(ctx, member, now); err != nil {
		return domain.Rental{}, err
	}
	if !equipment.IsAvailable || !equipment.Condition.IsRentable() {
		return domain.Rental{}, &domain.StateConflictError{Resource: "equipment", ID: equipment.ID, State: string(equipment.Condition), Reason: "equipment is not available for rental"}
	}
	if err := s.checkConflicts(ctx, equipment.ID, period, in.FulfillsReservationID); err != nil {
		return domain.Rental{}, err
	}

	baseCost, err := equipment.DailyRate.MultiplyInt(int64(period.Days()))
	if err != nil {
		return domain.Rental{}, err
	}
	baseCost = member.ApplyDiscount(baseCost)

	rental, err := domain.NewRental(equipment.ID, member.ID, period, baseCost, equipment.Condition, now)
	if err != nil {
		return domain.Rental{}, err
	}
	rental.ReservationID = in.FulfillsReservationID

	// Payment settles before any aggregate write. A failed or declined
	// payment leaves no persisted state behind.
	result, kind, err := s.settlePayment(ctx, member, baseCost, in.CardToken, in.AuthorizationID, fmt.Sprintf("Rental of %s", equipment.Name))
	if err != nil {
		s.notifyPaymentFailed(ctx, member, err)
		return domain.Rental{}, err
	}

	if err := s.rentalRepo.Create(ctx, rental); err != nil {
		// The window was taken between the snapshot check and the write.
		// The charge has settled, so hand the money back before surfacing
		// the conflict.
		s.refundAfterLostRace(ctx, result, baseCost)
		return domain.Rental{}, err
	}

	rented, err := equipment.MarkAsRented(rental.ID, now)
	if err != nil {
		return domain.Rental{}, err
	}
	if err := s.equipmentRepo.Update(ctx, rented); err != nil {
		return domain.Rental{}, err
	}
	counted, err := member.IncrementActiveRentals(now)
	if err != nil {
		return domain.Rental{}, err
	}
	if err := s.memberRepo.Update(ctx, counted); err != nil {
		return domain.Rental{}, err
	}

	s.recordPayment(ctx, domain.PaymentRecord{
		ID:            uuid.New(),
		MemberID:      member.ID,
		RentalID:      &rental.ID,
		Kind:          kind,
		Amount:        baseCost,
		TransactionID: result.TransactionID,
		Description:   fmt.Sprintf("Rental of %s for %d days", equipment.Name, period.Days()),
		CreatedAt:     now,
	})

	s.notify(ctx, member.ID, "Rental created",
		fmt.Sprintf("You rented %s until %s", equipment.Name, period.End().Format("2006-01-02")),
		map[string]string{"type": "RENTAL_CREATED", "rental_id": rental.ID.String()})
	if err := s.emailSvc.SendRentalCreated(ctx, member.Email, member.Name, equipment.Name, rental.TotalCost.Cents(), period.End()); err != nil {
		logger.Warn("Failed to send rental created email", "member_id", member.ID, "error", err)
	}
	s.publish(ctx, events.Event{Key: events.KeyRentalCreated, Payload: events.RentalCreated{
		RentalID:    rental.ID,
		EquipmentID: equipment.ID,
		MemberID:    member.ID,
		Start:       period.Start(),
		End:         period.End(),
		TotalCents:  rental.TotalCost.Cents(),
	}})

	return rental, nil
}

func (s *rentalService) ReturnRental(ctx context.Context, in ReturnRentalInput) (domain.Rental, error) {
	now := s.now()

	rental, err := s.rentalRepo.GetByID(ctx, in.RentalID)
	if err != nil {
		return domain.Rental{}, err
	}
	equipment, err := s.equipmentRepo.GetByID(ctx, rental.EquipmentID)
	if err != nil {
		return domain.Rental{}, err
	}
	member, err := s.memberRepo.GetByID(ctx, rental.MemberID)
	if err != nil {
		return domain.Rental{}, err
	}

	damageFee := domain.DamageFeeFor(rental.ConditionAtStart, in.ConditionAtReturn)

	returned, err := rental.Return(in.ConditionAtReturn, damageFee, now)
	if err != nil {
		return domain.Rental{}, err
	}
	if err := s.rentalRepo.Update(ctx, returned); err != nil {
		return domain.Rental{}, err
	}

	if domain.DegradationLevels(rental.ConditionAtStart, in.ConditionAtReturn) > 0 {
		assessment, err := domain.NewDamageAssessment(rental.ID, equipment.ID, rental.ConditionAtStart, in.ConditionAtReturn, in.Notes, in.AssessedBy, now)
		if err != nil {
			return domain.Rental{}, err
		}
		if err := s.damageRepo.Create(ctx, assessment); err != nil {
			return domain.Rental{}, err
		}
	}

	released, err := equipment.MarkAsReturned(in.ConditionAtReturn, now)
	if err != nil {
		return domain.Rental{}, err
	}
	if err := s.equipmentRepo.Update(ctx, released); err != nil {
		return domain.Rental{}, err
	}
	decremented, err := member.DecrementActiveRentals(now)
	if err != nil {
		return domain.Rental{}, err
	}
	if err := s.memberRepo.Update(ctx, decremented); err != nil {
		return domain.Rental{}, err
	}

	s.notify(ctx, member.ID, "Rental returned",
		fmt.Sprintf("You returned %s; total charged %s", equipment.Name, returned.TotalCost),
		map[string]string{"type": "RENTAL_RETURNED", "rental_id": rental.ID.String()})
	if err := s.emailSvc.SendRentalReturned(ctx, member.Email, member.Name, equipment.Name,
		returned.TotalCost.Cents(), returned.LateFee.Cents(), returned.DamageFee.Cents()); err != nil {
		logger.Warn("Failed to send rental returned email", "member_id", member.ID, "error", err)
	}
	s.publish(ctx, events.Event{Key: events.KeyRentalReturned, Payload: events.RentalReturned{
		RentalID:       rental.ID,
		EquipmentID:    equipment.ID,
		MemberID:       member.ID,
		LateFeeCents:   returned.LateFee.Cents(),
		DamageFeeCents: returned.DamageFee.Cents(),
		TotalCents:     returned.TotalCost.Cents(),
	}})

	return returned, nil
}

func (s *rentalService) ExtendRental(ctx context.Context, rentalID uuid.UUID, additionalDays int, cardToken string) (domain.Rental, error) {
	now := s.now()

	rental, err := s.rentalRepo.GetByID(ctx, rentalID)
	if err != nil {
		return domain.Rental{}, err
	}
	equipment, err := s.equipmentRepo.GetByID(ctx, rental.EquipmentID)
	if err != nil {
		return domain.Rental{}, err
	}
	member, err := s.memberRepo.GetByID(ctx, rental.MemberID)
	if err != nil {
		return domain.Rental{}, err
	}

	additionalCost, err := equipment.DailyRate.MultiplyInt(int64(additionalDays))
	if err != nil {
		return domain.Rental{}, err
	}
	additionalCost = member.ApplyDiscount(additionalCost)

	extended, err := rental.ExtendPeriod(additionalDays, additionalCost)
	if err != nil {
		return domain.Rental{}, err
	}
	if err := member.ValidateRentalDuration(extended.Period); err != nil {
		return domain.Rental{}, err
	}
	// The extension claims days beyond the original window, which may
	// collide with a reservation made against the old end date.
	if err := s.checkReservationConflicts(ctx, rental.EquipmentID, extended.Period, nil); err != nil {
		return domain.Rental{}, err
	}

	if !additionalCost.IsZero() {
		result, err := s.gateway.ProcessPayment(ctx, additionalCost, cardToken, fmt.Sprintf("Extension of rental %s", rental.ID))
		if err != nil {
			return domain.Rental{}, fmt.Errorf("process extension payment: %w", err)
		}
		if !result.OK() {
			err := &domain.PaymentError{TransactionID: result.TransactionID, Reason: result.ErrorMessage}
			s.notifyPaymentFailed(ctx, member, err)
			return domain.Rental{}, err
		}
		s.recordPayment(ctx, domain.PaymentRecord{
			ID:            uuid.New(),
			MemberID:      member.ID,
			RentalID:      &rental.ID,
			Kind:          domain.PaymentKindCharge,
			Amount:        additionalCost,
			TransactionID: result.TransactionID,
			Description:   fmt.Sprintf("Extension of rental by %d days", additionalDays),
			CreatedAt:     now,
		})
	}

	if err := s.rentalRepo.Update(ctx, extended); err != nil {
		return domain.Rental{}, err
	}

	s.notify(ctx, member.ID, "Rental extended",
		fmt.Sprintf("Your rental of %s now ends %s", equipment.Name, extended.Period.End().Format("2006-01-02")),
		map[string]string{"type": "RENTAL_EXTENDED", "rental_id": rental.ID.String()})
	s.publish(ctx, events.Event{Key: events.KeyRentalExtended, Payload: events.RentalExtended{
		RentalID:   rental.ID,
		NewEnd:     extended.Period.End(),
		TotalCents: extended.TotalCost.Cents(),
	}})

	return extended, nil
}

func (s *rentalService) CancelRental(ctx context.Context, rentalID uuid.UUID) (domain.Rental, error) {
	now := s.now()

	rental, err := s.rentalRepo.GetByID(ctx, rentalID)
	if err != nil {
		return domain.Rental{}, err
	}
	cancelled, err := rental.Cancel()
	if err != nil {
		return domain.Rental{}, err
	}
	if err := s.rentalRepo.Update(ctx, cancelled); err != nil {
		return domain.Rental{}, err
	}

	equipment, err := s.equipmentRepo.GetByID(ctx, rental.EquipmentID)
	if err != nil {
		return domain.Rental{}, err
	}
	if equipment.CurrentRentalID != nil && *equipment.CurrentRentalID == rental.ID {
		released, err := equipment.MarkAsReturned(equipment.Condition, now)
		if err != nil {
			return domain.Rental{}, err
		}
		if err := s.equipmentRepo.Update(ctx, released); err != nil {
			return domain.Rental{}, err
		}
	}

	member, err := s.memberRepo.GetByID(ctx, rental.MemberID)
	if err != nil {
		return domain.Rental{}, err
	}
	decremented, err := member.DecrementActiveRentals(now)
	if err == nil {
		if err := s.memberRepo.Update(ctx, decremented); err != nil {
			return domain.Rental{}, err
		}
		member = decremented
	}

	// A cancelled rental carries no charge, so the original payment is
	// handed back if one was captured.
	var noRecord *domain.NotFoundError
	record, err := s.paymentRepo.FindByRental(ctx, rental.ID, domain.PaymentKindCharge)
	if errors.As(err, &noRecord) {
		record, err = s.paymentRepo.FindByRental(ctx, rental.ID, domain.PaymentKindCapture)
	}
	if err != nil && !errors.As(err, &noRecord) {
		logger.Error("Failed to look up payment for cancelled rental", "rental_id", rental.ID, "error", err)
	}
	if err == nil {
		result, err := s.gateway.ProcessRefund(ctx, record.TransactionID, record.Amount)
		if err != nil || !result.OK() && result.Status != payment.StatusRefunded {
			logger.Error("Failed to refund cancelled rental", "rental_id", rental.ID, "transaction_id", record.TransactionID, "error", err)
		} else {
			s.recordPayment(ctx, domain.PaymentRecord{
				ID:            uuid.New(),
				MemberID:      member.ID,
				RentalID:      &rental.ID,
				Kind:          domain.PaymentKindRefund,
				Amount:        record.Amount,
				TransactionID: result.TransactionID,
				Description:   "Refund for cancelled rental",
				CreatedAt:     now,
			})
		}
	}

	s.notify(ctx, member.ID, "Rental cancelled",
		fmt.Sprintf("Your rental of %s was cancelled", equipment.Name),
		map[string]string{"type": "RENTAL_CANCELLED", "rental_id": rental.ID.String()})
	if err := s.emailSvc.SendRentalCancelled(ctx, member.Email, member.Name, equipment.Name); err != nil {
		logger.Warn("Failed to send rental cancelled email", "member_id", member.ID, "error", err)
	}
	s.publish(ctx, events.Event{Key: events.KeyRentalCancelled, Payload: events.RentalCancelled{RentalID: rental.ID}})

	return cancelled, nil
}

func (s *rentalService) GetRental(ctx context.Context, rentalID uuid.UUID) (domain.Rental, error) {
	return s.rentalRepo.GetByID(ctx, rentalID)
}

func (s *rentalService) ListMemberRentals(ctx context.Context, memberID uuid.UUID, status domain.RentalStatus, page, pageSize int) ([]domain.Rental, int, error) {
	return s.rentalRepo.ListByMember(ctx, memberID, status, page, pageSize)
}

func (s *rentalService) SweepOverdue(ctx context.Context) (int, error) {
	now := s.now()
	rentals, err := s.rentalRepo.ListOverdue(ctx, now)
	if err != nil {
		return 0, err
	}

	count := 0
	for _, rental := range rentals {
		overdue, err := rental.MarkAsOverdue(s.dailyLateFee, now)
		if err != nil {
			logger.Warn("Skipping rental in overdue sweep", "rental_id", rental.ID, "error", err)
			continue
		}
		if err := s.rentalRepo.Update(ctx, overdue); err != nil {
			logger.Error("Failed to persist overdue rental", "rental_id", rental.ID, "error", err)
			continue
		}
		count++

		member, err := s.memberRepo.GetByID(ctx, rental.MemberID)
		if err != nil {
			continue
		}
		equipment, err := s.equipmentRepo.GetByID(ctx, rental.EquipmentID)
		if err != nil {
			continue
		}
		s.notify(ctx, member.ID, "Rental overdue",
			fmt.Sprintf("Your rental of %s is overdue; late fees are accruing", equipment.Name),
			map[string]string{"type": "RENTAL_OVERDUE", "rental_id": rental.ID.String()})
		if err := s.emailSvc.SendRentalOverdue(ctx, member.Email, member.Name, equipment.Name, overdue.LateFee.Cents()); err != nil {
			logger.Warn("Failed to send overdue email", "member_id", member.ID, "error", err)
		}
		s.publish(ctx, events.Event{Key: events.KeyRentalOverdue, Payload: events.RentalOverdue{
			RentalID:     rental.ID,
			EquipmentID:  rental.EquipmentID,
			MemberID:     rental.MemberID,
			LateFeeCents: overdue.LateFee.Cents(),
		}})
	}
	return count, nil
}

// ensureNoOverdueRentals blocks members holding any rental past its end
// date, whether or not the sweep has flagged it yet.
func (s *rentalService) ensureNoOverdueRentals(ctx context.Context, member domain.Member, now time.Time) error {
	flagged, _, err := s.rentalRepo.ListByMember(ctx, member.ID, domain.RentalStatusOverdue, 1, 1)
	if err != nil {
		return err
	}
	if len(flagged) > 0 {
		return &domain.EligibilityError{MemberID: member.ID, Reason: "member has overdue rentals"}
	}
	active, _, err := s.rentalRepo.ListByMember(ctx, member.ID, domain.RentalStatusActive, 1, member.Tier.MaxConcurrentRentals())
	if err != nil {
		return err
	}
	for _, rental := range active {
		if rental.IsOverdue(now) {
			return &domain.EligibilityError{MemberID: member.ID, Reason: "member has overdue rentals"}
		}
	}
	return nil
}

// checkConflicts applies the scheduling rule against one snapshot of the
// live holds on the equipment. The repository write re-checks under the
// per-equipment lock, so a racing writer cannot slip past this.
func (s *rentalService) checkConflicts(ctx context.Context, equipmentID uuid.UUID, period domain.DateRange, excludeReservationID *uuid.UUID) error {
	rentals, err := s.rentalRepo.ListLiveByEquipment(ctx, equipmentID)
	if err != nil {
		return err
	}
	for _, other := range rentals {
		if other.IsLive() && period.Overlaps(other.Period) {
			return &domain.ConflictError{EquipmentID: equipmentID, Period: period, Reason: "an active rental holds this period"}
		}
	}
	return s.checkReservationConflicts(ctx, equipmentID, period, excludeReservationID)
}

func (s *rentalService) checkReservationConflicts(ctx context.Context, equipmentID uuid.UUID, period domain.DateRange, excludeReservationID *uuid.UUID) error {
	reservations, err := s.reservRepo.ListLiveByEquipment(ctx, equipmentID)
	if err != nil {
		return err
	}
	for _, other := range reservations {
		if excludeReservationID != nil && other.ID == *excludeReservationID {
			continue
		}
		if other.IsLive() && period.Overlaps(other.Period) {
			return &domain.ConflictError{EquipmentID: equipmentID, Period: period, Reason: "a reservation holds this period"}
		}
	}
	return nil
}

// settlePayment runs the charge or capture leg of the two-phase protocol.
func (s *rentalService) settlePayment(ctx context.Context, member domain.Member, amount domain.Money, cardToken, authorizationID, description string) (payment.Result, domain.PaymentKind, error) {
	if amount.IsZero() {
		return payment.Result{Status: payment.StatusSuccess}, domain.PaymentKindCharge, nil
	}
	if authorizationID != "" {
		// Settles the recomputed cost, not the amount held at reserve time.
		result, err := s.gateway.CapturePayment(ctx, authorizationID, amount)
		if err != nil {
			return payment.Result{}, "", fmt.Errorf("capture payment: %w", err)
		}
		if !result.OK() {
			return payment.Result{}, "", &domain.PaymentError{TransactionID: result.TransactionID, Reason: result.ErrorMessage}
		}
		return result, domain.PaymentKindCapture, nil
	}
	result, err := s.gateway.ProcessPayment(ctx, amount, cardToken, description)
	if err != nil {
		return payment.Result{}, "", fmt.Errorf("process payment: %w", err)
	}
	if !result.OK() {
		return payment.Result{}, "", &domain.PaymentError{TransactionID: result.TransactionID, Reason: result.ErrorMessage}
	}
	return result, domain.PaymentKindCharge, nil
}

func (s *rentalService) refundAfterLostRace(ctx context.Context, result payment.Result, amount domain.Money) {
	if result.TransactionID == "" {
		return
	}
	if _, err := s.gateway.ProcessRefund(ctx, result.TransactionID, amount); err != nil {
		logger.Error("Failed to refund after conflicting write", "transaction_id", result.TransactionID, "error", err)
	}
}

func (s *rentalService) recordPayment(ctx context.Context, record domain.PaymentRecord) {
	if err := s.paymentRepo.Create(ctx, record); err != nil {
		logger.Error("Failed to record payment", "transaction_id", record.TransactionID, "error", err)
	}
}

func (s *rentalService) notify(ctx context.Context, memberID uuid.UUID, title, message string, attrs map[string]string) {
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

func (s *rentalService) notifyPaymentFailed(ctx context.Context, member domain.Member, cause error) {
	s.notify(ctx, member.ID, "Payment failed", "Your payment could not be processed", map[string]string{"type": "PAYMENT_FAILED"})
	if err := s.emailSvc.SendPaymentFailed(ctx, member.Email, member.Name, cause.Error()); err != nil {
		logger.Warn("Failed to send payment failed email", "member_id", member.ID, "error", err)
	}
}

func (s *rentalService) publish(ctx context.Context, event events.Event) {
	if err := s.publisher.Publish(ctx, event); err != nil {
		logger.Warn("Failed to publish event", "key", event.Key, "error", err)
	}
}
