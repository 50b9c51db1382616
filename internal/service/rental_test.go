package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"equiprent-backend/internal/domain"
	"equiprent-backend/internal/events"
	"equiprent-backend/internal/payment"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func cents(t *testing.T, v int64) domain.Money {
	t.Helper()
	money, err := domain.NewMoneyFromCents(v)
	require.NoError(t, err)
	return money
}

type rentalMocks struct {
	rentals      *mockRentalRepo
	reservations *mockReservationRepo
	equipment    *mockEquipmentRepo
	members      *mockMemberRepo
	damages      *mockDamageRepo
	payments     *mockPaymentRepo
	notes        *mockNotificationRepo
	gateway      *mockGateway
	publisher    *mockPublisher
}

func newRentalServiceForTest(t *testing.T, now time.Time) (*rentalService, *rentalMocks) {
	t.Helper()
	m := &rentalMocks{
		rentals:      new(mockRentalRepo),
		reservations: new(mockReservationRepo),
		equipment:    new(mockEquipmentRepo),
		members:      new(mockMemberRepo),
		damages:      new(mockDamageRepo),
		payments:     new(mockPaymentRepo),
		notes:        new(mockNotificationRepo),
		gateway:      new(mockGateway),
		publisher:    new(mockPublisher),
	}
	svc := &rentalService{
		rentalRepo:    m.rentals,
		reservRepo:    m.reservations,
		equipmentRepo: m.equipment,
		memberRepo:    m.members,
		damageRepo:    m.damages,
		paymentRepo:   m.payments,
		noteRepo:      m.notes,
		gateway:       m.gateway,
		publisher:     m.publisher,
		emailSvc:      NopEmailService{},
		dailyLateFee:  cents(t, 10_00),
		now:           func() time.Time { return now },
	}
	return svc, m
}

func testMember(t *testing.T, tier domain.MembershipTier) domain.Member {
	t.Helper()
	member, err := domain.NewMember("Pat Doe", "pat@example.com", "hash", tier, date(2026, 1, 1))
	require.NoError(t, err)
	return member
}

func testEquipment(t *testing.T) domain.Equipment {
	t.Helper()
	eq, err := domain.NewEquipment("Excavator", "heavy", cents(t, 50_00), domain.ConditionExcellent, date(2025, 1, 1), date(2025, 1, 1))
	require.NoError(t, err)
	return eq
}

// allowSideEffects stubs the best-effort writes every happy path performs.
func allowSideEffects(m *rentalMocks) {
	m.notes.On("Create", mock.Anything, mock.Anything).Return(nil)
	m.payments.On("Create", mock.Anything, mock.Anything).Return(nil)
	m.publisher.On("Publish", mock.Anything, mock.Anything).Return(nil)
}

func expectNoMemberHolds(m *rentalMocks, member domain.Member) {
	m.rentals.On("ListByMember", mock.Anything, member.ID, domain.RentalStatusOverdue, 1, 1).
		Return([]domain.Rental{}, 0, nil)
	m.rentals.On("ListByMember", mock.Anything, member.ID, domain.RentalStatusActive, 1, member.Tier.MaxConcurrentRentals()).
		Return([]domain.Rental{}, 0, nil)
}

func TestRentalService_CreateRental(t *testing.T) {
	now := date(2026, 6, 1)

	t.Run("Charges the card and persists", func(t *testing.T) {
		svc, m := newRentalServiceForTest(t, now)
		member := testMember(t, domain.TierBasic)
		eq := testEquipment(t)

		m.members.On("GetByID", mock.Anything, member.ID).Return(member, nil)
		m.equipment.On("GetByID", mock.Anything, eq.ID).Return(eq, nil)
		expectNoMemberHolds(m, member)
		m.rentals.On("ListLiveByEquipment", mock.Anything, eq.ID).Return([]domain.Rental{}, nil)
		m.reservations.On("ListLiveByEquipment", mock.Anything, eq.ID).Return([]domain.Reservation{}, nil)
		m.gateway.On("ProcessPayment", mock.Anything, cents(t, 250_00), "tok_visa", mock.Anything).
			Return(payment.Result{Status: payment.StatusSuccess, TransactionID: "txn_1"}, nil)
		m.rentals.On("Create", mock.Anything, mock.Anything).Return(nil)
		m.equipment.On("Update", mock.Anything, mock.Anything).Return(nil)
		m.members.On("Update", mock.Anything, mock.Anything).Return(nil)
		m.notes.On("Create", mock.Anything, mock.Anything).Return(nil)
		m.payments.On("Create", mock.Anything, mock.MatchedBy(func(p domain.PaymentRecord) bool {
			return p.Kind == domain.PaymentKindCharge && p.Amount.Cents() == 250_00
		})).Return(nil)
		m.publisher.On("Publish", mock.Anything, mock.MatchedBy(func(e events.Event) bool {
			return e.Key == events.KeyRentalCreated
		})).Return(nil)

		rental, err := svc.CreateRental(context.Background(), CreateRentalInput{
			MemberID:    member.ID,
			EquipmentID: eq.ID,
			StartDate:   date(2026, 6, 1),
			EndDate:     date(2026, 6, 6),
			CardToken:   "tok_visa",
		})
		require.NoError(t, err)
		assert.Equal(t, domain.RentalStatusActive, rental.Status)
		assert.Equal(t, int64(250_00), rental.TotalCost.Cents())
		m.gateway.AssertExpectations(t)
		m.publisher.AssertExpectations(t)
	})

	t.Run("Applies the tier discount", func(t *testing.T) {
		svc, m := newRentalServiceForTest(t, now)
		member := testMember(t, domain.TierGold)
		eq := testEquipment(t)

		m.members.On("GetByID", mock.Anything, member.ID).Return(member, nil)
		m.equipment.On("GetByID", mock.Anything, eq.ID).Return(eq, nil)
		expectNoMemberHolds(m, member)
		m.rentals.On("ListLiveByEquipment", mock.Anything, eq.ID).Return([]domain.Rental{}, nil)
		m.reservations.On("ListLiveByEquipment", mock.Anything, eq.ID).Return([]domain.Reservation{}, nil)
		m.gateway.On("ProcessPayment", mock.Anything, cents(t, 225_00), "tok_visa", mock.Anything).
			Return(payment.Result{Status: payment.StatusSuccess, TransactionID: "txn_2"}, nil)
		m.rentals.On("Create", mock.Anything, mock.Anything).Return(nil)
		m.equipment.On("Update", mock.Anything, mock.Anything).Return(nil)
		m.members.On("Update", mock.Anything, mock.Anything).Return(nil)
		allowSideEffects(m)

		rental, err := svc.CreateRental(context.Background(), CreateRentalInput{
			MemberID:    member.ID,
			EquipmentID: eq.ID,
			StartDate:   date(2026, 6, 1),
			EndDate:     date(2026, 6, 6),
			CardToken:   "tok_visa",
		})
		require.NoError(t, err)
		assert.Equal(t, int64(225_00), rental.TotalCost.Cents())
		m.gateway.AssertExpectations(t)
	})

	t.Run("Declined card persists nothing", func(t *testing.T) {
		svc, m := newRentalServiceForTest(t, now)
		member := testMember(t, domain.TierBasic)
		eq := testEquipment(t)

		m.members.On("GetByID", mock.Anything, member.ID).Return(member, nil)
		m.equipment.On("GetByID", mock.Anything, eq.ID).Return(eq, nil)
		expectNoMemberHolds(m, member)
		m.rentals.On("ListLiveByEquipment", mock.Anything, eq.ID).Return([]domain.Rental{}, nil)
		m.reservations.On("ListLiveByEquipment", mock.Anything, eq.ID).Return([]domain.Reservation{}, nil)
		m.gateway.On("ProcessPayment", mock.Anything, mock.Anything, mock.Anything, mock.Anything).
			Return(payment.Result{Status: payment.StatusFailed, ErrorMessage: "card declined"}, nil)
		m.notes.On("Create", mock.Anything, mock.Anything).Return(nil)

		_, err := svc.CreateRental(context.Background(), CreateRentalInput{
			MemberID:    member.ID,
			EquipmentID: eq.ID,
			StartDate:   date(2026, 6, 1),
			EndDate:     date(2026, 6, 6),
			CardToken:   "tok_bad",
		})
		var payErr *domain.PaymentError
		require.ErrorAs(t, err, &payErr)
		m.rentals.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	})

	t.Run("Refunds the charge when the window is lost", func(t *testing.T) {
		svc, m := newRentalServiceForTest(t, now)
		member := testMember(t, domain.TierBasic)
		eq := testEquipment(t)

		m.members.On("GetByID", mock.Anything, member.ID).Return(member, nil)
		m.equipment.On("GetByID", mock.Anything, eq.ID).Return(eq, nil)
		expectNoMemberHolds(m, member)
		m.rentals.On("ListLiveByEquipment", mock.Anything, eq.ID).Return([]domain.Rental{}, nil)
		m.reservations.On("ListLiveByEquipment", mock.Anything, eq.ID).Return([]domain.Reservation{}, nil)
		m.gateway.On("ProcessPayment", mock.Anything, mock.Anything, mock.Anything, mock.Anything).
			Return(payment.Result{Status: payment.StatusSuccess, TransactionID: "txn_3"}, nil)
		m.rentals.On("Create", mock.Anything, mock.Anything).
			Return(&domain.ConflictError{EquipmentID: eq.ID, Reason: "an active rental holds this period"})
		m.gateway.On("ProcessRefund", mock.Anything, "txn_3", cents(t, 250_00)).
			Return(payment.Result{Status: payment.StatusRefunded}, nil)

		_, err := svc.CreateRental(context.Background(), CreateRentalInput{
			MemberID:    member.ID,
			EquipmentID: eq.ID,
			StartDate:   date(2026, 6, 1),
			EndDate:     date(2026, 6, 6),
			CardToken:   "tok_visa",
		})
		var conflict *domain.ConflictError
		require.ErrorAs(t, err, &conflict)
		m.gateway.AssertCalled(t, "ProcessRefund", mock.Anything, "txn_3", cents(t, 250_00))
		m.equipment.AssertNotCalled(t, "Update", mock.Anything, mock.Anything)
	})

	t.Run("Captures an authorization hold", func(t *testing.T) {
		svc, m := newRentalServiceForTest(t, now)
		member := testMember(t, domain.TierBasic)
		eq := testEquipment(t)

		m.members.On("GetByID", mock.Anything, member.ID).Return(member, nil)
		m.equipment.On("GetByID", mock.Anything, eq.ID).Return(eq, nil)
		expectNoMemberHolds(m, member)
		m.rentals.On("ListLiveByEquipment", mock.Anything, eq.ID).Return([]domain.Rental{}, nil)
		m.reservations.On("ListLiveByEquipment", mock.Anything, eq.ID).Return([]domain.Reservation{}, nil)
		m.gateway.On("CapturePayment", mock.Anything, "auth_9", cents(t, 250_00)).
			Return(payment.Result{Status: payment.StatusSuccess, TransactionID: "txn_4"}, nil)
		m.rentals.On("Create", mock.Anything, mock.Anything).Return(nil)
		m.equipment.On("Update", mock.Anything, mock.Anything).Return(nil)
		m.members.On("Update", mock.Anything, mock.Anything).Return(nil)
		m.notes.On("Create", mock.Anything, mock.Anything).Return(nil)
		m.payments.On("Create", mock.Anything, mock.MatchedBy(func(p domain.PaymentRecord) bool {
			return p.Kind == domain.PaymentKindCapture
		})).Return(nil)
		m.publisher.On("Publish", mock.Anything, mock.Anything).Return(nil)

		_, err := svc.CreateRental(context.Background(), CreateRentalInput{
			MemberID:        member.ID,
			EquipmentID:     eq.ID,
			StartDate:       date(2026, 6, 1),
			EndDate:         date(2026, 6, 6),
			AuthorizationID: "auth_9",
		})
		require.NoError(t, err)
		m.gateway.AssertNotCalled(t, "ProcessPayment", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
		m.gateway.AssertExpectations(t)
		m.payments.AssertExpectations(t)
	})

	t.Run("Rejects members holding overdue rentals", func(t *testing.T) {
		svc, m := newRentalServiceForTest(t, now)
		member := testMember(t, domain.TierBasic)
		eq := testEquipment(t)
		overdue, err := domain.NewRental(eq.ID, member.ID, mustPeriod(t, date(2026, 5, 1), date(2026, 5, 5)), cents(t, 200_00), domain.ConditionGood, date(2026, 5, 1))
		require.NoError(t, err)

		m.members.On("GetByID", mock.Anything, member.ID).Return(member, nil)
		m.equipment.On("GetByID", mock.Anything, eq.ID).Return(eq, nil)
		m.rentals.On("ListByMember", mock.Anything, member.ID, domain.RentalStatusOverdue, 1, 1).
			Return([]domain.Rental{overdue}, 1, nil)

		_, err = svc.CreateRental(context.Background(), CreateRentalInput{
			MemberID:    member.ID,
			EquipmentID: eq.ID,
			StartDate:   date(2026, 6, 1),
			EndDate:     date(2026, 6, 6),
			CardToken:   "tok_visa",
		})
		var eligibility *domain.EligibilityError
		require.ErrorAs(t, err, &eligibility)
		m.gateway.AssertNotCalled(t, "ProcessPayment", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("Fulfillment is exempt from its own reservation hold", func(t *testing.T) {
		svc, m := newRentalServiceForTest(t, now)
		member := testMember(t, domain.TierBasic)
		eq := testEquipment(t)
		reservation, err := domain.NewReservation(eq.ID, member.ID, mustPeriod(t, date(2026, 6, 1), date(2026, 6, 6)), date(2026, 5, 1))
		require.NoError(t, err)
		confirmed, err := reservation.Confirm("auth_9", date(2026, 5, 1))
		require.NoError(t, err)

		m.members.On("GetByID", mock.Anything, member.ID).Return(member, nil)
		m.equipment.On("GetByID", mock.Anything, eq.ID).Return(eq, nil)
		expectNoMemberHolds(m, member)
		m.rentals.On("ListLiveByEquipment", mock.Anything, eq.ID).Return([]domain.Rental{}, nil)
		m.reservations.On("ListLiveByEquipment", mock.Anything, eq.ID).Return([]domain.Reservation{confirmed}, nil)
		m.gateway.On("CapturePayment", mock.Anything, "auth_9", cents(t, 250_00)).
			Return(payment.Result{Status: payment.StatusSuccess, TransactionID: "txn_5"}, nil)
		m.rentals.On("Create", mock.Anything, mock.MatchedBy(func(r domain.Rental) bool {
			return r.ReservationID != nil && *r.ReservationID == confirmed.ID
		})).Return(nil)
		m.equipment.On("Update", mock.Anything, mock.Anything).Return(nil)
		m.members.On("Update", mock.Anything, mock.Anything).Return(nil)
		allowSideEffects(m)

		_, err = svc.CreateRental(context.Background(), CreateRentalInput{
			MemberID:              member.ID,
			EquipmentID:           eq.ID,
			StartDate:             date(2026, 6, 1),
			EndDate:               date(2026, 6, 6),
			AuthorizationID:       "auth_9",
			FulfillsReservationID: &confirmed.ID,
		})
		require.NoError(t, err)
		m.rentals.AssertExpectations(t)
	})
}

func mustPeriod(t *testing.T, start, end time.Time) domain.DateRange {
	t.Helper()
	period, err := domain.NewDateRange(start, end)
	require.NoError(t, err)
	return period
}

func TestRentalService_ReturnRental(t *testing.T) {
	start := date(2026, 6, 1)
	end := date(2026, 6, 6)

	setup := func(t *testing.T, now time.Time) (*rentalService, *rentalMocks, domain.Rental, domain.Equipment, domain.Member) {
		svc, m := newRentalServiceForTest(t, now)
		member := testMember(t, domain.TierBasic)
		member.ActiveRentalCount = 1
		eq := testEquipment(t)
		rental, err := domain.NewRental(eq.ID, member.ID, mustPeriod(t, start, end), cents(t, 250_00), eq.Condition, start)
		require.NoError(t, err)
		rented, err := eq.MarkAsRented(rental.ID, start)
		require.NoError(t, err)

		m.rentals.On("GetByID", mock.Anything, rental.ID).Return(rental, nil)
		m.equipment.On("GetByID", mock.Anything, eq.ID).Return(rented, nil)
		m.members.On("GetByID", mock.Anything, member.ID).Return(member, nil)
		m.rentals.On("Update", mock.Anything, mock.Anything).Return(nil)
		m.equipment.On("Update", mock.Anything, mock.Anything).Return(nil)
		m.members.On("Update", mock.Anything, mock.Anything).Return(nil)
		allowSideEffects(m)
		return svc, m, rental, rented, member
	}

	t.Run("On time in original condition", func(t *testing.T) {
		svc, m, rental, _, _ := setup(t, date(2026, 6, 5))

		returned, err := svc.ReturnRental(context.Background(), ReturnRentalInput{
			RentalID:          rental.ID,
			ConditionAtReturn: domain.ConditionExcellent,
		})
		require.NoError(t, err)
		assert.Equal(t, domain.RentalStatusReturned, returned.Status)
		assert.Equal(t, int64(250_00), returned.TotalCost.Cents())
		m.damages.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	})

	t.Run("Degraded unit records an assessment", func(t *testing.T) {
		svc, m, rental, _, _ := setup(t, date(2026, 6, 5))
		m.damages.On("Create", mock.Anything, mock.MatchedBy(func(a domain.DamageAssessment) bool {
			return a.RentalID == rental.ID && a.DamageFee.Cents() == 150_00
		})).Return(nil)

		returned, err := svc.ReturnRental(context.Background(), ReturnRentalInput{
			RentalID:          rental.ID,
			ConditionAtReturn: domain.ConditionPoor,
			Notes:             "hydraulic leak",
			AssessedBy:        "inspector",
		})
		require.NoError(t, err)
		assert.Equal(t, int64(400_00), returned.TotalCost.Cents())
		m.damages.AssertExpectations(t)
	})

	t.Run("Late return keeps the accrued fee", func(t *testing.T) {
		svc, _, rental, _, _ := setup(t, date(2026, 6, 9))

		returned, err := svc.ReturnRental(context.Background(), ReturnRentalInput{
			RentalID:          rental.ID,
			ConditionAtReturn: domain.ConditionExcellent,
		})
		require.NoError(t, err)
		assert.Equal(t, int64(30_00), returned.LateFee.Cents())
		assert.Equal(t, int64(280_00), returned.TotalCost.Cents())
	})
}

func TestRentalService_CancelRental(t *testing.T) {
	now := date(2026, 6, 2)
	member := testMember(t, domain.TierBasic)
	member.ActiveRentalCount = 1
	eq := testEquipment(t)

	t.Run("Refunds a captured hold when no charge exists", func(t *testing.T) {
		svc, m := newRentalServiceForTest(t, now)
		rental, err := domain.NewRental(eq.ID, member.ID, mustPeriod(t, date(2026, 6, 1), date(2026, 6, 6)), cents(t, 250_00), eq.Condition, date(2026, 6, 1))
		require.NoError(t, err)
		rented, err := eq.MarkAsRented(rental.ID, date(2026, 6, 1))
		require.NoError(t, err)
		capture := domain.PaymentRecord{
			ID:            uuid.New(),
			MemberID:      member.ID,
			RentalID:      &rental.ID,
			Kind:          domain.PaymentKindCapture,
			Amount:        cents(t, 250_00),
			TransactionID: "txn_7",
		}

		m.rentals.On("GetByID", mock.Anything, rental.ID).Return(rental, nil)
		m.rentals.On("Update", mock.Anything, mock.Anything).Return(nil)
		m.equipment.On("GetByID", mock.Anything, eq.ID).Return(rented, nil)
		m.equipment.On("Update", mock.Anything, mock.Anything).Return(nil)
		m.members.On("GetByID", mock.Anything, member.ID).Return(member, nil)
		m.members.On("Update", mock.Anything, mock.Anything).Return(nil)
		m.payments.On("FindByRental", mock.Anything, rental.ID, domain.PaymentKindCharge).
			Return(domain.PaymentRecord{}, &domain.NotFoundError{Resource: "payment_record", ID: rental.ID})
		m.payments.On("FindByRental", mock.Anything, rental.ID, domain.PaymentKindCapture).
			Return(capture, nil)
		m.gateway.On("ProcessRefund", mock.Anything, "txn_7", cents(t, 250_00)).
			Return(payment.Result{Status: payment.StatusRefunded, TransactionID: "rfnd_7"}, nil)
		allowSideEffects(m)

		cancelled, err := svc.CancelRental(context.Background(), rental.ID)
		require.NoError(t, err)
		assert.Equal(t, domain.RentalStatusCancelled, cancelled.Status)
		assert.Equal(t, int64(0), cancelled.TotalCost.Cents())
		m.gateway.AssertExpectations(t)
	})

	t.Run("Lookup failure does not pass for a missing record", func(t *testing.T) {
		svc, m := newRentalServiceForTest(t, now)
		rental, err := domain.NewRental(eq.ID, member.ID, mustPeriod(t, date(2026, 6, 1), date(2026, 6, 6)), cents(t, 250_00), eq.Condition, date(2026, 6, 1))
		require.NoError(t, err)
		rented, err := eq.MarkAsRented(rental.ID, date(2026, 6, 1))
		require.NoError(t, err)

		m.rentals.On("GetByID", mock.Anything, rental.ID).Return(rental, nil)
		m.rentals.On("Update", mock.Anything, mock.Anything).Return(nil)
		m.equipment.On("GetByID", mock.Anything, eq.ID).Return(rented, nil)
		m.equipment.On("Update", mock.Anything, mock.Anything).Return(nil)
		m.members.On("GetByID", mock.Anything, member.ID).Return(member, nil)
		m.members.On("Update", mock.Anything, mock.Anything).Return(nil)
		m.payments.On("FindByRental", mock.Anything, rental.ID, domain.PaymentKindCharge).
			Return(domain.PaymentRecord{}, errors.New("connection reset"))
		allowSideEffects(m)

		cancelled, err := svc.CancelRental(context.Background(), rental.ID)
		require.NoError(t, err)
		assert.Equal(t, domain.RentalStatusCancelled, cancelled.Status)
		m.payments.AssertNotCalled(t, "FindByRental", mock.Anything, rental.ID, domain.PaymentKindCapture)
		m.gateway.AssertNotCalled(t, "ProcessRefund", mock.Anything, mock.Anything, mock.Anything)
	})
}

func TestRentalService_SweepOverdue(t *testing.T) {
	now := date(2026, 6, 10)
	svc, m := newRentalServiceForTest(t, now)
	member := testMember(t, domain.TierBasic)
	eq := testEquipment(t)

	first, err := domain.NewRental(eq.ID, member.ID, mustPeriod(t, date(2026, 6, 1), date(2026, 6, 6)), cents(t, 250_00), eq.Condition, date(2026, 6, 1))
	require.NoError(t, err)
	second, err := domain.NewRental(eq.ID, member.ID, mustPeriod(t, date(2026, 6, 2), date(2026, 6, 8)), cents(t, 300_00), eq.Condition, date(2026, 6, 2))
	require.NoError(t, err)

	m.rentals.On("ListOverdue", mock.Anything, now).Return([]domain.Rental{first, second}, nil)
	m.rentals.On("Update", mock.Anything, mock.MatchedBy(func(r domain.Rental) bool {
		return r.Status == domain.RentalStatusOverdue
	})).Return(nil)
	m.members.On("GetByID", mock.Anything, member.ID).Return(member, nil)
	m.equipment.On("GetByID", mock.Anything, eq.ID).Return(eq, nil)
	allowSideEffects(m)

	count, err := svc.SweepOverdue(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, count)
	m.rentals.AssertExpectations(t)
}
