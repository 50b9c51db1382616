package service

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	"equiprent-backend/internal/domain"
	"equiprent-backend/internal/events"
	"equiprent-backend/internal/payment"
)

type mockRentalRepo struct {
	mock.Mock
}

func (m *mockRentalRepo) Create(ctx context.Context, r domain.Rental) error {
	args := m.Called(ctx, r)
	return args.Error(0)
}

func (m *mockRentalRepo) GetByID(ctx context.Context, id uuid.UUID) (domain.Rental, error) {
	args := m.Called(ctx, id)
	return args.Get(0).(domain.Rental), args.Error(1)
}

func (m *mockRentalRepo) Update(ctx context.Context, r domain.Rental) error {
	args := m.Called(ctx, r)
	return args.Error(0)
}

func (m *mockRentalRepo) ListByMember(ctx context.Context, memberID uuid.UUID, status domain.RentalStatus, page, pageSize int) ([]domain.Rental, int, error) {
	args := m.Called(ctx, memberID, status, page, pageSize)
	return args.Get(0).([]domain.Rental), args.Int(1), args.Error(2)
}

func (m *mockRentalRepo) ListLiveByEquipment(ctx context.Context, equipmentID uuid.UUID) ([]domain.Rental, error) {
	args := m.Called(ctx, equipmentID)
	return args.Get(0).([]domain.Rental), args.Error(1)
}

func (m *mockRentalRepo) ListOverdue(ctx context.Context, asOf time.Time) ([]domain.Rental, error) {
	args := m.Called(ctx, asOf)
	return args.Get(0).([]domain.Rental), args.Error(1)
}

type mockReservationRepo struct {
	mock.Mock
}

func (m *mockReservationRepo) Create(ctx context.Context, r domain.Reservation) error {
	args := m.Called(ctx, r)
	return args.Error(0)
}

func (m *mockReservationRepo) GetByID(ctx context.Context, id uuid.UUID) (domain.Reservation, error) {
	args := m.Called(ctx, id)
	return args.Get(0).(domain.Reservation), args.Error(1)
}

func (m *mockReservationRepo) Update(ctx context.Context, r domain.Reservation) error {
	args := m.Called(ctx, r)
	return args.Error(0)
}

func (m *mockReservationRepo) ListByMember(ctx context.Context, memberID uuid.UUID, status domain.ReservationStatus, page, pageSize int) ([]domain.Reservation, int, error) {
	args := m.Called(ctx, memberID, status, page, pageSize)
	return args.Get(0).([]domain.Reservation), args.Int(1), args.Error(2)
}

func (m *mockReservationRepo) ListLiveByEquipment(ctx context.Context, equipmentID uuid.UUID) ([]domain.Reservation, error) {
	args := m.Called(ctx, equipmentID)
	return args.Get(0).([]domain.Reservation), args.Error(1)
}

func (m *mockReservationRepo) ListExpired(ctx context.Context, asOf time.Time) ([]domain.Reservation, error) {
	args := m.Called(ctx, asOf)
	return args.Get(0).([]domain.Reservation), args.Error(1)
}

func (m *mockReservationRepo) ListReadyToFulfill(ctx context.Context, asOf time.Time) ([]domain.Reservation, error) {
	args := m.Called(ctx, asOf)
	return args.Get(0).([]domain.Reservation), args.Error(1)
}

type mockEquipmentRepo struct {
	mock.Mock
}

func (m *mockEquipmentRepo) Create(ctx context.Context, e domain.Equipment) error {
	args := m.Called(ctx, e)
	return args.Error(0)
}

func (m *mockEquipmentRepo) GetByID(ctx context.Context, id uuid.UUID) (domain.Equipment, error) {
	args := m.Called(ctx, id)
	return args.Get(0).(domain.Equipment), args.Error(1)
}

func (m *mockEquipmentRepo) Update(ctx context.Context, e domain.Equipment) error {
	args := m.Called(ctx, e)
	return args.Error(0)
}

func (m *mockEquipmentRepo) List(ctx context.Context, page, pageSize int) ([]domain.Equipment, int, error) {
	args := m.Called(ctx, page, pageSize)
	return args.Get(0).([]domain.Equipment), args.Int(1), args.Error(2)
}

func (m *mockEquipmentRepo) ListAvailable(ctx context.Context, page, pageSize int) ([]domain.Equipment, int, error) {
	args := m.Called(ctx, page, pageSize)
	return args.Get(0).([]domain.Equipment), args.Int(1), args.Error(2)
}

func (m *mockEquipmentRepo) ListMaintenanceDue(ctx context.Context, servicedBefore time.Time) ([]domain.Equipment, error) {
	args := m.Called(ctx, servicedBefore)
	return args.Get(0).([]domain.Equipment), args.Error(1)
}

func (m *mockEquipmentRepo) Exists(ctx context.Context, id uuid.UUID) (bool, error) {
	args := m.Called(ctx, id)
	return args.Bool(0), args.Error(1)
}

func (m *mockEquipmentRepo) Count(ctx context.Context) (int, error) {
	args := m.Called(ctx)
	return args.Int(0), args.Error(1)
}

type mockMemberRepo struct {
	mock.Mock
}

func (m *mockMemberRepo) Create(ctx context.Context, member domain.Member) error {
	args := m.Called(ctx, member)
	return args.Error(0)
}

func (m *mockMemberRepo) GetByID(ctx context.Context, id uuid.UUID) (domain.Member, error) {
	args := m.Called(ctx, id)
	return args.Get(0).(domain.Member), args.Error(1)
}

func (m *mockMemberRepo) GetByEmail(ctx context.Context, email string) (domain.Member, error) {
	args := m.Called(ctx, email)
	return args.Get(0).(domain.Member), args.Error(1)
}

func (m *mockMemberRepo) Update(ctx context.Context, member domain.Member) error {
	args := m.Called(ctx, member)
	return args.Error(0)
}

func (m *mockMemberRepo) List(ctx context.Context, page, pageSize int) ([]domain.Member, int, error) {
	args := m.Called(ctx, page, pageSize)
	return args.Get(0).([]domain.Member), args.Int(1), args.Error(2)
}

func (m *mockMemberRepo) Count(ctx context.Context) (int, error) {
	args := m.Called(ctx)
	return args.Int(0), args.Error(1)
}

type mockDamageRepo struct {
	mock.Mock
}

func (m *mockDamageRepo) Create(ctx context.Context, a domain.DamageAssessment) error {
	args := m.Called(ctx, a)
	return args.Error(0)
}

func (m *mockDamageRepo) GetByID(ctx context.Context, id uuid.UUID) (domain.DamageAssessment, error) {
	args := m.Called(ctx, id)
	return args.Get(0).(domain.DamageAssessment), args.Error(1)
}

func (m *mockDamageRepo) ListByRental(ctx context.Context, rentalID uuid.UUID) ([]domain.DamageAssessment, error) {
	args := m.Called(ctx, rentalID)
	return args.Get(0).([]domain.DamageAssessment), args.Error(1)
}

type mockPaymentRepo struct {
	mock.Mock
}

func (m *mockPaymentRepo) Create(ctx context.Context, p domain.PaymentRecord) error {
	args := m.Called(ctx, p)
	return args.Error(0)
}

func (m *mockPaymentRepo) ListByMember(ctx context.Context, memberID uuid.UUID, page, pageSize int) ([]domain.PaymentRecord, int, error) {
	args := m.Called(ctx, memberID, page, pageSize)
	return args.Get(0).([]domain.PaymentRecord), args.Int(1), args.Error(2)
}

func (m *mockPaymentRepo) FindByRental(ctx context.Context, rentalID uuid.UUID, kind domain.PaymentKind) (domain.PaymentRecord, error) {
	args := m.Called(ctx, rentalID, kind)
	return args.Get(0).(domain.PaymentRecord), args.Error(1)
}

type mockNotificationRepo struct {
	mock.Mock
}

func (m *mockNotificationRepo) Create(ctx context.Context, n domain.Notification) error {
	args := m.Called(ctx, n)
	return args.Error(0)
}

func (m *mockNotificationRepo) ListByMember(ctx context.Context, memberID uuid.UUID, limit, offset int) ([]domain.Notification, int, error) {
	args := m.Called(ctx, memberID, limit, offset)
	return args.Get(0).([]domain.Notification), args.Int(1), args.Error(2)
}

func (m *mockNotificationRepo) MarkAsRead(ctx context.Context, id, memberID uuid.UUID) error {
	args := m.Called(ctx, id, memberID)
	return args.Error(0)
}

type mockGateway struct {
	mock.Mock
}

func (m *mockGateway) ProcessPayment(ctx context.Context, amount domain.Money, cardToken, description string) (payment.Result, error) {
	args := m.Called(ctx, amount, cardToken, description)
	return args.Get(0).(payment.Result), args.Error(1)
}

func (m *mockGateway) AuthorizePayment(ctx context.Context, amount domain.Money, cardToken, description string) (payment.Result, error) {
	args := m.Called(ctx, amount, cardToken, description)
	return args.Get(0).(payment.Result), args.Error(1)
}

func (m *mockGateway) CapturePayment(ctx context.Context, authorizationID string, amount domain.Money) (payment.Result, error) {
	args := m.Called(ctx, authorizationID, amount)
	return args.Get(0).(payment.Result), args.Error(1)
}

func (m *mockGateway) CancelAuthorization(ctx context.Context, authorizationID string) (payment.Result, error) {
	args := m.Called(ctx, authorizationID)
	return args.Get(0).(payment.Result), args.Error(1)
}

func (m *mockGateway) ProcessRefund(ctx context.Context, transactionID string, amount domain.Money) (payment.Result, error) {
	args := m.Called(ctx, transactionID, amount)
	return args.Get(0).(payment.Result), args.Error(1)
}

type mockPublisher struct {
	mock.Mock
}

func (m *mockPublisher) Publish(ctx context.Context, event events.Event) error {
	args := m.Called(ctx, event)
	return args.Error(0)
}

func (m *mockPublisher) Close() error {
	args := m.Called()
	return args.Error(0)
}
