package service

import (
	"context"
	"time"

	"github.com/google/uuid"

	"equiprent-backend/internal/domain"
)

type CreateRentalInput struct {
	MemberID    uuid.UUID
	EquipmentID uuid.UUID
	StartDate   time.Time
	EndDate     time.Time
	// CardToken charges in a single shot; AuthorizationID captures a
	// previously placed hold instead. Exactly one should be set.
	CardToken       string
	AuthorizationID string
	// FulfillsReservationID, when set, marks the rental as the fulfillment
	// of that reservation and exempts it from conflicting with its hold.
	FulfillsReservationID *uuid.UUID
}

type ReturnRentalInput struct {
	RentalID          uuid.UUID
	ConditionAtReturn domain.Condition
	Notes             string
	AssessedBy        string
}

type CreateReservationInput struct {
	MemberID    uuid.UUID
	EquipmentID uuid.UUID
	StartDate   time.Time
	EndDate     time.Time
	// CardToken, when set, places an authorization hold for the estimated
	// cost and confirms the reservation immediately.
	CardToken string
}

type RentalService interface {
	CreateRental(ctx context.Context, in CreateRentalInput) (domain.Rental, error)
	ReturnRental(ctx context.Context, in ReturnRentalInput) (domain.Rental, error)
	ExtendRental(ctx context.Context, rentalID uuid.UUID, additionalDays int, cardToken string) (domain.Rental, error)
	CancelRental(ctx context.Context, rentalID uuid.UUID) (domain.Rental, error)
	GetRental(ctx context.Context, rentalID uuid.UUID) (domain.Rental, error)
	ListMemberRentals(ctx context.Context, memberID uuid.UUID, status domain.RentalStatus, page, pageSize int) ([]domain.Rental, int, error)
	// SweepOverdue transitions every ACTIVE rental with an ended period to
	// OVERDUE, accruing late fees. Invoked on the caller's cadence.
	SweepOverdue(ctx context.Context) (int, error)
}

type ReservationService interface {
	CreateReservation(ctx context.Context, in CreateReservationInput) (domain.Reservation, error)
	ConfirmReservation(ctx context.Context, reservationID uuid.UUID) (domain.Reservation, error)
	CancelReservation(ctx context.Context, reservationID uuid.UUID, reason string) (domain.Reservation, error)
	// FulfillReservation converts a confirmed reservation whose window has
	// started into a rental, capturing the authorization hold if one exists.
	FulfillReservation(ctx context.Context, reservationID uuid.UUID, cardToken string) (domain.Rental, error)
	GetReservation(ctx context.Context, reservationID uuid.UUID) (domain.Reservation, error)
	ListMemberReservations(ctx context.Context, memberID uuid.UUID, status domain.ReservationStatus, page, pageSize int) ([]domain.Reservation, int, error)
	// SweepExpired retires live reservations whose window elapsed without
	// fulfillment, releasing any authorization hold.
	SweepExpired(ctx context.Context) (int, error)
	// ListReadyToFulfill reports confirmed reservations inside their window.
	ListReadyToFulfill(ctx context.Context) ([]domain.Reservation, error)
}

type EquipmentService interface {
	AddEquipment(ctx context.Context, name, category string, dailyRate domain.Money, condition domain.Condition, purchaseDate time.Time) (domain.Equipment, error)
	GetEquipment(ctx context.Context, id uuid.UUID) (domain.Equipment, error)
	UpdateCondition(ctx context.Context, id uuid.UUID, condition domain.Condition) (domain.Equipment, error)
	RecordMaintenance(ctx context.Context, id uuid.UUID, condition domain.Condition) (domain.Equipment, error)
	ListEquipment(ctx context.Context, availableOnly bool, page, pageSize int) ([]domain.Equipment, int, error)
	ListMaintenanceDue(ctx context.Context) ([]domain.Equipment, error)
}

type MemberService interface {
	GetMember(ctx context.Context, id uuid.UUID) (domain.Member, error)
	ListMembers(ctx context.Context, page, pageSize int) ([]domain.Member, int, error)
	ChangeTier(ctx context.Context, id uuid.UUID, tier domain.MembershipTier) (domain.Member, error)
	DeactivateMember(ctx context.Context, id uuid.UUID) (domain.Member, error)
	ListPayments(ctx context.Context, memberID uuid.UUID, page, pageSize int) ([]domain.PaymentRecord, int, error)
}

type AuthService interface {
	Signup(ctx context.Context, name, email, password string, tier domain.MembershipTier) (domain.Member, string, error)
	Login(ctx context.Context, email, password string) (domain.Member, string, error)
}

type NotificationService interface {
	ListNotifications(ctx context.Context, memberID uuid.UUID, page, pageSize int) ([]domain.Notification, int, error)
	MarkAsRead(ctx context.Context, memberID, notificationID uuid.UUID) error
}

type EmailService interface {
	SendRentalCreated(ctx context.Context, email, name, equipmentName string, totalCents int64, endDate time.Time) error
	SendRentalReturned(ctx context.Context, email, name, equipmentName string, totalCents, lateFeeCents, damageFeeCents int64) error
	SendRentalOverdue(ctx context.Context, email, name, equipmentName string, lateFeeCents int64) error
	SendRentalCancelled(ctx context.Context, email, name, equipmentName string) error
	SendReservationCreated(ctx context.Context, email, name, equipmentName string, start, end time.Time) error
	SendReservationConfirmed(ctx context.Context, email, name, equipmentName string, start time.Time) error
	SendReservationCancelled(ctx context.Context, email, name, equipmentName, reason string) error
	SendReservationExpired(ctx context.Context, email, name, equipmentName string) error
	SendPaymentFailed(ctx context.Context, email, name, reason string) error
}
