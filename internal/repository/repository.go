package repository

import (
	"context"
	"time"

	"github.com/google/uuid"

	"equiprent-backend/internal/domain"
)

// Repositories exchange value snapshots, never shared pointers, so no
// caller can alias another caller's read.

type EquipmentRepository interface {
	Create(ctx context.Context, e domain.Equipment) error
	GetByID(ctx context.Context, id uuid.UUID) (domain.Equipment, error)
	Update(ctx context.Context, e domain.Equipment) error
	List(ctx context.Context, page, pageSize int) ([]domain.Equipment, int, error)
	ListAvailable(ctx context.Context, page, pageSize int) ([]domain.Equipment, int, error)
	// ListMaintenanceDue finds units whose last service (or purchase, if
	// never serviced) falls on or before servicedBefore.
	ListMaintenanceDue(ctx context.Context, servicedBefore time.Time) ([]domain.Equipment, error)
	Exists(ctx context.Context, id uuid.UUID) (bool, error)
	Count(ctx context.Context) (int, error)
}

type MemberRepository interface {
	Create(ctx context.Context, m domain.Member) error
	GetByID(ctx context.Context, id uuid.UUID) (domain.Member, error)
	GetByEmail(ctx context.Context, email string) (domain.Member, error)
	Update(ctx context.Context, m domain.Member) error
	List(ctx context.Context, page, pageSize int) ([]domain.Member, int, error)
	Count(ctx context.Context) (int, error)
}

type RentalRepository interface {
	// Create persists a new rental. For live rentals the write re-checks
	// period overlap against other live holds on the same equipment inside
	// a per-equipment critical section and fails with domain.ConflictError
	// if another party won the window first.
	Create(ctx context.Context, r domain.Rental) error
	GetByID(ctx context.Context, id uuid.UUID) (domain.Rental, error)
	Update(ctx context.Context, r domain.Rental) error
	ListByMember(ctx context.Context, memberID uuid.UUID, status domain.RentalStatus, page, pageSize int) ([]domain.Rental, int, error)
	ListLiveByEquipment(ctx context.Context, equipmentID uuid.UUID) ([]domain.Rental, error)
	// ListOverdue finds rentals still ACTIVE whose period ended before asOf,
	// i.e. rentals needing the overdue transition.
	ListOverdue(ctx context.Context, asOf time.Time) ([]domain.Rental, error)
}

type ReservationRepository interface {
	// Create persists a new reservation under the same per-equipment
	// one-winner discipline as RentalRepository.Create.
	Create(ctx context.Context, r domain.Reservation) error
	GetByID(ctx context.Context, id uuid.UUID) (domain.Reservation, error)
	Update(ctx context.Context, r domain.Reservation) error
	ListByMember(ctx context.Context, memberID uuid.UUID, status domain.ReservationStatus, page, pageSize int) ([]domain.Reservation, int, error)
	ListLiveByEquipment(ctx context.Context, equipmentID uuid.UUID) ([]domain.Reservation, error)
	// ListExpired finds live reservations whose period ended before asOf.
	ListExpired(ctx context.Context, asOf time.Time) ([]domain.Reservation, error)
	// ListReadyToFulfill finds confirmed reservations whose period has
	// started but not yet ended at asOf.
	ListReadyToFulfill(ctx context.Context, asOf time.Time) ([]domain.Reservation, error)
}

type DamageAssessmentRepository interface {
	Create(ctx context.Context, a domain.DamageAssessment) error
	GetByID(ctx context.Context, id uuid.UUID) (domain.DamageAssessment, error)
	ListByRental(ctx context.Context, rentalID uuid.UUID) ([]domain.DamageAssessment, error)
}

type PaymentRecordRepository interface {
	Create(ctx context.Context, p domain.PaymentRecord) error
	ListByMember(ctx context.Context, memberID uuid.UUID, page, pageSize int) ([]domain.PaymentRecord, int, error)
	// FindByRental returns the most recent record of the given kind for a
	// rental, e.g. the charge to refund on cancellation.
	FindByRental(ctx context.Context, rentalID uuid.UUID, kind domain.PaymentKind) (domain.PaymentRecord, error)
}

type NotificationRepository interface {
	Create(ctx context.Context, n domain.Notification) error
	ListByMember(ctx context.Context, memberID uuid.UUID, limit, offset int) ([]domain.Notification, int, error)
	MarkAsRead(ctx context.Context, id, memberID uuid.UUID) error
}
