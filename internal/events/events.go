package events

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Routing keys for domain events published to the topic exchange.
const (
	KeyRentalCreated        = "rental.created"
	KeyRentalReturned       = "rental.returned"
	KeyRentalOverdue        = "rental.overdue"
	KeyRentalExtended       = "rental.extended"
	KeyRentalCancelled      = "rental.cancelled"
	KeyReservationCreated   = "reservation.created"
	KeyReservationConfirmed = "reservation.confirmed"
	KeyReservationCancelled = "reservation.cancelled"
	KeyReservationFulfilled = "reservation.fulfilled"
	KeyReservationExpired   = "reservation.expired"
)

// Event is a domain event with its routing key and JSON-serializable payload.
type Event struct {
	Key     string
	Payload any
}

// Publisher delivers domain events to out-of-process subscribers.
// Publish failures are logged by callers and never fail a use case.
type Publisher interface {
	Publish(ctx context.Context, event Event) error
	Close() error
}

type RentalCreated struct {
	RentalID    uuid.UUID `json:"rental_id"`
	EquipmentID uuid.UUID `json:"equipment_id"`
	MemberID    uuid.UUID `json:"member_id"`
	Start       time.Time `json:"start"`
	End         time.Time `json:"end"`
	TotalCents  int64     `json:"total_cents"`
}

type RentalReturned struct {
	RentalID       uuid.UUID `json:"rental_id"`
	EquipmentID    uuid.UUID `json:"equipment_id"`
	MemberID       uuid.UUID `json:"member_id"`
	LateFeeCents   int64     `json:"late_fee_cents"`
	DamageFeeCents int64     `json:"damage_fee_cents"`
	TotalCents     int64     `json:"total_cents"`
}

type RentalOverdue struct {
	RentalID     uuid.UUID `json:"rental_id"`
	EquipmentID  uuid.UUID `json:"equipment_id"`
	MemberID     uuid.UUID `json:"member_id"`
	LateFeeCents int64     `json:"late_fee_cents"`
}

type RentalExtended struct {
	RentalID   uuid.UUID `json:"rental_id"`
	NewEnd     time.Time `json:"new_end"`
	TotalCents int64     `json:"total_cents"`
}

type RentalCancelled struct {
	RentalID uuid.UUID `json:"rental_id"`
}

type ReservationCreated struct {
	ReservationID uuid.UUID `json:"reservation_id"`
	EquipmentID   uuid.UUID `json:"equipment_id"`
	MemberID      uuid.UUID `json:"member_id"`
	Start         time.Time `json:"start"`
	End           time.Time `json:"end"`
}

type ReservationStatusChanged struct {
	ReservationID uuid.UUID `json:"reservation_id"`
	Status        string    `json:"status"`
}

type ReservationFulfilled struct {
	ReservationID uuid.UUID `json:"reservation_id"`
	RentalID      uuid.UUID `json:"rental_id"`
}
