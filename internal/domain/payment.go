package domain

import (
	"time"

	"github.com/google/uuid"
)

type PaymentKind string

const (
	PaymentKindCharge        PaymentKind = "CHARGE"
	PaymentKindAuthorization PaymentKind = "AUTHORIZATION"
	PaymentKindCapture       PaymentKind = "CAPTURE"
	PaymentKindCancellation  PaymentKind = "CANCELLATION"
	PaymentKindRefund        PaymentKind = "REFUND"
)

// PaymentRecord is the audit trail of gateway interactions for a rental
// or reservation. An authorization is resolved by exactly one later
// capture or cancellation record referencing its transaction id.
type PaymentRecord struct {
	ID            uuid.UUID   `json:"id"`
	MemberID      uuid.UUID   `json:"member_id"`
	RentalID      *uuid.UUID  `json:"rental_id,omitempty"`
	ReservationID *uuid.UUID  `json:"reservation_id,omitempty"`
	Kind          PaymentKind `json:"kind"`
	Amount        Money       `json:"amount"`
	TransactionID string      `json:"transaction_id"`
	Description   string      `json:"description"`
	CreatedAt     time.Time   `json:"created_at"`
}
