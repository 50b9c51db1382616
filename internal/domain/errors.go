package domain

import (
	"fmt"

	"github.com/google/uuid"
)

// NotFoundError indicates an aggregate that does not exist. Resource names
// the aggregate kind (equipment, member, rental, reservation).
type NotFoundError struct {
	Resource string
	ID       uuid.UUID
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %s not found", e.Resource, e.ID)
}

// StateConflictError indicates an illegal transition for the resource's
// current state, e.g. returning an already-returned rental.
type StateConflictError struct {
	Resource string
	ID       uuid.UUID
	State    string
	Reason   string
}

func (e *StateConflictError) Error() string {
	return fmt.Sprintf("%s %s in state %s: %s", e.Resource, e.ID, e.State, e.Reason)
}

// EligibilityError indicates the acting member is not allowed to perform
// the operation (inactive, over tier cap, overdue rentals outstanding).
type EligibilityError struct {
	MemberID uuid.UUID
	Reason   string
}

func (e *EligibilityError) Error() string {
	return fmt.Sprintf("member %s not eligible: %s", e.MemberID, e.Reason)
}

// ValidationError indicates malformed input caught before any mutation.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

// PaymentError indicates a gateway failure. No aggregate state is
// persisted for the use case that produced it.
type PaymentError struct {
	TransactionID string
	Reason        string
}

func (e *PaymentError) Error() string {
	if e.TransactionID == "" {
		return fmt.Sprintf("payment failed: %s", e.Reason)
	}
	return fmt.Sprintf("payment %s failed: %s", e.TransactionID, e.Reason)
}

// ConflictError indicates a scheduling conflict: another live reservation
// or rental already holds the equipment for an overlapping window.
type ConflictError struct {
	EquipmentID uuid.UUID
	Period      DateRange
	Reason      string
}

func (e *ConflictError) Error() string {
	return fmt.Sprintf("equipment %s conflict for %s: %s", e.EquipmentID, e.Period, e.Reason)
}
