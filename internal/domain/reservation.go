package domain

import (
	"time"

	"github.com/google/uuid"
)

type ReservationStatus string

const (
	ReservationStatusPending   ReservationStatus = "PENDING"
	ReservationStatusConfirmed ReservationStatus = "CONFIRMED"
	ReservationStatusCancelled ReservationStatus = "CANCELLED"
	ReservationStatusFulfilled ReservationStatus = "FULFILLED"
	ReservationStatusExpired   ReservationStatus = "EXPIRED"
)

// Reservation is a future-dated hold on equipment prior to physical
// handoff, convertible to a Rental on fulfillment.
type Reservation struct {
	ID              uuid.UUID         `json:"id"`
	EquipmentID     uuid.UUID         `json:"equipment_id"`
	MemberID        uuid.UUID         `json:"member_id"`
	Period          DateRange         `json:"period"`
	Status          ReservationStatus `json:"status"`
	AuthorizationID string            `json:"authorization_id,omitempty"`
	RentalID        *uuid.UUID        `json:"rental_id,omitempty"`
	CancelReason    string            `json:"cancel_reason,omitempty"`
	CreatedAt       time.Time         `json:"created_at"`
	ConfirmedAt     *time.Time        `json:"confirmed_at,omitempty"`
	CancelledAt     *time.Time        `json:"cancelled_at,omitempty"`
	FulfilledAt     *time.Time        `json:"fulfilled_at,omitempty"`
}

// NewReservation opens a PENDING hold on equipment for a future window.
func NewReservation(equipmentID, memberID uuid.UUID, period DateRange, now time.Time) (Reservation, error) {
	if period.HasEnded(now) {
		return Reservation{}, &ValidationError{Field: "period", Reason: "reservation period is already in the past"}
	}
	return Reservation{
		ID:          uuid.New(),
		EquipmentID: equipmentID,
		MemberID:    memberID,
		Period:      period,
		Status:      ReservationStatusPending,
		CreatedAt:   now,
	}, nil
}

// IsLive reports whether the reservation still holds its window.
// Terminal states (cancelled, fulfilled, expired) release the hold.
func (r Reservation) IsLive() bool {
	return r.Status == ReservationStatusPending || r.Status == ReservationStatusConfirmed
}

// Confirm moves a PENDING reservation to CONFIRMED. A non-empty
// authorizationID records the payment hold backing the confirmation.
func (r Reservation) Confirm(authorizationID string, now time.Time) (Reservation, error) {
	if r.Status != ReservationStatusPending {
		return Reservation{}, &StateConflictError{Resource: "reservation", ID: r.ID, State: string(r.Status), Reason: "only a pending reservation can be confirmed"}
	}
	r.Status = ReservationStatusConfirmed
	r.AuthorizationID = authorizationID
	r.ConfirmedAt = &now
	return r, nil
}

// Cancel releases the hold. Legal from PENDING or CONFIRMED.
func (r Reservation) Cancel(reason string, now time.Time) (Reservation, error) {
	if !r.IsLive() {
		return Reservation{}, &StateConflictError{Resource: "reservation", ID: r.ID, State: string(r.Status), Reason: "reservation is already closed"}
	}
	r.Status = ReservationStatusCancelled
	r.CancelReason = reason
	r.CancelledAt = &now
	return r, nil
}

// MarkFulfilled records the hand-off that converted this reservation into
// a rental. Legal only from CONFIRMED and only once the period has started.
func (r Reservation) MarkFulfilled(rentalID uuid.UUID, now time.Time) (Reservation, error) {
	if r.Status != ReservationStatusConfirmed {
		return Reservation{}, &StateConflictError{Resource: "reservation", ID: r.ID, State: string(r.Status), Reason: "only a confirmed reservation can be fulfilled"}
	}
	if !r.Period.HasStarted(now) {
		return Reservation{}, &StateConflictError{Resource: "reservation", ID: r.ID, State: string(r.Status), Reason: "reservation period has not started"}
	}
	r.Status = ReservationStatusFulfilled
	r.RentalID = &rentalID
	r.FulfilledAt = &now
	return r, nil
}

// MarkExpired retires a reservation whose window elapsed without
// fulfillment. Applied by the periodic sweep, never spontaneously.
func (r Reservation) MarkExpired(now time.Time) (Reservation, error) {
	if !r.IsLive() {
		return Reservation{}, &StateConflictError{Resource: "reservation", ID: r.ID, State: string(r.Status), Reason: "reservation is already closed"}
	}
	if !r.Period.HasEnded(now) {
		return Reservation{}, &StateConflictError{Resource: "reservation", ID: r.ID, State: string(r.Status), Reason: "reservation period has not ended"}
	}
	r.Status = ReservationStatusExpired
	return r, nil
}

// ConflictsWith reports whether two reservations contend for the same
// equipment: both live, same unit, overlapping half-open windows.
// Adjacent windows do not conflict.
func (r Reservation) ConflictsWith(other Reservation) bool {
	if r.ID == other.ID || r.EquipmentID != other.EquipmentID {
		return false
	}
	if !r.IsLive() || !other.IsLive() {
		return false
	}
	return r.Period.Overlaps(other.Period)
}

// ConflictsWithRental reports whether a live rental on the same equipment
// overlaps this reservation's window.
func (r Reservation) ConflictsWithRental(rental Rental) bool {
	if r.EquipmentID != rental.EquipmentID {
		return false
	}
	if !rental.IsLive() {
		return false
	}
	return r.Period.Overlaps(rental.Period)
}
