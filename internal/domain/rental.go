package domain

import (
	"time"

	"github.com/google/uuid"
)

type RentalStatus string

const (
	RentalStatusActive    RentalStatus = "ACTIVE"
	RentalStatusOverdue   RentalStatus = "OVERDUE"
	RentalStatusReturned  RentalStatus = "RETURNED"
	RentalStatusCancelled RentalStatus = "CANCELLED"
)

// fallbackDailyLateFeeCents is charged per overdue day when a rental is
// returned late without a prior overdue transition ($10/day).
const fallbackDailyLateFeeCents = 10_00

// Rental is an equipment unit in (or formerly in) a member's possession
// for a bounded period, with cost and fee accounting. Transitions return
// an updated snapshot and never mutate the receiver.
type Rental struct {
	ID          uuid.UUID `json:"id"`
	EquipmentID uuid.UUID `json:"equipment_id"`
	MemberID    uuid.UUID `json:"member_id"`
	// ReservationID links back to the reservation this rental fulfilled,
	// if any.
	ReservationID     *uuid.UUID   `json:"reservation_id,omitempty"`
	Period            DateRange    `json:"period"`
	Status            RentalStatus `json:"status"`
	BaseCost          Money        `json:"base_cost"`
	LateFee           Money        `json:"late_fee"`
	DamageFee         Money        `json:"damage_fee"`
	TotalCost         Money        `json:"total_cost"`
	ConditionAtStart  Condition    `json:"condition_at_start"`
	ConditionAtReturn *Condition   `json:"condition_at_return,omitempty"`
	CreatedAt         time.Time    `json:"created_at"`
	ReturnedAt        *time.Time   `json:"returned_at,omitempty"`
}

// NewRental opens a rental in ACTIVE state. The base cost must be positive.
func NewRental(equipmentID, memberID uuid.UUID, period DateRange, baseCost Money, conditionAtStart Condition, now time.Time) (Rental, error) {
	if baseCost.IsZero() {
		return Rental{}, &ValidationError{Field: "base_cost", Reason: "base cost must be positive"}
	}
	if !conditionAtStart.IsValid() {
		return Rental{}, &ValidationError{Field: "condition_at_start", Reason: "unknown equipment condition"}
	}
	return Rental{
		ID:               uuid.New(),
		EquipmentID:      equipmentID,
		MemberID:         memberID,
		Period:           period,
		Status:           RentalStatusActive,
		BaseCost:         baseCost,
		TotalCost:        baseCost,
		ConditionAtStart: conditionAtStart,
		CreatedAt:        now,
	}, nil
}

// daysOverdue counts full or partial days past the period end, at least 1
// once the period has ended.
func (r Rental) daysOverdue(now time.Time) int {
	days := -r.Period.DaysUntilEnd(now)
	if days < 1 {
		days = 1
	}
	return days
}

// MarkAsOverdue accrues the late fee for a rental whose period has ended.
// Legal only from ACTIVE.
func (r Rental) MarkAsOverdue(dailyLateFeeRate Money, now time.Time) (Rental, error) {
	if r.Status != RentalStatusActive {
		return Rental{}, &StateConflictError{Resource: "rental", ID: r.ID, State: string(r.Status), Reason: "only an active rental can become overdue"}
	}
	if !r.Period.HasEnded(now) {
		return Rental{}, &StateConflictError{Resource: "rental", ID: r.ID, State: string(r.Status), Reason: "rental period has not ended"}
	}
	lateFee, err := dailyLateFeeRate.MultiplyInt(int64(r.daysOverdue(now)))
	if err != nil {
		return Rental{}, err
	}
	r.Status = RentalStatusOverdue
	r.LateFee = lateFee
	r.TotalCost = r.BaseCost.Add(r.LateFee).Add(r.DamageFee)
	return r, nil
}

// Return closes out the rental. Legal from ACTIVE or OVERDUE. A rental
// still ACTIVE past its period end accrues the fallback late fee inline,
// so a late return does not require a prior overdue transition.
func (r Rental) Return(conditionAtReturn Condition, damageFee Money, now time.Time) (Rental, error) {
	if r.Status != RentalStatusActive && r.Status != RentalStatusOverdue {
		return Rental{}, &StateConflictError{Resource: "rental", ID: r.ID, State: string(r.Status), Reason: "rental is already returned or cancelled"}
	}
	if !conditionAtReturn.IsValid() {
		return Rental{}, &ValidationError{Field: "condition_at_return", Reason: "unknown equipment condition"}
	}
	if r.Status == RentalStatusActive && r.Period.HasEnded(now) {
		fallback := Money{cents: fallbackDailyLateFeeCents}
		lateFee, err := fallback.MultiplyInt(int64(r.daysOverdue(now)))
		if err != nil {
			return Rental{}, err
		}
		r.LateFee = lateFee
	}
	r.Status = RentalStatusReturned
	r.DamageFee = damageFee
	r.TotalCost = r.BaseCost.Add(r.LateFee).Add(r.DamageFee)
	r.ConditionAtReturn = &conditionAtReturn
	r.ReturnedAt = &now
	return r, nil
}

// ExtendPeriod pushes the end date out and adds the extension cost to the
// base cost. Extending an overdue rental forgives accrued lateness: the
// status reverts to ACTIVE and the late fee resets to zero.
func (r Rental) ExtendPeriod(additionalDays int, additionalCost Money) (Rental, error) {
	if r.Status != RentalStatusActive && r.Status != RentalStatusOverdue {
		return Rental{}, &StateConflictError{Resource: "rental", ID: r.ID, State: string(r.Status), Reason: "rental is already returned or cancelled"}
	}
	extended, err := r.Period.ExtendByDays(additionalDays)
	if err != nil {
		return Rental{}, err
	}
	r.Period = extended
	r.BaseCost = r.BaseCost.Add(additionalCost)
	if r.Status == RentalStatusOverdue {
		r.Status = RentalStatusActive
		r.LateFee = Zero()
	}
	r.TotalCost = r.BaseCost.Add(r.LateFee).Add(r.DamageFee)
	return r, nil
}

// Cancel voids the rental and zeroes its total cost regardless of any
// accrued fees. Illegal once returned or cancelled.
func (r Rental) Cancel() (Rental, error) {
	if r.Status == RentalStatusReturned || r.Status == RentalStatusCancelled {
		return Rental{}, &StateConflictError{Resource: "rental", ID: r.ID, State: string(r.Status), Reason: "rental is already closed"}
	}
	r.Status = RentalStatusCancelled
	r.TotalCost = Zero()
	return r, nil
}

// IsOverdue identifies rentals needing the overdue transition: still
// ACTIVE with an ended period. Rentals already flagged OVERDUE are not
// re-reported.
func (r Rental) IsOverdue(now time.Time) bool {
	return r.Status == RentalStatusActive && r.Period.HasEnded(now)
}

// IsLive reports whether the rental currently holds its equipment.
func (r Rental) IsLive() bool {
	return r.Status == RentalStatusActive || r.Status == RentalStatusOverdue
}
