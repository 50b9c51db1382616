package domain

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// Condition is the physical state of an equipment unit. Conditions are
// ordered by severity: a larger rank is a worse condition.
type Condition string

const (
	ConditionExcellent   Condition = "EXCELLENT"
	ConditionGood        Condition = "GOOD"
	ConditionFair        Condition = "FAIR"
	ConditionPoor        Condition = "POOR"
	ConditionDamaged     Condition = "DAMAGED"
	ConditionUnderRepair Condition = "UNDER_REPAIR"
)

var conditionRanks = map[Condition]int{
	ConditionExcellent:   0,
	ConditionGood:        1,
	ConditionFair:        2,
	ConditionPoor:        3,
	ConditionDamaged:     4,
	ConditionUnderRepair: 5,
}

// Rank is the ordinal position of the condition in the severity ordering.
func (c Condition) Rank() int {
	return conditionRanks[c]
}

// IsValid reports whether c is one of the known conditions.
func (c Condition) IsValid() bool {
	_, ok := conditionRanks[c]
	return ok
}

// IsRentable reports whether equipment in this condition may be handed out.
func (c Condition) IsRentable() bool {
	switch c {
	case ConditionExcellent, ConditionGood, ConditionFair, ConditionPoor:
		return true
	default:
		return false
	}
}

// Equipment is a physical unit available for rental. Availability is
// derived from condition rentability and current possession.
type Equipment struct {
	ID                  uuid.UUID  `json:"id"`
	Name                string     `json:"name"`
	Category            string     `json:"category"`
	DailyRate           Money      `json:"daily_rate"`
	Condition           Condition  `json:"condition"`
	IsAvailable         bool       `json:"is_available"`
	CurrentRentalID     *uuid.UUID `json:"current_rental_id,omitempty"`
	PurchaseDate        time.Time  `json:"purchase_date"`
	LastMaintenanceDate *time.Time `json:"last_maintenance_date,omitempty"`
	CreatedAt           time.Time  `json:"created_at"`
	UpdatedAt           time.Time  `json:"updated_at"`
}

// MaintenanceInterval is how long a unit may go without maintenance
// before it is flagged for service.
const MaintenanceInterval = 180 * 24 * time.Hour

// NewEquipment creates a unit, available immediately if its initial
// condition is rentable.
func NewEquipment(name, category string, dailyRate Money, condition Condition, purchaseDate, now time.Time) (Equipment, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return Equipment{}, &ValidationError{Field: "name", Reason: "equipment name is required"}
	}
	if !condition.IsValid() {
		return Equipment{}, &ValidationError{Field: "condition", Reason: "unknown equipment condition"}
	}
	if dailyRate.IsZero() {
		return Equipment{}, &ValidationError{Field: "daily_rate", Reason: "daily rate must be positive"}
	}
	return Equipment{
		ID:           uuid.New(),
		Name:         name,
		Category:     strings.TrimSpace(category),
		DailyRate:    dailyRate,
		Condition:    condition,
		IsAvailable:  condition.IsRentable(),
		PurchaseDate: purchaseDate,
		CreatedAt:    now,
		UpdatedAt:    now,
	}, nil
}

// MarkAsRented takes the unit out of the available pool and records the
// rental holding it.
func (e Equipment) MarkAsRented(rentalID uuid.UUID, now time.Time) (Equipment, error) {
	if !e.IsAvailable {
		return Equipment{}, &StateConflictError{Resource: "equipment", ID: e.ID, State: string(e.Condition), Reason: "equipment is not available"}
	}
	if !e.Condition.IsRentable() {
		return Equipment{}, &StateConflictError{Resource: "equipment", ID: e.ID, State: string(e.Condition), Reason: "equipment condition is not rentable"}
	}
	e.IsAvailable = false
	e.CurrentRentalID = &rentalID
	e.UpdatedAt = now
	return e, nil
}

// MarkAsReturned records the post-rental condition and restores
// availability if that condition is still rentable.
func (e Equipment) MarkAsReturned(condition Condition, now time.Time) (Equipment, error) {
	if e.CurrentRentalID == nil {
		return Equipment{}, &StateConflictError{Resource: "equipment", ID: e.ID, State: string(e.Condition), Reason: "equipment is not currently rented"}
	}
	if !condition.IsValid() {
		return Equipment{}, &ValidationError{Field: "condition", Reason: "unknown equipment condition"}
	}
	e.Condition = condition
	e.IsAvailable = condition.IsRentable()
	e.CurrentRentalID = nil
	e.UpdatedAt = now
	return e, nil
}

// UpdateCondition degrades or restores the unit's condition independent of
// any rental. A non-rentable condition forces unavailability even while
// the unit is out.
func (e Equipment) UpdateCondition(condition Condition, now time.Time) (Equipment, error) {
	if !condition.IsValid() {
		return Equipment{}, &ValidationError{Field: "condition", Reason: "unknown equipment condition"}
	}
	e.Condition = condition
	if !condition.IsRentable() {
		e.IsAvailable = false
	} else if e.CurrentRentalID == nil {
		e.IsAvailable = true
	}
	e.UpdatedAt = now
	return e, nil
}

// RecordMaintenance logs a completed service and returns the unit to the
// pool if its condition allows it.
func (e Equipment) RecordMaintenance(condition Condition, now time.Time) (Equipment, error) {
	if e.CurrentRentalID != nil {
		return Equipment{}, &StateConflictError{Resource: "equipment", ID: e.ID, State: string(e.Condition), Reason: "equipment is currently rented"}
	}
	updated, err := e.UpdateCondition(condition, now)
	if err != nil {
		return Equipment{}, err
	}
	maintained := now
	updated.LastMaintenanceDate = &maintained
	return updated, nil
}

// IsMaintenanceDue reports whether the unit has gone longer than the
// maintenance interval since its last service (or purchase).
func (e Equipment) IsMaintenanceDue(now time.Time) bool {
	last := e.PurchaseDate
	if e.LastMaintenanceDate != nil {
		last = *e.LastMaintenanceDate
	}
	return now.Sub(last) >= MaintenanceInterval
}
