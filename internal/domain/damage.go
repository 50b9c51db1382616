package domain

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// damageFeeCents maps total degradation levels to the fee charged. One
// level of degradation is acceptable wear and costs nothing.
var damageFeeCents = map[int]int64{
	2: 50_00,
	3: 150_00,
	4: 300_00,
	5: 500_00,
}

// DegradationLevels is the ordinal distance between two conditions in the
// severity ordering. Zero or negative means no degradation.
func DegradationLevels(before, after Condition) int {
	return after.Rank() - before.Rank()
}

// DamageFeeFor computes the fee for a condition change using the
// degradation table. This is the single canonical formula; Rental returns
// and standalone assessments both use it.
func DamageFeeFor(before, after Condition) Money {
	levels := DegradationLevels(before, after)
	if levels <= 1 {
		return Zero()
	}
	cents, ok := damageFeeCents[levels]
	if !ok {
		cents = damageFeeCents[5]
	}
	return Money{cents: cents}
}

// DamageAssessment is the recorded outcome of inspecting equipment after
// a rental, with the derived fee.
type DamageAssessment struct {
	ID              uuid.UUID `json:"id"`
	RentalID        uuid.UUID `json:"rental_id"`
	EquipmentID     uuid.UUID `json:"equipment_id"`
	ConditionBefore Condition `json:"condition_before"`
	ConditionAfter  Condition `json:"condition_after"`
	DamageFee       Money     `json:"damage_fee"`
	Notes           string    `json:"notes"`
	AssessedBy      string    `json:"assessed_by"`
	AssessedAt      time.Time `json:"assessed_at"`
}

func NewDamageAssessment(rentalID, equipmentID uuid.UUID, before, after Condition, notes, assessedBy string, now time.Time) (DamageAssessment, error) {
	if !before.IsValid() {
		return DamageAssessment{}, &ValidationError{Field: "condition_before", Reason: "unknown equipment condition"}
	}
	if !after.IsValid() {
		return DamageAssessment{}, &ValidationError{Field: "condition_after", Reason: "unknown equipment condition"}
	}
	assessedBy = strings.TrimSpace(assessedBy)
	if assessedBy == "" {
		return DamageAssessment{}, &ValidationError{Field: "assessed_by", Reason: "assessor name is required"}
	}
	return DamageAssessment{
		ID:              uuid.New(),
		RentalID:        rentalID,
		EquipmentID:     equipmentID,
		ConditionBefore: before,
		ConditionAfter:  after,
		DamageFee:       DamageFeeFor(before, after),
		Notes:           strings.TrimSpace(notes),
		AssessedBy:      assessedBy,
		AssessedAt:      now,
	}, nil
}
