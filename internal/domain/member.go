package domain

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

type MembershipTier string

const (
	TierBasic    MembershipTier = "BASIC"
	TierSilver   MembershipTier = "SILVER"
	TierGold     MembershipTier = "GOLD"
	TierPlatinum MembershipTier = "PLATINUM"
)

type tierLimits struct {
	maxConcurrentRentals int
	maxRentalDays        int
	discountPercent      float64
}

var tierTable = map[MembershipTier]tierLimits{
	TierBasic:    {maxConcurrentRentals: 2, maxRentalDays: 7, discountPercent: 0},
	TierSilver:   {maxConcurrentRentals: 3, maxRentalDays: 14, discountPercent: 5},
	TierGold:     {maxConcurrentRentals: 5, maxRentalDays: 30, discountPercent: 10},
	TierPlatinum: {maxConcurrentRentals: 10, maxRentalDays: 60, discountPercent: 15},
}

func (t MembershipTier) IsValid() bool {
	_, ok := tierTable[t]
	return ok
}

// MaxConcurrentRentals is the number of rentals a member of this tier may
// hold at once.
func (t MembershipTier) MaxConcurrentRentals() int {
	return tierTable[t].maxConcurrentRentals
}

// MaxRentalDays is the longest rental period this tier may book.
func (t MembershipTier) MaxRentalDays() int {
	return tierTable[t].maxRentalDays
}

// DiscountPercent is the tier's discount on base rental cost.
func (t MembershipTier) DiscountPercent() float64 {
	return tierTable[t].discountPercent
}

// Member is a registered renter. ActiveRentalCount is bounded by the
// tier's concurrent cap and never drops below zero.
type Member struct {
	ID                uuid.UUID      `json:"id"`
	Name              string         `json:"name"`
	Email             string         `json:"email"`
	PasswordHash      string         `json:"-"`
	Tier              MembershipTier `json:"tier"`
	ActiveRentalCount int            `json:"active_rental_count"`
	TotalRentals      int            `json:"total_rentals"`
	IsActive          bool           `json:"is_active"`
	CreatedAt         time.Time      `json:"created_at"`
	UpdatedAt         time.Time      `json:"updated_at"`
}

func NewMember(name, email, passwordHash string, tier MembershipTier, now time.Time) (Member, error) {
	name = strings.TrimSpace(name)
	email = strings.ToLower(strings.TrimSpace(email))
	if name == "" {
		return Member{}, &ValidationError{Field: "name", Reason: "member name is required"}
	}
	if email == "" || !strings.Contains(email, "@") {
		return Member{}, &ValidationError{Field: "email", Reason: "a valid email is required"}
	}
	if !tier.IsValid() {
		return Member{}, &ValidationError{Field: "tier", Reason: "unknown membership tier"}
	}
	return Member{
		ID:           uuid.New(),
		Name:         name,
		Email:        email,
		PasswordHash: passwordHash,
		Tier:         tier,
		IsActive:     true,
		CreatedAt:    now,
		UpdatedAt:    now,
	}, nil
}

// CanRent reports whether the member may take on another rental.
func (m Member) CanRent() error {
	if !m.IsActive {
		return &EligibilityError{MemberID: m.ID, Reason: "member account is inactive"}
	}
	if m.ActiveRentalCount >= m.Tier.MaxConcurrentRentals() {
		return &EligibilityError{MemberID: m.ID, Reason: "concurrent rental limit reached for tier"}
	}
	return nil
}

// IncrementActiveRentals counts a new rental against the tier cap.
func (m Member) IncrementActiveRentals(now time.Time) (Member, error) {
	if m.ActiveRentalCount >= m.Tier.MaxConcurrentRentals() {
		return Member{}, &EligibilityError{MemberID: m.ID, Reason: "concurrent rental limit reached for tier"}
	}
	m.ActiveRentalCount++
	m.TotalRentals++
	m.UpdatedAt = now
	return m, nil
}

// DecrementActiveRentals releases a slot when a rental closes.
func (m Member) DecrementActiveRentals(now time.Time) (Member, error) {
	if m.ActiveRentalCount <= 0 {
		return Member{}, &StateConflictError{Resource: "member", ID: m.ID, State: "no-active-rentals", Reason: "active rental count is already zero"}
	}
	m.ActiveRentalCount--
	m.UpdatedAt = now
	return m, nil
}

// ChangeTier moves the member to a new tier. Illegal when the member
// already holds more rentals than the new tier's concurrent cap.
func (m Member) ChangeTier(tier MembershipTier, now time.Time) (Member, error) {
	if !tier.IsValid() {
		return Member{}, &ValidationError{Field: "tier", Reason: "unknown membership tier"}
	}
	if m.ActiveRentalCount > tier.MaxConcurrentRentals() {
		return Member{}, &StateConflictError{Resource: "member", ID: m.ID, State: string(m.Tier), Reason: "active rentals exceed the new tier's concurrent limit"}
	}
	m.Tier = tier
	m.UpdatedAt = now
	return m, nil
}

// Deactivate closes the account. Illegal while rentals are outstanding.
func (m Member) Deactivate(now time.Time) (Member, error) {
	if m.ActiveRentalCount > 0 {
		return Member{}, &StateConflictError{Resource: "member", ID: m.ID, State: "active-rentals", Reason: "cannot deactivate a member with active rentals"}
	}
	m.IsActive = false
	m.UpdatedAt = now
	return m, nil
}

// ApplyDiscount applies the tier discount to a base cost. Late and damage
// fees are never discounted.
func (m Member) ApplyDiscount(cost Money) Money {
	discounted, err := cost.Multiply(1 - m.Tier.DiscountPercent()/100)
	if err != nil {
		return cost
	}
	return discounted
}

// ValidateRentalDuration checks the requested period against the tier's
// duration cap.
func (m Member) ValidateRentalDuration(period DateRange) error {
	if period.Days() > m.Tier.MaxRentalDays() {
		return &EligibilityError{MemberID: m.ID, Reason: "rental period exceeds tier duration limit"}
	}
	return nil
}
