package postgres

import (
	"time"

	"equiprent-backend/internal/domain"
)

// moneyFromCents rebuilds a Money from a stored cents column. Stored
// amounts satisfy the non-negative check constraint, so construction
// cannot fail on a well-formed row.
func moneyFromCents(cents int64) domain.Money {
	m, err := domain.NewMoneyFromCents(cents)
	if err != nil {
		return domain.Zero()
	}
	return m
}

// rangeFromColumns rebuilds a DateRange from stored period columns.
func rangeFromColumns(start, end time.Time) (domain.DateRange, error) {
	return domain.NewDateRange(start, end)
}
