package domain

import (
	"fmt"
	"math"
	"time"
)

const hoursPerDay = 24

// DateRange is a half-open interval [start, end). The end instant is
// exclusive, so two ranges that merely touch do not overlap.
type DateRange struct {
	start time.Time
	end   time.Time
}

// NewDateRange builds a range, rejecting zero-length or inverted intervals.
func NewDateRange(start, end time.Time) (DateRange, error) {
	if !start.Before(end) {
		return DateRange{}, &ValidationError{Field: "period", Reason: "start date must be before end date"}
	}
	return DateRange{start: start.UTC(), end: end.UTC()}, nil
}

func (r DateRange) Start() time.Time {
	return r.start
}

func (r DateRange) End() time.Time {
	return r.end
}

// Days is the length of the range in days; partial days count as a full day.
func (r DateRange) Days() int {
	return int(math.Ceil(r.end.Sub(r.start).Hours() / hoursPerDay))
}

// Overlaps reports whether two half-open ranges share any instant.
// Adjacent ranges (one ends exactly where the other starts) do not overlap.
func (r DateRange) Overlaps(other DateRange) bool {
	return r.start.Before(other.end) && other.start.Before(r.end)
}

// Contains reports whether t falls within [start, end).
func (r DateRange) Contains(t time.Time) bool {
	return !t.Before(r.start) && t.Before(r.end)
}

func (r DateRange) HasStarted(now time.Time) bool {
	return !now.Before(r.start)
}

func (r DateRange) HasEnded(now time.Time) bool {
	return !now.Before(r.end)
}

func (r DateRange) IsActive(now time.Time) bool {
	return r.HasStarted(now) && !r.HasEnded(now)
}

// DaysUntilEnd is the number of days from now until the end of the range,
// rounded up. It is negative once the range has ended.
func (r DateRange) DaysUntilEnd(now time.Time) int {
	return int(math.Ceil(r.end.Sub(now).Hours() / hoursPerDay))
}

// ExtendByDays returns a new range with the same start and the end pushed
// out by the given number of days.
func (r DateRange) ExtendByDays(days int) (DateRange, error) {
	if days <= 0 {
		return DateRange{}, &ValidationError{Field: "days", Reason: "extension must be a positive number of days"}
	}
	return DateRange{start: r.start, end: r.end.AddDate(0, 0, days)}, nil
}

func (r DateRange) String() string {
	return fmt.Sprintf("[%s, %s)", r.start.Format("2006-01-02"), r.end.Format("2006-01-02"))
}
