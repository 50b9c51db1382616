package jobs

import (
	"context"

	"equiprent-backend/internal/logger"
)

// MarkOverdueRentals transitions ACTIVE rentals past their end date to
// OVERDUE, accruing late fees and notifying the members.
func (jr *JobRunner) MarkOverdueRentals() {
	jr.runWithRecovery("MarkOverdueRentals", func() {
		ctx := context.Background()

		count, err := jr.services.Rental.SweepOverdue(ctx)
		if err != nil {
			logger.Error("Failed to sweep overdue rentals", "error", err)
			return
		}
		logger.Info("Marked rentals as overdue", "count", count)
	})
}

// ExpireReservations retires live reservations whose window elapsed
// without fulfillment and releases their payment holds.
func (jr *JobRunner) ExpireReservations() {
	jr.runWithRecovery("ExpireReservations", func() {
		ctx := context.Background()

		count, err := jr.services.Reservation.SweepExpired(ctx)
		if err != nil {
			logger.Error("Failed to sweep expired reservations", "error", err)
			return
		}
		logger.Info("Expired reservations", "count", count)
	})
}
