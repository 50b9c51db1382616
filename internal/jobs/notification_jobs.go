package jobs

import (
	"context"

	"equiprent-backend/internal/logger"
)

// SendPickupReminders emails members whose confirmed reservations are
// inside their pickup window but not yet fulfilled.
func (jr *JobRunner) SendPickupReminders() {
	jr.runWithRecovery("SendPickupReminders", func() {
		ctx := context.Background()

		reservations, err := jr.services.Reservation.ListReadyToFulfill(ctx)
		if err != nil {
			logger.Error("Failed to list reservations ready to fulfill", "error", err)
			return
		}

		count := 0
		for _, reservation := range reservations {
			member, err := jr.repos.Members.GetByID(ctx, reservation.MemberID)
			if err != nil {
				logger.Error("Failed to load member for pickup reminder", "member_id", reservation.MemberID, "error", err)
				continue
			}
			equipment, err := jr.repos.Equipment.GetByID(ctx, reservation.EquipmentID)
			if err != nil {
				logger.Error("Failed to load equipment for pickup reminder", "equipment_id", reservation.EquipmentID, "error", err)
				continue
			}
			if err := jr.services.Email.SendReservationConfirmed(ctx, member.Email, member.Name, equipment.Name, reservation.Period.Start()); err != nil {
				logger.Error("Failed to send pickup reminder", "member_id", member.ID, "error", err)
				continue
			}
			count++
		}
		logger.Info("Sent pickup reminders", "count", count)
	})
}
