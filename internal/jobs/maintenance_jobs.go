package jobs

import (
	"context"

	"equiprent-backend/internal/logger"
)

// ReportMaintenanceDue logs every equipment unit whose maintenance
// interval has elapsed so operators can schedule servicing.
func (jr *JobRunner) ReportMaintenanceDue() {
	jr.runWithRecovery("ReportMaintenanceDue", func() {
		ctx := context.Background()

		items, err := jr.services.Equipment.ListMaintenanceDue(ctx)
		if err != nil {
			logger.Error("Failed to list equipment due for maintenance", "error", err)
			return
		}
		for _, equipment := range items {
			logger.Warn("Equipment due for maintenance",
				"equipment_id", equipment.ID,
				"name", equipment.Name,
				"condition", string(equipment.Condition),
				"last_maintenance", equipment.LastMaintenanceDate)
		}
		logger.Info("Maintenance report complete", "due_count", len(items))
	})
}
