package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"equiprent-backend/internal/domain"
)

func TestEquipmentService_ListMaintenanceDue(t *testing.T) {
	now := date(2026, 6, 1)
	repo := new(mockEquipmentRepo)
	svc := &equipmentService{
		equipmentRepo: repo,
		now:           func() time.Time { return now },
	}

	cutoff := now.Add(-domain.MaintenanceInterval)
	due := testEquipment(t)
	repo.On("ListMaintenanceDue", mock.Anything, cutoff).Return([]domain.Equipment{due}, nil)

	items, err := svc.ListMaintenanceDue(context.Background())
	require.NoError(t, err)
	assert.Len(t, items, 1)
	repo.AssertExpectations(t)

	t.Run("Cutoff agrees with the domain predicate", func(t *testing.T) {
		recent := now.AddDate(0, 0, -30)
		serviced := testEquipment(t)
		serviced.LastMaintenanceDate = &recent

		assert.False(t, serviced.IsMaintenanceDue(now))
		assert.True(t, recent.After(cutoff))

		stale := now.Add(-domain.MaintenanceInterval)
		overdue := testEquipment(t)
		overdue.LastMaintenanceDate = &stale

		assert.True(t, overdue.IsMaintenanceDue(now))
		assert.False(t, stale.After(cutoff))
	})
}
