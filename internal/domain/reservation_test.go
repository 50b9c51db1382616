package domain

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func makeReservation(t *testing.T) Reservation {
	t.Helper()
	period := mustRange(t, day(2026, 7, 10), day(2026, 7, 15))
	rv, err := NewReservation(uuid.New(), uuid.New(), period, day(2026, 7, 1))
	require.NoError(t, err)
	return rv
}

func TestNewReservation(t *testing.T) {
	rv := makeReservation(t)
	assert.Equal(t, ReservationStatusPending, rv.Status)
	assert.True(t, rv.IsLive())

	t.Run("Rejects past window", func(t *testing.T) {
		period := mustRange(t, day(2026, 7, 10), day(2026, 7, 15))
		_, err := NewReservation(uuid.New(), uuid.New(), period, day(2026, 8, 1))
		assert.Error(t, err)
	})
}

func TestReservation_Confirm(t *testing.T) {
	rv := makeReservation(t)

	confirmed, err := rv.Confirm("auth_123", day(2026, 7, 2))
	require.NoError(t, err)
	assert.Equal(t, ReservationStatusConfirmed, confirmed.Status)
	assert.Equal(t, "auth_123", confirmed.AuthorizationID)
	require.NotNil(t, confirmed.ConfirmedAt)

	t.Run("Original untouched", func(t *testing.T) {
		assert.Equal(t, ReservationStatusPending, rv.Status)
	})

	t.Run("Already confirmed", func(t *testing.T) {
		_, err := confirmed.Confirm("auth_456", day(2026, 7, 3))
		assert.Error(t, err)
	})
}

func TestReservation_Cancel(t *testing.T) {
	rv := makeReservation(t)

	cancelled, err := rv.Cancel("changed plans", day(2026, 7, 3))
	require.NoError(t, err)
	assert.Equal(t, ReservationStatusCancelled, cancelled.Status)
	assert.Equal(t, "changed plans", cancelled.CancelReason)
	assert.False(t, cancelled.IsLive())

	t.Run("From confirmed", func(t *testing.T) {
		confirmed, err := rv.Confirm("", day(2026, 7, 2))
		require.NoError(t, err)
		_, err = confirmed.Cancel("", day(2026, 7, 3))
		assert.NoError(t, err)
	})

	t.Run("Double cancel", func(t *testing.T) {
		_, err := cancelled.Cancel("", day(2026, 7, 4))
		assert.Error(t, err)
	})
}

func TestReservation_MarkFulfilled(t *testing.T) {
	rv := makeReservation(t)
	rentalID := uuid.New()

	t.Run("Pending cannot be fulfilled", func(t *testing.T) {
		_, err := rv.MarkFulfilled(rentalID, day(2026, 7, 10))
		assert.Error(t, err)
	})

	confirmed, err := rv.Confirm("auth_123", day(2026, 7, 2))
	require.NoError(t, err)

	t.Run("Before the window opens", func(t *testing.T) {
		_, err := confirmed.MarkFulfilled(rentalID, day(2026, 7, 9))
		assert.Error(t, err)
	})

	t.Run("Once the window opens", func(t *testing.T) {
		fulfilled, err := confirmed.MarkFulfilled(rentalID, day(2026, 7, 10))
		require.NoError(t, err)
		assert.Equal(t, ReservationStatusFulfilled, fulfilled.Status)
		require.NotNil(t, fulfilled.RentalID)
		assert.Equal(t, rentalID, *fulfilled.RentalID)
		require.NotNil(t, fulfilled.FulfilledAt)
		assert.False(t, fulfilled.IsLive())
	})
}

func TestReservation_MarkExpired(t *testing.T) {
	rv := makeReservation(t)

	t.Run("Before the window closes", func(t *testing.T) {
		_, err := rv.MarkExpired(day(2026, 7, 12))
		assert.Error(t, err)
	})

	t.Run("After the window closes", func(t *testing.T) {
		expired, err := rv.MarkExpired(day(2026, 7, 15))
		require.NoError(t, err)
		assert.Equal(t, ReservationStatusExpired, expired.Status)
	})

	t.Run("Already closed", func(t *testing.T) {
		cancelled, err := rv.Cancel("", day(2026, 7, 3))
		require.NoError(t, err)
		_, err = cancelled.MarkExpired(day(2026, 7, 16))
		assert.Error(t, err)
	})
}

func TestReservation_ConflictsWith(t *testing.T) {
	equipmentID := uuid.New()
	base := makeReservation(t)
	base.EquipmentID = equipmentID

	other := makeReservation(t)
	other.EquipmentID = equipmentID
	other.Period = mustRange(t, day(2026, 7, 12), day(2026, 7, 20))

	assert.True(t, base.ConflictsWith(other))
	assert.True(t, other.ConflictsWith(base))

	t.Run("Different equipment", func(t *testing.T) {
		foreign := other
		foreign.EquipmentID = uuid.New()
		assert.False(t, base.ConflictsWith(foreign))
	})

	t.Run("Adjacent windows", func(t *testing.T) {
		adjacent := other
		adjacent.Period = mustRange(t, day(2026, 7, 15), day(2026, 7, 20))
		assert.False(t, base.ConflictsWith(adjacent))
	})

	t.Run("Closed reservation never conflicts", func(t *testing.T) {
		cancelled, err := other.Cancel("", day(2026, 7, 3))
		require.NoError(t, err)
		assert.False(t, base.ConflictsWith(cancelled))
	})

	t.Run("Never conflicts with itself", func(t *testing.T) {
		assert.False(t, base.ConflictsWith(base))
	})
}

func TestReservation_ConflictsWithRental(t *testing.T) {
	rv := makeReservation(t)
	rt := newTestRental(t, day(2026, 7, 12), day(2026, 7, 20), 100_00)
	rt.EquipmentID = rv.EquipmentID

	assert.True(t, rv.ConflictsWithRental(rt))

	t.Run("Returned rental releases the window", func(t *testing.T) {
		returned, err := rt.Return(rt.ConditionAtStart, Zero(), day(2026, 7, 20))
		require.NoError(t, err)
		assert.False(t, rv.ConflictsWithRental(returned))
	})

	t.Run("Different equipment", func(t *testing.T) {
		foreign := rt
		foreign.EquipmentID = uuid.New()
		assert.False(t, rv.ConflictsWithRental(foreign))
	})
}
