package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewMoney(t *testing.T) {
	t.Run("Rounds to nearest cent", func(t *testing.T) {
		m, err := NewMoney(12.345)
		assert.NoError(t, err)
		assert.Equal(t, int64(1235), m.Cents())
	})

	t.Run("Rejects negative amounts", func(t *testing.T) {
		_, err := NewMoney(-0.01)
		assert.Error(t, err)
	})

	t.Run("Zero is valid", func(t *testing.T) {
		m, err := NewMoney(0)
		assert.NoError(t, err)
		assert.True(t, m.IsZero())
		assert.True(t, m.Equals(Zero()))
	})
}

func TestMoney_Arithmetic(t *testing.T) {
	fifty, _ := NewMoneyFromCents(50_00)
	thirty, _ := NewMoneyFromCents(30_00)

	t.Run("Add", func(t *testing.T) {
		assert.Equal(t, int64(80_00), fifty.Add(thirty).Cents())
	})

	t.Run("Subtract", func(t *testing.T) {
		got, err := fifty.Subtract(thirty)
		assert.NoError(t, err)
		assert.Equal(t, int64(20_00), got.Cents())
	})

	t.Run("Subtract below zero fails", func(t *testing.T) {
		_, err := thirty.Subtract(fifty)
		assert.Error(t, err)
	})

	t.Run("Multiply rounds", func(t *testing.T) {
		// 10% discount on $50.00
		got, err := fifty.Multiply(0.9)
		assert.NoError(t, err)
		assert.Equal(t, int64(45_00), got.Cents())
	})

	t.Run("Multiply negative factor fails", func(t *testing.T) {
		_, err := fifty.Multiply(-1)
		assert.Error(t, err)
	})

	t.Run("MultiplyInt", func(t *testing.T) {
		got, err := fifty.MultiplyInt(3)
		assert.NoError(t, err)
		assert.Equal(t, int64(150_00), got.Cents())
	})
}

func TestMoney_String(t *testing.T) {
	m, _ := NewMoneyFromCents(1234_05)
	assert.Equal(t, "$1234.05", m.String())
	assert.Equal(t, "$0.00", Zero().String())
}
