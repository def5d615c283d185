package models_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/jacquesmit/myriad-green/models"
)

func TestNormalizeEmail(t *testing.T) {
	assert.Equal(t, "jane@example.com", models.NormalizeEmail("  Jane@Example.COM "))
	assert.Equal(t, "", models.NormalizeEmail("   "))
}

func TestCartItemMinorUnits_Rounding(t *testing.T) {
	// 19.99 is not exactly representable; rounding keeps the cent amount exact.
	item := models.CartItem{Name: "Timer", Price: 19.99, Quantity: 3}
	assert.Equal(t, int64(1999), item.MinorUnits())
}

func TestCartTotalMinorUnits(t *testing.T) {
	cart := []models.CartItem{
		{Name: "Widget", Price: 50.00, Quantity: 2},
		{Name: "Hose Clamp", Price: 12.50, Quantity: 4},
	}
	assert.Equal(t, int64(15000), models.CartTotalMinorUnits(cart))
	assert.Equal(t, 150.00, models.CartTotalMajorUnits(cart))
}

func TestCartTotalMinorUnits_Empty(t *testing.T) {
	assert.Equal(t, int64(0), models.CartTotalMinorUnits(nil))
}
