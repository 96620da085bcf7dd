package pricing

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDiscountedUnitPrice(t *testing.T) {
	tests := []struct {
		name     string
		price    float64
		discount int
		expected float64
	}{
		{name: "20 percent off 100", price: 100, discount: 20, expected: 80.00},
		{name: "10 percent off 99.99 rounds half-up", price: 99.99, discount: 10, expected: 89.99},
		{name: "no discount", price: 49.50, discount: 0, expected: 49.50},
		{name: "full discount", price: 15, discount: 100, expected: 0},
		{name: "third off produces repeating fraction", price: 10, discount: 33, expected: 6.70},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.expected, DiscountedUnitPrice(tt.price, tt.discount), 1e-9)
		})
	}
}

func TestLineTotal(t *testing.T) {
	// Scenario: price 100, discount 10, qty 2 -> 180.00
	unit := DiscountedUnitPrice(100, 10)
	assert.InDelta(t, 90.00, unit, 1e-9)
	assert.InDelta(t, 180.00, LineTotal(unit, 2), 1e-9)

	assert.InDelta(t, 179.98, LineTotal(DiscountedUnitPrice(99.99, 10), 2), 1e-9)
	assert.InDelta(t, 0, LineTotal(0, 5), 1e-9)
}

func TestSavedAmount(t *testing.T) {
	assert.InDelta(t, 20.00, SavedAmount(100, 20), 1e-9)
	assert.InDelta(t, 10.00, SavedAmount(99.99, 10), 1e-9)
	assert.InDelta(t, 0, SavedAmount(42, 0), 1e-9)
}

func TestApplyPromo(t *testing.T) {
	assert.InDelta(t, 90.00, ApplyPromo(100, 10), 1e-9)
	assert.InDelta(t, 100.00, ApplyPromo(100, 0), 1e-9)
	assert.InDelta(t, 179.98, ApplyPromo(179.98, 0), 1e-9)
	assert.InDelta(t, 161.98, ApplyPromo(179.98, 10), 1e-9)
}

func TestDeterminism(t *testing.T) {
	for i := 0; i < 100; i++ {
		assert.Equal(t, DiscountedUnitPrice(73.37, 17), DiscountedUnitPrice(73.37, 17))
	}
}
