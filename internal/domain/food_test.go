package domain

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseFoodCategory(t *testing.T) {
	assert.Equal(t, FoodCategoryPopcorn, ParseFoodCategory("popcorn"))
	assert.Equal(t, FoodCategoryBeverage, ParseFoodCategory(" Beverage "))
	assert.Equal(t, FoodCategorySnack, ParseFoodCategory("nachos"))
	assert.Equal(t, FoodCategorySnack, ParseFoodCategory(""))
}

func TestParseFoodLineItems(t *testing.T) {
	items, err := ParseFoodLineItems(`[{"id":"f1","name":"Caramel Popcorn","category":"popcorn","price":"180.50","quantity":2,"allergens":["milk"]}]`)
	require.NoError(t, err)
	require.Len(t, items, 1)

	order := NewFoodOrder(items[0])
	assert.Equal(t, "361", order.Subtotal().String())
	assert.Equal(t, FoodCategoryPopcorn, order.FoodItem.Category)
	assert.True(t, order.FoodItem.IsAvailable)
}

func TestParseFoodLineItemsEmpty(t *testing.T) {
	for _, raw := range []string{"", "  ", "null"} {
		items, err := ParseFoodLineItems(raw)
		require.NoError(t, err)
		assert.Empty(t, items)
	}
}

func TestParseFoodLineItemsInvalid(t *testing.T) {
	_, err := ParseFoodLineItems(`{"name":`)
	assert.Error(t, err)
}

func TestParseFoodLineItemsRejectsBadItems(t *testing.T) {
	tests := []struct {
		name    string
		raw     string
		wantErr string
	}{
		{
			name:    "negative price",
			raw:     `[{"name":"Refund","price":-310,"quantity":1}]`,
			wantErr: `food item "Refund": price must not be negative`,
		},
		{
			name:    "zero quantity",
			raw:     `[{"name":"Nachos","price":85,"quantity":0}]`,
			wantErr: `food item "Nachos": quantity must be at least 1`,
		},
		{
			name:    "negative quantity",
			raw:     `[{"name":"Nachos","price":85,"quantity":-2}]`,
			wantErr: `food item "Nachos": quantity must be at least 1`,
		},
		{
			name:    "blank name",
			raw:     `[{"name":"  ","price":85,"quantity":1}]`,
			wantErr: "food item without name",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			items, err := ParseFoodLineItems(tt.raw)

			assert.EqualError(t, err, tt.wantErr)
			assert.Nil(t, items)
		})
	}
}

func TestParseFoodLineItemsAllowsFreeItems(t *testing.T) {
	items, err := ParseFoodLineItems(`[{"name":"Water","price":0,"quantity":1}]`)
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.True(t, items[0].Price.IsZero())
}

func TestComputeTotalWithFood(t *testing.T) {
	b := &Booking{
		Seats: []BookedSeat{{Price: decimal.NewFromInt(140)}},
		FoodOrders: []FoodOrder{
			{Quantity: 3, PriceAtOrder: decimal.RequireFromString("99.99")},
		},
	}

	assert.Equal(t, "439.97", b.ComputeTotal().String())
}
