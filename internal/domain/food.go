package domain

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

type FoodCategory string

const (
	FoodCategoryPopcorn  FoodCategory = "POPCORN"
	FoodCategoryBeverage FoodCategory = "BEVERAGE"
	FoodCategoryCombo    FoodCategory = "COMBO"
	FoodCategorySnack    FoodCategory = "SNACK"
	FoodCategoryDessert  FoodCategory = "DESSERT"
)

// ParseFoodCategory maps free text onto a food category. Unrecognized values
// fall back to SNACK.
func ParseFoodCategory(s string) FoodCategory {
	switch c := FoodCategory(strings.ToUpper(strings.TrimSpace(s))); c {
	case FoodCategoryPopcorn, FoodCategoryBeverage, FoodCategoryCombo, FoodCategorySnack, FoodCategoryDessert:
		return c
	default:
		return FoodCategorySnack
	}
}

type FoodItem struct {
	ID          int64
	Name        string
	Description string
	Price       decimal.Decimal
	ImageUrl    string
	IsAvailable bool
	Category    FoodCategory
}

// FoodLineItem is a food entry of a cart as sent by the client. The catalog it
// comes from is external, so only name, price and quantity are checked.
type FoodLineItem struct {
	ID          string          `json:"id"`
	Name        string          `json:"name"`
	Description string          `json:"description,omitempty"`
	Category    string          `json:"category,omitempty"`
	Image       string          `json:"image,omitempty"`
	Allergens   []string        `json:"allergens,omitempty"`
	Price       decimal.Decimal `json:"price"`
	Calories    int             `json:"calories,omitempty"`
	Quantity    int             `json:"quantity"`
}

// ToFoodItem builds the catalog entry created when no item with the same name exists yet.
func (f FoodLineItem) ToFoodItem() FoodItem {
	return FoodItem{
		Name:        f.Name,
		Description: f.Description,
		Price:       f.Price,
		ImageUrl:    f.Image,
		IsAvailable: true,
		Category:    ParseFoodCategory(f.Category),
	}
}

// ParseFoodLineItems decodes the JSON array form of a cart's food items. An
// empty string yields no items. Every item needs a name, a non-negative price
// and a positive quantity.
func ParseFoodLineItems(raw string) ([]FoodLineItem, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" || raw == "null" {
		return nil, nil
	}

	var items []FoodLineItem
	if err := json.Unmarshal([]byte(raw), &items); err != nil {
		return nil, fmt.Errorf("decode food items: %w", err)
	}

	for _, item := range items {
		if err := item.validate(); err != nil {
			return nil, err
		}
	}

	return items, nil
}

func (f FoodLineItem) validate() error {
	switch {
	case strings.TrimSpace(f.Name) == "":
		return errors.New("food item without name")
	case f.Price.IsNegative():
		return fmt.Errorf("food item %q: price must not be negative", f.Name)
	case f.Quantity < 1:
		return fmt.Errorf("food item %q: quantity must be at least 1", f.Name)
	}

	return nil
}

type FoodOrder struct {
	ID           int64
	BookingID    int64
	FoodItemID   int64
	FoodItem     *FoodItem
	Quantity     int
	PriceAtOrder decimal.Decimal
}

func NewFoodOrder(item FoodLineItem) FoodOrder {
	foodItem := item.ToFoodItem()

	return FoodOrder{
		FoodItem:     &foodItem,
		Quantity:     item.Quantity,
		PriceAtOrder: item.Price,
	}
}

func (f FoodOrder) Subtotal() decimal.Decimal {
	return f.PriceAtOrder.Mul(decimal.NewFromInt(int64(f.Quantity)))
}
