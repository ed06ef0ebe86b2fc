package services

import (
	"fmt"

	"github.com/google/uuid"

	"pizza-service/internal/apperr"
	"pizza-service/internal/domain"
	"pizza-service/internal/pricing"
)

// NewLineItem prices one configuration of pizza and gives it a fresh cart id.
// The returned item has quantity 1.
func NewLineItem(pizza domain.Pizza, size domain.Size, crust string, toppings []domain.Topping) (domain.LineItem, error) {
	if err := pricing.ValidateCrust(crust); err != nil {
		return domain.LineItem{}, err
	}
	unit, err := pricing.LineUnitPrice(pizza, size, toppings)
	if err != nil {
		return domain.LineItem{}, fmt.Errorf("pizza %s: %w", pizza.ID, err)
	}

	return domain.LineItem{
		Pizza:            pizza.Clone(),
		CartID:           uuid.NewString(),
		Size:             size,
		Crust:            crust,
		SelectedToppings: append([]domain.Topping(nil), toppings...),
		Quantity:         1,
		TotalPrice:       unit,
	}, nil
}

// NewRecommendedLineItem is the line item for a pizza taken straight from the
// recommendation slot: default size and crust, no toppings.
func NewRecommendedLineItem(pizza domain.Pizza) (domain.LineItem, error) {
	return NewLineItem(pizza, domain.DefaultSize, domain.DefaultCrust, nil)
}

func validateQuantity(q int) error {
	if q < 1 {
		return fmt.Errorf("quantity %d: %w", q, apperr.ErrInvalidConfiguration)
	}
	return nil
}
