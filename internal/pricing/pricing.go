// Package pricing computes line and order prices. No rounding happens here;
// rounding to a display unit is left to the client.
package pricing

import (
	"fmt"

	"github.com/shopspring/decimal"

	"pizza-service/internal/apperr"
	"pizza-service/internal/catalog"
	"pizza-service/internal/domain"
)

// DefaultDeliveryFee is charged once per order.
var DefaultDeliveryFee = decimal.NewFromInt(49)

var multipliers = map[domain.Size]decimal.Decimal{
	domain.SizeSmall:  decimal.RequireFromString("0.8"),
	domain.SizeMedium: decimal.NewFromInt(1),
	domain.SizeLarge:  decimal.RequireFromString("1.2"),
}

func SizeMultiplier(size domain.Size) (decimal.Decimal, error) {
	m, ok := multipliers[size]
	if !ok {
		return decimal.Decimal{}, fmt.Errorf("size %q: %w", size, apperr.ErrInvalidConfiguration)
	}
	return m, nil
}

func ValidateCrust(crust string) error {
	if !catalog.IsCrust(crust) {
		return fmt.Errorf("crust %q: %w", crust, apperr.ErrInvalidConfiguration)
	}
	return nil
}

// LineUnitPrice is base.Price * SizeMultiplier(size) + the sum of topping
// prices. A topping may appear at most once.
func LineUnitPrice(base domain.Pizza, size domain.Size, toppings []domain.Topping) (decimal.Decimal, error) {
	m, err := SizeMultiplier(size)
	if err != nil {
		return decimal.Decimal{}, err
	}
	if base.Price.IsNegative() {
		return decimal.Decimal{}, fmt.Errorf("base price %s: %w", base.Price, apperr.ErrInvalidConfiguration)
	}

	price := base.Price.Mul(m)
	seen := make(map[string]struct{}, len(toppings))
	for _, t := range toppings {
		if _, dup := seen[t.ID]; dup {
			return decimal.Decimal{}, fmt.Errorf("topping %q repeated: %w", t.ID, apperr.ErrInvalidConfiguration)
		}
		seen[t.ID] = struct{}{}
		price = price.Add(t.Price)
	}
	return price, nil
}

func CartSubtotal(items []domain.LineItem) decimal.Decimal {
	sum := decimal.Zero
	for _, it := range items {
		sum = sum.Add(it.LineTotal())
	}
	return sum
}

func OrderTotal(subtotal, deliveryFee decimal.Decimal) decimal.Decimal {
	return subtotal.Add(deliveryFee)
}

// Quote is the price summary shown for a cart.
type Quote struct {
	ItemCount   int             `json:"itemCount"`
	Subtotal    decimal.Decimal `json:"subtotal"`
	DeliveryFee decimal.Decimal `json:"deliveryFee"`
	Total       decimal.Decimal `json:"total"`
}

func NewQuote(items []domain.LineItem, deliveryFee decimal.Decimal) Quote {
	count := 0
	for _, it := range items {
		count += it.Quantity
	}
	subtotal := CartSubtotal(items)
	return Quote{
		ItemCount:   count,
		Subtotal:    subtotal,
		DeliveryFee: deliveryFee,
		Total:       OrderTotal(subtotal, deliveryFee),
	}
}
