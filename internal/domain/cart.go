package domain

import "github.com/shopspring/decimal"

type Size string

const (
	SizeSmall  Size = "S"
	SizeMedium Size = "M"
	SizeLarge  Size = "L"
)

const (
	CrustThin        = "Thin"
	CrustRegular     = "Regular"
	CrustCheeseBurst = "Cheese Burst"
)

// Defaults applied by the customization flow and to recommended pizzas.
const (
	DefaultSize  = SizeMedium
	DefaultCrust = CrustRegular
)

// LineItem is one configured pizza in a cart. TotalPrice is the unit price of
// this configuration at the time the item was created; the line cost is
// TotalPrice * Quantity.
type LineItem struct {
	Pizza
	CartID           string          `json:"cartId"`
	Size             Size            `json:"size"`
	Crust            string          `json:"crust"`
	SelectedToppings []Topping       `json:"selectedToppings"`
	Quantity         int             `json:"quantity"`
	TotalPrice       decimal.Decimal `json:"totalPrice"`
}

// LineTotal is the cost this item contributes to the cart subtotal.
func (li LineItem) LineTotal() decimal.Decimal {
	return li.TotalPrice.Mul(decimal.NewFromInt(int64(li.Quantity)))
}

func (li LineItem) Clone() LineItem {
	out := li
	out.Pizza = li.Pizza.Clone()
	out.SelectedToppings = append([]Topping(nil), li.SelectedToppings...)
	return out
}
