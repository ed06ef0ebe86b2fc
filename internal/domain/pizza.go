package domain

import "github.com/shopspring/decimal"

type Category string

const (
	CategoryVeg     Category = "Veg"
	CategoryNonVeg  Category = "Non-Veg"
	CategoryPremium Category = "Premium"
)

// Categories lists the closed category set in menu order.
var Categories = []Category{CategoryVeg, CategoryNonVeg, CategoryPremium}

func (c Category) Valid() bool {
	switch c {
	case CategoryVeg, CategoryNonVeg, CategoryPremium:
		return true
	}
	return false
}

type ToppingType string

const (
	ToppingVeg    ToppingType = "veg"
	ToppingNonVeg ToppingType = "non-veg"
)

type Topping struct {
	ID    string          `json:"id"`
	Name  string          `json:"name"`
	Price decimal.Decimal `json:"price"`
	Color string          `json:"color"`
	Type  ToppingType     `json:"type"`
}

type Pizza struct {
	ID          string          `json:"id" validate:"required"`
	Name        string          `json:"name" validate:"required"`
	Description string          `json:"description"`
	Price       decimal.Decimal `json:"price" validate:"gte=0"`
	Image       string          `json:"image" validate:"required,url"`
	Category    Category        `json:"category" validate:"required,oneof=Veg Non-Veg Premium"`
	Rating      float64         `json:"rating" validate:"gte=4,lte=5"`
	Ingredients []string        `json:"ingredients" validate:"required,min=1,dive,required"`
	Calories    *int            `json:"calories,omitempty" validate:"omitempty,gt=0"`
}

// Clone returns a copy that shares no slices with p.
func (p Pizza) Clone() Pizza {
	out := p
	out.Ingredients = append([]string(nil), p.Ingredients...)
	if p.Calories != nil {
		c := *p.Calories
		out.Calories = &c
	}
	return out
}
