package http

import (
	"github.com/shopspring/decimal"

	"pizza-service/internal/domain"
)

type ConfigureRequest struct {
	Size       string   `json:"size"`
	Crust      string   `json:"crust"`
	ToppingIDs []string `json:"toppingIds" binding:"omitempty,dive,required"`
}

// withDefaults fills the customization defaults for omitted fields.
func (r ConfigureRequest) withDefaults() ConfigureRequest {
	if r.Size == "" {
		r.Size = string(domain.DefaultSize)
	}
	if r.Crust == "" {
		r.Crust = domain.DefaultCrust
	}
	return r
}

type QuoteResponse struct {
	PizzaID   string           `json:"pizzaId"`
	Size      domain.Size      `json:"size"`
	Crust     string           `json:"crust"`
	Toppings  []domain.Topping `json:"toppings"`
	UnitPrice decimal.Decimal  `json:"unitPrice"`
}

type AddToCartRequest struct {
	PizzaID string `json:"pizzaId" binding:"required"`
	ConfigureRequest
	Quantity int `json:"quantity" binding:"omitempty,min=1,max=99"`
}

type UpdateQuantityRequest struct {
	Delta *int `json:"delta" binding:"required,min=-99,max=99"`
}

type RecommendRequest struct {
	Prompt string `json:"prompt"`
}

type CreateSessionResponse struct {
	SessionID string `json:"sessionId"`
}

type HealthResponse struct {
	Status   string `json:"status"`
	Sessions int    `json:"sessions"`
}

type ErrorBody struct {
	Kind    string `json:"kind"`
	Message string `json:"message"`
}

type ErrorResponse struct {
	Error ErrorBody `json:"error"`
}
