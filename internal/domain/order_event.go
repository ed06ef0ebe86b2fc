package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

const (
	EventOrderPlaced        = "order.placed"
	EventOrderStageAdvanced = "order.stage_advanced"
)

type OrderPlacedEvent struct {
	OrderID     string          `json:"orderId"`
	SessionID   string          `json:"sessionId"`
	ItemCount   int             `json:"itemCount"`
	Subtotal    decimal.Decimal `json:"subtotal"`
	DeliveryFee decimal.Decimal `json:"deliveryFee"`
	Total       decimal.Decimal `json:"total"`
	PlacedAt    time.Time       `json:"placedAt"`
}

type OrderStageAdvancedEvent struct {
	OrderID   string    `json:"orderId"`
	Stage     Stage     `json:"stage"`
	Label     string    `json:"label"`
	Progress  float64   `json:"progress"`
	ChangedAt time.Time `json:"changedAt"`
}
