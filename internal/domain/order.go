package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Stage is a step of the delivery timeline. Transitions are driven by
// StageMachine.
type Stage int

const (
	StageConfirmed Stage = iota + 1
	StageBaking
	StageOnRoute
	StageDelivered
)

// Stages lists every stage in timeline order.
var Stages = []Stage{StageConfirmed, StageBaking, StageOnRoute, StageDelivered}

func (s Stage) Valid() bool {
	return s >= StageConfirmed && s <= StageDelivered
}

func (s Stage) Terminal() bool {
	return s == StageDelivered
}

// Progress is the completed fraction of the timeline, stage/4.
func (s Stage) Progress() float64 {
	return float64(s) / float64(StageDelivered)
}

func (s Stage) String() string {
	switch s {
	case StageConfirmed:
		return "Confirmed"
	case StageBaking:
		return "Baking"
	case StageOnRoute:
		return "On Route"
	case StageDelivered:
		return "Delivered"
	default:
		return "Unknown"
	}
}

func (s Stage) Description() string {
	switch s {
	case StageConfirmed:
		return "Order received."
	case StageBaking:
		return "High heat, fresh dough."
	case StageOnRoute:
		return "Heading your way."
	case StageDelivered:
		return "Enjoy your meal!"
	default:
		return ""
	}
}

type Order struct {
	ID          string          `json:"id" gorm:"primaryKey;type:varchar(36)"`
	SessionID   string          `json:"sessionId" gorm:"type:varchar(36);not null;index"`
	ItemCount   int             `json:"itemCount" gorm:"not null"`
	Subtotal    decimal.Decimal `json:"subtotal" gorm:"type:decimal(12,2);not null"`
	DeliveryFee decimal.Decimal `json:"deliveryFee" gorm:"type:decimal(12,2);not null"`
	Total       decimal.Decimal `json:"total" gorm:"type:decimal(12,2);not null"`
	Stage       Stage           `json:"stage" gorm:"not null;default:1"`
	PlacedAt    time.Time       `json:"placedAt" gorm:"autoCreateTime"`
	UpdatedAt   time.Time       `json:"updatedAt" gorm:"autoUpdateTime"`
}
