package repository

import (
	"context"

	"pizza-service/internal/domain"
)

// OrderRepository is the journal of placed orders. Find methods return nil
// without an error when nothing matches.
type OrderRepository interface {
	Save(ctx context.Context, order *domain.Order) error
	UpdateStage(ctx context.Context, id string, stage domain.Stage) error
	FindByID(ctx context.Context, id string) (*domain.Order, error)
	FindBySession(ctx context.Context, sessionID string) ([]domain.Order, error)
}
