// Package memory keeps the order journal in process memory. It is the
// default when no database is configured and is lost on restart.
package memory

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	"pizza-service/internal/domain"
	"pizza-service/internal/repository"
)

type orderRepo struct {
	mu     sync.RWMutex
	orders map[string]domain.Order
}

func NewOrderRepository() repository.OrderRepository {
	return &orderRepo{orders: make(map[string]domain.Order)}
}

func (r *orderRepo) Save(_ context.Context, order *domain.Order) error {
	if order.ID == "" {
		return errors.New("order id is required")
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.orders[order.ID]; exists {
		return errors.New("order already saved")
	}
	now := time.Now()
	if order.PlacedAt.IsZero() {
		order.PlacedAt = now
	}
	order.UpdatedAt = now
	r.orders[order.ID] = *order
	return nil
}

func (r *orderRepo) UpdateStage(_ context.Context, id string, stage domain.Stage) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	o, ok := r.orders[id]
	if !ok {
		return nil
	}
	o.Stage = stage
	o.UpdatedAt = time.Now()
	r.orders[id] = o
	return nil
}

func (r *orderRepo) FindByID(_ context.Context, id string) (*domain.Order, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	o, ok := r.orders[id]
	if !ok {
		return nil, nil
	}
	return &o, nil
}

func (r *orderRepo) FindBySession(_ context.Context, sessionID string) ([]domain.Order, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var out []domain.Order
	for _, o := range r.orders {
		if o.SessionID == sessionID {
			out = append(out, o)
		}
	}
	if len(out) == 0 {
		return nil, nil
	}
	sort.Slice(out, func(i, j int) bool { return out[i].PlacedAt.After(out[j].PlacedAt) })
	return out, nil
}
