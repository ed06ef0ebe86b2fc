package services

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"pizza-service/internal/apperr"
	"pizza-service/internal/domain"
	"pizza-service/internal/repository"
)

const (
	activeOrderTTL    = 2 * time.Second
	deliveredOrderTTL = 10 * time.Minute
)

// OrderService reads the order journal, optionally through a redis cache.
type OrderService struct {
	repo        repository.OrderRepository
	log         *zap.Logger
	redisClient *redis.Client
}

func NewOrderService(r repository.OrderRepository, log *zap.Logger) *OrderService {
	return &OrderService{
		repo: r,
		log:  log,
	}
}

func (u *OrderService) SetRedisClient(client *redis.Client) {
	u.redisClient = client
}

func (u *OrderService) GetOrderByID(ctx context.Context, id string) (*domain.Order, error) {
	cacheKey := orderCacheKey(id)

	if u.redisClient != nil {
		cached, err := u.redisClient.Get(ctx, cacheKey).Result()
		if err == nil {
			var o domain.Order
			if err := json.Unmarshal([]byte(cached), &o); err == nil {
				return &o, nil
			}
		} else if err != redis.Nil {
			u.log.Warn("order cache read failed", zap.String("order_id", id), zap.Error(err))
		}
	}

	o, err := u.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if o == nil {
		return nil, apperr.ErrOrderNotFound
	}

	if u.redisClient != nil {
		ttl := activeOrderTTL
		if o.Stage.Terminal() {
			ttl = deliveredOrderTTL
		}
		if data, err := json.Marshal(o); err == nil {
			if err := u.redisClient.Set(ctx, cacheKey, data, ttl).Err(); err != nil {
				u.log.Warn("order cache write failed", zap.String("order_id", id), zap.Error(err))
			}
		}
	}

	return o, nil
}

// GetOrdersBySession lists a session's journaled orders, newest first.
func (u *OrderService) GetOrdersBySession(ctx context.Context, sessionID string) ([]domain.Order, error) {
	o, err := u.repo.FindBySession(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if o == nil {
		return []domain.Order{}, nil
	}
	return o, nil
}

func orderCacheKey(id string) string {
	return fmt.Sprintf("order:%s", id)
}
