package mysql

import (
	"context"
	"errors"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"pizza-service/internal/domain"
	"pizza-service/internal/repository"
)

type orderRepo struct {
	db  *gorm.DB
	log *zap.Logger
}

func NewOrderRepository(db *gorm.DB, log *zap.Logger) repository.OrderRepository {
	return &orderRepo{db: db, log: log}
}

func (r *orderRepo) Save(ctx context.Context, order *domain.Order) error {
	if order.ID == "" {
		return errors.New("order id is required")
	}
	if err := r.db.WithContext(ctx).Create(order).Error; err != nil {
		r.log.Error("order save failed", zap.String("order_id", order.ID), zap.Error(err))
		return err
	}
	r.log.Debug("order saved", zap.String("order_id", order.ID))
	return nil
}

func (r *orderRepo) UpdateStage(ctx context.Context, id string, stage domain.Stage) error {
	res := r.db.WithContext(ctx).Model(&domain.Order{}).Where("id = ?", id).Update("stage", stage)
	if res.Error != nil {
		r.log.Error("order stage update failed", zap.String("order_id", id), zap.Error(res.Error))
		return res.Error
	}
	if res.RowsAffected == 0 {
		r.log.Warn("order stage update matched no rows", zap.String("order_id", id))
	}
	return nil
}

func (r *orderRepo) FindByID(ctx context.Context, id string) (*domain.Order, error) {
	var o domain.Order
	if err := r.db.WithContext(ctx).First(&o, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		r.log.Error("FindByID failed", zap.String("order_id", id), zap.Error(err))
		return nil, err
	}
	return &o, nil
}

func (r *orderRepo) FindBySession(ctx context.Context, sessionID string) ([]domain.Order, error) {
	var out []domain.Order
	if err := r.db.WithContext(ctx).Where("session_id = ?", sessionID).Order("placed_at DESC").Find(&out).Error; err != nil {
		r.log.Error("FindBySession failed", zap.String("session_id", sessionID), zap.Error(err))
		return nil, err
	}
	if len(out) == 0 {
		return nil, nil
	}
	return out, nil
}
