package services

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"pizza-service/internal/apperr"
	"pizza-service/internal/domain"
	rabbit "pizza-service/internal/infra/rabbitmq"
	"pizza-service/internal/pricing"
	"pizza-service/internal/repository"
)

// DefaultPaymentDelay is how long the simulated payment takes.
const DefaultPaymentDelay = 2 * time.Second

type CheckoutOptions struct {
	PaymentDelay  time.Duration
	StageInterval time.Duration
}

// CheckoutService turns a session's cart into a placed order and starts
// tracking it.
type CheckoutService struct {
	repo      repository.OrderRepository
	publisher rabbit.PublisherInterface
	log       *zap.Logger
	opts      CheckoutOptions
}

func NewCheckoutService(r repository.OrderRepository, pub rabbit.PublisherInterface, log *zap.Logger, opts CheckoutOptions) *CheckoutService {
	if opts.PaymentDelay < 0 {
		opts.PaymentDelay = 0
	}
	if opts.StageInterval <= 0 {
		opts.StageInterval = DefaultStageInterval
	}
	return &CheckoutService{
		repo:      r,
		publisher: pub,
		log:       log,
		opts:      opts,
	}
}

// Checkout simulates payment, then clears the cart and starts tracking a new
// Confirmed order in one step. Cancelling ctx during payment leaves the
// session untouched, and a cart edited during payment fails the checkout
// with ErrCartChanged.
func (c *CheckoutService) Checkout(ctx context.Context, s *Session) (domain.Order, error) {
	version, err := s.beginCheckout()
	if err != nil {
		return domain.Order{}, err
	}
	defer s.endCheckout()

	if err := sleepOrDone(ctx, c.opts.PaymentDelay); err != nil {
		c.log.Info("checkout aborted during payment", zap.String("session_id", s.ID), zap.Error(err))
		return domain.Order{}, err
	}

	tracker, prev, err := s.commitCheckout(version, func(q pricing.Quote) *OrderTracker {
		now := time.Now()
		order := domain.Order{
			ID:          uuid.NewString(),
			SessionID:   s.ID,
			ItemCount:   q.ItemCount,
			Subtotal:    q.Subtotal,
			DeliveryFee: q.DeliveryFee,
			Total:       q.Total,
			Stage:       domain.StageConfirmed,
			PlacedAt:    now,
			UpdatedAt:   now,
		}
		return NewOrderTracker(order, c.repo, c.publisher, c.log)
	})
	if err != nil {
		c.log.Info("checkout rejected", zap.String("session_id", s.ID), zap.Error(err))
		return domain.Order{}, err
	}
	if prev != nil {
		prev.Stop()
	}

	order := tracker.Order()
	c.log.Info("order placed",
		zap.String("session_id", s.ID),
		zap.String("order_id", order.ID),
		zap.String("total", order.Total.String()),
	)

	bg := context.WithoutCancel(ctx)
	c.journal(bg, order)
	tracker.Start(bg, c.opts.StageInterval)
	return order, nil
}

// StopTracking releases the timer of the session's current order. The stage
// is kept as it is.
func (c *CheckoutService) StopTracking(s *Session) error {
	t := s.currentTracker()
	if t == nil {
		return apperr.ErrOrderNotFound
	}
	t.Stop()
	s.mutate(func() bool { return s.tracker == t })
	return nil
}

func (c *CheckoutService) journal(ctx context.Context, order domain.Order) {
	ctx, cancel := context.WithTimeout(ctx, sideEffectTimeout)
	defer cancel()

	saved := order
	if err := c.repo.Save(ctx, &saved); err != nil {
		c.log.Warn("journal save failed", zap.String("order_id", order.ID), zap.Error(err))
	}

	evt := domain.OrderPlacedEvent{
		OrderID:     order.ID,
		SessionID:   order.SessionID,
		ItemCount:   order.ItemCount,
		Subtotal:    order.Subtotal,
		DeliveryFee: order.DeliveryFee,
		Total:       order.Total,
		PlacedAt:    order.PlacedAt,
	}
	if err := c.publisher.Publish(ctx, domain.EventOrderPlaced, evt); err != nil {
		c.log.Warn("failed to publish event", zap.String("event", domain.EventOrderPlaced), zap.Error(err))
	}
}

func sleepOrDone(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
