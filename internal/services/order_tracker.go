package services

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"pizza-service/internal/domain"
	rabbit "pizza-service/internal/infra/rabbitmq"
	"pizza-service/internal/repository"
)

// DefaultStageInterval is the time between two stage advances.
const DefaultStageInterval = 3500 * time.Millisecond

const sideEffectTimeout = 5 * time.Second

// OrderTracker moves one order through its stages. Advance performs a single
// tick; Start runs ticks on a timer until Delivered or Stop.
type OrderTracker struct {
	repo      repository.OrderRepository
	publisher rabbit.PublisherInterface
	log       *zap.Logger

	// set by the owning session before the tracker is started
	onAdvance func(*OrderTracker)

	mu      sync.Mutex
	order   domain.Order
	machine *domain.StageMachine
	cancel  context.CancelFunc
	done    chan struct{}
	stopped bool
}

func NewOrderTracker(order domain.Order, repo repository.OrderRepository, pub rabbit.PublisherInterface, log *zap.Logger) *OrderTracker {
	machine := domain.NewStageMachine(order.Stage)
	order.Stage = machine.Stage()
	return &OrderTracker{
		repo:      repo,
		publisher: pub,
		log:       log.With(zap.String("order_id", order.ID)),
		order:     order,
		machine:   machine,
	}
}

func (t *OrderTracker) Order() domain.Order {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.order
}

func (t *OrderTracker) Stage() domain.Stage {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.order.Stage
}

// Running reports whether the timer is active.
func (t *OrderTracker) Running() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.cancel != nil
}

// Advance moves the order to the next stage and returns the stage it is in
// afterwards. Once Delivered it changes nothing.
func (t *OrderTracker) Advance(ctx context.Context) domain.Stage {
	t.mu.Lock()
	if t.machine.Done() {
		stage := t.order.Stage
		t.mu.Unlock()
		return stage
	}
	t.order.Stage = t.machine.Tick()
	t.order.UpdatedAt = t.machine.ChangedAt()
	order := t.order
	t.mu.Unlock()

	t.log.Info("order stage advanced", zap.Stringer("stage", order.Stage))
	t.record(ctx, order)
	if t.onAdvance != nil {
		t.onAdvance(t)
	}
	return order.Stage
}

// Start begins advancing every interval. It does nothing when the tracker is
// already running, was stopped, or the order is delivered. The timer goroutine
// exits on its own after reaching Delivered.
func (t *OrderTracker) Start(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		interval = DefaultStageInterval
	}

	t.mu.Lock()
	defer t.mu.Unlock()
	if t.cancel != nil || t.stopped || t.machine.Done() {
		return
	}
	runCtx, cancel := context.WithCancel(ctx)
	done := make(chan struct{})
	t.cancel, t.done = cancel, done
	go t.run(runCtx, interval, done)
}

// Stop cancels the timer and waits for its goroutine to exit. The tracker
// cannot be started again afterwards. Stop must not be called from an
// onAdvance callback.
func (t *OrderTracker) Stop() {
	t.mu.Lock()
	t.stopped = true
	cancel, done := t.cancel, t.done
	t.cancel, t.done = nil, nil
	t.mu.Unlock()

	if cancel == nil {
		return
	}
	cancel()
	<-done
}

func (t *OrderTracker) run(ctx context.Context, interval time.Duration, done chan struct{}) {
	defer close(done)

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			t.Advance(ctx)
			if t.delivered() {
				t.release(done)
				return
			}
		}
	}
}

func (t *OrderTracker) delivered() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.machine.Done()
}

// release clears the running state if it still belongs to done.
func (t *OrderTracker) release(done chan struct{}) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.done != done {
		return
	}
	t.cancel()
	t.cancel, t.done = nil, nil
}

func (t *OrderTracker) record(ctx context.Context, order domain.Order) {
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), sideEffectTimeout)
	defer cancel()

	if err := t.repo.UpdateStage(ctx, order.ID, order.Stage); err != nil {
		t.log.Warn("journal stage update failed", zap.Error(err))
	}

	evt := domain.OrderStageAdvancedEvent{
		OrderID:   order.ID,
		Stage:     order.Stage,
		Label:     order.Stage.String(),
		Progress:  order.Stage.Progress(),
		ChangedAt: order.UpdatedAt,
	}
	if err := t.publisher.Publish(ctx, domain.EventOrderStageAdvanced, evt); err != nil {
		t.log.Warn("failed to publish event", zap.String("event", domain.EventOrderStageAdvanced), zap.Error(err))
	}
}
