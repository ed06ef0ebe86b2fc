package services

import (
	"fmt"
	"math"
	"sort"
	"sync"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"golang.org/x/sync/semaphore"

	"pizza-service/internal/apperr"
	"pizza-service/internal/domain"
	"pizza-service/internal/pricing"
)

// OrderProgress is the tracking view of the most recent order.
type OrderProgress struct {
	domain.Order
	Label       string  `json:"label"`
	Description string  `json:"description"`
	Progress    float64 `json:"progress"`
	Tracking    bool    `json:"tracking"`
}

func newOrderProgress(o domain.Order, tracking bool) *OrderProgress {
	return &OrderProgress{
		Order:       o,
		Label:       o.Stage.String(),
		Description: o.Stage.Description(),
		Progress:    o.Stage.Progress(),
		Tracking:    tracking,
	}
}

// Snapshot is an immutable copy of a session's state.
type Snapshot struct {
	SessionID       string            `json:"sessionId"`
	Cart            []domain.LineItem `json:"cart"`
	Favorites       []string          `json:"favorites"`
	Quote           pricing.Quote     `json:"quote"`
	Order           *OrderProgress    `json:"order,omitempty"`
	Recommendations []domain.Pizza    `json:"recommendations"`
}

// Session is the cart, favorites, recommendation slot and current order of
// one shopper. All mutations are serialized; observers receive a snapshot
// after the lock is released.
type Session struct {
	ID        string
	CreatedAt time.Time

	log         *zap.Logger
	deliveryFee decimal.Decimal

	// one in-flight recommendation per session
	recommending *semaphore.Weighted

	mu              sync.Mutex
	cart            []domain.LineItem
	cartVersion     uint64
	favorites       map[string]struct{}
	recommendations []domain.Pizza
	tracker         *OrderTracker
	checkingOut     bool
	closed          bool
	observers       map[int]func(Snapshot)
	nextObserver    int
}

func NewSession(id string, deliveryFee decimal.Decimal, log *zap.Logger) *Session {
	return &Session{
		ID:           id,
		CreatedAt:    time.Now(),
		log:          log.With(zap.String("session_id", id)),
		deliveryFee:  deliveryFee,
		recommending: semaphore.NewWeighted(1),
		favorites:    make(map[string]struct{}),
		observers:    make(map[int]func(Snapshot)),
	}
}

// Subscribe registers fn to be called with a snapshot after every change.
// fn runs synchronously on the goroutine that made the change.
func (s *Session) Subscribe(fn func(Snapshot)) (unsubscribe func()) {
	s.mu.Lock()
	id := s.nextObserver
	s.nextObserver++
	s.observers[id] = fn
	s.mu.Unlock()

	return func() {
		s.mu.Lock()
		delete(s.observers, id)
		s.mu.Unlock()
	}
}

func (s *Session) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshotLocked()
}

// AddToCart appends item. An empty or already used cart id is a programming
// error and leaves the cart unchanged.
func (s *Session) AddToCart(item domain.LineItem) (Snapshot, error) {
	if err := validateQuantity(item.Quantity); err != nil {
		return Snapshot{}, err
	}

	var dupErr error
	snap := s.mutate(func() bool {
		if item.CartID == "" {
			dupErr = fmt.Errorf("empty cart id: %w", apperr.ErrDuplicateCartID)
			return false
		}
		if s.indexLocked(item.CartID) >= 0 {
			dupErr = fmt.Errorf("cart id %s: %w", item.CartID, apperr.ErrDuplicateCartID)
			return false
		}
		s.cart = append(s.cart, item.Clone())
		s.cartVersion++
		return true
	})
	if dupErr != nil {
		s.log.Error("cart id collision", zap.String("cart_id", item.CartID), zap.Error(dupErr))
		return Snapshot{}, dupErr
	}
	s.log.Debug("cart item added", zap.String("cart_id", item.CartID), zap.String("pizza_id", item.ID))
	return snap, nil
}

// RemoveFromCart drops the entry with cartID. Absent ids are a no-op.
func (s *Session) RemoveFromCart(cartID string) Snapshot {
	return s.mutate(func() bool {
		i := s.indexLocked(cartID)
		if i < 0 {
			return false
		}
		next := make([]domain.LineItem, 0, len(s.cart)-1)
		next = append(next, s.cart[:i]...)
		s.cart = append(next, s.cart[i+1:]...)
		s.cartVersion++
		return true
	})
}

// UpdateQuantity sets quantity to max(1, quantity+delta). Absent ids are a
// no-op.
func (s *Session) UpdateQuantity(cartID string, delta int) Snapshot {
	return s.mutate(func() bool {
		i := s.indexLocked(cartID)
		if i < 0 {
			return false
		}
		q := addQuantity(s.cart[i].Quantity, delta)
		if q == s.cart[i].Quantity {
			return false
		}
		next := append([]domain.LineItem(nil), s.cart...)
		next[i].Quantity = q
		s.cart = next
		s.cartVersion++
		return true
	})
}

// addQuantity returns max(1, q+delta), saturating instead of overflowing.
func addQuantity(q, delta int) int {
	if delta > 0 && q > math.MaxInt-delta {
		return math.MaxInt
	}
	return max(1, q+delta)
}

func (s *Session) ClearCart() Snapshot {
	return s.mutate(func() bool {
		if len(s.cart) == 0 {
			return false
		}
		s.cart = nil
		s.cartVersion++
		return true
	})
}

func (s *Session) ToggleFavorite(pizzaID string) Snapshot {
	return s.mutate(func() bool {
		if _, ok := s.favorites[pizzaID]; ok {
			delete(s.favorites, pizzaID)
		} else {
			s.favorites[pizzaID] = struct{}{}
		}
		return true
	})
}

// Item returns the cart entry with cartID.
func (s *Session) Item(cartID string) (domain.LineItem, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	i := s.indexLocked(cartID)
	if i < 0 {
		return domain.LineItem{}, false
	}
	return s.cart[i].Clone(), true
}

func (s *Session) IsFavorite(pizzaID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.favorites[pizzaID]
	return ok
}

// Recommendation looks up a pizza in the recommendation slot.
func (s *Session) Recommendation(id string) (domain.Pizza, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, p := range s.recommendations {
		if p.ID == id {
			return p.Clone(), true
		}
	}
	return domain.Pizza{}, false
}

func (s *Session) setRecommendations(pizzas []domain.Pizza) Snapshot {
	return s.mutate(func() bool {
		next := make([]domain.Pizza, 0, len(pizzas))
		for _, p := range pizzas {
			next = append(next, p.Clone())
		}
		s.recommendations = next
		return true
	})
}

// CurrentOrder returns the tracking view of the latest order, if any.
func (s *Session) CurrentOrder() (*OrderProgress, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.tracker == nil {
		return nil, false
	}
	return newOrderProgress(s.tracker.Order(), s.tracker.Running()), true
}

func (s *Session) currentTracker() *OrderTracker {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.tracker
}

// beginCheckout marks a checkout as pending and returns the cart version
// being paid for. It fails when the cart is empty or another checkout is
// already pending.
func (s *Session) beginCheckout() (uint64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return 0, apperr.ErrSessionNotFound
	}
	if s.checkingOut {
		return 0, apperr.ErrCheckoutInProgress
	}
	if len(s.cart) == 0 {
		return 0, apperr.ErrEmptyCart
	}
	s.checkingOut = true
	return s.cartVersion, nil
}

func (s *Session) endCheckout() {
	s.mu.Lock()
	s.checkingOut = false
	s.mu.Unlock()
}

// commitCheckout clears the cart and installs the tracker built by newTracker
// in one step. It fails with ErrCartChanged when the cart is no longer the
// version paid for. The replaced tracker, if any, is returned so the caller
// can stop it outside the lock.
func (s *Session) commitCheckout(version uint64, newTracker func(quote pricing.Quote) *OrderTracker) (*OrderTracker, *OrderTracker, error) {
	var (
		created, prev *OrderTracker
		err           error
	)
	s.mutate(func() bool {
		if s.closed {
			err = apperr.ErrSessionNotFound
			return false
		}
		if s.cartVersion != version {
			err = apperr.ErrCartChanged
			return false
		}
		if len(s.cart) == 0 {
			err = apperr.ErrEmptyCart
			return false
		}
		created = newTracker(pricing.NewQuote(s.cart, s.deliveryFee))
		created.onAdvance = s.trackerAdvanced
		prev = s.tracker
		s.tracker = created
		s.cart = nil
		s.cartVersion++
		return true
	})
	return created, prev, err
}

// trackerAdvanced republishes state when the current tracker moves. Ticks
// from a replaced tracker are ignored.
func (s *Session) trackerAdvanced(t *OrderTracker) {
	s.mutate(func() bool { return s.tracker == t })
}

// close detaches the session's tracker and rejects further checkouts. The
// caller stops the returned tracker.
func (s *Session) close() *OrderTracker {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	s.observers = make(map[int]func(Snapshot))
	return s.tracker
}

// mutate runs fn under the lock and, when fn reports a change, notifies the
// observers with the resulting snapshot.
func (s *Session) mutate(fn func() bool) Snapshot {
	s.mu.Lock()
	changed := fn()
	snap := s.snapshotLocked()
	var observers []func(Snapshot)
	if changed {
		observers = make([]func(Snapshot), 0, len(s.observers))
		for _, o := range s.observers {
			observers = append(observers, o)
		}
	}
	s.mu.Unlock()

	for _, o := range observers {
		o(snap)
	}
	return snap
}

func (s *Session) indexLocked(cartID string) int {
	for i := range s.cart {
		if s.cart[i].CartID == cartID {
			return i
		}
	}
	return -1
}

func (s *Session) snapshotLocked() Snapshot {
	cart := make([]domain.LineItem, 0, len(s.cart))
	for _, it := range s.cart {
		cart = append(cart, it.Clone())
	}

	favorites := make([]string, 0, len(s.favorites))
	for id := range s.favorites {
		favorites = append(favorites, id)
	}
	sort.Strings(favorites)

	recs := make([]domain.Pizza, 0, len(s.recommendations))
	for _, p := range s.recommendations {
		recs = append(recs, p.Clone())
	}

	snap := Snapshot{
		SessionID:       s.ID,
		Cart:            cart,
		Favorites:       favorites,
		Quote:           pricing.NewQuote(cart, s.deliveryFee),
		Recommendations: recs,
	}
	if s.tracker != nil {
		snap.Order = newOrderProgress(s.tracker.Order(), s.tracker.Running())
	}
	return snap
}
