package services

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"pizza-service/internal/catalog"
	"pizza-service/internal/domain"
	"pizza-service/internal/mocks"
	"pizza-service/internal/pricing"
)

const (
	TestMargheritaID = "p1"
	TestPepperoniID  = "1"
)

func newTestSession() *Session {
	return NewSession("sess-test", pricing.DefaultDeliveryFee, zap.NewNop())
}

func mustPizza(t *testing.T, id string) domain.Pizza {
	t.Helper()
	p, ok := catalog.FindPizza(id)
	require.True(t, ok, "pizza %s not in catalog", id)
	return p
}

func mustTopping(t *testing.T, id string) domain.Topping {
	t.Helper()
	tp, ok := catalog.FindTopping(id)
	require.True(t, ok, "topping %s not in catalog", id)
	return tp
}

// margheritaLarge is Margherita Bliss (299) at L with pepperoni (60): 418.8.
func margheritaLarge(t *testing.T) domain.LineItem {
	t.Helper()
	item, err := NewLineItem(mustPizza(t, TestMargheritaID), domain.SizeLarge, domain.CrustRegular,
		[]domain.Topping{mustTopping(t, TestPepperoniID)})
	require.NoError(t, err)
	return item
}

func CreateMockOrder(id string, stage domain.Stage) domain.Order {
	return domain.Order{
		ID:          id,
		SessionID:   "sess-test",
		ItemCount:   2,
		Subtotal:    decimal.RequireFromString("837.6"),
		DeliveryFee: pricing.DefaultDeliveryFee,
		Total:       decimal.RequireFromString("886.6"),
		Stage:       stage,
	}
}

// permissiveSinks returns a journal and publisher that accept anything.
func permissiveSinks() (*mocks.MockOrderRepository, *mocks.MockPublisher) {
	repo := new(mocks.MockOrderRepository)
	repo.On("Save", mock.Anything, mock.AnythingOfType("*domain.Order")).Return(nil).Maybe()
	repo.On("UpdateStage", mock.Anything, mock.Anything, mock.Anything).Return(nil).Maybe()

	pub := new(mocks.MockPublisher)
	pub.On("Publish", mock.Anything, mock.Anything, mock.Anything).Return(nil).Maybe()
	return repo, pub
}
