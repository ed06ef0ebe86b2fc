package services

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"pizza-service/internal/apperr"
	"pizza-service/internal/pricing"
)

func TestSessionManager_Lifecycle(t *testing.T) {
	m := NewSessionManager(pricing.DefaultDeliveryFee, zap.NewNop())

	a := m.Create()
	b := m.Create()
	assert.NotEqual(t, a.ID, b.ID)
	assert.Equal(t, 2, m.Len())

	got, err := m.Get(a.ID)
	require.NoError(t, err)
	assert.Same(t, a, got)

	require.NoError(t, m.Delete(a.ID))
	_, err = m.Get(a.ID)
	assert.ErrorIs(t, err, apperr.ErrSessionNotFound)
	assert.ErrorIs(t, m.Delete(a.ID), apperr.ErrSessionNotFound)
	assert.Equal(t, 1, m.Len())
}

func TestSessionManager_SessionsAreIndependent(t *testing.T) {
	m := NewSessionManager(pricing.DefaultDeliveryFee, zap.NewNop())
	a := m.Create()
	b := m.Create()

	_, err := a.AddToCart(margheritaLarge(t))
	require.NoError(t, err)
	a.ToggleFavorite("p1")

	assert.Len(t, a.Snapshot().Cart, 1)
	assert.Empty(t, b.Snapshot().Cart)
	assert.Empty(t, b.Snapshot().Favorites)
}

func TestSessionManager_DeleteStopsTracking(t *testing.T) {
	repo, pub := permissiveSinks()
	m := NewSessionManager(pricing.DefaultDeliveryFee, zap.NewNop())
	svc := NewCheckoutService(repo, pub, zap.NewNop(), CheckoutOptions{StageInterval: time.Hour})

	s := m.Create()
	_, _ = s.AddToCart(margheritaLarge(t))
	_, err := svc.Checkout(context.Background(), s)
	require.NoError(t, err)

	tr := s.currentTracker()
	require.True(t, tr.Running())

	require.NoError(t, m.Delete(s.ID))
	assert.False(t, tr.Running())

	_, _ = s.AddToCart(margheritaLarge(t))
	_, err = svc.Checkout(context.Background(), s)
	assert.ErrorIs(t, err, apperr.ErrSessionNotFound)
}

func TestSessionManager_Close(t *testing.T) {
	repo, pub := permissiveSinks()
	m := NewSessionManager(pricing.DefaultDeliveryFee, zap.NewNop())
	svc := NewCheckoutService(repo, pub, zap.NewNop(), CheckoutOptions{StageInterval: time.Hour})

	var trackers []*OrderTracker
	for i := 0; i < 3; i++ {
		s := m.Create()
		_, _ = s.AddToCart(margheritaLarge(t))
		_, err := svc.Checkout(context.Background(), s)
		require.NoError(t, err)
		trackers = append(trackers, s.currentTracker())
	}

	m.Close()
	assert.Equal(t, 0, m.Len())
	for _, tr := range trackers {
		assert.False(t, tr.Running())
	}
}
