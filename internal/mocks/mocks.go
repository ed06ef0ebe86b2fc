package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"pizza-service/internal/domain"
)

type MockOrderRepository struct {
	mock.Mock
}

type MockGenerator struct {
	mock.Mock
}

type MockPublisher struct {
	mock.Mock
}

func (m *MockPublisher) Publish(ctx context.Context, routingKey string, data any) error {
	args := m.Called(ctx, routingKey, data)
	return args.Error(0)
}

func (m *MockGenerator) GenerateJSON(ctx context.Context, prompt string) (string, error) {
	args := m.Called(ctx, prompt)
	return args.String(0), args.Error(1)
}

func (m *MockOrderRepository) Save(ctx context.Context, order *domain.Order) error {
	args := m.Called(ctx, order)
	return args.Error(0)
}

func (m *MockOrderRepository) UpdateStage(ctx context.Context, id string, stage domain.Stage) error {
	args := m.Called(ctx, id, stage)
	return args.Error(0)
}

func (m *MockOrderRepository) FindByID(ctx context.Context, id string) (*domain.Order, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Order), args.Error(1)
}

func (m *MockOrderRepository) FindBySession(ctx context.Context, sessionID string) ([]domain.Order, error) {
	args := m.Called(ctx, sessionID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Order), args.Error(1)
}
