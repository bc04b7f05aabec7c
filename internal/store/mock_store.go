package store

import (
	"context"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
)

// MockStore is a mock implementation of Store using testify/mock.
type MockStore struct {
	mock.Mock
}

func (m *MockStore) SaveCalculation(ctx context.Context, c Calculation) error {
	args := m.Called(ctx, c)
	return args.Error(0)
}

func (m *MockStore) GetCalculation(ctx context.Context, id uuid.UUID) (Calculation, error) {
	args := m.Called(ctx, id)
	return args.Get(0).(Calculation), args.Error(1)
}

func (m *MockStore) Close() error {
	args := m.Called()
	return args.Error(0)
}
