package storage

import (
	"context"
	"time"

	"github.com/agamariel/storefront/internal/models"
	"github.com/google/uuid"
)

// MockOrderStorage - мок хранилища заказов. Незаданные функции
// ведут себя как пустое хранилище.
type MockOrderStorage struct {
	CreateWithItemsFunc     func(ctx context.Context, order *models.Order, items []*models.OrderItem) error
	GetByIDFunc             func(ctx context.Context, id int64) (*models.Order, error)
	GetByPaymentSessionFunc func(ctx context.Context, sessionID string) (*models.Order, error)
	GetByUserIDFunc         func(ctx context.Context, userID uuid.UUID) ([]*models.Order, error)
	ListFunc                func(ctx context.Context) ([]*models.Order, error)
	GetPendingPaymentFunc   func(ctx context.Context, olderThan time.Time) ([]*models.Order, error)
	GetItemsFunc            func(ctx context.Context, orderID int64) ([]*models.OrderItem, error)
	GetHistoryFunc          func(ctx context.Context, orderID int64) ([]*models.OrderHistory, error)
	TransitionStatusFunc    func(ctx context.Context, p TransitionParams) (*models.Order, error)
	SetPaymentSessionFunc   func(ctx context.Context, orderID int64, sessionID string) error
}

func (m *MockOrderStorage) CreateWithItems(ctx context.Context, order *models.Order, items []*models.OrderItem) error {
	if m.CreateWithItemsFunc != nil {
		return m.CreateWithItemsFunc(ctx, order, items)
	}
	return nil
}

func (m *MockOrderStorage) GetByID(ctx context.Context, id int64) (*models.Order, error) {
	if m.GetByIDFunc != nil {
		return m.GetByIDFunc(ctx, id)
	}
	return nil, ErrOrderNotFound
}

func (m *MockOrderStorage) GetByPaymentSession(ctx context.Context, sessionID string) (*models.Order, error) {
	if m.GetByPaymentSessionFunc != nil {
		return m.GetByPaymentSessionFunc(ctx, sessionID)
	}
	return nil, ErrOrderNotFound
}

func (m *MockOrderStorage) GetByUserID(ctx context.Context, userID uuid.UUID) ([]*models.Order, error) {
	if m.GetByUserIDFunc != nil {
		return m.GetByUserIDFunc(ctx, userID)
	}
	return nil, nil
}

func (m *MockOrderStorage) List(ctx context.Context) ([]*models.Order, error) {
	if m.ListFunc != nil {
		return m.ListFunc(ctx)
	}
	return nil, nil
}

func (m *MockOrderStorage) GetPendingPayment(ctx context.Context, olderThan time.Time) ([]*models.Order, error) {
	if m.GetPendingPaymentFunc != nil {
		return m.GetPendingPaymentFunc(ctx, olderThan)
	}
	return nil, nil
}

func (m *MockOrderStorage) GetItems(ctx context.Context, orderID int64) ([]*models.OrderItem, error) {
	if m.GetItemsFunc != nil {
		return m.GetItemsFunc(ctx, orderID)
	}
	return nil, nil
}

func (m *MockOrderStorage) GetHistory(ctx context.Context, orderID int64) ([]*models.OrderHistory, error) {
	if m.GetHistoryFunc != nil {
		return m.GetHistoryFunc(ctx, orderID)
	}
	return nil, nil
}

func (m *MockOrderStorage) TransitionStatus(ctx context.Context, p TransitionParams) (*models.Order, error) {
	if m.TransitionStatusFunc != nil {
		return m.TransitionStatusFunc(ctx, p)
	}
	return nil, ErrOrderNotFound
}

func (m *MockOrderStorage) SetPaymentSession(ctx context.Context, orderID int64, sessionID string) error {
	if m.SetPaymentSessionFunc != nil {
		return m.SetPaymentSessionFunc(ctx, orderID, sessionID)
	}
	return nil
}
