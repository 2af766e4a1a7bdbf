package handlers

import (
	"context"

	"github.com/agamariel/storefront/internal/models"
	"github.com/agamariel/storefront/internal/services"
	"github.com/google/uuid"
)

// MockUserService - мок для тестирования handlers
type MockUserService struct {
	RegisterFunc   func(ctx context.Context, req models.RegisterRequest) (*models.User, string, error)
	LoginFunc      func(ctx context.Context, login, password string) (*models.User, string, error)
	GetProfileFunc func(ctx context.Context, userID uuid.UUID) (*models.User, error)
}

func (m *MockUserService) Register(ctx context.Context, req models.RegisterRequest) (*models.User, string, error) {
	if m.RegisterFunc != nil {
		return m.RegisterFunc(ctx, req)
	}
	return nil, "", nil
}

func (m *MockUserService) Login(ctx context.Context, login, password string) (*models.User, string, error) {
	if m.LoginFunc != nil {
		return m.LoginFunc(ctx, login, password)
	}
	return nil, "", nil
}

func (m *MockUserService) GetProfile(ctx context.Context, userID uuid.UUID) (*models.User, error) {
	if m.GetProfileFunc != nil {
		return m.GetProfileFunc(ctx, userID)
	}
	return nil, services.ErrUserNotFound
}

type mockOrderService struct {
	ListFunc       func(ctx context.Context, caller models.Caller) ([]models.OrderResponse, error)
	DetailsFunc    func(ctx context.Context, caller models.Caller, id int64) (*models.OrderDetailsResponse, error)
	ListAllFunc    func(ctx context.Context, caller models.Caller) ([]models.OrderResponse, error)
	TransitionFunc func(ctx context.Context, caller models.Caller, id int64, req models.TransitionRequest) (*models.Order, error)
}

func (m *mockOrderService) GetUserOrders(ctx context.Context, caller models.Caller) ([]models.OrderResponse, error) {
	if m.ListFunc != nil {
		return m.ListFunc(ctx, caller)
	}
	return []models.OrderResponse{}, nil
}

func (m *mockOrderService) GetOrder(ctx context.Context, caller models.Caller, id int64) (*models.Order, error) {
	return nil, services.ErrOrderNotFound
}

func (m *mockOrderService) GetOrderDetails(ctx context.Context, caller models.Caller, id int64) (*models.OrderDetailsResponse, error) {
	if m.DetailsFunc != nil {
		return m.DetailsFunc(ctx, caller, id)
	}
	return nil, services.ErrOrderNotFound
}

func (m *mockOrderService) ListAllOrders(ctx context.Context, caller models.Caller) ([]models.OrderResponse, error) {
	if m.ListAllFunc != nil {
		return m.ListAllFunc(ctx, caller)
	}
	return []models.OrderResponse{}, nil
}

func (m *mockOrderService) TransitionStatus(ctx context.Context, caller models.Caller, id int64, req models.TransitionRequest) (*models.Order, error) {
	if m.TransitionFunc != nil {
		return m.TransitionFunc(ctx, caller, id, req)
	}
	return nil, services.ErrOrderNotFound
}

type mockCheckoutService struct {
	CreateFunc func(ctx context.Context, caller models.Caller, req models.CheckoutRequest) (*models.CheckoutResponse, error)
}

func (m *mockCheckoutService) CreateCheckoutSession(ctx context.Context, caller models.Caller, req models.CheckoutRequest) (*models.CheckoutResponse, error) {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, caller, req)
	}
	return &models.CheckoutResponse{}, nil
}

type mockWebhookService struct {
	HandleFunc func(ctx context.Context, payload []byte, signature string) (services.WebhookAck, error)
}

func (m *mockWebhookService) HandleEvent(ctx context.Context, payload []byte, signature string) (services.WebhookAck, error) {
	if m.HandleFunc != nil {
		return m.HandleFunc(ctx, payload, signature)
	}
	return services.WebhookAck{}, nil
}
