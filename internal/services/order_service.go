package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/agamariel/storefront/internal/metrics"
	"github.com/agamariel/storefront/internal/models"
	"github.com/agamariel/storefront/internal/notify"
	"github.com/agamariel/storefront/internal/storage"
	"github.com/labstack/gommon/log"
)

// OrderService определяет интерфейс работы с заказами.
type OrderService interface {
	GetUserOrders(ctx context.Context, caller models.Caller) ([]models.OrderResponse, error)
	GetOrder(ctx context.Context, caller models.Caller, orderID int64) (*models.Order, error)
	GetOrderDetails(ctx context.Context, caller models.Caller, orderID int64) (*models.OrderDetailsResponse, error)
	ListAllOrders(ctx context.Context, caller models.Caller) ([]models.OrderResponse, error)
	TransitionStatus(ctx context.Context, caller models.Caller, orderID int64, req models.TransitionRequest) (*models.Order, error)
}

// OrderServiceImpl реализует OrderService.
type OrderServiceImpl struct {
	orders   OrderStorage
	notifier *orderNotifier
	metrics  *metrics.Metrics
	logger   *log.Logger
}

// NewOrderService создаёт новый сервис заказов.
func NewOrderService(stores Stores, notifier Notifier, m *metrics.Metrics, logger *log.Logger) *OrderServiceImpl {
	if logger == nil {
		logger = log.New("orders")
	}
	return &OrderServiceImpl{
		orders:   stores.Orders,
		notifier: &orderNotifier{stores: stores, notifier: notifier, logger: logger},
		metrics:  m,
		logger:   logger,
	}
}

// GetUserOrders возвращает список заказов пользователя.
func (s *OrderServiceImpl) GetUserOrders(ctx context.Context, caller models.Caller) ([]models.OrderResponse, error) {
	orders, err := s.orders.GetByUserID(ctx, caller.UserID)
	if err != nil {
		return nil, fmt.Errorf("get user orders: %w", err)
	}
	return toOrderResponses(orders), nil
}

// ListAllOrders возвращает все заказы. Только для администратора.
func (s *OrderServiceImpl) ListAllOrders(ctx context.Context, caller models.Caller) ([]models.OrderResponse, error) {
	if !caller.IsAdmin() {
		return nil, ErrAdminRequired
	}
	orders, err := s.orders.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list orders: %w", err)
	}
	return toOrderResponses(orders), nil
}

// GetOrder возвращает заказ владельцу или администратору.
// Чужой заказ для обычного пользователя неотличим от несуществующего.
func (s *OrderServiceImpl) GetOrder(ctx context.Context, caller models.Caller, orderID int64) (*models.Order, error) {
	order, err := s.orders.GetByID(ctx, orderID)
	if err != nil {
		if errors.Is(err, storage.ErrOrderNotFound) {
			return nil, ErrOrderNotFound
		}
		return nil, fmt.Errorf("get order: %w", err)
	}
	if order.UserID != caller.UserID && !caller.IsAdmin() {
		return nil, ErrOrderNotFound
	}
	return order, nil
}

// GetOrderDetails возвращает заказ с позициями и историей статусов.
func (s *OrderServiceImpl) GetOrderDetails(ctx context.Context, caller models.Caller, orderID int64) (*models.OrderDetailsResponse, error) {
	order, err := s.GetOrder(ctx, caller, orderID)
	if err != nil {
		return nil, err
	}
	items, err := s.orders.GetItems(ctx, orderID)
	if err != nil {
		return nil, fmt.Errorf("get order items: %w", err)
	}
	history, err := s.orders.GetHistory(ctx, orderID)
	if err != nil {
		return nil, fmt.Errorf("get order history: %w", err)
	}
	resp := models.NewOrderDetailsResponse(order, items, history)
	return &resp, nil
}

// TransitionStatus меняет статус заказа по запросу оператора.
// Переход условный: если статус успел измениться, возвращается ErrStatusChanged.
func (s *OrderServiceImpl) TransitionStatus(ctx context.Context, caller models.Caller, orderID int64, req models.TransitionRequest) (*models.Order, error) {
	if !caller.IsAdmin() {
		return nil, ErrAdminRequired
	}
	if !req.Status.Valid() {
		return nil, validationError("unknown status %q", req.Status)
	}

	order, err := s.orders.GetByID(ctx, orderID)
	if err != nil {
		if errors.Is(err, storage.ErrOrderNotFound) {
			return nil, ErrOrderNotFound
		}
		return nil, fmt.Errorf("get order: %w", err)
	}

	from := order.Status
	if !from.CanTransitionTo(req.Status) {
		return nil, validationError("transition %s -> %s is not allowed", from, req.Status)
	}

	updated, err := s.orders.TransitionStatus(ctx, storage.TransitionParams{
		OrderID:      orderID,
		From:         from,
		To:           req.Status,
		Notes:        req.Notes,
		TrackingCode: req.TrackingCode,
	})
	switch {
	case errors.Is(err, storage.ErrStatusConflict):
		return nil, ErrStatusChanged
	case errors.Is(err, storage.ErrOrderNotFound):
		return nil, ErrOrderNotFound
	case err != nil:
		return nil, fmt.Errorf("transition order %d: %w", orderID, err)
	}

	s.metrics.Transition(string(from), string(req.Status), "admin")
	s.logger.Infoj(log.JSON{
		"message":  "order status changed",
		"order_id": orderID,
		"from":     from,
		"status":   updated.Status,
		"actor":    caller.Login,
	})

	s.notifier.notify(ctx, notify.KindStatusChanged, updated)
	return updated, nil
}

func toOrderResponses(orders []*models.Order) []models.OrderResponse {
	resp := make([]models.OrderResponse, 0, len(orders))
	for _, o := range orders {
		resp = append(resp, models.NewOrderResponse(o))
	}
	return resp
}
