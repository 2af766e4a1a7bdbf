package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/agamariel/storefront/internal/metrics"
	"github.com/agamariel/storefront/internal/models"
	"github.com/agamariel/storefront/internal/payment"
	"github.com/agamariel/storefront/internal/storage"
	"github.com/agamariel/storefront/internal/utils"
	"github.com/google/uuid"
	"github.com/labstack/gommon/log"
	"github.com/shopspring/decimal"
)

// CheckoutService оформляет заказ и открывает платёжную сессию.
type CheckoutService interface {
	CreateCheckoutSession(ctx context.Context, caller models.Caller, req models.CheckoutRequest) (*models.CheckoutResponse, error)
}

// CheckoutServiceImpl реализует CheckoutService.
type CheckoutServiceImpl struct {
	stores  Stores
	gateway PaymentGateway
	metrics *metrics.Metrics
	logger  *log.Logger
}

func NewCheckoutService(stores Stores, gateway PaymentGateway, m *metrics.Metrics, logger *log.Logger) *CheckoutServiceImpl {
	if logger == nil {
		logger = log.New("checkout")
	}
	return &CheckoutServiceImpl{stores: stores, gateway: gateway, metrics: m, logger: logger}
}

// CreateCheckoutSession проверяет корзину, создаёт заказ в pending_payment
// и открывает платёжную сессию. При сбое провайдера заказ остаётся
// в pending_payment и ошибка оборачивает ErrUpstream.
func (s *CheckoutServiceImpl) CreateCheckoutSession(ctx context.Context, caller models.Caller, req models.CheckoutRequest) (*models.CheckoutResponse, error) {
	products, err := s.validate(ctx, req)
	if err != nil {
		s.metrics.CheckoutSession("rejected")
		return nil, err
	}

	addr, err := s.stores.Addresses.GetByID(ctx, req.AddressID)
	if errors.Is(err, storage.ErrAddressNotFound) || (err == nil && addr.UserID != caller.UserID) {
		s.metrics.CheckoutSession("rejected")
		return nil, ErrAddressNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("load address: %w", err)
	}

	user, err := s.stores.Users.GetByID(ctx, caller.UserID)
	if err != nil {
		if errors.Is(err, storage.ErrUserNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("load user: %w", err)
	}

	addressID := addr.ID
	order := &models.Order{
		UserID:       caller.UserID,
		Status:       models.OrderStatusPendingPayment,
		Subtotal:     req.Subtotal,
		ShippingCost: req.ShippingCost,
		Tax:          req.Tax,
		Total:        req.Total,
		AddressID:    &addressID,
	}
	items := make([]*models.OrderItem, 0, len(req.Items))
	lineItems := make([]payment.LineItem, 0, len(req.Items))
	for _, it := range req.Items {
		items = append(items, &models.OrderItem{
			ProductID: it.ProductID,
			Quantity:  it.Quantity,
			UnitPrice: it.UnitPrice,
			Subtotal:  utils.LineSubtotal(it.UnitPrice, it.Quantity),
		})
		cents, _ := utils.ToMinorUnits(it.UnitPrice)
		lineItems = append(lineItems, payment.LineItem{
			Name:       products[it.ProductID].Name,
			UnitAmount: cents,
			Quantity:   int64(it.Quantity),
		})
	}
	if shipping, _ := utils.ToMinorUnits(req.ShippingCost); shipping > 0 {
		lineItems = append(lineItems, payment.LineItem{Name: "Frete", UnitAmount: shipping, Quantity: 1})
	}
	if tax, _ := utils.ToMinorUnits(req.Tax); tax > 0 {
		lineItems = append(lineItems, payment.LineItem{Name: "Impostos", UnitAmount: tax, Quantity: 1})
	}

	if err := s.stores.Orders.CreateWithItems(ctx, order, items); err != nil {
		return nil, fmt.Errorf("create order: %w", err)
	}
	s.logger.Infoj(log.JSON{"message": "order created", "order_id": order.ID, "status": order.Status, "total": order.Total.StringFixed(2)})

	session, err := s.gateway.CreateCheckoutSession(ctx, payment.CheckoutSessionInput{
		LineItems:         lineItems,
		CustomerEmail:     contactEmail(user),
		ClientReferenceID: caller.UserID.String(),
		Metadata: payment.CheckoutMetadata{
			OrderID:      order.ID,
			UserID:       caller.UserID,
			AddressID:    addr.ID,
			Subtotal:     order.Subtotal,
			ShippingCost: order.ShippingCost,
			Tax:          order.Tax,
			Total:        order.Total,
		},
		IdempotencyKey: checkoutIdempotencyKey(order.ID),
	})
	if err != nil {
		s.metrics.CheckoutSession("upstream_error")
		s.logger.Errorj(log.JSON{"message": "failed to create checkout session", "order_id": order.ID, "error": err.Error()})
		return nil, fmt.Errorf("%w: create checkout session for order %d: %w", ErrUpstream, order.ID, err)
	}

	if err := s.stores.Orders.SetPaymentSession(ctx, order.ID, session.ID); err != nil {
		s.logger.Warnf("failed to store payment session %s for order %d: %v", session.ID, order.ID, err)
	}

	s.metrics.CheckoutSession("created")
	s.logger.Infoj(log.JSON{"message": "checkout session created", "order_id": order.ID, "session_id": session.ID})

	return &models.CheckoutResponse{OrderID: order.ID, SessionID: session.ID, URL: session.URL}, nil
}

// checkoutIdempotencyKey стабилен в пределах одного оформления (повторы
// клиента провайдера) и уникален между оформлениями: id заказов
// начинаются заново после перезапуска хранилища в памяти.
func checkoutIdempotencyKey(orderID int64) string {
	return fmt.Sprintf("checkout-order-%d-%s", orderID, uuid.NewString())
}

// validate проверяет корзину и суммы. Ничего не сохраняет.
func (s *CheckoutServiceImpl) validate(ctx context.Context, req models.CheckoutRequest) (map[int64]*models.Product, error) {
	if len(req.Items) == 0 {
		return nil, validationError("cart is empty")
	}

	amounts := []struct {
		name  string
		value decimal.Decimal
	}{
		{"subtotal", req.Subtotal},
		{"shipping_cost", req.ShippingCost},
		{"tax", req.Tax},
		{"total", req.Total},
	}
	for _, a := range amounts {
		if a.value.IsNegative() {
			return nil, validationError("%s must not be negative", a.name)
		}
		if _, err := utils.ToMinorUnits(a.value); err != nil {
			return nil, validationError("%s: %v", a.name, err)
		}
		if !utils.WithinChargeLimit(a.value) {
			return nil, validationError("%s exceeds the maximum charge", a.name)
		}
	}
	if !utils.SumsTo(req.Total, req.Subtotal, req.ShippingCost, req.Tax) {
		return nil, validationError("total %s does not equal subtotal + shipping + tax", req.Total.StringFixed(2))
	}

	ids := make([]int64, 0, len(req.Items))
	lines := decimal.Zero
	for i, it := range req.Items {
		if it.Quantity <= 0 {
			return nil, validationError("item %d: quantity must be positive", i)
		}
		if it.UnitPrice.IsNegative() {
			return nil, validationError("item %d: unit price must not be negative", i)
		}
		if _, err := utils.ToMinorUnits(it.UnitPrice); err != nil {
			return nil, validationError("item %d: %v", i, err)
		}
		line := utils.LineSubtotal(it.UnitPrice, it.Quantity)
		if !utils.WithinChargeLimit(line) {
			return nil, validationError("item %d: line total exceeds the maximum charge", i)
		}
		ids = append(ids, it.ProductID)
		lines = lines.Add(line)
	}
	if !lines.Equal(req.Subtotal) {
		return nil, validationError("subtotal %s does not equal sum of items %s", req.Subtotal.StringFixed(2), lines.StringFixed(2))
	}

	products, err := s.stores.Products.GetByIDs(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("load products: %w", err)
	}
	for i, it := range req.Items {
		p, ok := products[it.ProductID]
		if !ok {
			return nil, validationError("item %d: unknown product %d", i, it.ProductID)
		}
		if !p.Price.Equal(it.UnitPrice) {
			return nil, validationError("item %d: price %s differs from catalog price %s", i, it.UnitPrice.StringFixed(2), p.Price.StringFixed(2))
		}
	}

	return products, nil
}
