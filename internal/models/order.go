package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// OrderStatus описывает статус жизненного цикла заказа.
type OrderStatus string

const (
	OrderStatusPendingPayment   OrderStatus = "pending_payment"
	OrderStatusPaymentConfirmed OrderStatus = "payment_confirmed"
	OrderStatusProcessing       OrderStatus = "processing"
	OrderStatusShipped          OrderStatus = "shipped"
	OrderStatusDelivered        OrderStatus = "delivered"
	OrderStatusCancelled        OrderStatus = "cancelled"
)

// orderProgression - порядок статусов основной ветки. cancelled в неё не входит.
var orderProgression = map[OrderStatus]int{
	OrderStatusPendingPayment:   0,
	OrderStatusPaymentConfirmed: 1,
	OrderStatusProcessing:       2,
	OrderStatusShipped:          3,
	OrderStatusDelivered:        4,
}

// AllOrderStatuses возвращает все статусы в порядке жизненного цикла.
func AllOrderStatuses() []OrderStatus {
	return []OrderStatus{
		OrderStatusPendingPayment,
		OrderStatusPaymentConfirmed,
		OrderStatusProcessing,
		OrderStatusShipped,
		OrderStatusDelivered,
		OrderStatusCancelled,
	}
}

// Valid сообщает, входит ли статус в закрытый набор.
func (s OrderStatus) Valid() bool {
	if s == OrderStatusCancelled {
		return true
	}
	_, ok := orderProgression[s]
	return ok
}

// IsTerminal - из delivered и cancelled переходов нет.
func (s OrderStatus) IsTerminal() bool {
	return s == OrderStatusDelivered || s == OrderStatusCancelled
}

// CanTransitionTo проверяет допустимость перехода.
// Разрешено движение только вперёд по основной ветке (с пропуском шагов)
// и отмена из любого нетерминального статуса.
func (s OrderStatus) CanTransitionTo(next OrderStatus) bool {
	if !s.Valid() || !next.Valid() || s.IsTerminal() {
		return false
	}
	if next == OrderStatusCancelled {
		return true
	}
	return orderProgression[next] > orderProgression[s]
}

// Order представляет заказ пользователя.
type Order struct {
	ID               int64           `db:"id"`
	UserID           uuid.UUID       `db:"user_id"`
	Status           OrderStatus     `db:"status"`
	Subtotal         decimal.Decimal `db:"subtotal"`
	ShippingCost     decimal.Decimal `db:"shipping_cost"`
	Tax              decimal.Decimal `db:"tax"`
	Total            decimal.Decimal `db:"total"`
	PaymentSessionID *string         `db:"payment_session_id"`
	TrackingCode     *string         `db:"tracking_code"`
	AddressID        *int64          `db:"address_id"`
	Notes            *string         `db:"notes"`
	CreatedAt        time.Time       `db:"created_at"`
	UpdatedAt        time.Time       `db:"updated_at"`
}

// OrderItem - позиция заказа. UnitPrice фиксируется в момент оформления.
type OrderItem struct {
	ID        int64           `db:"id"`
	OrderID   int64           `db:"order_id"`
	ProductID int64           `db:"product_id"`
	Quantity  int             `db:"quantity"`
	UnitPrice decimal.Decimal `db:"unit_price"`
	Subtotal  decimal.Decimal `db:"subtotal"`
	CreatedAt time.Time       `db:"created_at"`
}

// OrderHistory - запись журнала смены статусов. Только добавляется.
type OrderHistory struct {
	ID             int64        `db:"id"`
	OrderID        int64        `db:"order_id"`
	PreviousStatus *OrderStatus `db:"previous_status"`
	NewStatus      OrderStatus  `db:"new_status"`
	Notes          *string      `db:"notes"`
	CreatedAt      time.Time    `db:"created_at"`
}

// TransitionRequest DTO для смены статуса оператором.
type TransitionRequest struct {
	Status       OrderStatus `json:"status"`
	Notes        string      `json:"notes,omitempty"`
	TrackingCode string      `json:"tracking_code,omitempty"`
}

// OrderResponse ответ для списка заказов.
type OrderResponse struct {
	ID           int64   `json:"id"`
	Status       string  `json:"status"`
	Subtotal     string  `json:"subtotal"`
	ShippingCost string  `json:"shipping_cost"`
	Tax          string  `json:"tax"`
	Total        string  `json:"total"`
	TrackingCode *string `json:"tracking_code,omitempty"`
	AddressID    *int64  `json:"address_id,omitempty"`
	CreatedAt    string  `json:"created_at"`
	UpdatedAt    string  `json:"updated_at"`
}

// OrderItemResponse DTO позиции заказа.
type OrderItemResponse struct {
	ProductID int64  `json:"product_id"`
	Quantity  int    `json:"quantity"`
	UnitPrice string `json:"unit_price"`
	Subtotal  string `json:"subtotal"`
}

// OrderHistoryResponse DTO записи истории.
type OrderHistoryResponse struct {
	PreviousStatus *string `json:"previous_status"`
	NewStatus      string  `json:"new_status"`
	Notes          *string `json:"notes,omitempty"`
	CreatedAt      string  `json:"created_at"`
}

// OrderDetailsResponse - заказ вместе с позициями и историей.
type OrderDetailsResponse struct {
	OrderResponse
	Items   []OrderItemResponse    `json:"items"`
	History []OrderHistoryResponse `json:"history"`
}

// NewOrderResponse собирает DTO из модели. Суммы всегда с двумя знаками.
func NewOrderResponse(o *Order) OrderResponse {
	return OrderResponse{
		ID:           o.ID,
		Status:       string(o.Status),
		Subtotal:     o.Subtotal.StringFixed(2),
		ShippingCost: o.ShippingCost.StringFixed(2),
		Tax:          o.Tax.StringFixed(2),
		Total:        o.Total.StringFixed(2),
		TrackingCode: o.TrackingCode,
		AddressID:    o.AddressID,
		CreatedAt:    o.CreatedAt.Format(time.RFC3339),
		UpdatedAt:    o.UpdatedAt.Format(time.RFC3339),
	}
}

// NewOrderDetailsResponse собирает детальный DTO.
func NewOrderDetailsResponse(o *Order, items []*OrderItem, history []*OrderHistory) OrderDetailsResponse {
	resp := OrderDetailsResponse{
		OrderResponse: NewOrderResponse(o),
		Items:         make([]OrderItemResponse, 0, len(items)),
		History:       make([]OrderHistoryResponse, 0, len(history)),
	}
	for _, it := range items {
		resp.Items = append(resp.Items, OrderItemResponse{
			ProductID: it.ProductID,
			Quantity:  it.Quantity,
			UnitPrice: it.UnitPrice.StringFixed(2),
			Subtotal:  it.Subtotal.StringFixed(2),
		})
	}
	for _, h := range history {
		var prev *string
		if h.PreviousStatus != nil {
			p := string(*h.PreviousStatus)
			prev = &p
		}
		resp.History = append(resp.History, OrderHistoryResponse{
			PreviousStatus: prev,
			NewStatus:      string(h.NewStatus),
			Notes:          h.Notes,
			CreatedAt:      h.CreatedAt.Format(time.RFC3339),
		})
	}
	return resp
}
