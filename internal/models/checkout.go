package models

import "github.com/shopspring/decimal"

// CartItem - строка корзины, присланная клиентом.
type CartItem struct {
	ProductID int64           `json:"product_id"`
	Quantity  int             `json:"quantity"`
	UnitPrice decimal.Decimal `json:"unit_price"`
}

// CheckoutRequest - корзина и рассчитанная клиентом разбивка суммы.
type CheckoutRequest struct {
	Items        []CartItem      `json:"items"`
	AddressID    int64           `json:"address_id"`
	Subtotal     decimal.Decimal `json:"subtotal"`
	ShippingCost decimal.Decimal `json:"shipping_cost"`
	Tax          decimal.Decimal `json:"tax"`
	Total        decimal.Decimal `json:"total"`
}

// CheckoutResponse - то, куда клиенту нужно перейти для оплаты.
type CheckoutResponse struct {
	OrderID   int64  `json:"order_id"`
	SessionID string `json:"session_id"`
	URL       string `json:"url"`
}
