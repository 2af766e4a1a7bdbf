package payment

import (
	"fmt"
	"strconv"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// MetadataVersion - текущая версия контракта метаданных сессии.
const MetadataVersion = "1"

const (
	metaVersion      = "sf_version"
	metaOrderID      = "order_id"
	metaUserID       = "user_id"
	metaAddressID    = "address_id"
	metaSubtotal     = "subtotal"
	metaShippingCost = "shipping_cost"
	metaTax          = "tax"
	metaTotal        = "total"
)

// CheckoutMetadata связывает платёжную сессию с заказом.
// Передаётся провайдеру и возвращается в событиях вебхука.
type CheckoutMetadata struct {
	OrderID      int64
	UserID       uuid.UUID
	AddressID    int64
	Subtotal     decimal.Decimal
	ShippingCost decimal.Decimal
	Tax          decimal.Decimal
	Total        decimal.Decimal
}

// Encode переводит метаданные в строковую карту провайдера.
func (m CheckoutMetadata) Encode() map[string]string {
	return map[string]string{
		metaVersion:      MetadataVersion,
		metaOrderID:      strconv.FormatInt(m.OrderID, 10),
		metaUserID:       m.UserID.String(),
		metaAddressID:    strconv.FormatInt(m.AddressID, 10),
		metaSubtotal:     m.Subtotal.StringFixed(2),
		metaShippingCost: m.ShippingCost.StringFixed(2),
		metaTax:          m.Tax.StringFixed(2),
		metaTotal:        m.Total.StringFixed(2),
	}
}

// DecodeCheckoutMetadata разбирает метаданные сессии.
// Обязательны версия и order_id; остальные поля разбираются, если заданы.
func DecodeCheckoutMetadata(raw map[string]string) (CheckoutMetadata, error) {
	var m CheckoutMetadata

	version, ok := raw[metaVersion]
	if !ok || version == "" {
		return m, fmt.Errorf("%w: missing %s", ErrInvalidMetadata, metaVersion)
	}
	if version != MetadataVersion {
		return m, fmt.Errorf("%w: unsupported version %q", ErrInvalidMetadata, version)
	}

	orderID, err := strconv.ParseInt(raw[metaOrderID], 10, 64)
	if err != nil || orderID <= 0 {
		return m, fmt.Errorf("%w: bad %s %q", ErrInvalidMetadata, metaOrderID, raw[metaOrderID])
	}
	m.OrderID = orderID

	if v := raw[metaUserID]; v != "" {
		if m.UserID, err = uuid.Parse(v); err != nil {
			return m, fmt.Errorf("%w: bad %s: %v", ErrInvalidMetadata, metaUserID, err)
		}
	}
	if v := raw[metaAddressID]; v != "" {
		if m.AddressID, err = strconv.ParseInt(v, 10, 64); err != nil {
			return m, fmt.Errorf("%w: bad %s: %v", ErrInvalidMetadata, metaAddressID, err)
		}
	}

	amounts := []struct {
		key string
		dst *decimal.Decimal
	}{
		{metaSubtotal, &m.Subtotal},
		{metaShippingCost, &m.ShippingCost},
		{metaTax, &m.Tax},
		{metaTotal, &m.Total},
	}
	for _, a := range amounts {
		v := raw[a.key]
		if v == "" {
			continue
		}
		d, err := decimal.NewFromString(v)
		if err != nil {
			return m, fmt.Errorf("%w: bad %s: %v", ErrInvalidMetadata, a.key, err)
		}
		*a.dst = d
	}

	return m, nil
}

// HasTotal сообщает, была ли сумма заказа передана в метаданных.
func HasTotal(raw map[string]string) bool {
	return raw[metaTotal] != ""
}
