package payment

import (
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

func TestCheckoutMetadataRoundTrip(t *testing.T) {
	in := CheckoutMetadata{
		OrderID:      42,
		UserID:       uuid.New(),
		AddressID:    7,
		Subtotal:     decimal.RequireFromString("20"),
		ShippingCost: decimal.RequireFromString("5.5"),
		Tax:          decimal.Zero,
		Total:        decimal.RequireFromString("25.5"),
	}

	raw := in.Encode()
	if raw["sf_version"] != MetadataVersion || raw["total"] != "25.50" || raw["tax"] != "0.00" {
		t.Errorf("Encode() = %v", raw)
	}

	out, err := DecodeCheckoutMetadata(raw)
	if err != nil {
		t.Fatalf("DecodeCheckoutMetadata() error = %v", err)
	}
	if out.OrderID != in.OrderID || out.UserID != in.UserID || out.AddressID != in.AddressID {
		t.Errorf("ids mismatch: %+v", out)
	}
	if !out.Total.Equal(in.Total) || !out.ShippingCost.Equal(in.ShippingCost) {
		t.Errorf("amounts mismatch: %+v", out)
	}
}

func TestDecodeCheckoutMetadataErrors(t *testing.T) {
	tests := []struct {
		name string
		raw  map[string]string
	}{
		{name: "empty", raw: map[string]string{}},
		{name: "missing version", raw: map[string]string{"order_id": "1"}},
		{name: "unknown version", raw: map[string]string{"sf_version": "2", "order_id": "1"}},
		{name: "missing order id", raw: map[string]string{"sf_version": "1"}},
		{name: "negative order id", raw: map[string]string{"sf_version": "1", "order_id": "-3"}},
		{name: "bad user id", raw: map[string]string{"sf_version": "1", "order_id": "1", "user_id": "nope"}},
		{name: "bad total", raw: map[string]string{"sf_version": "1", "order_id": "1", "total": "abc"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := DecodeCheckoutMetadata(tt.raw); !errors.Is(err, ErrInvalidMetadata) {
				t.Errorf("error = %v, want ErrInvalidMetadata", err)
			}
		})
	}
}

func TestDecodeCheckoutMetadataMinimal(t *testing.T) {
	raw := map[string]string{"sf_version": "1", "order_id": "5"}
	m, err := DecodeCheckoutMetadata(raw)
	if err != nil {
		t.Fatalf("error = %v", err)
	}
	if m.OrderID != 5 || HasTotal(raw) {
		t.Errorf("decoded = %+v", m)
	}
}
