package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/agamariel/storefront/internal/models"
)

// AddressService - адресная книга пользователя.
type AddressService interface {
	List(ctx context.Context, caller models.Caller) ([]models.AddressResponse, error)
	Create(ctx context.Context, caller models.Caller, req models.AddressRequest) (*models.AddressResponse, error)
}

type AddressServiceImpl struct {
	addresses AddressStorage
}

func NewAddressService(addresses AddressStorage) *AddressServiceImpl {
	return &AddressServiceImpl{addresses: addresses}
}

// List возвращает адреса пользователя, адрес по умолчанию первым.
func (s *AddressServiceImpl) List(ctx context.Context, caller models.Caller) ([]models.AddressResponse, error) {
	addrs, err := s.addresses.GetByUserID(ctx, caller.UserID)
	if err != nil {
		return nil, fmt.Errorf("list addresses: %w", err)
	}
	resp := make([]models.AddressResponse, 0, len(addrs))
	for _, a := range addrs {
		resp = append(resp, models.NewAddressResponse(a))
	}
	return resp, nil
}

// Create сохраняет новый адрес. Если он помечен по умолчанию, остальные адреса
// пользователя эту отметку теряют.
func (s *AddressServiceImpl) Create(ctx context.Context, caller models.Caller, req models.AddressRequest) (*models.AddressResponse, error) {
	addr := &models.Address{
		UserID:    caller.UserID,
		Street:    strings.TrimSpace(req.Street),
		Number:    strings.TrimSpace(req.Number),
		City:      strings.TrimSpace(req.City),
		State:     strings.ToUpper(strings.TrimSpace(req.State)),
		ZipCode:   strings.TrimSpace(req.ZipCode),
		IsDefault: req.IsDefault,
	}
	if c := strings.TrimSpace(req.Complement); c != "" {
		addr.Complement = &c
	}

	required := []struct{ name, value string }{
		{"street", addr.Street},
		{"number", addr.Number},
		{"city", addr.City},
		{"state", addr.State},
		{"zip_code", addr.ZipCode},
	}
	for _, f := range required {
		if f.value == "" {
			return nil, validationError("%s is required", f.name)
		}
	}
	if len(addr.State) != 2 {
		return nil, validationError("state must be a two-letter code")
	}

	if err := s.addresses.Create(ctx, addr); err != nil {
		return nil, fmt.Errorf("create address: %w", err)
	}
	resp := models.NewAddressResponse(addr)
	return &resp, nil
}
