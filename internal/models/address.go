package models

import (
	"time"

	"github.com/google/uuid"
)

// Address представляет адрес доставки пользователя.
type Address struct {
	ID         int64     `db:"id"`
	UserID     uuid.UUID `db:"user_id"`
	Street     string    `db:"street"`
	Number     string    `db:"number"`
	Complement *string   `db:"complement"`
	City       string    `db:"city"`
	State      string    `db:"state"`
	ZipCode    string    `db:"zip_code"`
	IsDefault  bool      `db:"is_default"`
	CreatedAt  time.Time `db:"created_at"`
	UpdatedAt  time.Time `db:"updated_at"`
}

// AddressRequest DTO для создания адреса.
type AddressRequest struct {
	Street     string `json:"street"`
	Number     string `json:"number"`
	Complement string `json:"complement,omitempty"`
	City       string `json:"city"`
	State      string `json:"state"`
	ZipCode    string `json:"zip_code"`
	IsDefault  bool   `json:"is_default"`
}

// AddressResponse DTO для ответа по адресам.
type AddressResponse struct {
	ID         int64   `json:"id"`
	Street     string  `json:"street"`
	Number     string  `json:"number"`
	Complement *string `json:"complement,omitempty"`
	City       string  `json:"city"`
	State      string  `json:"state"`
	ZipCode    string  `json:"zip_code"`
	IsDefault  bool    `json:"is_default"`
}

func NewAddressResponse(a *Address) AddressResponse {
	return AddressResponse{
		ID:         a.ID,
		Street:     a.Street,
		Number:     a.Number,
		Complement: a.Complement,
		City:       a.City,
		State:      a.State,
		ZipCode:    a.ZipCode,
		IsDefault:  a.IsDefault,
	}
}
