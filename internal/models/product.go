package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Product - товар каталога.
type Product struct {
	ID            int64            `db:"id"`
	Name          string           `db:"name"`
	Description   *string          `db:"description"`
	Price         decimal.Decimal  `db:"price"`
	OriginalPrice *decimal.Decimal `db:"original_price"`
	ImageURL      *string          `db:"image_url"`
	Category      *string          `db:"category"`
	Stock         int              `db:"stock"`
	Featured      bool             `db:"featured"`
	CreatedAt     time.Time        `db:"created_at"`
	UpdatedAt     time.Time        `db:"updated_at"`
}

// ProductResponse DTO товара.
type ProductResponse struct {
	ID            int64   `json:"id"`
	Name          string  `json:"name"`
	Description   *string `json:"description,omitempty"`
	Price         string  `json:"price"`
	OriginalPrice *string `json:"original_price,omitempty"`
	ImageURL      *string `json:"image_url,omitempty"`
	Category      *string `json:"category,omitempty"`
	Stock         int     `json:"stock"`
	Featured      bool    `json:"featured"`
}

func NewProductResponse(p *Product) ProductResponse {
	var original *string
	if p.OriginalPrice != nil {
		s := p.OriginalPrice.StringFixed(2)
		original = &s
	}
	return ProductResponse{
		ID:            p.ID,
		Name:          p.Name,
		Description:   p.Description,
		Price:         p.Price.StringFixed(2),
		OriginalPrice: original,
		ImageURL:      p.ImageURL,
		Category:      p.Category,
		Stock:         p.Stock,
		Featured:      p.Featured,
	}
}
