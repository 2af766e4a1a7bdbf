package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/agamariel/storefront/internal/models"
	"github.com/agamariel/storefront/internal/storage"
)

// CatalogService отдаёт каталог товаров. Только чтение.
type CatalogService interface {
	List(ctx context.Context) ([]models.ProductResponse, error)
	Featured(ctx context.Context) ([]models.ProductResponse, error)
	Get(ctx context.Context, id int64) (*models.ProductResponse, error)
}

type CatalogServiceImpl struct {
	products ProductStorage
}

func NewCatalogService(products ProductStorage) *CatalogServiceImpl {
	return &CatalogServiceImpl{products: products}
}

func (s *CatalogServiceImpl) List(ctx context.Context) ([]models.ProductResponse, error) {
	products, err := s.products.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list products: %w", err)
	}
	return toProductResponses(products), nil
}

func (s *CatalogServiceImpl) Featured(ctx context.Context) ([]models.ProductResponse, error) {
	products, err := s.products.ListFeatured(ctx)
	if err != nil {
		return nil, fmt.Errorf("list featured products: %w", err)
	}
	return toProductResponses(products), nil
}

func (s *CatalogServiceImpl) Get(ctx context.Context, id int64) (*models.ProductResponse, error) {
	p, err := s.products.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, storage.ErrProductNotFound) {
			return nil, ErrProductNotFound
		}
		return nil, fmt.Errorf("get product: %w", err)
	}
	resp := models.NewProductResponse(p)
	return &resp, nil
}

func toProductResponses(products []*models.Product) []models.ProductResponse {
	resp := make([]models.ProductResponse, 0, len(products))
	for _, p := range products {
		resp = append(resp, models.NewProductResponse(p))
	}
	return resp
}
