package storage

import (
	"context"
	"errors"
	"fmt"

	"github.com/agamariel/storefront/internal/models"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
)

var ErrProductNotFound = errors.New("product not found")

// PostgresProductStorage - каталог товаров только на чтение.
type PostgresProductStorage struct {
	pool *pgxpool.Pool
}

func NewPostgresProductStorage(pool *pgxpool.Pool) *PostgresProductStorage {
	return &PostgresProductStorage{pool: pool}
}

const productColumns = `id, name, description, price, original_price, image_url, category, stock, featured, created_at, updated_at`

// GetByID возвращает товар по идентификатору.
func (s *PostgresProductStorage) GetByID(ctx context.Context, id int64) (*models.Product, error) {
	query := `SELECT ` + productColumns + ` FROM products WHERE id = $1`
	return scanProduct(s.pool.QueryRow(ctx, query, id))
}

// GetByIDs возвращает найденные товары по списку идентификаторов.
// Отсутствующие идентификаторы просто не попадают в результат.
func (s *PostgresProductStorage) GetByIDs(ctx context.Context, ids []int64) (map[int64]*models.Product, error) {
	query := `SELECT ` + productColumns + ` FROM products WHERE id = ANY($1)`
	products, err := s.queryProducts(ctx, query, ids)
	if err != nil {
		return nil, err
	}
	out := make(map[int64]*models.Product, len(products))
	for _, p := range products {
		out[p.ID] = p
	}
	return out, nil
}

// List возвращает весь каталог.
func (s *PostgresProductStorage) List(ctx context.Context) ([]*models.Product, error) {
	query := `SELECT ` + productColumns + ` FROM products ORDER BY id ASC`
	return s.queryProducts(ctx, query)
}

// ListFeatured возвращает товары для витрины.
func (s *PostgresProductStorage) ListFeatured(ctx context.Context) ([]*models.Product, error) {
	query := `SELECT ` + productColumns + ` FROM products WHERE featured ORDER BY id ASC`
	return s.queryProducts(ctx, query)
}

func (s *PostgresProductStorage) queryProducts(ctx context.Context, query string, args ...any) ([]*models.Product, error) {
	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query products: %w", err)
	}
	defer rows.Close()

	var products []*models.Product
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, err
		}
		products = append(products, p)
	}

	if rows.Err() != nil {
		return nil, fmt.Errorf("rows error: %w", rows.Err())
	}

	return products, nil
}

func scanProduct(row pgx.Row) (*models.Product, error) {
	var (
		p        models.Product
		original decimal.NullDecimal
	)
	err := row.Scan(
		&p.ID,
		&p.Name,
		&p.Description,
		&p.Price,
		&original,
		&p.ImageURL,
		&p.Category,
		&p.Stock,
		&p.Featured,
		&p.CreatedAt,
		&p.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrProductNotFound
		}
		return nil, fmt.Errorf("failed to scan product: %w", err)
	}
	if original.Valid {
		p.OriginalPrice = &original.Decimal
	}
	return &p, nil
}
