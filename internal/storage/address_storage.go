package storage

import (
	"context"
	"errors"
	"fmt"

	"github.com/agamariel/storefront/internal/models"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

var ErrAddressNotFound = errors.New("address not found")

// PostgresAddressStorage хранит адреса доставки.
type PostgresAddressStorage struct {
	pool *pgxpool.Pool
}

func NewPostgresAddressStorage(pool *pgxpool.Pool) *PostgresAddressStorage {
	return &PostgresAddressStorage{pool: pool}
}

const addressColumns = `id, user_id, street, number, complement, city, state, zip_code, is_default, created_at, updated_at`

// Create сохраняет адрес. Новый адрес по умолчанию снимает флаг с остальных.
func (s *PostgresAddressStorage) Create(ctx context.Context, addr *models.Address) error {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	if addr.IsDefault {
		if _, err := tx.Exec(ctx, `UPDATE addresses SET is_default = FALSE, updated_at = NOW() WHERE user_id = $1 AND is_default`, addr.UserID); err != nil {
			return fmt.Errorf("failed to reset default address: %w", err)
		}
	}

	query := `
		INSERT INTO addresses (user_id, street, number, complement, city, state, zip_code, is_default, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, NOW(), NOW())
		RETURNING id, created_at, updated_at
	`
	err = tx.QueryRow(ctx, query,
		addr.UserID,
		addr.Street,
		addr.Number,
		addr.Complement,
		addr.City,
		addr.State,
		addr.ZipCode,
		addr.IsDefault,
	).Scan(&addr.ID, &addr.CreatedAt, &addr.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to create address: %w", err)
	}

	if err = tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

// GetByID возвращает адрес по идентификатору.
func (s *PostgresAddressStorage) GetByID(ctx context.Context, id int64) (*models.Address, error) {
	query := `SELECT ` + addressColumns + ` FROM addresses WHERE id = $1`
	return scanAddress(s.pool.QueryRow(ctx, query, id))
}

// GetByUserID возвращает адреса пользователя, адрес по умолчанию первым.
func (s *PostgresAddressStorage) GetByUserID(ctx context.Context, userID uuid.UUID) ([]*models.Address, error) {
	query := `SELECT ` + addressColumns + ` FROM addresses WHERE user_id = $1 ORDER BY is_default DESC, created_at DESC`

	rows, err := s.pool.Query(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to query addresses: %w", err)
	}
	defer rows.Close()

	var addresses []*models.Address
	for rows.Next() {
		a, err := scanAddress(rows)
		if err != nil {
			return nil, err
		}
		addresses = append(addresses, a)
	}

	if rows.Err() != nil {
		return nil, fmt.Errorf("rows error: %w", rows.Err())
	}

	return addresses, nil
}

func scanAddress(row pgx.Row) (*models.Address, error) {
	var a models.Address
	err := row.Scan(
		&a.ID,
		&a.UserID,
		&a.Street,
		&a.Number,
		&a.Complement,
		&a.City,
		&a.State,
		&a.ZipCode,
		&a.IsDefault,
		&a.CreatedAt,
		&a.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrAddressNotFound
		}
		return nil, fmt.Errorf("failed to scan address: %w", err)
	}
	return &a, nil
}
