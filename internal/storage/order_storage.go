package storage

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/agamariel/storefront/internal/models"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

var (
	ErrOrderNotFound        = errors.New("order not found")
	ErrStatusConflict       = errors.New("order status changed concurrently")
	ErrPaymentSessionExists = errors.New("payment session already bound to another order")
)

// TransitionParams описывает условный переход статуса.
// Переход применяется, только если текущий статус заказа равен From.
type TransitionParams struct {
	OrderID      int64
	From         models.OrderStatus
	To           models.OrderStatus
	Notes        string
	TrackingCode string
}

// PostgresOrderStorage хранит заказы, позиции и историю в PostgreSQL.
type PostgresOrderStorage struct {
	pool *pgxpool.Pool
}

// NewPostgresOrderStorage создаёт новый экземпляр PostgresOrderStorage.
func NewPostgresOrderStorage(pool *pgxpool.Pool) *PostgresOrderStorage {
	return &PostgresOrderStorage{pool: pool}
}

const orderColumns = `id, user_id, status, subtotal, shipping_cost, tax, total,
	payment_session_id, tracking_code, address_id, notes, created_at, updated_at`

// CreateWithItems создаёт заказ вместе с позициями в одной транзакции.
func (s *PostgresOrderStorage) CreateWithItems(ctx context.Context, order *models.Order, items []*models.OrderItem) error {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	if err := s.CreateWithItemsTx(ctx, tx, order, items); err != nil {
		return err
	}

	if err = tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	return nil
}

// CreateWithItemsTx создаёт заказ в рамках переданной транзакции.
func (s *PostgresOrderStorage) CreateWithItemsTx(ctx context.Context, tx pgx.Tx, order *models.Order, items []*models.OrderItem) error {
	if order.Status == "" {
		order.Status = models.OrderStatusPendingPayment
	}

	query := `
		INSERT INTO orders (user_id, status, subtotal, shipping_cost, tax, total, address_id, notes, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, NOW(), NOW())
		RETURNING id, created_at, updated_at
	`
	err := tx.QueryRow(ctx, query,
		order.UserID,
		string(order.Status),
		order.Subtotal,
		order.ShippingCost,
		order.Tax,
		order.Total,
		order.AddressID,
		order.Notes,
	).Scan(&order.ID, &order.CreatedAt, &order.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to create order: %w", err)
	}

	itemQuery := `
		INSERT INTO order_items (order_id, product_id, quantity, unit_price, subtotal, created_at)
		VALUES ($1, $2, $3, $4, $5, NOW())
		RETURNING id, created_at
	`
	for _, item := range items {
		item.OrderID = order.ID
		err := tx.QueryRow(ctx, itemQuery,
			item.OrderID,
			item.ProductID,
			item.Quantity,
			item.UnitPrice,
			item.Subtotal,
		).Scan(&item.ID, &item.CreatedAt)
		if err != nil {
			return fmt.Errorf("failed to create order item: %w", err)
		}
	}

	return nil
}

// GetByID возвращает заказ по идентификатору.
func (s *PostgresOrderStorage) GetByID(ctx context.Context, id int64) (*models.Order, error) {
	query := `SELECT ` + orderColumns + ` FROM orders WHERE id = $1`
	return scanOrder(s.pool.QueryRow(ctx, query, id))
}

// GetByPaymentSession возвращает заказ по идентификатору платёжной сессии.
func (s *PostgresOrderStorage) GetByPaymentSession(ctx context.Context, sessionID string) (*models.Order, error) {
	query := `SELECT ` + orderColumns + ` FROM orders WHERE payment_session_id = $1`
	return scanOrder(s.pool.QueryRow(ctx, query, sessionID))
}

// GetByUserID возвращает заказы пользователя (сортировка по created_at DESC).
func (s *PostgresOrderStorage) GetByUserID(ctx context.Context, userID uuid.UUID) ([]*models.Order, error) {
	query := `SELECT ` + orderColumns + ` FROM orders WHERE user_id = $1 ORDER BY created_at DESC, id DESC`
	return s.queryOrders(ctx, query, userID)
}

// List возвращает все заказы, новые первыми.
func (s *PostgresOrderStorage) List(ctx context.Context) ([]*models.Order, error) {
	query := `SELECT ` + orderColumns + ` FROM orders ORDER BY created_at DESC, id DESC`
	return s.queryOrders(ctx, query)
}

// GetPendingPayment возвращает неоплаченные заказы с платёжной сессией,
// созданные раньше olderThan.
func (s *PostgresOrderStorage) GetPendingPayment(ctx context.Context, olderThan time.Time) ([]*models.Order, error) {
	query := `SELECT ` + orderColumns + `
		FROM orders
		WHERE status = 'pending_payment' AND payment_session_id IS NOT NULL AND created_at < $1
		ORDER BY created_at ASC
	`
	return s.queryOrders(ctx, query, olderThan)
}

// GetItems возвращает позиции заказа.
func (s *PostgresOrderStorage) GetItems(ctx context.Context, orderID int64) ([]*models.OrderItem, error) {
	query := `
		SELECT id, order_id, product_id, quantity, unit_price, subtotal, created_at
		FROM order_items
		WHERE order_id = $1
		ORDER BY id ASC
	`

	rows, err := s.pool.Query(ctx, query, orderID)
	if err != nil {
		return nil, fmt.Errorf("failed to query order items: %w", err)
	}
	defer rows.Close()

	var items []*models.OrderItem
	for rows.Next() {
		var item models.OrderItem
		if err := rows.Scan(
			&item.ID,
			&item.OrderID,
			&item.ProductID,
			&item.Quantity,
			&item.UnitPrice,
			&item.Subtotal,
			&item.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan order item: %w", err)
		}
		items = append(items, &item)
	}

	if rows.Err() != nil {
		return nil, fmt.Errorf("rows error: %w", rows.Err())
	}

	return items, nil
}

// GetHistory возвращает историю статусов заказа, старые записи первыми.
func (s *PostgresOrderStorage) GetHistory(ctx context.Context, orderID int64) ([]*models.OrderHistory, error) {
	query := `
		SELECT id, order_id, previous_status, new_status, notes, created_at
		FROM order_history
		WHERE order_id = $1
		ORDER BY id ASC
	`

	rows, err := s.pool.Query(ctx, query, orderID)
	if err != nil {
		return nil, fmt.Errorf("failed to query order history: %w", err)
	}
	defer rows.Close()

	var history []*models.OrderHistory
	for rows.Next() {
		var (
			h    models.OrderHistory
			prev *string
			next string
		)
		if err := rows.Scan(&h.ID, &h.OrderID, &prev, &next, &h.Notes, &h.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan order history: %w", err)
		}
		if prev != nil {
			p := models.OrderStatus(*prev)
			h.PreviousStatus = &p
		}
		h.NewStatus = models.OrderStatus(next)
		history = append(history, &h)
	}

	if rows.Err() != nil {
		return nil, fmt.Errorf("rows error: %w", rows.Err())
	}

	return history, nil
}

// TransitionStatus атомарно меняет статус и пишет запись истории.
// Возвращает ErrOrderNotFound, если заказа нет, и ErrStatusConflict,
// если статус уже не равен p.From.
func (s *PostgresOrderStorage) TransitionStatus(ctx context.Context, p TransitionParams) (*models.Order, error) {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	order, err := s.TransitionStatusTx(ctx, tx, p)
	if err != nil {
		return nil, err
	}

	if err = tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	return order, nil
}

// TransitionStatusTx выполняет переход в рамках переданной транзакции.
func (s *PostgresOrderStorage) TransitionStatusTx(ctx context.Context, tx pgx.Tx, p TransitionParams) (*models.Order, error) {
	query := `
		UPDATE orders
		SET status = $1, tracking_code = COALESCE(NULLIF($2, ''), tracking_code), updated_at = NOW()
		WHERE id = $3 AND status = $4
		RETURNING ` + orderColumns

	order, err := scanOrder(tx.QueryRow(ctx, query, string(p.To), p.TrackingCode, p.OrderID, string(p.From)))
	if errors.Is(err, ErrOrderNotFound) {
		var exists bool
		if qErr := tx.QueryRow(ctx, `SELECT EXISTS(SELECT 1 FROM orders WHERE id = $1)`, p.OrderID).Scan(&exists); qErr != nil {
			return nil, fmt.Errorf("failed to check order existence: %w", qErr)
		}
		if exists {
			return nil, ErrStatusConflict
		}
		return nil, ErrOrderNotFound
	}
	if err != nil {
		return nil, err
	}

	var notes *string
	if p.Notes != "" {
		notes = &p.Notes
	}
	_, err = tx.Exec(ctx, `
		INSERT INTO order_history (order_id, previous_status, new_status, notes, created_at)
		VALUES ($1, $2, $3, $4, NOW())
	`, p.OrderID, string(p.From), string(p.To), notes)
	if err != nil {
		return nil, fmt.Errorf("failed to append order history: %w", err)
	}

	return order, nil
}

// SetPaymentSession сохраняет идентификатор платёжной сессии заказа.
func (s *PostgresOrderStorage) SetPaymentSession(ctx context.Context, orderID int64, sessionID string) error {
	query := `
		UPDATE orders
		SET payment_session_id = $1, updated_at = NOW()
		WHERE id = $2
	`

	result, err := s.pool.Exec(ctx, query, sessionID, orderID)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" { // unique_violation
			return ErrPaymentSessionExists
		}
		return fmt.Errorf("failed to set payment session: %w", err)
	}

	if result.RowsAffected() == 0 {
		return ErrOrderNotFound
	}

	return nil
}

func (s *PostgresOrderStorage) queryOrders(ctx context.Context, query string, args ...any) ([]*models.Order, error) {
	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query orders: %w", err)
	}
	defer rows.Close()

	var orders []*models.Order
	for rows.Next() {
		order, err := scanOrder(rows)
		if err != nil {
			return nil, err
		}
		orders = append(orders, order)
	}

	if rows.Err() != nil {
		return nil, fmt.Errorf("rows error: %w", rows.Err())
	}

	return orders, nil
}

// scanOrder помогает читать заказ из строки результата.
func scanOrder(row pgx.Row) (*models.Order, error) {
	var (
		order  models.Order
		status string
	)

	err := row.Scan(
		&order.ID,
		&order.UserID,
		&status,
		&order.Subtotal,
		&order.ShippingCost,
		&order.Tax,
		&order.Total,
		&order.PaymentSessionID,
		&order.TrackingCode,
		&order.AddressID,
		&order.Notes,
		&order.CreatedAt,
		&order.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrOrderNotFound
		}
		return nil, fmt.Errorf("failed to scan order: %w", err)
	}
	order.Status = models.OrderStatus(status)

	return &order, nil
}
