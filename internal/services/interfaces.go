package services

import (
	"context"
	"time"

	"github.com/agamariel/storefront/internal/models"
	"github.com/agamariel/storefront/internal/notify"
	"github.com/agamariel/storefront/internal/payment"
	"github.com/agamariel/storefront/internal/storage"
	"github.com/google/uuid"
)

// OrderStorage определяет интерфейс для работы с заказами.
type OrderStorage interface {
	CreateWithItems(ctx context.Context, order *models.Order, items []*models.OrderItem) error
	GetByID(ctx context.Context, id int64) (*models.Order, error)
	GetByPaymentSession(ctx context.Context, sessionID string) (*models.Order, error)
	GetByUserID(ctx context.Context, userID uuid.UUID) ([]*models.Order, error)
	List(ctx context.Context) ([]*models.Order, error)
	GetPendingPayment(ctx context.Context, olderThan time.Time) ([]*models.Order, error)
	GetItems(ctx context.Context, orderID int64) ([]*models.OrderItem, error)
	GetHistory(ctx context.Context, orderID int64) ([]*models.OrderHistory, error)
	TransitionStatus(ctx context.Context, p storage.TransitionParams) (*models.Order, error)
	SetPaymentSession(ctx context.Context, orderID int64, sessionID string) error
}

// ProductStorage определяет интерфейс каталога.
type ProductStorage interface {
	GetByID(ctx context.Context, id int64) (*models.Product, error)
	GetByIDs(ctx context.Context, ids []int64) (map[int64]*models.Product, error)
	List(ctx context.Context) ([]*models.Product, error)
	ListFeatured(ctx context.Context) ([]*models.Product, error)
}

// AddressStorage определяет интерфейс адресной книги.
type AddressStorage interface {
	Create(ctx context.Context, addr *models.Address) error
	GetByID(ctx context.Context, id int64) (*models.Address, error)
	GetByUserID(ctx context.Context, userID uuid.UUID) ([]*models.Address, error)
}

// UserStorage определяет интерфейс для работы с пользователями.
type UserStorage interface {
	Create(ctx context.Context, user *models.User) error
	GetByLogin(ctx context.Context, login string) (*models.User, error)
	GetByID(ctx context.Context, id uuid.UUID) (*models.User, error)
}

// PaymentGateway создаёт и читает платёжные сессии.
type PaymentGateway interface {
	CreateCheckoutSession(ctx context.Context, in payment.CheckoutSessionInput) (*payment.Session, error)
	GetCheckoutSession(ctx context.Context, id string) (*payment.Session, error)
}

// EventVerifier проверяет подпись вебхука и разбирает событие.
type EventVerifier interface {
	VerifyEvent(payload []byte, signature string) (*payment.Event, error)
}

// Notifier отправляет уведомление клиенту. Ошибок не возвращает.
type Notifier interface {
	Dispatch(ctx context.Context, kind notify.Kind, snap notify.OrderSnapshot) bool
}
