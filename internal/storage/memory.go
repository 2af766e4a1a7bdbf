package storage

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/agamariel/storefront/internal/models"
	"github.com/google/uuid"
)

// MemoryStore - хранилище в памяти для запуска без базы и для тестов.
// Мьютекс играет роль блокировки строки: условный переход статуса
// выполняется целиком под ним.
type MemoryStore struct {
	mu sync.RWMutex

	nextOrderID   int64
	nextItemID    int64
	nextHistoryID int64
	nextAddressID int64
	nextProductID int64

	users     map[uuid.UUID]models.User
	products  map[int64]models.Product
	addresses map[int64]models.Address
	orders    map[int64]models.Order
	items     map[int64][]models.OrderItem
	history   map[int64][]models.OrderHistory
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		nextOrderID:   1,
		nextItemID:    1,
		nextHistoryID: 1,
		nextAddressID: 1,
		nextProductID: 1,
		users:         make(map[uuid.UUID]models.User),
		products:      make(map[int64]models.Product),
		addresses:     make(map[int64]models.Address),
		orders:        make(map[int64]models.Order),
		items:         make(map[int64][]models.OrderItem),
		history:       make(map[int64][]models.OrderHistory),
	}
}

// Orders возвращает представление хранилища для заказов.
func (m *MemoryStore) Orders() *MemoryOrders { return &MemoryOrders{m} }

// Users возвращает представление хранилища для пользователей.
func (m *MemoryStore) Users() *MemoryUsers { return &MemoryUsers{m} }

// Products возвращает представление хранилища для каталога.
func (m *MemoryStore) Products() *MemoryProducts { return &MemoryProducts{m} }

// Addresses возвращает представление хранилища для адресов.
func (m *MemoryStore) Addresses() *MemoryAddresses { return &MemoryAddresses{m} }

// AddProducts добавляет товары в каталог, присваивая идентификаторы.
func (m *MemoryStore) AddProducts(products ...*models.Product) {
	m.mu.Lock()
	defer m.mu.Unlock()
	now := time.Now()
	for _, p := range products {
		if p.ID == 0 {
			p.ID = m.nextProductID
		}
		if p.ID >= m.nextProductID {
			m.nextProductID = p.ID + 1
		}
		p.CreatedAt, p.UpdatedAt = now, now
		m.products[p.ID] = *p
	}
}

// MemoryOrders реализует хранилище заказов поверх MemoryStore.
type MemoryOrders struct{ m *MemoryStore }

func (s *MemoryOrders) CreateWithItems(ctx context.Context, order *models.Order, items []*models.OrderItem) error {
	m := s.m
	m.mu.Lock()
	defer m.mu.Unlock()

	if order.Status == "" {
		order.Status = models.OrderStatusPendingPayment
	}
	now := time.Now()
	order.ID = m.nextOrderID
	m.nextOrderID++
	order.CreatedAt, order.UpdatedAt = now, now
	m.orders[order.ID] = *order

	stored := make([]models.OrderItem, 0, len(items))
	for _, item := range items {
		item.ID = m.nextItemID
		m.nextItemID++
		item.OrderID = order.ID
		item.CreatedAt = now
		stored = append(stored, *item)
	}
	m.items[order.ID] = stored
	return nil
}

func (s *MemoryOrders) GetByID(ctx context.Context, id int64) (*models.Order, error) {
	s.m.mu.RLock()
	defer s.m.mu.RUnlock()
	o, ok := s.m.orders[id]
	if !ok {
		return nil, ErrOrderNotFound
	}
	return &o, nil
}

func (s *MemoryOrders) GetByPaymentSession(ctx context.Context, sessionID string) (*models.Order, error) {
	s.m.mu.RLock()
	defer s.m.mu.RUnlock()
	for _, o := range s.m.orders {
		if o.PaymentSessionID != nil && *o.PaymentSessionID == sessionID {
			cp := o
			return &cp, nil
		}
	}
	return nil, ErrOrderNotFound
}

func (s *MemoryOrders) GetByUserID(ctx context.Context, userID uuid.UUID) ([]*models.Order, error) {
	return s.filter(func(o models.Order) bool { return o.UserID == userID }, true), nil
}

func (s *MemoryOrders) List(ctx context.Context) ([]*models.Order, error) {
	return s.filter(func(models.Order) bool { return true }, true), nil
}

func (s *MemoryOrders) GetPendingPayment(ctx context.Context, olderThan time.Time) ([]*models.Order, error) {
	return s.filter(func(o models.Order) bool {
		return o.Status == models.OrderStatusPendingPayment && o.PaymentSessionID != nil && o.CreatedAt.Before(olderThan)
	}, false), nil
}

func (s *MemoryOrders) GetItems(ctx context.Context, orderID int64) ([]*models.OrderItem, error) {
	s.m.mu.RLock()
	defer s.m.mu.RUnlock()
	out := make([]*models.OrderItem, 0, len(s.m.items[orderID]))
	for _, it := range s.m.items[orderID] {
		cp := it
		out = append(out, &cp)
	}
	return out, nil
}

func (s *MemoryOrders) GetHistory(ctx context.Context, orderID int64) ([]*models.OrderHistory, error) {
	s.m.mu.RLock()
	defer s.m.mu.RUnlock()
	out := make([]*models.OrderHistory, 0, len(s.m.history[orderID]))
	for _, h := range s.m.history[orderID] {
		cp := h
		out = append(out, &cp)
	}
	return out, nil
}

func (s *MemoryOrders) TransitionStatus(ctx context.Context, p TransitionParams) (*models.Order, error) {
	m := s.m
	m.mu.Lock()
	defer m.mu.Unlock()

	o, ok := m.orders[p.OrderID]
	if !ok {
		return nil, ErrOrderNotFound
	}
	if o.Status != p.From {
		return nil, ErrStatusConflict
	}

	now := time.Now()
	o.Status = p.To
	o.UpdatedAt = now
	if p.TrackingCode != "" {
		code := p.TrackingCode
		o.TrackingCode = &code
	}
	m.orders[o.ID] = o

	from := p.From
	h := models.OrderHistory{
		ID:             m.nextHistoryID,
		OrderID:        o.ID,
		PreviousStatus: &from,
		NewStatus:      p.To,
		CreatedAt:      now,
	}
	m.nextHistoryID++
	if p.Notes != "" {
		notes := p.Notes
		h.Notes = &notes
	}
	m.history[o.ID] = append(m.history[o.ID], h)

	return &o, nil
}

func (s *MemoryOrders) SetPaymentSession(ctx context.Context, orderID int64, sessionID string) error {
	m := s.m
	m.mu.Lock()
	defer m.mu.Unlock()

	o, ok := m.orders[orderID]
	if !ok {
		return ErrOrderNotFound
	}
	for id, other := range m.orders {
		if id != orderID && other.PaymentSessionID != nil && *other.PaymentSessionID == sessionID {
			return ErrPaymentSessionExists
		}
	}
	sid := sessionID
	o.PaymentSessionID = &sid
	o.UpdatedAt = time.Now()
	m.orders[orderID] = o
	return nil
}

func (s *MemoryOrders) filter(keep func(models.Order) bool, newestFirst bool) []*models.Order {
	s.m.mu.RLock()
	defer s.m.mu.RUnlock()
	out := make([]*models.Order, 0)
	for _, o := range s.m.orders {
		if keep(o) {
			cp := o
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if newestFirst {
			return out[i].ID > out[j].ID
		}
		return out[i].ID < out[j].ID
	})
	return out
}

// MemoryUsers реализует хранилище пользователей поверх MemoryStore.
type MemoryUsers struct{ m *MemoryStore }

func (s *MemoryUsers) Create(ctx context.Context, user *models.User) error {
	m := s.m
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, u := range m.users {
		if u.Login == user.Login {
			return ErrLoginExists
		}
	}
	if user.ID == uuid.Nil {
		user.ID = uuid.New()
	}
	if user.Role == "" {
		user.Role = models.RoleUser
	}
	now := time.Now()
	user.CreatedAt, user.UpdatedAt = now, now
	m.users[user.ID] = *user
	return nil
}

func (s *MemoryUsers) GetByLogin(ctx context.Context, login string) (*models.User, error) {
	s.m.mu.RLock()
	defer s.m.mu.RUnlock()
	for _, u := range s.m.users {
		if u.Login == login {
			cp := u
			return &cp, nil
		}
	}
	return nil, ErrUserNotFound
}

func (s *MemoryUsers) GetByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	s.m.mu.RLock()
	defer s.m.mu.RUnlock()
	u, ok := s.m.users[id]
	if !ok {
		return nil, ErrUserNotFound
	}
	return &u, nil
}

// MemoryProducts реализует каталог поверх MemoryStore.
type MemoryProducts struct{ m *MemoryStore }

func (s *MemoryProducts) GetByID(ctx context.Context, id int64) (*models.Product, error) {
	s.m.mu.RLock()
	defer s.m.mu.RUnlock()
	p, ok := s.m.products[id]
	if !ok {
		return nil, ErrProductNotFound
	}
	return &p, nil
}

func (s *MemoryProducts) GetByIDs(ctx context.Context, ids []int64) (map[int64]*models.Product, error) {
	s.m.mu.RLock()
	defer s.m.mu.RUnlock()
	out := make(map[int64]*models.Product, len(ids))
	for _, id := range ids {
		if p, ok := s.m.products[id]; ok {
			cp := p
			out[id] = &cp
		}
	}
	return out, nil
}

func (s *MemoryProducts) List(ctx context.Context) ([]*models.Product, error) {
	return s.filter(func(models.Product) bool { return true }), nil
}

func (s *MemoryProducts) ListFeatured(ctx context.Context) ([]*models.Product, error) {
	return s.filter(func(p models.Product) bool { return p.Featured }), nil
}

func (s *MemoryProducts) filter(keep func(models.Product) bool) []*models.Product {
	s.m.mu.RLock()
	defer s.m.mu.RUnlock()
	out := make([]*models.Product, 0)
	for _, p := range s.m.products {
		if keep(p) {
			cp := p
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// MemoryAddresses реализует адресную книгу поверх MemoryStore.
type MemoryAddresses struct{ m *MemoryStore }

func (s *MemoryAddresses) Create(ctx context.Context, addr *models.Address) error {
	m := s.m
	m.mu.Lock()
	defer m.mu.Unlock()
	now := time.Now()
	if addr.IsDefault {
		for id, a := range m.addresses {
			if a.UserID == addr.UserID && a.IsDefault {
				a.IsDefault = false
				a.UpdatedAt = now
				m.addresses[id] = a
			}
		}
	}
	addr.ID = m.nextAddressID
	m.nextAddressID++
	addr.CreatedAt, addr.UpdatedAt = now, now
	m.addresses[addr.ID] = *addr
	return nil
}

func (s *MemoryAddresses) GetByID(ctx context.Context, id int64) (*models.Address, error) {
	s.m.mu.RLock()
	defer s.m.mu.RUnlock()
	a, ok := s.m.addresses[id]
	if !ok {
		return nil, ErrAddressNotFound
	}
	return &a, nil
}

func (s *MemoryAddresses) GetByUserID(ctx context.Context, userID uuid.UUID) ([]*models.Address, error) {
	s.m.mu.RLock()
	defer s.m.mu.RUnlock()
	out := make([]*models.Address, 0)
	for _, a := range s.m.addresses {
		if a.UserID == userID {
			cp := a
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].IsDefault != out[j].IsDefault {
			return out[i].IsDefault
		}
		return out[i].ID > out[j].ID
	})
	return out, nil
}
