package services

import (
	"context"
	"fmt"
	"sync"
	"testing"

	"github.com/agamariel/storefront/internal/models"
	"github.com/agamariel/storefront/internal/notify"
	"github.com/agamariel/storefront/internal/payment"
	"github.com/agamariel/storefront/internal/storage"
	"github.com/agamariel/storefront/internal/utils"
	"github.com/google/uuid"
	"github.com/labstack/gommon/log"
	"github.com/shopspring/decimal"
)

// fakeGateway - платёжный провайдер в памяти.
type fakeGateway struct {
	mu        sync.Mutex
	created   []payment.CheckoutSessionInput
	sessions  map[string]*payment.Session
	createErr error
	getErr    error
	gets      int
}

func newFakeGateway() *fakeGateway {
	return &fakeGateway{sessions: make(map[string]*payment.Session)}
}

func (g *fakeGateway) CreateCheckoutSession(ctx context.Context, in payment.CheckoutSessionInput) (*payment.Session, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.createErr != nil {
		return nil, g.createErr
	}
	g.created = append(g.created, in)

	var amount int64
	for _, li := range in.LineItems {
		amount += li.UnitAmount * li.Quantity
	}
	s := &payment.Session{
		ID:            fmt.Sprintf("cs_test_%d", len(g.created)),
		URL:           fmt.Sprintf("https://checkout.example.com/pay/%d", len(g.created)),
		Status:        "open",
		PaymentStatus: payment.PaymentStatusUnpaid,
		AmountTotal:   amount,
		Currency:      "brl",
		Metadata:      in.Metadata.Encode(),
	}
	g.sessions[s.ID] = s
	cp := *s
	return &cp, nil
}

func (g *fakeGateway) GetCheckoutSession(ctx context.Context, id string) (*payment.Session, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.gets++
	if g.getErr != nil {
		return nil, g.getErr
	}
	s, ok := g.sessions[id]
	if !ok {
		return nil, &payment.UpstreamError{Op: "get checkout session", StatusCode: 404, Err: fmt.Errorf("no such session %s", id)}
	}
	cp := *s
	return &cp, nil
}

// markPaid помечает сессию оплаченной и возвращает её копию.
func (g *fakeGateway) markPaid(id string) *payment.Session {
	g.mu.Lock()
	defer g.mu.Unlock()
	s := g.sessions[id]
	s.Status = "complete"
	s.PaymentStatus = payment.PaymentStatusPaid
	cp := *s
	return &cp
}

// fakeVerifier отдаёт заранее заданное событие, если подпись совпадает.
type fakeVerifier struct {
	signature string
	event     *payment.Event
}

func (v *fakeVerifier) VerifyEvent(payload []byte, signature string) (*payment.Event, error) {
	if signature != v.signature {
		return nil, payment.ErrInvalidSignature
	}
	return v.event, nil
}

// recordingNotifier запоминает отправленные уведомления.
type recordingNotifier struct {
	mu    sync.Mutex
	sent  []notify.Kind
	snaps []notify.OrderSnapshot
}

func (n *recordingNotifier) Dispatch(ctx context.Context, kind notify.Kind, snap notify.OrderSnapshot) bool {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.sent = append(n.sent, kind)
	n.snaps = append(n.snaps, snap)
	return true
}

func (n *recordingNotifier) count() int {
	n.mu.Lock()
	defer n.mu.Unlock()
	return len(n.sent)
}

// fixture - хранилище в памяти с одним покупателем, адресом и двумя товарами.
type fixture struct {
	store    *storage.MemoryStore
	stores   Stores
	customer models.Caller
	admin    models.Caller
	address  *models.Address
	gateway  *fakeGateway
	notifier *recordingNotifier
	logger   *log.Logger
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	ctx := context.Background()

	store := storage.NewMemoryStore()
	store.AddProducts(
		&models.Product{ID: 1, Name: "Fone Bluetooth", Price: decimal.RequireFromString("10.00"), Stock: 10},
		&models.Product{ID: 2, Name: "Carregador", Price: decimal.RequireFromString("25.50"), Stock: 5},
	)

	user := &models.User{ID: uuid.New(), Login: "ana@example.com", Name: "Ana", PasswordHash: "x", Role: models.RoleUser}
	if err := store.Users().Create(ctx, user); err != nil {
		t.Fatalf("create user: %v", err)
	}
	addr := &models.Address{UserID: user.ID, Street: "Rua A", Number: "10", City: "São Paulo", State: "SP", ZipCode: "01000-000", IsDefault: true}
	if err := store.Addresses().Create(ctx, addr); err != nil {
		t.Fatalf("create address: %v", err)
	}

	logger := log.New("test")
	logger.SetLevel(log.OFF)

	return &fixture{
		store: store,
		stores: Stores{
			Orders:    store.Orders(),
			Products:  store.Products(),
			Addresses: store.Addresses(),
			Users:     store.Users(),
		},
		customer: models.Caller{UserID: user.ID, Login: user.Login, Role: models.RoleUser},
		admin:    models.Caller{UserID: uuid.New(), Login: "owner@example.com", Role: models.RoleAdmin},
		address:  addr,
		gateway:  newFakeGateway(),
		notifier: &recordingNotifier{},
		logger:   logger,
	}
}

func (f *fixture) checkoutService() *CheckoutServiceImpl {
	return NewCheckoutService(f.stores, f.gateway, nil, f.logger)
}

func (f *fixture) confirmer() *PaymentConfirmer {
	return NewPaymentConfirmer(f.stores, f.notifier, nil, f.logger)
}

func (f *fixture) orderService() *OrderServiceImpl {
	return NewOrderService(f.stores, f.notifier, nil, f.logger)
}

// cart собирает корректную корзину: 2 × 10.00 и доставка 5.00.
func (f *fixture) cart() models.CheckoutRequest {
	return models.CheckoutRequest{
		Items: []models.CartItem{
			{ProductID: 1, Quantity: 2, UnitPrice: decimal.RequireFromString("10.00")},
		},
		AddressID:    f.address.ID,
		Subtotal:     decimal.RequireFromString("20.00"),
		ShippingCost: decimal.RequireFromString("5.00"),
		Tax:          decimal.Zero,
		Total:        decimal.RequireFromString("25.00"),
	}
}

// checkout оформляет корзину и возвращает ответ.
func (f *fixture) checkout(t *testing.T) *models.CheckoutResponse {
	t.Helper()
	resp, err := f.checkoutService().CreateCheckoutSession(context.Background(), f.customer, f.cart())
	if err != nil {
		t.Fatalf("CreateCheckoutSession() error = %v", err)
	}
	return resp
}

// paidEvent строит событие checkout.session.completed для оплаченной сессии.
func (f *fixture) paidEvent(eventID, sessionID string) *payment.Event {
	return &payment.Event{
		ID:      eventID,
		Type:    payment.EventCheckoutCompleted,
		Session: f.gateway.markPaid(sessionID),
	}
}

func (f *fixture) order(t *testing.T, id int64) *models.Order {
	t.Helper()
	o, err := f.store.Orders().GetByID(context.Background(), id)
	if err != nil {
		t.Fatalf("GetByID(%d) error = %v", id, err)
	}
	return o
}

func (f *fixture) history(t *testing.T, id int64) []*models.OrderHistory {
	t.Helper()
	h, err := f.store.Orders().GetHistory(context.Background(), id)
	if err != nil {
		t.Fatalf("GetHistory(%d) error = %v", id, err)
	}
	return h
}

func cents(s string) int64 {
	c, err := utils.ToMinorUnits(decimal.RequireFromString(s))
	if err != nil {
		panic(err)
	}
	return c
}
