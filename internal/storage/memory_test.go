package storage

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/agamariel/storefront/internal/models"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

func newPendingOrder(t *testing.T, orders *MemoryOrders) *models.Order {
	t.Helper()
	order := &models.Order{
		UserID:       uuid.New(),
		Subtotal:     decimal.RequireFromString("20.00"),
		ShippingCost: decimal.RequireFromString("5.00"),
		Tax:          decimal.Zero,
		Total:        decimal.RequireFromString("25.00"),
	}
	items := []*models.OrderItem{{
		ProductID: 1,
		Quantity:  2,
		UnitPrice: decimal.RequireFromString("10.00"),
		Subtotal:  decimal.RequireFromString("20.00"),
	}}
	if err := orders.CreateWithItems(context.Background(), order, items); err != nil {
		t.Fatalf("CreateWithItems() error = %v", err)
	}
	return order
}

func TestMemoryOrders_CreateWithItems(t *testing.T) {
	orders := NewMemoryStore().Orders()
	ctx := context.Background()

	order := newPendingOrder(t, orders)
	if order.ID == 0 {
		t.Fatal("order id not assigned")
	}
	if order.Status != models.OrderStatusPendingPayment {
		t.Errorf("Status = %v, want pending_payment", order.Status)
	}

	items, _ := orders.GetItems(ctx, order.ID)
	if len(items) != 1 || items[0].OrderID != order.ID {
		t.Fatalf("items = %+v", items)
	}

	history, _ := orders.GetHistory(ctx, order.ID)
	if len(history) != 0 {
		t.Errorf("creation must not write history, got %d records", len(history))
	}
}

func TestMemoryOrders_TransitionStatus(t *testing.T) {
	orders := NewMemoryStore().Orders()
	ctx := context.Background()
	order := newPendingOrder(t, orders)

	tests := []struct {
		name    string
		params  TransitionParams
		wantErr error
	}{
		{
			name:   "pending to confirmed",
			params: TransitionParams{OrderID: order.ID, From: models.OrderStatusPendingPayment, To: models.OrderStatusPaymentConfirmed, Notes: "paid"},
		},
		{
			name:    "stale from status",
			params:  TransitionParams{OrderID: order.ID, From: models.OrderStatusPendingPayment, To: models.OrderStatusPaymentConfirmed},
			wantErr: ErrStatusConflict,
		},
		{
			name:   "confirmed to shipped with tracking",
			params: TransitionParams{OrderID: order.ID, From: models.OrderStatusPaymentConfirmed, To: models.OrderStatusShipped, TrackingCode: "BR123"},
		},
		{
			name:    "missing order",
			params:  TransitionParams{OrderID: 999, From: models.OrderStatusPendingPayment, To: models.OrderStatusCancelled},
			wantErr: ErrOrderNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			updated, err := orders.TransitionStatus(ctx, tt.params)
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("TransitionStatus() error = %v, want %v", err, tt.wantErr)
			}
			if err == nil && updated.Status != tt.params.To {
				t.Errorf("Status = %v, want %v", updated.Status, tt.params.To)
			}
		})
	}

	stored, _ := orders.GetByID(ctx, order.ID)
	if stored.TrackingCode == nil || *stored.TrackingCode != "BR123" {
		t.Errorf("TrackingCode = %v, want BR123", stored.TrackingCode)
	}

	history, _ := orders.GetHistory(ctx, order.ID)
	if len(history) != 2 {
		t.Fatalf("history length = %d, want 2", len(history))
	}
	if *history[0].PreviousStatus != models.OrderStatusPendingPayment || history[0].NewStatus != models.OrderStatusPaymentConfirmed {
		t.Errorf("first record = %v -> %v", *history[0].PreviousStatus, history[0].NewStatus)
	}
	if last := history[len(history)-1]; last.NewStatus != stored.Status {
		t.Errorf("latest history status %v != order status %v", last.NewStatus, stored.Status)
	}
}

func TestMemoryOrders_ConcurrentTransitionAppliesOnce(t *testing.T) {
	orders := NewMemoryStore().Orders()
	ctx := context.Background()
	order := newPendingOrder(t, orders)

	const workers = 16
	var (
		wg        sync.WaitGroup
		mu        sync.Mutex
		succeeded int
	)
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := orders.TransitionStatus(ctx, TransitionParams{
				OrderID: order.ID,
				From:    models.OrderStatusPendingPayment,
				To:      models.OrderStatusPaymentConfirmed,
			})
			if err == nil {
				mu.Lock()
				succeeded++
				mu.Unlock()
			} else if !errors.Is(err, ErrStatusConflict) {
				t.Errorf("unexpected error: %v", err)
			}
		}()
	}
	wg.Wait()

	if succeeded != 1 {
		t.Errorf("succeeded = %d, want exactly 1", succeeded)
	}
	history, _ := orders.GetHistory(ctx, order.ID)
	if len(history) != 1 {
		t.Errorf("history length = %d, want 1", len(history))
	}
}

func TestMemoryOrders_PaymentSession(t *testing.T) {
	orders := NewMemoryStore().Orders()
	ctx := context.Background()
	first := newPendingOrder(t, orders)
	second := newPendingOrder(t, orders)

	if err := orders.SetPaymentSession(ctx, first.ID, "cs_test_1"); err != nil {
		t.Fatalf("SetPaymentSession() error = %v", err)
	}
	if err := orders.SetPaymentSession(ctx, second.ID, "cs_test_1"); !errors.Is(err, ErrPaymentSessionExists) {
		t.Errorf("duplicate session error = %v, want ErrPaymentSessionExists", err)
	}
	if err := orders.SetPaymentSession(ctx, 404, "cs_test_2"); !errors.Is(err, ErrOrderNotFound) {
		t.Errorf("missing order error = %v, want ErrOrderNotFound", err)
	}

	found, err := orders.GetByPaymentSession(ctx, "cs_test_1")
	if err != nil || found.ID != first.ID {
		t.Fatalf("GetByPaymentSession() = %v, %v", found, err)
	}

	pending, _ := orders.GetPendingPayment(ctx, time.Now().Add(time.Minute))
	if len(pending) != 1 || pending[0].ID != first.ID {
		t.Errorf("GetPendingPayment() = %d orders, want only the one with a session", len(pending))
	}
	pending, _ = orders.GetPendingPayment(ctx, time.Now().Add(-time.Hour))
	if len(pending) != 0 {
		t.Errorf("GetPendingPayment() with old cutoff = %d orders, want 0", len(pending))
	}
}

func TestMemoryOrders_ListNewestFirst(t *testing.T) {
	orders := NewMemoryStore().Orders()
	ctx := context.Background()
	a := newPendingOrder(t, orders)
	b := newPendingOrder(t, orders)

	list, _ := orders.List(ctx)
	if len(list) != 2 || list[0].ID != b.ID || list[1].ID != a.ID {
		t.Errorf("List() order mismatch")
	}

	mine, _ := orders.GetByUserID(ctx, a.UserID)
	if len(mine) != 1 || mine[0].ID != a.ID {
		t.Errorf("GetByUserID() returned foreign orders")
	}
}

func TestMemoryUsers(t *testing.T) {
	users := NewMemoryStore().Users()
	ctx := context.Background()

	user := &models.User{Login: "buyer@example.com", PasswordHash: "hash"}
	if err := users.Create(ctx, user); err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	if user.ID == uuid.Nil || user.Role != models.RoleUser {
		t.Errorf("defaults not applied: %+v", user)
	}
	if err := users.Create(ctx, &models.User{Login: "buyer@example.com"}); !errors.Is(err, ErrLoginExists) {
		t.Errorf("duplicate login error = %v, want ErrLoginExists", err)
	}
	if _, err := users.GetByLogin(ctx, "nobody"); !errors.Is(err, ErrUserNotFound) {
		t.Errorf("GetByLogin() error = %v, want ErrUserNotFound", err)
	}
	got, err := users.GetByID(ctx, user.ID)
	if err != nil || got.Login != user.Login {
		t.Errorf("GetByID() = %v, %v", got, err)
	}
}

func TestMemoryProducts(t *testing.T) {
	store := NewMemoryStore()
	store.AddProducts(DefaultCatalog()...)
	products := store.Products()
	ctx := context.Background()

	all, _ := products.List(ctx)
	if len(all) != 6 {
		t.Fatalf("List() = %d products, want 6", len(all))
	}
	featured, _ := products.ListFeatured(ctx)
	if len(featured) != 3 {
		t.Errorf("ListFeatured() = %d products, want 3", len(featured))
	}

	found, _ := products.GetByIDs(ctx, []int64{1, 3, 42})
	if len(found) != 2 || found[42] != nil {
		t.Errorf("GetByIDs() = %v", found)
	}
	if _, err := products.GetByID(ctx, 42); !errors.Is(err, ErrProductNotFound) {
		t.Errorf("GetByID() error = %v, want ErrProductNotFound", err)
	}
}

func TestMemoryAddresses_DefaultIsUnique(t *testing.T) {
	addresses := NewMemoryStore().Addresses()
	ctx := context.Background()
	userID := uuid.New()

	first := &models.Address{UserID: userID, Street: "Rua A", Number: "1", City: "Recife", State: "PE", ZipCode: "50000-000", IsDefault: true}
	second := &models.Address{UserID: userID, Street: "Rua B", Number: "2", City: "Recife", State: "PE", ZipCode: "50000-001", IsDefault: true}
	_ = addresses.Create(ctx, first)
	_ = addresses.Create(ctx, second)

	list, _ := addresses.GetByUserID(ctx, userID)
	if len(list) != 2 {
		t.Fatalf("GetByUserID() = %d, want 2", len(list))
	}
	if list[0].ID != second.ID || !list[0].IsDefault || list[1].IsDefault {
		t.Errorf("only the newest default address must keep the flag")
	}
}
