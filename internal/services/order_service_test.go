package services

import (
	"context"
	"errors"
	"testing"

	"github.com/agamariel/storefront/internal/models"
	"github.com/agamariel/storefront/internal/notify"
	"github.com/agamariel/storefront/internal/storage"
	"github.com/google/uuid"
)

func TestOrderService_TransitionStatus(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name       string
		prepare    []models.OrderStatus
		asCustomer bool
		missing    bool
		target     models.OrderStatus
		wantErr    error
		wantStatus models.OrderStatus
	}{
		{
			name:       "pending to cancelled",
			target:     models.OrderStatusCancelled,
			wantStatus: models.OrderStatusCancelled,
		},
		{
			name:       "confirmed to shipped skips processing",
			prepare:    []models.OrderStatus{models.OrderStatusPaymentConfirmed},
			target:     models.OrderStatusShipped,
			wantStatus: models.OrderStatusShipped,
		},
		{
			name:    "backwards move is rejected",
			prepare: []models.OrderStatus{models.OrderStatusPaymentConfirmed, models.OrderStatusProcessing},
			target:  models.OrderStatusPaymentConfirmed,
			wantErr: ErrValidation,
		},
		{
			name:    "same status is rejected",
			target:  models.OrderStatusPendingPayment,
			wantErr: ErrValidation,
		},
		{
			name:    "terminal status is final",
			prepare: []models.OrderStatus{models.OrderStatusCancelled},
			target:  models.OrderStatusProcessing,
			wantErr: ErrValidation,
		},
		{
			name:    "unknown status",
			target:  models.OrderStatus("lost"),
			wantErr: ErrValidation,
		},
		{
			name:       "customer cannot transition",
			asCustomer: true,
			target:     models.OrderStatusCancelled,
			wantErr:    ErrAuthorization,
		},
		{
			name:    "missing order",
			missing: true,
			target:  models.OrderStatusProcessing,
			wantErr: ErrNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t)
			svc := f.orderService()
			orderID := f.checkout(t).OrderID

			for _, st := range tt.prepare {
				if _, err := svc.TransitionStatus(ctx, f.admin, orderID, models.TransitionRequest{Status: st}); err != nil {
					t.Fatalf("prepare %s: %v", st, err)
				}
			}
			before := len(f.history(t, orderID))
			notified := f.notifier.count()

			caller := f.admin
			if tt.asCustomer {
				caller = f.customer
			}
			id := orderID
			if tt.missing {
				id = 9999
			}

			got, err := svc.TransitionStatus(ctx, caller, id, models.TransitionRequest{Status: tt.target, Notes: "ok", TrackingCode: "BR123"})
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("TransitionStatus() error = %v, want %v", err, tt.wantErr)
				}
				if n := len(f.history(t, orderID)); n != before {
					t.Errorf("history grew from %d to %d on failed transition", before, n)
				}
				if f.notifier.count() != notified {
					t.Error("notification sent on failed transition")
				}
				return
			}
			if err != nil {
				t.Fatalf("TransitionStatus() error = %v", err)
			}
			if got.Status != tt.wantStatus {
				t.Errorf("status = %v, want %v", got.Status, tt.wantStatus)
			}
			if got.TrackingCode == nil || *got.TrackingCode != "BR123" {
				t.Errorf("tracking code = %v, want BR123", got.TrackingCode)
			}

			history := f.history(t, orderID)
			if len(history) != before+1 {
				t.Fatalf("history len = %d, want %d", len(history), before+1)
			}
			last := history[len(history)-1]
			if last.NewStatus != tt.wantStatus || last.Notes == nil || *last.Notes != "ok" {
				t.Errorf("last history = %+v", last)
			}
			if f.order(t, orderID).Status != last.NewStatus {
				t.Error("order status differs from latest history entry")
			}
			if f.notifier.count() != notified+1 || f.notifier.sent[len(f.notifier.sent)-1] != notify.KindStatusChanged {
				t.Errorf("notifications = %v, want one status-changed", f.notifier.sent)
			}
		})
	}
}

func TestOrderService_TransitionStatusConflict(t *testing.T) {
	ctx := context.Background()
	order := &models.Order{ID: 7, UserID: uuid.New(), Status: models.OrderStatusPaymentConfirmed}

	mock := &storage.MockOrderStorage{
		GetByIDFunc: func(ctx context.Context, id int64) (*models.Order, error) {
			return order, nil
		},
		TransitionStatusFunc: func(ctx context.Context, p storage.TransitionParams) (*models.Order, error) {
			if p.From != models.OrderStatusPaymentConfirmed {
				t.Errorf("transition from = %v, want observed status", p.From)
			}
			return nil, storage.ErrStatusConflict
		},
	}
	notifier := &recordingNotifier{}
	svc := NewOrderService(Stores{Orders: mock}, notifier, nil, nil)

	_, err := svc.TransitionStatus(ctx, models.Caller{Role: models.RoleAdmin}, 7, models.TransitionRequest{Status: models.OrderStatusProcessing})
	if !errors.Is(err, ErrStatusChanged) || !errors.Is(err, ErrConflict) {
		t.Fatalf("TransitionStatus() error = %v, want ErrStatusChanged", err)
	}
	if notifier.count() != 0 {
		t.Error("notification sent on conflict")
	}
}

func TestOrderService_GetUserOrders(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	first := f.checkout(t).OrderID
	second := f.checkout(t).OrderID

	orders, err := f.orderService().GetUserOrders(ctx, f.customer)
	if err != nil {
		t.Fatalf("GetUserOrders() error = %v", err)
	}
	if len(orders) != 2 {
		t.Fatalf("len = %d, want 2", len(orders))
	}
	if orders[0].ID != second || orders[1].ID != first {
		t.Errorf("orders not newest first: %d, %d", orders[0].ID, orders[1].ID)
	}
	if orders[0].Total != "25.00" || orders[0].Status != string(models.OrderStatusPendingPayment) {
		t.Errorf("order = %+v", orders[0])
	}
}

func TestOrderService_GetUserOrdersEmpty(t *testing.T) {
	f := newFixture(t)

	orders, err := f.orderService().GetUserOrders(context.Background(), models.Caller{UserID: uuid.New()})
	if err != nil {
		t.Fatalf("GetUserOrders() error = %v", err)
	}
	if orders == nil || len(orders) != 0 {
		t.Errorf("expected empty non-nil slice, got %v", orders)
	}
}

func TestOrderService_GetOrderDetails(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	svc := f.orderService()
	orderID := f.checkout(t).OrderID

	if _, err := svc.TransitionStatus(ctx, f.admin, orderID, models.TransitionRequest{Status: models.OrderStatusCancelled}); err != nil {
		t.Fatalf("TransitionStatus() error = %v", err)
	}

	tests := []struct {
		name    string
		caller  models.Caller
		wantErr error
	}{
		{name: "owner", caller: f.customer},
		{name: "admin", caller: f.admin},
		{name: "stranger sees not found", caller: models.Caller{UserID: uuid.New(), Role: models.RoleUser}, wantErr: ErrOrderNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			details, err := svc.GetOrderDetails(ctx, tt.caller, orderID)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("GetOrderDetails() error = %v, want %v", err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("GetOrderDetails() error = %v", err)
			}
			if len(details.Items) != 1 || details.Items[0].Subtotal != "20.00" {
				t.Errorf("items = %+v", details.Items)
			}
			if len(details.History) != 1 || details.History[0].NewStatus != string(models.OrderStatusCancelled) {
				t.Errorf("history = %+v", details.History)
			}
		})
	}
}

func TestOrderService_ListAllOrders(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	f.checkout(t)

	if _, err := f.orderService().ListAllOrders(ctx, f.customer); !errors.Is(err, ErrAdminRequired) {
		t.Errorf("ListAllOrders() as customer error = %v, want ErrAdminRequired", err)
	}

	orders, err := f.orderService().ListAllOrders(ctx, f.admin)
	if err != nil {
		t.Fatalf("ListAllOrders() error = %v", err)
	}
	if len(orders) != 1 {
		t.Errorf("len = %d, want 1", len(orders))
	}
}
