package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/agamariel/storefront/internal/metrics"
	"github.com/agamariel/storefront/internal/payment"
	"github.com/labstack/gommon/log"
)

// ReconcileWorker периодически сверяет заказы в pending_payment с состоянием
// их платёжных сессий у провайдера. Подтверждает оплату, если вебхук потерялся.
// Заказы никогда не отменяет.
type ReconcileWorker struct {
	orders    OrderStorage
	gateway   PaymentGateway
	confirmer *PaymentConfirmer
	interval  time.Duration
	metrics   *metrics.Metrics
	logger    *log.Logger
	done      chan struct{}
}

func NewReconcileWorker(orders OrderStorage, gateway PaymentGateway, confirmer *PaymentConfirmer, interval time.Duration, m *metrics.Metrics, logger *log.Logger) *ReconcileWorker {
	if interval <= 0 {
		interval = time.Minute
	}
	if logger == nil {
		logger = log.New("reconcile")
	}
	return &ReconcileWorker{
		orders:    orders,
		gateway:   gateway,
		confirmer: confirmer,
		interval:  interval,
		metrics:   m,
		logger:    logger,
		done:      make(chan struct{}),
	}
}

// Start запускает воркер в отдельной горутине и останавливается по ctx.Done().
func (w *ReconcileWorker) Start(ctx context.Context) {
	ticker := time.NewTicker(w.interval)
	go func() {
		defer close(w.done)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				if err := w.processBatch(ctx); err != nil {
					w.logger.Errorf("reconcile worker error: %v", err)
				}
			}
		}
	}()
}

// Wait дожидается остановки воркера после отмены контекста Start.
func (w *ReconcileWorker) Wait(ctx context.Context) error {
	select {
	case <-w.done:
		return nil
	case <-ctx.Done():
		return fmt.Errorf("reconcile worker did not stop: %w", ctx.Err())
	}
}

// processBatch проверяет заказы старше одного интервала, чтобы не обгонять вебхук.
func (w *ReconcileWorker) processBatch(ctx context.Context) error {
	orders, err := w.orders.GetPendingPayment(ctx, time.Now().Add(-w.interval))
	if err != nil {
		return fmt.Errorf("get pending orders: %w", err)
	}

	if len(orders) > 0 {
		w.logger.Debugf("reconciling %d pending orders", len(orders))
	}

	for _, o := range orders {
		if o.PaymentSessionID == nil {
			continue
		}
		session, err := w.gateway.GetCheckoutSession(ctx, *o.PaymentSessionID)
		if err != nil {
			var upstream *payment.UpstreamError
			if errors.As(err, &upstream) && upstream.RateLimited() {
				w.metrics.ReconcileCheck("rate_limited")
				w.logger.Warnf("payment provider rate limited reconcile, stopping batch at order %d", o.ID)
				return nil
			}
			w.metrics.ReconcileCheck("error")
			w.logger.Warnj(log.JSON{"message": "failed to fetch checkout session", "order_id": o.ID, "session_id": *o.PaymentSessionID, "error": err.Error()})
			continue
		}

		if !session.Paid() {
			w.metrics.ReconcileCheck("unpaid")
			continue
		}

		outcome, err := w.confirmer.Confirm(ctx, o.ID, session, "reconcile")
		if err != nil {
			w.metrics.ReconcileCheck("error")
			w.logger.Errorj(log.JSON{"message": "failed to confirm reconciled payment", "order_id": o.ID, "error": err.Error()})
			continue
		}
		w.metrics.ReconcileCheck(outcome)
	}
	return nil
}
