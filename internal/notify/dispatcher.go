package notify

import (
	"context"
	"time"

	"github.com/agamariel/storefront/internal/metrics"
	"github.com/labstack/gommon/log"
	"github.com/sethvargo/go-retry"
)

// Config - настройки диспетчера уведомлений.
type Config struct {
	MaxAttempts int
	BaseDelay   time.Duration

	// Timeout ограничивает всю отправку вместе с повторами.
	Timeout time.Duration
}

// Dispatcher отправляет уведомления клиентам после коммита.
// Ошибки не возвращаются: они логируются и учитываются в метриках.
type Dispatcher struct {
	renderer *Renderer
	sender   Sender
	logger   *log.Logger
	metrics  *metrics.Metrics
	cfg      Config
}

func NewDispatcher(renderer *Renderer, sender Sender, cfg Config, logger *log.Logger, m *metrics.Metrics) *Dispatcher {
	if cfg.MaxAttempts < 1 {
		cfg.MaxAttempts = 1
	}
	if cfg.BaseDelay <= 0 {
		cfg.BaseDelay = 200 * time.Millisecond
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 5 * time.Second
	}
	if logger == nil {
		logger = log.New("notify")
	}
	return &Dispatcher{
		renderer: renderer,
		sender:   sender,
		logger:   logger,
		metrics:  m,
		cfg:      cfg,
	}
}

// Dispatch рендерит и отправляет письмо. Возвращает true, если письмо ушло.
func (d *Dispatcher) Dispatch(ctx context.Context, kind Kind, snap OrderSnapshot) bool {
	if snap.Order == nil {
		return false
	}
	if snap.CustomerEmail == "" {
		d.logger.Warnj(log.JSON{"message": "notification skipped, customer has no email", "order_id": snap.Order.ID, "kind": kind})
		d.metrics.Notification(string(kind), false)
		return false
	}

	msg, err := d.renderer.Render(kind, snap)
	if err != nil {
		d.logger.Errorj(log.JSON{"message": "failed to render notification", "order_id": snap.Order.ID, "kind": kind, "error": err.Error()})
		d.metrics.Notification(string(kind), false)
		return false
	}

	ctx, cancel := context.WithTimeout(ctx, d.cfg.Timeout)
	defer cancel()

	backoff := retry.WithMaxRetries(uint64(d.cfg.MaxAttempts-1), retry.NewExponential(d.cfg.BaseDelay))
	err = retry.Do(ctx, backoff, func(ctx context.Context) error {
		if err := d.sender.Send(ctx, msg); err != nil {
			d.logger.Warnf("send %s notification for order %d: %v", kind, snap.Order.ID, err)
			return retry.RetryableError(err)
		}
		return nil
	})
	if err != nil {
		d.logger.Errorj(log.JSON{"message": "notification not delivered", "order_id": snap.Order.ID, "kind": kind, "error": err.Error()})
		d.metrics.Notification(string(kind), false)
		return false
	}

	d.logger.Infoj(log.JSON{"message": "notification sent", "order_id": snap.Order.ID, "kind": kind})
	d.metrics.Notification(string(kind), true)
	return true
}
