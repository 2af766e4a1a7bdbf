package payment

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/labstack/gommon/log"
	"github.com/sethvargo/go-retry"
	"github.com/stripe/stripe-go/v76"
	"github.com/stripe/stripe-go/v76/client"
	"github.com/stripe/stripe-go/v76/webhook"
)

// Config - настройки платёжного шлюза.
type Config struct {
	SecretKey     string
	WebhookSecret string
	// APIURL переопределяет адрес API провайдера (тестовые стенды).
	APIURL      string
	Currency    string
	SuccessURL  string
	CancelURL   string
	Timeout     time.Duration
	MaxAttempts int
	BaseDelay   time.Duration
}

// StripeGateway создаёт платёжные сессии и проверяет события вебхука.
type StripeGateway struct {
	api    *client.API
	cfg    Config
	logger *log.Logger
}

// NewStripeGateway создаёт шлюз со своим клиентом API, без глобального ключа.
// Повторы выполняются шлюзом, встроенные повторы клиента выключены.
func NewStripeGateway(cfg Config, logger *log.Logger) *StripeGateway {
	if cfg.Timeout <= 0 {
		cfg.Timeout = 10 * time.Second
	}
	if cfg.MaxAttempts < 1 {
		cfg.MaxAttempts = 1
	}
	if cfg.BaseDelay <= 0 {
		cfg.BaseDelay = 200 * time.Millisecond
	}
	if cfg.Currency == "" {
		cfg.Currency = "brl"
	}
	if logger == nil {
		logger = log.New("payment")
	}

	backendCfg := &stripe.BackendConfig{
		HTTPClient:        &http.Client{Timeout: cfg.Timeout},
		LeveledLogger:     logger,
		MaxNetworkRetries: stripe.Int64(0),
	}
	if cfg.APIURL != "" {
		backendCfg.URL = stripe.String(cfg.APIURL)
	}
	backend := stripe.GetBackendWithConfig(stripe.APIBackend, backendCfg)

	api := &client.API{}
	api.Init(cfg.SecretKey, &stripe.Backends{
		API:     backend,
		Connect: backend,
		Uploads: backend,
	})

	return &StripeGateway{api: api, cfg: cfg, logger: logger}
}

// CreateCheckoutSession создаёт платёжную сессию для заказа.
func (g *StripeGateway) CreateCheckoutSession(ctx context.Context, in CheckoutSessionInput) (*Session, error) {
	var session *Session
	err := g.withRetry(ctx, "create checkout session", func(ctx context.Context) error {
		params := g.checkoutParams(in)
		params.Context = ctx
		cs, err := g.api.CheckoutSessions.New(params)
		if err != nil {
			return err
		}
		session = sessionFromStripe(cs)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return session, nil
}

// GetCheckoutSession получает актуальное состояние платёжной сессии.
func (g *StripeGateway) GetCheckoutSession(ctx context.Context, id string) (*Session, error) {
	var session *Session
	err := g.withRetry(ctx, "get checkout session", func(ctx context.Context) error {
		params := &stripe.CheckoutSessionParams{}
		params.Context = ctx
		cs, err := g.api.CheckoutSessions.Get(id, params)
		if err != nil {
			return err
		}
		session = sessionFromStripe(cs)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return session, nil
}

// VerifyEvent проверяет подпись по сырому телу запроса и разбирает событие.
func (g *StripeGateway) VerifyEvent(payload []byte, signature string) (*Event, error) {
	if g.cfg.WebhookSecret == "" || signature == "" {
		return nil, ErrInvalidSignature
	}

	ev, err := webhook.ConstructEventWithOptions(payload, signature, g.cfg.WebhookSecret, webhook.ConstructEventOptions{
		IgnoreAPIVersionMismatch: true,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidSignature, err)
	}

	out := &Event{
		ID:       ev.ID,
		Type:     string(ev.Type),
		Livemode: ev.Livemode,
	}
	if ev.Data == nil || len(ev.Data.Raw) == 0 {
		return out, nil
	}

	switch {
	case out.IsCheckoutEvent():
		var cs stripe.CheckoutSession
		if err := json.Unmarshal(ev.Data.Raw, &cs); err != nil {
			return nil, fmt.Errorf("decode checkout session: %w", err)
		}
		out.Session = sessionFromStripe(&cs)
	case out.Type == EventPaymentIntentSucceeded || out.Type == EventPaymentIntentPaymentFailed:
		var pi stripe.PaymentIntent
		if err := json.Unmarshal(ev.Data.Raw, &pi); err != nil {
			return nil, fmt.Errorf("decode payment intent: %w", err)
		}
		out.PaymentIntent = paymentIntentFromStripe(&pi)
	}

	return out, nil
}

func (g *StripeGateway) checkoutParams(in CheckoutSessionInput) *stripe.CheckoutSessionParams {
	params := &stripe.CheckoutSessionParams{
		Mode:               stripe.String(string(stripe.CheckoutSessionModePayment)),
		PaymentMethodTypes: stripe.StringSlice([]string{"card"}),
		SuccessURL:         stripe.String(g.cfg.SuccessURL),
		CancelURL:          stripe.String(g.cfg.CancelURL),
	}
	if in.CustomerEmail != "" {
		params.CustomerEmail = stripe.String(in.CustomerEmail)
	}
	if in.ClientReferenceID != "" {
		params.ClientReferenceID = stripe.String(in.ClientReferenceID)
	}
	for _, li := range in.LineItems {
		params.LineItems = append(params.LineItems, &stripe.CheckoutSessionLineItemParams{
			PriceData: &stripe.CheckoutSessionLineItemPriceDataParams{
				Currency: stripe.String(g.cfg.Currency),
				ProductData: &stripe.CheckoutSessionLineItemPriceDataProductDataParams{
					Name: stripe.String(li.Name),
				},
				UnitAmount: stripe.Int64(li.UnitAmount),
			},
			Quantity: stripe.Int64(li.Quantity),
		})
	}
	for k, v := range in.Metadata.Encode() {
		params.AddMetadata(k, v)
	}
	if in.IdempotencyKey != "" {
		params.SetIdempotencyKey(in.IdempotencyKey)
	}
	return params
}

// withRetry повторяет вызов с экспоненциальной паузой на сетевых ошибках,
// 429 и 5xx. Итоговая ошибка всегда *UpstreamError.
func (g *StripeGateway) withRetry(ctx context.Context, op string, fn func(ctx context.Context) error) error {
	backoff := retry.WithMaxRetries(uint64(g.cfg.MaxAttempts-1), retry.NewExponential(g.cfg.BaseDelay))

	var lastErr *UpstreamError
	err := retry.Do(ctx, backoff, func(ctx context.Context) error {
		err := fn(ctx)
		if err == nil {
			return nil
		}
		lastErr = classify(op, err)
		if lastErr.Retryable {
			g.logger.Warnf("payment provider %s failed, retrying: %v", op, err)
			return retry.RetryableError(lastErr)
		}
		return lastErr
	})
	if err == nil {
		return nil
	}
	if lastErr != nil {
		return lastErr
	}
	return &UpstreamError{Op: op, Retryable: true, Err: err}
}

func classify(op string, err error) *UpstreamError {
	var stripeErr *stripe.Error
	if errors.As(err, &stripeErr) {
		return &UpstreamError{
			Op:         op,
			StatusCode: stripeErr.HTTPStatusCode,
			Retryable:  retryableStatus(stripeErr.HTTPStatusCode),
			Err:        err,
		}
	}
	return &UpstreamError{Op: op, Retryable: true, Err: err}
}
