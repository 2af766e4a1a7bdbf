package payment

import (
	"strings"

	"github.com/stripe/stripe-go/v76"
)

// Типы событий провайдера, которые обрабатывает сервис.
const (
	EventCheckoutCompleted          = "checkout.session.completed"
	EventCheckoutAsyncSucceeded     = "checkout.session.async_payment_succeeded"
	EventCheckoutAsyncFailed        = "checkout.session.async_payment_failed"
	EventCheckoutExpired            = "checkout.session.expired"
	EventPaymentIntentSucceeded     = "payment_intent.succeeded"
	EventPaymentIntentPaymentFailed = "payment_intent.payment_failed"
	EventCustomerCreated            = "customer.created"
)

// Статусы оплаты сессии.
const (
	PaymentStatusPaid   = "paid"
	PaymentStatusUnpaid = "unpaid"
)

// LineItem - позиция платёжной сессии, сумма в минимальных единицах.
type LineItem struct {
	Name       string
	UnitAmount int64
	Quantity   int64
}

// CheckoutSessionInput - параметры создания платёжной сессии.
type CheckoutSessionInput struct {
	LineItems         []LineItem
	CustomerEmail     string
	ClientReferenceID string
	Metadata          CheckoutMetadata
	IdempotencyKey    string
}

// Session - платёжная сессия провайдера.
type Session struct {
	ID              string
	URL             string
	Status          string
	PaymentStatus   string
	AmountTotal     int64
	Currency        string
	PaymentIntentID string
	Metadata        map[string]string
}

// Paid сообщает, что деньги по сессии получены.
func (s *Session) Paid() bool {
	return s.PaymentStatus == PaymentStatusPaid
}

// PaymentIntent - платёж провайдера (для событий payment_intent.*).
type PaymentIntent struct {
	ID        string
	Status    string
	Metadata  map[string]string
	LastError string
}

// Event - проверенное событие вебхука.
type Event struct {
	ID            string
	Type          string
	Livemode      bool
	Session       *Session
	PaymentIntent *PaymentIntent
}

// IsCheckoutEvent сообщает, относится ли событие к платёжной сессии.
func (e *Event) IsCheckoutEvent() bool {
	return strings.HasPrefix(e.Type, "checkout.session.")
}

func sessionFromStripe(cs *stripe.CheckoutSession) *Session {
	s := &Session{
		ID:            cs.ID,
		URL:           cs.URL,
		Status:        string(cs.Status),
		PaymentStatus: string(cs.PaymentStatus),
		AmountTotal:   cs.AmountTotal,
		Currency:      string(cs.Currency),
		Metadata:      cs.Metadata,
	}
	if cs.PaymentIntent != nil {
		s.PaymentIntentID = cs.PaymentIntent.ID
	}
	if s.Metadata == nil {
		s.Metadata = map[string]string{}
	}
	return s
}

func paymentIntentFromStripe(pi *stripe.PaymentIntent) *PaymentIntent {
	out := &PaymentIntent{
		ID:       pi.ID,
		Status:   string(pi.Status),
		Metadata: pi.Metadata,
	}
	if pi.LastPaymentError != nil {
		out.LastError = pi.LastPaymentError.Msg
	}
	return out
}
