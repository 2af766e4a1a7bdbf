package notify

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"time"

	"github.com/agamariel/storefront/internal/models"
	"github.com/shopspring/decimal"
)

//go:embed templates/*.html
var templateFS embed.FS

// Kind - вид уведомления.
type Kind string

const (
	KindConfirmation  Kind = "confirmation"
	KindStatusChanged Kind = "status-changed"
)

// ItemLine - строка заказа с названием товара.
type ItemLine struct {
	Name      string
	Quantity  int
	UnitPrice decimal.Decimal
}

// OrderSnapshot - данные заказа на момент после коммита.
type OrderSnapshot struct {
	Order         *models.Order
	Items         []ItemLine
	Address       *models.Address
	CustomerName  string
	CustomerEmail string
}

// Message - готовое к отправке письмо.
type Message struct {
	To      string
	Subject string
	HTML    string
}

// Renderer собирает письма из встроенных шаблонов.
type Renderer struct {
	storeName string
	templates *template.Template
}

func NewRenderer(storeName string) (*Renderer, error) {
	tmpl, err := template.ParseFS(templateFS, "templates/*.html")
	if err != nil {
		return nil, fmt.Errorf("parse email templates: %w", err)
	}
	return &Renderer{storeName: storeName, templates: tmpl}, nil
}

type itemView struct {
	Name      string
	Quantity  int
	UnitPrice string
}

type addressView struct {
	Street     string
	Number     string
	Complement string
	City       string
	State      string
	ZipCode    string
}

type emailView struct {
	StoreName     string
	Year          int
	CustomerName  string
	OrderID       int64
	OrderDate     string
	StatusLabel   string
	StatusMessage string
	TrackingCode  string
	Items         []itemView
	Subtotal      string
	ShippingCost  string
	FreeShipping  bool
	Tax           string
	Total         string
	Address       *addressView
}

// Render собирает письмо нужного вида.
func (r *Renderer) Render(kind Kind, snap OrderSnapshot) (Message, error) {
	if snap.Order == nil {
		return Message{}, fmt.Errorf("render %s: order is required", kind)
	}

	view := r.view(snap)

	var (
		name    string
		subject string
	)
	switch kind {
	case KindConfirmation:
		name = "confirmation.html"
		subject = fmt.Sprintf("Pedido Confirmado - %s #%d", r.storeName, snap.Order.ID)
	case KindStatusChanged:
		name = "status_changed.html"
		subject = fmt.Sprintf("Atualização do Pedido #%d - %s", snap.Order.ID, r.storeName)
	default:
		return Message{}, fmt.Errorf("unknown notification kind %q", kind)
	}

	var buf bytes.Buffer
	if err := r.templates.ExecuteTemplate(&buf, name, view); err != nil {
		return Message{}, fmt.Errorf("render %s: %w", kind, err)
	}

	return Message{To: snap.CustomerEmail, Subject: subject, HTML: buf.String()}, nil
}

func (r *Renderer) view(snap OrderSnapshot) emailView {
	o := snap.Order
	name := snap.CustomerName
	if name == "" {
		name = "Cliente"
	}
	v := emailView{
		StoreName:     r.storeName,
		Year:          time.Now().Year(),
		CustomerName:  name,
		OrderID:       o.ID,
		OrderDate:     o.CreatedAt.Format("02/01/2006"),
		StatusLabel:   StatusLabel(o.Status),
		StatusMessage: StatusMessage(o.Status),
		Subtotal:      o.Subtotal.StringFixed(2),
		ShippingCost:  o.ShippingCost.StringFixed(2),
		FreeShipping:  o.ShippingCost.IsZero(),
		Tax:           o.Tax.StringFixed(2),
		Total:         o.Total.StringFixed(2),
	}
	if o.TrackingCode != nil {
		v.TrackingCode = *o.TrackingCode
	}
	for _, it := range snap.Items {
		v.Items = append(v.Items, itemView{Name: it.Name, Quantity: it.Quantity, UnitPrice: it.UnitPrice.StringFixed(2)})
	}
	if a := snap.Address; a != nil {
		av := &addressView{
			Street:  a.Street,
			Number:  a.Number,
			City:    a.City,
			State:   a.State,
			ZipCode: a.ZipCode,
		}
		if a.Complement != nil {
			av.Complement = *a.Complement
		}
		v.Address = av
	}
	return v
}
