package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/agamariel/storefront/internal/models"
	"github.com/agamariel/storefront/internal/notify"
	"github.com/labstack/gommon/log"
)

// Stores - набор хранилищ, общий для сервисов.
type Stores struct {
	Orders    OrderStorage
	Products  ProductStorage
	Addresses AddressStorage
	Users     UserStorage
}

// orderNotifier собирает снимок заказа после коммита и отдаёт его диспетчеру.
type orderNotifier struct {
	stores   Stores
	notifier Notifier
	logger   *log.Logger
}

// notify никогда не влияет на результат операции: ошибки только логируются.
func (n *orderNotifier) notify(ctx context.Context, kind notify.Kind, order *models.Order) bool {
	if n.notifier == nil {
		return false
	}
	snap, err := n.snapshot(ctx, order)
	if err != nil {
		n.logger.Warnj(log.JSON{"message": "failed to build notification snapshot", "order_id": order.ID, "kind": kind, "error": err.Error()})
		return false
	}
	return n.notifier.Dispatch(ctx, kind, snap)
}

func (n *orderNotifier) snapshot(ctx context.Context, order *models.Order) (notify.OrderSnapshot, error) {
	snap := notify.OrderSnapshot{Order: order}

	items, err := n.stores.Orders.GetItems(ctx, order.ID)
	if err != nil {
		return snap, fmt.Errorf("load items: %w", err)
	}
	ids := make([]int64, 0, len(items))
	for _, it := range items {
		ids = append(ids, it.ProductID)
	}
	products, err := n.stores.Products.GetByIDs(ctx, ids)
	if err != nil {
		return snap, fmt.Errorf("load products: %w", err)
	}
	for _, it := range items {
		name := fmt.Sprintf("Produto #%d", it.ProductID)
		if p, ok := products[it.ProductID]; ok {
			name = p.Name
		}
		snap.Items = append(snap.Items, notify.ItemLine{Name: name, Quantity: it.Quantity, UnitPrice: it.UnitPrice})
	}

	if order.AddressID != nil {
		if addr, err := n.stores.Addresses.GetByID(ctx, *order.AddressID); err == nil {
			snap.Address = addr
		}
	}

	user, err := n.stores.Users.GetByID(ctx, order.UserID)
	if err != nil {
		return snap, fmt.Errorf("load customer: %w", err)
	}
	snap.CustomerName = user.Name
	snap.CustomerEmail = contactEmail(user)

	return snap, nil
}

// contactEmail - email пользователя; если он не задан, а логин похож на email, берём логин.
func contactEmail(u *models.User) string {
	if u.Email != "" {
		return u.Email
	}
	if strings.Contains(u.Login, "@") {
		return u.Login
	}
	return ""
}
