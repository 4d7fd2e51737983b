// Package queries contains read-only operations. Queries never change state;
// they read through the repository ports and shape the result for a single
// observer role.
package queries

import (
	"time"

	"dispatch/internal/core/domain/model/kernel"
	"dispatch/internal/core/domain/model/order"

	"github.com/shopspring/decimal"
)

// Clock returns the current time. Handlers default to time.Now.
type Clock func() time.Time

func (c Clock) now() time.Time {
	if c == nil {
		return time.Now().UTC()
	}
	return c()
}

// startOfDay truncates t to midnight in t's location.
func startOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

type ItemView struct {
	Name      string
	Quantity  int
	UnitPrice decimal.Decimal
}

// OrderView is the read model shared by every order listing.
type OrderView struct {
	ID               kernel.UUID
	RequesterID      kernel.UUID
	SupplyNodeID     kernel.UUID
	CourierID        *kernel.UUID
	Status           order.Status
	Items            []ItemView
	TotalAmount      decimal.Decimal
	DeliveryLocation *kernel.Location
	DeliveryAddress  string
	OrderedAt        time.Time
	ReadyAt          *time.Time
	AcceptedAt       *time.Time
	PickedUp         bool
	DeliveredAt      *time.Time
	Settlement       *order.Earnings
}

func newOrderView(o *order.Order) OrderView {
	items := make([]ItemView, 0, len(o.Items()))
	for _, it := range o.Items() {
		items = append(items, ItemView{Name: it.Name(), Quantity: it.Quantity(), UnitPrice: it.UnitPrice()})
	}
	return OrderView{
		ID:               o.ID(),
		RequesterID:      o.RequesterID(),
		SupplyNodeID:     o.SupplyNodeID(),
		CourierID:        o.Courier(),
		Status:           o.Status(),
		Items:            items,
		TotalAmount:      o.TotalAmount(),
		DeliveryLocation: o.DeliveryLocation(),
		DeliveryAddress:  o.DeliveryAddress(),
		OrderedAt:        o.OrderedAt(),
		ReadyAt:          o.ReadyAt(),
		AcceptedAt:       o.AcceptedAt(),
		PickedUp:         o.PickedUp(),
		DeliveredAt:      o.DeliveredAt(),
		Settlement:       o.Settlement(),
	}
}

func newOrderViews(orders []*order.Order) []OrderView {
	views := make([]OrderView, 0, len(orders))
	for _, o := range orders {
		views = append(views, newOrderView(o))
	}
	return views
}
