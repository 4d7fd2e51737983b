package notifications

import (
	"time"

	"dispatch/internal/core/domain/model/order"
	"dispatch/internal/core/ports"

	"github.com/shopspring/decimal"
)

type ItemPayload struct {
	Name         string          `json:"name"`
	Quantity     int             `json:"quantity"`
	UnitPrice    decimal.Decimal `json:"unitPrice"`
	SupplyNodeID string          `json:"supplyNodeId"`
}

type OrderCreatedPayload struct {
	OrderID      string        `json:"orderId"`
	RequesterID  string        `json:"requesterId"`
	SupplyNodeID string        `json:"supplyNodeId"`
	Status       string        `json:"status"`
	Items        []ItemPayload `json:"items"`
	CreatedAt    time.Time     `json:"createdAt"`
}

type StatusUpdatedPayload struct {
	OrderID      string  `json:"orderId"`
	Status       string  `json:"status"`
	RequesterID  string  `json:"requesterId"`
	SupplyNodeID string  `json:"supplyNodeId"`
	CourierID    *string `json:"courierId"`
}

// DeliveryPayload is shared by the accepted and picked-up topics.
type DeliveryPayload struct {
	OrderID      string `json:"orderId"`
	CourierID    string `json:"courierId"`
	RequesterID  string `json:"requesterId"`
	SupplyNodeID string `json:"supplyNodeId"`
}

type DeliveredPayload struct {
	OrderID         string          `json:"orderId"`
	RequesterID     string          `json:"requesterId"`
	CourierID       string          `json:"courierId"`
	SupplyNodeID    string          `json:"supplyNodeId"`
	DeliveredAt     time.Time       `json:"deliveredAt"`
	DistanceKm      float64         `json:"distanceKm"`
	BaseEarning     decimal.Decimal `json:"baseEarning"`
	DistanceEarning decimal.Decimal `json:"distanceEarning"`
	TotalEarning    decimal.Decimal `json:"totalEarning"`
}

// NewEvent builds the lifecycle event of transition t from the committed order.
func NewEvent(t Transition, o *order.Order) (ports.Event, bool) {
	route, ok := Route(t)
	if !ok || o == nil {
		return ports.Event{}, false
	}

	var payload any
	switch t {
	case Created:
		payload = createdPayload(o)
	case MarkedReady, Rejected:
		payload = statusPayload(o)
	case Accepted, PickedUp:
		payload = deliveryPayload(o)
	case Delivered:
		payload = deliveredPayload(o)
	}

	return ports.Event{Topic: route.Topic, Payload: payload}, true
}

func createdPayload(o *order.Order) OrderCreatedPayload {
	items := make([]ItemPayload, 0, len(o.Items()))
	for _, item := range o.Items() {
		items = append(items, ItemPayload{
			Name:         item.Name(),
			Quantity:     item.Quantity(),
			UnitPrice:    item.UnitPrice(),
			SupplyNodeID: item.SupplyNodeID().String(),
		})
	}
	return OrderCreatedPayload{
		OrderID:      o.ID().String(),
		RequesterID:  o.RequesterID().String(),
		SupplyNodeID: o.SupplyNodeID().String(),
		Status:       o.Status().String(),
		Items:        items,
		CreatedAt:    o.OrderedAt(),
	}
}

func statusPayload(o *order.Order) StatusUpdatedPayload {
	p := StatusUpdatedPayload{
		OrderID:      o.ID().String(),
		Status:       o.Status().String(),
		RequesterID:  o.RequesterID().String(),
		SupplyNodeID: o.SupplyNodeID().String(),
	}
	if c := o.Courier(); c != nil {
		id := c.String()
		p.CourierID = &id
	}
	return p
}

func deliveryPayload(o *order.Order) DeliveryPayload {
	return DeliveryPayload{
		OrderID:      o.ID().String(),
		CourierID:    courierString(o),
		RequesterID:  o.RequesterID().String(),
		SupplyNodeID: o.SupplyNodeID().String(),
	}
}

func deliveredPayload(o *order.Order) DeliveredPayload {
	p := DeliveredPayload{
		OrderID:      o.ID().String(),
		RequesterID:  o.RequesterID().String(),
		CourierID:    courierString(o),
		SupplyNodeID: o.SupplyNodeID().String(),
	}
	if at := o.DeliveredAt(); at != nil {
		p.DeliveredAt = *at
	}
	if s := o.Settlement(); s != nil {
		p.DistanceKm = s.DistanceKm
		p.BaseEarning = s.BaseEarning
		p.DistanceEarning = s.DistanceEarning
		p.TotalEarning = s.TotalEarning
	}
	return p
}

func courierString(o *order.Order) string {
	if c := o.Courier(); c != nil {
		return c.String()
	}
	return ""
}
