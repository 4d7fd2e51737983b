package http

import (
	"time"

	"dispatch/internal/core/application/usecases/commands"
	"dispatch/internal/core/application/usecases/queries"
	"dispatch/internal/core/domain/model/courier"
	"dispatch/internal/core/domain/model/kernel"
	"dispatch/internal/core/domain/model/order"

	"github.com/shopspring/decimal"
)

type CreateAccountRequest struct {
	Name string   `json:"name" validate:"required,max=255"`
	Lat  *float64 `json:"lat,omitempty" validate:"required_with=Lon,omitempty,latitude"`
	Lon  *float64 `json:"lon,omitempty" validate:"required_with=Lat,omitempty,longitude"`
}

type CreatedResponse struct {
	ID string `json:"id"`
}

type LocationRequest struct {
	Lat *float64 `json:"lat" validate:"required,latitude"`
	Lon *float64 `json:"lon" validate:"required,longitude"`
}

type OnlineRequest struct {
	Online *bool `json:"online" validate:"required"`
}

type CheckoutItemRequest struct {
	Name         string          `json:"name" validate:"required,max=255"`
	Quantity     int             `json:"quantity" validate:"required,gt=0"`
	UnitPrice    decimal.Decimal `json:"unitPrice"`
	SupplyNodeID string          `json:"supplyNodeId" validate:"required,uuid"`
}

type PlaceOrderRequest struct {
	Items   []CheckoutItemRequest `json:"items" validate:"required,min=1,dive"`
	Lat     *float64              `json:"lat,omitempty" validate:"required_with=Lon,omitempty,latitude"`
	Lon     *float64              `json:"lon,omitempty" validate:"required_with=Lat,omitempty,longitude"`
	Address string                `json:"address" validate:"max=1024"`
}

type ChangeStatusRequest struct {
	Status string `json:"status" validate:"required,oneof=ready rejected"`
}

func optionalLocation(lat, lon *float64) (*kernel.Location, error) {
	if lat == nil || lon == nil {
		return nil, nil
	}
	return kernel.NewLocationPtr(*lat, *lon)
}

func (r PlaceOrderRequest) lines() ([]commands.CheckoutLine, error) {
	lines := make([]commands.CheckoutLine, 0, len(r.Items))
	for _, it := range r.Items {
		nodeID, err := kernel.UUIDFromString(it.SupplyNodeID)
		if err != nil {
			return nil, err
		}
		lines = append(lines, commands.CheckoutLine{
			Name:         it.Name,
			Quantity:     it.Quantity,
			UnitPrice:    it.UnitPrice,
			SupplyNodeID: nodeID,
		})
	}
	return lines, nil
}

type LocationResponse struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}

func newLocationResponse(loc *kernel.Location) *LocationResponse {
	if loc == nil {
		return nil
	}
	return &LocationResponse{Lat: loc.Lat(), Lon: loc.Lon()}
}

type EarningsResponse struct {
	DistanceKm      float64         `json:"distanceKm"`
	BaseEarning     decimal.Decimal `json:"baseEarning"`
	DistanceEarning decimal.Decimal `json:"distanceEarning"`
	TotalEarning    decimal.Decimal `json:"totalEarning"`
}

func newEarningsResponse(e *order.Earnings) *EarningsResponse {
	if e == nil {
		return nil
	}
	return &EarningsResponse{
		DistanceKm:      e.DistanceKm,
		BaseEarning:     e.BaseEarning,
		DistanceEarning: e.DistanceEarning,
		TotalEarning:    e.TotalEarning,
	}
}

type ItemResponse struct {
	Name      string          `json:"name"`
	Quantity  int             `json:"quantity"`
	UnitPrice decimal.Decimal `json:"unitPrice"`
}

type OrderResponse struct {
	ID               string            `json:"id"`
	RequesterID      string            `json:"requesterId"`
	SupplyNodeID     string            `json:"supplyNodeId"`
	CourierID        *string           `json:"courierId"`
	Status           string            `json:"status"`
	Items            []ItemResponse    `json:"items"`
	TotalAmount      decimal.Decimal   `json:"totalAmount"`
	DeliveryLocation *LocationResponse `json:"deliveryLocation,omitempty"`
	DeliveryAddress  string            `json:"deliveryAddress,omitempty"`
	OrderedAt        time.Time         `json:"orderedAt"`
	ReadyAt          *time.Time        `json:"readyAt,omitempty"`
	AcceptedAt       *time.Time        `json:"acceptedAt,omitempty"`
	PickedUp         bool              `json:"pickedUp"`
	DeliveredAt      *time.Time        `json:"deliveredAt,omitempty"`
	Settlement       *EarningsResponse `json:"settlement,omitempty"`
}

func courierIDString(id *kernel.UUID) *string {
	if id == nil {
		return nil
	}
	s := id.String()
	return &s
}

func newOrderResponse(o *order.Order) OrderResponse {
	items := make([]ItemResponse, 0, len(o.Items()))
	for _, it := range o.Items() {
		items = append(items, ItemResponse{Name: it.Name(), Quantity: it.Quantity(), UnitPrice: it.UnitPrice()})
	}
	return OrderResponse{
		ID:               o.ID().String(),
		RequesterID:      o.RequesterID().String(),
		SupplyNodeID:     o.SupplyNodeID().String(),
		CourierID:        courierIDString(o.Courier()),
		Status:           o.Status().String(),
		Items:            items,
		TotalAmount:      o.TotalAmount(),
		DeliveryLocation: newLocationResponse(o.DeliveryLocation()),
		DeliveryAddress:  o.DeliveryAddress(),
		OrderedAt:        o.OrderedAt(),
		ReadyAt:          o.ReadyAt(),
		AcceptedAt:       o.AcceptedAt(),
		PickedUp:         o.PickedUp(),
		DeliveredAt:      o.DeliveredAt(),
		Settlement:       newEarningsResponse(o.Settlement()),
	}
}

func newOrderViewResponse(v queries.OrderView) OrderResponse {
	items := make([]ItemResponse, 0, len(v.Items))
	for _, it := range v.Items {
		items = append(items, ItemResponse{Name: it.Name, Quantity: it.Quantity, UnitPrice: it.UnitPrice})
	}
	return OrderResponse{
		ID:               v.ID.String(),
		RequesterID:      v.RequesterID.String(),
		SupplyNodeID:     v.SupplyNodeID.String(),
		CourierID:        courierIDString(v.CourierID),
		Status:           v.Status.String(),
		Items:            items,
		TotalAmount:      v.TotalAmount,
		DeliveryLocation: newLocationResponse(v.DeliveryLocation),
		DeliveryAddress:  v.DeliveryAddress,
		OrderedAt:        v.OrderedAt,
		ReadyAt:          v.ReadyAt,
		AcceptedAt:       v.AcceptedAt,
		PickedUp:         v.PickedUp,
		DeliveredAt:      v.DeliveredAt,
		Settlement:       newEarningsResponse(v.Settlement),
	}
}

func newOrderViewResponses(views []queries.OrderView) []OrderResponse {
	out := make([]OrderResponse, 0, len(views))
	for _, v := range views {
		out = append(out, newOrderViewResponse(v))
	}
	return out
}

// TransitionResponse wraps an order after a lifecycle command.
type TransitionResponse struct {
	Order       OrderResponse     `json:"order"`
	AlreadyDone bool              `json:"alreadyDone"`
	Preview     *EarningsResponse `json:"preview,omitempty"`
}

func newTransitionResponse(r commands.OrderResult) TransitionResponse {
	return TransitionResponse{
		Order:       newOrderResponse(r.Order),
		AlreadyDone: r.AlreadyDone,
		Preview:     newEarningsResponse(r.Preview),
	}
}

type ReadyOrderResponse struct {
	OrderResponse
	SupplyNodeName     string            `json:"supplyNodeName,omitempty"`
	SupplyNodeLocation *LocationResponse `json:"supplyNodeLocation,omitempty"`
	DeliveryDistanceKm *float64          `json:"deliveryDistanceKm"`
	ExpectedEarning    EarningsResponse  `json:"expectedEarning"`
}

type RequesterOrderResponse struct {
	OrderResponse
	EtaMinutes *int `json:"etaMinutes,omitempty"`
}

type EarningsSummaryResponse struct {
	Today          decimal.Decimal `json:"today"`
	Week           decimal.Decimal `json:"week"`
	Total          decimal.Decimal `json:"total"`
	CompletedCount int             `json:"completedCount"`
}

type AnalyticsResponse struct {
	TotalSales    decimal.Decimal `json:"totalSales"`
	PendingOrders int             `json:"pendingOrders"`
	TopSelling    string          `json:"topSelling"`
}

type CourierResponse struct {
	ID       string            `json:"id"`
	Name     string            `json:"name"`
	Online   bool              `json:"online"`
	Location *LocationResponse `json:"location,omitempty"`
}

func newCourierResponse(c *courier.Courier) CourierResponse {
	return CourierResponse{
		ID:       c.ID().String(),
		Name:     c.Name(),
		Online:   c.IsOnline(),
		Location: newLocationResponse(c.Location()),
	}
}
