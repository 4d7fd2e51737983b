// Package orderrepo persists order aggregates in PostgreSQL through GORM.
// Rows are mapped to and from order.Snapshot; the version column backs the
// conditional writes.
package orderrepo

import (
	"time"

	"dispatch/internal/core/domain/model/kernel"
	"dispatch/internal/core/domain/model/order"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// OrderDTO is the orders table row.
type OrderDTO struct {
	ID               uuid.UUID   `gorm:"type:uuid;primaryKey"`
	RequesterID      uuid.UUID   `gorm:"type:uuid;not null;index"`
	SupplyNodeID     uuid.UUID   `gorm:"type:uuid;not null;index"`
	CourierID        *uuid.UUID  `gorm:"type:uuid;index"`
	Status           string      `gorm:"type:varchar(32);not null;index"`
	Items            []ItemDTO   `gorm:"type:jsonb;serializer:json;not null"`
	DeliveryLocation LocationDTO `gorm:"embedded;embeddedPrefix:delivery_"`
	DeliveryAddress  string      `gorm:"type:text"`
	OrderedAt        time.Time   `gorm:"not null;index"`
	ReadyAt          *time.Time
	AcceptedAt       *time.Time
	PickedUp         bool `gorm:"not null;default:false"`
	PickedUpAt       *time.Time
	DeliveredAt      *time.Time    `gorm:"index"`
	Settlement       SettlementDTO `gorm:"embedded;embeddedPrefix:settlement_"`
	Version          int64         `gorm:"not null;default:0"`
}

func (OrderDTO) TableName() string {
	return "orders"
}

// ItemDTO is one bundle line, stored inside the items JSON column.
type ItemDTO struct {
	Name         string          `json:"name"`
	Quantity     int             `json:"quantity"`
	UnitPrice    decimal.Decimal `json:"unitPrice"`
	SupplyNodeID uuid.UUID       `json:"supplyNodeId"`
}

// LocationDTO holds an optional coordinate; both columns are NULL when absent.
type LocationDTO struct {
	Lat *float64 `gorm:"type:double precision"`
	Lon *float64 `gorm:"type:double precision"`
}

// SettlementDTO holds the frozen earnings of a delivered order.
type SettlementDTO struct {
	DistanceKm      *float64            `gorm:"type:double precision"`
	BaseEarning     decimal.NullDecimal `gorm:"type:numeric(12,2)"`
	DistanceEarning decimal.NullDecimal `gorm:"type:numeric(12,2)"`
	TotalEarning    decimal.NullDecimal `gorm:"type:numeric(12,2)"`
}

func fromDomain(s order.Snapshot) OrderDTO {
	items := make([]ItemDTO, 0, len(s.Items))
	for _, it := range s.Items {
		items = append(items, ItemDTO{
			Name:         it.Name(),
			Quantity:     it.Quantity(),
			UnitPrice:    it.UnitPrice(),
			SupplyNodeID: it.SupplyNodeID().Bytes(),
		})
	}

	var courierID *uuid.UUID
	if s.CourierID != nil {
		raw := s.CourierID.Bytes()
		courierID = &raw
	}

	var location LocationDTO
	if s.DeliveryLocation != nil {
		lat, lon := s.DeliveryLocation.Lat(), s.DeliveryLocation.Lon()
		location = LocationDTO{Lat: &lat, Lon: &lon}
	}

	var settlement SettlementDTO
	if s.Settlement != nil {
		km := s.Settlement.DistanceKm
		settlement = SettlementDTO{
			DistanceKm:      &km,
			BaseEarning:     decimal.NewNullDecimal(s.Settlement.BaseEarning),
			DistanceEarning: decimal.NewNullDecimal(s.Settlement.DistanceEarning),
			TotalEarning:    decimal.NewNullDecimal(s.Settlement.TotalEarning),
		}
	}

	return OrderDTO{
		ID:               s.ID.Bytes(),
		RequesterID:      s.RequesterID.Bytes(),
		SupplyNodeID:     s.SupplyNodeID.Bytes(),
		CourierID:        courierID,
		Status:           s.Status.String(),
		Items:            items,
		DeliveryLocation: location,
		DeliveryAddress:  s.DeliveryAddress,
		OrderedAt:        s.OrderedAt,
		ReadyAt:          s.ReadyAt,
		AcceptedAt:       s.AcceptedAt,
		PickedUp:         s.PickedUp,
		PickedUpAt:       s.PickedUpAt,
		DeliveredAt:      s.DeliveredAt,
		Settlement:       settlement,
		Version:          s.Version,
	}
}

func toDomain(dto OrderDTO) (*order.Order, error) {
	id, err := kernel.UUIDFromBytes(dto.ID[:])
	if err != nil {
		return nil, err
	}
	requesterID, err := kernel.UUIDFromBytes(dto.RequesterID[:])
	if err != nil {
		return nil, err
	}
	supplyNodeID, err := kernel.UUIDFromBytes(dto.SupplyNodeID[:])
	if err != nil {
		return nil, err
	}

	var courierID *kernel.UUID
	if dto.CourierID != nil {
		cID, courierErr := kernel.UUIDFromBytes((*dto.CourierID)[:])
		if courierErr != nil {
			return nil, courierErr
		}
		courierID = &cID
	}

	status, err := order.ParseStatus(dto.Status)
	if err != nil {
		return nil, err
	}

	items := make([]order.Item, 0, len(dto.Items))
	for _, it := range dto.Items {
		nodeID, nodeErr := kernel.UUIDFromBytes(it.SupplyNodeID[:])
		if nodeErr != nil {
			return nil, nodeErr
		}
		item, itemErr := order.NewItem(it.Name, it.Quantity, it.UnitPrice, nodeID)
		if itemErr != nil {
			return nil, itemErr
		}
		items = append(items, item)
	}

	var location *kernel.Location
	if dto.DeliveryLocation.Lat != nil && dto.DeliveryLocation.Lon != nil {
		location, err = kernel.NewLocationPtr(*dto.DeliveryLocation.Lat, *dto.DeliveryLocation.Lon)
		if err != nil {
			return nil, err
		}
	}

	var settlement *order.Earnings
	if s := dto.Settlement; s.DistanceKm != nil && s.TotalEarning.Valid {
		settlement = &order.Earnings{
			DistanceKm:      *s.DistanceKm,
			BaseEarning:     s.BaseEarning.Decimal,
			DistanceEarning: s.DistanceEarning.Decimal,
			TotalEarning:    s.TotalEarning.Decimal,
		}
	}

	return order.Restore(order.Snapshot{
		ID:               id,
		RequesterID:      requesterID,
		SupplyNodeID:     supplyNodeID,
		CourierID:        courierID,
		Items:            items,
		Status:           status,
		DeliveryLocation: location,
		DeliveryAddress:  dto.DeliveryAddress,
		OrderedAt:        dto.OrderedAt,
		ReadyAt:          dto.ReadyAt,
		AcceptedAt:       dto.AcceptedAt,
		PickedUp:         dto.PickedUp,
		PickedUpAt:       dto.PickedUpAt,
		DeliveredAt:      dto.DeliveredAt,
		Settlement:       settlement,
		Version:          dto.Version,
	})
}
