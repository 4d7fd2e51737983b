// Package accountrepo persists courier and supply-node accounts in one
// PostgreSQL table, told apart by a role column.
package accountrepo

import (
	"time"

	"dispatch/internal/core/domain/model/courier"
	"dispatch/internal/core/domain/model/kernel"
	"dispatch/internal/core/domain/model/supplynode"

	"github.com/google/uuid"
)

// AccountDTO is the accounts table row. Online is meaningful for couriers only.
type AccountDTO struct {
	ID        uuid.UUID   `gorm:"type:uuid;primaryKey"`
	Role      string      `gorm:"type:varchar(16);not null;index"`
	Name      string      `gorm:"type:varchar(255);not null"`
	Online    bool        `gorm:"not null;default:false"`
	Location  LocationDTO `gorm:"embedded;embeddedPrefix:location_"`
	UpdatedAt time.Time
}

func (AccountDTO) TableName() string {
	return "accounts"
}

// LocationDTO holds an optional coordinate; both columns are NULL when absent.
type LocationDTO struct {
	Lat *float64 `gorm:"type:double precision"`
	Lon *float64 `gorm:"type:double precision"`
}

func locationFromDomain(loc *kernel.Location) LocationDTO {
	if loc == nil {
		return LocationDTO{}
	}
	lat, lon := loc.Lat(), loc.Lon()
	return LocationDTO{Lat: &lat, Lon: &lon}
}

func (dto LocationDTO) toDomain() (*kernel.Location, error) {
	if dto.Lat == nil || dto.Lon == nil {
		return nil, nil
	}
	return kernel.NewLocationPtr(*dto.Lat, *dto.Lon)
}

func courierFromDomain(c *courier.Courier) AccountDTO {
	return AccountDTO{
		ID:       c.ID().Bytes(),
		Role:     kernel.RoleCourier.String(),
		Name:     c.Name(),
		Online:   c.IsOnline(),
		Location: locationFromDomain(c.Location()),
	}
}

func courierToDomain(dto AccountDTO) (*courier.Courier, error) {
	id, err := kernel.UUIDFromBytes(dto.ID[:])
	if err != nil {
		return nil, err
	}
	loc, err := dto.Location.toDomain()
	if err != nil {
		return nil, err
	}
	return courier.RestoreCourier(id, dto.Name, dto.Online, loc)
}

func supplyNodeFromDomain(n *supplynode.SupplyNode) AccountDTO {
	return AccountDTO{
		ID:       n.ID().Bytes(),
		Role:     kernel.RoleSupplyNode.String(),
		Name:     n.Name(),
		Location: locationFromDomain(n.Location()),
	}
}

func supplyNodeToDomain(dto AccountDTO) (*supplynode.SupplyNode, error) {
	id, err := kernel.UUIDFromBytes(dto.ID[:])
	if err != nil {
		return nil, err
	}
	loc, err := dto.Location.toDomain()
	if err != nil {
		return nil, err
	}
	return supplynode.NewSupplyNode(id, dto.Name, loc)
}
