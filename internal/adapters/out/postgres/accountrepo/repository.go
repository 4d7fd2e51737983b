package accountrepo

import (
	"context"
	"errors"

	"dispatch/internal/core/domain/model/courier"
	"dispatch/internal/core/domain/model/kernel"
	"dispatch/internal/core/domain/model/supplynode"
	"dispatch/internal/core/ports"
	"dispatch/internal/pkg/errs"

	"gorm.io/gorm"
)

const service = "postgres"

// GormAccountDirectory implements ports.CourierDirectory over the accounts table.
type GormAccountDirectory struct {
	db *gorm.DB
}

var (
	_ ports.CourierDirectory    = (*GormAccountDirectory)(nil)
	_ ports.SupplyNodeDirectory = (*GormSupplyNodeDirectory)(nil)
)

func NewGormAccountDirectory(db *gorm.DB) *GormAccountDirectory {
	return &GormAccountDirectory{db: db}
}

func (d *GormAccountDirectory) Add(ctx context.Context, c *courier.Courier) error {
	if err := c.Validate(); err != nil {
		return err
	}
	dto := courierFromDomain(c)
	return d.create(ctx, &dto, "courier")
}

func (d *GormAccountDirectory) Get(ctx context.Context, id kernel.UUID) (*courier.Courier, error) {
	dto, err := d.get(ctx, id, kernel.RoleCourier, "courier")
	if err != nil {
		return nil, err
	}
	return courierToDomain(dto)
}

// FindOnlineWithLocation returns online couriers with a known position,
// ordered by id.
func (d *GormAccountDirectory) FindOnlineWithLocation(ctx context.Context) ([]*courier.Courier, error) {
	var dtos []AccountDTO
	if err := d.db.WithContext(ctx).
		Where("role = ? AND online AND location_lat IS NOT NULL AND location_lon IS NOT NULL",
			kernel.RoleCourier.String()).
		Order("id").
		Find(&dtos).Error; err != nil {
		return nil, errs.NewExternalServiceError(service, err)
	}

	couriers := make([]*courier.Courier, 0, len(dtos))
	for _, dto := range dtos {
		c, err := courierToDomain(dto)
		if err != nil {
			return nil, err
		}
		couriers = append(couriers, c)
	}
	return couriers, nil
}

func (d *GormAccountDirectory) UpdateLocation(ctx context.Context, id kernel.UUID, location kernel.Location) error {
	if err := location.Validate(); err != nil {
		return err
	}
	return d.updateCourier(ctx, id, map[string]any{
		"location_lat": location.Lat(),
		"location_lon": location.Lon(),
	})
}

func (d *GormAccountDirectory) SetOnline(ctx context.Context, id kernel.UUID, online bool) error {
	return d.updateCourier(ctx, id, map[string]any{"online": online})
}

func (d *GormAccountDirectory) updateCourier(ctx context.Context, id kernel.UUID, columns map[string]any) error {
	if err := id.Validate(); err != nil {
		return err
	}

	result := d.db.WithContext(ctx).
		Model(&AccountDTO{}).
		Where("id = ? AND role = ?", id.Bytes(), kernel.RoleCourier.String()).
		Updates(columns)
	if result.Error != nil {
		return errs.NewExternalServiceError(service, result.Error)
	}
	if result.RowsAffected == 0 {
		return errs.NewObjectNotFoundError("courier", id.String())
	}
	return nil
}

func (d *GormAccountDirectory) create(ctx context.Context, dto *AccountDTO, entity string) error {
	if err := d.db.WithContext(ctx).Create(dto).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return errs.NewStateConflictErrorWithCause(entity, dto.ID.String(), entity+" already exists", err)
		}
		return errs.NewExternalServiceError(service, err)
	}
	return nil
}

func (d *GormAccountDirectory) get(ctx context.Context, id kernel.UUID, role kernel.Role, entity string) (AccountDTO, error) {
	if err := id.Validate(); err != nil {
		return AccountDTO{}, err
	}

	var dto AccountDTO
	err := d.db.WithContext(ctx).First(&dto, "id = ? AND role = ?", id.Bytes(), role.String()).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return AccountDTO{}, errs.NewObjectNotFoundError(entity, id.String())
	}
	if err != nil {
		return AccountDTO{}, errs.NewExternalServiceError(service, err)
	}
	return dto, nil
}

// SupplyNodes exposes the supply-node side of the directory.
func (d *GormAccountDirectory) SupplyNodes() *GormSupplyNodeDirectory {
	return &GormSupplyNodeDirectory{d: d}
}

// GormSupplyNodeDirectory implements ports.SupplyNodeDirectory.
type GormSupplyNodeDirectory struct {
	d *GormAccountDirectory
}

func (v *GormSupplyNodeDirectory) Add(ctx context.Context, n *supplynode.SupplyNode) error {
	if err := n.Validate(); err != nil {
		return err
	}
	dto := supplyNodeFromDomain(n)
	return v.d.create(ctx, &dto, "supply node")
}

func (v *GormSupplyNodeDirectory) Get(ctx context.Context, id kernel.UUID) (*supplynode.SupplyNode, error) {
	dto, err := v.d.get(ctx, id, kernel.RoleSupplyNode, "supply node")
	if err != nil {
		return nil, err
	}
	return supplyNodeToDomain(dto)
}
