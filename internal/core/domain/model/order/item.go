package order

import (
	"errors"
	"strings"

	"dispatch/internal/core/domain/model/kernel"
	"dispatch/internal/pkg/errs"

	"github.com/shopspring/decimal"
)

// Item is one line of an order bundle.
type Item struct {
	name         string
	quantity     int
	unitPrice    decimal.Decimal
	supplyNodeID kernel.UUID
}

// NewItem validates and creates a line item. Quantity must be positive and the
// unit price must not be negative.
func NewItem(name string, quantity int, unitPrice decimal.Decimal, supplyNodeID kernel.UUID) (Item, error) {
	var errList []error
	name = strings.TrimSpace(name)
	if name == "" {
		errList = append(errList, errs.NewValueIsRequiredError("item name"))
	}
	if quantity <= 0 {
		errList = append(errList, errs.NewValueIsOutOfRangeError("quantity", quantity, 1, "unbounded"))
	}
	if unitPrice.IsNegative() {
		errList = append(errList, errs.NewValueIsOutOfRangeError("unit price", unitPrice, 0, "unbounded"))
	}
	if err := supplyNodeID.Validate(); err != nil {
		errList = append(errList, err)
	}
	if err := errors.Join(errList...); err != nil {
		return Item{}, err
	}

	return Item{
		name:         name,
		quantity:     quantity,
		unitPrice:    unitPrice,
		supplyNodeID: supplyNodeID,
	}, nil
}

func (i Item) Name() string {
	return i.name
}

func (i Item) Quantity() int {
	return i.quantity
}

func (i Item) UnitPrice() decimal.Decimal {
	return i.unitPrice
}

func (i Item) SupplyNodeID() kernel.UUID {
	return i.supplyNodeID
}

// Total is unit price times quantity.
func (i Item) Total() decimal.Decimal {
	return i.unitPrice.Mul(decimal.NewFromInt(int64(i.quantity)))
}
