package order

import (
	"errors"
	"fmt"
	"time"

	"dispatch/internal/core/domain/model/kernel"
	"dispatch/internal/pkg/errs"

	"github.com/shopspring/decimal"
)

var (
	// ErrOrderIsNotConstructed is returned when an Order was not created through
	// NewOrder or Restore.
	ErrOrderIsNotConstructed = errors.New("Order must be created via NewOrder or Restore constructors")

	// ErrAlreadyDelivered signals that the order is settled and the requested
	// transition is a no-op. It is not a failure: callers report "already done".
	ErrAlreadyDelivered = errors.New("order already delivered")
)

// Order is the aggregate root of the dispatch engine. It owns the lifecycle
// rules; persistence decides which concurrent writer wins through the version.
//
// Order follows these invariants:
//   - Status only moves forward through the lifecycle graph
//   - The courier is set once; only Accept may claim a soft assignment
//   - Pickup and delivery are restricted to the order's courier
//   - Settlement is written exactly once, at delivery
type Order struct {
	id           kernel.UUID
	requesterID  kernel.UUID
	supplyNodeID kernel.UUID
	courierID    *kernel.UUID
	items        []Item
	status       Status

	deliveryLocation *kernel.Location
	deliveryAddress  string

	orderedAt   time.Time
	readyAt     *time.Time
	acceptedAt  *time.Time
	pickedUp    bool
	pickedUpAt  *time.Time
	deliveredAt *time.Time

	settlement *Earnings

	version int64

	isConstructed bool
}

// NewOrder creates a pending order for one supply node.
//
// Every item must belong to supplyNodeID. deliveryLocation is optional: a
// requester without a coordinate still gets deliveries, settled at base earning.
func NewOrder(
	id kernel.UUID,
	requesterID kernel.UUID,
	supplyNodeID kernel.UUID,
	items []Item,
	deliveryLocation *kernel.Location,
	deliveryAddress string,
	orderedAt time.Time,
) (*Order, error) {
	o := &Order{
		status:          Pending,
		deliveryAddress: deliveryAddress,
		orderedAt:       orderedAt,
		isConstructed:   true,
	}

	if err := errors.Join(
		o.setID(id),
		o.setRequesterID(requesterID),
		o.setSupplyNodeID(supplyNodeID),
		o.setItems(items),
		o.setDeliveryLocation(deliveryLocation),
	); err != nil {
		return nil, err
	}

	return o, nil
}

// Snapshot is the full persisted state of an order. Adapters use it to map
// rows to aggregates and back.
type Snapshot struct {
	ID               kernel.UUID
	RequesterID      kernel.UUID
	SupplyNodeID     kernel.UUID
	CourierID        *kernel.UUID
	Items            []Item
	Status           Status
	DeliveryLocation *kernel.Location
	DeliveryAddress  string
	OrderedAt        time.Time
	ReadyAt          *time.Time
	AcceptedAt       *time.Time
	PickedUp         bool
	PickedUpAt       *time.Time
	DeliveredAt      *time.Time
	Settlement       *Earnings
	Version          int64
}

// Restore rebuilds an order from persistence, re-checking the invariants that
// relate status to the other fields.
func Restore(s Snapshot) (*Order, error) {
	o := &Order{
		deliveryAddress: s.DeliveryAddress,
		orderedAt:       s.OrderedAt,
		readyAt:         copyTime(s.ReadyAt),
		acceptedAt:      copyTime(s.AcceptedAt),
		pickedUp:        s.PickedUp,
		pickedUpAt:      copyTime(s.PickedUpAt),
		deliveredAt:     copyTime(s.DeliveredAt),
		version:         s.Version,
		isConstructed:   true,
	}

	if err := errors.Join(
		o.setID(s.ID),
		o.setRequesterID(s.RequesterID),
		o.setSupplyNodeID(s.SupplyNodeID),
		o.setItems(s.Items),
		o.setDeliveryLocation(s.DeliveryLocation),
		s.Status.Validate(),
	); err != nil {
		return nil, err
	}
	o.status = s.Status

	if s.CourierID != nil {
		if err := s.CourierID.Validate(); err != nil {
			return nil, err
		}
		id := *s.CourierID
		o.courierID = &id
	}
	if (s.Status == OutForDelivery || s.Status == Delivered) && o.courierID == nil {
		return nil, errs.NewValueIsInvalidErrorWithCause("courier",
			fmt.Errorf("%s order must have a courier", s.Status))
	}

	if s.Settlement != nil {
		if s.Status != Delivered {
			return nil, errs.NewValueIsInvalidErrorWithCause("settlement",
				fmt.Errorf("%s order cannot be settled", s.Status))
		}
		if err := s.Settlement.Validate(); err != nil {
			return nil, err
		}
		settlement := *s.Settlement
		o.settlement = &settlement
	}

	return o, nil
}

// Snapshot exports the order state. The returned value shares nothing mutable
// with the aggregate.
func (o *Order) Snapshot() Snapshot {
	s := Snapshot{
		ID:               o.id,
		RequesterID:      o.requesterID,
		SupplyNodeID:     o.supplyNodeID,
		CourierID:        o.Courier(),
		Items:            o.Items(),
		Status:           o.status,
		DeliveryLocation: o.DeliveryLocation(),
		DeliveryAddress:  o.deliveryAddress,
		OrderedAt:        o.orderedAt,
		ReadyAt:          copyTime(o.readyAt),
		AcceptedAt:       copyTime(o.acceptedAt),
		PickedUp:         o.pickedUp,
		PickedUpAt:       copyTime(o.pickedUpAt),
		DeliveredAt:      copyTime(o.deliveredAt),
		Settlement:       o.Settlement(),
		Version:          o.version,
	}
	return s
}

// Validate ensures the Order instance was properly constructed.
func (o *Order) Validate() error {
	if o == nil || !o.isConstructed {
		return ErrOrderIsNotConstructed
	}
	return nil
}

func (o *Order) IsEqual(other *Order) bool {
	return other != nil && o.id.IsEqual(other.id)
}

func (o *Order) ID() kernel.UUID {
	return o.id
}

func (o *Order) RequesterID() kernel.UUID {
	return o.requesterID
}

func (o *Order) SupplyNodeID() kernel.UUID {
	return o.supplyNodeID
}

// Courier returns the assigned courier or nil.
func (o *Order) Courier() *kernel.UUID {
	if o.courierID == nil {
		return nil
	}
	id := *o.courierID
	return &id
}

// IsCourier reports whether courierID is the order's courier.
func (o *Order) IsCourier(courierID kernel.UUID) bool {
	return o.courierID != nil && o.courierID.IsEqual(courierID)
}

func (o *Order) Items() []Item {
	out := make([]Item, len(o.items))
	copy(out, o.items)
	return out
}

func (o *Order) Status() Status {
	return o.status
}

// DeliveryLocation returns the requester coordinate captured at placement, or nil.
func (o *Order) DeliveryLocation() *kernel.Location {
	if o.deliveryLocation == nil {
		return nil
	}
	loc := *o.deliveryLocation
	return &loc
}

func (o *Order) DeliveryAddress() string {
	return o.deliveryAddress
}

func (o *Order) OrderedAt() time.Time {
	return o.orderedAt
}

func (o *Order) ReadyAt() *time.Time {
	return copyTime(o.readyAt)
}

func (o *Order) AcceptedAt() *time.Time {
	return copyTime(o.acceptedAt)
}

func (o *Order) PickedUp() bool {
	return o.pickedUp
}

func (o *Order) PickedUpAt() *time.Time {
	return copyTime(o.pickedUpAt)
}

func (o *Order) DeliveredAt() *time.Time {
	return copyTime(o.deliveredAt)
}

// Settlement returns the frozen earnings, or nil before delivery.
func (o *Order) Settlement() *Earnings {
	if o.settlement == nil {
		return nil
	}
	s := *o.settlement
	return &s
}

// Version is the optimistic concurrency token managed by the repository.
func (o *Order) Version() int64 {
	return o.version
}

// TotalAmount is the sum of price times quantity over all items.
func (o *Order) TotalAmount() decimal.Decimal {
	total := decimal.Zero
	for _, item := range o.items {
		total = total.Add(item.Total())
	}
	return total
}

// ChangeStatus applies a supply-node status change. Only Ready and Rejected
// can be requested this way; delivery is reserved to the courier.
//
// Returns ErrAlreadyDelivered for delivered orders, and a StateConflictError once
// a courier committed to the order or when the edge does not exist.
func (o *Order) ChangeStatus(target Status, at time.Time) error {
	switch o.status {
	case Delivered:
		return ErrAlreadyDelivered
	case OutForDelivery:
		return o.conflict("order already picked by a courier")
	}

	switch target {
	case Ready:
		return o.MarkReady(at)
	case Rejected:
		return o.Reject()
	default:
		return o.conflict(fmt.Sprintf("supply node cannot move order from %s to %s", o.status, target))
	}
}

// MarkReady moves a pending order to Ready.
func (o *Order) MarkReady(at time.Time) error {
	if err := o.advance(Ready); err != nil {
		return err
	}
	o.readyAt = &at
	return nil
}

// Reject moves a pending order to Rejected.
func (o *Order) Reject() error {
	return o.advance(Rejected)
}

// Assign records a soft assignment of a Ready order. It is advisory: Accept is
// the binding commitment. The first assignment wins; re-assigning the same
// courier is a no-op.
func (o *Order) Assign(courierID kernel.UUID) error {
	if err := courierID.Validate(); err != nil {
		return err
	}
	if o.status == Delivered {
		return ErrAlreadyDelivered
	}
	if o.status != Ready {
		return o.conflict(fmt.Sprintf("%s order cannot be assigned", o.status))
	}
	if o.courierID != nil {
		if o.courierID.IsEqual(courierID) {
			return nil
		}
		return o.conflict("order already assigned")
	}

	o.courierID = &courierID
	return nil
}

// Accept is the courier's hard commitment: Ready -> OutForDelivery.
// The order must be unassigned or soft-assigned to courierID; otherwise the
// courier receives a ForbiddenError.
func (o *Order) Accept(courierID kernel.UUID, at time.Time) error {
	if err := courierID.Validate(); err != nil {
		return err
	}
	if o.status == Delivered {
		return ErrAlreadyDelivered
	}
	if o.status != Ready {
		return o.conflict("only ready orders can be accepted")
	}
	if o.courierID != nil && !o.courierID.IsEqual(courierID) {
		return errs.NewForbiddenError(courierID.String(), o.resource(), "order is assigned to another courier")
	}

	status, err := o.status.TransitionTo(OutForDelivery)
	if err != nil {
		return err
	}

	o.status = status
	o.courierID = &courierID
	o.acceptedAt = &at
	o.pickedUp = false
	o.pickedUpAt = nil
	return nil
}

// PickUp marks the bundle as collected at the supply node. It returns false
// when the order was already picked up.
func (o *Order) PickUp(courierID kernel.UUID, at time.Time) (bool, error) {
	if o.status == Delivered {
		return false, ErrAlreadyDelivered
	}
	if !o.IsCourier(courierID) {
		return false, errs.NewForbiddenError(courierID.String(), o.resource(), "order is not assigned to this courier")
	}
	if o.status != OutForDelivery {
		return false, o.conflict("order is not out for delivery")
	}
	if o.pickedUp {
		return false, nil
	}

	o.pickedUp = true
	o.pickedUpAt = &at
	return true, nil
}

// Deliver completes the order and freezes the settlement. The pickup flag is
// not required.
func (o *Order) Deliver(courierID kernel.UUID, at time.Time, settlement Earnings) error {
	if o.status == Delivered {
		return ErrAlreadyDelivered
	}
	if !o.IsCourier(courierID) {
		return errs.NewForbiddenError(courierID.String(), o.resource(), "order is not assigned to this courier")
	}
	if err := settlement.Validate(); err != nil {
		return err
	}

	status, err := o.status.TransitionTo(Delivered)
	if err != nil {
		return o.conflict("only orders out for delivery can be delivered")
	}

	o.status = status
	o.deliveredAt = &at
	o.settlement = &settlement
	return nil
}

func (o *Order) advance(target Status) error {
	if o.status == Delivered {
		return ErrAlreadyDelivered
	}
	status, err := o.status.TransitionTo(target)
	if err != nil {
		return o.conflict(fmt.Sprintf("cannot move from %s to %s", o.status, target))
	}
	o.status = status
	return nil
}

func (o *Order) conflict(reason string) error {
	return errs.NewStateConflictError("order", o.id.String(), reason)
}

func (o *Order) resource() string {
	return "order " + o.id.String()
}

func (o *Order) setID(id kernel.UUID) error {
	if err := id.Validate(); err != nil {
		return err
	}
	o.id = id
	return nil
}

func (o *Order) setRequesterID(id kernel.UUID) error {
	if err := id.Validate(); err != nil {
		return errs.NewValueIsRequiredErrorWithCause("requester", err)
	}
	o.requesterID = id
	return nil
}

func (o *Order) setSupplyNodeID(id kernel.UUID) error {
	if err := id.Validate(); err != nil {
		return errs.NewValueIsRequiredErrorWithCause("supply node", err)
	}
	o.supplyNodeID = id
	return nil
}

// setItems requires at least one item, all from the order's supply node.
// It must run after setSupplyNodeID.
func (o *Order) setItems(items []Item) error {
	if len(items) == 0 {
		return errs.NewValueIsRequiredError("items")
	}
	for i, item := range items {
		if item.name == "" {
			return errs.NewValueIsInvalidErrorWithCause("items", fmt.Errorf("item %d was not built by NewItem", i))
		}
		if !item.supplyNodeID.IsEqual(o.supplyNodeID) {
			return errs.NewValueIsInvalidErrorWithCause("items",
				fmt.Errorf("item %q belongs to another supply node", item.name))
		}
	}
	o.items = make([]Item, len(items))
	copy(o.items, items)
	return nil
}

func (o *Order) setDeliveryLocation(loc *kernel.Location) error {
	if loc == nil {
		o.deliveryLocation = nil
		return nil
	}
	if err := loc.Validate(); err != nil {
		return err
	}
	l := *loc
	o.deliveryLocation = &l
	return nil
}

func copyTime(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	v := *t
	return &v
}
