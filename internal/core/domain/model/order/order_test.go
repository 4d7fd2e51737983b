package order_test

import (
	"testing"
	"time"

	"dispatch/internal/core/domain/model/kernel"
	"dispatch/internal/core/domain/model/order"
	"dispatch/internal/pkg/errs"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var orderedAt = time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)

func newTestOrder(t *testing.T) *order.Order {
	t.Helper()

	supplyNodeID := kernel.NewUUID()
	first, err := order.NewItem("Paracetamol", 1, decimal.NewFromInt(10), supplyNodeID)
	require.NoError(t, err)
	second, err := order.NewItem("Cough syrup", 2, decimal.NewFromInt(20), supplyNodeID)
	require.NoError(t, err)
	loc, err := kernel.NewLocationPtr(12.97, 77.59)
	require.NoError(t, err)

	o, err := order.NewOrder(kernel.NewUUID(), kernel.NewUUID(), supplyNodeID,
		[]order.Item{first, second}, loc, "221B Baker Street", orderedAt)
	require.NoError(t, err)
	return o
}

func testSettlement() order.Earnings {
	return order.Earnings{
		DistanceKm:      4,
		BaseEarning:     decimal.NewFromInt(30),
		DistanceEarning: decimal.NewFromInt(20),
		TotalEarning:    decimal.NewFromInt(50),
	}
}

func TestNewOrder(t *testing.T) {
	t.Run("creates pending order with total amount", func(t *testing.T) {
		o := newTestOrder(t)

		require.NoError(t, o.Validate())
		assert.Equal(t, order.Pending, o.Status())
		assert.Nil(t, o.Courier())
		assert.Nil(t, o.Settlement())
		assert.False(t, o.PickedUp())
		assert.True(t, decimal.NewFromInt(50).Equal(o.TotalAmount()))
		assert.Len(t, o.Items(), 2)
		assert.Equal(t, "221B Baker Street", o.DeliveryAddress())
		assert.Equal(t, int64(0), o.Version())
	})

	t.Run("delivery location is optional", func(t *testing.T) {
		supplyNodeID := kernel.NewUUID()
		item, _ := order.NewItem("Bandage", 1, decimal.NewFromInt(5), supplyNodeID)

		o, err := order.NewOrder(kernel.NewUUID(), kernel.NewUUID(), supplyNodeID,
			[]order.Item{item}, nil, "", orderedAt)

		require.NoError(t, err)
		assert.Nil(t, o.DeliveryLocation())
	})

	t.Run("rejects empty bundle", func(t *testing.T) {
		_, err := order.NewOrder(kernel.NewUUID(), kernel.NewUUID(), kernel.NewUUID(), nil, nil, "", orderedAt)

		require.ErrorIs(t, err, errs.ErrValueIsRequired)
	})

	t.Run("rejects items from another supply node", func(t *testing.T) {
		item, _ := order.NewItem("Bandage", 1, decimal.NewFromInt(5), kernel.NewUUID())

		_, err := order.NewOrder(kernel.NewUUID(), kernel.NewUUID(), kernel.NewUUID(),
			[]order.Item{item}, nil, "", orderedAt)

		require.ErrorIs(t, err, errs.ErrValueIsInvalid)
	})

	t.Run("rejects missing identifiers", func(t *testing.T) {
		supplyNodeID := kernel.NewUUID()
		item, _ := order.NewItem("Bandage", 1, decimal.NewFromInt(5), supplyNodeID)

		_, err := order.NewOrder(kernel.UUID{}, kernel.UUID{}, supplyNodeID, []order.Item{item}, nil, "", orderedAt)

		require.ErrorIs(t, err, errs.ErrValueIsRequired)
	})
}

func TestNewItem(t *testing.T) {
	_, err := order.NewItem("  ", 0, decimal.NewFromInt(-1), kernel.UUID{})

	require.Error(t, err)
	require.ErrorIs(t, err, errs.ErrValueIsRequired)
	require.ErrorIs(t, err, errs.ErrValueIsOutOfRange)
}

func TestOrder_ChangeStatus(t *testing.T) {
	at := orderedAt.Add(time.Minute)

	t.Run("pending to ready stamps readyAt", func(t *testing.T) {
		o := newTestOrder(t)

		require.NoError(t, o.ChangeStatus(order.Ready, at))

		assert.Equal(t, order.Ready, o.Status())
		require.NotNil(t, o.ReadyAt())
		assert.Equal(t, at, *o.ReadyAt())
	})

	t.Run("pending to rejected", func(t *testing.T) {
		o := newTestOrder(t)

		require.NoError(t, o.ChangeStatus(order.Rejected, at))
		assert.Equal(t, order.Rejected, o.Status())
	})

	t.Run("rejected is terminal", func(t *testing.T) {
		o := newTestOrder(t)
		require.NoError(t, o.Reject())

		require.ErrorIs(t, o.ChangeStatus(order.Ready, at), errs.ErrStateConflict)
	})

	t.Run("supply node cannot deliver directly", func(t *testing.T) {
		o := newTestOrder(t)
		require.NoError(t, o.MarkReady(at))

		require.ErrorIs(t, o.ChangeStatus(order.Delivered, at), errs.ErrStateConflict)
		require.ErrorIs(t, o.ChangeStatus(order.OutForDelivery, at), errs.ErrStateConflict)
		assert.Equal(t, order.Ready, o.Status())
	})

	t.Run("out for delivery is locked for the supply node", func(t *testing.T) {
		o := newTestOrder(t)
		require.NoError(t, o.MarkReady(at))
		require.NoError(t, o.Accept(kernel.NewUUID(), at))

		err := o.ChangeStatus(order.Rejected, at)

		require.ErrorIs(t, err, errs.ErrStateConflict)
		assert.Contains(t, err.Error(), "already picked by a courier")
	})

	t.Run("delivered order reports already delivered", func(t *testing.T) {
		o := newTestOrder(t)
		courierID := kernel.NewUUID()
		require.NoError(t, o.MarkReady(at))
		require.NoError(t, o.Accept(courierID, at))
		require.NoError(t, o.Deliver(courierID, at, testSettlement()))

		require.ErrorIs(t, o.ChangeStatus(order.Ready, at), order.ErrAlreadyDelivered)
	})
}

func TestOrder_AssignAndAccept(t *testing.T) {
	at := orderedAt.Add(time.Minute)

	t.Run("assign requires ready", func(t *testing.T) {
		o := newTestOrder(t)

		require.ErrorIs(t, o.Assign(kernel.NewUUID()), errs.ErrStateConflict)
	})

	t.Run("first assignment wins", func(t *testing.T) {
		o := newTestOrder(t)
		require.NoError(t, o.MarkReady(at))
		first := kernel.NewUUID()

		require.NoError(t, o.Assign(first))
		require.NoError(t, o.Assign(first))
		require.ErrorIs(t, o.Assign(kernel.NewUUID()), errs.ErrStateConflict)
		assert.True(t, o.IsCourier(first))
		assert.Equal(t, order.Ready, o.Status())
	})

	t.Run("mismatched courier cannot accept an assigned order", func(t *testing.T) {
		o := newTestOrder(t)
		require.NoError(t, o.MarkReady(at))
		assigned := kernel.NewUUID()
		require.NoError(t, o.Assign(assigned))

		err := o.Accept(kernel.NewUUID(), at)

		require.ErrorIs(t, err, errs.ErrForbidden)
		assert.NotErrorIs(t, err, errs.ErrStateConflict)
		assert.Equal(t, order.Ready, o.Status())

		require.NoError(t, o.Accept(assigned, at))
		assert.Equal(t, order.OutForDelivery, o.Status())
		require.NotNil(t, o.AcceptedAt())
	})

	t.Run("any courier may accept an unassigned order", func(t *testing.T) {
		o := newTestOrder(t)
		require.NoError(t, o.MarkReady(at))
		courierID := kernel.NewUUID()

		require.NoError(t, o.Accept(courierID, at))

		assert.True(t, o.IsCourier(courierID))
		assert.False(t, o.PickedUp())
	})

	t.Run("accept requires ready", func(t *testing.T) {
		o := newTestOrder(t)

		require.ErrorIs(t, o.Accept(kernel.NewUUID(), at), errs.ErrStateConflict)
	})

	t.Run("accept after acceptance by another courier conflicts", func(t *testing.T) {
		o := newTestOrder(t)
		require.NoError(t, o.MarkReady(at))
		require.NoError(t, o.Accept(kernel.NewUUID(), at))

		require.ErrorIs(t, o.Accept(kernel.NewUUID(), at), errs.ErrStateConflict)
	})
}

func TestOrder_PickUp(t *testing.T) {
	at := orderedAt.Add(time.Minute)
	o := newTestOrder(t)
	courierID := kernel.NewUUID()
	require.NoError(t, o.MarkReady(at))
	require.NoError(t, o.Accept(courierID, at))

	t.Run("other courier is forbidden", func(t *testing.T) {
		_, err := o.PickUp(kernel.NewUUID(), at)
		require.ErrorIs(t, err, errs.ErrForbidden)
	})

	t.Run("first pickup changes state", func(t *testing.T) {
		changed, err := o.PickUp(courierID, at)

		require.NoError(t, err)
		assert.True(t, changed)
		assert.True(t, o.PickedUp())
		assert.Equal(t, at, *o.PickedUpAt())
	})

	t.Run("repeated pickup is idempotent", func(t *testing.T) {
		changed, err := o.PickUp(courierID, at.Add(time.Hour))

		require.NoError(t, err)
		assert.False(t, changed)
		assert.Equal(t, at, *o.PickedUpAt())
	})
}

func TestOrder_Deliver(t *testing.T) {
	at := orderedAt.Add(time.Minute)

	t.Run("deliver without pickup settles the order", func(t *testing.T) {
		o := newTestOrder(t)
		courierID := kernel.NewUUID()
		require.NoError(t, o.MarkReady(at))
		require.NoError(t, o.Accept(courierID, at))

		require.NoError(t, o.Deliver(courierID, at, testSettlement()))

		assert.Equal(t, order.Delivered, o.Status())
		assert.Equal(t, testSettlement(), *o.Settlement())
		assert.Equal(t, at, *o.DeliveredAt())
	})

	t.Run("second delivery is a no-op", func(t *testing.T) {
		o := newTestOrder(t)
		courierID := kernel.NewUUID()
		require.NoError(t, o.MarkReady(at))
		require.NoError(t, o.Accept(courierID, at))
		require.NoError(t, o.Deliver(courierID, at, testSettlement()))

		other := testSettlement()
		other.DistanceKm = 99
		err := o.Deliver(courierID, at.Add(time.Hour), other)

		require.ErrorIs(t, err, order.ErrAlreadyDelivered)
		assert.Equal(t, testSettlement(), *o.Settlement())
		assert.Equal(t, at, *o.DeliveredAt())
	})

	t.Run("ready order cannot be delivered", func(t *testing.T) {
		o := newTestOrder(t)
		courierID := kernel.NewUUID()
		require.NoError(t, o.MarkReady(at))
		require.NoError(t, o.Assign(courierID))

		require.ErrorIs(t, o.Deliver(courierID, at, testSettlement()), errs.ErrStateConflict)
	})

	t.Run("other courier is forbidden", func(t *testing.T) {
		o := newTestOrder(t)
		require.NoError(t, o.MarkReady(at))
		require.NoError(t, o.Accept(kernel.NewUUID(), at))

		require.ErrorIs(t, o.Deliver(kernel.NewUUID(), at, testSettlement()), errs.ErrForbidden)
	})

	t.Run("inconsistent settlement is rejected", func(t *testing.T) {
		o := newTestOrder(t)
		courierID := kernel.NewUUID()
		require.NoError(t, o.MarkReady(at))
		require.NoError(t, o.Accept(courierID, at))
		bad := testSettlement()
		bad.TotalEarning = decimal.NewFromInt(1)

		require.ErrorIs(t, o.Deliver(courierID, at, bad), errs.ErrValueIsInvalid)
		assert.Equal(t, order.OutForDelivery, o.Status())
	})
}

func TestRestore(t *testing.T) {
	t.Run("snapshot round trip", func(t *testing.T) {
		o := newTestOrder(t)
		courierID := kernel.NewUUID()
		require.NoError(t, o.MarkReady(orderedAt))
		require.NoError(t, o.Accept(courierID, orderedAt))
		require.NoError(t, o.Deliver(courierID, orderedAt, testSettlement()))
		snapshot := o.Snapshot()
		snapshot.Version = 7

		restored, err := order.Restore(snapshot)

		require.NoError(t, err)
		assert.True(t, restored.IsEqual(o))
		assert.Equal(t, order.Delivered, restored.Status())
		assert.Equal(t, int64(7), restored.Version())
		assert.Equal(t, o.Settlement(), restored.Settlement())
	})

	t.Run("out for delivery requires a courier", func(t *testing.T) {
		snapshot := newTestOrder(t).Snapshot()
		snapshot.Status = order.OutForDelivery

		_, err := order.Restore(snapshot)

		require.ErrorIs(t, err, errs.ErrValueIsInvalid)
	})

	t.Run("settlement only on delivered orders", func(t *testing.T) {
		snapshot := newTestOrder(t).Snapshot()
		settlement := testSettlement()
		snapshot.Settlement = &settlement

		_, err := order.Restore(snapshot)

		require.ErrorIs(t, err, errs.ErrValueIsInvalid)
	})

	t.Run("snapshot does not alias the aggregate", func(t *testing.T) {
		o := newTestOrder(t)
		snapshot := o.Snapshot()
		snapshot.Items[0] = order.Item{}

		assert.Equal(t, "Paracetamol", o.Items()[0].Name())
	})
}

func TestOrder_Validate(t *testing.T) {
	var nilOrder *order.Order
	require.ErrorIs(t, nilOrder.Validate(), order.ErrOrderIsNotConstructed)
	require.ErrorIs(t, (&order.Order{}).Validate(), order.ErrOrderIsNotConstructed)
}
