package commands_test

import (
	"errors"
	"sync"
	"testing"

	"dispatch/internal/core/application/notifications"
	"dispatch/internal/core/application/usecases/commands"
	"dispatch/internal/core/domain/model/kernel"
	"dispatch/internal/core/domain/model/order"
	"dispatch/internal/pkg/errs"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAcceptDeliveryCommandHandler_SoftAssignment(t *testing.T) {
	w := newWorld(t)
	node := w.addSupplyNode(t, mustLocation(t, 0, 0))
	assigned := w.addCourier(t, mustLocation(t, 0.01, 0.01), true)
	intruder := w.addCourier(t, nil, true)
	o := w.placeOrder(t, node, nil)
	require.True(t, w.markReady(t, o).IsCourier(assigned.ID()))

	_, err := w.acceptAs(t, o, intruder.ID())

	require.ErrorIs(t, err, errs.ErrForbidden)
	assert.NotErrorIs(t, err, errs.ErrStateConflict)

	result, err := w.acceptAs(t, o, assigned.ID())

	require.NoError(t, err)
	assert.False(t, result.AlreadyDone)
	assert.Equal(t, order.OutForDelivery, result.Order.Status())
	assert.True(t, result.Order.IsCourier(assigned.ID()))

	again, err := w.acceptAs(t, o, assigned.ID())
	require.NoError(t, err)
	assert.True(t, again.AlreadyDone)
}

func TestAcceptDeliveryCommandHandler_UnknownCourier(t *testing.T) {
	w := newWorld(t)
	o := w.placeOrder(t, w.addSupplyNode(t, nil), nil)

	_, err := w.acceptAs(t, o, kernel.NewUUID())

	require.ErrorIs(t, err, errs.ErrObjectNotFound)
}

func TestAcceptDeliveryCommandHandler_PendingOrder(t *testing.T) {
	w := newWorld(t)
	c := w.addCourier(t, nil, true)
	o := w.placeOrder(t, w.addSupplyNode(t, nil), nil)

	_, err := w.acceptAs(t, o, c.ID())

	require.ErrorIs(t, err, errs.ErrStateConflict)
}

func TestAcceptDeliveryCommandHandler_ConcurrentAccept(t *testing.T) {
	w := newWorld(t)
	node := w.addSupplyNode(t, nil)
	first := w.addCourier(t, nil, true)
	second := w.addCourier(t, nil, true)

	const rounds = 20
	for range rounds {
		o := w.placeOrder(t, node, nil)
		w.markReady(t, o)

		var (
			wg      sync.WaitGroup
			results = make([]error, 2)
		)
		for i, courierID := range []kernel.UUID{first.ID(), second.ID()} {
			wg.Add(1)
			go func() {
				defer wg.Done()
				cmd, err := commands.NewAcceptDeliveryCommand(o.ID(), courierID)
				if err != nil {
					results[i] = err
					return
				}
				_, results[i] = w.accept.Handle(t.Context(), cmd)
			}()
		}
		wg.Wait()

		// The loser sees a conflict when it read the order before the winner
		// committed, and a denial when it read it afterwards.
		var wins, losses int
		for _, err := range results {
			switch {
			case err == nil:
				wins++
			case errors.Is(err, errs.ErrStateConflict), errors.Is(err, errs.ErrForbidden):
				losses++
			default:
				t.Fatalf("unexpected error: %v", err)
			}
		}
		assert.Equal(t, 1, wins)
		assert.Equal(t, 1, losses)

		stored, err := w.orders.Get(t.Context(), o.ID())
		require.NoError(t, err)
		assert.Equal(t, order.OutForDelivery, stored.Status())
		assert.True(t, stored.IsCourier(first.ID()) || stored.IsCourier(second.ID()))
	}
}

func TestAcceptDeliveryCommandHandler_AcceptedByAnotherCourier(t *testing.T) {
	w := newWorld(t)
	node := w.addSupplyNode(t, nil)
	first := w.addCourier(t, nil, true)
	second := w.addCourier(t, nil, true)
	o := w.placeOrder(t, node, nil)
	w.markReady(t, o)

	cmd, err := commands.NewAcceptDeliveryCommand(o.ID(), first.ID())
	require.NoError(t, err)
	_, err = w.accept.Handle(t.Context(), cmd)
	require.NoError(t, err)

	cmd, err = commands.NewAcceptDeliveryCommand(o.ID(), second.ID())
	require.NoError(t, err)
	_, err = w.accept.Handle(t.Context(), cmd)

	require.ErrorIs(t, err, errs.ErrForbidden)
	assert.NotErrorIs(t, err, errs.ErrStateConflict)

	stored, err := w.orders.Get(t.Context(), o.ID())
	require.NoError(t, err)
	assert.True(t, stored.IsCourier(first.ID()))
}

func TestPickUpOrderCommandHandler(t *testing.T) {
	w := newWorld(t)
	c := w.addCourier(t, nil, true)
	o := w.placeOrder(t, w.addSupplyNode(t, nil), nil)
	w.markReady(t, o)
	_, err := w.acceptAs(t, o, c.ID())
	require.NoError(t, err)

	pick := func(courierID kernel.UUID) (commands.OrderResult, error) {
		cmd, cmdErr := commands.NewPickUpOrderCommand(o.ID(), courierID)
		require.NoError(t, cmdErr)
		return w.pickUp.Handle(t.Context(), cmd)
	}

	_, err = pick(kernel.NewUUID())
	require.ErrorIs(t, err, errs.ErrForbidden)

	first, err := pick(c.ID())
	require.NoError(t, err)
	assert.False(t, first.AlreadyDone)
	assert.True(t, first.Order.PickedUp())
	assert.Equal(t, order.OutForDelivery, first.Order.Status())

	second, err := pick(c.ID())
	require.NoError(t, err)
	assert.True(t, second.AlreadyDone)
	assert.Equal(t, first.Order.Version(), second.Order.Version())

	var pickups int
	for _, tr := range w.publisher.transitions() {
		if tr == notifications.PickedUp {
			pickups++
		}
	}
	assert.Equal(t, 1, pickups)
}

func TestCompleteDeliveryCommandHandler_WriteOnce(t *testing.T) {
	w := newWorld(t)
	node := w.addSupplyNode(t, mustLocation(t, 0, 0))
	c := w.addCourier(t, nil, true)
	o := w.placeOrder(t, node, kmNorth(t, 4))
	w.markReady(t, o)
	_, err := w.acceptAs(t, o, c.ID())
	require.NoError(t, err)

	first, err := w.deliverAs(t, o, c.ID())
	require.NoError(t, err)
	require.False(t, first.AlreadyDone)

	second, err := w.deliverAs(t, o, c.ID())
	require.NoError(t, err)
	assert.True(t, second.AlreadyDone)
	assert.Equal(t, *first.Order.Settlement(), *second.Order.Settlement())
	assert.Equal(t, *first.Order.DeliveredAt(), *second.Order.DeliveredAt())

	_, err = w.deliverAs(t, o, kernel.NewUUID())
	require.ErrorIs(t, err, errs.ErrForbidden)
}

func TestCompleteDeliveryCommandHandler_WithoutPickupAndCoordinates(t *testing.T) {
	w := newWorld(t)
	c := w.addCourier(t, nil, true)
	o := w.placeOrder(t, w.addSupplyNode(t, nil), nil)
	w.markReady(t, o)
	_, err := w.acceptAs(t, o, c.ID())
	require.NoError(t, err)

	result, err := w.deliverAs(t, o, c.ID())

	require.NoError(t, err)
	assert.Equal(t, order.Delivered, result.Order.Status())
	assert.False(t, result.Order.PickedUp())
	assert.Zero(t, result.Order.Settlement().DistanceKm)
	assert.Equal(t, "30", result.Order.Settlement().TotalEarning.String())
}

func TestCompleteDeliveryCommandHandler_ReadyOrder(t *testing.T) {
	w := newWorld(t)
	node := w.addSupplyNode(t, mustLocation(t, 0, 0))
	c := w.addCourier(t, mustLocation(t, 0, 0), true)
	o := w.placeOrder(t, node, nil)
	require.True(t, w.markReady(t, o).IsCourier(c.ID()))

	_, err := w.deliverAs(t, o, c.ID())

	require.ErrorIs(t, err, errs.ErrStateConflict)
}
