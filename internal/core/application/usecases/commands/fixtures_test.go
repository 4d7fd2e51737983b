package commands_test

import (
	"context"
	"io"
	"log/slog"
	"math"
	"testing"
	"time"

	"dispatch/internal/adapters/out/memory"
	"dispatch/internal/core/application/notifications"
	"dispatch/internal/core/application/usecases/commands"
	"dispatch/internal/core/domain/model/courier"
	"dispatch/internal/core/domain/model/kernel"
	"dispatch/internal/core/domain/model/order"
	"dispatch/internal/core/domain/model/supplynode"
	"dispatch/internal/core/domain/services"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

var fixedNow = time.Date(2026, 5, 4, 9, 30, 0, 0, time.UTC)

func fixedClock() time.Time { return fixedNow }

type MockPublisher struct{ mock.Mock }

func (m *MockPublisher) Publish(ctx context.Context, t notifications.Transition, o *order.Order) {
	m.Called(ctx, t, o)
}

func newMockPublisher() *MockPublisher {
	p := &MockPublisher{}
	p.On("Publish", mock.Anything, mock.Anything, mock.Anything).Return()
	return p
}

func (m *MockPublisher) transitions() []notifications.Transition {
	var out []notifications.Transition
	for _, call := range m.Calls {
		out = append(out, call.Arguments.Get(1).(notifications.Transition))
	}
	return out
}

// world wires every command handler over the in-memory adapters.
type world struct {
	orders    *memory.OrderRepository
	accounts  *memory.AccountDirectory
	publisher *MockPublisher

	place    commands.PlaceOrderCommandHandler
	status   commands.ChangeOrderStatusCommandHandler
	assign   commands.AssignCourierCommandHandler
	accept   commands.AcceptDeliveryCommandHandler
	pickUp   commands.PickUpOrderCommandHandler
	complete commands.CompleteDeliveryCommandHandler
	presence commands.CourierPresenceCommandHandler
}

func newWorld(t *testing.T) *world {
	t.Helper()

	orders := memory.NewOrderRepository()
	accounts := memory.NewAccountDirectory()
	publisher := newMockPublisher()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	calc, err := services.NewEarningsCalculator(decimal.NewFromInt(30), decimal.NewFromInt(5))
	require.NoError(t, err)

	assign := commands.NewAssignCourierCommandHandler(orders, accounts, accounts.SupplyNodes(), calc, logger)
	return &world{
		orders:    orders,
		accounts:  accounts,
		publisher: publisher,
		place:     commands.NewPlaceOrderCommandHandler(orders, accounts.SupplyNodes(), publisher, fixedClock),
		status:    commands.NewChangeOrderStatusCommandHandler(orders, assign, publisher, fixedClock),
		assign:    assign,
		accept:    commands.NewAcceptDeliveryCommandHandler(orders, accounts, publisher, fixedClock),
		pickUp:    commands.NewPickUpOrderCommandHandler(orders, publisher, fixedClock),
		complete:  commands.NewCompleteDeliveryCommandHandler(orders, accounts.SupplyNodes(), calc, publisher, fixedClock),
		presence:  commands.NewCourierPresenceCommandHandler(accounts),
	}
}

func mustLocation(t *testing.T, lat, lon float64) *kernel.Location {
	t.Helper()
	loc, err := kernel.NewLocationPtr(lat, lon)
	require.NoError(t, err)
	return loc
}

func (w *world) addSupplyNode(t *testing.T, loc *kernel.Location) *supplynode.SupplyNode {
	t.Helper()
	n, err := supplynode.NewSupplyNode(kernel.NewUUID(), "Pharmacy", loc)
	require.NoError(t, err)
	require.NoError(t, w.accounts.SupplyNodes().Add(t.Context(), n))
	return n
}

func (w *world) addCourier(t *testing.T, loc *kernel.Location, online bool) *courier.Courier {
	t.Helper()
	c, err := courier.RestoreCourier(kernel.NewUUID(), "Courier", online, loc)
	require.NoError(t, err)
	require.NoError(t, w.accounts.Add(t.Context(), c))
	return c
}

func (w *world) placeOrder(t *testing.T, node *supplynode.SupplyNode, delivery *kernel.Location) *order.Order {
	t.Helper()
	cmd, err := commands.NewPlaceOrderCommand(kernel.NewUUID(), []commands.CheckoutLine{
		{Name: "Paracetamol", Quantity: 1, UnitPrice: decimal.NewFromInt(10), SupplyNodeID: node.ID()},
		{Name: "Vitamin C", Quantity: 2, UnitPrice: decimal.NewFromInt(20), SupplyNodeID: node.ID()},
	}, delivery, "Flat 4, Rose Street")
	require.NoError(t, err)

	placed, err := w.place.Handle(t.Context(), cmd)
	require.NoError(t, err)
	require.Len(t, placed, 1)
	return placed[0]
}

func (w *world) markReady(t *testing.T, o *order.Order) *order.Order {
	t.Helper()
	return w.markReadyResult(t, o).Order
}

func (w *world) markReadyResult(t *testing.T, o *order.Order) commands.OrderResult {
	t.Helper()
	cmd, err := commands.NewChangeOrderStatusCommand(o.ID(), o.SupplyNodeID(), order.Ready)
	require.NoError(t, err)
	result, err := w.status.Handle(t.Context(), cmd)
	require.NoError(t, err)
	return result
}

func (w *world) acceptAs(t *testing.T, o *order.Order, courierID kernel.UUID) (commands.OrderResult, error) {
	t.Helper()
	cmd, err := commands.NewAcceptDeliveryCommand(o.ID(), courierID)
	require.NoError(t, err)
	return w.accept.Handle(t.Context(), cmd)
}

func (w *world) deliverAs(t *testing.T, o *order.Order, courierID kernel.UUID) (commands.OrderResult, error) {
	t.Helper()
	cmd, err := commands.NewCompleteDeliveryCommand(o.ID(), courierID)
	require.NoError(t, err)
	return w.complete.Handle(t.Context(), cmd)
}

// kmNorth returns a point distanceKm due north of (0, 0).
func kmNorth(t *testing.T, distanceKm float64) *kernel.Location {
	t.Helper()
	return mustLocation(t, distanceKm/(kernel.EarthRadiusKm*math.Pi/180), 0)
}
