package queries_test

import (
	"math"
	"testing"
	"time"

	"dispatch/internal/adapters/out/memory"
	"dispatch/internal/core/domain/model/courier"
	"dispatch/internal/core/domain/model/kernel"
	"dispatch/internal/core/domain/model/order"
	"dispatch/internal/core/domain/model/supplynode"
	"dispatch/internal/core/domain/services"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

var now = time.Date(2025, 3, 14, 15, 0, 0, 0, time.UTC)

func fixedClock() time.Time { return now }

type store struct {
	orders   *memory.OrderRepository
	accounts *memory.AccountDirectory
	earnings services.EarningsCalculator
	eta      services.ETAEstimator
}

func newStore(t *testing.T) *store {
	t.Helper()
	earnings, err := services.NewEarningsCalculator(decimal.NewFromInt(30), decimal.NewFromInt(5))
	require.NoError(t, err)
	eta, err := services.NewETAEstimator(services.DefaultAverageSpeedKmph)
	require.NoError(t, err)
	return &store{
		orders:   memory.NewOrderRepository(),
		accounts: memory.NewAccountDirectory(),
		earnings: earnings,
		eta:      eta,
	}
}

func kmNorth(t *testing.T, km float64) *kernel.Location {
	t.Helper()
	loc, err := kernel.NewLocationPtr(km/(kernel.EarthRadiusKm*math.Pi/180), 0)
	require.NoError(t, err)
	return loc
}

func (s *store) supplyNode(t *testing.T, loc *kernel.Location) *supplynode.SupplyNode {
	t.Helper()
	n, err := supplynode.NewSupplyNode(kernel.NewUUID(), "Green Cross", loc)
	require.NoError(t, err)
	require.NoError(t, s.accounts.SupplyNodes().Add(t.Context(), n))
	return n
}

func (s *store) courier(t *testing.T, loc *kernel.Location) *courier.Courier {
	t.Helper()
	c, err := courier.RestoreCourier(kernel.NewUUID(), "Rider", true, loc)
	require.NoError(t, err)
	require.NoError(t, s.accounts.Add(t.Context(), c))
	return c
}

type line struct {
	name string
	qty  int
	unit int64
}

// order stores an order for node after applying build to it.
func (s *store) order(
	t *testing.T,
	node *supplynode.SupplyNode,
	requesterID kernel.UUID,
	delivery *kernel.Location,
	orderedAt time.Time,
	lines []line,
	build func(o *order.Order),
) *order.Order {
	t.Helper()
	if len(lines) == 0 {
		lines = []line{{name: "Paracetamol", qty: 1, unit: 10}}
	}
	items := make([]order.Item, 0, len(lines))
	for _, l := range lines {
		it, err := order.NewItem(l.name, l.qty, decimal.NewFromInt(l.unit), node.ID())
		require.NoError(t, err)
		items = append(items, it)
	}
	o, err := order.NewOrder(kernel.NewUUID(), requesterID, node.ID(), items, delivery, "", orderedAt)
	require.NoError(t, err)
	if build != nil {
		build(o)
	}
	require.NoError(t, s.orders.Add(t.Context(), o))
	return o
}

func ready(t *testing.T) func(*order.Order) {
	return func(o *order.Order) {
		require.NoError(t, o.MarkReady(now))
	}
}

func outForDelivery(t *testing.T, courierID kernel.UUID) func(*order.Order) {
	return func(o *order.Order) {
		require.NoError(t, o.MarkReady(now))
		require.NoError(t, o.Accept(courierID, now))
	}
}

func delivered(t *testing.T, courierID kernel.UUID, at time.Time, km float64, calc services.EarningsCalculator) func(*order.Order) {
	return func(o *order.Order) {
		require.NoError(t, o.MarkReady(at))
		require.NoError(t, o.Accept(courierID, at))
		require.NoError(t, o.Deliver(courierID, at, calc.Calculate(km)))
	}
}
