package orderrepo_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"dispatch/internal/adapters/out/postgres/orderrepo"
	"dispatch/internal/core/domain/model/kernel"
	"dispatch/internal/core/domain/model/order"
	"dispatch/internal/core/ports"
	"dispatch/internal/pkg/errs"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/suite"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
	postgresdriver "gorm.io/driver/postgres"
	"gorm.io/gorm"
)

// OrderRepositoryIntegrationTestSuite runs the repository against a real
// PostgreSQL container.
type OrderRepositoryIntegrationTestSuite struct {
	suite.Suite
	container  *postgres.PostgresContainer
	db         *gorm.DB
	repository *orderrepo.GormOrderRepository
	node       kernel.UUID
	requester  kernel.UUID
}

func (suite *OrderRepositoryIntegrationTestSuite) SetupSuite() {
	ctx := context.Background()

	container, err := postgres.Run(ctx,
		"postgres:15-alpine",
		postgres.WithDatabase("testdb"),
		postgres.WithUsername("testuser"),
		postgres.WithPassword("testpass"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(30*time.Second),
		),
	)
	suite.Require().NoError(err)
	suite.container = container

	connStr, err := container.ConnectionString(ctx, "sslmode=disable")
	suite.Require().NoError(err)

	db, err := gorm.Open(postgresdriver.Open(connStr), &gorm.Config{TranslateError: true})
	suite.Require().NoError(err)
	suite.db = db

	suite.Require().NoError(db.AutoMigrate(&orderrepo.OrderDTO{}))
}

func (suite *OrderRepositoryIntegrationTestSuite) SetupTest() {
	suite.Require().NoError(suite.db.Exec("TRUNCATE TABLE orders").Error)
	suite.repository = orderrepo.NewGormOrderRepository(suite.db)
	suite.node = kernel.NewUUID()
	suite.requester = kernel.NewUUID()
}

func (suite *OrderRepositoryIntegrationTestSuite) TearDownSuite() {
	if suite.container != nil {
		suite.Require().NoError(suite.container.Terminate(context.Background()))
	}
}

func (suite *OrderRepositoryIntegrationTestSuite) TestAddAndGet_RoundTrip() {
	ctx := context.Background()
	loc, err := kernel.NewLocationPtr(12.97, 77.59)
	suite.Require().NoError(err)
	o := suite.newOrder(loc, time.Now().UTC())

	suite.Require().NoError(suite.repository.Add(ctx, o))

	got, err := suite.repository.Get(ctx, o.ID())
	suite.Require().NoError(err)
	suite.True(got.IsEqual(o))
	suite.Equal(order.Pending, got.Status())
	suite.Equal("50", got.TotalAmount().String())
	suite.Require().Len(got.Items(), 2)
	suite.Equal("Vitamin C", got.Items()[1].Name())
	suite.Require().NotNil(got.DeliveryLocation())
	suite.InDelta(12.97, got.DeliveryLocation().Lat(), 1e-9)
	suite.Equal("Flat 4, Rose Street", got.DeliveryAddress())
	suite.Nil(got.Courier())
	suite.Nil(got.Settlement())
	suite.WithinDuration(o.OrderedAt(), got.OrderedAt(), time.Millisecond)
}

func (suite *OrderRepositoryIntegrationTestSuite) TestAdd_Duplicate_Conflict() {
	ctx := context.Background()
	o := suite.newOrder(nil, time.Now())
	suite.Require().NoError(suite.repository.Add(ctx, o))

	err := suite.repository.Add(ctx, o)
	suite.Require().ErrorIs(err, errs.ErrStateConflict)
}

func (suite *OrderRepositoryIntegrationTestSuite) TestGet_NotFound() {
	_, err := suite.repository.Get(context.Background(), kernel.NewUUID())
	suite.Require().ErrorIs(err, errs.ErrObjectNotFound)
}

func (suite *OrderRepositoryIntegrationTestSuite) TestConditionalUpdate_FullLifecycle() {
	ctx := context.Background()
	o := suite.newOrder(nil, time.Now())
	suite.Require().NoError(suite.repository.Add(ctx, o))
	courierID := kernel.NewUUID()
	now := time.Now().UTC()

	ready, err := suite.repository.ConditionalUpdate(ctx, o.ID(), order.Pending, func(o *order.Order) error {
		return o.MarkReady(now)
	})
	suite.Require().NoError(err)
	suite.Equal(int64(1), ready.Version())

	_, err = suite.repository.ConditionalUpdate(ctx, o.ID(), order.Ready, func(o *order.Order) error {
		return o.Accept(courierID, now)
	})
	suite.Require().NoError(err)

	settlement := order.Earnings{
		DistanceKm:      4,
		BaseEarning:     decimal.NewFromInt(30),
		DistanceEarning: decimal.NewFromInt(20),
		TotalEarning:    decimal.NewFromInt(50),
	}
	_, err = suite.repository.ConditionalUpdate(ctx, o.ID(), order.OutForDelivery, func(o *order.Order) error {
		return o.Deliver(courierID, now, settlement)
	})
	suite.Require().NoError(err)

	stored, err := suite.repository.Get(ctx, o.ID())
	suite.Require().NoError(err)
	suite.Equal(order.Delivered, stored.Status())
	suite.Equal(int64(3), stored.Version())
	suite.True(stored.IsCourier(courierID))
	suite.Require().NotNil(stored.Settlement())
	suite.Equal("50", stored.Settlement().TotalEarning.String())
	suite.InDelta(4.0, stored.Settlement().DistanceKm, 1e-9)
}

func (suite *OrderRepositoryIntegrationTestSuite) TestConditionalUpdate_StatusMismatch() {
	ctx := context.Background()
	o := suite.newOrder(nil, time.Now())
	suite.Require().NoError(suite.repository.Add(ctx, o))

	_, err := suite.repository.ConditionalUpdate(ctx, o.ID(), order.Ready, func(*order.Order) error {
		suite.Fail("mutator must not run on a status mismatch")
		return nil
	})
	suite.Require().ErrorIs(err, errs.ErrStateConflict)
}

func (suite *OrderRepositoryIntegrationTestSuite) TestConditionalUpdate_MutatorErrorPassesThrough() {
	ctx := context.Background()
	o := suite.newOrder(nil, time.Now())
	suite.Require().NoError(suite.repository.Add(ctx, o))

	_, err := suite.repository.ConditionalUpdate(ctx, o.ID(), order.Pending, func(o *order.Order) error {
		return o.Accept(kernel.NewUUID(), time.Now())
	})
	suite.Require().ErrorIs(err, errs.ErrStateConflict)

	stored, err := suite.repository.Get(ctx, o.ID())
	suite.Require().NoError(err)
	suite.Equal(int64(0), stored.Version())
}

func (suite *OrderRepositoryIntegrationTestSuite) TestConditionalUpdate_ConcurrentAccept_OneWinner() {
	ctx := context.Background()
	o := suite.newOrder(nil, time.Now())
	suite.Require().NoError(o.MarkReady(time.Now()))
	suite.Require().NoError(suite.repository.Add(ctx, o))

	const writers = 8
	var (
		wg        sync.WaitGroup
		mu        sync.Mutex
		wins      int
		conflicts int
	)
	for range writers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := suite.repository.ConditionalUpdate(ctx, o.ID(), order.Ready, func(o *order.Order) error {
				return o.Accept(kernel.NewUUID(), time.Now())
			})
			mu.Lock()
			defer mu.Unlock()
			switch {
			case err == nil:
				wins++
			case errors.Is(err, errs.ErrStateConflict):
				conflicts++
			}
		}()
	}
	wg.Wait()

	suite.Equal(1, wins)
	suite.Equal(writers-1, conflicts)
}

func (suite *OrderRepositoryIntegrationTestSuite) TestQuery_FiltersAndSort() {
	ctx := context.Background()
	base := time.Now().UTC().Truncate(time.Second)
	me := kernel.NewUUID()
	other := kernel.NewUUID()

	oldest := suite.newOrder(nil, base.Add(-3*time.Hour))
	suite.Require().NoError(oldest.MarkReady(base))
	mine := suite.newOrder(nil, base.Add(-2*time.Hour))
	suite.Require().NoError(mine.MarkReady(base))
	suite.Require().NoError(mine.Accept(me, base))
	theirs := suite.newOrder(nil, base.Add(-time.Hour))
	suite.Require().NoError(theirs.MarkReady(base))
	suite.Require().NoError(theirs.Accept(other, base))
	pending := suite.newOrder(nil, base)

	for _, o := range []*order.Order{oldest, mine, theirs, pending} {
		suite.Require().NoError(suite.repository.Add(ctx, o))
	}

	available, err := suite.repository.Query(ctx, ports.OrderFilter{
		Statuses:    []order.Status{order.Ready, order.OutForDelivery},
		AvailableTo: &me,
	}, ports.NewestFirst)
	suite.Require().NoError(err)
	suite.Require().Len(available, 2)
	suite.True(available[0].IsEqual(mine))
	suite.True(available[1].IsEqual(oldest))

	unassigned, err := suite.repository.Query(ctx, ports.OrderFilter{
		Statuses:   []order.Status{order.Ready},
		Unassigned: true,
	}, ports.OrderSort{Field: ports.SortByReadyAt})
	suite.Require().NoError(err)
	suite.Require().Len(unassigned, 1)
	suite.True(unassigned[0].IsEqual(oldest))

	cutoff := base.Add(time.Minute)
	stale, err := suite.repository.Query(ctx, ports.OrderFilter{
		Statuses:       []order.Status{order.OutForDelivery},
		AcceptedBefore: &cutoff,
	}, ports.OrderSort{Field: ports.SortByAcceptedAt})
	suite.Require().NoError(err)
	suite.Len(stale, 2)

	limited, err := suite.repository.Query(ctx, ports.OrderFilter{SupplyNodeID: &suite.node, Limit: 1}, ports.NewestFirst)
	suite.Require().NoError(err)
	suite.Require().Len(limited, 1)
	suite.True(limited[0].IsEqual(pending))
}

func (suite *OrderRepositoryIntegrationTestSuite) newOrder(loc *kernel.Location, orderedAt time.Time) *order.Order {
	paracetamol, err := order.NewItem("Paracetamol", 1, decimal.NewFromInt(10), suite.node)
	suite.Require().NoError(err)
	vitamin, err := order.NewItem("Vitamin C", 2, decimal.NewFromInt(20), suite.node)
	suite.Require().NoError(err)

	o, err := order.NewOrder(kernel.NewUUID(), suite.requester, suite.node,
		[]order.Item{paracetamol, vitamin}, loc, "Flat 4, Rose Street", orderedAt)
	suite.Require().NoError(err)
	return o
}

func TestOrderRepositoryIntegrationTestSuite(t *testing.T) {
	suite.Run(t, new(OrderRepositoryIntegrationTestSuite))
}
