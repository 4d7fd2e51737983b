package cmd

import (
	"log/slog"
	"time"

	httpin "dispatch/internal/adapters/in/http"
	"dispatch/internal/adapters/out/postgres/accountrepo"
	"dispatch/internal/adapters/out/postgres/orderrepo"
	"dispatch/internal/adapters/out/redis"
	"dispatch/internal/adapters/out/websocket"
	"dispatch/internal/core/application/notifications"
	"dispatch/internal/core/application/usecases/commands"
	"dispatch/internal/core/application/usecases/queries"
	"dispatch/internal/core/domain/services"
	"dispatch/internal/core/ports"
	"dispatch/internal/jobs"

	goredis "github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// CompositionRoot wires adapters into the use cases.
type CompositionRoot struct {
	cfg    Config
	logger *slog.Logger

	orders      ports.OrderRepository
	couriers    ports.CourierDirectory
	supplyNodes ports.SupplyNodeDirectory

	hub       *websocket.Hub
	publisher *notifications.Dispatcher
	earnings  services.EarningsCalculator
	eta       services.ETAEstimator
}

func NewCompositionRoot(cfg Config, gormDB *gorm.DB, redisClient goredis.UniversalClient, logger *slog.Logger) (*CompositionRoot, error) {
	earnings, err := services.NewEarningsCalculator(cfg.BaseEarning, cfg.PerKmEarning)
	if err != nil {
		return nil, err
	}
	eta, err := services.NewETAEstimator(cfg.AverageSpeedKmph)
	if err != nil {
		return nil, err
	}

	accounts := accountrepo.NewGormAccountDirectory(gormDB)
	var orders ports.OrderRepository = orderrepo.NewGormOrderRepository(gormDB)
	if cfg.OrderCacheTTL > 0 {
		orders = redis.NewCachedOrderRepository(orders, redis.NewCache(redisClient, "dispatch"), cfg.OrderCacheTTL, logger)
	}

	hub := websocket.NewHub(logger)
	bus := redis.NewEventBus(redisClient, cfg.EventChannelPrefix)

	return &CompositionRoot{
		cfg:         cfg,
		logger:      logger,
		orders:      orders,
		couriers:    accounts,
		supplyNodes: accounts.SupplyNodes(),
		hub:         hub,
		publisher:   notifications.NewDispatcher(hub, bus, logger),
		earnings:    earnings,
		eta:         eta,
	}, nil
}

// Migrate creates or updates the tables owned by the postgres adapters.
func Migrate(gormDB *gorm.DB) error {
	return gormDB.AutoMigrate(&orderrepo.OrderDTO{}, &accountrepo.AccountDTO{})
}

// Close delivers queued notifications and then disconnects observers.
func (c *CompositionRoot) Close() {
	c.publisher.Close()
	c.hub.Close()
}

func (c *CompositionRoot) CreateAssignCourierCommandHandler() commands.AssignCourierCommandHandler {
	return commands.NewAssignCourierCommandHandler(c.orders, c.couriers, c.supplyNodes, c.earnings, c.logger)
}

func (c *CompositionRoot) CreateHandlers() httpin.Handlers {
	return httpin.Handlers{
		CreateCourier:    commands.NewCreateCourierCommandHandler(c.couriers),
		CreateSupplyNode: commands.NewCreateSupplyNodeCommandHandler(c.supplyNodes),
		CourierPresence:  commands.NewCourierPresenceCommandHandler(c.couriers),
		PlaceOrder:       commands.NewPlaceOrderCommandHandler(c.orders, c.supplyNodes, c.publisher, time.Now),
		ChangeStatus: commands.NewChangeOrderStatusCommandHandler(
			c.orders, c.CreateAssignCourierCommandHandler(), c.publisher, time.Now),
		AcceptDelivery: commands.NewAcceptDeliveryCommandHandler(c.orders, c.couriers, c.publisher, time.Now),
		PickUpOrder:    commands.NewPickUpOrderCommandHandler(c.orders, c.publisher, time.Now),
		CompleteDelivery: commands.NewCompleteDeliveryCommandHandler(
			c.orders, c.supplyNodes, c.earnings, c.publisher, time.Now),

		ReadyList:         queries.NewGetCourierReadyListQueryHandler(c.orders, c.couriers, c.supplyNodes, c.earnings),
		RequesterOrders:   queries.NewGetRequesterOrdersQueryHandler(c.orders, c.couriers, c.eta),
		CourierEarnings:   queries.NewGetCourierEarningsQueryHandler(c.orders, time.Now),
		DeliveryHistory:   queries.NewGetCourierDeliveryHistoryQueryHandler(c.orders),
		SupplyNodeOrders:  queries.NewGetSupplyNodeOrdersQueryHandler(c.orders),
		SupplyNodeSummary: queries.NewGetSupplyNodeAnalyticsQueryHandler(c.orders, time.Now),
	}
}

func (c *CompositionRoot) CreateServer() *httpin.Server {
	return httpin.NewServer(c.CreateHandlers(), c.hub, c.logger)
}

func (c *CompositionRoot) CreateJobManager() *jobs.JobManager {
	return jobs.NewJobManager(c.cfg.JobTimeout, c.logger,
		jobs.Schedule{
			Spec: c.cfg.ReassignSchedule,
			Job:  jobs.NewReassignmentJob(c.orders, c.CreateAssignCourierCommandHandler(), c.publisher, c.logger),
		},
		jobs.Schedule{
			Spec: c.cfg.StaleSchedule,
			Job:  jobs.NewStaleDeliveryJob(c.orders, c.cfg.StaleDeliveryAfter, time.Now, c.logger),
		},
	)
}
