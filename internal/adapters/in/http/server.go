// Package http is the echo adapter over the dispatch use cases. It binds and
// validates requests, identifies the caller from ActorHeader and maps the
// error taxonomy onto status codes.
package http

import (
	"log/slog"
	"net/http"
	"strconv"

	"dispatch/internal/core/application/usecases/commands"
	"dispatch/internal/core/application/usecases/queries"
	"dispatch/internal/core/domain/model/kernel"
	"dispatch/internal/core/domain/model/order"
	"dispatch/internal/core/ports"
	"dispatch/internal/pkg/errs"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
)

// ObserverServer upgrades a request into an observer connection.
type ObserverServer interface {
	Serve(w http.ResponseWriter, r *http.Request, group ports.ObserverGroup, recipient string) error
}

// Handlers groups the use cases exposed over HTTP.
type Handlers struct {
	CreateCourier    commands.CreateCourierCommandHandler
	CreateSupplyNode commands.CreateSupplyNodeCommandHandler
	CourierPresence  commands.CourierPresenceCommandHandler
	PlaceOrder       commands.PlaceOrderCommandHandler
	ChangeStatus     commands.ChangeOrderStatusCommandHandler
	AcceptDelivery   commands.AcceptDeliveryCommandHandler
	PickUpOrder      commands.PickUpOrderCommandHandler
	CompleteDelivery commands.CompleteDeliveryCommandHandler

	ReadyList         queries.GetCourierReadyListQueryHandler
	RequesterOrders   queries.GetRequesterOrdersQueryHandler
	CourierEarnings   queries.GetCourierEarningsQueryHandler
	DeliveryHistory   queries.GetCourierDeliveryHistoryQueryHandler
	SupplyNodeOrders  queries.GetSupplyNodeOrdersQueryHandler
	SupplyNodeSummary queries.GetSupplyNodeAnalyticsQueryHandler
}

// Server handles the dispatch HTTP API.
type Server struct {
	h         Handlers
	observers ObserverServer
	validate  *validator.Validate
	logger    *slog.Logger
}

func NewServer(handlers Handlers, observers ObserverServer, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	return &Server{
		h:         handlers,
		observers: observers,
		validate:  validator.New(),
		logger:    logger.With("component", "HTTPServer"),
	}
}

// Register mounts every route on e.
func (s *Server) Register(e *echo.Echo) {
	e.GET("/health", s.Health)
	e.GET("/ws", s.Observe)

	api := e.Group("/api/v1")

	api.POST("/couriers", s.CreateCourier)
	api.PUT("/couriers/me/location", s.UpdateLocation)
	api.PUT("/couriers/me/online", s.SetOnline)
	api.GET("/couriers/me/ready-orders", s.GetReadyOrders)
	api.GET("/couriers/me/earnings", s.GetEarnings)
	api.GET("/couriers/me/deliveries", s.GetDeliveries)

	api.POST("/supply-nodes", s.CreateSupplyNode)
	api.GET("/supply-nodes/me/orders", s.GetSupplyNodeOrders)
	api.GET("/supply-nodes/me/analytics", s.GetSupplyNodeAnalytics)

	api.POST("/orders", s.PlaceOrder)
	api.GET("/orders", s.GetRequesterOrders)
	api.PATCH("/orders/:orderId/status", s.ChangeOrderStatus)
	api.POST("/orders/:orderId/accept", s.AcceptDelivery)
	api.POST("/orders/:orderId/pickup", s.PickUpOrder)
	api.POST("/orders/:orderId/deliver", s.CompleteDelivery)
}

func (s *Server) Health(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) bind(c echo.Context, req any) error {
	if err := c.Bind(req); err != nil {
		return errs.NewValueIsInvalidErrorWithCause("body", err)
	}
	return s.validate.Struct(req)
}

// CreateCourier handles POST /api/v1/couriers.
func (s *Server) CreateCourier(c echo.Context) error {
	var req CreateAccountRequest
	if err := s.bind(c, &req); err != nil {
		return s.fail(c, err)
	}

	cmd, err := commands.NewCreateCourierCommand(kernel.NewUUID(), req.Name)
	if err != nil {
		return s.fail(c, err)
	}
	created, err := s.h.CreateCourier.Handle(c.Request().Context(), cmd)
	if err != nil {
		return s.fail(c, err)
	}
	return c.JSON(http.StatusCreated, CreatedResponse{ID: created.ID().String()})
}

// CreateSupplyNode handles POST /api/v1/supply-nodes.
func (s *Server) CreateSupplyNode(c echo.Context) error {
	var req CreateAccountRequest
	if err := s.bind(c, &req); err != nil {
		return s.fail(c, err)
	}

	loc, err := optionalLocation(req.Lat, req.Lon)
	if err != nil {
		return s.fail(c, err)
	}
	cmd, err := commands.NewCreateSupplyNodeCommand(kernel.NewUUID(), req.Name, loc)
	if err != nil {
		return s.fail(c, err)
	}
	created, err := s.h.CreateSupplyNode.Handle(c.Request().Context(), cmd)
	if err != nil {
		return s.fail(c, err)
	}
	return c.JSON(http.StatusCreated, CreatedResponse{ID: created.ID().String()})
}

// UpdateLocation handles PUT /api/v1/couriers/me/location.
func (s *Server) UpdateLocation(c echo.Context) error {
	courierID, err := actorID(c)
	if err != nil {
		return s.fail(c, err)
	}
	var req LocationRequest
	if err := s.bind(c, &req); err != nil {
		return s.fail(c, err)
	}

	cmd, err := commands.NewUpdateCourierLocationCommand(courierID, *req.Lat, *req.Lon)
	if err != nil {
		return s.fail(c, err)
	}
	updated, err := s.h.CourierPresence.UpdateLocation(c.Request().Context(), cmd)
	if err != nil {
		return s.fail(c, err)
	}
	return c.JSON(http.StatusOK, newCourierResponse(updated))
}

// SetOnline handles PUT /api/v1/couriers/me/online.
func (s *Server) SetOnline(c echo.Context) error {
	courierID, err := actorID(c)
	if err != nil {
		return s.fail(c, err)
	}
	var req OnlineRequest
	if err := s.bind(c, &req); err != nil {
		return s.fail(c, err)
	}

	cmd, err := commands.NewSetCourierOnlineCommand(courierID, *req.Online)
	if err != nil {
		return s.fail(c, err)
	}
	updated, err := s.h.CourierPresence.SetOnline(c.Request().Context(), cmd)
	if err != nil {
		return s.fail(c, err)
	}
	return c.JSON(http.StatusOK, newCourierResponse(updated))
}

// PlaceOrder handles POST /api/v1/orders.
func (s *Server) PlaceOrder(c echo.Context) error {
	requesterID, err := actorID(c)
	if err != nil {
		return s.fail(c, err)
	}
	var req PlaceOrderRequest
	if err := s.bind(c, &req); err != nil {
		return s.fail(c, err)
	}

	lines, err := req.lines()
	if err != nil {
		return s.fail(c, err)
	}
	loc, err := optionalLocation(req.Lat, req.Lon)
	if err != nil {
		return s.fail(c, err)
	}
	cmd, err := commands.NewPlaceOrderCommand(requesterID, lines, loc, req.Address)
	if err != nil {
		return s.fail(c, err)
	}
	placed, err := s.h.PlaceOrder.Handle(c.Request().Context(), cmd)
	if err != nil && len(placed) == 0 {
		return s.fail(c, err)
	}

	resp := make([]OrderResponse, 0, len(placed))
	for _, o := range placed {
		resp = append(resp, newOrderResponse(o))
	}
	if err != nil {
		return s.failPartial(c, err, resp)
	}
	return c.JSON(http.StatusCreated, resp)
}

// ChangeOrderStatus handles PATCH /api/v1/orders/:orderId/status.
func (s *Server) ChangeOrderStatus(c echo.Context) error {
	supplyNodeID, err := actorID(c)
	if err != nil {
		return s.fail(c, err)
	}
	orderID, err := pathID(c, "orderId")
	if err != nil {
		return s.fail(c, err)
	}
	var req ChangeStatusRequest
	if err := s.bind(c, &req); err != nil {
		return s.fail(c, err)
	}

	target, err := order.ParseStatus(req.Status)
	if err != nil {
		return s.fail(c, err)
	}
	cmd, err := commands.NewChangeOrderStatusCommand(orderID, supplyNodeID, target)
	if err != nil {
		return s.fail(c, err)
	}
	result, err := s.h.ChangeStatus.Handle(c.Request().Context(), cmd)
	if err != nil {
		return s.fail(c, err)
	}
	return c.JSON(http.StatusOK, newTransitionResponse(result))
}

// AcceptDelivery handles POST /api/v1/orders/:orderId/accept.
func (s *Server) AcceptDelivery(c echo.Context) error {
	orderID, courierID, err := s.courierOrder(c)
	if err != nil {
		return s.fail(c, err)
	}
	cmd, err := commands.NewAcceptDeliveryCommand(orderID, courierID)
	if err != nil {
		return s.fail(c, err)
	}
	result, err := s.h.AcceptDelivery.Handle(c.Request().Context(), cmd)
	if err != nil {
		return s.fail(c, err)
	}
	return c.JSON(http.StatusOK, newTransitionResponse(result))
}

// PickUpOrder handles POST /api/v1/orders/:orderId/pickup.
func (s *Server) PickUpOrder(c echo.Context) error {
	orderID, courierID, err := s.courierOrder(c)
	if err != nil {
		return s.fail(c, err)
	}
	cmd, err := commands.NewPickUpOrderCommand(orderID, courierID)
	if err != nil {
		return s.fail(c, err)
	}
	result, err := s.h.PickUpOrder.Handle(c.Request().Context(), cmd)
	if err != nil {
		return s.fail(c, err)
	}
	return c.JSON(http.StatusOK, newTransitionResponse(result))
}

// CompleteDelivery handles POST /api/v1/orders/:orderId/deliver.
func (s *Server) CompleteDelivery(c echo.Context) error {
	orderID, courierID, err := s.courierOrder(c)
	if err != nil {
		return s.fail(c, err)
	}
	cmd, err := commands.NewCompleteDeliveryCommand(orderID, courierID)
	if err != nil {
		return s.fail(c, err)
	}
	result, err := s.h.CompleteDelivery.Handle(c.Request().Context(), cmd)
	if err != nil {
		return s.fail(c, err)
	}
	return c.JSON(http.StatusOK, newTransitionResponse(result))
}

func (s *Server) courierOrder(c echo.Context) (kernel.UUID, kernel.UUID, error) {
	courierID, err := actorID(c)
	if err != nil {
		return kernel.UUID{}, kernel.UUID{}, err
	}
	orderID, err := pathID(c, "orderId")
	if err != nil {
		return kernel.UUID{}, kernel.UUID{}, err
	}
	return orderID, courierID, nil
}

// GetReadyOrders handles GET /api/v1/couriers/me/ready-orders.
func (s *Server) GetReadyOrders(c echo.Context) error {
	courierID, err := actorID(c)
	if err != nil {
		return s.fail(c, err)
	}
	query, err := queries.NewGetCourierReadyListQuery(courierID)
	if err != nil {
		return s.fail(c, err)
	}
	list, err := s.h.ReadyList.Handle(c.Request().Context(), query)
	if err != nil {
		return s.fail(c, err)
	}

	resp := make([]ReadyOrderResponse, 0, len(list))
	for _, v := range list {
		resp = append(resp, ReadyOrderResponse{
			OrderResponse:      newOrderViewResponse(v.OrderView),
			SupplyNodeName:     v.SupplyNodeName,
			SupplyNodeLocation: newLocationResponse(v.SupplyNodeLocation),
			DeliveryDistanceKm: v.DeliveryDistanceKm,
			ExpectedEarning:    *newEarningsResponse(&v.ExpectedEarning),
		})
	}
	return c.JSON(http.StatusOK, resp)
}

// GetEarnings handles GET /api/v1/couriers/me/earnings.
func (s *Server) GetEarnings(c echo.Context) error {
	courierID, err := actorID(c)
	if err != nil {
		return s.fail(c, err)
	}
	query, err := queries.NewGetCourierEarningsQuery(courierID)
	if err != nil {
		return s.fail(c, err)
	}
	summary, err := s.h.CourierEarnings.Handle(c.Request().Context(), query)
	if err != nil {
		return s.fail(c, err)
	}
	return c.JSON(http.StatusOK, EarningsSummaryResponse{
		Today:          summary.Today,
		Week:           summary.LastSevenDays,
		Total:          summary.Total,
		CompletedCount: summary.CompletedCount,
	})
}

// GetDeliveries handles GET /api/v1/couriers/me/deliveries?limit=N.
func (s *Server) GetDeliveries(c echo.Context) error {
	courierID, err := actorID(c)
	if err != nil {
		return s.fail(c, err)
	}
	limit := 0
	if raw := c.QueryParam("limit"); raw != "" {
		if limit, err = strconv.Atoi(raw); err != nil {
			return s.fail(c, errs.NewValueIsInvalidErrorWithCause("limit", err))
		}
	}
	query, err := queries.NewGetCourierDeliveryHistoryQuery(courierID, limit)
	if err != nil {
		return s.fail(c, err)
	}
	history, err := s.h.DeliveryHistory.Handle(c.Request().Context(), query)
	if err != nil {
		return s.fail(c, err)
	}
	return c.JSON(http.StatusOK, newOrderViewResponses(history))
}

// GetRequesterOrders handles GET /api/v1/orders.
func (s *Server) GetRequesterOrders(c echo.Context) error {
	requesterID, err := actorID(c)
	if err != nil {
		return s.fail(c, err)
	}
	query, err := queries.NewGetRequesterOrdersQuery(requesterID)
	if err != nil {
		return s.fail(c, err)
	}
	views, err := s.h.RequesterOrders.Handle(c.Request().Context(), query)
	if err != nil {
		return s.fail(c, err)
	}

	resp := make([]RequesterOrderResponse, 0, len(views))
	for _, v := range views {
		resp = append(resp, RequesterOrderResponse{
			OrderResponse: newOrderViewResponse(v.OrderView),
			EtaMinutes:    v.EtaMinutes,
		})
	}
	return c.JSON(http.StatusOK, resp)
}

// GetSupplyNodeOrders handles GET /api/v1/supply-nodes/me/orders?status=ready.
func (s *Server) GetSupplyNodeOrders(c echo.Context) error {
	supplyNodeID, err := actorID(c)
	if err != nil {
		return s.fail(c, err)
	}
	var statuses []order.Status
	for _, raw := range c.QueryParams()["status"] {
		status, parseErr := order.ParseStatus(raw)
		if parseErr != nil {
			return s.fail(c, parseErr)
		}
		statuses = append(statuses, status)
	}
	query, err := queries.NewGetSupplyNodeOrdersQuery(supplyNodeID, statuses...)
	if err != nil {
		return s.fail(c, err)
	}
	views, err := s.h.SupplyNodeOrders.Handle(c.Request().Context(), query)
	if err != nil {
		return s.fail(c, err)
	}
	return c.JSON(http.StatusOK, newOrderViewResponses(views))
}

// GetSupplyNodeAnalytics handles GET /api/v1/supply-nodes/me/analytics.
func (s *Server) GetSupplyNodeAnalytics(c echo.Context) error {
	supplyNodeID, err := actorID(c)
	if err != nil {
		return s.fail(c, err)
	}
	query, err := queries.NewGetSupplyNodeAnalyticsQuery(supplyNodeID)
	if err != nil {
		return s.fail(c, err)
	}
	analytics, err := s.h.SupplyNodeSummary.Handle(c.Request().Context(), query)
	if err != nil {
		return s.fail(c, err)
	}

	resp := AnalyticsResponse{
		TotalSales:    analytics.SalesToday,
		PendingOrders: analytics.PendingCount,
		TopSelling:    "N/A",
	}
	if analytics.TopItem != nil {
		resp.TopSelling = analytics.TopItem.Name
	}
	return c.JSON(http.StatusOK, resp)
}

// Observe handles GET /ws?role=courier|supply_node|requester and streams
// lifecycle events to the caller.
func (s *Server) Observe(c echo.Context) error {
	actor, err := actorID(c)
	if err != nil {
		return s.fail(c, err)
	}
	role, err := kernel.ParseRole(c.QueryParam("role"))
	if err != nil {
		return s.fail(c, err)
	}

	var group ports.ObserverGroup
	recipient := actor.String()
	switch role {
	case kernel.RoleCourier:
		group, recipient = ports.CourierPool, ""
	case kernel.RoleSupplyNode:
		group = ports.SupplyNodeObservers
	case kernel.RoleRequester:
		group = ports.RequesterObservers
	}
	return s.observers.Serve(c.Response(), c.Request(), group, recipient)
}
