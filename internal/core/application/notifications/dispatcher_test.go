package notifications_test

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"dispatch/internal/core/application/notifications"
	"dispatch/internal/core/domain/model/kernel"
	"dispatch/internal/core/domain/model/order"
	"dispatch/internal/core/ports"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type MockObservers struct{ mock.Mock }

func (m *MockObservers) Notify(ctx context.Context, group ports.ObserverGroup, recipient string, event ports.Event) error {
	args := m.Called(ctx, group, recipient, event)
	return args.Error(0)
}

type MockEventBus struct{ mock.Mock }

func (m *MockEventBus) Publish(ctx context.Context, event ports.Event) error {
	args := m.Called(ctx, event)
	return args.Error(0)
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newReadyOrder(t *testing.T) *order.Order {
	t.Helper()
	nodeID := kernel.NewUUID()
	item, err := order.NewItem("Insulin", 2, decimal.NewFromInt(20), nodeID)
	require.NoError(t, err)
	o, err := order.NewOrder(kernel.NewUUID(), kernel.NewUUID(), nodeID, []order.Item{item}, nil, "", time.Now())
	require.NoError(t, err)
	require.NoError(t, o.MarkReady(time.Now()))
	return o
}

func TestRoute(t *testing.T) {
	tests := []struct {
		transition  notifications.Transition
		topic       string
		courierPool bool
	}{
		{notifications.Created, "order.created", false},
		{notifications.MarkedReady, "order.status.updated", true},
		{notifications.Rejected, "order.status.updated", false},
		{notifications.Accepted, "order.delivery.accepted", true},
		{notifications.PickedUp, "order.delivery.picked-up", true},
		{notifications.Delivered, "order.delivered", true},
	}

	for _, tt := range tests {
		t.Run(tt.transition.String(), func(t *testing.T) {
			route, ok := notifications.Route(tt.transition)

			require.True(t, ok)
			assert.Equal(t, tt.topic, route.Topic)
			assert.True(t, route.SupplyNode)
			assert.True(t, route.Requester)
			assert.Equal(t, tt.courierPool, route.CourierPool)
		})
	}

	_, ok := notifications.Route(notifications.Transition(99))
	assert.False(t, ok)
}

func TestDispatcher_Publish_FanOut(t *testing.T) {
	o := newReadyOrder(t)
	observers := &MockObservers{}
	bus := &MockEventBus{}

	observers.On("Notify", mock.Anything, ports.SupplyNodeObservers, o.SupplyNodeID().String(), mock.Anything).Return(nil).Once()
	observers.On("Notify", mock.Anything, ports.RequesterObservers, o.RequesterID().String(), mock.Anything).Return(nil).Once()
	observers.On("Notify", mock.Anything, ports.CourierPool, "", mock.Anything).Return(nil).Once()
	bus.On("Publish", mock.Anything, mock.MatchedBy(func(e ports.Event) bool {
		return e.Topic == notifications.TopicStatusUpdated
	})).Return(nil).Once()

	d := notifications.NewDispatcher(observers, bus, discardLogger())
	d.Publish(t.Context(), notifications.MarkedReady, o)
	d.Close()

	observers.AssertExpectations(t)
	bus.AssertExpectations(t)
}

func TestDispatcher_Publish_CreatedSkipsCourierPool(t *testing.T) {
	nodeID := kernel.NewUUID()
	item, _ := order.NewItem("Insulin", 1, decimal.NewFromInt(20), nodeID)
	o, err := order.NewOrder(kernel.NewUUID(), kernel.NewUUID(), nodeID, []order.Item{item}, nil, "", time.Now())
	require.NoError(t, err)

	observers := &MockObservers{}
	observers.On("Notify", mock.Anything, ports.SupplyNodeObservers, mock.Anything, mock.Anything).Return(nil).Once()
	observers.On("Notify", mock.Anything, ports.RequesterObservers, mock.Anything, mock.Anything).Return(nil).Once()

	d := notifications.NewDispatcher(observers, nil, discardLogger())
	d.Publish(t.Context(), notifications.Created, o)
	d.Close()

	observers.AssertExpectations(t)
	observers.AssertNotCalled(t, "Notify", mock.Anything, ports.CourierPool, mock.Anything, mock.Anything)
}

func TestDispatcher_Publish_FailuresAreSwallowed(t *testing.T) {
	o := newReadyOrder(t)
	observers := &MockObservers{}
	bus := &MockEventBus{}
	observers.On("Notify", mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return(errors.New("socket closed"))
	bus.On("Publish", mock.Anything, mock.Anything).Return(errors.New("redis down")).Once()

	ctx, cancel := context.WithCancel(t.Context())
	cancel()

	d := notifications.NewDispatcher(observers, bus, discardLogger())
	assert.NotPanics(t, func() {
		d.Publish(ctx, notifications.MarkedReady, o)
	})
	d.Close()

	observers.AssertNumberOfCalls(t, "Notify", 3)
	bus.AssertExpectations(t)
}

func TestDispatcher_Publish_DoesNotWaitForTargets(t *testing.T) {
	o := newReadyOrder(t)
	release := make(chan struct{})
	bus := &MockEventBus{}
	bus.On("Publish", mock.Anything, mock.Anything).
		Run(func(mock.Arguments) { <-release }).
		Return(nil).Twice()

	d := notifications.NewDispatcher(nil, bus, discardLogger())
	published := make(chan struct{})
	go func() {
		d.Publish(t.Context(), notifications.MarkedReady, o)
		d.Publish(t.Context(), notifications.Accepted, o)
		close(published)
	}()

	select {
	case <-published:
	case <-time.After(time.Second):
		t.Fatal("Publish waited for the event bus")
	}

	close(release)
	d.Close()

	bus.AssertNumberOfCalls(t, "Publish", 2)
	topics := []string{
		bus.Calls[0].Arguments.Get(1).(ports.Event).Topic,
		bus.Calls[1].Arguments.Get(1).(ports.Event).Topic,
	}
	assert.Equal(t, []string{notifications.TopicStatusUpdated, notifications.TopicDeliveryAccepted}, topics)
}

func TestDispatcher_PublishAfterCloseIsDropped(t *testing.T) {
	bus := &MockEventBus{}
	d := notifications.NewDispatcher(nil, bus, discardLogger())
	d.Close()
	d.Close()

	assert.NotPanics(t, func() {
		d.Publish(t.Context(), notifications.MarkedReady, newReadyOrder(t))
	})
	bus.AssertNotCalled(t, "Publish", mock.Anything, mock.Anything)
}

func TestNewEvent_StatusUpdatedPayload(t *testing.T) {
	o := newReadyOrder(t)
	courierID := kernel.NewUUID()
	require.NoError(t, o.Assign(courierID))

	event, ok := notifications.NewEvent(notifications.MarkedReady, o)
	require.True(t, ok)

	raw, err := json.Marshal(event.Payload)
	require.NoError(t, err)

	var decoded map[string]any
	require.NoError(t, json.Unmarshal(raw, &decoded))
	assert.Equal(t, "ready", decoded["status"])
	assert.Equal(t, courierID.String(), decoded["courierId"])
	assert.Equal(t, o.ID().String(), decoded["orderId"])
	assert.Contains(t, decoded, "requesterId")
	assert.Contains(t, decoded, "supplyNodeId")
}

func TestNewEvent_DeliveredPayload(t *testing.T) {
	o := newReadyOrder(t)
	courierID := kernel.NewUUID()
	require.NoError(t, o.Accept(courierID, time.Now()))
	require.NoError(t, o.Deliver(courierID, time.Now(), order.Earnings{
		DistanceKm:      4,
		BaseEarning:     decimal.NewFromInt(30),
		DistanceEarning: decimal.NewFromInt(20),
		TotalEarning:    decimal.NewFromInt(50),
	}))

	event, ok := notifications.NewEvent(notifications.Delivered, o)
	require.True(t, ok)
	assert.Equal(t, notifications.TopicOrderDelivered, event.Topic)

	raw, err := json.Marshal(event.Payload)
	require.NoError(t, err)
	for _, key := range []string{
		"orderId", "requesterId", "courierId", "supplyNodeId", "deliveredAt",
		"distanceKm", "baseEarning", "distanceEarning", "totalEarning",
	} {
		assert.Contains(t, string(raw), `"`+key+`"`)
	}
}
