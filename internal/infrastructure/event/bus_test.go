package event

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"

	"github.com/printcloud/backend/internal/domain/shared"
)

// testEvent is a minimal domain event for bus tests
type testEvent struct {
	shared.BaseDomainEvent
	Payload string `json:"payload"`
}

func newBusTestEvent(eventType string) *testEvent {
	return &testEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(eventType, "TestAggregate", uuid.New(), uuid.New()),
		Payload:         "hello",
	}
}

// recordingHandler collects every event it receives
type recordingHandler struct {
	mu     sync.Mutex
	types  []string
	events []shared.DomainEvent
	err    error
	panics bool
}

func (h *recordingHandler) EventTypes() []string {
	return h.types
}

func (h *recordingHandler) Handle(ctx context.Context, event shared.DomainEvent) error {
	if h.panics {
		panic("handler exploded")
	}
	h.mu.Lock()
	h.events = append(h.events, event)
	h.mu.Unlock()
	return h.err
}

func (h *recordingHandler) received() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.events)
}

func TestInMemoryEventBus_Publish(t *testing.T) {
	ctx := context.Background()

	t.Run("delivers events to subscribed handlers only", func(t *testing.T) {
		bus := NewInMemoryEventBus(zap.NewNop())

		orders := &recordingHandler{types: []string{"OrderConfirmed"}}
		invoices := &recordingHandler{types: []string{"InvoiceIssued"}}
		bus.Subscribe(orders)
		bus.Subscribe(invoices)

		err := bus.Publish(ctx, newBusTestEvent("OrderConfirmed"))

		assert.NoError(t, err)
		assert.Equal(t, 1, orders.received())
		assert.Equal(t, 0, invoices.received())
	})

	t.Run("fans one event out to every handler of its type", func(t *testing.T) {
		bus := NewInMemoryEventBus(zap.NewNop())

		first := &recordingHandler{types: []string{"OrderConfirmed"}}
		second := &recordingHandler{types: []string{"OrderConfirmed"}}
		bus.Subscribe(first)
		bus.Subscribe(second)

		err := bus.Publish(ctx, newBusTestEvent("OrderConfirmed"))

		assert.NoError(t, err)
		assert.Equal(t, 1, first.received())
		assert.Equal(t, 1, second.received())
	})

	t.Run("one failing handler does not block the others", func(t *testing.T) {
		bus := NewInMemoryEventBus(zap.NewNop())

		failing := &recordingHandler{types: []string{"OrderConfirmed"}, err: errors.New("boom")}
		healthy := &recordingHandler{types: []string{"OrderConfirmed"}}
		bus.Subscribe(failing)
		bus.Subscribe(healthy)

		err := bus.Publish(ctx, newBusTestEvent("OrderConfirmed"))

		assert.NoError(t, err)
		assert.Equal(t, 1, healthy.received())
	})

	t.Run("a panicking handler is contained", func(t *testing.T) {
		bus := NewInMemoryEventBus(zap.NewNop())

		panicky := &recordingHandler{types: []string{"OrderConfirmed"}, panics: true}
		healthy := &recordingHandler{types: []string{"OrderConfirmed"}}
		bus.Subscribe(panicky)
		bus.Subscribe(healthy)

		assert.NotPanics(t, func() {
			_ = bus.Publish(ctx, newBusTestEvent("OrderConfirmed"))
		})
		assert.Equal(t, 1, healthy.received())
	})

	t.Run("unsubscribed handlers stop receiving events", func(t *testing.T) {
		bus := NewInMemoryEventBus(zap.NewNop())

		handler := &recordingHandler{types: []string{"OrderConfirmed"}}
		bus.Subscribe(handler)
		bus.Unsubscribe(handler)

		err := bus.Publish(ctx, newBusTestEvent("OrderConfirmed"))

		assert.NoError(t, err)
		assert.Equal(t, 0, handler.received())
	})

	t.Run("explicit event types override the handler's own list", func(t *testing.T) {
		bus := NewInMemoryEventBus(zap.NewNop())

		handler := &recordingHandler{types: []string{"OrderConfirmed"}}
		bus.Subscribe(handler, "InvoiceIssued")

		err := bus.Publish(ctx, newBusTestEvent("InvoiceIssued"))

		assert.NoError(t, err)
		assert.Equal(t, 1, handler.received())
	})
}

func TestHandlerRegistry(t *testing.T) {
	t.Run("register and look up by event type", func(t *testing.T) {
		registry := NewHandlerRegistry()
		handler := &recordingHandler{types: []string{"A", "B"}}

		registry.Register(handler, "A", "B")

		assert.Len(t, registry.GetHandlers("A"), 1)
		assert.Len(t, registry.GetHandlers("B"), 1)
		assert.Empty(t, registry.GetHandlers("C"))
	})

	t.Run("unregister removes the handler from every type", func(t *testing.T) {
		registry := NewHandlerRegistry()
		handler := &recordingHandler{types: []string{"A", "B"}}
		registry.Register(handler, "A", "B")

		registry.Unregister(handler)

		assert.Empty(t, registry.GetHandlers("A"))
		assert.Empty(t, registry.GetHandlers("B"))
	})
}
