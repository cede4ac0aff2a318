package handler

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/printcloud/backend/internal/domain/sales"
	"github.com/printcloud/backend/internal/domain/shared"
	"github.com/printcloud/backend/internal/interfaces/http/middleware"
)

// SSEClient represents a connected SSE client
type SSEClient struct {
	ID       string
	UserID   string
	TenantID string
	Chan     chan SSEMessage
	Done     chan struct{}
}

// SSEMessage represents a message to be sent to SSE clients
type SSEMessage struct {
	Event string `json:"event"`
	Data  string `json:"data"`
	ID    string `json:"id,omitempty"`
}

// OrderEvent is the payload broadcast when a sales document changes
type OrderEvent struct {
	EventType     string    `json:"event_type"`
	AggregateType string    `json:"aggregate_type"`
	AggregateID   uuid.UUID `json:"aggregate_id"`
	OccurredAt    time.Time `json:"occurred_at"`
}

// OrderEventsSSEHandler streams sales order lifecycle events to connected
// clients over Server-Sent Events. Clients only receive events for their
// own tenant.
type OrderEventsSSEHandler struct {
	BaseHandler
	bus        shared.EventBus
	logger     *zap.Logger
	clients    sync.Map // map[string]*SSEClient
	ctx        context.Context
	cancel     context.CancelFunc
	heartbeat  time.Duration
	started    bool
	startMu    sync.Mutex
	maxClients int
}

// OrderEventsSSEOption is a functional option for configuring the handler
type OrderEventsSSEOption func(*OrderEventsSSEHandler)

// WithSSELogger sets the logger for the handler
func WithSSELogger(logger *zap.Logger) OrderEventsSSEOption {
	return func(h *OrderEventsSSEHandler) {
		h.logger = logger
	}
}

// WithSSEHeartbeat sets the heartbeat interval
func WithSSEHeartbeat(interval time.Duration) OrderEventsSSEOption {
	return func(h *OrderEventsSSEHandler) {
		h.heartbeat = interval
	}
}

// WithSSEMaxClients sets the maximum number of concurrent SSE clients
func WithSSEMaxClients(max int) OrderEventsSSEOption {
	return func(h *OrderEventsSSEHandler) {
		h.maxClients = max
	}
}

// NewOrderEventsSSEHandler creates a new SSE handler for sales order events
func NewOrderEventsSSEHandler(bus shared.EventBus, opts ...OrderEventsSSEOption) *OrderEventsSSEHandler {
	ctx, cancel := context.WithCancel(context.Background())
	h := &OrderEventsSSEHandler{
		bus:        bus,
		logger:     zap.NewNop(),
		ctx:        ctx,
		cancel:     cancel,
		heartbeat:  30 * time.Second,
		maxClients: 10000,
	}

	for _, opt := range opts {
		opt(h)
	}

	return h
}

// streamedEventTypes lists the sales document events pushed to clients.
func streamedEventTypes() []string {
	return []string{
		sales.EventTypeQuotationCreated,
		sales.EventTypeQuotationSent,
		sales.EventTypeQuotationAccepted,
		sales.EventTypeQuotationRejected,
		sales.EventTypeQuotationConverted,
		sales.EventTypeSalesOrderCreated,
		sales.EventTypeSalesOrderStatusChanged,
		sales.EventTypeSalesOrderCancelled,
		sales.EventTypeSalesOrderAdvanceRecorded,
		sales.EventTypeInvoiceIssued,
		sales.EventTypeInvoicePaymentRecorded,
		sales.EventTypeInvoicePaid,
		sales.EventTypeInvoiceVoided,
	}
}

// Handle implements shared.EventHandler and broadcasts the event to
// clients of the event's tenant.
func (h *OrderEventsSSEHandler) Handle(_ context.Context, event shared.DomainEvent) error {
	payload := OrderEvent{
		EventType:     event.EventType(),
		AggregateType: event.AggregateType(),
		AggregateID:   event.AggregateID(),
		OccurredAt:    event.OccurredAt(),
	}

	data, err := json.Marshal(payload)
	if err != nil {
		h.logger.Error("Failed to marshal SSE event", zap.Error(err))
		return nil
	}

	msg := SSEMessage{
		Event: "order_event",
		Data:  string(data),
		ID:    event.EventID().String(),
	}

	h.broadcast(event.TenantID().String(), msg)
	return nil
}

// EventTypes implements shared.EventHandler
func (h *OrderEventsSSEHandler) EventTypes() []string {
	return streamedEventTypes()
}

// Start subscribes to the event bus and begins heartbeating
func (h *OrderEventsSSEHandler) Start() error {
	h.startMu.Lock()
	defer h.startMu.Unlock()

	if h.started {
		return fmt.Errorf("SSE handler already started")
	}

	h.bus.Subscribe(h, streamedEventTypes()...)
	go h.sendHeartbeats()

	h.started = true
	h.logger.Info("Order events SSE handler started")
	return nil
}

// Stop unsubscribes from the bus and disconnects all clients
func (h *OrderEventsSSEHandler) Stop() {
	h.cancel()
	h.bus.Unsubscribe(h)

	h.clients.Range(func(key, value any) bool {
		if client, ok := value.(*SSEClient); ok {
			close(client.Done)
		}
		return true
	})

	h.logger.Info("Order events SSE handler stopped")
}

// broadcast sends a message to all connected clients of one tenant. An
// empty tenantID broadcasts to everyone (used for heartbeats).
func (h *OrderEventsSSEHandler) broadcast(tenantID string, msg SSEMessage) {
	h.clients.Range(func(key, value any) bool {
		client, ok := value.(*SSEClient)
		if !ok {
			return true
		}
		if tenantID != "" && client.TenantID != tenantID {
			return true
		}

		select {
		case client.Chan <- msg:
		default:
			// Channel full, client might be slow
			h.logger.Warn("Client channel full, dropping message",
				zap.String("client_id", client.ID))
		}
		return true
	})
}

// sendHeartbeats periodically sends heartbeat messages to keep connections alive
func (h *OrderEventsSSEHandler) sendHeartbeats() {
	ticker := time.NewTicker(h.heartbeat)
	defer ticker.Stop()

	for {
		select {
		case <-h.ctx.Done():
			return
		case <-ticker.C:
			h.broadcast("", SSEMessage{
				Event: "heartbeat",
				Data:  fmt.Sprintf(`{"timestamp":%d}`, time.Now().Unix()),
			})
		}
	}
}

// Stream establishes an SSE connection for sales order events
func (h *OrderEventsSSEHandler) Stream(c *gin.Context) {
	if h.maxClients > 0 && h.GetClientCount() >= h.maxClients {
		c.JSON(503, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "MAX_CONNECTIONS_REACHED",
				"message": "Maximum number of SSE connections reached",
			},
		})
		return
	}

	tenantID := middleware.GetJWTTenantID(c)
	if tenantID == "" {
		tenantID = c.GetHeader("X-Tenant-ID")
	}
	if tenantID == "" {
		h.Unauthorized(c, "Tenant context required")
		return
	}
	userID := middleware.GetJWTUserID(c)

	c.Writer.Header().Set("Content-Type", "text/event-stream")
	c.Writer.Header().Set("Cache-Control", "no-cache")
	c.Writer.Header().Set("Connection", "keep-alive")
	c.Writer.Header().Set("X-Accel-Buffering", "no") // Disable nginx buffering

	// Buffer size allows messages to queue without blocking broadcast
	const sseMessageBufferSize = 100
	client := &SSEClient{
		ID:       uuid.New().String(),
		UserID:   userID,
		TenantID: tenantID,
		Chan:     make(chan SSEMessage, sseMessageBufferSize),
		Done:     make(chan struct{}),
	}

	h.clients.Store(client.ID, client)
	defer func() {
		// Close channel first to prevent sends to closed channel
		close(client.Chan)
		h.clients.Delete(client.ID)
	}()

	h.logger.Info("SSE client connected",
		zap.String("client_id", client.ID),
		zap.String("user_id", userID),
		zap.String("tenant_id", tenantID))

	h.sendEvent(c.Writer, SSEMessage{
		Event: "connected",
		Data:  fmt.Sprintf(`{"client_id":"%s","timestamp":%d}`, client.ID, time.Now().Unix()),
	})
	c.Writer.Flush()

	reqCtx := c.Request.Context()

	for {
		select {
		case <-reqCtx.Done():
			h.logger.Info("SSE client disconnected",
				zap.String("client_id", client.ID))
			return
		case <-client.Done:
			return
		case <-h.ctx.Done():
			return
		case msg, ok := <-client.Chan:
			if !ok {
				return
			}
			h.sendEvent(c.Writer, msg)
			c.Writer.Flush()
		}
	}
}

// sendEvent writes an SSE event to the response writer
func (h *OrderEventsSSEHandler) sendEvent(w io.Writer, msg SSEMessage) {
	if msg.Event != "" {
		fmt.Fprintf(w, "event: %s\n", msg.Event)
	}
	if msg.ID != "" {
		fmt.Fprintf(w, "id: %s\n", msg.ID)
	}
	fmt.Fprintf(w, "data: %s\n\n", msg.Data)
}

// GetClientCount returns the number of connected SSE clients
func (h *OrderEventsSSEHandler) GetClientCount() int {
	count := 0
	h.clients.Range(func(_, _ any) bool {
		count++
		return true
	})
	return count
}
