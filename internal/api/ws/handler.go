package ws

import (
	"net/http"
	"sync"
	"time"

	"github.com/bytedance/sonic"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/labelboard/backend/internal/events"
	"github.com/labelboard/backend/internal/infrastructure/logging"
	"github.com/labelboard/backend/internal/infrastructure/monitoring"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true // Origins are filtered by the CORS middleware
	},
}

// inbound is what clients send: confirmation answers and pings
type inbound struct {
	Type     string `json:"type"`
	ID       string `json:"id,omitempty"`
	Accepted bool   `json:"accepted,omitempty"`
}

// Handler streams session events to UI clients and routes confirmation
// answers back to the notifier.
type Handler struct {
	bus      *events.Bus
	notifier *events.Notifier
	logger   *logging.Logger
	metrics  *monitoring.Metrics

	mu      sync.RWMutex
	clients map[string]chan events.Event // Protected by mu
}

// NewHandler creates a websocket handler
func NewHandler(bus *events.Bus, notifier *events.Notifier, logger *logging.Logger) *Handler {
	if logger == nil {
		logger = logging.NewNop()
	}
	h := &Handler{
		bus:      bus,
		notifier: notifier,
		logger:   logger,
		clients:  make(map[string]chan events.Event),
	}
	bus.Subscribe(h.broadcast)
	return h
}

// WithMetrics adds connection and event metrics
func (h *Handler) WithMetrics(metrics *monitoring.Metrics) *Handler {
	h.metrics = metrics
	return h
}

// Clients returns the connected client count
func (h *Handler) Clients() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// HandleConnection upgrades the request and pumps events until the client
// goes away.
func (h *Handler) HandleConnection(c *gin.Context) {
	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.logger.Warn("websocket upgrade failed", zap.Error(err))
		return
	}
	defer conn.Close()

	id := uuid.New().String()
	ch := h.register(id)
	defer h.unregister(id)

	done := make(chan struct{})
	go h.writeLoop(conn, ch, done)

	for {
		var msg inbound
		if err := conn.ReadJSON(&msg); err != nil {
			break
		}
		switch msg.Type {
		case "confirm":
			if !h.notifier.Resolve(msg.ID, msg.Accepted) {
				h.logger.Debug("stale confirmation answer", zap.String("id", msg.ID))
			}
		case "ping":
			// Pongs ride the event channel so writeLoop stays the
			// connection's only writer.
			select {
			case ch <- events.Event{Type: "pong", At: time.Now()}:
			default:
			}
		}
	}
	close(done)
}

// writeLoop owns the connection's write side. Nothing else may call
// WriteMessage on conn; gorilla/websocket allows one concurrent writer.
func (h *Handler) writeLoop(conn *websocket.Conn, ch chan events.Event, done chan struct{}) {
	for {
		select {
		case e := <-ch:
			if err := h.send(conn, e); err != nil {
				return
			}
		case <-done:
			return
		}
	}
}

func (h *Handler) send(conn *websocket.Conn, v interface{}) error {
	data, err := sonic.Marshal(v)
	if err != nil {
		return err
	}
	return conn.WriteMessage(websocket.TextMessage, data)
}

func (h *Handler) register(id string) chan events.Event {
	ch := make(chan events.Event, 64)
	h.mu.Lock()
	h.clients[id] = ch
	n := len(h.clients)
	h.mu.Unlock()

	if h.metrics != nil {
		h.metrics.WSConnections.Set(float64(n))
	}
	return ch
}

func (h *Handler) unregister(id string) {
	h.mu.Lock()
	delete(h.clients, id)
	n := len(h.clients)
	h.mu.Unlock()

	if h.metrics != nil {
		h.metrics.WSConnections.Set(float64(n))
	}
}

// broadcast fans a published event out to every connected client. Slow
// clients drop events rather than block the publisher.
func (h *Handler) broadcast(e events.Event) {
	h.mu.RLock()
	for _, ch := range h.clients {
		select {
		case ch <- e:
		default:
		}
	}
	h.mu.RUnlock()

	if h.metrics != nil {
		h.metrics.RecordWSEvent(string(e.Type))
	}
}
