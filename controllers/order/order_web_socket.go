package orderControllers

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/junaidrashid-git/storefront-api/controllers/render"
	"github.com/junaidrashid-git/storefront-api/models"
	"github.com/rs/zerolog"
)

const (
	writeWait = 5 * time.Second
	// sendBuffer is how many events a client may fall behind before it is dropped.
	sendBuffer = 16
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// client is one staff connection. Only its writer goroutine touches conn for
// writes; send is closed by the hub when the client is removed.
type client struct {
	conn *websocket.Conn
	send chan []byte
}

// Hub pushes newly placed orders to connected staff clients. It satisfies
// orders.Notifier.
type Hub struct {
	mu      sync.Mutex
	clients map[*client]struct{}
}

func NewHub() *Hub {
	return &Hub{clients: make(map[*client]struct{})}
}

type orderEvent struct {
	Type  string              `json:"type"`
	Order render.OrderSummary `json:"order"`
}

// OrderPlaced queues the order summary for every client without waiting on
// the network. A client whose queue is full is dropped.
func (h *Hub) OrderPlaced(ctx context.Context, o *models.Order) {
	data, err := json.Marshal(orderEvent{Type: "order.created", Order: render.NewOrderSummary(o)})
	if err != nil {
		zerolog.Ctx(ctx).Error().Err(err).Msg("encode order event")
		return
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	for c := range h.clients {
		select {
		case c.send <- data:
		default:
			zerolog.Ctx(ctx).Warn().Msg("order feed client too slow, dropping")
			h.removeLocked(c)
		}
	}
}

// Clients returns the number of connected listeners.
func (h *Hub) Clients() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.clients)
}

// Close disconnects every client.
func (h *Hub) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()
	for c := range h.clients {
		h.removeLocked(c)
	}
}

func (h *Hub) add(c *client) {
	h.mu.Lock()
	h.clients[c] = struct{}{}
	h.mu.Unlock()
}

func (h *Hub) remove(c *client) {
	h.mu.Lock()
	h.removeLocked(c)
	h.mu.Unlock()
}

func (h *Hub) removeLocked(c *client) {
	if _, ok := h.clients[c]; !ok {
		return
	}
	delete(h.clients, c)
	close(c.send)
}

// writePump drains send until the hub closes it or a write fails.
func (c *client) writePump() {
	defer c.conn.Close()
	for data := range c.send {
		_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
		if err := c.conn.WriteMessage(websocket.TextMessage, data); err != nil {
			return
		}
	}
	_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
	_ = c.conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
}

// GET /api/admin/orders/ws
func (h *Hub) ServeWS(c *gin.Context) {
	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		zerolog.Ctx(c.Request.Context()).Warn().Err(err).Msg("websocket upgrade failed")
		return
	}
	cl := &client{conn: conn, send: make(chan []byte, sendBuffer)}
	h.add(cl)
	go cl.writePump()
	defer h.remove(cl)

	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			break
		}
	}
}
