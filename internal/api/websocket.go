package api

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"tradedesk/internal/domain"
	"tradedesk/internal/infra"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		// CORS is enforced by the outer handler
		return true
	},
}

// Hub maintains active WebSocket connections and broadcasts the
// per-tick market snapshot to all of them.
type Hub struct {
	clients    map[*client]bool
	broadcast  chan []byte
	register   chan *client
	unregister chan *client
	mu         sync.RWMutex
}

// NewHub creates a new WebSocket hub
func NewHub() *Hub {
	return &Hub{
		clients:    make(map[*client]bool),
		broadcast:  make(chan []byte, 256),
		register:   make(chan *client),
		unregister: make(chan *client),
	}
}

// Run starts the hub's main loop
func (h *Hub) Run() {
	for {
		select {
		case c := <-h.register:
			h.mu.Lock()
			h.clients[c] = true
			total := len(h.clients)
			h.mu.Unlock()
			infra.GlobalMetrics.IncrementWSClients()
			slog.Info("WS client connected", slog.String("remote", c.remote), slog.Int("total", total))

		case c := <-h.unregister:
			h.mu.Lock()
			if _, ok := h.clients[c]; ok {
				delete(h.clients, c)
				close(c.send)
				infra.GlobalMetrics.DecrementWSClients()
			}
			total := len(h.clients)
			h.mu.Unlock()
			slog.Info("WS client disconnected", slog.String("remote", c.remote), slog.Int("total", total))

		case message := <-h.broadcast:
			h.mu.RLock()
			for c := range h.clients {
				select {
				case c.send <- message:
				default:
					// Slow consumer, drop the frame
				}
			}
			h.mu.RUnlock()
		}
	}
}

// BroadcastTicks pushes the market snapshot to every connected client.
// Non-blocking: when the hub's buffer is full the frame is dropped,
// the next tick supersedes it anyway.
func (h *Hub) BroadcastTicks(ticks []domain.MarketTick) {
	msg, err := json.Marshal(tickMessage{Channel: "ticks", Ticks: ticks})
	if err != nil {
		slog.Error("WS marshal failed", slog.Any("error", err))
		return
	}
	select {
	case h.broadcast <- msg:
	default:
	}
}

// client represents one WebSocket connection
type client struct {
	hub    *Hub
	conn   *websocket.Conn
	send   chan []byte
	remote string
}

// readPump drains inbound frames so pings/close are processed. The
// tick stream is one-way; client payloads are ignored.
func (c *client) readPump() {
	defer func() {
		c.hub.unregister <- c
		c.conn.Close()
	}()

	c.conn.SetReadDeadline(time.Now().Add(60 * time.Second))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(60 * time.Second))
		return nil
	})

	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				slog.Warn("WS read error", slog.Any("error", err))
			}
			return
		}
	}
}

// writePump pumps broadcast frames to the connection and keeps it
// alive with pings.
func (c *client) writePump() {
	ticker := time.NewTicker(54 * time.Second)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case message, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(10 * time.Second))
			if !ok {
				// Hub closed the channel
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, message); err != nil {
				return
			}

		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(10 * time.Second))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// handleWebSocket handles WebSocket upgrade and client lifecycle
func (s *Server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		slog.Warn("WS upgrade failed", slog.Any("error", err))
		return
	}

	c := &client{
		hub:    s.hub,
		conn:   conn,
		send:   make(chan []byte, 64),
		remote: r.RemoteAddr,
	}
	s.hub.register <- c

	go c.writePump()
	go c.readPump()
}
