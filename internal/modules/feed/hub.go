// Package feed pushes review activity to connected owners and customers
// over websockets.
package feed

import (
	"encoding/json"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"theknife/internal/domain"
	"theknife/internal/modules/review"
)

const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = (pongWait * 9) / 10
	maxMsgSize = 4 * 1024
	sendBuffer = 64
)

// Event is what clients receive.
type Event struct {
	Type   string        `json:"type"`
	Review domain.Review `json:"review"`
}

// OwnerLookup finds who manages a restaurant.
type OwnerLookup interface {
	OwnerOf(restaurantName string) (string, bool)
}

type connection struct {
	userID string
	conn   *websocket.Conn
	send   chan []byte
}

// Hub tracks connections per user. A user may hold several.
type Hub struct {
	owners OwnerLookup
	log    *zap.Logger

	mu          sync.RWMutex
	connections map[string]map[*connection]struct{}
}

func NewHub(owners OwnerLookup, log *zap.Logger) *Hub {
	return &Hub{
		owners:      owners,
		log:         log.Named("feed"),
		connections: make(map[string]map[*connection]struct{}),
	}
}

func (h *Hub) register(c *connection) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.connections[c.userID] == nil {
		h.connections[c.userID] = make(map[*connection]struct{})
	}
	h.connections[c.userID][c] = struct{}{}
}

func (h *Hub) unregister(c *connection) {
	h.mu.Lock()
	defer h.mu.Unlock()
	conns := h.connections[c.userID]
	if _, ok := conns[c]; !ok {
		return
	}
	delete(conns, c)
	if len(conns) == 0 {
		delete(h.connections, c.userID)
	}
	close(c.send)
}

// Connected reports how many sockets userID holds.
func (h *Hub) Connected(userID string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.connections[userID])
}

// Notify implements review.Notifier. New reviews go to the restaurant owner;
// replies go to the review author as well.
func (h *Hub) Notify(event string, rv domain.Review) {
	recipients := make(map[string]struct{}, 2)
	if owner, ok := h.owners.OwnerOf(rv.RestaurantName); ok {
		recipients[owner] = struct{}{}
	}
	if event == review.EventReplyAttached {
		recipients[rv.Author] = struct{}{}
	}

	data, err := json.Marshal(Event{Type: event, Review: rv})
	if err != nil {
		h.log.Error("marshal event", zap.Error(err))
		return
	}
	for userID := range recipients {
		h.SendTo(userID, data)
	}
}

// SendTo queues data on every connection of userID. Slow clients miss it.
func (h *Hub) SendTo(userID string, data []byte) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	for c := range h.connections[userID] {
		select {
		case c.send <- data:
		default:
			h.log.Warn("dropping event for slow client", zap.String("user_id", userID))
		}
	}
}

// Serve runs the connection until the client goes away.
func (h *Hub) Serve(conn *websocket.Conn, userID string) {
	c := &connection{
		userID: userID,
		conn:   conn,
		send:   make(chan []byte, sendBuffer),
	}
	h.register(c)
	h.log.Debug("client connected", zap.String("user_id", userID))

	go h.writePump(c)
	h.readPump(c)
}

// readPump only drains control frames; clients do not send events.
func (h *Hub) readPump(c *connection) {
	defer func() {
		h.unregister(c)
		c.conn.Close()
		h.log.Debug("client disconnected", zap.String("user_id", c.userID))
	}()

	c.conn.SetReadLimit(maxMsgSize)
	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			return
		}
	}
}

func (h *Hub) writePump(c *connection) {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case msg, ok := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				_ = c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, msg); err != nil {
				return
			}
		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
