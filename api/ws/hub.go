package ws

import (
	"encoding/json"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/turfline/server/mapsurface"
	"go.uber.org/zap"
)

const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = (pongWait * 9) / 10
	sendBuffer = 64
)

// event is the wire envelope for map surface pushes.
type event struct {
	Type string      `json:"type"`
	Data interface{} `json:"data"`
}

type removePayload struct {
	ID string `json:"id"`
}

// client is one live WebSocket connection for an account.
type client struct {
	accountID int64
	conn      *websocket.Conn
	send      chan []byte
	closeOnce sync.Once
	logger    *zap.Logger
}

func (c *client) close() {
	c.closeOnce.Do(func() {
		close(c.send)
	})
}

// writePump drains the send channel onto the connection and keeps the
// ping/pong heartbeat alive. One goroutine per connection.
func (c *client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()
	for {
		select {
		case msg, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, msg); err != nil {
				return
			}
		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// Hub fans map surface events out to the connections of each account. A
// player may hold several connections (phone plus browser); every one gets
// the same marker stream.
type Hub struct {
	mu      sync.RWMutex
	clients map[int64]map[*client]struct{}
	logger  *zap.Logger
}

// NewHub creates an empty Hub.
func NewHub(logger *zap.Logger) *Hub {
	return &Hub{
		clients: make(map[int64]map[*client]struct{}),
		logger:  logger,
	}
}

func (h *Hub) register(c *client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	set, ok := h.clients[c.accountID]
	if !ok {
		set = make(map[*client]struct{})
		h.clients[c.accountID] = set
	}
	set[c] = struct{}{}
}

func (h *Hub) unregister(c *client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	set, ok := h.clients[c.accountID]
	if !ok {
		return
	}
	if _, ok := set[c]; !ok {
		return
	}
	delete(set, c)
	if len(set) == 0 {
		delete(h.clients, c.accountID)
	}
	c.close()
}

// ConnectionCount reports the live connections for an account.
func (h *Hub) ConnectionCount(accountID int64) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients[accountID])
}

// Push sends an event to every connection of accountID. A connection whose
// buffer is full is dropped rather than blocking the game loop.
func (h *Hub) Push(accountID int64, ev event) {
	payload, err := json.Marshal(ev)
	if err != nil {
		h.logger.Error("ws event marshal failed", zap.Error(err))
		return
	}
	h.mu.RLock()
	defer h.mu.RUnlock()
	for c := range h.clients[accountID] {
		select {
		case c.send <- payload:
		default:
			h.logger.Warn("ws send buffer full, dropping event",
				zap.Int64("account_id", accountID))
		}
	}
}

// SurfaceFor returns a mapsurface.Surface that pushes marker commands to
// every connection of accountID. Safe to hold while no connection exists;
// pushes simply go nowhere.
func (h *Hub) SurfaceFor(accountID int64) mapsurface.Surface {
	return &accountSurface{hub: h, accountID: accountID}
}

type accountSurface struct {
	hub       *Hub
	accountID int64
}

func (s *accountSurface) UpsertMarker(m mapsurface.Marker) {
	s.hub.Push(s.accountID, event{Type: "upsert_marker", Data: m})
}

func (s *accountSurface) RemoveMarker(id string) {
	s.hub.Push(s.accountID, event{Type: "remove_marker", Data: removePayload{ID: id}})
}
