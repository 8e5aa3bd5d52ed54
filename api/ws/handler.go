package ws

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/turfline/server/cache"
	"github.com/turfline/server/config"
	"github.com/turfline/server/game/session"
	"github.com/turfline/server/mapsurface"
	mw "github.com/turfline/server/middleware"
	"go.uber.org/zap"
)

// Handler is the Gin handler for GET /ws. The connection is push-only from
// the client's point of view: the server streams marker events, the client
// sends nothing but heartbeats.
type Handler struct {
	cache    cache.Cache
	sec      config.SecurityConfig
	sm       *session.Manager
	hub      *Hub
	logger   *zap.Logger
	upgrader websocket.Upgrader
}

// NewHandler creates a new WebSocket Handler.
// sec.AllowedOrigins controls which WebSocket origins are accepted.
// An empty slice permits all origins (development only).
func NewHandler(c cache.Cache, sec config.SecurityConfig, sm *session.Manager, hub *Hub, logger *zap.Logger) *Handler {
	h := &Handler{
		cache:  c,
		sec:    sec,
		sm:     sm,
		hub:    hub,
		logger: logger,
	}
	allowed := sec.AllowedOrigins
	h.upgrader = websocket.Upgrader{
		ReadBufferSize:  4096,
		WriteBufferSize: 4096,
		CheckOrigin: func(r *http.Request) bool {
			if len(allowed) == 0 {
				return true // dev mode: allow all
			}
			origin := r.Header.Get("Origin")
			for _, o := range allowed {
				if o == origin {
					return true
				}
			}
			return false
		},
	}
	return h
}

// ServeWS handles GET /ws?token=<jwt>.
func (h *Handler) ServeWS(c *gin.Context) {
	tokenStr := c.Query("token")
	if tokenStr == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "missing token"})
		return
	}

	claims, err := mw.ParseToken(tokenStr, h.sec.JWTSecret)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid token"})
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
	defer cancel()
	exists, err := h.cache.Exists(ctx, "session:"+tokenStr)
	if err != nil || !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "session expired"})
		return
	}

	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.logger.Error("ws upgrade failed", zap.Error(err))
		return
	}

	cl := &client{
		accountID: claims.AccountID,
		conn:      conn,
		send:      make(chan []byte, sendBuffer),
		logger:    h.logger,
	}
	h.hub.register(cl)
	go cl.writePump()

	// Attach the live surface so economy and enemy updates stream out.
	s, err := h.sm.GetOrCreate(claims.AccountID, claims.Username, claims.Alias)
	if err != nil {
		h.logger.Error("ws session load failed",
			zap.Int64("account_id", claims.AccountID), zap.Error(err))
		h.hub.unregister(cl)
		conn.Close()
		return
	}
	s.Lock()
	s.SetSurface(h.hub.SurfaceFor(claims.AccountID))
	s.Unlock()

	h.logger.Info("ws connected", zap.Int64("account_id", claims.AccountID))
	h.readPump(cl, s)
}

// readPump consumes inbound frames to service the heartbeat; any payload is
// ignored. Blocks until the connection closes.
func (h *Handler) readPump(cl *client, s *session.Session) {
	defer h.handleDisconnect(cl, s)

	cl.conn.SetReadDeadline(time.Now().Add(pongWait))
	cl.conn.SetPongHandler(func(string) error {
		cl.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		if _, _, err := cl.conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err,
				websocket.CloseGoingAway,
				websocket.CloseNormalClosure,
				websocket.CloseNoStatusReceived) {
				h.logger.Warn("ws unexpected close",
					zap.Int64("account_id", cl.accountID),
					zap.Error(err))
			}
			return
		}
		cl.conn.SetReadDeadline(time.Now().Add(pongWait))
	}
}

func (h *Handler) handleDisconnect(cl *client, s *session.Session) {
	h.hub.unregister(cl)
	cl.conn.Close()

	// Last connection gone: detach the surface and persist the session.
	if h.hub.ConnectionCount(cl.accountID) == 0 {
		s.Lock()
		s.SetSurface(mapsurface.Null{})
		_ = s.Persist()
		s.Unlock()
	}
	h.logger.Info("ws disconnected", zap.Int64("account_id", cl.accountID))
}
