package rest

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/turfline/server/game/progress"
	"github.com/turfline/server/game/session"
	"github.com/turfline/server/game/territory"
	"github.com/turfline/server/geo"
)

// PlayerHandler handles player state REST endpoints.
type PlayerHandler struct {
	sm      *session.Manager
	economy *territory.Economy
}

// NewPlayerHandler creates a new PlayerHandler.
func NewPlayerHandler(sm *session.Manager, economy *territory.Economy) *PlayerHandler {
	return &PlayerHandler{sm: sm, economy: economy}
}

// State handles GET /api/player.
func (h *PlayerHandler) State(c *gin.Context) {
	s, ok := loadSession(c, h.sm)
	if !ok {
		return
	}
	s.Lock()
	defer s.Unlock()

	p := s.Player
	c.JSON(http.StatusOK, gin.H{
		"player":               p,
		"power":                p.Power(),
		"expNeeded":            progress.ExpNeeded(p.Level),
		"inventory":            s.Inventory,
		"equipment":            s.Equipment,
		"protectedBusinessIds": s.ProtectedBusinessIDs(),
		"settings":             s.Settings,
	})
}

type locationRequest struct {
	Lat float64 `json:"lat" binding:"required,min=-90,max=90"`
	Lng float64 `json:"lng" binding:"required,min=-180,max=180"`
}

// UpdateLocation handles POST /api/player/location.
func (h *PlayerHandler) UpdateLocation(c *gin.Context) {
	s, ok := loadSession(c, h.sm)
	if !ok {
		return
	}
	var req locationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	s.Lock()
	defer s.Unlock()
	s.Player.Location = &geo.Point{Lat: req.Lat, Lng: req.Lng}
	respond(c, gin.H{"location": s.Player.Location}, s.Persist())
}

type settingsRequest struct {
	SoundOn bool `json:"soundOn"`
}

// UpdateSettings handles POST /api/player/settings.
func (h *PlayerHandler) UpdateSettings(c *gin.Context) {
	s, ok := loadSession(c, h.sm)
	if !ok {
		return
	}
	var req settingsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	s.Lock()
	defer s.Unlock()
	s.Settings.SoundOn = req.SoundOn
	respond(c, gin.H{"settings": s.Settings}, s.Persist())
}
