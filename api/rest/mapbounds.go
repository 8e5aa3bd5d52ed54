package rest

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/turfline/server/game/session"
	"github.com/turfline/server/game/territory"
	"github.com/turfline/server/geo"
	"github.com/turfline/server/mapdata"
	"go.uber.org/zap"
)

// MapHandler handles map-region REST endpoints.
type MapHandler struct {
	sm       *session.Manager
	economy  *territory.Economy
	provider mapdata.Provider
	logger   *zap.Logger
}

// NewMapHandler creates a new MapHandler.
func NewMapHandler(sm *session.Manager, economy *territory.Economy, provider mapdata.Provider, logger *zap.Logger) *MapHandler {
	return &MapHandler{sm: sm, economy: economy, provider: provider, logger: logger}
}

type boundsRequest struct {
	MinLat float64 `json:"minLat" binding:"min=-90,max=90"`
	MinLng float64 `json:"minLng" binding:"min=-180,max=180"`
	MaxLat float64 `json:"maxLat" binding:"min=-90,max=90"`
	MaxLng float64 `json:"maxLng" binding:"min=-180,max=180"`
}

// Bounds handles POST /api/map/bounds: fetch the facilities of the visible
// region and merge them into the session caches. An upstream failure is not
// an error; the merge simply applies zero records.
func (h *MapHandler) Bounds(c *gin.Context) {
	s, ok := loadSession(c, h.sm)
	if !ok {
		return
	}
	var req boundsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if req.MinLat > req.MaxLat || req.MinLng > req.MaxLng {
		c.JSON(http.StatusBadRequest, gin.H{"error": "inverted bounds"})
		return
	}

	bounds := geo.Bounds{
		MinLat: req.MinLat, MinLng: req.MinLng,
		MaxLat: req.MaxLat, MaxLng: req.MaxLng,
	}
	records := mapdata.SafeFetch(c.Request.Context(), h.provider, bounds, h.logger)

	s.Lock()
	defer s.Unlock()
	h.economy.MergeRecords(s, records)

	businesses := make([]*session.Business, 0, len(s.Businesses))
	for _, b := range s.Businesses {
		businesses = append(businesses, b)
	}
	bases := make([]*session.Base, 0, len(s.Bases))
	for _, b := range s.Bases {
		bases = append(bases, b)
	}
	c.JSON(http.StatusOK, gin.H{
		"fetched":    len(records),
		"businesses": businesses,
		"bases":      bases,
	})
}
