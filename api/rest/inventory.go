package rest

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/turfline/server/game/item"
	"github.com/turfline/server/game/session"
	"github.com/turfline/server/resource"
)

// InventoryHandler handles inventory and equipment REST endpoints.
type InventoryHandler struct {
	sm    *session.Manager
	items *item.Service
}

// NewInventoryHandler creates a new InventoryHandler.
func NewInventoryHandler(sm *session.Manager, items *item.Service) *InventoryHandler {
	return &InventoryHandler{sm: sm, items: items}
}

// List handles GET /api/inventory.
func (h *InventoryHandler) List(c *gin.Context) {
	s, ok := loadSession(c, h.sm)
	if !ok {
		return
	}
	s.Lock()
	defer s.Unlock()
	c.JSON(http.StatusOK, gin.H{
		"inventory": s.Inventory,
		"equipment": s.Equipment,
	})
}

type itemRequest struct {
	ItemID string `json:"itemId" binding:"required"`
}

// Use handles POST /api/inventory/use.
func (h *InventoryHandler) Use(c *gin.Context) {
	s, ok := loadSession(c, h.sm)
	if !ok {
		return
	}
	var req itemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	s.Lock()
	err := h.items.Use(s, req.ItemID)
	hp := s.Player.CurrentHP
	s.Unlock()
	respond(c, gin.H{"hp": hp}, err)
}

// Equip handles POST /api/equipment/equip.
func (h *InventoryHandler) Equip(c *gin.Context) {
	s, ok := loadSession(c, h.sm)
	if !ok {
		return
	}
	var req itemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	// Serialize while still holding the lock: the equipment map and stats
	// stay live and a concurrent action on the same account mutates them.
	s.Lock()
	defer s.Unlock()
	err := h.items.Equip(s, req.ItemID)
	respond(c, gin.H{
		"equipment":      s.Equipment,
		"characterStats": s.Player.Stats,
		"maxHp":          s.Player.MaxHP,
	}, err)
}

type unequipRequest struct {
	Slot string `json:"slot" binding:"required"`
}

// Unequip handles POST /api/equipment/unequip.
func (h *InventoryHandler) Unequip(c *gin.Context) {
	s, ok := loadSession(c, h.sm)
	if !ok {
		return
	}
	var req unequipRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	s.Lock()
	defer s.Unlock()
	err := h.items.Unequip(s, resource.Slot(req.Slot))
	respond(c, gin.H{
		"equipment":      s.Equipment,
		"characterStats": s.Player.Stats,
		"maxHp":          s.Player.MaxHP,
	}, err)
}
