package rest

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/turfline/server/config"
	"github.com/turfline/server/game/enemy"
	"github.com/turfline/server/game/item"
	"github.com/turfline/server/game/progress"
	"github.com/turfline/server/game/session"
	"github.com/turfline/server/gameerr"
	"go.uber.org/zap"
)

// EnemyHandler handles enemy REST endpoints.
type EnemyHandler struct {
	sm       *session.Manager
	cfg      config.GameConfig
	progress *progress.Engine
	items    *item.Service
	logger   *zap.Logger
}

// NewEnemyHandler creates a new EnemyHandler.
func NewEnemyHandler(sm *session.Manager, cfg config.GameConfig, engine *progress.Engine, items *item.Service, logger *zap.Logger) *EnemyHandler {
	return &EnemyHandler{sm: sm, cfg: cfg, progress: engine, items: items, logger: logger}
}

// List handles GET /api/enemies.
func (h *EnemyHandler) List(c *gin.Context) {
	s, ok := loadSession(c, h.sm)
	if !ok {
		return
	}
	s.Lock()
	defer s.Unlock()
	c.JSON(http.StatusOK, gin.H{"enemies": s.Enemies.All()})
}

// Spawn handles POST /api/enemies/spawn: replace the live batch with a fresh
// one around the player's position.
func (h *EnemyHandler) Spawn(c *gin.Context) {
	s, ok := loadSession(c, h.sm)
	if !ok {
		return
	}
	s.Lock()
	defer s.Unlock()

	p := s.Player
	if p.Location == nil {
		respond(c, nil, gameerr.Preconditionf("your location is unknown, enable positioning first"))
		return
	}
	for _, e := range s.Enemies.All() {
		s.Surface().RemoveMarker(e.ID)
	}
	spawned := s.Enemies.Spawn(h.cfg.EnemyCount, *p.Location, h.cfg.EnemySpawnRadiusM)
	for _, e := range spawned {
		s.Surface().UpsertMarker(enemy.MarkerFor(e))
	}
	c.JSON(http.StatusOK, gin.H{"enemies": spawned})
}

// Defeat handles POST /api/enemies/:id/defeat: remove the enemy, roll its
// loot into the inventory, pay out the money drop, and award experience
// equal to the enemy's power.
func (h *EnemyHandler) Defeat(c *gin.Context) {
	s, ok := loadSession(c, h.sm)
	if !ok {
		return
	}
	enemyID := c.Param("id")

	s.Lock()
	defer s.Unlock()

	e := s.Enemies.Get(enemyID)
	if e == nil {
		respond(c, nil, gameerr.NotFoundf("enemy %q is not on the map", enemyID))
		return
	}

	loot := s.Enemies.RollLoot(e)
	s.Enemies.Remove(enemyID)
	s.Surface().RemoveMarker(enemyID)

	// A full inventory stack loses the overflow; the defeat still stands.
	for _, drop := range loot.Items {
		if err := h.items.Add(s, drop.ItemID, drop.Quantity); err != nil {
			h.logger.Warn("loot item dropped",
				zap.String("player", s.Player.Username),
				zap.String("item", drop.ItemID),
				zap.Error(err))
		}
	}
	s.Player.Cash += loot.Money
	levels := h.progress.GainExperience(s, e.Power)

	err := s.Persist()
	respond(c, gin.H{
		"loot":         loot,
		"expGained":    e.Power,
		"levelsGained": levels,
		"level":        s.Player.Level,
		"cash":         s.Player.Cash,
	}, err)
}
