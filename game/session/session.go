package session

import (
	"math/rand"
	"sync"

	"github.com/google/uuid"
	"github.com/turfline/server/game/enemy"
	"github.com/turfline/server/gameerr"
	"github.com/turfline/server/mapsurface"
	"github.com/turfline/server/resource"
	"go.uber.org/zap"
)

// Saver persists a session snapshot. Implemented by the snapshot service.
type Saver interface {
	Save(s *Session) error
}

// Session is the aggregate owning all mutable gameplay state for one
// account. Every player action and timer tick takes the session lock for its
// whole duration, so compound invariants hold without finer-grained locking.
type Session struct {
	mu sync.Mutex

	AccountID int64
	Player    *Player
	Inventory []*InventoryEntry
	// Equipment maps each fixed slot to the equipped item id, or "" when
	// empty. An equipped item id never also appears in Inventory.
	Equipment map[resource.Slot]string

	Businesses map[string]*Business
	Bases      map[string]*Base
	Enemies    *enemy.Directory
	Settings   Settings

	saver   Saver
	surface mapsurface.Surface
	logger  *zap.Logger
}

// New creates a fresh session with a level-1 player.
func New(accountID int64, username, alias string, tiers []resource.TierSpec, logger *zap.Logger) *Session {
	rng := rand.New(rand.NewSource(rand.Int63()))
	return &Session{
		AccountID:  accountID,
		Player:     NewPlayer(username, alias),
		Equipment:  emptyEquipment(),
		Businesses: make(map[string]*Business),
		Bases:      make(map[string]*Base),
		Enemies:    enemy.NewDirectory(tiers, rng, logger),
		Settings:   Settings{SoundOn: true},
		surface:    mapsurface.Null{},
		logger:     logger,
	}
}

// NewPlayer builds the default level-1 player state.
func NewPlayer(username, alias string) *Player {
	p := &Player{
		ID:       uuid.New().String(),
		Username: username,
		Alias:    alias,
		Level:    1,
		Attributes: Attributes{
			Influence: 1,
			Strength:  5,
			Agility:   5,
			Vitality:  5,
			HitRate:   5,
		},
		Cash: 500,
	}
	p.MaxHP = 100 + p.Attributes.Vitality*10
	p.CurrentHP = p.MaxHP
	return p
}

func emptyEquipment() map[resource.Slot]string {
	eq := make(map[resource.Slot]string, len(resource.Slots()))
	for _, s := range resource.Slots() {
		eq[s] = ""
	}
	return eq
}

// Lock takes the session's critical-section lock.
func (s *Session) Lock() { s.mu.Lock() }

// Unlock releases the session lock.
func (s *Session) Unlock() { s.mu.Unlock() }

// SetSaver installs the persistence collaborator.
func (s *Session) SetSaver(saver Saver) { s.saver = saver }

// SetSurface installs the map-surface collaborator. Passing nil resets to a
// discarding surface.
func (s *Session) SetSurface(surface mapsurface.Surface) {
	if surface == nil {
		surface = mapsurface.Null{}
	}
	s.surface = surface
}

// Surface returns the map-surface collaborator.
func (s *Session) Surface() mapsurface.Surface { return s.surface }

// Logger returns the session logger.
func (s *Session) Logger() *zap.Logger { return s.logger }

// Persist writes the current snapshot through the saver. A storage failure
// is non-fatal: it is logged, and returned as a persistence error so the API
// layer can surface a warning while gameplay continues in memory.
func (s *Session) Persist() error {
	if s.saver == nil {
		return nil
	}
	if err := s.saver.Save(s); err != nil {
		s.logger.Warn("snapshot save failed, continuing with in-memory state",
			zap.Int64("account_id", s.AccountID), zap.Error(err))
		return gameerr.Persistencef(err, "failed to save game state")
	}
	return nil
}

// FindInventory returns the first inventory entry for itemID, or nil.
func (s *Session) FindInventory(itemID string) *InventoryEntry {
	for _, e := range s.Inventory {
		if e.ItemID == itemID {
			return e
		}
	}
	return nil
}

// InventoryCount returns the total quantity of itemID across all entries.
func (s *Session) InventoryCount(itemID string) int {
	total := 0
	for _, e := range s.Inventory {
		if e.ItemID == itemID {
			total += e.Quantity
		}
	}
	return total
}

// ProtectedBusinessIDs lists the ids of businesses this player protects.
func (s *Session) ProtectedBusinessIDs() []string {
	ids := make([]string, 0)
	for id, b := range s.Businesses {
		if b.IsProtector(s.Player.ID) {
			ids = append(ids, id)
		}
	}
	return ids
}

// CountProtected returns how many businesses this player currently protects.
func (s *Session) CountProtected() int {
	n := 0
	for _, b := range s.Businesses {
		if b.IsProtector(s.Player.ID) {
			n++
		}
	}
	return n
}
