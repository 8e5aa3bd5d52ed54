package item

import (
	"github.com/turfline/server/game/progress"
	"github.com/turfline/server/game/session"
	"github.com/turfline/server/gameerr"
	"github.com/turfline/server/resource"
	"go.uber.org/zap"
)

// Service handles inventory and equipment operations on a session.
// All methods expect the caller to hold the session lock.
type Service struct {
	res      *resource.Loader
	progress *progress.Engine
	logger   *zap.Logger
}

// NewService creates an item Service.
func NewService(res *resource.Loader, progress *progress.Engine, logger *zap.Logger) *Service {
	return &Service{res: res, progress: progress, logger: logger}
}

// Add puts qty units of itemID into the inventory. Stackable items merge
// into their existing entry; non-stackable items get one entry per unit.
// Triggers a persist.
func (svc *Service) Add(s *session.Session, itemID string, qty int) error {
	def := svc.res.Item(itemID)
	if def == nil {
		return gameerr.Validationf("unknown item %q", itemID)
	}
	if qty <= 0 {
		return gameerr.Validationf("quantity must be positive, got %d", qty)
	}
	if err := addEntries(s, def, qty); err != nil {
		return err
	}
	return s.Persist()
}

// addEntries applies the stacking rules without persisting, so equip and
// unequip can reuse it inside their own pipeline.
func addEntries(s *session.Session, def *resource.ItemDefinition, qty int) error {
	if def.Stackable {
		entry := s.FindInventory(def.ID)
		if entry == nil {
			entry = &session.InventoryEntry{ItemID: def.ID}
			s.Inventory = append(s.Inventory, entry)
		}
		if def.MaxStack > 0 && entry.Quantity+qty > def.MaxStack {
			// Undo the empty entry if we just created it.
			if entry.Quantity == 0 {
				removeEntry(s, entry)
			}
			return gameerr.Preconditionf("cannot carry more than %d × %s", def.MaxStack, def.Name)
		}
		entry.Quantity += qty
		return nil
	}
	// Non-stackable: one entry per unit, never merged.
	for i := 0; i < qty; i++ {
		s.Inventory = append(s.Inventory, &session.InventoryEntry{ItemID: def.ID, Quantity: 1})
	}
	return nil
}

// Remove takes qty units of itemID out of the inventory. Fails without
// side effects when the player owns fewer than qty. Entries never remain at
// zero quantity. Triggers a persist.
func (svc *Service) Remove(s *session.Session, itemID string, qty int) error {
	if qty <= 0 {
		return gameerr.Validationf("quantity must be positive, got %d", qty)
	}
	if err := removeEntries(s, itemID, qty); err != nil {
		return err
	}
	return s.Persist()
}

func removeEntries(s *session.Session, itemID string, qty int) error {
	if s.InventoryCount(itemID) < qty {
		return gameerr.NotFoundf("item %q not found in sufficient quantity", itemID)
	}
	remaining := qty
	kept := s.Inventory[:0]
	for _, e := range s.Inventory {
		if remaining > 0 && e.ItemID == itemID {
			take := e.Quantity
			if take > remaining {
				take = remaining
			}
			e.Quantity -= take
			remaining -= take
		}
		if e.Quantity > 0 {
			kept = append(kept, e)
		}
	}
	s.Inventory = kept
	return nil
}

func removeEntry(s *session.Session, target *session.InventoryEntry) {
	kept := s.Inventory[:0]
	for _, e := range s.Inventory {
		if e != target {
			kept = append(kept, e)
		}
	}
	s.Inventory = kept
}

// Use consumes one unit of a consumable, applying its heal effect.
func (svc *Service) Use(s *session.Session, itemID string) error {
	def := svc.res.Item(itemID)
	if def == nil {
		return gameerr.Validationf("unknown item %q", itemID)
	}
	switch def.Category {
	case resource.CategoryConsumable:
	case resource.CategoryEquipment:
		return gameerr.Preconditionf("%s is equipment, equip it instead", def.Name)
	default:
		return gameerr.Preconditionf("%s cannot be used", def.Name)
	}
	if err := removeEntries(s, itemID, 1); err != nil {
		return err
	}
	if def.Heal > 0 {
		if err := svc.progress.Heal(s, def.Heal); err != nil {
			return err
		}
		return nil
	}
	return s.Persist()
}
