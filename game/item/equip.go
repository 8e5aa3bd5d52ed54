package item

import (
	"fmt"
	"strings"

	"github.com/turfline/server/game/session"
	"github.com/turfline/server/gameerr"
	"github.com/turfline/server/resource"
	"go.uber.org/zap"
)

// Equip moves itemID from the inventory into its slot. A previously equipped
// item in the same slot is returned to the inventory first. Equipping
// recomputes every derived stat and persists.
func (svc *Service) Equip(s *session.Session, itemID string) error {
	def := svc.res.Item(itemID)
	if def == nil {
		return gameerr.Validationf("unknown item %q", itemID)
	}
	if def.Category != resource.CategoryEquipment {
		return gameerr.Validationf("%s is not equipment", def.Name)
	}
	if s.FindInventory(itemID) == nil {
		return gameerr.NotFoundf("item %q not found in inventory", itemID)
	}
	if err := svc.checkRequirements(s, def); err != nil {
		return err
	}

	// Implicit unequip of the occupied slot; stat recompute is suppressed
	// because the equip below ends with a full recompute anyway.
	if s.Equipment[def.Slot] != "" {
		if err := svc.unequip(s, def.Slot, false); err != nil {
			return err
		}
	}

	if err := removeEntries(s, itemID, 1); err != nil {
		return err
	}
	s.Equipment[def.Slot] = itemID
	svc.progress.RecalculateStats(s)
	svc.logger.Debug("item equipped",
		zap.String("player", s.Player.Username),
		zap.String("item", itemID),
		zap.String("slot", string(def.Slot)))
	return s.Persist()
}

// Unequip empties slot, returning its item to the inventory. A no-op when
// the slot is already empty.
func (svc *Service) Unequip(s *session.Session, slot resource.Slot) error {
	if !resource.ValidSlot(slot) {
		return gameerr.Validationf("unknown equipment slot %q", slot)
	}
	if err := svc.unequip(s, slot, true); err != nil {
		return err
	}
	return s.Persist()
}

func (svc *Service) unequip(s *session.Session, slot resource.Slot, recompute bool) error {
	itemID := s.Equipment[slot]
	if itemID == "" {
		return nil
	}
	def := svc.res.Item(itemID)
	if def == nil {
		return gameerr.Validationf("equipped item %q missing from catalog", itemID)
	}
	if err := addEntries(s, def, 1); err != nil {
		return err
	}
	s.Equipment[slot] = ""
	if recompute {
		svc.progress.RecalculateStats(s)
	}
	return nil
}

// checkRequirements verifies every equip requirement against the player's
// level and base attributes, enumerating each unmet one.
func (svc *Service) checkRequirements(s *session.Session, def *resource.ItemDefinition) error {
	if len(def.Requirements) == 0 {
		return nil
	}
	p := s.Player
	var unmet []string
	for _, key := range requirementOrder(def.Requirements) {
		required := def.Requirements[key]
		have, ok := requirementValue(p, key)
		if !ok {
			return gameerr.Validationf("item %q has unknown requirement %q", def.ID, key)
		}
		if have < required {
			unmet = append(unmet, fmt.Sprintf("%s %d required (have %d)", key, required, have))
		}
	}
	if len(unmet) > 0 {
		return gameerr.Preconditionf("requirements not met for %s: %s",
			def.Name, strings.Join(unmet, ", "))
	}
	return nil
}

// requirementOrder yields the requirement keys in a stable order so the
// rejection message is deterministic.
func requirementOrder(reqs map[string]int) []string {
	known := []string{
		resource.ReqLevel, resource.ReqInfluence, resource.ReqStrength,
		resource.ReqAgility, resource.ReqVitality, resource.ReqHitRate,
	}
	var keys []string
	for _, k := range known {
		if _, ok := reqs[k]; ok {
			keys = append(keys, k)
		}
	}
	for k := range reqs {
		if !contains(known, k) {
			keys = append(keys, k)
		}
	}
	return keys
}

func contains(list []string, v string) bool {
	for _, s := range list {
		if s == v {
			return true
		}
	}
	return false
}

func requirementValue(p *session.Player, key string) (int, bool) {
	switch key {
	case resource.ReqLevel:
		return p.Level, true
	case resource.ReqInfluence:
		return p.Attributes.Influence, true
	case resource.ReqStrength:
		return p.Attributes.Strength, true
	case resource.ReqAgility:
		return p.Attributes.Agility, true
	case resource.ReqVitality:
		return p.Attributes.Vitality, true
	case resource.ReqHitRate:
		return p.Attributes.HitRate, true
	}
	return 0, false
}
