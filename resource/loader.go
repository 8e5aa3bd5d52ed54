package resource

import (
	"encoding/json"
	"fmt"
	"os"
)

// LootEntry is one roll in a tier's loot table.
type LootEntry struct {
	ItemID string  `json:"itemId"`
	Chance float64 `json:"chance"` // 0..1 per-entry drop probability
	MinQty int     `json:"minQty"`
	MaxQty int     `json:"maxQty"`
}

// TierSpec configures one enemy tier: its roll weight, power range, and
// loot table. Weights across tiers must sum to 1.
type TierSpec struct {
	Tier     int         `json:"tier"`
	Weight   float64     `json:"weight"`
	PowerMin int         `json:"powerMin"`
	PowerMax int         `json:"powerMax"`
	Loot     []LootEntry `json:"loot"`
}

// defaultTiers is the built-in 60/30/10 tier table.
func defaultTiers() []TierSpec {
	return []TierSpec{
		{Tier: 1, Weight: 0.6, PowerMin: 5, PowerMax: 20, Loot: []LootEntry{
			{ItemID: "bandage", Chance: 0.5, MinQty: 1, MaxQty: 2},
			{ItemID: "lockpick", Chance: 0.2, MinQty: 1, MaxQty: 1},
		}},
		{Tier: 2, Weight: 0.3, PowerMin: 20, PowerMax: 60, Loot: []LootEntry{
			{ItemID: "energy_drink", Chance: 0.4, MinQty: 1, MaxQty: 2},
			{ItemID: "brass_knuckles", Chance: 0.1, MinQty: 1, MaxQty: 1},
			{ItemID: "casino_chip", Chance: 0.3, MinQty: 1, MaxQty: 5},
		}},
		{Tier: 3, Weight: 0.1, PowerMin: 60, PowerMax: 150, Loot: []LootEntry{
			{ItemID: "first_aid_kit", Chance: 0.5, MinQty: 1, MaxQty: 1},
			{ItemID: "switchblade", Chance: 0.15, MinQty: 1, MaxQty: 1},
			{ItemID: "gold_chain", Chance: 0.1, MinQty: 1, MaxQty: 1},
		}},
	}
}

// Loader holds the static item catalog and enemy tier tables.
type Loader struct {
	items []*ItemDefinition
	byID  map[string]*ItemDefinition
	tiers []TierSpec
}

// catalogFile is the on-disk override format.
type catalogFile struct {
	Items []*ItemDefinition `json:"items"`
	Tiers []TierSpec        `json:"tiers"`
}

// NewLoader builds a Loader with the built-in catalog. If path is non-empty,
// the file's items and tiers override the built-ins.
func NewLoader(path string) (*Loader, error) {
	l := &Loader{}
	l.install(defaultItems(), defaultTiers())
	if path != "" {
		if err := l.loadFile(path); err != nil {
			return nil, err
		}
	}
	return l, nil
}

func (l *Loader) loadFile(path string) error {
	raw, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("resource: read catalog: %w", err)
	}
	var f catalogFile
	if err := json.Unmarshal(raw, &f); err != nil {
		return fmt.Errorf("resource: parse catalog: %w", err)
	}
	items := f.Items
	if len(items) == 0 {
		items = defaultItems()
	}
	tiers := f.Tiers
	if len(tiers) == 0 {
		tiers = defaultTiers()
	}
	for _, def := range items {
		if err := validate(def); err != nil {
			return err
		}
	}
	l.install(items, tiers)
	return nil
}

func (l *Loader) install(items []*ItemDefinition, tiers []TierSpec) {
	byID := make(map[string]*ItemDefinition, len(items))
	for _, def := range items {
		byID[def.ID] = def
	}
	l.items = items
	l.byID = byID
	l.tiers = tiers
}

func validate(def *ItemDefinition) error {
	if def.ID == "" {
		return fmt.Errorf("resource: item with empty id")
	}
	switch def.Category {
	case CategoryConsumable, CategoryNonConsumable:
	case CategoryEquipment:
		if !ValidSlot(def.Slot) {
			return fmt.Errorf("resource: item %q has invalid slot %q", def.ID, def.Slot)
		}
	default:
		return fmt.Errorf("resource: item %q has unknown category %q", def.ID, def.Category)
	}
	return nil
}

// Item returns the definition for id, or nil if unknown.
func (l *Loader) Item(id string) *ItemDefinition {
	return l.byID[id]
}

// Items returns all definitions in catalog order.
func (l *Loader) Items() []*ItemDefinition {
	return l.items
}

// Tiers returns the enemy tier table.
func (l *Loader) Tiers() []TierSpec {
	return l.tiers
}
