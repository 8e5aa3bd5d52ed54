package resource

// Category is the item variant tag.
type Category string

const (
	CategoryConsumable    Category = "consumable"
	CategoryNonConsumable Category = "non_consumable"
	CategoryEquipment     Category = "equipment"
)

// Slot names one of the fixed equipment slots.
type Slot string

const (
	SlotHead      Slot = "head"
	SlotMask      Slot = "mask"
	SlotBody      Slot = "body"
	SlotGloves    Slot = "gloves"
	SlotPants     Slot = "pants"
	SlotBoots     Slot = "boots"
	SlotAccessory Slot = "accessory"
	SlotCharm     Slot = "charm"
	SlotWeapon    Slot = "weapon"
)

// Slots lists every equipment slot in display order.
func Slots() []Slot {
	return []Slot{
		SlotHead, SlotMask, SlotBody, SlotGloves, SlotPants,
		SlotBoots, SlotAccessory, SlotCharm, SlotWeapon,
	}
}

// ValidSlot reports whether s is one of the fixed slots.
func ValidSlot(s Slot) bool {
	for _, known := range Slots() {
		if s == known {
			return true
		}
	}
	return false
}

// Requirement keys for equipment. Values are compared against the player's
// level and base attributes.
const (
	ReqLevel     = "level"
	ReqInfluence = "influence"
	ReqStrength  = "strength"
	ReqAgility   = "agility"
	ReqVitality  = "vitality"
	ReqHitRate   = "hitRate"
)

// StatBonuses are the derived-stat contributions of one equipped item.
type StatBonuses struct {
	MaxHP        int `json:"maxHp,omitempty"`
	Defence      int `json:"defence,omitempty"`
	Damage       int `json:"damage,omitempty"`
	EvasionRate  int `json:"evasionRate,omitempty"`
	HitRate      int `json:"hitRate,omitempty"`
	CriticalRate int `json:"criticalRate,omitempty"`
}

// ItemDefinition is an immutable catalog entry. Category selects which of the
// variant fields apply: Heal for consumables; Slot, Bonuses and Requirements
// for equipment.
type ItemDefinition struct {
	ID        string   `json:"id"`
	Name      string   `json:"name"`
	Category  Category `json:"category"`
	Stackable bool     `json:"stackable"`
	MaxStack  int      `json:"maxStack,omitempty"`

	// Consumable payload.
	Heal int `json:"heal,omitempty"`

	// Equipment payload.
	Slot         Slot           `json:"slot,omitempty"`
	Bonuses      StatBonuses    `json:"bonuses,omitempty"`
	Requirements map[string]int `json:"requirements,omitempty"`
}

// defaultItems is the built-in catalog, used when no catalog file is
// configured. IDs are referenced by the default enemy loot tables.
func defaultItems() []*ItemDefinition {
	return []*ItemDefinition{
		{ID: "bandage", Name: "Bandage", Category: CategoryConsumable, Stackable: true, MaxStack: 20, Heal: 25},
		{ID: "first_aid_kit", Name: "First Aid Kit", Category: CategoryConsumable, Stackable: true, MaxStack: 5, Heal: 100},
		{ID: "energy_drink", Name: "Energy Drink", Category: CategoryConsumable, Stackable: true, MaxStack: 10, Heal: 50},
		{ID: "lockpick", Name: "Lockpick", Category: CategoryNonConsumable, Stackable: true, MaxStack: 99},
		{ID: "casino_chip", Name: "Casino Chip", Category: CategoryNonConsumable, Stackable: true, MaxStack: 999},

		{ID: "fedora", Name: "Fedora", Category: CategoryEquipment, Slot: SlotHead,
			Bonuses: StatBonuses{EvasionRate: 2}},
		{ID: "ski_mask", Name: "Ski Mask", Category: CategoryEquipment, Slot: SlotMask,
			Bonuses: StatBonuses{CriticalRate: 2}},
		{ID: "leather_jacket", Name: "Leather Jacket", Category: CategoryEquipment, Slot: SlotBody,
			Bonuses: StatBonuses{Defence: 5}},
		{ID: "kevlar_vest", Name: "Kevlar Vest", Category: CategoryEquipment, Slot: SlotBody,
			Bonuses:      StatBonuses{Defence: 15, MaxHP: 20},
			Requirements: map[string]int{ReqLevel: 5, ReqVitality: 8}},
		{ID: "fingerless_gloves", Name: "Fingerless Gloves", Category: CategoryEquipment, Slot: SlotGloves,
			Bonuses: StatBonuses{Damage: 2}},
		{ID: "cargo_pants", Name: "Cargo Pants", Category: CategoryEquipment, Slot: SlotPants,
			Bonuses: StatBonuses{Defence: 3}},
		{ID: "steel_toe_boots", Name: "Steel Toe Boots", Category: CategoryEquipment, Slot: SlotBoots,
			Bonuses: StatBonuses{Damage: 3, Defence: 2}},
		{ID: "gold_chain", Name: "Gold Chain", Category: CategoryEquipment, Slot: SlotAccessory,
			Bonuses: StatBonuses{HitRate: 3}},
		{ID: "rabbit_foot", Name: "Rabbit's Foot", Category: CategoryEquipment, Slot: SlotCharm,
			Bonuses: StatBonuses{CriticalRate: 5}},
		{ID: "brass_knuckles", Name: "Brass Knuckles", Category: CategoryEquipment, Slot: SlotWeapon,
			Bonuses: StatBonuses{Damage: 5}},
		{ID: "switchblade", Name: "Switchblade", Category: CategoryEquipment, Slot: SlotWeapon,
			Bonuses:      StatBonuses{Damage: 10, CriticalRate: 3},
			Requirements: map[string]int{ReqAgility: 6}},
		{ID: "sawn_off", Name: "Sawn-Off Shotgun", Category: CategoryEquipment, Slot: SlotWeapon,
			Bonuses:      StatBonuses{Damage: 25, HitRate: -2},
			Requirements: map[string]int{ReqLevel: 10, ReqStrength: 12}},
	}
}
