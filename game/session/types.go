package session

import (
	"time"

	"github.com/turfline/server/geo"
)

// Attributes are the player's base attributes. Power is their sum.
type Attributes struct {
	Influence int `json:"influence"`
	Strength  int `json:"strength"`
	Agility   int `json:"agility"`
	Vitality  int `json:"vitality"`
	HitRate   int `json:"hitRate"`
}

// Sum returns the player power contributed by base attributes.
func (a Attributes) Sum() int {
	return a.Influence + a.Strength + a.Agility + a.Vitality + a.HitRate
}

// CharacterStats are the derived combat stats. They are recomputed from base
// attributes plus equipment bonuses and cached here, never treated as a
// source of truth.
type CharacterStats struct {
	Defence      int     `json:"defence"`
	EvasionRate  float64 `json:"evasionRate"`
	CriticalRate float64 `json:"criticalRate"`
	Damage       int     `json:"damage"`
}

// OrgRef identifies an organization. Copied by value wherever it is
// assigned, never shared by reference.
type OrgRef struct {
	Name         string `json:"name"`
	Abbreviation string `json:"abbreviation"`
}

// Player is the mutable player state within a session.
type Player struct {
	ID       string `json:"id"`
	Username string `json:"username"`
	Alias    string `json:"alias"`

	Level      int        `json:"level"`
	Experience int        `json:"experience"`
	Attributes Attributes `json:"stats"`

	CurrentHP int   `json:"hp"`
	MaxHP     int   `json:"maxHp"`
	Cash      int64 `json:"cash"`

	Organization *OrgRef    `json:"organization"`
	OrgBase      *geo.Point `json:"orgBaseLocation"`
	Location     *geo.Point `json:"location"`

	Stats CharacterStats `json:"characterStats"`

	// Daily protection-removal quota tracking. RemovalDay is the calendar
	// day (YYYY-MM-DD) the counter applies to; the counter resets when the
	// day rolls over.
	RemovalDay    string `json:"removalDay,omitempty"`
	RemovalsToday int    `json:"removalsToday,omitempty"`
}

// Power is the sum of base attributes.
func (p *Player) Power() int { return p.Attributes.Sum() }

// InventoryEntry is one owned item stack. Quantity is always ≥ 1;
// non-stackable items occupy one entry per unit owned.
type InventoryEntry struct {
	ItemID   string `json:"itemId"`
	Quantity int    `json:"quantity"`
}

// Protector is one player contributing power to a business's protection.
type Protector struct {
	UserID string `json:"userId"`
	Power  int    `json:"userPower"`
}

// Business is one live map facility in the territory cache.
type Business struct {
	ID       string    `json:"id"`
	Name     string    `json:"name"`
	Location geo.Point `json:"location"`
	Category string    `json:"category"`
	IsShop   bool      `json:"isShop"`

	LastCollectedAt time.Time   `json:"lastCollected"`
	ProtectingOrg   *OrgRef     `json:"protectingOrganization"`
	ProtectingUsers []Protector `json:"protectingUsers"`
	ProtectionPower int         `json:"protectionPower"`

	// ProfitControlled is runtime-only: recomputed from org-base proximity,
	// never persisted as a source of truth.
	ProfitControlled bool `json:"-"`
}

// HasDefaultState reports whether the business carries no protection and no
// collection history. Default-state businesses are excluded from snapshots.
func (b *Business) HasDefaultState() bool {
	return b.ProtectingOrg == nil && len(b.ProtectingUsers) == 0 &&
		b.ProtectionPower == 0 && b.LastCollectedAt.IsZero()
}

// IsProtector reports whether userID is listed as a protector.
func (b *Business) IsProtector(userID string) bool {
	for _, p := range b.ProtectingUsers {
		if p.UserID == userID {
			return true
		}
	}
	return false
}

// RecomputeProtectionPower rebuilds the cached power sum, clearing the
// protecting organization when the protector list is empty.
func (b *Business) RecomputeProtectionPower() {
	total := 0
	for _, p := range b.ProtectingUsers {
		total += p.Power
	}
	b.ProtectionPower = total
	if len(b.ProtectingUsers) == 0 {
		b.ProtectingOrg = nil
		b.ProtectionPower = 0
	}
}

// Base is an organization's home base on the map.
type Base struct {
	ID       string    `json:"id"`
	Name     string    `json:"name"`
	Location geo.Point `json:"location"`
	Org      OrgRef    `json:"org"`
}

// Settings are client-facing toggles carried through the snapshot.
type Settings struct {
	SoundOn bool `json:"soundOn"`
}
