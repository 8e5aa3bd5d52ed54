package enemy

import (
	"math"
	"math/rand"

	"github.com/google/uuid"
	"github.com/turfline/server/geo"
	"github.com/turfline/server/resource"
	"go.uber.org/zap"
)

// Facing is the direction tag derived from the last movement vector.
// It exists purely for the rendering layer.
type Facing string

const (
	FacingUp    Facing = "up"
	FacingDown  Facing = "down"
	FacingLeft  Facing = "left"
	FacingRight Facing = "right"
)

// Enemy is one live procedurally-generated enemy.
type Enemy struct {
	ID       string    `json:"id"`
	Location geo.Point `json:"location"`
	Tier     int       `json:"tier"`
	Power    int       `json:"power"`

	Health    int `json:"health"`
	MaxHealth int `json:"maxHealth"`
	Attack    int `json:"attack"`
	Defense   int `json:"defense"`

	Facing Facing               `json:"facing"`
	Loot   []resource.LootEntry `json:"-"`
}

// Drop is one item yielded by a loot roll.
type Drop struct {
	ItemID   string `json:"itemId"`
	Quantity int    `json:"quantity"`
}

// LootResult is the outcome of rolling an enemy's loot table.
type LootResult struct {
	Items []Drop `json:"items"`
	Money int64  `json:"money"`
}

// Universal money-drop entry applied to every enemy on top of its tier loot.
const (
	moneyDropChance  = 0.75
	moneyDropMaxMult = 3 // payout rolls uniformly in [power, power*3]
)

// Directory spawns and holds the live enemy batch for one session.
type Directory struct {
	tiers   []resource.TierSpec
	rng     *rand.Rand
	enemies map[string]*Enemy
	logger  *zap.Logger
}

// NewDirectory creates a Directory using the given tier table and random
// source. The rng is owned by the caller's session and must not be shared.
func NewDirectory(tiers []resource.TierSpec, rng *rand.Rand, logger *zap.Logger) *Directory {
	return &Directory{
		tiers:   tiers,
		rng:     rng,
		enemies: make(map[string]*Enemy),
		logger:  logger,
	}
}

// Spawn clears any existing enemies and creates count new ones uniformly
// distributed over the disc of radiusM meters around center.
func (d *Directory) Spawn(count int, center geo.Point, radiusM float64) []*Enemy {
	d.enemies = make(map[string]*Enemy, count)
	spawned := make([]*Enemy, 0, count)
	for i := 0; i < count; i++ {
		e := d.newEnemy(geo.RandomPointInRadius(d.rng, center, radiusM))
		d.enemies[e.ID] = e
		spawned = append(spawned, e)
	}
	if d.logger != nil {
		d.logger.Debug("enemy batch spawned", zap.Int("count", len(spawned)))
	}
	return spawned
}

func (d *Directory) newEnemy(loc geo.Point) *Enemy {
	tier := d.rollTier(d.rng.Float64())
	power := tier.PowerMin
	if tier.PowerMax > tier.PowerMin {
		power += d.rng.Intn(tier.PowerMax - tier.PowerMin + 1)
	}

	// One shared multiplier per enemy, applied to every derived stat.
	mult := 0.8 + d.rng.Float64()*0.4
	return &Enemy{
		ID:        uuid.New().String(),
		Location:  loc,
		Tier:      tier.Tier,
		Power:     power,
		Health:    scaled(power, 5, mult),
		MaxHealth: scaled(power, 5, mult),
		Attack:    scaled(power, 2, mult),
		Defense:   scaled(power, 1, mult),
		Facing:    FacingDown,
		Loot:      tier.Loot,
	}
}

func scaled(power, factor int, mult float64) int {
	v := int(math.Round(float64(power*factor) * mult))
	if v < 1 {
		v = 1
	}
	return v
}

// rollTier picks a tier by cumulative probability over the configured
// weights. x must be in [0,1); values past the cumulative sum fall into the
// last tier.
func (d *Directory) rollTier(x float64) resource.TierSpec {
	cum := 0.0
	for _, t := range d.tiers {
		cum += t.Weight
		if x < cum {
			return t
		}
	}
	return d.tiers[len(d.tiers)-1]
}

// All returns every live enemy.
func (d *Directory) All() []*Enemy {
	out := make([]*Enemy, 0, len(d.enemies))
	for _, e := range d.enemies {
		out = append(out, e)
	}
	return out
}

// Get returns the enemy with id, or nil.
func (d *Directory) Get(id string) *Enemy {
	return d.enemies[id]
}

// Remove deletes a defeated enemy. Returns false if it was not present.
func (d *Directory) Remove(id string) bool {
	if _, ok := d.enemies[id]; !ok {
		return false
	}
	delete(d.enemies, id)
	return true
}

// Count returns the number of live enemies.
func (d *Directory) Count() int { return len(d.enemies) }

// MoveAll applies one random jitter step of at most maxStepM meters per axis
// to every enemy and re-derives its facing from the dominant axis of the
// movement vector. Returns the moved enemies.
func (d *Directory) MoveAll(maxStepM float64) []*Enemy {
	moved := make([]*Enemy, 0, len(d.enemies))
	for _, e := range d.enemies {
		northM := (d.rng.Float64()*2 - 1) * maxStepM
		eastM := (d.rng.Float64()*2 - 1) * maxStepM
		e.Location = geo.OffsetM(e.Location, northM, eastM)
		e.Facing = facingFor(northM, eastM)
		moved = append(moved, e)
	}
	return moved
}

func facingFor(northM, eastM float64) Facing {
	if math.Abs(northM) >= math.Abs(eastM) {
		if northM >= 0 {
			return FacingUp
		}
		return FacingDown
	}
	if eastM >= 0 {
		return FacingRight
	}
	return FacingLeft
}
