package progress

import (
	"github.com/turfline/server/game/session"
	"github.com/turfline/server/resource"
	"go.uber.org/zap"
)

// ExpNeeded returns the experience required to advance past level.
func ExpNeeded(level int) int {
	return level * 100
}

// Engine recomputes derived player stats and applies experience and HP
// changes. All methods expect the caller to hold the session lock.
type Engine struct {
	res    *resource.Loader
	logger *zap.Logger

	// onPowerChange, when set, is notified after every stat recompute so
	// the ranking can track player power. It must not block.
	onPowerChange func(username string, power int)
}

// NewEngine creates a progression Engine over the item catalog.
func NewEngine(res *resource.Loader, logger *zap.Logger) *Engine {
	return &Engine{res: res, logger: logger}
}

// OnPowerChange registers the power-ranking callback.
func (e *Engine) OnPowerChange(fn func(username string, power int)) {
	e.onPowerChange = fn
}

// GainExperience adds amount experience, applying as many level-ups as the
// total covers. Non-positive amounts are no-ops. Returns the number of
// levels gained.
func (e *Engine) GainExperience(s *session.Session, amount int) int {
	if amount <= 0 {
		return 0
	}
	p := s.Player
	p.Experience += amount
	levels := 0
	for p.Experience >= ExpNeeded(p.Level) {
		p.Experience -= ExpNeeded(p.Level)
		p.Level++
		levels++
	}
	if levels > 0 {
		e.RecalculateStats(s)
		e.logger.Info("level up",
			zap.String("player", p.Username),
			zap.Int("level", p.Level),
			zap.Int("gained", levels))
	}
	return levels
}

// equipmentBonuses sums the stat bonuses of every equipped item.
func (e *Engine) equipmentBonuses(s *session.Session) resource.StatBonuses {
	var total resource.StatBonuses
	for _, itemID := range s.Equipment {
		if itemID == "" {
			continue
		}
		def := e.res.Item(itemID)
		if def == nil {
			continue
		}
		total.MaxHP += def.Bonuses.MaxHP
		total.Defence += def.Bonuses.Defence
		total.Damage += def.Bonuses.Damage
		total.EvasionRate += def.Bonuses.EvasionRate
		total.HitRate += def.Bonuses.HitRate
		total.CriticalRate += def.Bonuses.CriticalRate
	}
	return total
}

// CalculateMaxHP recomputes the HP pool: 100 + vitality×10 plus equipment
// maxHp bonuses. Current HP is clamped to the new maximum but never raised.
func (e *Engine) CalculateMaxHP(s *session.Session) {
	p := s.Player
	p.MaxHP = 100 + p.Attributes.Vitality*10 + e.equipmentBonuses(s).MaxHP
	if p.CurrentHP > p.MaxHP {
		p.CurrentHP = p.MaxHP
	}
}

// RecalculateStats rebuilds every derived combat stat from base attributes
// plus equipment bonuses. The HP pool is always recomputed first.
func (e *Engine) RecalculateStats(s *session.Session) {
	e.CalculateMaxHP(s)

	p := s.Player
	bonuses := e.equipmentBonuses(s)

	stats := session.CharacterStats{}
	stats.Damage = p.Attributes.Strength + bonuses.Damage
	stats.Defence = p.Attributes.Vitality*2 + bonuses.Defence
	stats.EvasionRate = float64(p.Attributes.Agility)/2 + float64(bonuses.EvasionRate)
	stats.CriticalRate = float64(p.Attributes.HitRate) +
		float64(bonuses.HitRate) + float64(bonuses.CriticalRate)
	p.Stats = stats

	if e.onPowerChange != nil {
		e.onPowerChange(p.Username, p.Power())
	}
}

// Heal raises current HP by amount, clamped to the maximum. Non-positive
// amounts are no-ops. Triggers a persist; the returned error is the
// non-fatal persistence warning, if any.
func (e *Engine) Heal(s *session.Session, amount int) error {
	if amount <= 0 {
		return nil
	}
	p := s.Player
	p.CurrentHP += amount
	if p.CurrentHP > p.MaxHP {
		p.CurrentHP = p.MaxHP
	}
	return s.Persist()
}

// Damage lowers current HP by amount, clamped to zero. Non-positive amounts
// are no-ops. Triggers a persist.
func (e *Engine) Damage(s *session.Session, amount int) error {
	if amount <= 0 {
		return nil
	}
	p := s.Player
	p.CurrentHP -= amount
	if p.CurrentHP < 0 {
		p.CurrentHP = 0
	}
	return s.Persist()
}

// RegenTick applies one passive regeneration step: heal by amount when
// below the HP cap. Meant to be driven by a fixed-interval scheduler task.
func (e *Engine) RegenTick(s *session.Session, amount int) {
	if s.Player.CurrentHP >= s.Player.MaxHP {
		return
	}
	_ = e.Heal(s, amount)
}
