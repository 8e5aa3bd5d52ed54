package territory

import (
	"math"
	"time"

	"github.com/turfline/server/config"
	"github.com/turfline/server/game/session"
	"github.com/turfline/server/gameerr"
	"github.com/turfline/server/geo"
	"github.com/turfline/server/mapdata"
	"github.com/turfline/server/mapsurface"
	"go.uber.org/zap"
)

// Economy runs the business cache, protection contention, and profit
// accrual rules. Business control has two independent axes: profit control
// (organization-base proximity) and protection (org-vs-org contention).
// All methods expect the caller to hold the session lock.
type Economy struct {
	cfg    config.GameConfig
	logger *zap.Logger
	now    func() time.Time
}

// NewEconomy creates the territory Economy.
func NewEconomy(cfg config.GameConfig, logger *zap.Logger) *Economy {
	return &Economy{cfg: cfg, logger: logger, now: time.Now}
}

// SetNow overrides the clock. Tests only.
func (e *Economy) SetNow(now func() time.Time) { e.now = now }

// MergeRecords reconciles freshly fetched facility records into the session
// caches. Merging is keyed by stable facility id and idempotent, so stale
// fetches apply harmlessly. A business already in the cache keeps its
// protection and collection state; a business or base whose upstream category
// fell off the allow-list is evicted. Unknown off-list records are ignored.
func (e *Economy) MergeRecords(s *session.Session, records []mapdata.RawRecord) {
	for _, r := range records {
		switch mapdata.Classify(r) {
		case mapdata.KindBusiness:
			b, ok := s.Businesses[r.ID]
			if !ok {
				b = &session.Business{ID: r.ID}
				s.Businesses[r.ID] = b
			}
			b.Name = r.Name
			b.Location = r.Location
			b.Category = r.Category
			b.IsShop = mapdata.IsShop(r.Category)
			e.publishBusiness(s, b)
		case mapdata.KindBase:
			base := &session.Base{
				ID:       r.ID,
				Name:     r.Name,
				Location: r.Location,
				Org:      session.OrgRef{Name: r.Name, Abbreviation: orgAbbrev(r.Name)},
			}
			s.Bases[r.ID] = base
			e.publishBase(s, base)
		default:
			if _, ok := s.Businesses[r.ID]; ok {
				delete(s.Businesses, r.ID)
				s.Surface().RemoveMarker(r.ID)
			}
			if _, ok := s.Bases[r.ID]; ok {
				delete(s.Bases, r.ID)
				s.Surface().RemoveMarker(r.ID)
			}
		}
	}
	e.RefreshProfitControl(s)
	_ = s.Persist()
}

// RefreshProfitControl re-evaluates the proximity predicate for every cached
// business. A transition into control resets the collection timestamp so
// profit accrues from zero rather than retroactively.
func (e *Economy) RefreshProfitControl(s *session.Session) {
	p := s.Player
	for _, b := range s.Businesses {
		controlled := p.Organization != nil && p.OrgBase != nil &&
			geo.DistanceM(b.Location, *p.OrgBase) <= e.cfg.TerritoryRadiusM
		if controlled && !b.ProfitControlled {
			b.LastCollectedAt = e.now()
		}
		b.ProfitControlled = controlled
	}
}

// PotentialProfit returns the collectible profit accrued by b: elapsed time
// since the last collection, capped at the accumulation window, times the
// per-minute rate, floored to whole dollars. Zero when b is not
// profit-controlled.
func (e *Economy) PotentialProfit(b *session.Business) int64 {
	if !b.ProfitControlled || b.LastCollectedAt.IsZero() {
		return 0
	}
	elapsed := e.now().Sub(b.LastCollectedAt)
	maxAccum := time.Duration(e.cfg.MaxAccumulationMin) * time.Minute
	if elapsed > maxAccum {
		elapsed = maxAccum
	}
	if elapsed < 0 {
		return 0
	}
	return int64(math.Floor(elapsed.Minutes() * e.cfg.ProfitPerMinute))
}

// ActivateProtection adds the player as a protector of the business,
// claiming it for the player's organization when unclaimed.
func (e *Economy) ActivateProtection(s *session.Session, businessID string) error {
	b, ok := s.Businesses[businessID]
	if !ok {
		return gameerr.NotFoundf("business %q is not on the map", businessID)
	}
	p := s.Player
	if p.Location == nil {
		return gameerr.Preconditionf("your location is unknown, enable positioning first")
	}
	if p.Organization == nil {
		return gameerr.Preconditionf("you must belong to an organization to protect a business")
	}
	dist := geo.DistanceM(*p.Location, b.Location)
	if dist > e.cfg.ProtectionRangeM {
		return gameerr.Preconditionf("%s is %.0fm away, must be within %.0fm",
			b.Name, dist, e.cfg.ProtectionRangeM)
	}
	if b.ProtectingOrg != nil && *b.ProtectingOrg != *p.Organization {
		// Contesting a rival organization's claim is a hard rejection;
		// the slot is held until abandoned.
		return gameerr.Preconditionf("%s is already protected by %s",
			b.Name, b.ProtectingOrg.Name)
	}
	if b.IsProtector(p.ID) {
		return gameerr.Preconditionf("you are already protecting %s", b.Name)
	}
	if b.ProtectingOrg != nil && len(b.ProtectingUsers) >= e.cfg.MaxProtectingUsers {
		return gameerr.Quotaf("%s already has the maximum of %d protectors",
			b.Name, e.cfg.MaxProtectingUsers)
	}
	if s.CountProtected() >= e.cfg.MaxProtectedBusinesses {
		return gameerr.Quotaf("you cannot protect more than %d businesses at once",
			e.cfg.MaxProtectedBusinesses)
	}

	if b.ProtectingOrg == nil {
		// Fresh or abandoned slot: the claiming org starts with a clean
		// protector list. The OrgRef is copied, never shared.
		b.ProtectingUsers = b.ProtectingUsers[:0]
		org := *p.Organization
		b.ProtectingOrg = &org
	}
	b.ProtectingUsers = append(b.ProtectingUsers, session.Protector{UserID: p.ID, Power: p.Power()})
	b.RecomputeProtectionPower()

	e.logger.Info("protection activated",
		zap.String("player", p.Username),
		zap.String("business", b.Name),
		zap.Int("protection_power", b.ProtectionPower))
	e.publishBusiness(s, b)
	return s.Persist()
}

// CollectProfit pays out the accrued profit of businessID. The player's
// organization must hold the protection claim (proximity alone does not
// grant collection), and the player must be within collection range.
func (e *Economy) CollectProfit(s *session.Session, businessID string) (int64, error) {
	b, ok := s.Businesses[businessID]
	if !ok {
		return 0, gameerr.NotFoundf("business %q is not on the map", businessID)
	}
	p := s.Player
	if p.Location == nil {
		return 0, gameerr.Preconditionf("your location is unknown, enable positioning first")
	}
	if p.Organization == nil || b.ProtectingOrg == nil || *b.ProtectingOrg != *p.Organization {
		return 0, gameerr.Preconditionf("%s is not protected by your organization", b.Name)
	}
	dist := geo.DistanceM(*p.Location, b.Location)
	if dist > e.cfg.CollectionRangeM {
		return 0, gameerr.Preconditionf("%s is %.0fm away, must be within %.0fm to collect",
			b.Name, dist, e.cfg.CollectionRangeM)
	}

	profit := e.PotentialProfit(b)
	p.Cash += profit
	b.LastCollectedAt = e.now()

	e.logger.Info("profit collected",
		zap.String("player", p.Username),
		zap.String("business", b.Name),
		zap.Int64("profit", profit))
	e.publishBusiness(s, b)
	return profit, s.Persist()
}

// RemoveProtection withdraws the player from businessID's protector list.
// Removals are limited per calendar day; the counter resets on date
// rollover and is persisted with the snapshot.
func (e *Economy) RemoveProtection(s *session.Session, businessID string) error {
	b, ok := s.Businesses[businessID]
	if !ok {
		return gameerr.NotFoundf("business %q is not on the map", businessID)
	}
	p := s.Player
	e.resetQuotaIfNewDay(p)
	if p.RemovalsToday >= e.cfg.MaxDailyRemovals {
		return gameerr.Quotaf("you can only remove protection %d times per day",
			e.cfg.MaxDailyRemovals)
	}
	if !b.IsProtector(p.ID) {
		return gameerr.Preconditionf("you are not protecting %s", b.Name)
	}

	kept := b.ProtectingUsers[:0]
	for _, u := range b.ProtectingUsers {
		if u.UserID != p.ID {
			kept = append(kept, u)
		}
	}
	b.ProtectingUsers = kept
	b.RecomputeProtectionPower()
	p.RemovalsToday++

	e.logger.Info("protection removed",
		zap.String("player", p.Username),
		zap.String("business", b.Name),
		zap.Int("removals_today", p.RemovalsToday))
	e.publishBusiness(s, b)
	return s.Persist()
}

func (e *Economy) resetQuotaIfNewDay(p *session.Player) {
	day := e.now().Format("2006-01-02")
	if p.RemovalDay != day {
		p.RemovalDay = day
		p.RemovalsToday = 0
	}
}

func (e *Economy) publishBusiness(s *session.Session, b *session.Business) {
	props := map[string]interface{}{
		"category":         b.Category,
		"isShop":           b.IsShop,
		"protectionPower":  b.ProtectionPower,
		"profitControlled": b.ProfitControlled,
	}
	if b.ProtectingOrg != nil {
		props["protectingOrg"] = b.ProtectingOrg.Abbreviation
	}
	s.Surface().UpsertMarker(mapsurface.Marker{
		ID:       b.ID,
		Kind:     mapsurface.MarkerBusiness,
		Location: b.Location,
		Label:    b.Name,
		Props:    props,
	})
}

func (e *Economy) publishBase(s *session.Session, base *session.Base) {
	s.Surface().UpsertMarker(mapsurface.Marker{
		ID:       base.ID,
		Kind:     mapsurface.MarkerBase,
		Location: base.Location,
		Label:    base.Name,
		Props:    map[string]interface{}{"org": base.Org.Abbreviation},
	})
}
