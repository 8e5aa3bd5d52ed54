package territory

import (
	"strings"
	"unicode"

	"github.com/turfline/server/game/session"
	"github.com/turfline/server/gameerr"
	"github.com/turfline/server/geo"
	"go.uber.org/zap"
)

// JoinOrganizationManually joins the organization anchored at baseID. The
// player must be unaffiliated and within manual-join range of the base.
func (e *Economy) JoinOrganizationManually(s *session.Session, baseID string) error {
	base, ok := s.Bases[baseID]
	if !ok {
		return gameerr.NotFoundf("base %q is not on the map", baseID)
	}
	p := s.Player
	if p.Organization != nil {
		return gameerr.Preconditionf("you already belong to %s, leave it first", p.Organization.Name)
	}
	if p.Location == nil {
		return gameerr.Preconditionf("your location is unknown, enable positioning first")
	}
	dist := geo.DistanceM(*p.Location, base.Location)
	if dist > e.cfg.ManualJoinDistanceM {
		return gameerr.Preconditionf("base is %.0fm away, must be within %.0fm",
			dist, e.cfg.ManualJoinDistanceM)
	}
	e.assignOrganization(s, base)
	return s.Persist()
}

// FindAndJoinInitialOrganization auto-assigns the closest base within the
// search radius, but only when no base is close enough for a manual choice;
// a player standing near a base picks one deliberately. Returns the joined
// base, or nil when nothing was assigned.
func (e *Economy) FindAndJoinInitialOrganization(s *session.Session) (*session.Base, error) {
	p := s.Player
	if p.Organization != nil {
		return nil, gameerr.Preconditionf("you already belong to %s", p.Organization.Name)
	}
	if p.Location == nil {
		return nil, gameerr.Preconditionf("your location is unknown, enable positioning first")
	}

	var closest *session.Base
	closestDist := 0.0
	for _, base := range s.Bases {
		dist := geo.DistanceM(*p.Location, base.Location)
		if dist <= e.cfg.ManualJoinDistanceM {
			// Within manual range: the player must choose.
			return nil, nil
		}
		if dist <= e.cfg.AutoJoinSearchRadiusM && (closest == nil || dist < closestDist) {
			closest = base
			closestDist = dist
		}
	}
	if closest == nil {
		return nil, nil
	}
	e.assignOrganization(s, closest)
	if err := s.Persist(); err != nil {
		return closest, err
	}
	return closest, nil
}

// LeaveOrganization clears the membership and base location. Active
// protections are deliberately left in place; removing them is subject to
// the daily quota like any other removal.
func (e *Economy) LeaveOrganization(s *session.Session) error {
	p := s.Player
	p.Organization = nil
	p.OrgBase = nil
	e.RefreshProfitControl(s)
	e.logger.Info("organization left", zap.String("player", p.Username))
	return s.Persist()
}

func (e *Economy) assignOrganization(s *session.Session, base *session.Base) {
	p := s.Player
	org := base.Org
	loc := base.Location
	p.Organization = &org
	p.OrgBase = &loc
	e.RefreshProfitControl(s)
	e.logger.Info("organization joined",
		zap.String("player", p.Username),
		zap.String("org", org.Name))
}

// orgAbbrev derives a short uppercase tag from an organization name.
func orgAbbrev(name string) string {
	var b strings.Builder
	for _, word := range strings.Fields(name) {
		r := []rune(word)[0]
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			b.WriteRune(unicode.ToUpper(r))
		}
		if b.Len() >= 3 {
			break
		}
	}
	if b.Len() == 0 {
		return "ORG"
	}
	return b.String()
}
