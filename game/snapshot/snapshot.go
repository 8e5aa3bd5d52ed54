package snapshot

import (
	"encoding/json"
	"errors"
	"time"

	"github.com/turfline/server/game/progress"
	"github.com/turfline/server/game/session"
	"github.com/turfline/server/geo"
	"github.com/turfline/server/model"
	"github.com/turfline/server/resource"
	"go.uber.org/zap"
	"gorm.io/datatypes"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// PlayerState is the persisted player snapshot. Power and ExpNeeded are
// derived values carried for the client's benefit; the session recomputes
// them on load.
type PlayerState struct {
	ID              string                    `json:"id"`
	Username        string                    `json:"username"`
	Alias           string                    `json:"alias"`
	Level           int                       `json:"level"`
	Cash            int64                     `json:"cash"`
	Power           int                       `json:"power"`
	HP              int                       `json:"hp"`
	MaxHP           int                       `json:"maxHp"`
	Inventory       []*session.InventoryEntry `json:"inventory"`
	Equipment       map[resource.Slot]string  `json:"equipment"`
	Organization    *session.OrgRef           `json:"organization"`
	OrgBaseLocation *geo.Point                `json:"orgBaseLocation"`
	Experience      int                       `json:"experience"`
	ExpNeeded       int                       `json:"expNeeded"`
	Stats           session.Attributes        `json:"stats"`
	CharacterStats  session.CharacterStats    `json:"characterStats"`
	Location        *geo.Point                `json:"location"`
	RemovalDay      string                    `json:"removalDay,omitempty"`
	RemovalsToday   int                       `json:"removalsToday,omitempty"`
}

// BusinessState is the persisted slice of one business: only its protection
// and collection state. Name, location, and category always come from the
// live map-data fetch and are reconciled on merge.
type BusinessState struct {
	ID                     string              `json:"id"`
	LastCollected          time.Time           `json:"lastCollected"`
	ProtectingOrganization *session.OrgRef     `json:"protectingOrganization"`
	ProtectionPower        int                 `json:"protectionPower"`
	ProtectingUsers        []session.Protector `json:"protectingUsers"`
}

// Service gathers session snapshots into GameSave rows and restores them.
// It implements session.Saver.
type Service struct {
	db     *gorm.DB
	res    *resource.Loader
	engine *progress.Engine
	logger *zap.Logger
}

// NewService creates the snapshot Service.
func NewService(db *gorm.DB, res *resource.Loader, engine *progress.Engine, logger *zap.Logger) *Service {
	return &Service{db: db, res: res, engine: engine, logger: logger}
}

// Save persists the session snapshot, upserting by account id. Only
// businesses with non-default protection state or a collection history are
// included, bounding the snapshot size.
func (svc *Service) Save(s *session.Session) error {
	p := s.Player
	player := PlayerState{
		ID:              p.ID,
		Username:        p.Username,
		Alias:           p.Alias,
		Level:           p.Level,
		Cash:            p.Cash,
		Power:           p.Power(),
		HP:              p.CurrentHP,
		MaxHP:           p.MaxHP,
		Inventory:       s.Inventory,
		Equipment:       s.Equipment,
		Organization:    p.Organization,
		OrgBaseLocation: p.OrgBase,
		Experience:      p.Experience,
		ExpNeeded:       progress.ExpNeeded(p.Level),
		Stats:           p.Attributes,
		CharacterStats:  p.Stats,
		Location:        p.Location,
		RemovalDay:      p.RemovalDay,
		RemovalsToday:   p.RemovalsToday,
	}

	businesses := make(map[string]BusinessState)
	for id, b := range s.Businesses {
		if b.HasDefaultState() {
			continue
		}
		businesses[id] = BusinessState{
			ID:                     b.ID,
			LastCollected:          b.LastCollectedAt,
			ProtectingOrganization: b.ProtectingOrg,
			ProtectionPower:        b.ProtectionPower,
			ProtectingUsers:        b.ProtectingUsers,
		}
	}

	playerJSON, err := json.Marshal(player)
	if err != nil {
		return err
	}
	businessJSON, err := json.Marshal(businesses)
	if err != nil {
		return err
	}
	protectedJSON, err := json.Marshal(s.ProtectedBusinessIDs())
	if err != nil {
		return err
	}
	settingsJSON, err := json.Marshal(s.Settings)
	if err != nil {
		return err
	}

	save := &model.GameSave{
		AccountID:    s.AccountID,
		Player:       datatypes.JSON(playerJSON),
		Businesses:   datatypes.JSON(businessJSON),
		ProtectedIDs: datatypes.JSON(protectedJSON),
		Settings:     datatypes.JSON(settingsJSON),
	}
	return svc.db.Clauses(clause.OnConflict{UpdateAll: true}).Create(save).Error
}

// Restore builds the session for an account, applying the stored snapshot
// when one exists. The restored business cache carries only protection and
// collection state; the next map-bounds fetch merges the live attributes
// back in, keyed by business id.
func (svc *Service) Restore(accountID int64, username, alias string) (*session.Session, error) {
	s := session.New(accountID, username, alias, svc.res.Tiers(), svc.logger)
	s.SetSaver(svc)

	var save model.GameSave
	err := svc.db.Where("account_id = ?", accountID).First(&save).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		svc.engine.RecalculateStats(s)
		return s, nil
	}
	if err != nil {
		return nil, err
	}

	var player PlayerState
	if err := json.Unmarshal(save.Player, &player); err != nil {
		return nil, err
	}
	svc.applyPlayer(s, &player)

	var businesses map[string]BusinessState
	if err := json.Unmarshal(save.Businesses, &businesses); err != nil {
		return nil, err
	}
	for id, bs := range businesses {
		s.Businesses[id] = &session.Business{
			ID:              bs.ID,
			LastCollectedAt: bs.LastCollected,
			ProtectingOrg:   bs.ProtectingOrganization,
			ProtectingUsers: bs.ProtectingUsers,
			ProtectionPower: bs.ProtectionPower,
		}
	}

	if len(save.Settings) > 0 {
		var settings session.Settings
		if err := json.Unmarshal(save.Settings, &settings); err == nil {
			s.Settings = settings
		}
	}

	// Derived stats are recomputed, never trusted from storage.
	svc.engine.RecalculateStats(s)
	svc.logger.Info("game state restored",
		zap.Int64("account_id", accountID),
		zap.Int("businesses", len(businesses)))
	return s, nil
}

func (svc *Service) applyPlayer(s *session.Session, ps *PlayerState) {
	p := s.Player
	if ps.ID != "" {
		p.ID = ps.ID
	}
	p.Alias = ps.Alias
	p.Level = ps.Level
	if p.Level < 1 {
		p.Level = 1
	}
	p.Cash = ps.Cash
	p.CurrentHP = ps.HP
	p.MaxHP = ps.MaxHP
	p.Experience = ps.Experience
	p.Attributes = ps.Stats
	p.Organization = ps.Organization
	p.OrgBase = ps.OrgBaseLocation
	p.Location = ps.Location
	p.RemovalDay = ps.RemovalDay
	p.RemovalsToday = ps.RemovalsToday

	if len(ps.Inventory) > 0 {
		s.Inventory = ps.Inventory
	}
	for slot, itemID := range ps.Equipment {
		if resource.ValidSlot(slot) {
			s.Equipment[slot] = itemID
		}
	}
}
