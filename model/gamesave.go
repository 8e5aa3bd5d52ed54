package model

import (
	"time"

	"gorm.io/datatypes"
)

// GameSave is the persisted snapshot of one account's game state.
// The JSON columns mirror the in-memory session aggregate; only businesses
// with non-default protection state or a nonzero collection timestamp are
// included to bound the snapshot size.
type GameSave struct {
	AccountID    int64          `gorm:"primaryKey" json:"account_id"`
	Player       datatypes.JSON `json:"player"`
	Businesses   datatypes.JSON `json:"businesses"`
	ProtectedIDs datatypes.JSON `json:"protected_ids"`
	Settings     datatypes.JSON `json:"settings"`
	UpdatedAt    time.Time      `gorm:"autoUpdateTime" json:"updated_at"`
}

func (GameSave) TableName() string { return "game_saves" }
