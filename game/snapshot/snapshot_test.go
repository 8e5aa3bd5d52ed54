package snapshot_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/turfline/server/game/progress"
	"github.com/turfline/server/game/session"
	"github.com/turfline/server/game/snapshot"
	"github.com/turfline/server/geo"
	"github.com/turfline/server/model"
	"github.com/turfline/server/resource"
	"github.com/turfline/server/testutil"
	"go.uber.org/zap"
)

func newSnapshotService(t *testing.T) *snapshot.Service {
	t.Helper()
	db := testutil.SetupTestDB(t)
	res, err := resource.NewLoader("")
	require.NoError(t, err)
	logger := zap.NewNop()
	engine := progress.NewEngine(res, logger)
	return snapshot.NewService(db, res, engine, logger)
}

func TestRestoreFreshAccount(t *testing.T) {
	svc := newSnapshotService(t)

	s, err := svc.Restore(1, "alice", "Alice")
	require.NoError(t, err)
	assert.Equal(t, 1, s.Player.Level)
	assert.EqualValues(t, 500, s.Player.Cash)
	assert.Equal(t, s.Player.MaxHP, s.Player.CurrentHP)
	assert.Empty(t, s.Inventory)
}

func TestSaveRestoreRoundTrip(t *testing.T) {
	svc := newSnapshotService(t)

	s, err := svc.Restore(1, "alice", "Alice")
	require.NoError(t, err)

	s.Player.Level = 4
	s.Player.Experience = 120
	s.Player.Cash = 2750
	s.Player.CurrentHP = 60
	s.Player.Attributes.Strength = 9
	s.Player.Location = &geo.Point{Lat: 52.37, Lng: 4.89}
	s.Player.Organization = &session.OrgRef{Name: "City Hall", Abbreviation: "CH"}
	s.Player.OrgBase = &geo.Point{Lat: 52.36, Lng: 4.88}
	s.Player.RemovalDay = "2026-08-30"
	s.Player.RemovalsToday = 1
	s.Inventory = []*session.InventoryEntry{{ItemID: "bandage", Quantity: 3}}
	s.Equipment[resource.SlotWeapon] = "brass_knuckles"
	s.Settings.SoundOn = false

	collected := time.Date(2026, 8, 30, 11, 0, 0, 0, time.UTC)
	s.Businesses["b1"] = &session.Business{
		ID:              "b1",
		Name:            "Golden Dragon",
		LastCollectedAt: collected,
		ProtectingOrg:   &session.OrgRef{Name: "City Hall", Abbreviation: "CH"},
		ProtectingUsers: []session.Protector{{UserID: s.Player.ID, Power: 25}},
		ProtectionPower: 25,
	}
	s.Businesses["pristine"] = &session.Business{ID: "pristine", Name: "Corner Shop"}

	require.NoError(t, svc.Save(s))

	got, err := svc.Restore(1, "alice", "Alice")
	require.NoError(t, err)

	p := got.Player
	assert.Equal(t, 4, p.Level)
	assert.Equal(t, 120, p.Experience)
	assert.EqualValues(t, 2750, p.Cash)
	assert.Equal(t, 60, p.CurrentHP)
	assert.Equal(t, 9, p.Attributes.Strength)
	assert.Equal(t, s.Player.ID, p.ID)
	assert.Equal(t, "City Hall", p.Organization.Name)
	assert.Equal(t, "2026-08-30", p.RemovalDay)
	assert.Equal(t, 1, p.RemovalsToday)
	assert.Equal(t, 3, got.InventoryCount("bandage"))
	assert.Equal(t, "brass_knuckles", got.Equipment[resource.SlotWeapon])
	assert.False(t, got.Settings.SoundOn)

	b := got.Businesses["b1"]
	require.NotNil(t, b)
	assert.True(t, collected.Equal(b.LastCollectedAt))
	assert.Equal(t, 25, b.ProtectionPower)
	require.NotNil(t, b.ProtectingOrg)
	assert.Equal(t, "CH", b.ProtectingOrg.Abbreviation)

	// Derived stats come from recompute, not storage.
	assert.Equal(t, 9+5, p.Stats.Damage, "strength plus weapon bonus")
}

func TestDefaultStateBusinessesExcluded(t *testing.T) {
	svc := newSnapshotService(t)

	s, err := svc.Restore(1, "alice", "Alice")
	require.NoError(t, err)
	s.Businesses["plain"] = &session.Business{ID: "plain", Name: "Plain Cafe"}
	require.NoError(t, svc.Save(s))

	got, err := svc.Restore(1, "alice", "Alice")
	require.NoError(t, err)
	assert.NotContains(t, got.Businesses, "plain",
		"businesses with default state are rebuilt from the live map fetch")
}

func TestSaveUpsertsByAccount(t *testing.T) {
	svc := newSnapshotService(t)

	s, err := svc.Restore(1, "alice", "Alice")
	require.NoError(t, err)
	require.NoError(t, svc.Save(s))
	s.Player.Cash = 9000
	require.NoError(t, svc.Save(s))

	got, err := svc.Restore(1, "alice", "Alice")
	require.NoError(t, err)
	assert.EqualValues(t, 9000, got.Player.Cash)
}

func TestSaveImplementsSaver(t *testing.T) {
	var _ session.Saver = newSnapshotService(t)
}

func TestGameSaveTableName(t *testing.T) {
	assert.Equal(t, "game_saves", model.GameSave{}.TableName())
}
