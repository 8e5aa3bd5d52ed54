package item_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/turfline/server/game/item"
	"github.com/turfline/server/game/progress"
	"github.com/turfline/server/game/session"
	"github.com/turfline/server/gameerr"
	"github.com/turfline/server/resource"
	"go.uber.org/zap"
)

func newService(t *testing.T) (*item.Service, *session.Session) {
	t.Helper()
	res, err := resource.NewLoader("")
	require.NoError(t, err)
	logger := zap.NewNop()
	engine := progress.NewEngine(res, logger)
	s := session.New(1, "alice", "Alice", res.Tiers(), logger)
	engine.RecalculateStats(s)
	return item.NewService(res, engine, logger), s
}

func TestAddStackableMerges(t *testing.T) {
	svc, s := newService(t)

	require.NoError(t, svc.Add(s, "bandage", 3))
	require.NoError(t, svc.Add(s, "bandage", 2))

	require.Len(t, s.Inventory, 1)
	assert.Equal(t, 5, s.Inventory[0].Quantity)
	assert.Equal(t, 5, s.InventoryCount("bandage"))
}

func TestAddStackableRespectsMaxStack(t *testing.T) {
	svc, s := newService(t)

	require.NoError(t, svc.Add(s, "bandage", 19))
	err := svc.Add(s, "bandage", 2)
	require.Error(t, err)
	assert.True(t, gameerr.Is(err, gameerr.KindPrecondition))
	assert.Equal(t, 19, s.InventoryCount("bandage"), "failed add must leave no trace")
}

func TestAddMaxStackRejectionLeavesNoEmptyEntry(t *testing.T) {
	svc, s := newService(t)

	// 21 > MaxStack on a fresh entry: the entry created for the merge must
	// be rolled back.
	err := svc.Add(s, "bandage", 21)
	require.Error(t, err)
	assert.Empty(t, s.Inventory)
}

func TestAddNonStackableOneEntryPerUnit(t *testing.T) {
	svc, s := newService(t)

	require.NoError(t, svc.Add(s, "brass_knuckles", 3))
	require.Len(t, s.Inventory, 3)
	for _, e := range s.Inventory {
		assert.Equal(t, 1, e.Quantity)
	}
}

func TestAddUnknownItem(t *testing.T) {
	svc, s := newService(t)
	err := svc.Add(s, "plasma_rifle", 1)
	assert.True(t, gameerr.Is(err, gameerr.KindValidation))
}

func TestAddNonPositiveQuantity(t *testing.T) {
	svc, s := newService(t)
	assert.True(t, gameerr.Is(svc.Add(s, "bandage", 0), gameerr.KindValidation))
	assert.True(t, gameerr.Is(svc.Add(s, "bandage", -2), gameerr.KindValidation))
}

func TestRemoveInsufficient(t *testing.T) {
	svc, s := newService(t)
	require.NoError(t, svc.Add(s, "bandage", 2))

	err := svc.Remove(s, "bandage", 3)
	require.Error(t, err)
	assert.True(t, gameerr.Is(err, gameerr.KindNotFound))
	assert.Equal(t, 2, s.InventoryCount("bandage"), "failed remove must not change state")
}

func TestRemoveDropsEmptyEntries(t *testing.T) {
	svc, s := newService(t)
	require.NoError(t, svc.Add(s, "bandage", 2))
	require.NoError(t, svc.Remove(s, "bandage", 2))
	assert.Empty(t, s.Inventory)
}

func TestRemoveAcrossNonStackableEntries(t *testing.T) {
	svc, s := newService(t)
	require.NoError(t, svc.Add(s, "brass_knuckles", 3))
	require.NoError(t, svc.Remove(s, "brass_knuckles", 2))
	assert.Equal(t, 1, s.InventoryCount("brass_knuckles"))
	assert.Len(t, s.Inventory, 1)
}

func TestUseConsumableHeals(t *testing.T) {
	svc, s := newService(t)
	require.NoError(t, svc.Add(s, "bandage", 2))
	s.Player.CurrentHP = 100

	require.NoError(t, svc.Use(s, "bandage"))
	assert.Equal(t, 125, s.Player.CurrentHP)
	assert.Equal(t, 1, s.InventoryCount("bandage"))
}

func TestUseEquipmentRejected(t *testing.T) {
	svc, s := newService(t)
	require.NoError(t, svc.Add(s, "brass_knuckles", 1))

	err := svc.Use(s, "brass_knuckles")
	require.Error(t, err)
	assert.True(t, gameerr.Is(err, gameerr.KindPrecondition))
	assert.Contains(t, err.Error(), "equip it instead")
}

func TestUseNonConsumableRejected(t *testing.T) {
	svc, s := newService(t)
	require.NoError(t, svc.Add(s, "lockpick", 1))

	err := svc.Use(s, "lockpick")
	assert.True(t, gameerr.Is(err, gameerr.KindPrecondition))
	assert.Equal(t, 1, s.InventoryCount("lockpick"))
}

func TestUseMissingItem(t *testing.T) {
	svc, s := newService(t)
	err := svc.Use(s, "bandage")
	assert.True(t, gameerr.Is(err, gameerr.KindNotFound))
}
