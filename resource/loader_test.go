package resource

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultCatalog(t *testing.T) {
	l, err := NewLoader("")
	require.NoError(t, err)

	assert.NotEmpty(t, l.Items())
	for _, def := range l.Items() {
		require.NoError(t, validate(def), "item %q", def.ID)
	}
	assert.Nil(t, l.Item("no_such_item"))
	require.NotNil(t, l.Item("bandage"))
	assert.Equal(t, 25, l.Item("bandage").Heal)
}

func TestDefaultLootReferencesKnownItems(t *testing.T) {
	l, err := NewLoader("")
	require.NoError(t, err)

	weightSum := 0.0
	for _, tier := range l.Tiers() {
		weightSum += tier.Weight
		for _, entry := range tier.Loot {
			assert.NotNil(t, l.Item(entry.ItemID),
				"tier %d loot references unknown item %q", tier.Tier, entry.ItemID)
			assert.LessOrEqual(t, entry.MinQty, entry.MaxQty)
		}
	}
	assert.InDelta(t, 1.0, weightSum, 1e-9)
}

func TestLoadFileOverride(t *testing.T) {
	path := filepath.Join(t.TempDir(), "catalog.json")
	require.NoError(t, os.WriteFile(path, []byte(`{
		"items": [
			{"id": "test_potion", "name": "Test Potion", "category": "consumable", "stackable": true, "maxStack": 5, "heal": 10}
		]
	}`), 0o644))

	l, err := NewLoader(path)
	require.NoError(t, err)
	require.NotNil(t, l.Item("test_potion"))
	assert.Nil(t, l.Item("bandage"), "file items replace the built-ins")
	assert.NotEmpty(t, l.Tiers(), "missing tiers fall back to the built-ins")
}

func TestLoadFileInvalidItem(t *testing.T) {
	path := filepath.Join(t.TempDir(), "catalog.json")
	require.NoError(t, os.WriteFile(path, []byte(`{
		"items": [{"id": "broken", "name": "Broken", "category": "equipment", "slot": "tail"}]
	}`), 0o644))

	_, err := NewLoader(path)
	assert.Error(t, err)
}

func TestLoadFileMissing(t *testing.T) {
	_, err := NewLoader(filepath.Join(t.TempDir(), "nope.json"))
	assert.Error(t, err)
}

func TestValidSlot(t *testing.T) {
	assert.True(t, ValidSlot(SlotWeapon))
	assert.True(t, ValidSlot(SlotCharm))
	assert.False(t, ValidSlot(Slot("tail")))
	assert.Len(t, Slots(), 9)
}
