package enemy

// RollLoot independently rolls every loot-table entry of e against its drop
// chance, then rolls a uniform integer quantity within the entry's range.
// Entries that come up empty are omitted. The universal money drop scales
// with the enemy's power.
func (d *Directory) RollLoot(e *Enemy) LootResult {
	var result LootResult
	for _, entry := range e.Loot {
		if d.rng.Float64() >= entry.Chance {
			continue
		}
		qty := entry.MinQty
		if entry.MaxQty > entry.MinQty {
			qty += d.rng.Intn(entry.MaxQty - entry.MinQty + 1)
		}
		if qty <= 0 {
			continue
		}
		result.Items = append(result.Items, Drop{ItemID: entry.ItemID, Quantity: qty})
	}

	if d.rng.Float64() < moneyDropChance {
		base := int64(e.Power)
		result.Money = base + int64(d.rng.Int63n(base*(moneyDropMaxMult-1)+1))
	}
	return result
}
