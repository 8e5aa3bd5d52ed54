package enemy

import (
	"fmt"

	"github.com/turfline/server/mapsurface"
)

// MarkerFor builds the map surface marker for a live enemy.
func MarkerFor(e *Enemy) mapsurface.Marker {
	return mapsurface.Marker{
		ID:       e.ID,
		Kind:     mapsurface.MarkerEnemy,
		Location: e.Location,
		Label:    fmt.Sprintf("Tier %d", e.Tier),
		Props: map[string]interface{}{
			"tier":      e.Tier,
			"power":     e.Power,
			"health":    e.Health,
			"maxHealth": e.MaxHealth,
			"facing":    string(e.Facing),
		},
	}
}
