package mapsurface

import (
	"sync"

	"github.com/turfline/server/geo"
)

// MarkerKind tags the entity type behind a marker.
type MarkerKind string

const (
	MarkerBusiness MarkerKind = "business"
	MarkerBase     MarkerKind = "base"
	MarkerEnemy    MarkerKind = "enemy"
)

// Marker is one renderable entity update. The core owns no rendering state;
// it only reports that this entity's visible attributes changed.
type Marker struct {
	ID       string                 `json:"id"`
	Kind     MarkerKind             `json:"kind"`
	Location geo.Point              `json:"location"`
	Label    string                 `json:"label"`
	Props    map[string]interface{} `json:"props,omitempty"`
}

// Surface receives add/update/remove commands keyed by entity id.
type Surface interface {
	UpsertMarker(m Marker)
	RemoveMarker(id string)
}

// Null is a Surface that discards all commands.
type Null struct{}

func (Null) UpsertMarker(Marker) {}
func (Null) RemoveMarker(string) {}

// Recorder is a Surface that records commands for tests.
type Recorder struct {
	mu       sync.Mutex
	Upserts  []Marker
	Removals []string
}

func (r *Recorder) UpsertMarker(m Marker) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.Upserts = append(r.Upserts, m)
}

func (r *Recorder) RemoveMarker(id string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.Removals = append(r.Removals, id)
}

// Last returns the most recent upsert for id, or ok=false.
func (r *Recorder) Last(id string) (Marker, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i := len(r.Upserts) - 1; i >= 0; i-- {
		if r.Upserts[i].ID == id {
			return r.Upserts[i], true
		}
	}
	return Marker{}, false
}
