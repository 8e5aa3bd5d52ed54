package geo

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDistanceM(t *testing.T) {
	a := Point{Lat: 52.0, Lng: 4.0}
	b := Point{Lat: 53.0, Lng: 4.0}
	// One degree of latitude is roughly 111 km.
	assert.InDelta(t, 111195, DistanceM(a, b), 200)

	assert.Zero(t, DistanceM(a, a))
	assert.InDelta(t, DistanceM(a, b), DistanceM(b, a), 1e-6)
}

func TestBoundsContains(t *testing.T) {
	b := Bounds{MinLat: 52.0, MinLng: 4.0, MaxLat: 53.0, MaxLng: 5.0}
	assert.True(t, b.Contains(Point{Lat: 52.5, Lng: 4.5}))
	assert.True(t, b.Contains(Point{Lat: 52.0, Lng: 4.0}), "edges are inclusive")
	assert.False(t, b.Contains(Point{Lat: 51.9, Lng: 4.5}))
	assert.False(t, b.Contains(Point{Lat: 52.5, Lng: 5.1}))
}

func TestOffsetM(t *testing.T) {
	p := Point{Lat: 52.37, Lng: 4.89}
	q := OffsetM(p, 1000, 0)
	assert.InDelta(t, 1000, DistanceM(p, q), 1)

	r := OffsetM(p, 0, 1000)
	assert.InDelta(t, 1000, DistanceM(p, r), 1)

	back := OffsetM(q, -1000, 0)
	assert.InDelta(t, 0, DistanceM(p, back), 0.01)
}

func TestRandomPointInRadius(t *testing.T) {
	rng := rand.New(rand.NewSource(1))
	center := Point{Lat: 52.37, Lng: 4.89}
	for i := 0; i < 200; i++ {
		p := RandomPointInRadius(rng, center, 1500)
		assert.LessOrEqual(t, DistanceM(center, p), 1501.0)
	}
}
