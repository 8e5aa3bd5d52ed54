package geo

import (
	"math"
	"math/rand"
)

const earthRadiusM = 6371000.0

// Point is a WGS84 coordinate.
type Point struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

// Bounds is a rectangular map region.
type Bounds struct {
	MinLat float64 `json:"min_lat"`
	MinLng float64 `json:"min_lng"`
	MaxLat float64 `json:"max_lat"`
	MaxLng float64 `json:"max_lng"`
}

// Contains reports whether p lies inside b.
func (b Bounds) Contains(p Point) bool {
	return p.Lat >= b.MinLat && p.Lat <= b.MaxLat &&
		p.Lng >= b.MinLng && p.Lng <= b.MaxLng
}

// DistanceM returns the haversine distance between a and b in meters.
func DistanceM(a, b Point) float64 {
	latA := a.Lat * math.Pi / 180
	latB := b.Lat * math.Pi / 180
	dLat := (b.Lat - a.Lat) * math.Pi / 180
	dLng := (b.Lng - a.Lng) * math.Pi / 180

	h := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(latA)*math.Cos(latB)*math.Sin(dLng/2)*math.Sin(dLng/2)
	return 2 * earthRadiusM * math.Asin(math.Sqrt(h))
}

// RandomPointInRadius returns a point uniformly distributed over the disc of
// radiusM meters around center. sqrt keeps the distribution area-uniform; the
// longitude offset shrinks by cos(lat) to approximate the map projection.
func RandomPointInRadius(rng *rand.Rand, center Point, radiusM float64) Point {
	dist := math.Sqrt(rng.Float64()) * radiusM
	angle := rng.Float64() * 2 * math.Pi

	dLat := (dist * math.Cos(angle)) / earthRadiusM * 180 / math.Pi
	dLng := (dist * math.Sin(angle)) / (earthRadiusM * math.Cos(center.Lat*math.Pi/180)) * 180 / math.Pi

	return Point{Lat: center.Lat + dLat, Lng: center.Lng + dLng}
}

// OffsetM returns p shifted by the given north/east meters.
func OffsetM(p Point, northM, eastM float64) Point {
	dLat := northM / earthRadiusM * 180 / math.Pi
	dLng := eastM / (earthRadiusM * math.Cos(p.Lat*math.Pi/180)) * 180 / math.Pi
	return Point{Lat: p.Lat + dLat, Lng: p.Lng + dLng}
}
