package geo

import (
	"errors"
	"math"
)

const earthRadiusM = 6371000.0

var ErrOutOfRange = errors.New("coordinates out of range")

type Point struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

func (p Point) Validate() error {
	if p.Lat < -90 || p.Lat > 90 || p.Lng < -180 || p.Lng > 180 {
		return ErrOutOfRange
	}
	return nil
}

func (p Point) IsZero() bool { return p.Lat == 0 && p.Lng == 0 }

func HaversineKm(lat1, lng1, lat2, lng2 float64) float64 {
	return HaversineM(Point{lat1, lng1}, Point{lat2, lng2}) / 1000
}

func HaversineM(a, b Point) float64 {
	lat1 := radians(a.Lat)
	lat2 := radians(b.Lat)
	dLat := radians(b.Lat - a.Lat)
	dLng := radians(b.Lng - a.Lng)

	h := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(lat1)*math.Cos(lat2)*math.Sin(dLng/2)*math.Sin(dLng/2)
	return earthRadiusM * 2 * math.Atan2(math.Sqrt(h), math.Sqrt(1-h))
}

// DistanceToSegmentM approximates the distance from p to the segment a-b by
// projecting in lat/lng space and measuring the haversine distance to the
// closest point. Good enough at walking scale.
func DistanceToSegmentM(p, a, b Point) float64 {
	dLat := b.Lat - a.Lat
	dLng := b.Lng - a.Lng
	lenSq := dLat*dLat + dLng*dLng
	if lenSq == 0 {
		return HaversineM(p, a)
	}
	t := ((p.Lat-a.Lat)*dLat + (p.Lng-a.Lng)*dLng) / lenSq
	t = math.Max(0, math.Min(1, t))
	return HaversineM(p, Point{Lat: a.Lat + t*dLat, Lng: a.Lng + t*dLng})
}

// DistanceToPathM is the minimum distance from p to any vertex or segment of
// path. An empty path is infinitely far away.
func DistanceToPathM(p Point, path []Point) float64 {
	best := math.Inf(1)
	for i, v := range path {
		best = math.Min(best, HaversineM(p, v))
		if i+1 < len(path) {
			best = math.Min(best, DistanceToSegmentM(p, v, path[i+1]))
		}
	}
	return best
}

func Interpolate(start, end Point, pct float64) Point {
	f := math.Max(0, math.Min(100, pct)) / 100
	return Point{
		Lat: start.Lat + (end.Lat-start.Lat)*f,
		Lng: start.Lng + (end.Lng-start.Lng)*f,
	}
}

// Midpoint is the arithmetic midpoint, used to pick a single weather lookup
// location for a short walk.
func Midpoint(a, b Point) Point {
	return Point{Lat: (a.Lat + b.Lat) / 2, Lng: (a.Lng + b.Lng) / 2}
}

func radians(deg float64) float64 { return deg * math.Pi / 180 }
