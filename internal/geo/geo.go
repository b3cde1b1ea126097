// Package geo ranks items by great-circle distance from an origin.
package geo

import (
	"sort"

	"github.com/paulmach/orb"
	orbgeo "github.com/paulmach/orb/geo"
)

type Point struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}

func (p Point) orb() orb.Point {
	return orb.Point{p.Lon, p.Lat}
}

// DistanceKm is the haversine distance between two coordinate pairs.
func DistanceKm(lat1, lon1, lat2, lon2 float64) float64 {
	return orbgeo.DistanceHaversine(orb.Point{lon1, lat1}, orb.Point{lon2, lat2}) / 1000
}

type Ranked[T any] struct {
	Item       T       `json:"item"`
	DistanceKm float64 `json:"distance_km"`
}

// RankByDistance keeps the items within radiusKm of origin, nearest first.
// Items for which coords reports false are left out entirely. Equal
// distances keep their input order.
func RankByDistance[T any](origin Point, items []T, coords func(T) (Point, bool), radiusKm float64) []Ranked[T] {
	ranked := make([]Ranked[T], 0, len(items))
	for _, item := range items {
		p, ok := coords(item)
		if !ok {
			continue
		}
		d := DistanceKm(origin.Lat, origin.Lon, p.Lat, p.Lon)
		if d > radiusKm {
			continue
		}
		ranked = append(ranked, Ranked[T]{Item: item, DistanceKm: d})
	}
	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].DistanceKm < ranked[j].DistanceKm
	})
	return ranked
}

// BoundingBox returns a lat/lon box that contains every point within
// radiusKm of origin. It is only a prefilter; RankByDistance does the exact
// check.
func BoundingBox(origin Point, radiusKm float64) orb.Bound {
	return orbgeo.NewBoundAroundPoint(origin.orb(), radiusKm*1000)
}

// LongitudeRange returns the west and east edges of b folded into
// [-180, 180]. When the box spans the antimeridian west is greater than east
// and the covered longitudes are lon >= west or lon <= east.
func LongitudeRange(b orb.Bound) (west, east float64) {
	if b.Right()-b.Left() >= 360 {
		return -180, 180
	}
	return wrapLon(b.Left()), wrapLon(b.Right())
}

// CrossesAntimeridian reports whether b cannot be expressed as a single
// longitude range.
func CrossesAntimeridian(b orb.Bound) bool {
	west, east := LongitudeRange(b)
	return west > east
}

// ContainsLon reports whether lon falls inside the longitude span of b,
// honouring a span that wraps past 180.
func ContainsLon(b orb.Bound, lon float64) bool {
	west, east := LongitudeRange(b)
	if west > east {
		return lon >= west || lon <= east
	}
	return lon >= west && lon <= east
}

func wrapLon(lon float64) float64 {
	for lon > 180 {
		lon -= 360
	}
	for lon < -180 {
		lon += 360
	}
	return lon
}
