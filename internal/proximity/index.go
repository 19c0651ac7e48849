// Waypoint - Geofenced Campus Tour Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/waypoint

package proximity

import (
	"sort"

	"github.com/tomtom215/waypoint/internal/cache"
	"github.com/tomtom215/waypoint/internal/geo"
	"github.com/tomtom215/waypoint/internal/hotspot"
)

// DefaultClusterThresholdMeters is the spacing below which two markers are
// drawn as a group.
const DefaultClusterThresholdMeters = 10.0

// Distance returns the great-circle distance between a and b in meters.
func Distance(a, b geo.Coordinate) float64 {
	return geo.Distance(a, b)
}

// Pair is two hotspots closer than a threshold. A precedes B in the input.
type Pair struct {
	A      string  `json:"a"`
	B      string  `json:"b"`
	Meters float64 `json:"meters"`
}

// TooCloseHotspotList returns every unordered pair of hotspots whose
// distance is strictly below thresholdMeters. Each pair appears once, never
// pairs a hotspot with itself, and pairs are ordered by the input position
// of A then B. The scan is O(n²).
func TooCloseHotspotList(hotspots []hotspot.Hotspot, thresholdMeters float64) []Pair {
	coords := hotspotCoords(hotspots)
	var pairs []Pair
	for i := 0; i < len(hotspots); i++ {
		for j := i + 1; j < len(hotspots); j++ {
			if d := geo.Distance(coords[i], coords[j]); d < thresholdMeters {
				pairs = append(pairs, Pair{A: hotspots[i].ID, B: hotspots[j].ID, Meters: d})
			}
		}
	}
	return pairs
}

// Grouped returns the set of hotspot ids that appear in any pair.
func Grouped(pairs []Pair) map[string]bool {
	out := make(map[string]bool, 2*len(pairs))
	for _, p := range pairs {
		out[p.A] = true
		out[p.B] = true
	}
	return out
}

// Clusters joins pairs into connected components. Each cluster lists ids in
// input order and clusters are ordered by their first member. Hotspots
// with no close neighbour are not returned.
func Clusters(hotspots []hotspot.Hotspot, pairs []Pair) [][]string {
	pos := make(map[string]int, len(hotspots))
	for i := range hotspots {
		pos[hotspots[i].ID] = i
	}

	parent := make([]int, len(hotspots))
	for i := range parent {
		parent[i] = i
	}
	var find func(int) int
	find = func(i int) int {
		for parent[i] != i {
			parent[i] = parent[parent[i]]
			i = parent[i]
		}
		return i
	}

	for _, p := range pairs {
		a, okA := pos[p.A]
		b, okB := pos[p.B]
		if !okA || !okB {
			continue
		}
		ra, rb := find(a), find(b)
		if ra == rb {
			continue
		}
		// Keep the earliest member as root so clusters order naturally.
		if rb < ra {
			ra, rb = rb, ra
		}
		parent[rb] = ra
	}

	members := make(map[int][]string)
	var roots []int
	for i := range hotspots {
		r := find(i)
		if _, seen := members[r]; !seen {
			roots = append(roots, r)
		}
		members[r] = append(members[r], hotspots[i].ID)
	}

	var out [][]string
	for _, r := range roots {
		if len(members[r]) > 1 {
			out = append(out, members[r])
		}
	}
	return out
}

// Proximity is a hotspot and its distance from a position.
type Proximity struct {
	ID      string           `json:"hotspot_id"`
	Name    string           `json:"name"`
	Meters  float64          `json:"meters"`
	Hotspot *hotspot.Hotspot `json:"-"`
}

func sortProximities(ps []Proximity) {
	sort.Slice(ps, func(i, j int) bool {
		if ps[i].Meters != ps[j].Meters {
			return ps[i].Meters < ps[j].Meters
		}
		return ps[i].ID < ps[j].ID
	})
}

// Index answers radius and nearest-neighbour queries over a fixed hotspot
// list using a spatial hash grid. Results are exact haversine distances.
type Index struct {
	hotspots []hotspot.Hotspot
	grid     *cache.SpatialHashGrid[int]
}

// NewIndex indexes hotspots with grid cells of cellMeters.
func NewIndex(hotspots []hotspot.Hotspot, cellMeters float64) *Index {
	coords := hotspotCoords(hotspots)
	ref := geo.Centroid(coords)
	ix := &Index{
		hotspots: hotspots,
		grid:     cache.NewSpatialHashGrid[int](cellMeters, ref.Latitude),
	}
	for i, c := range coords {
		ix.grid.Insert(hotspots[i].ID, c, i)
	}
	return ix
}

// Len returns the number of indexed hotspots.
func (ix *Index) Len() int { return len(ix.hotspots) }

func (ix *Index) proximity(n cache.Neighbor[int]) Proximity {
	h := &ix.hotspots[n.Data]
	return Proximity{ID: h.ID, Name: h.Name, Meters: n.Meters, Hotspot: h}
}

// Within returns hotspots within radiusMeters of c (inclusive), nearest
// first with ties broken by id.
func (ix *Index) Within(c geo.Coordinate, radiusMeters float64) []Proximity {
	found := ix.grid.QueryNearby(c, radiusMeters)
	out := make([]Proximity, len(found))
	for i, n := range found {
		out[i] = ix.proximity(n)
	}
	return out
}

// Nearest returns the closest hotspot to c.
func (ix *Index) Nearest(c geo.Coordinate) (Proximity, bool) {
	n, ok := ix.grid.Nearest(c)
	if !ok {
		return Proximity{}, false
	}
	return ix.proximity(n), true
}
