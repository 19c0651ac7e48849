// Waypoint - Geofenced Campus Tour Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/waypoint

package cache

import (
	"math"
	"sort"
	"sync"

	"github.com/tomtom215/waypoint/internal/geo"
)

// metersPerDegree is the length of one degree of latitude on the mean sphere.
const metersPerDegree = geo.EarthRadiusMeters * math.Pi / 180

// SpatialHashGrid divides space into roughly square cells of a fixed size in
// meters so proximity queries only look at nearby cells.
//
// Longitude cell width is fixed from a reference latitude (usually the
// centroid of the data set), so cells stay close to square for campus-scale
// data. Queries scale their search window by the query latitude and always
// confirm candidates with an exact haversine distance.
//
// Time Complexity:
//   - Insert: O(1)
//   - QueryNearby: O(k) where k = entries in nearby cells
//   - Remove: O(1)
type SpatialHashGrid[T any] struct {
	mu         sync.RWMutex
	cells      map[CellKey][]*SpatialEntry[T]
	entries    map[string]*SpatialEntry[T]
	cellMeters float64
	latStep    float64 // degrees per cell row
	lonStep    float64 // degrees per cell column
}

// CellKey is a grid cell coordinate.
type CellKey struct {
	X, Y int
}

// SpatialEntry is one point stored in the grid.
type SpatialEntry[T any] struct {
	ID     string
	Coords geo.Coordinate
	Data   T

	cellKey CellKey
}

// Neighbor is a query result with its exact distance from the query point.
type Neighbor[T any] struct {
	SpatialEntry[T]
	Meters float64
}

// NewSpatialHashGrid creates a grid with cells of cellMeters (default 50 m)
// whose longitude width is computed at refLatitude.
func NewSpatialHashGrid[T any](cellMeters, refLatitude float64) *SpatialHashGrid[T] {
	if cellMeters <= 0 || math.IsNaN(cellMeters) {
		cellMeters = 50
	}
	latStep := cellMeters / metersPerDegree
	cosLat := math.Cos(refLatitude * math.Pi / 180)
	if cosLat < 0.01 || math.IsNaN(cosLat) {
		cosLat = 0.01
	}

	return &SpatialHashGrid[T]{
		cells:      make(map[CellKey][]*SpatialEntry[T]),
		entries:    make(map[string]*SpatialEntry[T]),
		cellMeters: cellMeters,
		latStep:    latStep,
		lonStep:    latStep / cosLat,
	}
}

// CellMeters returns the configured cell size.
func (g *SpatialHashGrid[T]) CellMeters() float64 { return g.cellMeters }

func (g *SpatialHashGrid[T]) cellKey(c geo.Coordinate) CellKey {
	return CellKey{
		X: int(math.Floor(c.Longitude / g.lonStep)),
		Y: int(math.Floor(c.Latitude / g.latStep)),
	}
}

// Insert adds or replaces the entry with the given id.
func (g *SpatialHashGrid[T]) Insert(id string, c geo.Coordinate, data T) {
	g.mu.Lock()
	defer g.mu.Unlock()

	if existing, ok := g.entries[id]; ok {
		g.removeFromCellUnlocked(existing)
	}

	entry := &SpatialEntry[T]{ID: id, Coords: c, Data: data, cellKey: g.cellKey(c)}
	g.cells[entry.cellKey] = append(g.cells[entry.cellKey], entry)
	g.entries[id] = entry
}

// Remove deletes an entry by id.
func (g *SpatialHashGrid[T]) Remove(id string) bool {
	g.mu.Lock()
	defer g.mu.Unlock()

	entry, ok := g.entries[id]
	if !ok {
		return false
	}
	g.removeFromCellUnlocked(entry)
	delete(g.entries, id)
	return true
}

// removeFromCellUnlocked removes an entry from its cell (caller must hold lock).
func (g *SpatialHashGrid[T]) removeFromCellUnlocked(entry *SpatialEntry[T]) {
	cell := g.cells[entry.cellKey]
	for i, e := range cell {
		if e.ID == entry.ID {
			cell[i] = cell[len(cell)-1]
			cell = cell[:len(cell)-1]
			break
		}
	}
	if len(cell) == 0 {
		delete(g.cells, entry.cellKey)
		return
	}
	g.cells[entry.cellKey] = cell
}

// Get returns a copy of the entry with the given id.
func (g *SpatialHashGrid[T]) Get(id string) (SpatialEntry[T], bool) {
	g.mu.RLock()
	defer g.mu.RUnlock()

	entry, ok := g.entries[id]
	if !ok {
		return SpatialEntry[T]{}, false
	}
	return *entry, true
}

// QueryNearby returns every entry within radiusMeters of c (inclusive),
// nearest first with ties broken by id.
func (g *SpatialHashGrid[T]) QueryNearby(c geo.Coordinate, radiusMeters float64) []Neighbor[T] {
	g.mu.RLock()
	defer g.mu.RUnlock()

	if radiusMeters < 0 || math.IsNaN(radiusMeters) || len(g.entries) == 0 {
		return nil
	}

	radiusDeg := radiusMeters / metersPerDegree
	rows := int(math.Ceil(radiusDeg/g.latStep)) + 1

	// The circle is widest in longitude at its poleward edge.
	edgeLat := math.Min(90, math.Abs(c.Latitude)+radiusDeg)
	cosEdge := math.Cos(edgeLat * math.Pi / 180)
	cols := math.MaxInt32
	if cosEdge > 1e-9 {
		cols = int(math.Ceil(radiusDeg/cosEdge/g.lonStep)) + 1
	}

	var results []Neighbor[T]
	collect := func(entries []*SpatialEntry[T]) {
		for _, e := range entries {
			if d := geo.Distance(c, e.Coords); d <= radiusMeters {
				results = append(results, Neighbor[T]{SpatialEntry: *e, Meters: d})
			}
		}
	}

	// Fall back to scanning every cell when the window is larger than the grid
	// or crosses the antimeridian.
	window := float64(2*rows+1) * float64(2*cols+1)
	lonSpan := float64(cols) * g.lonStep
	if window > float64(len(g.cells)) || math.Abs(c.Longitude)+lonSpan > 180 {
		for _, cell := range g.cells {
			collect(cell)
		}
	} else {
		center := g.cellKey(c)
		for dx := -cols; dx <= cols; dx++ {
			for dy := -rows; dy <= rows; dy++ {
				collect(g.cells[CellKey{X: center.X + dx, Y: center.Y + dy}])
			}
		}
	}

	sortNeighbors(results)
	return results
}

// Nearest returns the closest entry to c.
func (g *SpatialHashGrid[T]) Nearest(c geo.Coordinate) (Neighbor[T], bool) {
	if g.Size() == 0 {
		return Neighbor[T]{}, false
	}

	halfCircumference := math.Pi * geo.EarthRadiusMeters
	for r := g.cellMeters; ; r *= 2 {
		if r >= halfCircumference {
			r = halfCircumference
		}
		if found := g.QueryNearby(c, r); len(found) > 0 {
			return found[0], true
		}
		if r == halfCircumference {
			return Neighbor[T]{}, false
		}
	}
}

// All returns every entry sorted by id.
func (g *SpatialHashGrid[T]) All() []SpatialEntry[T] {
	g.mu.RLock()
	defer g.mu.RUnlock()

	out := make([]SpatialEntry[T], 0, len(g.entries))
	for _, e := range g.entries {
		out = append(out, *e)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// Size returns the total number of entries.
func (g *SpatialHashGrid[T]) Size() int {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return len(g.entries)
}

// NumCells returns the number of non-empty cells.
func (g *SpatialHashGrid[T]) NumCells() int {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return len(g.cells)
}

// Clear removes all entries.
func (g *SpatialHashGrid[T]) Clear() {
	g.mu.Lock()
	defer g.mu.Unlock()

	g.cells = make(map[CellKey][]*SpatialEntry[T])
	g.entries = make(map[string]*SpatialEntry[T])
}

func sortNeighbors[T any](ns []Neighbor[T]) {
	sort.Slice(ns, func(i, j int) bool {
		if ns[i].Meters != ns[j].Meters {
			return ns[i].Meters < ns[j].Meters
		}
		return ns[i].ID < ns[j].ID
	})
}
