// Waypoint - Geofenced Campus Tour Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/waypoint

package hotspot

import "sort"

// Link is one outgoing reference from a hotspot page.
type Link struct {
	To    string `json:"to"`
	Media bool   `json:"media"`
}

// DanglingLink is a reference to a hotspot_id missing from the snapshot.
type DanglingLink struct {
	From string `json:"from"`
	To   string `json:"to"`
}

// Graph is the adjacency list formed by main_pages and media_pages. Tours
// may loop, so every traversal tracks visited nodes.
type Graph struct {
	snap  *Snapshot
	links map[string][]Link
}

// NewGraph indexes the links of every hotspot in s.
func NewGraph(s *Snapshot) *Graph {
	g := &Graph{snap: s, links: make(map[string][]Link, s.Len())}
	for _, h := range s.All() {
		out := make([]Link, 0, len(h.MainPages)+len(h.MediaPages))
		for _, id := range h.MainPages {
			out = append(out, Link{To: id})
		}
		for _, id := range h.MediaPages {
			out = append(out, Link{To: id, Media: true})
		}
		g.links[h.ID] = out
	}
	return g
}

// Links returns the outgoing links of id in document order.
func (g *Graph) Links(id string) []Link {
	return g.links[id]
}

// Reachable returns every hotspot reachable from start, excluding start,
// in breadth-first order. Links to unknown ids are skipped.
func (g *Graph) Reachable(start string) []string {
	visited := map[string]bool{start: true}
	queue := []string{start}
	var out []string

	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]
		for _, l := range g.links[cur] {
			if visited[l.To] {
				continue
			}
			visited[l.To] = true
			if _, ok := g.snap.Get(l.To); !ok {
				continue
			}
			out = append(out, l.To)
			queue = append(queue, l.To)
		}
	}
	return out
}

// Parents returns the ids of hotspots linking to id, in document order.
func (g *Graph) Parents(id string) []string {
	var out []string
	for _, h := range g.snap.All() {
		for _, l := range g.links[h.ID] {
			if l.To == id {
				out = append(out, h.ID)
				break
			}
		}
	}
	return out
}

// Dangling lists links whose target is not in the snapshot, sorted by
// source then target.
func (g *Graph) Dangling() []DanglingLink {
	var out []DanglingLink
	for from, links := range g.links {
		for _, l := range links {
			if _, ok := g.snap.Get(l.To); !ok {
				out = append(out, DanglingLink{From: from, To: l.To})
			}
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].From != out[j].From {
			return out[i].From < out[j].From
		}
		return out[i].To < out[j].To
	})
	return out
}
