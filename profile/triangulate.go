// Package profile compiles classified loops (see package loop) into
// triangulated, world-lifted profiles.
package profile

import (
	"math"

	"github.com/brepkit/kernel/geom2"
	"github.com/brepkit/kernel/loop"
)

// Triangle holds three indices into a shared vertex list.
type Triangle [3]int

// triangulate2D runs ear-clipping-with-hole-bridging over a classified
// group, returning the combined vertex ring (outer followed by bridged
// holes) and its triangle indices.
func triangulate2D(g loop.Group) ([]geom2.Coord, []Triangle) {
	ring := append([]geom2.Coord(nil), g.Outer.Points...)
	for _, hole := range g.Holes {
		ring = bridgeHole(ring, hole.Points)
	}

	tris := earClip(ring)
	return ring, tris
}

// bridgeHole splices a hole loop into the outer ring via the classic
// "bridge edge" technique: connect the hole's rightmost vertex to the
// nearest ring vertex (see nearestVisibleVertex), duplicating both
// endpoints so the ring stays a single polygon ear-clipping can consume.
func bridgeHole(ring []geom2.Coord, hole []geom2.Coord) []geom2.Coord {
	holeStart := rightmostIndex(hole)
	bridgeFrom := nearestVisibleVertex(ring, hole[holeStart])

	out := make([]geom2.Coord, 0, len(ring)+len(hole)+2)
	out = append(out, ring[:bridgeFrom+1]...)
	for i := 0; i <= len(hole); i++ {
		out = append(out, hole[(holeStart+i)%len(hole)])
	}
	out = append(out, ring[bridgeFrom:]...)
	return out
}

func rightmostIndex(pts []geom2.Coord) int {
	best := 0
	for i, p := range pts {
		if p.X > pts[best].X {
			best = i
		}
	}
	return best
}

// nearestVisibleVertex returns the index in ring of the vertex closest to
// target, as a practical stand-in for a full visibility test. No
// visibility check is made: loop.Classify only tests one representative
// point of each hole, so when the nearest vertex is hidden behind a
// concave part of the outer ring or another hole, the bridge crosses it.
func nearestVisibleVertex(ring []geom2.Coord, target geom2.Coord) int {
	best := 0
	bestDist := math.Inf(1)
	for i, p := range ring {
		d := p.Dist(target)
		if d < bestDist {
			bestDist = d
			best = i
		}
	}
	return best
}

// earClip triangulates a simple polygon (possibly with bridged holes) by
// repeatedly clipping convex, empty "ears".
func earClip(poly []geom2.Coord) []Triangle {
	n := len(poly)
	if n < 3 {
		return nil
	}
	idx := make([]int, n)
	for i := range idx {
		idx[i] = i
	}

	var tris []Triangle
	guard := 0
	for len(idx) > 3 && guard < n*n+16 {
		guard++
		earFound := false
		for i := 0; i < len(idx); i++ {
			prev := idx[(i-1+len(idx))%len(idx)]
			cur := idx[i]
			next := idx[(i+1)%len(idx)]
			if !isConvex(poly[prev], poly[cur], poly[next]) {
				continue
			}
			if anyPointInTriangle(poly, idx, prev, cur, next) {
				continue
			}
			tris = append(tris, Triangle{prev, cur, next})
			idx = append(idx[:i], idx[i+1:]...)
			earFound = true
			break
		}
		if !earFound {
			break
		}
	}
	if len(idx) == 3 {
		tris = append(tris, Triangle{idx[0], idx[1], idx[2]})
	}
	return tris
}

func isConvex(a, b, c geom2.Coord) bool {
	return b.Sub(a).Cross(c.Sub(b)) < 0
}

func anyPointInTriangle(poly []geom2.Coord, idx []int, a, b, c int) bool {
	for _, i := range idx {
		if i == a || i == b || i == c {
			continue
		}
		// Bridging duplicates vertices; a copy of a corner is not inside.
		if poly[i] == poly[a] || poly[i] == poly[b] || poly[i] == poly[c] {
			continue
		}
		if pointInTriangle(poly[i], poly[a], poly[b], poly[c]) {
			return true
		}
	}
	return false
}

func pointInTriangle(p, a, b, c geom2.Coord) bool {
	d1 := b.Sub(a).Cross(p.Sub(a))
	d2 := c.Sub(b).Cross(p.Sub(b))
	d3 := a.Sub(c).Cross(p.Sub(c))
	hasNeg := d1 < 0 || d2 < 0 || d3 < 0
	hasPos := d1 > 0 || d2 > 0 || d3 > 0
	return !(hasNeg && hasPos)
}
