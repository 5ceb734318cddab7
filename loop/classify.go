package loop

import (
	"sort"

	"github.com/brepkit/kernel/geom2"
	"github.com/dhconnelly/rtreego"
)

// Group is a classified set of nested loops sharing one outer boundary:
// even winding depth is an outer profile, odd depth is a hole, and each
// hole is assigned to its nearest enclosing outer loop.
type Group struct {
	Outer Loop
	Holes []Loop
}

// loopEntry wraps a Loop for storage in the rtreego spatial index: bounding
// boxes narrow the containment queries that would otherwise require an
// all-pairs winding-number test.
type loopEntry struct {
	index int
	loop  Loop
	rect  rtreego.Rect
}

func (e loopEntry) Bounds() rtreego.Rect { return e.rect }

func boundsOf(l Loop) *geom2.Rect {
	return geom2.BoundsOfPoints(l.Points)
}

func toRect(b *geom2.Rect) rtreego.Rect {
	point := rtreego.Point{b.Min().X, b.Min().Y}
	lengths := []float64{
		b.Max().X - b.Min().X,
		b.Max().Y - b.Min().Y,
	}
	rect, err := rtreego.NewRect(point, lengths)
	if err != nil {
		// A degenerate (zero-area) bounding box; pad it by a hair so
		// rtreego accepts it rather than rejecting a valid, if thin, loop.
		lengths[0] += 1e-9
		lengths[1] += 1e-9
		rect, _ = rtreego.NewRect(point, lengths)
	}
	return rect
}

// Classify groups loops into outer/hole nestings by winding-number
// containment depth.
func Classify(loops []Loop) []Group {
	if len(loops) == 0 {
		return nil
	}

	tree := rtreego.NewTree(2, 4, 16)
	entries := make([]*loopEntry, len(loops))
	for i, l := range loops {
		e := &loopEntry{index: i, loop: l, rect: toRect(boundsOf(l))}
		entries[i] = e
		tree.Insert(e)
	}

	depth := make([]int, len(loops))
	containingCount := make([][]int, len(loops))
	for i, l := range loops {
		probe := representativePoint(l)
		box := rtreego.Point{probe.X, probe.Y}
		queryRect, err := rtreego.NewRect(box, []float64{1e-9, 1e-9})
		if err != nil {
			continue
		}
		candidates := tree.SearchIntersect(queryRect)
		for _, c := range candidates {
			other := c.(*loopEntry)
			if other.index == i {
				continue
			}
			if geom2.PointInPolygon(probe, other.loop.Points) {
				containingCount[i] = append(containingCount[i], other.index)
			}
		}
		depth[i] = len(containingCount[i])
	}

	// Assign each hole (odd depth) to its nearest (deepest) enclosing
	// outer (even depth) ancestor.
	groups := map[int]*Group{}
	var order []int
	for i, l := range loops {
		if depth[i]%2 == 0 {
			groups[i] = &Group{Outer: normalizeWinding(l, true)}
			order = append(order, i)
		}
	}
	sort.Ints(order)

	for i, l := range loops {
		if depth[i]%2 != 1 {
			continue
		}
		parent := shallowestEnclosingOuter(i, depth, containingCount, loops)
		if parent < 0 {
			continue
		}
		g := groups[parent]
		g.Holes = append(g.Holes, normalizeWinding(l, false))
	}

	out := make([]Group, 0, len(order))
	for _, i := range order {
		out = append(out, *groups[i])
	}
	return out
}

// shallowestEnclosingOuter finds, among the outer loops that contain loop i,
// the one with the greatest depth, i.e. the nearest enclosing ancestor.
func shallowestEnclosingOuter(i int, depth []int, containingCount [][]int, loops []Loop) int {
	best := -1
	bestDepth := -1
	for _, candidate := range containingCount[i] {
		if depth[candidate]%2 != 0 {
			continue
		}
		if depth[candidate] > bestDepth {
			bestDepth = depth[candidate]
			best = candidate
		}
	}
	return best
}

func representativePoint(l Loop) geom2.Coord {
	// Midpoint of the first edge always lies on the boundary; nudge toward
	// the vertex centroid so it sits strictly inside a convex polygon. For
	// a concave loop the result can fall outside the loop.
	n := len(l.Points)
	var centroid geom2.Coord
	for _, p := range l.Points {
		centroid = centroid.Add(p)
	}
	centroid = centroid.Scale(1.0 / float64(n))
	edgeMid := l.Points[0].Add(l.Points[1%n]).Scale(0.5)
	return edgeMid.Add(centroid.Sub(edgeMid).Scale(0.5))
}

// normalizeWinding enforces the triangulator's convention: outer loops
// clockwise, holes counterclockwise.
func normalizeWinding(l Loop, outer bool) Loop {
	area := geom2.SignedArea(l.Points)
	ccw := area > 0
	wantCCW := !outer
	if ccw == wantCCW {
		return l
	}
	rev := make([]geom2.Coord, len(l.Points))
	revIDs := make([]int, len(l.SourceIDs))
	n := len(l.Points)
	for i := 0; i < n; i++ {
		rev[i] = l.Points[n-1-i]
	}
	// Reversed edge i runs from rev[i] to rev[i+1], which is original edge
	// n-2-i traversed backwards.
	m := len(l.SourceIDs)
	for i := range l.SourceIDs {
		revIDs[i] = l.SourceIDs[(2*m-2-i)%m]
	}
	return Loop{Points: rev, SourceIDs: revIDs}
}
