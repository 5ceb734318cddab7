package loop

import (
	"fmt"
	"math"

	"github.com/brepkit/kernel/geom2"
	"github.com/unixpickle/splaytree"
)

// Loop is a chain of segments whose endpoints close up into a cycle.
type Loop struct {
	// Points is the ordered, deduplicated boundary: Points[i] connects to
	// Points[i+1], and the last connects back to Points[0].
	Points []geom2.Coord
	// SourceIDs lists, in order, the originating geometry id of each edge.
	SourceIDs []int
}

// segRef wraps a rawSegment for storage in the splaytree-backed unused-pool,
// ordered by synthetic id. The pool is drained by repeatedly taking the max
// and deleting it.
type segRef struct {
	seg rawSegment
}

func (s *segRef) Compare(other *segRef) int {
	if s.seg.id < other.seg.id {
		return -1
	}
	if s.seg.id > other.seg.id {
		return 1
	}
	return 0
}

// endpointKey rounds a coordinate to 6 decimals and renders it as a map
// key, so segment endpoints that the solver left within rounding distance
// of each other chain together.
func endpointKey(c geom2.Coord) string {
	r := c.Round(6)
	return fmt.Sprintf("%.6f,%.6f", r.X, r.Y)
}

// Chain connects materialized segments head-to-tail into closed loops.
// Segments that cannot be closed into a loop are left out of the result.
func Chain(segs []rawSegment) []Loop {
	pool := &splaytree.Tree[*segRef]{}
	byEndpoint := map[string][]*segRef{}
	for _, s := range segs {
		ref := &segRef{seg: s}
		pool.Insert(ref)
		byEndpoint[endpointKey(s.a)] = append(byEndpoint[endpointKey(s.a)], ref)
		byEndpoint[endpointKey(s.b)] = append(byEndpoint[endpointKey(s.b)], ref)
	}

	inPool := map[int]bool{}
	for _, s := range segs {
		inPool[s.id] = true
	}
	remaining := len(segs)

	remove := func(ref *segRef) {
		if !inPool[ref.seg.id] {
			return
		}
		pool.Delete(ref)
		inPool[ref.seg.id] = false
		remaining--
	}

	var loops []Loop
	for remaining > 0 {
		start := pool.Max()
		remove(start)

		pts := []geom2.Coord{start.seg.a}
		sourceIDs := []int{start.seg.sourceID}
		cursor := start.seg.b
		closed := false

		for {
			if endpointKey(cursor) == endpointKey(pts[0]) {
				closed = true
				break
			}
			next := findNextSegment(byEndpoint, inPool, cursor)
			if next == nil {
				break
			}
			remove(next)
			pts = append(pts, cursor)
			sourceIDs = append(sourceIDs, next.seg.sourceID)
			if endpointKey(next.seg.a) == endpointKey(cursor) {
				cursor = next.seg.b
			} else {
				cursor = next.seg.a
			}
		}

		if !closed {
			continue
		}

		pts, sourceIDs = dropCollinear(pts, sourceIDs)
		if len(pts) < 3 {
			continue
		}
		if math.Abs(geom2.SignedArea(pts)) < 1e-12 {
			continue
		}
		loops = append(loops, Loop{Points: pts, SourceIDs: sourceIDs})
	}
	return loops
}

// findNextSegment finds a still-unused segment touching at, other than
// already-consumed ones.
func findNextSegment(byEndpoint map[string][]*segRef, inPool map[int]bool, at geom2.Coord) *segRef {
	for _, ref := range byEndpoint[endpointKey(at)] {
		if inPool[ref.seg.id] {
			return ref
		}
	}
	return nil
}

// dropCollinear strips points whose adjacent edges are effectively
// collinear (cross-product magnitude below tolerance). Points[i] is the
// start of the edge sourceIDs[i]; dropping point i merges edges
// sourceIDs[i-1] and sourceIDs[i], keeping the former's id.
func dropCollinear(pts []geom2.Coord, sourceIDs []int) ([]geom2.Coord, []int) {
	if len(pts) < 3 {
		return pts, sourceIDs
	}
	var outPts []geom2.Coord
	var outIDs []int
	n := len(pts)
	for i := 0; i < n; i++ {
		prev := pts[(i-1+n)%n]
		cur := pts[i]
		next := pts[(i+1)%n]
		e1 := cur.Sub(prev)
		e2 := next.Sub(cur)
		if math.Abs(e1.Cross(e2)) < 1e-9 {
			continue
		}
		outPts = append(outPts, cur)
		outIDs = append(outIDs, sourceIDs[i])
	}
	if len(outPts) < 3 {
		return pts, sourceIDs
	}
	return outPts, outIDs
}
