package constraint

import (
	"github.com/brepkit/kernel/geom2"
	"github.com/brepkit/kernel/sketch"
)

// segment is a local view of two sketch points forming one side of a
// 4-arity relational constraint (equal-length, parallel, perpendicular,
// angle, tangent).
type segment struct {
	A, B *sketch.Point
}

func (s segment) coordA() geom2.Coord {
	x, y := s.A.XY()
	return geom2.XY(x, y)
}

func (s segment) coordB() geom2.Coord {
	x, y := s.B.XY()
	return geom2.XY(x, y)
}

func (s segment) vector() geom2.Coord {
	return s.coordB().Sub(s.coordA())
}

func (s segment) angle() float64 {
	return s.vector().Angle()
}

func (s segment) length() float64 {
	return s.coordB().Dist(s.coordA())
}

// locked reports whether this segment's two endpoints are already tied
// together by a horizontal or vertical constraint in doc, meaning the angle
// constraint must not rotate it.
func (s segment) locked(doc *sketch.Document) bool {
	return hasConstraintOn(doc, sketch.Horizontal, s.A.ID, s.B.ID) ||
		hasConstraintOn(doc, sketch.Vertical, s.A.ID, s.B.ID)
}

func pointsOf(doc *sketch.Document, ids []int) []*sketch.Point {
	pts := make([]*sketch.Point, len(ids))
	for i, id := range ids {
		pts[i] = doc.Points[id]
	}
	return pts
}

func segmentsOf(doc *sketch.Document, ids []int) (segment, segment) {
	pts := pointsOf(doc, ids)
	return segment{A: pts[0], B: pts[1]}, segment{A: pts[2], B: pts[3]}
}

// hasConstraintOn reports whether doc has a constraint of the given kind
// whose (unordered) point-id pair matches (a, b).
func hasConstraintOn(doc *sketch.Document, kind sketch.ConstraintKind, a, b int) bool {
	return findConstraintOn(doc, kind, a, b) != nil
}

func findConstraintOn(doc *sketch.Document, kind sketch.ConstraintKind, a, b int) *sketch.Constraint {
	for _, c := range doc.Constraints {
		if c.Kind != kind || len(c.PointIDs) != 2 {
			continue
		}
		if (c.PointIDs[0] == a && c.PointIDs[1] == b) || (c.PointIDs[0] == b && c.PointIDs[1] == a) {
			return c
		}
	}
	return nil
}

func setXY(p *sketch.Point, x, y float64) {
	p.X = sketch.Num(x)
	p.Y = sketch.Num(y)
}

func coordOf(p *sketch.Point) geom2.Coord {
	x, y := p.XY()
	return geom2.XY(x, y)
}

func free(p *sketch.Point) bool {
	return !p.Fixed
}
