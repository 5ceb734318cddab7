// Package feature holds the sketch solver facade (the mutable-document
// edit surface: point/geometry/constraint CRUD with cascading deletes,
// composite construction operations, coincidence simplification) and the
// runtime that drives one feature's prepare -> solve -> compile -> emit
// pipeline.
package feature

import (
	"fmt"
	"sort"

	"github.com/brepkit/kernel/constraint"
	"github.com/brepkit/kernel/geom2"
	"github.com/brepkit/kernel/sketch"
)

// Sketch owns a mutable document and mediates every edit operation.
type Sketch struct {
	Doc    *sketch.Document
	Engine constraint.Engine
}

// NewSketch wraps an existing document in a facade, or creates an empty one
// if doc is nil.
func NewSketch(doc *sketch.Document) *Sketch {
	if doc == nil {
		doc = sketch.NewDocument()
	}
	return &Sketch{Doc: doc}
}

// Solve runs the engine over the current document and replaces it with the
// solved copy. A nil iterations selects the default cap; a positive value
// overrides it.
func (s *Sketch) Solve(iterations *int) *sketch.Document {
	eng := s.Engine
	if iterations != nil && *iterations > 0 {
		eng.IterationCap = *iterations
	}
	s.Doc = eng.Solve(s.Doc)
	return s.Doc
}

// RemovePoint removes a point, cascading to geometries/constraints that
// reference it.
func (s *Sketch) RemovePoint(id int) error {
	return s.Doc.RemovePoint(id)
}

// RemoveGeometry removes a geometry and any constraint that references one
// of its points.
func (s *Sketch) RemoveGeometry(id int) error {
	g, ok := s.Doc.Geometries[id]
	if !ok {
		return fmt.Errorf("feature: no such geometry %d", id)
	}
	if err := s.Doc.RemoveGeometry(id); err != nil {
		return err
	}
	for cid, c := range s.Doc.Constraints {
		if sharesAnyPoint(c.PointIDs, g.PointIDs) {
			delete(s.Doc.Constraints, cid)
		}
	}
	return nil
}

// RemoveConstraint removes a single constraint by id.
func (s *Sketch) RemoveConstraint(id int) error {
	return s.Doc.RemoveConstraint(id)
}

func sharesAnyPoint(a, b []int) bool {
	set := make(map[int]bool, len(b))
	for _, v := range b {
		set[v] = true
	}
	for _, v := range a {
		if set[v] {
			return true
		}
	}
	return false
}

// requiredSelectionCount is how many selected points each geometry kind
// consumes.
var requiredSelectionCount = map[sketch.GeometryKind]int{
	sketch.Line:   2,
	sketch.Arc:    3,
	sketch.Circle: 2,
}

// CreateGeometry adds a geometry of kind using pointIDs; if pointIDs is
// nil, selection is sourced from sel.
func (s *Sketch) CreateGeometry(kind sketch.GeometryKind, pointIDs []int, sel SelectionProvider) (*sketch.Geometry, error) {
	if pointIDs == nil {
		if sel == nil {
			return nil, fmt.Errorf("feature: create_geometry requires a selection provider when point_ids is omitted")
		}
		pointIDs = sel.SelectedPoints()
	}
	want, ok := requiredSelectionCount[kind]
	if !ok {
		return nil, fmt.Errorf("feature: unknown geometry kind %q", kind)
	}
	if len(pointIDs) != want {
		return nil, fmt.Errorf("feature: %s requires %d selected points, got %d", kind, want, len(pointIDs))
	}
	return s.Doc.AddGeometry(kind, pointIDs)
}

// SelectionProvider is the external selection source create_geometry and
// create_constraint fall back to when no explicit ids are given.
type SelectionProvider interface {
	SelectedPoints() []int
	SelectedGeometries() []int
}

// CreateRectangle builds an axis-aligned rectangle from two opposite
// corners: 6 new points, 4 line segments, 4 coincident constraints pinning
// the new corner points to the originals, and 3 perpendicular constraints
// (the fourth follows from the other three), then a full solve.
func (s *Sketch) CreateRectangle(cornerAID, cornerCID int) ([]*sketch.Geometry, error) {
	a, ok := s.Doc.Points[cornerAID]
	if !ok {
		return nil, fmt.Errorf("feature: no such point %d", cornerAID)
	}
	c, ok := s.Doc.Points[cornerCID]
	if !ok {
		return nil, fmt.Errorf("feature: no such point %d", cornerCID)
	}
	ax, ay := a.XY()
	cx, cy := c.XY()

	// A fresh point at each of the 4 axis-aligned rectangle corners, so
	// the rectangle owns its own geometry independent of whatever else
	// cornerAID/cornerCID are used for, plus 2 duplicates of the diagonal
	// endpoints used purely as coincidence anchors back to the caller's
	// original selection.
	pA := s.Doc.AddPoint(ax, ay)
	pB := s.Doc.AddPoint(cx, ay)
	pC := s.Doc.AddPoint(cx, cy)
	pD := s.Doc.AddPoint(ax, cy)
	dupA := s.Doc.AddPoint(ax, ay)
	dupC := s.Doc.AddPoint(cx, cy)

	lines := make([]*sketch.Geometry, 0, 4)
	pairs := [][2]*sketch.Point{{pA, pB}, {pB, pC}, {pC, pD}, {pD, pA}}
	for _, pair := range pairs {
		g, err := s.Doc.AddGeometry(sketch.Line, []int{pair[0].ID, pair[1].ID})
		if err != nil {
			return nil, err
		}
		lines = append(lines, g)
	}

	// 4 coincident constraints at corners: each diagonal endpoint is
	// anchored to its duplicate, and each duplicate is anchored to its
	// rectangle corner.
	s.Doc.AddConstraint(sketch.Coincident, []int{dupA.ID, cornerAID})
	s.Doc.AddConstraint(sketch.Coincident, []int{pA.ID, dupA.ID})
	s.Doc.AddConstraint(sketch.Coincident, []int{dupC.ID, cornerCID})
	s.Doc.AddConstraint(sketch.Coincident, []int{pC.ID, dupC.ID})

	s.Doc.AddConstraint(sketch.Perpendicular, []int{pA.ID, pB.ID, pB.ID, pC.ID})
	s.Doc.AddConstraint(sketch.Perpendicular, []int{pB.ID, pC.ID, pC.ID, pD.ID})
	s.Doc.AddConstraint(sketch.Perpendicular, []int{pC.ID, pD.ID, pD.ID, pA.ID})

	s.Solve(nil)
	return lines, nil
}

// CreateConstraint validates kind's arity and applies kind-specific
// seeding. angle and distance seed their value from current geometry when
// absent, which the engine also does lazily on first solve; this entry
// point exists so callers can inspect the seeded value immediately, before
// the first solve. If pointIDs is nil, selection is sourced from sel.
func (s *Sketch) CreateConstraint(kind sketch.ConstraintKind, pointIDs []int, sel SelectionProvider) (*sketch.Constraint, error) {
	if pointIDs == nil {
		if sel == nil {
			return nil, fmt.Errorf("feature: create_constraint requires a selection provider when point_ids is omitted")
		}
		pointIDs = sel.SelectedPoints()
	}
	if len(pointIDs) != kind.Arity() {
		return nil, fmt.Errorf("feature: create_constraint: %s requires %d points, got %d", kind, kind.Arity(), len(pointIDs))
	}
	for _, id := range pointIDs {
		if _, ok := s.Doc.Points[id]; !ok {
			return nil, fmt.Errorf("feature: create_constraint: no such point %d", id)
		}
	}
	c := s.Doc.AddConstraint(kind, pointIDs)
	seedConstraint(s.Doc, c)
	return c, nil
}

// seedConstraint pre-computes a dimensional constraint's initial value
// from current geometry, mirroring what the engine would otherwise seed
// lazily on its first pass.
func seedConstraint(doc *sketch.Document, c *sketch.Constraint) {
	switch c.Kind {
	case sketch.Distance:
		p0, p1 := doc.Points[c.PointIDs[0]], doc.Points[c.PointIDs[1]]
		x0, y0 := p0.XY()
		x1, y1 := p1.XY()
		v := sketch.Num(geom2.XY(x0, y0).Dist(geom2.XY(x1, y1)))
		c.Value = &v
	case sketch.Angle:
		p0, p1 := doc.Points[c.PointIDs[0]], doc.Points[c.PointIDs[1]]
		p2, p3 := doc.Points[c.PointIDs[2]], doc.Points[c.PointIDs[3]]
		x0, y0 := p0.XY()
		x1, y1 := p1.XY()
		x2, y2 := p2.XY()
		x3, y3 := p3.XY()
		a1 := geom2.XY(x1, y1).Sub(geom2.XY(x0, y0)).Angle()
		a2 := geom2.XY(x3, y3).Sub(geom2.XY(x2, y2)).Angle()
		deg := geom2.NormalizeDegrees((a2 - a1) * 180 / 3.141592653589793)
		v := sketch.Num(deg)
		c.Value = &v
	}
}

// SimplifyCoincident collapses every equivalence class of points joined by
// a coincident constraint down to its lowest-id member: all geometry and
// constraint references are rewritten to the canonical id, degenerate
// (self-referential) coincident constraints are dropped, and any
// now-unreferenced point is garbage-collected.
func (s *Sketch) SimplifyCoincident() {
	uf := newUnionFind()
	for id := range s.Doc.Points {
		uf.add(id)
	}
	for _, c := range s.Doc.Constraints {
		if c.Kind == sketch.Coincident {
			uf.union(c.PointIDs[0], c.PointIDs[1])
		}
	}

	canonical := func(id int) int { return uf.find(id) }

	for _, g := range s.Doc.Geometries {
		for i, id := range g.PointIDs {
			g.PointIDs[i] = canonical(id)
		}
	}
	for cid, c := range s.Doc.Constraints {
		for i, id := range c.PointIDs {
			c.PointIDs[i] = canonical(id)
		}
		if c.Kind == sketch.Coincident && c.PointIDs[0] == c.PointIDs[1] {
			delete(s.Doc.Constraints, cid)
		}
	}

	used := map[int]bool{sketch.OriginID: true}
	for _, g := range s.Doc.Geometries {
		for _, id := range g.PointIDs {
			used[id] = true
		}
	}
	for _, c := range s.Doc.Constraints {
		for _, id := range c.PointIDs {
			used[id] = true
		}
	}
	ids := make([]int, 0, len(s.Doc.Points))
	for id := range s.Doc.Points {
		ids = append(ids, id)
	}
	sort.Ints(ids)
	for _, id := range ids {
		if !used[id] {
			delete(s.Doc.Points, id)
		}
	}
}

// unionFind is a minimal path-compressing union-find over int ids.
type unionFind struct {
	parent map[int]int
}

func newUnionFind() *unionFind {
	return &unionFind{parent: map[int]int{}}
}

func (u *unionFind) add(id int) {
	if _, ok := u.parent[id]; !ok {
		u.parent[id] = id
	}
}

func (u *unionFind) find(id int) int {
	u.add(id)
	if u.parent[id] != id {
		u.parent[id] = u.find(u.parent[id])
	}
	return u.parent[id]
}

func (u *unionFind) union(a, b int) {
	ra, rb := u.find(a), u.find(b)
	if ra == rb {
		return
	}
	// Canonical representative is always the lowest id.
	if ra < rb {
		u.parent[rb] = ra
	} else {
		u.parent[ra] = rb
	}
}
