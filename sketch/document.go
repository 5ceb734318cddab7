// Package sketch holds the parametric sketch data model: points, geometries,
// and constraints, plus the document that owns them.
package sketch

import (
	"fmt"
)

// OriginID is the reserved id for the sketch origin point, which must always
// exist.
const OriginID = 0

// Point is a solver-owned 2D point. X and Y may each independently be an
// unevaluated expression until the expr hook resolves them.
type Point struct {
	ID    int
	X, Y  Value
	Fixed bool
}

// XY returns the current numeric coordinates. Callers must only use this
// after expression resolution (see expr.Resolve); it panics on an
// unresolved expression, since that indicates a caller bug, not a recoverable
// runtime condition.
func (p *Point) XY() (float64, float64) {
	must(requireTrue(!p.X.IsExpr() && !p.Y.IsExpr(), "sketch: point %d has an unresolved expression coordinate", p.ID))
	return p.X.Number(), p.Y.Number()
}

// requireTrue converts a boolean invariant check into must's expected
// error argument: nil when cond holds, a formatted error otherwise.
func requireTrue(cond bool, format string, args ...interface{}) error {
	if cond {
		return nil
	}
	return fmt.Errorf(format, args...)
}

// must panics with err when it is non-nil, so that an invariant violation
// can be recovered by the caller (see feature.Runtime.RunFeature).
func must(err error) {
	if err != nil {
		panic(err)
	}
}

// Geometry is a line, arc, or circle built from a sequence of point ids.
type Geometry struct {
	ID           int
	Kind         GeometryKind
	PointIDs     []int
	Construction bool
}

// DistanceStyle annotates how a distance constraint on a circle/arc radius
// should be displayed.
type DistanceStyle string

const (
	StyleNone     DistanceStyle = ""
	StyleRadius   DistanceStyle = "radius"
	StyleDiameter DistanceStyle = "diameter"
)

// Constraint is one entry of the geometric constraint system.
type Constraint struct {
	ID              int
	Kind            ConstraintKind
	PointIDs        []int
	Value           *Value
	ValueExpression *string
	Style           DistanceStyle
	Status          string
	Error           string
	Temporary       bool
}

// ResolvedValue returns the constraint's effective dimensional target.
// ValueExpression takes precedence over Value, but the expr hook already
// folds it into Value during resolution, so only Value is consulted here.
func (c *Constraint) ResolvedValue() (float64, bool) {
	if c.Value == nil {
		return 0, false
	}
	if c.Value.IsExpr() {
		return 0, false
	}
	return c.Value.Number(), true
}

// Document is the sketch's owned state: points, geometries, and constraints,
// each keyed by id.
type Document struct {
	Points      map[int]*Point
	Geometries  map[int]*Geometry
	Constraints map[int]*Constraint

	nextPointID      int
	nextGeometryID   int
	nextConstraintID int
}

// NewDocument creates an empty sketch document seeded with the origin point
// and its ground constraint.
func NewDocument() *Document {
	d := &Document{
		Points:      map[int]*Point{},
		Geometries:  map[int]*Geometry{},
		Constraints: map[int]*Constraint{},
	}
	d.Points[OriginID] = &Point{ID: OriginID, X: Num(0), Y: Num(0), Fixed: true}
	d.nextPointID = OriginID + 1
	d.AddConstraint(Ground, []int{OriginID})
	return d
}

// AddPoint inserts a new point at (x, y) and returns it.
func (d *Document) AddPoint(x, y float64) *Point {
	id := d.nextPointID
	d.nextPointID++
	p := &Point{ID: id, X: Num(x), Y: Num(y)}
	d.Points[id] = p
	return p
}

// AddGeometry inserts a new geometry, validating arity and point existence.
func (d *Document) AddGeometry(kind GeometryKind, pointIDs []int) (*Geometry, error) {
	if err := d.requireArity(kind, pointIDs); err != nil {
		return nil, err
	}
	for _, id := range pointIDs {
		if _, ok := d.Points[id]; !ok {
			return nil, fmt.Errorf("sketch: geometry references missing point %d", id)
		}
	}
	id := d.nextGeometryID
	d.nextGeometryID++
	g := &Geometry{ID: id, Kind: kind, PointIDs: append([]int{}, pointIDs...)}
	d.Geometries[id] = g
	return g, nil
}

func (d *Document) requireArity(kind GeometryKind, pointIDs []int) error {
	want := map[GeometryKind]int{Line: 2, Arc: 3, Circle: 2}[kind]
	if len(pointIDs) != want {
		return fmt.Errorf("sketch: %s requires %d points, got %d", kind, want, len(pointIDs))
	}
	return nil
}

// AddConstraint inserts a new constraint after validating arity and point
// existence.
func (d *Document) AddConstraint(kind ConstraintKind, pointIDs []int) *Constraint {
	must(requireTrue(len(pointIDs) == kind.Arity(),
		"sketch: %s requires %d points, got %d", kind, kind.Arity(), len(pointIDs)))
	for _, id := range pointIDs {
		must(requireTrue(d.Points[id] != nil, "sketch: constraint references missing point %d", id))
	}
	id := d.nextConstraintID
	d.nextConstraintID++
	c := &Constraint{ID: id, Kind: kind, PointIDs: append([]int{}, pointIDs...)}
	d.Constraints[id] = c
	return c
}

// RemovePoint removes a point and cascades the removal to any geometry or
// constraint that references it.
//
// Removing the sole point of the document's only ground constraint is
// forbidden: every document keeps at least one grounded point.
func (d *Document) RemovePoint(id int) error {
	if _, ok := d.Points[id]; !ok {
		return fmt.Errorf("sketch: no such point %d", id)
	}
	if d.isSoleGroundPoint(id) {
		return fmt.Errorf("sketch: cannot remove the sole ground point %d", id)
	}
	for gid, g := range d.Geometries {
		if containsInt(g.PointIDs, id) {
			delete(d.Geometries, gid)
		}
	}
	for cid, c := range d.Constraints {
		if containsInt(c.PointIDs, id) {
			delete(d.Constraints, cid)
		}
	}
	delete(d.Points, id)
	return nil
}

func (d *Document) isSoleGroundPoint(id int) bool {
	grounds := 0
	refsID := false
	for _, c := range d.Constraints {
		if c.Kind == Ground {
			grounds++
			if c.PointIDs[0] == id {
				refsID = true
			}
		}
	}
	return grounds == 1 && refsID
}

// RemoveGeometry removes a geometry by id. Constraint cleanup is the
// facade's job; see feature.Sketch.RemoveGeometry.
func (d *Document) RemoveGeometry(id int) error {
	if _, ok := d.Geometries[id]; !ok {
		return fmt.Errorf("sketch: no such geometry %d", id)
	}
	delete(d.Geometries, id)
	return nil
}

// RemoveConstraint removes a constraint by id.
func (d *Document) RemoveConstraint(id int) error {
	if _, ok := d.Constraints[id]; !ok {
		return fmt.Errorf("sketch: no such constraint %d", id)
	}
	delete(d.Constraints, id)
	return nil
}

// Clone deep-copies the document. The solver operates on a clone so the
// caller's document is never mutated mid-solve.
func (d *Document) Clone() *Document {
	clone := &Document{
		Points:           make(map[int]*Point, len(d.Points)),
		Geometries:       make(map[int]*Geometry, len(d.Geometries)),
		Constraints:      make(map[int]*Constraint, len(d.Constraints)),
		nextPointID:      d.nextPointID,
		nextGeometryID:   d.nextGeometryID,
		nextConstraintID: d.nextConstraintID,
	}
	for id, p := range d.Points {
		p1 := *p
		clone.Points[id] = &p1
	}
	for id, g := range d.Geometries {
		g1 := *g
		g1.PointIDs = append([]int{}, g.PointIDs...)
		clone.Geometries[id] = &g1
	}
	for id, c := range d.Constraints {
		c1 := *c
		c1.PointIDs = append([]int{}, c.PointIDs...)
		clone.Constraints[id] = &c1
	}
	return clone
}

// Validate checks the document invariants: the origin exists, at least one
// ground constraint exists, and every reference resolves with correct arity.
func (d *Document) Validate() error {
	if _, ok := d.Points[OriginID]; !ok {
		return fmt.Errorf("sketch: origin point %d missing", OriginID)
	}
	hasGround := false
	for _, c := range d.Constraints {
		if c.Kind == Ground {
			hasGround = true
		}
		if len(c.PointIDs) != c.Kind.Arity() {
			return fmt.Errorf("sketch: constraint %d kind %s arity mismatch", c.ID, c.Kind)
		}
		for _, id := range c.PointIDs {
			if _, ok := d.Points[id]; !ok {
				return fmt.Errorf("sketch: constraint %d references missing point %d", c.ID, id)
			}
		}
	}
	if !hasGround {
		return fmt.Errorf("sketch: at least one ground constraint is required")
	}
	for _, g := range d.Geometries {
		for _, id := range g.PointIDs {
			if _, ok := d.Points[id]; !ok {
				return fmt.Errorf("sketch: geometry %d references missing point %d", g.ID, id)
			}
		}
	}
	return nil
}

func containsInt(xs []int, v int) bool {
	for _, x := range xs {
		if x == v {
			return true
		}
	}
	return false
}
