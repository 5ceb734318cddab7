// Package extref is the external-reference projector: it resolves a
// sketch's stored references to edges in other solids, projects their
// world-space endpoints onto the sketch plane, and pins the bound points
// to the projected coordinates.
package extref

import (
	"fmt"

	"github.com/brepkit/kernel/numerical"
	"github.com/brepkit/kernel/sketch"
)

// EdgeLookup is the scene graph's read-only edge resolver. Scene objects
// are owned by the graph; this package only reads them.
type EdgeLookup interface {
	// ByID resolves an edge by its persisted id within solidName.
	ByID(solidName string, edgeID int) (Edge, bool)
	// ByNameInSolid resolves an edge by name, scoped to one solid.
	ByNameInSolid(solidName, edgeName string) (Edge, bool)
	// ByNameGlobal resolves an edge by name across every solid in the
	// scene, used as the last fallback.
	ByNameGlobal(edgeName string) (Edge, bool)
}

// Edge is the read-only projection of a scene edge this package needs: its
// identity and its world-space polyline.
type Edge struct {
	ID      int
	Name    string
	Solid   string
	Polyline []numerical.Vec3
}

// Endpoints returns the edge's first and last sampled world-space points.
func (e Edge) Endpoints() (numerical.Vec3, numerical.Vec3) {
	return e.Polyline[0], e.Polyline[len(e.Polyline)-1]
}

// Ref is a stored external reference: an edge in another solid, plus the
// two sketch points it currently drives. Names are kept alongside the id
// so the edge survives renames and regenerated ids.
type Ref struct {
	EdgeID    int
	EdgeName  string
	SolidName string
	P0, P1    int // sketch point ids
}

// Plane is the minimal projection basis the projector needs: an origin and
// orthonormal x/y axes.
type Plane struct {
	Origin numerical.Vec3
	XAxis  numerical.Vec3
	YAxis  numerical.Vec3
}

func sub(a, b numerical.Vec3) numerical.Vec3 {
	return numerical.Vec3{X: a.X - b.X, Y: a.Y - b.Y, Z: a.Z - b.Z}
}

func dot(a, b numerical.Vec3) float64 {
	return a.X*b.X + a.Y*b.Y + a.Z*b.Z
}

// project maps a world-space point onto the plane's local (u, v) basis:
// translate by -origin, then take dot products with the x and y axes.
func project(plane Plane, p numerical.Vec3) (u, v float64) {
	rel := sub(p, plane.Origin)
	return dot(rel, plane.XAxis), dot(rel, plane.YAxis)
}

// Resolve re-resolves every ref against lookup, updates its stored id/name
// on a successful fallback, projects its endpoints onto plane, and pins
// the bound sketch points to the projected coordinates if they moved. It
// reports whether any point moved, so the caller knows whether to re-run
// the solver before compiling loops.
//
// A ref whose edge cannot be resolved at all does not abort the remaining
// refs: its bound points are left at their previous values and unpinned,
// and resolution continues with the next ref. The first such failure is
// still returned to the caller once every ref has been processed.
func Resolve(doc *sketch.Document, refs []*Ref, lookup EdgeLookup, plane Plane) (bool, error) {
	moved := false
	var firstErr error
	for _, ref := range refs {
		edge, err := resolveEdge(ref, lookup)
		if err != nil {
			if firstErr == nil {
				firstErr = err
			}
			continue
		}
		start, end := edge.Endpoints()
		u0, v0 := project(plane, start)
		u1, v1 := project(plane, end)

		if pinPoint(doc, ref.P0, u0, v0) {
			moved = true
		}
		if pinPoint(doc, ref.P1, u1, v1) {
			moved = true
		}
	}
	return moved, firstErr
}

// resolveEdge implements the id -> name-in-solid -> name-global fallback
// chain, updating ref in place on a successful fallback.
func resolveEdge(ref *Ref, lookup EdgeLookup) (Edge, error) {
	if e, ok := lookup.ByID(ref.SolidName, ref.EdgeID); ok {
		return e, nil
	}
	if e, ok := lookup.ByNameInSolid(ref.SolidName, ref.EdgeName); ok {
		ref.EdgeID = e.ID
		return e, nil
	}
	if e, ok := lookup.ByNameGlobal(ref.EdgeName); ok {
		ref.EdgeID = e.ID
		ref.SolidName = e.Solid
		ref.EdgeName = e.Name
		return e, nil
	}
	return Edge{}, fmt.Errorf("extref: could not resolve edge %d (%q) in solid %q",
		ref.EdgeID, ref.EdgeName, ref.SolidName)
}

// pinPoint, if (u, v) differs from a sketch point's current value, moves
// the point there, pins it, and ensures it carries a ground constraint. An
// unmoved point is left as it is. It reports whether the point moved.
func pinPoint(doc *sketch.Document, pointID int, u, v float64) bool {
	p, ok := doc.Points[pointID]
	if !ok {
		return false
	}
	moved := false
	if p.X.IsExpr() || p.X.Number() != u || p.Y.IsExpr() || p.Y.Number() != v {
		moved = true
	}
	if !moved {
		return false
	}
	p.X = sketch.Num(u)
	p.Y = sketch.Num(v)
	p.Fixed = true

	if !hasGroundOn(doc, pointID) {
		doc.AddConstraint(sketch.Ground, []int{pointID})
	}
	return moved
}

func hasGroundOn(doc *sketch.Document, pointID int) bool {
	for _, c := range doc.Constraints {
		if c.Kind == sketch.Ground && len(c.PointIDs) == 1 && c.PointIDs[0] == pointID {
			return true
		}
	}
	return false
}
