// Package constraint holds the constraint catalog (local relaxation
// routines, one per kind) and the iterative engine that drives them to
// convergence.
package constraint

import (
	"math"

	"github.com/brepkit/kernel/geom2"
	"github.com/brepkit/kernel/sketch"
)

// rotateStepLimit caps how far the angle constraint may rotate a segment in
// one iteration: 1.5 degrees.
const rotateStepLimit = 1.5 * math.Pi / 180

// moveFraction is the relaxation rate used by the equal-length/midpoint
// routines to move free points toward their target each iteration. Less
// than 1 so that interacting constraints converge rather than overshoot;
// the engine's movement throttle provides the hard displacement cap.
const moveFraction = 0.5

// routine is the signature every catalog entry implements: mutate the
// points named by c.PointIDs toward satisfying c, recording any failure on
// c.Error without aborting the caller.
type routine func(doc *sketch.Document, c *sketch.Constraint, rnd RandSource)

// Catalog is the dispatch table from constraint kind to relaxation routine.
var Catalog = map[sketch.ConstraintKind]routine{
	sketch.Ground:        applyGround,
	sketch.Coincident:    applyCoincident,
	sketch.Horizontal:    applyHorizontal,
	sketch.Vertical:      applyVertical,
	sketch.Distance:      applyDistance,
	sketch.EqualLength:   applyEqualLength,
	sketch.Parallel:      applyParallel,
	sketch.Perpendicular: applyPerpendicular,
	sketch.Angle:         applyAngle,
	sketch.PointOnLine:   applyPointOnLine,
	sketch.Midpoint:      applyMidpoint,
	sketch.Tangent:       applyTangent,
}

func applyGround(doc *sketch.Document, c *sketch.Constraint, rnd RandSource) {
	doc.Points[c.PointIDs[0]].Fixed = true
}

func applyCoincident(doc *sketch.Document, c *sketch.Constraint, rnd RandSource) {
	p0 := doc.Points[c.PointIDs[0]]
	p1 := doc.Points[c.PointIDs[1]]
	a, b := coordOf(p0), coordOf(p1)

	switch {
	case free(p0) && free(p1):
		mid := a.Add(b).Scale(0.5)
		setXY(p0, mid.X, mid.Y)
		setXY(p1, mid.X, mid.Y)
	case free(p0):
		setXY(p0, b.X, b.Y)
		p0.Fixed = true
		p1.Fixed = true
	case free(p1):
		setXY(p1, a.X, a.Y)
		p0.Fixed = true
		p1.Fixed = true
	default:
		if a.Dist(b) > 1e-4 {
			c.Error = "over-constrained: coincident points are both pinned at different positions"
		} else {
			c.Error = ""
		}
	}
}

func applyHorizontal(doc *sketch.Document, c *sketch.Constraint, rnd RandSource) {
	p0 := doc.Points[c.PointIDs[0]]
	p1 := doc.Points[c.PointIDs[1]]
	switch {
	case free(p0) && free(p1):
		y := (mustY(p0) + mustY(p1)) / 2
		setY(p0, y)
		setY(p1, y)
	case free(p0):
		setY(p0, mustY(p1))
	case free(p1):
		setY(p1, mustY(p0))
	}
}

func applyVertical(doc *sketch.Document, c *sketch.Constraint, rnd RandSource) {
	p0 := doc.Points[c.PointIDs[0]]
	p1 := doc.Points[c.PointIDs[1]]
	switch {
	case free(p0) && free(p1):
		x := (mustX(p0) + mustX(p1)) / 2
		setX(p0, x)
		setX(p1, x)
	case free(p0):
		setX(p0, mustX(p1))
	case free(p1):
		setX(p1, mustX(p0))
	}
}

func mustX(p *sketch.Point) float64 { x, _ := p.XY(); return x }
func mustY(p *sketch.Point) float64 { _, y := p.XY(); return y }
func setX(p *sketch.Point, x float64) { _, y := p.XY(); setXY(p, x, y) }
func setY(p *sketch.Point, y float64) { x, _ := p.XY(); setXY(p, x, y) }

func applyDistance(doc *sketch.Document, c *sketch.Constraint, rnd RandSource) {
	p0 := doc.Points[c.PointIDs[0]]
	p1 := doc.Points[c.PointIDs[1]]
	target, ok := c.ResolvedValue()
	current := coordOf(p0).Dist(coordOf(p1))
	if !ok {
		// Seed the value from the current distance on first evaluation.
		v := sketch.Num(current)
		c.Value = &v
		return
	}
	moveToDistance(p0, p1, target, 1.0)
}

// moveToDistance scales the vector between p0 and p1 toward the target
// distance, moving only the free endpoint(s) and splitting the move evenly
// if both are free.
func moveToDistance(p0, p1 *sketch.Point, target float64, rate float64) {
	a, b := coordOf(p0), coordOf(p1)
	current := a.Dist(b)
	if current < 1e-12 {
		return
	}
	dir := b.Sub(a).Scale(1 / current)
	delta := (target - current) * rate

	switch {
	case free(p0) && free(p1):
		half := delta / 2
		newA := a.Sub(dir.Scale(half))
		newB := b.Add(dir.Scale(half))
		setXY(p0, newA.X, newA.Y)
		setXY(p1, newB.X, newB.Y)
	case free(p0):
		newA := a.Sub(dir.Scale(delta))
		setXY(p0, newA.X, newA.Y)
	case free(p1):
		newB := b.Add(dir.Scale(delta))
		setXY(p1, newB.X, newB.Y)
	}
}

func applyEqualLength(doc *sketch.Document, c *sketch.Constraint, rnd RandSource) {
	segA, segB := segmentsOf(doc, c.PointIDs)
	distA := findConstraintOn(doc, sketch.Distance, segA.A.ID, segA.B.ID)
	distB := findConstraintOn(doc, sketch.Distance, segB.A.ID, segB.B.ID)

	switch {
	case distA != nil && distB != nil:
		c.Error = "over-constrained: both segments already have independent distance constraints"
	case distA != nil:
		if v, ok := distA.ResolvedValue(); ok {
			moveToDistance(segB.A, segB.B, v, moveFraction)
		}
	case distB != nil:
		if v, ok := distB.ResolvedValue(); ok {
			moveToDistance(segA.A, segA.B, v, moveFraction)
		}
	default:
		avg := (segA.length() + segB.length()) / 2
		moveToDistance(segA.A, segA.B, avg, moveFraction)
		moveToDistance(segB.A, segB.B, avg, moveFraction)
	}
}

func applyParallel(doc *sketch.Document, c *sketch.Constraint, rnd RandSource) {
	segA, segB := segmentsOf(doc, c.PointIDs)
	if segA.locked(doc) {
		propagateAxisLock(doc, segA, segB)
		return
	}
	if segB.locked(doc) {
		propagateAxisLock(doc, segB, segA)
		return
	}
	target := nearestMultiple(segB.angle()-segA.angle(), 180)
	rotateTowardAngle(doc, c, segA, segB, target, rnd)
}

func applyPerpendicular(doc *sketch.Document, c *sketch.Constraint, rnd RandSource) {
	segA, segB := segmentsOf(doc, c.PointIDs)
	if segA.locked(doc) {
		propagatePerpendicularLock(doc, segA, segB)
		return
	}
	if segB.locked(doc) {
		propagatePerpendicularLock(doc, segB, segA)
		return
	}
	// Target whichever of 90/270 is reachable with the smaller rotation.
	offset := segB.angle() - segA.angle() - math.Pi/2
	target := geom2.NormalizeDegrees(nearestMultiple(offset, 180) + 90)
	rotateTowardAngle(doc, c, segA, segB, target, rnd)
}

func applyTangent(doc *sketch.Document, c *sketch.Constraint, rnd RandSource) {
	// Degenerate: identical to perpendicular pending a proper
	// tangent-to-curve formulation.
	applyPerpendicular(doc, c, rnd)
}

func nearestMultiple(angleRad float64, multipleDeg float64) float64 {
	deg := geom2.NormalizeDegrees(angleRad * 180 / math.Pi)
	n := math.Round(deg / multipleDeg)
	return geom2.NormalizeDegrees(n * multipleDeg)
}

// propagateAxisLock propagates a horizontal/vertical lock from `locked` onto
// `other`'s two endpoints: two parallel segments share an axis alignment.
func propagateAxisLock(doc *sketch.Document, locked, other segment) {
	if hasConstraintOn(doc, sketch.Horizontal, locked.A.ID, locked.B.ID) {
		applyHorizontal(doc, &sketch.Constraint{PointIDs: []int{other.A.ID, other.B.ID}}, nil)
	} else {
		applyVertical(doc, &sketch.Constraint{PointIDs: []int{other.A.ID, other.B.ID}}, nil)
	}
}

// propagatePerpendicularLock propagates an axis lock from `locked` onto
// `other` as the opposite axis, since a segment perpendicular to a
// horizontal segment is vertical (and vice versa).
func propagatePerpendicularLock(doc *sketch.Document, locked, other segment) {
	if hasConstraintOn(doc, sketch.Horizontal, locked.A.ID, locked.B.ID) {
		applyVertical(doc, &sketch.Constraint{PointIDs: []int{other.A.ID, other.B.ID}}, nil)
	} else {
		applyHorizontal(doc, &sketch.Constraint{PointIDs: []int{other.A.ID, other.B.ID}}, nil)
	}
}

func applyAngle(doc *sketch.Document, c *sketch.Constraint, rnd RandSource) {
	segA, segB := segmentsOf(doc, c.PointIDs)
	current := geom2.NormalizeDegrees((segB.angle() - segA.angle()) * 180 / math.Pi)

	target, ok := c.ResolvedValue()
	if !ok {
		v := sketch.Num(current)
		c.Value = &v
		return
	}
	if target < 0 {
		// Canonicalize a negative target: swap the second segment's
		// endpoints and take the absolute value.
		c.PointIDs[2], c.PointIDs[3] = c.PointIDs[3], c.PointIDs[2]
		v := sketch.Num(-target)
		c.Value = &v
		segA, segB = segmentsOf(doc, c.PointIDs)
		target = -target
	}
	rotateTowardAngle(doc, c, segA, segB, target, rnd)
}

// rotateTowardAngle rotates segA and/or segB so that the directional angle
// from segA to segB approaches targetDeg, splitting the shortest angular
// delta between both segments if both are rotatable, clamped to
// rotateStepLimit per iteration.
func rotateTowardAngle(doc *sketch.Document, c *sketch.Constraint, segA, segB segment, targetDeg float64, rnd RandSource) {
	current := geom2.NormalizeDegrees((segB.angle() - segA.angle()) * 180 / math.Pi)
	deltaDeg := geom2.AngleDelta(current, targetDeg)
	delta := deltaDeg * math.Pi / 180

	aRotatable := !segA.locked(doc)
	bRotatable := !segB.locked(doc)
	if !aRotatable && !bRotatable {
		if math.Abs(deltaDeg) > 1e-2 {
			c.Error = "unsatisfied: both segments are axis-locked"
		}
		return
	}

	var aStep, bStep float64
	switch {
	case aRotatable && bRotatable:
		aStep = -delta / 2
		bStep = delta / 2
	case aRotatable:
		aStep = -delta
	case bRotatable:
		bStep = delta
	}
	aStep = clampAbs(aStep, rotateStepLimit)
	bStep = clampAbs(bStep, rotateStepLimit)

	if aRotatable && aStep != 0 {
		rotateSegment(segA, aStep, rnd)
	}
	if bRotatable && bStep != 0 {
		rotateSegment(segB, bStep, rnd)
	}
}

func clampAbs(v, limit float64) float64 {
	if v > limit {
		return limit
	}
	if v < -limit {
		return -limit
	}
	return v
}

// rotateSegment rotates a segment's free endpoint(s) by theta about a pivot:
// the pinned endpoint if one exists, otherwise a random choice between the
// two endpoints.
func rotateSegment(s segment, theta float64, rnd RandSource) {
	a, b := s.coordA(), s.coordB()
	switch {
	case s.A.Fixed && s.B.Fixed:
		return
	case s.A.Fixed:
		newB := geom2.RotateAbout(b, a, theta)
		setXY(s.B, newB.X, newB.Y)
	case s.B.Fixed:
		newA := geom2.RotateAbout(a, b, theta)
		setXY(s.A, newA.X, newA.Y)
	default:
		if rnd == nil {
			rnd = DefaultRand
		}
		if rnd.Float64() < 0.5 {
			newB := geom2.RotateAbout(b, a, theta)
			setXY(s.B, newB.X, newB.Y)
		} else {
			newA := geom2.RotateAbout(a, b, theta)
			setXY(s.A, newA.X, newA.Y)
		}
	}
}

func applyPointOnLine(doc *sketch.Document, c *sketch.Constraint, rnd RandSource) {
	p := doc.Points[c.PointIDs[0]]
	a := doc.Points[c.PointIDs[1]]
	b := doc.Points[c.PointIDs[2]]

	if hasConstraintOn(doc, sketch.Horizontal, a.ID, b.ID) {
		if free(p) {
			setY(p, mustY(a))
		}
		return
	}
	if hasConstraintOn(doc, sketch.Vertical, a.ID, b.ID) {
		if free(p) {
			setX(p, mustX(a))
		}
		return
	}

	ca, cb, cp := coordOf(a), coordOf(b), coordOf(p)
	switch {
	case free(p) && !free(a) && !free(b):
		proj := geom2.ProjectOnLine(cp, ca, cb)
		setXY(p, proj.X, proj.Y)
	case !free(p) && free(a) && free(b):
		// Midpoint strategy: rotate the segment (a,b) about its midpoint
		// so its line passes through p, preserving the endpoints'
		// separation. Orientation follows whichever end is nearer p so
		// the rotation takes the short way around.
		mid := ca.Add(cb).Scale(0.5)
		dir := cp.Sub(mid)
		if dir.Norm() > 1e-12 {
			half := cb.Sub(ca).Norm() / 2
			newDir := dir.Normalize().Scale(half)
			if cb.Sub(ca).Dot(dir) < 0 {
				newDir = newDir.Scale(-1)
			}
			newA := mid.Sub(newDir)
			newB := mid.Add(newDir)
			setXY(a, newA.X, newA.Y)
			setXY(b, newB.X, newB.Y)
		}
	default:
		// Every other combination of free points: nudge p, when it is
		// free, a moveFraction share of the way toward its projection on
		// the line (a, b) rather than fully solving it in one step, to
		// stay consistent with the relaxation rate used elsewhere in the
		// catalog. a and b are not moved here, so with p pinned and only
		// one of a, b free this routine leaves the points as they are.
		proj := geom2.ProjectOnLine(cp, ca, cb)
		if free(p) {
			mixed := cp.Add(proj.Sub(cp).Scale(moveFraction))
			setXY(p, mixed.X, mixed.Y)
		}
	}
}

func applyMidpoint(doc *sketch.Document, c *sketch.Constraint, rnd RandSource) {
	p1 := doc.Points[c.PointIDs[0]]
	p2 := doc.Points[c.PointIDs[1]]
	p3 := doc.Points[c.PointIDs[2]]

	c1, c2 := coordOf(p1), coordOf(p2)
	mid := c1.Add(c2).Scale(0.5)

	if free(p3) {
		c3 := coordOf(p3)
		moved := c3.Add(mid.Sub(c3).Scale(moveFraction))
		setXY(p3, moved.X, moved.Y)
	}

	// Auxiliary distance projections: preserve the p1-p2 chord length and
	// equalize each endpoint's distance to p3.
	chord := c1.Dist(c2)
	if chord < 1e-12 {
		return
	}
	half := chord / 2
	if free(p1) {
		moveToDistance(p1, p3, half, moveFraction)
	}
	if free(p2) {
		moveToDistance(p2, p3, half, moveFraction)
	}
}
