package constraint

import (
	"math"
	"sort"
	"strconv"
	"strings"

	"github.com/brepkit/kernel/geom2"
	"github.com/brepkit/kernel/sketch"
)

// DefaultIterationCap is the solver's default iteration budget.
const DefaultIterationCap = 500

// MovementThrottle is the maximum per-iteration displacement allowed for any
// point before its movement is rescaled. Keeps under-constrained systems
// from oscillating or taking runaway steps.
const MovementThrottle = 0.5

// roundDecimals is the coordinate-hygiene rounding precision.
const roundDecimals = 6

// passOrder is the fixed ordering of constraint kinds walked each iteration.
// Empirically tuned, including the trailing distance/equal-length repeats;
// do not reorder without re-testing convergence on dimensioned sketches.
var passOrder = []sketch.ConstraintKind{
	sketch.Horizontal,
	sketch.Vertical,
	sketch.PointOnLine,
	sketch.Midpoint,
	sketch.Distance,
	sketch.EqualLength,
	sketch.Angle,
	sketch.Perpendicular,
	sketch.Parallel,
	sketch.Distance,
	sketch.EqualLength,
}

// settlePasses re-applies these kinds between every pass above, to keep
// coincident points glued together and axes aligned while other kinds move
// things.
var settlePasses = []sketch.ConstraintKind{
	sketch.Coincident,
	sketch.Horizontal,
	sketch.Vertical,
}

// Engine is the iterative, snapshot-based constraint solver.
type Engine struct {
	// IterationCap overrides DefaultIterationCap when positive.
	IterationCap int
	// Rand is the tiebreak source for the angle constraint; defaults to
	// DefaultRand.
	Rand RandSource
}

// Solve runs the engine to convergence or the iteration cap and returns a
// deep copy of doc with points moved and constraints annotated. doc itself
// is never mutated.
func (e *Engine) Solve(doc *sketch.Document) *sketch.Document {
	work := doc.Clone()
	iterCap := e.IterationCap
	if iterCap <= 0 {
		iterCap = DefaultIterationCap
	}
	rnd := e.Rand
	if rnd == nil {
		rnd = DefaultRand
	}

	// Status and Error are transient per-solve annotations.
	for _, c := range work.Constraints {
		c.Status = ""
		c.Error = ""
	}

	tempIDs := synthesizeArcEqualLength(work)

	hygiene(work, true)

	applyAll(work, []sketch.ConstraintKind{sketch.Ground}, rnd)
	applyAllKindsOnce(work, rnd)

	for iter := 0; iter < iterCap; iter++ {
		before := snapshot(work)
		preIter := snapshotPositions(work)

		for _, kind := range passOrder {
			applyAll(work, []sketch.ConstraintKind{kind}, rnd)
			applyAll(work, settlePasses, rnd)
			hygiene(work, false)
		}

		throttleMovement(work, preIter)

		after := snapshot(work)
		if before == after {
			break
		}
	}

	stripTemporary(work, tempIDs)
	annotate(work)
	return work
}

// annotate records each constraint's final status: "error" when a routine
// recorded a failure, "unsatisfied" when a measurable residual remains
// beyond tolerance after the final iteration, "ok" otherwise.
func annotate(doc *sketch.Document) {
	for _, c := range doc.Constraints {
		if !pointsExist(doc, c.PointIDs) {
			c.Status = "missing-reference"
			continue
		}
		if c.Error != "" {
			c.Status = "error"
			continue
		}
		if residualExceeded(doc, c) {
			c.Status = "unsatisfied"
			c.Error = "unsatisfied: residual above tolerance at the iteration cap"
			continue
		}
		c.Status = "ok"
	}
}

// residualExceeded measures the final residual for the kinds with a direct
// metric. The rotational kinds are covered by the routines' own error
// reporting instead.
func residualExceeded(doc *sketch.Document, c *sketch.Constraint) bool {
	pts := pointsOf(doc, c.PointIDs)
	switch c.Kind {
	case sketch.Coincident:
		return coordOf(pts[0]).Dist(coordOf(pts[1])) > 1e-4
	case sketch.Horizontal:
		return math.Abs(mustY(pts[0])-mustY(pts[1])) > 1e-4
	case sketch.Vertical:
		return math.Abs(mustX(pts[0])-mustX(pts[1])) > 1e-4
	case sketch.Distance:
		if v, ok := c.ResolvedValue(); ok {
			return math.Abs(coordOf(pts[0]).Dist(coordOf(pts[1]))-v) > 1e-3
		}
	}
	return false
}

// synthesizeArcEqualLength adds, for every arc, a temporary equal-length
// constraint tying (center,start) to (center,end), so that arcs keep a
// constant radius through the solve. It returns the ids of the constraints
// it added so they can be stripped afterward.
func synthesizeArcEqualLength(doc *sketch.Document) []int {
	var added []int
	// Sort geometry ids for determinism.
	ids := make([]int, 0, len(doc.Geometries))
	for id := range doc.Geometries {
		ids = append(ids, id)
	}
	sort.Ints(ids)
	for _, gid := range ids {
		g := doc.Geometries[gid]
		if g.Kind != sketch.Arc || len(g.PointIDs) != 3 {
			continue
		}
		center, start, end := g.PointIDs[0], g.PointIDs[1], g.PointIDs[2]
		c := doc.AddConstraint(sketch.EqualLength, []int{center, start, center, end})
		c.Temporary = true
		added = append(added, c.ID)
	}
	return added
}

func stripTemporary(doc *sketch.Document, ids []int) {
	for _, id := range ids {
		delete(doc.Constraints, id)
	}
}

// hygiene coerces coordinates to numeric (expressions must already be
// resolved by the expr package before Solve is called), replaces NaN/Inf
// with 0, and rounds to roundDecimals. Only the first pass resets every
// point's fixed flag, so that routines can pin points mid-solve.
func hygiene(doc *sketch.Document, first bool) {
	for _, p := range doc.Points {
		x, y := safeNumber(p.X), safeNumber(p.Y)
		rounded := geom2.XY(x, y).Round(roundDecimals)
		p.X = sketch.Num(rounded.X)
		p.Y = sketch.Num(rounded.Y)
		if first {
			p.Fixed = false
		}
	}
}

func safeNumber(v sketch.Value) float64 {
	if v.IsExpr() {
		return 0
	}
	n := v.Number()
	if math.IsNaN(n) || math.IsInf(n, 0) {
		return 0
	}
	return n
}

// applyAllKindsOnce applies every constraint once, in document id order,
// before the main iteration loop starts.
func applyAllKindsOnce(doc *sketch.Document, rnd RandSource) {
	ids := sortedConstraintIDs(doc)
	for _, id := range ids {
		c := doc.Constraints[id]
		if routine, ok := Catalog[c.Kind]; ok {
			runConstraint(doc, c, routine, rnd)
		}
	}
}

// applyAll applies every constraint whose kind is in kinds, in document id
// order.
func applyAll(doc *sketch.Document, kinds []sketch.ConstraintKind, rnd RandSource) {
	want := map[sketch.ConstraintKind]bool{}
	for _, k := range kinds {
		want[k] = true
	}
	ids := sortedConstraintIDs(doc)
	for _, id := range ids {
		c := doc.Constraints[id]
		if !want[c.Kind] {
			continue
		}
		if routine, ok := Catalog[c.Kind]; ok {
			runConstraint(doc, c, routine, rnd)
		}
	}
}

func runConstraint(doc *sketch.Document, c *sketch.Constraint, r routine, rnd RandSource) {
	if !pointsExist(doc, c.PointIDs) {
		// Missing reference: skip this constraint, solving continues.
		return
	}
	r(doc, c, rnd)
}

func pointsExist(doc *sketch.Document, ids []int) bool {
	for _, id := range ids {
		if _, ok := doc.Points[id]; !ok {
			return false
		}
	}
	return true
}

func sortedConstraintIDs(doc *sketch.Document) []int {
	ids := make([]int, 0, len(doc.Constraints))
	for id := range doc.Constraints {
		ids = append(ids, id)
	}
	sort.Ints(ids)
	return ids
}

// snapshot serializes the full point set for convergence comparison: two
// identical successive snapshots after rounding mean the solve is done.
func snapshot(doc *sketch.Document) string {
	ids := make([]int, 0, len(doc.Points))
	for id := range doc.Points {
		ids = append(ids, id)
	}
	sort.Ints(ids)
	var b strings.Builder
	for _, id := range ids {
		p := doc.Points[id]
		x, y := p.XY()
		b.WriteString(strconv.FormatInt(int64(math.Round(x*1e6)), 10))
		b.WriteByte(',')
		b.WriteString(strconv.FormatInt(int64(math.Round(y*1e6)), 10))
		b.WriteByte(';')
	}
	return b.String()
}

func snapshotPositions(doc *sketch.Document) map[int]geom2.Coord {
	out := make(map[int]geom2.Coord, len(doc.Points))
	for id, p := range doc.Points {
		x, y := p.XY()
		out[id] = geom2.XY(x, y)
	}
	return out
}

// throttleMovement rescales any point's displacement since preIter to
// exactly MovementThrottle world-units if it moved further than that.
func throttleMovement(doc *sketch.Document, preIter map[int]geom2.Coord) {
	for id, before := range preIter {
		p, ok := doc.Points[id]
		if !ok {
			continue
		}
		x, y := p.XY()
		after := geom2.XY(x, y)
		delta := after.Sub(before)
		dist := delta.Norm()
		if dist > MovementThrottle {
			clamped := before.Add(delta.Scale(MovementThrottle / dist))
			setXY(p, clamped.X, clamped.Y)
		}
	}
}
