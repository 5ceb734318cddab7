package constraint

import (
	"math"
	"testing"

	"github.com/brepkit/kernel/geom2"
	"github.com/brepkit/kernel/sketch"
	"github.com/stretchr/testify/require"
)

func newFreshDoc() *sketch.Document {
	doc := sketch.NewDocument()
	return doc
}

func dist(doc *sketch.Document, a, b int) float64 {
	pa, pb := doc.Points[a], doc.Points[b]
	ax, ay := pa.XY()
	bx, by := pb.XY()
	return math.Hypot(ax-bx, ay-by)
}

func TestSolveHorizontalDistance(t *testing.T) {
	doc := sketch.NewDocument()
	p0 := doc.Points[sketch.OriginID]
	p1 := doc.AddPoint(50, 10)
	p2 := doc.AddPoint(55, 60)

	doc.AddConstraint(sketch.Vertical, []int{p1.ID, p2.ID})
	distC := doc.AddConstraint(sketch.Distance, []int{p1.ID, p2.ID})
	v := sketch.Num(40)
	distC.Value = &v
	doc.AddConstraint(sketch.Horizontal, []int{p0.ID, p1.ID})

	e := &Engine{}
	solved := e.Solve(doc)

	_, y1 := solved.Points[p1.ID].XY()
	require.InDelta(t, 0, y1, 1e-3)

	x1, _ := solved.Points[p1.ID].XY()
	x2, _ := solved.Points[p2.ID].XY()
	require.InDelta(t, x1, x2, 1e-3)

	require.InDelta(t, 40, dist(solved, p1.ID, p2.ID), 1e-2)
}

func TestMidpointAllFree(t *testing.T) {
	doc := newFreshDoc()
	p1 := doc.AddPoint(0, 0)
	p2 := doc.AddPoint(10, 0)
	p3 := doc.AddPoint(5, 10)
	doc.AddConstraint(sketch.Midpoint, []int{p1.ID, p2.ID, p3.ID})

	e := &Engine{IterationCap: 500}
	solved := e.Solve(doc)

	x1, y1 := solved.Points[p1.ID].XY()
	x2, y2 := solved.Points[p2.ID].XY()
	x3, y3 := solved.Points[p3.ID].XY()
	midX, midY := (x1+x2)/2, (y1+y2)/2
	require.InDelta(t, 0, math.Hypot(midX-x3, midY-y3), 1e-3)
}

func TestMidpointEndpointFixed(t *testing.T) {
	doc := newFreshDoc()
	p1 := doc.AddPoint(0, 0)
	p2 := doc.AddPoint(10, 0)
	p3 := doc.AddPoint(5, 10)
	doc.AddConstraint(sketch.Ground, []int{p1.ID})
	doc.AddConstraint(sketch.Midpoint, []int{p1.ID, p2.ID, p3.ID})

	e := &Engine{}
	solved := e.Solve(doc)

	x1, y1 := solved.Points[p1.ID].XY()
	require.InDelta(t, 0, x1, 1e-6)
	require.InDelta(t, 0, y1, 1e-6)

	x2, y2 := solved.Points[p2.ID].XY()
	x3, y3 := solved.Points[p3.ID].XY()
	require.InDelta(t, 0, math.Hypot((x1+x2)/2-x3, (y1+y2)/2-y3), 1e-3)
}

func TestMidpointMiddleFixed(t *testing.T) {
	doc := newFreshDoc()
	p1 := doc.AddPoint(0, 0)
	p2 := doc.AddPoint(10, 0)
	p3 := doc.AddPoint(5, 10)
	doc.Points[p3.ID].Fixed = true
	doc.AddConstraint(sketch.Ground, []int{p3.ID})
	doc.AddConstraint(sketch.Midpoint, []int{p1.ID, p2.ID, p3.ID})

	e := &Engine{}
	solved := e.Solve(doc)

	x3, y3 := solved.Points[p3.ID].XY()
	require.InDelta(t, 5, x3, 1e-6)
	require.InDelta(t, 10, y3, 1e-6)

	x1, y1 := solved.Points[p1.ID].XY()
	x2, y2 := solved.Points[p2.ID].XY()
	require.InDelta(t, 5, (x1+x2)/2, 1e-3)
	require.InDelta(t, 10, (y1+y2)/2, 1e-3)
}

func TestPointOnLineProjectsFreePoint(t *testing.T) {
	doc := newFreshDoc()
	a := doc.AddPoint(0, 0)
	b := doc.AddPoint(10, 0)
	p := doc.AddPoint(4, 3)
	doc.AddConstraint(sketch.Ground, []int{a.ID})
	doc.AddConstraint(sketch.Ground, []int{b.ID})
	doc.AddConstraint(sketch.PointOnLine, []int{p.ID, a.ID, b.ID})

	e := &Engine{}
	solved := e.Solve(doc)
	_, py := solved.Points[p.ID].XY()
	require.InDelta(t, 0, py, 1e-3)
}

func TestPointOnLineRotatesFreeSegment(t *testing.T) {
	doc := newFreshDoc()
	p := doc.AddPoint(5, 5)
	doc.AddConstraint(sketch.Ground, []int{p.ID})
	a := doc.AddPoint(0, 0)
	b := doc.AddPoint(10, 0)
	doc.AddConstraint(sketch.PointOnLine, []int{p.ID, a.ID, b.ID})

	e := &Engine{}
	solved := e.Solve(doc)

	ax, ay := solved.Points[a.ID].XY()
	bx, by := solved.Points[b.ID].XY()
	perp := geom2.PerpDistance(geom2.XY(5, 5), geom2.XY(ax, ay), geom2.XY(bx, by))
	require.InDelta(t, 0, perp, 1e-2)
	// The endpoints' separation is preserved.
	require.InDelta(t, 10, dist(solved, a.ID, b.ID), 1e-2)
}

func TestGroundPointUnmoved(t *testing.T) {
	doc := sketch.NewDocument()
	origin := doc.Points[sketch.OriginID]
	ox, oy := origin.XY()

	e := &Engine{}
	solved := e.Solve(doc)
	sx, sy := solved.Points[sketch.OriginID].XY()
	require.InDelta(t, ox, sx, 1e-6)
	require.InDelta(t, oy, sy, 1e-6)
}

func TestSolveIsIdempotent(t *testing.T) {
	doc := sketch.NewDocument()
	p1 := doc.AddPoint(50, 10)
	p2 := doc.AddPoint(55, 60)
	doc.AddConstraint(sketch.Vertical, []int{p1.ID, p2.ID})
	dc := doc.AddConstraint(sketch.Distance, []int{p1.ID, p2.ID})
	v := sketch.Num(40)
	dc.Value = &v

	e := &Engine{}
	once := e.Solve(doc)
	twice := e.Solve(once)

	for id, p := range once.Points {
		x1, y1 := p.XY()
		x2, y2 := twice.Points[id].XY()
		require.InDelta(t, x1, x2, 1e-6)
		require.InDelta(t, y1, y2, 1e-6)
	}
}

func TestCoincidentConvergesWithinTolerance(t *testing.T) {
	doc := sketch.NewDocument()
	p1 := doc.AddPoint(0, 0)
	p2 := doc.AddPoint(3, 4)
	doc.AddConstraint(sketch.Coincident, []int{p1.ID, p2.ID})

	e := &Engine{}
	solved := e.Solve(doc)
	require.InDelta(t, 0, dist(solved, p1.ID, p2.ID), 1e-4)
}

func TestUnsatisfiableDistanceAnnotated(t *testing.T) {
	doc := newFreshDoc()
	p1 := doc.AddPoint(0, 0)
	p2 := doc.AddPoint(3, 0)
	doc.AddConstraint(sketch.Ground, []int{p1.ID})
	doc.AddConstraint(sketch.Ground, []int{p2.ID})
	c := doc.AddConstraint(sketch.Distance, []int{p1.ID, p2.ID})
	v := sketch.Num(40)
	c.Value = &v

	e := &Engine{}
	solved := e.Solve(doc)
	got := solved.Constraints[c.ID]
	require.Equal(t, "unsatisfied", got.Status)
	require.NotEmpty(t, got.Error)
}

func TestSatisfiedConstraintsAnnotatedOK(t *testing.T) {
	doc := newFreshDoc()
	p1 := doc.AddPoint(0, 0)
	p2 := doc.AddPoint(10, 3)
	c := doc.AddConstraint(sketch.Horizontal, []int{p1.ID, p2.ID})

	e := &Engine{}
	solved := e.Solve(doc)
	require.Equal(t, "ok", solved.Constraints[c.ID].Status)
}

func TestTemporaryArcConstraintsStripped(t *testing.T) {
	doc := sketch.NewDocument()
	center := doc.AddPoint(0, 0)
	start := doc.AddPoint(5, 0)
	end := doc.AddPoint(0, 5)
	doc.AddGeometry(sketch.Arc, []int{center.ID, start.ID, end.ID})

	e := &Engine{}
	solved := e.Solve(doc)
	for _, c := range solved.Constraints {
		require.False(t, c.Temporary)
	}
}
