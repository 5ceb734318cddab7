package loop

import (
	"testing"

	"github.com/brepkit/kernel/sketch"
	"github.com/stretchr/testify/require"
)

func square(doc *sketch.Document, x0, y0, size float64) []int {
	p0 := doc.AddPoint(x0, y0)
	p1 := doc.AddPoint(x0+size, y0)
	p2 := doc.AddPoint(x0+size, y0+size)
	p3 := doc.AddPoint(x0, y0+size)
	ids := []int{p0.ID, p1.ID, p2.ID, p3.ID}
	g0, _ := doc.AddGeometry(sketch.Line, []int{ids[0], ids[1]})
	g1, _ := doc.AddGeometry(sketch.Line, []int{ids[1], ids[2]})
	g2, _ := doc.AddGeometry(sketch.Line, []int{ids[2], ids[3]})
	g3, _ := doc.AddGeometry(sketch.Line, []int{ids[3], ids[0]})
	return []int{g0.ID, g1.ID, g2.ID, g3.ID}
}

func TestChainSimpleSquare(t *testing.T) {
	doc := sketch.NewDocument()
	square(doc, 0, 0, 10)

	segs := Materialize(doc, ChainOptions{})
	loops := Chain(segs)
	require.Len(t, loops, 1)
	require.Len(t, loops[0].Points, 4)
}

func TestChainOpenChainYieldsNoLoop(t *testing.T) {
	doc := sketch.NewDocument()
	p0 := doc.AddPoint(0, 0)
	p1 := doc.AddPoint(10, 0)
	p2 := doc.AddPoint(10, 10)
	doc.AddGeometry(sketch.Line, []int{p0.ID, p1.ID})
	doc.AddGeometry(sketch.Line, []int{p1.ID, p2.ID})

	segs := Materialize(doc, ChainOptions{})
	loops := Chain(segs)
	require.Empty(t, loops)
}

func TestClassifySquareWithHole(t *testing.T) {
	doc := sketch.NewDocument()
	square(doc, 0, 0, 10)
	square(doc, 3, 3, 2)

	segs := Materialize(doc, ChainOptions{})
	loops := Chain(segs)
	require.Len(t, loops, 2)

	groups := Classify(loops)
	require.Len(t, groups, 1)
	require.Len(t, groups[0].Holes, 1)
}

func TestClassifyWindingNormalization(t *testing.T) {
	doc := sketch.NewDocument()
	square(doc, 0, 0, 10)
	square(doc, 3, 3, 2)

	segs := Materialize(doc, ChainOptions{})
	loops := Chain(segs)
	groups := Classify(loops)
	require.Len(t, groups, 1)

	// Outer loop is wound clockwise, i.e. negative signed area.
	require.Less(t, signedAreaOf(groups[0].Outer), 0.0)
	// The hole is wound counterclockwise, i.e. positive signed area.
	require.Greater(t, signedAreaOf(groups[0].Holes[0]), 0.0)
}

func signedAreaOf(l Loop) float64 {
	sum := 0.0
	n := len(l.Points)
	for i := 0; i < n; i++ {
		a := l.Points[i]
		b := l.Points[(i+1)%n]
		sum += a.X*b.Y - b.X*a.Y
	}
	return sum / 2
}

func TestMaterializeCircleFloorsSamplesAtMinimum(t *testing.T) {
	doc := sketch.NewDocument()
	center := doc.AddPoint(0, 0)
	edge := doc.AddPoint(1, 0)
	doc.AddGeometry(sketch.Circle, []int{center.ID, edge.ID})

	segs := Materialize(doc, ChainOptions{CurveResolution: 1})
	require.GreaterOrEqual(t, len(segs), MinCurveSamples)
}
