package feature

import (
	"testing"

	"github.com/brepkit/kernel/sketch"
	"github.com/stretchr/testify/require"
)

func TestCreateRectangleFromTwoCorners(t *testing.T) {
	doc := sketch.NewDocument()
	a := doc.AddPoint(0, 0)
	c := doc.AddPoint(10, 5)
	pointsBefore := len(doc.Points)

	s := NewSketch(doc)
	lines, err := s.CreateRectangle(a.ID, c.ID)
	require.NoError(t, err)
	require.Len(t, lines, 4)
	require.Equal(t, pointsBefore+6, len(s.Doc.Points))

	coincident, perpendicular := 0, 0
	for _, c := range s.Doc.Constraints {
		switch c.Kind {
		case sketch.Coincident:
			coincident++
		case sketch.Perpendicular:
			perpendicular++
		}
	}
	require.Equal(t, 4, coincident)
	require.Equal(t, 3, perpendicular)

	minX, minY := 1e18, 1e18
	maxX, maxY := -1e18, -1e18
	for _, g := range lines {
		for _, pid := range g.PointIDs {
			x, y := s.Doc.Points[pid].XY()
			minX, maxX = min(minX, x), max(maxX, x)
			minY, maxY = min(minY, y), max(maxY, y)
		}
	}
	require.InDelta(t, 0, minX, 1e-3)
	require.InDelta(t, 0, minY, 1e-3)
	require.InDelta(t, 10, maxX, 1e-3)
	require.InDelta(t, 5, maxY, 1e-3)
}

type fakeSelection struct {
	points []int
}

func (f fakeSelection) SelectedPoints() []int     { return f.points }
func (f fakeSelection) SelectedGeometries() []int { return nil }

func TestCreateGeometryFromSelection(t *testing.T) {
	doc := sketch.NewDocument()
	p0 := doc.AddPoint(0, 0)
	p1 := doc.AddPoint(10, 0)

	s := NewSketch(doc)
	g, err := s.CreateGeometry(sketch.Line, nil, fakeSelection{points: []int{p0.ID, p1.ID}})
	require.NoError(t, err)
	require.Equal(t, []int{p0.ID, p1.ID}, g.PointIDs)

	_, err = s.CreateGeometry(sketch.Arc, nil, fakeSelection{points: []int{p0.ID, p1.ID}})
	require.Error(t, err)
}

func TestCreateConstraintSeedsDistance(t *testing.T) {
	doc := sketch.NewDocument()
	p0 := doc.AddPoint(0, 0)
	p1 := doc.AddPoint(3, 4)

	s := NewSketch(doc)
	c, err := s.CreateConstraint(sketch.Distance, []int{p0.ID, p1.ID}, nil)
	require.NoError(t, err)
	v, ok := c.ResolvedValue()
	require.True(t, ok)
	require.InDelta(t, 5, v, 1e-9)
}

func TestCreateConstraintRejectsBadSelection(t *testing.T) {
	doc := sketch.NewDocument()
	p0 := doc.AddPoint(0, 0)

	s := NewSketch(doc)
	before := len(s.Doc.Constraints)
	_, err := s.CreateConstraint(sketch.Distance, nil, fakeSelection{points: []int{p0.ID}})
	require.Error(t, err)
	require.Equal(t, before, len(s.Doc.Constraints))
}

func TestRemoveGeometryCascadesConstraints(t *testing.T) {
	doc := sketch.NewDocument()
	p0 := doc.AddPoint(0, 0)
	p1 := doc.AddPoint(10, 0)
	g, err := doc.AddGeometry(sketch.Line, []int{p0.ID, p1.ID})
	require.NoError(t, err)
	c := doc.AddConstraint(sketch.Horizontal, []int{p0.ID, p1.ID})

	s := NewSketch(doc)
	require.NoError(t, s.RemoveGeometry(g.ID))
	_, stillThere := s.Doc.Constraints[c.ID]
	require.False(t, stillThere)
}

func TestSimplifyCoincidentRewritesToLowestID(t *testing.T) {
	doc := sketch.NewDocument()
	p1 := doc.AddPoint(0, 0)
	p2 := doc.AddPoint(0, 0)
	p3 := doc.AddPoint(10, 0)
	g, err := doc.AddGeometry(sketch.Line, []int{p2.ID, p3.ID})
	require.NoError(t, err)
	doc.AddConstraint(sketch.Coincident, []int{p1.ID, p2.ID})

	s := NewSketch(doc)
	s.SimplifyCoincident()

	require.Equal(t, p1.ID, s.Doc.Geometries[g.ID].PointIDs[0])
	_, p2Exists := s.Doc.Points[p2.ID]
	require.False(t, p2Exists)
}

func TestSimplifyCoincidentIsIdempotent(t *testing.T) {
	doc := sketch.NewDocument()
	p1 := doc.AddPoint(0, 0)
	p2 := doc.AddPoint(0, 0)
	p3 := doc.AddPoint(10, 0)
	doc.AddGeometry(sketch.Line, []int{p2.ID, p3.ID})
	doc.AddConstraint(sketch.Coincident, []int{p1.ID, p2.ID})

	s := NewSketch(doc)
	s.SimplifyCoincident()
	first := s.Doc.Clone()
	s.SimplifyCoincident()

	require.Equal(t, len(first.Points), len(s.Doc.Points))
	require.Equal(t, len(first.Constraints), len(s.Doc.Constraints))
}
