package feature

import (
	"context"
	"testing"

	"github.com/brepkit/kernel/profile"
	"github.com/brepkit/kernel/sketch"
	"github.com/stretchr/testify/require"
)

func squareFeature(name string, x0, y0, size float64) Feature {
	doc := sketch.NewDocument()
	p0 := doc.AddPoint(x0, y0)
	p1 := doc.AddPoint(x0+size, y0)
	p2 := doc.AddPoint(x0+size, y0+size)
	p3 := doc.AddPoint(x0, y0+size)
	doc.AddGeometry(sketch.Line, []int{p0.ID, p1.ID})
	doc.AddGeometry(sketch.Line, []int{p1.ID, p2.ID})
	doc.AddGeometry(sketch.Line, []int{p2.ID, p3.ID})
	doc.AddGeometry(sketch.Line, []int{p3.ID, p0.ID})
	return Feature{Name: name, Doc: doc}
}

func TestRunFeatureCompilesSquare(t *testing.T) {
	var rt Runtime
	res := rt.RunFeature(context.Background(), squareFeature("sketch1", 0, 0, 10))
	require.NoError(t, res.Err)
	require.Len(t, res.Bundle.Faces, 1)
	require.NotEmpty(t, res.Bundle.Faces[0].Triangles)
}

func TestRunFeatureRecoversFromPanic(t *testing.T) {
	doc := sketch.NewDocument()
	// A geometry referencing a nonexistent point would normally be
	// rejected by AddGeometry; force the invariant violation directly to
	// exercise the runtime's recover path.
	doc.Geometries[99] = &sketch.Geometry{ID: 99, Kind: sketch.Line, PointIDs: []int{1234, 5678}}

	var rt Runtime
	res := rt.RunFeature(context.Background(), Feature{Name: "broken", Doc: doc})
	require.Error(t, res.Err)
}

func TestRunHistoryPreservesOrder(t *testing.T) {
	var rt Runtime
	features := []Feature{
		squareFeature("first", 0, 0, 10),
		squareFeature("second", 20, 0, 5),
	}
	results := rt.RunHistory(context.Background(), features)
	require.Len(t, results, 2)
	require.Equal(t, "first", results[0].FeatureName)
	require.Equal(t, "second", results[1].FeatureName)
	require.NoError(t, results[0].Err)
	require.NoError(t, results[1].Err)
}

func TestRunHistoryEmptyBundleWhenNoFaces(t *testing.T) {
	var rt Runtime
	doc := sketch.NewDocument()
	results := rt.RunHistory(context.Background(), []Feature{{Name: "empty", Doc: doc}})
	require.Len(t, results, 1)
	require.NoError(t, results[0].Err)
	require.Equal(t, profile.Bundle{}, results[0].Bundle)
}
