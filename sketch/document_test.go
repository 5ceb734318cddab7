package sketch

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestNewDocumentHasOriginAndGround(t *testing.T) {
	doc := NewDocument()
	require.Contains(t, doc.Points, OriginID)
	require.NoError(t, doc.Validate())

	grounds := 0
	for _, c := range doc.Constraints {
		if c.Kind == Ground {
			grounds++
		}
	}
	require.Equal(t, 1, grounds)
}

func TestRemovePointCascades(t *testing.T) {
	doc := NewDocument()
	p1 := doc.AddPoint(1, 0)
	p2 := doc.AddPoint(1, 1)
	g, err := doc.AddGeometry(Line, []int{p1.ID, p2.ID})
	require.NoError(t, err)
	c := doc.AddConstraint(Horizontal, []int{p1.ID, p2.ID})

	require.NoError(t, doc.RemovePoint(p1.ID))
	require.NotContains(t, doc.Geometries, g.ID)
	require.NotContains(t, doc.Constraints, c.ID)
}

func TestRemoveSoleGroundPointForbidden(t *testing.T) {
	doc := NewDocument()
	err := doc.RemovePoint(OriginID)
	require.Error(t, err)
}

func TestCloneIsIndependent(t *testing.T) {
	doc := NewDocument()
	p := doc.AddPoint(1, 1)
	clone := doc.Clone()
	clone.Points[p.ID].X = Num(99)
	require.NotEqual(t, clone.Points[p.ID].X.Number(), doc.Points[p.ID].X.Number())
}

func TestConstraintArityMismatchRejected(t *testing.T) {
	doc := NewDocument()
	p1 := doc.AddPoint(0, 0)
	require.Panics(t, func() {
		doc.AddConstraint(Distance, []int{p1.ID})
	})
}

func TestLegacyMidpointAliasRewritten(t *testing.T) {
	kind, ok := ParseConstraintKind("⋱")
	require.True(t, ok)
	require.Equal(t, Midpoint, kind)
	require.Equal(t, "⋯", kind.Glyph())
}
