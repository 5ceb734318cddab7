package numerical

import (
	"testing"

	"github.com/brepkit/kernel/geom2"
	"github.com/stretchr/testify/require"
)

func TestLift4AxisAligned(t *testing.T) {
	origin := Vec3{X: 1, Y: 2, Z: 3}
	xAxis := Vec3{X: 1, Y: 0, Z: 0}
	yAxis := Vec3{X: 0, Y: 1, Z: 0}
	normal := Vec3{X: 0, Y: 0, Z: 1}
	m := Lift4(origin, xAxis, yAxis, normal)

	got := m.Apply(geom2.XY(5, 7))
	require.InDelta(t, 6.0, got.X, 1e-9)
	require.InDelta(t, 9.0, got.Y, 1e-9)
	require.InDelta(t, 3.0, got.Z, 1e-9)
}

func TestLift4RotatedPlane(t *testing.T) {
	// Plane is the world XZ plane: local x -> world x, local y -> world z.
	origin := Vec3{}
	xAxis := Vec3{X: 1, Y: 0, Z: 0}
	yAxis := Vec3{X: 0, Y: 0, Z: 1}
	normal := Vec3{X: 0, Y: -1, Z: 0}
	m := Lift4(origin, xAxis, yAxis, normal)

	got := m.Apply(geom2.XY(2, 3))
	require.InDelta(t, 2.0, got.X, 1e-9)
	require.InDelta(t, 0.0, got.Y, 1e-9)
	require.InDelta(t, 3.0, got.Z, 1e-9)
}

func TestMatrix4MulIdentity(t *testing.T) {
	m := Lift4(Vec3{X: 1}, Vec3{X: 1}, Vec3{Y: 1}, Vec3{Z: 1})
	require.Equal(t, m, m.Mul(Identity4()))
	require.Equal(t, m, Identity4().Mul(m))
}
