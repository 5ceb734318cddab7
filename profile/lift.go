package profile

import (
	"github.com/brepkit/kernel/geom2"
	"github.com/brepkit/kernel/numerical"
)

// Plane describes a sketch's placement in world space: an origin and an
// orthonormal basis.
type Plane struct {
	Origin numerical.Vec3
	XAxis  numerical.Vec3
	YAxis  numerical.Vec3
	Normal numerical.Vec3
}

// Lift builds the 4x4 affine transform from this plane's local 2D basis
// into world space.
func (p Plane) Lift() numerical.Matrix4 {
	return numerical.Lift4(p.Origin, p.XAxis, p.YAxis, p.Normal)
}

// LiftPoints maps a slice of local 2D coordinates into world space.
func LiftPoints(plane Plane, pts []geom2.Coord) []numerical.Vec3 {
	m := plane.Lift()
	out := make([]numerical.Vec3, len(pts))
	for i, p := range pts {
		out[i] = m.Apply(p)
	}
	return out
}
