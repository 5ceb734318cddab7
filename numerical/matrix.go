// Package numerical provides the small affine-transform matrices used to
// lift a 2D sketch plane into world space.
package numerical

import "github.com/brepkit/kernel/geom2"

// Matrix4 is a 4x4 matrix, row-major, used for the affine lift from a
// sketch's planar basis into world space.
type Matrix4 [16]float64

// Identity4 returns the 4x4 identity matrix.
func Identity4() Matrix4 {
	return Matrix4{
		1, 0, 0, 0,
		0, 1, 0, 0,
		0, 0, 1, 0,
		0, 0, 0, 1,
	}
}

// Vec3 is a 3D vector or point.
type Vec3 struct {
	X, Y, Z float64
}

// Lift4 builds the affine 4x4 transform mapping a sketch plane's local
// (x,y) basis to world space, given the plane's world-space origin and its
// orthonormal x/y basis vectors.
func Lift4(origin, xAxis, yAxis, normal Vec3) Matrix4 {
	return Matrix4{
		xAxis.X, yAxis.X, normal.X, origin.X,
		xAxis.Y, yAxis.Y, normal.Y, origin.Y,
		xAxis.Z, yAxis.Z, normal.Z, origin.Z,
		0, 0, 0, 1,
	}
}

// Apply transforms a local (x, y, 0) point into world space.
func (m Matrix4) Apply(local geom2.Coord) Vec3 {
	x, y := local.X, local.Y
	return Vec3{
		X: m[0]*x + m[1]*y + m[3],
		Y: m[4]*x + m[5]*y + m[7],
		Z: m[8]*x + m[9]*y + m[11],
	}
}

// Mul composes m with m1 (m applied after m1).
func (m Matrix4) Mul(m1 Matrix4) Matrix4 {
	var out Matrix4
	for r := 0; r < 4; r++ {
		for c := 0; c < 4; c++ {
			var sum float64
			for k := 0; k < 4; k++ {
				sum += m[r*4+k] * m1[k*4+c]
			}
			out[r*4+c] = sum
		}
	}
	return out
}
