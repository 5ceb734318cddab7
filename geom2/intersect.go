package geom2

import "math"

// LineIntersection computes the intersection of the infinite lines through
// (a0,a1) and (b0,b1). ok is false if the lines are parallel.
func LineIntersection(a0, a1, b0, b1 Coord) (pt Coord, ok bool) {
	d1 := a1.Sub(a0)
	d2 := b1.Sub(b0)
	denom := d1.Cross(d2)
	if math.Abs(denom) < 1e-12 {
		return Coord{}, false
	}
	diff := b0.Sub(a0)
	t := diff.Cross(d2) / denom
	return a0.Add(d1.Scale(t)), true
}

// PerpDistance returns the signed perpendicular distance from p to the
// infinite line through a and b. The sign follows the right-hand turn from
// (b-a) to (p-a).
func PerpDistance(p, a, b Coord) float64 {
	dir := b.Sub(a)
	n := dir.Norm()
	if n == 0 {
		return p.Dist(a)
	}
	return dir.Cross(p.Sub(a)) / n
}

// ProjectOnLine returns the closest point to p on the infinite line through a
// and b.
func ProjectOnLine(p, a, b Coord) Coord {
	dir := b.Sub(a)
	n2 := dir.Dot(dir)
	if n2 == 0 {
		return a
	}
	t := p.Sub(a).Dot(dir) / n2
	return a.Add(dir.Scale(t))
}

// SignedArea computes the signed area of a closed polygon (first point
// should equal last, or the loop is implicitly closed). Positive is CCW.
func SignedArea(pts []Coord) float64 {
	if len(pts) < 3 {
		return 0
	}
	sum := 0.0
	n := len(pts)
	for i := 0; i < n; i++ {
		a := pts[i]
		b := pts[(i+1)%n]
		sum += a.Cross(b)
	}
	return sum / 2
}

// WindingNumber computes the winding number of the closed polygon pts around
// p, using the standard half-plane crossing accumulation (Dan Sunday's
// algorithm). A non-zero result means p is inside.
func WindingNumber(p Coord, pts []Coord) int {
	wn := 0
	n := len(pts)
	for i := 0; i < n; i++ {
		a := pts[i]
		b := pts[(i+1)%n]
		if a.Y <= p.Y {
			if b.Y > p.Y && isLeft(a, b, p) > 0 {
				wn++
			}
		} else {
			if b.Y <= p.Y && isLeft(a, b, p) < 0 {
				wn--
			}
		}
	}
	return wn
}

func isLeft(a, b, p Coord) float64 {
	return b.Sub(a).Cross(p.Sub(a))
}

// PointInPolygon reports whether p is inside the closed polygon pts.
func PointInPolygon(p Coord, pts []Coord) bool {
	return WindingNumber(p, pts) != 0
}
