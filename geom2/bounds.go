package geom2

// Rect is a concrete axis-aligned bounding box, converted into the rtreego
// bounds of each loop for nesting queries (see loop/classify.go).
type Rect struct {
	MinVal Coord
	MaxVal Coord
}

func (r *Rect) Min() Coord { return r.MinVal }
func (r *Rect) Max() Coord { return r.MaxVal }

// BoundsOfPoints computes the bounding rect of a point list.
func BoundsOfPoints(pts []Coord) *Rect {
	min, max := pts[0], pts[0]
	for _, p := range pts[1:] {
		min = min.Min(p)
		max = max.Max(p)
	}
	return &Rect{MinVal: min, MaxVal: max}
}
