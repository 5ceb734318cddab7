// Package loop connects solved 2D segments head-to-tail into closed loops
// and classifies them by nesting parity into outer boundaries and holes.
package loop

import (
	"fmt"
	"math"
	"sort"

	"github.com/brepkit/kernel/geom2"
	"github.com/brepkit/kernel/sketch"
	"github.com/unixpickle/essentials"
)

// MinCurveSamples is the floor on arc/circle sample counts.
const MinCurveSamples = 8

// ChainOptions configures segment materialization and chaining.
type ChainOptions struct {
	// CurveResolution is the number of samples used per full turn of an
	// arc or circle; partial arcs get a proportional share, never fewer
	// than MinCurveSamples. Zero selects 32.
	CurveResolution int
}

func (o ChainOptions) resolution() int {
	if o.CurveResolution <= 0 {
		return 32
	}
	return o.CurveResolution
}

// rawSegment is one materialized 2-point edge of a chain-able geometry.
type rawSegment struct {
	id       int // synthetic id, unique per materialized segment
	sourceID int // originating geometry id
	a, b     geom2.Coord
}

// Materialize converts every non-construction geometry in doc into one or
// more 2-point segments: lines become a single segment, arcs and circles
// are sampled into polylines.
func Materialize(doc *sketch.Document, opts ChainOptions) []rawSegment {
	ids := make([]int, 0, len(doc.Geometries))
	for id := range doc.Geometries {
		ids = append(ids, id)
	}
	sort.Ints(ids)

	var segs []rawSegment
	nextID := 0
	for _, gid := range ids {
		g := doc.Geometries[gid]
		if g.Construction {
			continue
		}
		switch g.Kind {
		case sketch.Line:
			a := coordOf(doc, g.PointIDs[0])
			b := coordOf(doc, g.PointIDs[1])
			segs = append(segs, rawSegment{id: nextID, sourceID: gid, a: a, b: b})
			nextID++
		case sketch.Arc:
			pts := sampleArc(doc, g, opts)
			for i := 0; i+1 < len(pts); i++ {
				segs = append(segs, rawSegment{id: nextID, sourceID: gid, a: pts[i], b: pts[i+1]})
				nextID++
			}
		case sketch.Circle:
			pts := sampleCircle(doc, g, opts)
			for i := 0; i+1 < len(pts); i++ {
				segs = append(segs, rawSegment{id: nextID, sourceID: gid, a: pts[i], b: pts[i+1]})
				nextID++
			}
		}
	}
	return segs
}

func coordOf(doc *sketch.Document, id int) geom2.Coord {
	p := doc.Points[id]
	if p == nil {
		panic(fmt.Sprintf("loop: geometry references missing point %d", id))
	}
	x, y := p.XY()
	return geom2.XY(x, y)
}

// sampleArc samples an arc geometry (center, start, end; CCW sweep) into a
// polyline. A start that coincides with the end sweeps the full circle.
func sampleArc(doc *sketch.Document, g *sketch.Geometry, opts ChainOptions) []geom2.Coord {
	center := coordOf(doc, g.PointIDs[0])
	start := coordOf(doc, g.PointIDs[1])
	end := coordOf(doc, g.PointIDs[2])

	radius := center.Dist(start)
	startAngle := start.Sub(center).Angle()
	endAngle := end.Sub(center).Angle()

	d := geom2.NormalizeAngle(endAngle - startAngle)
	if d < 1e-9 {
		d = 2 * math.Pi
	}

	samples := essentials.MaxInt(MinCurveSamples, int(float64(opts.resolution())*d/(2*math.Pi)))
	pts := make([]geom2.Coord, samples+1)
	for i := 0; i <= samples; i++ {
		theta := startAngle + d*float64(i)/float64(samples)
		pts[i] = center.Add(geom2.PolarScaled(theta, radius))
	}
	return pts
}

// sampleCircle samples a full circle (center, radius-defining point) into a
// closed polyline.
func sampleCircle(doc *sketch.Document, g *sketch.Geometry, opts ChainOptions) []geom2.Coord {
	center := coordOf(doc, g.PointIDs[0])
	edge := coordOf(doc, g.PointIDs[1])
	radius := center.Dist(edge)

	samples := essentials.MaxInt(MinCurveSamples, opts.resolution())
	pts := make([]geom2.Coord, samples+1)
	for i := 0; i <= samples; i++ {
		theta := 2 * math.Pi * float64(i) / float64(samples)
		pts[i] = center.Add(geom2.PolarScaled(theta, radius))
	}
	return pts
}
