package profile

import (
	"sort"

	"github.com/brepkit/kernel/geom2"
	"github.com/brepkit/kernel/loop"
	"github.com/brepkit/kernel/numerical"
	"github.com/unixpickle/essentials"
)

// EdgeTag marks which ring a source edge belongs to.
type EdgeTag int

const (
	TagOuter EdgeTag = iota
	TagHole
)

// Edge is one source geometry's materialized, world-lifted polyline.
type Edge struct {
	GeometryID int
	Tag        EdgeTag
	World      []numerical.Vec3
}

// Face is one classified nesting group, triangulated and lifted into world
// space.
type Face struct {
	// Vertices2D and Vertices are parallel: local sketch-plane coordinates
	// and their world-space lift.
	Vertices2D []geom2.Coord
	Vertices   []numerical.Vec3
	Normals    []numerical.Vec3
	Triangles  []Triangle

	// Loops2D/LoopsWorld pair the outer boundary and each hole boundary in
	// both spaces, outer first.
	Loops2D    [][]geom2.Coord
	LoopsWorld [][]numerical.Vec3

	Edges []Edge
}

// Bundle is the full compiled output of one sketch.
type Bundle struct {
	Faces []Face
}

// Compile triangulates and lifts every classified group into the output
// bundle. Groups are independent, so the CPU-bound triangulation work fans
// out across them.
func Compile(groups []loop.Group, plane Plane) Bundle {
	if len(groups) == 0 {
		return Bundle{}
	}
	faces := make([]Face, len(groups))
	essentials.ConcurrentMap(0, len(groups), func(i int) {
		faces[i] = compileFace(groups[i], plane)
	})
	return Bundle{Faces: faces}
}

func compileFace(g loop.Group, plane Plane) Face {
	ring2D, tris := triangulate2D(g)
	world := LiftPoints(plane, ring2D)
	normal := numerical.Vec3{X: plane.Normal.X, Y: plane.Normal.Y, Z: plane.Normal.Z}
	normals := make([]numerical.Vec3, len(world))
	for i := range normals {
		normals[i] = normal
	}

	loops2D := [][]geom2.Coord{g.Outer.Points}
	loopsWorld := [][]numerical.Vec3{LiftPoints(plane, g.Outer.Points)}
	for _, h := range g.Holes {
		loops2D = append(loops2D, h.Points)
		loopsWorld = append(loopsWorld, LiftPoints(plane, h.Points))
	}

	edges := edgesOf(g, plane)

	return Face{
		Vertices2D: ring2D,
		Vertices:   world,
		Normals:    normals,
		Triangles:  tris,
		Loops2D:    loops2D,
		LoopsWorld: loopsWorld,
		Edges:      edges,
	}
}

// edgesOf groups each loop's consecutive same-source-geometry points into a
// per-geometry world-space polyline.
func edgesOf(g loop.Group, plane Plane) []Edge {
	var out []Edge
	out = append(out, edgesOfLoop(g.Outer, TagOuter, plane)...)
	for _, h := range g.Holes {
		out = append(out, edgesOfLoop(h, TagHole, plane)...)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].GeometryID < out[j].GeometryID })
	return out
}

func edgesOfLoop(l loop.Loop, tag EdgeTag, plane Plane) []Edge {
	byGeom := map[int][]geom2.Coord{}
	order := []int{}
	n := len(l.Points)
	for i := 0; i < n; i++ {
		gid := l.SourceIDs[i]
		if _, ok := byGeom[gid]; !ok {
			order = append(order, gid)
		}
		byGeom[gid] = append(byGeom[gid], l.Points[i], l.Points[(i+1)%n])
	}
	out := make([]Edge, 0, len(order))
	for _, gid := range order {
		out = append(out, Edge{GeometryID: gid, Tag: tag, World: LiftPoints(plane, byGeom[gid])})
	}
	return out
}
