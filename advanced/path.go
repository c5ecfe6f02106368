package advanced

import (
	"log/slog"
	"math"

	"gonum.org/v1/gonum/spatial/r3"
)

type PathOptions struct {
	// Vertices to include; nil includes all of them
	Mask []bool
}

// TracePath yields the surface length of a visual field path divided by its
// visual length. Only the parts of the path that lie over the valid sub-mesh
// count towards either length. Returns +Inf when the visual length vanishes.
//
// Panics with ErrNoIntersection if no part of the path crosses the sub-mesh.
func TracePath(m *Mesh, field Field, path []Point, opts PathOptions) float64 {
	return PathRatio(TraceSubpaths(m, field, path, opts))
}

// PathRatio is the total surface length of the subpaths over their total
// visual length, or +Inf when the visual length vanishes.
func PathRatio(subpaths []Subpath) float64 {
	var surface, visual float64
	for _, sp := range subpaths {
		surface += sp.SurfaceLength()
		visual += sp.VisualLength()
	}
	if visual == 0 {
		return math.Inf(1)
	}
	return surface / visual
}

// TraceSubpaths threads a visual field path through the sub-mesh where the
// field is defined, and returns the pieces that could be traced, in both
// spaces. Every point where the path crosses a sub-mesh edge is included, so
// that each segment of a subpath lies within a single face.
//
// A NaN point in the path is an explicit break. A path which returns to its
// first point closes a loop; tracing continues from there as a new subpath.
//
// Panics with ErrNoIntersection if no subpath survives.
func TraceSubpaths(m *Mesh, field Field, path []Point, opts PathOptions) []Subpath {
	sub := NewSubMesh(m, field, opts.Mask)
	w := newWalker(sub)
	for _, visual := range w.walk(path) {
		w.emit(visual)
	}
	if len(w.subpaths) == 0 {
		fatalWrapf(ErrNoIntersection, "path of %d points", len(path))
	}
	return w.subpaths
}

func (sp Subpath) SurfaceLength() float64 {
	var d float64
	for i := 1; i < len(sp.Surface); i++ {
		d += r3.Norm(r3.Sub(sp.Surface[i], sp.Surface[i-1]))
	}
	return d
}

func (sp Subpath) VisualLength() float64 {
	var d float64
	for i := 1; i < len(sp.Visual); i++ {
		d += sp.Visual[i].Distance(sp.Visual[i-1])
	}
	return d
}

// walker carries the state of a single path traversal. It is not safe for
// concurrent use, but separate walkers over the same sub-mesh are independent.
type walker struct {
	sub   *SubMesh
	edges []Edge // every sub-mesh edge, for the fallback search

	current  []Point   // visual points of the subpath being built
	finished [][]Point // visual subpaths, before mapping to the surface
	subpaths []Subpath
}

func newWalker(sub *SubMesh) *walker {
	return &walker{sub: sub, edges: sub.Edges()}
}

func (w *walker) push(p Point) {
	if n := len(w.current); n > 0 && w.current[n-1] == p {
		return
	}
	w.current = append(w.current, p)
}

func (w *walker) flush() {
	if len(w.current) > 1 {
		w.finished = append(w.finished, w.current)
	}
	w.current = nil
}

// Trace the whole path in visual space, returning the visual subpaths.
func (w *walker) walk(path []Point) [][]Point {
	containers := make([]int, len(path))
	for i, p := range path {
		containers[i] = w.sub.Container(p)
	}

	for i, p := range path {
		face := containers[i]
		last := i == len(path)-1
		if face < 0 || last {
			// A break in the path, or its end
			if face >= 0 {
				w.push(p)
			}
			w.flush()
			continue
		}

		w.push(p)
		next := path[i+1]
		w.travel(p, face, next)

		// Returning to the start closes a loop; begin a new subpath after it
		if i+1 < len(path)-1 && next == path[0] && containers[i+1] >= 0 {
			w.push(next)
			w.flush()
		}
	}
	w.flush()
	return w.finished
}

// Walk from p, inside face, towards dest, pushing every edge crossing.
func (w *walker) travel(p Point, face int, dest Point) {
	origin := p
	dir := dest.Sub(p)
	if dest.IsNaN() || dir == (Point{}) {
		return
	}
	// Each step moves strictly forward, so this only trips on a corrupt mesh.
	budget := 4*len(w.sub.Faces) + 16

	for steps := 0; !w.sub.VisualTriangle(face).Contains(dest); steps++ {
		if steps > budget {
			Logger().Warn("abandoning path segment after step budget",
				slog.Int("steps", steps), slog.Any("from", origin), slog.Any("to", dest))
			w.flush()
			return
		}

		crossing, edge, ok := w.nearestLocalCrossing(face, p, dir)
		next := -1
		if ok {
			p = crossing
			w.push(p)
			next = w.sub.Across(face, edge)
		}
		if next < 0 {
			// Off the edge of the sub-mesh, or the local search failed (this
			// happens when the path passes exactly through a vertex). Look for
			// anywhere further along the segment where the path enters a face.
			crossing, next, ok = w.fallbackCrossing(origin, dest, p, dir, face)
			if !ok {
				Logger().Debug("path segment leaves the sub-mesh for good",
					slog.Any("at", p), slog.Any("to", dest))
				w.flush()
				return
			}
			// The subpath only continues if the skipped stretch is over the mesh
			if w.sub.Container(p.Lerp(crossing, 0.5)) < 0 {
				w.flush()
			}
			Logger().Debug("path segment resumes",
				slog.Any("at", crossing), slog.Int("face", next), slog.Bool("split", len(w.current) == 0))
			p = crossing
			w.push(p)
		}
		face = next
	}
}

// Intersect the travel ray with the edges of the face, and return the closest
// intersection strictly ahead of p.
func (w *walker) nearestLocalCrossing(face int, p, dir Point) (Point, Edge, bool) {
	f := w.sub.Faces[face]
	edges := f.Edges()
	travel := Segment{p, p.Add(dir)}
	best, bestDistance, found := Point{}, math.Inf(1), -1
	for i, side := range w.sub.VisualTriangle(face).Segments() {
		x, ok := SegmentIntersection(travel, side)
		if !ok {
			continue
		}
		d, ahead := forwardDistance(p, dir, x)
		if ahead && d < bestDistance {
			best, bestDistance, found = x, d, i
		}
	}
	if found < 0 {
		return Point{}, Edge{}, false
	}
	return best, edges[found], true
}

// Search every edge of the sub-mesh, except those of the face just left, for
// the nearest crossing of the segment origin->dest ahead of p. Returns the
// crossing and the face on its far side.
func (w *walker) fallbackCrossing(origin, dest, p, dir Point, left int) (Point, int, bool) {
	travel := Segment{origin, dest}
	leftEdges := w.sub.Faces[left].Edges()
	best, bestDistance, bestFace := Point{}, math.Inf(1), -1

	for _, e := range w.edges {
		if e == leftEdges[0] || e == leftEdges[1] || e == leftEdges[2] {
			continue
		}
		side := Segment{w.sub.Visual[e.A], w.sub.Visual[e.B]}
		x, ok := SegmentIntersection(travel, side)
		if !ok {
			continue
		}
		d, ahead := forwardDistance(p, dir, x)
		if !ahead || d >= bestDistance {
			continue
		}
		face := w.farSide(e, dir)
		if face < 0 || face == left {
			continue
		}
		best, bestDistance, bestFace = x, d, face
	}
	return best, bestFace, bestFace >= 0
}

// The face incident to edge e which lies ahead when crossing e along dir.
func (w *walker) farSide(e Edge, dir Point) int {
	a, b := w.sub.Visual[e.A], w.sub.Visual[e.B]
	along := b.Sub(a)
	heading := along.Cross(dir)
	for _, fi := range w.sub.EdgeFaces(e) {
		c := w.sub.Visual[w.sub.Faces[fi].Opposite(e)]
		if along.Cross(c.Sub(a))*heading > 0 {
			return fi
		}
	}
	return -1
}

// Signed distance of x ahead of p along dir, and whether it is meaningfully
// ahead. The cutoff shrinks with short segments so that small meshes trace the
// same as large ones.
func forwardDistance(p, dir, x Point) (float64, bool) {
	length := dir.Norm()
	d := x.Sub(p).Dot(dir) / length
	return d, d > Tolerance*math.Min(length, 1)
}

// Map a visual subpath onto the surface. Points that cannot be addressed split
// the subpath.
func (w *walker) emit(visual []Point) {
	var sp Subpath
	done := func() {
		if len(sp.Visual) > 1 {
			w.subpaths = append(w.subpaths, sp)
		}
		sp = Subpath{}
	}
	for _, p := range visual {
		addr, ok := w.sub.Address(p)
		if !ok {
			done()
			continue
		}
		sp.Visual = append(sp.Visual, p)
		sp.Surface = append(sp.Surface, w.sub.UnaddressSurface(addr))
	}
	done()
}
