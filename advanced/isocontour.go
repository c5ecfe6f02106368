package advanced

import (
	"fmt"
	"log/slog"
	"sort"

	"github.com/osuushi/cmag/dbg"
	"gonum.org/v1/gonum/spatial/r3"
)

const DefaultMinSegmentLength = 4

type ContourOptions struct {
	// Vertices to include; nil includes all of them
	Mask []bool
	// Minimum number of faces in a contour. Zero means
	// DefaultMinSegmentLength, and anything below 2 is raised to 2.
	MinSegmentLength int
}

func (o ContourOptions) minSegmentLength() int {
	if o.MinSegmentLength == 0 {
		return DefaultMinSegmentLength
	}
	return max(o.MinSegmentLength, 2)
}

// Isocontours extracts the curves along which the selected retinotopic
// coordinate equals level, as polylines in both the surface and the visual
// field. Each contour follows a chain of adjacent faces that straddle the
// level; chains never branch, so where the level set does, it is split into
// several contours.
//
// Panics with ErrNoTriangles if the retinotopy leaves no usable face.
func Isocontours(m *Mesh, retinotopy Retinotopy, selector FieldSelector, level float64, opts ContourOptions) []Isocontour {
	retinotopy, err := retinotopy.Resolve(m)
	if err != nil {
		fatalf("%v", err)
	}
	sub := NewSubMesh(m, retinotopy.Field(), opts.Mask)
	all := retinotopy.Values(selector)
	values := make([]float64, len(sub.Original))
	for k, v := range sub.Original {
		values[k] = all[v]
	}

	c := newContourer(sub, values, level)
	c.link()

	var result []Isocontour
	for _, ch := range c.chains() {
		if len(ch.faces) < opts.minSegmentLength() {
			continue
		}
		result = append(result, c.trace(ch))
	}
	return result
}

// A vertex is above the level when its value is at least the level.
type contourer struct {
	sub    *SubMesh
	values []float64
	level  float64
	above  []bool

	// Straddling faces, with their two crossing edges
	crossings map[int][2]Edge
	// Shared crossing edge of each linked pair, keyed by (lower, higher) face
	shared map[[2]int]Edge
	owner  map[int]*chain
}

// A chain is an ordered run of straddling faces, each sharing a crossing edge
// with the next. Only its two ends may be joined to other chains.
type chain struct {
	faces []int
}

func (ch *chain) head() int { return ch.faces[0] }
func (ch *chain) tail() int { return ch.faces[len(ch.faces)-1] }

func (ch *chain) String() string {
	return fmt.Sprintf("chain %s (%d faces, %d..%d)", dbg.Colored(ch), len(ch.faces), ch.head(), ch.tail())
}

func newContourer(sub *SubMesh, values []float64, level float64) *contourer {
	c := &contourer{
		sub:       sub,
		values:    values,
		level:     level,
		above:     make([]bool, len(values)),
		crossings: make(map[int][2]Edge),
		shared:    make(map[[2]int]Edge),
		owner:     make(map[int]*chain),
	}
	for k, v := range values {
		c.above[k] = v >= level
	}
	for fi, f := range sub.Faces {
		n := 0
		for _, v := range f {
			if c.above[v] {
				n++
			}
		}
		if n == 0 || n == 3 {
			continue
		}
		var edges [2]Edge
		k := 0
		for _, e := range f.Edges() {
			if c.above[e.A] != c.above[e.B] {
				edges[k] = e
				k++
			}
		}
		c.crossings[fi] = edges
		c.owner[fi] = &chain{faces: []int{fi}}
	}
	return c
}

func pairKey(a, b int) [2]int {
	if a > b {
		a, b = b, a
	}
	return [2]int{a, b}
}

// Join straddling faces across their shared crossing edges.
func (c *contourer) link() {
	byEdge := make(map[Edge][]int)
	for fi, edges := range c.crossings {
		for _, e := range edges {
			byEdge[e] = append(byEdge[e], fi)
		}
	}
	var pairs [][2]int
	for e, faces := range byEdge {
		switch {
		case len(faces) == 2:
			key := pairKey(faces[0], faces[1])
			c.shared[key] = e
			pairs = append(pairs, key)
		case len(faces) > 2:
			Logger().Warn("contour crosses a non-manifold edge", slog.Int("a", e.A), slog.Int("b", e.B), slog.Int("faces", len(faces)))
		}
	}
	sort.Slice(pairs, func(i, j int) bool {
		if pairs[i][0] != pairs[j][0] {
			return pairs[i][0] < pairs[j][0]
		}
		return pairs[i][1] < pairs[j][1]
	})
	for _, p := range pairs {
		c.merge(p[0], p[1])
	}
}

// Merge the chains holding faces a and b, if a and b are ends of their
// respective chains. The merged chain has a and b next to each other.
func (c *contourer) merge(a, b int) {
	ca, cb := c.owner[a], c.owner[b]
	if ca == cb {
		// Closing a loop; leave it open at this edge
		Logger().Debug("contour chain closes on itself", slog.Any("chain", ca))
		return
	}

	var faces []int
	switch {
	case ca.tail() == a && cb.head() == b:
		faces = append(ca.faces, cb.faces...)
	case ca.tail() == a && cb.tail() == b:
		faces = append(ca.faces, reversed(cb.faces)...)
	case ca.head() == a && cb.head() == b:
		faces = append(reversed(ca.faces), cb.faces...)
	case ca.head() == a && cb.tail() == b:
		faces = append(cb.faces, ca.faces...)
	default:
		Logger().Debug("contour chains meet away from their ends",
			slog.Any("a", ca), slog.Any("b", cb))
		return
	}

	// Keep the larger chain, and move the smaller chain's faces over to it
	keep, drop := ca, cb
	if len(cb.faces) > len(ca.faces) {
		keep, drop = cb, ca
	}
	keep.faces = faces
	for _, fi := range drop.faces {
		c.owner[fi] = keep
	}
	Logger().Debug("merged contour chains", slog.Any("into", keep))
}

func reversed(faces []int) []int {
	r := make([]int, len(faces))
	for i, fi := range faces {
		r[len(faces)-1-i] = fi
	}
	return r
}

// Distinct chains, ordered by their lowest face.
func (c *contourer) chains() []*chain {
	faces := make([]int, 0, len(c.owner))
	for fi := range c.owner {
		faces = append(faces, fi)
	}
	sort.Ints(faces)
	seen := make(map[*chain]bool)
	var result []*chain
	for _, fi := range faces {
		ch := c.owner[fi]
		if !seen[ch] {
			seen[ch] = true
			result = append(result, ch)
		}
	}
	return result
}

// Build the polyline for a chain: a point on the free crossing edge of the
// first face, one on every shared edge, and one on the free crossing edge of
// the last face.
func (c *contourer) trace(ch *chain) Isocontour {
	n := len(ch.faces)
	edges := make([]Edge, 0, n+1)
	first := c.shared[pairKey(ch.faces[0], ch.faces[1])]
	edges = append(edges, c.otherCrossing(ch.faces[0], first))
	for i := 1; i < n; i++ {
		edges = append(edges, c.shared[pairKey(ch.faces[i-1], ch.faces[i])])
	}
	last := c.shared[pairKey(ch.faces[n-2], ch.faces[n-1])]
	edges = append(edges, c.otherCrossing(ch.faces[n-1], last))

	contour := Isocontour{
		Surface: make([]r3.Vec, 0, len(edges)),
		Visual:  make([]Point, 0, len(edges)),
		Faces:   make([]int, n),
	}
	for _, e := range edges {
		f := c.fraction(e)
		visual := c.sub.Visual[e.A].Scale(f).Add(c.sub.Visual[e.B].Scale(1 - f))
		// Where the level passes through a vertex, neighboring edges cross at
		// that same vertex
		if k := len(contour.Visual); k > 0 && contour.Visual[k-1] == visual {
			continue
		}
		contour.Visual = append(contour.Visual, visual)
		contour.Surface = append(contour.Surface, r3.Add(r3.Scale(f, c.sub.Surface[e.A]), r3.Scale(1-f, c.sub.Surface[e.B])))
	}
	for i, fi := range ch.faces {
		contour.Faces[i] = c.sub.OriginalFaces[fi]
	}
	return contour
}

func (c *contourer) otherCrossing(fi int, e Edge) Edge {
	edges := c.crossings[fi]
	if edges[0] == e {
		return edges[1]
	}
	return edges[0]
}

// Weight of e.A in the point where the level crosses e. A vertex exactly at
// the level gets a weight of exactly 0 or 1.
func (c *contourer) fraction(e Edge) float64 {
	near, far := c.values[e.A], c.values[e.B]
	return (far - c.level) / (far - near)
}
