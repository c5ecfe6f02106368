package advanced

import (
	"math"

	"gonum.org/v1/gonum/spatial/r2"
	"gonum.org/v1/gonum/spatial/r3"
)

// A point in the visual field, or any other 2D coordinate space. Missing
// values are represented by NaN coordinates. The vector arithmetic is r2's.
type Point r2.Vec

// Segment between two 2D points. Unlike a mesh Edge, a segment carries
// coordinates rather than vertex indices.
type Segment struct {
	Start Point
	End   Point
}

// Triangle of 2D points, in winding order.
type Triangle struct {
	A, B, C Point
}

// A face of a mesh, as three vertex indices in winding order.
type Face [3]int

// Undirected edge between two vertices. Edges are always constructed with
// NewEdge so that A < B, which lets them be used as map keys.
type Edge struct {
	A, B int
}

func NewEdge(u, v int) Edge {
	if u > v {
		u, v = v, u
	}
	return Edge{u, v}
}

// The three edges of the face. Edge i runs from vertex i to vertex i+1.
func (f Face) Edges() [3]Edge {
	return [3]Edge{
		NewEdge(f[0], f[1]),
		NewEdge(f[1], f[2]),
		NewEdge(f[2], f[0]),
	}
}

// Vertex of the face which is not on the given edge, or -1 if the edge is not
// an edge of the face.
func (f Face) Opposite(e Edge) int {
	shared, opposite := 0, -1
	for _, v := range f {
		if v == e.A || v == e.B {
			shared++
		} else {
			opposite = v
		}
	}
	if shared != 2 {
		return -1
	}
	return opposite
}

// Magnification measured at a face or vertex. Radial and tangential
// magnifications are in surface distance per unit of visual distance, areal
// magnification in surface area per unit of visual area. Missing values are
// NaN.
type Magnification struct {
	Radial     float64
	Tangential float64
	Areal      float64
	FieldSign  float64
}

// Magnification with every entry missing.
var Missing = Magnification{math.NaN(), math.NaN(), math.NaN(), math.NaN()}

func (m Magnification) IsMissing() bool {
	return math.IsNaN(m.Radial) && math.IsNaN(m.Tangential) && math.IsNaN(m.Areal) && math.IsNaN(m.FieldSign)
}

// A traced piece of a path, as parallel polylines in both coordinate spaces.
type Subpath struct {
	Surface []r3.Vec
	Visual  []Point
}

// A connected piece of a level set curve, as parallel polylines in both
// coordinate spaces. Faces lists the chain of straddling faces the
// curve was built from, as indices into the original mesh.
type Isocontour struct {
	Surface []r3.Vec
	Visual  []Point
	Faces   []int
}
