package advanced

import (
	"log/slog"

	"gonum.org/v1/gonum/spatial/r3"
)

// SubMesh is the part of a mesh where the visual field is defined. It is a
// single topology with two coordinate buffers, so that a point addressed in
// visual space can be evaluated on the surface and vice versa.
type SubMesh struct {
	*Topology
	Surface []r3.Vec
	Visual  []Point
	// Original mesh vertex index for each sub-mesh vertex
	Original []int
	// Original mesh face index for each sub-mesh face
	OriginalFaces []int

	grid *spatialGrid
}

// Location of a point in the sub-mesh.
type Address struct {
	Face    int
	Weights [3]float64
}

// Build the sub-mesh of faces whose three vertices are unmasked and have
// defined field values. A nil mask includes every vertex. Panics with
// ErrNoTriangles if no face survives.
func NewSubMesh(m *Mesh, field Field, mask []bool) *SubMesh {
	if len(field) != m.VertexCount() {
		fatalf("field has %d entries but mesh has %d vertices", len(field), m.VertexCount())
	}
	if mask != nil && len(mask) != m.VertexCount() {
		fatalf("mask has %d entries but mesh has %d vertices", len(mask), m.VertexCount())
	}
	usable := func(v int) bool {
		return (mask == nil || mask[v]) && field.Valid(v)
	}

	index := make(map[int]int)
	var original []int
	var faces []Face
	var originalFaces []int
	for fi, f := range m.Faces {
		if !usable(f[0]) || !usable(f[1]) || !usable(f[2]) {
			continue
		}
		var sf Face
		for i, v := range f {
			k, ok := index[v]
			if !ok {
				k = len(original)
				index[v] = k
				original = append(original, v)
			}
			sf[i] = k
		}
		faces = append(faces, sf)
		originalFaces = append(originalFaces, fi)
	}
	if len(faces) == 0 {
		fatalWrapf(ErrNoTriangles, "sub-mesh of %d vertices", m.VertexCount())
	}

	sub := &SubMesh{
		Topology:      NewTopology(faces),
		Surface:       make([]r3.Vec, len(original)),
		Visual:        make([]Point, len(original)),
		Original:      original,
		OriginalFaces: originalFaces,
	}
	for k, v := range original {
		sub.Surface[k] = m.Coordinates[v]
		sub.Visual[k] = field[v]
	}
	sub.grid = newSpatialGrid(sub.Visual, faces)

	Logger().Debug("built sub-mesh",
		slog.Int("vertices", len(original)),
		slog.Int("faces", len(faces)),
		slog.Int("meshVertices", m.VertexCount()))
	return sub
}

func (s *SubMesh) VisualTriangle(fi int) Triangle {
	return FaceTriangle(s.Visual, s.Faces[fi])
}

// The face containing visual point p, or -1.
func (s *SubMesh) Container(p Point) int {
	return s.grid.locate(p)
}

// Locate a visual point. ok is false when p is outside the sub-mesh.
func (s *SubMesh) Address(p Point) (Address, bool) {
	fi := s.Container(p)
	if fi < 0 {
		return Address{}, false
	}
	w, ok := s.VisualTriangle(fi).Barycentric(p)
	if !ok {
		return Address{}, false
	}
	return Address{Face: fi, Weights: w}, true
}

func (s *SubMesh) UnaddressVisual(a Address) Point {
	return s.VisualTriangle(a.Face).Unaddress(a.Weights)
}

func (s *SubMesh) UnaddressSurface(a Address) r3.Vec {
	f := s.Faces[a.Face]
	var p r3.Vec
	for i, v := range f {
		p = r3.Add(p, r3.Scale(a.Weights[i], s.Surface[v]))
	}
	return p
}
