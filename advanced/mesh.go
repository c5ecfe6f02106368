package advanced

import (
	"sort"

	"github.com/pkg/errors"
	"gonum.org/v1/gonum/spatial/r3"
)

// Topology is a face list with its edge index, independent of any coordinates.
type Topology struct {
	Faces     []Face
	edgeFaces map[Edge][]int
}

func NewTopology(faces []Face) *Topology {
	t := &Topology{Faces: faces, edgeFaces: make(map[Edge][]int, len(faces)*3/2+1)}
	for i, f := range faces {
		for _, e := range f.Edges() {
			t.edgeFaces[e] = append(t.edgeFaces[e], i)
		}
	}
	return t
}

func (t *Topology) EdgeFaces(e Edge) []int {
	return t.edgeFaces[e]
}

// The face on the other side of edge e from face fi, or -1 if e is a boundary
// (or non-manifold) edge.
func (t *Topology) Across(fi int, e Edge) int {
	faces := t.edgeFaces[e]
	if len(faces) != 2 {
		return -1
	}
	if faces[0] == fi {
		return faces[1]
	}
	if faces[1] == fi {
		return faces[0]
	}
	return -1
}

// Every edge, in a stable order.
func (t *Topology) Edges() []Edge {
	edges := make([]Edge, 0, len(t.edgeFaces))
	for e := range t.edgeFaces {
		edges = append(edges, e)
	}
	sort.Slice(edges, func(i, j int) bool {
		if edges[i].A != edges[j].A {
			return edges[i].A < edges[j].A
		}
		return edges[i].B < edges[j].B
	})
	return edges
}

// Mesh is a triangulated surface. Coordinates are 3D; a flat mesh simply uses
// Z = 0. The adjacency structures are derived once by NewMesh and never
// modified afterwards, so a Mesh may be shared between goroutines.
type Mesh struct {
	*Topology
	Coordinates []r3.Vec

	vertexFaces   [][]int
	neighborhoods [][]int
}

// Create a mesh, validating that every face refers to three distinct, valid
// vertices.
func NewMesh(coordinates []r3.Vec, faces []Face) (*Mesh, error) {
	n := len(coordinates)
	for i, f := range faces {
		for _, v := range f {
			if v < 0 || v >= n {
				return nil, errors.Errorf("face %d refers to vertex %d, but there are %d vertices", i, v, n)
			}
		}
		if f[0] == f[1] || f[1] == f[2] || f[2] == f[0] {
			return nil, errors.Errorf("face %d has repeated vertices: %v", i, f)
		}
	}

	m := &Mesh{
		Topology:    NewTopology(faces),
		Coordinates: coordinates,
		vertexFaces: make([][]int, n),
	}
	for i, f := range faces {
		for _, v := range f {
			m.vertexFaces[v] = append(m.vertexFaces[v], i)
		}
	}
	m.neighborhoods = make([][]int, n)
	for v := range coordinates {
		m.neighborhoods[v] = m.orderedNeighborhood(v)
	}
	return m, nil
}

func (m *Mesh) VertexCount() int {
	return len(m.Coordinates)
}

// Faces which include the vertex.
func (m *Mesh) VertexFaces(v int) []int {
	return m.vertexFaces[v]
}

// The 1-ring of the vertex, ordered around it following the winding of its
// faces. For a boundary vertex the ring is open, and starts at the neighbor
// that no incident face leads into.
func (m *Mesh) Neighborhood(v int) []int {
	return m.neighborhoods[v]
}

func (m *Mesh) orderedNeighborhood(v int) []int {
	faces := m.vertexFaces[v]
	if len(faces) == 0 {
		return nil
	}

	// Each incident face contributes a wedge a -> b, where (v, a, b) is the
	// face rotated to start at v.
	next := make(map[int]int, len(faces))
	hasPredecessor := make(map[int]bool, len(faces))
	var order []int // first-seen order of wedge starts, for determinism
	for _, fi := range faces {
		f := m.Faces[fi]
		var a, b int
		switch v {
		case f[0]:
			a, b = f[1], f[2]
		case f[1]:
			a, b = f[2], f[0]
		default:
			a, b = f[0], f[1]
		}
		if _, ok := next[a]; ok {
			// Non-manifold fan; the walk below will pick the stray up afterwards
			order = append(order, b)
			continue
		}
		next[a] = b
		hasPredecessor[b] = true
		order = append(order, a)
	}

	start := order[0]
	for _, a := range order {
		if _, ok := next[a]; ok && !hasPredecessor[a] {
			start = a
			break
		}
	}

	ring := make([]int, 0, len(faces)+1)
	seen := make(map[int]bool, len(faces)+1)
	for cur, ok := start, true; ok && !seen[cur]; cur, ok = next[cur] {
		ring = append(ring, cur)
		seen[cur] = true
	}

	// Anything not reached is from a second fan around a non-manifold vertex.
	var rest []int
	for _, fi := range faces {
		for _, u := range m.Faces[fi] {
			if u != v && !seen[u] {
				seen[u] = true
				rest = append(rest, u)
			}
		}
	}
	return append(ring, rest...)
}

// The 2D triangle for a face in the given coordinate buffer.
func FaceTriangle(coords []Point, f Face) Triangle {
	return Triangle{coords[f[0]], coords[f[1]], coords[f[2]]}
}
