package advanced

import (
	"embed"
	"log"
	"strconv"
	"strings"
	"testing"

	"github.com/JoshVarga/svgparser"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/spatial/r3"
)

// Test meshes, and paths loaded from the svg fixtures. The fixture loader is
// not a real svg parser: it finds the single polyline in the file and returns
// its points. If anything goes wrong, it panics.
//
// Fixtures are available by name in the fixtures/ directory, sans extension.

//go:embed fixtures
var fixtures embed.FS

func LoadPathFixture(name string) []Point {
	fixture, err := fixtures.Open("fixtures/" + name + ".svg")
	if err != nil {
		log.Fatalf("Could not load fixture %q: %v", name, err)
	}

	defer fixture.Close()
	rootEl, err := svgparser.Parse(fixture, true)
	if err != nil {
		log.Fatalf("Failed to parse fixture %q: %v", name, err)
	}

	polylines := rootEl.FindAll("polyline")
	if len(polylines) != 1 {
		log.Fatalf("Expected exactly one polyline in fixture %q, found %d", name, len(polylines))
	}

	var points []Point
	for _, pointString := range strings.Fields(polylines[0].Attributes["points"]) {
		xy := strings.Split(pointString, ",")
		if len(xy) != 2 {
			log.Fatalf("Invalid point string %q", pointString)
		}
		x, err := strconv.ParseFloat(xy[0], 64)
		if err != nil {
			log.Fatalf("Invalid x value %q: %v", xy[0], err)
		}
		y, err := strconv.ParseFloat(xy[1], 64)
		if err != nil {
			log.Fatalf("Invalid y value %q: %v", xy[1], err)
		}
		points = append(points, Point{x, y})
	}
	return points
}

// Flat n by n grid of unit squares with corners at integer coordinates, scaled
// by scale. Vertex (i, j) has index j*(n+1)+i. Each square is split along its
// rising diagonal into two counterclockwise triangles.
func Grid(t *testing.T, n int, scale float64) *Mesh {
	var coordinates []r3.Vec
	for j := 0; j <= n; j++ {
		for i := 0; i <= n; i++ {
			coordinates = append(coordinates, r3.Vec{X: scale * float64(i), Y: scale * float64(j)})
		}
	}
	var faces []Face
	for j := 0; j < n; j++ {
		for i := 0; i < n; i++ {
			a := j*(n+1) + i
			b, c, d := a+1, a+n+2, a+n+1
			faces = append(faces, Face{a, b, c}, Face{a, c, d})
		}
	}
	m, err := NewMesh(coordinates, faces)
	require.NoError(t, err)
	return m
}

// Field mapping each vertex of a flat mesh to f of its surface position.
func MapField(m *Mesh, f func(Point) Point) Field {
	field := make(Field, m.VertexCount())
	for i, c := range m.Coordinates {
		field[i] = f(Point{c.X, c.Y})
	}
	return field
}

func Identity(p Point) Point { return p }

// Index of grid vertex (i, j) in a Grid of size n.
func GridVertex(n, i, j int) int {
	return j*(n+1) + i
}

// Call fn, converting a MagnificationError panic into an error.
func catch(fn func()) (err error) {
	defer func() {
		err = HandlePanicRecover(recover())
	}()
	fn()
	return nil
}
