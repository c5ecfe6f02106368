package advanced

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/spatial/r3"
)

func assertMagnification(t *testing.T, expected, actual Magnification, msgAndArgs ...interface{}) {
	t.Helper()
	assert.InDelta(t, expected.Radial, actual.Radial, 1e-9, msgAndArgs...)
	assert.InDelta(t, expected.Tangential, actual.Tangential, 1e-9, msgAndArgs...)
	assert.InDelta(t, expected.Areal, actual.Areal, 1e-9, msgAndArgs...)
	assert.Equal(t, expected.FieldSign, actual.FieldSign, msgAndArgs...)
}

func TestDifferentialMagnification_Identity(t *testing.T) {
	m := Grid(t, 4, 1)
	// Shift away from the origin so that every face has a radial direction
	field := MapField(m, func(p Point) Point { return p.Add(Point{1, 1}) })
	unit := Magnification{1, 1, 1, 1}

	faces := DifferentialMagnification(m, field, DifferentialOptions{To: Faces})
	require.Len(t, faces, len(m.Faces))
	for fi, mag := range faces {
		assertMagnification(t, unit, mag, "face %d", fi)
	}

	vertices := DifferentialMagnification(m, field, DifferentialOptions{})
	require.Len(t, vertices, m.VertexCount())
	for v, mag := range vertices {
		assertMagnification(t, unit, mag, "vertex %d", v)
	}
}

func TestDifferentialMagnification_Mirror(t *testing.T) {
	m := Grid(t, 3, 1)
	field := MapField(m, func(p Point) Point { return Point{-p.X - 1, p.Y + 1} })
	for fi, mag := range DifferentialMagnification(m, field, DifferentialOptions{To: Faces}) {
		assertMagnification(t, Magnification{1, 1, 1, -1}, mag, "face %d", fi)
	}
}

func TestDifferentialMagnification_Scaled(t *testing.T) {
	m := Grid(t, 3, 1)
	// Visual field at 4x the surface size: a quarter of the linear
	// magnification, and a sixteenth of the areal
	field := MapField(m, func(p Point) Point { return p.Add(Point{1, 2}).Scale(4) })
	for fi, mag := range DifferentialMagnification(m, field, DifferentialOptions{To: Faces}) {
		assertMagnification(t, Magnification{0.25, 0.25, 1.0 / 16, 1}, mag, "face %d", fi)
	}

	// Alternate surface coordinates at twice the size of the mesh
	surface := make([]r3.Vec, m.VertexCount())
	for i, c := range m.Coordinates {
		surface[i] = r3.Scale(2, c)
	}
	for v, mag := range DifferentialMagnification(m, field, DifferentialOptions{Surface: surface}) {
		assertMagnification(t, Magnification{0.5, 0.5, 0.25, 1}, mag, "vertex %d", v)
	}
}

// A visual field ten thousand times smaller than the surface has faces whose
// areas are far below any fixed tolerance, yet they are not degenerate.
func TestDifferentialMagnification_SmallScale(t *testing.T) {
	k := 1e-4
	m := Grid(t, 3, 1)
	field := MapField(m, func(p Point) Point { return p.Add(Point{1, 1}).Scale(k) })
	for fi, mag := range DifferentialMagnification(m, field, DifferentialOptions{To: Faces}) {
		assert.InEpsilon(t, 1/k, mag.Radial, 1e-9, "face %d", fi)
		assert.InEpsilon(t, 1/k, mag.Tangential, 1e-9, "face %d", fi)
		assert.InEpsilon(t, 1/(k*k), mag.Areal, 1e-9, "face %d", fi)
		assert.Equal(t, 1.0, mag.FieldSign)
	}
	for v, mag := range DifferentialMagnification(m, field, DifferentialOptions{}) {
		assert.InEpsilon(t, 1/(k*k), mag.Areal, 1e-9, "vertex %d", v)
	}
}

func TestDifferentialMagnification_Anisotropic(t *testing.T) {
	m := Grid(t, 2, 1)
	// On the horizontal meridian, x is radial and y is tangential
	field := MapField(m, func(p Point) Point { return Point{10 + 2*p.X, p.Y - 1} })
	faces := DifferentialMagnification(m, field, DifferentialOptions{To: Faces})
	for _, fi := range []int{0, 1, 2, 3, 4, 5, 6, 7} {
		assert.Greater(t, faces[fi].Tangential, faces[fi].Radial)
		assert.InDelta(t, 0.5, faces[fi].Areal, 1e-9)
	}
}

func TestDifferentialMagnification_CoincidentVertices(t *testing.T) {
	fm := measureFace(
		[3]r3.Vec{{}, {X: 1}, {Y: 1}},
		[3]Point{{1, 1}, {1, 1}, {1, 1}},
	)
	assert.True(t, math.IsInf(fm.Areal, 1))
	assert.Equal(t, 0.0, fm.FieldSign)

	// Degenerate on both sides
	fm = measureFace(
		[3]r3.Vec{{}, {}, {}},
		[3]Point{{1, 1}, {1, 1}, {1, 1}},
	)
	assert.Equal(t, 0.0, fm.Areal)
}

func TestDifferentialMagnification_Missing(t *testing.T) {
	n := 4
	m := Grid(t, n, 1)
	field := MapField(m, func(p Point) Point { return p.Add(Point{1, 1}) })
	hole := GridVertex(n, 2, 2)
	field[hole] = NoPoint

	faces := DifferentialMagnification(m, field, DifferentialOptions{To: Faces})
	missing := 0
	for _, mag := range faces {
		if mag.IsMissing() {
			missing++
		}
	}
	assert.Equal(t, len(m.VertexFaces(hole)), missing)

	vertices := DifferentialMagnification(m, field, DifferentialOptions{})
	assert.True(t, vertices[hole].IsMissing())
	assertMagnification(t, Magnification{1, 1, 1, 1}, vertices[GridVertex(n, 3, 2)])
}

func TestDifferentialMagnification_BadInput(t *testing.T) {
	m := Grid(t, 2, 1)
	err := catch(func() { DifferentialMagnification(m, Field{{0, 0}}, DifferentialOptions{}) })
	assert.Error(t, err)

	err = catch(func() {
		DifferentialMagnification(m, MapField(m, Identity), DifferentialOptions{Surface: []r3.Vec{{}}})
	})
	assert.Error(t, err)
}
