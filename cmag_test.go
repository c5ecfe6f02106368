package cmag

import (
	"math"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/spatial/r3"
)

func square(t *testing.T) (*Mesh, Field) {
	coordinates := []r3.Vec{{X: 0, Y: 0}, {X: 1, Y: 0}, {X: 1, Y: 1}, {X: 0, Y: 1}}
	m, err := NewMesh(coordinates, []Face{{0, 1, 2}, {0, 2, 3}})
	require.NoError(t, err)
	field := Field{{X: 1, Y: 1}, {X: 2, Y: 1}, {X: 2, Y: 2}, {X: 1, Y: 2}}
	return m, field
}

// Smoke tests. The internals are already tested.
func TestDifferentialMagnification(t *testing.T) {
	m, field := square(t)
	result, err := DifferentialMagnification(m, field, DifferentialOptions{To: Faces})
	assert.NoError(t, err)
	assert.Len(t, result, 2)
	for _, mag := range result {
		assert.InDelta(t, 1, mag.Areal, 1e-9)
		assert.Equal(t, 1.0, mag.FieldSign)
	}
}

func TestTracePath(t *testing.T) {
	m, field := square(t)
	ratio, err := TracePath(m, field, []Point{{X: 1.1, Y: 1.3}, {X: 1.9, Y: 1.6}}, PathOptions{})
	assert.NoError(t, err)
	assert.InDelta(t, 1, ratio, 1e-9)

	_, err = TracePath(m, field, []Point{{X: 5, Y: 5}, {X: 6, Y: 6}}, PathOptions{})
	assert.Error(t, err)
	assert.Equal(t, ErrNoIntersection, errors.Cause(err))
}

func TestErrorsInsteadOfPanics(t *testing.T) {
	m, _ := square(t)
	_, err := NeighborhoodMagnification(m, Field{{X: 0, Y: 0}})
	assert.Error(t, err)

	nan := math.NaN()
	empty := Field{{X: nan, Y: nan}, {X: nan, Y: nan}, {X: nan, Y: nan}, {X: nan, Y: nan}}
	_, err = TraceSubpaths(m, empty, []Point{{X: 0, Y: 0}, {X: 1, Y: 1}}, PathOptions{})
	assert.Equal(t, ErrNoTriangles, errors.Cause(err))
}

func TestIsocontours(t *testing.T) {
	m, _ := square(t)
	retinotopy := Retinotopy{
		PolarAngle:   []float64{0, 90, 90, 0},
		Eccentricity: []float64{1, 1, 2, 2},
	}
	contours, err := Isocontours(m, retinotopy, Eccentricity, 1.5, ContourOptions{MinSegmentLength: 2})
	assert.NoError(t, err)
	require.Len(t, contours, 1)
	assert.Len(t, contours[0].Visual, 3)
}
