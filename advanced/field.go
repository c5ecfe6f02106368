package advanced

import (
	"math"
	"strings"

	"github.com/pkg/errors"
)

// Field assigns a visual field position to every vertex of a mesh. Vertices
// without a measurement hold a NaN point.
type Field []Point

// A missing field entry.
var NoPoint = Point{math.NaN(), math.NaN()}

func (f Field) Valid(i int) bool {
	return i >= 0 && i < len(f) && !f[i].IsNaN() && !math.IsInf(f[i].X, 0) && !math.IsInf(f[i].Y, 0)
}

// Check that the field has one entry per mesh vertex.
func (f Field) CheckMesh(m *Mesh) error {
	if len(f) != m.VertexCount() {
		return errors.Errorf("field has %d entries but mesh has %d vertices", len(f), m.VertexCount())
	}
	return nil
}

// Retinotopy is the per-vertex polar angle and eccentricity of a retinotopic
// map. Polar angle is in degrees, measured clockwise from the upper vertical
// meridian; eccentricity is in degrees of visual angle. NaN marks a vertex
// without a measurement.
type Retinotopy struct {
	PolarAngle   []float64
	Eccentricity []float64
}

// Resolver turns some description of a retinotopy source into concrete
// per-vertex data for a mesh.
type Resolver interface {
	Resolve(m *Mesh) (Retinotopy, error)
}

// A Retinotopy resolves to itself, after checking its size against the mesh.
func (r Retinotopy) Resolve(m *Mesh) (Retinotopy, error) {
	if len(r.PolarAngle) != len(r.Eccentricity) {
		return Retinotopy{}, errors.Errorf("polar angle has %d entries but eccentricity has %d", len(r.PolarAngle), len(r.Eccentricity))
	}
	if len(r.PolarAngle) != m.VertexCount() {
		return Retinotopy{}, errors.Errorf("retinotopy has %d entries but mesh has %d vertices", len(r.PolarAngle), m.VertexCount())
	}
	return r, nil
}

// Convert polar angle and eccentricity to visual field coordinates.
func VisualPoint(polarAngle, eccentricity float64) Point {
	if math.IsNaN(polarAngle) || math.IsNaN(eccentricity) {
		return NoPoint
	}
	theta := math.Pi/2 - polarAngle*math.Pi/180
	return Point{eccentricity * math.Cos(theta), eccentricity * math.Sin(theta)}
}

func (r Retinotopy) Field() Field {
	field := make(Field, len(r.PolarAngle))
	for i := range field {
		field[i] = VisualPoint(r.PolarAngle[i], r.Eccentricity[i])
	}
	return field
}

// FieldSelector picks one of the two retinotopic coordinates as a scalar field.
type FieldSelector int

const (
	Angle FieldSelector = iota
	Eccentricity
)

func ParseFieldSelector(name string) (FieldSelector, error) {
	switch strings.ToLower(name) {
	case "angle", "polar_angle", "radial", "rad":
		return Angle, nil
	case "eccen", "eccentricity", "tangential", "tan":
		return Eccentricity, nil
	}
	return 0, errors.Errorf("unrecognized field selector: %q", name)
}

func (s FieldSelector) String() string {
	if s == Eccentricity {
		return "eccentricity"
	}
	return "angle"
}

// Values of the selected coordinate.
func (r Retinotopy) Values(s FieldSelector) []float64 {
	if s == Eccentricity {
		return r.Eccentricity
	}
	return r.PolarAngle
}
