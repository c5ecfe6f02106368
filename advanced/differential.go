package advanced

import (
	"math"

	"gonum.org/v1/gonum/spatial/r3"
)

// Aggregation chooses whether differential magnification is reported per face
// or per vertex.
type Aggregation int

const (
	Vertices Aggregation = iota
	Faces
)

func (a Aggregation) String() string {
	if a == Faces {
		return "faces"
	}
	return "vertices"
}

type DifferentialOptions struct {
	// Defaults to Vertices
	To Aggregation
	// Alternate surface coordinates for the same vertices, used in place of
	// the mesh's own coordinates for every surface measurement. Optional.
	Surface []r3.Vec
}

// Everything measured on a single face. Vertex aggregation needs the raw areas,
// not just their ratio.
type faceMeasure struct {
	Magnification
	surfaceArea, visualArea float64
	// Squared longest side in each space, the scale areas are judged against
	surfaceScale, visualScale float64
	valid                     bool
}

// DifferentialMagnification estimates magnification from the Jacobian of the
// piecewise linear map between each surface face and its visual field image.
// The result has one entry per face or per vertex of the mesh, according to
// opts.To. Faces touching a missing field entry are Missing, and so are
// vertices touching no valid face.
func DifferentialMagnification(m *Mesh, field Field, opts DifferentialOptions) []Magnification {
	if err := field.CheckMesh(m); err != nil {
		fatalf("%v", err)
	}
	surface := m.Coordinates
	if opts.Surface != nil {
		if len(opts.Surface) != m.VertexCount() {
			fatalf("surface has %d coordinates but mesh has %d vertices", len(opts.Surface), m.VertexCount())
		}
		surface = opts.Surface
	}

	measures := make([]faceMeasure, len(m.Faces))
	for fi, f := range m.Faces {
		if !field.Valid(f[0]) || !field.Valid(f[1]) || !field.Valid(f[2]) {
			measures[fi] = faceMeasure{Magnification: Missing}
			continue
		}
		measures[fi] = measureFace(
			[3]r3.Vec{surface[f[0]], surface[f[1]], surface[f[2]]},
			[3]Point{field[f[0]], field[f[1]], field[f[2]]},
		)
	}

	if opts.To == Faces {
		result := make([]Magnification, len(measures))
		for fi, fm := range measures {
			result[fi] = fm.Magnification
		}
		return result
	}
	return aggregateToVertices(m, measures)
}

func measureFace(s [3]r3.Vec, v [3]Point) faceMeasure {
	// Side lengths; side i runs from corner i to corner i+1.
	s0 := r3.Norm(r3.Sub(s[1], s[0]))
	s1 := r3.Norm(r3.Sub(s[2], s[1]))
	s2 := r3.Norm(r3.Sub(s[0], s[2]))
	s0sq, s1sq, s2sq := s0*s0, s1*s1, s2*s2
	surfaceSide := math.Max(s0, math.Max(s1, s2))
	visualSide := math.Max(v[0].Distance(v[1]), math.Max(v[1].Distance(v[2]), v[2].Distance(v[0])))

	// Local frame in the plane of the face: corner 0 at the origin, corner 1
	// at (s0, 0) and corner 2 at (b, h), with h >= 0.
	s0inv := ZinvScaled(s0, surfaceSide)
	b := 0.5 * (s0sq - s1sq + s2sq) * s0inv
	heron := 2*s0sq*(s1sq+s2sq) - s0sq*s0sq - (s1sq-s2sq)*(s1sq-s2sq)
	h := 0.5 * math.Sqrt(math.Max(heron, 0)) * s0inv
	hinv := ZinvScaled(h, surfaceSide)

	// Columns of the Jacobian: derivatives of the visual position along the
	// two local axes.
	dx := v[1].Sub(v[0]).Scale(s0inv)
	dy := v[2].Sub(v[0].Add(dx.Scale(b))).Scale(hinv)

	fm := faceMeasure{
		surfaceScale: surfaceSide * surfaceSide,
		visualScale:  visualSide * visualSide,
		valid:        true,
	}
	fm.FieldSign = sign(dx.Cross(dy))

	fm.surfaceArea = TriangleArea3(s[0], s[1], s[2])
	fm.visualArea = Triangle{v[0], v[1], v[2]}.Area()
	fm.Areal = magnificationRatio(fm.surfaceArea, fm.visualArea, fm.surfaceScale, fm.visualScale)

	// Radial and tangential unit vectors at the face's mean visual position.
	// A face centered on the origin has no radial direction, and gets zero
	// magnifications.
	center := v[0].Add(v[1]).Add(v[2]).Scale(1.0 / 3)
	radial := center.Scale(ZinvScaled(center.Norm(), visualSide))
	tangential := radial.Perpendicular()

	// Project the rows of the Jacobian onto each direction to get the local
	// gradient of the radial and tangential visual coordinates. Gradients are
	// visual lengths per surface length.
	var gradientScale float64
	if surfaceSide > 0 {
		gradientScale = visualSide / surfaceSide
	}
	radialGradient := Point{radial.Dot(dx), radial.Dot(dy)}
	tangentialGradient := Point{tangential.Dot(dx), tangential.Dot(dy)}
	fm.Radial = ZinvScaled(radialGradient.Norm(), gradientScale)
	fm.Tangential = ZinvScaled(tangentialGradient.Norm(), gradientScale)
	return fm
}

// Areal magnification at a vertex is total surface area over total visual area
// of its faces. The other values are plain averages over its valid faces.
func aggregateToVertices(m *Mesh, measures []faceMeasure) []Magnification {
	result := make([]Magnification, m.VertexCount())
	for v := range result {
		var surfaceArea, visualArea, surfaceScale, visualScale float64
		var radial, tangential, fieldSign float64
		count := 0
		for _, fi := range m.VertexFaces(v) {
			fm := measures[fi]
			if !fm.valid {
				continue
			}
			surfaceArea += fm.surfaceArea
			visualArea += fm.visualArea
			surfaceScale += fm.surfaceScale
			visualScale += fm.visualScale
			radial += fm.Radial
			tangential += fm.Tangential
			fieldSign += fm.FieldSign
			count++
		}
		if count == 0 {
			result[v] = Missing
			continue
		}
		countInv := Zinv(float64(count))
		result[v] = Magnification{
			Radial:     radial * countInv,
			Tangential: tangential * countInv,
			Areal:      magnificationRatio(surfaceArea, visualArea, surfaceScale, visualScale),
			FieldSign:  fieldSign * countInv,
		}
	}
	return result
}
