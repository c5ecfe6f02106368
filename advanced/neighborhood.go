package advanced

import (
	"math"

	"gonum.org/v1/gonum/spatial/r3"
)

// NeighborhoodMagnification estimates magnification at each vertex from a
// Voronoi-like cell around it: each neighbor is pulled halfway towards the
// vertex, in both the visual field and on the surface, and the resulting
// polygons are compared. A vertex gets Missing values if it or any neighbor has
// no field value. FieldSign is never computed by this estimator and is always
// NaN.
func NeighborhoodMagnification(m *Mesh, field Field) []Magnification {
	if err := field.CheckMesh(m); err != nil {
		fatalf("%v", err)
	}
	result := make([]Magnification, m.VertexCount())
	for v := range result {
		result[v] = neighborhoodMagnification(m, field, v)
	}
	return result
}

func neighborhoodMagnification(m *Mesh, field Field, v int) Magnification {
	if !field.Valid(v) {
		return Missing
	}
	neighbors := m.Neighborhood(v)
	if len(neighbors) == 0 {
		return Missing
	}
	for _, u := range neighbors {
		if !field.Valid(u) {
			return Missing
		}
	}

	centerVisual := field[v]
	centerSurface := m.Coordinates[v]
	cellVisual := make([]Point, len(neighbors))
	cellSurface := make([]r3.Vec, len(neighbors))
	for i, u := range neighbors {
		cellVisual[i] = field[u].Sub(centerVisual).Scale(0.5).Add(centerVisual)
		cellSurface[i] = r3.Add(r3.Scale(0.5, r3.Sub(m.Coordinates[u], centerSurface)), centerSurface)
	}

	// Size of the visual cell, which decides what counts as degenerate
	radiusVisual := cellRadius(centerVisual, cellVisual)

	result := Magnification{FieldSign: math.NaN()}

	// Areal magnification from a fan of triangles around the center
	var areaVisual, areaSurface float64
	for i := range neighbors {
		j := CircularIndex(i-1, len(neighbors))
		areaVisual += Triangle{centerVisual, cellVisual[i], cellVisual[j]}.Area()
		areaSurface += TriangleArea3(centerSurface, cellSurface[i], cellSurface[j])
	}
	if isNegligible(areaVisual, radiusVisual*radiusVisual) {
		result.Areal = math.Inf(1)
	} else {
		result.Areal = areaSurface / areaVisual
	}

	// Radial and tangential magnification from chords through the center
	norm := centerVisual.Norm()
	if isNegligible(norm, radiusVisual) {
		result.Radial, result.Tangential = math.NaN(), math.NaN()
		return result
	}
	radial := centerVisual.Scale(1 / norm)
	result.Radial = chordMagnification(centerVisual, centerSurface, radial, cellVisual, cellSurface)
	result.Tangential = chordMagnification(centerVisual, centerSurface, radial.Perpendicular(), cellVisual, cellSurface)
	return result
}

// Cast a line through the center of the cell along dir. It should cross the
// cell boundary exactly twice; each crossing is carried over to the surface by
// interpolating along the matching surface edge. The magnification is the
// surface path through the center divided by the visual chord. Any other
// number of crossings gives NaN.
//
// A line through a corner of the cell meets both sides there. Crossings that
// coincide, relative to the size of the cell, count once.
func chordMagnification(centerVisual Point, centerSurface r3.Vec, dir Point, cellVisual []Point, cellSurface []r3.Vec) float64 {
	n := len(cellVisual)
	radius := cellRadius(centerVisual, cellVisual)
	merge := Tolerance * radius

	var crossings [2]Point
	var edges [2]int
	count := 0
	for i := 0; i < n; i++ {
		j := CircularIndex(i+1, n)
		p, ok := LineSegmentIntersection(centerVisual, dir, Segment{cellVisual[i], cellVisual[j]})
		if !ok {
			continue
		}
		if coincides(p, crossings[:count], merge) {
			continue
		}
		if count == 2 {
			return math.NaN()
		}
		crossings[count] = p
		edges[count] = i
		count++
	}
	if count != 2 {
		return math.NaN()
	}

	chordVisual := crossings[0].Distance(crossings[1])
	if isNegligible(chordVisual, radius) {
		return math.Inf(1)
	}

	var chordSurface float64
	for k := 0; k < 2; k++ {
		i := edges[k]
		j := CircularIndex(i+1, n)
		var fraction float64
		if side := cellVisual[i].Distance(cellVisual[j]); side > 0 {
			fraction = cellVisual[i].Distance(crossings[k]) / side
		}
		edge := r3.Sub(cellSurface[j], cellSurface[i])
		crossing := r3.Add(cellSurface[i], r3.Scale(fraction, edge))
		chordSurface += r3.Norm(r3.Sub(crossing, centerSurface))
	}
	return chordSurface / chordVisual
}

func cellRadius(center Point, cell []Point) float64 {
	var radius float64
	for _, p := range cell {
		radius = math.Max(radius, p.Distance(center))
	}
	return radius
}

// Whether p lies within tol of any of the points.
func coincides(p Point, points []Point, tol float64) bool {
	for _, q := range points {
		if p.Distance(q) <= tol {
			return true
		}
	}
	return false
}
