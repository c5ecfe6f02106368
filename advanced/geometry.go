package advanced

import (
	"math"

	"gonum.org/v1/gonum/spatial/r2"
	"gonum.org/v1/gonum/spatial/r3"
)

func (p Point) vec() r2.Vec { return r2.Vec(p) }

func (p Point) Add(q Point) Point { return Point(r2.Add(p.vec(), q.vec())) }
func (p Point) Sub(q Point) Point { return Point(r2.Sub(p.vec(), q.vec())) }
func (p Point) Scale(f float64) Point { return Point(r2.Scale(f, p.vec())) }
func (p Point) Dot(q Point) float64 { return r2.Dot(p.vec(), q.vec()) }
func (p Point) Norm() float64 { return r2.Norm(p.vec()) }

// Z component of the cross product of p and q, treated as 3D vectors.
func (p Point) Cross(q Point) float64 { return r2.Cross(p.vec(), q.vec()) }

func (p Point) Distance(q Point) float64 { return p.Sub(q).Norm() }
func (p Point) IsNaN() bool { return math.IsNaN(p.X) || math.IsNaN(p.Y) }
func (p Point) Lerp(q Point, f float64) Point { return p.Add(q.Sub(p).Scale(f)) }

// p rotated a quarter turn counterclockwise. A plain swap keeps the result
// exact, which r2.Rotate would not.
func (p Point) Perpendicular() Point { return Point{-p.Y, p.X} }

// Signed area of the triangle. Counterclockwise triangles have positive area.
func (t Triangle) SignedArea() float64 {
	return 0.5 * t.B.Sub(t.A).Cross(t.C.Sub(t.A))
}

func (t Triangle) Area() float64 {
	return math.Abs(t.SignedArea())
}

// Area of a triangle in 3D space.
func TriangleArea3(a, b, c r3.Vec) float64 {
	return 0.5 * r3.Norm(r3.Cross(r3.Sub(b, a), r3.Sub(c, a)))
}

// Barycentric weights (wa, wb, wc) of p with respect to the triangle, such that
// p = wa*A + wb*B + wc*C and the weights sum to 1. ok is false if the triangle
// is degenerate.
func (t Triangle) Barycentric(p Point) (w [3]float64, ok bool) {
	v0 := t.B.Sub(t.A)
	v1 := t.C.Sub(t.A)
	v2 := p.Sub(t.A)

	denom := v0.Cross(v1) // twice the signed area
	if nearlyParallel(v0, v1, denom) {
		return w, false
	}
	w[1] = v2.Cross(v1) / denom
	w[2] = v0.Cross(v2) / denom
	w[0] = 1 - w[1] - w[2]
	return w, true
}

// Point-in-triangle test. Points on the boundary, within Tolerance, are
// contained. Either winding is accepted.
func (t Triangle) Contains(p Point) bool {
	if p.IsNaN() {
		return false
	}
	w, ok := t.Barycentric(p)
	if !ok {
		return false
	}
	return w[0] >= -Tolerance && w[1] >= -Tolerance && w[2] >= -Tolerance
}

// Evaluate barycentric weights against the triangle's corners.
func (t Triangle) Unaddress(w [3]float64) Point {
	return t.A.Scale(w[0]).Add(t.B.Scale(w[1])).Add(t.C.Scale(w[2]))
}

// The edges of the triangle, in the same order as Face.Edges.
func (t Triangle) Segments() [3]Segment {
	return [3]Segment{{t.A, t.B}, {t.B, t.C}, {t.C, t.A}}
}

func (s Segment) Vector() Point {
	return s.End.Sub(s.Start)
}

func (s Segment) Length() float64 {
	return s.Vector().Norm()
}

// Intersection of two bounded segments. Parallel segments, including collinear
// overlapping ones, do not intersect.
func SegmentIntersection(s, other Segment) (Point, bool) {
	t, u, ok := lineParameters(s.Start, s.Vector(), other)
	if !ok {
		return Point{}, false
	}
	if t < -Tolerance || t > 1+Tolerance || u < -Tolerance || u > 1+Tolerance {
		return Point{}, false
	}
	return s.Start.Add(s.Vector().Scale(t)), true
}

// Intersection of the infinite line through origin with direction dir and a
// bounded segment.
func LineSegmentIntersection(origin, dir Point, s Segment) (Point, bool) {
	t, u, ok := lineParameters(origin, dir, s)
	if !ok || u < -Tolerance || u > 1+Tolerance {
		return Point{}, false
	}
	return origin.Add(dir.Scale(t)), true
}

// Solve origin + t*dir = s.Start + u*(s.End - s.Start).
func lineParameters(origin, dir Point, s Segment) (t, u float64, ok bool) {
	sv := s.Vector()
	denom := dir.Cross(sv)
	if nearlyParallel(dir, sv, denom) {
		return 0, 0, false
	}
	diff := s.Start.Sub(origin)
	t = diff.Cross(sv) / denom
	u = diff.Cross(dir) / denom
	return t, u, true
}

// Whether the cross product of a and b is negligible next to their lengths,
// so that the test does not depend on the scale of the coordinates.
func nearlyParallel(a, b Point, cross float64) bool {
	return math.Abs(cross) <= 1e-12*a.Norm()*b.Norm()
}
