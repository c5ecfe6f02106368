package advanced

import "math"

// Absolute and relative tolerances for closeness tests. These match the usual
// numerical defaults, so that "close to zero" means within 1e-8.
const (
	AbsTolerance = 1e-8
	RelTolerance = 1e-5
)

// Relative tolerance for inclusive point-in-triangle tests, for deciding whether
// a path intersection lies strictly ahead, and for merging coincident crossings.
const Tolerance = 1e-6

// IsClose reports whether a is within tolerance of b. The tolerance scales with
// the magnitude of b.
func IsClose(a, b float64) bool {
	if math.IsInf(a, 0) || math.IsInf(b, 0) {
		return a == b
	}
	return math.Abs(a-b) <= AbsTolerance+RelTolerance*math.Abs(b)
}

// Zinv yields 1/x, or 0 if x is close to 0.
func Zinv(x float64) float64 {
	return ZinvScaled(x, 1)
}

// ZinvScaled yields 1/x, or 0 if x is negligible next to scale, a typical
// magnitude for x. This keeps small but well formed inputs finite.
func ZinvScaled(x, scale float64) float64 {
	if isNegligible(x, scale) {
		return 0
	}
	return 1 / x
}

// Whether x vanishes relative to scale. A zero scale only admits exact zero.
func isNegligible(x, scale float64) bool {
	return math.Abs(x) <= AbsTolerance*math.Abs(scale)
}

// Zdiv yields a/b, or null if b is close to 0.
func Zdiv(a, b, null float64) float64 {
	if IsClose(b, 0) {
		return null
	}
	return a / b
}

// Ratio of a surface measure to a visual measure. A visual measure that vanishes
// next to visualScale gives +Inf when the surface measure is nonzero, and 0 when
// both vanish. The scales are typical magnitudes in each space, such as the
// squared longest side of a face for areas.
func magnificationRatio(surface, visual, surfaceScale, visualScale float64) float64 {
	if isNegligible(visual, visualScale) {
		if isNegligible(surface, surfaceScale) {
			return 0
		}
		return math.Inf(1)
	}
	return surface / visual
}

// Sign of x as -1, 0 or +1. NaN stays NaN.
func sign(x float64) float64 {
	switch {
	case x > 0:
		return 1
	case x < 0:
		return -1
	case x == 0:
		return 0
	}
	return math.NaN()
}

// Often we want to treat an array as a circular buffer. This gives the modular
// index given length n, but unlike the raw modulo operator, it only gives positive values
func CircularIndex(i, n int) int {
	return (i%n + n) % n
}
