// Package curves holds the figure-8 parametric curve evaluators. Both are
// pure functions of their parameters.
package curves

import "math"

// Point is a 2D evaluation result.
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Lissajous evaluates (ax*sin(nx*2πt+phase), ay*sin(ny*2πt)).
func Lissajous(t, ax, ay, nx, ny, phase float64) Point {
	w := 2 * math.Pi * t
	return Point{
		X: ax * math.Sin(nx*w+phase),
		Y: ay * math.Sin(ny*w),
	}
}

// Bernoulli evaluates the lemniscate of Bernoulli with half-width a:
// (a*cos(2πt)/(1+sin²), a*sin(2πt)*cos(2πt)/(1+sin²)).
func Bernoulli(t, a float64) Point {
	w := 2 * math.Pi * t
	s, c := math.Sincos(w)
	den := 1 + s*s
	return Point{
		X: a * c / den,
		Y: a * s * c / den,
	}
}
