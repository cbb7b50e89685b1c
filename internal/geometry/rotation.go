package geometry

import (
	"math"
	"slices"
)

// Rotation turns points about the origin, clockwise on screen for positive
// angles since y grows downwards.
type Rotation struct {
	cos, sin float64
}

func RotateDegrees(degrees float64) Rotation {
	rad := degrees * math.Pi / 180
	return Rotation{cos: math.Cos(rad), sin: math.Sin(rad)}
}

func (r Rotation) Apply(x, y float64) (float64, float64) {
	return x*r.cos - y*r.sin, x*r.sin + y*r.cos
}

// Bounds is the axis-aligned box around rect once rotated.
func (r Rotation) Bounds(rect Rect) Rect {
	xs := make([]float64, 0, 4)
	ys := make([]float64, 0, 4)
	for _, c := range [4][2]float64{
		{rect.X, rect.Y},
		{rect.X + rect.Width, rect.Y},
		{rect.X + rect.Width, rect.Y + rect.Height},
		{rect.X, rect.Y + rect.Height},
	} {
		x, y := r.Apply(c[0], c[1])
		xs = append(xs, x)
		ys = append(ys, y)
	}
	minX, maxX := slices.Min(xs), slices.Max(xs)
	minY, maxY := slices.Min(ys), slices.Max(ys)
	return Rect{X: minX, Y: minY, Width: maxX - minX, Height: maxY - minY}
}
