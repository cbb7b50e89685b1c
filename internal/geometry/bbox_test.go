package geometry

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRectFromBoundingBoxUnrotated(t *testing.T) {
	p := RectFromBoundingBox(Rect{X: 12, Y: 30, Width: 100, Height: 40}, 0)

	assert.Equal(t, 100.0, p.Width)
	assert.Equal(t, 40.0, p.Height)
	assert.Equal(t, 12.0, p.Left)
	assert.Equal(t, 30.0, p.Top)
}

func TestRectFromBoundingBoxRoundTrip(t *testing.T) {
	const w, h = 120.0, 48.0

	for _, deg := range []float64{10, 30, 60, 120, 170, -20, -75, 200, 300} {
		aabb := RotateDegrees(deg).Bounds(Rect{Width: w, Height: h})

		for _, sign := range []float64{1, -1} {
			p := RectFromBoundingBox(aabb, sign*deg)
			assert.InDelta(t, w, p.Width, 0.01, "width at %v°", sign*deg)
			assert.InDelta(t, h, p.Height, 0.01, "height at %v°", sign*deg)
		}
	}
}

func TestRectFromBoundingBoxAnchor(t *testing.T) {
	// The recovered anchor, rotated back, lands on the box's corner.
	const deg = 30.0
	aabb := RotateDegrees(deg).Bounds(Rect{Width: 60, Height: 20})
	aabb.X += 50
	aabb.Y += 80

	p := RectFromBoundingBox(aabb, deg)
	assert.Equal(t, -deg, p.Rotation)
	assert.InDelta(t, 50, p.Left, 0.01)
	assert.InDelta(t, 80, p.Top, 0.01)
}

func TestRectFromBoundingBoxSingularAngles(t *testing.T) {
	for _, deg := range []float64{45, 135, -45} {
		p := RectFromBoundingBox(Rect{Width: 50, Height: 30}, deg)
		degenerate := math.IsInf(p.Height, 0) || math.IsNaN(p.Height) || math.Abs(p.Height) > 1e6
		assert.True(t, degenerate, "expected a degenerate height at %v°, got %v", deg, p.Height)
	}
}

func TestRotationBounds(t *testing.T) {
	x, y := RotateDegrees(90).Apply(10, 0)
	assert.InDelta(t, 0, x, 1e-9)
	assert.InDelta(t, 10, y, 1e-9)

	b := RotateDegrees(90).Bounds(Rect{Width: 40, Height: 10})
	assert.InDelta(t, -10, b.X, 1e-9)
	assert.InDelta(t, 0, b.Y, 1e-9)
	assert.InDelta(t, 10, b.Width, 1e-9)
	assert.InDelta(t, 40, b.Height, 1e-9)
}

func TestRound2(t *testing.T) {
	assert.Equal(t, 1.23, Round2(1.234))
	assert.Equal(t, 1.24, Round2(1.235001))
	assert.Equal(t, 10.0, Round2(10.001))
}
