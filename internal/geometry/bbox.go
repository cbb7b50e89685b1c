package geometry

import "math"

// Placement is an unrotated box recovered from an axis-aligned bounding box.
// Left/Top locate the box's own top-left corner before rotation.
type Placement struct {
	Width    float64 `json:"width"`
	Height   float64 `json:"height"`
	Left     float64 `json:"left"`
	Top      float64 `json:"top"`
	Rotation float64 `json:"rotation"`
}

// RectFromBoundingBox inverts a rotation: given the bounding box of a rotated
// rectangle and the host's rotation angle in degrees, it returns the
// rectangle's own size and anchor, rounded to two decimals.
//
// The system is singular where cos²θ = sin²θ (±45°, ±135°). No guard is
// applied there; the result is non-finite or very large.
func RectFromBoundingBox(bb Rect, hostDegrees float64) Placement {
	cssDegrees := -hostDegrees
	theta := cssDegrees * math.Pi / 180
	absCos := math.Abs(math.Cos(theta))
	absSin := math.Abs(math.Sin(theta))

	denominator := absCos*absCos - absSin*absSin
	h := (bb.Width*absSin - bb.Height*absCos) / -denominator
	w := (bb.Width - h*absSin) / absCos

	corners := RotateDegrees(-cssDegrees).Bounds(Rect{Width: w, Height: h})

	return Placement{
		Width:    Round2(w),
		Height:   Round2(h),
		Left:     Round2(bb.X - corners.X),
		Top:      Round2(bb.Y - corners.Y),
		Rotation: cssDegrees,
	}
}
