package geometry

import "strconv"

// Rect is an axis-aligned box.
type Rect struct {
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// IsEmpty reports whether the rect has zero or negative area.
func (r Rect) IsEmpty() bool {
	return r.Width <= 0 || r.Height <= 0
}

// Offset returns the position of r relative to the origin of parent.
func (r Rect) Offset(parent Rect) (float64, float64) {
	return r.X - parent.X, r.Y - parent.Y
}

// Round2 rounds to two decimals the way fixed-point formatting does.
func Round2(v float64) float64 {
	r, err := strconv.ParseFloat(strconv.FormatFloat(v, 'f', 2, 64), 64)
	if err != nil {
		return v
	}
	return r
}
