package style

import (
	"fmt"
	"math"
	"strings"

	"github.com/samber/lo"

	"github.com/inamate/figconv/internal/document"
)

// Color renders an RGB colour at the given alpha. Opaque white and black use
// their keywords, other opaque colours uppercase hex, anything translucent
// rgba().
func Color(c document.Color, alpha float64) string {
	if alpha == 1 {
		switch {
		case c.R == 1 && c.G == 1 && c.B == 1:
			return "white"
		case c.R == 0 && c.G == 0 && c.B == 0:
			return "black"
		}
		return strings.ToUpper(fmt.Sprintf("#%02x%02x%02x", channel(c.R), channel(c.G), channel(c.B)))
	}
	return fmt.Sprintf("rgba(%s, %s, %s, %s)", Fixed(c.R*255), Fixed(c.G*255), Fixed(c.B*255), Fixed(alpha))
}

func channel(v float64) int {
	return int(jsRound(math.Max(0, math.Min(1, v)) * 255))
}

// jsRound rounds half up, matching Math.round for the values seen here.
func jsRound(v float64) float64 {
	return math.Floor(v + 0.5)
}

// visiblePaints drops hidden paints, keeping document order.
func visiblePaints(paints []document.Paint) []document.Paint {
	return lo.Filter(paints, func(p document.Paint, _ int) bool { return p.IsVisible() })
}

// backgroundPaints are the visible paints CSS can draw as background
// layers. Image fills are exported separately.
func backgroundPaints(paints []document.Paint) []document.Paint {
	return lo.Filter(visiblePaints(paints), func(p document.Paint, _ int) bool {
		return p.Type != document.PaintImage
	})
}

// TopPaint returns the top-most visible paint. Paint lists are bottom to top.
func TopPaint(paints []document.Paint) (document.Paint, bool) {
	for i := len(paints) - 1; i >= 0; i-- {
		if paints[i].IsVisible() {
			return paints[i], true
		}
	}
	return document.Paint{}, false
}

// ColorFromPaints returns a single colour for the top-most visible paint. A
// gradient contributes its first stop, an image nothing.
func ColorFromPaints(paints []document.Paint) string {
	p, ok := TopPaint(paints)
	if !ok {
		return ""
	}
	switch {
	case p.Type == document.PaintSolid:
		return Color(p.Color, p.OpacityOr(1))
	case p.IsGradient() && len(p.GradientStops) > 0:
		stop := p.GradientStops[0]
		return Color(stop.Color, stop.Color.A*p.OpacityOr(1))
	}
	return ""
}

// TopGradient renders the top-most visible gradient paint, or "".
func TopGradient(paints []document.Paint) string {
	for i := len(paints) - 1; i >= 0; i-- {
		if p := paints[i]; p.IsVisible() && p.IsGradient() {
			return Gradient(p)
		}
	}
	return ""
}

// Gradient renders a gradient paint as a CSS image value, or "" for other
// paint types and gradients without enough handles.
func Gradient(p document.Paint) string {
	switch p.Type {
	case document.PaintGradientLinear:
		return linearGradient(p)
	case document.PaintGradientRadial:
		return radialGradient(p)
	case document.PaintGradientAngular:
		return angularGradient(p)
	case document.PaintGradientDiamond:
		return diamondGradient(p)
	}
	return ""
}

func stopColor(p document.Paint, s document.ColorStop) string {
	return Color(s.Color, s.Color.A*p.OpacityOr(1))
}

func stopList(p document.Paint, position func(float64) string) string {
	parts := lo.Map(p.GradientStops, func(s document.ColorStop, _ int) string {
		return stopColor(p, s) + " " + position(s.Position)
	})
	return strings.Join(parts, ", ")
}

func percent0(v float64) string {
	return toFixed(v*100, 0) + "%"
}

// normalizeDegrees maps an angle into [0, 360).
func normalizeDegrees(deg float64) float64 {
	return math.Mod(math.Mod(deg, 360)+360, 360)
}

func linearGradient(p document.Paint) string {
	if len(p.GradientHandlePositions) < 2 {
		return ""
	}
	start, end := p.GradientHandlePositions[0], p.GradientHandlePositions[1]
	angle := normalizeDegrees(math.Atan2(end.Y-start.Y, end.X-start.X) * 180 / math.Pi)
	css := math.Mod(angle+90, 360)
	return fmt.Sprintf("linear-gradient(%sdeg, %s)", toFixed(css, 0), stopList(p, percent0))
}

func radialGradient(p document.Paint) string {
	if len(p.GradientHandlePositions) < 3 {
		return ""
	}
	center, h1, h2 := p.GradientHandlePositions[0], p.GradientHandlePositions[1], p.GradientHandlePositions[2]
	rx := math.Hypot(h1.X-center.X, h1.Y-center.Y) * 100
	ry := math.Hypot(h2.X-center.X, h2.Y-center.Y) * 100
	return fmt.Sprintf("radial-gradient(ellipse %s%% %s%% at %s%% %s%%, %s)",
		toFixed(rx, 2), toFixed(ry, 2), toFixed(center.X*100, 2), toFixed(center.Y*100, 2), stopList(p, percent0))
}

func angularGradient(p document.Paint) string {
	if len(p.GradientHandlePositions) < 3 {
		return ""
	}
	center, dir := p.GradientHandlePositions[0], p.GradientHandlePositions[2]
	angle := normalizeDegrees(math.Atan2(dir.Y-center.Y, dir.X-center.X) * 180 / math.Pi)
	stops := stopList(p, func(pos float64) string {
		return toFixed(pos*360, 0) + "deg"
	})
	return fmt.Sprintf("conic-gradient(from %sdeg at %s%% %s%%, %s)",
		toFixed(angle, 0), toFixed(center.X*100, 2), toFixed(center.Y*100, 2), stops)
}

// diamondGradient approximates a diamond with four linear gradients, one
// per quadrant, each fading out from the centre.
func diamondGradient(p document.Paint) string {
	stops := stopList(p, func(pos float64) string {
		return toFixed(pos*50, 0) + "%"
	})
	corners := []string{"bottom right", "bottom left", "top left", "top right"}
	layers := lo.Map(corners, func(corner string, _ int) string {
		return fmt.Sprintf("linear-gradient(to %s, %s) %s / 50%% 50%% no-repeat", corner, stops, corner)
	})
	return strings.Join(layers, ", ")
}

// Background renders a fill list as a CSS background value. Layers are
// emitted top-most first. A solid colour can only be the bottom layer in
// CSS, so solids above it are wrapped in a flat gradient.
func Background(paints []document.Paint) string {
	visible := backgroundPaints(paints)
	if len(visible) == 0 {
		return ""
	}
	if len(visible) == 1 && visible[0].Type == document.PaintSolid {
		return Color(visible[0].Color, visible[0].OpacityOr(1))
	}

	layers := lo.Reverse(append([]document.Paint(nil), visible...))
	values := make([]string, 0, len(layers))
	for i, p := range layers {
		if p.Type == document.PaintSolid {
			c := Color(p.Color, p.OpacityOr(1))
			if i < len(layers)-1 {
				c = fmt.Sprintf("linear-gradient(0deg, %s 0%%, %s 100%%)", c, c)
			}
			values = append(values, c)
			continue
		}
		if g := Gradient(p); g != "" {
			values = append(values, g)
		}
	}
	return strings.Join(values, ", ")
}

// BackgroundBlendModes lists the per-layer blend modes, top-most first, or
// "" when every paint blends normally.
func BackgroundBlendModes(paints []document.Paint) string {
	visible := backgroundPaints(paints)
	if len(visible) == 0 || lo.EveryBy(visible, func(p document.Paint) bool { return isNormalBlend(p.BlendMode) }) {
		return ""
	}

	modes := make([]string, 0, len(visible))
	for i := len(visible) - 1; i >= 0; i-- {
		mode := BlendMode(visible[i].BlendMode)
		if mode == "" {
			mode = "normal"
		}
		modes = append(modes, mode)
	}
	return strings.Join(modes, ", ")
}

func isNormalBlend(mode string) bool {
	return mode == "" || mode == "NORMAL" || mode == "PASS_THROUGH"
}

var blendModes = map[string]string{
	"MULTIPLY":    "multiply",
	"SCREEN":      "screen",
	"OVERLAY":     "overlay",
	"DARKEN":      "darken",
	"LIGHTEN":     "lighten",
	"COLOR_DODGE": "color-dodge",
	"COLOR_BURN":  "color-burn",
	"HARD_LIGHT":  "hard-light",
	"SOFT_LIGHT":  "soft-light",
	"DIFFERENCE":  "difference",
	"EXCLUSION":   "exclusion",
	"HUE":         "hue",
	"SATURATION":  "saturation",
	"COLOR":       "color",
	"LUMINOSITY":  "luminosity",
}

// BlendMode maps a host blend mode onto its CSS keyword; normal modes and
// modes CSS lacks map to "".
func BlendMode(mode string) string {
	return blendModes[mode]
}
