// Package asset rasterizes the CSS values and vector exports that the page
// model cannot carry as text: linear gradients and flattened SVG icons.
package asset

import (
	"errors"
	"fmt"
	"image"
	"image/color"
	"math"
	"regexp"
	"strconv"
	"strings"

	"github.com/srwiley/oksvg"
	"github.com/srwiley/rasterx"
)

// Default raster size for gradient images.
const (
	DefaultGradientWidth  = 400
	DefaultGradientHeight = 200
)

var ErrInvalidGradient = errors.New("invalid gradient")

var (
	partRe      = regexp.MustCompile(`(?:[^,(]|\([^)]*\))+`)
	directionRe = regexp.MustCompile(`(?i)^(to\b.+|-?\d+(?:\.\d+)?deg)$`)
	colorRe     = regexp.MustCompile(`(rgb(a)?\([^)]*\)|#[0-9a-fA-F]{3,6}|\b[a-zA-Z]+\b)`)
	percentRe   = regexp.MustCompile(`\d+(?:\.\d+)?%`)
)

// Stop is one colour stop. Position is a fraction in [0, 1]; nil means the
// source gave none.
type Stop struct {
	Color    string
	Position *float64
}

// LinearGradient is a parsed linear-gradient() value. An empty Direction
// means "to bottom".
type LinearGradient struct {
	Direction string
	Stops     []Stop
}

// ParseLinearGradient reads the first linear-gradient() in value. Other
// layers of a multi-layer background are ignored.
func ParseLinearGradient(value string) (*LinearGradient, error) {
	body, ok := functionBody(value, "linear-gradient")
	if !ok {
		return nil, fmt.Errorf("%w: no linear-gradient in %q", ErrInvalidGradient, value)
	}

	parts := partRe.FindAllString(body, -1)
	for i := range parts {
		parts[i] = strings.TrimSpace(parts[i])
	}

	g := &LinearGradient{}
	if len(parts) > 0 && directionRe.MatchString(parts[0]) {
		g.Direction = strings.ToLower(parts[0])
		parts = parts[1:]
	}

	for _, part := range parts {
		c := colorRe.FindString(part)
		if c == "" {
			return nil, fmt.Errorf("%w: stop %q has no colour", ErrInvalidGradient, part)
		}
		stop := Stop{Color: c}
		if pct := percentRe.FindString(part); pct != "" {
			v, err := strconv.ParseFloat(strings.TrimSuffix(pct, "%"), 64)
			if err == nil {
				v /= 100
				stop.Position = &v
			}
		}
		g.Stops = append(g.Stops, stop)
	}
	if len(g.Stops) == 0 {
		return nil, fmt.Errorf("%w: no colour stops", ErrInvalidGradient)
	}
	return g, nil
}

// functionBody returns the argument text of the first call to name in s,
// matching nested parentheses.
func functionBody(s, name string) (string, bool) {
	lower := strings.ToLower(s)
	i := strings.Index(lower, name)
	if i < 0 {
		return "", false
	}
	rest := strings.TrimLeft(s[i+len(name):], " \t\n")
	if !strings.HasPrefix(rest, "(") {
		return "", false
	}
	depth := 0
	for j, r := range rest {
		switch r {
		case '(':
			depth++
		case ')':
			depth--
			if depth == 0 {
				return rest[1:j], true
			}
		}
	}
	return "", false
}

// Endpoints returns the start and end of the gradient line for a w×h box.
// Named corner directions run corner to corner. Angles follow CSS: 0deg
// points up and angles grow clockwise; the line is long enough for the
// perpendiculars through its ends to touch the far corners.
func (g *LinearGradient) Endpoints(w, h float64) (x0, y0, x1, y1 float64) {
	switch dir := strings.Join(strings.Fields(g.Direction), " "); dir {
	case "to right":
		return 0, 0, w, 0
	case "to left":
		return w, 0, 0, 0
	case "", "to bottom":
		return 0, 0, 0, h
	case "to top":
		return 0, h, 0, 0
	case "to top right", "to right top":
		return 0, h, w, 0
	case "to top left", "to left top":
		return w, h, 0, 0
	case "to bottom right", "to right bottom":
		return 0, 0, w, h
	case "to bottom left", "to left bottom":
		return w, 0, 0, h
	default:
		deg, err := strconv.ParseFloat(strings.TrimSuffix(dir, "deg"), 64)
		if err != nil {
			return 0, 0, 0, h
		}
		rad := deg * math.Pi / 180
		dx, dy := math.Sin(rad), -math.Cos(rad)
		half := (math.Abs(w*dx) + math.Abs(h*dy)) / 2
		cx, cy := w/2, h/2
		return cx - dx*half, cy - dy*half, cx + dx*half, cy + dy*half
	}
}

// positions returns the stop offsets. When any stop lacks a position, the
// missing ones are spread evenly by index.
func (g *LinearGradient) positions() []float64 {
	out := make([]float64, len(g.Stops))
	n := len(g.Stops)
	for i, s := range g.Stops {
		switch {
		case s.Position != nil:
			out[i] = *s.Position
		case n > 1:
			out[i] = float64(i) / float64(n-1)
		}
	}
	return out
}

// Render paints the gradient over a width×height image.
func (g *LinearGradient) Render(width, height int) (*image.RGBA, error) {
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("%w: size %dx%d", ErrInvalidGradient, width, height)
	}

	stops := make([]rasterx.GradStop, 0, len(g.Stops))
	for i, pos := range g.positions() {
		c, alpha, err := ParseColor(g.Stops[i].Color)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidGradient, err)
		}
		stops = append(stops, rasterx.GradStop{StopColor: c, Offset: pos, Opacity: alpha})
	}

	w, h := float64(width), float64(height)
	x0, y0, x1, y1 := g.Endpoints(w, h)
	grad := &rasterx.Gradient{
		Points: [5]float64{x0, y0, x1, y1, 0},
		Stops:  stops,
		Bounds: struct{ X, Y, W, H float64 }{X: 0, Y: 0, W: w, H: h},
		Matrix: rasterx.Identity,
		Units:  rasterx.UserSpaceOnUse,
	}

	img := image.NewRGBA(image.Rect(0, 0, width, height))
	scanner := rasterx.NewScannerGV(width, height, img, img.Bounds())
	filler := rasterx.NewFiller(width, height, scanner)
	scanner.SetColor(grad.GetColorFunction(1))
	rasterx.AddRect(0, 0, w, h, 0, filler)
	filler.Draw()
	return img, nil
}

// ParseColor reads a CSS colour into an opaque colour and its alpha.
// rgb()/rgba() are read here since they may carry fractional channels;
// names and hex go through the SVG colour parser.
func ParseColor(s string) (color.NRGBA, float64, error) {
	s = strings.TrimSpace(s)
	lower := strings.ToLower(s)
	if strings.HasPrefix(lower, "rgb") {
		name := "rgb"
		if strings.HasPrefix(lower, "rgba") {
			name = "rgba"
		}
		body, ok := functionBody(lower, name)
		if !ok {
			return color.NRGBA{}, 0, fmt.Errorf("parse colour %q", s)
		}
		fields := strings.FieldsFunc(body, func(r rune) bool { return r == ',' || r == ' ' || r == '/' })
		if len(fields) != 3 && len(fields) != 4 {
			return color.NRGBA{}, 0, fmt.Errorf("parse colour %q", s)
		}
		var ch [3]uint8
		for i := 0; i < 3; i++ {
			v, err := strconv.ParseFloat(strings.TrimSuffix(fields[i], "%"), 64)
			if err != nil {
				return color.NRGBA{}, 0, fmt.Errorf("parse colour %q: %w", s, err)
			}
			if strings.HasSuffix(fields[i], "%") {
				v = v * 255 / 100
			}
			ch[i] = uint8(math.Round(math.Max(0, math.Min(255, v))))
		}
		alpha := 1.0
		if len(fields) == 4 {
			v, err := strconv.ParseFloat(strings.TrimSuffix(fields[3], "%"), 64)
			if err != nil {
				return color.NRGBA{}, 0, fmt.Errorf("parse colour %q: %w", s, err)
			}
			if strings.HasSuffix(fields[3], "%") {
				v /= 100
			}
			alpha = math.Max(0, math.Min(1, v))
		}
		return color.NRGBA{R: ch[0], G: ch[1], B: ch[2], A: 0xFF}, alpha, nil
	}

	if lower == "transparent" {
		return color.NRGBA{A: 0xFF}, 0, nil
	}
	c, err := oksvg.ParseSVGColor(s)
	if err != nil {
		return color.NRGBA{}, 0, fmt.Errorf("parse colour %q: %w", s, err)
	}
	if c == nil {
		return color.NRGBA{}, 0, fmt.Errorf("parse colour %q: no colour", s)
	}
	n := color.NRGBAModel.Convert(c).(color.NRGBA)
	alpha := float64(n.A) / 255
	n.A = 0xFF
	return n, alpha, nil
}
