package style

import (
	"github.com/inamate/figconv/internal/document"
	"github.com/inamate/figconv/internal/geometry"
	"github.com/inamate/figconv/internal/normalize"
)

// IsAbsolute reports whether n is taken out of flow: it opts out of auto
// layout itself, or its parent has none.
func IsAbsolute(n *normalize.Node) bool {
	if n.Layout.IsAbsolute() {
		return true
	}
	if n.Parent == nil {
		return false
	}
	return n.Parent.Layout.Mode == document.LayoutNone
}

// Position places n inside its parent. A flattened node is placed by its
// bounding box, since its exported image covers the rotated extent.
func Position(n *normalize.Node, flattened bool) List {
	var l List
	if IsAbsolute(n) {
		x, y := n.X, n.Y
		if flattened && n.Parent != nil {
			x, y = n.Bounds.Offset(n.Parent.Bounds)
		}
		l.AddPx("left", x)
		l.AddPx("top", y)
		l.Add("position", "absolute")
	} else if n.IsRelative {
		l.Add("position", "relative")
	}
	return l
}

func parentMode(n *normalize.Node) document.LayoutMode {
	if n.Parent == nil {
		return ""
	}
	return n.Parent.Layout.Mode
}

func sizeDeclaration(n *normalize.Node, sizing document.Sizing, axis document.LayoutMode, property string, value float64, max *float64) (Declaration, bool) {
	switch sizing {
	case document.SizingHug:
		return Declaration{}, false
	case document.SizingFill:
		switch {
		case parentMode(n) == axis:
			return Declaration{"flex", "1 1 0"}, true
		case max != nil && *max != 0:
			return Declaration{property, "100%"}, true
		default:
			return Declaration{"align-self", "stretch"}, true
		}
	}
	return Declaration{property, Px(value)}, true
}

// Size emits width and height following the node's sizing modes, then any
// min/max constraints. Text boxes that grow with their content omit the
// dimensions that grow.
func Size(n *normalize.Node) List {
	var l List
	w, hasW := sizeDeclaration(n, n.Layout.SizingHorizontal, document.LayoutHorizontal, "width", n.Width, n.Layout.MaxWidth)
	h, hasH := sizeDeclaration(n, n.Layout.SizingVertical, document.LayoutVertical, "height", n.Height, n.Layout.MaxHeight)

	emitW, emitH := true, true
	if n.Text != nil {
		switch n.Text.AutoResize {
		case "WIDTH_AND_HEIGHT":
			emitW, emitH = false, false
		case "HEIGHT":
			emitH = false
		case "NONE", "TRUNCATE":
		default:
			emitW, emitH = false, false
		}
	}
	if emitW && hasW {
		l = append(l, w)
	}
	if emitH && hasH {
		l = append(l, h)
	}

	constraints := []struct {
		property string
		value    *float64
	}{
		{"max-width", n.Layout.MaxWidth},
		{"min-width", n.Layout.MinWidth},
		{"max-height", n.Layout.MaxHeight},
		{"min-height", n.Layout.MinHeight},
	}
	for _, c := range constraints {
		if c.value != nil {
			l.AddPx(c.property, *c.value)
		}
	}
	return l
}

// Padding collapses equal edges: one shorthand when all four match, paired
// horizontal/vertical declarations when opposite edges match, otherwise the
// non-zero edges one by one.
func Padding(n *normalize.Node) List {
	if n.Layout.Mode == document.LayoutNone {
		return nil
	}
	p := n.Layout.Padding
	left, right := geometry.Round2(p.Left), geometry.Round2(p.Right)
	top, bottom := geometry.Round2(p.Top), geometry.Round2(p.Bottom)

	var l List
	switch {
	case left == right && right == top && top == bottom:
		l.AddPxNonZero("padding", left)
	case left == right && top == bottom:
		if left != 0 {
			l.AddPx("padding-left", left)
			l.AddPx("padding-right", right)
		}
		if top != 0 {
			l.AddPx("padding-top", top)
			l.AddPx("padding-bottom", bottom)
		}
	default:
		l.AddPxNonZero("padding-top", top)
		l.AddPxNonZero("padding-bottom", bottom)
		l.AddPxNonZero("padding-left", left)
		l.AddPxNonZero("padding-right", right)
	}
	return l
}

var (
	justifyContent = map[string]string{
		"MIN":           "flex-start",
		"CENTER":        "center",
		"MAX":           "flex-end",
		"SPACE_BETWEEN": "space-between",
	}
	alignItems = map[string]string{
		"MIN":      "flex-start",
		"CENTER":   "center",
		"MAX":      "flex-end",
		"BASELINE": "baseline",
	}
)

// AutoLayout emits the flex container declarations for an auto-layout
// node. Row is the CSS default, so a horizontal layout emits no direction.
func AutoLayout(n *normalize.Node) List {
	layout := n.Layout
	if layout.Mode == document.LayoutNone {
		return nil
	}

	var l List
	if layout.Mode != document.LayoutHorizontal {
		l.Add("flex-direction", "column")
	}
	l.Add("justify-content", justifyContent[layout.PrimaryAlign])
	l.Add("align-items", alignItems[layout.CounterAlign])
	if layout.ItemSpacing > 0 && layout.PrimaryAlign != "SPACE_BETWEEN" {
		l.AddPx("gap", layout.ItemSpacing)
	}

	if parentMode(n) == layout.Mode {
		l.Add("display", "flex")
	} else {
		l.Add("display", "inline-flex")
	}

	if layout.Wrap == "WRAP" {
		l.Add("flex-wrap", "wrap")
		content, ok := alignItems[layout.CounterAlign]
		if !ok {
			content = "normal"
		}
		l.Add("align-content", content)
	}
	return l
}

// Rotation is the total clockwise rotation the node is drawn with, rounded
// to whole degrees.
func Rotation(n *normalize.Node) float64 {
	r := -jsRound(n.Rotation + n.CumulativeRotation)
	if r == 0 {
		return 0
	}
	return r
}

// Blend covers rotation, opacity and the node's own blend mode.
func Blend(n *normalize.Node) List {
	var l List
	if r := Rotation(n); r != 0 {
		l.Add("transform", "rotate("+Fixed(r)+"deg)")
		l.Add("transform-origin", "top left")
	}
	if n.Opacity != 1 {
		l.Add("opacity", Fixed(n.Opacity))
	}
	l.Add("mix-blend-mode", BlendMode(n.BlendMode))
	return l
}
