package style

import (
	"fmt"
	"strings"

	"github.com/samber/lo"

	"github.com/inamate/figconv/internal/document"
	"github.com/inamate/figconv/internal/normalize"
)

// Fills emits the node's fill: a text colour for text, otherwise background
// layers plus their blend modes.
func Fills(n *normalize.Node) List {
	var l List
	if n.Kind() == normalize.KindText {
		l.Add("color", ColorFromPaints(n.Fills))
		return l
	}
	return BackgroundFills(n.Fills)
}

// BackgroundFills emits a background for any paint list.
func BackgroundFills(paints []document.Paint) List {
	var l List
	if bg := Background(paints); bg != "" {
		l.Add("background", bg)
		l.Add("background-blend-mode", BackgroundBlendModes(paints))
	}
	return l
}

func firstEffect(effects []document.Effect, types ...document.EffectType) (document.Effect, bool) {
	return lo.Find(effects, func(e document.Effect) bool {
		return e.IsVisible() && lo.Contains(types, e.Type)
	})
}

// Shadow renders the first visible shadow-like effect as a box-shadow
// value. Only that one effect is honoured.
func Shadow(n *normalize.Node) string {
	e, ok := firstEffect(n.Effects, document.EffectDropShadow, document.EffectInnerShadow, document.EffectLayerBlur)
	if !ok {
		return ""
	}

	if e.Type == document.EffectLayerBlur {
		return fmt.Sprintf("%spx %spx %spx", raw(e.Radius), raw(e.Radius), raw(e.Radius))
	}

	var spread, inset string
	if e.Spread != 0 {
		spread = raw(e.Spread) + "px "
	}
	if e.Type == document.EffectInnerShadow {
		inset = " inset"
	}
	return fmt.Sprintf("%spx %spx %spx %s%s%s",
		raw(e.Offset.X), raw(e.Offset.Y), raw(e.Radius), spread, Color(e.Color, e.Color.A), inset)
}

// Blur maps layer and background blur onto filter and backdrop-filter.
func Blur(n *normalize.Node) List {
	var l List
	if e, ok := firstEffect(n.Effects, document.EffectLayerBlur); ok {
		l.Add("filter", "blur("+Px(e.Radius/2)+")")
	}
	if e, ok := firstEffect(n.Effects, document.EffectBackgroundBlur); ok {
		l.Add("backdrop-filter", "blur("+Px(e.Radius/2)+")")
	}
	return l
}

// Radius emits corner rounding, and overflow clipping for containers that
// clip their children.
func Radius(n *normalize.Node) List {
	var l List
	if len(n.Children) > 0 && n.ClipsContent {
		l.Add("overflow", "hidden")
	}
	if n.Type == document.NodeTypeEllipse {
		l.AddPx("border-radius", 9999)
		return l
	}

	radii := n.CornerRadii
	if len(radii) == 4 && !(radii[0] == radii[1] && radii[1] == radii[2] && radii[2] == radii[3]) {
		corners := []string{
			"border-top-left-radius",
			"border-top-right-radius",
			"border-bottom-right-radius",
			"border-bottom-left-radius",
		}
		for i, property := range corners {
			if radii[i] > 0 {
				l.AddPx(property, radii[i])
			}
		}
		return l
	}

	all := n.CornerRadius
	if len(radii) == 4 {
		all = radii[0]
	}
	l.AddPxNonZero("border-radius", all)
	return l
}

// strokeWidths is either one uniform weight or four edge weights.
type strokeWidths struct {
	uniform                  bool
	all                      float64
	top, right, bottom, left float64
}

func strokeWidthsOf(n *normalize.Node) (strokeWidths, bool) {
	if len(n.Strokes) == 0 {
		return strokeWidths{}, false
	}
	if e := n.EdgeWeights; e != nil {
		if e.Top == e.Bottom && e.Bottom == e.Left && e.Left == e.Right {
			return strokeWidths{uniform: true, all: e.Top}, true
		}
		return strokeWidths{top: e.Top, right: e.Right, bottom: e.Bottom, left: e.Left}, true
	}
	if n.StrokeWeight != 0 {
		return strokeWidths{uniform: true, all: n.StrokeWeight}, true
	}
	return strokeWidths{}, false
}

// Border emits corner radius followed by the stroke. Uniform strokes on
// frames, or strokes not aligned inside, become an outline so they do not
// change the box size; per-edge strokes always become borders.
func Border(n *normalize.Node) List {
	l := Radius(n)

	widths, ok := strokeWidthsOf(n)
	if !ok {
		return l
	}
	color := ColorFromPaints(n.Strokes)
	if color == "" {
		return l
	}

	lineStyle := "solid"
	if len(n.Dashes) > 0 {
		lineStyle = "dotted"
	}
	value := func(w float64) string {
		return strings.Join([]string{Px(w), color, lineStyle}, " ")
	}

	if !widths.uniform {
		edges := []struct {
			property string
			width    float64
		}{
			{"border-left", widths.left},
			{"border-top", widths.top},
			{"border-right", widths.right},
			{"border-bottom", widths.bottom},
		}
		for _, e := range edges {
			if e.width != 0 {
				l.Add(e.property, value(e.width))
			}
		}
		return l
	}

	if widths.all == 0 {
		return l
	}
	align := n.StrokeAlign
	if align == "" {
		align = "INSIDE"
	}

	switch {
	case align == "CENTER" || align == "OUTSIDE" || isOutlinedFrame(n.Type):
		l.Add("outline", value(widths.all))
		switch align {
		case "CENTER":
			l.Add("outline-offset", Px(-widths.all/2))
		case "INSIDE":
			l.Add("outline-offset", Px(-widths.all))
		}
	default:
		l.Add("border", value(widths.all))
	}
	return l
}

func isOutlinedFrame(t document.NodeType) bool {
	switch t {
	case document.NodeTypeFrame, document.NodeTypeInstance, document.NodeTypeComponent:
		return true
	}
	return false
}
