package style

import (
	"fmt"
	"strings"

	"github.com/samber/lo"
	"golang.org/x/net/html"

	"github.com/inamate/figconv/internal/document"
	"github.com/inamate/figconv/internal/normalize"
)

// Run is one styled text segment ready for markup.
type Run struct {
	ID    string
	Style List
	// Text is escaped, with newlines turned into <br/>.
	Text string
	// Tag is span, or sub/sup when the run uses those OpenType features.
	Tag string
}

// Runs computes the per-segment styles of a text node.
func Runs(n *normalize.Node) []Run {
	if n.Text == nil {
		return nil
	}

	blur := layerBlurFilter(n)
	shadow := textShadow(n)

	runs := make([]Run, 0, len(n.Text.Segments))
	for _, seg := range n.Text.Segments {
		var l List
		l.Add("color", ColorFromPaints(seg.Fills))
		l.AddPxNonZero("font-size", seg.FontSize)
		l.Add("font-family", seg.FontName.Family)
		l.Add("font-style", fontStyle(seg.FontName.Style))
		if seg.FontWeight > 0 {
			l.Add("font-weight", raw(seg.FontWeight))
		}
		l.Add("text-decoration", textDecoration(seg.TextDecoration))
		l.Add("text-transform", textTransform(seg.TextCase))
		if lh := LineHeight(seg.LineHeight, seg.FontSize); lh > 0 {
			l.AddPx("line-height", lh)
		}
		if ls := LetterSpacing(seg.LetterSpacing, seg.FontSize); ls > 0 {
			l.AddPx("letter-spacing", ls)
		}
		l.Add("word-wrap", "break-word")
		l.Add("filter", blur)
		l.Add("text-shadow", shadow)

		runs = append(runs, Run{
			ID:    seg.UniqueID,
			Style: l,
			Text:  strings.ReplaceAll(html.EscapeString(seg.Characters), "\n", "<br/>"),
			Tag:   runTag(seg.OpenTypeFeatures),
		})
	}
	return runs
}

func runTag(features map[string]bool) string {
	switch {
	case features["SUBS"]:
		return "sub"
	case features["SUPS"]:
		return "sup"
	}
	return "span"
}

func fontStyle(style string) string {
	if strings.Contains(strings.ToLower(style), "italic") {
		return "italic"
	}
	return ""
}

func textDecoration(d string) string {
	switch d {
	case "STRIKETHROUGH":
		return "line-through"
	case "UNDERLINE":
		return "underline"
	}
	return ""
}

// textTransform leaves the small-caps cases alone; CSS has no transform for
// them.
func textTransform(c string) string {
	switch c {
	case "UPPER":
		return "uppercase"
	case "LOWER":
		return "lowercase"
	case "TITLE":
		return "capitalize"
	}
	return ""
}

// LineHeight resolves a line height to pixels. AUTO resolves to 0, which
// callers treat as "leave it to the browser".
func LineHeight(m document.Measure, fontSize float64) float64 {
	switch m.Unit {
	case "PIXELS":
		return m.Value
	case "PERCENT":
		return fontSize * m.Value / 100
	}
	return 0
}

func LetterSpacing(m document.Measure, fontSize float64) float64 {
	switch m.Unit {
	case "PIXELS":
		return m.Value
	case "PERCENT":
		return fontSize * m.Value / 100
	}
	return 0
}

// layerBlurFilter uses the first visible layer blur with a positive radius.
func layerBlurFilter(n *normalize.Node) string {
	e, ok := lo.Find(n.Effects, func(e document.Effect) bool {
		return e.Type == document.EffectLayerBlur && e.IsVisible() && e.Radius > 0
	})
	if !ok {
		return ""
	}
	return "blur(" + raw(e.Radius) + "px)"
}

func textShadow(n *normalize.Node) string {
	e, ok := firstEffect(n.Effects, document.EffectDropShadow)
	if !ok {
		return ""
	}
	return fmt.Sprintf("%spx %spx %spx rgba(%d, %d, %d, %s)",
		raw(jsRound(e.Offset.X)), raw(jsRound(e.Offset.Y)), raw(jsRound(e.Radius)),
		int(jsRound(e.Color.R*255)), int(jsRound(e.Color.G*255)), int(jsRound(e.Color.B*255)),
		toFixed(e.Color.A, 2))
}

// TextTrim trims the box to cap height when the node asks for it.
func TextTrim(n *normalize.Node) List {
	var l List
	if n.Text != nil && n.Text.LeadingTrim == "CAP_HEIGHT" {
		l.Add("text-box-trim", "trim-both")
		l.Add("text-box-edge", "cap alphabetic")
	}
	return l
}

// TextAlign emits horizontal alignment, and vertical alignment through a
// flex column. Left and top are the browser defaults and emit nothing.
func TextAlign(n *normalize.Node) List {
	var l List
	if n.Text == nil {
		return l
	}

	switch n.Text.AlignHorizontal {
	case "CENTER":
		l.Add("text-align", "center")
	case "RIGHT":
		l.Add("text-align", "right")
	case "JUSTIFIED":
		l.Add("text-align", "justify")
	}

	var justify string
	switch n.Text.AlignVertical {
	case "CENTER":
		justify = "center"
	case "BOTTOM":
		justify = "flex-end"
	}
	if justify != "" {
		l.Add("justify-content", justify)
		l.Add("display", "flex")
		l.Add("flex-direction", "column")
	}
	return l
}
