// Package normalize turns the host's raw scene graph into the tree the
// renderers consume: groups are inlined into their parents, geometry is
// recovered from bounding boxes, names are deduplicated and flattenable
// subtrees are marked.
package normalize

import (
	"errors"
	"fmt"
	"log/slog"
	"math"
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/samber/lo"

	"github.com/inamate/figconv/internal/document"
	"github.com/inamate/figconv/internal/geometry"
	"github.com/inamate/figconv/internal/icon"
)

var ErrNothingToRender = errors.New("root node produced no renderable output")

var segmentNameRe = regexp.MustCompile(`[^a-zA-Z0-9_-]`)

// Normalizer carries the state of one conversion. Name counters live here,
// so two conversions never share suffixes; create one per run.
type Normalizer struct {
	names    map[string]int
	classify func(icon.Candidate) bool
}

type Option func(*Normalizer)

// WithClassifier replaces the icon classifier. Passing a classifier that
// always returns false disables flattening.
func WithClassifier(fn func(icon.Candidate) bool) Option {
	return func(z *Normalizer) { z.classify = fn }
}

func New(opts ...Option) *Normalizer {
	z := &Normalizer{
		names:    make(map[string]int),
		classify: icon.IsLikelyIcon,
	}
	for _, opt := range opts {
		opt(z)
	}
	return z
}

// Normalize converts a raw root into a normalized tree. A root GROUP becomes
// a FRAME and its rotation is handed down to its children.
func (z *Normalizer) Normalize(root *document.RawNode) (*Node, error) {
	if root == nil {
		return nil, document.ErrEmptyDocument
	}

	var cumulative float64
	if root.Type == document.NodeTypeGroup {
		clone := *root
		clone.Type = document.NodeTypeFrame
		if clone.Rotation != 0 {
			cumulative = degrees(clone.Rotation)
			clone.Rotation = 0
		}
		root = &clone
	}

	nodes := z.process(root, nil, cumulative, false)
	if len(nodes) == 0 {
		return nil, fmt.Errorf("%w: %s", ErrNothingToRender, root.ID)
	}

	out := nodes[0]
	slog.Debug("normalized tree", "root", out.ID, "name", out.UniqueName, "nodes", countNodes(out))
	return out, nil
}

// degrees converts the host's counter-clockwise radians into clockwise
// degrees.
func degrees(rad float64) float64 {
	return -rad * (180 / math.Pi)
}

func (z *Normalizer) process(raw *document.RawNode, parent *Node, parentCumulative float64, ancestorFlattened bool) []*Node {
	if raw == nil || raw.ID == "" || !raw.IsVisible() {
		return nil
	}

	kind := raw.Type
	switch kind {
	case document.NodeTypeFrame, document.NodeTypeInstance, document.NodeTypeComponent, document.NodeTypeComponentSet:
		if len(raw.Children) == 0 {
			kind = document.NodeTypeRectangle
		}
	case document.NodeTypeGroup:
		return z.inlineGroup(raw, parent, parentCumulative, ancestorFlattened)
	case document.NodeTypeSlice:
		return nil
	}

	n := &Node{
		ID:             raw.ID,
		Name:           raw.Name,
		UniqueName:     z.uniqueName(raw.Name),
		Type:           kind,
		Parent:         parent,
		Opacity:        1,
		BlendMode:      raw.BlendMode,
		Fills:          raw.Fills,
		Strokes:        raw.Strokes,
		StrokeWeight:   raw.StrokeWeight,
		StrokeAlign:    raw.StrokeAlign,
		EdgeWeights:    raw.IndividualStrokeWeights,
		Dashes:         raw.Dashes(),
		Effects:        raw.Effects,
		CornerRadius:   raw.CornerRadius,
		CornerRadii:    raw.RectangleCornerRadii,
		ClipsContent:   raw.ClipsContent,
		ExportSettings: raw.ExportSettings,
		Layout:         layoutOf(raw),
	}
	if raw.Opacity != nil {
		n.Opacity = *raw.Opacity
	}
	if raw.Rotation != 0 {
		n.Rotation = degrees(raw.Rotation)
	}
	if parent != nil {
		n.CumulativeRotation = parentCumulative
	}
	if kind == document.NodeTypeText {
		n.Text = textOf(raw, n.UniqueName)
	}

	placeNode(n, raw.AbsoluteBoundingBox)

	if !ancestorFlattened {
		candidate := *raw
		candidate.Type = kind
		n.CanBeFlattened = z.classify(icon.Candidate{Node: &candidate, Width: n.Width, Height: n.Height})
	}

	if raw.Children != nil {
		childCumulative := parentCumulative
		flattened := ancestorFlattened || n.CanBeFlattened
		if flattened {
			childCumulative = 0
		}
		for _, child := range raw.VisibleChildren() {
			n.Children = append(n.Children, z.process(child, n, childCumulative, flattened)...)
		}

		n.IsRelative = n.Layout.Mode == document.LayoutNone ||
			lo.ContainsBy(n.Children, func(c *Node) bool { return c.Layout.IsAbsolute() })

		if n.Layout.ReverseZIndex && n.Layout.Mode != document.LayoutNone {
			n.Children = reorderChildren(n.Children)
		}
	}

	return []*Node{n}
}

// inlineGroup returns the group's children, re-parented to the group's
// parent, with the group's rotation added to their cumulative rotation.
func (z *Normalizer) inlineGroup(raw *document.RawNode, parent *Node, parentCumulative float64, ancestorFlattened bool) []*Node {
	cumulative := parentCumulative
	if raw.Rotation != 0 {
		cumulative += degrees(raw.Rotation)
	}

	var out []*Node
	for _, child := range raw.VisibleChildren() {
		out = append(out, z.process(child, parent, cumulative, ancestorFlattened)...)
	}
	return out
}

func (z *Normalizer) uniqueName(name string) string {
	clean := strings.TrimSpace(name)
	count := z.names[clean]
	z.names[clean] = count + 1
	if count == 0 {
		return clean
	}
	return fmt.Sprintf("%s_%02d", clean, count)
}

// placeNode fills in size and parent-relative position. The root keeps its
// bounding box size at the origin; everything else is unrotated against the
// total rotation it is drawn with.
func placeNode(n *Node, box *document.Box) {
	if box == nil {
		return
	}
	n.Bounds = geometry.Rect{X: box.X, Y: box.Y, Width: box.Width, Height: box.Height}

	if n.Parent == nil {
		n.Width, n.Height = box.Width, box.Height
		return
	}

	p := geometry.RectFromBoundingBox(geometry.Rect{
		X:      box.X - n.Parent.Bounds.X,
		Y:      box.Y - n.Parent.Bounds.Y,
		Width:  box.Width,
		Height: box.Height,
	}, -(n.Rotation + n.CumulativeRotation))

	n.Width, n.Height = p.Width, p.Height
	n.X, n.Y = p.Left, p.Top
}

func layoutOf(raw *document.RawNode) Layout {
	l := Layout{
		Mode:               raw.LayoutMode,
		Wrap:               raw.LayoutWrap,
		Positioning:        raw.LayoutPositioning,
		Grow:               raw.LayoutGrow,
		SizingHorizontal:   raw.LayoutSizingHorizontal,
		SizingVertical:     raw.LayoutSizingVertical,
		PrimaryAlign:       raw.PrimaryAxisAlignItems,
		CounterAlign:       raw.CounterAxisAlignItems,
		ItemSpacing:        raw.ItemSpacing,
		CounterAxisSpacing: raw.CounterAxisSpacing,
		ReverseZIndex:      raw.ItemReverseZIndex,
		MinWidth:           raw.MinWidth,
		MaxWidth:           raw.MaxWidth,
		MinHeight:          raw.MinHeight,
		MaxHeight:          raw.MaxHeight,
		Padding: Padding{
			Left:   lo.FromPtr(raw.PaddingLeft),
			Right:  lo.FromPtr(raw.PaddingRight),
			Top:    lo.FromPtr(raw.PaddingTop),
			Bottom: lo.FromPtr(raw.PaddingBottom),
		},
	}

	if l.Mode == "" {
		l.Mode = document.LayoutNone
	}
	if l.SizingHorizontal == "" {
		l.SizingHorizontal = document.SizingFixed
	}
	if l.SizingVertical == "" {
		l.SizingVertical = document.SizingFixed
	}
	if l.PrimaryAlign == "" {
		l.PrimaryAlign = "MIN"
	}
	if l.CounterAlign == "" {
		l.CounterAlign = "MIN"
	}

	if len(raw.Children) == 0 {
		if l.SizingHorizontal == document.SizingHug {
			l.SizingHorizontal = document.SizingFixed
		}
		if l.SizingVertical == document.SizingHug {
			l.SizingVertical = document.SizingFixed
		}
	}
	return l
}

// reorderChildren puts absolutely positioned children first, in reverse, and
// keeps the flow children in document order after them.
func reorderChildren(children []*Node) []*Node {
	absolute, flow := lo.FilterReject(children, func(c *Node, _ int) bool {
		return c.Layout.IsAbsolute()
	})
	return append(lo.Reverse(absolute), flow...)
}

func textOf(raw *document.RawNode, uniqueName string) *Text {
	t := &Text{Characters: raw.Characters, AutoResize: "NONE"}
	if s := raw.Style; s != nil {
		t.AlignHorizontal = s.TextAlignHorizontal
		t.AlignVertical = s.TextAlignVertical
		t.LeadingTrim = s.LeadingTrim
		if s.TextAutoResize != "" {
			t.AutoResize = s.TextAutoResize
		}
	}

	runs := raw.StyledTextSegments
	if len(runs) == 0 {
		runs = []document.TextSegment{segmentFromStyle(raw)}
	}

	base := strings.ToLower(segmentNameRe.ReplaceAllString(uniqueName, ""))
	t.Segments = make([]Segment, len(runs))
	for i, run := range runs {
		id := base + "_span"
		if len(runs) > 1 {
			id = fmt.Sprintf("%s_span_%02d", base, i+1)
		}
		t.Segments[i] = Segment{TextSegment: run, UniqueID: id}
	}
	return t
}

// segmentFromStyle builds the single run a REST export implies when it
// carries only a node-level style.
func segmentFromStyle(raw *document.RawNode) document.TextSegment {
	seg := document.TextSegment{
		Characters: raw.Characters,
		End:        utf8.RuneCountInString(raw.Characters),
		Fills:      raw.Fills,
		LineHeight: document.Measure{Unit: "AUTO"},
	}

	s := raw.Style
	if s == nil {
		return seg
	}

	seg.FontName = document.FontName{Family: s.FontFamily, Style: s.FontStyle}
	if seg.FontName.Style == "" {
		seg.FontName.Style = "Regular"
		if s.Italic {
			seg.FontName.Style = "Italic"
		}
	}
	seg.FontSize = s.FontSize
	seg.FontWeight = s.FontWeight
	seg.TextDecoration = s.TextDecoration
	seg.TextCase = s.TextCase
	seg.LetterSpacing = document.Measure{Unit: "PIXELS", Value: s.LetterSpacing}

	switch s.LineHeightUnit {
	case "PIXELS":
		seg.LineHeight = document.Measure{Unit: "PIXELS", Value: s.LineHeightPx}
	case "FONT_SIZE_%":
		seg.LineHeight = document.Measure{Unit: "PERCENT", Value: s.LineHeightPercentFontSize}
	}

	for _, feature := range []string{"SUBS", "SUPS"} {
		if s.OpentypeFlags[feature] > 0 {
			if seg.OpenTypeFeatures == nil {
				seg.OpenTypeFeatures = make(map[string]bool)
			}
			seg.OpenTypeFeatures[feature] = true
		}
	}
	return seg
}

func countNodes(n *Node) int {
	count := 0
	n.Walk(func(*Node) bool {
		count++
		return true
	})
	return count
}
