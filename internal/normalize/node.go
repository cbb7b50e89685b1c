package normalize

import (
	"github.com/inamate/figconv/internal/document"
	"github.com/inamate/figconv/internal/geometry"
)

// Node is a scene node after normalization: groups are gone, geometry is
// relative to the parent, and every layout field carries a value.
type Node struct {
	ID         string            `json:"id"`
	Name       string            `json:"name"`
	UniqueName string            `json:"uniqueName"`
	Type       document.NodeType `json:"type"`

	X                  float64       `json:"x"`
	Y                  float64       `json:"y"`
	Width              float64       `json:"width"`
	Height             float64       `json:"height"`
	Rotation           float64       `json:"rotation"`
	CumulativeRotation float64       `json:"cumulativeRotation"`
	Bounds             geometry.Rect `json:"absoluteBoundingBox"`

	// Parent is a navigation link only; the parent owns its children.
	Parent   *Node   `json:"-"`
	Children []*Node `json:"children,omitempty"`

	Opacity      float64                 `json:"opacity"`
	BlendMode    string                  `json:"blendMode,omitempty"`
	Fills        []document.Paint        `json:"fills,omitempty"`
	Strokes      []document.Paint        `json:"strokes,omitempty"`
	StrokeWeight float64                 `json:"strokeWeight,omitempty"`
	StrokeAlign  string                  `json:"strokeAlign,omitempty"`
	EdgeWeights  *document.StrokeWeights `json:"individualStrokeWeights,omitempty"`
	Dashes       []float64               `json:"dashPattern,omitempty"`
	Effects      []document.Effect       `json:"effects,omitempty"`
	CornerRadius float64                 `json:"cornerRadius,omitempty"`
	CornerRadii  []float64               `json:"rectangleCornerRadii,omitempty"`
	ClipsContent bool                    `json:"clipsContent,omitempty"`

	ExportSettings []document.ExportSetting `json:"exportSettings,omitempty"`

	Layout Layout `json:"layout"`

	CanBeFlattened bool `json:"canBeFlattened"`
	IsRelative     bool `json:"isRelative"`

	// Text is set for TEXT nodes only.
	Text *Text `json:"text,omitempty"`
}

type Layout struct {
	Mode               document.LayoutMode `json:"layoutMode"`
	Wrap               string              `json:"layoutWrap,omitempty"`
	Positioning        string              `json:"layoutPositioning,omitempty"`
	Grow               float64             `json:"layoutGrow"`
	SizingHorizontal   document.Sizing     `json:"layoutSizingHorizontal"`
	SizingVertical     document.Sizing     `json:"layoutSizingVertical"`
	PrimaryAlign       string              `json:"primaryAxisAlignItems"`
	CounterAlign       string              `json:"counterAxisAlignItems"`
	ItemSpacing        float64             `json:"itemSpacing"`
	CounterAxisSpacing float64             `json:"counterAxisSpacing,omitempty"`
	ReverseZIndex      bool                `json:"itemReverseZIndex,omitempty"`
	Padding            Padding             `json:"padding"`
	MinWidth           *float64            `json:"minWidth,omitempty"`
	MaxWidth           *float64            `json:"maxWidth,omitempty"`
	MinHeight          *float64            `json:"minHeight,omitempty"`
	MaxHeight          *float64            `json:"maxHeight,omitempty"`
}

type Padding struct {
	Left   float64 `json:"left"`
	Right  float64 `json:"right"`
	Top    float64 `json:"top"`
	Bottom float64 `json:"bottom"`
}

// IsAbsolute reports whether the node opts out of its parent's auto layout.
func (l Layout) IsAbsolute() bool { return l.Positioning == "ABSOLUTE" }

type Text struct {
	Characters      string    `json:"characters"`
	Segments        []Segment `json:"segments"`
	AlignHorizontal string    `json:"textAlignHorizontal,omitempty"`
	AlignVertical   string    `json:"textAlignVertical,omitempty"`
	AutoResize      string    `json:"textAutoResize"`
	LeadingTrim     string    `json:"leadingTrim,omitempty"`
}

// Segment is a styled text run with an id stable within one conversion.
type Segment struct {
	document.TextSegment
	UniqueID string `json:"uniqueId"`
}

// Kind groups node types by how renderers treat them.
type Kind int

const (
	KindUnsupported Kind = iota
	KindShape            // RECTANGLE, ELLIPSE
	KindFrame            // FRAME, COMPONENT, INSTANCE, COMPONENT_SET
	KindSection
	KindText
	KindLine
	KindVector
)

func (n *Node) Kind() Kind {
	switch n.Type {
	case document.NodeTypeRectangle, document.NodeTypeEllipse:
		return KindShape
	case document.NodeTypeFrame, document.NodeTypeComponent, document.NodeTypeInstance, document.NodeTypeComponentSet:
		return KindFrame
	case document.NodeTypeSection:
		return KindSection
	case document.NodeTypeText:
		return KindText
	case document.NodeTypeLine:
		return KindLine
	case document.NodeTypeVector:
		return KindVector
	}
	return KindUnsupported
}

// Walk visits n and its descendants depth-first, parents before children.
// Returning false from fn skips the node's subtree.
func (n *Node) Walk(fn func(*Node) bool) {
	if !fn(n) {
		return
	}
	for _, c := range n.Children {
		c.Walk(fn)
	}
}

// HasImageFill reports whether any visible fill is an image.
func (n *Node) HasImageFill() bool {
	for _, f := range n.Fills {
		if f.Type == document.PaintImage && f.IsVisible() {
			return true
		}
	}
	return false
}
