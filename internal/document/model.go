package document

// Document is a host scene export: the node tree plus whatever the host has
// already exported for individual nodes (SVG markup, PNG bytes).
type Document struct {
	Name      string           `json:"name,omitempty"`
	Root      *RawNode         `json:"document"`
	Selection []string         `json:"selection,omitempty"`
	Assets    map[string]Asset `json:"assets,omitempty"`
}

// Asset holds pre-exported renditions of a single node, keyed by node id in
// Document.Assets.
type Asset struct {
	SVG            string            `json:"svg,omitempty"`
	PNG            string            `json:"png,omitempty"` // base64, no data: prefix
	ColorVariables map[string]string `json:"colorVariables,omitempty"`
}

type NodeType string

const (
	NodeTypeDocument         NodeType = "DOCUMENT"
	NodeTypeCanvas           NodeType = "CANVAS"
	NodeTypeFrame            NodeType = "FRAME"
	NodeTypeGroup            NodeType = "GROUP"
	NodeTypeSection          NodeType = "SECTION"
	NodeTypeComponent        NodeType = "COMPONENT"
	NodeTypeComponentSet     NodeType = "COMPONENT_SET"
	NodeTypeInstance         NodeType = "INSTANCE"
	NodeTypeText             NodeType = "TEXT"
	NodeTypeRectangle        NodeType = "RECTANGLE"
	NodeTypeEllipse          NodeType = "ELLIPSE"
	NodeTypeLine             NodeType = "LINE"
	NodeTypeVector           NodeType = "VECTOR"
	NodeTypeStar             NodeType = "STAR"
	NodeTypePolygon          NodeType = "POLYGON"
	NodeTypeBooleanOperation NodeType = "BOOLEAN_OPERATION"
	NodeTypeSlice            NodeType = "SLICE"
	NodeTypeConnector        NodeType = "CONNECTOR"
	NodeTypeSticky           NodeType = "STICKY"
	NodeTypeShapeWithText    NodeType = "SHAPE_WITH_TEXT"
	NodeTypeCodeBlock        NodeType = "CODE_BLOCK"
	NodeTypeWidget           NodeType = "WIDGET"
)

type LayoutMode string

const (
	LayoutNone       LayoutMode = "NONE"
	LayoutHorizontal LayoutMode = "HORIZONTAL"
	LayoutVertical   LayoutMode = "VERTICAL"
)

type Sizing string

const (
	SizingFixed Sizing = "FIXED"
	SizingHug   Sizing = "HUG"
	SizingFill  Sizing = "FILL"
)

type PaintType string

const (
	PaintSolid           PaintType = "SOLID"
	PaintGradientLinear  PaintType = "GRADIENT_LINEAR"
	PaintGradientRadial  PaintType = "GRADIENT_RADIAL"
	PaintGradientAngular PaintType = "GRADIENT_ANGULAR"
	PaintGradientDiamond PaintType = "GRADIENT_DIAMOND"
	PaintImage           PaintType = "IMAGE"
)

type EffectType string

const (
	EffectDropShadow     EffectType = "DROP_SHADOW"
	EffectInnerShadow    EffectType = "INNER_SHADOW"
	EffectLayerBlur      EffectType = "LAYER_BLUR"
	EffectBackgroundBlur EffectType = "BACKGROUND_BLUR"
)

type Color struct {
	R float64 `json:"r"`
	G float64 `json:"g"`
	B float64 `json:"b"`
	A float64 `json:"a"`
}

type Vector struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Box is an axis-aligned rectangle in absolute canvas coordinates.
type Box struct {
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

type ColorStop struct {
	Color             Color   `json:"color"`
	Position          float64 `json:"position"`
	VariableColorName string  `json:"variableColorName,omitempty"`
}

type Paint struct {
	Type                    PaintType   `json:"type"`
	Visible                 *bool       `json:"visible,omitempty"`
	Opacity                 *float64    `json:"opacity,omitempty"`
	Color                   Color       `json:"color"`
	BlendMode               string      `json:"blendMode,omitempty"`
	GradientHandlePositions []Vector    `json:"gradientHandlePositions,omitempty"`
	GradientStops           []ColorStop `json:"gradientStops,omitempty"`
	ImageRef                string      `json:"imageRef,omitempty"`
	ScaleMode               string      `json:"scaleMode,omitempty"`
	VariableColorName       string      `json:"variableColorName,omitempty"`
}

// IsVisible reports whether the paint is drawn; an absent flag means visible.
func (p Paint) IsVisible() bool { return p.Visible == nil || *p.Visible }

// OpacityOr returns the paint opacity, or def when the host omitted it.
func (p Paint) OpacityOr(def float64) float64 {
	if p.Opacity == nil {
		return def
	}
	return *p.Opacity
}

// IsGradient reports whether the paint is one of the four gradient kinds.
func (p Paint) IsGradient() bool {
	switch p.Type {
	case PaintGradientLinear, PaintGradientRadial, PaintGradientAngular, PaintGradientDiamond:
		return true
	}
	return false
}

type Effect struct {
	Type      EffectType `json:"type"`
	Visible   *bool      `json:"visible,omitempty"`
	Radius    float64    `json:"radius"`
	Color     Color      `json:"color"`
	Offset    Vector     `json:"offset"`
	Spread    float64    `json:"spread,omitempty"`
	BlendMode string     `json:"blendMode,omitempty"`
}

func (e Effect) IsVisible() bool { return e.Visible == nil || *e.Visible }

type StrokeWeights struct {
	Top    float64 `json:"top"`
	Right  float64 `json:"right"`
	Bottom float64 `json:"bottom"`
	Left   float64 `json:"left"`
}

type ExportConstraint struct {
	Type  string  `json:"type"`
	Value float64 `json:"value"`
}

type ExportSetting struct {
	Format     string           `json:"format"`
	Suffix     string           `json:"suffix,omitempty"`
	Constraint ExportConstraint `json:"constraint"`
}

// TypeStyle is the node-level text style of the REST export.
type TypeStyle struct {
	FontFamily                string         `json:"fontFamily"`
	FontPostScriptName        string         `json:"fontPostScriptName,omitempty"`
	FontStyle                 string         `json:"fontStyle,omitempty"`
	FontWeight                float64        `json:"fontWeight"`
	FontSize                  float64        `json:"fontSize"`
	Italic                    bool           `json:"italic,omitempty"`
	TextAlignHorizontal       string         `json:"textAlignHorizontal,omitempty"`
	TextAlignVertical         string         `json:"textAlignVertical,omitempty"`
	TextAutoResize            string         `json:"textAutoResize,omitempty"`
	TextCase                  string         `json:"textCase,omitempty"`
	TextDecoration            string         `json:"textDecoration,omitempty"`
	LetterSpacing             float64        `json:"letterSpacing"`
	LineHeightPx              float64        `json:"lineHeightPx,omitempty"`
	LineHeightPercentFontSize float64        `json:"lineHeightPercentFontSize,omitempty"`
	LineHeightUnit            string         `json:"lineHeightUnit,omitempty"`
	LeadingTrim               string         `json:"leadingTrim,omitempty"`
	OpentypeFlags             map[string]int `json:"opentypeFlags,omitempty"`
}

type FontName struct {
	Family string `json:"family"`
	Style  string `json:"style"`
}

// Measure is a value in one of the host's unit systems (AUTO, PIXELS, PERCENT).
type Measure struct {
	Unit  string  `json:"unit"`
	Value float64 `json:"value,omitempty"`
}

// TextSegment is a run of characters sharing one style.
type TextSegment struct {
	Characters       string          `json:"characters"`
	Start            int             `json:"start"`
	End              int             `json:"end"`
	FontName         FontName        `json:"fontName"`
	FontSize         float64         `json:"fontSize"`
	FontWeight       float64         `json:"fontWeight"`
	Fills            []Paint         `json:"fills,omitempty"`
	TextDecoration   string          `json:"textDecoration,omitempty"`
	TextCase         string          `json:"textCase,omitempty"`
	LineHeight       Measure         `json:"lineHeight"`
	LetterSpacing    Measure         `json:"letterSpacing"`
	OpenTypeFeatures map[string]bool `json:"openTypeFeatures,omitempty"`
	Hyperlink        string          `json:"hyperlink,omitempty"`
}

// RawNode is one node of the host scene graph, in the host's REST export
// shape. It is read-only input: the normalizer never writes to it.
type RawNode struct {
	ID       string     `json:"id"`
	Name     string     `json:"name"`
	Type     NodeType   `json:"type"`
	Visible  *bool      `json:"visible,omitempty"`
	Children []*RawNode `json:"children,omitempty"`

	AbsoluteBoundingBox *Box    `json:"absoluteBoundingBox,omitempty"`
	Rotation            float64 `json:"rotation,omitempty"` // radians

	Opacity   *float64 `json:"opacity,omitempty"`
	BlendMode string   `json:"blendMode,omitempty"`

	Fills                   []Paint        `json:"fills,omitempty"`
	Strokes                 []Paint        `json:"strokes,omitempty"`
	StrokeWeight            float64        `json:"strokeWeight,omitempty"`
	StrokeAlign             string         `json:"strokeAlign,omitempty"`
	IndividualStrokeWeights *StrokeWeights `json:"individualStrokeWeights,omitempty"`
	StrokeDashes            []float64      `json:"strokeDashes,omitempty"`
	DashPattern             []float64      `json:"dashPattern,omitempty"`
	Effects                 []Effect       `json:"effects,omitempty"`

	CornerRadius         float64   `json:"cornerRadius,omitempty"`
	RectangleCornerRadii []float64 `json:"rectangleCornerRadii,omitempty"`
	ClipsContent         bool      `json:"clipsContent,omitempty"`

	LayoutMode             LayoutMode `json:"layoutMode,omitempty"`
	LayoutWrap             string     `json:"layoutWrap,omitempty"`
	LayoutPositioning      string     `json:"layoutPositioning,omitempty"`
	LayoutGrow             float64    `json:"layoutGrow,omitempty"`
	LayoutSizingHorizontal Sizing     `json:"layoutSizingHorizontal,omitempty"`
	LayoutSizingVertical   Sizing     `json:"layoutSizingVertical,omitempty"`
	PrimaryAxisAlignItems  string     `json:"primaryAxisAlignItems,omitempty"`
	CounterAxisAlignItems  string     `json:"counterAxisAlignItems,omitempty"`
	ItemSpacing            float64    `json:"itemSpacing,omitempty"`
	CounterAxisSpacing     float64    `json:"counterAxisSpacing,omitempty"`
	ItemReverseZIndex      bool       `json:"itemReverseZIndex,omitempty"`
	PaddingLeft            *float64   `json:"paddingLeft,omitempty"`
	PaddingRight           *float64   `json:"paddingRight,omitempty"`
	PaddingTop             *float64   `json:"paddingTop,omitempty"`
	PaddingBottom          *float64   `json:"paddingBottom,omitempty"`
	MinWidth               *float64   `json:"minWidth,omitempty"`
	MaxWidth               *float64   `json:"maxWidth,omitempty"`
	MinHeight              *float64   `json:"minHeight,omitempty"`
	MaxHeight              *float64   `json:"maxHeight,omitempty"`

	ExportSettings []ExportSetting `json:"exportSettings,omitempty"`

	Characters         string        `json:"characters,omitempty"`
	Style              *TypeStyle    `json:"style,omitempty"`
	StyledTextSegments []TextSegment `json:"styledTextSegments,omitempty"`
}

// IsVisible reports whether the node is drawn; an absent flag means visible.
func (n *RawNode) IsVisible() bool { return n.Visible == nil || *n.Visible }

// Dashes returns the stroke dash pattern under either of its field names.
func (n *RawNode) Dashes() []float64 {
	if len(n.DashPattern) > 0 {
		return n.DashPattern
	}
	return n.StrokeDashes
}

// VisibleChildren returns the children that are not explicitly hidden.
func (n *RawNode) VisibleChildren() []*RawNode {
	out := make([]*RawNode, 0, len(n.Children))
	for _, c := range n.Children {
		if c != nil && c.IsVisible() {
			out = append(out, c)
		}
	}
	return out
}
