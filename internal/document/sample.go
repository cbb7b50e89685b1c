package document

const sampleIconSVG = `<svg width="24" height="24" viewBox="0 0 24 24" fill="none" xmlns="http://www.w3.org/2000/svg">
<path d="M12 2L15 9H22L16.5 13.5L18.5 21L12 16.5L5.5 21L7.5 13.5L2 9H9L12 2Z" fill="#F5A623"/>
</svg>
`

func ptr[T any](v T) *T { return &v }

// NewSampleDocument returns a small card layout exercising auto layout,
// text, a gradient fill, a stroke and a flattenable icon.
func NewSampleDocument() *Document {
	white := Color{R: 1, G: 1, B: 1, A: 1}
	ink := Color{R: 0.1, G: 0.1, B: 0.18, A: 1}

	title := &RawNode{
		ID:                  "1:3",
		Name:                "Title",
		Type:                NodeTypeText,
		AbsoluteBoundingBox: &Box{X: 124, Y: 124, Width: 272, Height: 29},
		Fills:               []Paint{{Type: PaintSolid, Color: ink}},
		Characters:          "Design to markup",
		Style: &TypeStyle{
			FontFamily:     "Inter",
			FontStyle:      "Bold",
			FontWeight:     700,
			FontSize:       24,
			TextAutoResize: "HEIGHT",
			LineHeightUnit: "INTRINSIC_%",
		},
		LayoutSizingHorizontal: SizingFill,
	}

	icon := &RawNode{
		ID:                  "1:5",
		Name:                "Star",
		Type:                NodeTypeVector,
		AbsoluteBoundingBox: &Box{X: 124, Y: 169, Width: 24, Height: 24},
		Fills:               []Paint{{Type: PaintSolid, Color: Color{R: 0.96, G: 0.65, B: 0.14, A: 1}}},
	}

	caption := &RawNode{
		ID:                  "1:6",
		Name:                "Caption",
		Type:                NodeTypeText,
		AbsoluteBoundingBox: &Box{X: 156, Y: 172, Width: 120, Height: 17},
		Fills:               []Paint{{Type: PaintSolid, Color: ink, Opacity: ptr(0.7)}},
		Characters:          "Featured",
		Style: &TypeStyle{
			FontFamily:     "Inter",
			FontStyle:      "Italic",
			FontWeight:     400,
			FontSize:       14,
			TextAutoResize: "WIDTH_AND_HEIGHT",
			LineHeightUnit: "PIXELS",
			LineHeightPx:   17,
		},
	}

	row := &RawNode{
		ID:                    "1:4",
		Name:                  "Meta",
		Type:                  NodeTypeFrame,
		AbsoluteBoundingBox:   &Box{X: 124, Y: 169, Width: 272, Height: 24},
		LayoutMode:            LayoutHorizontal,
		ItemSpacing:           8,
		CounterAxisAlignItems: "CENTER",
		Children:              []*RawNode{icon, caption},
	}

	banner := &RawNode{
		ID:                  "1:7",
		Name:                "Banner",
		Type:                NodeTypeRectangle,
		AbsoluteBoundingBox: &Box{X: 124, Y: 209, Width: 272, Height: 120},
		CornerRadius:        8,
		Fills: []Paint{{
			Type:                    PaintGradientLinear,
			GradientHandlePositions: []Vector{{X: 0, Y: 0.5}, {X: 1, Y: 0.5}, {X: 0, Y: 1}},
			GradientStops: []ColorStop{
				{Color: Color{R: 0.35, G: 0.2, B: 0.95, A: 1}, Position: 0},
				{Color: Color{R: 0.95, G: 0.3, B: 0.6, A: 1}, Position: 1},
			},
		}},
	}

	card := &RawNode{
		ID:                     "1:2",
		Name:                   "Card",
		Type:                   NodeTypeFrame,
		AbsoluteBoundingBox:    &Box{X: 100, Y: 100, Width: 320, Height: 253},
		Fills:                  []Paint{{Type: PaintSolid, Color: white}},
		Strokes:                []Paint{{Type: PaintSolid, Color: Color{R: 0.9, G: 0.9, B: 0.92, A: 1}}},
		StrokeWeight:           1,
		StrokeAlign:            "INSIDE",
		CornerRadius:           12,
		ClipsContent:           true,
		LayoutMode:             LayoutVertical,
		ItemSpacing:            16,
		PaddingLeft:            ptr(24.0),
		PaddingRight:           ptr(24.0),
		PaddingTop:             ptr(24.0),
		PaddingBottom:          ptr(24.0),
		LayoutSizingHorizontal: SizingFixed,
		LayoutSizingVertical:   SizingHug,
		Effects: []Effect{{
			Type:   EffectDropShadow,
			Radius: 12,
			Offset: Vector{X: 0, Y: 4},
			Color:  Color{R: 0, G: 0, B: 0, A: 0.08},
		}},
		Children: []*RawNode{title, row, banner},
	}

	return &Document{
		Name:      "Sample card",
		Root:      card,
		Selection: []string{card.ID},
		Assets: map[string]Asset{
			icon.ID: {SVG: sampleIconSVG, ColorVariables: map[string]string{"#f5a623": "accent"}},
		},
	}
}
