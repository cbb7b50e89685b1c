package icon

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/inamate/figconv/internal/document"
)

func node(t document.NodeType, children ...*document.RawNode) *document.RawNode {
	return &document.RawNode{ID: string(t), Name: string(t), Type: t, Children: children}
}

func TestClassify(t *testing.T) {
	hidden := false
	solid := []document.Paint{{Type: document.PaintSolid}}

	withFill := node(document.NodeTypeFrame)
	withFill.Children = []*document.RawNode{}
	withFill.Fills = solid

	bare := node(document.NodeTypeFrame)
	bare.Children = []*document.RawNode{}

	hiddenText := node(document.NodeTypeText)
	hiddenText.Visible = &hidden

	svgText := node(document.NodeTypeText)
	svgText.ExportSettings = []document.ExportSetting{{Format: "SVG"}}

	svgFrame := node(document.NodeTypeFrame, node(document.NodeTypeText))
	svgFrame.ExportSettings = []document.ExportSetting{{Format: "PNG"}, {Format: "SVG"}}

	tests := []struct {
		name string
		c    Candidate
		want bool
	}{
		{"text is disallowed", Candidate{Node: node(document.NodeTypeText), Width: 10, Height: 10}, false},
		{"disallowed wins over export setting", Candidate{Node: svgText, Width: 10, Height: 10}, false},
		{"svg export setting", Candidate{Node: svgFrame, Width: 500, Height: 500}, true},
		{"vector without size", Candidate{Node: node(document.NodeTypeVector)}, true},
		{"rectangle without size", Candidate{Node: node(document.NodeTypeRectangle)}, false},
		{"large star ignores size", Candidate{Node: node(document.NodeTypeStar), Width: 400, Height: 400}, true},
		{"small ellipse", Candidate{Node: node(document.NodeTypeEllipse), Width: 64, Height: 64}, true},
		{"large rectangle", Candidate{Node: node(document.NodeTypeRectangle), Width: 65, Height: 10}, false},
		{"large frame", Candidate{Node: node(document.NodeTypeFrame, node(document.NodeTypeVector)), Width: 100, Height: 20}, false},
		{"frame of vectors", Candidate{Node: node(document.NodeTypeFrame, node(document.NodeTypeVector), node(document.NodeTypeEllipse)), Width: 24, Height: 24}, true},
		{"frame with text", Candidate{Node: node(document.NodeTypeFrame, node(document.NodeTypeVector), node(document.NodeTypeText)), Width: 24, Height: 24}, false},
		{"hidden text is ignored", Candidate{Node: node(document.NodeTypeFrame, node(document.NodeTypeVector), hiddenText), Width: 24, Height: 24}, true},
		{"nested group with vector", Candidate{Node: node(document.NodeTypeGroup, node(document.NodeTypeGroup, node(document.NodeTypeBooleanOperation))), Width: 16, Height: 16}, true},
		{"nested group with frame", Candidate{Node: node(document.NodeTypeInstance, node(document.NodeTypeGroup, node(document.NodeTypeFrame))), Width: 16, Height: 16}, false},
		{"frame of unknown content", Candidate{Node: node(document.NodeTypeFrame, node(document.NodeTypeSection)), Width: 16, Height: 16}, false},
		{"empty frame with fill", Candidate{Node: withFill, Width: 16, Height: 16}, true},
		{"empty frame without style", Candidate{Node: bare, Width: 16, Height: 16}, false},
		{"section is never an icon", Candidate{Node: node(document.NodeTypeSection), Width: 16, Height: 16}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, reason := Classify(tt.c)
			assert.Equal(t, tt.want, got, reason)
		})
	}
}

func TestIsLikelyIconIsPure(t *testing.T) {
	c := Candidate{Node: node(document.NodeTypeFrame, node(document.NodeTypeVector)), Width: 24, Height: 24}
	first := IsLikelyIcon(c)
	assert.Equal(t, first, IsLikelyIcon(c))
	assert.True(t, first)
}
