package normalize

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/inamate/figconv/internal/document"
	"github.com/inamate/figconv/internal/icon"
)

func raw(id string, t document.NodeType, box document.Box, children ...*document.RawNode) *document.RawNode {
	b := box
	return &document.RawNode{ID: id, Name: id, Type: t, AbsoluteBoundingBox: &b, Children: children}
}

func never(icon.Candidate) bool  { return false }
func always(icon.Candidate) bool { return true }

func normalizer(classify func(icon.Candidate) bool) *Normalizer {
	return New(WithClassifier(classify))
}

func TestUniqueNames(t *testing.T) {
	a := raw("1", document.NodeTypeRectangle, document.Box{Width: 10, Height: 10})
	b := raw("2", document.NodeTypeRectangle, document.Box{Width: 10, Height: 10})
	c := raw("3", document.NodeTypeRectangle, document.Box{Width: 10, Height: 10})
	a.Name, b.Name, c.Name = "Button", "Button", "  Button "
	root := raw("0", document.NodeTypeFrame, document.Box{Width: 100, Height: 100}, a, b, c)

	n, err := normalizer(never).Normalize(root)
	require.NoError(t, err)
	require.Len(t, n.Children, 3)

	assert.Equal(t, "Button", n.Children[0].UniqueName)
	assert.Equal(t, "Button_01", n.Children[1].UniqueName)
	assert.Equal(t, "Button_02", n.Children[2].UniqueName)
}

func TestNamesAreScopedToNormalizer(t *testing.T) {
	root := raw("0", document.NodeTypeRectangle, document.Box{Width: 10, Height: 10})

	first, err := normalizer(never).Normalize(root)
	require.NoError(t, err)
	second, err := normalizer(never).Normalize(root)
	require.NoError(t, err)

	assert.Equal(t, first.UniqueName, second.UniqueName)
}

func TestGroupsAreInlined(t *testing.T) {
	rect := raw("r", document.NodeTypeRectangle, document.Box{X: 10, Y: 20, Width: 30, Height: 30})
	inner := raw("g2", document.NodeTypeGroup, document.Box{X: 10, Y: 20, Width: 30, Height: 30}, rect)
	inner.Rotation = math.Pi / 6
	outer := raw("g1", document.NodeTypeGroup, document.Box{X: 10, Y: 20, Width: 30, Height: 30}, inner)
	outer.Rotation = math.Pi / 18
	root := raw("f", document.NodeTypeFrame, document.Box{Width: 200, Height: 200}, outer)

	n, err := normalizer(never).Normalize(root)
	require.NoError(t, err)
	require.Len(t, n.Children, 1)

	child := n.Children[0]
	assert.Equal(t, "r", child.ID)
	assert.Same(t, n, child.Parent)
	assert.InDelta(t, -40, child.CumulativeRotation, 1e-9)

	n.Walk(func(node *Node) bool {
		assert.NotEqual(t, document.NodeTypeGroup, node.Type)
		return true
	})
}

func TestRootGroupBecomesFrame(t *testing.T) {
	rect := raw("r", document.NodeTypeRectangle, document.Box{X: 0, Y: 0, Width: 30, Height: 30})
	root := raw("g", document.NodeTypeGroup, document.Box{Width: 30, Height: 30}, rect)
	root.Rotation = -math.Pi / 2

	n, err := normalizer(never).Normalize(root)
	require.NoError(t, err)

	assert.Equal(t, document.NodeTypeFrame, n.Type)
	assert.Zero(t, n.Rotation)
	assert.Zero(t, n.CumulativeRotation)
	require.Len(t, n.Children, 1)
	assert.InDelta(t, 90, n.Children[0].CumulativeRotation, 1e-9)

	assert.Equal(t, document.NodeTypeGroup, root.Type, "input must not be modified")
	assert.Equal(t, -math.Pi/2, root.Rotation)
}

func TestFlatteningDoesNotNest(t *testing.T) {
	leaf := raw("v", document.NodeTypeVector, document.Box{Width: 8, Height: 8})
	mid := raw("m", document.NodeTypeFrame, document.Box{Width: 16, Height: 16}, leaf)
	mid.Rotation = math.Pi
	root := raw("f", document.NodeTypeFrame, document.Box{Width: 24, Height: 24}, mid)

	n, err := normalizer(always).Normalize(root)
	require.NoError(t, err)

	assert.True(t, n.CanBeFlattened)
	n.Walk(func(node *Node) bool {
		if node != n {
			assert.False(t, node.CanBeFlattened, node.ID)
			assert.Zero(t, node.CumulativeRotation, node.ID)
		}
		return true
	})
}

func TestNodeFiltering(t *testing.T) {
	hidden := false
	invisible := raw("hidden", document.NodeTypeRectangle, document.Box{Width: 5, Height: 5})
	invisible.Visible = &hidden

	tests := []struct {
		name  string
		child *document.RawNode
		want  []document.NodeType
	}{
		{"empty frame becomes rectangle", raw("e", document.NodeTypeFrame, document.Box{Width: 5, Height: 5}), []document.NodeType{document.NodeTypeRectangle}},
		{"empty instance becomes rectangle", raw("i", document.NodeTypeInstance, document.Box{Width: 5, Height: 5}), []document.NodeType{document.NodeTypeRectangle}},
		{"slice is dropped", raw("s", document.NodeTypeSlice, document.Box{Width: 5, Height: 5}), nil},
		{"hidden node is dropped", invisible, nil},
		{"node without id is dropped", &document.RawNode{Type: document.NodeTypeEllipse}, nil},
		{"empty group is dropped", raw("g", document.NodeTypeGroup, document.Box{}), nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			root := raw("root", document.NodeTypeFrame, document.Box{Width: 100, Height: 100}, tt.child)
			n, err := normalizer(never).Normalize(root)
			require.NoError(t, err)

			var got []document.NodeType
			for _, c := range n.Children {
				got = append(got, c.Type)
			}
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestNothingToRender(t *testing.T) {
	_, err := normalizer(never).Normalize(raw("s", document.NodeTypeSlice, document.Box{}))
	assert.ErrorIs(t, err, ErrNothingToRender)

	_, err = normalizer(never).Normalize(nil)
	assert.ErrorIs(t, err, document.ErrEmptyDocument)
}

func TestChildGeometry(t *testing.T) {
	child := raw("c", document.NodeTypeRectangle, document.Box{X: 130, Y: 145, Width: 40, Height: 20})
	root := raw("f", document.NodeTypeFrame, document.Box{X: 100, Y: 100, Width: 300, Height: 200}, child)

	n, err := normalizer(never).Normalize(root)
	require.NoError(t, err)

	assert.Equal(t, 300.0, n.Width)
	assert.Zero(t, n.X)
	c := n.Children[0]
	assert.Equal(t, 30.0, c.X)
	assert.Equal(t, 45.0, c.Y)
	assert.Equal(t, 40.0, c.Width)
	assert.Equal(t, 20.0, c.Height)
}

func TestLayoutDefaults(t *testing.T) {
	hug := raw("h", document.NodeTypeRectangle, document.Box{Width: 5, Height: 5})
	hug.LayoutSizingHorizontal = document.SizingHug
	hug.LayoutSizingVertical = document.SizingHug

	root := raw("f", document.NodeTypeFrame, document.Box{Width: 100, Height: 100}, hug)
	root.LayoutMode = document.LayoutVertical
	root.LayoutSizingVertical = document.SizingHug
	root.PaddingTop = new(float64)
	*root.PaddingTop = 12

	n, err := normalizer(never).Normalize(root)
	require.NoError(t, err)

	assert.Equal(t, document.SizingHug, n.Layout.SizingVertical)
	assert.Equal(t, Padding{Top: 12}, n.Layout.Padding)
	assert.False(t, n.IsRelative)

	c := n.Children[0]
	assert.Equal(t, document.LayoutNone, c.Layout.Mode)
	assert.Equal(t, document.SizingFixed, c.Layout.SizingHorizontal)
	assert.Equal(t, document.SizingFixed, c.Layout.SizingVertical)
	assert.Equal(t, "MIN", c.Layout.PrimaryAlign)
	assert.Equal(t, "MIN", c.Layout.CounterAlign)
	assert.Equal(t, 1.0, c.Opacity)
}

func TestIsRelative(t *testing.T) {
	abs := raw("a", document.NodeTypeRectangle, document.Box{Width: 5, Height: 5})
	abs.LayoutPositioning = "ABSOLUTE"
	flow := raw("b", document.NodeTypeRectangle, document.Box{Width: 5, Height: 5})

	auto := raw("auto", document.NodeTypeFrame, document.Box{Width: 100, Height: 100}, flow, abs)
	auto.LayoutMode = document.LayoutHorizontal

	n, err := normalizer(never).Normalize(auto)
	require.NoError(t, err)
	assert.True(t, n.IsRelative)

	free := raw("free", document.NodeTypeFrame, document.Box{Width: 100, Height: 100}, raw("x", document.NodeTypeEllipse, document.Box{}))
	n, err = normalizer(never).Normalize(free)
	require.NoError(t, err)
	assert.True(t, n.IsRelative)
}

func TestReverseZIndexOrder(t *testing.T) {
	a := raw("a", document.NodeTypeRectangle, document.Box{})
	b := raw("b", document.NodeTypeRectangle, document.Box{})
	b.LayoutPositioning = "ABSOLUTE"
	c := raw("c", document.NodeTypeRectangle, document.Box{})
	d := raw("d", document.NodeTypeRectangle, document.Box{})
	d.LayoutPositioning = "ABSOLUTE"

	root := raw("f", document.NodeTypeFrame, document.Box{Width: 100, Height: 100}, a, b, c, d)
	root.LayoutMode = document.LayoutHorizontal
	root.ItemReverseZIndex = true

	n, err := normalizer(never).Normalize(root)
	require.NoError(t, err)

	var ids []string
	for _, child := range n.Children {
		ids = append(ids, child.ID)
	}
	assert.Equal(t, []string{"d", "b", "a", "c"}, ids)
}

func TestTextSegments(t *testing.T) {
	single := raw("t1", document.NodeTypeText, document.Box{Width: 50, Height: 20})
	single.Name = "Hello World!"
	single.Characters = "Hi"
	single.Style = &document.TypeStyle{
		FontFamily:     "Inter",
		FontSize:       16,
		FontWeight:     400,
		Italic:         true,
		LineHeightUnit: "PIXELS",
		LineHeightPx:   20,
		LetterSpacing:  1.5,
		OpentypeFlags:  map[string]int{"SUPS": 1},
	}

	multi := raw("t2", document.NodeTypeText, document.Box{Width: 50, Height: 20})
	multi.Name = "Hello World!"
	multi.StyledTextSegments = []document.TextSegment{{Characters: "a"}, {Characters: "b"}}

	root := raw("f", document.NodeTypeFrame, document.Box{Width: 100, Height: 100}, single, multi)
	n, err := normalizer(never).Normalize(root)
	require.NoError(t, err)

	first := n.Children[0].Text
	require.NotNil(t, first)
	assert.Equal(t, "NONE", first.AutoResize)
	require.Len(t, first.Segments, 1)
	seg := first.Segments[0]
	assert.Equal(t, "helloworld_span", seg.UniqueID)
	assert.Equal(t, "Italic", seg.FontName.Style)
	assert.Equal(t, document.Measure{Unit: "PIXELS", Value: 20}, seg.LineHeight)
	assert.Equal(t, document.Measure{Unit: "PIXELS", Value: 1.5}, seg.LetterSpacing)
	assert.True(t, seg.OpenTypeFeatures["SUPS"])
	assert.Equal(t, 2, seg.End)

	second := n.Children[1].Text
	require.Len(t, second.Segments, 2)
	assert.Equal(t, "helloworld_01_span_01", second.Segments[0].UniqueID)
	assert.Equal(t, "helloworld_01_span_02", second.Segments[1].UniqueID)
}

func TestSampleDocument(t *testing.T) {
	doc := document.NewSampleDocument()
	n, err := New().Normalize(doc.Root)
	require.NoError(t, err)

	assert.Equal(t, "Card", n.UniqueName)
	assert.False(t, n.CanBeFlattened)

	var star *Node
	n.Walk(func(node *Node) bool {
		if node.ID == "1:5" {
			star = node
		}
		return true
	})
	require.NotNil(t, star)
	assert.True(t, star.CanBeFlattened)
	assert.Equal(t, KindVector, star.Kind())
}
