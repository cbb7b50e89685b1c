package convert

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"image/color"
	"strings"
	"sync"
	"testing"

	"github.com/disintegration/imaging"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/inamate/figconv/internal/blocks"
	"github.com/inamate/figconv/internal/document"
)

func converter(opts ...Option) *Converter {
	return New(append([]Option{WithExportDelay(0)}, opts...)...)
}

func pngBase64(t *testing.T) string {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, imaging.Encode(&buf, imaging.New(4, 4, color.NRGBA{255, 0, 0, 255}), imaging.PNG))
	return base64.StdEncoding.EncodeToString(buf.Bytes())
}

func box(x, y, w, h float64) *document.Box {
	return &document.Box{X: x, Y: y, Width: w, Height: h}
}

func gradientFill(r float64) []document.Paint {
	return []document.Paint{{
		Type:                    document.PaintGradientLinear,
		GradientHandlePositions: []document.Vector{{X: 0, Y: 0.5}, {X: 1, Y: 0.5}, {X: 0, Y: 1}},
		GradientStops: []document.ColorStop{
			{Color: document.Color{R: r, A: 1}, Position: 0},
			{Color: document.Color{B: 1, A: 1}, Position: 1},
		},
	}}
}

func frame(id string, children ...*document.RawNode) *document.RawNode {
	return &document.RawNode{
		ID:                  id,
		Name:                "Frame",
		Type:                document.NodeTypeFrame,
		AbsoluteBoundingBox: box(0, 0, 400, 300),
		Children:            children,
	}
}

func TestParseMode(t *testing.T) {
	m, err := ParseMode("blocks")
	require.NoError(t, err)
	assert.Equal(t, ModeBlocks, m)

	_, err = ParseMode("pdf")
	assert.ErrorIs(t, err, ErrUnknownMode)
}

func TestRequestRoot(t *testing.T) {
	doc := document.NewSampleDocument()

	root, err := Request{Document: doc}.Root()
	require.NoError(t, err)
	assert.Equal(t, "1:2", root.ID)

	root, err = Request{Document: doc, RootID: "1:7"}.Root()
	require.NoError(t, err)
	assert.Equal(t, "Banner", root.Name)

	doc.Selection = nil
	root, err = Request{Document: doc}.Root()
	require.NoError(t, err)
	assert.Equal(t, doc.Root, root)

	_, err = Request{Document: doc, RootID: "9:9"}.Root()
	assert.ErrorIs(t, err, document.ErrNodeNotFound)

	_, err = Request{}.Root()
	assert.ErrorIs(t, err, document.ErrEmptyDocument)
}

func TestConvertHTMLSample(t *testing.T) {
	res, err := converter().Convert(context.Background(), Request{Document: document.NewSampleDocument(), Mode: ModeHTML})
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(res.RunID, "run_"))
	assert.Equal(t, ModeHTML, res.Mode)
	require.NotNil(t, res.Markup)
	assert.Nil(t, res.Page)
	assert.Contains(t, res.Markup.HTML, "data-svg-wrapper")
	assert.Contains(t, res.Markup.HTML, "var(--accent, #F5A623)")
	assert.Contains(t, res.Markup.HTML, "Design to markup")
	assert.Empty(t, res.Markup.CSS)
	assert.NotContains(t, res.Warnings, "Vector is not supported")
	assert.Equal(t, res.Markup, res.Payload())
}

func TestConvertHTMLClassMode(t *testing.T) {
	res, err := converter(WithClassMode(true)).Convert(context.Background(), Request{Document: document.NewSampleDocument(), Mode: ModeHTML})
	require.NoError(t, err)
	assert.Contains(t, res.Markup.HTML, `class="card"`)
	assert.Contains(t, res.Markup.CSS, ".card {")
}

func TestConvertBlocksSample(t *testing.T) {
	res, err := converter().Convert(context.Background(), Request{Document: document.NewSampleDocument(), Mode: ModeBlocks})
	require.NoError(t, err)

	require.NotNil(t, res.Page)
	assert.Nil(t, res.Markup)
	assert.True(t, strings.HasPrefix(res.Page.Block.ID, "block_"))
	assert.NotEmpty(t, res.Page.Elements)

	var icon, banner *blocks.Element
	for _, e := range res.Page.Elements {
		if e.Image != nil && strings.HasPrefix(e.Image.File, "data:image/png;base64,") {
			icon = e
		}
		if strings.Contains(e.CSS.Desktop.String(), "background-image: url(") {
			banner = e
		}
	}
	require.NotNil(t, icon, "flattened icon becomes an image element")
	assert.Contains(t, icon.Content.Desktop.String(), `alt="Star"`)
	require.NotNil(t, banner, "gradient is rasterized")
	assert.Contains(t, banner.Content.Desktop.String(), "background-image: url(data:image/png;base64,")

	b, err := json.Marshal(res.Payload())
	require.NoError(t, err)
	var page map[string]any
	require.NoError(t, json.Unmarshal(b, &page))
	assert.Equal(t, []any{}, page["styles"])
	assert.Equal(t, []any{}, page["scripts"])
	assert.Equal(t, map[string]any{}, page["icons"])
}

func TestExportFailureFallsBackToStyles(t *testing.T) {
	vector := &document.RawNode{
		ID:                  "1:1",
		Name:                "Glyph",
		Type:                document.NodeTypeVector,
		AbsoluteBoundingBox: box(10, 10, 24, 24),
		Fills:               []document.Paint{{Type: document.PaintSolid, Color: document.Color{R: 1, A: 1}}},
	}
	doc := &document.Document{Root: frame("0:1", vector)}

	res, err := converter().Convert(context.Background(), Request{Document: doc, Mode: ModeHTML})
	require.NoError(t, err)
	assert.NotContains(t, res.Markup.HTML, "data-svg-wrapper")
	assert.Equal(t, []string{"Vector is not supported"}, res.Warnings)
}

func TestImageFillsWarnOnce(t *testing.T) {
	image := func(id string) *document.RawNode {
		return &document.RawNode{
			ID:                  id,
			Name:                "Photo",
			Type:                document.NodeTypeRectangle,
			AbsoluteBoundingBox: box(0, 0, 100, 100),
			Fills:               []document.Paint{{Type: document.PaintImage, ImageRef: "ref"}},
		}
	}
	png := pngBase64(t)
	doc := &document.Document{
		Root: frame("0:1", image("1:1"), image("1:2"), image("1:3")),
		Assets: map[string]document.Asset{
			"1:1": {PNG: png},
			"1:2": {PNG: png},
		},
	}

	res, err := converter().Convert(context.Background(), Request{Document: doc, Mode: ModeHTML})
	require.NoError(t, err)
	assert.Equal(t, []string{imageWarning}, res.Warnings)
	assert.Equal(t, 2, strings.Count(res.Markup.HTML, "data:image/png;base64,"))
}

func gradientDocument() *document.Document {
	a := &document.RawNode{ID: "1:1", Name: "A", Type: document.NodeTypeRectangle, AbsoluteBoundingBox: box(0, 0, 100, 100), Fills: gradientFill(1)}
	b := &document.RawNode{ID: "1:2", Name: "B", Type: document.NodeTypeRectangle, AbsoluteBoundingBox: box(120, 0, 100, 100), Fills: gradientFill(0.5)}
	return &document.Document{Root: frame("0:1", a, b)}
}

func TestPendingGradientsResolveNewestFirst(t *testing.T) {
	var order []string
	resolver := GradientFunc(func(ctx context.Context, req GradientRequest) (string, error) {
		require.NotNil(t, req.Element)
		assert.Equal(t, req.Asset.ElementID, req.Element.ID)
		order = append(order, req.Asset.Gradient)
		if len(order) == 1 {
			return "", errors.New("renderer gone")
		}
		return "data:image/png;base64,AAAA", nil
	})

	res, err := converter().Convert(context.Background(), Request{Document: gradientDocument(), Mode: ModeBlocks, Gradients: resolver})
	require.NoError(t, err)

	require.Len(t, order, 2)
	assert.Contains(t, order[0], "#800000")
	assert.Contains(t, order[1], "#FF0000")

	require.Len(t, res.Page.Elements, 2)
	assert.Contains(t, res.Page.Elements[0].CSS.Desktop.String(), "background-image: url(data:image/png;base64,AAAA);")
	assert.Contains(t, res.Page.Elements[1].CSS.Desktop.String(), "background-image: none;")
}

func TestPendingGradientsStopOnCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	calls := 0
	resolver := GradientFunc(func(ctx context.Context, req GradientRequest) (string, error) {
		calls++
		cancel()
		return "", ctx.Err()
	})

	_, err := converter().Convert(ctx, Request{Document: gradientDocument(), Mode: ModeBlocks, Gradients: resolver})
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 1, calls)
}

func TestConvertErrors(t *testing.T) {
	c := converter()
	ctx := context.Background()

	_, err := c.Convert(ctx, Request{Document: document.NewSampleDocument(), Mode: "pdf"})
	assert.ErrorIs(t, err, ErrUnknownMode)

	_, err = c.Convert(ctx, Request{Document: document.NewSampleDocument(), RootID: "nope", Mode: ModeHTML})
	assert.ErrorIs(t, err, document.ErrNodeNotFound)

	cancelled, cancel := context.WithCancel(ctx)
	cancel()
	_, err = c.Convert(cancelled, Request{Document: document.NewSampleDocument(), Mode: ModeHTML})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestConcurrentRunsAreIndependent(t *testing.T) {
	c := converter()
	var wg sync.WaitGroup
	results := make([]*Result, 8)
	for i := range results {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			mode := ModeHTML
			if i%2 == 1 {
				mode = ModeBlocks
			}
			res, err := c.Convert(context.Background(), Request{Document: document.NewSampleDocument(), Mode: mode})
			if err == nil {
				results[i] = res
			}
		}(i)
	}
	wg.Wait()

	ids := make(map[string]bool)
	for _, res := range results {
		require.NotNil(t, res)
		ids[res.RunID] = true
	}
	assert.Len(t, ids, len(results))
	assert.Equal(t, results[0].Markup.HTML, results[2].Markup.HTML)
}

func TestWarningsDeduplicate(t *testing.T) {
	w := newWarnings("run_test")
	w.Warn("b")
	w.Warn("a")
	w.Warn("b")
	assert.Equal(t, []string{"b", "a"}, w.List())
}
