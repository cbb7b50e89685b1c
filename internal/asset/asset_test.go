package asset

import (
	"bytes"
	"encoding/json"
	"image"
	"image/color"
	"image/png"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/beevik/etree"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func decodePNG(t *testing.T, url string) image.Image {
	t.Helper()
	b, err := DecodeDataURL(url)
	require.NoError(t, err)
	img, err := png.Decode(bytes.NewReader(b))
	require.NoError(t, err)
	return img
}

func nrgba(img image.Image, x, y int) color.NRGBA {
	return color.NRGBAModel.Convert(img.At(x, y)).(color.NRGBA)
}

func TestParseLinearGradient(t *testing.T) {
	g, err := ParseLinearGradient("linear-gradient(45deg, rgba(255, 0, 0, 0.5) 0%, #00FF00 50.5%, white)")
	require.NoError(t, err)

	assert.Equal(t, "45deg", g.Direction)
	require.Len(t, g.Stops, 3)
	assert.Equal(t, "rgba(255, 0, 0, 0.5)", g.Stops[0].Color)
	assert.Equal(t, "#00FF00", g.Stops[1].Color)
	assert.Equal(t, "white", g.Stops[2].Color)
	require.NotNil(t, g.Stops[1].Position)
	assert.InDelta(t, 0.505, *g.Stops[1].Position, 1e-9)
	assert.Nil(t, g.Stops[2].Position)
}

func TestParseLinearGradientLayers(t *testing.T) {
	value := "linear-gradient(to bottom right, #FF0000 0%, #0000FF 50%) bottom right / 50% 50% no-repeat, " +
		"linear-gradient(to top left, #00FF00 0%, black 50%) top left / 50% 50% no-repeat"
	g, err := ParseLinearGradient(value)
	require.NoError(t, err)

	assert.Equal(t, "to bottom right", g.Direction)
	require.Len(t, g.Stops, 2)
	assert.Equal(t, "#0000FF", g.Stops[1].Color)
}

func TestParseLinearGradientErrors(t *testing.T) {
	tests := []struct {
		name  string
		value string
	}{
		{"radial", "radial-gradient(ellipse 50% 50% at 50% 50%, red 0%, blue 100%)"},
		{"no stops", "linear-gradient(to right)"},
		{"unterminated", "linear-gradient(red, blue"},
		{"plain colour", "#FF0000"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseLinearGradient(tt.value)
			assert.ErrorIs(t, err, ErrInvalidGradient)
		})
	}
}

func TestEndpoints(t *testing.T) {
	tests := []struct {
		direction      string
		w, h           float64
		x0, y0, x1, y1 float64
	}{
		{"", 400, 200, 0, 0, 0, 200},
		{"to right", 400, 200, 0, 0, 400, 0},
		{"to left", 400, 200, 400, 0, 0, 0},
		{"to top", 400, 200, 0, 200, 0, 0},
		{"to top right", 400, 200, 0, 200, 400, 0},
		{"to bottom left", 400, 200, 400, 0, 0, 200},
		{"0deg", 400, 200, 200, 200, 200, 0},
		{"90deg", 400, 200, 0, 100, 400, 100},
		{"180deg", 400, 200, 200, 0, 200, 200},
		{"45deg", 100, 100, 0, 100, 100, 0},
	}
	for _, tt := range tests {
		t.Run(tt.direction, func(t *testing.T) {
			g := &LinearGradient{Direction: tt.direction}
			x0, y0, x1, y1 := g.Endpoints(tt.w, tt.h)
			assert.InDelta(t, tt.x0, x0, 1e-9)
			assert.InDelta(t, tt.y0, y0, 1e-9)
			assert.InDelta(t, tt.x1, x1, 1e-9)
			assert.InDelta(t, tt.y1, y1, 1e-9)
		})
	}
}

func TestStopPositions(t *testing.T) {
	g, err := ParseLinearGradient("linear-gradient(red, lime 30%, blue)")
	require.NoError(t, err)
	assert.Equal(t, []float64{0, 0.3, 1}, g.positions())

	single, err := ParseLinearGradient("linear-gradient(red)")
	require.NoError(t, err)
	assert.Equal(t, []float64{0}, single.positions())
}

func TestParseColor(t *testing.T) {
	tests := []struct {
		in    string
		want  color.NRGBA
		alpha float64
	}{
		{"white", color.NRGBA{255, 255, 255, 255}, 1},
		{"#FF0000", color.NRGBA{255, 0, 0, 255}, 1},
		{"#0f0", color.NRGBA{0, 255, 0, 255}, 1},
		{"rgba(0, 0, 255, 0.25)", color.NRGBA{0, 0, 255, 255}, 0.25},
		{"rgb(12.4, 100, 200)", color.NRGBA{12, 100, 200, 255}, 1},
		{"transparent", color.NRGBA{0, 0, 0, 255}, 0},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			c, alpha, err := ParseColor(tt.in)
			require.NoError(t, err)
			assert.Equal(t, tt.want, c)
			assert.InDelta(t, tt.alpha, alpha, 1e-9)
		})
	}

	_, _, err := ParseColor("bogus")
	assert.Error(t, err)
}

func TestGradientDataURL(t *testing.T) {
	url, err := GradientDataURL("linear-gradient(to right, #FF0000 0%, #0000FF 100%)", 400, 200)
	require.NoError(t, err)
	require.True(t, strings.HasPrefix(url, "data:image/png;base64,"))

	img := decodePNG(t, url)
	assert.Equal(t, image.Rect(0, 0, 400, 200), img.Bounds())

	left := nrgba(img, 0, 100)
	assert.Greater(t, left.R, uint8(240))
	assert.Less(t, left.B, uint8(15))

	right := nrgba(img, 399, 100)
	assert.Greater(t, right.B, uint8(240))
	assert.Less(t, right.R, uint8(15))

	mid := nrgba(img, 200, 100)
	assert.InDelta(t, 127, int(mid.R), 6)
	assert.InDelta(t, 127, int(mid.B), 6)
}

func TestGradientDefaultsToBottom(t *testing.T) {
	url, err := GradientDataURL("linear-gradient(#FF0000, #0000FF)", 40, 20)
	require.NoError(t, err)

	img := decodePNG(t, url)
	assert.Greater(t, nrgba(img, 20, 0).R, uint8(220))
	assert.Greater(t, nrgba(img, 20, 19).B, uint8(220))
}

func TestGradientOpacity(t *testing.T) {
	url, err := GradientDataURL("linear-gradient(to right, rgba(255, 0, 0, 0.5) 0%, rgba(255, 0, 0, 0.5) 100%)", 10, 10)
	require.NoError(t, err)

	c := nrgba(decodePNG(t, url), 5, 5)
	assert.InDelta(t, 127, int(c.A), 3)
	assert.Greater(t, c.R, uint8(240))
}

func TestGradientRejectsBadSize(t *testing.T) {
	_, err := GradientDataURL("linear-gradient(red, blue)", 0, 10)
	assert.ErrorIs(t, err, ErrInvalidGradient)
}

const redSquare = `<svg xmlns="http://www.w3.org/2000/svg" width="10" height="10" viewBox="0 0 10 10"><rect x="0" y="0" width="10" height="10" fill="#FF0000"/></svg>`

func TestRasterizeSVG(t *testing.T) {
	img, err := RasterizeSVG(redSquare, 0, 0)
	require.NoError(t, err)
	assert.Equal(t, image.Rect(0, 0, 10, 10), img.Bounds())
	assert.Equal(t, color.NRGBA{255, 0, 0, 255}, nrgba(img, 5, 5))

	scaled, err := RasterizeSVG(redSquare, 20, 30)
	require.NoError(t, err)
	assert.Equal(t, image.Rect(0, 0, 20, 30), scaled.Bounds())
	assert.Equal(t, color.NRGBA{255, 0, 0, 255}, nrgba(scaled, 18, 28))

	url, err := SVGDataURL(redSquare, 10, 10)
	require.NoError(t, err)
	assert.Equal(t, color.NRGBA{255, 0, 0, 255}, nrgba(decodePNG(t, url), 1, 1))
}

func TestRasterizeSVGErrors(t *testing.T) {
	_, err := RasterizeSVG("not svg at all <", 10, 10)
	assert.Error(t, err)

	_, err = RasterizeSVG(`<svg xmlns="http://www.w3.org/2000/svg"></svg>`, 0, 0)
	assert.ErrorIs(t, err, ErrEmptySVG)
}

func TestApplyColorVariables(t *testing.T) {
	svg := `<svg xmlns="http://www.w3.org/2000/svg">` +
		`<path d="M0 0L1 1" fill="#FF0000"/>` +
		`<rect width="1" height="1" style="fill: #ff0000; stroke: #000000" stroke="#00FF00"/>` +
		`</svg>`

	out, err := ApplyColorVariables(svg, map[string]string{"#FF0000": "brand-red"})
	require.NoError(t, err)

	doc := etree.NewDocument()
	require.NoError(t, doc.ReadFromString(out))
	path := doc.FindElement("//path")
	require.NotNil(t, path)
	assert.Equal(t, "var(--brand-red, #FF0000)", path.SelectAttrValue("fill", ""))

	rect := doc.FindElement("//rect")
	require.NotNil(t, rect)
	assert.Equal(t, "fill: var(--brand-red, #ff0000); stroke: #000000", rect.SelectAttrValue("style", ""))
	assert.Equal(t, "#00FF00", rect.SelectAttrValue("stroke", ""))
}

func TestApplyColorVariablesUnchanged(t *testing.T) {
	out, err := ApplyColorVariables(redSquare, map[string]string{"#00ff00": "green"})
	require.NoError(t, err)
	assert.Equal(t, redSquare, out)

	out, err = ApplyColorVariables(redSquare, nil)
	require.NoError(t, err)
	assert.Equal(t, redSquare, out)

	_, err = ApplyColorVariables("<svg", map[string]string{"#00ff00": "green"})
	assert.Error(t, err)
}

func TestDecodeDataURL(t *testing.T) {
	b, err := DecodeDataURL(PNGDataURLFromBytes([]byte("png")))
	require.NoError(t, err)
	assert.Equal(t, []byte("png"), b)

	_, err = DecodeDataURL("https://example.com/a.png")
	assert.ErrorIs(t, err, ErrNotDataURL)
	_, err = DecodeDataURL("data:text/plain,hello")
	assert.ErrorIs(t, err, ErrNotDataURL)
}

func TestGradientHandler(t *testing.T) {
	h := NewHandler(0, 0)

	tests := []struct {
		name       string
		body       string
		wantStatus int
		wantW      int
		wantH      int
	}{
		{"explicit size", `{"gradient":"linear-gradient(to right, red, blue)","width":40,"height":20}`, http.StatusOK, 40, 20},
		{"default size", `{"gradient":"linear-gradient(red, blue)"}`, http.StatusOK, DefaultGradientWidth, DefaultGradientHeight},
		{"not linear", `{"gradient":"radial-gradient(red, blue)"}`, http.StatusBadRequest, 0, 0},
		{"missing", `{}`, http.StatusBadRequest, 0, 0},
		{"too large", `{"gradient":"linear-gradient(red, blue)","width":10000}`, http.StatusBadRequest, 0, 0},
		{"bad json", `{`, http.StatusBadRequest, 0, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/assets/gradient", strings.NewReader(tt.body))
			rec := httptest.NewRecorder()
			h.Gradient(rec, req)

			require.Equal(t, tt.wantStatus, rec.Code)
			if tt.wantStatus != http.StatusOK {
				return
			}
			var resp GradientResponse
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
			assert.True(t, strings.HasPrefix(resp.ID, "asset_"))
			assert.Equal(t, tt.wantW, resp.Width)
			assert.Equal(t, tt.wantH, resp.Height)
			assert.Equal(t, image.Rect(0, 0, tt.wantW, tt.wantH), decodePNG(t, resp.URL).Bounds())
		})
	}
}
