package asset

import (
	"bytes"
	"encoding/base64"
	"errors"
	"fmt"
	"image"
	"strings"

	"github.com/disintegration/imaging"
)

const pngDataPrefix = "data:image/png;base64,"

var ErrNotDataURL = errors.New("not a base64 data url")

// PNGDataURL encodes img as a base64 PNG data URL.
func PNGDataURL(img image.Image) (string, error) {
	var buf bytes.Buffer
	if err := imaging.Encode(&buf, img, imaging.PNG); err != nil {
		return "", fmt.Errorf("encode png: %w", err)
	}
	return PNGDataURLFromBytes(buf.Bytes()), nil
}

func PNGDataURLFromBytes(b []byte) string {
	return pngDataPrefix + base64.StdEncoding.EncodeToString(b)
}

// DecodeDataURL returns the payload of a base64 data URL.
func DecodeDataURL(url string) ([]byte, error) {
	if !strings.HasPrefix(url, "data:") {
		return nil, ErrNotDataURL
	}
	meta, payload, ok := strings.Cut(url, ",")
	if !ok || !strings.HasSuffix(meta, ";base64") {
		return nil, ErrNotDataURL
	}
	b, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		return nil, fmt.Errorf("decode data url: %w", err)
	}
	return b, nil
}

// GradientDataURL parses and renders a linear gradient as a PNG data URL.
func GradientDataURL(value string, width, height int) (string, error) {
	g, err := ParseLinearGradient(value)
	if err != nil {
		return "", err
	}
	img, err := g.Render(width, height)
	if err != nil {
		return "", err
	}
	return PNGDataURL(img)
}

// SVGDataURL rasterizes svg at width×height and returns a PNG data URL.
func SVGDataURL(svg string, width, height int) (string, error) {
	img, err := RasterizeSVG(svg, width, height)
	if err != nil {
		return "", err
	}
	return PNGDataURL(img)
}
