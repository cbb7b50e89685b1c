// Package host is the boundary to the design tool that owns the scene: it
// exports nodes as SVG or PNG. The static exporter serves the renditions a
// host shipped along with the document.
package host

import (
	"bytes"
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"image"
	"math"

	"github.com/disintegration/imaging"

	"github.com/inamate/figconv/internal/asset"
	"github.com/inamate/figconv/internal/document"
)

type Format string

const (
	FormatSVG Format = "SVG"
	FormatPNG Format = "PNG"
)

// Constraint types for raster exports.
const (
	ConstraintScale  = "SCALE"
	ConstraintWidth  = "WIDTH"
	ConstraintHeight = "HEIGHT"
)

var (
	ErrUnsupportedFormat = errors.New("unsupported export format")
	ErrNotExported       = errors.New("node has no exported rendition")
)

type Constraint struct {
	Type  string
	Value float64
}

// Settings describes one export request.
type Settings struct {
	Format     Format
	Constraint Constraint
	// ExcludeChildren asks for the node's own paint without its children.
	ExcludeChildren bool
}

// Exporter exports a node by id. Implementations may block; ctx bounds
// the call.
type Exporter interface {
	Export(ctx context.Context, id string, s Settings) ([]byte, error)
}

// ColorVariables is implemented by exporters that know which design
// variables back a node's colours (colour → variable name).
type ColorVariables interface {
	ColorVariables(id string) map[string]string
}

// Static exports from the renditions embedded in a document. PNG exports
// fall back to rasterizing the SVG rendition.
type Static struct {
	doc *document.Document
}

func NewStatic(doc *document.Document) *Static {
	return &Static{doc: doc}
}

func (s *Static) Export(ctx context.Context, id string, settings Settings) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if _, err := s.doc.Find(id); err != nil {
		return nil, err
	}
	a, _ := s.doc.Asset(id)

	switch settings.Format {
	case FormatSVG:
		if a.SVG == "" {
			return nil, fmt.Errorf("%w: svg for %s", ErrNotExported, id)
		}
		return []byte(a.SVG), nil
	case FormatPNG:
		img, err := s.raster(id, a)
		if err != nil {
			return nil, err
		}
		return encodeConstrained(img, settings.Constraint)
	}
	return nil, fmt.Errorf("%w: %s", ErrUnsupportedFormat, settings.Format)
}

func (s *Static) ColorVariables(id string) map[string]string {
	a, _ := s.doc.Asset(id)
	return a.ColorVariables
}

func (s *Static) raster(id string, a document.Asset) (image.Image, error) {
	if a.PNG != "" {
		b, err := base64.StdEncoding.DecodeString(a.PNG)
		if err != nil {
			return nil, fmt.Errorf("decode png for %s: %w", id, err)
		}
		img, err := imaging.Decode(bytes.NewReader(b))
		if err != nil {
			return nil, fmt.Errorf("decode png for %s: %w", id, err)
		}
		return img, nil
	}
	if a.SVG != "" {
		img, err := asset.RasterizeSVG(a.SVG, 0, 0)
		if err != nil {
			return nil, fmt.Errorf("rasterize svg for %s: %w", id, err)
		}
		return img, nil
	}
	return nil, fmt.Errorf("%w: png for %s", ErrNotExported, id)
}

// encodeConstrained resizes img to satisfy c and encodes it as PNG. An
// empty constraint or SCALE 1 keeps the original size.
func encodeConstrained(img image.Image, c Constraint) ([]byte, error) {
	b := img.Bounds()
	switch c.Type {
	case ConstraintScale:
		if c.Value > 0 && c.Value != 1 {
			img = imaging.Resize(img, scaled(b.Dx(), c.Value), 0, imaging.Lanczos)
		}
	case ConstraintWidth:
		if c.Value > 0 && int(c.Value) != b.Dx() {
			img = imaging.Resize(img, int(math.Round(c.Value)), 0, imaging.Lanczos)
		}
	case ConstraintHeight:
		if c.Value > 0 && int(c.Value) != b.Dy() {
			img = imaging.Resize(img, 0, int(math.Round(c.Value)), imaging.Lanczos)
		}
	}

	var buf bytes.Buffer
	if err := imaging.Encode(&buf, img, imaging.PNG); err != nil {
		return nil, fmt.Errorf("encode png: %w", err)
	}
	return buf.Bytes(), nil
}

func scaled(v int, factor float64) int {
	return int(math.Max(1, math.Round(float64(v)*factor)))
}
