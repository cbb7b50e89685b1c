package asset

import (
	"errors"
	"fmt"
	"image"
	"math"
	"strings"

	"github.com/beevik/etree"
	"github.com/srwiley/oksvg"
	"github.com/srwiley/rasterx"

	"github.com/inamate/figconv/internal/style"
)

var ErrEmptySVG = errors.New("svg has no drawable size")

// RasterizeSVG draws svg into a width×height image. A non-positive size
// falls back to the SVG's view box.
func RasterizeSVG(svg string, width, height int) (*image.RGBA, error) {
	icon, err := oksvg.ReadIconStream(strings.NewReader(svg), oksvg.IgnoreErrorMode)
	if err != nil {
		return nil, fmt.Errorf("read svg: %w", err)
	}
	if width <= 0 {
		width = int(math.Ceil(icon.ViewBox.W))
	}
	if height <= 0 {
		height = int(math.Ceil(icon.ViewBox.H))
	}
	if width <= 0 || height <= 0 {
		return nil, ErrEmptySVG
	}

	img := image.NewRGBA(image.Rect(0, 0, width, height))
	icon.SetTarget(0, 0, float64(width), float64(height))
	scanner := rasterx.NewScannerGV(width, height, img, img.Bounds())
	icon.Draw(rasterx.NewDasher(width, height, scanner), 1)
	return img, nil
}

// ApplyColorVariables rewrites fill and stroke colours that have a design
// variable into var(--name, colour). Both presentation attributes and
// style attribute entries are rewritten. Keys of vars are matched
// case-insensitively. The input is returned untouched when nothing
// matches.
func ApplyColorVariables(svg string, vars map[string]string) (string, error) {
	if len(vars) == 0 {
		return svg, nil
	}
	lookup := make(map[string]string, len(vars))
	for c, name := range vars {
		lookup[strings.ToLower(strings.TrimSpace(c))] = name
	}

	doc := etree.NewDocument()
	if err := doc.ReadFromString(svg); err != nil {
		return "", fmt.Errorf("parse svg: %w", err)
	}

	changed := false
	for _, el := range doc.FindElements("//*") {
		for i := range el.Attr {
			a := &el.Attr[i]
			if a.Space != "" {
				continue
			}
			switch a.Key {
			case "fill", "stroke":
				if v, ok := withVariable(lookup, a.Value); ok {
					a.Value = v
					changed = true
				}
			case "style":
				if v, ok := rewriteStyle(lookup, a.Value); ok {
					a.Value = v
					changed = true
				}
			}
		}
	}
	if !changed {
		return svg, nil
	}

	out, err := doc.WriteToString()
	if err != nil {
		return "", fmt.Errorf("write svg: %w", err)
	}
	return out, nil
}

func withVariable(lookup map[string]string, value string) (string, bool) {
	name, ok := lookup[strings.ToLower(strings.TrimSpace(value))]
	if !ok {
		return "", false
	}
	return fmt.Sprintf("var(--%s, %s)", name, value), true
}

func rewriteStyle(lookup map[string]string, value string) (string, bool) {
	decls := style.ParseDeclarations(value)
	changed := false
	for i, d := range decls {
		if d.Property != "fill" && d.Property != "stroke" {
			continue
		}
		if v, ok := withVariable(lookup, d.Value); ok {
			decls[i].Value = v
			changed = true
		}
	}
	if !changed {
		return "", false
	}
	return decls.String(), true
}
