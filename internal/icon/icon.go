// Package icon decides whether a subtree is simple enough to be exported as a
// single vector image instead of being rebuilt element by element.
package icon

import (
	"fmt"
	"log/slog"
	"math"

	"github.com/samber/lo"

	"github.com/inamate/figconv/internal/document"
)

// MaxSize is the largest width or height, in pixels, of a primitive or
// container still considered icon-sized.
const MaxSize = 64

type typeSet map[document.NodeType]struct{}

func newTypeSet(types ...document.NodeType) typeSet {
	s := make(typeSet, len(types))
	for _, t := range types {
		s[t] = struct{}{}
	}
	return s
}

func (s typeSet) has(t document.NodeType) bool {
	_, ok := s[t]
	return ok
}

var (
	primitiveTypes = newTypeSet(
		document.NodeTypeEllipse, document.NodeTypeRectangle, document.NodeTypeStar,
		document.NodeTypePolygon, document.NodeTypeLine,
	)
	complexVectorTypes = newTypeSet(document.NodeTypeVector, document.NodeTypeBooleanOperation)
	ignoreSizeTypes    = newTypeSet(
		document.NodeTypeVector, document.NodeTypeBooleanOperation,
		document.NodeTypePolygon, document.NodeTypeStar,
	)
	containerTypes = newTypeSet(
		document.NodeTypeFrame, document.NodeTypeGroup,
		document.NodeTypeComponent, document.NodeTypeInstance,
	)
	disallowedTypes = newTypeSet(
		document.NodeTypeSlice, document.NodeTypeConnector, document.NodeTypeSticky,
		document.NodeTypeShapeWithText, document.NodeTypeCodeBlock, document.NodeTypeWidget,
		document.NodeTypeText, document.NodeTypeComponentSet,
	)
	disallowedChildTypes = newTypeSet(
		document.NodeTypeFrame, document.NodeTypeComponent, document.NodeTypeInstance,
		document.NodeTypeText, document.NodeTypeSlice, document.NodeTypeConnector,
		document.NodeTypeSticky, document.NodeTypeShapeWithText, document.NodeTypeCodeBlock,
		document.NodeTypeWidget, document.NodeTypeComponentSet,
	)
)

// Candidate is a node under classification together with its unrotated size.
type Candidate struct {
	Node   *document.RawNode
	Width  float64
	Height float64
}

// IsLikelyIcon reports whether the candidate should be flattened.
func IsLikelyIcon(c Candidate) bool {
	ok, reason := Classify(c)
	slog.Debug("icon classification", "node", c.Node.ID, "name", c.Node.Name, "type", c.Node.Type, "icon", ok, "reason", reason)
	return ok
}

// Classify returns the decision and the rule that produced it.
func Classify(c Candidate) (bool, string) {
	n := c.Node
	switch {
	case disallowedTypes.has(n.Type):
		return false, fmt.Sprintf("disallowed type %s", n.Type)
	case hasSVGExportSetting(n):
		return true, "has SVG export settings"
	case !(c.Width > 0 && c.Height > 0):
		if ignoreSizeTypes.has(n.Type) {
			return true, fmt.Sprintf("%s without dimensions", n.Type)
		}
		return false, "no dimensions"
	case ignoreSizeTypes.has(n.Type):
		return true, fmt.Sprintf("%s, size ignored", n.Type)
	case primitiveTypes.has(n.Type):
		if c.typicalSize() {
			return true, fmt.Sprintf("%s with typical icon size", n.Type)
		}
		return false, fmt.Sprintf("%s too large (%s)", n.Type, c.sizeLabel())
	case containerTypes.has(n.Type) && n.Children != nil:
		return classifyContainer(c)
	}
	return false, fmt.Sprintf("type %s is not an icon candidate", n.Type)
}

func classifyContainer(c Candidate) (bool, string) {
	if !c.typicalSize() {
		return false, fmt.Sprintf("container too large (%s)", c.sizeLabel())
	}

	visible := c.Node.VisibleChildren()
	if len(visible) == 0 {
		if hasVisibleFill(c.Node) || hasVisibleStroke(c.Node) {
			return true, "empty container with visible fill or stroke"
		}
		return false, "empty container without visible style"
	}

	disallowed, valid := scanChildren(visible)
	switch {
	case disallowed:
		return false, "container has a disallowed descendant"
	case !valid:
		return false, "container has no vector or primitive content"
	}
	return true, "container with vector content and typical size"
}

// scanChildren walks children depth-first, descending only into groups, and
// stops at the first disallowed type.
func scanChildren(children []*document.RawNode) (disallowed, valid bool) {
	for _, child := range children {
		if !child.IsVisible() {
			continue
		}
		if disallowedChildTypes.has(child.Type) {
			return true, valid
		}
		if complexVectorTypes.has(child.Type) || primitiveTypes.has(child.Type) {
			valid = true
			continue
		}
		if child.Type == document.NodeTypeGroup {
			d, v := scanChildren(child.Children)
			if d {
				return true, valid
			}
			valid = valid || v
		}
	}
	return false, valid
}

func (c Candidate) typicalSize() bool {
	return c.Width > 0 && c.Height > 0 && c.Width <= MaxSize && c.Height <= MaxSize
}

func (c Candidate) sizeLabel() string {
	return fmt.Sprintf("%vx%v", math.Round(c.Width), math.Round(c.Height))
}

func hasSVGExportSetting(n *document.RawNode) bool {
	return lo.ContainsBy(n.ExportSettings, func(s document.ExportSetting) bool {
		return s.Format == "SVG"
	})
}

func hasVisibleFill(n *document.RawNode) bool {
	return lo.ContainsBy(n.Fills, func(p document.Paint) bool {
		return p.IsVisible() && p.OpacityOr(1) > 0
	})
}

func hasVisibleStroke(n *document.RawNode) bool {
	return lo.ContainsBy(n.Strokes, document.Paint.IsVisible)
}
