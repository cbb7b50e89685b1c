package style

import "github.com/inamate/figconv/internal/normalize"

// Builder accumulates declarations for one node in the fixed order the
// renderers rely on: position, size, padding, blend, fill, shadow,
// border, blur.
type Builder struct {
	node      *normalize.Node
	flattened bool
	list      List
}

func For(n *normalize.Node) *Builder {
	return &Builder{node: n}
}

// Flattened marks the node as rendered from an exported image, which
// changes how it is positioned.
func (b *Builder) Flattened() *Builder {
	b.flattened = true
	return b
}

// CommonPosition adds position, size, padding and blend.
func (b *Builder) CommonPosition() *Builder {
	return b.Position().Size().Padding().Blend()
}

// CommonShape adds fill, shadow, border and blur.
func (b *Builder) CommonShape() *Builder {
	return b.Fills().Shadow().Border().Blur()
}

func (b *Builder) Position() *Builder {
	b.list.Append(Position(b.node, b.flattened))
	return b
}

func (b *Builder) Size() *Builder {
	b.list.Append(Size(b.node))
	return b
}

func (b *Builder) Padding() *Builder {
	b.list.Append(Padding(b.node))
	return b
}

func (b *Builder) Blend() *Builder {
	b.list.Append(Blend(b.node))
	return b
}

func (b *Builder) Fills() *Builder {
	b.list.Append(Fills(b.node))
	return b
}

// Background adds the fills as background layers whatever the node kind.
func (b *Builder) Background() *Builder {
	b.list.Append(BackgroundFills(b.node.Fills))
	return b
}

func (b *Builder) Shadow() *Builder {
	b.list.Add("box-shadow", Shadow(b.node))
	return b
}

func (b *Builder) Border() *Builder {
	b.list.Append(Border(b.node))
	return b
}

func (b *Builder) Blur() *Builder {
	b.list.Append(Blur(b.node))
	return b
}

func (b *Builder) TextTrim() *Builder {
	b.list.Append(TextTrim(b.node))
	return b
}

func (b *Builder) TextAlign() *Builder {
	b.list.Append(TextAlign(b.node))
	return b
}

func (b *Builder) AutoLayout() *Builder {
	b.list.Append(AutoLayout(b.node))
	return b
}

func (b *Builder) Add(property, value string) *Builder {
	b.list.Add(property, value)
	return b
}

func (b *Builder) Append(l List) *Builder {
	b.list.Append(l)
	return b
}

// List returns the declarations collected so far.
func (b *Builder) List() List {
	return b.list
}
