// Package blocks builds the block/element page model: the root node becomes
// a block and every descendant becomes a flat, absolutely placed element.
package blocks

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/inamate/figconv/internal/normalize"
	"github.com/inamate/figconv/internal/style"
	"github.com/inamate/figconv/internal/typeid"
)

// Class tokens understood by the page templating stage.
const (
	classElement     = "gpc-blocos_bloco_elemento"
	classText        = "elemento_texto"
	classImage       = "elemento_imagem"
	classBox         = "elemento_caixa"
	classDivider     = "elemento_linha_horizontal"
	classEqualBorder = "borda_igual"
)

// neutralFilter resets every filter function the templating stage animates.
const neutralFilter = "hue-rotate(0deg) saturate(1) brightness(1) contrast(1) invert(0) sepia(0) blur(0px) grayscale(0)"

// Assets supplies renditions exported before the build.
type Assets interface {
	// ImageURL returns a data URL for a node with an image fill.
	ImageURL(id string) (string, bool)
	// IconURL returns a PNG data URL rasterized from a flattened node's SVG.
	IconURL(id string) (string, bool)
}

// Warner collects user-facing warnings for the run.
type Warner interface {
	Warn(msg string)
}

// Builder turns one normalized root into a Page. Use a new Builder per
// conversion.
type Builder struct {
	assets Assets
	warner Warner
	newID  func(prefix string) string

	root *normalize.Node
	page *Page
}

func New(assets Assets, warner Warner) *Builder {
	return &Builder{assets: assets, warner: warner, newID: typeid.New}
}

// Build converts root into a block and its descendants into elements.
// Gradient backgrounds are left as pending assets; see Page.Pending.
func (b *Builder) Build(root *normalize.Node) *Page {
	b.root = root
	b.page = &Page{Elements: []*Element{}}
	b.page.Block = b.block(root)
	for _, c := range root.Children {
		b.page.Elements = append(b.page.Elements, b.element(c)...)
	}
	return b.page
}

func (b *Builder) block(n *normalize.Node) *Block {
	l := style.For(n).CommonPosition().CommonShape().AutoLayout().List()

	rect := Rect{Width: n.Width, Height: n.Height}
	blk := &Block{
		ID: b.newID(typeid.PrefixBlock),
		Element: BlockElement{
			BoundingClientRect: same(rect),
			Order:              1,
			Styles:             stylesOf(l),
			Classes:            []string{},
		},
	}
	if n.HasImageFill() {
		url, _ := b.assets.ImageURL(n.ID)
		img := same(Image{File: url, Dimensions: Dimensions{Width: n.Width, Height: n.Height}})
		blk.Image = &img
	}
	return blk
}

func (b *Builder) elements(nodes []*normalize.Node) []*Element {
	var out []*Element
	for _, n := range nodes {
		out = append(out, b.element(n)...)
	}
	return out
}

func (b *Builder) element(n *normalize.Node) []*Element {
	if n.CanBeFlattened {
		if url, ok := b.assets.IconURL(n.ID); ok && url != "" {
			return []*Element{b.iconElement(n, url)}
		}
	}

	switch n.Kind() {
	case normalize.KindShape:
		return []*Element{b.containerElement(n)}
	case normalize.KindFrame:
		return append(b.elements(n.Children), b.containerElement(n))
	case normalize.KindSection:
		return append(b.elements(n.Children), b.sectionElement(n))
	case normalize.KindText:
		return []*Element{b.textElement(n)}
	case normalize.KindLine:
		return []*Element{b.lineElement(n)}
	case normalize.KindVector:
		b.warner.Warn("Vector is not supported")
		return nil
	}
	b.warner.Warn(fmt.Sprintf("%s node is not supported", n.Type))
	return nil
}

// newElement fills in the fields every element kind shares.
func (b *Builder) newElement(n *normalize.Node, class string, l style.List) *Element {
	id := b.newID(typeid.PrefixElement)
	return &Element{
		ID:                 id,
		BlockID:            b.page.Block.ID,
		BoundingClientRect: same(b.rectOf(n)),
		Classes:            fmt.Sprintf("%s %s |-| #%s#", classElement, class, id),
		Styles:             stylesOf(l),
	}
}

// rectOf places n relative to the block by accumulating offsets up to the
// root.
func (b *Builder) rectOf(n *normalize.Node) Rect {
	r := Rect{Width: n.Width, Height: n.Height}
	for cur := n; cur != nil && cur != b.root; cur = cur.Parent {
		r.Left += cur.X
		r.Top += cur.Y
	}
	return r
}

func (b *Builder) setContent(e *Element, content, css Fragment) {
	e.Content = same(content)
	e.CSS = same(css)
}

func (b *Builder) containerElement(n *normalize.Node) *Element {
	l := style.For(n).CommonPosition().CommonShape().List()
	e := b.newElement(n, classBox, l)
	s := l.Map()

	var backgroundImage any = "none"
	if n.HasImageFill() {
		url, _ := b.assets.ImageURL(n.ID)
		e.Image = &Image{File: url, Dimensions: Dimensions{Width: n.Width, Height: n.Height}}
		backgroundImage = "url(" + url + ")"
	} else if g := style.TopGradient(n.Fills); g != "" {
		backgroundImage = b.pending(e, n, g)
	}

	css := fragment(
		"opacity: "+valueOr(s, "opacity", "1")+"; ",
		"border: "+valueOr(s, "border", "0px")+"; ",
		"filter: "+neutralFilter+"; ",
		"border-radius: "+valueOr(s, "border-radius", "0")+"; ",
		"background-image: ", backgroundImage, "; ",
		"background-size: "+valueOr(s, "background-size", "cover")+"; ",
		"background-color: "+backgroundColor(s)+"; ",
		"background-position: "+valueOr(s, "background-position", "center")+"; ",
		"background-repeat: "+valueOr(s, "background-repeat", "no-repeat")+"; ",
		"width: 100%; ",
		"height: "+num(n.Height)+"px; ",
		"%z-index%",
	)
	b.setContent(e, boxContent(classBox+" "+classEqualBorder+" ", css), scoped(css))
	return e
}

func (b *Builder) sectionElement(n *normalize.Node) *Element {
	l := style.For(n).Size().Position().Background().List()
	e := b.newElement(n, classBox, l)
	s := l.Map()

	css := fragment(
		"opacity: 1; ",
		"border: 0px; ",
		"filter: "+neutralFilter+"; ",
		"border-radius: 0; ",
		"background-image: none; ",
		"background-size: cover; ",
		"background-color: "+backgroundColor(s)+"; ",
		"background-position: center; ",
		"background-repeat: no-repeat; ",
		"width: 100%; ",
		"height: "+num(n.Height)+"px; ",
		"%z-index%",
	)
	b.setContent(e, boxContent(classBox+" "+classEqualBorder+" ", css), scoped(css))
	return e
}

// lineElement draws a divider from the line's stroke.
func (b *Builder) lineElement(n *normalize.Node) *Element {
	l := style.For(n).CommonPosition().CommonShape().List()
	e := b.newElement(n, classDivider, l)
	s := l.Map()

	stroke := valueOr(s, "outline", valueOr(s, "border", "0px"))
	css := fragment("%z-index% border-bottom: " + stroke)
	b.setContent(e, boxContent(classDivider, css), scoped(css))
	return e
}

func (b *Builder) iconElement(n *normalize.Node, url string) *Element {
	l := style.For(n).Flattened().Position().Blend().List()
	e := b.newElement(n, classImage, l)
	e.Image = &Image{File: url, Dimensions: Dimensions{Width: n.Width, Height: n.Height}}

	css := fragment("width: 100%; height: " + num(n.Height) + "px; %z-index%")
	content := fragment(cleanContent(fmt.Sprintf(`<div class="conteudo %s" style="%s"><img src="%s" alt="%s" /></div>`,
		classImage, css.String(), url, n.UniqueName)))
	b.setContent(e, content, scoped(css))
	return e
}

// pending registers a gradient background for later rasterization.
func (b *Builder) pending(e *Element, n *normalize.Node, gradient string) *PendingAsset {
	a := &PendingAsset{
		ID:        b.newID(typeid.PrefixAsset),
		ElementID: e.ID,
		Gradient:  gradient,
		Width:     n.Width,
		Height:    n.Height,
	}
	b.page.pending = append(b.page.pending, a)
	return a
}

// boxContent wraps css as the inline style of a content div.
func boxContent(classes string, css Fragment) Fragment {
	f := fragment(`<div class="conteudo ` + classes + `" style="`)
	f = append(f, css...)
	f = append(f, fragment(`"></div>`)...)
	return cleanFragment(f)
}

// scoped wraps css in the element's scoped selector.
func scoped(css Fragment) Fragment {
	f := fragment("#e_%element-id% .c{")
	f = append(f, css...)
	return append(f, fragment("}")...)
}

// cleanFragment cleans the literal parts of f. Asset references are left
// untouched.
func cleanFragment(f Fragment) Fragment {
	out := make(Fragment, len(f))
	for i, p := range f {
		if p.asset == nil {
			p.text = cleanContent(p.text)
		}
		out[i] = p
	}
	return out
}

// stylesOf keys a declaration list by property, first occurrence winning.
func stylesOf(l style.List) PerDevice[map[string]string] {
	return PerDevice[map[string]string]{Desktop: l.Map(), Mobile: l.Map()}
}

func valueOr(s map[string]string, key, def string) string {
	if v, ok := s[key]; ok {
		return v
	}
	return def
}

// backgroundColor prefers an explicit background-color, then a plain
// background value. Images and gradients are drawn through
// background-image instead.
func backgroundColor(s map[string]string) string {
	if v, ok := s["background-color"]; ok {
		return v
	}
	if bg, ok := s["background"]; ok && !strings.Contains(bg, "url(") && !strings.Contains(bg, "gradient(") {
		return bg
	}
	return "transparent"
}

func num(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
