// Package markup renders a normalized tree as nested HTML with inline
// styles, or with class-based styles collected into a stylesheet.
package markup

import (
	"fmt"
	"strings"

	"github.com/gosimple/slug"

	"github.com/inamate/figconv/internal/normalize"
	"github.com/inamate/figconv/internal/style"
)

// Result is the HTML mode artifact. CSS is only set in class mode.
type Result struct {
	HTML string `json:"html"`
	CSS  string `json:"css,omitempty"`
}

// Assets supplies renditions exported before rendering starts.
type Assets interface {
	// SVG returns the exported markup of a flattened node.
	SVG(id string) (string, bool)
	// ImageURL returns a data URL for a node with an image fill.
	ImageURL(id string) (string, bool)
}

// Warner collects user-facing warnings for the run.
type Warner interface {
	Warn(msg string)
}

type Option func(*Renderer)

// WithClasses makes the renderer emit class attributes and collect the
// declarations into Result.CSS.
func WithClasses() Option {
	return func(r *Renderer) { r.classMode = true }
}

type classRule struct {
	name  string
	style style.List
}

// Renderer holds the state of one render. It is not safe for concurrent
// use; create one per conversion.
type Renderer struct {
	assets    Assets
	warner    Warner
	classMode bool

	rules      []classRule
	classNames map[string]int
}

func New(assets Assets, warner Warner, opts ...Option) *Renderer {
	r := &Renderer{
		assets:     assets,
		warner:     warner,
		classNames: make(map[string]int),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Render renders the given roots in order.
func (r *Renderer) Render(roots ...*normalize.Node) Result {
	html := strings.TrimPrefix(r.nodes(roots), "\n")

	out := Result{HTML: html}
	if len(r.rules) > 0 {
		out.CSS = r.stylesheet()
	}
	return out
}

func (r *Renderer) nodes(nodes []*normalize.Node) string {
	var b strings.Builder
	for _, n := range nodes {
		b.WriteString(r.node(n))
	}
	return b.String()
}

func (r *Renderer) node(n *normalize.Node) string {
	if n.CanBeFlattened {
		if svg, ok := r.assets.SVG(n.ID); ok && svg != "" {
			return r.svgWrapper(n, svg)
		}
	}

	switch n.Kind() {
	case normalize.KindShape:
		return r.container(n, nil, nil)
	case normalize.KindFrame:
		return r.frame(n)
	case normalize.KindSection:
		return r.section(n)
	case normalize.KindText:
		return r.text(n)
	case normalize.KindLine:
		return r.line(n)
	case normalize.KindVector:
		r.warner.Warn("Vector is not supported")
		return r.container(n, nil, nil)
	}
	r.warner.Warn(fmt.Sprintf("%s node is not supported", n.Type))
	return ""
}

func (r *Renderer) svgWrapper(n *normalize.Node, svg string) string {
	b := style.For(n).Flattened().Position()
	return "\n<div data-svg-wrapper" + r.attrs(n.UniqueName, b.List()) + ">\n" + svg + "</div>"
}

func (r *Renderer) frame(n *normalize.Node) string {
	return r.container(n, func() string { return r.nodes(n.Children) }, style.AutoLayout(n))
}

// container renders a box. Zero-sized boxes contribute only their children.
// The box's own class is registered before its children render so the
// stylesheet follows document order.
func (r *Renderer) container(n *normalize.Node, render func() string, extra style.List) string {
	if render == nil {
		render = func() string { return "" }
	}
	if n.Width <= 0 || n.Height <= 0 {
		return render()
	}

	b := style.For(n).CommonPosition().CommonShape()

	tag, src := "div", ""
	if n.HasImageFill() {
		url, _ := r.assets.ImageURL(n.ID)
		if len(n.Children) > 0 {
			b.Add("background-image", "url("+url+")")
		} else {
			tag = "img"
			src = ` src="` + url + `"`
		}
	}
	b.Append(extra)

	attrs := r.attrs(n.UniqueName, b.List()) + src
	children := render()
	switch {
	case children != "":
		return "\n<" + tag + attrs + ">" + indent(children) + "\n</" + tag + ">"
	case tag == "img":
		return "\n<img" + attrs + " />"
	}
	return "\n<div" + attrs + "></div>"
}

func (r *Renderer) section(n *normalize.Node) string {
	attrs := r.attrs(n.UniqueName, style.For(n).Size().Position().Background().List())
	children := r.nodes(n.Children)
	if children != "" {
		return "\n<div" + attrs + ">" + indent(children) + "\n</div>"
	}
	return "\n<div" + attrs + "></div>"
}

func (r *Renderer) line(n *normalize.Node) string {
	b := style.For(n).CommonPosition().CommonShape()
	return "\n<div" + r.attrs(n.UniqueName, b.List()) + "></div>"
}

// text renders a wrapper holding one paragraph. A single run folds its
// style into the wrapper; several runs each keep their own.
func (r *Renderer) text(n *normalize.Node) string {
	b := style.For(n).CommonPosition().TextTrim().TextAlign()
	runs := style.Runs(n)

	if len(runs) == 1 {
		b.Append(runs[0].Style)
	}
	attrs := r.attrs(n.UniqueName, b.List())

	var content strings.Builder
	if len(runs) == 1 {
		fmt.Fprintf(&content, "<%s>%s</%s>", runs[0].Tag, runs[0].Text, runs[0].Tag)
	} else {
		for _, run := range runs {
			fmt.Fprintf(&content, "<%s%s>%s</%s>", run.Tag, r.attrs(run.ID, run.Style), run.Text, run.Tag)
		}
	}
	return "\n<div" + attrs + "><p>" + content.String() + "</p></div>"
}

// attrs renders either a style attribute or, in class mode, a class
// attribute whose declarations go to the stylesheet.
func (r *Renderer) attrs(name string, l style.List) string {
	if !r.classMode {
		return l.Attr()
	}
	if len(l) == 0 {
		return ""
	}
	cls := r.className(name)
	r.rules = append(r.rules, classRule{name: cls, style: l})
	return ` class="` + cls + `"`
}

func (r *Renderer) className(name string) string {
	base := slug.Make(name)
	switch {
	case base == "":
		base = "figma"
	case base[0] >= '0' && base[0] <= '9':
		base = "f" + base
	}

	count := r.classNames[base]
	r.classNames[base] = count + 1
	if count == 0 {
		return base
	}
	return fmt.Sprintf("%s_%02d", base, count)
}

func (r *Renderer) stylesheet() string {
	blocks := make([]string, 0, len(r.rules))
	for _, rule := range r.rules {
		decls := make([]string, 0, len(rule.style))
		for _, d := range rule.style {
			decls = append(decls, d.String()+";")
		}
		blocks = append(blocks, "."+rule.name+" {\n  "+strings.Join(decls, "\n  ")+"\n}")
	}
	return strings.Join(blocks, "\n\n")
}

// indent prefixes every non-blank line with two spaces.
func indent(s string) string {
	lines := strings.Split(s, "\n")
	for i, line := range lines {
		if strings.TrimSpace(line) != "" {
			lines[i] = "  " + line
		}
	}
	return strings.Join(lines, "\n")
}
