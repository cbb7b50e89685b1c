// Package convert runs a conversion end to end: normalize the selected
// node, export the renditions the renderers need, render, then resolve
// deferred gradient images.
package convert

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/inamate/figconv/internal/blocks"
	"github.com/inamate/figconv/internal/document"
	"github.com/inamate/figconv/internal/host"
	"github.com/inamate/figconv/internal/markup"
	"github.com/inamate/figconv/internal/normalize"
)

type Mode string

const (
	ModeHTML   Mode = "html"
	ModeBlocks Mode = "blocks"
)

var ErrUnknownMode = errors.New("unknown conversion mode")

// ParseMode validates a mode name.
func ParseMode(s string) (Mode, error) {
	switch Mode(s) {
	case ModeHTML, ModeBlocks:
		return Mode(s), nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownMode, s)
}

// Page is the block mode artifact as delivered to the page editor.
type Page struct {
	Block    *blocks.Block     `json:"block"`
	Elements []*blocks.Element `json:"elements"`
	Styles   []string          `json:"styles"`
	Scripts  []string          `json:"scripts"`
	Icons    map[string]string `json:"icons"`
}

// Result is the outcome of one conversion. Exactly one of Markup and Page
// is set, depending on Mode.
type Result struct {
	RunID    string         `json:"runId"`
	Mode     Mode           `json:"mode"`
	Markup   *markup.Result `json:"markup,omitempty"`
	Page     *Page          `json:"page,omitempty"`
	Warnings []string       `json:"warnings"`
}

// Payload is what a client receives as the converted artifact.
func (r *Result) Payload() any {
	if r.Page != nil {
		return r.Page
	}
	return r.Markup
}

type options struct {
	exportDelay    time.Duration
	maxConcurrency int
	classMode      bool
	gradients      GradientResolver
	exporter       func(*document.Document) host.Exporter
	classify       normalize.Option
}

type Option func(*options)

// WithExportDelay sets the delay before the first export after idle.
func WithExportDelay(d time.Duration) Option {
	return func(o *options) { o.exportDelay = d }
}

// WithMaxConcurrency bounds how many siblings are exported at once.
func WithMaxConcurrency(n int) Option {
	return func(o *options) {
		if n > 0 {
			o.maxConcurrency = n
		}
	}
}

// WithClassMode makes HTML output use classes and a stylesheet.
func WithClassMode(on bool) Option {
	return func(o *options) { o.classMode = on }
}

// WithGradients sets the default resolver for deferred gradient images.
func WithGradients(g GradientResolver) Option {
	return func(o *options) { o.gradients = g }
}

// WithExporter replaces the exporter built for each document. The default
// serves renditions embedded in the document.
func WithExporter(fn func(*document.Document) host.Exporter) Option {
	return func(o *options) { o.exporter = fn }
}

// WithNormalizeOption passes an option to the normalizer of every run.
func WithNormalizeOption(opt normalize.Option) Option {
	return func(o *options) { o.classify = opt }
}

// Converter holds run-independent settings. It is safe for concurrent
// use; every call starts a fresh Run.
type Converter struct {
	opts options
}

func New(opts ...Option) *Converter {
	o := options{
		exportDelay:    30 * time.Millisecond,
		maxConcurrency: 4,
		gradients:      NewLocalGradients(0, 0),
		exporter:       func(d *document.Document) host.Exporter { return host.NewStatic(d) },
	}
	for _, opt := range opts {
		opt(&o)
	}
	return &Converter{opts: o}
}

// Request selects what to convert.
type Request struct {
	Document *document.Document
	// RootID picks the node to convert. Empty means the first selected
	// node, or the document root when nothing is selected.
	RootID string
	Mode   Mode
	// Gradients overrides the converter's resolver for this request.
	Gradients GradientResolver
}

// Root resolves the node a request converts.
func (req Request) Root() (*document.RawNode, error) {
	if req.Document == nil || req.Document.Root == nil {
		return nil, document.ErrEmptyDocument
	}
	id := req.RootID
	if id == "" && len(req.Document.Selection) > 0 {
		id = req.Document.Selection[0]
	}
	if id == "" {
		return req.Document.Root, nil
	}
	return req.Document.Find(id)
}

// Convert runs one conversion. Per-node problems become warnings; errors
// are returned only for a missing root, a root that renders nothing, or
// cancellation.
func (c *Converter) Convert(ctx context.Context, req Request) (*Result, error) {
	if _, err := ParseMode(string(req.Mode)); err != nil {
		return nil, err
	}
	raw, err := req.Root()
	if err != nil {
		return nil, err
	}

	run := newRun(req.Mode, c.opts.exporter(req.Document), c.opts)
	logger := slog.With("run", run.ID, "mode", req.Mode, "root", raw.ID)
	logger.Info("conversion started")
	start := time.Now()

	var nopts []normalize.Option
	if c.opts.classify != nil {
		nopts = append(nopts, c.opts.classify)
	}
	root, err := normalize.New(nopts...).Normalize(raw)
	if err != nil {
		return nil, fmt.Errorf("normalize %s: %w", raw.ID, err)
	}

	if err := run.prepare(ctx, root); err != nil {
		return nil, fmt.Errorf("prepare exports: %w", err)
	}

	result := &Result{RunID: run.ID, Mode: req.Mode}
	switch req.Mode {
	case ModeHTML:
		var ropts []markup.Option
		if c.opts.classMode {
			ropts = append(ropts, markup.WithClasses())
		}
		out := markup.New(run, run.warnings, ropts...).Render(root)
		result.Markup = &out
	case ModeBlocks:
		page := blocks.New(run, run.warnings).Build(root)
		gradients := req.Gradients
		if gradients == nil {
			gradients = c.opts.gradients
		}
		if err := resolvePending(ctx, page, gradients); err != nil {
			return nil, err
		}
		result.Page = &Page{
			Block:    page.Block,
			Elements: page.Elements,
			Styles:   []string{},
			Scripts:  []string{},
			Icons:    map[string]string{},
		}
	}

	result.Warnings = run.warnings.List()
	logger.Info("conversion complete", "warnings", len(result.Warnings), "duration", time.Since(start))
	return result, nil
}

// resolvePending rasterizes deferred gradients one at a time, newest
// first. A failed or empty image resolves to none.
func resolvePending(ctx context.Context, page *blocks.Page, gradients GradientResolver) error {
	pending := page.Pending()
	for i := len(pending) - 1; i >= 0; i-- {
		if err := ctx.Err(); err != nil {
			return fmt.Errorf("resolve gradients: %w", err)
		}
		a := pending[i]
		url, err := gradients.ResolveGradient(ctx, GradientRequest{Asset: a, Element: page.Element(a.ElementID)})
		if err != nil {
			if ctxErr := ctx.Err(); ctxErr != nil {
				return fmt.Errorf("resolve gradients: %w", ctxErr)
			}
			slog.Warn("resolve gradient", "asset", a.ID, "element", a.ElementID, "error", err)
			url = ""
		}
		a.Resolve(url)
	}
	return nil
}
