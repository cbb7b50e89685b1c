package convert

import (
	"context"
	"log/slog"
	"math"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/inamate/figconv/internal/asset"
	"github.com/inamate/figconv/internal/host"
	"github.com/inamate/figconv/internal/normalize"
	"github.com/inamate/figconv/internal/typeid"
)

const imageWarning = "Some images exported as Base64 PNG"

// Warnings is the run's deduplicated warning set, in first-seen order.
type Warnings struct {
	runID string

	mu   sync.Mutex
	seen map[string]struct{}
	list []string
}

func newWarnings(runID string) *Warnings {
	return &Warnings{runID: runID, seen: make(map[string]struct{})}
}

func (w *Warnings) Warn(msg string) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if _, ok := w.seen[msg]; ok {
		return
	}
	w.seen[msg] = struct{}{}
	w.list = append(w.list, msg)
	slog.Warn("conversion warning", "run", w.runID, "message", msg)
}

// List returns a copy of the warnings recorded so far.
func (w *Warnings) List() []string {
	w.mu.Lock()
	defer w.mu.Unlock()
	out := make([]string, len(w.list))
	copy(out, w.list)
	return out
}

// Run is the state of one conversion: export memo and throttle, the
// renditions prepared for the renderers and the warning set. Nothing is
// shared between runs.
type Run struct {
	ID       string
	mode     Mode
	exports  *host.Run
	warnings *Warnings
	limit    int

	mu        sync.Mutex
	svgs      map[string]string
	imageURLs map[string]string
	iconURLs  map[string]string
}

func newRun(mode Mode, exporter host.Exporter, opts options) *Run {
	id := typeid.NewRunID()
	return &Run{
		ID:        id,
		mode:      mode,
		exports:   host.NewRun(exporter, opts.exportDelay),
		warnings:  newWarnings(id),
		limit:     opts.maxConcurrency,
		svgs:      make(map[string]string),
		imageURLs: make(map[string]string),
		iconURLs:  make(map[string]string),
	}
}

func (r *Run) Warnings() *Warnings { return r.warnings }

func (r *Run) SVG(id string) (string, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	v, ok := r.svgs[id]
	return v, ok
}

func (r *Run) ImageURL(id string) (string, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	v, ok := r.imageURLs[id]
	return v, ok
}

func (r *Run) IconURL(id string) (string, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	v, ok := r.iconURLs[id]
	return v, ok
}

func (r *Run) set(m map[string]string, id, v string) {
	r.mu.Lock()
	m[id] = v
	r.mu.Unlock()
}

// prepare exports every rendition the renderers will ask for. Siblings are
// exported concurrently; a failed export is logged and leaves the node to
// style-based rendering. Only cancellation aborts the walk.
func (r *Run) prepare(ctx context.Context, n *normalize.Node) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	if n.CanBeFlattened && r.prepareFlattened(ctx, n) {
		return nil
	}
	if n.HasImageFill() {
		r.prepareImage(ctx, n)
	}
	if len(n.Children) == 0 {
		return nil
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(r.limit)
	for _, c := range n.Children {
		g.Go(func() error {
			return r.prepare(gctx, c)
		})
	}
	return g.Wait()
}

// prepareFlattened exports a flattened subtree as SVG. It reports whether
// the node got a rendition.
func (r *Run) prepareFlattened(ctx context.Context, n *normalize.Node) bool {
	b, err := r.exports.Export(ctx, n.ID, host.Settings{Format: host.FormatSVG})
	if err != nil {
		slog.Warn("export svg", "node", n.ID, "type", n.Type, "error", err)
		return false
	}
	svg := string(b)

	if r.mode == ModeBlocks {
		url, err := asset.SVGDataURL(svg, ceil(n.Width), ceil(n.Height))
		if err != nil {
			slog.Warn("rasterize svg", "node", n.ID, "type", n.Type, "error", err)
			return false
		}
		r.set(r.iconURLs, n.ID, url)
		return true
	}

	if vars := r.exports.ColorVariables(n.ID); len(vars) > 0 {
		rewritten, err := asset.ApplyColorVariables(svg, vars)
		if err != nil {
			slog.Warn("apply colour variables", "node", n.ID, "error", err)
		} else {
			svg = rewritten
		}
	}
	r.set(r.svgs, n.ID, svg)
	return true
}

func (r *Run) prepareImage(ctx context.Context, n *normalize.Node) {
	b, err := r.exports.Export(ctx, n.ID, host.Settings{
		Format:          host.FormatPNG,
		Constraint:      host.Constraint{Type: host.ConstraintScale, Value: 1},
		ExcludeChildren: len(n.Children) > 0,
	})
	if err != nil {
		slog.Warn("export png", "node", n.ID, "type", n.Type, "error", err)
		return
	}
	r.warnings.Warn(imageWarning)
	r.set(r.imageURLs, n.ID, asset.PNGDataURLFromBytes(b))
}

func ceil(v float64) int {
	return int(math.Ceil(v))
}
