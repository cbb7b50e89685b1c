package convert

import (
	"context"

	"github.com/inamate/figconv/internal/asset"
	"github.com/inamate/figconv/internal/blocks"
)

// GradientRequest asks for one deferred gradient image. Element is the
// element whose background the image becomes.
type GradientRequest struct {
	Asset   *blocks.PendingAsset
	Element *blocks.Element
}

// GradientResolver turns a gradient into an image URL. An empty URL
// means no image.
type GradientResolver interface {
	ResolveGradient(ctx context.Context, req GradientRequest) (string, error)
}

// GradientFunc adapts a function to GradientResolver.
type GradientFunc func(ctx context.Context, req GradientRequest) (string, error)

func (f GradientFunc) ResolveGradient(ctx context.Context, req GradientRequest) (string, error) {
	return f(ctx, req)
}

// LocalGradients rasterizes gradients in-process at a fixed size.
type LocalGradients struct {
	Width, Height int
}

// NewLocalGradients creates a rasterizing resolver; non-positive sizes use
// the defaults.
func NewLocalGradients(width, height int) *LocalGradients {
	if width <= 0 {
		width = asset.DefaultGradientWidth
	}
	if height <= 0 {
		height = asset.DefaultGradientHeight
	}
	return &LocalGradients{Width: width, Height: height}
}

func (l *LocalGradients) ResolveGradient(ctx context.Context, req GradientRequest) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	return asset.GradientDataURL(req.Asset.Gradient, l.Width, l.Height)
}
