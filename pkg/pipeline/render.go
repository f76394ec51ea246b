package pipeline

import (
	"context"
	"fmt"

	"github.com/phylonetworks/reticula/pkg/cache"
	"github.com/phylonetworks/reticula/pkg/newick"
	"github.com/phylonetworks/reticula/pkg/phylo"
	"github.com/phylonetworks/reticula/pkg/render/nodelink"
)

// RenderWithCacheInfo renders a figure of the network with caching and
// returns cache hit info. The cache key combines the topology hash with the
// output format and detail level.
func (r *Runner) RenderWithCacheInfo(ctx context.Context, g *phylo.Network, opts Options) ([]byte, bool, error) {
	if err := opts.ValidateForRender(); err != nil {
		return nil, false, err
	}
	r.applyLogger(&opts)

	s, err := newick.Write(g)
	if err != nil {
		return nil, false, fmt.Errorf("serialize for cache key: %w", err)
	}
	key := r.Keyer.RenderKey(cache.Hash([]byte(s)), opts.RenderKeyOpts())

	if data, hit, err := r.Cache.Get(ctx, key); err == nil && hit {
		return data, true, nil // Cache hit
	}

	data, err := renderFigure(g, opts)
	if err != nil {
		return nil, false, err
	}
	_ = r.Cache.Set(ctx, key, data, cache.TTLRender)

	return data, false, nil // Cache miss
}

// Render is a convenience wrapper that calls RenderWithCacheInfo and
// discards the cache hit info.
func (r *Runner) Render(ctx context.Context, g *phylo.Network, opts Options) ([]byte, error) {
	data, _, err := r.RenderWithCacheInfo(ctx, g, opts)
	return data, err
}

// renderFigure generates the figure without caching.
func renderFigure(g *phylo.Network, opts Options) ([]byte, error) {
	dot := nodelink.ToDOT(g, nodelink.Options{Detailed: opts.Detailed})
	switch opts.Format {
	case FormatDOT:
		return []byte(dot), nil
	case FormatSVG:
		return nodelink.RenderSVG(dot)
	case FormatPNG:
		return nodelink.RenderPNG(dot, DefaultPNGScale)
	case FormatPDF:
		return nodelink.RenderPDF(dot)
	default:
		return nil, fmt.Errorf("invalid format: %q", opts.Format)
	}
}
