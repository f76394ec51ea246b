package pipeline

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"
	"strconv"
	"time"

	"github.com/charmbracelet/log"

	"github.com/phylonetworks/reticula/pkg/cache"
	"github.com/phylonetworks/reticula/pkg/newick"
	"github.com/phylonetworks/reticula/pkg/observability"
	"github.com/phylonetworks/reticula/pkg/phylo"
	"github.com/phylonetworks/reticula/pkg/phylo/constraint"
	"github.com/phylonetworks/reticula/pkg/phylo/move"
	"github.com/phylonetworks/reticula/pkg/runstore"
)

// Runner encapsulates pipeline execution with caching and run persistence.
// Both CLI and API can use this to avoid duplicating search logic.
//
// The Runner is stateless except for the cache, store and logger - it does
// not keep pipeline results. Multiple goroutines can safely use the same
// Runner with different options.
type Runner struct {
	Cache  cache.Cache
	Keyer  cache.Keyer
	Store  runstore.Store
	Logger *log.Logger
}

// NewRunner creates a runner with the given cache, keyer and run store.
// If keyer is nil, a DefaultKeyer is used.
// If cache is nil, a NullCache is used (caching disabled).
// If store is nil, an in-memory store is used (runs not persisted).
func NewRunner(c cache.Cache, keyer cache.Keyer, store runstore.Store, logger *log.Logger) *Runner {
	if keyer == nil {
		keyer = cache.NewDefaultKeyer()
	}
	if c == nil {
		c = cache.NewNullCache()
	}
	if store == nil {
		store = runstore.NewMemoryStore()
	}
	if logger == nil {
		logger = log.Default()
	}
	return &Runner{
		Cache:  c,
		Keyer:  keyer,
		Store:  store,
		Logger: logger,
	}
}

// Execute runs the complete load → search → record pipeline.
func (r *Runner) Execute(ctx context.Context, opts Options) (*Result, error) {
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, fmt.Errorf("invalid options: %w", err)
	}
	r.applyLogger(&opts)

	g, cs, err := r.Load(opts)
	if err != nil {
		return nil, err
	}

	run := runstore.New(opts.Newick)
	result := &Result{Network: g, Run: run}
	result.Stats.TaxonCount = len(g.Leaves())
	result.Stats.HybridCount = len(g.Hybrids())

	r.Logger.Info("loaded network",
		"taxa", result.Stats.TaxonCount,
		"hybrids", result.Stats.HybridCount,
		"constraints", len(cs))

	hooks := observability.Search()
	hooks.OnSearchStart(ctx, run.ID, result.Stats.TaxonCount, result.Stats.HybridCount)

	searchStart := time.Now()
	err = r.search(ctx, g, cs, opts, result)
	result.Stats.SearchTime = time.Since(searchStart)
	hooks.OnSearchComplete(ctx, run.ID, result.Stats.Steps, result.Stats.SearchTime, err)
	if err != nil {
		return nil, err
	}

	best, err := newick.Write(g)
	if err != nil {
		return nil, fmt.Errorf("serialize result: %w", err)
	}
	result.BestNewick = best

	run.Finish(best, result.BestScore, result.Stats.Steps, result.Stats.Applied, result.Stats.Rejected)
	if err := r.Store.Save(ctx, run); err != nil {
		r.Logger.Warn("could not persist run", "run", run.ID, "err", err)
	}

	r.Logger.Info("search finished",
		"run", run.ID,
		"steps", result.Stats.Steps,
		"applied", result.Stats.Applied,
		"rejected", result.Stats.Rejected,
		"score", result.BestScore,
		"duration", result.Stats.SearchTime)

	return result, nil
}

// Load parses the input network and verifies the search preconditions:
// structural invariants hold, no internal node has degree two, and every
// constraint resolves to an intact stem edge.
func (r *Runner) Load(opts Options) (*phylo.Network, []*constraint.TopologyConstraint, error) {
	if err := opts.ValidateForSearch(); err != nil {
		return nil, nil, err
	}

	g, err := newick.Parse(opts.Newick)
	if err != nil {
		return nil, nil, fmt.Errorf("parse network: %w", err)
	}
	if err := g.CheckNetwork(); err != nil {
		return nil, nil, fmt.Errorf("check network: %w", err)
	}

	cs, err := BuildConstraints(g, opts.Constraints)
	if err != nil {
		return nil, nil, err
	}
	if err := constraint.CheckStems(g, cs); err != nil {
		return nil, nil, err
	}
	return g, cs, nil
}

// search runs the bounded randomized walk, mutating g in place.
func (r *Runner) search(ctx context.Context, g *phylo.Network, cs []*constraint.TopologyConstraint, opts Options, result *Result) error {
	rng := rand.New(rand.NewPCG(opts.Seed, opts.Seed^0x9e3779b97f4a7c15))
	mopts := opts.MoveOptions()
	hooks := observability.Search()

	best, hit, err := r.ScoreWithCacheInfo(ctx, g, opts)
	if err != nil {
		return fmt.Errorf("score input network: %w", err)
	}
	if hit {
		result.Stats.ScoreHits++
	}
	result.BestScore = best

	// NNI moves relink edges but never create or destroy them, so the
	// slice stays valid across the whole walk.
	edges := g.Edges()

	for step := 0; step < opts.MaxMoves; step++ {
		if err := ctx.Err(); err != nil {
			return err
		}
		result.Stats.Steps++

		focus := edges[rng.IntN(len(edges))]
		hooks.OnMoveProposed(ctx, focus.Number, move.Count(focus))

		moveStart := time.Now()
		m, err := move.ApplyRandom(g, focus, rng, mopts, cs)
		if errors.Is(err, move.ErrNoMove) {
			result.Stats.Rejected++
			hooks.OnMoveRejected(ctx, focus.Number, err)
			continue
		}
		if err != nil {
			return fmt.Errorf("edge %d: %w", focus.Number, err)
		}

		score, hit, err := r.ScoreWithCacheInfo(ctx, g, opts)
		if err != nil {
			if uerr := m.Undo(); uerr != nil {
				return fmt.Errorf("undo after score failure: %w", uerr)
			}
			return fmt.Errorf("score candidate: %w", err)
		}
		if hit {
			result.Stats.ScoreHits++
		}

		if score < best {
			if err := m.Undo(); err != nil {
				return fmt.Errorf("undo rejected move: %w", err)
			}
			result.Stats.Rejected++
			hooks.OnMoveUndone(ctx, focus.Number)
			continue
		}

		best = score
		result.BestScore = best
		result.Stats.Applied++
		hooks.OnMoveApplied(ctx, focus.Number, time.Since(moveStart))
		r.Logger.Debug("applied move", "edge", focus.Number, "score", score)
	}
	return nil
}

// ScoreWithCacheInfo scores the network with caching and returns cache hit
// info. The cache key is derived from the canonical serialization of the
// topology, so revisited topologies are never rescored.
func (r *Runner) ScoreWithCacheInfo(ctx context.Context, g *phylo.Network, opts Options) (float64, bool, error) {
	opts.SetScoreDefaults()

	s, err := newick.Write(g)
	if err != nil {
		return 0, false, fmt.Errorf("serialize for cache key: %w", err)
	}
	key := r.Keyer.ScoreKey(cache.Hash([]byte(s)), opts.ScoreKeyOpts())

	if data, hit, err := r.Cache.Get(ctx, key); err == nil && hit {
		if v, err := strconv.ParseFloat(string(data), 64); err == nil {
			return v, true, nil // Cache hit
		}
		// If deserialization fails, fall through to rescore
	}

	v, err := opts.Scorer.Score(ctx, g)
	if err != nil {
		return 0, false, err
	}
	_ = r.Cache.Set(ctx, key, []byte(strconv.FormatFloat(v, 'g', -1, 64)), cache.TTLScore)

	return v, false, nil // Cache miss
}

// Score is a convenience wrapper that calls ScoreWithCacheInfo and discards
// the cache hit info.
func (r *Runner) Score(ctx context.Context, g *phylo.Network, opts Options) (float64, error) {
	v, _, err := r.ScoreWithCacheInfo(ctx, g, opts)
	return v, err
}

// Close releases resources held by the runner.
func (r *Runner) Close() error {
	var errs []error
	if r.Cache != nil {
		errs = append(errs, r.Cache.Close())
	}
	if r.Store != nil {
		errs = append(errs, r.Store.Close())
	}
	return errors.Join(errs...)
}

// applyLogger sets the runner's logger on options if not already set.
func (r *Runner) applyLogger(opts *Options) {
	if opts.Logger == nil {
		opts.Logger = r.Logger
	}
}
