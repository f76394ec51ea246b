// Package pipeline runs rearrangement searches over semidirected
// phylogenetic networks.
//
// This package implements the complete load → search → record pipeline that
// can be used by CLI and API components. By centralizing this logic, we
// ensure consistent behavior across all entry points and avoid code
// duplication.
//
// # Architecture
//
// The pipeline consists of three stages:
//
//  1. Load: parse the extended Newick input and verify the search
//     preconditions (structural invariants, no degree-two nodes, intact
//     constraint stems)
//  2. Search: a bounded randomized walk of nearest-neighbor interchanges,
//     with move acceptance delegated to a pluggable Scorer
//  3. Record: persist the run summary and cache scores and figures
//
// # Usage
//
// Create a Runner and execute a search:
//
//	runner := pipeline.NewRunner(cache, nil, store, logger)
//	opts := pipeline.Options{
//	    Newick:   "((A:1,B:1):1,C:1);",
//	    MaxMoves: 200,
//	}
//	result, err := runner.Execute(ctx, opts)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	fmt.Println(result.BestNewick)
//
// Run individual stages:
//
//	// Load only
//	g, cs, err := runner.Load(opts)
//
//	// Score an existing network
//	score, err := runner.Score(ctx, g, opts)
//
//	// Render a figure
//	data, err := runner.Render(ctx, g, opts)
package pipeline

import (
	"fmt"
	"io"
	"time"

	"github.com/charmbracelet/log"

	"github.com/phylonetworks/reticula/pkg/cache"
	"github.com/phylonetworks/reticula/pkg/phylo"
	"github.com/phylonetworks/reticula/pkg/phylo/constraint"
	"github.com/phylonetworks/reticula/pkg/phylo/move"
	"github.com/phylonetworks/reticula/pkg/runstore"
)

// =============================================================================
// Default Values - Single Source of Truth for CLI and API
// =============================================================================

const (
	// DefaultMaxMoves is the number of rearrangements attempted per search.
	// Each attempt proposes one move on a randomly chosen edge; rejected
	// proposals count toward the budget.
	DefaultMaxMoves = 100

	// DefaultSeed is the default random seed for reproducibility.
	DefaultSeed = uint64(42)

	// DefaultPNGScale is the raster scale factor for PNG output.
	DefaultPNGScale = 2.0
)

// Format constants for figure output formats.
const (
	FormatDOT = "dot"
	FormatSVG = "svg"
	FormatPNG = "png"
	FormatPDF = "pdf"
)

// ValidFormats is the set of supported figure output formats.
var ValidFormats = map[string]bool{
	FormatDOT: true,
	FormatSVG: true,
	FormatPNG: true,
	FormatPDF: true,
}

// Constraint type names accepted in ConstraintSpec.
const (
	ConstraintClade   = "clade"
	ConstraintSpecies = "species"
)

// =============================================================================
// Options - Pipeline Configuration
// =============================================================================

// Options contains all configuration for a search pipeline run.
// This struct supports JSON serialization for API requests.
type Options struct {
	// Search options
	Newick   string `json:"newick"`
	MaxMoves int    `json:"max_moves,omitempty"`
	Seed     uint64 `json:"seed,omitempty"`

	// Allow3Cycles admits moves that create an undirected 3-cycle.
	Allow3Cycles bool `json:"allow_3cycles,omitempty"`

	// AllowHybridLadders admits moves that stack two reticulations.
	AllowHybridLadders bool `json:"allow_hybrid_ladders,omitempty"`

	// Constraints are taxon groups the search must keep monophyletic.
	Constraints []ConstraintSpec `json:"constraints,omitempty"`

	// Render options
	Format   string `json:"format,omitempty"`
	Detailed bool   `json:"detailed,omitempty"` // branch lengths and node numbers

	// Runtime options (not serialized)
	Scorer Scorer      `json:"-"`
	Logger *log.Logger `json:"-"`

	// validated tracks whether ValidateAndSetDefaults has been called.
	validated bool `json:"-"`
}

// ConstraintSpec names a constraint in serializable form.
type ConstraintSpec struct {
	Type string   `json:"type"` // "clade" or "species"
	Taxa []string `json:"taxa"`
}

// Result contains the outputs of a pipeline run.
type Result struct {
	// Network is the final network after the search walk.
	Network *phylo.Network

	// BestNewick is the canonical serialization of the final network.
	BestNewick string

	// BestScore is the score of the final network.
	BestScore float64

	// Run is the persisted run record.
	Run *runstore.Run

	// Stats contains timing and size information.
	Stats Stats
}

// Stats contains search execution statistics.
type Stats struct {
	TaxonCount  int
	HybridCount int
	Steps       int
	Applied     int
	Rejected    int
	ScoreHits   int // score cache hits
	SearchTime  time.Duration
}

// =============================================================================
// Validation Functions
// =============================================================================

// ValidateFormat checks that a figure output format is valid.
func ValidateFormat(format string) error {
	if !ValidFormats[format] {
		return fmt.Errorf("invalid format: %q (must be one of: dot, svg, png, pdf)", format)
	}
	return nil
}

// ValidateConstraintType checks that a constraint type name is valid.
func ValidateConstraintType(typ string) error {
	if typ != ConstraintClade && typ != ConstraintSpecies {
		return fmt.Errorf("invalid constraint type: %q (must be one of: clade, species)", typ)
	}
	return nil
}

// BuildConstraints resolves constraint specs against a concrete network.
func BuildConstraints(g *phylo.Network, specs []ConstraintSpec) ([]*constraint.TopologyConstraint, error) {
	cs := make([]*constraint.TopologyConstraint, 0, len(specs))
	for _, spec := range specs {
		if err := ValidateConstraintType(spec.Type); err != nil {
			return nil, err
		}
		typ := constraint.Clade
		if spec.Type == ConstraintSpecies {
			typ = constraint.Species
		}
		c, err := constraint.New(g, typ, spec.Taxa)
		if err != nil {
			return nil, fmt.Errorf("constraint %v: %w", spec.Taxa, err)
		}
		cs = append(cs, c)
	}
	return cs, nil
}

// =============================================================================
// Options Methods
// =============================================================================

// ValidateAndSetDefaults checks required fields and applies defaults for the
// full pipeline. This method is idempotent - calling it multiple times has
// the same effect as calling it once.
func (o *Options) ValidateAndSetDefaults() error {
	if o.validated {
		return nil
	}
	if err := o.ValidateForSearch(); err != nil {
		return err
	}
	o.SetRenderDefaults()
	if err := ValidateFormat(o.Format); err != nil {
		return err
	}
	o.validated = true
	return nil
}

// ValidateForSearch checks required fields for a search run.
func (o *Options) ValidateForSearch() error {
	if o.Newick == "" {
		return fmt.Errorf("newick is required")
	}
	if o.MaxMoves < 0 {
		return fmt.Errorf("max_moves must be non-negative, got %d", o.MaxMoves)
	}
	for _, spec := range o.Constraints {
		if err := ValidateConstraintType(spec.Type); err != nil {
			return err
		}
	}

	// Search defaults
	if o.MaxMoves == 0 {
		o.MaxMoves = DefaultMaxMoves
	}
	if o.Seed == 0 {
		o.Seed = DefaultSeed
	}
	o.SetScoreDefaults()

	return nil
}

// SetScoreDefaults sets default values for scoring.
func (o *Options) SetScoreDefaults() {
	if o.Scorer == nil {
		o.Scorer = AcceptAll{}
	}
	if o.Logger == nil {
		o.Logger = log.NewWithOptions(io.Discard, log.Options{})
	}
}

// SetRenderDefaults sets default values for figure rendering.
func (o *Options) SetRenderDefaults() {
	if o.Format == "" {
		o.Format = FormatSVG
	}
	if o.Logger == nil {
		o.Logger = log.NewWithOptions(io.Discard, log.Options{})
	}
}

// ValidateForRender validates and sets defaults for figure rendering.
func (o *Options) ValidateForRender() error {
	o.SetRenderDefaults()
	return ValidateFormat(o.Format)
}

// MoveOptions translates the search gates into rearrangement options.
func (o *Options) MoveOptions() move.Options {
	return move.Options{
		No3Cycle:       !o.Allow3Cycles,
		NoHybridLadder: !o.AllowHybridLadders,
	}
}

// ScoreKeyOpts returns cache key options for score entries.
func (o *Options) ScoreKeyOpts() cache.ScoreKeyOpts {
	name := ""
	if o.Scorer != nil {
		name = o.Scorer.Name()
	}
	return cache.ScoreKeyOpts{Scorer: name}
}

// RenderKeyOpts returns cache key options for rendered figures.
func (o *Options) RenderKeyOpts() cache.RenderKeyOpts {
	layout := "plain"
	if o.Detailed {
		layout = "detailed"
	}
	return cache.RenderKeyOpts{
		Format: o.Format,
		Layout: layout,
	}
}
