// Package cache provides caching for expensive search artifacts: scored
// topologies, rendered figures, and run summaries.
//
// Two backends are provided. FileCache stores entries on disk for CLI usage;
// RedisCache backs the HTTP server where several workers share results.
// NullCache disables caching entirely.
//
// Keys are derived from a SHA-256 hash of the network's canonical Newick
// serialization, so two in-memory networks with the same topology and
// numbering share cache entries.
package cache

import (
	"context"
	"time"
)

// Default time-to-live per artifact type. Scores are stable for a given
// topology and scorer; rendered figures change with renderer tweaks and
// expire sooner.
const (
	TTLScore  = 7 * 24 * time.Hour
	TTLRender = 24 * time.Hour
)

// Cache is the storage interface shared by all backends.
type Cache interface {
	// Get retrieves the value for key. The second return reports whether
	// the key was present.
	Get(ctx context.Context, key string) ([]byte, bool, error)

	// Set stores data under key. A zero ttl means no expiration.
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error

	// Delete removes key. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error

	// Close releases backend resources.
	Close() error
}

// ScoreKeyOpts distinguishes score entries computed by different scorers.
type ScoreKeyOpts struct {
	Scorer string
}

// RenderKeyOpts distinguishes rendered figures by output settings.
type RenderKeyOpts struct {
	Format string
	Layout string
}

// Keyer generates cache keys for the different artifact types.
type Keyer interface {
	// TopologyKey generates a key for a parsed and validated network,
	// keyed by the hash of its canonical serialization.
	TopologyKey(topologyHash string) string

	// ScoreKey generates a key for a computed score.
	ScoreKey(topologyHash string, opts ScoreKeyOpts) string

	// RenderKey generates a key for a rendered figure.
	RenderKey(topologyHash string, opts RenderKeyOpts) string
}

// DefaultKeyer is the standard key scheme.
type DefaultKeyer struct{}

// NewDefaultKeyer creates the standard keyer.
func NewDefaultKeyer() Keyer {
	return &DefaultKeyer{}
}

// TopologyKey generates a key for a validated network.
func (k *DefaultKeyer) TopologyKey(topologyHash string) string {
	return "topology:" + topologyHash
}

// ScoreKey generates a key for a computed score.
func (k *DefaultKeyer) ScoreKey(topologyHash string, opts ScoreKeyOpts) string {
	return hashKey("score", topologyHash, opts)
}

// RenderKey generates a key for a rendered figure.
func (k *DefaultKeyer) RenderKey(topologyHash string, opts RenderKeyOpts) string {
	return hashKey("render", topologyHash, opts)
}
