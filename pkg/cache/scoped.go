package cache

// ScopedKeyer wraps a Keyer with a prefix for multi-tenant isolation.
// This is useful on the server where different users or sessions need
// separate cache namespaces.
//
// Example usage:
//
//	// User-specific keys for private datasets
//	userKeyer := NewScopedKeyer(NewDefaultKeyer(), "user:abc123:")
//
//	// Global keys for shared reference networks
//	globalKeyer := NewDefaultKeyer()
type ScopedKeyer struct {
	inner  Keyer
	prefix string
}

// NewScopedKeyer creates a keyer with a prefix.
// The prefix is prepended to all generated keys.
func NewScopedKeyer(inner Keyer, prefix string) Keyer {
	if inner == nil {
		inner = NewDefaultKeyer()
	}
	return &ScopedKeyer{
		inner:  inner,
		prefix: prefix,
	}
}

// TopologyKey generates a prefixed key for a validated network.
func (k *ScopedKeyer) TopologyKey(topologyHash string) string {
	return k.prefix + k.inner.TopologyKey(topologyHash)
}

// ScoreKey generates a prefixed key for a computed score.
func (k *ScopedKeyer) ScoreKey(topologyHash string, opts ScoreKeyOpts) string {
	return k.prefix + k.inner.ScoreKey(topologyHash, opts)
}

// RenderKey generates a prefixed key for a rendered figure.
func (k *ScopedKeyer) RenderKey(topologyHash string, opts RenderKeyOpts) string {
	return k.prefix + k.inner.RenderKey(topologyHash, opts)
}
