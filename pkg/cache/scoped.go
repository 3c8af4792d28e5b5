package cache

// ScopedKeyer wraps a Keyer with a prefix so several tenants can share one
// backend without seeing each other's entries.
//
//	apiKeyer := NewScopedKeyer(NewDefaultKeyer(), "api:")
type ScopedKeyer struct {
	inner  Keyer
	prefix string
}

// NewScopedKeyer creates a keyer with a prefix. A nil inner keyer means
// [DefaultKeyer].
func NewScopedKeyer(inner Keyer, prefix string) Keyer {
	if inner == nil {
		inner = NewDefaultKeyer()
	}
	return &ScopedKeyer{inner: inner, prefix: prefix}
}

// ResultKey generates a prefixed result key.
func (k *ScopedKeyer) ResultKey(sceneHash string, opts ResultKeyOpts) string {
	return k.prefix + k.inner.ResultKey(sceneHash, opts)
}

// ArtifactKey generates a prefixed artifact key.
func (k *ScopedKeyer) ArtifactKey(resultHash string, opts ArtifactKeyOpts) string {
	return k.prefix + k.inner.ArtifactKey(resultHash, opts)
}
