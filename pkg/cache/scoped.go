package cache

// ScopedKeyer prefixes every key of an inner Keyer, so several tenants or
// deployments can share one Redis database.
//
//	k := NewScopedKeyer(NewDefaultKeyer(), "staging:")
type ScopedKeyer struct {
	inner  Keyer
	prefix string
}

// NewScopedKeyer wraps inner, or the DefaultKeyer when inner is nil.
func NewScopedKeyer(inner Keyer, prefix string) Keyer {
	if inner == nil {
		inner = NewDefaultKeyer()
	}
	return &ScopedKeyer{inner: inner, prefix: prefix}
}

// AnalysisKey returns the prefixed analysis key.
func (k *ScopedKeyer) AnalysisKey(circuitHash string, opts AnalysisKeyOpts) string {
	return k.prefix + k.inner.AnalysisKey(circuitHash, opts)
}

// ReductionKey returns the prefixed reduction key.
func (k *ScopedKeyer) ReductionKey(circuitHash string, opts ReductionKeyOpts) string {
	return k.prefix + k.inner.ReductionKey(circuitHash, opts)
}

// CrossCheckKey returns the prefixed cross-check key.
func (k *ScopedKeyer) CrossCheckKey(circuitHash string, opts CrossCheckKeyOpts) string {
	return k.prefix + k.inner.CrossCheckKey(circuitHash, opts)
}
