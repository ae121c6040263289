package cache

// ScopedKeyer wraps a Keyer with a prefix so several deployments can share
// one Redis or MongoDB backend without colliding.
//
//	keyer := NewScopedKeyer(NewDefaultKeyer(), "staging:")
type ScopedKeyer struct {
	inner  Keyer
	prefix string
}

// NewScopedKeyer creates a keyer with a prefix. A nil inner keyer selects
// [DefaultKeyer].
func NewScopedKeyer(inner Keyer, prefix string) Keyer {
	if inner == nil {
		inner = NewDefaultKeyer()
	}
	return &ScopedKeyer{inner: inner, prefix: prefix}
}

// ResultKey generates a prefixed result key.
func (k *ScopedKeyer) ResultKey(arcsHash, opsHash string, opts ResultKeyOpts) string {
	return k.prefix + k.inner.ResultKey(arcsHash, opsHash, opts)
}

// CheckKey generates a prefixed check key.
func (k *ScopedKeyer) CheckKey(arcsHash, opsHash string, opts ResultKeyOpts) string {
	return k.prefix + k.inner.CheckKey(arcsHash, opsHash, opts)
}
