package cache

// ScopedKeyer prefixes every key of an inner Keyer. A Redis server shared
// by several projects uses one prefix per project:
//
//	keyer := NewScopedKeyer(NewDefaultKeyer(), "cptree:")
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
	return &ScopedKeyer{
		inner:  inner,
		prefix: prefix,
	}
}

func (k *ScopedKeyer) TreeKey(logHash string) string {
	return k.prefix + k.inner.TreeKey(logHash)
}

func (k *ScopedKeyer) LayoutKey(logHash string, opts LayoutKeyOpts) string {
	return k.prefix + k.inner.LayoutKey(logHash, opts)
}

func (k *ScopedKeyer) DiffKey(leftHash, rightHash string, opts DiffKeyOpts) string {
	return k.prefix + k.inner.DiffKey(leftHash, rightHash, opts)
}

func (k *ScopedKeyer) AnalysisKey(logHash string, opts AnalysisKeyOpts) string {
	return k.prefix + k.inner.AnalysisKey(logHash, opts)
}
