package processors

import (
	"github.com/patrickmn/go-cache"
)

// DerivativeCodeResolver maps a display-form derivative ticker (e.g.
// "Si-6.21") to its canonical security identifier. The mapping is owned by
// an external lookup service; this layer only consumes it.
type DerivativeCodeResolver interface {
	Resolve(code string) (string, bool)
}

// CachingResolver memoizes lookups of an underlying resolver. Statements
// repeat the same handful of contract codes on every row.
type CachingResolver struct {
	inner DerivativeCodeResolver
	cache *cache.Cache
}

func NewCachingResolver(inner DerivativeCodeResolver) *CachingResolver {
	return &CachingResolver{inner: inner, cache: cache.New(cache.NoExpiration, 0)}
}

type resolution struct {
	id string
	ok bool
}

func (r *CachingResolver) Resolve(code string) (string, bool) {
	if hit, found := r.cache.Get(code); found {
		res := hit.(resolution)
		return res.id, res.ok
	}
	id, ok := r.inner.Resolve(code)
	r.cache.Set(code, resolution{id: id, ok: ok}, cache.NoExpiration)
	return id, ok
}
