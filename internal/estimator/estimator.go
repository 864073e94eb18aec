package estimator

import (
	"fmt"

	lru "github.com/hashicorp/golang-lru/v2"
)

// Estimator derives bundles and memoizes them per URL.
type Estimator struct {
	cache *lru.Cache[string, MetricBundle]
}

// New creates an estimator holding at most cacheSize bundles.
// A cacheSize of zero or less disables caching.
func New(cacheSize int) (*Estimator, error) {
	if cacheSize <= 0 {
		return &Estimator{}, nil
	}

	cache, err := lru.New[string, MetricBundle](cacheSize)
	if err != nil {
		return nil, fmt.Errorf("failed to create bundle cache: %w", err)
	}

	return &Estimator{cache: cache}, nil
}

// Estimate returns the bundle for url, from cache when possible.
func (e *Estimator) Estimate(url string) MetricBundle {
	if e.cache == nil {
		return Derive(url)
	}

	if bundle, ok := e.cache.Get(url); ok {
		return bundle
	}

	bundle := Derive(url)
	e.cache.Add(url, bundle)
	return bundle
}

// CacheLen reports how many bundles are cached.
func (e *Estimator) CacheLen() int {
	if e.cache == nil {
		return 0
	}
	return e.cache.Len()
}
