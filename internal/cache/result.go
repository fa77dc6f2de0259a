package cache

import (
	lru "github.com/hashicorp/golang-lru"

	"github.com/guimove/trainfit/internal/model"
)

// ResultCache is a bounded in-memory LRU of optimizer results. Cached
// results are shared; callers must not modify them.
type ResultCache struct {
	cache *lru.Cache
}

// NewResultCache returns a cache holding up to size results. A size of zero
// or less disables caching.
func NewResultCache(size int) *ResultCache {
	if size <= 0 {
		return &ResultCache{}
	}
	c, err := lru.New(size)
	if err != nil {
		panic(err.Error()) // Only errors on size <= 0.
	}
	return &ResultCache{cache: c}
}

// Get returns the result cached under key.
func (rc *ResultCache) Get(key string) (*model.Result, bool) {
	if rc.cache == nil {
		return nil, false
	}
	v, ok := rc.cache.Get(key)
	if !ok {
		return nil, false
	}
	return v.(*model.Result), true
}

// Add caches res under key.
func (rc *ResultCache) Add(key string, res *model.Result) {
	if rc.cache == nil {
		return
	}
	rc.cache.Add(key, res)
}

// Remove drops key.
func (rc *ResultCache) Remove(key string) {
	if rc.cache == nil {
		return
	}
	rc.cache.Remove(key)
}

// Len returns the number of cached results.
func (rc *ResultCache) Len() int {
	if rc.cache == nil {
		return 0
	}
	return rc.cache.Len()
}
