package evaluator

import (
	"regexp"
	"sync"

	lru "github.com/hashicorp/golang-lru/v2"
)

// DefaultRegexCacheSize bounds the process-wide compiled pattern cache.
const DefaultRegexCacheSize = 512

var (
	regexCacheMu sync.RWMutex
	regexCache   = newRegexCache(DefaultRegexCacheSize)
)

func newRegexCache(size int) *lru.Cache[string, *regexp.Regexp] {
	if size <= 0 {
		size = DefaultRegexCacheSize
	}
	c, err := lru.New[string, *regexp.Regexp](size)
	if err != nil {
		panic(err)
	}
	return c
}

// SetRegexCacheSize replaces the compiled pattern cache with one holding
// up to size entries.
func SetRegexCacheSize(size int) {
	regexCacheMu.Lock()
	defer regexCacheMu.Unlock()
	regexCache = newRegexCache(size)
}

// getOrCompileRegex returns a cached compiled regex or compiles and caches it.
func getOrCompileRegex(pattern string) (*regexp.Regexp, error) {
	regexCacheMu.RLock()
	cache := regexCache
	regexCacheMu.RUnlock()

	if re, ok := cache.Get(pattern); ok {
		return re, nil
	}
	re, err := regexp.Compile(pattern)
	if err != nil {
		return nil, err
	}
	cache.Add(pattern, re)
	return re, nil
}
