package types

import (
	"sync"

	"github.com/dlclark/regexp2"
)

// PatternCache compiles and caches StringConstrained regex patterns,
// keyed by pattern text, so a schema's pattern is compiled once at
// schema-collection time and reused on every check (§4.4 "Patterns").
// regexp2 is used instead of stdlib regexp because it supports the
// lookaround and backreference constructs schema authors reasonably
// expect from a ".NET-style" pattern.
type PatternCache struct {
	mu    sync.RWMutex
	cache map[string]*regexp2.Regexp
}

func NewPatternCache() *PatternCache {
	return &PatternCache{cache: make(map[string]*regexp2.Regexp)}
}

// Compile returns the cached compiled pattern, compiling and caching it on
// first use. A pattern that fails to compile is an error (raised as
// InvalidPattern by the caller at schema-collection time).
func (c *PatternCache) Compile(pattern string) (*regexp2.Regexp, error) {
	c.mu.RLock()
	re, ok := c.cache[pattern]
	c.mu.RUnlock()
	if ok {
		return re, nil
	}

	compiled, err := regexp2.Compile(pattern, regexp2.None)
	if err != nil {
		return nil, err
	}

	c.mu.Lock()
	c.cache[pattern] = compiled
	c.mu.Unlock()
	return compiled, nil
}

// Match reports whether s matches pattern, using the cached compiled form.
func (c *PatternCache) Match(pattern, s string) (bool, error) {
	re, err := c.Compile(pattern)
	if err != nil {
		return false, err
	}
	return re.MatchString(s)
}
