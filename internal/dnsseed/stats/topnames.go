package stats

import (
	"sort"

	lru "github.com/hashicorp/golang-lru/v2"
)

// TopNames tracks the most-queried names seen recently, bounded to a
// fixed capacity by LRU eviction. It is diagnostic only: responder.Handle
// never reads from it to decide an answer, so it does not constitute the
// upstream-answer caching this server explicitly does not do.
type TopNames struct {
	cache *lru.Cache[string, uint64]
}

// NewTopNames returns a TopNames bounded to size entries.
func NewTopNames(size int) (*TopNames, error) {
	cache, err := lru.New[string, uint64](size)
	if err != nil {
		return nil, err
	}
	return &TopNames{cache: cache}, nil
}

// Record increments name's hit count, evicting the least-recently-touched
// name if the cache is at capacity.
func (t *TopNames) Record(name string) {
	if t == nil {
		return
	}
	count, _ := t.cache.Get(name)
	t.cache.Add(name, count+1)
}

// Count returns how many times name has been recorded.
func (t *TopNames) Count(name string) uint64 {
	if t == nil {
		return 0
	}
	count, _ := t.cache.Peek(name)
	return count
}

// Len returns the number of distinct names currently tracked.
func (t *TopNames) Len() int {
	if t == nil {
		return 0
	}
	return t.cache.Len()
}

// NameCount pairs a name with its hit count, for Top's results.
type NameCount struct {
	Name  string
	Count uint64
}

// Top returns the n most-queried names, most-queried first. n <= 0 means
// return all tracked names.
func (t *TopNames) Top(n int) []NameCount {
	if t == nil {
		return nil
	}
	keys := t.cache.Keys()
	out := make([]NameCount, 0, len(keys))
	for _, k := range keys {
		if v, ok := t.cache.Peek(k); ok {
			out = append(out, NameCount{Name: k, Count: v})
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Count > out[j].Count })
	if n > 0 && n < len(out) {
		out = out[:n]
	}
	return out
}
