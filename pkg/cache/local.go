package cache

import (
	"regexp"
	"sync"

	"github.com/hashicorp/golang-lru/v2/expirable"
)

// localLayer is the in-process copy of one layer: a size-bounded LRU with a
// fixed TTL. Values are stored as JSON so callers never share mutable state.
type localLayer struct {
	mu    sync.Mutex
	lru   *expirable.LRU[string, []byte]
	stats LayerStats
}

func newLocalLayer(cfg LayerConfig) *localLayer {
	size := cfg.MaxEntries
	if size <= 0 {
		size = 1
	}
	return &localLayer{
		lru: expirable.NewLRU[string, []byte](size, nil, cfg.LocalTTL),
	}
}

func (l *localLayer) get(key string) ([]byte, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.lru.Get(key)
}

// add stores value and reports whether an older entry was evicted for room.
func (l *localLayer) add(key string, value []byte) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	evicted := l.lru.Add(key, value)
	if evicted {
		l.stats.Evictions++
	}
	return evicted
}

func (l *localLayer) remove(key string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.lru.Remove(key)
}

func (l *localLayer) removeMatching(re *regexp.Regexp) int {
	l.mu.Lock()
	defer l.mu.Unlock()

	removed := 0
	for _, key := range l.lru.Keys() {
		if re.MatchString(key) && l.lru.Remove(key) {
			removed++
		}
	}
	return removed
}

func (l *localLayer) record(fn func(*LayerStats)) {
	l.mu.Lock()
	fn(&l.stats)
	l.mu.Unlock()
}

func (l *localLayer) snapshot() LayerStats {
	l.mu.Lock()
	defer l.mu.Unlock()
	s := l.stats
	s.Entries = l.lru.Len()
	return s
}

func (l *localLayer) resetStats() {
	l.mu.Lock()
	l.stats = LayerStats{}
	l.mu.Unlock()
}
