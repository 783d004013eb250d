// FILE: pkg/cache/tiered.go
// PURPOSE: Two-level cache (in-process LRU + shared remote store) split into named layers

package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/iamfranciscoalmeida/flashly-ai-sub001/internal/pkg/logger"
)

var ErrUnknownLayer = errors.New("cache: unknown layer")

// RemoteStore is the shared layer. Get reports found=false for a missing
// key; MGet returns nil entries for missing keys.
type RemoteStore interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	SetEX(ctx context.Context, key string, value []byte, ttl time.Duration) error
	MGet(ctx context.Context, keys []string) ([][]byte, error)
	Keys(ctx context.Context, pattern string) ([]string, error)
	Del(ctx context.Context, keys ...string) error
}

// Fetcher loads values for keys absent from the cache.
type Fetcher func(ctx context.Context, keys []string) (map[string]any, error)

type Tiered struct {
	remote  RemoteStore
	configs map[Layer]LayerConfig
	locals  map[Layer]*localLayer
	log     logger.ILogger
	metrics *Metrics
}

// NewTiered builds a cache over the given layers. remote and metrics may be
// nil; without a remote store the cache is local only.
func NewTiered(remote RemoteStore, layers map[Layer]LayerConfig, log logger.ILogger, metrics *Metrics) *Tiered {
	if len(layers) == 0 {
		layers = DefaultLayers()
	}
	if log == nil {
		log = logger.NewNopLogger()
	}

	t := &Tiered{
		remote:  remote,
		configs: make(map[Layer]LayerConfig, len(layers)),
		locals:  make(map[Layer]*localLayer, len(layers)),
		log:     log,
		metrics: metrics,
	}
	for name, cfg := range layers {
		t.configs[name] = cfg
		t.locals[name] = newLocalLayer(cfg)
	}
	return t
}

func (t *Tiered) HasRemote() bool {
	return t.remote != nil
}

// Layers lists configured layers in name order.
func (t *Tiered) Layers() []Layer {
	names := make([]Layer, 0, len(t.locals))
	for name := range t.locals {
		names = append(names, name)
	}
	sort.Slice(names, func(i, j int) bool { return names[i] < names[j] })
	return names
}

// Get decodes the cached value for key into dest. The local layer is checked
// first, then the remote one; a remote hit warms the local layer. Remote
// errors count as a miss.
func (t *Tiered) Get(ctx context.Context, key string, layer Layer, dest any) bool {
	local, ok := t.locals[layer]
	if !ok {
		return false
	}

	if raw, found := local.get(key); found {
		if err := json.Unmarshal(raw, dest); err == nil {
			local.record(func(s *LayerStats) { s.Hits++; s.LocalHits++ })
			t.metrics.request(layer, resultLocalHit)
			return true
		}
		local.remove(key)
	}

	if t.remote != nil {
		raw, found, err := t.remote.Get(ctx, remoteKey(layer, key))
		switch {
		case err != nil:
			t.log.Warn("cache", "Remote get failed", map[string]interface{}{
				"layer": layer,
				"key":   key,
				"error": err.Error(),
			})
		case found:
			if err := json.Unmarshal(raw, dest); err == nil {
				t.warm(layer, local, key, raw)
				local.record(func(s *LayerStats) { s.Hits++; s.RemoteHits++ })
				t.metrics.request(layer, resultRemoteHit)
				return true
			}
		}
	}

	local.record(func(s *LayerStats) { s.Misses++ })
	t.metrics.request(layer, resultMiss)
	return false
}

// Set writes value to the local layer and, when configured, to the remote
// layer with ttl (or the layer default when ttl is zero). Remote failures
// are logged; the local write stands. Only encoding failures and unknown
// layers are returned.
func (t *Tiered) Set(ctx context.Context, key string, layer Layer, value any, ttl time.Duration) error {
	local, ok := t.locals[layer]
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownLayer, layer)
	}

	raw, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("encode %s/%s: %w", layer, key, err)
	}

	t.warm(layer, local, key, raw)
	local.record(func(s *LayerStats) { s.Sets++ })

	if t.remote == nil {
		return nil
	}
	if ttl <= 0 {
		ttl = t.configs[layer].RemoteTTL
	}
	if err := t.remote.SetEX(ctx, remoteKey(layer, key), raw, ttl); err != nil {
		t.log.Warn("cache", "Remote set failed, keeping local copy only", map[string]interface{}{
			"layer": layer,
			"key":   key,
			"error": err.Error(),
		})
	}
	return nil
}

// MGet resolves keys locally first and fetches the rest from the remote
// layer in one round trip. Keys found nowhere are omitted.
func (t *Tiered) MGet(ctx context.Context, keys []string, layer Layer) map[string]json.RawMessage {
	result := make(map[string]json.RawMessage, len(keys))
	local, ok := t.locals[layer]
	if !ok {
		return result
	}

	missing := make([]string, 0)
	for _, key := range keys {
		if raw, found := local.get(key); found {
			result[key] = json.RawMessage(raw)
			local.record(func(s *LayerStats) { s.Hits++; s.LocalHits++ })
			t.metrics.request(layer, resultLocalHit)
			continue
		}
		missing = append(missing, key)
	}

	if len(missing) > 0 && t.remote != nil {
		remoteKeys := make([]string, len(missing))
		for i, key := range missing {
			remoteKeys[i] = remoteKey(layer, key)
		}

		values, err := t.remote.MGet(ctx, remoteKeys)
		if err != nil {
			t.log.Warn("cache", "Remote mget failed", map[string]interface{}{
				"layer": layer,
				"keys":  len(missing),
				"error": err.Error(),
			})
			values = nil
		}

		stillMissing := missing[:0]
		for i, key := range missing {
			if i < len(values) && values[i] != nil && json.Valid(values[i]) {
				t.warm(layer, local, key, values[i])
				result[key] = json.RawMessage(values[i])
				local.record(func(s *LayerStats) { s.Hits++; s.RemoteHits++ })
				t.metrics.request(layer, resultRemoteHit)
				continue
			}
			stillMissing = append(stillMissing, key)
		}
		missing = stillMissing
	}

	for range missing {
		local.record(func(s *LayerStats) { s.Misses++ })
		t.metrics.request(layer, resultMiss)
	}
	return result
}

// Invalidate removes every entry whose key matches the glob pattern from the
// given layers (all layers when none are given), locally and remotely. It
// returns the number of local entries removed.
func (t *Tiered) Invalidate(ctx context.Context, pattern string, layers ...Layer) (int, error) {
	re, err := globToRegexp(pattern)
	if err != nil {
		return 0, fmt.Errorf("compile pattern %q: %w", pattern, err)
	}
	if len(layers) == 0 {
		layers = t.Layers()
	}

	removed := 0
	for _, layer := range layers {
		local, ok := t.locals[layer]
		if !ok {
			return removed, fmt.Errorf("%w: %s", ErrUnknownLayer, layer)
		}
		removed += local.removeMatching(re)

		if t.remote == nil {
			continue
		}
		keys, err := t.remote.Keys(ctx, remoteKey(layer, remoteGlob(pattern)))
		if err != nil {
			t.log.Warn("cache", "Remote key scan failed", map[string]interface{}{
				"layer":   layer,
				"pattern": pattern,
				"error":   err.Error(),
			})
			continue
		}
		if len(keys) == 0 {
			continue
		}
		if err := t.remote.Del(ctx, keys...); err != nil {
			t.log.Warn("cache", "Remote delete failed", map[string]interface{}{
				"layer":   layer,
				"pattern": pattern,
				"error":   err.Error(),
			})
		}
	}

	t.log.Info("cache", "Cache invalidated", map[string]interface{}{
		"pattern": pattern,
		"layers":  layers,
		"removed": removed,
	})
	return removed, nil
}

// Preload fetches and stores the keys of layer that are not cached yet.
func (t *Tiered) Preload(ctx context.Context, keys []string, layer Layer, fetch Fetcher) error {
	missing := make([]string, 0, len(keys))
	for _, key := range keys {
		var cached json.RawMessage
		if !t.Get(ctx, key, layer, &cached) {
			missing = append(missing, key)
		}
	}
	if len(missing) == 0 {
		return nil
	}

	values, err := fetch(ctx, missing)
	if err != nil {
		return fmt.Errorf("preload %s: %w", layer, err)
	}
	for key, value := range values {
		if err := t.Set(ctx, key, layer, value, 0); err != nil {
			return err
		}
	}
	return nil
}

func (t *Tiered) Stats() map[Layer]LayerStats {
	stats := make(map[Layer]LayerStats, len(t.locals))
	for name, local := range t.locals {
		stats[name] = local.snapshot()
	}
	return stats
}

func (t *Tiered) ClearStats() {
	for _, local := range t.locals {
		local.resetStats()
	}
}

func (t *Tiered) warm(layer Layer, local *localLayer, key string, raw []byte) {
	if local.add(key, raw) {
		t.metrics.eviction(layer)
	}
}
