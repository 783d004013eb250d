package cache

import (
	"context"
	"time"
)

// Cached wraps compute with a read-through lookup in layer. keyFn derives
// the cache key from the input; a zero ttl uses the layer default. Results
// that fail to encode are returned uncached.
func Cached[In, Out any](c *Tiered, layer Layer, keyFn func(In) string, ttl time.Duration, compute func(context.Context, In) (Out, error)) func(context.Context, In) (Out, error) {
	return func(ctx context.Context, in In) (Out, error) {
		key := keyFn(in)

		var out Out
		if c.Get(ctx, key, layer, &out) {
			return out, nil
		}

		out, err := compute(ctx, in)
		if err != nil {
			return out, err
		}

		if err := c.Set(ctx, key, layer, out, ttl); err != nil {
			c.log.Warn("cache", "Failed to cache computed value", map[string]interface{}{
				"layer": layer,
				"key":   key,
				"error": err.Error(),
			})
		}
		return out, nil
	}
}
