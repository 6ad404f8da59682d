package common

import (
	"context"
	"encoding/json"
	"strconv"
	"time"

	"buddhist-lent/pledgeboard/internal/constants"
	"buddhist-lent/pledgeboard/internal/logging"
	"buddhist-lent/pledgeboard/internal/metrics"
)

// generationTTL outlives any cached list entry by a wide margin.
const generationTTL = 30 * 24 * time.Hour

// ListCache caches list and dashboard responses per resource. Every key
// embeds the resource's current generation; invalidating a resource starts a
// new generation so stale entries are simply never read again.
type ListCache struct {
	cache   CacheInterface
	ttl     time.Duration
	metrics *metrics.MetricsRegistry
}

func NewListCache(cache CacheInterface, ttl time.Duration, metricsReg *metrics.MetricsRegistry) *ListCache {
	return &ListCache{cache: cache, ttl: ttl, metrics: metricsReg}
}

func (c *ListCache) generation(ctx context.Context, resource string) string {
	if raw, ok := c.cache.Get(ctx, string(constants.CachePrefixGen)+resource); ok {
		return string(raw)
	}
	return "0"
}

func (c *ListCache) key(ctx context.Context, resource, variant string) string {
	return string(constants.CachePrefixList) + resource + ":" + c.generation(ctx, resource) + ":" + variant
}

// Slot is a list cache key pinned to the generation that was current when
// it was looked up. A fill through a slot taken before an invalidation lands
// in the old generation and is never read.
type Slot struct {
	resource string
	key      string
}

// Get decodes a cached value into dest and reports whether it was found. The
// returned slot is where a freshly computed value belongs.
func (c *ListCache) Get(ctx context.Context, resource, variant string, dest any) (Slot, bool) {
	if c == nil || c.ttl <= 0 {
		return Slot{}, false
	}
	slot := Slot{resource: resource, key: c.key(ctx, resource, variant)}
	raw, ok := c.cache.Get(ctx, slot.key)
	if ok && json.Unmarshal(raw, dest) == nil {
		c.record(resource, true)
		return slot, true
	}
	c.record(resource, false)
	return slot, false
}

// Set stores value in a slot obtained from Get.
func (c *ListCache) Set(ctx context.Context, slot Slot, value any) {
	if c == nil || c.ttl <= 0 || slot.key == "" {
		return
	}
	data, err := json.Marshal(value)
	if err != nil {
		logging.Warn("List cache: failed to marshal value", "resource", slot.resource, "error", err)
		return
	}
	c.cache.Set(ctx, slot.key, data, c.ttl)
}

// Invalidate starts a new generation for each resource.
func (c *ListCache) Invalidate(ctx context.Context, resources ...string) {
	if c == nil {
		return
	}
	gen := []byte(strconv.FormatInt(time.Now().UnixNano(), 36))
	for _, r := range resources {
		c.cache.Set(ctx, string(constants.CachePrefixGen)+r, gen, generationTTL)
	}
}

func (c *ListCache) record(resource string, hit bool) {
	if c.metrics == nil {
		return
	}
	if hit {
		c.metrics.CacheHitsTotal.WithLabelValues(resource).Inc()
	} else {
		c.metrics.CacheMissesTotal.WithLabelValues(resource).Inc()
	}
}
