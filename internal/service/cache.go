package service

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"golang.org/x/sync/singleflight"
)

// snapshotCache stores complete analysis reports keyed by
// (athlete, window). Entries are whole snapshots: invalidation drops every
// key for the athlete, never patches one. singleflight guarantees at most
// one concurrent recomputation per key; concurrent callers share the
// in-flight result.
type snapshotCache struct {
	mu      sync.Mutex
	entries map[string]*Report
	group   singleflight.Group
}

func newSnapshotCache() *snapshotCache {
	return &snapshotCache{entries: make(map[string]*Report)}
}

// cacheKey includes the as-of calendar day: the lookback window shifts at
// midnight, so a report cached before the boundary must not be served after
// it.
func cacheKey(athleteID int64, windowDays int, asOfDay string) string {
	return fmt.Sprintf("%d:%d:%s", athleteID, windowDays, asOfDay)
}

func (c *snapshotCache) get(ctx context.Context, athleteID int64, windowDays int, asOfDay string,
	compute func(context.Context) (*Report, error)) (*Report, error) {

	key := cacheKey(athleteID, windowDays, asOfDay)

	c.mu.Lock()
	if r, ok := c.entries[key]; ok {
		c.mu.Unlock()
		return r, nil
	}
	c.mu.Unlock()

	v, err, _ := c.group.Do(key, func() (any, error) {
		r, err := compute(ctx)
		if err != nil {
			return nil, err
		}
		c.mu.Lock()
		c.entries[key] = r
		c.mu.Unlock()
		return r, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(*Report), nil
}

// invalidate drops every cached report for the athlete.
func (c *snapshotCache) invalidate(athleteID int64) {
	prefix := fmt.Sprintf("%d:", athleteID)
	c.mu.Lock()
	for key := range c.entries {
		if strings.HasPrefix(key, prefix) {
			delete(c.entries, key)
		}
	}
	c.mu.Unlock()
}
