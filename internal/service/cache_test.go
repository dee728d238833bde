package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCacheDayRollover(t *testing.T) {
	c := newSnapshotCache()
	ctx := context.Background()

	computes := 0
	compute := func(context.Context) (*Report, error) {
		computes++
		return &Report{AthleteID: 1}, nil
	}

	first, err := c.get(ctx, 1, 90, "2026-08-28", compute)
	require.NoError(t, err)
	again, err := c.get(ctx, 1, 90, "2026-08-28", compute)
	require.NoError(t, err)
	assert.Same(t, first, again)
	assert.Equal(t, 1, computes)

	// At midnight the window shifts a day: yesterday's report must not be
	// served for today's key.
	next, err := c.get(ctx, 1, 90, "2026-08-29", compute)
	require.NoError(t, err)
	assert.NotSame(t, first, next)
	assert.Equal(t, 2, computes)
}

func TestCacheInvalidateDropsEveryWindowAndDay(t *testing.T) {
	c := newSnapshotCache()
	ctx := context.Background()

	compute := func(context.Context) (*Report, error) { return &Report{}, nil }
	a1, err := c.get(ctx, 1, 90, "2026-08-28", compute)
	require.NoError(t, err)
	_, err = c.get(ctx, 1, 60, "2026-08-28", compute)
	require.NoError(t, err)
	b1, err := c.get(ctx, 2, 90, "2026-08-28", compute)
	require.NoError(t, err)

	c.invalidate(1)

	a2, err := c.get(ctx, 1, 90, "2026-08-28", compute)
	require.NoError(t, err)
	assert.NotSame(t, a1, a2, "athlete 1 entries must be recomputed")

	b2, err := c.get(ctx, 2, 90, "2026-08-28", compute)
	require.NoError(t, err)
	assert.Same(t, b1, b2, "other athletes keep their cached reports")
}
