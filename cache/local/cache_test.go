package local

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestCache(t *testing.T) *LocalCache {
	t.Helper()
	c, err := NewCache(Config{GCInterval: time.Hour})
	require.NoError(t, err)
	t.Cleanup(c.Close)
	return c
}

func TestSetGetDel(t *testing.T) {
	c := newTestCache(t)
	ctx := context.Background()

	require.NoError(t, c.Set(ctx, "k", "v", 0))
	v, err := c.Get(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, "v", v)

	require.NoError(t, c.Del(ctx, "k"))
	_, err = c.Get(ctx, "k")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestTTLExpiry(t *testing.T) {
	c := newTestCache(t)
	ctx := context.Background()

	require.NoError(t, c.Set(ctx, "k", "v", 20*time.Millisecond))
	ok, err := c.Exists(ctx, "k")
	require.NoError(t, err)
	assert.True(t, ok)

	time.Sleep(40 * time.Millisecond)
	ok, err = c.Exists(ctx, "k")
	require.NoError(t, err)
	assert.False(t, ok)
	_, err = c.Get(ctx, "k")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestZRevRangeOrdering(t *testing.T) {
	c := newTestCache(t)
	ctx := context.Background()

	require.NoError(t, c.ZAdd(ctx, "rank", 30, "carol"))
	require.NoError(t, c.ZAdd(ctx, "rank", 50, "alice"))
	require.NoError(t, c.ZAdd(ctx, "rank", 30, "bob"))

	members, err := c.ZRevRange(ctx, "rank", 0, -1)
	require.NoError(t, err)
	assert.Equal(t, []string{"alice", "bob", "carol"}, members,
		"score descending, ties broken by member ascending")

	top, err := c.ZRevRange(ctx, "rank", 0, 0)
	require.NoError(t, err)
	assert.Equal(t, []string{"alice"}, top)
}

func TestZAddUpdatesScore(t *testing.T) {
	c := newTestCache(t)
	ctx := context.Background()

	require.NoError(t, c.ZAdd(ctx, "rank", 10, "alice"))
	require.NoError(t, c.ZAdd(ctx, "rank", 99, "alice"))

	score, err := c.ZScore(ctx, "rank", "alice")
	require.NoError(t, err)
	assert.EqualValues(t, 99, score)
}

func TestZScoreMissing(t *testing.T) {
	c := newTestCache(t)
	_, err := c.ZScore(context.Background(), "rank", "nobody")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestZRevRangeOutOfBounds(t *testing.T) {
	c := newTestCache(t)
	ctx := context.Background()
	require.NoError(t, c.ZAdd(ctx, "rank", 1, "a"))

	members, err := c.ZRevRange(ctx, "rank", 5, 10)
	require.NoError(t, err)
	assert.Empty(t, members)
}
