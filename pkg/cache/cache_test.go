package cache_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aegiskit/aegis/pkg/cache"
	"github.com/aegiskit/aegis/pkg/cache/cachememory"
	"github.com/aegiskit/aegis/pkg/pipeline"
)

func newTestCache(t *testing.T) *cache.Cache {
	t.Helper()
	adapter, err := cachememory.NewLRU(64)
	require.NoError(t, err)
	c, err := cache.New(adapter)
	require.NoError(t, err)
	return c
}

func TestAdd_SecondAddFails(t *testing.T) {
	c := newTestCache(t)
	ctx := context.Background()

	ok, err := c.Add("a", []byte("1"), time.Minute).Run(ctx)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = c.Add("a", []byte("2"), time.Minute).Run(ctx)
	require.NoError(t, err)
	assert.False(t, ok)

	res, err := c.Get("a").Run(ctx)
	require.NoError(t, err)
	assert.True(t, res.Found)
	assert.Equal(t, []byte("1"), res.Value)
}

func TestGet_MissReturnsNotFound(t *testing.T) {
	c := newTestCache(t)
	res, err := c.Get("missing").Run(context.Background())
	require.NoError(t, err)
	assert.False(t, res.Found)
}

func TestGetOrFail_ReturnsTypedError(t *testing.T) {
	c := newTestCache(t)
	_, err := c.GetOrFail("missing").Run(context.Background())
	assert.ErrorIs(t, err, cache.ErrKeyNotFound)
}

func TestPut_ReplacesAndReportsPriorExistence(t *testing.T) {
	c := newTestCache(t)
	ctx := context.Background()

	replaced, err := c.Put("b", []byte("1"), time.Minute).Run(ctx)
	require.NoError(t, err)
	assert.False(t, replaced)

	replaced, err = c.Put("b", []byte("2"), time.Minute).Run(ctx)
	require.NoError(t, err)
	assert.True(t, replaced)

	res, err := c.Get("b").Run(ctx)
	require.NoError(t, err)
	assert.Equal(t, []byte("2"), res.Value)
}

func TestUpdate_FailsWhenKeyAbsent(t *testing.T) {
	c := newTestCache(t)
	ok, err := c.Update("absent", []byte("x"), time.Minute).Run(context.Background())
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestGetAndRemove_DeletesOnHit(t *testing.T) {
	c := newTestCache(t)
	ctx := context.Background()

	_, err := c.Put("c", []byte("v"), time.Minute).Run(ctx)
	require.NoError(t, err)

	res, err := c.GetAndRemove("c").Run(ctx)
	require.NoError(t, err)
	assert.True(t, res.Found)

	after, err := c.Get("c").Run(ctx)
	require.NoError(t, err)
	assert.False(t, after.Found)
}

func TestGetOrAdd_LoadsOnlyOnMiss(t *testing.T) {
	c := newTestCache(t)
	ctx := context.Background()

	calls := 0
	load := func(*pipeline.Ctx) ([]byte, error) {
		calls++
		return []byte("loaded"), nil
	}

	val, err := c.GetOrAdd("lazy", time.Minute, load).Run(ctx)
	require.NoError(t, err)
	assert.Equal(t, []byte("loaded"), val)
	assert.Equal(t, 1, calls)

	val, err = c.GetOrAdd("lazy", time.Minute, load).Run(ctx)
	require.NoError(t, err)
	assert.Equal(t, []byte("loaded"), val)
	assert.Equal(t, 1, calls)
}

func TestRemoveByKeyPrefix_RemovesOnlyMatches(t *testing.T) {
	c := newTestCache(t)
	ctx := context.Background()

	_, err := c.Put("team:1", []byte("a"), time.Minute).Run(ctx)
	require.NoError(t, err)
	_, err = c.Put("team:2", []byte("b"), time.Minute).Run(ctx)
	require.NoError(t, err)
	_, err = c.Put("other", []byte("c"), time.Minute).Run(ctx)
	require.NoError(t, err)

	n, err := c.RemoveByKeyPrefix("team:").Run(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	res, err := c.Get("other").Run(ctx)
	require.NoError(t, err)
	assert.True(t, res.Found)
}

func TestIncrement_CreatesThenAccumulates(t *testing.T) {
	c := newTestCache(t)
	ctx := context.Background()

	n, err := c.Increment("counter", 5, time.Minute).Run(ctx)
	require.NoError(t, err)
	assert.EqualValues(t, 5, n)

	n, err = c.Decrement("counter", 2, time.Minute).Run(ctx)
	require.NoError(t, err)
	assert.EqualValues(t, 3, n)
}

func TestIncrement_NonIntegerValueFails(t *testing.T) {
	c := newTestCache(t)
	ctx := context.Background()

	_, err := c.Put("notanumber", []byte("hello"), time.Minute).Run(ctx)
	require.NoError(t, err)

	_, err = c.Increment("notanumber", 1, time.Minute).Run(ctx)
	assert.ErrorIs(t, err, cache.ErrNotInteger)
}

func TestJSON_RoundTrips(t *testing.T) {
	c := newTestCache(t)
	ctx := context.Background()

	type payload struct {
		Name string
		N    int
	}
	in := payload{Name: "widget", N: 7}

	ok, err := cache.PutJSON(c, "obj", in, time.Minute).Run(ctx)
	require.NoError(t, err)
	assert.True(t, ok)

	out, err := cache.GetJSON[payload](c, "obj").Run(ctx)
	require.NoError(t, err)
	assert.Equal(t, in, out)
}
