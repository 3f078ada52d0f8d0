package cachememory_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aegiskit/aegis/pkg/cache/cachememory"
)

func TestLRU_Sweep_RemovesOnlyExpiredEntries(t *testing.T) {
	a, err := cachememory.NewLRU(64)
	require.NoError(t, err)
	ctx := context.Background()

	_, err = a.Add(ctx, "stale", []byte("1"), time.Millisecond)
	require.NoError(t, err)
	_, err = a.Add(ctx, "fresh", []byte("2"), time.Hour)
	require.NoError(t, err)
	_, err = a.Add(ctx, "forever", []byte("3"), 0)
	require.NoError(t, err)

	time.Sleep(5 * time.Millisecond)

	n, err := a.Sweep(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	_, found, err := a.Get(ctx, "stale")
	require.NoError(t, err)
	assert.False(t, found)

	_, found, err = a.Get(ctx, "fresh")
	require.NoError(t, err)
	assert.True(t, found)

	_, found, err = a.Get(ctx, "forever")
	require.NoError(t, err)
	assert.True(t, found)
}

func TestLRU_Sweep_NoExpiredEntriesIsNoOp(t *testing.T) {
	a, err := cachememory.NewLRU(64)
	require.NoError(t, err)
	ctx := context.Background()

	_, err = a.Add(ctx, "k", []byte("v"), time.Hour)
	require.NoError(t, err)

	n, err := a.Sweep(ctx)
	require.NoError(t, err)
	assert.Zero(t, n)
}
