package semaphore_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aegiskit/aegis/pkg/pipeline"
	"github.com/aegiskit/aegis/pkg/semaphore"
	"github.com/aegiskit/aegis/pkg/semaphore/semmemory"
)

func TestAcquire_ThreeOfFiveSucceedUnderLimit(t *testing.T) {
	p, err := semaphore.NewProvider(semmemory.New())
	require.NoError(t, err)

	var successes int32
	var wg sync.WaitGroup
	var mu sync.Mutex
	for i := 0; i < 5; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			h, err := p.Create("pool", semaphore.WithLimit(3), semaphore.WithTTL(time.Minute))
			require.NoError(t, err)
			ok, err := h.Acquire().Run(context.Background())
			require.NoError(t, err)
			if ok {
				mu.Lock()
				successes++
				mu.Unlock()
			}
		}(i)
	}
	wg.Wait()
	assert.EqualValues(t, 3, successes)
}

func TestAcquire_ReleaseThenSixthSucceeds(t *testing.T) {
	p, _ := semaphore.NewProvider(semmemory.New())

	var handles []*semaphore.Handle
	for i := 0; i < 3; i++ {
		h, _ := p.Create("pool2", semaphore.WithLimit(3), semaphore.WithTTL(time.Minute))
		ok, err := h.Acquire().Run(context.Background())
		require.NoError(t, err)
		require.True(t, ok)
		handles = append(handles, h)
	}

	h4, _ := p.Create("pool2", semaphore.WithLimit(3), semaphore.WithTTL(time.Minute))
	ok, err := h4.Acquire().Run(context.Background())
	require.NoError(t, err)
	assert.False(t, ok)

	_, err = handles[0].Release().Run(context.Background())
	require.NoError(t, err)

	ok, err = h4.Acquire().Run(context.Background())
	require.NoError(t, err)
	assert.True(t, ok)

	st, err := h4.GetState().Run(context.Background())
	require.NoError(t, err)
	assert.Len(t, st.AcquiredSlots, 3)
}

func TestAcquireOrFail_ReturnsTypedError(t *testing.T) {
	p, _ := semaphore.NewProvider(semmemory.New())
	h1, _ := p.Create("single", semaphore.WithLimit(1), semaphore.WithTTL(time.Minute))
	h2, _ := p.Create("single", semaphore.WithLimit(1), semaphore.WithTTL(time.Minute))

	_, err := h1.AcquireOrFail().Run(context.Background())
	require.NoError(t, err)

	_, err = h2.AcquireOrFail().Run(context.Background())
	assert.ErrorIs(t, err, semaphore.ErrLimitReached)
}

func TestRelease_FailedReleaseOfUnknownSlot(t *testing.T) {
	p, _ := semaphore.NewProvider(semmemory.New())
	h, _ := p.Create("resource", semaphore.WithLimit(1), semaphore.WithTTL(time.Minute))

	res, err := h.Release().Run(context.Background())
	require.NoError(t, err)
	assert.False(t, res)

	_, err = h.ReleaseOrFail().Run(context.Background())
	assert.ErrorIs(t, err, semaphore.ErrFailedRelease)
}

func TestAcquireBlocking_SucceedsOnceSlotFrees(t *testing.T) {
	p, _ := semaphore.NewProvider(semmemory.New())
	h1, _ := p.Create("block", semaphore.WithLimit(1), semaphore.WithTTL(time.Minute))
	h2, _ := p.Create("block", semaphore.WithLimit(1), semaphore.WithTTL(time.Minute))

	_, _ = h1.Acquire().Run(context.Background())
	go func() {
		time.Sleep(30 * time.Millisecond)
		_, _ = h1.Release().Run(context.Background())
	}()

	ok, err := h2.AcquireBlocking(time.Second, 10*time.Millisecond).Run(context.Background())
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestRefresh_FailsForUnknownSlot(t *testing.T) {
	p, _ := semaphore.NewProvider(semmemory.New())
	h, _ := p.Create("refresh-me", semaphore.WithLimit(1), semaphore.WithTTL(time.Minute))

	_, err := h.Refresh(time.Minute).Run(context.Background())
	assert.ErrorIs(t, err, semaphore.ErrFailedRefresh)

	_, _ = h.Acquire().Run(context.Background())
	_, err = h.Refresh(time.Minute).Run(context.Background())
	require.NoError(t, err)
}

func TestRun_ReleasesAfterSuccess(t *testing.T) {
	p, _ := semaphore.NewProvider(semmemory.New())
	h, _ := p.Create("run-me", semaphore.WithLimit(1), semaphore.WithTTL(time.Minute))

	out, err := semaphore.Run(h, func(ctx *pipeline.Ctx) (int, error) {
		return 7, nil
	}).Run(context.Background())
	require.NoError(t, err)
	assert.True(t, out.Acquired)
	assert.Equal(t, 7, out.Value)

	st, err := h.GetState().Run(context.Background())
	require.NoError(t, err)
	assert.Nil(t, st)
}

func TestForceReleaseAll_ClearsEveryHolder(t *testing.T) {
	p, _ := semaphore.NewProvider(semmemory.New())
	for i := 0; i < 3; i++ {
		h, _ := p.Create("force", semaphore.WithLimit(3), semaphore.WithTTL(time.Minute))
		_, _ = h.Acquire().Run(context.Background())
	}

	h, _ := p.Create("force", semaphore.WithLimit(3), semaphore.WithTTL(time.Minute))
	removed, err := h.ForceReleaseAll().Run(context.Background())
	require.NoError(t, err)
	assert.True(t, removed)

	st, err := h.GetState().Run(context.Background())
	require.NoError(t, err)
	assert.Nil(t, st)
}

func TestEventsFire(t *testing.T) {
	var events []string
	p, _ := semaphore.NewProvider(semmemory.New(), semaphore.WithEventFunc(func(event string, _ any) {
		events = append(events, event)
	}))
	h, _ := p.Create("events", semaphore.WithLimit(1), semaphore.WithTTL(time.Minute))

	_, _ = h.Acquire().Run(context.Background())
	_, _ = h.Release().Run(context.Background())

	assert.Equal(t, []string{semaphore.EventAcquired, semaphore.EventReleased}, events)
}
