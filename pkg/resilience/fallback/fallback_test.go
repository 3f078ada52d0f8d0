package fallback_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aegiskit/aegis/pkg/pipeline"
	"github.com/aegiskit/aegis/pkg/resilience/fallback"
	"github.com/aegiskit/aegis/pkg/task"
)

func TestFallback_PassesThroughSuccess(t *testing.T) {
	tk := task.New(func(ctx *pipeline.Ctx) (int, error) {
		return 9, nil
	}).Pipe(fallback.New[int](fallback.Value(0)))

	v, err := tk.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 9, v)
}

func TestFallback_ResolvesValueOnFailure(t *testing.T) {
	boom := errors.New("boom")
	tk := task.New(func(ctx *pipeline.Ctx) (int, error) {
		return 0, boom
	}).Pipe(fallback.New[int](fallback.Value(99)))

	v, err := tk.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 99, v)
}

func TestFallback_ErrorPolicyCanDeclineToAct(t *testing.T) {
	boom := errors.New("boom")
	tk := task.New(func(ctx *pipeline.Ctx) (int, error) {
		return 0, boom
	}).Pipe(fallback.New[int](fallback.Value(99), fallback.WithErrorPolicy[int](func(_ int, _ error) bool {
		return false
	})))

	_, err := tk.Run(context.Background())
	assert.ErrorIs(t, err, boom)
}

func TestFallback_ResolverSeesCause(t *testing.T) {
	boom := errors.New("boom")
	var seen error
	tk := task.New(func(ctx *pipeline.Ctx) (int, error) {
		return 0, boom
	}).Pipe(fallback.New[int](func(ctx *pipeline.Ctx, cause error) (int, error) {
		seen = cause
		return 1, nil
	}))

	_, err := tk.Run(context.Background())
	require.NoError(t, err)
	assert.ErrorIs(t, seen, boom)
}

func TestFallback_OnFallbackCallback(t *testing.T) {
	boom := errors.New("boom")
	var fired error
	tk := task.New(func(ctx *pipeline.Ctx) (int, error) {
		return 0, boom
	}).Pipe(fallback.New[int](fallback.Value(0), fallback.WithOnFallback[int](func(err error) {
		fired = err
	})))

	_, _ = tk.Run(context.Background())
	assert.ErrorIs(t, fired, boom)
}
