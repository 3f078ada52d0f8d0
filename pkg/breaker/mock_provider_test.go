package breaker_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/aegiskit/aegis/pkg/breaker"
	"github.com/aegiskit/aegis/pkg/pipeline"
)

// Using a gomock-driven fake Adapter lets these tests assert on exactly
// which Transition the provider was handed, independent of any real
// storage backend's own state machine.

func TestProvider_EmitsOpenedOnlyWhenAdapterTransitionsToOpen(t *testing.T) {
	ctrl := gomock.NewController(t)
	adapter := NewMockAdapter(ctrl)

	policy := &breaker.Consecutive{FailureThreshold: 1, SuccessThreshold: 1}

	adapter.EXPECT().
		UpdateState(gomock.Any(), gomock.Any(), policy, gomock.Any(), gomock.Any()).
		Return(breaker.Transition{From: breaker.Closed, To: breaker.Closed}, nil)
	adapter.EXPECT().
		GetState(gomock.Any(), gomock.Any(), policy).
		Return(nil, nil)
	adapter.EXPECT().
		TrackFailure(gomock.Any(), gomock.Any(), policy, gomock.Any()).
		Return(breaker.Transition{From: breaker.Closed, To: breaker.Open}, nil)

	var events []string
	p, err := breaker.NewProvider(adapter, breaker.WithEventFunc(func(event string, _ any) {
		events = append(events, event)
	}))
	require.NoError(t, err)

	h, err := p.Create("svc", breaker.WithPolicy(policy))
	require.NoError(t, err)

	_, err = breaker.RunOrFail(h, func(*pipeline.Ctx) (int, error) {
		return 0, errors.New("boom")
	}).Run(context.Background())
	require.Error(t, err)

	assert.Equal(t, []string{breaker.EventOpened}, events)
}

func TestProvider_NoEventOnUnchangedTransition(t *testing.T) {
	ctrl := gomock.NewController(t)
	adapter := NewMockAdapter(ctrl)

	policy := &breaker.Consecutive{FailureThreshold: 5, SuccessThreshold: 1}

	adapter.EXPECT().
		UpdateState(gomock.Any(), gomock.Any(), policy, gomock.Any(), gomock.Any()).
		Return(breaker.Transition{From: breaker.Closed, To: breaker.Closed}, nil)
	adapter.EXPECT().
		GetState(gomock.Any(), gomock.Any(), policy).
		Return(nil, nil)
	adapter.EXPECT().
		TrackSuccess(gomock.Any(), gomock.Any(), policy, gomock.Any()).
		Return(breaker.Transition{From: breaker.Closed, To: breaker.Closed}, nil)

	var events []string
	p, err := breaker.NewProvider(adapter, breaker.WithEventFunc(func(event string, _ any) {
		events = append(events, event)
	}))
	require.NoError(t, err)

	h, err := p.Create("svc2", breaker.WithPolicy(policy))
	require.NoError(t, err)

	val, err := breaker.RunOrFail(h, func(*pipeline.Ctx) (int, error) {
		return 7, nil
	}).Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 7, val)

	assert.Empty(t, events)
}

func TestProvider_PropagatesAdapterErrorFromTrackFailure(t *testing.T) {
	ctrl := gomock.NewController(t)
	adapter := NewMockAdapter(ctrl)

	policy := &breaker.Consecutive{FailureThreshold: 1, SuccessThreshold: 1}
	backendErr := errors.New("backend unavailable")

	adapter.EXPECT().
		UpdateState(gomock.Any(), gomock.Any(), policy, gomock.Any(), gomock.Any()).
		Return(breaker.Transition{From: breaker.Closed, To: breaker.Closed}, nil)
	adapter.EXPECT().
		GetState(gomock.Any(), gomock.Any(), policy).
		Return(nil, nil)
	adapter.EXPECT().
		TrackFailure(gomock.Any(), gomock.Any(), policy, gomock.Any()).
		Return(breaker.Transition{}, backendErr)

	p, err := breaker.NewProvider(adapter)
	require.NoError(t, err)

	h, err := p.Create("svc3", breaker.WithPolicy(policy))
	require.NoError(t, err)

	_, err = breaker.RunOrFail(h, func(*pipeline.Ctx) (int, error) {
		return 0, errors.New("boom")
	}).Run(context.Background())
	assert.ErrorIs(t, err, backendErr)
}

func TestProvider_ResetAlwaysEmitsResetEvent(t *testing.T) {
	ctrl := gomock.NewController(t)
	adapter := NewMockAdapter(ctrl)

	policy := &breaker.Consecutive{FailureThreshold: 1, SuccessThreshold: 1}

	adapter.EXPECT().
		Reset(gomock.Any(), gomock.Any(), policy, gomock.Any()).
		Return(breaker.Transition{From: breaker.Isolated, To: breaker.Closed}, nil)

	var events []string
	p, err := breaker.NewProvider(adapter, breaker.WithEventFunc(func(event string, _ any) {
		events = append(events, event)
	}))
	require.NoError(t, err)

	h, err := p.Create("svc4", breaker.WithPolicy(policy))
	require.NoError(t, err)

	_, err = h.Reset().Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, []string{breaker.EventReset}, events)
}
