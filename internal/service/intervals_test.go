package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/rbkantor/eightsleep-nosub-app/internal"
)

func intervalUser() *internal.User {
	u := storedUser(time.Now().Add(time.Hour))
	return &u
}

func TestFetchTemperatureIntervals_TypedPathWins(t *testing.T) {
	provider := &fakeProvider{
		fetchTypedFn: func(ctx context.Context, accessToken, userID string) ([]internal.Interval, error) {
			assert.Equal(t, "A1", accessToken)
			return []internal.Interval{{ID: "s1", Score: 82}}, nil
		},
	}
	svc := NewIntervalService(provider, nopMetrics, nopLogger())

	result := svc.FetchTemperatureIntervals(context.Background(), intervalUser())
	assert.True(t, result.Success)
	assert.Len(t, result.Intervals, 1)
	assert.Equal(t, "s1", result.Intervals[0].ID)
	assert.Empty(t, result.Message)
	assert.Equal(t, 0, provider.rawCalls)
}

func TestFetchTemperatureIntervals_TypedEmpty_NoMessage(t *testing.T) {
	provider := &fakeProvider{
		fetchTypedFn: func(ctx context.Context, accessToken, userID string) ([]internal.Interval, error) {
			return nil, nil
		},
	}
	svc := NewIntervalService(provider, nopMetrics, nopLogger())

	result := svc.FetchTemperatureIntervals(context.Background(), intervalUser())
	assert.True(t, result.Success)
	assert.NotNil(t, result.Intervals)
	assert.Empty(t, result.Intervals)
	assert.Empty(t, result.Message)
}

func TestFetchTemperatureIntervals_FallsBackToRaw(t *testing.T) {
	provider := &fakeProvider{
		fetchTypedFn: func(ctx context.Context, accessToken, userID string) ([]internal.Interval, error) {
			return nil, errors.New("schema mismatch")
		},
		fetchRawFn: func(ctx context.Context, accessToken, userID string) ([]internal.Interval, error) {
			return []internal.Interval{{ID: "s2", Score: 70}}, nil
		},
	}
	svc := NewIntervalService(provider, nopMetrics, nopLogger())

	result := svc.FetchTemperatureIntervals(context.Background(), intervalUser())
	assert.True(t, result.Success)
	assert.Len(t, result.Intervals, 1)
	assert.Equal(t, "s2", result.Intervals[0].ID)
	assert.Empty(t, result.Message)
	assert.Equal(t, 1, provider.typedCalls)
	assert.Equal(t, 1, provider.rawCalls)
}

func TestFetchTemperatureIntervals_RawEmpty_AttachesMessage(t *testing.T) {
	provider := &fakeProvider{
		fetchTypedFn: func(ctx context.Context, accessToken, userID string) ([]internal.Interval, error) {
			return nil, errors.New("boom")
		},
		fetchRawFn: func(ctx context.Context, accessToken, userID string) ([]internal.Interval, error) {
			return []internal.Interval{}, nil
		},
	}
	svc := NewIntervalService(provider, nopMetrics, nopLogger())

	result := svc.FetchTemperatureIntervals(context.Background(), intervalUser())
	assert.True(t, result.Success)
	assert.Empty(t, result.Intervals)
	assert.Equal(t, NoIntervalDataMessage, result.Message)
}

func TestFetchTemperatureIntervals_AllTiersFail_TerminalEnvelope(t *testing.T) {
	provider := &fakeProvider{
		fetchTypedFn: func(ctx context.Context, accessToken, userID string) ([]internal.Interval, error) {
			return nil, errors.New("primary down")
		},
		fetchRawFn: func(ctx context.Context, accessToken, userID string) ([]internal.Interval, error) {
			return nil, errors.New("fallback down")
		},
	}
	svc := NewIntervalService(provider, nopMetrics, nopLogger())

	result := svc.FetchTemperatureIntervals(context.Background(), intervalUser())
	assert.True(t, result.Success)
	assert.NotNil(t, result.Intervals)
	assert.Empty(t, result.Intervals)
	assert.Equal(t, NoIntervalDataMessage, result.Message)
	assert.Equal(t, 1, provider.typedCalls)
	assert.Equal(t, 1, provider.rawCalls)
}
