package service

import (
	"context"

	"github.com/rbkantor/eightsleep-nosub-app/internal"
	"github.com/rbkantor/eightsleep-nosub-app/internal/metrics"
)

// NoIntervalDataMessage is the canonical "no data yet" explanation.
// Callers treat an empty interval list carrying this message as the
// normal state for a fresh account, not as an error.
const NoIntervalDataMessage = "No interval data available yet. Sleep data will appear after using your mattress."

// IntervalService retrieves sleep interval telemetry through ordered
// fallback tiers.
type IntervalService struct {
	provider EightProvider
	recorder metrics.Recorder
	logger   internal.Logger
}

func NewIntervalService(provider EightProvider, recorder metrics.Recorder, logger internal.Logger) *IntervalService {
	return &IntervalService{provider: provider, recorder: recorder, logger: logger}
}

type intervalTier struct {
	name  string
	fetch func(ctx context.Context) ([]internal.Interval, error)
}

// FetchTemperatureIntervals never fails outward. The tiers run in
// order and the first success wins:
//
//  1. typed provider fetch
//  2. raw degraded fetch against the same endpoint
//  3. terminal: empty list plus explanatory message
//
// The credential must already be fresh; no refresh happens here.
func (s *IntervalService) FetchTemperatureIntervals(ctx context.Context, user *internal.User) internal.IntervalsResult {
	tiers := []intervalTier{
		{
			name: "typed",
			fetch: func(ctx context.Context) ([]internal.Interval, error) {
				return s.provider.FetchIntervals(ctx, user.EightAccessToken, user.EightUserID)
			},
		},
		{
			name: "raw",
			fetch: func(ctx context.Context) ([]internal.Interval, error) {
				return s.provider.FetchIntervalsRaw(ctx, user.EightAccessToken, user.EightUserID)
			},
		},
	}

	for _, tier := range tiers {
		intervals, err := tier.fetch(ctx)
		if err != nil {
			s.logger.Warnf("interval fetch tier %q failed for %s: %v", tier.name, user.Email, err)
			continue
		}
		s.recorder.RecordIntervalFetch(tier.name)
		result := internal.IntervalsResult{Success: true, Intervals: intervals}
		if result.Intervals == nil {
			result.Intervals = []internal.Interval{}
		}
		// The degraded tier returning nothing still deserves an
		// explanation; the typed tier's empty list stands on its own.
		if tier.name == "raw" && len(result.Intervals) == 0 {
			result.Message = NoIntervalDataMessage
		}
		return result
	}

	s.recorder.RecordIntervalFetch("empty")
	return internal.IntervalsResult{
		Success:   true,
		Intervals: []internal.Interval{},
		Message:   NoIntervalDataMessage,
	}
}
