package service

import (
	"context"

	"github.com/rbkantor/eightsleep-nosub-app/internal"
	"github.com/rbkantor/eightsleep-nosub-app/internal/eight"
)

// EightProvider is the slice of the Eight Sleep client the service
// layer depends on. Tests substitute a fake.
type EightProvider interface {
	Authenticate(ctx context.Context, email, password string) (*eight.Token, error)
	RefreshToken(ctx context.Context, refreshToken, eightUserID string) (*eight.Token, error)
	FetchIntervals(ctx context.Context, accessToken, eightUserID string) ([]internal.Interval, error)
	FetchIntervalsRaw(ctx context.Context, accessToken, eightUserID string) ([]internal.Interval, error)
	SetHeatingLevel(ctx context.Context, accessToken, eightUserID string, level int) error
}

// TemperatureAdjuster recomputes and pushes device temperature after a
// profile change. Invoked synchronously; a failure fails the profile
// update even though the write already committed.
type TemperatureAdjuster interface {
	Adjust(ctx context.Context) error
}
