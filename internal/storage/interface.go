package storage

import (
	"context"

	"github.com/rbkantor/eightsleep-nosub-app/internal"
)

// UserRepository persists provider credentials keyed by email. Upsert
// must be a single atomic insert-or-update: concurrent refreshes for
// the same email resolve last-write-wins, never a lost update.
type UserRepository interface {
	GetUserByEmail(ctx context.Context, email string) (*internal.User, error)
	UpsertUser(ctx context.Context, user *internal.User) error
}

type ProfileRepository interface {
	GetProfile(ctx context.Context, email string) (*internal.TemperatureProfile, error)
	UpsertProfile(ctx context.Context, profile *internal.TemperatureProfile) error
	DeleteProfile(ctx context.Context, email string) error
	// ListProfiles returns every stored profile, used by the
	// temperature adjuster.
	ListProfiles(ctx context.Context) ([]internal.TemperatureProfile, error)
}
