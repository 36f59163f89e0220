package service

import (
	"context"
	"fmt"
	"time"

	"github.com/rbkantor/eightsleep-nosub-app/internal"
	"github.com/rbkantor/eightsleep-nosub-app/internal/storage"
)

// EightAdjuster recomputes each profiled user's target heating level
// and pushes it to their device. It is triggered after profile updates;
// the schedule-based trigger lives outside this service.
type EightAdjuster struct {
	users    *UserService
	profiles storage.ProfileRepository
	provider EightProvider
	logger   internal.Logger
	now      func() time.Time
}

func NewEightAdjuster(users *UserService, profiles storage.ProfileRepository, provider EightProvider, logger internal.Logger) *EightAdjuster {
	return &EightAdjuster{users: users, profiles: profiles, provider: provider, logger: logger, now: time.Now}
}

// Adjust walks every stored profile, picks the sleep-stage level for
// the user's current local time and sets it on the device. Users whose
// local time is outside their sleep window are skipped. The first
// failure aborts the run.
func (a *EightAdjuster) Adjust(ctx context.Context) error {
	profiles, err := a.profiles.ListProfiles(ctx)
	if err != nil {
		return fmt.Errorf("failed to list profiles: %w", err)
	}

	for _, profile := range profiles {
		level, active, err := stageLevelAt(&profile, a.now())
		if err != nil {
			return fmt.Errorf("invalid profile for %s: %w", profile.Email, err)
		}
		if !active {
			continue
		}

		user, err := a.users.GetUser(ctx, profile.Email)
		if err != nil {
			return fmt.Errorf("failed to load user %s: %w", profile.Email, err)
		}
		user, err = a.users.EnsureFreshToken(ctx, user)
		if err != nil {
			return fmt.Errorf("failed to refresh token for %s: %w", profile.Email, err)
		}

		if err := a.provider.SetHeatingLevel(ctx, user.EightAccessToken, user.EightUserID, level); err != nil {
			return fmt.Errorf("failed to set heating level for %s: %w", profile.Email, err)
		}
		a.logger.Infof("set heating level %d for %s", level, profile.Email)
	}
	return nil
}

// stageLevelAt resolves the profile's level for the given instant:
// initial during the first hour in bed, final during the last hour
// before wakeup, mid-stage in between. Windows crossing midnight are
// handled by shifting onto a minutes-since-bedtime axis.
func stageLevelAt(profile *internal.TemperatureProfile, now time.Time) (level int, active bool, err error) {
	loc, err := time.LoadLocation(profile.TimezoneTZ)
	if err != nil {
		return 0, false, fmt.Errorf("bad timezone %q: %w", profile.TimezoneTZ, err)
	}

	bed, err := time.Parse("15:04:05", profile.BedTime)
	if err != nil {
		return 0, false, fmt.Errorf("bad bed time %q: %w", profile.BedTime, err)
	}
	wake, err := time.Parse("15:04:05", profile.WakeupTime)
	if err != nil {
		return 0, false, fmt.Errorf("bad wakeup time %q: %w", profile.WakeupTime, err)
	}

	local := now.In(loc)
	nowMin := local.Hour()*60 + local.Minute()
	bedMin := bed.Hour()*60 + bed.Minute()
	wakeMin := wake.Hour()*60 + wake.Minute()

	const day = 24 * 60
	windowLen := (wakeMin - bedMin + day) % day
	sinceBed := (nowMin - bedMin + day) % day
	if windowLen == 0 || sinceBed >= windowLen {
		return 0, false, nil
	}

	switch {
	case sinceBed < 60:
		return profile.InitialSleepLevel, true, nil
	case windowLen-sinceBed <= 60:
		return profile.FinalSleepLevel, true, nil
	default:
		return profile.MidStageSleepLevel, true, nil
	}
}
