package service

import (
	"context"
	"fmt"
	"time"

	"github.com/rbkantor/eightsleep-nosub-app/internal"
	"github.com/rbkantor/eightsleep-nosub-app/internal/storage"
)

type TemperatureProfileRequest struct {
	BedTime            string `json:"bedTime" validate:"required,datetime=15:04:05"`
	WakeupTime         string `json:"wakeupTime" validate:"required,datetime=15:04:05"`
	InitialSleepLevel  int    `json:"initialSleepLevel" validate:"gte=-100,lte=100"`
	MidStageSleepLevel int    `json:"midStageSleepLevel" validate:"gte=-100,lte=100"`
	FinalSleepLevel    int    `json:"finalSleepLevel" validate:"gte=-100,lte=100"`
	TimezoneTZ         string `json:"timezoneTZ" validate:"required,max=50,timezone"`
}

func ValidateTemperatureProfileRequest(req *TemperatureProfileRequest) error {
	return validate.Struct(req)
}

// ProfileService manages per-user temperature profiles and the
// post-write adjustment notification.
type ProfileService struct {
	profiles storage.ProfileRepository
	adjuster TemperatureAdjuster
	logger   internal.Logger
}

func NewProfileService(profiles storage.ProfileRepository, adjuster TemperatureAdjuster, logger internal.Logger) *ProfileService {
	return &ProfileService{profiles: profiles, adjuster: adjuster, logger: logger}
}

func (s *ProfileService) GetProfile(ctx context.Context, email string) (*internal.TemperatureProfile, error) {
	return s.profiles.GetProfile(ctx, email)
}

// UpsertProfile validates and writes the profile, then invokes the
// temperature adjuster synchronously. The write stays committed even
// when the adjuster fails; that failure surfaces as an error to the
// caller rather than being swallowed.
func (s *ProfileService) UpsertProfile(ctx context.Context, email string, req *TemperatureProfileRequest) error {
	if err := ValidateTemperatureProfileRequest(req); err != nil {
		return internal.NewValidationError(err.Error())
	}

	profile := &internal.TemperatureProfile{
		Email:              email,
		BedTime:            req.BedTime,
		WakeupTime:         req.WakeupTime,
		InitialSleepLevel:  req.InitialSleepLevel,
		MidStageSleepLevel: req.MidStageSleepLevel,
		FinalSleepLevel:    req.FinalSleepLevel,
		TimezoneTZ:         req.TimezoneTZ,
		UpdatedAt:          time.Now(),
	}
	if err := s.profiles.UpsertProfile(ctx, profile); err != nil {
		return fmt.Errorf("failed to save profile: %w", err)
	}

	if err := s.adjuster.Adjust(ctx); err != nil {
		s.logger.Errorf("temperature adjustment after profile update failed for %s: %v", email, err)
		return fmt.Errorf("temperature adjustment failed: %w", err)
	}
	return nil
}

func (s *ProfileService) DeleteProfile(ctx context.Context, email string) error {
	return s.profiles.DeleteProfile(ctx, email)
}
