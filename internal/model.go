package internal

import "time"

// User holds the Eight Sleep credential material for one account.
// Email is the unique key; the three token fields are always replaced
// together so EightTokenExpiresAt reflects the live access token.
type User struct {
	Email               string    `json:"email"`
	EightAccessToken    string    `json:"eight_access_token"`
	EightRefreshToken   string    `json:"eight_refresh_token"`
	EightTokenExpiresAt time.Time `json:"eight_token_expires_at"`
	EightUserID         string    `json:"eight_user_id"`
}

// TokenExpired reports whether the stored access token needs a refresh.
func (u *User) TokenExpired(now time.Time) bool {
	return now.After(u.EightTokenExpiresAt)
}

type TemperatureProfile struct {
	Email              string    `json:"email"`
	BedTime            string    `json:"bed_time"`    // HH:MM:SS
	WakeupTime         string    `json:"wakeup_time"` // HH:MM:SS
	InitialSleepLevel  int       `json:"initial_sleep_level"`
	MidStageSleepLevel int       `json:"mid_stage_sleep_level"`
	FinalSleepLevel    int       `json:"final_sleep_level"`
	TimezoneTZ         string    `json:"timezone_tz"`
	UpdatedAt          time.Time `json:"updated_at"`
}

// Interval is one recorded sleep session as reported by the provider.
// Intervals are not persisted locally; they are re-fetched on demand.
type Interval struct {
	ID         string                       `json:"id"`
	StartTime  time.Time                    `json:"ts"`
	Stages     []SleepStage                 `json:"stages"`
	Score      int                          `json:"score"`
	Timeseries map[string][]TimeseriesPoint `json:"timeseries,omitempty"`
	Incomplete bool                         `json:"incomplete"`
}

type SleepStage struct {
	Stage    string `json:"stage"`
	Duration int    `json:"duration"` // seconds
}

type TimeseriesPoint struct {
	Time  time.Time `json:"time"`
	Value float64   `json:"value"`
}

// IntervalsResult is the envelope returned by interval retrieval. It is
// always successful; an empty list plus Message is the canonical
// "no data yet" state, whatever the upstream cause was.
type IntervalsResult struct {
	Success   bool       `json:"success"`
	Intervals []Interval `json:"intervals"`
	Message   string     `json:"message,omitempty"`
}
