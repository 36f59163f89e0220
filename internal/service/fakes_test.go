package service

import (
	"context"
	"errors"
	"sync"

	"go.uber.org/zap"

	"github.com/rbkantor/eightsleep-nosub-app/internal"
	"github.com/rbkantor/eightsleep-nosub-app/internal/config"
	"github.com/rbkantor/eightsleep-nosub-app/internal/eight"
	"github.com/rbkantor/eightsleep-nosub-app/internal/metrics"
)

func nopLogger() internal.Logger {
	return internal.NewZapLogger(zap.NewNop().Sugar())
}

func testConfig(approved ...string) *config.Config {
	return &config.Config{
		Env:            "development",
		JWTSecret:      "test-secret",
		ApprovedEmails: approved,
	}
}

// fakeProvider implements EightProvider with overridable behavior and
// call counters.
type fakeProvider struct {
	authenticateFn func(ctx context.Context, email, password string) (*eight.Token, error)
	refreshFn      func(ctx context.Context, refreshToken, userID string) (*eight.Token, error)
	fetchTypedFn   func(ctx context.Context, accessToken, userID string) ([]internal.Interval, error)
	fetchRawFn     func(ctx context.Context, accessToken, userID string) ([]internal.Interval, error)
	setLevelFn     func(ctx context.Context, accessToken, userID string, level int) error

	authenticateCalls int
	refreshCalls      int
	typedCalls        int
	rawCalls          int
	setLevelCalls     int
}

func (f *fakeProvider) Authenticate(ctx context.Context, email, password string) (*eight.Token, error) {
	f.authenticateCalls++
	if f.authenticateFn == nil {
		return nil, errors.New("authenticate not stubbed")
	}
	return f.authenticateFn(ctx, email, password)
}

func (f *fakeProvider) RefreshToken(ctx context.Context, refreshToken, userID string) (*eight.Token, error) {
	f.refreshCalls++
	if f.refreshFn == nil {
		return nil, errors.New("refresh not stubbed")
	}
	return f.refreshFn(ctx, refreshToken, userID)
}

func (f *fakeProvider) FetchIntervals(ctx context.Context, accessToken, userID string) ([]internal.Interval, error) {
	f.typedCalls++
	if f.fetchTypedFn == nil {
		return nil, errors.New("typed fetch not stubbed")
	}
	return f.fetchTypedFn(ctx, accessToken, userID)
}

func (f *fakeProvider) FetchIntervalsRaw(ctx context.Context, accessToken, userID string) ([]internal.Interval, error) {
	f.rawCalls++
	if f.fetchRawFn == nil {
		return nil, errors.New("raw fetch not stubbed")
	}
	return f.fetchRawFn(ctx, accessToken, userID)
}

func (f *fakeProvider) SetHeatingLevel(ctx context.Context, accessToken, userID string, level int) error {
	f.setLevelCalls++
	if f.setLevelFn == nil {
		return nil
	}
	return f.setLevelFn(ctx, accessToken, userID, level)
}

var _ EightProvider = (*fakeProvider)(nil)

// fakeUserRepo is an in-memory UserRepository with call counters.
type fakeUserRepo struct {
	mu          sync.Mutex
	users       map[string]internal.User
	getCalls    int
	upsertCalls int
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{users: make(map[string]internal.User)}
}

func (r *fakeUserRepo) GetUserByEmail(ctx context.Context, email string) (*internal.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.getCalls++
	u, ok := r.users[email]
	if !ok {
		return nil, internal.ErrNotFound
	}
	copied := u
	return &copied, nil
}

func (r *fakeUserRepo) UpsertUser(ctx context.Context, user *internal.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.upsertCalls++
	r.users[user.Email] = *user
	return nil
}

// fakeProfileRepo is an in-memory ProfileRepository.
type fakeProfileRepo struct {
	mu       sync.Mutex
	profiles map[string]internal.TemperatureProfile
}

func newFakeProfileRepo() *fakeProfileRepo {
	return &fakeProfileRepo{profiles: make(map[string]internal.TemperatureProfile)}
}

func (r *fakeProfileRepo) GetProfile(ctx context.Context, email string) (*internal.TemperatureProfile, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.profiles[email]
	if !ok {
		return nil, internal.ErrNotFound
	}
	copied := p
	return &copied, nil
}

func (r *fakeProfileRepo) UpsertProfile(ctx context.Context, profile *internal.TemperatureProfile) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.profiles[profile.Email] = *profile
	return nil
}

func (r *fakeProfileRepo) DeleteProfile(ctx context.Context, email string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.profiles[email]; !ok {
		return internal.ErrNotFound
	}
	delete(r.profiles, email)
	return nil
}

func (r *fakeProfileRepo) ListProfiles(ctx context.Context) ([]internal.TemperatureProfile, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	profiles := make([]internal.TemperatureProfile, 0, len(r.profiles))
	for _, p := range r.profiles {
		profiles = append(profiles, p)
	}
	return profiles, nil
}

// fakeAdjuster records invocations and can be told to fail.
type fakeAdjuster struct {
	calls int
	err   error
}

func (a *fakeAdjuster) Adjust(ctx context.Context) error {
	a.calls++
	return a.err
}

var nopMetrics = metrics.NopRecorder{}
