package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/rbkantor/eightsleep-nosub-app/internal"
	"github.com/rbkantor/eightsleep-nosub-app/internal/auth"
	"github.com/rbkantor/eightsleep-nosub-app/internal/eight"
)

func storedUser(expiresAt time.Time) internal.User {
	return internal.User{
		Email:               "a@x.com",
		EightAccessToken:    "A1",
		EightRefreshToken:   "R1",
		EightTokenExpiresAt: expiresAt,
		EightUserID:         "eight-user-1",
	}
}

func TestLogin_Success(t *testing.T) {
	repo := newFakeUserRepo()
	provider := &fakeProvider{
		authenticateFn: func(ctx context.Context, email, password string) (*eight.Token, error) {
			return &eight.Token{AccessToken: "A1", RefreshToken: "R1", ExpiresAt: time.Now().Add(time.Hour), UserID: "eight-user-1"}, nil
		},
	}
	svc := NewUserService(testConfig("a@x.com"), repo, provider, nopMetrics, nopLogger())

	token, err := svc.Login(context.Background(), &LoginRequest{Email: "a@x.com", Password: "pw"})
	assert.NoError(t, err)
	assert.NotEmpty(t, token)

	email, err := auth.VerifySessionToken(token, "test-secret")
	assert.NoError(t, err)
	assert.Equal(t, "a@x.com", email)

	stored, err := repo.GetUserByEmail(context.Background(), "a@x.com")
	assert.NoError(t, err)
	assert.Equal(t, "A1", stored.EightAccessToken)
	assert.Equal(t, "eight-user-1", stored.EightUserID)
}

func TestLogin_NotApproved(t *testing.T) {
	repo := newFakeUserRepo()
	provider := &fakeProvider{
		authenticateFn: func(ctx context.Context, email, password string) (*eight.Token, error) {
			return &eight.Token{AccessToken: "A1", ExpiresAt: time.Now().Add(time.Hour)}, nil
		},
	}
	svc := NewUserService(testConfig("someoneelse@x.com"), repo, provider, nopMetrics, nopLogger())

	_, err := svc.Login(context.Background(), &LoginRequest{Email: "a@x.com", Password: "pw"})
	assert.ErrorIs(t, err, internal.ErrNotApproved)
	// No credential row may be written for a rejected email.
	assert.Equal(t, 0, repo.upsertCalls)
}

func TestLogin_ProviderRejects(t *testing.T) {
	repo := newFakeUserRepo()
	provider := &fakeProvider{
		authenticateFn: func(ctx context.Context, email, password string) (*eight.Token, error) {
			return nil, &eight.AuthError{Status: 401, Reason: "bad credentials"}
		},
	}
	svc := NewUserService(testConfig("a@x.com"), repo, provider, nopMetrics, nopLogger())

	_, err := svc.Login(context.Background(), &LoginRequest{Email: "a@x.com", Password: "wrong"})
	assert.ErrorIs(t, err, internal.ErrProviderAuth)
	assert.Equal(t, 0, repo.upsertCalls)
}

func TestLogin_InvalidEmail(t *testing.T) {
	repo := newFakeUserRepo()
	provider := &fakeProvider{}
	svc := NewUserService(testConfig(), repo, provider, nopMetrics, nopLogger())

	_, err := svc.Login(context.Background(), &LoginRequest{Email: "not-an-email", Password: "pw"})
	var validationErr *internal.ValidationError
	assert.ErrorAs(t, err, &validationErr)
	// Rejected before any side effect.
	assert.Equal(t, 0, provider.authenticateCalls)
}

func TestCheckLoginState_NoCookie(t *testing.T) {
	repo := newFakeUserRepo()
	svc := NewUserService(testConfig(), repo, &fakeProvider{}, nopMetrics, nopLogger())

	loginRequired, err := svc.CheckLoginState(context.Background(), "")
	assert.NoError(t, err)
	assert.True(t, loginRequired)
	// The store must not be touched before the session verifies.
	assert.Equal(t, 0, repo.getCalls)
}

func TestCheckLoginState_FreshToken_NoRefresh(t *testing.T) {
	repo := newFakeUserRepo()
	repo.users["a@x.com"] = storedUser(time.Now().Add(time.Hour))
	provider := &fakeProvider{}
	svc := NewUserService(testConfig(), repo, provider, nopMetrics, nopLogger())

	header := sessionCookieHeader(t, "a@x.com")
	loginRequired, err := svc.CheckLoginState(context.Background(), header)
	assert.NoError(t, err)
	assert.False(t, loginRequired)
	assert.Equal(t, 0, provider.refreshCalls)
}

func TestCheckLoginState_ExpiredToken_RefreshesOnce(t *testing.T) {
	repo := newFakeUserRepo()
	repo.users["a@x.com"] = storedUser(time.Now().Add(-time.Minute))
	provider := &fakeProvider{
		refreshFn: func(ctx context.Context, refreshToken, userID string) (*eight.Token, error) {
			assert.Equal(t, "R1", refreshToken)
			return &eight.Token{AccessToken: "A2", RefreshToken: "R2", ExpiresAt: time.Now().Add(time.Hour), UserID: userID}, nil
		},
	}
	svc := NewUserService(testConfig(), repo, provider, nopMetrics, nopLogger())

	header := sessionCookieHeader(t, "a@x.com")
	loginRequired, err := svc.CheckLoginState(context.Background(), header)
	assert.NoError(t, err)
	assert.False(t, loginRequired)
	assert.Equal(t, 1, provider.refreshCalls)

	stored, _ := repo.GetUserByEmail(context.Background(), "a@x.com")
	assert.Equal(t, "A2", stored.EightAccessToken)
	assert.Equal(t, "R2", stored.EightRefreshToken)
}

func TestCheckLoginState_RefreshFails_RequiresLogin(t *testing.T) {
	repo := newFakeUserRepo()
	repo.users["a@x.com"] = storedUser(time.Now().Add(-time.Minute))
	provider := &fakeProvider{
		refreshFn: func(ctx context.Context, refreshToken, userID string) (*eight.Token, error) {
			return nil, &eight.AuthError{Status: 401, Reason: "refresh token revoked"}
		},
	}
	svc := NewUserService(testConfig(), repo, provider, nopMetrics, nopLogger())

	header := sessionCookieHeader(t, "a@x.com")
	loginRequired, err := svc.CheckLoginState(context.Background(), header)
	assert.NoError(t, err)
	assert.True(t, loginRequired)
}

func TestCheckLoginState_UnknownUser(t *testing.T) {
	repo := newFakeUserRepo()
	svc := NewUserService(testConfig(), repo, &fakeProvider{}, nopMetrics, nopLogger())

	header := sessionCookieHeader(t, "ghost@x.com")
	loginRequired, err := svc.CheckLoginState(context.Background(), header)
	assert.NoError(t, err)
	assert.True(t, loginRequired)
}

func TestEnsureFreshToken_PassesThroughValidCredential(t *testing.T) {
	repo := newFakeUserRepo()
	user := storedUser(time.Now().Add(time.Hour))
	provider := &fakeProvider{}
	svc := NewUserService(testConfig(), repo, provider, nopMetrics, nopLogger())

	got, err := svc.EnsureFreshToken(context.Background(), &user)
	assert.NoError(t, err)
	assert.Equal(t, "A1", got.EightAccessToken)
	assert.Equal(t, 0, provider.refreshCalls)
	assert.Equal(t, 0, repo.upsertCalls)
}

func TestEnsureFreshToken_ProviderAuthError(t *testing.T) {
	repo := newFakeUserRepo()
	user := storedUser(time.Now().Add(-time.Minute))
	provider := &fakeProvider{
		refreshFn: func(ctx context.Context, refreshToken, userID string) (*eight.Token, error) {
			return nil, &eight.AuthError{Status: 401, Reason: "revoked"}
		},
	}
	svc := NewUserService(testConfig(), repo, provider, nopMetrics, nopLogger())

	_, err := svc.EnsureFreshToken(context.Background(), &user)
	assert.ErrorIs(t, err, internal.ErrProviderAuth)
	assert.Equal(t, 0, repo.upsertCalls)
}

func sessionCookieHeader(t *testing.T, email string) string {
	t.Helper()
	token, err := auth.IssueSessionToken(email, "test-secret", time.Now())
	assert.NoError(t, err)
	return auth.CookieName + "=" + token
}
