package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/rbkantor/eightsleep-nosub-app/internal"
	"github.com/rbkantor/eightsleep-nosub-app/internal/auth"
	"github.com/rbkantor/eightsleep-nosub-app/internal/config"
	"github.com/rbkantor/eightsleep-nosub-app/internal/eight"
	"github.com/rbkantor/eightsleep-nosub-app/internal/metrics"
	"github.com/rbkantor/eightsleep-nosub-app/internal/storage"
)

var validate = validator.New()

type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

func ValidateLoginRequest(req *LoginRequest) error {
	return validate.Struct(req)
}

// UserService owns the credential lifecycle: login, login-state checks
// and the lazy provider token refresh both run through here.
type UserService struct {
	cfg      *config.Config
	users    storage.UserRepository
	provider EightProvider
	recorder metrics.Recorder
	logger   internal.Logger
}

func NewUserService(cfg *config.Config, users storage.UserRepository, provider EightProvider, recorder metrics.Recorder, logger internal.Logger) *UserService {
	return &UserService{cfg: cfg, users: users, provider: provider, recorder: recorder, logger: logger}
}

// Login authenticates against the provider, enforces the approval
// allow-list and persists the credential. On success it returns a
// signed session token for the cookie. A rejected email writes nothing.
func (s *UserService) Login(ctx context.Context, req *LoginRequest) (string, error) {
	if err := ValidateLoginRequest(req); err != nil {
		return "", internal.NewValidationError(err.Error())
	}

	token, err := s.provider.Authenticate(ctx, req.Email, req.Password)
	if err != nil {
		var authErr *eight.AuthError
		if errors.As(err, &authErr) {
			s.recorder.RecordLogin("provider_error")
			return "", internal.ErrProviderAuth
		}
		s.recorder.RecordLogin("error")
		return "", fmt.Errorf("provider authentication failed: %w", err)
	}

	if !s.cfg.IsApproved(req.Email) {
		s.logger.Warnf("login rejected, email not approved: %s", req.Email)
		s.recorder.RecordLogin("rejected")
		return "", internal.ErrNotApproved
	}

	user := &internal.User{
		Email:               req.Email,
		EightAccessToken:    token.AccessToken,
		EightRefreshToken:   token.RefreshToken,
		EightTokenExpiresAt: token.ExpiresAt,
		EightUserID:         token.UserID,
	}
	if err := s.users.UpsertUser(ctx, user); err != nil {
		s.recorder.RecordLogin("error")
		return "", fmt.Errorf("failed to save user credential: %w", err)
	}

	sessionToken, err := auth.IssueSessionToken(req.Email, s.cfg.JWTSecret, time.Now())
	if err != nil {
		s.recorder.RecordLogin("error")
		return "", fmt.Errorf("failed to issue session token: %w", err)
	}

	s.logger.Infof("user logged in: %s", req.Email)
	s.recorder.RecordLogin("success")
	return sessionToken, nil
}

// CheckLoginState reports whether the caller needs to log in again. It
// verifies the session cookie, checks the stored credential and lazily
// refreshes an expired provider token. Every failure mode answers
// "login required" rather than an error.
func (s *UserService) CheckLoginState(ctx context.Context, rawCookieHeader string) (loginRequired bool, err error) {
	email, err := auth.VerifyCookieHeader(rawCookieHeader, s.cfg.JWTSecret)
	if err != nil {
		return true, nil
	}

	user, err := s.users.GetUserByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, internal.ErrNotFound) {
			return true, nil
		}
		return true, fmt.Errorf("failed to load user: %w", err)
	}

	if user.TokenExpired(time.Now()) {
		s.logger.Infof("token expired, refreshing for user %s", user.Email)
		if _, err := s.EnsureFreshToken(ctx, user); err != nil {
			s.logger.Errorf("token renewal failed for %s: %v", user.Email, err)
			return true, nil
		}
	}
	return false, nil
}

// EnsureFreshToken refreshes the stored credential when it is expired
// and persists the replacement before returning it. At most one refresh
// happens per call; a valid credential passes through untouched.
// Concurrent callers may race; the store's atomic upsert makes that
// last-write-wins.
func (s *UserService) EnsureFreshToken(ctx context.Context, user *internal.User) (*internal.User, error) {
	if !user.TokenExpired(time.Now()) {
		return user, nil
	}

	token, err := s.provider.RefreshToken(ctx, user.EightRefreshToken, user.EightUserID)
	if err != nil {
		var authErr *eight.AuthError
		if errors.As(err, &authErr) {
			s.recorder.RecordTokenRefresh("auth_error")
			return nil, internal.ErrProviderAuth
		}
		s.recorder.RecordTokenRefresh("error")
		return nil, fmt.Errorf("token refresh failed: %w", err)
	}

	refreshed := &internal.User{
		Email:               user.Email,
		EightAccessToken:    token.AccessToken,
		EightRefreshToken:   token.RefreshToken,
		EightTokenExpiresAt: token.ExpiresAt,
		EightUserID:         token.UserID,
	}
	if err := s.users.UpsertUser(ctx, refreshed); err != nil {
		s.recorder.RecordTokenRefresh("error")
		return nil, fmt.Errorf("failed to persist refreshed credential: %w", err)
	}

	s.recorder.RecordTokenRefresh("success")
	return refreshed, nil
}

// GetUser loads the credential row for an identity.
func (s *UserService) GetUser(ctx context.Context, email string) (*internal.User, error) {
	return s.users.GetUserByEmail(ctx, email)
}
