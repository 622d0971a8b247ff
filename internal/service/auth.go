// Package service contains the business logic layer: validation, ownership
// enforcement, and orchestration between repositories and providers. It
// knows nothing about HTTP — handlers translate requests in and domain
// errors out.
package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/arefin/memotube/internal/apperror"
	"github.com/arefin/memotube/internal/auth"
	"github.com/arefin/memotube/internal/model"
	"github.com/arefin/memotube/internal/repository"
)

// Validation bounds for user fields.
const (
	MaxUsernameLength    = 30
	MaxDisplayNameLength = 100
)

// AuthService handles registration, login, token refresh, and profile
// management.
type AuthService struct {
	users     repository.UserRepository
	passwords *auth.PasswordService
	tokens    *auth.TokenService
	logger    *slog.Logger
}

func NewAuthService(
	users repository.UserRepository,
	passwords *auth.PasswordService,
	tokens *auth.TokenService,
	logger *slog.Logger,
) *AuthService {
	return &AuthService{
		users:     users,
		passwords: passwords,
		tokens:    tokens,
		logger:    logger,
	}
}

// RegisterInput is the payload for password registration.
type RegisterInput struct {
	Email       string
	Username    string
	Password    string
	DisplayName string
}

// Register validates the input, hashes the password, creates the account,
// and issues the first token pair.
//
// Email is lowercased here, once, so every later lookup and the UNIQUE
// constraint see the canonical form. A taken email is a Conflict (409) —
// registration is the one path where email existence is necessarily
// disclosed; login never discloses it.
func (s *AuthService) Register(ctx context.Context, in RegisterInput) (*model.User, *auth.TokenPair, error) {
	email := normalizeEmail(in.Email)
	if email == "" || !strings.Contains(email, "@") {
		return nil, nil, apperror.ValidationFailed("email", "a valid email is required")
	}

	username := strings.TrimSpace(in.Username)
	if username == "" {
		return nil, nil, apperror.ValidationFailed("username", "username is required")
	}
	if len(username) > MaxUsernameLength {
		return nil, nil, apperror.ValidationFailed("username",
			fmt.Sprintf("username must be %d characters or less", MaxUsernameLength))
	}

	if err := auth.ValidatePolicy(in.Password); err != nil {
		return nil, nil, apperror.ValidationFailed("password", err.Error())
	}

	displayName := strings.TrimSpace(in.DisplayName)
	if displayName == "" {
		displayName = username
	}
	if len(displayName) > MaxDisplayNameLength {
		return nil, nil, apperror.ValidationFailed("displayName",
			fmt.Sprintf("display name must be %d characters or less", MaxDisplayNameLength))
	}

	// Friendly pre-check; the UNIQUE constraint still backs this up if two
	// registrations race.
	if _, err := s.users.GetUserByEmail(ctx, email); err == nil {
		return nil, nil, apperror.Conflict("user", "email already registered")
	} else if !errors.Is(err, apperror.ErrNotFound) {
		return nil, nil, fmt.Errorf("checking email availability: %w", err)
	}

	hash, err := s.passwords.Hash(in.Password)
	if err != nil {
		return nil, nil, apperror.ValidationFailed("password", "password could not be processed")
	}

	user := &model.User{
		Email:        email,
		Username:     username,
		DisplayName:  displayName,
		PasswordHash: hash,
	}
	if err := s.users.CreateUser(ctx, user); err != nil {
		if errors.Is(err, apperror.ErrConflict) {
			return nil, nil, err
		}
		s.logger.Error("failed to create user",
			slog.String("email", email),
			slog.String("error", err.Error()),
		)
		return nil, nil, fmt.Errorf("creating user: %w", err)
	}

	pair, err := s.tokens.IssuePair(user)
	if err != nil {
		return nil, nil, fmt.Errorf("issuing tokens: %w", err)
	}

	s.logger.Info("user registered",
		slog.String("userID", user.ID),
		slog.String("username", user.Username),
	)

	return user, pair, nil
}

// Login verifies credentials and issues a fresh token pair.
//
// Every failure — unknown email, wrong password, deactivated account —
// surfaces as the same generic Unauthenticated error. The password check
// runs even when the email is unknown, against an empty hash, so the two
// cases cost roughly the same time.
func (s *AuthService) Login(ctx context.Context, email, password string) (*model.User, *auth.TokenPair, error) {
	genericErr := apperror.Unauthenticated("invalid email or password")

	user, err := s.users.GetUserByEmail(ctx, normalizeEmail(email))
	if err != nil {
		if errors.Is(err, apperror.ErrNotFound) {
			s.passwords.Verify("", password) // burn the compare anyway
			return nil, nil, genericErr
		}
		return nil, nil, fmt.Errorf("looking up user: %w", err)
	}

	if !s.passwords.Verify(user.PasswordHash, password) {
		return nil, nil, genericErr
	}
	if !user.Active {
		return nil, nil, genericErr
	}

	pair, err := s.tokens.IssuePair(user)
	if err != nil {
		return nil, nil, fmt.Errorf("issuing tokens: %w", err)
	}

	s.logger.Info("user logged in", slog.String("userID", user.ID))

	return user, pair, nil
}

// Refresh exchanges a valid refresh token for a brand-new pair. The user is
// re-read so a deactivated account can't keep minting access tokens for the
// rest of its refresh window.
func (s *AuthService) Refresh(ctx context.Context, refreshToken string) (*auth.TokenPair, error) {
	identity, err := s.tokens.VerifyRefresh(refreshToken)
	if err != nil {
		if errors.Is(err, auth.ErrTokenExpired) {
			return nil, apperror.TokenExpired()
		}
		return nil, apperror.Unauthenticated("invalid refresh token")
	}

	user, err := s.users.GetUserByID(ctx, identity.UserID)
	if err != nil {
		if errors.Is(err, apperror.ErrNotFound) {
			return nil, apperror.Unauthenticated("invalid refresh token")
		}
		return nil, fmt.Errorf("looking up user: %w", err)
	}
	if !user.Active {
		return nil, apperror.Unauthenticated("invalid refresh token")
	}

	pair, err := s.tokens.IssuePair(user)
	if err != nil {
		return nil, fmt.Errorf("issuing tokens: %w", err)
	}

	return pair, nil
}

// Profile returns the caller's account. A deleted or deactivated account is
// NotFound even though the access token is still cryptographically valid.
func (s *AuthService) Profile(ctx context.Context, userID string) (*model.User, error) {
	user, err := s.users.GetUserByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if !user.Active {
		return nil, apperror.NotFound("user", userID)
	}
	return user, nil
}

// UpdateProfileInput carries optional profile changes; nil means unchanged.
type UpdateProfileInput struct {
	Username    *string
	DisplayName *string
	AvatarURL   *string
}

// UpdateProfile applies the provided fields to the caller's account.
func (s *AuthService) UpdateProfile(ctx context.Context, userID string, in UpdateProfileInput) (*model.User, error) {
	user, err := s.Profile(ctx, userID)
	if err != nil {
		return nil, err
	}

	if in.Username != nil {
		username := strings.TrimSpace(*in.Username)
		if username == "" {
			return nil, apperror.ValidationFailed("username", "username cannot be empty")
		}
		if len(username) > MaxUsernameLength {
			return nil, apperror.ValidationFailed("username",
				fmt.Sprintf("username must be %d characters or less", MaxUsernameLength))
		}
		user.Username = username
	}
	if in.DisplayName != nil {
		displayName := strings.TrimSpace(*in.DisplayName)
		if len(displayName) > MaxDisplayNameLength {
			return nil, apperror.ValidationFailed("displayName",
				fmt.Sprintf("display name must be %d characters or less", MaxDisplayNameLength))
		}
		user.DisplayName = displayName
	}
	if in.AvatarURL != nil {
		user.AvatarURL = strings.TrimSpace(*in.AvatarURL)
	}

	if err := s.users.UpdateUser(ctx, user); err != nil {
		s.logger.Error("failed to update profile",
			slog.String("userID", userID),
			slog.String("error", err.Error()),
		)
		return nil, fmt.Errorf("updating profile: %w", err)
	}

	return user, nil
}

// Deactivate soft-excludes the caller's account. Their tokens keep verifying
// until expiry, but Profile and Login treat the account as gone.
func (s *AuthService) Deactivate(ctx context.Context, userID string) error {
	if err := s.users.DeactivateUser(ctx, userID); err != nil {
		return err
	}
	s.logger.Info("user deactivated", slog.String("userID", userID))
	return nil
}

// LoginWithGoogle upserts an account from a Google profile and issues a
// token pair. Matching order: by Google subject ID first, then by email
// (links Google to an existing password account), then a fresh account.
func (s *AuthService) LoginWithGoogle(ctx context.Context, gUser *auth.GoogleUser) (*model.User, *auth.TokenPair, error) {
	email := normalizeEmail(gUser.Email)

	user, err := s.users.GetUserByGoogleID(ctx, gUser.Sub)
	if errors.Is(err, apperror.ErrNotFound) && email != "" {
		user, err = s.users.GetUserByEmail(ctx, email)
		if err == nil {
			// Existing password account — attach the Google identity.
			user.GoogleID = gUser.Sub
			if user.AvatarURL == "" {
				user.AvatarURL = gUser.Picture
			}
			if err := s.users.UpdateUser(ctx, user); err != nil {
				return nil, nil, fmt.Errorf("linking google account: %w", err)
			}
		}
	}

	switch {
	case err == nil:
		// found above
	case errors.Is(err, apperror.ErrNotFound):
		user = &model.User{
			Email:       email,
			Username:    usernameFromEmail(email, gUser.Sub),
			DisplayName: gUser.Name,
			GoogleID:    gUser.Sub,
			AvatarURL:   gUser.Picture,
		}
		if err := s.users.CreateUser(ctx, user); err != nil {
			return nil, nil, fmt.Errorf("creating google user: %w", err)
		}
		s.logger.Info("user registered via google", slog.String("userID", user.ID))
	default:
		return nil, nil, fmt.Errorf("looking up google user: %w", err)
	}

	if !user.Active {
		return nil, nil, apperror.Unauthenticated("account is deactivated")
	}

	pair, err := s.tokens.IssuePair(user)
	if err != nil {
		return nil, nil, fmt.Errorf("issuing tokens: %w", err)
	}

	return user, pair, nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// usernameFromEmail derives a username for Google sign-ups: the local part
// of the email, or the subject ID when the email is hidden.
func usernameFromEmail(email, sub string) string {
	if at := strings.Index(email, "@"); at > 0 {
		return email[:at]
	}
	return "user-" + sub
}
