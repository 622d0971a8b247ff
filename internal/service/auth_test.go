package service

import (
	"context"
	"errors"
	"testing"

	"golang.org/x/crypto/bcrypt"

	"github.com/arefin/memotube/internal/apperror"
	"github.com/arefin/memotube/internal/auth"
)

func newTestAuthService(t *testing.T) (*AuthService, *mockUserRepo) {
	t.Helper()
	users := newMockUserRepo()
	tokens, err := auth.NewTokenService(
		"test-access-secret-0123456789",
		"test-refresh-secret-0123456789",
		0, 0,
	)
	if err != nil {
		t.Fatalf("NewTokenService: %v", err)
	}
	// MinCost keeps the bcrypt work factor out of the test runtime.
	passwords := auth.NewPasswordServiceWithCost(bcrypt.MinCost)
	svc := NewAuthService(users, passwords, tokens, testLogger())
	return svc, users
}

func validRegister() RegisterInput {
	return RegisterInput{
		Email:    "alice@example.com",
		Username: "alice",
		Password: "Sup3rSecret!",
	}
}

// =========================================================================
// REGISTER
// =========================================================================

func TestRegister_Success(t *testing.T) {
	svc, _ := newTestAuthService(t)

	user, pair, err := svc.Register(context.Background(), validRegister())
	if err != nil {
		t.Fatalf("Register: %v", err)
	}
	if user.ID == "" {
		t.Error("expected a generated user ID")
	}
	if user.Email != "alice@example.com" {
		t.Errorf("email = %q", user.Email)
	}
	if user.DisplayName != "alice" {
		t.Errorf("display name should default to username, got %q", user.DisplayName)
	}
	if user.PasswordHash == "" || user.PasswordHash == "Sup3rSecret!" {
		t.Error("password must be stored hashed")
	}
	if !user.Active {
		t.Error("new accounts must be active")
	}
	if pair.AccessToken == "" || pair.RefreshToken == "" {
		t.Error("registration must issue a token pair")
	}
}

func TestRegister_NormalizesEmail(t *testing.T) {
	svc, _ := newTestAuthService(t)

	in := validRegister()
	in.Email = "  Alice@Example.COM "
	user, _, err := svc.Register(context.Background(), in)
	if err != nil {
		t.Fatalf("Register: %v", err)
	}
	if user.Email != "alice@example.com" {
		t.Errorf("email not normalized: %q", user.Email)
	}
}

func TestRegister_DuplicateEmail(t *testing.T) {
	svc, _ := newTestAuthService(t)
	ctx := context.Background()

	if _, _, err := svc.Register(ctx, validRegister()); err != nil {
		t.Fatalf("first Register: %v", err)
	}

	in := validRegister()
	in.Username = "alice2"
	_, _, err := svc.Register(ctx, in)
	if !errors.Is(err, apperror.ErrConflict) {
		t.Errorf("expected ErrConflict, got %v", err)
	}
}

func TestRegister_ValidationFailures(t *testing.T) {
	svc, _ := newTestAuthService(t)
	ctx := context.Background()

	cases := []struct {
		name   string
		mutate func(*RegisterInput)
	}{
		{"empty email", func(in *RegisterInput) { in.Email = "" }},
		{"no at sign", func(in *RegisterInput) { in.Email = "alice.example.com" }},
		{"empty username", func(in *RegisterInput) { in.Username = "  " }},
		{"weak password", func(in *RegisterInput) { in.Password = "password" }},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			in := validRegister()
			tc.mutate(&in)
			_, _, err := svc.Register(ctx, in)
			if !errors.Is(err, apperror.ErrValidation) {
				t.Errorf("expected ErrValidation, got %v", err)
			}
		})
	}
}

// =========================================================================
// LOGIN
// =========================================================================

func TestLogin_Success(t *testing.T) {
	svc, _ := newTestAuthService(t)
	ctx := context.Background()

	if _, _, err := svc.Register(ctx, validRegister()); err != nil {
		t.Fatalf("Register: %v", err)
	}

	user, pair, err := svc.Login(ctx, "Alice@Example.com", "Sup3rSecret!")
	if err != nil {
		t.Fatalf("Login: %v", err)
	}
	if user.Email != "alice@example.com" {
		t.Errorf("email = %q", user.Email)
	}
	if pair.AccessToken == "" {
		t.Error("expected an access token")
	}
}

// Unknown email and wrong password must be indistinguishable to the caller.
func TestLogin_GenericFailure(t *testing.T) {
	svc, _ := newTestAuthService(t)
	ctx := context.Background()

	if _, _, err := svc.Register(ctx, validRegister()); err != nil {
		t.Fatalf("Register: %v", err)
	}

	_, _, errUnknown := svc.Login(ctx, "nobody@example.com", "Sup3rSecret!")
	_, _, errWrongPw := svc.Login(ctx, "alice@example.com", "WrongPass1!")

	for _, err := range []error{errUnknown, errWrongPw} {
		if !errors.Is(err, apperror.ErrUnauthenticated) {
			t.Fatalf("expected ErrUnauthenticated, got %v", err)
		}
	}
	if errUnknown.Error() != errWrongPw.Error() {
		t.Errorf("login failures must not disclose which part was wrong: %q vs %q",
			errUnknown, errWrongPw)
	}
}

func TestLogin_DeactivatedAccount(t *testing.T) {
	svc, _ := newTestAuthService(t)
	ctx := context.Background()

	user, _, err := svc.Register(ctx, validRegister())
	if err != nil {
		t.Fatalf("Register: %v", err)
	}
	if err := svc.Deactivate(ctx, user.ID); err != nil {
		t.Fatalf("Deactivate: %v", err)
	}

	_, _, err = svc.Login(ctx, "alice@example.com", "Sup3rSecret!")
	if !errors.Is(err, apperror.ErrUnauthenticated) {
		t.Errorf("deactivated login should fail like a bad password, got %v", err)
	}
}

// =========================================================================
// REFRESH
// =========================================================================

func TestRefresh_Success(t *testing.T) {
	svc, _ := newTestAuthService(t)
	ctx := context.Background()

	_, pair, err := svc.Register(ctx, validRegister())
	if err != nil {
		t.Fatalf("Register: %v", err)
	}

	fresh, err := svc.Refresh(ctx, pair.RefreshToken)
	if err != nil {
		t.Fatalf("Refresh: %v", err)
	}
	if fresh.AccessToken == "" || fresh.RefreshToken == "" {
		t.Error("refresh must issue a full new pair")
	}
}

func TestRefresh_RejectsAccessToken(t *testing.T) {
	svc, _ := newTestAuthService(t)
	ctx := context.Background()

	_, pair, err := svc.Register(ctx, validRegister())
	if err != nil {
		t.Fatalf("Register: %v", err)
	}

	_, err = svc.Refresh(ctx, pair.AccessToken)
	if !errors.Is(err, apperror.ErrUnauthenticated) {
		t.Errorf("an access token must not pass as a refresh token, got %v", err)
	}
}

func TestRefresh_DeactivatedAccount(t *testing.T) {
	svc, _ := newTestAuthService(t)
	ctx := context.Background()

	user, pair, err := svc.Register(ctx, validRegister())
	if err != nil {
		t.Fatalf("Register: %v", err)
	}
	if err := svc.Deactivate(ctx, user.ID); err != nil {
		t.Fatalf("Deactivate: %v", err)
	}

	_, err = svc.Refresh(ctx, pair.RefreshToken)
	if !errors.Is(err, apperror.ErrUnauthenticated) {
		t.Errorf("deactivated account must not refresh, got %v", err)
	}
}

// =========================================================================
// PROFILE
// =========================================================================

func TestProfile_UpdateAndFetch(t *testing.T) {
	svc, _ := newTestAuthService(t)
	ctx := context.Background()

	user, _, err := svc.Register(ctx, validRegister())
	if err != nil {
		t.Fatalf("Register: %v", err)
	}

	updated, err := svc.UpdateProfile(ctx, user.ID, UpdateProfileInput{
		DisplayName: ptrString("Alice L."),
	})
	if err != nil {
		t.Fatalf("UpdateProfile: %v", err)
	}
	if updated.DisplayName != "Alice L." {
		t.Errorf("display name = %q", updated.DisplayName)
	}
	if updated.Username != "alice" {
		t.Errorf("username should be unchanged, got %q", updated.Username)
	}

	got, err := svc.Profile(ctx, user.ID)
	if err != nil {
		t.Fatalf("Profile: %v", err)
	}
	if got.DisplayName != "Alice L." {
		t.Errorf("profile read back %q", got.DisplayName)
	}
}

func TestProfile_DeactivatedIsNotFound(t *testing.T) {
	svc, _ := newTestAuthService(t)
	ctx := context.Background()

	user, _, err := svc.Register(ctx, validRegister())
	if err != nil {
		t.Fatalf("Register: %v", err)
	}
	if err := svc.Deactivate(ctx, user.ID); err != nil {
		t.Fatalf("Deactivate: %v", err)
	}

	_, err = svc.Profile(ctx, user.ID)
	if !errors.Is(err, apperror.ErrNotFound) {
		t.Errorf("expected ErrNotFound for deactivated profile, got %v", err)
	}
}

// =========================================================================
// GOOGLE SIGN-IN
// =========================================================================

func TestLoginWithGoogle_CreatesAccount(t *testing.T) {
	svc, users := newTestAuthService(t)
	ctx := context.Background()

	gUser := &auth.GoogleUser{
		Sub:     "google-sub-1",
		Email:   "Bob@Example.com",
		Name:    "Bob B.",
		Picture: "https://example.com/bob.png",
	}
	user, pair, err := svc.LoginWithGoogle(ctx, gUser)
	if err != nil {
		t.Fatalf("LoginWithGoogle: %v", err)
	}
	if user.Email != "bob@example.com" {
		t.Errorf("email = %q", user.Email)
	}
	if user.Username != "bob" {
		t.Errorf("username should come from the email local part, got %q", user.Username)
	}
	if pair.AccessToken == "" {
		t.Error("expected a token pair")
	}

	// Second sign-in matches the same account by subject ID.
	again, _, err := svc.LoginWithGoogle(ctx, gUser)
	if err != nil {
		t.Fatalf("second LoginWithGoogle: %v", err)
	}
	if again.ID != user.ID {
		t.Errorf("expected the same account, got %s and %s", user.ID, again.ID)
	}
	if len(users.users) != 1 {
		t.Errorf("expected exactly one stored account, got %d", len(users.users))
	}
}

func TestLoginWithGoogle_LinksExistingEmail(t *testing.T) {
	svc, _ := newTestAuthService(t)
	ctx := context.Background()

	registered, _, err := svc.Register(ctx, validRegister())
	if err != nil {
		t.Fatalf("Register: %v", err)
	}

	user, _, err := svc.LoginWithGoogle(ctx, &auth.GoogleUser{
		Sub:   "google-sub-2",
		Email: "alice@example.com",
		Name:  "Alice",
	})
	if err != nil {
		t.Fatalf("LoginWithGoogle: %v", err)
	}
	if user.ID != registered.ID {
		t.Errorf("Google sign-in should link to the password account, got %s want %s",
			user.ID, registered.ID)
	}
	if user.GoogleID != "google-sub-2" {
		t.Errorf("google ID not linked: %q", user.GoogleID)
	}
}
