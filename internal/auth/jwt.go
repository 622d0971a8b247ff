// Package auth provides password hashing, JWT issuance/verification, the
// request-boundary middleware, and the Google sign-in provider.
//
// TOKEN MODEL:
// Authentication is stateless. A successful login or registration issues a
// pair of HS256 tokens carrying the same identity claims {sub, email,
// username} but signed with DIFFERENT secrets and DIFFERENT lifetimes:
//
//   - access token:  short-lived (minutes), sent as "Authorization: Bearer"
//   - refresh token: long-lived (weeks), exchanged at /api/auth/refresh
//
// The distinct secrets are what enforce the role separation — a refresh
// token presented where an access token is expected fails signature
// verification, and vice versa. No token is ever stored server-side.
package auth

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/rs/xid"

	"github.com/arefin/memotube/internal/model"
)

// Sentinel errors returned by VerifyAccess/VerifyRefresh.
//
// The split matters at the API boundary: an expired token maps to
// TOKEN_EXPIRED (the client should refresh), anything else to
// AUTHENTICATION_FAILED (the client should re-login).
var (
	ErrTokenExpired = errors.New("auth: token expired")
	ErrTokenInvalid = errors.New("auth: token invalid")
)

const issuer = "memotube"

// Identity is the decoded token payload attached to authenticated requests.
type Identity struct {
	UserID   string
	Email    string
	Username string
}

// TokenPair is what login, registration, and refresh hand back to clients.
// ExpiresIn is the access token's remaining lifetime in seconds, read back
// from the signed token itself (exp - iat) rather than recomputed, so it
// can't drift from what the token actually says.
type TokenPair struct {
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken"`
	ExpiresIn    int64  `json:"expiresIn"`
}

// claims is the JWT payload: the registered claims (sub carries the user ID)
// plus the email and username so the middleware can build an Identity
// without a database lookup.
type claims struct {
	Email    string `json:"email"`
	Username string `json:"username"`
	jwt.RegisteredClaims
}

// TokenService issues and verifies access/refresh token pairs.
//
// It holds two independent HMAC secrets. Both should be at least 32 bytes of
// random data in production (JWT_ACCESS_SECRET=$(openssl rand -hex 32)) and
// must differ from each other, otherwise the access/refresh separation
// collapses.
type TokenService struct {
	accessSecret  []byte
	refreshSecret []byte
	accessTTL     time.Duration
	refreshTTL    time.Duration
}

// NewTokenService creates a TokenService. It rejects short secrets and
// identical secrets — both configurations silently weaken the token model
// and are easier to catch at startup than in an incident review.
func NewTokenService(accessSecret, refreshSecret string, accessTTL, refreshTTL time.Duration) (*TokenService, error) {
	if len(accessSecret) < 16 || len(refreshSecret) < 16 {
		return nil, errors.New("auth: token secrets must be at least 16 characters")
	}
	if accessSecret == refreshSecret {
		return nil, errors.New("auth: access and refresh secrets must differ")
	}
	// Zero means "use the default". Negative TTLs are allowed — tests use
	// them to mint already-expired tokens.
	if accessTTL == 0 {
		accessTTL = 15 * time.Minute
	}
	if refreshTTL == 0 {
		refreshTTL = 30 * 24 * time.Hour
	}
	return &TokenService{
		accessSecret:  []byte(accessSecret),
		refreshSecret: []byte(refreshSecret),
		accessTTL:     accessTTL,
		refreshTTL:    refreshTTL,
	}, nil
}

// IssuePair signs a fresh access/refresh pair for the given user.
func (s *TokenService) IssuePair(user *model.User) (*TokenPair, error) {
	access, err := s.sign(user, s.accessSecret, s.accessTTL)
	if err != nil {
		return nil, fmt.Errorf("auth: signing access token: %w", err)
	}
	refresh, err := s.sign(user, s.refreshSecret, s.refreshTTL)
	if err != nil {
		return nil, fmt.Errorf("auth: signing refresh token: %w", err)
	}

	return &TokenPair{
		AccessToken:  access,
		RefreshToken: refresh,
		ExpiresIn:    s.expiresIn(access),
	}, nil
}

// VerifyAccess verifies an access token and returns its identity.
// Fails with ErrTokenExpired or ErrTokenInvalid (see the sentinels above).
func (s *TokenService) VerifyAccess(tokenStr string) (*Identity, error) {
	return s.verify(tokenStr, s.accessSecret)
}

// VerifyRefresh verifies a refresh token and returns its identity.
func (s *TokenService) VerifyRefresh(tokenStr string) (*Identity, error) {
	return s.verify(tokenStr, s.refreshSecret)
}

// AccessTTL returns the configured access-token lifetime. Used as the
// fallback for ExpiresIn and by tests.
func (s *TokenService) AccessTTL() time.Duration {
	return s.accessTTL
}

func (s *TokenService) sign(user *model.User, secret []byte, ttl time.Duration) (string, error) {
	now := time.Now()

	c := claims{
		Email:    user.Email,
		Username: user.Username,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   user.ID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
			Issuer:    issuer,
			// iat/exp have second granularity, so without a jti two
			// tokens signed in the same second would be identical.
			ID:        xid.New().String(),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, c)
	return token.SignedString(secret)
}

// expiresIn reads exp - iat back out of a freshly signed access token.
// The signature isn't re-checked — we just signed it. If either claim is
// somehow absent, the configured TTL is the answer; never undefined math.
func (s *TokenService) expiresIn(accessToken string) int64 {
	parser := jwt.NewParser()
	var c claims
	if _, _, err := parser.ParseUnverified(accessToken, &c); err != nil {
		return int64(s.accessTTL.Seconds())
	}
	if c.ExpiresAt == nil || c.IssuedAt == nil {
		return int64(s.accessTTL.Seconds())
	}
	return c.ExpiresAt.Unix() - c.IssuedAt.Unix()
}

func (s *TokenService) verify(tokenStr string, secret []byte) (*Identity, error) {
	token, err := jwt.ParseWithClaims(
		tokenStr,
		&claims{},
		func(token *jwt.Token) (any, error) {
			// Reject anything not signed with HMAC — prevents algorithm
			// confusion ("none", RS256 public-key-as-HMAC tricks).
			if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
			}
			return secret, nil
		},
		jwt.WithValidMethods([]string{"HS256"}),
		jwt.WithIssuer(issuer),
		jwt.WithExpirationRequired(),
	)
	if err != nil {
		// jwt.ErrTokenExpired is only reported once the signature checked
		// out, so the expired/invalid split below is safe: a tampered token
		// never reaches the expiry check.
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrTokenExpired
		}
		return nil, fmt.Errorf("%w: %w", ErrTokenInvalid, err)
	}

	c, ok := token.Claims.(*claims)
	if !ok || !token.Valid {
		return nil, ErrTokenInvalid
	}
	if c.Subject == "" {
		return nil, fmt.Errorf("%w: missing subject", ErrTokenInvalid)
	}

	return &Identity{
		UserID:   c.Subject,
		Email:    c.Email,
		Username: c.Username,
	}, nil
}

// ExtractBearer pulls the token out of an Authorization header value.
//
// Only the exact, case-sensitive prefix "Bearer " is accepted; anything else
// — empty header, bare token, "bearer" lowercase — yields ok=false. It never
// errors: a malformed header is simply an anonymous request.
func ExtractBearer(header string) (token string, ok bool) {
	const prefix = "Bearer "
	if !strings.HasPrefix(header, prefix) {
		return "", false
	}
	token = header[len(prefix):]
	if token == "" {
		return "", false
	}
	return token, true
}
