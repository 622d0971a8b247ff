package auth

import (
	"context"
	"fmt"
	"net/http"
)

// contextKey is an unexported type for this package's context keys, so no
// other package can read or shadow the identity value.
type contextKey string

const identityKey contextKey = "identity"

// ErrorWriter is how the middleware emits 401 responses without importing
// the handler package (which would be an import cycle — handler imports
// auth for IdentityFromContext). The server wires the handler package's
// envelope writer in here.
type ErrorWriter func(w http.ResponseWriter, r *http.Request, err error)

// RequireAuth enforces authentication on protected routes.
//
// It reads the Authorization header, validates the bearer token as an ACCESS
// token, and stores the identity in the request context. Failures halt the
// chain with 401 — the error passed to writeError keeps the expired/invalid
// distinction so the response code can say TOKEN_EXPIRED vs
// AUTHENTICATION_FAILED.
func RequireAuth(tokens *TokenService, writeError ErrorWriter) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			identity, err := identityFromRequest(r, tokens)
			if err != nil {
				writeError(w, r, err)
				return
			}

			ctx := context.WithValue(r.Context(), identityKey, identity)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// OptionalAuth extracts the identity when a valid token is present but never
// blocks the request. Handlers on such routes treat a missing identity as an
// anonymous caller.
func OptionalAuth(tokens *TokenService) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if identity, err := identityFromRequest(r, tokens); err == nil {
				ctx := context.WithValue(r.Context(), identityKey, identity)
				r = r.WithContext(ctx)
			}
			next.ServeHTTP(w, r)
		})
	}
}

// IdentityFromContext retrieves the authenticated identity set by
// RequireAuth or OptionalAuth. ok is false for anonymous requests.
func IdentityFromContext(ctx context.Context) (*Identity, bool) {
	identity, ok := ctx.Value(identityKey).(*Identity)
	return identity, ok && identity != nil
}

// errMissingToken wraps ErrTokenInvalid so "no header at all" maps to the
// same 401 as a malformed token, never to the expired case.
var errMissingToken = fmt.Errorf("%w: missing bearer token", ErrTokenInvalid)

func identityFromRequest(r *http.Request, tokens *TokenService) (*Identity, error) {
	token, ok := ExtractBearer(r.Header.Get("Authorization"))
	if !ok {
		return nil, errMissingToken
	}
	return tokens.VerifyAccess(token)
}
