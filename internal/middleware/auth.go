package middleware

import (
	"context"
	"strings"

	"connectrpc.com/connect"

	"github.com/mmynk/debtsolver/internal/auth"
)

// contextKey is a custom type for context keys to avoid collisions.
type contextKey string

// PrincipalKey is the context key for storing the authenticated principal.
const PrincipalKey contextKey = "principal"

// Principal extracts the authenticated principal from the context.
// Returns empty string if the request was not authenticated.
func Principal(ctx context.Context) string {
	principal, _ := ctx.Value(PrincipalKey).(string)
	return principal
}

// RequireAuth returns an interceptor that rejects requests without a valid
// bearer token. The verified principal is added to the request context.
func RequireAuth(verifier auth.TokenVerifier) connect.UnaryInterceptorFunc {
	return func(next connect.UnaryFunc) connect.UnaryFunc {
		return func(ctx context.Context, req connect.AnyRequest) (connect.AnyResponse, error) {
			token, err := bearerToken(req)
			if err != nil {
				return nil, connect.NewError(connect.CodeUnauthenticated, err)
			}

			claims, err := verifier.Verify(token)
			if err != nil {
				return nil, connect.NewError(connect.CodeUnauthenticated, err)
			}

			ctx = context.WithValue(ctx, PrincipalKey, claims.Principal)
			return next(ctx, req)
		}
	}
}

// OptionalAuth returns an interceptor that records the principal when a
// valid bearer token is present but lets anonymous requests through.
func OptionalAuth(verifier auth.TokenVerifier) connect.UnaryInterceptorFunc {
	return func(next connect.UnaryFunc) connect.UnaryFunc {
		return func(ctx context.Context, req connect.AnyRequest) (connect.AnyResponse, error) {
			if token, err := bearerToken(req); err == nil {
				if claims, err := verifier.Verify(token); err == nil {
					ctx = context.WithValue(ctx, PrincipalKey, claims.Principal)
				}
			}
			return next(ctx, req)
		}
	}
}

// bearerToken pulls the token out of the Authorization header.
func bearerToken(req connect.AnyRequest) (string, error) {
	header := req.Header().Get("Authorization")
	if header == "" {
		return "", auth.ErrMissingToken
	}
	parts := strings.Split(header, " ")
	if len(parts) != 2 || parts[0] != "Bearer" {
		return "", auth.ErrInvalidToken
	}
	return parts[1], nil
}
