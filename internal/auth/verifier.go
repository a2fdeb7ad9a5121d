package auth

// TokenVerifier checks a bearer token and reports the principal behind it.
type TokenVerifier interface {
	// Verify validates the token and returns its claims, or an error for
	// tokens that are malformed, forged or expired.
	Verify(token string) (*Claims, error)
}

// Ensure JWTManager implements TokenVerifier
var _ TokenVerifier = (*JWTManager)(nil)
