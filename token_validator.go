package auth

// TokenVerifier checks a raw token and returns its claims without tying
// callers to a specific signing implementation.
type TokenVerifier interface {
	Verify(token string) (*TokenClaims, error)
}

// TokenVerifierFunc adapts a function into a TokenVerifier.
type TokenVerifierFunc func(token string) (*TokenClaims, error)

// Verify satisfies the TokenVerifier interface.
func (f TokenVerifierFunc) Verify(token string) (*TokenClaims, error) {
	if f == nil {
		return nil, ErrTokenMalformed
	}
	return f(token)
}
