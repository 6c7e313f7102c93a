package auth

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/goliatone/go-errors"
	"github.com/google/uuid"
)

// TokenServiceImpl implements the TokenService interface
type TokenServiceImpl struct {
	keys   *KeyPair
	origin string
	logger Logger
}

// NewTokenService creates a TokenService signing with keys and pinning both
// issuer and audience to origin.
func NewTokenService(keys *KeyPair, origin string, logger Logger) *TokenServiceImpl {
	if logger == nil {
		logger = defLogger{}
	}
	return &TokenServiceImpl{
		keys:   keys,
		origin: origin,
		logger: logger,
	}
}

// Issue signs an RS256 token. The jti is a fresh v4 UUID: it is the handle
// the session registry and the reset flow key on.
func (ts *TokenServiceImpl) Issue(data map[string]any, expiresAt *time.Time) (string, error) {
	now := time.Now()

	claims := &TokenClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:   ts.origin,
			Audience: jwt.ClaimStrings{ts.origin},
			ID:       uuid.NewString(),
			IssuedAt: jwt.NewNumericDate(now),
		},
		UserData: data,
	}

	if expiresAt != nil {
		claims.ExpiresAt = jwt.NewNumericDate(*expiresAt)
	}

	token := jwt.NewWithClaims(jwt.SigningMethodRS256, claims)

	signed, err := token.SignedString(ts.keys.Private)
	if err != nil {
		return "", errors.Wrap(err, errors.CategoryInternal, "failed to sign JWT")
	}

	return signed, nil
}

// Parse decodes the token without checking its signature. The reset flow does
// its own matching against the pending ticket instead of trusting the
// signature; that asymmetry is inherited behavior, not an invitation to use
// Parse anywhere else.
func (ts *TokenServiceImpl) Parse(raw string) (*TokenClaims, error) {
	claims := &TokenClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(raw, claims); err != nil {
		return nil, errors.Wrap(err, ErrTokenMalformed.Category, ErrTokenMalformed.Message).
			WithTextCode(ErrTokenMalformed.TextCode)
	}
	return claims, nil
}

// Verify parses and asserts signature, issuer, audience and, when present,
// expiry. The returned error names the constraint that failed.
func (ts *TokenServiceImpl) Verify(raw string) (*TokenClaims, error) {
	token, err := jwt.ParseWithClaims(raw, &TokenClaims{}, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodRSA); !ok {
			ts.logger.Error("TokenService verify encountered unexpected signing method", "alg", t.Header["alg"])
			return nil, ErrTokenSignature
		}
		return ts.keys.Public, nil
	},
		jwt.WithIssuer(ts.origin),
		jwt.WithAudience(ts.origin),
	)

	if err != nil {
		return nil, classifyTokenError(err)
	}

	claims, ok := token.Claims.(*TokenClaims)
	if !ok || !token.Valid {
		ts.logger.Error("TokenService verify could not decode claims")
		return nil, ErrTokenMalformed
	}

	return claims, nil
}

// classifyTokenError maps golang-jwt validation failures onto the error
// taxonomy so callers keep the failed constraint while the transport maps
// every one of them to 401.
func classifyTokenError(err error) error {
	switch {
	case errors.Is(err, jwt.ErrTokenExpired):
		return ErrTokenExpired
	case errors.Is(err, jwt.ErrTokenInvalidIssuer):
		return ErrTokenIssuer
	case errors.Is(err, jwt.ErrTokenInvalidAudience):
		return ErrTokenAudience
	case errors.Is(err, jwt.ErrTokenSignatureInvalid), errors.Is(err, jwt.ErrSignatureInvalid):
		return ErrTokenSignature
	case errors.Is(err, ErrTokenSignature):
		return ErrTokenSignature
	default:
		return errors.Wrap(err, ErrTokenMalformed.Category, ErrTokenMalformed.Message).
			WithTextCode(ErrTokenMalformed.TextCode)
	}
}
