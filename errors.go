package auth

import (
	stderrors "errors"
	"strings"

	"github.com/goliatone/go-errors"
)

const (
	TextCodeTokenMissing     = "auth_token_missing"
	TextCodeTokenMalformed   = "auth_token_malformed"
	TextCodeTokenSignature   = "auth_token_signature"
	TextCodeTokenIssuer      = "auth_token_issuer"
	TextCodeTokenAudience    = "auth_token_audience"
	TextCodeTokenExpired     = "auth_token_expired"
	TextCodeUnknownSubject   = "auth_unknown_subject"
	TextCodeNotAuthorized    = "auth_not_authorized"
	TextCodeSessionConflict  = "auth_session_conflict"
	TextCodeSessionNotFound  = "auth_session_not_found"
	TextCodeResetMismatch    = "auth_reset_mismatch"
	TextCodeRouteUnscoped    = "auth_route_unclassified"
	TextCodeIdentityNotFound = "auth_identity_not_found"
)

// ErrTokenMissing is returned when a request carries no bearer token at all.
var ErrTokenMissing = errors.New("missing or malformed JWT", errors.CategoryAuth).
	WithTextCode(TextCodeTokenMissing).
	WithCode(errors.CodeUnauthorized)

// ErrTokenMalformed is returned when the compact form cannot be decoded.
var ErrTokenMalformed = errors.New("token is malformed", errors.CategoryAuth).
	WithTextCode(TextCodeTokenMalformed).
	WithCode(errors.CodeUnauthorized)

// ErrTokenSignature is returned when the signature does not verify against
// the service public key.
var ErrTokenSignature = errors.New("token signature is invalid", errors.CategoryAuth).
	WithTextCode(TextCodeTokenSignature).
	WithCode(errors.CodeUnauthorized)

// ErrTokenIssuer is returned when the iss claim is not the service origin.
var ErrTokenIssuer = errors.New("token issuer is not trusted", errors.CategoryAuth).
	WithTextCode(TextCodeTokenIssuer).
	WithCode(errors.CodeUnauthorized)

// ErrTokenAudience is returned when the aud claim is not the service origin.
var ErrTokenAudience = errors.New("token audience is not permitted", errors.CategoryAuth).
	WithTextCode(TextCodeTokenAudience).
	WithCode(errors.CodeUnauthorized)

// ErrTokenExpired is returned for tokens past their exp claim.
var ErrTokenExpired = errors.New("token is expired", errors.CategoryAuth).
	WithTextCode(TextCodeTokenExpired).
	WithCode(errors.CodeUnauthorized)

// ErrUnknownSubject is returned when the subject uuid embedded in a verified
// token resolves to no stored identity.
var ErrUnknownSubject = errors.New("token subject is unknown", errors.CategoryAuth).
	WithTextCode(TextCodeUnknownSubject).
	WithCode(errors.CodeUnauthorized)

// ErrNotAuthorized is returned for tokens that verify but either carry an
// unauthorized claim payload or have no live session registry entry.
var ErrNotAuthorized = errors.New("token is not authorized for access", errors.CategoryAuth).
	WithTextCode(TextCodeNotAuthorized).
	WithCode(errors.CodeUnauthorized)

// ErrSessionConflict is returned on a duplicate session insert; the registry
// holds at most one row per token id.
var ErrSessionConflict = errors.New("session already registered for token", errors.CategoryConflict).
	WithTextCode(TextCodeSessionConflict).
	WithCode(errors.CodeConflict)

// ErrSessionNotFound is returned when a registry lookup or revoke finds no
// row. Revoking twice reports this so callers can tell "already logged out"
// from "logged out".
var ErrSessionNotFound = errors.New("session not found", errors.CategoryNotFound).
	WithTextCode(TextCodeSessionNotFound).
	WithCode(errors.CodeNotFound)

// ErrResetMismatch is returned when a reset finalization token does not match
// the pending reset ticket; nothing is mutated.
var ErrResetMismatch = errors.New("invalid password reset token", errors.CategoryBadInput).
	WithTextCode(TextCodeResetMismatch).
	WithCode(errors.CodeBadRequest)

// ErrRouteUnclassified flags a route registered without a RouteClass. This is
// a configuration mistake, not an auth outcome; the gate still denies.
var ErrRouteUnclassified = errors.New("route has no access class", errors.CategoryAuth).
	WithTextCode(TextCodeRouteUnscoped).
	WithCode(errors.CodeUnauthorized)

// ErrIdentityNotFound is the error we return for non found identities
var ErrIdentityNotFound = errors.New("identity not found", errors.CategoryNotFound).
	WithTextCode(TextCodeIdentityNotFound).
	WithCode(errors.CodeNotFound)

// ErrNoEmptyString rejects empty passwords before they reach bcrypt.
var ErrNoEmptyString = stderrors.New("password must not be empty")

// ErrMismatchedHashAndPassword is the credential comparison failure.
var ErrMismatchedHashAndPassword = stderrors.New("mismatched password and hash")

// TextCode extracts the stable text code from an auth error, or "" when the
// error is not one of ours.
func TextCode(err error) string {
	var rich *errors.Error
	if errors.As(err, &rich) {
		return rich.TextCode
	}
	return ""
}

// IsAuthError reports whether err maps to a 401 at the request boundary.
func IsAuthError(err error) bool {
	var rich *errors.Error
	if errors.As(err, &rich) {
		return rich.Category == errors.CategoryAuth
	}
	return false
}

// IsTokenExpiredError will check for expired tokens
func IsTokenExpiredError(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, ErrTokenExpired) {
		return true
	}
	return strings.Contains(err.Error(), "token is expired")
}

// IsMalformedError will check for error message
func IsMalformedError(err error) bool {
	if err == nil {
		return false
	}
	return strings.Contains(err.Error(), "token is malformed") ||
		strings.Contains(err.Error(), "missing or malformed JWT")
}
