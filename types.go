package auth

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
)

type Logger interface {
	Debug(format string, args ...any)
	Info(format string, args ...any)
	Warn(format string, args ...any)
	Error(format string, args ...any)
}

// Identity holds the externally visible attributes of a principal.
type Identity interface {
	GetUUID() uuid.UUID
	GetEmail() string
	GetIsAdmin() bool
}

// Authenticator holds methods to deal with authentication
type Authenticator interface {
	Login(ctx context.Context, identifier, password string) (string, *User, error)
	Logout(ctx context.Context, token string) error
	Authenticate(ctx context.Context, token string, route RouteInfo) (*User, error)
}

// TokenService issues and checks bearer tokens.
type TokenService interface {
	// Issue signs a token carrying data under the user_data claim. A nil
	// expiry produces a token without an exp claim.
	Issue(data map[string]any, expiresAt *time.Time) (string, error)
	// Parse decodes the compact form WITHOUT verifying the signature. The
	// password reset flow relies on this; everything else wants Verify.
	Parse(token string) (*TokenClaims, error)
	// Verify parses and asserts signature, issuer, audience and expiry.
	Verify(token string) (*TokenClaims, error)
}

// Config holds auth options
type Config interface {
	GetOrigin() string
	GetTokenExpiration() int
	GetPrivateKeyPath() string
	GetPublicKeyPath() string
	GetContextKey() string
	GetTokenLookup() string
	GetAuthScheme() string
}

// PasswordAuthenticator authenticates passwords
type PasswordAuthenticator interface {
	HashPassword(password string) (string, error)
	ComparePasswordAndHash(password, hash string) error
}

// LoginPayload is the minimal contract for credential submission.
type LoginPayload interface {
	GetIdentifier() string
	GetPassword() string
}

type defLogger struct{}

func (d defLogger) Error(format string, args ...any) {
	fmt.Printf("[ERR] AUTH "+newline(format), args...)
}

func (d defLogger) Warn(format string, args ...any) {
	fmt.Printf("[WRN] AUTH "+newline(format), args...)
}

func (d defLogger) Info(format string, args ...any) {
	fmt.Printf("[INF] AUTH "+newline(format), args...)
}

func (d defLogger) Debug(format string, args ...any) {
	fmt.Printf("[DBG] AUTH "+newline(format), args...)
}

func newline(s string) string {
	if len(s) > 0 && s[len(s)-1] != '\n' {
		s += "\n"
	}
	return s
}
