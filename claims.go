package auth

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// UserDataClaim is the name of the single custom claim carrying the session
// payload. The registered claims stay standard so any JOSE tooling can read
// the envelope.
const UserDataClaim = "user_data"

// Claim payload keys. The payload is an open map; these are the keys the
// core reads and writes.
const (
	ClaimKeyUUID       = "uuid"
	ClaimKeyAuthorized = "authorized"
	ClaimKeyIsAdmin    = "is_admin"
	ClaimKeyEmail      = "email"
	ClaimKeyExpiresAt  = "expires_at"
)

// TokenClaims is the wire shape of every token this service issues: the
// registered claim set plus one opaque user_data object.
type TokenClaims struct {
	jwt.RegisteredClaims
	UserData map[string]any `json:"user_data,omitempty"`
}

// TokenID returns the jti, the revocation handle into the session registry.
func (c *TokenClaims) TokenID() string {
	return c.RegisteredClaims.ID
}

// SubjectUUID returns the external identifier embedded in the claim payload.
func (c *TokenClaims) SubjectUUID() (uuid.UUID, error) {
	raw, _ := c.UserData[ClaimKeyUUID].(string)
	return uuid.Parse(raw)
}

// IsAuthorized reports the authorized flag of the claim payload. Registration
// tokens carry false until the first login.
func (c *TokenClaims) IsAuthorized() bool {
	v, _ := c.UserData[ClaimKeyAuthorized].(bool)
	return v
}

// IsAdmin reports the role flag of the claim payload.
func (c *TokenClaims) IsAdmin() bool {
	v, _ := c.UserData[ClaimKeyIsAdmin].(bool)
	return v
}

// Email returns the email of the claim payload, set on password reset tokens.
func (c *TokenClaims) Email() string {
	v, _ := c.UserData[ClaimKeyEmail].(string)
	return v
}

// Expires returns the exp claim, zero when the token has no expiry.
func (c *TokenClaims) Expires() time.Time {
	if c.RegisteredClaims.ExpiresAt != nil {
		return c.RegisteredClaims.ExpiresAt.Time
	}
	return time.Time{}
}

// IssuedAt returns the iat claim.
func (c *TokenClaims) IssuedAt() time.Time {
	if c.RegisteredClaims.IssuedAt != nil {
		return c.RegisteredClaims.IssuedAt.Time
	}
	return time.Time{}
}
