package auth

import (
	"time"

	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// User is the user model. The sequential id is storage-internal and never
// serialized; the uuid is the only identifier that leaves the process or is
// embedded in tokens.
type User struct {
	bun.BaseModel `bun:"table:users,alias:usr"`
	ID            int64      `bun:"id,pk,autoincrement" json:"-"`
	UUID          uuid.UUID  `bun:"uuid,notnull,unique,type:uuid" json:"uuid"`
	FirstName     string     `bun:"first_name,notnull" json:"first_name,omitempty"`
	LastName      string     `bun:"last_name,notnull" json:"last_name,omitempty"`
	Email         string     `bun:"email,notnull,unique" json:"email,omitempty"`
	PasswordHash  string     `bun:"password" json:"-"`
	IsAdmin       bool       `bun:"is_admin,notnull,default:false" json:"is_admin"`
	Address       string     `bun:"address" json:"address,omitempty"`
	Phone         string     `bun:"phone_number" json:"phone_number,omitempty"`
	Avatar        string     `bun:"avatar,nullzero" json:"avatar,omitempty"`
	IsMarketing   bool       `bun:"is_marketing,notnull,default:false" json:"is_marketing,omitempty"`
	LastLoginAt   *time.Time `bun:"last_login_at,nullzero" json:"last_login_at,omitempty"`
	CreatedAt     *time.Time `bun:"created_at,nullzero,default:current_timestamp" json:"created_at,omitempty"`
	UpdatedAt     *time.Time `bun:"updated_at,nullzero,default:current_timestamp" json:"updated_at,omitempty"`
}

var _ Identity = (*User)(nil)

// GetUUID satisfies Identity.
func (u *User) GetUUID() uuid.UUID { return u.UUID }

// GetEmail satisfies Identity.
func (u *User) GetEmail() string { return u.Email }

// GetIsAdmin satisfies Identity.
func (u *User) GetIsAdmin() bool { return u.IsAdmin }

// SessionToken is the durable, revocable counterpart of an issued token: one
// row per live login keyed by the token jti. Restrictions and permissions are
// schema placeholders carried over from the API token design.
type SessionToken struct {
	bun.BaseModel `bun:"table:jwt_tokens,alias:jwt"`
	ID            int64      `bun:"id,pk,autoincrement" json:"-"`
	UserID        int64      `bun:"user_id,notnull" json:"-"`
	UniqueID      uuid.UUID  `bun:"unique_id,notnull,unique,type:uuid" json:"unique_id"`
	TokenTitle    string     `bun:"token_title,notnull" json:"token_title"`
	Restrictions  []string   `bun:"restrictions,nullzero" json:"restrictions,omitempty"`
	Permissions   []string   `bun:"permissions,nullzero" json:"permissions,omitempty"`
	ExpiresAt     *time.Time `bun:"expires_at,nullzero" json:"expires_at,omitempty"`
	LastUsedAt    *time.Time `bun:"last_used_at,nullzero" json:"last_used_at,omitempty"`
	RefreshedAt   *time.Time `bun:"refreshed_at,nullzero" json:"refreshed_at,omitempty"`
	CreatedAt     *time.Time `bun:"created_at,nullzero,default:current_timestamp" json:"created_at,omitempty"`
}

// DefaultTokenTitle labels sessions created by the login endpoint.
const DefaultTokenTitle = "API Access Token"

// PasswordReset is the single pending reset ticket per email. A new request
// replaces the row, invalidating the prior ticket.
type PasswordReset struct {
	bun.BaseModel `bun:"table:password_reset_tokens,alias:pwdr"`
	Email         string     `bun:"email,pk" json:"email"`
	Token         uuid.UUID  `bun:"token,notnull,type:uuid" json:"token"`
	CreatedAt     *time.Time `bun:"created_at,nullzero,default:current_timestamp" json:"created_at,omitempty"`
}
