package auth

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// SessionTokens is the registry of currently valid sessions, keyed by token
// jti. Presence in this table is the stateful half of the trust model: a
// token with no row here verifies but does not authenticate.
type SessionTokens interface {
	Create(ctx context.Context, userID int64, tokenID uuid.UUID, title string) (*SessionToken, error)
	GetByTokenID(ctx context.Context, tokenID uuid.UUID) (*SessionToken, error)
	Revoke(ctx context.Context, tokenID uuid.UUID) error
	Touch(ctx context.Context, tokenID uuid.UUID) error
}

type sessionTokens struct {
	db *bun.DB
}

var _ SessionTokens = (*sessionTokens)(nil)

func NewSessionTokensRepository(db *bun.DB) SessionTokens {
	return &sessionTokens{db: db}
}

// Create inserts the session row. There is no pre-check: the unique
// constraint on unique_id is the only duplicate guard, and a violation
// surfaces as ErrSessionConflict.
func (r *sessionTokens) Create(ctx context.Context, userID int64, tokenID uuid.UUID, title string) (*SessionToken, error) {
	if title == "" {
		title = DefaultTokenTitle
	}

	record := &SessionToken{
		UserID:     userID,
		UniqueID:   tokenID,
		TokenTitle: title,
	}

	if _, err := r.db.NewInsert().Model(record).Returning("*").Exec(ctx); err != nil {
		if isUniqueViolation(err) {
			return nil, ErrSessionConflict
		}
		return nil, err
	}

	return record, nil
}

func (r *sessionTokens) GetByTokenID(ctx context.Context, tokenID uuid.UUID) (*SessionToken, error) {
	record := &SessionToken{}
	err := r.db.NewSelect().
		Model(record).
		Where("?TableAlias.unique_id = ?", tokenID.String()).
		Limit(1).
		Scan(ctx)

	if err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrSessionNotFound
		}
		return nil, err
	}

	return record, nil
}

// Revoke deletes the row for tokenID. A missing row is reported, not
// swallowed: callers need to distinguish "already logged out" from
// "logged out".
func (r *sessionTokens) Revoke(ctx context.Context, tokenID uuid.UUID) error {
	res, err := r.db.NewDelete().
		Model((*SessionToken)(nil)).
		Where("?TableAlias.unique_id = ?", tokenID.String()).
		Exec(ctx)
	if err != nil {
		return err
	}

	if rows, err := res.RowsAffected(); err == nil && rows == 0 {
		return ErrSessionNotFound
	}

	return nil
}

// Touch stamps last_used_at. The authenticate path stays side-effect free, so
// this is for callers that want usage bookkeeping explicitly.
func (r *sessionTokens) Touch(ctx context.Context, tokenID uuid.UUID) error {
	now := time.Now()
	res, err := r.db.NewUpdate().
		Model((*SessionToken)(nil)).
		Set("last_used_at = ?", now).
		Where("unique_id = ?", tokenID.String()).
		Exec(ctx)
	if err != nil {
		return err
	}

	if rows, err := res.RowsAffected(); err == nil && rows == 0 {
		return ErrSessionNotFound
	}

	return nil
}
