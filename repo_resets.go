package auth

import (
	"context"
	"database/sql"

	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// PasswordResets stores at most one pending reset ticket per email.
type PasswordResets interface {
	Upsert(ctx context.Context, email string, tokenID uuid.UUID) (*PasswordReset, error)
	GetByEmail(ctx context.Context, email string) (*PasswordReset, error)
	DeleteByEmail(ctx context.Context, email string) error
	DeleteByEmailTx(ctx context.Context, tx bun.IDB, email string) error
}

type passwordResets struct {
	db *bun.DB
}

var _ PasswordResets = (*passwordResets)(nil)

func NewPasswordResetsRepository(db *bun.DB) PasswordResets {
	return &passwordResets{db: db}
}

// Upsert replaces any pending ticket for the email; a repeated request
// invalidates the prior token id.
func (r *passwordResets) Upsert(ctx context.Context, email string, tokenID uuid.UUID) (*PasswordReset, error) {
	record := &PasswordReset{
		Email: email,
		Token: tokenID,
	}

	if _, err := r.db.NewInsert().
		Model(record).
		On("CONFLICT (email) DO UPDATE").
		Set("token = EXCLUDED.token").
		Exec(ctx); err != nil {
		return nil, err
	}

	return record, nil
}

func (r *passwordResets) GetByEmail(ctx context.Context, email string) (*PasswordReset, error) {
	record := &PasswordReset{}
	err := r.db.NewSelect().
		Model(record).
		Where("?TableAlias.email = ?", email).
		Limit(1).
		Scan(ctx)

	if err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrResetMismatch
		}
		return nil, err
	}

	return record, nil
}

func (r *passwordResets) DeleteByEmail(ctx context.Context, email string) error {
	return r.DeleteByEmailTx(ctx, r.db, email)
}

func (r *passwordResets) DeleteByEmailTx(ctx context.Context, tx bun.IDB, email string) error {
	_, err := tx.NewDelete().
		Model((*PasswordReset)(nil)).
		Where("?TableAlias.email = ?", email).
		Exec(ctx)
	return err
}
