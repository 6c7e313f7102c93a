package auth

import (
	"context"
	"database/sql"
	"strings"
	"time"

	goerrors "github.com/goliatone/go-errors"
	"github.com/goliatone/go-repository-bun"
	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

var resetUserPasswordSQL = `UPDATE "users" AS "usr"
SET
	"password" = ?
WHERE
	"usr"."id" = ?
RETURNING *;`

// Users is the user-store collaborator of the authenticator: lookups by the
// external uuid or email, registration, credential updates, deletion.
type Users interface {
	GetByUUID(ctx context.Context, id uuid.UUID, criteria ...repository.SelectCriteria) (*User, error)
	GetByEmail(ctx context.Context, email string, criteria ...repository.SelectCriteria) (*User, error)
	Register(ctx context.Context, user *User) (*User, error)
	RegisterTx(ctx context.Context, tx bun.IDB, user *User) (*User, error)
	Update(ctx context.Context, user *User) (*User, error)
	ResetPassword(ctx context.Context, id int64, passwordHash string) error
	ResetPasswordTx(ctx context.Context, tx bun.IDB, id int64, passwordHash string) error
	TrackSuccessfulLogin(ctx context.Context, user *User) error
	Delete(ctx context.Context, id uuid.UUID) error
}

type users struct {
	db *bun.DB
}

var _ Users = (*users)(nil)

func NewUsersRepository(db *bun.DB) Users {
	return &users{db: db}
}

func (a *users) GetByUUID(ctx context.Context, id uuid.UUID, criteria ...repository.SelectCriteria) (*User, error) {
	return a.getOne(ctx, "uuid", id.String(), criteria...)
}

func (a *users) GetByEmail(ctx context.Context, email string, criteria ...repository.SelectCriteria) (*User, error) {
	return a.getOne(ctx, "email", strings.TrimSpace(strings.ToLower(email)), criteria...)
}

func (a *users) getOne(ctx context.Context, column, value string, criteria ...repository.SelectCriteria) (*User, error) {
	record := &User{}
	q := a.db.NewSelect().Model(record)

	for _, c := range criteria {
		q.Apply(c)
	}

	err := q.
		Where("?TableAlias."+column+" = ?", value).
		Limit(1).
		Scan(ctx)

	if err != nil {
		if err == sql.ErrNoRows || repository.IsRecordNotFound(err) {
			return nil, ErrIdentityNotFound
		}
		return nil, err
	}

	return record, nil
}

func (a *users) Register(ctx context.Context, user *User) (*User, error) {
	return a.RegisterTx(ctx, a.db, user)
}

func (a *users) RegisterTx(ctx context.Context, tx bun.IDB, user *User) (*User, error) {
	prepareUserDefaults(user)
	if _, err := tx.NewInsert().Model(user).Returning("*").Exec(ctx); err != nil {
		if isUniqueViolation(err) {
			return nil, goerrors.Wrap(err, goerrors.CategoryConflict, "email already registered").
				WithCode(goerrors.CodeConflict)
		}
		return nil, err
	}
	return user, nil
}

func (a *users) Update(ctx context.Context, user *User) (*User, error) {
	now := time.Now()
	user.UpdatedAt = &now
	if _, err := a.db.NewUpdate().
		Model(user).
		WherePK().
		Returning("*").
		Exec(ctx); err != nil {
		return nil, err
	}
	return user, nil
}

func (a *users) ResetPassword(ctx context.Context, id int64, passwordHash string) error {
	return a.ResetPasswordTx(ctx, a.db, id, passwordHash)
}

func (a *users) ResetPasswordTx(ctx context.Context, tx bun.IDB, id int64, passwordHash string) error {
	res, err := tx.NewRaw(resetUserPasswordSQL, passwordHash, id).Exec(ctx)
	if err != nil {
		return err
	}

	if rows, err := res.RowsAffected(); err == nil && rows == 0 {
		return ErrIdentityNotFound
	}

	return nil
}

func (a *users) TrackSuccessfulLogin(ctx context.Context, user *User) error {
	now := time.Now()
	user.LastLoginAt = &now
	_, err := a.db.NewUpdate().
		Model(user).
		Column("last_login_at").
		WherePK().
		Exec(ctx)
	return err
}

// Delete removes an ordinary account. Administrative accounts are immutable
// to deletion.
func (a *users) Delete(ctx context.Context, id uuid.UUID) error {
	res, err := a.db.NewDelete().
		Model((*User)(nil)).
		Where("?TableAlias.uuid = ?", id.String()).
		Where("?TableAlias.is_admin = ?", false).
		Exec(ctx)
	if err != nil {
		return err
	}

	if rows, err := res.RowsAffected(); err == nil && rows == 0 {
		return ErrIdentityNotFound
	}

	return nil
}

func prepareUserDefaults(user *User) {
	if user == nil {
		return
	}
	if user.UUID == uuid.Nil {
		user.UUID = uuid.New()
	}
	user.Email = strings.TrimSpace(strings.ToLower(user.Email))
}

// isUniqueViolation classifies storage-level unique constraint failures. The
// repository layer has no portable conflict predicate, so we match the driver
// messages for the dialects we run against.
func isUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	msg := err.Error()
	return strings.Contains(msg, "UNIQUE constraint failed") ||
		strings.Contains(msg, "duplicate key value violates unique constraint")
}
