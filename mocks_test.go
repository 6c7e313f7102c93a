package auth_test

import (
	"context"
	"crypto/rand"
	"crypto/rsa"
	"database/sql"
	"testing"
	"time"

	"github.com/goliatone/go-repository-bun"
	"github.com/google/uuid"
	auth "github.com/storecraft/go-auth"
	"github.com/stretchr/testify/mock"
	"github.com/uptrace/bun"
)

// testKeyPair mints a throwaway RSA pair for signing in tests.
func testKeyPair(t *testing.T) *auth.KeyPair {
	t.Helper()

	key, err := rsa.GenerateKey(rand.Reader, 2048)
	if err != nil {
		t.Fatalf("generate rsa key: %v", err)
	}

	return &auth.KeyPair{Private: key, Public: &key.PublicKey}
}

const testOrigin = "http://petstore.test"

func newTestTokenService(t *testing.T) auth.TokenService {
	t.Helper()
	return auth.NewTokenService(testKeyPair(t), testOrigin, nil)
}

// MockUsers implements auth.Users
type MockUsers struct {
	mock.Mock
}

func (m *MockUsers) GetByUUID(ctx context.Context, id uuid.UUID, criteria ...repository.SelectCriteria) (*auth.User, error) {
	args := m.Called(ctx, id)
	if u := args.Get(0); u != nil {
		return u.(*auth.User), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockUsers) GetByEmail(ctx context.Context, email string, criteria ...repository.SelectCriteria) (*auth.User, error) {
	args := m.Called(ctx, email)
	if u := args.Get(0); u != nil {
		return u.(*auth.User), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockUsers) Register(ctx context.Context, user *auth.User) (*auth.User, error) {
	args := m.Called(ctx, user)
	if u := args.Get(0); u != nil {
		return u.(*auth.User), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockUsers) RegisterTx(ctx context.Context, tx bun.IDB, user *auth.User) (*auth.User, error) {
	args := m.Called(ctx, tx, user)
	if u := args.Get(0); u != nil {
		return u.(*auth.User), args.Error(1)
	}
	if args.Error(1) == nil {
		// echo the input back the way the real repository does
		return user, nil
	}
	return nil, args.Error(1)
}

func (m *MockUsers) Update(ctx context.Context, user *auth.User) (*auth.User, error) {
	args := m.Called(ctx, user)
	if u := args.Get(0); u != nil {
		return u.(*auth.User), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockUsers) ResetPassword(ctx context.Context, id int64, passwordHash string) error {
	args := m.Called(ctx, id, passwordHash)
	return args.Error(0)
}

func (m *MockUsers) ResetPasswordTx(ctx context.Context, tx bun.IDB, id int64, passwordHash string) error {
	args := m.Called(ctx, tx, id, passwordHash)
	return args.Error(0)
}

func (m *MockUsers) TrackSuccessfulLogin(ctx context.Context, user *auth.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

func (m *MockUsers) Delete(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

// MockSessionTokens implements auth.SessionTokens
type MockSessionTokens struct {
	mock.Mock
}

func (m *MockSessionTokens) Create(ctx context.Context, userID int64, tokenID uuid.UUID, title string) (*auth.SessionToken, error) {
	args := m.Called(ctx, userID, tokenID, title)
	if s := args.Get(0); s != nil {
		return s.(*auth.SessionToken), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockSessionTokens) GetByTokenID(ctx context.Context, tokenID uuid.UUID) (*auth.SessionToken, error) {
	args := m.Called(ctx, tokenID)
	if s := args.Get(0); s != nil {
		return s.(*auth.SessionToken), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockSessionTokens) Revoke(ctx context.Context, tokenID uuid.UUID) error {
	args := m.Called(ctx, tokenID)
	return args.Error(0)
}

func (m *MockSessionTokens) Touch(ctx context.Context, tokenID uuid.UUID) error {
	args := m.Called(ctx, tokenID)
	return args.Error(0)
}

// MockPasswordResets implements auth.PasswordResets
type MockPasswordResets struct {
	mock.Mock
}

func (m *MockPasswordResets) Upsert(ctx context.Context, email string, tokenID uuid.UUID) (*auth.PasswordReset, error) {
	args := m.Called(ctx, email, tokenID)
	if r := args.Get(0); r != nil {
		return r.(*auth.PasswordReset), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockPasswordResets) GetByEmail(ctx context.Context, email string) (*auth.PasswordReset, error) {
	args := m.Called(ctx, email)
	if r := args.Get(0); r != nil {
		return r.(*auth.PasswordReset), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockPasswordResets) DeleteByEmail(ctx context.Context, email string) error {
	args := m.Called(ctx, email)
	return args.Error(0)
}

func (m *MockPasswordResets) DeleteByEmailTx(ctx context.Context, tx bun.IDB, email string) error {
	args := m.Called(ctx, tx, email)
	return args.Error(0)
}

// MockRepositoryManager implements auth.RepositoryManager. RunInTx executes
// the callback with a zero bun.Tx so command handlers run without a database.
type MockRepositoryManager struct {
	mock.Mock
	users    *MockUsers
	sessions *MockSessionTokens
	resets   *MockPasswordResets
}

func NewMockRepositoryManager() *MockRepositoryManager {
	return &MockRepositoryManager{
		users:    new(MockUsers),
		sessions: new(MockSessionTokens),
		resets:   new(MockPasswordResets),
	}
}

func (m *MockRepositoryManager) Validate() error { return nil }

func (m *MockRepositoryManager) MustValidate() {}

func (m *MockRepositoryManager) RunInTx(ctx context.Context, opts *sql.TxOptions, f func(ctx context.Context, tx bun.Tx) error) error {
	return f(ctx, bun.Tx{})
}

func (m *MockRepositoryManager) Users() auth.Users { return m.users }

func (m *MockRepositoryManager) SessionTokens() auth.SessionTokens { return m.sessions }

func (m *MockRepositoryManager) PasswordResets() auth.PasswordResets { return m.resets }

// MockConfig implements auth.Config
type MockConfig struct {
	mock.Mock
}

func (m *MockConfig) GetOrigin() string {
	args := m.Called()
	return args.String(0)
}

func (m *MockConfig) GetTokenExpiration() int {
	args := m.Called()
	return args.Int(0)
}

func (m *MockConfig) GetPrivateKeyPath() string {
	args := m.Called()
	return args.String(0)
}

func (m *MockConfig) GetPublicKeyPath() string {
	args := m.Called()
	return args.String(0)
}

func (m *MockConfig) GetContextKey() string {
	args := m.Called()
	return args.String(0)
}

func (m *MockConfig) GetTokenLookup() string {
	args := m.Called()
	return args.String(0)
}

func (m *MockConfig) GetAuthScheme() string {
	args := m.Called()
	return args.String(0)
}

func newMockConfig() *MockConfig {
	cfg := new(MockConfig)
	cfg.On("GetOrigin").Return(testOrigin)
	cfg.On("GetTokenExpiration").Return(24)
	cfg.On("GetPrivateKeyPath").Return("")
	cfg.On("GetPublicKeyPath").Return("")
	cfg.On("GetContextKey").Return("user")
	cfg.On("GetTokenLookup").Return("header:Authorization")
	cfg.On("GetAuthScheme").Return("Bearer")
	return cfg
}

func futureTime(d time.Duration) *time.Time {
	t := time.Now().Add(d)
	return &t
}
