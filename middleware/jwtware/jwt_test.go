package jwtware_test

import (
	"context"
	"testing"

	"github.com/goliatone/go-router"
	"github.com/google/uuid"
	auth "github.com/storecraft/go-auth"
	"github.com/storecraft/go-auth/middleware/jwtware"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// stubAuthenticator records what it was asked and answers from canned fields.
type stubAuthenticator struct {
	user      *auth.User
	err       error
	gotToken  string
	gotRoute  auth.RouteInfo
	callCount int
}

func (s *stubAuthenticator) Login(ctx context.Context, identifier, password string) (string, *auth.User, error) {
	return "", nil, auth.ErrNotAuthorized
}

func (s *stubAuthenticator) Logout(ctx context.Context, token string) error {
	return nil
}

func (s *stubAuthenticator) Authenticate(ctx context.Context, token string, route auth.RouteInfo) (*auth.User, error) {
	s.callCount++
	s.gotToken = token
	s.gotRoute = route
	if s.err != nil {
		return nil, s.err
	}
	return s.user, nil
}

func stubUser(isAdmin bool) *auth.User {
	return &auth.User{
		UUID:    uuid.New(),
		Email:   "stub@example.com",
		IsAdmin: isAdmin,
	}
}

func passthroughErrors(cfg *jwtware.Config) {
	cfg.ErrorHandler = func(c router.Context, err error) error {
		return err
	}
}

func TestHeaderExtractionAndLocals(t *testing.T) {
	stub := &stubAuthenticator{user: stubUser(false)}

	cfg := jwtware.Config{
		Authenticator: stub,
		Route:         auth.RouteInfo{Class: auth.RouteUserScoped},
	}
	passthroughErrors(&cfg)

	handler := jwtware.New(cfg)(func(ctx router.Context) error {
		return ctx.Next()
	})

	ctx := router.NewMockContext()
	ctx.On("GetString", "Authorization", "").Return("Bearer the-raw-token")
	ctx.On("Context").Return(context.Background())
	ctx.On("Locals", "user", mock.AnythingOfType("*auth.User")).Return(nil)

	require.NoError(t, handler(ctx))
	assert.True(t, ctx.NextCalled)
	assert.Equal(t, "the-raw-token", stub.gotToken)
	assert.Equal(t, auth.RouteUserScoped, stub.gotRoute.Class)
}

func TestMissingHeader(t *testing.T) {
	stub := &stubAuthenticator{user: stubUser(false)}

	cfg := jwtware.Config{
		Authenticator: stub,
		Route:         auth.RouteInfo{Class: auth.RouteUserScoped},
	}
	passthroughErrors(&cfg)

	handler := jwtware.New(cfg)(func(ctx router.Context) error {
		return ctx.Next()
	})

	ctx := router.NewMockContext()
	ctx.On("GetString", "Authorization", "").Return("")

	err := handler(ctx)
	require.Error(t, err)
	assert.Equal(t, auth.TextCodeTokenMissing, auth.TextCode(err))
	assert.Zero(t, stub.callCount, "authenticator should not run without a token")
}

func TestAuthenticatorFailurePropagates(t *testing.T) {
	stub := &stubAuthenticator{err: auth.ErrTokenExpired}

	cfg := jwtware.Config{
		Authenticator: stub,
		Route:         auth.RouteInfo{Class: auth.RouteUserScoped},
	}
	passthroughErrors(&cfg)

	handler := jwtware.New(cfg)(func(ctx router.Context) error {
		return ctx.Next()
	})

	ctx := router.NewMockContext()
	ctx.On("GetString", "Authorization", "").Return("Bearer expired-token")
	ctx.On("Context").Return(context.Background())

	err := handler(ctx)
	assert.ErrorIs(t, err, auth.ErrTokenExpired)
	assert.False(t, ctx.NextCalled)
}

func TestGateDeniesWrongRole(t *testing.T) {
	stub := &stubAuthenticator{user: stubUser(false)}

	cfg := jwtware.Config{
		Authenticator: stub,
		Route:         auth.RouteInfo{Class: auth.RouteAdminScoped},
	}
	passthroughErrors(&cfg)

	handler := jwtware.New(cfg)(func(ctx router.Context) error {
		return ctx.Next()
	})

	ctx := router.NewMockContext()
	ctx.On("GetString", "Authorization", "").Return("Bearer user-token")
	ctx.On("Context").Return(context.Background())

	err := handler(ctx)
	assert.ErrorIs(t, err, auth.ErrNotAuthorized)
	assert.False(t, ctx.NextCalled)
}

func TestGateDeniesUnclassifiedRoute(t *testing.T) {
	stub := &stubAuthenticator{user: stubUser(true)}

	cfg := jwtware.Config{
		Authenticator: stub,
	}
	passthroughErrors(&cfg)

	handler := jwtware.New(cfg)(func(ctx router.Context) error {
		return ctx.Next()
	})

	ctx := router.NewMockContext()
	ctx.On("GetString", "Authorization", "").Return("Bearer admin-token")
	ctx.On("Context").Return(context.Background())

	err := handler(ctx)
	assert.ErrorIs(t, err, auth.ErrRouteUnclassified)
}

func TestExemptRouteSkipsGate(t *testing.T) {
	stub := &stubAuthenticator{user: stubUser(false)}

	cfg := jwtware.Config{
		Authenticator: stub,
		Route:         auth.RouteInfo{Class: auth.RouteAdminScoped, Exempt: true},
	}
	passthroughErrors(&cfg)

	handler := jwtware.New(cfg)(func(ctx router.Context) error {
		return ctx.Next()
	})

	ctx := router.NewMockContext()
	ctx.On("GetString", "Authorization", "").Return("Bearer registration-token")
	ctx.On("Context").Return(context.Background())
	ctx.On("Locals", "user", mock.AnythingOfType("*auth.User")).Return(nil)

	require.NoError(t, handler(ctx))
	assert.True(t, ctx.NextCalled)
	assert.True(t, stub.gotRoute.Exempt)
}

func TestFilterSkipsMiddleware(t *testing.T) {
	stub := &stubAuthenticator{user: stubUser(false)}

	cfg := jwtware.Config{
		Authenticator: stub,
		Route:         auth.RouteInfo{Class: auth.RouteUserScoped},
		Filter: func(router.Context) bool {
			return true
		},
	}
	passthroughErrors(&cfg)

	handler := jwtware.New(cfg)(func(ctx router.Context) error {
		return ctx.Next()
	})

	ctx := router.NewMockContext()

	require.NoError(t, handler(ctx))
	assert.True(t, ctx.NextCalled)
	assert.Zero(t, stub.callCount)
}

func TestQueryExtractor(t *testing.T) {
	stub := &stubAuthenticator{user: stubUser(false)}

	cfg := jwtware.Config{
		Authenticator: stub,
		Route:         auth.RouteInfo{Class: auth.RouteUserScoped},
		TokenLookup:   "query:auth_token",
	}
	passthroughErrors(&cfg)

	handler := jwtware.New(cfg)(func(ctx router.Context) error {
		return ctx.Next()
	})

	ctx := router.NewMockContext()
	ctx.QueriesM["auth_token"] = "query-token"
	ctx.On("Context").Return(context.Background())
	ctx.On("Locals", "user", mock.AnythingOfType("*auth.User")).Return(nil)

	require.NoError(t, handler(ctx))
	assert.Equal(t, "query-token", stub.gotToken)
}

func TestCookieExtractor(t *testing.T) {
	stub := &stubAuthenticator{user: stubUser(false)}

	cfg := jwtware.Config{
		Authenticator: stub,
		Route:         auth.RouteInfo{Class: auth.RouteUserScoped},
		TokenLookup:   "cookie:jwt",
	}
	passthroughErrors(&cfg)

	handler := jwtware.New(cfg)(func(ctx router.Context) error {
		return ctx.Next()
	})

	ctx := router.NewMockContext()
	ctx.CookiesM["jwt"] = "cookie-token"
	ctx.On("Context").Return(context.Background())
	ctx.On("Locals", "user", mock.AnythingOfType("*auth.User")).Return(nil)

	require.NoError(t, handler(ctx))
	assert.Equal(t, "cookie-token", stub.gotToken)
}

func TestGetExtractorsParsesLookupChain(t *testing.T) {
	extractors := jwtware.GetExtractors("header:Authorization, query:auth_token, cookie:jwt")
	assert.Len(t, extractors, 3)

	extractors = jwtware.GetExtractors("header:Authorization")
	assert.Len(t, extractors, 1)
}
