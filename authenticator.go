package auth

import (
	"context"
	"time"

	goerrors "github.com/goliatone/go-errors"
	"github.com/google/uuid"
)

// Auther wires the token service, the user store and the session registry
// into the request-facing authentication operations.
type Auther struct {
	repo            RepositoryManager
	tokens          TokenService
	verifier        TokenVerifier
	hasher          PasswordAuthenticator
	tokenExpiration int
	logger          Logger
}

// NewAuthenticator returns a new Authenticator
func NewAuthenticator(repo RepositoryManager, keys *KeyPair, opts Config) *Auther {
	tokens := NewTokenService(keys, opts.GetOrigin(), defLogger{})

	return &Auther{
		repo:            repo,
		tokens:          tokens,
		hasher:          BcryptHasher{},
		tokenExpiration: opts.GetTokenExpiration(),
		logger:          defLogger{},
	}
}

func (s *Auther) WithLogger(logger Logger) *Auther {
	if logger != nil {
		s.logger = logger
	}
	return s
}

// WithTokenService overrides the token service, mostly for tests.
func (s *Auther) WithTokenService(tokens TokenService) *Auther {
	if tokens != nil {
		s.tokens = tokens
	}
	return s
}

// WithTokenVerifier sets a custom verifier for externally issued tokens.
func (s *Auther) WithTokenVerifier(verifier TokenVerifier) *Auther {
	s.verifier = verifier
	return s
}

// WithPasswordAuthenticator overrides the credential hasher collaborator.
func (s *Auther) WithPasswordAuthenticator(hasher PasswordAuthenticator) *Auther {
	if hasher != nil {
		s.hasher = hasher
	}
	return s
}

// TokenService returns the TokenService instance used by this Authenticator
func (s *Auther) TokenService() TokenService {
	return s.tokens
}

// Login verifies credentials, issues an authorized token and registers its
// session. Concurrent logins for the same identity each get their own row.
func (s *Auther) Login(ctx context.Context, identifier, password string) (string, *User, error) {
	user, err := s.repo.Users().GetByEmail(ctx, identifier)
	if err != nil {
		s.logger.Error("Login identity lookup failed", "identifier", identifier, "error", err)
		return "", nil, ErrIdentityNotFound
	}

	if err := s.hasher.ComparePasswordAndHash(password, user.PasswordHash); err != nil {
		s.logger.Info("Login rejected credentials", "identifier", identifier)
		return "", nil, ErrNotAuthorized
	}

	expiresAt := time.Now().Add(time.Duration(s.tokenExpiration) * time.Hour)

	token, err := s.tokens.Issue(map[string]any{
		ClaimKeyUUID:       user.UUID.String(),
		ClaimKeyAuthorized: true,
		ClaimKeyIsAdmin:    user.IsAdmin,
		ClaimKeyExpiresAt:  expiresAt.Unix(),
	}, &expiresAt)
	if err != nil {
		return "", nil, err
	}

	claims, err := s.tokens.Parse(token)
	if err != nil {
		return "", nil, err
	}

	tokenID, err := uuid.Parse(claims.TokenID())
	if err != nil {
		return "", nil, goerrors.Wrap(err, goerrors.CategoryInternal, "issued token has invalid id")
	}

	if _, err := s.repo.SessionTokens().Create(ctx, user.ID, tokenID, DefaultTokenTitle); err != nil {
		return "", nil, err
	}

	if err := s.repo.Users().TrackSuccessfulLogin(ctx, user); err != nil {
		s.logger.Warn("Login could not track login time", "error", err)
	}

	return token, user, nil
}

// Logout revokes the session registered for the token's jti. The token must
// pass verification before the registry is touched. The token string itself
// stays structurally valid until natural expiry; absence from the registry is
// what ends the session.
func (s *Auther) Logout(ctx context.Context, raw string) error {
	if raw == "" {
		return ErrTokenMissing
	}

	claims, err := s.verify(raw)
	if err != nil {
		return err
	}

	tokenID, err := uuid.Parse(claims.TokenID())
	if err != nil {
		return ErrSessionNotFound
	}

	return s.repo.SessionTokens().Revoke(ctx, tokenID)
}

// Authenticate resolves a bearer token into a stored identity, or one of the
// named auth failures. It performs no writes.
func (s *Auther) Authenticate(ctx context.Context, raw string, route RouteInfo) (*User, error) {
	if raw == "" {
		return nil, ErrTokenMissing
	}

	claims, err := s.verify(raw)
	if err != nil {
		return nil, err
	}

	subject, err := claims.SubjectUUID()
	if err != nil {
		return nil, ErrUnknownSubject
	}

	user, err := s.repo.Users().GetByUUID(ctx, subject)
	if err != nil {
		s.logger.Info("Authenticate subject not found", "subject", subject.String())
		return nil, ErrUnknownSubject
	}

	if !route.Exempt {
		if !claims.IsAuthorized() {
			return nil, ErrNotAuthorized
		}

		tokenID, err := uuid.Parse(claims.TokenID())
		if err != nil {
			return nil, ErrNotAuthorized
		}

		if _, err := s.repo.SessionTokens().GetByTokenID(ctx, tokenID); err != nil {
			return nil, ErrNotAuthorized
		}
	}

	return user, nil
}

func (s *Auther) verify(raw string) (*TokenClaims, error) {
	if s.verifier != nil {
		return s.verifier.Verify(raw)
	}
	return s.tokens.Verify(raw)
}
