package auth

import (
	"context"
	"fmt"
	"time"

	goerrors "github.com/goliatone/go-errors"
	"github.com/google/uuid"
)

// ResetTokenTTL bounds how long a reset token is accepted after issue.
const ResetTokenTTL = time.Hour

type InitializePasswordResetMessage struct {
	Email      string `json:"email" example:"pepe.rone@example.com" doc:"Customer email."`
	OnResponse func(resp *InitializePasswordResetResponse)
}

func (p InitializePasswordResetMessage) Type() string { return "user.password_reset" }

type InitializePasswordResetResponse struct {
	Reset   *PasswordReset
	Token   string
	Success bool
}

type InitializePasswordResetHandler struct {
	repo   RepositoryManager
	tokens TokenService
	logger Logger
}

func NewInitializePasswordResetHandler(repo RepositoryManager, tokens TokenService) *InitializePasswordResetHandler {
	return &InitializePasswordResetHandler{
		repo:   repo,
		tokens: tokens,
		logger: defLogger{},
	}
}

// WithLogger overrides the logger used by the handler.
func (h *InitializePasswordResetHandler) WithLogger(logger Logger) *InitializePasswordResetHandler {
	if logger != nil {
		h.logger = logger
	}
	return h
}

func (h *InitializePasswordResetHandler) Execute(ctx context.Context, event InitializePasswordResetMessage) error {
	select {
	case <-ctx.Done():
		return goerrors.Wrap(
			ctx.Err(),
			goerrors.CategoryOperation,
			"context cancelled during password reset initialization",
		)
	default:
		return h.execute(ctx, event)
	}
}

func (h *InitializePasswordResetHandler) execute(ctx context.Context, event InitializePasswordResetMessage) error {
	resp := &InitializePasswordResetResponse{}

	ctx, cancel := context.WithTimeout(ctx, time.Second*10)
	defer cancel()

	user, err := h.repo.Users().GetByEmail(ctx, event.Email)
	if err != nil {
		return ErrIdentityNotFound
	}

	expiresAt := time.Now().Add(ResetTokenTTL)

	token, err := h.tokens.Issue(map[string]any{
		ClaimKeyUUID:      user.UUID.String(),
		ClaimKeyEmail:     user.Email,
		ClaimKeyExpiresAt: expiresAt.Unix(),
	}, &expiresAt)
	if err != nil {
		return goerrors.Wrap(err, goerrors.CategoryInternal, "failed to issue password reset token")
	}

	claims, err := h.tokens.Parse(token)
	if err != nil {
		return goerrors.Wrap(err, goerrors.CategoryInternal, "failed to read issued reset token")
	}

	tokenID, err := uuid.Parse(claims.TokenID())
	if err != nil {
		return goerrors.Wrap(err, goerrors.CategoryInternal, "issued reset token has invalid id")
	}

	// one pending reset per email, a new request replaces the previous token
	reset, err := h.repo.PasswordResets().Upsert(ctx, user.Email, tokenID)
	if err != nil {
		return goerrors.Wrap(err, goerrors.CategoryInternal, "failed to store password reset record")
	}

	go func() {
		// TODO: we need to handle emails...
		printEmailNotification(reset.Email, token)
	}()

	resp.Reset = reset
	resp.Token = token
	resp.Success = true

	if event.OnResponse != nil {
		event.OnResponse(resp)
	}

	return nil
}

func printEmailNotification(email, token string) {
	fmt.Println("====== SENDING EMAIL NOTIFICATION =======")
	fmt.Printf("to: %s\n", email)
	fmt.Printf(
		"link: /password-reset?token=%s\n",
		token,
	)
}
