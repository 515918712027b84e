package disco

import (
	"context"
	"time"

	validation "github.com/go-ozzo/ozzo-validation"
	"github.com/go-ozzo/ozzo-validation/is"
	goerrors "github.com/goliatone/go-errors"
	"github.com/goliatone/go-repository-bun"
	"github.com/uptrace/bun"
)

type InitializePasswordResetMessage struct {
	Email      string                                 `json:"email"`
	OnResponse func(*InitializePasswordResetResponse) `json:"-"`
}

func (e InitializePasswordResetMessage) Type() string { return "auth.password_reset" }

func (e InitializePasswordResetMessage) Validate() error {
	if err := validation.ValidateStruct(&e,
		validation.Field(&e.Email, validation.Required, is.Email),
	); err != nil {
		return goerrors.Wrap(err, goerrors.CategoryValidation, "invalid password reset payload")
	}
	return nil
}

// InitializePasswordResetResponse reports success regardless of whether a
// matching account exists; Token and Expiry are only populated when one
// does. Callers must not leak the difference.
type InitializePasswordResetResponse struct {
	Token   string
	Expiry  *time.Time
	Success bool
}

type InitializePasswordResetHandler struct {
	repo   RepositoryManager
	logger Logger
}

func NewInitializePasswordResetHandler(repo RepositoryManager) *InitializePasswordResetHandler {
	return &InitializePasswordResetHandler{
		repo:   repo,
		logger: defLogger{},
	}
}

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
	if err := event.Validate(); err != nil {
		return err
	}

	resp := &InitializePasswordResetResponse{}

	ctx, cancel := context.WithTimeout(ctx, time.Second*10)
	defer cancel()

	ttl, err := time.ParseDuration(ResetTokenTTL)
	if err != nil {
		return goerrors.Wrap(err, goerrors.CategoryInternal, "invalid reset token TTL")
	}

	err = h.repo.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		user, err := h.repo.Users().GetByEmailTx(ctx, tx, event.Email)
		if err != nil {
			if repository.IsRecordNotFound(err) {
				// no account, no token. The response stays indistinguishable
				// to prevent account enumeration.
				h.logger.Debug("password reset requested for unknown email")
				return nil
			}
			return goerrors.Wrap(err, goerrors.CategoryInternal, "failed to retrieve user for password reset")
		}

		token, err := NewOpaqueToken()
		if err != nil {
			return err
		}

		// overwrites any outstanding token: latest request wins
		expiry := time.Now().Add(ttl)
		if err := h.repo.Users().SetResetTokenTx(ctx, tx, user.ID, token, expiry); err != nil {
			return goerrors.Wrap(err, goerrors.CategoryInternal, "failed to store password reset token")
		}

		resp.Token = token
		resp.Expiry = &expiry
		return nil
	})

	if err != nil {
		var richErr *goerrors.Error
		if goerrors.As(err, &richErr) {
			return richErr
		}
		return goerrors.Wrap(err, goerrors.CategoryInternal, "failed to initialize password reset")
	}

	resp.Success = true
	if event.OnResponse != nil {
		event.OnResponse(resp)
	}

	return nil
}
