package disco

import (
	"context"
	"time"

	validation "github.com/go-ozzo/ozzo-validation"
	"github.com/go-ozzo/ozzo-validation/is"
	goerrors "github.com/goliatone/go-errors"
	"github.com/goliatone/go-repository-bun"
	"github.com/goliatone/hashid/pkg/hashid"
	"github.com/uptrace/bun"
)

type SignupMessage struct {
	Username        string                `json:"username"`
	Email           string                `json:"email"`
	Password        string                `json:"password"`
	ConfirmPassword string                `json:"confirmPassword"`
	OnResponse      func(*SignupResponse) `json:"-"`
}

func (e SignupMessage) Type() string { return "auth.signup" }

// Validate rejects missing fields and mismatched confirmations before any
// state is touched.
func (e SignupMessage) Validate() error {
	if err := validation.ValidateStruct(&e,
		validation.Field(&e.Username, validation.Required),
		validation.Field(&e.Email, validation.Required, is.Email),
		validation.Field(&e.Password, validation.Required),
		validation.Field(&e.ConfirmPassword, validation.Required),
	); err != nil {
		return goerrors.Wrap(err, goerrors.CategoryValidation, "invalid signup payload")
	}

	if e.Password != e.ConfirmPassword {
		return ErrPasswordMismatch
	}

	return nil
}

// SignupResponse carries the created user plus the verification token. Token
// delivery (email or otherwise) is the caller's concern, the handler only
// issues it.
type SignupResponse struct {
	User  *User  `json:"user"`
	Token string `json:"token"`
}

type SignupHandler struct {
	repo   RepositoryManager
	logger Logger
}

// NewSignupHandler creates a handler with sane defaults.
func NewSignupHandler(repo RepositoryManager) *SignupHandler {
	return &SignupHandler{
		repo:   repo,
		logger: defLogger{},
	}
}

// WithLogger overrides the logger used by the handler.
func (h *SignupHandler) WithLogger(logger Logger) *SignupHandler {
	if logger != nil {
		h.logger = logger
	}
	return h
}

func (h *SignupHandler) Execute(ctx context.Context, event SignupMessage) error {
	select {
	case <-ctx.Done():
		return goerrors.Wrap(
			ctx.Err(),
			goerrors.CategoryOperation,
			"context cancelled during signup",
		)
	default:
		return h.execute(ctx, event)
	}
}

func (h *SignupHandler) execute(ctx context.Context, event SignupMessage) error {
	if err := event.Validate(); err != nil {
		return err
	}

	resp := &SignupResponse{}

	ctx, cancel := context.WithTimeout(ctx, time.Second*10)
	defer cancel()

	email := NormalizeEmail(event.Email)

	err := h.repo.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		// soft deleted accounts do not hold the email, the repo lookup
		// already excludes them
		if _, err := h.repo.Users().GetByEmailTx(ctx, tx, email); err == nil {
			return ErrDuplicateEmail
		} else if !repository.IsRecordNotFound(err) {
			return goerrors.Wrap(err, goerrors.CategoryInternal, "failed to check for existing account")
		}

		hash, err := HashPassword(event.Password)
		if err != nil {
			var richErr *goerrors.Error
			if goerrors.As(err, &richErr) {
				return goerrors.Wrap(richErr, goerrors.CategoryValidation, "invalid password provided")
			}
			return goerrors.Wrap(err, goerrors.CategoryInternal, "failed to hash password")
		}

		token, err := NewOpaqueToken()
		if err != nil {
			return err
		}

		user := &User{
			Name:              event.Username,
			Email:             email,
			PasswordHash:      hash,
			Role:              RoleUser,
			VerificationToken: &token,
		}

		if id, err := hashid.NewUUID(email); err == nil {
			user.ID = id
		}

		if user, err = h.repo.Users().CreateTx(ctx, tx, user); err != nil {
			return goerrors.Wrap(err, goerrors.CategoryConflict, "could not create user")
		}

		resp.User = user
		resp.Token = token

		return nil
	})

	if err != nil {
		var richErr *goerrors.Error
		if goerrors.As(err, &richErr) {
			return richErr
		}

		return goerrors.Wrap(err, goerrors.CategoryInternal, "signup transaction failed")
	}

	if event.OnResponse != nil {
		event.OnResponse(resp)
	}

	return nil
}
