package disco

import (
	"strings"

	goerrors "github.com/goliatone/go-errors"
)

const (
	// TextCodeInvalidCreds tags uniform credential failures
	TextCodeInvalidCreds = "INVALID_CREDENTIALS"
	// TextCodeInvalidToken tags unknown, consumed, or expired lifecycle tokens
	TextCodeInvalidToken = "INVALID_TOKEN"
	// TextCodeDuplicateEmail tags signup attempts on a taken email
	TextCodeDuplicateEmail = "DUPLICATE_EMAIL"
	// TextCodePasswordMismatch tags password/confirmation mismatches
	TextCodePasswordMismatch = "PASSWORD_MISMATCH"
	// TextCodeTokenExpired tags expired session tokens
	TextCodeTokenExpired = "TOKEN_EXPIRED"
)

// ErrInvalidCredentials is returned for both unknown identifiers and wrong
// passwords. Keep it uniform: the message must not reveal which factor failed.
var ErrInvalidCredentials = goerrors.New("the credentials provided are invalid", goerrors.CategoryAuth).
	WithTextCode(TextCodeInvalidCreds)

// ErrInvalidVerificationToken covers unknown and already consumed
// verification tokens identically.
var ErrInvalidVerificationToken = goerrors.New("Token de verificação inválido.", goerrors.CategoryValidation).
	WithTextCode(TextCodeInvalidToken)

// ErrInvalidResetToken covers unknown, consumed, and expired reset tokens
// with a single message.
var ErrInvalidResetToken = goerrors.New("Token de redefinição de senha inválido.", goerrors.CategoryValidation).
	WithTextCode(TextCodeInvalidToken)

// ErrDuplicateEmail is the signup conflict on an active account's email
var ErrDuplicateEmail = goerrors.New("Já existe um usuário cadastrado com este e-mail.", goerrors.CategoryConflict).
	WithTextCode(TextCodeDuplicateEmail)

// ErrPasswordMismatch is returned when password and confirmation differ
var ErrPasswordMismatch = goerrors.New("As senhas não conferem.", goerrors.CategoryValidation).
	WithTextCode(TextCodePasswordMismatch)

// ErrTooManyLoginAttempts is returned while an account is cooling down
var ErrTooManyLoginAttempts = goerrors.New("too many login attempts", goerrors.CategoryAuth).
	WithTextCode("TOO_MANY_ATTEMPTS")

// ErrNoEmptyString rejects empty passwords before they reach bcrypt
var ErrNoEmptyString = goerrors.New("value should not be an empty string", goerrors.CategoryValidation)

// ErrTokenExpired is returned when a session token is past its expiry
var ErrTokenExpired = goerrors.New("token is expired", goerrors.CategoryAuth).
	WithTextCode(TextCodeTokenExpired)

// ErrTokenMalformed is returned when a session token fails parsing or
// signature checks
var ErrTokenMalformed = goerrors.New("token is malformed", goerrors.CategoryAuth).
	WithTextCode("TOKEN_MALFORMED")

// ErrUnableToMapClaims unable to get claims from a parsed token
var ErrUnableToMapClaims = goerrors.New("unable to map claims", goerrors.CategoryAuth)

// IsTokenExpiredError will check for expired tokens
func IsTokenExpiredError(err error) bool {
	if err == nil {
		return false
	}
	return strings.Contains(err.Error(), "token is expired")
}

// IsMalformedError will check for error message
func IsMalformedError(err error) bool {
	if err == nil {
		return false
	}
	return strings.Contains(err.Error(), "token is malformed") ||
		strings.Contains(err.Error(), "missing or malformed JWT")
}
