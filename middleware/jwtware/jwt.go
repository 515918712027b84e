// Package jwtware protects Fiber routes with bearer session tokens. It
// mirrors the auth package's TokenService contract through small local
// interfaces to avoid an import cycle.
package jwtware

import (
	"context"
	"errors"
	"strings"

	"github.com/gofiber/fiber/v2"
)

var ErrJWTMissingOrMalformed = errors.New("missing or malformed JWT")

// TokenValidator validates a raw token string into structured claims
type TokenValidator interface {
	Validate(tokenString string) (AuthClaims, error)
}

// AuthClaims is the subset of claim accessors the middleware needs
type AuthClaims interface {
	Subject() string
	UserID() string
	Email() string
	Username() string
	Role() string
	HasRole(role string) bool
}

type Config struct {
	// Filter skips the middleware when it returns true
	Filter func(*fiber.Ctx) bool
	// ErrorHandler maps validation failures to a response; defaults to 401
	ErrorHandler fiber.ErrorHandler
	// ContextKey is the local the claims are stored under, defaults to "user"
	ContextKey string
	// AuthScheme defaults to "Bearer"
	AuthScheme string
	// TokenValidator is required
	TokenValidator TokenValidator
	// RequiredRole rejects with 403 unless the claims carry the exact role
	RequiredRole string
	// ContextEnricher propagates claims into the request's standard context
	ContextEnricher func(ctx context.Context, claims AuthClaims) context.Context
}

func New(config ...Config) fiber.Handler {
	cfg := Config{}
	if len(config) > 0 {
		cfg = config[0]
	}

	if cfg.TokenValidator == nil {
		panic("jwtware: TokenValidator is required")
	}

	if cfg.ContextKey == "" {
		cfg.ContextKey = "user"
	}

	if cfg.AuthScheme == "" {
		cfg.AuthScheme = "Bearer"
	}

	if cfg.ErrorHandler == nil {
		cfg.ErrorHandler = func(c *fiber.Ctx, err error) error {
			return c.Status(fiber.StatusUnauthorized).SendString(ErrJWTMissingOrMalformed.Error())
		}
	}

	return func(c *fiber.Ctx) error {
		if cfg.Filter != nil && cfg.Filter(c) {
			return c.Next()
		}

		raw, err := tokenFromHeader(c, cfg.AuthScheme)
		if err != nil {
			return cfg.ErrorHandler(c, err)
		}

		claims, err := cfg.TokenValidator.Validate(raw)
		if err != nil {
			return cfg.ErrorHandler(c, err)
		}

		if cfg.RequiredRole != "" && !claims.HasRole(cfg.RequiredRole) {
			return c.SendStatus(fiber.StatusForbidden)
		}

		c.Locals(cfg.ContextKey, claims)

		if cfg.ContextEnricher != nil {
			c.SetUserContext(cfg.ContextEnricher(c.UserContext(), claims))
		}

		return c.Next()
	}
}

// ClaimsFromCtx returns the claims a previous New handler stored, if any
func ClaimsFromCtx(c *fiber.Ctx, key string) (AuthClaims, bool) {
	if key == "" {
		key = "user"
	}
	claims, ok := c.Locals(key).(AuthClaims)
	return claims, ok
}

func tokenFromHeader(c *fiber.Ctx, authScheme string) (string, error) {
	header := c.Get(fiber.HeaderAuthorization)
	if header == "" {
		return "", ErrJWTMissingOrMalformed
	}

	prefix := authScheme + " "
	if !strings.HasPrefix(header, prefix) {
		return "", ErrJWTMissingOrMalformed
	}

	token := strings.TrimSpace(strings.TrimPrefix(header, prefix))
	if token == "" {
		return "", ErrJWTMissingOrMalformed
	}

	return token, nil
}
