package disco

import (
	"context"

	validation "github.com/go-ozzo/ozzo-validation"
	"github.com/gofiber/fiber/v2"
	"github.com/goliatone/go-errors"
	"github.com/goliatone/go-print"

	"github.com/goliatone/go-disco/middleware/jwtware"
)

// HTTPServer wires every controller onto a fiber app. The auth routes are
// open, everything mutating content sits behind the bearer middleware.
type HTTPServer struct {
	repo   RepositoryManager
	auther Authenticator
	tokens TokenService
	cfg    Config
	Logger Logger
}

func NewHTTPServer(repo RepositoryManager, auther Authenticator, tokens TokenService, cfg Config) *HTTPServer {
	return &HTTPServer{
		repo:   repo,
		auther: auther,
		tokens: tokens,
		cfg:    cfg,
		Logger: defLogger{},
	}
}

func (s *HTTPServer) WithLogger(logger Logger) *HTTPServer {
	if logger != nil {
		s.Logger = logger
	}
	return s
}

// RegisterRoutes mounts the API under /api
func (s *HTTPServer) RegisterRoutes(app *fiber.App) {
	protected := s.Protected()
	adminOnly := s.ProtectedWithRole(RoleAdmin)

	api := app.Group("/api")

	auth := api.Group("/auth")
	auth.Post("/signup", s.Signup)
	auth.Post("/verify", s.VerifyAccount)
	auth.Post("/login", s.Login)
	auth.Post("/forgot-password", s.ForgotPassword)
	auth.Post("/reset-password", s.ResetPassword)

	users := api.Group("/users")
	users.Get("/", s.ListUsers)
	users.Post("/", adminOnly, s.CreateUser)
	users.Put("/:id", protected, s.UpdateUser)
	users.Delete("/me/deactivate", protected, s.DeactivateAccount)

	artistsGroup := api.Group("/artists")
	artistsGroup.Get("/", s.ListArtists)
	artistsGroup.Get("/:id", s.GetArtist)

	posts := api.Group("/posts")
	posts.Get("/", s.ListPosts)
	posts.Post("/react", protected, s.ReactToPost)
	posts.Get("/:id", s.GetPost)
	posts.Post("/", protected, s.CreatePost)
	posts.Put("/:id", protected, s.UpdatePost)
	posts.Delete("/:id", protected, s.DeletePost)

	replies := api.Group("/replies")
	replies.Get("/post/:postId", s.ListRepliesByPost)
	replies.Post("/", protected, s.CreateReply)
	replies.Delete("/:id", protected, s.DeleteReply)
}

// Protected returns the bearer middleware bound to this server's validator
func (s *HTTPServer) Protected() fiber.Handler {
	return jwtware.New(jwtware.Config{
		TokenValidator:  tokenValidatorAdapter{svc: s.tokens},
		ContextKey:      s.contextKey(),
		ContextEnricher: enrichContext,
	})
}

// ProtectedWithRole additionally requires an exact role claim
func (s *HTTPServer) ProtectedWithRole(role UserRole) fiber.Handler {
	return jwtware.New(jwtware.Config{
		TokenValidator:  tokenValidatorAdapter{svc: s.tokens},
		ContextKey:      s.contextKey(),
		RequiredRole:    role,
		ContextEnricher: enrichContext,
	})
}

func (s *HTTPServer) contextKey() string {
	if key := s.cfg.GetContextKey(); key != "" {
		return key
	}
	return "user"
}

// claims pulls the validated claims a Protected route stored
func (s *HTTPServer) claims(c *fiber.Ctx) (AuthClaims, bool) {
	raw, ok := jwtware.ClaimsFromCtx(c, s.contextKey())
	if !ok {
		return nil, false
	}
	claims, ok := raw.(AuthClaims)
	return claims, ok
}

// handleError is the single place domain errors become HTTP responses.
// Authentication adjacent failures stay uniform and terse, validation
// errors may name the constraint that failed.
func (s *HTTPServer) handleError(c *fiber.Ctx, err error) error {
	var verrs validation.Errors
	if errors.As(err, &verrs) {
		return c.Status(fiber.StatusBadRequest).SendString(verrs.Error())
	}

	var richErr *errors.Error
	if !errors.As(err, &richErr) {
		richErr = errors.Wrap(err, errors.CategoryInternal, "An unexpected server error occurred")
	}

	s.Logger.Info(
		"request error",
		"error", richErr.Message,
		"category", richErr.Category,
		"details", print.MaybePrettyJSON(richErr.Metadata),
	)

	switch richErr.Category {
	case errors.CategoryValidation, errors.CategoryBadInput, errors.CategoryConflict:
		return c.Status(fiber.StatusBadRequest).SendString(richErr.Message)
	case errors.CategoryAuth:
		return c.SendStatus(fiber.StatusUnauthorized)
	case errors.CategoryAuthz:
		return c.SendStatus(fiber.StatusForbidden)
	case errors.CategoryNotFound:
		return c.SendStatus(fiber.StatusNotFound)
	default:
		return c.SendStatus(fiber.StatusInternalServerError)
	}
}

type tokenValidatorAdapter struct {
	svc TokenService
}

func (a tokenValidatorAdapter) Validate(raw string) (jwtware.AuthClaims, error) {
	claims, err := a.svc.Validate(raw)
	if err != nil {
		return nil, err
	}

	jc, ok := claims.(jwtware.AuthClaims)
	if !ok {
		return nil, ErrUnableToMapClaims
	}

	return jc, nil
}

func enrichContext(ctx context.Context, claims jwtware.AuthClaims) context.Context {
	if ac, ok := claims.(AuthClaims); ok {
		return WithClaimsContext(ctx, ac)
	}
	return ctx
}
