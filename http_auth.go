package disco

import (
	"github.com/gofiber/fiber/v2"
	"github.com/goliatone/go-errors"
)

// LoginPayload is the credential pair the login route accepts
type LoginPayload struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// LoginResponse mirrors the original wire contract: token first, then the
// public view of the account.
type LoginResponse struct {
	Token string `json:"token"`
	User  *User  `json:"user"`
}

// Signup handles POST /api/auth/signup. On success the verification token
// travels back with the created user; dispatching it by email is a delivery
// concern this surface does not own.
func (s *HTTPServer) Signup(c *fiber.Ctx) error {
	msg := SignupMessage{}
	if err := c.BodyParser(&msg); err != nil {
		return c.Status(fiber.StatusBadRequest).SendString("invalid request body")
	}

	var resp *SignupResponse
	msg.OnResponse = func(r *SignupResponse) {
		resp = r
	}

	handler := NewSignupHandler(s.repo).WithLogger(s.Logger)
	if err := handler.Execute(c.UserContext(), msg); err != nil {
		return s.handleError(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(resp)
}

// VerifyAccount handles POST /api/auth/verify?token=...
func (s *HTTPServer) VerifyAccount(c *fiber.Ctx) error {
	msg := VerifyAccountMessage{Token: c.Query("token")}

	handler := NewVerifyAccountHandler(s.repo)
	if err := handler.Execute(c.UserContext(), msg); err != nil {
		return s.handleError(c, err)
	}

	return c.SendStatus(fiber.StatusOK)
}

// Login handles POST /api/auth/login
func (s *HTTPServer) Login(c *fiber.Ctx) error {
	payload := LoginPayload{}
	if err := c.BodyParser(&payload); err != nil {
		return c.Status(fiber.StatusBadRequest).SendString("invalid request body")
	}

	if payload.Email == "" || payload.Password == "" {
		return c.Status(fiber.StatusBadRequest).SendString("email and password are required")
	}

	token, identity, err := s.auther.Login(c.UserContext(), payload.Email, payload.Password)
	if err != nil {
		return s.handleError(c, err)
	}

	user, err := s.repo.Users().GetByEmail(c.UserContext(), identity.Email())
	if err != nil {
		return s.handleError(c, errors.Wrap(err, errors.CategoryInternal, "failed to load account"))
	}

	return c.JSON(LoginResponse{Token: token, User: user})
}

// ForgotPassword handles POST /api/auth/forgot-password. The response is
// 204 no matter what: unknown accounts, malformed addresses, and storage
// failures all look identical from outside.
func (s *HTTPServer) ForgotPassword(c *fiber.Ctx) error {
	msg := InitializePasswordResetMessage{}
	if err := c.BodyParser(&msg); err != nil {
		return c.SendStatus(fiber.StatusNoContent)
	}

	handler := NewInitializePasswordResetHandler(s.repo).WithLogger(s.Logger)
	if err := handler.Execute(c.UserContext(), msg); err != nil {
		// nothing about the outcome may leak to the caller
		s.Logger.Error("forgot password failed", "error", err)
	}

	return c.SendStatus(fiber.StatusNoContent)
}

// ResetPassword handles POST /api/auth/reset-password
func (s *HTTPServer) ResetPassword(c *fiber.Ctx) error {
	msg := FinalizePasswordResetMessage{}
	if err := c.BodyParser(&msg); err != nil {
		return c.Status(fiber.StatusBadRequest).SendString("invalid request body")
	}

	handler := NewFinalizePasswordResetHandler(s.repo).WithLogger(s.Logger)
	if err := handler.Execute(c.UserContext(), msg); err != nil {
		return s.handleError(c, err)
	}

	return c.SendStatus(fiber.StatusOK)
}
