package disco

import (
	validation "github.com/go-ozzo/ozzo-validation"
	"github.com/go-ozzo/ozzo-validation/is"
	"github.com/gofiber/fiber/v2"
	goerrors "github.com/goliatone/go-errors"
	"github.com/google/uuid"
)

// UserPayload is the profile shape owners may edit
type UserPayload struct {
	Name   string `json:"name"`
	Email  string `json:"email"`
	Bio    string `json:"bio"`
	Avatar string `json:"avatar"`
}

func (p UserPayload) Validate() error {
	if err := validation.ValidateStruct(&p,
		validation.Field(&p.Name, validation.Required),
		validation.Field(&p.Email, validation.Required, is.Email),
	); err != nil {
		return goerrors.Wrap(err, goerrors.CategoryValidation, "invalid user payload")
	}
	return nil
}

// ListUsers handles GET /api/users
func (s *HTTPServer) ListUsers(c *fiber.Ctx) error {
	users, err := s.repo.Users().ListAll(c.UserContext())
	if err != nil {
		return s.handleError(c, goerrors.Wrap(err, goerrors.CategoryInternal, "failed to list users"))
	}

	return c.JSON(users)
}

// CreateUser handles POST /api/users. The route itself is admin gated, a
// regular session gets a 403 before reaching here.
func (s *HTTPServer) CreateUser(c *fiber.Ctx) error {
	payload := UserPayload{}
	if err := c.BodyParser(&payload); err != nil {
		return c.Status(fiber.StatusBadRequest).SendString("invalid request body")
	}

	if err := payload.Validate(); err != nil {
		return s.handleError(c, err)
	}

	user := &User{
		Name:   payload.Name,
		Email:  payload.Email,
		Bio:    payload.Bio,
		Avatar: payload.Avatar,
	}

	created, err := s.repo.Users().Create(c.UserContext(), user)
	if err != nil {
		return s.handleError(c, goerrors.Wrap(err, goerrors.CategoryConflict, "could not create user"))
	}

	return c.Status(fiber.StatusCreated).JSON(created)
}

// UpdateUser handles PUT /api/users/:id, owners only
func (s *HTTPServer) UpdateUser(c *fiber.Ctx) error {
	claims, ok := s.claims(c)
	if !ok {
		return c.SendStatus(fiber.StatusUnauthorized)
	}

	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).SendString("invalid user id")
	}

	if claims.UserID() != id.String() {
		return c.SendStatus(fiber.StatusForbidden)
	}

	payload := UserPayload{}
	if err := c.BodyParser(&payload); err != nil {
		return c.Status(fiber.StatusBadRequest).SendString("invalid request body")
	}

	if err := payload.Validate(); err != nil {
		return s.handleError(c, err)
	}

	record := &User{
		ID:     id,
		Name:   payload.Name,
		Email:  NormalizeEmail(payload.Email),
		Bio:    payload.Bio,
		Avatar: payload.Avatar,
	}

	if _, err := s.repo.Users().UpdateProfile(c.UserContext(), record); err != nil {
		return s.handleError(c, goerrors.Wrap(err, goerrors.CategoryInternal, "failed to update user"))
	}

	return c.SendStatus(fiber.StatusNoContent)
}

// DeactivateAccount handles DELETE /api/users/me/deactivate, soft deleting
// the calling account. Deactivated accounts drop out of login and duplicate
// email checks.
func (s *HTTPServer) DeactivateAccount(c *fiber.Ctx) error {
	claims, ok := s.claims(c)
	if !ok {
		return c.SendStatus(fiber.StatusUnauthorized)
	}

	id, err := UserUUIDFromClaims(claims)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).SendString("invalid session subject")
	}

	if err := s.repo.Users().Deactivate(c.UserContext(), id); err != nil {
		return s.handleError(c, err)
	}

	return c.SendStatus(fiber.StatusNoContent)
}
