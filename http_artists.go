package disco

import (
	"github.com/gofiber/fiber/v2"
	goerrors "github.com/goliatone/go-errors"
	"github.com/goliatone/go-repository-bun"
	"github.com/google/uuid"
)

// ListArtists handles GET /api/artists
func (s *HTTPServer) ListArtists(c *fiber.Ctx) error {
	records, err := s.repo.Artists().ListAll(c.UserContext())
	if err != nil {
		return s.handleError(c, goerrors.Wrap(err, goerrors.CategoryInternal, "failed to list artists"))
	}

	return c.JSON(records)
}

// GetArtist handles GET /api/artists/:id. A non uuid param falls back to a
// name lookup so seeded artists stay reachable by slug.
func (s *HTTPServer) GetArtist(c *fiber.Ctx) error {
	param := c.Params("id")

	var artist *Artist
	var err error

	if id, perr := uuid.Parse(param); perr == nil {
		artist, err = s.repo.Artists().GetByID(c.UserContext(), id.String())
	} else {
		artist, err = s.repo.Artists().GetByName(c.UserContext(), param)
	}

	if err != nil {
		if repository.IsRecordNotFound(err) || goerrors.IsNotFound(err) {
			return c.SendStatus(fiber.StatusNotFound)
		}
		return s.handleError(c, err)
	}

	return c.JSON(artist)
}
