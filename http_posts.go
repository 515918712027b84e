package disco

import (
	validation "github.com/go-ozzo/ozzo-validation"
	"github.com/gofiber/fiber/v2"
	goerrors "github.com/goliatone/go-errors"
	"github.com/goliatone/go-repository-bun"
	"github.com/google/uuid"
)

// PostPayload is the request shape for creating and updating posts
type PostPayload struct {
	Title    string    `json:"title"`
	Content  string    `json:"content"`
	ArtistID uuid.UUID `json:"artist_id"`
}

func (p PostPayload) Validate() error {
	if err := validation.ValidateStruct(&p,
		validation.Field(&p.Title, validation.Required),
		validation.Field(&p.Content, validation.Required),
	); err != nil {
		return goerrors.Wrap(err, goerrors.CategoryValidation, "invalid post payload")
	}

	if p.ArtistID == uuid.Nil {
		return goerrors.New("artist_id is required", goerrors.CategoryValidation)
	}

	return nil
}

// ReplyPayload creates a reply, optionally threaded under a parent reply
type ReplyPayload struct {
	PostID   uuid.UUID  `json:"post_id"`
	ParentID *uuid.UUID `json:"parent_id"`
	Content  string     `json:"content"`
}

// ReactionPayload toggles a reaction on a post
type ReactionPayload struct {
	PostID uuid.UUID `json:"post_id"`
	Kind   string    `json:"kind"`
}

// ListPosts handles GET /api/posts
func (s *HTTPServer) ListPosts(c *fiber.Ctx) error {
	posts, err := s.repo.Posts().ListAll(c.UserContext())
	if err != nil {
		return s.handleError(c, goerrors.Wrap(err, goerrors.CategoryInternal, "failed to list posts"))
	}

	return c.JSON(posts)
}

// GetPost handles GET /api/posts/:id
func (s *HTTPServer) GetPost(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).SendString("invalid post id")
	}

	post, err := s.repo.Posts().GetWithRelations(c.UserContext(), id)
	if err != nil {
		if repository.IsRecordNotFound(err) || goerrors.IsNotFound(err) {
			return c.SendStatus(fiber.StatusNotFound)
		}
		return s.handleError(c, err)
	}

	return c.JSON(post)
}

// CreatePost handles POST /api/posts
func (s *HTTPServer) CreatePost(c *fiber.Ctx) error {
	claims, ok := s.claims(c)
	if !ok {
		return c.SendStatus(fiber.StatusUnauthorized)
	}

	authorID, err := UserUUIDFromClaims(claims)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).SendString("invalid session subject")
	}

	payload := PostPayload{}
	if err := c.BodyParser(&payload); err != nil {
		return c.Status(fiber.StatusBadRequest).SendString("invalid request body")
	}

	if err := payload.Validate(); err != nil {
		return s.handleError(c, err)
	}

	post := &Post{
		ID:       uuid.New(),
		Title:    payload.Title,
		Content:  payload.Content,
		ArtistID: payload.ArtistID,
		AuthorID: authorID,
	}

	created, err := s.repo.Posts().Create(c.UserContext(), post)
	if err != nil {
		return s.handleError(c, goerrors.Wrap(err, goerrors.CategoryInternal, "could not create post"))
	}

	return c.Status(fiber.StatusCreated).JSON(created)
}

// UpdatePost handles PUT /api/posts/:id, authors only
func (s *HTTPServer) UpdatePost(c *fiber.Ctx) error {
	claims, ok := s.claims(c)
	if !ok {
		return c.SendStatus(fiber.StatusUnauthorized)
	}

	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).SendString("invalid post id")
	}

	post, err := s.repo.Posts().GetWithRelations(c.UserContext(), id)
	if err != nil {
		if repository.IsRecordNotFound(err) || goerrors.IsNotFound(err) {
			return c.SendStatus(fiber.StatusNotFound)
		}
		return s.handleError(c, err)
	}

	if post.AuthorID.String() != claims.UserID() {
		return c.SendStatus(fiber.StatusForbidden)
	}

	payload := PostPayload{}
	if err := c.BodyParser(&payload); err != nil {
		return c.Status(fiber.StatusBadRequest).SendString("invalid request body")
	}

	if err := payload.Validate(); err != nil {
		return s.handleError(c, err)
	}

	post.Title = payload.Title
	post.Content = payload.Content
	post.ArtistID = payload.ArtistID

	if _, err := s.repo.Posts().Update(c.UserContext(), post); err != nil {
		return s.handleError(c, goerrors.Wrap(err, goerrors.CategoryInternal, "failed to update post"))
	}

	return c.SendStatus(fiber.StatusNoContent)
}

// DeletePost handles DELETE /api/posts/:id, soft delete, authors only
func (s *HTTPServer) DeletePost(c *fiber.Ctx) error {
	claims, ok := s.claims(c)
	if !ok {
		return c.SendStatus(fiber.StatusUnauthorized)
	}

	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).SendString("invalid post id")
	}

	post, err := s.repo.Posts().GetWithRelations(c.UserContext(), id)
	if err != nil {
		if repository.IsRecordNotFound(err) || goerrors.IsNotFound(err) {
			return c.SendStatus(fiber.StatusNotFound)
		}
		return s.handleError(c, err)
	}

	if post.AuthorID.String() != claims.UserID() && !claims.HasRole(RoleAdmin) {
		return c.SendStatus(fiber.StatusForbidden)
	}

	if err := s.repo.Posts().SoftDelete(c.UserContext(), id); err != nil {
		return s.handleError(c, goerrors.Wrap(err, goerrors.CategoryInternal, "failed to delete post"))
	}

	return c.SendStatus(fiber.StatusNoContent)
}

// ReactToPost handles POST /api/posts/react. A second identical reaction
// from the same user removes the first one.
func (s *HTTPServer) ReactToPost(c *fiber.Ctx) error {
	claims, ok := s.claims(c)
	if !ok {
		return c.SendStatus(fiber.StatusUnauthorized)
	}

	userID, err := UserUUIDFromClaims(claims)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).SendString("invalid session subject")
	}

	payload := ReactionPayload{}
	if err := c.BodyParser(&payload); err != nil {
		return c.Status(fiber.StatusBadRequest).SendString("invalid request body")
	}

	if _, err := s.repo.Posts().GetWithRelations(c.UserContext(), payload.PostID); err != nil {
		if repository.IsRecordNotFound(err) || goerrors.IsNotFound(err) {
			return c.SendStatus(fiber.StatusNotFound)
		}
		return s.handleError(c, err)
	}

	existing, err := s.repo.Reactions().GetByPostAndUser(c.UserContext(), payload.PostID, userID)
	if err == nil {
		if err := s.repo.Reactions().Remove(c.UserContext(), existing.ID); err != nil {
			return s.handleError(c, goerrors.Wrap(err, goerrors.CategoryInternal, "failed to remove reaction"))
		}
		return s.reactionResult(c, payload.PostID, "Reação removida.")
	}

	if !repository.IsRecordNotFound(err) && !goerrors.IsNotFound(err) {
		return s.handleError(c, err)
	}

	kind := payload.Kind
	if kind == "" {
		kind = "Like"
	}

	reaction := &Reaction{
		ID:     uuid.New(),
		PostID: payload.PostID,
		UserID: userID,
		Kind:   kind,
	}

	if _, err := s.repo.Reactions().Create(c.UserContext(), reaction); err != nil {
		return s.handleError(c, goerrors.Wrap(err, goerrors.CategoryInternal, "failed to store reaction"))
	}

	return s.reactionResult(c, payload.PostID, "Reação adicionada.")
}

// reactionResult reports the toggle outcome with the post's current count
func (s *HTTPServer) reactionResult(c *fiber.Ctx, postID uuid.UUID, message string) error {
	count, err := s.repo.Reactions().CountByPost(c.UserContext(), postID)
	if err != nil {
		return s.handleError(c, goerrors.Wrap(err, goerrors.CategoryInternal, "failed to count reactions"))
	}

	return c.JSON(fiber.Map{
		"message":   message,
		"reactions": count,
	})
}

// ListRepliesByPost handles GET /api/replies/post/:postId
func (s *HTTPServer) ListRepliesByPost(c *fiber.Ctx) error {
	postID, err := uuid.Parse(c.Params("postId"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).SendString("invalid post id")
	}

	replies, err := s.repo.Replies().ListByPost(c.UserContext(), postID)
	if err != nil {
		return s.handleError(c, goerrors.Wrap(err, goerrors.CategoryInternal, "failed to list replies"))
	}

	return c.JSON(replies)
}

// CreateReply handles POST /api/replies. A parented reply must stay on the
// same post as its parent, threads never jump posts.
func (s *HTTPServer) CreateReply(c *fiber.Ctx) error {
	claims, ok := s.claims(c)
	if !ok {
		return c.SendStatus(fiber.StatusUnauthorized)
	}

	authorID, err := UserUUIDFromClaims(claims)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).SendString("invalid session subject")
	}

	payload := ReplyPayload{}
	if err := c.BodyParser(&payload); err != nil {
		return c.Status(fiber.StatusBadRequest).SendString("invalid request body")
	}

	if payload.Content == "" || payload.PostID == uuid.Nil {
		return c.Status(fiber.StatusBadRequest).SendString("post_id and content are required")
	}

	if _, err := s.repo.Posts().GetWithRelations(c.UserContext(), payload.PostID); err != nil {
		if repository.IsRecordNotFound(err) || goerrors.IsNotFound(err) {
			return c.SendStatus(fiber.StatusNotFound)
		}
		return s.handleError(c, err)
	}

	if payload.ParentID != nil {
		parent, err := s.repo.Replies().GetByID(c.UserContext(), payload.ParentID.String())
		if err != nil {
			if repository.IsRecordNotFound(err) || goerrors.IsNotFound(err) {
				return c.Status(fiber.StatusBadRequest).SendString("Inconsistência: resposta pai não encontrada.")
			}
			return s.handleError(c, err)
		}

		if parent.PostID != payload.PostID {
			return c.Status(fiber.StatusBadRequest).SendString("Inconsistência: a resposta pai pertence a outro post.")
		}
	}

	reply := &Reply{
		ID:            uuid.New(),
		PostID:        payload.PostID,
		AuthorID:      authorID,
		ParentReplyID: payload.ParentID,
		Content:       payload.Content,
	}

	created, err := s.repo.Replies().Create(c.UserContext(), reply)
	if err != nil {
		return s.handleError(c, goerrors.Wrap(err, goerrors.CategoryInternal, "could not create reply"))
	}

	return c.Status(fiber.StatusCreated).JSON(created)
}

// DeleteReply handles DELETE /api/replies/:id, authors only
func (s *HTTPServer) DeleteReply(c *fiber.Ctx) error {
	claims, ok := s.claims(c)
	if !ok {
		return c.SendStatus(fiber.StatusUnauthorized)
	}

	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).SendString("invalid reply id")
	}

	reply, err := s.repo.Replies().GetByID(c.UserContext(), id.String())
	if err != nil {
		if repository.IsRecordNotFound(err) || goerrors.IsNotFound(err) {
			return c.SendStatus(fiber.StatusNotFound)
		}
		return s.handleError(c, err)
	}

	if reply.AuthorID.String() != claims.UserID() && !claims.HasRole(RoleAdmin) {
		return c.SendStatus(fiber.StatusForbidden)
	}

	if err := s.repo.Replies().SoftDelete(c.UserContext(), id); err != nil {
		return s.handleError(c, goerrors.Wrap(err, goerrors.CategoryInternal, "failed to delete reply"))
	}

	return c.SendStatus(fiber.StatusNoContent)
}
