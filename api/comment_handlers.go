package api

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"github.com/lenshub/lenshub/pkg/market"
	"github.com/lenshub/lenshub/pkg/storage"
)

type commentRequest struct {
	Content string `json:"content"`
	Rating  int    `json:"rating"`
}

func (s *Server) handleListComments(c *fiber.Ctx) error {
	comments, err := s.storer.ListComments(c.Context(), c.Params("id"))
	if err != nil {
		return storeError(c, err)
	}
	return c.JSON(comments)
}

func (s *Server) handleCreateComment(c *fiber.Ctx) error {
	profile := s.requireUser(c)
	if profile == nil {
		return nil
	}

	var req commentRequest
	if err := c.BodyParser(&req); err != nil || req.Content == "" {
		return c.Status(fiber.StatusBadRequest).JSON(ErrorResponse{Error: "comment content required"})
	}
	if req.Rating < 0 || req.Rating > 5 {
		return c.Status(fiber.StatusBadRequest).JSON(ErrorResponse{Error: "rating must be between 1 and 5, or 0 for no rating"})
	}

	componentID := c.Params("id")
	if _, err := s.storer.GetComponent(c.Context(), componentID); err != nil {
		return storeError(c, err)
	}

	comment := &market.Comment{
		ID:          uuid.NewString(),
		ComponentID: componentID,
		UserID:      profile.ID,
		Content:     req.Content,
		Rating:      req.Rating,
		CreatedAt:   time.Now().UTC(),
	}
	if err := s.storer.CreateComment(c.Context(), comment); err != nil {
		return storeError(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(comment)
}

// handleUpdateComment edits a comment's content or rating. Allowed for the
// comment's author and for admins.
func (s *Server) handleUpdateComment(c *fiber.Ctx) error {
	profile := s.requireUser(c)
	if profile == nil {
		return nil
	}

	var req commentRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(ErrorResponse{Error: "invalid request body"})
	}
	if req.Rating < 0 || req.Rating > 5 {
		return c.Status(fiber.StatusBadRequest).JSON(ErrorResponse{Error: "rating must be between 1 and 5, or 0 for no rating"})
	}

	id := c.Params("id")
	comment, err := s.storer.GetComment(c.Context(), id)
	if err != nil {
		return storeError(c, err)
	}

	if comment.UserID != profile.ID && profile.Role != market.RoleAdmin {
		return c.Status(fiber.StatusForbidden).JSON(ErrorResponse{Error: "not the comment author"})
	}

	upd := storage.CommentUpdate{}
	if req.Content != "" {
		upd.Content = &req.Content
	}
	if req.Rating != 0 {
		upd.Rating = &req.Rating
	}

	updated, err := s.storer.UpdateComment(c.Context(), id, upd)
	if err != nil {
		return storeError(c, err)
	}

	return c.JSON(updated)
}

// handleDeleteComment removes a comment. Allowed for the comment's author
// and for admins.
func (s *Server) handleDeleteComment(c *fiber.Ctx) error {
	profile := s.requireUser(c)
	if profile == nil {
		return nil
	}

	id := c.Params("id")
	comment, err := s.storer.GetComment(c.Context(), id)
	if err != nil {
		return storeError(c, err)
	}

	if comment.UserID != profile.ID && profile.Role != market.RoleAdmin {
		return c.Status(fiber.StatusForbidden).JSON(ErrorResponse{Error: "not the comment author"})
	}

	if err := s.storer.DeleteComment(c.Context(), id); err != nil {
		return storeError(c, err)
	}

	return c.SendStatus(fiber.StatusNoContent)
}
