package api

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"github.com/lenshub/lenshub/pkg/market"
)

func (s *Server) handleListFavorites(c *fiber.Ctx) error {
	profile := s.requireUser(c)
	if profile == nil {
		return nil
	}

	userID := c.Params("id")
	if userID != profile.ID && profile.Role != market.RoleAdmin {
		return c.Status(fiber.StatusForbidden).JSON(ErrorResponse{Error: "cannot read another user's favorites"})
	}

	favorites, err := s.storer.ListFavorites(c.Context(), userID)
	if err != nil {
		return storeError(c, err)
	}
	return c.JSON(favorites)
}

func (s *Server) handleIsFavorite(c *fiber.Ctx) error {
	profile := s.requireUser(c)
	if profile == nil {
		return nil
	}

	favorite, err := s.storer.IsFavorite(c.Context(), profile.ID, c.Params("id"))
	if err != nil {
		return storeError(c, err)
	}
	return c.JSON(fiber.Map{"favorite": favorite})
}

// handleAddFavorite favorites a component for the session's user.
// Re-favoriting is a no-op rather than an error.
func (s *Server) handleAddFavorite(c *fiber.Ctx) error {
	profile := s.requireUser(c)
	if profile == nil {
		return nil
	}

	componentID := c.Params("id")
	if _, err := s.storer.GetComponent(c.Context(), componentID); err != nil {
		return storeError(c, err)
	}

	favorite := &market.Favorite{
		ID:          uuid.NewString(),
		ComponentID: componentID,
		UserID:      profile.ID,
		CreatedAt:   time.Now().UTC(),
	}
	if err := s.storer.AddFavorite(c.Context(), favorite); err != nil {
		return storeError(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(favorite)
}

func (s *Server) handleRemoveFavorite(c *fiber.Ctx) error {
	profile := s.requireUser(c)
	if profile == nil {
		return nil
	}

	if err := s.storer.RemoveFavorite(c.Context(), profile.ID, c.Params("id")); err != nil {
		return storeError(c, err)
	}

	return c.SendStatus(fiber.StatusNoContent)
}
