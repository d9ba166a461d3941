package api

import (
	"github.com/gofiber/fiber/v2"

	"github.com/lenshub/lenshub/pkg/market"
	"github.com/lenshub/lenshub/pkg/storage"
)

type profileRequest struct {
	Username  string `json:"username"`
	Email     string `json:"email"`
	Phone     string `json:"phone"`
	AvatarURL string `json:"avatar_url"`
	Bio       string `json:"bio"`
}

// handleListProfiles lists every profile. Admin only.
func (s *Server) handleListProfiles(c *fiber.Ctx) error {
	if admin := s.requireAdmin(c); admin == nil {
		return nil
	}

	profiles, err := s.storer.ListProfiles(c.Context())
	if err != nil {
		return storeError(c, err)
	}
	return c.JSON(profiles)
}

func (s *Server) handleGetProfile(c *fiber.Ctx) error {
	profile, err := s.storer.GetProfile(c.Context(), c.Params("id"))
	if err != nil {
		return storeError(c, err)
	}
	return c.JSON(profile)
}

func (s *Server) handleGetProfileByUsername(c *fiber.Ctx) error {
	profile, err := s.storer.GetProfileByUsername(c.Context(), c.Params("username"))
	if err != nil {
		return storeError(c, err)
	}
	return c.JSON(profile)
}

// handleUpdateProfile edits profile fields. Users edit themselves; admins
// edit anyone. Role changes are not exposed over HTTP.
func (s *Server) handleUpdateProfile(c *fiber.Ctx) error {
	profile := s.requireUser(c)
	if profile == nil {
		return nil
	}

	id := c.Params("id")
	if id != profile.ID && profile.Role != market.RoleAdmin {
		return c.Status(fiber.StatusForbidden).JSON(ErrorResponse{Error: "cannot edit another user's profile"})
	}

	var req profileRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(ErrorResponse{Error: "invalid request body"})
	}

	upd := storage.ProfileUpdate{}
	if req.Username != "" {
		upd.Username = &req.Username
	}
	if req.Email != "" {
		upd.Email = &req.Email
	}
	if req.Phone != "" {
		upd.Phone = &req.Phone
	}
	if req.AvatarURL != "" {
		upd.AvatarURL = &req.AvatarURL
	}
	if req.Bio != "" {
		upd.Bio = &req.Bio
	}

	updated, err := s.storer.UpdateProfile(c.Context(), id, upd)
	if err != nil {
		return storeError(c, err)
	}

	return c.JSON(updated)
}

// handleListUserComponents lists a user's own components across all review
// states. Other users see only the approved ones.
func (s *Server) handleListUserComponents(c *fiber.Ctx) error {
	userID := c.Params("id")

	filter := storage.ComponentFilter{
		AuthorID: userID,
		Status:   string(market.StatusApproved),
		Page:     c.QueryInt("page"),
		PageSize: c.QueryInt("page_size"),
	}

	if profile, err := s.currentProfile(c); err == nil {
		if profile.ID == userID || profile.Role == market.RoleAdmin {
			filter.Status = ""
		}
	}

	components, err := s.storer.ListComponents(c.Context(), filter.Normalize())
	if err != nil {
		return storeError(c, err)
	}

	return c.JSON(components)
}
