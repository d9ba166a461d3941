package api

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"github.com/lenshub/lenshub/pkg/market"
	"github.com/lenshub/lenshub/pkg/storage"
)

type announcementRequest struct {
	Title    string                      `json:"title"`
	Content  string                      `json:"content"`
	Priority market.AnnouncementPriority `json:"priority"`
	IsActive *bool                       `json:"is_active"`
}

// handleListAnnouncements returns active announcements. Admins may pass
// ?all=true to include retired ones.
func (s *Server) handleListAnnouncements(c *fiber.Ctx) error {
	activeOnly := true
	if c.QueryBool("all") {
		if admin := s.requireAdmin(c); admin == nil {
			return nil
		}
		activeOnly = false
	}

	announcements, err := s.storer.ListAnnouncements(c.Context(), activeOnly)
	if err != nil {
		return storeError(c, err)
	}
	return c.JSON(announcements)
}

func (s *Server) handleCreateAnnouncement(c *fiber.Ctx) error {
	admin := s.requireAdmin(c)
	if admin == nil {
		return nil
	}

	var req announcementRequest
	if err := c.BodyParser(&req); err != nil || req.Title == "" {
		return c.Status(fiber.StatusBadRequest).JSON(ErrorResponse{Error: "announcement title required"})
	}

	priority := req.Priority
	if priority == "" {
		priority = market.PriorityNormal
	}

	now := time.Now().UTC()
	announcement := &market.Announcement{
		ID:        uuid.NewString(),
		Title:     req.Title,
		Content:   req.Content,
		Priority:  priority,
		IsActive:  true,
		CreatedBy: admin.ID,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if req.IsActive != nil {
		announcement.IsActive = *req.IsActive
	}

	if err := s.storer.CreateAnnouncement(c.Context(), announcement); err != nil {
		return storeError(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(announcement)
}

func (s *Server) handleUpdateAnnouncement(c *fiber.Ctx) error {
	admin := s.requireAdmin(c)
	if admin == nil {
		return nil
	}

	var req announcementRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(ErrorResponse{Error: "invalid request body"})
	}

	upd := storage.AnnouncementUpdate{IsActive: req.IsActive}
	if req.Title != "" {
		upd.Title = &req.Title
	}
	if req.Content != "" {
		upd.Content = &req.Content
	}
	if req.Priority != "" {
		upd.Priority = &req.Priority
	}

	announcement, err := s.storer.UpdateAnnouncement(c.Context(), c.Params("id"), upd)
	if err != nil {
		return storeError(c, err)
	}

	return c.JSON(announcement)
}

func (s *Server) handleDeleteAnnouncement(c *fiber.Ctx) error {
	admin := s.requireAdmin(c)
	if admin == nil {
		return nil
	}

	if err := s.storer.DeleteAnnouncement(c.Context(), c.Params("id")); err != nil {
		return storeError(c, err)
	}

	return c.SendStatus(fiber.StatusNoContent)
}
