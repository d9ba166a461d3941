package api

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/lenshub/lenshub/pkg/eventstream"
	"github.com/lenshub/lenshub/pkg/market"
	"github.com/lenshub/lenshub/pkg/storage"
)

type componentRequest struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Category    string `json:"category"`
	Version     string `json:"version"`
	FileURL     string `json:"file_url"`
	ImageURL    string `json:"image_url"`
}

// handleListComponents lists approved components, filtered and paged.
// Admins may pass an explicit status filter to see pending submissions.
func (s *Server) handleListComponents(c *fiber.Ctx) error {
	filter := storage.ComponentFilter{
		Status:   string(market.StatusApproved),
		Category: c.Query("category"),
		Search:   c.Query("search"),
		Page:     c.QueryInt("page"),
		PageSize: c.QueryInt("page_size"),
	}

	if status := c.Query("status"); status != "" {
		if admin := s.requireAdmin(c); admin == nil {
			return nil
		}
		filter.Status = status
	}

	components, err := s.storer.ListComponents(c.Context(), filter.Normalize())
	if err != nil {
		return storeError(c, err)
	}

	return c.JSON(components)
}

func (s *Server) handleGetComponent(c *fiber.Ctx) error {
	component, err := s.storer.GetComponent(c.Context(), c.Params("id"))
	if err != nil {
		return storeError(c, err)
	}
	return c.JSON(component)
}

func (s *Server) handleComponentStats(c *fiber.Ctx) error {
	stats, err := s.storer.ComponentStats(c.Context(), c.Params("id"))
	if err != nil {
		return storeError(c, err)
	}
	return c.JSON(stats)
}

func (s *Server) handleCategories(c *fiber.Ctx) error {
	categories, err := s.storer.Categories(c.Context())
	if err != nil {
		return storeError(c, err)
	}
	if categories == nil {
		categories = []string{}
	}
	return c.JSON(categories)
}

// handleCreateComponent submits a new component. Submissions start pending
// and only show up in public listings once an admin approves them.
func (s *Server) handleCreateComponent(c *fiber.Ctx) error {
	profile := s.requireUser(c)
	if profile == nil {
		return nil
	}

	var req componentRequest
	if err := c.BodyParser(&req); err != nil || req.Name == "" {
		return c.Status(fiber.StatusBadRequest).JSON(ErrorResponse{Error: "component name required"})
	}

	now := time.Now().UTC()
	component := &market.Component{
		ID:          uuid.NewString(),
		Name:        req.Name,
		Description: req.Description,
		Category:    req.Category,
		Version:     req.Version,
		AuthorID:    profile.ID,
		FileURL:     req.FileURL,
		ImageURL:    req.ImageURL,
		Status:      market.StatusPending,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if err := s.storer.CreateComponent(c.Context(), component); err != nil {
		return storeError(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(component)
}

// handleUpdateComponent edits a component. Only the author or an admin may
// edit; edits by the author send the component back to pending review.
func (s *Server) handleUpdateComponent(c *fiber.Ctx) error {
	profile := s.requireUser(c)
	if profile == nil {
		return nil
	}

	id := c.Params("id")
	existing, err := s.storer.GetComponent(c.Context(), id)
	if err != nil {
		return storeError(c, err)
	}

	if existing.AuthorID != profile.ID && profile.Role != market.RoleAdmin {
		return c.Status(fiber.StatusForbidden).JSON(ErrorResponse{Error: "not the component author"})
	}

	var req componentRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(ErrorResponse{Error: "invalid request body"})
	}

	upd := storage.ComponentUpdate{}
	if req.Name != "" {
		upd.Name = &req.Name
	}
	if req.Description != "" {
		upd.Description = &req.Description
	}
	if req.Category != "" {
		upd.Category = &req.Category
	}
	if req.Version != "" {
		upd.Version = &req.Version
	}
	if req.FileURL != "" {
		upd.FileURL = &req.FileURL
	}
	if req.ImageURL != "" {
		upd.ImageURL = &req.ImageURL
	}
	if profile.Role != market.RoleAdmin {
		pending := market.StatusPending
		upd.Status = &pending
	}

	component, err := s.storer.UpdateComponent(c.Context(), id, upd)
	if err != nil {
		return storeError(c, err)
	}

	return c.JSON(component)
}

func (s *Server) handleDeleteComponent(c *fiber.Ctx) error {
	profile := s.requireUser(c)
	if profile == nil {
		return nil
	}

	id := c.Params("id")
	existing, err := s.storer.GetComponent(c.Context(), id)
	if err != nil {
		return storeError(c, err)
	}

	if existing.AuthorID != profile.ID && profile.Role != market.RoleAdmin {
		return c.Status(fiber.StatusForbidden).JSON(ErrorResponse{Error: "not the component author"})
	}

	if err := s.storer.DeleteComponent(c.Context(), id); err != nil {
		return storeError(c, err)
	}

	return c.SendStatus(fiber.StatusNoContent)
}

// handleDownloadComponent bumps the download counter and emits a downloaded
// event. Downloads need no session; the actor is recorded when one exists.
func (s *Server) handleDownloadComponent(c *fiber.Ctx) error {
	id := c.Params("id")

	if err := s.storer.IncrementDownloadCount(c.Context(), id); err != nil {
		return storeError(c, err)
	}

	component, err := s.storer.GetComponent(c.Context(), id)
	if err != nil {
		return storeError(c, err)
	}

	var actorID string
	if profile, err := s.currentProfile(c); err == nil {
		actorID = profile.ID
	}

	event := eventstream.NewComponentDownloaded(&component.Component, actorID)
	if err := s.events.PublishComponent(c.Context(), event); err != nil {
		s.logger.Warn("publishing download event failed",
			zap.String("component_id", id),
			zap.Error(err))
	}

	return c.JSON(fiber.Map{"download_count": component.DownloadCount})
}

type reviewRequest struct {
	Status market.ComponentStatus `json:"status"`
}

// handleReviewComponent moves a submission through review. Approval makes
// the component public and emits a published event.
func (s *Server) handleReviewComponent(c *fiber.Ctx) error {
	admin := s.requireAdmin(c)
	if admin == nil {
		return nil
	}

	var req reviewRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(ErrorResponse{Error: "invalid request body"})
	}
	switch req.Status {
	case market.StatusApproved, market.StatusRejected, market.StatusPending:
	default:
		return c.Status(fiber.StatusBadRequest).JSON(ErrorResponse{Error: "invalid status"})
	}

	id := c.Params("id")
	component, err := s.storer.UpdateComponent(c.Context(), id, storage.ComponentUpdate{Status: &req.Status})
	if err != nil {
		return storeError(c, err)
	}

	if req.Status == market.StatusApproved {
		event := eventstream.NewComponentPublished(component, admin.ID)
		if err := s.events.PublishComponent(c.Context(), event); err != nil {
			s.logger.Warn("publishing approval event failed",
				zap.String("component_id", id),
				zap.Error(err))
		}
	}

	return c.JSON(component)
}
