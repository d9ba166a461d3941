package api

import (
	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

type uploadResponse struct {
	URL string `json:"url"`
}

// handleUpload stores a multipart file (field name "file") in the blob store
// and returns its public URL. Used for component bundles and preview images.
func (s *Server) handleUpload(c *fiber.Ctx) error {
	profile := s.requireUser(c)
	if profile == nil {
		return nil
	}

	fileHeader, err := c.FormFile("file")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(ErrorResponse{Error: "file field required"})
	}

	f, err := fileHeader.Open()
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(ErrorResponse{Error: "unreadable upload"})
	}
	defer f.Close()

	url, err := s.blobs.Put(c.Context(), fileHeader.Filename, fileHeader.Header.Get(fiber.HeaderContentType), f)
	if err != nil {
		s.logger.Error("storing upload failed",
			zap.String("filename", fileHeader.Filename),
			zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(ErrorResponse{Error: "storing upload failed"})
	}

	return c.Status(fiber.StatusCreated).JSON(uploadResponse{URL: url})
}
