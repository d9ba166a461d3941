package api

import (
	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/lenshub/lenshub/pkg/ai"
	"github.com/lenshub/lenshub/pkg/ai/stream"
	"github.com/lenshub/lenshub/pkg/utils"
)

type chatRequest struct {
	Messages []ai.Message `json:"messages"`
}

type chatResponse struct {
	Content string    `json:"content"`
	Usage   *ai.Usage `json:"usage,omitempty"`
}

// handleSparkChat runs a chat completion and returns the fully aggregated
// text. The provider streams internally; the HTTP response is a single JSON
// payload once the stream finishes.
func (s *Server) handleSparkChat(c *fiber.Ctx) error {
	var req chatRequest
	if err := c.BodyParser(&req); err != nil || len(req.Messages) == 0 {
		return c.Status(fiber.StatusBadRequest).JSON(ErrorResponse{Error: "Invalid messages"})
	}

	result, err := s.ai.Chat(c.Context(), req.Messages, stream.Callbacks{})
	if err != nil {
		s.logger.Error("chat failed", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(ErrorResponse{Error: err.Error()})
	}

	return c.JSON(chatResponse{Content: result.Content, Usage: result.Usage})
}

type translateRequest struct {
	Text   string `json:"text"`
	Source string `json:"source"`
	Target string `json:"target"`
}

type translateResponse struct {
	TranslatedText string `json:"translatedText"`
	Source         string `json:"source"`
	Target         string `json:"target"`
}

// handleTranslate translates text. Vendor failures surface as 500 — there is
// no fallback for translation.
func (s *Server) handleTranslate(c *fiber.Ctx) error {
	var req translateRequest
	if err := c.BodyParser(&req); err != nil || req.Text == "" {
		return c.Status(fiber.StatusBadRequest).JSON(ErrorResponse{Error: "请提供要翻译的文本"})
	}

	result, err := s.ai.Translate(c.Context(), req.Text, req.Source, req.Target)
	if err != nil {
		s.logger.Error("translation failed", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(ErrorResponse{Error: translateFailureMessage(err)})
	}

	return c.JSON(translateResponse{
		TranslatedText: result.TranslatedText,
		Source:         result.Source,
		Target:         result.Target,
	})
}

// translateFailureMessage carries the upstream error text to the client,
// falling back to a generic message when there is none.
func translateFailureMessage(err error) string {
	if err == nil || err.Error() == "" {
		return "翻译失败"
	}
	return err.Error()
}

type generateImageRequest struct {
	Prompt string `json:"prompt"`
}

type generateImageResponse struct {
	ImageURL string `json:"imageUrl"`
	Message  string `json:"message"`
}

// handleGenerateImage synthesizes an image. It always answers 200: failures
// degrade to a placeholder URL with a message naming the degradation.
func (s *Server) handleGenerateImage(c *fiber.Ctx) error {
	var req generateImageRequest
	if err := c.BodyParser(&req); err != nil || req.Prompt == "" {
		return c.Status(fiber.StatusBadRequest).JSON(ErrorResponse{Error: "请提供图片描述"})
	}

	result := s.ai.GenerateImage(c.Context(), req.Prompt)

	s.logger.Debug("image generated",
		zap.String("prompt", utils.Truncate(req.Prompt, 64)),
		zap.Bool("degraded", result.Degraded))

	return c.JSON(generateImageResponse{
		ImageURL: result.ImageURL,
		Message:  result.Message,
	})
}
