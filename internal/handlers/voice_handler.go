package handlers

import (
	"path/filepath"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"

	"linguamentor/backend/internal/models"
	"linguamentor/backend/internal/services"
)

type VoiceHandler struct {
	analyzer *services.VoiceAnalyzer
	logger   logrus.FieldLogger
}

func NewVoiceHandler(analyzer *services.VoiceAnalyzer, logger logrus.FieldLogger) *VoiceHandler {
	return &VoiceHandler{
		analyzer: analyzer,
		logger:   logger,
	}
}

// HandleAnalyzeVoice handles POST /voice/analyze-voice
func (h *VoiceHandler) HandleAnalyzeVoice(c *fiber.Ctx) error {
	file, err := c.FormFile("file")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "file is required",
		})
	}

	if strings.ToLower(filepath.Ext(file.Filename)) != ".wav" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "File must be a .wav",
		})
	}

	src, err := file.Open()
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "failed to read uploaded file",
		})
	}
	defer src.Close()

	ctx := c.UserContext()

	transcription, err := h.analyzer.Transcribe(ctx, file.Filename, src)
	if err != nil {
		h.logger.WithError(err).Error("❌ Transcription failed")
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": err.Error(),
		})
	}

	feedback, err := h.analyzer.QuickFeedback(ctx, transcription)
	if err != nil {
		h.logger.WithError(err).Error("❌ Feedback generation failed")
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": err.Error(),
		})
	}

	return c.JSON(models.VoiceFeedbackResponse{
		Transcription: transcription,
		Feedback:      feedback,
	})
}
