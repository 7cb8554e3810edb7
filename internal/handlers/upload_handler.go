package handlers

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"linguamentor/backend/internal/metrics"
	"linguamentor/backend/internal/models"
	"linguamentor/backend/internal/services"
)

type UploadHandler struct {
	storageService services.StorageService
	publisher      services.Publisher
	voiceQueue     string
	logger         logrus.FieldLogger
}

func NewUploadHandler(
	storageService services.StorageService,
	publisher services.Publisher,
	voiceQueue string,
	logger logrus.FieldLogger,
) *UploadHandler {
	return &UploadHandler{
		storageService: storageService,
		publisher:      publisher,
		voiceQueue:     voiceQueue,
		logger:         logger,
	}
}

// HandleAnalyzeVoice handles POST /analyze_voice. It stores the file, queues
// it for the AI worker and returns without waiting for the analysis.
func (h *UploadHandler) HandleAnalyzeVoice(c *fiber.Ctx) error {
	file, err := c.FormFile("file")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "file is required",
		})
	}

	ctx := c.UserContext()

	key, err := h.storageService.SaveFile(ctx, file)
	if err != nil {
		h.logger.WithError(err).WithField("file", file.Filename).Error("❌ Failed to store upload")
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to store file",
		})
	}

	msg := models.UploadMessage{
		ID:          uuid.NewString(),
		Filename:    file.Filename,
		Size:        file.Size,
		Filepath:    key,
		ContentType: file.Header.Get("Content-Type"),
		UploadedAt:  time.Now().UTC(),
	}

	if err := h.publisher.Publish(ctx, h.voiceQueue, msg); err != nil {
		h.logger.WithError(err).WithField("file", file.Filename).Error("❌ Failed to queue upload")
		// Cleanup stored file if the message never made it to the queue
		if delErr := h.storageService.DeleteFile(ctx, key); delErr != nil {
			h.logger.WithError(delErr).Warn("⚠️  Failed to remove stored file")
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to queue file for analysis",
		})
	}

	metrics.UploadsPublished.Inc()
	h.logger.WithFields(logrus.Fields{
		"upload_id": msg.ID,
		"file":      msg.Filename,
		"size":      msg.Size,
	}).Info("📤 Upload queued")

	return c.Status(fiber.StatusAccepted).JSON(models.QueuedUploadResponse{
		ID:     msg.ID,
		Status: "processing",
		Detail: "File received and queued for analysis",
	})
}
