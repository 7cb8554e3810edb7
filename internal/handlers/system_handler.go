package handlers

import (
	"context"
	"time"

	"github.com/gofiber/fiber/v2"
	"go.mongodb.org/mongo-driver/mongo/readpref"
)

const apiVersion = "1.0.0"

// Pinger is satisfied by *mongo.Client.
type Pinger interface {
	Ping(ctx context.Context, rp *readpref.ReadPref) error
}

type SystemHandler struct {
	db Pinger
}

func NewSystemHandler(db Pinger) *SystemHandler {
	return &SystemHandler{db: db}
}

// HandleRoot handles GET /
func (h *SystemHandler) HandleRoot(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"message": "Welcome to LinguaMentor API",
		"status":  "active",
		"version": apiVersion,
	})
}

// HandleHealth handles GET /health
func (h *SystemHandler) HandleHealth(c *fiber.Ctx) error {
	ctx, cancel := context.WithTimeout(c.UserContext(), 2*time.Second)
	defer cancel()

	database := "MongoDB connected"
	if h.db == nil || h.db.Ping(ctx, readpref.Primary()) != nil {
		database = "MongoDB disconnected"
	}

	return c.JSON(fiber.Map{
		"status":   "healthy",
		"database": database,
	})
}

// HandleInfo handles GET /info
func (h *SystemHandler) HandleInfo(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"name":          "LinguaMentor API",
		"description":   "Intelligent Language Tutor Backend",
		"version":       apiVersion,
		"database":      "MongoDB",
		"message_queue": "RabbitMQ",
		"features": []string{
			"User Management",
			"Voice Analysis",
			"Language Learning",
			"Progress Tracking",
		},
	})
}
