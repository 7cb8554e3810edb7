package handlers

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"linguamentor/backend/internal/repositories"
)

type EvaluationHandler struct {
	evalRepo repositories.EvaluationRepository
}

func NewEvaluationHandler(evalRepo repositories.EvaluationRepository) *EvaluationHandler {
	return &EvaluationHandler{
		evalRepo: evalRepo,
	}
}

// HandleList handles GET /evaluations/, newest first
func (h *EvaluationHandler) HandleList(c *fiber.Ctx) error {
	skip, limit, err := pageParams(c)
	if err != nil {
		return errorResponse(c, err)
	}

	evaluations, err := h.evalRepo.FindAll(c.UserContext(), skip, limit)
	if err != nil {
		return errorResponse(c, err)
	}
	return c.JSON(evaluations)
}

// HandleGet handles GET /evaluations/:id
func (h *EvaluationHandler) HandleGet(c *fiber.Ctx) error {
	evalID, err := primitive.ObjectIDFromHex(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid evaluation ID format",
		})
	}

	evaluation, err := h.evalRepo.FindByID(c.UserContext(), evalID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
				"error": "Evaluation not found",
			})
		}
		return errorResponse(c, err)
	}

	return c.JSON(evaluation)
}
