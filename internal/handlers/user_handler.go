package handlers

import (
	"github.com/gofiber/fiber/v2"

	"linguamentor/backend/internal/models"
	"linguamentor/backend/internal/services"
)

type UserHandler struct {
	userService services.UserService
}

func NewUserHandler(userService services.UserService) *UserHandler {
	return &UserHandler{
		userService: userService,
	}
}

// HandleCreate handles POST /users/
func (h *UserHandler) HandleCreate(c *fiber.Ctx) error {
	var req models.CreateUserRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request payload",
		})
	}

	user, err := h.userService.Create(c.UserContext(), req)
	if err != nil {
		return errorResponse(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(user.ToResponse())
}

// HandleList handles GET /users/
func (h *UserHandler) HandleList(c *fiber.Ctx) error {
	skip, limit, err := pageParams(c)
	if err != nil {
		return errorResponse(c, err)
	}

	users, err := h.userService.List(c.UserContext(), skip, limit)
	if err != nil {
		return errorResponse(c, err)
	}

	responses := make([]models.UserResponse, 0, len(users))
	for i := range users {
		responses = append(responses, users[i].ToResponse())
	}
	return c.JSON(responses)
}

// HandleGet handles GET /users/:id
func (h *UserHandler) HandleGet(c *fiber.Ctx) error {
	user, err := h.userService.Get(c.UserContext(), c.Params("id"))
	if err != nil {
		return errorResponse(c, err)
	}
	return c.JSON(user.ToResponse())
}

// HandleDelete handles DELETE /users/:id
func (h *UserHandler) HandleDelete(c *fiber.Ctx) error {
	if err := h.userService.Delete(c.UserContext(), c.Params("id")); err != nil {
		return errorResponse(c, err)
	}
	return c.JSON(models.MessageResponse{Message: "User deleted successfully"})
}
