package handlers

import (
	"github.com/gofiber/fiber/v2"

	"actuarial-runner-server/middleware"
	"actuarial-runner-server/services"
)

type AccountHandler struct {
	quota *services.QuotaService
}

func NewAccountHandler(quota *services.QuotaService) *AccountHandler {
	return &AccountHandler{quota: quota}
}

// GetUsage godoc
// @Summary Get quota usage
// @Description Get the execution quota state for the calling identity
// @Tags account
// @Produce json
// @Success 200 {object} models.AccountUsage
// @Router /account/usage [get]
func (h *AccountHandler) GetUsage(c *fiber.Ctx) error {
	identity := middleware.Identity(c)

	usage, err := h.quota.Usage(c.Context(), identity)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": err.Error(),
		})
	}

	return c.JSON(usage)
}
