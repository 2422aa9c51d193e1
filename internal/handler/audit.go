package handler

import (
	"strconv"

	"store-subscription-system/internal/apperr"

	"github.com/gofiber/fiber/v2"
)

func (h *Handler) HandleGetLogs(c *fiber.Ctx) error {
	page, _ := strconv.Atoi(c.Query("page", "1"))
	pageSize, _ := strconv.Atoi(c.Query("page_size", "10"))
	page, pageSize = normalizePage(page, pageSize)

	logs, total, err := h.audit.List(page, pageSize)
	if err != nil {
		return apperr.Respond(c, err)
	}

	return c.JSON(fiber.Map{
		"logs":  logs,
		"total": total,
		"page":  page,
		"size":  pageSize,
	})
}
