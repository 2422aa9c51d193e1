package handler

import (
	"strconv"

	"store-subscription-system/internal/apperr"
	"store-subscription-system/internal/service"

	"github.com/gofiber/fiber/v2"
)

// HandleKeyCreate 创建序列号
func (h *Handler) HandleKeyCreate(c *fiber.Ctx) error {
	input := new(service.CreateKeyInput)
	if err := c.BodyParser(input); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "无效的输入数据",
		})
	}

	actorID := c.Locals("userID").(uint)
	key, err := h.keys.Create(*input, actorID)
	if err != nil {
		return apperr.Respond(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"message": "序列号创建成功",
		"key":     key,
	})
}

// HandleKeySearch 分页查询序列号
func (h *Handler) HandleKeySearch(c *fiber.Ctx) error {
	query := new(service.KeySearchQuery)
	if err := c.QueryParser(query); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "无效的查询参数",
		})
	}
	query.Page, query.PageSize = normalizePage(query.Page, query.PageSize)

	keys, total, err := h.keys.Search(*query)
	if err != nil {
		return apperr.Respond(c, err)
	}

	return c.JSON(fiber.Map{
		"keys":  keys,
		"total": total,
		"page":  query.Page,
		"size":  query.PageSize,
	})
}

// HandleKeyListAvailable 可用序列号列表，可按套餐过滤
func (h *Handler) HandleKeyListAvailable(c *fiber.Ctx) error {
	tier := c.Query("package")

	keys, err := h.keys.ListAvailable(tier)
	if err != nil {
		return apperr.Respond(c, err)
	}

	return c.JSON(fiber.Map{
		"keys": keys,
	})
}

func (h *Handler) HandleKeyDelete(c *fiber.Ctx) error {
	keyID, err := strconv.Atoi(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "无效的序列号ID",
		})
	}

	actorID := c.Locals("userID").(uint)
	if err := h.keys.Delete(uint(keyID), actorID); err != nil {
		return apperr.Respond(c, err)
	}

	return c.JSON(fiber.Map{
		"message": "序列号删除成功",
	})
}
