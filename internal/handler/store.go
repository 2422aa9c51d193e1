package handler

import (
	"strconv"

	"store-subscription-system/internal/apperr"
	"store-subscription-system/internal/service"

	"github.com/gofiber/fiber/v2"
)

// HandleStoreRegister 店铺注册，公开接口
func (h *Handler) HandleStoreRegister(c *fiber.Ctx) error {
	input := new(service.RegisterInput)
	if err := c.BodyParser(input); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "无效的输入数据",
		})
	}

	store, err := h.stores.Register(*input)
	if err != nil {
		return apperr.Respond(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"message": "注册成功，等待审核",
		"store":   store,
	})
}

// HandleStoreSearch 管理员分页查询店铺
func (h *Handler) HandleStoreSearch(c *fiber.Ctx) error {
	query := new(service.StoreSearchQuery)
	if err := c.QueryParser(query); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "无效的查询参数",
		})
	}
	query.Page, query.PageSize = normalizePage(query.Page, query.PageSize)

	stores, total, err := h.stores.Search(*query)
	if err != nil {
		return apperr.Respond(c, err)
	}

	return c.JSON(fiber.Map{
		"stores": stores,
		"total":  total,
		"page":   query.Page,
		"size":   query.PageSize,
	})
}

func (h *Handler) HandleStoreGet(c *fiber.Ctx) error {
	storeID, err := strconv.Atoi(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "无效的店铺ID",
		})
	}

	store, err := h.stores.Get(uint(storeID))
	if err != nil {
		return apperr.Respond(c, err)
	}
	return c.JSON(store)
}

func (h *Handler) HandleStoreApprove(c *fiber.Ctx) error {
	storeID, err := strconv.Atoi(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "无效的店铺ID",
		})
	}
	actorID := c.Locals("userID").(uint)

	store, err := h.stores.Approve(uint(storeID), actorID)
	if err != nil {
		return apperr.Respond(c, err)
	}

	return c.JSON(fiber.Map{
		"message": "审批通过",
		"store":   store,
	})
}

func (h *Handler) HandleStoreReject(c *fiber.Ctx) error {
	storeID, err := strconv.Atoi(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "无效的店铺ID",
		})
	}

	type RejectInput struct {
		Reason string `json:"reason"`
	}
	input := new(RejectInput)
	if err := c.BodyParser(input); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "无效的输入数据",
		})
	}

	actorID := c.Locals("userID").(uint)
	store, err := h.stores.Reject(uint(storeID), actorID, input.Reason)
	if err != nil {
		return apperr.Respond(c, err)
	}

	return c.JSON(fiber.Map{
		"message": "已拒绝",
		"store":   store,
	})
}

// HandleStoreActivate 激活：绑定序列号并促成 active
func (h *Handler) HandleStoreActivate(c *fiber.Ctx) error {
	storeID, err := strconv.Atoi(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "无效的店铺ID",
		})
	}

	type ActivateInput struct {
		KeyID uint `json:"key_id"`
	}
	input := new(ActivateInput)
	if err := c.BodyParser(input); err != nil || input.KeyID == 0 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "无效的输入数据",
		})
	}

	actorID := c.Locals("userID").(uint)
	store, err := h.activation.Activate(uint(storeID), input.KeyID, actorID)
	if err != nil {
		return apperr.Respond(c, err)
	}

	return c.JSON(fiber.Map{
		"message": "激活成功",
		"store":   store,
	})
}

func (h *Handler) HandleStoreSetStatus(c *fiber.Ctx) error {
	storeID, err := strconv.Atoi(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "无效的店铺ID",
		})
	}

	type StatusInput struct {
		Status string `json:"status"`
		Reason string `json:"reason"`
	}
	input := new(StatusInput)
	if err := c.BodyParser(input); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "无效的输入数据",
		})
	}

	actorID := c.Locals("userID").(uint)
	store, err := h.stores.SetStatus(uint(storeID), input.Status, actorID, input.Reason)
	if err != nil {
		return apperr.Respond(c, err)
	}

	return c.JSON(fiber.Map{
		"message": "状态更新成功",
		"store":   store,
	})
}

// HandleStoreHeartbeat 店铺会话心跳
func (h *Handler) HandleStoreHeartbeat(c *fiber.Ctx) error {
	storeID, err := strconv.Atoi(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "无效的店铺ID",
		})
	}

	if err := h.stores.Heartbeat(uint(storeID)); err != nil {
		return apperr.Respond(c, err)
	}
	return c.JSON(fiber.Map{
		"message": "ok",
	})
}

func (h *Handler) HandleStoreDelete(c *fiber.Ctx) error {
	storeID, err := strconv.Atoi(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "无效的店铺ID",
		})
	}

	actorID := c.Locals("userID").(uint)
	if err := h.stores.Delete(uint(storeID), actorID); err != nil {
		return apperr.Respond(c, err)
	}

	return c.JSON(fiber.Map{
		"message": "店铺删除成功",
	})
}

// HandleStoreAuditLogs 查看某店铺的审计日志
func (h *Handler) HandleStoreAuditLogs(c *fiber.Ctx) error {
	storeID := c.Params("id")
	page, _ := strconv.Atoi(c.Query("page", "1"))
	pageSize, _ := strconv.Atoi(c.Query("page_size", "10"))
	page, pageSize = normalizePage(page, pageSize)

	logs, total, err := h.audit.ListForTarget("store", storeID, page, pageSize)
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
