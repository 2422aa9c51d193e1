package handler

import (
	"strconv"

	"store-subscription-system/internal/apperr"
	"store-subscription-system/internal/service"

	"github.com/gofiber/fiber/v2"
)

// HandlePaymentSubmit 店主提交付款凭证
func (h *Handler) HandlePaymentSubmit(c *fiber.Ctx) error {
	storeID, err := strconv.Atoi(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "无效的店铺ID",
		})
	}

	input := new(service.SubmitPaymentInput)
	if err := c.BodyParser(input); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "无效的输入数据",
		})
	}

	actorID := c.Locals("userID").(uint)
	request, err := h.payments.Submit(uint(storeID), *input, actorID)
	if err != nil {
		return apperr.Respond(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"message": "付款申请已提交，等待审核",
		"payment": request,
	})
}

// HandlePaymentListForStore 店铺查看自己的付款记录
func (h *Handler) HandlePaymentListForStore(c *fiber.Ctx) error {
	storeID, err := strconv.Atoi(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "无效的店铺ID",
		})
	}

	query := service.PaymentSearchQuery{StoreID: uint(storeID)}
	query.Status = c.Query("status")
	query.Page, _ = strconv.Atoi(c.Query("page", "1"))
	query.PageSize, _ = strconv.Atoi(c.Query("page_size", "10"))
	query.Page, query.PageSize = normalizePage(query.Page, query.PageSize)

	payments, total, err := h.payments.Search(query)
	if err != nil {
		return apperr.Respond(c, err)
	}

	return c.JSON(fiber.Map{
		"payments": payments,
		"total":    total,
		"page":     query.Page,
		"size":     query.PageSize,
	})
}

// HandlePaymentSearch 管理员查询全部付款申请
func (h *Handler) HandlePaymentSearch(c *fiber.Ctx) error {
	query := new(service.PaymentSearchQuery)
	if err := c.QueryParser(query); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "无效的查询参数",
		})
	}
	query.Page, query.PageSize = normalizePage(query.Page, query.PageSize)

	payments, total, err := h.payments.Search(*query)
	if err != nil {
		return apperr.Respond(c, err)
	}

	return c.JSON(fiber.Map{
		"payments": payments,
		"total":    total,
		"page":     query.Page,
		"size":     query.PageSize,
	})
}

// HandlePaymentReview 审批付款申请；通过即续费
func (h *Handler) HandlePaymentReview(c *fiber.Ctx) error {
	requestID, err := strconv.Atoi(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "无效的申请ID",
		})
	}

	type ReviewInput struct {
		Decision string `json:"decision"` // approved, rejected
		Notes    string `json:"notes"`
	}
	input := new(ReviewInput)
	if err := c.BodyParser(input); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "无效的输入数据",
		})
	}

	actorID := c.Locals("userID").(uint)
	request, err := h.payments.Review(uint(requestID), input.Decision, actorID, input.Notes)
	if err != nil {
		return apperr.Respond(c, err)
	}

	return c.JSON(fiber.Map{
		"message": "审批完成",
		"payment": request,
	})
}
