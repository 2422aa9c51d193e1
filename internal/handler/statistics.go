package handler

import (
	"time"

	"store-subscription-system/internal/model"

	"github.com/gofiber/fiber/v2"
)

// HandleStatistics 运营概览统计
func (h *Handler) HandleStatistics(c *fiber.Ctx) error {
	stats := &model.DashboardStatistics{
		StoresByStatus: make(map[string]int64),
		GeneratedAt:    time.Now(),
	}

	db := h.db

	// 店铺总数
	if err := db.Model(&model.Store{}).Count(&stats.TotalStores).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "获取店铺总数失败",
		})
	}

	// 按状态统计店铺
	var statusCounts []struct {
		Status string
		Count  int64
	}
	if err := db.Model(&model.Store{}).
		Select("status, count(*) as count").
		Group("status").
		Scan(&statusCounts).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "获取店铺状态统计失败",
		})
	}
	for _, sc := range statusCounts {
		stats.StoresByStatus[sc.Status] = sc.Count
	}

	// 在线/离线店铺
	if err := db.Model(&model.Store{}).Where("online = ?", true).Count(&stats.OnlineStores).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "获取在线店铺数失败",
		})
	}
	stats.OfflineStores = stats.TotalStores - stats.OnlineStores

	// 7天内到期的活跃店铺
	sevenDaysLater := time.Now().AddDate(0, 0, 7)
	if err := db.Model(&model.Store{}).
		Where("status = ? AND expiry_date IS NOT NULL AND expiry_date <= ?", model.StoreStatusActive, sevenDaysLater).
		Count(&stats.ExpiringStores).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "获取即将到期店铺数失败",
		})
	}

	// 序列号统计
	if err := db.Model(&model.SerialKey{}).Count(&stats.TotalKeys).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "获取序列号总数失败",
		})
	}
	if err := db.Model(&model.SerialKey{}).Where("status = ?", model.KeyStatusAvailable).Count(&stats.AvailableKeys).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "获取可用序列号数失败",
		})
	}
	if err := db.Model(&model.SerialKey{}).Where("status = ?", model.KeyStatusAssigned).Count(&stats.AssignedKeys).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "获取已分配序列号数失败",
		})
	}

	// 待审核付款
	if err := db.Model(&model.PaymentRequest{}).Where("status = ?", model.PaymentStatusPending).Count(&stats.PendingPayments).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "获取待审核付款数失败",
		})
	}

	// 收入合计
	if err := db.Model(&model.RevenueEntry{}).
		Select("COALESCE(SUM(amount), 0)").Scan(&stats.TotalRevenue).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "获取收入合计失败",
		})
	}

	// 近30天收入
	thirtyDaysAgo := time.Now().AddDate(0, 0, -30)
	if err := db.Model(&model.RevenueEntry{}).
		Where("created_at >= ?", thirtyDaysAgo).
		Select("COALESCE(SUM(amount), 0)").Scan(&stats.MonthlyRevenue).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "获取近30天收入失败",
		})
	}

	// 每日收入曲线（近30天）
	var daily []model.DailyRevenue
	if err := db.Model(&model.RevenueEntry{}).
		Select("DATE(created_at) as date, SUM(amount) as amount, COUNT(*) as count").
		Where("created_at >= ?", thirtyDaysAgo).
		Group("DATE(created_at)").
		Order("date ASC").
		Scan(&daily).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "获取每日收入统计失败",
		})
	}
	stats.DailyRevenue = daily

	return c.JSON(fiber.Map{
		"statistics": stats,
	})
}
