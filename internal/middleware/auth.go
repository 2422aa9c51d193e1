package middleware

import (
	"strconv"
	"strings"

	"store-subscription-system/internal/model"
	"store-subscription-system/internal/util"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

// Auth 校验 Bearer 令牌，并把当前用户放入上下文
func Auth(issuer *util.TokenIssuer, db *gorm.DB) fiber.Handler {
	return func(c *fiber.Ctx) error {
		authHeader := c.Get("Authorization")
		if authHeader == "" {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error": "未提供认证令牌",
			})
		}

		// 获取 Bearer token
		tokenParts := strings.Split(authHeader, " ")
		if len(tokenParts) != 2 || tokenParts[0] != "Bearer" {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error": "无效的认证格式",
			})
		}

		userID, err := issuer.ValidateToken(tokenParts[1])
		if err != nil {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error": "无效的认证令牌",
			})
		}

		var user model.User
		if err := db.First(&user, userID).Error; err != nil {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error": "用户不存在",
			})
		}

		c.Locals("userID", user.ID)
		c.Locals("user", &user)
		return c.Next()
	}
}

// OperatorOnly 仅平台管理员可访问
func OperatorOnly() fiber.Handler {
	return func(c *fiber.Ctx) error {
		user, ok := c.Locals("user").(*model.User)
		if !ok || !user.IsOperator() {
			return c.Status(fiber.StatusForbidden).JSON(fiber.Map{
				"error": "需要管理员权限",
			})
		}
		return c.Next()
	}
}

// StoreOwnerOrOperator 店主只能操作自己的店铺，管理员不受限
func StoreOwnerOrOperator() fiber.Handler {
	return func(c *fiber.Ctx) error {
		user, ok := c.Locals("user").(*model.User)
		if !ok {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error": "未认证",
			})
		}
		if user.IsOperator() {
			return c.Next()
		}

		storeID, err := strconv.Atoi(c.Params("id"))
		if err != nil || !user.OwnsStore(uint(storeID)) {
			return c.Status(fiber.StatusForbidden).JSON(fiber.Map{
				"error": "无权访问该店铺",
			})
		}
		return c.Next()
	}
}
