package handler

import (
	"time"

	"store-subscription-system/internal/model"

	"github.com/gofiber/fiber/v2"
	"golang.org/x/crypto/bcrypt"
)

type LoginInput struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

func (h *Handler) HandleLogin(c *fiber.Ctx) error {
	input := new(LoginInput)
	if err := c.BodyParser(input); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "无效的输入数据",
		})
	}

	var user model.User
	result := h.db.Where("username = ?", input.Username).First(&user)
	if result.Error != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"error": "用户名或密码错误",
		})
	}

	// 验证密码
	err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(input.Password))
	if err != nil {
		loginLog := &model.LoginLog{
			UserID:    user.ID,
			IP:        c.IP(),
			UserAgent: c.Get("User-Agent"),
			Status:    "failed",
			CreatedAt: time.Now(),
		}
		h.db.Create(loginLog)
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"error": "用户名或密码错误",
		})
	}

	// 记录登录日志
	loginLog := &model.LoginLog{
		UserID:    user.ID,
		IP:        c.IP(),
		UserAgent: c.Get("User-Agent"),
		Status:    "success",
		CreatedAt: time.Now(),
	}
	h.db.Create(loginLog)

	user.LastLogin = time.Now()
	h.db.Save(&user)

	token, err := h.tokens.GenerateToken(user.ID)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "令牌生成失败",
		})
	}

	return c.JSON(fiber.Map{
		"token": token,
		"user": fiber.Map{
			"id":         user.ID,
			"username":   user.Username,
			"role":       user.Role,
			"store_id":   user.StoreID,
			"last_login": user.LastLogin,
		},
	})
}

func (h *Handler) HandleValidateToken(c *fiber.Ctx) error {
	type TokenInput struct {
		Token string `json:"token"`
	}

	input := new(TokenInput)
	if err := c.BodyParser(input); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "无效的输入数据",
		})
	}

	if input.Token == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "未提供token",
			"valid": false,
		})
	}

	userID, err := h.tokens.ValidateToken(input.Token)
	if err != nil {
		return c.JSON(fiber.Map{
			"valid": false,
			"error": "无效的token",
		})
	}

	var user model.User
	result := h.db.First(&user, userID)
	if result.Error != nil {
		return c.JSON(fiber.Map{
			"valid": false,
			"error": "用户不存在",
		})
	}

	return c.JSON(fiber.Map{
		"valid": true,
		"user": fiber.Map{
			"id":       userID,
			"username": user.Username,
			"role":     user.Role,
			"store_id": user.StoreID,
		},
	})
}

func (h *Handler) HandleChangePassword(c *fiber.Ctx) error {
	type ChangePasswordInput struct {
		CurrentPassword string `json:"currentPassword"`
		NewPassword     string `json:"newPassword"`
	}

	input := new(ChangePasswordInput)
	if err := c.BodyParser(input); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "无效的输入数据",
		})
	}
	if input.NewPassword == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "新密码不能为空",
		})
	}

	userID := c.Locals("userID").(uint)

	var user model.User
	result := h.db.First(&user, userID)
	if result.Error != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": "用户不存在",
		})
	}

	// 验证当前密码
	err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(input.CurrentPassword))
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"error": "当前密码错误",
		})
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(input.NewPassword), bcrypt.DefaultCost)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "密码加密失败",
		})
	}

	user.Password = string(hashedPassword)
	user.UpdatedAt = time.Now()
	if err := h.db.Save(&user).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "密码更新失败",
		})
	}

	return c.JSON(fiber.Map{
		"message": "密码更新成功",
	})
}
