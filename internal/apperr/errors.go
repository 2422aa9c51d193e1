package apperr

import (
	"errors"
	"fmt"

	"github.com/gofiber/fiber/v2"
)

// Kind 错误类别
type Kind string

const (
	KindValidation    Kind = "validation"
	KindConflict      Kind = "conflict"
	KindNotFound      Kind = "not_found"
	KindInvalidState  Kind = "invalid_state"
	KindAuthorization Kind = "authorization"
	KindPersistence   Kind = "persistence"
)

type Error struct {
	Kind    Kind
	Message string
	State   string // invalid_state 时携带当前状态，方便前端对账
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Err
}

func Validation(message string) *Error {
	return &Error{Kind: KindValidation, Message: message}
}

func Conflict(message string) *Error {
	return &Error{Kind: KindConflict, Message: message}
}

func NotFound(message string) *Error {
	return &Error{Kind: KindNotFound, Message: message}
}

func InvalidState(message, current string) *Error {
	return &Error{Kind: KindInvalidState, Message: message, State: current}
}

func Authorization(message string) *Error {
	return &Error{Kind: KindAuthorization, Message: message}
}

func Persistence(err error) *Error {
	return &Error{Kind: KindPersistence, Message: "存储操作失败", Err: err}
}

// IsKind 判断错误是否属于指定类别
func IsKind(err error, kind Kind) bool {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind == kind
	}
	return false
}

// HTTPStatus 错误类别到HTTP状态码的映射
func HTTPStatus(err error) int {
	var e *Error
	if !errors.As(err, &e) {
		return fiber.StatusInternalServerError
	}
	switch e.Kind {
	case KindValidation:
		return fiber.StatusBadRequest
	case KindConflict:
		return fiber.StatusConflict
	case KindNotFound:
		return fiber.StatusNotFound
	case KindInvalidState:
		return fiber.StatusConflict
	case KindAuthorization:
		return fiber.StatusForbidden
	default:
		return fiber.StatusInternalServerError
	}
}

// Respond 把业务错误写成统一的JSON响应
func Respond(c *fiber.Ctx, err error) error {
	var e *Error
	if !errors.As(err, &e) {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "内部错误",
		})
	}
	body := fiber.Map{"error": e.Message}
	if e.Kind == KindInvalidState && e.State != "" {
		body["current_state"] = e.State
	}
	if e.Kind == KindPersistence {
		// 不向调用方暴露底层存储细节
		body["error"] = "存储操作失败，请稍后重试"
	}
	return c.Status(HTTPStatus(err)).JSON(body)
}
