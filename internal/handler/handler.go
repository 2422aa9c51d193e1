package handler

import (
	"store-subscription-system/internal/service"
	"store-subscription-system/internal/util"

	"gorm.io/gorm"
)

// Handler 持有全部服务依赖，路由方法挂在它上面
type Handler struct {
	db         *gorm.DB
	tokens     *util.TokenIssuer
	stores     *service.StoreService
	keys       *service.KeyPoolService
	activation *service.ActivationService
	payments   *service.PaymentService
	audit      *service.AuditService
}

func New(
	db *gorm.DB,
	tokens *util.TokenIssuer,
	stores *service.StoreService,
	keys *service.KeyPoolService,
	activation *service.ActivationService,
	payments *service.PaymentService,
	audit *service.AuditService,
) *Handler {
	return &Handler{
		db:         db,
		tokens:     tokens,
		stores:     stores,
		keys:       keys,
		activation: activation,
		payments:   payments,
		audit:      audit,
	}
}

// 分页参数默认值与上限
func normalizePage(page, pageSize int) (int, int) {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 {
		pageSize = 10
	}
	if pageSize > 100 {
		pageSize = 100
	}
	return page, pageSize
}
