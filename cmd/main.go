package main

import (
	"log"
	"os"
	"os/signal"
	"syscall"

	"store-subscription-system/internal/config"
	"store-subscription-system/internal/database"
	"store-subscription-system/internal/handler"
	"store-subscription-system/internal/middleware"
	"store-subscription-system/internal/service"
	"store-subscription-system/internal/util"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal("读取配置失败:", err)
	}

	db, err := database.Open(cfg.DBPath)
	if err != nil {
		log.Fatal("数据库连接失败:", err)
	}
	if err := database.BootstrapOperator(db, cfg.BootstrapOperator, cfg.BootstrapPassword); err != nil {
		log.Fatal("创建初始管理员失败:", err)
	}

	sheetSync, err := service.NewRevenueSheetSync(cfg.SheetSyncEnabled, cfg.SheetCredentialPath, cfg.SpreadsheetID, cfg.SheetName)
	if err != nil {
		log.Fatal("初始化Google Sheets同步失败:", err)
	}

	tokens := util.NewTokenIssuer(cfg.JWTSecret, cfg.TokenTTL)
	audit := service.NewAuditService(db)
	keyPool := service.NewKeyPoolService(db, audit)
	stores := service.NewStoreService(db, keyPool, audit)
	activation := service.NewActivationService(db, keyPool, audit)
	// 同步关闭时 sheetSync 是 nil 指针，不能直接塞进接口值
	var exporter service.RevenueExporter
	if sheetSync != nil {
		exporter = sheetSync
	}
	payments := service.NewPaymentService(db, audit, cfg.RenewalDays, exporter)

	monitor := service.NewMonitor(db, audit, cfg.MonitorInterval, cfg.HeartbeatTimeout)
	monitor.Start()

	h := handler.New(db, tokens, stores, keyPool, activation, payments, audit)

	app := fiber.New(fiber.Config{
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"error": err.Error(),
			})
		},
	})

	// 中间件
	app.Use(logger.New())
	app.Use(cors.New())

	authRequired := middleware.Auth(tokens, db)

	// 路由组
	api := app.Group("/api/v1")

	// 认证路由
	auth := api.Group("/auth")
	auth.Post("/login", h.HandleLogin)
	auth.Post("/validate-token", h.HandleValidateToken)
	auth.Post("/change-password", authRequired, h.HandleChangePassword)

	// 店铺路由
	storesGroup := api.Group("/stores")
	storesGroup.Post("/register", h.HandleStoreRegister)
	storesGroup.Get("/", authRequired, middleware.OperatorOnly(), h.HandleStoreSearch)
	storesGroup.Get("/:id", authRequired, middleware.StoreOwnerOrOperator(), h.HandleStoreGet)
	storesGroup.Post("/:id/approve", authRequired, middleware.OperatorOnly(), h.HandleStoreApprove)
	storesGroup.Post("/:id/reject", authRequired, middleware.OperatorOnly(), h.HandleStoreReject)
	storesGroup.Post("/:id/activate", authRequired, middleware.OperatorOnly(), h.HandleStoreActivate)
	storesGroup.Put("/:id/status", authRequired, middleware.OperatorOnly(), h.HandleStoreSetStatus)
	storesGroup.Delete("/:id", authRequired, middleware.OperatorOnly(), h.HandleStoreDelete)
	storesGroup.Get("/:id/logs", authRequired, middleware.OperatorOnly(), h.HandleStoreAuditLogs)
	storesGroup.Post("/:id/heartbeat", authRequired, middleware.StoreOwnerOrOperator(), h.HandleStoreHeartbeat)
	storesGroup.Get("/:id/payments", authRequired, middleware.StoreOwnerOrOperator(), h.HandlePaymentListForStore)
	storesGroup.Post("/:id/payments", authRequired, middleware.StoreOwnerOrOperator(), h.HandlePaymentSubmit)

	// 序列号路由，管理员专用
	keys := api.Group("/keys", authRequired, middleware.OperatorOnly())
	keys.Post("/", h.HandleKeyCreate)
	keys.Get("/", h.HandleKeySearch)
	keys.Get("/available", h.HandleKeyListAvailable)
	keys.Delete("/:id", h.HandleKeyDelete)

	// 付款审批路由，管理员专用
	paymentsGroup := api.Group("/payments", authRequired, middleware.OperatorOnly())
	paymentsGroup.Get("/", h.HandlePaymentSearch)
	paymentsGroup.Post("/:id/review", h.HandlePaymentReview)

	// 审计日志与统计
	api.Get("/logs", authRequired, middleware.OperatorOnly(), h.HandleGetLogs)
	api.Get("/statistics", authRequired, middleware.OperatorOnly(), h.HandleStatistics)

	// 优雅退出
	go func() {
		quit := make(chan os.Signal, 1)
		signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
		<-quit
		monitor.Stop()
		_ = app.Shutdown()
	}()

	if err := app.Listen(cfg.ListenAddr); err != nil {
		log.Fatal(err)
	}
}
