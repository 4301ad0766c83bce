package main

import (
	"errors"
	"strings"

	"restoran-pos/internal/admin"
	"restoran-pos/internal/apperr"
	"restoran-pos/internal/audit"
	"restoran-pos/internal/auth"
	"restoran-pos/internal/catalog"
	"restoran-pos/internal/config"
	"restoran-pos/internal/customer"
	"restoran-pos/internal/database"
	"restoran-pos/internal/due"
	"restoran-pos/internal/logger"
	"restoran-pos/internal/models"
	"restoran-pos/internal/order"
	"restoran-pos/internal/stock"
	"restoran-pos/internal/table"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/rs/zerolog/log"
)

func main() {
	cfg := config.Load()
	logger.Setup(cfg.LogLevel, cfg.LogFormat)
	database.Init(cfg)

	app := fiber.New(fiber.Config{
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			var appErr *apperr.Error
			if errors.As(err, &appErr) {
				return c.Status(appErr.Status).JSON(fiber.Map{
					"error": appErr.Message,
					"code":  appErr.Code,
				})
			}
			if e, ok := err.(*fiber.Error); ok {
				return c.Status(e.Code).JSON(fiber.Map{
					"error": e.Message,
				})
			}
			log.Error().Err(err).Str("path", c.Path()).Msg("Beklenmeyen hata")
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"error": "Beklenmeyen sunucu hatası",
				"code":  apperr.CodeInternal,
			})
		},
	})

	// CORS origins'i virgülle ayrılmış string'den temizle
	corsOrigins := strings.Split(cfg.CORSOrigins, ",")
	for i := range corsOrigins {
		corsOrigins[i] = strings.TrimSpace(corsOrigins[i])
	}
	app.Use(cors.New(cors.Config{
		AllowOrigins: strings.Join(corsOrigins, ","),
		AllowHeaders: "Origin, Content-Type, Accept, Authorization",
		AllowMethods: "GET,POST,PUT,PATCH,DELETE,OPTIONS",
	}))

	api := app.Group("/api")

	// Public auth
	api.Post("/auth/register-super-admin", auth.RegisterSuperAdminHandler(cfg))
	api.Post("/auth/login", auth.LoginHandler(cfg))

	// Protected
	protected := api.Group("")
	protected.Use(auth.JWTMiddleware(cfg))

	protected.Get("/auth/me", auth.MeHandler())

	// Super admin routes
	adminRoutes := protected.Group("/admin")
	adminRoutes.Use(auth.RequireRole(models.RoleSuperAdmin))

	// Şube yönetimi
	adminRoutes.Post("/branches", admin.CreateBranchHandler())
	adminRoutes.Get("/branches", admin.ListBranchesHandler())
	adminRoutes.Post("/branches/:id/admin", admin.CreateBranchAdminHandler())

	// Katalog
	protected.Post("/catalog/products", catalog.CreateProductHandler())
	protected.Get("/catalog/products", catalog.ListProductsHandler())
	protected.Put("/catalog/products/:id", catalog.UpdateProductHandler())
	protected.Delete("/catalog/products/:id", catalog.DeleteProductHandler())
	protected.Post("/catalog/products/bulk-import", catalog.BulkImportProductsHandler())
	protected.Post("/catalog/categories", catalog.CreateCategoryHandler())
	protected.Get("/catalog/categories", catalog.ListCategoriesHandler())
	protected.Delete("/catalog/categories/:id", catalog.DeleteCategoryHandler())

	// Stok defteri
	protected.Post("/inventory/adjustments", stock.CreateAdjustmentHandler())
	protected.Get("/inventory/adjustments", stock.ListAdjustmentsHandler())
	protected.Get("/inventory/low-stock", stock.LowStockHandler())

	// Siparişler
	protected.Post("/orders", order.CreateOrderHandler())
	protected.Get("/orders", order.ListOrdersHandler())
	protected.Get("/orders/:id", order.GetOrderHandler())
	protected.Post("/orders/:id/items", order.AddItemHandler())
	protected.Patch("/orders/:id", order.UpdateOrderHandler())
	protected.Patch("/orders/:id/status", order.UpdateStatusHandler())
	protected.Post("/orders/:id/checkout", order.CheckoutHandler())
	protected.Post("/orders/bulk-import", order.BulkImportSalesHandler())

	// Veresiye defteri
	protected.Post("/due/payments", due.RecordPaymentHandler())
	protected.Get("/due/payments", due.ListPaymentsHandler())
	protected.Get("/due/payments/:id/allocations", due.ListAllocationsHandler())
	protected.Get("/due/customers/:id/summary", due.CustomerDueSummaryHandler())

	// Masalar ve müşteriler
	protected.Post("/tables", table.CreateTableHandler())
	protected.Get("/tables", table.ListTablesHandler())
	protected.Delete("/tables/:id", table.DeleteTableHandler())
	protected.Post("/customers", customer.CreateCustomerHandler())
	protected.Get("/customers", customer.ListCustomersHandler())

	// Audit logs
	protected.Get("/audit-logs", audit.ListAuditLogsHandler())

	log.Info().Str("port", cfg.HTTPPort).Msg("Sunucu başlatılıyor")
	if err := app.Listen(":" + cfg.HTTPPort); err != nil {
		log.Fatal().Err(err).Msg("Sunucu başlatılamadı")
	}
}
