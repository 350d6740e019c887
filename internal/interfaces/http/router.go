package http

import (
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/stock-ledger-api/internal/application/analytics"
	"github.com/jhoicas/stock-ledger-api/internal/application/auth"
	"github.com/jhoicas/stock-ledger-api/internal/application/inventory"
	"github.com/jhoicas/stock-ledger-api/internal/application/usecase"
	"github.com/jhoicas/stock-ledger-api/internal/domain/entity"
)

// RouterDeps dependencias para el router.
type RouterDeps struct {
	AuthUC    *auth.AuthUseCase
	ProductUC *usecase.ProductUseCase
	UserUC    *usecase.UserUseCase
	AuditUC   *usecase.AuditUseCase
	StatsUC   *analytics.StatsUseCase
	Engine    *inventory.LedgerEngine
	Reader    *inventory.LedgerReader
	Auditor   *inventory.LedgerAuditor
	JWTSecret string

	RateLimitMax     int
	AuthRateLimitMax int
	RateLimitWindow  time.Duration
}

// Router registra las rutas de la API.
func Router(app *fiber.App, deps RouterDeps) {
	api := app.Group("/api", RateLimit(deps.RateLimitMax, deps.RateLimitWindow, "demasiadas peticiones, intente más tarde"))
	requireAuth := AuthMiddleware(deps.JWTSecret, deps.AuthUC)

	// Auth (register/login públicos, con límite estricto)
	authHandler := NewAuthHandler(deps.AuthUC)
	authGroup := api.Group("/auth")
	authLimit := RateLimit(deps.AuthRateLimitMax, deps.RateLimitWindow, "demasiados intentos de autenticación, intente más tarde")
	authGroup.Post("/register", authLimit, authHandler.Register)
	authGroup.Post("/login", authLimit, authHandler.Login)
	authGroup.Get("/profile", requireAuth, authHandler.Profile)
	authGroup.Put("/profile", requireAuth, authHandler.UpdateProfile)
	authGroup.Put("/password", requireAuth, authHandler.ChangePassword)

	// Products (protegido); las rutas fijas van antes de /:id
	productHandler := NewProductHandler(deps.ProductUC, deps.Reader)
	products := api.Group("/products", requireAuth)
	products.Post("/", productHandler.Create)
	products.Get("/", productHandler.List)
	products.Get("/search", productHandler.Search)
	products.Get("/low-stock", productHandler.LowStock)
	products.Get("/stats", productHandler.Stats)
	products.Get("/:id", productHandler.GetByID)
	products.Put("/:id", productHandler.Update)
	products.Delete("/:id", productHandler.Delete)

	// Stock (protegido): única vía para cambiar cantidades
	inventoryHandler := NewInventoryHandler(deps.Engine, deps.Reader)
	stock := api.Group("/stock", requireAuth)
	stock.Post("/in", inventoryHandler.StockIn)
	stock.Post("/out", inventoryHandler.StockOut)
	stock.Post("/adjust", inventoryHandler.Adjust)
	stock.Get("/logs", inventoryHandler.Logs)
	stock.Get("/logs/:productId", inventoryHandler.ProductLogs)

	// Admin (rol admin)
	adminHandler := NewAdminHandler(deps.UserUC, deps.ProductUC, deps.AuditUC, deps.StatsUC, deps.Auditor)
	admin := api.Group("/admin", requireAuth, RequireRole(entity.RoleAdmin))
	admin.Get("/users", adminHandler.ListUsers)
	admin.Get("/users/:id", adminHandler.GetUser)
	admin.Put("/users/:id", adminHandler.UpdateUser)
	admin.Delete("/users/:id", adminHandler.DeactivateUser)
	admin.Delete("/delete/users/:id", adminHandler.DeleteUser)
	admin.Get("/stats/global", adminHandler.GlobalStats)
	admin.Get("/audit/logs", adminHandler.AuditLogs)
	admin.Delete("/products/:id", adminHandler.DeactivateProduct)
	admin.Delete("/delete/product/:id", adminHandler.DeleteProduct)
	admin.Get("/ledger/scan", adminHandler.LedgerScan)
	admin.Get("/ledger/:id", adminHandler.LedgerCheck)
	admin.Post("/ledger/:id/repair", adminHandler.LedgerRepair)
}
