package http

import (
	"github.com/gofiber/fiber/v2"
	"github.com/jhoicas/Almacen-api/internal/application/auth"
	"github.com/jhoicas/Almacen-api/internal/application/inventory"
	"github.com/jhoicas/Almacen-api/internal/application/reporting"
	"github.com/jhoicas/Almacen-api/internal/application/usecase"
)

// RouterDeps dependencias para el router.
type RouterDeps struct {
	WarehouseUC   *usecase.WarehouseUseCase
	ProductUC     *usecase.ProductUseCase
	StockUC       *inventory.StockUseCase
	ApprovalUC    *inventory.ApprovalUseCase
	QueryUC       *inventory.QueryUseCase
	AllocatorUC   *inventory.AllocatorUseCase
	CompensatorUC *inventory.CompensatorUseCase
	ReportingUC   *reporting.ReportingUseCase
	AuthUC        *auth.AuthUseCase
	JWTSecret     string
}

// Router registra las rutas de la API.
func Router(app *fiber.App, deps RouterDeps) {
	api := app.Group("/api")

	// Auth (público)
	authGroup := api.Group("/auth")
	authHandler := NewAuthHandler(deps.AuthUC)
	authGroup.Post("/login", authHandler.Login)

	// Rutas protegidas (requieren Bearer Token)
	protected := api.Group("/", AuthMiddleware(deps.JWTSecret))

	// Warehouses (protegido)
	warehouses := protected.Group("/warehouses")
	warehouseHandler := NewWarehouseHandler(deps.WarehouseUC)
	warehouses.Post("/", warehouseHandler.Create)
	warehouses.Get("/", warehouseHandler.List)
	warehouses.Get("/:id", warehouseHandler.GetByID)
	warehouses.Put("/:id", warehouseHandler.Update)
	warehouses.Delete("/:id", RequireRole("admin"), warehouseHandler.Delete)

	// Products (protegido)
	products := protected.Group("/products")
	productHandler := NewProductHandler(deps.ProductUC)
	products.Post("/", productHandler.Create)
	products.Get("/", productHandler.List)
	products.Get("/:id", productHandler.GetByID)
	products.Put("/:id", productHandler.Update)
	products.Delete("/:id", RequireRole("admin"), productHandler.Delete)

	// Inventory: stock, reservas y ledger de movimientos (protegido)
	invGroup := protected.Group("/inventory")
	inventoryHandler := NewInventoryHandler(deps.StockUC, deps.ApprovalUC, deps.QueryUC)
	invGroup.Post("/receive", inventoryHandler.Receive)
	invGroup.Post("/adjust", inventoryHandler.Adjust)
	invGroup.Post("/transfer", inventoryHandler.Transfer)
	invGroup.Post("/reserve", inventoryHandler.Reserve)
	invGroup.Post("/release", inventoryHandler.Release)
	invGroup.Get("/movements", inventoryHandler.ListMovements)
	// Aprobación restringida: solo admin y bodeguero deciden sobre asientos pending
	invGroup.Post("/movements/:id/approve", RequireRole("admin", "bodeguero"), inventoryHandler.Approve)
	invGroup.Post("/movements/:id/reject", RequireRole("admin", "bodeguero"), inventoryHandler.Reject)
	invGroup.Get("/stock/:productId/:warehouseId", inventoryHandler.GetStock)
	invGroup.Get("/stock/:productId/:warehouseId/history", inventoryHandler.GetStockHistory)

	// Orders: asignación todo-o-nada y compensación (protegido)
	orders := protected.Group("/orders")
	allocationHandler := NewAllocationHandler(deps.AllocatorUC, deps.CompensatorUC)
	orders.Post("/:id/allocate", allocationHandler.Allocate)
	orders.Post("/:id/compensate", allocationHandler.Compensate)

	// Reports (protegido, solo lectura)
	reports := protected.Group("/reports")
	reportHandler := NewReportHandler(deps.ReportingUC)
	reports.Get("/valuation", reportHandler.Valuation)
	reports.Get("/low-stock", reportHandler.LowStock)
	reports.Get("/turnover", reportHandler.Turnover)
}
