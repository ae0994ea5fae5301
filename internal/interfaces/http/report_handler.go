package http

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/jhoicas/Almacen-api/internal/application/dto"
	"github.com/jhoicas/Almacen-api/internal/application/reporting"
)

// ReportHandler expone los reportes de solo lectura sobre stock y ledger
// (protegido). Ninguna de estas consultas toma bloqueos.
type ReportHandler struct {
	uc *reporting.ReportingUseCase
}

// NewReportHandler construye el handler.
func NewReportHandler(uc *reporting.ReportingUseCase) *ReportHandler {
	return &ReportHandler{uc: uc}
}

// Valuation godoc
// @Summary      Valoración total del inventario
// @Description  Suma cantidad × costo unitario sobre todos los registros de la empresa.
// @Tags         reports
// @Security     Bearer
// @Produce      json
// @Success      200  {object}  dto.ValuationReportDTO
// @Router       /api/reports/valuation [get]
func (h *ReportHandler) Valuation(c *fiber.Ctx) error {
	companyID := GetCompanyID(c)
	if companyID == "" {
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Code: "UNAUTHORIZED", Message: "token inválido"})
	}
	total, err := h.uc.TotalValuation(c.Context(), companyID)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Code: "INTERNAL", Message: err.Error()})
	}
	return c.JSON(dto.ValuationReportDTO{CompanyID: companyID, TotalValue: total, AsOf: time.Now()})
}

// LowStock godoc
// @Summary      Registros por debajo de su cantidad mínima
// @Tags         reports
// @Security     Bearer
// @Produce      json
// @Param        limit   query  int  false  "Límite"   default(100)
// @Param        offset  query  int  false  "Offset"   default(0)
// @Success      200  {array}  dto.LowStockItemDTO
// @Router       /api/reports/low-stock [get]
func (h *ReportHandler) LowStock(c *fiber.Ctx) error {
	companyID := GetCompanyID(c)
	if companyID == "" {
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Code: "UNAUTHORIZED", Message: "token inválido"})
	}
	items, err := h.uc.LowStock(c.Context(), companyID, c.QueryInt("limit", 100), c.QueryInt("offset", 0))
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Code: "INTERNAL", Message: err.Error()})
	}
	return c.JSON(fiber.Map{"total": len(items), "items": items})
}

// Turnover godoc
// @Summary      Rotación de inventario en un período
// @Description  Vendido / promedio en mano del período. El stock al inicio se reconstruye restando el cambio neto del ledger al stock actual.
// @Tags         reports
// @Security     Bearer
// @Produce      json
// @Param        from  query  string  true  "Inicio del período (RFC3339)"
// @Param        to    query  string  true  "Fin del período (RFC3339)"
// @Success      200   {object}  dto.TurnoverReportDTO
// @Failure      400   {object}  dto.ErrorResponse
// @Router       /api/reports/turnover [get]
func (h *ReportHandler) Turnover(c *fiber.Ctx) error {
	companyID := GetCompanyID(c)
	if companyID == "" {
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Code: "UNAUTHORIZED", Message: "token inválido"})
	}
	from, err := time.Parse(time.RFC3339, c.Query("from"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "from debe ser RFC3339"})
	}
	to, err := time.Parse(time.RFC3339, c.Query("to"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "to debe ser RFC3339"})
	}
	if !to.After(from) {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "to debe ser posterior a from"})
	}
	out, err := h.uc.Turnover(c.Context(), companyID, from, to)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Code: "INTERNAL", Message: err.Error()})
	}
	return c.JSON(out)
}
