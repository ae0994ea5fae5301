package http

import (
	"context"
	"errors"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/jhoicas/Almacen-api/internal/application/dto"
	"github.com/jhoicas/Almacen-api/internal/application/inventory"
	"github.com/jhoicas/Almacen-api/internal/domain"
	"github.com/jhoicas/Almacen-api/internal/domain/entity"
	"github.com/jhoicas/Almacen-api/internal/domain/repository"
	"github.com/shopspring/decimal"
)

// InventoryHandler maneja las peticiones HTTP de stock y del ledger de
// movimientos (protegido).
type InventoryHandler struct {
	stock    *inventory.StockUseCase
	approval *inventory.ApprovalUseCase
	query    *inventory.QueryUseCase
}

// NewInventoryHandler construye el handler.
func NewInventoryHandler(stock *inventory.StockUseCase, approval *inventory.ApprovalUseCase, query *inventory.QueryUseCase) *InventoryHandler {
	return &InventoryHandler{stock: stock, approval: approval, query: query}
}

// Receive godoc
// @Summary      Registrar entrada de mercancía
// @Description  Suma stock en la bodega, recalcula el costo promedio ponderado y deja un asiento inbound en el ledger.
// @Tags         inventory
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.ReceiveStockRequest  true  "product_id, warehouse_id, quantity, unit_cost"
// @Success      201   {object}  dto.StockRecordResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Router       /api/inventory/receive [post]
func (h *InventoryHandler) Receive(c *fiber.Ctx) error {
	companyID, userID := GetCompanyID(c), GetUserID(c)
	if companyID == "" || userID == "" {
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Code: "UNAUTHORIZED", Message: "token inválido"})
	}
	var in dto.ReceiveStockRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	record, err := h.stock.Receive(c.Context(), inventory.ReceiveInput{
		CompanyID:   companyID,
		UserID:      userID,
		ProductID:   in.ProductID,
		WarehouseID: in.WarehouseID,
		Quantity:    in.Quantity,
		UnitCost:    in.UnitCost,
		Reason:      in.Reason,
		ReferenceID: in.ReferenceID,
		BatchNumber: in.BatchNumber,
		LotNumber:   in.LotNumber,
		ExpiryDate:  in.ExpiryDate,
	})
	if err != nil {
		return mapInventoryError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(toStockRecordResponse(record))
}

// Adjust godoc
// @Summary      Ajustar cantidad de un registro de stock
// @Description  new_quantity fija la cantidad absoluta; delta aplica un cambio relativo (exactamente uno). Los ajustes grandes quedan pending hasta aprobación.
// @Tags         inventory
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.AdjustStockRequest  true  "product_id, warehouse_id, new_quantity | delta, reason"
// @Success      200   {object}  dto.AdjustStockResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Router       /api/inventory/adjust [post]
func (h *InventoryHandler) Adjust(c *fiber.Ctx) error {
	companyID, userID := GetCompanyID(c), GetUserID(c)
	if companyID == "" || userID == "" {
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Code: "UNAUTHORIZED", Message: "token inválido"})
	}
	var in dto.AdjustStockRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	if (in.NewQuantity == nil) == (in.Delta == nil) {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "se requiere exactamente uno de new_quantity o delta"})
	}
	var result *inventory.AdjustmentResult
	var err error
	if in.NewQuantity != nil {
		result, err = h.stock.AdjustQuantity(c.Context(), companyID, userID, in.ProductID, in.WarehouseID, *in.NewQuantity, in.Reason)
	} else {
		result, err = h.stock.AdjustDelta(c.Context(), companyID, userID, in.ProductID, in.WarehouseID, *in.Delta, in.Reason)
	}
	if err != nil {
		return mapInventoryError(c, err)
	}
	return c.JSON(dto.AdjustStockResponse{
		OldQuantity: result.OldQuantity,
		NewQuantity: result.NewQuantity,
		Delta:       result.Delta,
		Reason:      result.Reason,
		Clamped:     result.Clamped,
		Pending:     result.Pending,
		MovementID:  result.MovementID,
	})
}

// Transfer godoc
// @Summary      Trasladar stock entre bodegas
// @Tags         inventory
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.TransferStockRequest  true  "product_id, from_warehouse_id, to_warehouse_id, quantity"
// @Success      200   {object}  map[string]string
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/inventory/transfer [post]
func (h *InventoryHandler) Transfer(c *fiber.Ctx) error {
	companyID, userID := GetCompanyID(c), GetUserID(c)
	if companyID == "" || userID == "" {
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Code: "UNAUTHORIZED", Message: "token inválido"})
	}
	var in dto.TransferStockRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	err := h.stock.Transfer(c.Context(), inventory.TransferInput{
		CompanyID:       companyID,
		UserID:          userID,
		ProductID:       in.ProductID,
		FromWarehouseID: in.FromWarehouseID,
		ToWarehouseID:   in.ToWarehouseID,
		Quantity:        in.Quantity,
		ReferenceID:     in.ReferenceID,
	})
	if err != nil {
		return mapInventoryError(c, err)
	}
	return c.JSON(fiber.Map{"message": "traslado registrado"})
}

// Reserve godoc
// @Summary      Reservar cantidad disponible
// @Description  Aparta cantidad disponible sin moverla físicamente. No genera asiento en el ledger.
// @Tags         inventory
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.ReservationRequest  true  "product_id, warehouse_id, quantity"
// @Success      200   {object}  dto.StockRecordResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/inventory/reserve [post]
func (h *InventoryHandler) Reserve(c *fiber.Ctx) error {
	return h.reservation(c, h.stock.Reserve)
}

// Release godoc
// @Summary      Liberar cantidad reservada
// @Tags         inventory
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.ReservationRequest  true  "product_id, warehouse_id, quantity"
// @Success      200   {object}  dto.StockRecordResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/inventory/release [post]
func (h *InventoryHandler) Release(c *fiber.Ctx) error {
	return h.reservation(c, h.stock.ReleaseReservation)
}

func (h *InventoryHandler) reservation(c *fiber.Ctx, op func(ctx context.Context, companyID, productID, warehouseID string, qty decimal.Decimal) (*entity.StockRecord, error)) error {
	companyID := GetCompanyID(c)
	if companyID == "" {
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Code: "UNAUTHORIZED", Message: "token inválido"})
	}
	var in dto.ReservationRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	record, err := op(c.Context(), companyID, in.ProductID, in.WarehouseID, in.Quantity)
	if err != nil {
		return mapInventoryError(c, err)
	}
	return c.JSON(toStockRecordResponse(record))
}

// Approve godoc
// @Summary      Aprobar un movimiento pending
// @Description  Aplica el cambio diferido sobre el stock y marca el asiento completed.
// @Tags         inventory
// @Security     Bearer
// @Produce      json
// @Param        id   path  string  true  "ID del movimiento"
// @Success      200  {object}  dto.MovementResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Failure      409  {object}  dto.ErrorResponse
// @Router       /api/inventory/movements/{id}/approve [post]
func (h *InventoryHandler) Approve(c *fiber.Ctx) error {
	companyID, userID := GetCompanyID(c), GetUserID(c)
	if companyID == "" || userID == "" {
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Code: "UNAUTHORIZED", Message: "token inválido"})
	}
	mov, err := h.approval.ApproveMovement(c.Context(), companyID, userID, c.Params("id"))
	if err != nil {
		return mapInventoryError(c, err)
	}
	return c.JSON(toMovementResponse(mov))
}

// Reject godoc
// @Summary      Rechazar un movimiento pending
// @Description  Marca el asiento cancelled sin tocar el stock.
// @Tags         inventory
// @Security     Bearer
// @Produce      json
// @Param        id   path  string  true  "ID del movimiento"
// @Success      200  {object}  dto.MovementResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Failure      409  {object}  dto.ErrorResponse
// @Router       /api/inventory/movements/{id}/reject [post]
func (h *InventoryHandler) Reject(c *fiber.Ctx) error {
	companyID, userID := GetCompanyID(c), GetUserID(c)
	if companyID == "" || userID == "" {
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Code: "UNAUTHORIZED", Message: "token inválido"})
	}
	mov, err := h.approval.RejectMovement(c.Context(), companyID, userID, c.Params("id"))
	if err != nil {
		return mapInventoryError(c, err)
	}
	return c.JSON(toMovementResponse(mov))
}

// ListMovements godoc
// @Summary      Consultar el ledger de movimientos
// @Tags         inventory
// @Security     Bearer
// @Produce      json
// @Param        product_id    query  string  false  "Filtrar por producto"
// @Param        warehouse_id  query  string  false  "Filtrar por bodega (origen o destino)"
// @Param        type          query  string  false  "Filtrar por tipo de movimiento"
// @Param        status        query  string  false  "Filtrar por estado"
// @Param        from          query  string  false  "Desde (RFC3339)"
// @Param        to            query  string  false  "Hasta (RFC3339)"
// @Param        newest_first  query  bool    false  "Más recientes primero"
// @Param        limit         query  int     false  "Límite"  default(50)
// @Param        offset        query  int     false  "Offset"  default(0)
// @Success      200  {array}  dto.MovementResponse
// @Router       /api/inventory/movements [get]
func (h *InventoryHandler) ListMovements(c *fiber.Ctx) error {
	companyID := GetCompanyID(c)
	if companyID == "" {
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Code: "UNAUTHORIZED", Message: "token inválido"})
	}
	filter := repository.MovementFilter{
		CompanyID:   companyID,
		ProductID:   c.Query("product_id"),
		WarehouseID: c.Query("warehouse_id"),
		Type:        c.Query("type"),
		Status:      c.Query("status"),
		NewestFirst: c.QueryBool("newest_first", false),
		Limit:       c.QueryInt("limit", 50),
		Offset:      c.QueryInt("offset", 0),
	}
	if raw := c.Query("from"); raw != "" {
		t, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "from debe ser RFC3339"})
		}
		filter.From = &t
	}
	if raw := c.Query("to"); raw != "" {
		t, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "to debe ser RFC3339"})
		}
		filter.To = &t
	}
	movements, err := h.query.GetMovements(c.Context(), filter)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Code: "INTERNAL", Message: err.Error()})
	}
	out := make([]dto.MovementResponse, 0, len(movements))
	for _, m := range movements {
		out = append(out, *toMovementResponse(m))
	}
	return c.JSON(fiber.Map{"total": len(out), "movements": out})
}

// GetStock godoc
// @Summary      Consultar un registro de stock
// @Tags         inventory
// @Security     Bearer
// @Produce      json
// @Param        productId    path  string  true  "ID del producto"
// @Param        warehouseId  path  string  true  "ID de la bodega"
// @Success      200  {object}  dto.StockRecordResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/inventory/stock/{productId}/{warehouseId} [get]
func (h *InventoryHandler) GetStock(c *fiber.Ctx) error {
	companyID := GetCompanyID(c)
	if companyID == "" {
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Code: "UNAUTHORIZED", Message: "token inválido"})
	}
	record, err := h.query.GetStock(c.Context(), companyID, c.Params("productId"), c.Params("warehouseId"))
	if err != nil {
		return mapInventoryError(c, err)
	}
	return c.JSON(toStockRecordResponse(record))
}

// GetStockHistory godoc
// @Summary      Historial de cambios de un registro de stock
// @Description  Reconstruye la línea de tiempo desde el ledger: cada asiento completed que tocó la bodega, con cantidad previa y nueva.
// @Tags         inventory
// @Security     Bearer
// @Produce      json
// @Param        productId    path   string  true   "ID del producto"
// @Param        warehouseId  path   string  true   "ID de la bodega"
// @Param        limit        query  int     false  "Límite"  default(100)
// @Success      200  {array}  dto.StockHistoryEntryDTO
// @Router       /api/inventory/stock/{productId}/{warehouseId}/history [get]
func (h *InventoryHandler) GetStockHistory(c *fiber.Ctx) error {
	companyID := GetCompanyID(c)
	if companyID == "" {
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Code: "UNAUTHORIZED", Message: "token inválido"})
	}
	entries, err := h.query.History(c.Context(), c.Params("productId"), c.Params("warehouseId"), c.QueryInt("limit", 100))
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Code: "INTERNAL", Message: err.Error()})
	}
	out := make([]dto.StockHistoryEntryDTO, 0, len(entries))
	for _, e := range entries {
		out = append(out, dto.StockHistoryEntryDTO{
			Date:             e.Date,
			Change:           e.Change,
			Reason:           e.Reason,
			PreviousQuantity: e.PreviousQuantity,
			NewQuantity:      e.NewQuantity,
		})
	}
	return c.JSON(fiber.Map{"total": len(out), "history": out})
}

// mapInventoryError traduce los errores de dominio del motor de inventario a
// códigos HTTP. El orden importa: los errores tipados van antes que el fallback.
func mapInventoryError(c *fiber.Ctx, err error) error {
	var insufficient *domain.InsufficientInventoryError
	switch {
	case errors.As(err, &insufficient):
		return c.Status(fiber.StatusConflict).JSON(dto.ErrorResponse{Code: "INSUFFICIENT_INVENTORY", Message: insufficient.Error()})
	case errors.Is(err, domain.ErrInvalidInput):
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "datos inválidos"})
	case errors.Is(err, domain.ErrRecordNotFound):
		return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{Code: "RECORD_NOT_FOUND", Message: "registro de stock no encontrado"})
	case errors.Is(err, domain.ErrNotFound):
		return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{Code: "NOT_FOUND", Message: "recurso no encontrado"})
	case errors.Is(err, domain.ErrForbidden):
		return c.Status(fiber.StatusForbidden).JSON(dto.ErrorResponse{Code: "FORBIDDEN", Message: "acceso denegado al recurso"})
	case errors.Is(err, domain.ErrInsufficientAvailable):
		return c.Status(fiber.StatusConflict).JSON(dto.ErrorResponse{Code: "INSUFFICIENT_AVAILABLE", Message: "cantidad disponible insuficiente"})
	case errors.Is(err, domain.ErrOverRelease):
		return c.Status(fiber.StatusConflict).JSON(dto.ErrorResponse{Code: "OVER_RELEASE", Message: "liberación mayor que lo reservado"})
	case errors.Is(err, domain.ErrInsufficientStock):
		return c.Status(fiber.StatusConflict).JSON(dto.ErrorResponse{Code: "INSUFFICIENT_STOCK", Message: "stock insuficiente"})
	case errors.Is(err, domain.ErrAlreadyApproved):
		return c.Status(fiber.StatusConflict).JSON(dto.ErrorResponse{Code: "ALREADY_APPROVED", Message: "el movimiento ya fue aprobado"})
	case errors.Is(err, domain.ErrConflict):
		return c.Status(fiber.StatusConflict).JSON(dto.ErrorResponse{Code: "CONFLICT", Message: "conflicto con el estado actual del movimiento"})
	case errors.Is(err, domain.ErrConcurrentModification):
		return c.Status(fiber.StatusConflict).JSON(dto.ErrorResponse{Code: "CONCURRENT_MODIFICATION", Message: "modificación concurrente, reintentar"})
	default:
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Code: "INTERNAL", Message: err.Error()})
	}
}

func toStockRecordResponse(r *entity.StockRecord) *dto.StockRecordResponse {
	if r == nil {
		return nil
	}
	return &dto.StockRecordResponse{
		ProductID:         r.ProductID,
		WarehouseID:       r.WarehouseID,
		Quantity:          r.Quantity,
		ReservedQuantity:  r.ReservedQuantity,
		AvailableQuantity: r.AvailableQuantity,
		UnitCost:          r.UnitCost,
		TotalCost:         r.TotalCost(),
		QualityStatus:     r.QualityStatus,
		BatchNumber:       r.BatchNumber,
		LotNumber:         r.LotNumber,
		ExpiryDate:        r.ExpiryDate,
		UpdatedAt:         r.UpdatedAt,
	}
}

func toMovementResponse(m *entity.Movement) *dto.MovementResponse {
	if m == nil {
		return nil
	}
	return &dto.MovementResponse{
		ID:              m.ID,
		ProductID:       m.ProductID,
		FromWarehouseID: m.FromWarehouseID,
		ToWarehouseID:   m.ToWarehouseID,
		Type:            m.Type,
		Reason:          m.Reason,
		Quantity:        m.Quantity,
		BeforeQuantity:  m.BeforeQuantity,
		AfterQuantity:   m.AfterQuantity,
		UnitCost:        m.UnitCost,
		TotalCost:       m.TotalCost,
		ReferenceType:   m.ReferenceType,
		ReferenceID:     m.ReferenceID,
		Status:          m.Status,
		ProcessedBy:     m.ProcessedBy,
		ApprovedBy:      m.ApprovedBy,
		ApprovedAt:      m.ApprovedAt,
		OccurredAt:      m.OccurredAt,
	}
}
