package http

import (
	"github.com/gofiber/fiber/v2"
	"github.com/jhoicas/Almacen-api/internal/application/dto"
	"github.com/jhoicas/Almacen-api/internal/application/inventory"
	"github.com/jhoicas/Almacen-api/internal/domain/entity"
)

// AllocationHandler maneja la asignación y compensación de stock por orden
// (protegido).
type AllocationHandler struct {
	allocator   *inventory.AllocatorUseCase
	compensator *inventory.CompensatorUseCase
}

// NewAllocationHandler construye el handler.
func NewAllocationHandler(allocator *inventory.AllocatorUseCase, compensator *inventory.CompensatorUseCase) *AllocationHandler {
	return &AllocationHandler{allocator: allocator, compensator: compensator}
}

// Allocate godoc
// @Summary      Asignar stock a una orden
// @Description  Todo o nada: si alguna línea no alcanza, ninguna bodega queda debitada y se responde 409 con el producto faltante. Extrae primero lo próximo a vencer (FEFO) y luego lo más antiguo (FIFO).
// @Tags         orders
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        id    path  string  true  "ID de la orden"
// @Param        body  body  dto.AllocateOrderRequest  true  "Líneas de la orden"
// @Success      200   {object}  dto.AllocateOrderResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/orders/{id}/allocate [post]
func (h *AllocationHandler) Allocate(c *fiber.Ctx) error {
	companyID, userID := GetCompanyID(c), GetUserID(c)
	if companyID == "" || userID == "" {
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Code: "UNAUTHORIZED", Message: "token inválido"})
	}
	orderID := c.Params("id")
	var in dto.AllocateOrderRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	if len(in.LineItems) == 0 {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "line_items no puede estar vacío"})
	}
	lines, err := h.allocator.AllocateForOrder(c.Context(), companyID, userID, orderID, toLineItems(in.LineItems))
	if err != nil {
		return mapInventoryError(c, err)
	}
	out := dto.AllocateOrderResponse{Allocated: true, OrderID: orderID}
	for _, l := range lines {
		out.Lines = append(out.Lines, dto.AllocationLineDTO{
			ProductID:   l.ProductID,
			WarehouseID: l.WarehouseID,
			Quantity:    l.Quantity,
			MovementID:  l.MovementID,
		})
	}
	return c.JSON(out)
}

// Compensate godoc
// @Summary      Compensar la asignación de una orden
// @Description  Restaura el stock extraído por una asignación previa, dejando asientos return enlazados a la orden. Idempotente a nivel de orden: compensar sin asientos previos usa las líneas como plan.
// @Tags         orders
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        id    path  string  true  "ID de la orden"
// @Param        body  body  dto.CompensateOrderRequest  true  "Líneas de la orden"
// @Success      200   {object}  map[string]string
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Router       /api/orders/{id}/compensate [post]
func (h *AllocationHandler) Compensate(c *fiber.Ctx) error {
	companyID, userID := GetCompanyID(c), GetUserID(c)
	if companyID == "" || userID == "" {
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Code: "UNAUTHORIZED", Message: "token inválido"})
	}
	orderID := c.Params("id")
	var in dto.CompensateOrderRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	if len(in.LineItems) == 0 {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "line_items no puede estar vacío"})
	}
	if err := h.compensator.CompensateForOrder(c.Context(), companyID, userID, orderID, toLineItems(in.LineItems)); err != nil {
		return mapInventoryError(c, err)
	}
	return c.JSON(fiber.Map{"message": "orden compensada", "order_id": orderID})
}

func toLineItems(in []dto.OrderLineItemDTO) []entity.OrderLineItem {
	items := make([]entity.OrderLineItem, 0, len(in))
	for _, li := range in {
		items = append(items, entity.OrderLineItem{
			ProductID: li.ProductID,
			Quantity:  li.Quantity,
			Price:     li.Price,
		})
	}
	return items
}
