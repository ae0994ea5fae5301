package inventory

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jhoicas/Almacen-api/internal/domain"
	"github.com/jhoicas/Almacen-api/internal/domain/entity"
	"github.com/jhoicas/Almacen-api/internal/domain/repository"
	"github.com/jhoicas/Almacen-api/pkg/logger"
	"github.com/shopspring/decimal"
)

// CompensatorUseCase revierte una asignación cuando la orden se cancela o se
// borra en pending: restaura la cantidad a los registros originalmente debitados
// (resueltos por los asientos outbound con reference_id de la orden) y deja
// asientos de devolución compensatorios.
type CompensatorUseCase struct {
	txRunner TxRunner
	cfg      Config
	log      *logger.Logger
}

// NewCompensatorUseCase construye el compensador.
func NewCompensatorUseCase(txRunner TxRunner, cfg Config, log *logger.Logger) *CompensatorUseCase {
	return &CompensatorUseCase{txRunner: txRunner, cfg: cfg, log: log}
}

// CompensateForOrder restaura, por línea, la cantidad a la misma bodega de la
// que se extrajo; si el vínculo por ledger no existe, cae al primer registro
// encontrado para el producto. Si no hay registro alguno es una falla de
// integridad de datos: se registra con contexto completo y la operación falla
// (nunca aparenta éxito dejando stock sin restaurar).
func (uc *CompensatorUseCase) CompensateForOrder(ctx context.Context, companyID, userID, orderID string, lineItems []entity.OrderLineItem) error {
	if orderID == "" {
		return domain.ErrInvalidInput
	}
	return runWithRetry(ctx, uc.txRunner, uc.cfg.MaxRetries, func(
		movRepo repository.MovementRepository,
		stockRepo repository.StockRecordRepository,
		_ repository.ProductRepository,
	) error {
		// Asientos outbound de la orden: de ellos sale a qué bodega devolver cuánto.
		outbounds, err := movRepo.ListByReference(entity.ReferenceOrder, orderID)
		if err != nil {
			return err
		}
		restorePlan := make(map[string]map[string]decimal.Decimal) // productID -> warehouseID -> qty
		for _, m := range outbounds {
			if m.Type != entity.MovementTypeOutbound || m.Status != entity.MovementStatusCompleted {
				continue
			}
			byWh := restorePlan[m.ProductID]
			if byWh == nil {
				byWh = make(map[string]decimal.Decimal)
				restorePlan[m.ProductID] = byWh
			}
			byWh[m.FromWarehouseID] = byWh[m.FromWarehouseID].Add(m.Quantity.Neg())
		}

		now := time.Now()
		// Cada producto se restaura exactamente una vez: varias líneas del mismo
		// producto comparten el plan del ledger (que ya agrega sus extracciones).
		restored := make(map[string]bool)
		for _, li := range lineItems {
			if restored[li.ProductID] {
				continue
			}
			restored[li.ProductID] = true
			byWh := restorePlan[li.ProductID]
			if len(byWh) == 0 {
				// Sin vínculo por ledger: devolver el total de las líneas del
				// producto al primer registro encontrado.
				total := decimal.Zero
				for _, other := range lineItems {
					if other.ProductID == li.ProductID {
						total = total.Add(other.Quantity)
					}
				}
				records, err := stockRepo.ListByProduct(companyID, li.ProductID)
				if err != nil {
					return err
				}
				if len(records) == 0 {
					uc.log.Error().
						Str("order_id", orderID).
						Str("product_id", li.ProductID).
						Str("company_id", companyID).
						Msg("compensación imposible: no existe registro de stock para restaurar")
					return domain.ErrRecordNotFound
				}
				byWh = map[string]decimal.Decimal{records[0].WarehouseID: total}
			}
			for warehouseID, qty := range byWh {
				if err := uc.restore(movRepo, stockRepo, companyID, userID, orderID, li.ProductID, warehouseID, qty, now); err != nil {
					return err
				}
			}
		}
		return nil
	})
}

// restore suma qty al registro (bloqueado) y deja un asiento return/customer_return.
func (uc *CompensatorUseCase) restore(
	movRepo repository.MovementRepository,
	stockRepo repository.StockRecordRepository,
	companyID, userID, orderID, productID, warehouseID string,
	qty decimal.Decimal,
	now time.Time,
) error {
	record, err := stockRepo.GetForUpdate(productID, warehouseID)
	if err != nil {
		if err == domain.ErrRecordNotFound {
			// La bodega original ya no tiene registro (p. ej. bodega eliminada):
			// falla de integridad, no se restaura en silencio a otro lado.
			uc.log.Error().
				Str("order_id", orderID).
				Str("product_id", productID).
				Str("warehouse_id", warehouseID).
				Msg("compensación imposible: el registro original desapareció")
		}
		return err
	}

	before := record.Quantity
	record.Quantity = record.Quantity.Add(qty)
	record.Recompute()
	record.UpdatedAt = now
	if err := stockRepo.Upsert(record); err != nil {
		return err
	}

	mov := &entity.Movement{
		ID:             uuid.New().String(),
		CompanyID:      companyID,
		ProductID:      productID,
		ToWarehouseID:  warehouseID,
		Type:           entity.MovementTypeReturn,
		Reason:         entity.ReasonCustomerReturn,
		Quantity:       qty,
		BeforeQuantity: before,
		AfterQuantity:  record.Quantity,
		UnitCost:       record.UnitCost,
		TotalCost:      record.UnitCost.Mul(qty),
		ReferenceType:  entity.ReferenceOrder,
		ReferenceID:    orderID,
		Status:         entity.MovementStatusCompleted,
		ProcessedBy:    userID,
		OccurredAt:     now,
		CreatedAt:      now,
	}
	if err := mov.Validate(); err != nil {
		return err
	}
	return movRepo.Create(mov)
}
