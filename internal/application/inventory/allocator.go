package inventory

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jhoicas/Almacen-api/internal/domain"
	"github.com/jhoicas/Almacen-api/internal/domain/entity"
	domaininv "github.com/jhoicas/Almacen-api/internal/domain/inventory"
	"github.com/jhoicas/Almacen-api/internal/domain/repository"
	"github.com/jhoicas/Almacen-api/pkg/logger"
	"github.com/shopspring/decimal"
)

// AllocatorUseCase satisface las líneas de una orden contra los StockRecords de
// todas las bodegas. Política: commit en la creación de la orden (descuenta
// quantity de inmediato y deja asientos outbound/sales_order), todo-o-nada para
// la orden completa dentro de una sola transacción.
type AllocatorUseCase struct {
	txRunner TxRunner
	cfg      Config
	log      *logger.Logger
}

// NewAllocatorUseCase construye el asignador.
func NewAllocatorUseCase(txRunner TxRunner, cfg Config, log *logger.Logger) *AllocatorUseCase {
	return &AllocatorUseCase{txRunner: txRunner, cfg: cfg, log: log}
}

// AllocationLine detalle de una extracción aplicada (para la respuesta al caller).
type AllocationLine struct {
	ProductID   string
	WarehouseID string
	Quantity    decimal.Decimal
	MovementID  string
}

// AllocateForOrder procesa las líneas en el orden dado. Por línea: carga los
// registros de calidad good del producto (bloqueados, orden determinista de
// clave), verifica factibilidad sumando disponibles, ordena FEFO/FIFO y extrae.
// Si cualquier línea es infactible, la transacción se revierte completa: ningún
// registro queda parcialmente debitado.
func (uc *AllocatorUseCase) AllocateForOrder(ctx context.Context, companyID, userID, orderID string, lineItems []entity.OrderLineItem) ([]AllocationLine, error) {
	if orderID == "" || len(lineItems) == 0 {
		return nil, domain.ErrInvalidInput
	}
	for _, li := range lineItems {
		if li.ProductID == "" || !li.Quantity.GreaterThan(decimal.Zero) {
			return nil, domain.ErrInvalidInput
		}
	}

	var applied []AllocationLine
	err := runWithRetry(ctx, uc.txRunner, uc.cfg.MaxRetries, func(
		movRepo repository.MovementRepository,
		stockRepo repository.StockRecordRepository,
		_ repository.ProductRepository,
	) error {
		applied = applied[:0]
		now := time.Now()
		for _, li := range lineItems {
			records, err := stockRepo.ListByProductForUpdate(companyID, li.ProductID)
			if err != nil {
				return err
			}
			plan, err := domaininv.BuildDrawPlan(li.ProductID, records, li.Quantity)
			if err != nil {
				if errors.Is(err, domain.ErrConcurrentModification) {
					// La factibilidad pasó pero el plan no cerró: inconsistencia
					// entre disponible agregado y registros. El rollback de la tx
					// deshace los débitos ya aplicados de esta orden.
					uc.log.Error().
						Str("order_id", orderID).
						Str("product_id", li.ProductID).
						Msg("plan de extracción incompleto tras pasar factibilidad")
				}
				return err
			}
			for _, draw := range plan {
				record := draw.Record
				before := record.Quantity
				record.Quantity = record.Quantity.Sub(draw.Quantity)
				record.Recompute()
				record.UpdatedAt = now
				if record.Quantity.IsNegative() {
					uc.log.Error().
						Str("order_id", orderID).
						Str("product_id", li.ProductID).
						Str("warehouse_id", record.WarehouseID).
						Msg("la extracción dejaría cantidad negativa")
					return domain.ErrConcurrentModification
				}
				if err := stockRepo.Upsert(record); err != nil {
					return err
				}
				mov := &entity.Movement{
					ID:              uuid.New().String(),
					CompanyID:       companyID,
					ProductID:       li.ProductID,
					FromWarehouseID: record.WarehouseID,
					Type:            entity.MovementTypeOutbound,
					Reason:          entity.ReasonSalesOrder,
					Quantity:        draw.Quantity.Neg(),
					BeforeQuantity:  before,
					AfterQuantity:   record.Quantity,
					UnitCost:        record.UnitCost,
					TotalCost:       record.UnitCost.Mul(draw.Quantity),
					ReferenceType:   entity.ReferenceOrder,
					ReferenceID:     orderID,
					Status:          entity.MovementStatusCompleted,
					ProcessedBy:     userID,
					OccurredAt:      now,
					CreatedAt:       now,
				}
				if err := mov.Validate(); err != nil {
					return err
				}
				if err := movRepo.Create(mov); err != nil {
					return err
				}
				applied = append(applied, AllocationLine{
					ProductID:   li.ProductID,
					WarehouseID: record.WarehouseID,
					Quantity:    draw.Quantity,
					MovementID:  mov.ID,
				})
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return applied, nil
}
