package inventory

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jhoicas/Almacen-api/internal/domain"
	"github.com/jhoicas/Almacen-api/internal/domain/entity"
	domaininv "github.com/jhoicas/Almacen-api/internal/domain/inventory"
	"github.com/jhoicas/Almacen-api/internal/domain/repository"
	"github.com/jhoicas/Almacen-api/pkg/logger"
	"github.com/shopspring/decimal"
)

// StockUseCase gestiona las mutaciones de StockRecord: entradas, reservas,
// ajustes y traslados. Toda mutación de cantidad corre en una transacción con
// bloqueo de fila (SELECT FOR UPDATE) y deja exactamente un asiento en el ledger
// con before/after consistentes.
type StockUseCase struct {
	txRunner      TxRunner
	warehouseRepo repository.WarehouseRepository
	cfg           Config
	log           *logger.Logger
}

// NewStockUseCase construye el caso de uso.
func NewStockUseCase(txRunner TxRunner, warehouseRepo repository.WarehouseRepository, cfg Config, log *logger.Logger) *StockUseCase {
	return &StockUseCase{txRunner: txRunner, warehouseRepo: warehouseRepo, cfg: cfg, log: log}
}

// ReceiveInput entrada de mercancía a una bodega.
type ReceiveInput struct {
	CompanyID   string
	UserID      string
	ProductID   string
	WarehouseID string
	Quantity    decimal.Decimal
	UnitCost    decimal.Decimal
	Reason      string // purchase_order, customer_return, initial_stock...
	ReferenceID string // PO u orden que causa la entrada
	BatchNumber string
	LotNumber   string
	ExpiryDate  *time.Time
}

// AdjustmentResult resultado de un ajuste, para el caller y para el ledger.
type AdjustmentResult struct {
	OldQuantity decimal.Decimal
	NewQuantity decimal.Decimal
	Delta       decimal.Decimal
	Reason      string
	// Clamped indica que un decremento relativo pedía resultado negativo y se
	// ajustó a cero (advertencia, no fallo).
	Clamped bool
	// Pending indica que el ajuste superó el umbral de aprobación: el asiento
	// quedó pending y el StockRecord NO fue mutado.
	Pending    bool
	MovementID string
}

// Receive registra una entrada: crea el registro en la primera recepción,
// actualiza el costo promedio ponderado del producto y del registro, suma la
// cantidad y deja un asiento inbound. Todo en una transacción.
func (uc *StockUseCase) Receive(ctx context.Context, in ReceiveInput) (*entity.StockRecord, error) {
	if in.ProductID == "" || in.WarehouseID == "" || !in.Quantity.GreaterThan(decimal.Zero) {
		return nil, domain.ErrInvalidInput
	}
	if in.UnitCost.IsNegative() {
		return nil, domain.ErrInvalidInput
	}
	if in.Reason == "" {
		in.Reason = entity.ReasonPurchaseOrder
	}
	wh, err := uc.warehouseRepo.GetByID(in.WarehouseID)
	if err != nil {
		return nil, err
	}
	if wh == nil || wh.CompanyID != in.CompanyID {
		return nil, domain.ErrNotFound
	}

	var result *entity.StockRecord
	err = runWithRetry(ctx, uc.txRunner, uc.cfg.MaxRetries, func(
		movRepo repository.MovementRepository,
		stockRepo repository.StockRecordRepository,
		productRepo repository.ProductRepository,
	) error {
		product, err := productRepo.GetByID(in.ProductID)
		if err != nil || product == nil {
			return domain.ErrNotFound
		}
		if product.CompanyID != in.CompanyID {
			return domain.ErrForbidden
		}

		now := time.Now()
		record, err := stockRepo.GetForUpdate(in.ProductID, in.WarehouseID)
		if err != nil {
			if err != domain.ErrRecordNotFound {
				return err
			}
			// Primera recepción del producto en esta bodega: nace el registro.
			record = &entity.StockRecord{
				ID:            uuid.New().String(),
				CompanyID:     in.CompanyID,
				ProductID:     in.ProductID,
				WarehouseID:   in.WarehouseID,
				Quantity:      decimal.Zero,
				QualityStatus: entity.StockQualityGood,
				ReceivedAt:    now,
			}
		}

		before := record.Quantity
		newCost := domaininv.CostCalculator(record.Quantity, record.UnitCost, in.Quantity, in.UnitCost)
		productCost := domaininv.CostCalculator(record.Quantity, product.Cost, in.Quantity, in.UnitCost)
		if err := productRepo.UpdateCost(in.ProductID, productCost); err != nil {
			return err
		}

		record.Quantity = record.Quantity.Add(in.Quantity)
		record.UnitCost = newCost
		if in.BatchNumber != "" {
			record.BatchNumber = in.BatchNumber
		}
		if in.LotNumber != "" {
			record.LotNumber = in.LotNumber
		}
		if in.ExpiryDate != nil {
			record.ExpiryDate = in.ExpiryDate
		}
		record.Recompute()
		record.UpdatedAt = now
		if err := stockRepo.Upsert(record); err != nil {
			return err
		}

		mov := &entity.Movement{
			ID:             uuid.New().String(),
			CompanyID:      in.CompanyID,
			ProductID:      in.ProductID,
			ToWarehouseID:  in.WarehouseID,
			Type:           entity.MovementTypeInbound,
			Reason:         in.Reason,
			Quantity:       in.Quantity,
			BeforeQuantity: before,
			AfterQuantity:  record.Quantity,
			UnitCost:       in.UnitCost,
			TotalCost:      in.UnitCost.Mul(in.Quantity.Abs()),
			ReferenceType:  entity.ReferencePurchaseOrder,
			ReferenceID:    in.ReferenceID,
			Status:         entity.MovementStatusCompleted,
			ProcessedBy:    in.UserID,
			OccurredAt:     now,
			CreatedAt:      now,
		}
		if err := mov.Validate(); err != nil {
			return err
		}
		if err := movRepo.Create(mov); err != nil {
			return err
		}
		result = record
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// Reserve aparta qty del disponible (promesa a una orden abierta). No cambia la
// cantidad física, por lo que no genera asiento en el ledger.
func (uc *StockUseCase) Reserve(ctx context.Context, companyID, productID, warehouseID string, qty decimal.Decimal) (*entity.StockRecord, error) {
	if !qty.GreaterThan(decimal.Zero) {
		return nil, domain.ErrInvalidInput
	}
	var result *entity.StockRecord
	err := runWithRetry(ctx, uc.txRunner, uc.cfg.MaxRetries, func(
		_ repository.MovementRepository,
		stockRepo repository.StockRecordRepository,
		_ repository.ProductRepository,
	) error {
		record, err := stockRepo.GetForUpdate(productID, warehouseID)
		if err != nil {
			return err
		}
		if record.CompanyID != companyID {
			return domain.ErrForbidden
		}
		if qty.GreaterThan(record.AvailableQuantity) {
			return domain.ErrInsufficientAvailable
		}
		record.ReservedQuantity = record.ReservedQuantity.Add(qty)
		record.Recompute()
		record.UpdatedAt = time.Now()
		if err := stockRepo.Upsert(record); err != nil {
			return err
		}
		result = record
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// ReleaseReservation libera qty previamente reservada.
func (uc *StockUseCase) ReleaseReservation(ctx context.Context, companyID, productID, warehouseID string, qty decimal.Decimal) (*entity.StockRecord, error) {
	if !qty.GreaterThan(decimal.Zero) {
		return nil, domain.ErrInvalidInput
	}
	var result *entity.StockRecord
	err := runWithRetry(ctx, uc.txRunner, uc.cfg.MaxRetries, func(
		_ repository.MovementRepository,
		stockRepo repository.StockRecordRepository,
		_ repository.ProductRepository,
	) error {
		record, err := stockRepo.GetForUpdate(productID, warehouseID)
		if err != nil {
			return err
		}
		if record.CompanyID != companyID {
			return domain.ErrForbidden
		}
		if qty.GreaterThan(record.ReservedQuantity) {
			return domain.ErrOverRelease
		}
		record.ReservedQuantity = record.ReservedQuantity.Sub(qty)
		record.Recompute()
		record.UpdatedAt = time.Now()
		if err := stockRepo.Upsert(record); err != nil {
			return err
		}
		result = record
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// AdjustQuantity fija la cantidad absoluta del registro. Calcula el delta bajo el
// bloqueo de fila; si el movimiento requiere aprobación (tipo/razón de riesgo o
// delta sobre el umbral) deja un asiento pending y NO muta el registro.
func (uc *StockUseCase) AdjustQuantity(ctx context.Context, companyID, userID, productID, warehouseID string, newQuantity decimal.Decimal, reason string) (*AdjustmentResult, error) {
	if newQuantity.IsNegative() {
		return nil, domain.ErrInvalidInput
	}
	return uc.adjust(ctx, companyID, userID, productID, warehouseID, reason, func(current decimal.Decimal) decimal.Decimal {
		return newQuantity
	})
}

// AdjustDelta aplica un cambio relativo. Un decremento que dejaría la cantidad
// negativa se ajusta a cero, marcando Clamped (advertencia, no fallo duro).
func (uc *StockUseCase) AdjustDelta(ctx context.Context, companyID, userID, productID, warehouseID string, delta decimal.Decimal, reason string) (*AdjustmentResult, error) {
	if delta.IsZero() {
		return nil, domain.ErrInvalidInput
	}
	return uc.adjust(ctx, companyID, userID, productID, warehouseID, reason, func(current decimal.Decimal) decimal.Decimal {
		target := current.Add(delta)
		if target.IsNegative() {
			return decimal.Zero
		}
		return target
	})
}

func (uc *StockUseCase) adjust(ctx context.Context, companyID, userID, productID, warehouseID, reason string, target func(decimal.Decimal) decimal.Decimal) (*AdjustmentResult, error) {
	if reason == "" {
		reason = entity.ReasonManualAdjustment
	}
	var result *AdjustmentResult
	err := runWithRetry(ctx, uc.txRunner, uc.cfg.MaxRetries, func(
		movRepo repository.MovementRepository,
		stockRepo repository.StockRecordRepository,
		_ repository.ProductRepository,
	) error {
		record, err := stockRepo.GetForUpdate(productID, warehouseID)
		if err != nil {
			return err
		}
		if companyID != "" && record.CompanyID != companyID {
			return domain.ErrForbidden
		}

		now := time.Now()
		oldQty := record.Quantity
		wanted := target(oldQty)
		clamped := false
		if wanted.IsNegative() {
			wanted = decimal.Zero
			clamped = true
		}
		delta := wanted.Sub(oldQty)
		if delta.IsZero() && !clamped {
			return domain.ErrInvalidInput
		}

		mov := &entity.Movement{
			ID:             uuid.New().String(),
			CompanyID:      record.CompanyID,
			ProductID:      productID,
			Type:           entity.MovementTypeAdjustment,
			Reason:         reason,
			Quantity:       delta,
			BeforeQuantity: oldQty,
			AfterQuantity:  wanted,
			UnitCost:       record.UnitCost,
			TotalCost:      record.UnitCost.Mul(delta.Abs()),
			ProcessedBy:    userID,
			OccurredAt:     now,
			CreatedAt:      now,
		}
		if delta.IsNegative() {
			mov.FromWarehouseID = warehouseID
		} else {
			mov.ToWarehouseID = warehouseID
		}

		if mov.NeedsApproval(decimal.NewFromInt(uc.cfg.ApprovalThreshold)) {
			// Queda pending: el StockRecord no se toca hasta ApproveMovement.
			mov.Status = entity.MovementStatusPending
			if err := mov.Validate(); err != nil {
				return err
			}
			if err := movRepo.Create(mov); err != nil {
				return err
			}
			result = &AdjustmentResult{
				OldQuantity: oldQty, NewQuantity: oldQty, Delta: delta,
				Reason: reason, Clamped: clamped, Pending: true, MovementID: mov.ID,
			}
			return nil
		}

		mov.Status = entity.MovementStatusCompleted
		if err := mov.Validate(); err != nil {
			return err
		}
		record.Quantity = wanted
		record.Recompute()
		// El ajuste puede dejar quantity < reserved; se recorta la reserva al
		// máximo representable para preservar 0 <= reserved <= quantity.
		if record.ReservedQuantity.GreaterThan(record.Quantity) {
			record.ReservedQuantity = record.Quantity
			record.Recompute()
		}
		record.UpdatedAt = now
		if err := stockRepo.Upsert(record); err != nil {
			return err
		}
		if err := movRepo.Create(mov); err != nil {
			return err
		}
		result = &AdjustmentResult{
			OldQuantity: oldQty, NewQuantity: wanted, Delta: delta,
			Reason: reason, Clamped: clamped, MovementID: mov.ID,
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	if result.Clamped && uc.log != nil {
		uc.log.Warn().
			Str("product_id", productID).
			Str("warehouse_id", warehouseID).
			Msg("decremento relativo pedía cantidad negativa; ajustado a cero")
	}
	return result, nil
}

// TransferInput traslado entre bodegas.
type TransferInput struct {
	CompanyID       string
	UserID          string
	ProductID       string
	FromWarehouseID string
	ToWarehouseID   string
	Quantity        decimal.Decimal
	ReferenceID     string
}

// Transfer resta de la bodega origen y suma en la destino en la misma
// transacción, dejando dos asientos transfer (salida y entrada) con el mismo
// reference_id.
func (uc *StockUseCase) Transfer(ctx context.Context, in TransferInput) error {
	if in.ProductID == "" || in.FromWarehouseID == "" || in.ToWarehouseID == "" {
		return domain.ErrInvalidInput
	}
	if in.FromWarehouseID == in.ToWarehouseID || !in.Quantity.GreaterThan(decimal.Zero) {
		return domain.ErrInvalidInput
	}
	fromWh, err := uc.warehouseRepo.GetByID(in.FromWarehouseID)
	if err != nil {
		return err
	}
	toWh, err := uc.warehouseRepo.GetByID(in.ToWarehouseID)
	if err != nil {
		return err
	}
	if fromWh == nil || toWh == nil || fromWh.CompanyID != in.CompanyID || toWh.CompanyID != in.CompanyID {
		return domain.ErrNotFound
	}

	refID := in.ReferenceID
	if refID == "" {
		refID = uuid.New().String()
	}

	return runWithRetry(ctx, uc.txRunner, uc.cfg.MaxRetries, func(
		movRepo repository.MovementRepository,
		stockRepo repository.StockRecordRepository,
		_ repository.ProductRepository,
	) error {
		now := time.Now()
		origin, err := stockRepo.GetForUpdate(in.ProductID, in.FromWarehouseID)
		if err != nil {
			return err
		}
		if origin.AvailableQuantity.LessThan(in.Quantity) {
			return domain.ErrInsufficientAvailable
		}
		dest, err := stockRepo.GetForUpdate(in.ProductID, in.ToWarehouseID)
		if err != nil {
			if err != domain.ErrRecordNotFound {
				return err
			}
			dest = &entity.StockRecord{
				ID:            uuid.New().String(),
				CompanyID:     in.CompanyID,
				ProductID:     in.ProductID,
				WarehouseID:   in.ToWarehouseID,
				Quantity:      decimal.Zero,
				QualityStatus: entity.StockQualityGood,
				ReceivedAt:    now,
				UnitCost:      origin.UnitCost,
			}
		}

		originBefore := origin.Quantity
		destBefore := dest.Quantity
		origin.Quantity = origin.Quantity.Sub(in.Quantity)
		dest.Quantity = dest.Quantity.Add(in.Quantity)
		origin.Recompute()
		dest.Recompute()
		origin.UpdatedAt = now
		dest.UpdatedAt = now
		if err := stockRepo.Upsert(origin); err != nil {
			return err
		}
		if err := stockRepo.Upsert(dest); err != nil {
			return err
		}

		outMov := &entity.Movement{
			ID:              uuid.New().String(),
			CompanyID:       in.CompanyID,
			ProductID:       in.ProductID,
			FromWarehouseID: in.FromWarehouseID,
			ToWarehouseID:   in.ToWarehouseID,
			Type:            entity.MovementTypeTransfer,
			Reason:          entity.ReasonTransferOrder,
			Quantity:        in.Quantity.Neg(),
			BeforeQuantity:  originBefore,
			AfterQuantity:   origin.Quantity,
			UnitCost:        origin.UnitCost,
			TotalCost:       origin.UnitCost.Mul(in.Quantity),
			ReferenceType:   entity.ReferenceTransfer,
			ReferenceID:     refID,
			Status:          entity.MovementStatusCompleted,
			ProcessedBy:     in.UserID,
			OccurredAt:      now,
			CreatedAt:       now,
		}
		inMov := &entity.Movement{
			ID:              uuid.New().String(),
			CompanyID:       in.CompanyID,
			ProductID:       in.ProductID,
			FromWarehouseID: in.FromWarehouseID,
			ToWarehouseID:   in.ToWarehouseID,
			Type:            entity.MovementTypeTransfer,
			Reason:          entity.ReasonTransferOrder,
			Quantity:        in.Quantity,
			BeforeQuantity:  destBefore,
			AfterQuantity:   dest.Quantity,
			UnitCost:        origin.UnitCost,
			TotalCost:       origin.UnitCost.Mul(in.Quantity),
			ReferenceType:   entity.ReferenceTransfer,
			ReferenceID:     refID,
			Status:          entity.MovementStatusCompleted,
			ProcessedBy:     in.UserID,
			OccurredAt:      now,
			CreatedAt:       now,
		}
		for _, mov := range []*entity.Movement{outMov, inMov} {
			if err := mov.Validate(); err != nil {
				return err
			}
			if err := movRepo.Create(mov); err != nil {
				return err
			}
		}
		return nil
	})
}
