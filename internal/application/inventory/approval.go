package inventory

import (
	"context"
	"time"

	"github.com/jhoicas/Almacen-api/internal/domain"
	"github.com/jhoicas/Almacen-api/internal/domain/entity"
	"github.com/jhoicas/Almacen-api/internal/domain/repository"
	"github.com/jhoicas/Almacen-api/pkg/logger"
	"github.com/shopspring/decimal"
)

// ApprovalUseCase aprueba o rechaza movimientos pending. La aprobación aplica la
// mutación diferida del StockRecord en la misma transacción que la transición de
// estado del asiento.
type ApprovalUseCase struct {
	txRunner TxRunner
	cfg      Config
	log      *logger.Logger
}

// NewApprovalUseCase construye el caso de uso de aprobación.
func NewApprovalUseCase(txRunner TxRunner, cfg Config, log *logger.Logger) *ApprovalUseCase {
	return &ApprovalUseCase{txRunner: txRunner, cfg: cfg, log: log}
}

// ApproveMovement transiciona pending → completed, estampa approved_by/approved_at
// y aplica el delta diferido al registro re-bloqueado. Before/after se recalculan
// al momento de aplicar, de modo que after - before == quantity se mantiene aunque
// el stock haya cambiado mientras el asiento esperaba. Aprobar un asiento ya
// aprobado devuelve ErrAlreadyApproved sin doble mutación.
func (uc *ApprovalUseCase) ApproveMovement(ctx context.Context, companyID, approverID, movementID string) (*entity.Movement, error) {
	if movementID == "" || approverID == "" {
		return nil, domain.ErrInvalidInput
	}
	var result *entity.Movement
	err := runWithRetry(ctx, uc.txRunner, uc.cfg.MaxRetries, func(
		movRepo repository.MovementRepository,
		stockRepo repository.StockRecordRepository,
		_ repository.ProductRepository,
	) error {
		mov, err := movRepo.GetForUpdate(movementID)
		if err != nil {
			return err
		}
		if mov == nil {
			return domain.ErrNotFound
		}
		if companyID != "" && mov.CompanyID != companyID {
			return domain.ErrForbidden
		}
		switch mov.Status {
		case entity.MovementStatusPending:
			// sigue
		case entity.MovementStatusCompleted:
			return domain.ErrAlreadyApproved
		default:
			return domain.ErrConflict
		}

		warehouseID := mov.ToWarehouseID
		if mov.Quantity.IsNegative() {
			warehouseID = mov.FromWarehouseID
		}
		record, err := stockRepo.GetForUpdate(mov.ProductID, warehouseID)
		if err != nil {
			return err
		}

		now := time.Now()
		before := record.Quantity
		after := before.Add(mov.Quantity)
		if after.IsNegative() {
			// El stock bajó mientras el asiento esperaba aprobación y el delta ya
			// no cabe: se aplica hasta cero y el asiento registra el delta real.
			after = decimal.Zero
			uc.log.Warn().
				Str("movement_id", mov.ID).
				Str("product_id", mov.ProductID).
				Str("warehouse_id", warehouseID).
				Msg("delta aprobado excede el stock actual; aplicado hasta cero")
		}
		appliedDelta := after.Sub(before)

		record.Quantity = after
		record.Recompute()
		if record.ReservedQuantity.GreaterThan(record.Quantity) {
			record.ReservedQuantity = record.Quantity
			record.Recompute()
		}
		record.UpdatedAt = now
		if err := stockRepo.Upsert(record); err != nil {
			return err
		}

		mov.Status = entity.MovementStatusCompleted
		mov.Quantity = appliedDelta
		mov.BeforeQuantity = before
		mov.AfterQuantity = after
		mov.TotalCost = mov.UnitCost.Mul(appliedDelta.Abs())
		mov.ApprovedBy = approverID
		mov.ApprovedAt = &now
		if err := mov.Validate(); err != nil {
			return err
		}
		if err := movRepo.UpdateStatus(mov); err != nil {
			return err
		}
		result = mov
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// RejectMovement transiciona pending → cancelled sin tocar el StockRecord.
func (uc *ApprovalUseCase) RejectMovement(ctx context.Context, companyID, approverID, movementID string) (*entity.Movement, error) {
	if movementID == "" || approverID == "" {
		return nil, domain.ErrInvalidInput
	}
	var result *entity.Movement
	err := runWithRetry(ctx, uc.txRunner, uc.cfg.MaxRetries, func(
		movRepo repository.MovementRepository,
		_ repository.StockRecordRepository,
		_ repository.ProductRepository,
	) error {
		mov, err := movRepo.GetForUpdate(movementID)
		if err != nil {
			return err
		}
		if mov == nil {
			return domain.ErrNotFound
		}
		if companyID != "" && mov.CompanyID != companyID {
			return domain.ErrForbidden
		}
		if mov.Status != entity.MovementStatusPending {
			return domain.ErrConflict
		}
		now := time.Now()
		mov.Status = entity.MovementStatusCancelled
		mov.ApprovedBy = approverID
		mov.ApprovedAt = &now
		if err := movRepo.UpdateStatus(mov); err != nil {
			return err
		}
		result = mov
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}
