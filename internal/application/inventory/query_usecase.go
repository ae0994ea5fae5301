package inventory

import (
	"context"

	"github.com/jhoicas/Almacen-api/internal/domain"
	"github.com/jhoicas/Almacen-api/internal/domain/entity"
	"github.com/jhoicas/Almacen-api/internal/domain/repository"
)

// QueryUseCase lecturas sobre stock y ledger (sin bloqueos: los repos van atados
// al pool, no a una transacción; no deben frenar a los escritores).
type QueryUseCase struct {
	stockRepo repository.StockRecordRepository
	movRepo   repository.MovementRepository
}

// NewQueryUseCase construye el caso de uso de consulta.
func NewQueryUseCase(stockRepo repository.StockRecordRepository, movRepo repository.MovementRepository) *QueryUseCase {
	return &QueryUseCase{stockRepo: stockRepo, movRepo: movRepo}
}

// GetStock devuelve el registro de un producto en una bodega.
func (uc *QueryUseCase) GetStock(ctx context.Context, companyID, productID, warehouseID string) (*entity.StockRecord, error) {
	record, err := uc.stockRepo.Get(productID, warehouseID)
	if err != nil {
		return nil, err
	}
	if companyID != "" && record.CompanyID != companyID {
		return nil, domain.ErrForbidden
	}
	return record, nil
}

// GetMovements lista asientos del ledger según filtro, cronológico ascendente
// por defecto.
func (uc *QueryUseCase) GetMovements(ctx context.Context, filter repository.MovementFilter) ([]*entity.Movement, error) {
	if filter.Limit <= 0 {
		filter.Limit = 50
	}
	return uc.movRepo.List(filter)
}

// History vista por registro del ledger global filtrado por producto/bodega.
func (uc *QueryUseCase) History(ctx context.Context, productID, warehouseID string, limit int) ([]*entity.StockHistoryEntry, error) {
	if productID == "" || warehouseID == "" {
		return nil, domain.ErrInvalidInput
	}
	if limit <= 0 {
		limit = 100
	}
	return uc.movRepo.History(productID, warehouseID, limit)
}
