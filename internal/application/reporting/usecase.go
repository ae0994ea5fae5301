package reporting

import (
	"context"
	"time"

	"github.com/jhoicas/Almacen-api/internal/application/dto"
	"github.com/jhoicas/Almacen-api/internal/domain"
	"github.com/jhoicas/Almacen-api/internal/domain/repository"
	"github.com/shopspring/decimal"
)

// ReportingUseCase agregaciones de solo lectura sobre stock y ledger: valoración
// total, stock bajo mínimo y rotación. Las lecturas son de snapshot y toleran
// mutaciones concurrentes (consistencia eventual); nunca bloquean escritores.
type ReportingUseCase struct {
	stockRepo  repository.StockRecordRepository
	reportRepo repository.ReportRepository
}

// NewReportingUseCase construye la fachada de reportes.
func NewReportingUseCase(stockRepo repository.StockRecordRepository, reportRepo repository.ReportRepository) *ReportingUseCase {
	return &ReportingUseCase{stockRepo: stockRepo, reportRepo: reportRepo}
}

// TotalValuation devuelve Σ quantity * unit_cost de la empresa.
func (uc *ReportingUseCase) TotalValuation(ctx context.Context, companyID string) (decimal.Decimal, error) {
	if companyID == "" {
		return decimal.Zero, domain.ErrInvalidInput
	}
	return uc.reportRepo.TotalValuation(ctx, companyID)
}

// LowStock devuelve los registros con cantidad por debajo de su mínimo configurado.
func (uc *ReportingUseCase) LowStock(ctx context.Context, companyID string, limit, offset int) ([]dto.LowStockItemDTO, error) {
	if companyID == "" {
		return nil, domain.ErrInvalidInput
	}
	if limit <= 0 {
		limit = 100
	}
	records, err := uc.stockRepo.ListByCompany(companyID, limit, offset)
	if err != nil {
		return nil, err
	}
	items := make([]dto.LowStockItemDTO, 0)
	for _, r := range records {
		if !r.IsLow() {
			continue
		}
		items = append(items, dto.LowStockItemDTO{
			ProductID:       r.ProductID,
			WarehouseID:     r.WarehouseID,
			Quantity:        r.Quantity,
			MinimumQuantity: r.MinimumQuantity,
			Shortfall:       r.MinimumQuantity.Sub(r.Quantity),
		})
	}
	return items, nil
}

// Turnover calcula la rotación del período: unidades salidas ÷ inventario
// promedio. El on-hand al inicio se reconstruye desde el ledger
// (onhand_inicio = onhand_fin - cambio_neto_del_período).
func (uc *ReportingUseCase) Turnover(ctx context.Context, companyID string, from, to time.Time) (*dto.TurnoverReportDTO, error) {
	if companyID == "" || !from.Before(to) {
		return nil, domain.ErrInvalidInput
	}
	sold, err := uc.reportRepo.OutboundQuantity(ctx, companyID, from, to)
	if err != nil {
		return nil, err
	}
	onHandEnd, err := uc.reportRepo.TotalOnHand(ctx, companyID)
	if err != nil {
		return nil, err
	}
	netChange, err := uc.reportRepo.NetChange(ctx, companyID, from, to)
	if err != nil {
		return nil, err
	}
	onHandStart := onHandEnd.Sub(netChange)
	if onHandStart.IsNegative() {
		onHandStart = decimal.Zero
	}

	two := decimal.NewFromInt(2)
	average := onHandStart.Add(onHandEnd).Div(two)
	ratio := decimal.Zero
	if average.GreaterThan(decimal.Zero) {
		ratio = sold.Div(average)
	}
	return &dto.TurnoverReportDTO{
		From:          from,
		To:            to,
		SoldQuantity:  sold,
		AverageOnHand: average,
		TurnoverRatio: ratio,
	}, nil
}
