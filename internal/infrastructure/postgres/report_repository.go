package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jhoicas/Almacen-api/internal/domain/repository"
	"github.com/shopspring/decimal"
)

var _ repository.ReportRepository = (*ReportRepo)(nil)

// ReportRepo agregaciones de solo lectura sobre stock_records e
// inventory_movements. Se consulta con el pool directamente (sin bloqueos).
type ReportRepo struct {
	q Querier
}

// NewReportRepository construye el adaptador de reportes.
func NewReportRepository(q Querier) *ReportRepo {
	return &ReportRepo{q: q}
}

// TotalValuation suma quantity * unit_cost de la empresa.
func (r *ReportRepo) TotalValuation(ctx context.Context, companyID string) (decimal.Decimal, error) {
	query := `
		SELECT COALESCE(SUM(quantity * unit_cost), 0)
		FROM stock_records WHERE company_id = $1`
	return r.scalar(ctx, query, companyID)
}

// TotalOnHand suma las cantidades físicas de la empresa.
func (r *ReportRepo) TotalOnHand(ctx context.Context, companyID string) (decimal.Decimal, error) {
	query := `
		SELECT COALESCE(SUM(quantity), 0)
		FROM stock_records WHERE company_id = $1`
	return r.scalar(ctx, query, companyID)
}

// OutboundQuantity unidades vendidas (asientos outbound completed) en el período.
// Los traslados no cuentan: sus dos asientos se anulan en NetChange y no son venta.
func (r *ReportRepo) OutboundQuantity(ctx context.Context, companyID string, from, to time.Time) (decimal.Decimal, error) {
	query := `
		SELECT COALESCE(SUM(-quantity), 0)
		FROM inventory_movements
		WHERE company_id = $1 AND status = 'completed' AND type = 'outbound'
		  AND occurred_at >= $2 AND occurred_at <= $3`
	return r.scalar(ctx, query, companyID, from, to)
}

// NetChange suma con signo de los asientos completed del período.
func (r *ReportRepo) NetChange(ctx context.Context, companyID string, from, to time.Time) (decimal.Decimal, error) {
	query := `
		SELECT COALESCE(SUM(quantity), 0)
		FROM inventory_movements
		WHERE company_id = $1 AND status = 'completed'
		  AND occurred_at >= $2 AND occurred_at <= $3`
	return r.scalar(ctx, query, companyID, from, to)
}

func (r *ReportRepo) scalar(ctx context.Context, query string, args ...any) (decimal.Decimal, error) {
	var v decimal.Decimal
	if err := r.q.QueryRow(ctx, query, args...).Scan(&v); err != nil {
		return decimal.Zero, fmt.Errorf("report scalar: %w", err)
	}
	return v, nil
}
