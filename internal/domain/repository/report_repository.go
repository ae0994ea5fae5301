package repository

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
)

// ReportRepository agregaciones de solo lectura sobre stock y ledger.
// Se ejecutan sin bloqueos (lecturas de snapshot); consistencia eventual aceptable.
type ReportRepository interface {
	// TotalValuation suma quantity * unit_cost de todos los registros de la empresa.
	TotalValuation(ctx context.Context, companyID string) (decimal.Decimal, error)
	// TotalOnHand suma las cantidades físicas de la empresa.
	TotalOnHand(ctx context.Context, companyID string) (decimal.Decimal, error)
	// OutboundQuantity total de unidades salidas (asientos completed con delta negativo)
	// en el período.
	OutboundQuantity(ctx context.Context, companyID string, from, to time.Time) (decimal.Decimal, error)
	// NetChange suma con signo de los asientos completed del período (para
	// reconstruir el on-hand al inicio del período desde el ledger).
	NetChange(ctx context.Context, companyID string, from, to time.Time) (decimal.Decimal, error)
}
