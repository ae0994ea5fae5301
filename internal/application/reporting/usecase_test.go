package reporting_test

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/Almacen-api/internal/application/reporting"
	"github.com/jhoicas/Almacen-api/internal/domain"
	"github.com/jhoicas/Almacen-api/internal/domain/entity"
)

const companyID = "00000000-0000-0000-0000-0000000000c0"

// stubStockRepo solo implementa ListByCompany; el resto no se usa en reportes.
type stubStockRepo struct {
	records []*entity.StockRecord
}

func (r *stubStockRepo) Get(productID, warehouseID string) (*entity.StockRecord, error) {
	return nil, domain.ErrRecordNotFound
}

func (r *stubStockRepo) GetForUpdate(productID, warehouseID string) (*entity.StockRecord, error) {
	return nil, domain.ErrRecordNotFound
}

func (r *stubStockRepo) Upsert(record *entity.StockRecord) error { return nil }

func (r *stubStockRepo) ListByProduct(companyID, productID string) ([]*entity.StockRecord, error) {
	return nil, nil
}

func (r *stubStockRepo) ListByProductForUpdate(companyID, productID string) ([]*entity.StockRecord, error) {
	return nil, nil
}

func (r *stubStockRepo) ListByCompany(cid string, limit, offset int) ([]*entity.StockRecord, error) {
	var out []*entity.StockRecord
	for _, rec := range r.records {
		if rec.CompanyID == cid {
			out = append(out, rec)
		}
	}
	return out, nil
}

// stubReportRepo devuelve agregados fijos, como si vinieran de las consultas SQL.
type stubReportRepo struct {
	valuation decimal.Decimal
	onHand    decimal.Decimal
	outbound  decimal.Decimal
	netChange decimal.Decimal
}

func (r *stubReportRepo) TotalValuation(ctx context.Context, companyID string) (decimal.Decimal, error) {
	return r.valuation, nil
}

func (r *stubReportRepo) TotalOnHand(ctx context.Context, companyID string) (decimal.Decimal, error) {
	return r.onHand, nil
}

func (r *stubReportRepo) OutboundQuantity(ctx context.Context, companyID string, from, to time.Time) (decimal.Decimal, error) {
	return r.outbound, nil
}

func (r *stubReportRepo) NetChange(ctx context.Context, companyID string, from, to time.Time) (decimal.Decimal, error) {
	return r.netChange, nil
}

func dec(n int64) decimal.Decimal { return decimal.NewFromInt(n) }

func TestTotalValuation(t *testing.T) {
	uc := reporting.NewReportingUseCase(&stubStockRepo{}, &stubReportRepo{valuation: dec(12500)})

	total, err := uc.TotalValuation(context.Background(), companyID)
	require.NoError(t, err)
	assert.True(t, total.Equal(dec(12500)))

	_, err = uc.TotalValuation(context.Background(), "")
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestLowStock_SoloBajoMinimo(t *testing.T) {
	stockRepo := &stubStockRepo{records: []*entity.StockRecord{
		{CompanyID: companyID, ProductID: "p1", WarehouseID: "w1", Quantity: dec(3), MinimumQuantity: dec(10)},
		{CompanyID: companyID, ProductID: "p2", WarehouseID: "w1", Quantity: dec(50), MinimumQuantity: dec(10)},
		{CompanyID: companyID, ProductID: "p3", WarehouseID: "w1", Quantity: dec(0)}, // sin mínimo configurado
	}}
	uc := reporting.NewReportingUseCase(stockRepo, &stubReportRepo{})

	items, err := uc.LowStock(context.Background(), companyID, 0, 0)
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, "p1", items[0].ProductID)
	assert.True(t, items[0].Shortfall.Equal(dec(7)))
}

func TestTurnover_ReconstruyeOnHandInicial(t *testing.T) {
	// Período: salieron 60 unidades; on-hand final 80; cambio neto -20.
	// Entonces on-hand inicial 100, promedio 90, rotación 60/90.
	uc := reporting.NewReportingUseCase(&stubStockRepo{}, &stubReportRepo{
		outbound:  dec(60),
		onHand:    dec(80),
		netChange: dec(-20),
	})
	from := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	to := time.Date(2025, 2, 1, 0, 0, 0, 0, time.UTC)

	report, err := uc.Turnover(context.Background(), companyID, from, to)
	require.NoError(t, err)
	assert.True(t, report.SoldQuantity.Equal(dec(60)))
	assert.True(t, report.AverageOnHand.Equal(dec(90)))
	expected := dec(60).Div(dec(90))
	assert.True(t, report.TurnoverRatio.Equal(expected), "got %s", report.TurnoverRatio)
}

func TestTurnover_PeriodoInvalido(t *testing.T) {
	uc := reporting.NewReportingUseCase(&stubStockRepo{}, &stubReportRepo{})
	now := time.Now()

	_, err := uc.Turnover(context.Background(), companyID, now, now)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	_, err = uc.Turnover(context.Background(), "", now.Add(-time.Hour), now)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestTurnover_PromedioCeroNoDivide(t *testing.T) {
	uc := reporting.NewReportingUseCase(&stubStockRepo{}, &stubReportRepo{})
	from := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	to := time.Date(2025, 2, 1, 0, 0, 0, 0, time.UTC)

	report, err := uc.Turnover(context.Background(), companyID, from, to)
	require.NoError(t, err)
	assert.True(t, report.TurnoverRatio.IsZero())
}
