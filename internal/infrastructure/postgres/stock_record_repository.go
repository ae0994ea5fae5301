package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jhoicas/Almacen-api/internal/domain"
	"github.com/jhoicas/Almacen-api/internal/domain/entity"
	"github.com/jhoicas/Almacen-api/internal/domain/repository"
)

var _ repository.StockRecordRepository = (*StockRecordRepo)(nil)

const stockRecordColumns = `id, company_id, product_id, warehouse_id, quantity, reserved_quantity,
	available_quantity, unit_cost, quality_status, batch_number, lot_number, expiry_date,
	received_at, minimum_quantity, updated_at`

// StockRecordRepo implementación de StockRecordRepository sobre PostgreSQL
// (usable con pool o tx).
type StockRecordRepo struct {
	q Querier
}

// NewStockRecordRepository construye el adaptador. Pasar pool o tx (Querier).
func NewStockRecordRepository(q Querier) *StockRecordRepo {
	return &StockRecordRepo{q: q}
}

func scanStockRecord(row pgx.Row) (*entity.StockRecord, error) {
	var s entity.StockRecord
	err := row.Scan(
		&s.ID, &s.CompanyID, &s.ProductID, &s.WarehouseID, &s.Quantity, &s.ReservedQuantity,
		&s.AvailableQuantity, &s.UnitCost, &s.QualityStatus, &s.BatchNumber, &s.LotNumber,
		&s.ExpiryDate, &s.ReceivedAt, &s.MinimumQuantity, &s.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &s, nil
}

// Get obtiene el registro de un producto en una bodega.
func (r *StockRecordRepo) Get(productID, warehouseID string) (*entity.StockRecord, error) {
	query := `
		SELECT ` + stockRecordColumns + `
		FROM stock_records WHERE product_id = $1 AND warehouse_id = $2`
	s, err := scanStockRecord(r.q.QueryRow(context.Background(), query, productID, warehouseID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrRecordNotFound
		}
		return nil, fmt.Errorf("get stock record: %w", err)
	}
	return s, nil
}

// GetForUpdate obtiene el registro y bloquea la fila (SELECT FOR UPDATE).
func (r *StockRecordRepo) GetForUpdate(productID, warehouseID string) (*entity.StockRecord, error) {
	query := `
		SELECT ` + stockRecordColumns + `
		FROM stock_records WHERE product_id = $1 AND warehouse_id = $2
		FOR UPDATE`
	s, err := scanStockRecord(r.q.QueryRow(context.Background(), query, productID, warehouseID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrRecordNotFound
		}
		return nil, fmt.Errorf("get stock record for update: %w", err)
	}
	return s, nil
}

// Upsert inserta o actualiza el registro (clave producto+bodega).
func (r *StockRecordRepo) Upsert(record *entity.StockRecord) error {
	query := `
		INSERT INTO stock_records (` + stockRecordColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, now())
		ON CONFLICT (product_id, warehouse_id)
		DO UPDATE SET
			quantity = EXCLUDED.quantity,
			reserved_quantity = EXCLUDED.reserved_quantity,
			available_quantity = EXCLUDED.available_quantity,
			unit_cost = EXCLUDED.unit_cost,
			quality_status = EXCLUDED.quality_status,
			batch_number = EXCLUDED.batch_number,
			lot_number = EXCLUDED.lot_number,
			expiry_date = EXCLUDED.expiry_date,
			minimum_quantity = EXCLUDED.minimum_quantity,
			updated_at = now()`
	_, err := r.q.Exec(context.Background(), query,
		record.ID, record.CompanyID, record.ProductID, record.WarehouseID,
		record.Quantity, record.ReservedQuantity, record.AvailableQuantity,
		record.UnitCost, record.QualityStatus, record.BatchNumber, record.LotNumber,
		record.ExpiryDate, record.ReceivedAt, record.MinimumQuantity,
	)
	if err != nil {
		return fmt.Errorf("upsert stock record: %w", err)
	}
	return nil
}

// ListByProduct devuelve los registros del producto en todas las bodegas de la empresa.
func (r *StockRecordRepo) ListByProduct(companyID, productID string) ([]*entity.StockRecord, error) {
	query := `
		SELECT ` + stockRecordColumns + `
		FROM stock_records WHERE company_id = $1 AND product_id = $2
		ORDER BY warehouse_id`
	return r.list(query, companyID, productID)
}

// ListByProductForUpdate igual que ListByProduct pero bloqueando las filas.
// El ORDER BY warehouse_id fija un orden de bloqueo determinista para que dos
// asignaciones concurrentes del mismo producto no se interbloqueen.
func (r *StockRecordRepo) ListByProductForUpdate(companyID, productID string) ([]*entity.StockRecord, error) {
	query := `
		SELECT ` + stockRecordColumns + `
		FROM stock_records WHERE company_id = $1 AND product_id = $2
		ORDER BY warehouse_id
		FOR UPDATE`
	return r.list(query, companyID, productID)
}

// ListByCompany lista registros de la empresa (paginado).
func (r *StockRecordRepo) ListByCompany(companyID string, limit, offset int) ([]*entity.StockRecord, error) {
	query := `
		SELECT ` + stockRecordColumns + `
		FROM stock_records WHERE company_id = $1
		ORDER BY product_id, warehouse_id
		LIMIT $2 OFFSET $3`
	return r.list(query, companyID, limit, offset)
}

func (r *StockRecordRepo) list(query string, args ...any) ([]*entity.StockRecord, error) {
	rows, err := r.q.Query(context.Background(), query, args...)
	if err != nil {
		return nil, fmt.Errorf("list stock records: %w", err)
	}
	defer rows.Close()
	var list []*entity.StockRecord
	for rows.Next() {
		s, err := scanStockRecord(rows)
		if err != nil {
			return nil, fmt.Errorf("scan stock record: %w", err)
		}
		list = append(list, s)
	}
	return list, rows.Err()
}
