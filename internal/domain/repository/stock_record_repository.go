package repository

import "github.com/jhoicas/Almacen-api/internal/domain/entity"

// StockRecordRepository define el puerto para consultar/actualizar registros de
// stock por producto+bodega. Usado dentro de transacciones para garantizar
// consistencia entre el registro y su asiento en el ledger.
type StockRecordRepository interface {
	Get(productID, warehouseID string) (*entity.StockRecord, error)
	// GetForUpdate bloquea la fila para update (SELECT FOR UPDATE). Devuelve
	// ErrRecordNotFound si no existe; el registro se crea solo vía Upsert.
	GetForUpdate(productID, warehouseID string) (*entity.StockRecord, error)
	Upsert(record *entity.StockRecord) error
	// ListByProduct devuelve los registros del producto en todas las bodegas de la empresa.
	ListByProduct(companyID, productID string) ([]*entity.StockRecord, error)
	// ListByProductForUpdate igual que ListByProduct pero bloqueando las filas,
	// en orden determinista de clave para evitar deadlocks entre asignaciones.
	ListByProductForUpdate(companyID, productID string) ([]*entity.StockRecord, error)
	ListByCompany(companyID string, limit, offset int) ([]*entity.StockRecord, error)
}
