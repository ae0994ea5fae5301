package repository

import (
	"time"

	"github.com/jhoicas/Almacen-api/internal/domain/entity"
)

// MovementFilter criterios de consulta sobre el ledger de movimientos.
// Los campos vacíos no filtran. El orden por defecto es cronológico ascendente.
type MovementFilter struct {
	CompanyID   string
	ProductID   string
	WarehouseID string // coincide contra from_warehouse_id o to_warehouse_id
	Type        string
	Status      string
	From        *time.Time
	To          *time.Time
	NewestFirst bool
	Limit       int
	Offset      int
}

// MovementRepository define el puerto de persistencia para el ledger de
// movimientos (append-only: Create y la transición de aprobación; nunca edición
// de asientos completed).
type MovementRepository interface {
	Create(movement *entity.Movement) error
	GetByID(id string) (*entity.Movement, error)
	// GetForUpdate bloquea el asiento (aprobación atómica con la mutación diferida).
	GetForUpdate(id string) (*entity.Movement, error)
	// UpdateStatus fija status/before/after/approved_by/approved_at de un asiento
	// pending. Los asientos completed son inmutables.
	UpdateStatus(movement *entity.Movement) error
	List(filter MovementFilter) ([]*entity.Movement, error)
	// ListByReference devuelve los asientos causados por un documento externo
	// (p. ej. todos los outbound de una orden), en orden de creación.
	ListByReference(referenceType, referenceID string) ([]*entity.Movement, error)
	// History vista por registro del ledger: cambios de un producto en una bodega,
	// más antiguo primero.
	History(productID, warehouseID string, limit int) ([]*entity.StockHistoryEntry, error)
}
