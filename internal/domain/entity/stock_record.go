package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Estados de calidad del stock. Solo StockQualityGood es asignable a órdenes.
const (
	StockQualityGood       = "good"
	StockQualityDamaged    = "damaged"
	StockQualityExpired    = "expired"
	StockQualityQuarantine = "quarantine"
	StockQualityReturned   = "returned"
)

// StockRecord representa el stock de un producto en una bodega (único por producto/bodega).
// Quantity es el total físico; ReservedQuantity lo prometido a órdenes abiertas;
// AvailableQuantity se recalcula en cada mutación y nunca se persiste sin recalcular.
type StockRecord struct {
	ID                string
	CompanyID         string
	ProductID         string
	WarehouseID       string
	Quantity          decimal.Decimal
	ReservedQuantity  decimal.Decimal
	AvailableQuantity decimal.Decimal
	UnitCost          decimal.Decimal
	QualityStatus     string // good, damaged, expired, quarantine, returned
	BatchNumber       string
	LotNumber         string
	ExpiryDate        *time.Time // FEFO si está presente
	ReceivedAt        time.Time  // FIFO cuando no hay fecha de vencimiento
	MinimumQuantity   decimal.Decimal
	UpdatedAt         time.Time
}

// Recompute recalcula AvailableQuantity = Quantity - ReservedQuantity.
// Debe llamarse después de toda mutación de Quantity o ReservedQuantity.
func (s *StockRecord) Recompute() {
	s.AvailableQuantity = s.Quantity.Sub(s.ReservedQuantity)
}

// TotalCost devuelve Quantity * UnitCost (derivado, nunca almacenado).
func (s *StockRecord) TotalCost() decimal.Decimal {
	return s.Quantity.Mul(s.UnitCost)
}

// Allocatable indica si el registro puede usarse para asignar órdenes.
func (s *StockRecord) Allocatable() bool {
	return s.QualityStatus == StockQualityGood && s.AvailableQuantity.GreaterThan(decimal.Zero)
}

// InvariantsHold verifica 0 <= reserved <= quantity y available = quantity - reserved.
func (s *StockRecord) InvariantsHold() bool {
	if s.Quantity.IsNegative() || s.ReservedQuantity.IsNegative() {
		return false
	}
	if s.ReservedQuantity.GreaterThan(s.Quantity) {
		return false
	}
	return s.AvailableQuantity.Equal(s.Quantity.Sub(s.ReservedQuantity))
}

// IsLow indica si el stock está por debajo del mínimo configurado.
func (s *StockRecord) IsLow() bool {
	return s.MinimumQuantity.GreaterThan(decimal.Zero) && s.Quantity.LessThan(s.MinimumQuantity)
}

// StockHistoryEntry es la vista por registro del ledger global (solo lectura,
// derivada de inventory_movements filtrado por producto/bodega).
type StockHistoryEntry struct {
	Date             time.Time
	Change           decimal.Decimal
	Reason           string
	PreviousQuantity decimal.Decimal
	NewQuantity      decimal.Decimal
}
