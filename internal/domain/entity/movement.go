package entity

import (
	"time"

	"github.com/jhoicas/Almacen-api/internal/domain"
	"github.com/shopspring/decimal"
)

// Tipos de movimiento de inventario (enumeración cerrada).
const (
	MovementTypeInbound     = "inbound"
	MovementTypeOutbound    = "outbound"
	MovementTypeTransfer    = "transfer"
	MovementTypeAdjustment  = "adjustment"
	MovementTypeReturn      = "return"
	MovementTypeDamaged     = "damaged"
	MovementTypeExpired     = "expired"
	MovementTypeCycleCount  = "cycle_count"
	MovementTypeProduction  = "production"
	MovementTypeConsumption = "consumption"
)

// Razones de movimiento (por qué ocurrió el cambio).
const (
	ReasonPurchaseOrder    = "purchase_order"
	ReasonSalesOrder       = "sales_order"
	ReasonTransferOrder    = "transfer_order"
	ReasonManualAdjustment = "manual_adjustment"
	ReasonCustomerReturn   = "customer_return"
	ReasonDamagedGoods     = "damaged_goods"
	ReasonExpiredGoods     = "expired_goods"
	ReasonStockLoss        = "stock_loss"
	ReasonCycleCount       = "cycle_count"
	ReasonProductionOrder  = "production_order"
	ReasonInitialStock     = "initial_stock"
)

// Estados de un movimiento.
const (
	MovementStatusPending   = "pending"
	MovementStatusCompleted = "completed"
	MovementStatusCancelled = "cancelled"
	MovementStatusFailed    = "failed"
)

// Tipos de referencia polimórfica hacia el documento que causó el movimiento.
const (
	ReferenceOrder         = "order"
	ReferencePurchaseOrder = "purchase_order"
	ReferenceTransfer      = "transfer"
	ReferenceMovement      = "movement" // correcciones: nuevo asiento apuntando al original
)

var movementTypes = map[string]bool{
	MovementTypeInbound: true, MovementTypeOutbound: true, MovementTypeTransfer: true,
	MovementTypeAdjustment: true, MovementTypeReturn: true, MovementTypeDamaged: true,
	MovementTypeExpired: true, MovementTypeCycleCount: true, MovementTypeProduction: true,
	MovementTypeConsumption: true,
}

var movementReasons = map[string]bool{
	ReasonPurchaseOrder: true, ReasonSalesOrder: true, ReasonTransferOrder: true,
	ReasonManualAdjustment: true, ReasonCustomerReturn: true, ReasonDamagedGoods: true,
	ReasonExpiredGoods: true, ReasonStockLoss: true, ReasonCycleCount: true,
	ReasonProductionOrder: true, ReasonInitialStock: true,
}

// Movement es un asiento del ledger de inventario: append-only, inmutable una vez
// completed (las correcciones son asientos nuevos con ReferenceMovement).
// Quantity es el delta con signo; Before/AfterQuantity el snapshot del StockRecord
// que produjo.
type Movement struct {
	ID              string
	CompanyID       string
	ProductID       string
	FromWarehouseID string // vacío si no aplica
	ToWarehouseID   string // vacío si no aplica
	Type            string
	Reason          string
	Quantity        decimal.Decimal // con signo: negativo para salidas
	BeforeQuantity  decimal.Decimal
	AfterQuantity   decimal.Decimal
	UnitCost        decimal.Decimal
	TotalCost       decimal.Decimal // UnitCost * |Quantity|
	ReferenceType   string
	ReferenceID     string
	Status          string
	ProcessedBy     string
	ApprovedBy      string
	ApprovedAt      *time.Time
	OccurredAt      time.Time
	CreatedAt       time.Time
}

// Validate verifica la enumeración cerrada de tipo/razón/estado y la identidad
// AfterQuantity - BeforeQuantity == Quantity. Los movimientos pending se validan
// solo contra las enumeraciones: su before/after definitivo se fija al aprobarse.
func (m *Movement) Validate() error {
	if !movementTypes[m.Type] || !movementReasons[m.Reason] {
		return domain.ErrInvalidInput
	}
	if m.ProductID == "" {
		return domain.ErrInvalidInput
	}
	if m.Status == MovementStatusPending {
		return nil
	}
	if !m.AfterQuantity.Sub(m.BeforeQuantity).Equal(m.Quantity) {
		return domain.ErrInvalidLedgerEntry
	}
	return nil
}

// NeedsApproval decide si el movimiento debe quedar pending hasta aprobación:
// tipos/razones de riesgo (mermas, vencidos, pérdidas), o delta absoluto por
// encima del umbral configurado. Un ajuste manual chico aplica directo; uno
// grande espera aprobación.
func (m *Movement) NeedsApproval(threshold decimal.Decimal) bool {
	switch m.Type {
	case MovementTypeDamaged, MovementTypeExpired:
		return true
	}
	switch m.Reason {
	case ReasonDamagedGoods, ReasonExpiredGoods, ReasonStockLoss:
		return true
	}
	return m.Quantity.Abs().GreaterThan(threshold)
}

// IsInbound indica si el movimiento suma stock (delta positivo).
func (m *Movement) IsInbound() bool {
	return m.Quantity.GreaterThan(decimal.Zero)
}
