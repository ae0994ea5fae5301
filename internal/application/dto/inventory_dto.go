package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// ReceiveStockRequest body para POST /api/inventory/receive.
type ReceiveStockRequest struct {
	ProductID   string          `json:"product_id" validate:"required,uuid"`
	WarehouseID string          `json:"warehouse_id" validate:"required,uuid"`
	Quantity    decimal.Decimal `json:"quantity"`
	UnitCost    decimal.Decimal `json:"unit_cost"`
	Reason      string          `json:"reason,omitempty"`
	ReferenceID string          `json:"reference_id,omitempty"`
	BatchNumber string          `json:"batch_number,omitempty"`
	LotNumber   string          `json:"lot_number,omitempty"`
	ExpiryDate  *time.Time      `json:"expiry_date,omitempty"`
}

// AdjustStockRequest body para POST /api/inventory/adjust.
// NewQuantity fija la cantidad absoluta; Delta aplica un cambio relativo.
// Exactamente uno de los dos debe venir.
type AdjustStockRequest struct {
	ProductID   string           `json:"product_id" validate:"required,uuid"`
	WarehouseID string           `json:"warehouse_id" validate:"required,uuid"`
	NewQuantity *decimal.Decimal `json:"new_quantity,omitempty"`
	Delta       *decimal.Decimal `json:"delta,omitempty"`
	Reason      string           `json:"reason,omitempty"`
}

// AdjustStockResponse resultado de un ajuste.
type AdjustStockResponse struct {
	OldQuantity decimal.Decimal `json:"old_quantity"`
	NewQuantity decimal.Decimal `json:"new_quantity"`
	Delta       decimal.Decimal `json:"delta"`
	Reason      string          `json:"reason"`
	Clamped     bool            `json:"clamped,omitempty"`
	Pending     bool            `json:"pending"`
	MovementID  string          `json:"movement_id"`
}

// TransferStockRequest body para POST /api/inventory/transfer.
type TransferStockRequest struct {
	ProductID       string          `json:"product_id" validate:"required,uuid"`
	FromWarehouseID string          `json:"from_warehouse_id" validate:"required,uuid"`
	ToWarehouseID   string          `json:"to_warehouse_id" validate:"required,uuid"`
	Quantity        decimal.Decimal `json:"quantity"`
	ReferenceID     string          `json:"reference_id,omitempty"`
}

// ReservationRequest body para POST /api/inventory/reserve y /release.
type ReservationRequest struct {
	ProductID   string          `json:"product_id" validate:"required,uuid"`
	WarehouseID string          `json:"warehouse_id" validate:"required,uuid"`
	Quantity    decimal.Decimal `json:"quantity"`
}

// OrderLineItemDTO línea de orden para asignar/compensar.
type OrderLineItemDTO struct {
	ProductID string          `json:"product_id" validate:"required,uuid"`
	Quantity  decimal.Decimal `json:"quantity"`
	Price     decimal.Decimal `json:"price"`
}

// AllocateOrderRequest body para POST /api/orders/:id/allocate.
type AllocateOrderRequest struct {
	LineItems []OrderLineItemDTO `json:"line_items" validate:"required,min=1,dive"`
}

// AllocationLineDTO una extracción aplicada contra un registro.
type AllocationLineDTO struct {
	ProductID   string          `json:"product_id"`
	WarehouseID string          `json:"warehouse_id"`
	Quantity    decimal.Decimal `json:"quantity"`
	MovementID  string          `json:"movement_id"`
}

// AllocateOrderResponse salida de la asignación.
type AllocateOrderResponse struct {
	Allocated bool                `json:"allocated"`
	OrderID   string              `json:"order_id"`
	Lines     []AllocationLineDTO `json:"lines"`
}

// CompensateOrderRequest body para POST /api/orders/:id/compensate.
type CompensateOrderRequest struct {
	LineItems []OrderLineItemDTO `json:"line_items" validate:"required,min=1,dive"`
}

// StockRecordResponse salida de un registro de stock.
type StockRecordResponse struct {
	ProductID         string          `json:"product_id"`
	WarehouseID       string          `json:"warehouse_id"`
	Quantity          decimal.Decimal `json:"quantity"`
	ReservedQuantity  decimal.Decimal `json:"reserved_quantity"`
	AvailableQuantity decimal.Decimal `json:"available_quantity"`
	UnitCost          decimal.Decimal `json:"unit_cost"`
	TotalCost         decimal.Decimal `json:"total_cost"`
	QualityStatus     string          `json:"quality_status"`
	BatchNumber       string          `json:"batch_number,omitempty"`
	LotNumber         string          `json:"lot_number,omitempty"`
	ExpiryDate        *time.Time      `json:"expiry_date,omitempty"`
	UpdatedAt         time.Time       `json:"updated_at"`
}

// MovementResponse salida de un asiento del ledger.
type MovementResponse struct {
	ID              string          `json:"id"`
	ProductID       string          `json:"product_id"`
	FromWarehouseID string          `json:"from_warehouse_id,omitempty"`
	ToWarehouseID   string          `json:"to_warehouse_id,omitempty"`
	Type            string          `json:"type"`
	Reason          string          `json:"reason"`
	Quantity        decimal.Decimal `json:"quantity"`
	BeforeQuantity  decimal.Decimal `json:"before_quantity"`
	AfterQuantity   decimal.Decimal `json:"after_quantity"`
	UnitCost        decimal.Decimal `json:"unit_cost"`
	TotalCost       decimal.Decimal `json:"total_cost"`
	ReferenceType   string          `json:"reference_type,omitempty"`
	ReferenceID     string          `json:"reference_id,omitempty"`
	Status          string          `json:"status"`
	ProcessedBy     string          `json:"processed_by"`
	ApprovedBy      string          `json:"approved_by,omitempty"`
	ApprovedAt      *time.Time      `json:"approved_at,omitempty"`
	OccurredAt      time.Time       `json:"occurred_at"`
}

// StockHistoryEntryDTO entrada de la vista de historial por registro.
type StockHistoryEntryDTO struct {
	Date             time.Time       `json:"date"`
	Change           decimal.Decimal `json:"change"`
	Reason           string          `json:"reason"`
	PreviousQuantity decimal.Decimal `json:"previous_quantity"`
	NewQuantity      decimal.Decimal `json:"new_quantity"`
}
