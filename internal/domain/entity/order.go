package entity

import "github.com/shopspring/decimal"

// Estados de orden relevantes para asignación y compensación. La orden en sí
// vive en otro sistema; aquí solo importan las transiciones que disparan
// asignar (creación) y compensar (cancelación/borrado en pending).
const (
	OrderStatusPending   = "pending"
	OrderStatusConfirmed = "confirmed"
	OrderStatusShipped   = "shipped"
	OrderStatusDelivered = "delivered"
	OrderStatusCancelled = "cancelled"
)

// OrderLineItem es la forma de línea de orden que consumen Allocator y
// Compensator (colaborador externo, solo lectura).
type OrderLineItem struct {
	ProductID string
	Quantity  decimal.Decimal
	Price     decimal.Decimal
}
