package entity

import (
	"encoding/json"
	"time"

	"github.com/shopspring/decimal"
)

// Product representa un producto o SKU del catálogo (multi-bodega).
// Cost es promedio ponderado, recalculado en cada entrada; el stock por bodega
// vive en StockRecord.
type Product struct {
	ID          string
	CompanyID   string
	SKU         string // código único por empresa
	Name        string
	Description string
	Price       decimal.Decimal // precio de venta
	Cost        decimal.Decimal // costo promedio ponderado (inicia en 0)
	UnitMeasure string
	Attributes  json.RawMessage
	CreatedAt   time.Time
	UpdatedAt   time.Time
}
